package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderTablePadsAndSkipsBlankRows(t *testing.T) {
	table := HeaderTable(Sheet{
		{"a", "", "c"},
		{"1"},
		{"", "", ""},
		{"2", "x", "y", "extra"},
	})

	assert.Equal(t, []string{"a", "Unnamed: 1", "c", "Unnamed: 3"}, table.Headers)
	assert.Equal(t, [][]string{
		{"1", "", "", ""},
		{"2", "x", "y", "extra"},
	}, table.Rows)
}

func TestHeaderTableEmptySheet(t *testing.T) {
	assert.Equal(t, RawTable{}, HeaderTable(nil))
	assert.Equal(t, RawTable{}, HeaderTable(Sheet{{}}))
}

func TestColumnIndexFirstOccurrence(t *testing.T) {
	table := RawTable{Headers: []string{"x", "产品名称", "产品名称"}}
	assert.Equal(t, 1, table.ColumnIndex("产品名称"))
	assert.Equal(t, -1, table.ColumnIndex("missing"))
}
