package pipeline

import "recipediff/internal/util"

// Sheet is one worksheet as physical rows of text cells, before any header
// has been chosen.
type Sheet [][]string

type RawTable struct {
	Headers []string
	Rows    [][]string
}

// HeaderTable reads the first physical row as header. When every header cell
// of that row is empty the second physical row is used instead. The fallback
// is applied once.
func HeaderTable(sheet Sheet) RawTable {
	table := tableWithHeaderRow(sheet, 0)
	if util.AllPlaceholders(table.Headers) {
		table = tableWithHeaderRow(sheet, 1)
	}
	return table
}

func tableWithHeaderRow(sheet Sheet, headerRow int) RawTable {
	if headerRow >= len(sheet) {
		return RawTable{}
	}

	width := 0
	for _, row := range sheet[headerRow:] {
		if len(row) > width {
			width = len(row)
		}
	}

	headers := make([]string, width)
	for i := range headers {
		h := ""
		if i < len(sheet[headerRow]) {
			h = util.CleanHeader(sheet[headerRow][i])
		}
		if h == "" {
			h = util.PlaceholderHeader(i)
		}
		headers[i] = h
	}

	rows := make([][]string, 0, len(sheet)-headerRow-1)
	for _, row := range sheet[headerRow+1:] {
		if util.IsBlankRow(row) {
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		rows = append(rows, padded)
	}

	return RawTable{Headers: headers, Rows: rows}
}

// ColumnIndex returns the first physical column carrying header, or -1.
func (t RawTable) ColumnIndex(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
