package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"recipediff/internal"
)

const (
	FieldFGCode      = "fg_code"
	FieldItemCode    = "item_code"
	FieldItemName    = "item_name"
	FieldDosage      = "dosage"
	FieldUnit        = "unit"
	FieldProductName = "product_name"
)

var (
	ErrUnrecognizedSchema = errors.New("unrecognized schema")
	ErrMissingColumn      = errors.New("required column missing")
)

type ColumnMapping struct {
	Header string
	Field  string
}

type Layout struct {
	Kind          internal.LayoutKind
	Source        string
	DisplayPrefix string
	Anchors       []string
	Columns       []ColumnMapping
	DisplayFields []string
}

var RestaurantLayout = Layout{
	Kind:          internal.LayoutRestaurant,
	Source:        "餐厅",
	DisplayPrefix: "餐厅",
	Anchors:       []string{"FG CODE", "配方用量"},
	Columns: []ColumnMapping{
		{Header: "FG CODE", Field: FieldFGCode},
		{Header: "货品编码集合", Field: FieldItemCode},
		{Header: "货品名称集合", Field: FieldItemName},
		{Header: "配方用量", Field: FieldDosage},
		{Header: "配方编码单位", Field: FieldUnit},
		{Header: "产品名称", Field: FieldProductName},
	},
	DisplayFields: []string{"产品编码", "产品名称", "销量", "配方编码", "配方名称"},
}

var SupplierLayout = Layout{
	Kind:          internal.LayoutSupplier,
	Source:        "供应链",
	DisplayPrefix: "供应链",
	Anchors:       []string{"SP Product Code", "Quantity"},
	Columns: []ColumnMapping{
		{Header: "SP Product Code", Field: FieldFGCode},
		{Header: "JDE Code", Field: FieldItemCode},
		{Header: "JDE Name", Field: FieldItemName},
		{Header: "Quantity", Field: FieldDosage},
		{Header: "Unit(BOM)", Field: FieldUnit},
	},
	DisplayFields: []string{"SP Product Name"},
}

// Layouts is checked in order; the first layout whose anchors are all
// present wins.
var Layouts = []Layout{RestaurantLayout, SupplierLayout}

type SchemaError struct {
	Layout  internal.LayoutKind
	Missing []string
	Headers []string
}

func (e *SchemaError) Error() string {
	if e.Layout == "" {
		return fmt.Sprintf("unrecognized schema: headers [%s] match no known recipe layout", strings.Join(e.Headers, ", "))
	}
	return fmt.Sprintf("%s layout is missing required column(s): %s", e.Layout, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error {
	if e.Layout == "" {
		return ErrUnrecognizedSchema
	}
	return ErrMissingColumn
}

type Detection struct {
	Layout    Layout
	Matched   []internal.LayoutKind
	Ambiguous bool
}

func DetectLayout(headers []string) (Detection, error) {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}

	var det Detection
	for _, layout := range Layouts {
		if !hasAll(present, layout.Anchors) {
			continue
		}
		if len(det.Matched) == 0 {
			det.Layout = layout
		}
		det.Matched = append(det.Matched, layout.Kind)
	}

	if len(det.Matched) == 0 {
		return Detection{}, &SchemaError{Headers: headers}
	}
	det.Ambiguous = len(det.Matched) > 1
	return det, nil
}

func (l Layout) HeaderFor(field string) string {
	for _, c := range l.Columns {
		if c.Field == field {
			return c.Header
		}
	}
	return ""
}

func hasAll(present map[string]struct{}, names []string) bool {
	for _, n := range names {
		if _, ok := present[n]; !ok {
			return false
		}
	}
	return true
}
