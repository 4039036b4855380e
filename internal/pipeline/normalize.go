package pipeline

import (
	"fmt"

	"recipediff/internal"
	"recipediff/internal/util"
)

var requiredFields = []string{FieldFGCode, FieldItemCode, FieldDosage}

type displayColumn struct {
	Name  string
	Index int
}

// Normalize turns one raw worksheet into canonical recipe records. Rows with
// an empty fg/item code or dosage, rows whose dosage is not numeric and
// repeated (fg_code, item_code) pairs are dropped and counted in the
// returned table's Stats.
func Normalize(sheet Sheet) (internal.CanonicalTable, error) {
	table := HeaderTable(sheet)

	det, err := DetectLayout(table.Headers)
	if err != nil {
		return internal.CanonicalTable{}, err
	}
	layout := det.Layout

	fields := map[string]int{}
	for _, m := range layout.Columns {
		if idx := table.ColumnIndex(m.Header); idx >= 0 {
			fields[m.Field] = idx
		}
	}

	missing := []string{}
	for _, f := range requiredFields {
		if _, ok := fields[f]; !ok {
			missing = append(missing, layout.HeaderFor(f))
		}
	}
	if len(missing) > 0 {
		return internal.CanonicalTable{}, &SchemaError{Layout: layout.Kind, Missing: missing, Headers: table.Headers}
	}

	display := resolveDisplayColumns(table, layout)

	out := internal.CanonicalTable{
		Layout:          layout.Kind,
		Source:          layout.Source,
		AmbiguousLayout: det.Ambiguous,
		HasItemName:     hasField(fields, FieldItemName),
		HasUnit:         hasField(fields, FieldUnit),
		HasProductName:  hasField(fields, FieldProductName),
		DisplayColumns:  make([]string, 0, len(display)),
		Records:         make([]internal.CanonicalRecord, 0, len(table.Rows)),
	}
	for _, d := range display {
		out.DisplayColumns = append(out.DisplayColumns, d.Name)
	}

	seen := map[internal.RecordKey]struct{}{}
	for _, row := range table.Rows {
		out.Stats.RowsRead++

		fg := cellAt(row, fields[FieldFGCode])
		item := cellAt(row, fields[FieldItemCode])
		rawDosage := cellAt(row, fields[FieldDosage])
		if fg == "" || item == "" || rawDosage == "" {
			out.Stats.DroppedMissingKey++
			continue
		}

		dosage, ok := util.ParseDosage(rawDosage)
		if !ok {
			out.Stats.DroppedBadDosage++
			continue
		}

		key := internal.RecordKey{FGCode: fg, ItemCode: item}
		if _, dup := seen[key]; dup {
			out.Stats.DroppedDuplicate++
			continue
		}
		seen[key] = struct{}{}

		rec := internal.CanonicalRecord{
			FGCode:      fg,
			ItemCode:    item,
			Dosage:      dosage,
			ItemName:    optionalCell(row, fields, FieldItemName),
			Unit:        optionalCell(row, fields, FieldUnit),
			ProductName: optionalCell(row, fields, FieldProductName),
		}
		for _, d := range display {
			if v := cellAt(row, d.Index); v != "" {
				if rec.Display == nil {
					rec.Display = make(map[string]string, len(display))
				}
				rec.Display[d.Name] = v
			}
		}
		out.Records = append(out.Records, rec)
	}
	out.Stats.Kept = len(out.Records)

	return out, nil
}

// resolveDisplayColumns prefixes each display header with the layout's source
// label. A label already taken gets _2, _3, ... appended in scan order, and a
// header repeated in the sheet reads from its first physical column.
func resolveDisplayColumns(table RawTable, layout Layout) []displayColumn {
	taken := map[string]struct{}{}
	for _, f := range []string{FieldFGCode, FieldItemCode, FieldItemName, FieldDosage, FieldUnit, FieldProductName} {
		taken[f] = struct{}{}
	}

	out := make([]displayColumn, 0, len(layout.DisplayFields))
	for _, header := range layout.DisplayFields {
		idx := table.ColumnIndex(header)
		if idx < 0 {
			continue
		}
		name := uniqueName(taken, layout.DisplayPrefix+"_"+header)
		out = append(out, displayColumn{Name: name, Index: idx})
	}
	return out
}

func uniqueName(taken map[string]struct{}, base string) string {
	name := base
	for n := 2; ; n++ {
		if _, ok := taken[name]; !ok {
			break
		}
		name = fmt.Sprintf("%s_%d", base, n)
	}
	taken[name] = struct{}{}
	return name
}

func optionalCell(row []string, fields map[string]int, field string) *string {
	idx, ok := fields[field]
	if !ok {
		return nil
	}
	v := cellAt(row, idx)
	if v == "" {
		return nil
	}
	return util.StringPtr(v)
}

func hasField(fields map[string]int, field string) bool {
	_, ok := fields[field]
	return ok
}
