package pipeline

import "recipediff/internal"

// Report is the reconciliation result flattened to one sheet: a header row
// and one value row per reconciled record. Absent values are nil.
type Report struct {
	Headers []string
	Rows    [][]any
}

type reportColumn struct {
	header string
	value  func(internal.ReconciledRecord) any
}

func BuildReport(records []internal.ReconciledRecord, left, right internal.CanonicalTable, labels LabelSet) Report {
	taken := map[string]struct{}{}
	columns := []reportColumn{}
	add := func(header string, value func(internal.ReconciledRecord) any) {
		columns = append(columns, reportColumn{header: uniqueName(taken, header), value: value})
	}

	add(FieldFGCode, func(r internal.ReconciledRecord) any { return r.FGCode })
	add(FieldItemCode, func(r internal.ReconciledRecord) any { return r.ItemCode })

	otherDisplay := map[string]struct{}{}
	for _, c := range right.DisplayColumns {
		otherDisplay[c] = struct{}{}
	}
	addSide(add, left, labels.LeftSuffix, otherDisplay, labels.ColumnSource, func(r internal.ReconciledRecord) (*internal.CanonicalRecord, string) {
		return r.Left, r.LeftSource
	})

	otherDisplay = map[string]struct{}{}
	for _, c := range left.DisplayColumns {
		otherDisplay[c] = struct{}{}
	}
	addSide(add, right, labels.RightSuffix, otherDisplay, labels.ColumnSource, func(r internal.ReconciledRecord) (*internal.CanonicalRecord, string) {
		return r.Right, r.RightSource
	})

	add(labels.ColumnProvenance, func(r internal.ReconciledRecord) any { return string(r.Provenance) })
	add(labels.ColumnSKUMatch, func(r internal.ReconciledRecord) any { return labels.Flag(r.SKUMatch) })
	add(labels.ColumnQuantityMatch, func(r internal.ReconciledRecord) any { return labels.Flag(r.QuantityMatch) })
	add(labels.ColumnUnitMatch, func(r internal.ReconciledRecord) any { return labels.Flag(r.UnitMatch) })
	add(labels.ColumnSummary, func(r internal.ReconciledRecord) any { return labels.Summary(r) })

	report := Report{
		Headers: make([]string, len(columns)),
		Rows:    make([][]any, 0, len(records)),
	}
	for i, c := range columns {
		report.Headers[i] = c.header
	}
	for _, rec := range records {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = c.value(rec)
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}

// addSide appends one side's canonical columns, its display columns and its
// source tag. Display columns only take the side suffix when the other side
// carries a column of the same name.
func addSide(
	add func(string, func(internal.ReconciledRecord) any),
	table internal.CanonicalTable,
	suffix string,
	otherDisplay map[string]struct{},
	sourceColumn string,
	pick func(internal.ReconciledRecord) (*internal.CanonicalRecord, string),
) {
	if table.HasItemName {
		add(FieldItemName+suffix, func(r internal.ReconciledRecord) any {
			rec, _ := pick(r)
			if rec == nil {
				return nil
			}
			return stringOrNil(rec.ItemName)
		})
	}
	add(FieldDosage+suffix, func(r internal.ReconciledRecord) any {
		rec, _ := pick(r)
		if rec == nil {
			return nil
		}
		return rec.Dosage
	})
	if table.HasUnit {
		add(FieldUnit+suffix, func(r internal.ReconciledRecord) any {
			rec, _ := pick(r)
			if rec == nil {
				return nil
			}
			return stringOrNil(rec.Unit)
		})
	}
	if table.HasProductName {
		add(FieldProductName+suffix, func(r internal.ReconciledRecord) any {
			rec, _ := pick(r)
			if rec == nil {
				return nil
			}
			return stringOrNil(rec.ProductName)
		})
	}

	for _, name := range table.DisplayColumns {
		header := name
		if _, clash := otherDisplay[name]; clash {
			header = name + suffix
		}
		add(header, func(r internal.ReconciledRecord) any {
			rec, _ := pick(r)
			if rec == nil {
				return nil
			}
			if v, ok := rec.Display[name]; ok {
				return v
			}
			return nil
		})
	}

	add(sourceColumn+suffix, func(r internal.ReconciledRecord) any {
		_, source := pick(r)
		if source == "" {
			return nil
		}
		return source
	})
}

func stringOrNil(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
