package pipeline

import (
	"errors"
	"math"

	"recipediff/internal"
)

var ErrInvalidTolerance = errors.New("tolerance must be a non-negative number")

const (
	defaultLeftSource  = "left"
	defaultRightSource = "right"
)

// Reconcile full-outer-joins two canonical tables on (fg_code, item_code).
// Rows come out in left table order, followed by keys found only on the
// right in right table order.
func Reconcile(left, right internal.CanonicalTable, tolerance float64) ([]internal.ReconciledRecord, error) {
	if math.IsNaN(tolerance) || tolerance < 0 {
		return nil, ErrInvalidTolerance
	}

	leftSource := firstNonEmpty(left.Source, defaultLeftSource)
	rightSource := firstNonEmpty(right.Source, defaultRightSource)

	rightIndex := make(map[internal.RecordKey]int, len(right.Records))
	for i, rec := range right.Records {
		if _, ok := rightIndex[rec.Key()]; !ok {
			rightIndex[rec.Key()] = i
		}
	}

	out := make([]internal.ReconciledRecord, 0, len(left.Records)+len(right.Records))
	leftSeen := make(map[internal.RecordKey]struct{}, len(left.Records))
	consumed := make(map[int]struct{}, len(right.Records))

	for i := range left.Records {
		l := &left.Records[i]
		if _, dup := leftSeen[l.Key()]; dup {
			continue
		}
		leftSeen[l.Key()] = struct{}{}

		var r *internal.CanonicalRecord
		if j, ok := rightIndex[l.Key()]; ok {
			r = &right.Records[j]
			consumed[j] = struct{}{}
		}
		out = append(out, classify(l, r, leftSource, rightSource, tolerance))
	}

	for j := range right.Records {
		r := &right.Records[j]
		if _, ok := consumed[j]; ok {
			continue
		}
		if rightIndex[r.Key()] != j {
			continue
		}
		out = append(out, classify(nil, r, leftSource, rightSource, tolerance))
	}

	return out, nil
}

func classify(l, r *internal.CanonicalRecord, leftSource, rightSource string, tolerance float64) internal.ReconciledRecord {
	rec := internal.ReconciledRecord{Left: l, Right: r}
	if l != nil {
		rec.FGCode, rec.ItemCode = l.FGCode, l.ItemCode
		rec.LeftSource = leftSource
	} else {
		rec.FGCode, rec.ItemCode = r.FGCode, r.ItemCode
	}
	if r != nil {
		rec.RightSource = rightSource
	}

	switch {
	case r == nil:
		rec.Provenance = internal.LeftOnly
	case l == nil:
		rec.Provenance = internal.RightOnly
	default:
		rec.Provenance = internal.Matched
		rec.SKUMatch = true
		rec.QuantityMatch = QuantitiesAgree(l.Dosage, r.Dosage, tolerance)
		rec.UnitMatch = UnitsAgree(l.Unit, r.Unit)
		if !rec.QuantityMatch {
			rec.Differences = append(rec.Differences, internal.DiffQuantity)
		}
		if !rec.UnitMatch {
			rec.Differences = append(rec.Differences, internal.DiffUnit)
		}
	}
	return rec
}

// QuantitiesAgree is inclusive: a difference of exactly tolerance agrees.
func QuantitiesAgree(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// UnitsAgree compares exactly. Two absent units agree, absent against
// present does not.
func UnitsAgree(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
