package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipediff/internal"
)

func sp(v string) *string { return &v }

func rec(fg, item string, dosage float64, unit *string) internal.CanonicalRecord {
	return internal.CanonicalRecord{FGCode: fg, ItemCode: item, Dosage: dosage, Unit: unit}
}

func tableOf(source string, records ...internal.CanonicalRecord) internal.CanonicalTable {
	return internal.CanonicalTable{Source: source, HasUnit: true, Records: records}
}

func TestReconcileWithinTolerance(t *testing.T) {
	left := tableOf("餐厅", rec("F1", "I1", 10, sp("g")))
	right := tableOf("供应链", rec("F1", "I1", 10.04, sp("g")))

	out, err := Reconcile(left, right, 0.05)
	require.NoError(t, err)
	require.Len(t, out, 1)

	r := out[0]
	assert.Equal(t, internal.Matched, r.Provenance)
	assert.True(t, r.SKUMatch)
	assert.True(t, r.QuantityMatch)
	assert.True(t, r.UnitMatch)
	assert.Empty(t, r.Differences)
	assert.Equal(t, "餐厅", r.LeftSource)
	assert.Equal(t, "供应链", r.RightSource)
	assert.Equal(t, "consistent", EnglishLabels.Summary(r))
}

func TestReconcileQuantityDiffers(t *testing.T) {
	left := tableOf("", rec("F1", "I1", 10, sp("g")))
	right := tableOf("", rec("F1", "I1", 10.10, sp("g")))

	out, err := Reconcile(left, right, 0.05)
	require.NoError(t, err)
	require.Len(t, out, 1)

	r := out[0]
	assert.Equal(t, internal.Matched, r.Provenance)
	assert.False(t, r.QuantityMatch)
	assert.True(t, r.UnitMatch)
	assert.Equal(t, []internal.Difference{internal.DiffQuantity}, r.Differences)
	assert.Contains(t, EnglishLabels.Summary(r), "quantity differs")
	assert.Equal(t, "left", r.LeftSource)
	assert.Equal(t, "right", r.RightSource)
}

func TestReconcileLeftOnly(t *testing.T) {
	left := tableOf("", rec("F2", "I9", 1, sp("g")))
	right := tableOf("", rec("F1", "I1", 1, sp("g")))

	out, err := Reconcile(left, right, 0.05)
	require.NoError(t, err)
	require.Len(t, out, 2)

	r := out[0]
	assert.Equal(t, "F2", r.FGCode)
	assert.Equal(t, internal.LeftOnly, r.Provenance)
	assert.False(t, r.SKUMatch)
	assert.False(t, r.QuantityMatch)
	assert.False(t, r.UnitMatch)
	assert.Nil(t, r.Right)
	assert.Empty(t, r.RightSource)
	assert.Equal(t, "present only on left", EnglishLabels.Summary(r))

	assert.Equal(t, internal.RightOnly, out[1].Provenance)
	assert.Nil(t, out[1].Left)
	assert.Equal(t, "present only on right", EnglishLabels.Summary(out[1]))
	assert.Equal(t, "仅供应链有", ChineseLabels.Summary(out[1]))
}

func TestReconcileToleranceBoundary(t *testing.T) {
	left := tableOf("", rec("F1", "I1", 1.0, nil))

	out, err := Reconcile(left, tableOf("", rec("F1", "I1", 1.25, nil)), 0.25)
	require.NoError(t, err)
	assert.True(t, out[0].QuantityMatch)

	out, err = Reconcile(left, tableOf("", rec("F1", "I1", 1.25+1e-9, nil)), 0.25)
	require.NoError(t, err)
	assert.False(t, out[0].QuantityMatch)

	out, err = Reconcile(left, tableOf("", rec("F1", "I1", 1.0, nil)), 0)
	require.NoError(t, err)
	assert.True(t, out[0].QuantityMatch)
}

func TestReconcileUnits(t *testing.T) {
	cases := []struct {
		name  string
		left  *string
		right *string
		want  bool
	}{
		{name: "equal", left: sp("g"), right: sp("g"), want: true},
		{name: "different", left: sp("g"), right: sp("kg"), want: false},
		{name: "case sensitive", left: sp("g"), right: sp("G"), want: false},
		{name: "both absent", want: true},
		{name: "left absent", right: sp("g"), want: false},
		{name: "right absent", left: sp("g"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Reconcile(
				tableOf("", rec("F1", "I1", 1, tc.left)),
				tableOf("", rec("F1", "I1", 1, tc.right)),
				0,
			)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out[0].UnitMatch)
			if !tc.want {
				assert.Equal(t, []internal.Difference{internal.DiffUnit}, out[0].Differences)
			}
		})
	}
}

func TestReconcileBothDifferencesSummary(t *testing.T) {
	out, err := Reconcile(
		tableOf("", rec("F1", "I1", 1, sp("g"))),
		tableOf("", rec("F1", "I1", 5, sp("kg"))),
		0.05,
	)
	require.NoError(t, err)
	assert.Equal(t, "quantity differs; unit differs", EnglishLabels.Summary(out[0]))
	assert.Equal(t, "用量不同；单位不同", ChineseLabels.Summary(out[0]))
}

func TestReconcileRejectsBadTolerance(t *testing.T) {
	_, err := Reconcile(tableOf(""), tableOf(""), -0.01)
	require.ErrorIs(t, err, ErrInvalidTolerance)

	_, err = Reconcile(tableOf(""), tableOf(""), math.NaN())
	require.ErrorIs(t, err, ErrInvalidTolerance)
}

func TestReconcileRowCountAndSymmetry(t *testing.T) {
	left := tableOf("",
		rec("F1", "I1", 1, nil),
		rec("F1", "I2", 1, nil),
		rec("F2", "I1", 1, nil),
	)
	right := tableOf("",
		rec("F1", "I2", 1, nil),
		rec("F3", "I1", 1, nil),
		rec("F3", "I2", 1, nil),
		rec("F3", "I3", 1, nil),
	)

	keys := map[internal.RecordKey]struct{}{}
	for _, r := range append(append([]internal.CanonicalRecord{}, left.Records...), right.Records...) {
		keys[r.Key()] = struct{}{}
	}

	lr, err := Reconcile(left, right, 0)
	require.NoError(t, err)
	rl, err := Reconcile(right, left, 0)
	require.NoError(t, err)

	assert.Len(t, lr, len(keys))
	assert.Len(t, rl, len(keys))

	lrCounts := CountRecords(lr)
	rlCounts := CountRecords(rl)
	assert.Equal(t, 2, lrCounts.LeftOnly)
	assert.Equal(t, 3, lrCounts.RightOnly)
	assert.Equal(t, lrCounts.LeftOnly, rlCounts.RightOnly)
	assert.Equal(t, lrCounts.RightOnly, rlCounts.LeftOnly)
	assert.Equal(t, lrCounts.Matched, rlCounts.Matched)
}

func TestReconcileOrdering(t *testing.T) {
	left := tableOf("", rec("F2", "I1", 1, nil), rec("F1", "I1", 1, nil))
	right := tableOf("", rec("F9", "I1", 1, nil), rec("F1", "I1", 1, nil), rec("F0", "I1", 1, nil))

	out, err := Reconcile(left, right, 0)
	require.NoError(t, err)

	got := []string{}
	for _, r := range out {
		got = append(got, r.FGCode)
	}
	assert.Equal(t, []string{"F2", "F1", "F9", "F0"}, got)
}

func TestReconcileNoFanOutOnDuplicateInput(t *testing.T) {
	left := tableOf("", rec("F1", "I1", 1, nil), rec("F1", "I1", 2, nil))
	right := tableOf("", rec("F1", "I1", 1, nil), rec("F1", "I1", 3, nil))

	out, err := Reconcile(left, right, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].QuantityMatch)
}

func TestReconcileEmptyInputs(t *testing.T) {
	out, err := Reconcile(tableOf(""), tableOf(""), 0.05)
	require.NoError(t, err)
	assert.Empty(t, out)
}
