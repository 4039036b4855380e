package internal

type LayoutKind string

const (
	LayoutRestaurant LayoutKind = "restaurant"
	LayoutSupplier   LayoutKind = "supplier"
)

type Provenance string

const (
	LeftOnly  Provenance = "left_only"
	RightOnly Provenance = "right_only"
	Matched   Provenance = "matched"
)

type Difference string

const (
	DiffQuantity Difference = "quantity"
	DiffUnit     Difference = "unit"
)

type RecordKey struct {
	FGCode   string
	ItemCode string
}

type CanonicalRecord struct {
	FGCode      string
	ItemCode    string
	ItemName    *string
	Dosage      float64
	Unit        *string
	ProductName *string
	Display     map[string]string
}

func (r CanonicalRecord) Key() RecordKey {
	return RecordKey{FGCode: r.FGCode, ItemCode: r.ItemCode}
}

type NormalizeStats struct {
	RowsRead          int
	DroppedMissingKey int
	DroppedBadDosage  int
	DroppedDuplicate  int
	Kept              int
}

func (s NormalizeStats) Dropped() int {
	return s.DroppedMissingKey + s.DroppedBadDosage + s.DroppedDuplicate
}

type CanonicalTable struct {
	Layout          LayoutKind
	Source          string
	AmbiguousLayout bool
	HasItemName     bool
	HasUnit         bool
	HasProductName  bool
	DisplayColumns  []string
	Records         []CanonicalRecord
	Stats           NormalizeStats
}

type ReconciledRecord struct {
	FGCode        string
	ItemCode      string
	Left          *CanonicalRecord
	Right         *CanonicalRecord
	LeftSource    string
	RightSource   string
	Provenance    Provenance
	SKUMatch      bool
	QuantityMatch bool
	UnitMatch     bool
	Differences   []Difference
}
