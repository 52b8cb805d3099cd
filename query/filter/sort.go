package filter

// SortOrder is the direction of a sort key
type SortOrder int

const (
	// Ascending sorts smallest first
	Ascending SortOrder = iota
	// Descending sorts largest first
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// SortBy is one ordering key. An empty Property denotes natural order
// (or reverse order when descending).
type SortBy struct {
	Property string
	Order    SortOrder
}

var (
	// NaturalOrder sorts by the natural order of the features
	NaturalOrder = SortBy{Order: Ascending}
	// ReverseOrder sorts by the reverse natural order of the features
	ReverseOrder = SortBy{Order: Descending}
)

// IsNatural reports whether the key is natural or reverse order
func (s SortBy) IsNatural() bool {
	return s.Property == ""
}

// Asc sorts by the property ascending
func Asc(property string) SortBy {
	return SortBy{Property: property, Order: Ascending}
}

// Desc sorts by the property descending
func Desc(property string) SortBy {
	return SortBy{Property: property, Order: Descending}
}
