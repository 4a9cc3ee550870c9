package models

// FacetName identifies one filterable dimension.
type FacetName string

const (
	FacetFeatures   FacetName = "Features"
	FacetPriceRange FacetName = "PriceRange"
	FacetLocation   FacetName = "Location"
)

// DefaultItemsPerPage is the page size used when none is configured.
const DefaultItemsPerPage = 25

// PriceRangeOptions are the fixed options of the PriceRange facet.
var PriceRangeOptions = []string{"$0-$50", "$51-$100", "$101-$200", "$201+"}

// FacetFilter is one filterable dimension together with the user's selection.
// Selected may hold values that are no longer among the derived options.
type FacetFilter struct {
	Name     FacetName
	Options  []string
	Selected []string
}

// IsSelected reports whether value is part of the current selection.
func (f *FacetFilter) IsSelected(value string) bool {
	for _, s := range f.Selected {
		if s == value {
			return true
		}
	}
	return false
}

// SearchState is the mutable query context of a search session.
type SearchState struct {
	SearchTerm   string
	Filters      []*FacetFilter
	CurrentPage  int
	ItemsPerPage int
}

// NewSearchState returns a state with the three standard facets in display
// order, page 1 and the given page size.
func NewSearchState(itemsPerPage int) *SearchState {
	if itemsPerPage <= 0 {
		itemsPerPage = DefaultItemsPerPage
	}
	return &SearchState{
		Filters: []*FacetFilter{
			{Name: FacetFeatures},
			{Name: FacetPriceRange, Options: append([]string(nil), PriceRangeOptions...)},
			{Name: FacetLocation},
		},
		CurrentPage:  1,
		ItemsPerPage: itemsPerPage,
	}
}

// Filter returns the facet with the given name, or nil.
func (s *SearchState) Filter(name FacetName) *FacetFilter {
	for _, f := range s.Filters {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// PageSize returns ItemsPerPage, falling back to the default for
// non-positive values.
func (s *SearchState) PageSize() int {
	if s.ItemsPerPage <= 0 {
		return DefaultItemsPerPage
	}
	return s.ItemsPerPage
}
