package services

import (
	"strconv"
	"strings"

	"listing-search/models"
)

// Result is the output of a filter pass.
type Result struct {
	Filtered   []*models.Listing
	TotalPages int
}

// Engine applies a SearchState to the contents of a ListingStore.
type Engine struct {
	store *ListingStore
}

// NewEngine creates an Engine reading from store.
func NewEngine(store *ListingStore) *Engine {
	return &Engine{store: store}
}

// Apply recomputes the filtered sequence and the page count, and moves the
// state back to page 1.
func (e *Engine) Apply(state *models.SearchState) Result {
	filtered := Filter(e.store.all(), state)
	state.CurrentPage = 1
	return Result{
		Filtered:   filtered,
		TotalPages: TotalPages(len(filtered), state.PageSize()),
	}
}

// Filter runs the text stage and then the facet conjunction over listings,
// keeping input order. Selections are matched as written, so a feature or
// location absent from listings matches nothing.
func Filter(listings []*models.Listing, state *models.SearchState) []*models.Listing {
	term := strings.ToLower(strings.TrimSpace(state.SearchTerm))
	active := activeFilters(state.Filters)

	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if term != "" && !matchesText(l, term) {
			continue
		}
		if !matchesFacets(l, active) {
			continue
		}
		out = append(out, l)
	}
	return out
}

type activeFilter struct {
	name     models.FacetName
	selected []string
	ranges   []PriceRange
}

// activeFilters drops empty selections. Unparseable price ranges are
// skipped since they can never be one of the fixed options.
func activeFilters(filters []*models.FacetFilter) []activeFilter {
	var active []activeFilter
	for _, f := range filters {
		if len(f.Selected) == 0 {
			continue
		}

		af := activeFilter{name: f.Name}
		for _, s := range f.Selected {
			if f.Name == models.FacetPriceRange {
				r, ok := ParsePriceRange(s)
				if !ok {
					continue
				}
				af.ranges = append(af.ranges, r)
			}
			af.selected = append(af.selected, s)
		}
		if len(af.selected) == 0 {
			continue
		}
		active = append(active, af)
	}
	return active
}

func matchesText(l *models.Listing, term string) bool {
	for _, field := range []string{l.Location, l.Region, l.Country, l.State, l.Province} {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func matchesFacets(l *models.Listing, active []activeFilter) bool {
	for _, f := range active {
		switch f.name {
		case models.FacetFeatures:
			for _, want := range f.selected {
				if !l.HasFeature(want) {
					return false
				}
			}
		case models.FacetPriceRange:
			price := ParsePrice(l.Price)
			inAny := false
			for _, r := range f.ranges {
				if r.Contains(price) {
					inAny = true
					break
				}
			}
			if !inAny {
				return false
			}
		case models.FacetLocation:
			found := false
			for _, loc := range f.selected {
				if l.Location == loc {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// ParsePrice strips every non-digit from raw and parses the rest. Empty or
// unparseable input yields 0.
func ParsePrice(raw string) int {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// PriceRange is a closed interval [Min, Max]; Max is ignored when Unbounded.
type PriceRange struct {
	Min       int
	Max       int
	Unbounded bool
}

// Contains reports whether price falls in the range.
func (r PriceRange) Contains(price int) bool {
	if price < r.Min {
		return false
	}
	return r.Unbounded || price <= r.Max
}

// ParsePriceRange parses "$51-$100" style bounds and "$201+" open ranges.
func ParsePriceRange(s string) (PriceRange, bool) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "+") {
		lo, err := strconv.Atoi(stripDollar(strings.TrimSuffix(s, "+")))
		if err != nil {
			return PriceRange{}, false
		}
		return PriceRange{Min: lo, Unbounded: true}, true
	}

	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return PriceRange{}, false
	}
	lo, err := strconv.Atoi(stripDollar(parts[0]))
	if err != nil {
		return PriceRange{}, false
	}
	hi, err := strconv.Atoi(stripDollar(parts[1]))
	if err != nil {
		return PriceRange{}, false
	}
	return PriceRange{Min: lo, Max: hi}, true
}

func stripDollar(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "$", ""))
}

// PriceRangeLabel returns the first fixed PriceRange option containing price.
func PriceRangeLabel(price int) string {
	for _, opt := range models.PriceRangeOptions {
		if r, ok := ParsePriceRange(opt); ok && r.Contains(price) {
			return opt
		}
	}
	return ""
}
