package services

import (
	"listing-search/models"
	"listing-search/utils"
)

// FacetOptions maps a facet to its ordered, distinct options.
type FacetOptions map[models.FacetName][]string

// DeriveOptions computes the available facet options from the listings.
// Features and Location keep first-seen order; PriceRange is fixed. Blank
// values are not offered as options.
func DeriveOptions(listings []*models.Listing) FacetOptions {
	features := utils.NewOrderedSet()
	locations := utils.NewOrderedSet()

	for _, l := range listings {
		for _, f := range l.Features {
			if f != "" {
				features.Add(f)
			}
		}
		if l.Location != "" {
			locations.Add(l.Location)
		}
	}

	return FacetOptions{
		models.FacetFeatures:   features.Values(),
		models.FacetPriceRange: append([]string(nil), models.PriceRangeOptions...),
		models.FacetLocation:   locations.Values(),
	}
}

// FacetIndex caches DeriveOptions for a store and recomputes whenever the
// store version moves.
type FacetIndex struct {
	store   *ListingStore
	version uint64
	valid   bool
	options FacetOptions
}

// NewFacetIndex creates an index over store.
func NewFacetIndex(store *ListingStore) *FacetIndex {
	return &FacetIndex{store: store}
}

// Options returns the facet options for the current store contents.
func (fi *FacetIndex) Options() FacetOptions {
	if !fi.valid || fi.version != fi.store.Version() {
		fi.options = DeriveOptions(fi.store.all())
		fi.version = fi.store.Version()
		fi.valid = true
	}
	return fi.options
}

// Sync copies the derived options into the state's filters. Selections are
// left untouched, stale ones included.
func (fi *FacetIndex) Sync(state *models.SearchState) {
	opts := fi.Options()
	for _, f := range state.Filters {
		if o, ok := opts[f.Name]; ok {
			f.Options = append([]string(nil), o...)
		}
	}
}
