package services

import "listing-search/models"

// ListingStore holds the full, unfiltered result set of the last fetch.
// Every Replace bumps Version so dependents can tell their derived data is stale.
type ListingStore struct {
	listings []*models.Listing
	version  uint64
}

// NewListingStore creates an empty store.
func NewListingStore() *ListingStore {
	return &ListingStore{}
}

// Replace swaps the store contents wholesale. No merge with previous data.
func (s *ListingStore) Replace(listings []*models.Listing) {
	s.listings = make([]*models.Listing, len(listings))
	copy(s.listings, listings)
	s.version++
}

// All returns the stored listings in fetch order. The slice is a copy; the
// listings it points to must not be mutated.
func (s *ListingStore) All() []*models.Listing {
	out := make([]*models.Listing, len(s.listings))
	copy(out, s.listings)
	return out
}

// Len returns the number of stored listings.
func (s *ListingStore) Len() int {
	return len(s.listings)
}

// Version increases on every Replace.
func (s *ListingStore) Version() uint64 {
	return s.version
}

func (s *ListingStore) all() []*models.Listing {
	return s.listings
}
