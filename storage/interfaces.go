package storage

import (
	"context"

	"listing-search/models"
)

// ListingImporter is the interface any database backend must satisfy to be
// seeded from a listing file.
type ListingImporter interface {
	Import(ctx context.Context, listings []*models.Listing) (int, error)
	Close() error
}

// ListingExporter writes a result set out of the application.
type ListingExporter interface {
	WriteListings(listings []*models.Listing) error
	Close() error
}
