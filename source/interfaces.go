package source

import (
	"context"
	"errors"

	"listing-search/models"
)

// ErrUnavailable is the single failure signal of the listing source
// boundary. Transport errors, non-2xx responses and undecodable bodies all
// wrap it.
var ErrUnavailable = errors.New("listing source unavailable")

// ListingFetcher supplies raw listings.
type ListingFetcher interface {
	// FetchListings returns listings matching the optional city/text query,
	// or the full corpus when query is empty.
	FetchListings(ctx context.Context, query string) ([]*models.Listing, error)

	// FetchFilters lets the server pre-filter by search term and required
	// features, and returns the feature vocabulary alongside.
	FetchFilters(ctx context.Context, searchTerm string, features []string) (*models.FiltersResponse, error)
}

// ScrapeTrigger asks the backend to scrape new listings.
type ScrapeTrigger interface {
	TriggerScrape(ctx context.Context, city string) (*models.ScrapeResult, error)
	TriggerBulkScrape(ctx context.Context) (*models.BulkScrapeResult, error)
}
