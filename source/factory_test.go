package source

import (
	"context"
	"errors"
	"testing"

	"listing-search/config"
	"listing-search/models"
	"listing-search/utils"
)

type failingFetcher struct{}

func (failingFetcher) FetchListings(context.Context, string) ([]*models.Listing, error) {
	return nil, errors.New("connection refused")
}

func (failingFetcher) FetchFilters(context.Context, string, []string) (*models.FiltersResponse, error) {
	return nil, errors.New("connection refused")
}

func TestGuardWrapsErrors(t *testing.T) {
	g := Guard(failingFetcher{})

	if _, err := g.FetchListings(context.Background(), "x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("FetchListings: expected ErrUnavailable, got %v", err)
	}
	if _, err := g.FetchFilters(context.Background(), "x", nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("FetchFilters: expected ErrUnavailable, got %v", err)
	}
}

func TestOpenMockMode(t *testing.T) {
	cfg := &config.Config{SourceMode: config.ModeMock}

	src, err := Open(context.Background(), cfg, utils.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer src.Close()

	if _, ok := src.Fetcher.(*MockSource); !ok {
		t.Errorf("fetcher: got %T, want *MockSource", src.Fetcher)
	}
	if _, ok := src.Trigger.(*MockSource); !ok {
		t.Errorf("trigger: got %T, want *MockSource", src.Trigger)
	}
}

func TestOpenUnknownMode(t *testing.T) {
	cfg := &config.Config{SourceMode: "ftp"}
	if _, err := Open(context.Background(), cfg, utils.Discard()); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestOpenHTTPModeSharesClient(t *testing.T) {
	cfg := &config.Config{SourceMode: config.ModeHTTP, ListingSourceURL: "http://localhost:5000"}

	src, err := Open(context.Background(), cfg, utils.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer src.Close()

	client, ok := src.Fetcher.(*HTTPClient)
	if !ok {
		t.Fatalf("fetcher: got %T, want *HTTPClient", src.Fetcher)
	}
	if trigger, ok := src.Trigger.(*HTTPClient); !ok || trigger != client {
		t.Errorf("trigger should be the fetcher's client, got %T", src.Trigger)
	}
}
