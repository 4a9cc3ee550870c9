package services

import (
	"reflect"
	"testing"

	"listing-search/models"
	"listing-search/utils"
)

func newTestLogger() *utils.Logger { return utils.Discard() }

func TestCleanerDropsEmptyURL(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.Listing{
		{Title: "No URL", Price: "$100", URL: "  "},
		{Title: "Has URL", Price: "$200", URL: "https://airbnb.com/rooms/1"},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 listing after dropping empty URL, got %d", len(cleaned))
	}
	if cleaned[0].Title != "Has URL" {
		t.Errorf("kept listing: got %q, want %q", cleaned[0].Title, "Has URL")
	}
}

func TestCleanerDeduplicatesURL(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.Listing{
		{Title: "A", URL: "https://airbnb.com/rooms/1"},
		{Title: "B", URL: "https://airbnb.com/rooms/1 "},
		{Title: "C", URL: "https://airbnb.com/rooms/2"},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 2 {
		t.Fatalf("expected 2 listings after deduplication, got %d", len(cleaned))
	}
	if cleaned[0].Title != "A" || cleaned[1].Title != "C" {
		t.Errorf("order: got %q,%q, want A,C", cleaned[0].Title, cleaned[1].Title)
	}
}

func TestCleanerNormalisesText(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.Listing{{
		URL:      "https://airbnb.com/rooms/1",
		Title:    "  Cosy \n  loft ",
		Location: " Denver ",
		Features: []string{" wifi", "pool", "wifi", "", "  "},
	}}

	got := c.Clean(raw)[0]
	if got.Title != "Cosy loft" {
		t.Errorf("Title: got %q, want %q", got.Title, "Cosy loft")
	}
	if got.Location != "Denver" {
		t.Errorf("Location: got %q, want %q", got.Location, "Denver")
	}
	if want := []string{"wifi", "pool"}; !reflect.DeepEqual(got.Features, want) {
		t.Errorf("Features: got %v, want %v", got.Features, want)
	}
}

func TestCleanerDoesNotMutateInput(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := &models.Listing{URL: "https://airbnb.com/rooms/1", Title: "  spaced  "}

	out := c.Clean([]*models.Listing{in})
	if in.Title != "  spaced  " {
		t.Errorf("input mutated: %q", in.Title)
	}
	if out[0] == in {
		t.Error("Clean returned the input pointer, want a copy")
	}
}
