package storage

import (
	"errors"
	"strings"
	"testing"

	"listing-search/models"
)

func TestBuildInsertPlaceholders(t *testing.T) {
	batch := []*models.Listing{
		{URL: "u1", Title: "A", Features: []string{"wifi"}},
		{URL: "u2", Title: "B"},
	}

	query, args := buildInsert(batch)

	if len(args) != 2*columnsPerRow {
		t.Fatalf("args: got %d, want %d", len(args), 2*columnsPerRow)
	}
	if !strings.Contains(query, "$1,") || !strings.Contains(query, "$26)") {
		t.Errorf("placeholders not numbered across rows: %s", query)
	}
	if strings.Contains(query, "$27") {
		t.Errorf("too many placeholders: %s", query)
	}
	if !strings.Contains(query, "ON CONFLICT (url) DO NOTHING") {
		t.Errorf("duplicates must be skipped: %s", query)
	}
	if args[0] != "u1" || args[columnsPerRow] != "u2" {
		t.Errorf("url args misplaced: %v, %v", args[0], args[columnsPerRow])
	}
}

func TestListingColumnsMatchesRowWidth(t *testing.T) {
	if n := len(strings.Split(listingColumns, ",")); n != columnsPerRow {
		t.Errorf("listingColumns has %d columns, columnsPerRow is %d", n, columnsPerRow)
	}
}

func TestNonNil(t *testing.T) {
	if got := nonNil(nil); got == nil || len(got) != 0 {
		t.Errorf("nonNil(nil) = %#v", got)
	}
	in := []string{"a"}
	if got := nonNil(in); len(got) != 1 || got[0] != "a" {
		t.Errorf("nonNil changed a non-nil slice: %v", got)
	}
}

type fakeResult struct {
	n   int64
	err error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.n, r.err }

func TestRowsAffected(t *testing.T) {
	n, err := rowsAffected(fakeResult{n: 7})
	if err != nil || n != 7 {
		t.Errorf("got %d, %v; want 7, nil", n, err)
	}

	driverErr := errors.New("not supported")
	if _, err := rowsAffected(fakeResult{err: driverErr}); !errors.Is(err, driverErr) {
		t.Errorf("driver error should be returned, got %v", err)
	}
}
