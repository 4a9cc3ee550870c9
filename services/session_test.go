package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"listing-search/models"
	"listing-search/source"
)

// fakeSource serves canned listings per query. A query listed in block
// waits for release before answering.
type fakeSource struct {
	byQuery  map[string][]*models.Listing
	vocab    []string
	err      error
	scrapes  int
	block    map[string]chan struct{}
	started  chan string
	lastTerm string
	lastFeat []string
}

func (f *fakeSource) FetchListings(ctx context.Context, query string) ([]*models.Listing, error) {
	if f.started != nil {
		f.started <- query
	}
	if ch, ok := f.block[query]; ok {
		<-ch
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.byQuery[query], nil
}

func (f *fakeSource) FetchFilters(ctx context.Context, term string, features []string) (*models.FiltersResponse, error) {
	f.lastTerm, f.lastFeat = term, features
	if f.err != nil {
		return nil, f.err
	}
	return &models.FiltersResponse{Features: f.vocab, Listings: f.byQuery[term]}, nil
}

func (f *fakeSource) TriggerScrape(ctx context.Context, city string) (*models.ScrapeResult, error) {
	f.scrapes++
	if f.err != nil {
		return nil, f.err
	}
	return &models.ScrapeResult{City: city, Places: []*models.ScrapedPlace{{URL: "p1"}, {URL: "p2"}}}, nil
}

func (f *fakeSource) TriggerBulkScrape(ctx context.Context) (*models.BulkScrapeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.BulkScrapeResult{TotalListings: 5, USListings: 3, CanadaListings: 2}, nil
}

func newTestSession(src *fakeSource, perPage int) *Session {
	return NewSession(src, src, perPage, newTestLogger())
}

func TestSessionLoadAndFilter(t *testing.T) {
	src := &fakeSource{byQuery: map[string][]*models.Listing{"": sampleListings()}}
	s := newTestSession(src, 25)

	if !s.Load(context.Background(), "") {
		t.Fatalf("Load failed: %q", s.Message())
	}
	if got := len(s.Filtered()); got != 5 {
		t.Errorf("Filtered: got %d, want 5", got)
	}
	if s.Message() != "" {
		t.Errorf("Message: got %q, want empty", s.Message())
	}

	s.Select(models.FacetFeatures, "pool")
	if got := len(s.Filtered()); got != 2 {
		t.Errorf("after pool: got %d, want 2", got)
	}
	s.SetSearchTerm("bali")
	if got := urls(s.Filtered()); !reflect.DeepEqual(got, []string{"https://airbnb.com/rooms/4"}) {
		t.Errorf("after bali: got %v", got)
	}
	s.ClearFilter(models.FacetFeatures)
	s.SetSearchTerm("")
	if got := len(s.Filtered()); got != 5 {
		t.Errorf("after clearing: got %d, want 5", got)
	}
}

func TestSessionFetchFailureEmptiesStore(t *testing.T) {
	src := &fakeSource{byQuery: map[string][]*models.Listing{"": sampleListings()}}
	s := newTestSession(src, 25)
	s.Load(context.Background(), "")

	src.err = fmt.Errorf("%w: connection refused", source.ErrUnavailable)
	if s.Load(context.Background(), "") {
		t.Fatal("Load reported success on failure")
	}
	if len(s.Filtered()) != 0 {
		t.Errorf("Filtered: got %d, want 0", len(s.Filtered()))
	}
	if s.TotalPages() != 1 {
		t.Errorf("TotalPages: got %d, want 1", s.TotalPages())
	}
	if s.Message() != MsgFetchFailed {
		t.Errorf("Message: got %q, want %q", s.Message(), MsgFetchFailed)
	}
}

func TestSessionEmptyResultMessage(t *testing.T) {
	s := newTestSession(&fakeSource{}, 25)
	if !s.Load(context.Background(), "nowhere") {
		t.Fatal("empty load should still succeed")
	}
	if s.Message() != MsgNoResults {
		t.Errorf("Message: got %q, want %q", s.Message(), MsgNoResults)
	}
}

func TestSessionDeduplicatesFetchedBatch(t *testing.T) {
	dup := append(sampleListings(), &models.Listing{URL: "https://airbnb.com/rooms/1", Title: "dup"})
	s := newTestSession(&fakeSource{byQuery: map[string][]*models.Listing{"": dup}}, 25)
	s.Load(context.Background(), "")

	if got := len(s.Filtered()); got != 5 {
		t.Errorf("Filtered: got %d, want 5", got)
	}
}

func TestSessionPagination(t *testing.T) {
	src := &fakeSource{byQuery: map[string][]*models.Listing{"": makeListings(30)}}
	s := newTestSession(src, 25)
	s.Load(context.Background(), "")

	if s.TotalPages() != 2 {
		t.Fatalf("TotalPages: got %d, want 2", s.TotalPages())
	}
	if s.GoToPage(3) {
		t.Error("GoToPage(3) accepted")
	}
	if !s.GoToPage(2) {
		t.Fatal("GoToPage(2) refused")
	}
	if got := len(s.Listings()); got != 5 {
		t.Errorf("page 2 listings: got %d, want 5", got)
	}
	if s.NextPage() {
		t.Error("NextPage past the end accepted")
	}

	s.SetSearchTerm("")
	if s.CurrentPage() != 1 {
		t.Errorf("CurrentPage after search change: got %d, want 1", s.CurrentPage())
	}

	s.SetItemsPerPage(10)
	if s.TotalPages() != 3 {
		t.Errorf("TotalPages with 10 per page: got %d, want 3", s.TotalPages())
	}
	if left, right := s.Window(); left != 1 || right != 3 {
		t.Errorf("Window: got [%d,%d), want [1,3)", left, right)
	}
}

func TestSessionSelectionSurvivesRefresh(t *testing.T) {
	src := &fakeSource{byQuery: map[string][]*models.Listing{
		"":     sampleListings(),
		"tiny": {{URL: "x", Features: []string{"wifi"}}},
	}}
	s := newTestSession(src, 25)
	s.Load(context.Background(), "")
	s.Select(models.FacetFeatures, "pool")

	s.Load(context.Background(), "tiny")
	if got := s.Selected(models.FacetFeatures); !reflect.DeepEqual(got, []string{"pool"}) {
		t.Errorf("Selected: got %v, want [pool]", got)
	}
	if got := len(s.Filtered()); got != 0 {
		t.Errorf("no refreshed listing has pool, got %d listings", got)
	}
	if got := s.Message(); got != "" {
		t.Errorf("a successful non-empty load should clear the message, got %q", got)
	}

	s.Deselect(models.FacetFeatures, "pool")
	if got := len(s.Filtered()); got != 1 {
		t.Errorf("after deselect: got %d, want 1", got)
	}
}

func TestSessionConcurrentToggles(t *testing.T) {
	s := newTestSession(&fakeSource{byQuery: map[string][]*models.Listing{"": sampleListings()}}, 25)
	s.Load(context.Background(), "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Toggle(models.FacetFeatures, "pool")
		}()
	}
	wg.Wait()

	if got := s.Selected(models.FacetFeatures); len(got) != 0 {
		t.Errorf("an even number of toggles should leave nothing selected, got %v", got)
	}
	if got := len(s.Filtered()); got != 5 {
		t.Errorf("Filtered: got %d, want 5", got)
	}
}

func TestSessionToggle(t *testing.T) {
	s := newTestSession(&fakeSource{byQuery: map[string][]*models.Listing{"": sampleListings()}}, 25)
	s.Load(context.Background(), "")

	s.Toggle(models.FacetLocation, "Tokyo")
	if got := len(s.Filtered()); got != 2 {
		t.Errorf("Tokyo selected: got %d, want 2", got)
	}
	s.Toggle(models.FacetLocation, "Tokyo")
	if got := len(s.Filtered()); got != 5 {
		t.Errorf("Tokyo deselected: got %d, want 5", got)
	}
}

func TestSessionDropsStaleResponse(t *testing.T) {
	old := []*models.Listing{{URL: "old"}}
	fresh := []*models.Listing{{URL: "fresh"}}
	release := make(chan struct{})
	src := &fakeSource{
		byQuery: map[string][]*models.Listing{"slow": old, "fast": fresh},
		block:   map[string]chan struct{}{"slow": release},
		started: make(chan string, 2),
	}
	s := newTestSession(src, 25)

	done := make(chan bool)
	go func() { done <- s.Load(context.Background(), "slow") }()
	<-src.started

	if !s.Load(context.Background(), "fast") {
		t.Fatal("fast load was not applied")
	}
	<-src.started
	close(release)

	if <-done {
		t.Error("slow response overwrote a newer one")
	}
	if got := urls(s.Filtered()); !reflect.DeepEqual(got, []string{"fresh"}) {
		t.Errorf("store: got %v, want [fresh]", got)
	}
}

func TestSessionLoadFiltered(t *testing.T) {
	src := &fakeSource{
		byQuery: map[string][]*models.Listing{"bangkok": sampleListings()[:2]},
		vocab:   []string{"kitchen", "pool", "wifi"},
	}
	s := newTestSession(src, 25)

	if !s.LoadFiltered(context.Background(), "bangkok", []string{"wifi"}) {
		t.Fatal("LoadFiltered failed")
	}
	if src.lastTerm != "bangkok" || !reflect.DeepEqual(src.lastFeat, []string{"wifi"}) {
		t.Errorf("server got term=%q features=%v", src.lastTerm, src.lastFeat)
	}
	if !reflect.DeepEqual(s.Vocabulary(), src.vocab) {
		t.Errorf("Vocabulary: got %v, want %v", s.Vocabulary(), src.vocab)
	}
	if want := []string{"pool", "wifi"}; !reflect.DeepEqual(s.Options()[models.FacetFeatures], want) {
		t.Errorf("derived Features: got %v, want %v", s.Options()[models.FacetFeatures], want)
	}
}

func TestSessionScrape(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession(src, 25)

	if _, ok := s.Scrape(context.Background(), "  "); ok {
		t.Error("blank city accepted")
	}
	if s.Message() != MsgCityRequired || src.scrapes != 0 {
		t.Errorf("blank city: message %q, scrapes %d", s.Message(), src.scrapes)
	}

	res, ok := s.Scrape(context.Background(), "Denver")
	if !ok || len(res.Places) != 2 {
		t.Fatalf("Scrape: ok=%v res=%+v", ok, res)
	}
	if s.Message() != "Scraped 2 listings in Denver." {
		t.Errorf("Message: got %q", s.Message())
	}

	src.err = errors.New("boom")
	if _, ok := s.ScrapeAll(context.Background()); ok {
		t.Error("ScrapeAll reported success on failure")
	}
	if s.Message() != MsgScrapeFailed {
		t.Errorf("Message: got %q, want %q", s.Message(), MsgScrapeFailed)
	}
}

func TestSessionWithoutTrigger(t *testing.T) {
	s := NewSession(&fakeSource{}, nil, 25, newTestLogger())
	if _, ok := s.Scrape(context.Background(), "Denver"); ok {
		t.Error("Scrape without trigger succeeded")
	}
}
