package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"listing-search/models"
	"listing-search/source"
	"listing-search/utils"
)

// User-visible messages set by Session.
const (
	MsgFetchFailed  = "Failed to load listings. Please try again later."
	MsgNoResults    = "No listings found."
	MsgScrapeFailed = "Scraping failed. Please try again later."
	MsgCityRequired = "Please enter a city to scrape."
)

// Session owns the listing store, the search state and the last filter
// result. Every mutation re-runs the engine before returning.
//
// Loads may overlap: each one takes a ticket from a monotonic counter and a
// response is dropped if a newer one has already been applied.
type Session struct {
	mu sync.Mutex

	fetcher source.ListingFetcher
	trigger source.ScrapeTrigger
	cleaner *Cleaner
	logger  *utils.Logger

	store  *ListingStore
	index  *FacetIndex
	engine *Engine
	state  *models.SearchState
	result Result

	message    string
	vocabulary []string

	issued  uint64
	applied uint64
}

// NewSession creates a Session with an empty store. trigger may be nil when
// scraping is not available.
func NewSession(fetcher source.ListingFetcher, trigger source.ScrapeTrigger, itemsPerPage int, logger *utils.Logger) *Session {
	store := NewListingStore()
	index := NewFacetIndex(store)
	s := &Session{
		fetcher: fetcher,
		trigger: trigger,
		cleaner: NewCleaner(logger),
		logger:  logger,
		store:   store,
		index:   index,
		engine:  NewEngine(store),
		state:   models.NewSearchState(itemsPerPage),
	}
	s.recompute()
	return s
}

// Load fetches listings for query (empty for the full corpus) and replaces
// the store. It reports whether the response was applied successfully;
// failures only surface through Message.
func (s *Session) Load(ctx context.Context, query string) bool {
	ticket := s.nextTicket()
	s.logger.Debug("[session] Load #%d query=%q", ticket, query)

	listings, err := s.fetcher.FetchListings(ctx, query)
	return s.commit(ticket, listings, nil, err)
}

// LoadFiltered uses the server-assisted variant: the server pre-filters by
// term and features and also returns its feature vocabulary.
func (s *Session) LoadFiltered(ctx context.Context, term string, features []string) bool {
	ticket := s.nextTicket()
	s.logger.Debug("[session] LoadFiltered #%d term=%q features=%v", ticket, term, features)

	resp, err := s.fetcher.FetchFilters(ctx, term, features)
	if err != nil {
		return s.commit(ticket, nil, nil, err)
	}
	vocab := resp.Features
	if vocab == nil {
		vocab = []string{}
	}
	return s.commit(ticket, resp.Listings, vocab, nil)
}

func (s *Session) nextTicket() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

func (s *Session) commit(ticket uint64, listings []*models.Listing, vocab []string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket <= s.applied {
		s.logger.Debug("[session] Dropping stale response #%d (applied #%d)", ticket, s.applied)
		return false
	}
	s.applied = ticket

	if err != nil {
		s.logger.Warn("[session] Fetch failed: %v", err)
		s.store.Replace(nil)
		s.vocabulary = nil
		s.message = MsgFetchFailed
		s.recompute()
		return false
	}

	s.store.Replace(s.cleaner.Clean(listings))
	if vocab != nil {
		s.vocabulary = vocab
	}
	s.message = ""
	if s.store.Len() == 0 {
		s.message = MsgNoResults
	}
	s.recompute()
	s.logger.Info("[session] Loaded %d listings (%d after filters, %d pages)",
		s.store.Len(), len(s.result.Filtered), s.result.TotalPages)
	return true
}

// recompute must be called with mu held.
func (s *Session) recompute() {
	s.index.Sync(s.state)
	s.result = s.engine.Apply(s.state)
}

// SetSearchTerm changes the free-text query.
func (s *Session) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchTerm = term
	s.recompute()
}

// Select adds value to the selection of facet name.
func (s *Session) Select(name models.FacetName, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectLocked(name, value) {
		s.recompute()
	}
}

// Deselect removes value from the selection of facet name.
func (s *Session) Deselect(name models.FacetName, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deselectLocked(name, value) {
		s.recompute()
	}
}

// Toggle selects value if it is not selected and deselects it otherwise.
func (s *Session) Toggle(name models.FacetName, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.state.Filter(name)
	if f == nil {
		return
	}
	if f.IsSelected(value) {
		s.deselectLocked(name, value)
	} else {
		s.selectLocked(name, value)
	}
	s.recompute()
}

func (s *Session) selectLocked(name models.FacetName, value string) bool {
	f := s.state.Filter(name)
	if f == nil || f.IsSelected(value) {
		return false
	}
	f.Selected = append(f.Selected, value)
	return true
}

func (s *Session) deselectLocked(name models.FacetName, value string) bool {
	f := s.state.Filter(name)
	if f == nil || !f.IsSelected(value) {
		return false
	}
	kept := f.Selected[:0:0]
	for _, v := range f.Selected {
		if v != value {
			kept = append(kept, v)
		}
	}
	f.Selected = kept
	return true
}

// ClearFilter empties the selection of facet name.
func (s *Session) ClearFilter(name models.FacetName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.state.Filter(name)
	if f == nil || len(f.Selected) == 0 {
		return
	}
	f.Selected = nil
	s.recompute()
}

// SetItemsPerPage changes the page size; non-positive values are ignored.
func (s *Session) SetItemsPerPage(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ItemsPerPage = n
	s.recompute()
}

// NextPage moves forward one page if there is one.
func (s *Session) NextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NextPage(s.state, s.result.TotalPages)
}

// PrevPage moves back one page if there is one.
func (s *Session) PrevPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PrevPage(s.state, s.result.TotalPages)
}

// GoToPage jumps to page n when it exists.
func (s *Session) GoToPage(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return GoToPage(s.state, s.result.TotalPages, n)
}

// GoToPageInput jumps to the page typed by the user, ignoring bad input.
func (s *Session) GoToPageInput(raw string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return GoToPageInput(s.state, s.result.TotalPages, raw)
}

// Listings returns the listings on the current page.
func (s *Session) Listings() []*models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Page(s.result.Filtered, s.state.CurrentPage, s.state.PageSize())
}

// Filtered returns the whole filtered sequence.
func (s *Session) Filtered() []*models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Listing, len(s.result.Filtered))
	copy(out, s.result.Filtered)
	return out
}

// CurrentPage returns the 1-based current page.
func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentPage
}

// ItemsPerPage returns the effective page size.
func (s *Session) ItemsPerPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PageSize()
}

// TotalPages returns the page count of the filtered sequence.
func (s *Session) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.TotalPages
}

// Window returns the page buttons to render as [left, right).
func (s *Session) Window() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return VisibleWindow(s.state.CurrentPage, s.result.TotalPages)
}

// Options returns the facet options derived from the current store.
func (s *Session) Options() FacetOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Options()
}

// Vocabulary returns the feature list reported by the server on the last
// LoadFiltered, or nil.
func (s *Session) Vocabulary() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vocabulary
}

// Selected returns a copy of the selection of facet name.
func (s *Session) Selected(name models.FacetName) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f := s.state.Filter(name); f != nil {
		return append([]string(nil), f.Selected...)
	}
	return nil
}

// Message returns the last user-visible message, or "".
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Scrape asks the backend to scrape city.
func (s *Session) Scrape(ctx context.Context, city string) (*models.ScrapeResult, bool) {
	city = strings.TrimSpace(city)
	if city == "" {
		s.setMessage(MsgCityRequired)
		return nil, false
	}
	if s.trigger == nil {
		s.setMessage(MsgScrapeFailed)
		return nil, false
	}

	res, err := s.trigger.TriggerScrape(ctx, city)
	if err != nil {
		s.logger.Warn("[session] Scrape of %s failed: %v", city, err)
		s.setMessage(MsgScrapeFailed)
		return nil, false
	}
	s.setMessage(fmt.Sprintf("Scraped %d listings in %s.", len(res.Places), res.City))
	return res, true
}

// ScrapeAll asks the backend to scrape every US state and Canadian province.
func (s *Session) ScrapeAll(ctx context.Context) (*models.BulkScrapeResult, bool) {
	if s.trigger == nil {
		s.setMessage(MsgScrapeFailed)
		return nil, false
	}

	res, err := s.trigger.TriggerBulkScrape(ctx)
	if err != nil {
		s.logger.Warn("[session] Bulk scrape failed: %v", err)
		s.setMessage(MsgScrapeFailed)
		return nil, false
	}
	s.setMessage(fmt.Sprintf("Scraped %d listings (%d US, %d Canada).",
		res.TotalListings, res.USListings, res.CanadaListings))
	return res, true
}

func (s *Session) setMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = msg
}
