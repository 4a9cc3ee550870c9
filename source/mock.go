package source

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"listing-search/models"
)

// MockSource serves a fixed in-memory corpus. It mirrors the backend's
// server-side filtering so the rest of the pipeline can run offline.
type MockSource struct {
	listings []*models.Listing
}

var mockCities = []struct {
	location, state, province, country string
}{
	{"Denver", "Colorado", "", "USA"},
	{"Boulder", "Colorado", "", "USA"},
	{"Austin", "Texas", "", "USA"},
	{"Toronto", "", "Ontario", "Canada"},
	{"Vancouver", "", "British Columbia", "Canada"},
}

var mockFeatures = []string{"wifi", "kitchen", "pool", "free parking", "hot tub", "washer"}

// NewMockSource builds a corpus of n listings spread over a few cities.
func NewMockSource(n int) *MockSource {
	listings := make([]*models.Listing, 0, n)
	for i := 0; i < n; i++ {
		city := mockCities[i%len(mockCities)]
		features := []string{mockFeatures[i%len(mockFeatures)]}
		if i%2 == 0 {
			features = append(features, "wifi")
		}
		if i%3 == 0 {
			features = append(features, "kitchen")
		}
		listings = append(listings, &models.Listing{
			URL:        fmt.Sprintf("https://www.airbnb.com/rooms/%d", 1000+i),
			Title:      fmt.Sprintf("Place #%d in %s", i+1, city.location),
			PictureURL: fmt.Sprintf("https://a0.muscache.com/im/pictures/%d.jpg", 1000+i),
			Price:      fmt.Sprintf("$%d", 35+(i*37)%300),
			Rating:     fmt.Sprintf("4.%d", i%10),
			Location:   city.location,
			State:      city.state,
			Province:   city.province,
			Region:     city.state + city.province,
			Country:    city.country,
			Features:   features,
		})
	}
	return &MockSource{listings: listings}
}

// NewMockSourceFrom serves exactly the given listings.
func NewMockSourceFrom(listings []*models.Listing) *MockSource {
	return &MockSource{listings: listings}
}

// FetchListings matches query case-insensitively against location.
func (m *MockSource) FetchListings(ctx context.Context, query string) ([]*models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	return m.match(query, nil), nil
}

// FetchFilters requires every feature to be present and returns the sorted
// feature vocabulary of the whole corpus.
func (m *MockSource) FetchFilters(ctx context.Context, searchTerm string, features []string) (*models.FiltersResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}

	vocab := make(map[string]struct{})
	for _, l := range m.listings {
		for _, f := range l.Features {
			vocab[f] = struct{}{}
		}
	}
	all := make([]string, 0, len(vocab))
	for f := range vocab {
		all = append(all, f)
	}
	sort.Strings(all)

	return &models.FiltersResponse{Features: all, Listings: m.match(searchTerm, features)}, nil
}

// TriggerScrape reports the corpus entries for city as freshly scraped places.
func (m *MockSource) TriggerScrape(ctx context.Context, city string) (*models.ScrapeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	res := &models.ScrapeResult{City: city, Places: []*models.ScrapedPlace{}}
	for _, l := range m.match(city, nil) {
		res.Places = append(res.Places, &models.ScrapedPlace{
			URL:        l.URL,
			Title:      l.Title,
			PictureURL: l.PictureURL,
			Price:      l.Price,
			Rating:     l.Rating,
			Location:   l.Location,
			Features:   l.Features,
		})
	}
	return res, nil
}

// TriggerBulkScrape counts the corpus by country.
func (m *MockSource) TriggerBulkScrape(ctx context.Context) (*models.BulkScrapeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	res := &models.BulkScrapeResult{Message: "Scraping completed"}
	for _, l := range m.listings {
		switch l.Country {
		case "USA":
			res.USListings++
		case "Canada":
			res.CanadaListings++
		}
		res.TotalListings++
	}
	return res, nil
}

func (m *MockSource) match(query string, features []string) []*models.Listing {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]*models.Listing, 0, len(m.listings))
	for _, l := range m.listings {
		if q != "" && !strings.Contains(strings.ToLower(l.Location), q) {
			continue
		}
		if !hasAll(l, features) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func hasAll(l *models.Listing, features []string) bool {
	for _, f := range features {
		if !l.HasFeature(f) {
			return false
		}
	}
	return true
}
