package models

import "encoding/json"

// Listing is one scraped rental unit as returned by the listing source.
// Values are treated as immutable once fetched.
type Listing struct {
	URL          string   `json:"url" bson:"url"`
	Title        string   `json:"title" bson:"title"`
	PictureURL   string   `json:"picture_url" bson:"picture_url"`
	Description  string   `json:"description,omitempty" bson:"description"`
	Price        string   `json:"price" bson:"price"`
	Rating       string   `json:"rating,omitempty" bson:"rating"`
	Location     string   `json:"location" bson:"location"`
	Region       string   `json:"region,omitempty" bson:"region,omitempty"`
	State        string   `json:"state,omitempty" bson:"state,omitempty"`
	Province     string   `json:"province,omitempty" bson:"province,omitempty"`
	Country      string   `json:"country,omitempty" bson:"country,omitempty"`
	Features     []string `json:"features" bson:"features"`
	HouseDetails []string `json:"house_details,omitempty" bson:"house_details"`
}

// HasFeature reports whether the listing carries the given feature tag.
func (l *Listing) HasFeature(feature string) bool {
	for _, f := range l.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// ToJSON converts the listing to its wire representation.
func (l *Listing) ToJSON() ([]byte, error) {
	return json.Marshal(l)
}

// ListingsFromJSON decodes a JSON array of listings.
func ListingsFromJSON(data []byte) ([]*Listing, error) {
	var listings []*Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// FiltersResponse is the server-assisted variant of a listing fetch: the
// server pre-filters listings and returns the full feature vocabulary.
type FiltersResponse struct {
	Features []string   `json:"features"`
	Listings []*Listing `json:"listings"`
}

// ScrapedPlace is a single place returned by a city scrape.
type ScrapedPlace struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	PictureURL  string   `json:"picture_url,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price"`
	Rating      string   `json:"rating"`
	Location    string   `json:"location,omitempty"`
	Features    []string `json:"features,omitempty"`
}

// ScrapeResult is returned by a single-city scrape trigger.
type ScrapeResult struct {
	City   string          `json:"city"`
	Places []*ScrapedPlace `json:"places"`
}

// BulkScrapeResult is returned by the North America bulk scrape trigger.
type BulkScrapeResult struct {
	Message        string `json:"message,omitempty"`
	TotalListings  int    `json:"total_listings"`
	USListings     int    `json:"us_listings"`
	CanadaListings int    `json:"canada_listings"`
}

// InsightReport holds the computed analytics over a set of listings.
type InsightReport struct {
	TotalListings        int
	PricedListings       int
	AveragePrice         float64
	MinPrice             int
	MaxPrice             int
	MostExpensive        *Listing
	ListingsByLocation   map[string]int
	ListingsByPriceRange map[string]int
	TopFeatures          []FeatureCount
}

// FeatureCount pairs a feature tag with the number of listings carrying it.
type FeatureCount struct {
	Feature string
	Count   int
}
