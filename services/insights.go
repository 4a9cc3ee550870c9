package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"listing-search/models"
	"listing-search/utils"
)

const topFeatureCount = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{
		ListingsByLocation:   make(map[string]int),
		ListingsByPriceRange: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	features := utils.NewOrderedSet()
	featureCounts := make(map[string]int)
	var total int

	for _, l := range listings {
		price := ParsePrice(l.Price)
		report.ListingsByPriceRange[PriceRangeLabel(price)]++

		if price > 0 {
			if report.PricedListings == 0 || price < report.MinPrice {
				report.MinPrice = price
			}
			if price > report.MaxPrice {
				report.MaxPrice = price
				report.MostExpensive = l
			}
			report.PricedListings++
			total += price
		}
		if l.Location != "" {
			report.ListingsByLocation[l.Location]++
		}
		for _, f := range l.Features {
			features.Add(f)
			featureCounts[f]++
		}
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(float64(total) / float64(report.PricedListings))
	}

	// Stable sort over first-seen order so ties keep a deterministic order.
	ranked := features.Values()
	sort.SliceStable(ranked, func(i, j int) bool {
		return featureCounts[ranked[i]] > featureCounts[ranked[j]]
	})
	if len(ranked) > topFeatureCount {
		ranked = ranked[:topFeatureCount]
	}
	for _, f := range ranked {
		report.TopFeatures = append(report.TopFeatures, models.FeatureCount{Feature: f, Count: featureCounts[f]})
	}

	s.logger.Debug("[insights] %d listings, %d priced, %d locations",
		report.TotalListings, report.PricedListings, len(report.ListingsByLocation))
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  LISTING INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings in result : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  With a price       : \033[1m%d\033[0m\n\n", r.PricedListings)

	fmt.Fprintf(w, "\033[1;33m  Price Statistics (per night)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m$%.2f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Minimum price : \033[1;32m$%d\033[0m\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum price : \033[1;32m$%d\033[0m\n", r.MaxPrice)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Title, 50))
		fmt.Fprintf(w, "  Location : %s\n", r.MostExpensive.Location)
		fmt.Fprintf(w, "  Price    : \033[1;31m%s\033[0m\n\n", r.MostExpensive.Price)
	}

	fmt.Fprintf(w, "\033[1;33m  Listings by Price Range\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, opt := range models.PriceRangeOptions {
		n := r.ListingsByPriceRange[opt]
		fmt.Fprintf(w, "  %-12s %s (%d)\n", opt, strings.Repeat("█", n), n)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top Features\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopFeatures) == 0 {
		fmt.Fprintf(w, "  No feature data\n")
	}
	for i, fc := range r.TopFeatures {
		fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s %d\n", i+1, truncate(fc.Feature, 38), fc.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Listings by Location\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	locs := SortedLocations(r.ListingsByLocation)
	if len(locs) == 0 {
		fmt.Fprintf(w, "  No location data\n")
	}
	for _, lc := range locs {
		fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(lc.Location, 28), strings.Repeat("█", lc.Count), lc.Count)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// LocationCount is one row of the by-location breakdown.
type LocationCount struct {
	Location string
	Count    int
}

// SortedLocations orders the location counts by count descending, then name.
func SortedLocations(byLocation map[string]int) []LocationCount {
	locs := make([]LocationCount, 0, len(byLocation))
	for loc, cnt := range byLocation {
		if loc != "" {
			locs = append(locs, LocationCount{loc, cnt})
		}
	}
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].Count != locs[j].Count {
			return locs[i].Count > locs[j].Count
		}
		return locs[i].Location < locs[j].Location
	})
	return locs
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
