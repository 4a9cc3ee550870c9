package services

import (
	"strings"
	"unicode"

	"listing-search/models"
	"listing-search/utils"
)

// Cleaner normalises a freshly fetched batch before it enters the store.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean returns normalised copies of raw, dropping listings without a URL
// and later duplicates of an already seen URL. Input listings are not modified.
func (c *Cleaner) Clean(raw []*models.Listing) []*models.Listing {
	seen := utils.NewOrderedSet()
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		if r == nil {
			continue
		}
		url := strings.TrimSpace(r.URL)
		if url == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty URL: %s", r.Title)
			continue
		}

		if !seen.Add(url) {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}

		result = append(result, &models.Listing{
			URL:          url,
			Title:        normaliseText(r.Title),
			PictureURL:   strings.TrimSpace(r.PictureURL),
			Description:  normaliseText(r.Description),
			Price:        normaliseText(r.Price),
			Rating:       normaliseText(r.Rating),
			Location:     normaliseText(r.Location),
			Region:       normaliseText(r.Region),
			State:        normaliseText(r.State),
			Province:     normaliseText(r.Province),
			Country:      normaliseText(r.Country),
			Features:     distinctTags(r.Features),
			HouseDetails: distinctTags(r.HouseDetails),
		})
	}

	if dropped := len(raw) - len(result); dropped > 0 {
		c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)", len(raw), len(result), dropped)
	}
	return result
}

// distinctTags trims every tag and drops empties and repeats, keeping order.
func distinctTags(tags []string) []string {
	set := utils.NewOrderedSet()
	for _, t := range tags {
		if t = normaliseText(t); t != "" {
			set.Add(t)
		}
	}
	return set.Values()
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
