package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"listing-search/models"
	"listing-search/utils"
)

const (
	listingsPath   = "/get-listings"
	filtersPath    = "/filters"
	scrapeCityPath = "/scrape-city-data"
	scrapeAllPath  = "/scrape-north-america"
)

// HTTPClient talks to the scraping backend over its JSON API.
type HTTPClient struct {
	baseURL      string
	httpClient   *http.Client
	scrapeClient *http.Client
	limiter      *rate.Limiter
	retry        *utils.RetryConfig
	logger       *utils.Logger
}

// HTTPOptions configures an HTTPClient.
type HTTPOptions struct {
	Timeout       time.Duration
	ScrapeTimeout time.Duration
	RateLimit     time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
}

// NewHTTPClient creates a client for the backend rooted at baseURL.
func NewHTTPClient(baseURL string, opts HTTPOptions, logger *utils.Logger) *HTTPClient {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Every(opts.RateLimit)
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}

	return &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: opts.Timeout},
		scrapeClient: &http.Client{Timeout: opts.ScrapeTimeout},
		limiter:      rate.NewLimiter(limit, 1),
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries,
			BaseDelay:   opts.RetryDelay,
			Logger:      logger,
		},
		logger: logger,
	}
}

// FetchListings calls GET /get-listings?city=<query>.
func (c *HTTPClient) FetchListings(ctx context.Context, query string) ([]*models.Listing, error) {
	params := url.Values{}
	if q := strings.TrimSpace(query); q != "" {
		params.Set("city", q)
	}

	var listings []*models.Listing
	err := c.retry.Do(ctx, "fetch-listings", func() error {
		listings = nil
		return c.getJSON(ctx, c.httpClient, listingsPath, params, &listings)
	})
	if err != nil {
		return nil, unavailable(err)
	}
	return listings, nil
}

// FetchFilters calls GET /filters?search=<term>&features=a,b.
func (c *HTTPClient) FetchFilters(ctx context.Context, searchTerm string, features []string) (*models.FiltersResponse, error) {
	params := url.Values{}
	if s := strings.TrimSpace(searchTerm); s != "" {
		params.Set("search", s)
	}
	if len(features) > 0 {
		params.Set("features", strings.Join(features, ","))
	}

	var resp models.FiltersResponse
	err := c.retry.Do(ctx, "fetch-filters", func() error {
		resp = models.FiltersResponse{}
		return c.getJSON(ctx, c.httpClient, filtersPath, params, &resp)
	})
	if err != nil {
		return nil, unavailable(err)
	}
	return &resp, nil
}

// TriggerScrape calls GET /scrape-city-data?city=<city>. Not retried: a
// scrape is long-running and not idempotent on the backend.
func (c *HTTPClient) TriggerScrape(ctx context.Context, city string) (*models.ScrapeResult, error) {
	params := url.Values{}
	params.Set("city", city)

	var resp models.ScrapeResult
	if err := c.getJSON(ctx, c.scrapeClient, scrapeCityPath, params, &resp); err != nil {
		return nil, unavailable(err)
	}
	return &resp, nil
}

// TriggerBulkScrape calls GET /scrape-north-america.
func (c *HTTPClient) TriggerBulkScrape(ctx context.Context) (*models.BulkScrapeResult, error) {
	var resp models.BulkScrapeResult
	if err := c.getJSON(ctx, c.scrapeClient, scrapeAllPath, nil, &resp); err != nil {
		return nil, unavailable(err)
	}
	return &resp, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, client *http.Client, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return utils.Permanent(err)
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return utils.Permanent(fmt.Errorf("build request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("[source] GET %s (request %s)", endpoint, requestID)
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return utils.Permanent(err)
		}
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("[source] %s → %d in %v (request %s)", path, resp.StatusCode, time.Since(start), requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return statusErr
		}
		return utils.Permanent(statusErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return utils.Permanent(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
