package source

import (
	"context"
	"errors"
	"fmt"

	"listing-search/config"
	"listing-search/models"
	"listing-search/storage"
	"listing-search/utils"
)

// Source bundles the fetch side and the scrape side of the backend.
type Source struct {
	Fetcher ListingFetcher
	Trigger ScrapeTrigger

	closers []func() error
}

// Close releases every connection opened by Open.
func (s *Source) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open selects the fetcher implementation by cfg.SourceMode. Scrapes always
// go through the HTTP backend except in mock mode, since the databases only
// hold what the backend has already scraped.
func Open(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*Source, error) {
	src := &Source{}

	switch cfg.SourceMode {
	case config.ModeMock:
		mock := NewMockSource(60)
		src.Fetcher = mock
		src.Trigger = mock
	case config.ModeHTTP:
		client := newBackendClient(cfg, logger)
		src.Fetcher = client
		src.Trigger = client
	case config.ModePostgres:
		pg, err := storage.NewPostgresStore(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		src.Fetcher = Guard(pg)
		src.Trigger = newBackendClient(cfg, logger)
		src.closers = append(src.closers, pg.Close)
	case config.ModeMongo:
		ms, err := storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		src.Fetcher = Guard(ms)
		src.Trigger = newBackendClient(cfg, logger)
		src.closers = append(src.closers, ms.Close)
	default:
		return nil, fmt.Errorf("source: unknown SOURCE_MODE %q (use 'http', 'postgres', 'mongo' or 'mock')", cfg.SourceMode)
	}

	if cfg.CacheTTL > 0 {
		cache, err := NewRedisCache(ctx, cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, src.Fetcher, logger)
		if err != nil {
			logger.Warn("[source] Cache disabled: %v", err)
		} else {
			src.Fetcher = cache
			src.closers = append(src.closers, cache.Close)
		}
	}

	logger.Info("[source] Mode %s ready", cfg.SourceMode)
	return src, nil
}

func newBackendClient(cfg *config.Config, logger *utils.Logger) *HTTPClient {
	return NewHTTPClient(cfg.ListingSourceURL, HTTPOptions{
		Timeout:       cfg.RequestTimeout,
		ScrapeTimeout: cfg.ScrapeTimeout,
		RateLimit:     cfg.RateLimit(),
		MaxRetries:    cfg.MaxRetries,
		RetryDelay:    cfg.RetryDelay(),
	}, logger)
}

// Guard wraps every error of inner with ErrUnavailable.
func Guard(inner ListingFetcher) ListingFetcher {
	return &guarded{inner: inner}
}

type guarded struct {
	inner ListingFetcher
}

func (g *guarded) FetchListings(ctx context.Context, query string) ([]*models.Listing, error) {
	listings, err := g.inner.FetchListings(ctx, query)
	if err != nil {
		return nil, unavailable(err)
	}
	return listings, nil
}

func (g *guarded) FetchFilters(ctx context.Context, searchTerm string, features []string) (*models.FiltersResponse, error) {
	resp, err := g.inner.FetchFilters(ctx, searchTerm, features)
	if err != nil {
		return nil, unavailable(err)
	}
	return resp, nil
}
