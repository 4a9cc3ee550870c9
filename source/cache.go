package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"listing-search/models"
	"listing-search/utils"
)

const cacheKeyPrefix = "listing-search"

// RedisCache memoises a ListingFetcher's responses in Redis for a TTL.
// Cache errors are logged and bypassed; only the inner fetcher can fail a call.
type RedisCache struct {
	client *redis.Client
	inner  ListingFetcher
	ttl    time.Duration
	logger *utils.Logger
}

// NewRedisCache connects to Redis and wraps inner.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration, inner ListingFetcher, logger *utils.Logger) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: connect to redis at %s: %w", addr, err)
	}

	logger.Info("[cache] Connected to Redis at %s (ttl %v)", addr, ttl)
	return &RedisCache{client: rdb, inner: inner, ttl: ttl, logger: logger}, nil
}

// FetchListings serves from cache when possible.
func (c *RedisCache) FetchListings(ctx context.Context, query string) ([]*models.Listing, error) {
	key := listingsKey(query)

	var listings []*models.Listing
	if c.load(ctx, key, &listings) {
		return listings, nil
	}

	listings, err := c.inner.FetchListings(ctx, query)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, listings)
	return listings, nil
}

// FetchFilters serves from cache when possible.
func (c *RedisCache) FetchFilters(ctx context.Context, searchTerm string, features []string) (*models.FiltersResponse, error) {
	key := filtersKey(searchTerm, features)

	var resp models.FiltersResponse
	if c.load(ctx, key, &resp) {
		return &resp, nil
	}

	fresh, err := c.inner.FetchFilters(ctx, searchTerm, features)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, fresh)
	return fresh, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) load(ctx context.Context, key string, out any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("[cache] miss %s", key)
		return false
	}
	if err != nil {
		c.logger.Warn("[cache] get %s: %v", key, err)
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("[cache] corrupt entry %s: %v", key, err)
		return false
	}
	c.logger.Debug("[cache] hit %s", key)
	return true
}

func (c *RedisCache) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("[cache] encode %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("[cache] set %s: %v", key, err)
	}
}

func listingsKey(query string) string {
	return cacheKeyPrefix + ":listings:" + url.QueryEscape(strings.ToLower(strings.TrimSpace(query)))
}

// filtersKey is insensitive to feature order since the server requires all
// of them regardless of order.
func filtersKey(searchTerm string, features []string) string {
	sorted := append([]string(nil), features...)
	sort.Strings(sorted)
	for i, f := range sorted {
		sorted[i] = url.QueryEscape(f)
	}
	return cacheKeyPrefix + ":filters:" +
		url.QueryEscape(strings.ToLower(strings.TrimSpace(searchTerm))) + ":" +
		strings.Join(sorted, ",")
}
