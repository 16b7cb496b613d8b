package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ingredientlens/backend/internal/domain"
	"github.com/ingredientlens/backend/pkg/logger"
)

const (
	DefaultNamespace = "product:"
	DefaultTTL       = 24 * time.Hour

	connectionTestKey = "test:connection"
)

// LookupStatus tells a caller why a lookup did or did not return products
type LookupStatus int

const (
	LookupMiss LookupStatus = iota
	LookupHit
	LookupUnavailable
)

func (s LookupStatus) String() string {
	switch s {
	case LookupHit:
		return "hit"
	case LookupUnavailable:
		return "unavailable"
	default:
		return "miss"
	}
}

// Lookup is the outcome of a cache read. Products is only set on a hit.
type Lookup struct {
	Status   LookupStatus
	Products []domain.Product
}

// Hit reports whether the lookup found products
func (l Lookup) Hit() bool {
	return l.Status == LookupHit
}

// ProductCache stores search results keyed by normalized query.
// Store failures are logged and degrade to misses; they never fail a request.
type ProductCache struct {
	store     domain.CacheStore
	namespace string
	ttl       time.Duration
	log       zerolog.Logger
}

// NewProductCache creates a product cache over store.
// Empty namespace and non-positive ttl fall back to the defaults.
func NewProductCache(store domain.CacheStore, namespace string, ttl time.Duration, log zerolog.Logger) *ProductCache {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProductCache{
		store:     store,
		namespace: namespace,
		ttl:       ttl,
		log:       logger.Component(log, "cache"),
	}
}

// Key builds the cache key for a query: namespace + lower(trim(query))
func (c *ProductCache) Key(query string) string {
	return c.namespace + strings.ToLower(strings.TrimSpace(query))
}

// Get looks up the cached products for query
func (c *ProductCache) Get(ctx context.Context, query string) Lookup {
	key := c.Key(query)

	data, err := c.store.Get(ctx, key)
	if errors.Is(err, domain.ErrCacheMiss) {
		c.log.Debug().Str("key", key).Msg("cache miss")
		return Lookup{Status: LookupMiss}
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return Lookup{Status: LookupUnavailable}
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return Lookup{Status: LookupMiss}
	}

	c.log.Debug().Str("key", key).Int("products", len(products)).Msg("cache hit")
	return Lookup{Status: LookupHit, Products: products}
}

// Set stores products under query with the configured TTL, overwriting any previous entry
func (c *ProductCache) Set(ctx context.Context, query string, products []domain.Product) {
	key := c.Key(query)

	if products == nil {
		products = []domain.Product{}
	}

	data, err := json.Marshal(products)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("failed to encode products for cache")
		return
	}

	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return
	}

	c.log.Debug().Str("key", key).Dur("ttl", c.ttl).Msg("cached products")
}

// Clear removes the entry for query. Clearing an absent entry succeeds.
func (c *ProductCache) Clear(ctx context.Context, query string) error {
	key := c.Key(query)
	if err := c.store.Delete(ctx, key); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache clear failed")
		return err
	}
	c.log.Info().Str("key", key).Msg("cleared cache entry")
	return nil
}

// ClearAll removes every entry under the namespace and returns how many were removed
func (c *ProductCache) ClearAll(ctx context.Context) (int, error) {
	n, err := c.store.DeletePrefix(ctx, c.namespace)
	if err != nil {
		c.log.Warn().Err(err).Str("namespace", c.namespace).Msg("cache clear all failed")
		return n, err
	}
	c.log.Info().Str("namespace", c.namespace).Int("deleted", n).Msg("cleared cache namespace")
	return n, nil
}

// Ping checks the store is reachable
func (c *ProductCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// CheckConnection writes, reads back and deletes a probe key
func (c *ProductCache) CheckConnection(ctx context.Context) error {
	probe := []byte(`{"test":"` + time.Now().UTC().Format(time.RFC3339Nano) + `"}`)

	if err := c.store.Set(ctx, connectionTestKey, probe, time.Minute); err != nil {
		return fmt.Errorf("set probe: %w", err)
	}

	got, err := c.store.Get(ctx, connectionTestKey)
	if err != nil {
		return fmt.Errorf("get probe: %w", err)
	}
	if !bytes.Equal(got, probe) {
		return fmt.Errorf("probe mismatch: got %q", got)
	}

	if err := c.store.Delete(ctx, connectionTestKey); err != nil {
		return fmt.Errorf("delete probe: %w", err)
	}
	return nil
}
