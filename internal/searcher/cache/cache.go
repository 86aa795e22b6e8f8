// Package cache memoizes search results in Redis, keyed by snapshot stamp
// so stale entries can never be served after a reload.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/searcher"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/redis"
)

const keyPrefix = "search:q:"

// QueryCache caches search result envelopes in Redis. Concurrent misses for
// the same key are collapsed with singleflight so the engine runs once.
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a QueryCache with the given entry TTL.
func New(client *redis.Client, ttl time.Duration) *QueryCache {
	return &QueryCache{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Key derives the cache key for a query against a particular snapshot.
// Including the stamp means a reload naturally misses old entries even
// before invalidation runs.
func Key(stamp, normalizedQuery string, limit int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", stamp, normalizedQuery, limit)))
	return keyPrefix + hex.EncodeToString(sum[:16])
}

// GetOrCompute returns the cached result for key, or runs compute, caches
// the outcome, and returns it. The second return reports whether the value
// came from the cache. Redis failures degrade to computing uncached.
func (c *QueryCache) GetOrCompute(ctx context.Context, key string, compute func() (*searcher.Result, error)) (*searcher.Result, bool, error) {
	raw, err := c.client.Get(ctx, key)
	if err == nil {
		var result searcher.Result
		if err := json.Unmarshal([]byte(raw), &result); err == nil {
			c.hits.Add(1)
			return &result, true, nil
		}
		// unreadable entry: drop it and recompute
		if err := c.client.Del(ctx, key); err != nil {
			c.logger.Warn("failed to delete corrupt cache entry", "key", key, "error", err)
		}
	} else if !redis.IsNilError(err) {
		c.logger.Warn("cache read failed, computing uncached", "error", err)
		result, err := compute()
		return result, false, err
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(key, func() (any, error) {
		result, err := compute()
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(result)
		if err != nil {
			return result, nil
		}
		if err := c.client.Set(ctx, key, string(encoded), c.ttl); err != nil {
			c.logger.Warn("failed to store cache entry", "key", key, "error", err)
		}
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*searcher.Result), false, nil
}

// Invalidate removes every cached search result. Called after a snapshot
// swap.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	return c.client.FlushByPattern(ctx, keyPrefix+"*")
}

// Stats returns lifetime hit and miss counts for this process.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
