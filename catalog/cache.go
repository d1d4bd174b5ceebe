package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"optionanalyzer/config"
	"optionanalyzer/metrics"
)

// redisKey holds the shared copy of the gzipped master.
const redisKey = "nse_instrument_master_gz"

// DefaultTTL bounds how long a snapshot is served before re-downloading.
const DefaultTTL = 15 * time.Minute

// Cache serves one catalog snapshot for a bounded time. Refreshing builds a
// whole new snapshot and swaps the pointer under the lock, so readers see
// either the old catalog or the new one, never a half-loaded mix. With a
// redis client attached, the raw gzipped bytes are shared across processes
// under the same TTL.
type Cache struct {
	loader *Loader
	ttl    time.Duration
	redis  *config.RedisClient

	mu        sync.Mutex
	snapshot  *Catalog
	fetchedAt time.Time
}

func NewCache(loader *Loader, ttl time.Duration, rc *config.RedisClient) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{loader: loader, ttl: ttl, redis: rc}
}

// Get returns the current snapshot, loading a fresh one when none exists or
// the TTL has lapsed. The lock is held across the download: a session blocks
// on the fetch anyway, and this keeps concurrent readers from downloading the
// multi-megabyte master twice.
func (c *Cache) Get(ctx context.Context) (*Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && time.Since(c.fetchedAt) < c.ttl {
		metrics.CatalogCacheHits.Inc()
		return c.snapshot, nil
	}

	cat, err := c.refresh(ctx)
	if err != nil {
		metrics.CatalogLoadFailures.Inc()
		return nil, err
	}
	c.snapshot = cat
	c.fetchedAt = time.Now()
	return cat, nil
}

// Invalidate drops the cached snapshot (and the shared redis copy) so the
// next Get downloads a fresh master.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
	c.fetchedAt = time.Time{}
	if c.redis != nil {
		if err := c.redis.Del(redisKey); err != nil {
			slog.Warn("catalog: could not drop shared master copy", "err", err)
		}
	}
}

func (c *Cache) refresh(ctx context.Context) (*Catalog, error) {
	if c.redis != nil {
		if raw, err := c.redis.GetBytes(redisKey); err == nil && len(raw) > 0 {
			if cat, perr := Parse(raw); perr == nil {
				slog.Info("catalog: loaded master from shared cache", "records", cat.Len())
				return cat, nil
			}
			// A stale or truncated shared copy falls through to a fresh fetch.
		}
	}

	raw, err := c.loader.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}
	metrics.CatalogLoads.Inc()

	cat, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	slog.Info("catalog: loaded master", "records", cat.Len(), "dropped", cat.Drops())

	if c.redis != nil {
		if err := c.redis.SetBytes(redisKey, raw, c.ttl); err != nil {
			slog.Warn("catalog: could not publish master to shared cache", "err", err)
		}
	}
	return cat, nil
}
