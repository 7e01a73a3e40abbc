package store

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched table is served from memory.
const DefaultTTL = 600 * time.Second

// DefaultFetchTimeout bounds one shared fetch from the source.
const DefaultFetchTimeout = 30 * time.Second

type cacheEntry struct {
	rows      *RowSet
	fetchedAt time.Time
}

// CachedSource serves tables from memory for a fixed TTL.
// Concurrent misses for one table share a single fetch; failures are never cached.
// A caller whose context ends stops waiting, but the shared fetch carries on
// for the others.
type CachedSource struct {
	source       Source
	ttl          time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu         sync.RWMutex
	entries    map[string]cacheEntry
	generation uint64

	group singleflight.Group
}

// NewCachedSource wraps source with a TTL cache. A non-positive ttl uses DefaultTTL.
func NewCachedSource(source Source, ttl time.Duration, logger *slog.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSource{
		source:       source,
		ttl:          ttl,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
		logger:       logger,
		entries:      make(map[string]cacheEntry),
	}
}

// FetchTable returns the cached table when fresh, otherwise fetches it from the source.
func (c *CachedSource) FetchTable(ctx context.Context, name string) (*RowSet, error) {
	c.mu.RLock()
	entry, ok := c.entries[name]
	gen := c.generation
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.rows, nil
	}

	// Keying the flight by generation keeps callers that arrive after an
	// Invalidate from joining a fetch that started before it.
	key := name + "#" + strconv.FormatUint(gen, 10)
	ch := c.group.DoChan(key, func() (any, error) {
		// Shared fetch outlives the caller that started it.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		rows, err := c.source.FetchTable(fetchCtx, name)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation == gen {
			c.entries[name] = cacheEntry{rows: rows, fetchedAt: c.now()}
		}
		c.mu.Unlock()

		return rows, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.logger.Warn("table fetch failed", "table", name, "error", res.Err)
			return nil, res.Err
		}
		if !res.Shared {
			c.logger.Debug("table cached", "table", name, "ttl", c.ttl)
		}
		return res.Val.(*RowSet), nil
	}
}

// Invalidate drops every cached table; the next fetch of each goes to the source.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.generation++
	c.mu.Unlock()

	c.logger.Info("table cache invalidated")
}

// FetchedAt reports when name was last loaded into the cache.
func (c *CachedSource) FetchedAt(name string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[name]
	return entry.fetchedAt, ok
}

// TTL returns the configured cache lifetime.
func (c *CachedSource) TTL() time.Duration {
	return c.ttl
}
