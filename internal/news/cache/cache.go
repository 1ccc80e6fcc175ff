// Package cache is the keyed query cache sitting between the news service and
// the backend client.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Entry is one cached query result in its encoded form.
type Entry struct {
	Data      []byte
	FetchedAt time.Time
}

// Store persists entries across restarts.
type Store interface {
	Load(ctx context.Context, key string) (Entry, bool, error)
	Save(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Config holds configuration for the cache.
type Config struct {
	// TTL is how long an entry is served without refetching.
	TTL time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{TTL: 5 * time.Minute}
}

// Cache holds query results keyed by query key. Concurrent queries for the
// same key share a single fetch.
type Cache struct {
	cfg   Config
	store Store
	log   *zap.Logger
	now   func() time.Time

	mu      sync.RWMutex
	entries map[string]Entry

	group singleflight.Group
}

// New creates a Cache. store may be nil for a memory-only cache.
func New(cfg Config, store Store, log *zap.Logger) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		cfg:     cfg,
		store:   store,
		log:     log,
		now:     time.Now,
		entries: make(map[string]Entry),
	}
}

// Query returns the cached list for key, calling fetch when the entry is
// missing or stale. If fetch fails and an older entry exists, the older entry
// is returned instead of the error.
func Query[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	cached, ok := c.lookup(ctx, key)
	if ok && c.fresh(cached) {
		return decode[T](key, cached.Data)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		items, err := fetch(ctx)
		if err != nil {
			if ok {
				c.log.Warn("fetch failed, serving stale entry",
					zap.String("key", key),
					zap.Time("fetched_at", cached.FetchedAt),
					zap.Error(err),
				)
				return cached.Data, nil
			}
			return nil, err
		}

		data, err := json.Marshal(items)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		c.put(ctx, key, Entry{Data: data, FetchedAt: c.now()})
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return decode[T](key, v.([]byte))
}

func decode[T any](key string, data []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func (c *Cache) fresh(e Entry) bool {
	return c.now().Sub(e.FetchedAt) < c.cfg.TTL
}

func (c *Cache) lookup(ctx context.Context, key string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok || c.store == nil {
		return e, ok
	}

	e, ok, err := c.store.Load(ctx, key)
	if err != nil {
		c.log.Warn("load cache entry", zap.String("key", key), zap.Error(err))
		return Entry{}, false
	}
	if ok {
		c.mu.Lock()
		c.entries[key] = e
		c.mu.Unlock()
	}
	return e, ok
}

func (c *Cache) put(ctx context.Context, key string, e Entry) {
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Save(ctx, key, e); err != nil {
			c.log.Warn("save cache entry", zap.String("key", key), zap.Error(err))
		}
	}
}

// Peek returns the cached entry for key without fetching.
func (c *Cache) Peek(ctx context.Context, key string) (Entry, bool) {
	return c.lookup(ctx, key)
}

// Invalidate marks key stale so the next query refetches it. The old value is
// kept as a fallback for failed fetches.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.FetchedAt = time.Time{}
		c.entries[key] = e
	}
}

// InvalidateAll marks every in-memory entry stale.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		e.FetchedAt = time.Time{}
		c.entries[k] = e
	}
}

// Remove drops key from memory and from the store.
func (c *Cache) Remove(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	if c.store != nil {
		return c.store.Delete(ctx, key)
	}
	return nil
}

// Len returns the number of in-memory entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close closes the backing store.
func (c *Cache) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
