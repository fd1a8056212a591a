package responsecache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"partyplnr/internal/common/metrics"
)

// MemoryCache is a process-local Cache bounded to maxEntries. When full,
// expired entries are swept first and then the oldest entry is evicted.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]Value
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	group      singleflight.Group
}

// MemoryOption customizes a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock injects the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) { c.now = now }
}

func NewMemoryCache(ttl time.Duration, maxEntries int, opts ...MemoryOption) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryCache{
		entries:    make(map[string]Value),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) GetOrCompute(ctx context.Context, key string, build Builder) (Value, error) {
	if v, ok := c.lookup(key); ok {
		metrics.CacheLookups.WithLabelValues("memory", "hit").Inc()
		return v, nil
	}

	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		metrics.CacheLookups.WithLabelValues("memory", "miss").Inc()
		v, err := build(ctx)
		if err != nil {
			return Value{}, err
		}
		v.CreatedAt = c.now()
		if !v.Degraded {
			c.store(key, v)
		}
		return v, nil
	})
	if err != nil {
		return Value{}, err
	}
	return res.(Value), nil
}

func (c *MemoryCache) lookup(key string) (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return Value{}, false
	}
	if !fresh(v, c.now(), c.ttl) {
		delete(c.entries, key)
		return Value{}, false
	}
	return v, true
}

func (c *MemoryCache) store(key string, v Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.sweepLocked()
		if len(c.entries) >= c.maxEntries {
			c.evictOldestLocked()
		}
	}
	c.entries[key] = v
}

func (c *MemoryCache) sweepLocked() {
	now := c.now()
	for k, v := range c.entries {
		if !fresh(v, now, c.ttl) {
			delete(c.entries, k)
		}
	}
}

func (c *MemoryCache) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, v := range c.entries {
		if !found || v.CreatedAt.Before(oldest) {
			oldestKey, oldest, found = k, v.CreatedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

// Len returns the number of stored entries, fresh or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
