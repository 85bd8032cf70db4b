// Package cache provides a generic TTL cache that keeps expired entries
// around for stale reads
package cache

import (
	"sync"
	"time"
)

// item wraps a cached value with the time it was stored
type item[T any] struct {
	value    T
	storedAt time.Time
}

// Cache is a generic thread-safe cache with TTL expiration.
// Entries past the TTL are no longer returned by Get but stay readable
// through GetStale until the retention period drops them.
type Cache[T any] struct {
	items     map[string]item[T]
	mu        sync.RWMutex
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
	stop      chan struct{}
	stopOnce  sync.Once
}

// Option configures a Cache
type Option func(*config)

type config struct {
	retention time.Duration
	now       func() time.Time
}

// WithRetention sets how long an entry survives after being stored.
// Zero keeps entries until they are overwritten.
func WithRetention(d time.Duration) Option {
	return func(c *config) { c.retention = d }
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// New creates a cache with the specified TTL
func New[T any](ttl time.Duration, opts ...Option) *Cache[T] {
	cfg := config{retention: 10 * ttl, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Cache[T]{
		items:     make(map[string]item[T]),
		ttl:       ttl,
		retention: cfg.retention,
		now:       cfg.now,
		stop:      make(chan struct{}),
	}
	if c.retention > 0 {
		go c.cleanup()
	}
	return c
}

// Get retrieves a value, returning (value, true) if found and not expired
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || c.now().Sub(item.storedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return item.value, true
}

// GetStale retrieves a value regardless of its age, along with that age
func (c *Cache[T]) GetStale(key string) (T, time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		var zero T
		return zero, 0, false
	}
	return item.value, c.now().Sub(item.storedAt), true
}

// Set stores a value, stamped with the current time
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item[T]{
		value:    value,
		storedAt: c.now(),
	}
}

// Size returns the number of stored items, expired ones included
func (c *Cache[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the background cleanup goroutine
func (c *Cache[T]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanup periodically drops items older than the retention period
func (c *Cache[T]) cleanup() {
	ticker := time.NewTicker(c.retention)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeRetired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[T]) removeRetired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.Sub(item.storedAt) >= c.retention {
			delete(c.items, key)
		}
	}
}
