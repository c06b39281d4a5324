// Package cache is a bounded in-process cache with per-entry expiry. Once
// full, the least recently used entry is evicted first.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// Cache is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List
	now      func() time.Time
}

// Option configures a Cache.
type Option func(*config)

type config struct {
	now func() time.Time
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a cache holding at most capacity entries.
// It panics when capacity is not positive.
func New[K comparable, V any](capacity int, opts ...Option) *Cache[K, V] {
	if capacity <= 0 {
		panic("cache: capacity must be positive")
	}
	cfg := config{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
		now:      cfg.now,
	}
}

// Get returns the value for key. Expired entries are dropped and reported
// as missing.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[K, V])
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.remove(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return e.value, true
}

// Set stores value under key. A ttl of zero never expires.
func (c *Cache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[K, V])
		e.value = value
		e.expiresAt = c.expiry(ttl)
		c.order.MoveToFront(elem)
		return
	}
	c.insert(key, value, ttl)
}

// Add stores value only when key is absent or expired. It reports whether
// the value was stored.
func (c *Cache[K, V]) Add(key K, value V, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[K, V])
		if e.expiresAt.IsZero() || c.now().Before(e.expiresAt) {
			return false
		}
		c.remove(elem)
	}
	c.insert(key, value, ttl)
	return true
}

// Delete removes keys; missing keys are ignored.
func (c *Cache[K, V]) Delete(keys ...K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		if elem, ok := c.items[k]; ok {
			c.remove(elem)
		}
	}
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache[K, V]) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(ttl)
}

// insert adds a new entry and evicts the oldest one past capacity.
// Must be called with the lock held.
func (c *Cache[K, V]) insert(key K, value V, ttl time.Duration) {
	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, expiresAt: c.expiry(ttl)})
	if c.order.Len() > c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// Must be called with the lock held.
func (c *Cache[K, V]) remove(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*entry[K, V]).key)
}
