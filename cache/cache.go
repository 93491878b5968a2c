// Package cache provides a capacity-bounded key/value store with
// least-recently-used eviction and per-entry access statistics.
//
// A Cache is not safe for concurrent use; callers serialize access.
package cache

import (
	"container/list"
	"time"
)

// Entry is the metadata kept for every cached value.
type Entry[K comparable, V any] struct {
	Key         K
	Value       V
	AccessCount int
	LastAccess  time.Time
}

// Stats counts cache activity since creation or the last Clear.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a bounded LRU cache. Entries are kept in access order, most
// recent at the front, so the eviction victim is always the back element:
// the entry with the oldest LastAccess, older insertions first on ties.
type Cache[K comparable, V any] struct {
	capacity int
	entries  map[K]*list.Element
	order    *list.List
	stats    Stats
	now      func() time.Time
	onEvict  func(K, V)
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithClock replaces time.Now as the access time source.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) { c.now = now }
}

// WithOnEvict registers a callback invoked with every evicted entry.
// It is not called for Delete or Clear.
func WithOnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *Cache[K, V]) { c.onEvict = fn }
}

// New creates a cache holding at most capacity entries. A capacity below
// one is treated as one.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	c := &Cache[K, V]{
		capacity: capacity,
		entries:  make(map[K]*list.Element, min(capacity, 1024)),
		order:    list.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key. A hit bumps the entry's access count and
// last access time.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	el, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	e := el.Value.(*Entry[K, V])
	e.AccessCount++
	e.LastAccess = c.now()
	c.order.MoveToFront(el)
	return e.Value, true
}

// Peek returns the entry for key without touching its access metadata.
func (c *Cache[K, V]) Peek(key K) (Entry[K, V], bool) {
	el, ok := c.entries[key]
	if !ok {
		return Entry[K, V]{}, false
	}
	return *el.Value.(*Entry[K, V]), true
}

// Set stores value under key. Storing an existing key replaces it as a
// fresh insertion with an access count of one. Storing a new key into a
// full cache evicts the least recently accessed entry first.
func (c *Cache[K, V]) Set(key K, value V) {
	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	} else if len(c.entries) >= c.capacity {
		c.evict()
	}
	e := &Entry[K, V]{Key: key, Value: value, AccessCount: 1, LastAccess: c.now()}
	c.entries[key] = c.order.PushFront(e)
}

// Delete removes key. It reports whether the key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	el, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.entries, key)
	return true
}

// Clear removes every entry and resets the statistics. Capacity is kept.
func (c *Cache[K, V]) Clear() {
	c.entries = make(map[K]*list.Element, min(c.capacity, 1024))
	c.order.Init()
	c.stats = Stats{}
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int { return len(c.entries) }

// Cap returns the capacity.
func (c *Cache[K, V]) Cap() int { return c.capacity }

// Stats returns a snapshot of the hit, miss and eviction counters.
func (c *Cache[K, V]) Stats() Stats { return c.stats }

// Keys returns the keys from most to least recently accessed.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.entries))
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*Entry[K, V]).Key)
	}
	return keys
}

func (c *Cache[K, V]) evict() {
	el := c.order.Back()
	if el == nil {
		return
	}
	e := c.order.Remove(el).(*Entry[K, V])
	delete(c.entries, e.Key)
	c.stats.Evictions++
	if c.onEvict != nil {
		c.onEvict(e.Key, e.Value)
	}
}
