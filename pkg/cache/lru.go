// Package cache provides a small fixed-capacity LRU cache used to memoize
// username-to-id lookups. Ids are referentially stable within a process
// lifetime, so entries carry no expiry and are evicted only by capacity
// pressure.
package cache

import (
	"container/list"
	"sync"
)

// DefaultCapacity matches the lookup memoization size of the upstream API
// client this replaces.
const DefaultCapacity = 32

type entry struct {
	key   string
	value int64
}

// LRU is a fixed-capacity least-recently-used cache mapping strings to
// numeric ids. Safe for concurrent use.
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

// NewLRU creates an LRU cache with the given capacity.
// Non-positive capacities fall back to DefaultCapacity.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached value for key and marks it most recently used.
func (c *LRU) Get(key string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		CacheMisses.Inc()
		return 0, false
	}

	c.order.MoveToFront(elem)
	CacheHits.Inc()
	return elem.Value.(*entry).value, true
}

// Set stores the value for key, evicting the least recently used entry when
// the cache is full.
func (c *LRU) Set(key string, value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry).value = value
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
			CacheEvictions.Inc()
		}
	}

	c.items[key] = c.order.PushFront(&entry{key: key, value: value})
	CacheSize.Set(float64(c.order.Len()))
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
