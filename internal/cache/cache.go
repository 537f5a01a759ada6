// Package cache provides a small expiring key/value store used in front of
// the Notion API. Entries expire lazily on read; writes evict the
// oldest-inserted entries once the store grows past its size limit. There is
// no background sweeper.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	store   map[K]entry[V]
	// order tracks insertion order for size-based eviction. Re-setting an
	// existing key keeps its original position.
	order []K
	nowFn func() time.Time
}

func New[K comparable, V any](ttl time.Duration, maxSize int) *Cache[K, V] {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache[K, V]{
		ttl:     ttl,
		maxSize: maxSize,
		store:   make(map[K]entry[V]),
		nowFn:   time.Now,
	}
}

// Get returns the cached value for key. An entry past its TTL behaves as a
// miss and is removed.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	ent, ok := c.store[key]
	if !ok {
		return zero, false
	}
	if ent.expiresAt.Before(c.nowFn()) {
		c.remove(key)
		return zero, false
	}
	return ent.value, true
}

// Set stores value under key with a fresh TTL, evicting the oldest-inserted
// entries if the store now exceeds its size limit.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists {
		c.order = append(c.order, key)
	}
	c.store[key] = entry[V]{value: value, expiresAt: c.nowFn().Add(c.ttl)}

	for len(c.store) > c.maxSize && len(c.order) > 0 {
		c.remove(c.order[0])
	}
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[K]entry[V])
	c.order = nil
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// remove deletes key from both the store and the order slice. Callers must
// hold c.mu.
func (c *Cache[K, V]) remove(key K) {
	if _, ok := c.store[key]; !ok {
		return
	}
	delete(c.store, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
