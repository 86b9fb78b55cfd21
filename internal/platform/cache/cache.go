// Package cache provides an in-memory caching layer with TTL and LRU eviction,
// plus a single-flight loader on top of any Store.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Store is the context-aware view used by the pipeline. Memory implements it
// directly; the Redis adapter implements it for shared deployments.
type Store[V any] interface {
	// Load returns the value and true if present and not expired.
	Load(ctx context.Context, key string) (V, bool, error)

	// Save stores the value with a TTL (0 = never expires).
	Save(ctx context.Context, key string, value V, ttl time.Duration) error
}

// entry represents a cached item with metadata
type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	element   *list.Element // for LRU tracking
}

// Memory implements an in-memory LRU cache with TTL support.
type Memory[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*entry[V]
	lruList  *list.List
	now      func() time.Time
}

// NewMemory creates a new in-memory cache with the specified capacity.
// When the cache reaches capacity, the least recently used item is evicted.
//
// Example:
//
//	policies := cache.NewMemory[domain.CrawlPolicy](512)
func NewMemory[V any](capacity int) *Memory[V] {
	if capacity <= 0 {
		capacity = 100 // default capacity
	}

	return &Memory[V]{
		capacity: capacity,
		items:    make(map[string]*entry[V]),
		lruList:  list.New(),
		now:      time.Now,
	}
}

// Get retrieves a value from the cache.
// If the item exists and hasn't expired, it's marked as recently used.
func (c *Memory[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, exists := c.items[key]
	if !exists {
		return zero, false
	}

	if c.expired(e) {
		c.deleteEntry(e)
		return zero, false
	}

	c.lruList.MoveToFront(e.element)
	return e.value, true
}

// Set stores a value in the cache with a TTL.
// If the key already exists, its value and TTL are updated.
func (c *Memory[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if existing, exists := c.items[key]; exists {
		existing.value = value
		existing.expiresAt = expiresAt
		c.lruList.MoveToFront(existing.element)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictLRU()
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	e.element = c.lruList.PushFront(e)
	c.items[key] = e
}

// Load implements Store.
func (c *Memory[V]) Load(_ context.Context, key string) (V, bool, error) {
	v, ok := c.Get(key)
	return v, ok, nil
}

// Save implements Store.
func (c *Memory[V]) Save(_ context.Context, key string, value V, ttl time.Duration) error {
	c.Set(key, value, ttl)
	return nil
}

// Delete removes a value from the cache.
func (c *Memory[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.items[key]; exists {
		c.deleteEntry(e)
	}
}

// Clear removes all values from the cache.
func (c *Memory[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V])
	c.lruList.Init()
}

// Size returns the current number of items in the cache (expired ones included until swept).
func (c *Memory[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of items the cache can hold.
func (c *Memory[V]) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// CleanExpired removes all expired items from the cache.
func (c *Memory[V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, e := range c.items {
		if c.expired(e) {
			c.deleteEntry(e)
			removed++
		}
	}
	return removed
}

// Keys returns all keys currently in the cache (excluding expired items).
func (c *Memory[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for key, e := range c.items {
		if c.expired(e) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// StartCleanupWorker starts a background goroutine that periodically
// removes expired items from the cache. Returns a stop function.
func (c *Memory[V]) StartCleanupWorker(interval time.Duration) func() {
	stopChan := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-ticker.C:
				c.CleanExpired()
			case <-stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(stopChan) }) }
}

// Must be called with c.mu held.
func (c *Memory[V]) expired(e *entry[V]) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

// evictLRU removes the least recently used item from the cache.
// Must be called with c.mu held.
func (c *Memory[V]) evictLRU() {
	if element := c.lruList.Back(); element != nil {
		c.deleteEntry(element.Value.(*entry[V]))
	}
}

// Must be called with c.mu held.
func (c *Memory[V]) deleteEntry(e *entry[V]) {
	delete(c.items, e.key)
	c.lruList.Remove(e.element)
}
