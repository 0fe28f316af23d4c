// Package cache provides the bounded least-recently-used artifact cache the
// build scheduler writes into and the render-list assembly reads from.
//
// Cached artifacts are rendered at a specific scale, so the engine clears
// the cache whenever the zoom changes. The cache is mutex-guarded: the core
// is single-threaded, but an implementation exposing the cache to multiple
// callers must serialize access, so serialization lives here.
package cache

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrInvalidCapacity is returned for non-positive capacities.
var ErrInvalidCapacity = errors.New("cache: capacity must be positive")

// LRU is a bounded cache from keys to artifacts with least-recently-used
// eviction. An optional onEvict hook releases resources owned by evicted
// artifacts.
type LRU[K comparable, A any] struct {
	mu        sync.Mutex
	capacity  int
	items     map[K]*list.Element
	evictList *list.List
	onEvict   func(K, A)

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[K comparable, A any] struct {
	key      K
	artifact A
}

// New creates an LRU holding at most capacity entries. onEvict, if non-nil,
// is invoked for every entry removed by eviction or Clear.
func New[K comparable, A any](capacity int, onEvict func(K, A)) (*LRU[K, A], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return &LRU[K, A]{
		capacity:  capacity,
		items:     make(map[K]*list.Element, capacity),
		evictList: list.New(),
		onEvict:   onEvict,
	}, nil
}

// Get returns the cached artifact for key. On a hit the entry becomes the
// most recently used and the hit counter increments; on a miss the miss
// counter increments.
func (c *LRU[K, A]) Get(key K) (A, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(el)
		return el.Value.(*entry[K, A]).artifact, true
	}
	c.misses.Add(1)
	var zero A
	return zero, false
}

// Contains reports whether key is cached without touching recency or the
// hit/miss counters. The scheduler uses it to decide carry-over.
func (c *LRU[K, A]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Put inserts or replaces the artifact for key, evicting the least recently
// used entry first if the cache is at capacity. The new entry becomes the
// most recently used.
func (c *LRU[K, A]) Put(key K, artifact A) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.evictList.MoveToFront(el)
		el.Value.(*entry[K, A]).artifact = artifact
		return
	}

	for c.evictList.Len() >= c.capacity {
		c.removeElement(c.evictList.Back())
	}

	c.items[key] = c.evictList.PushFront(&entry[K, A]{key: key, artifact: artifact})
}

// Clear removes every entry, releasing owned resources through onEvict.
// Hit/miss counters are left alone.
func (c *LRU[K, A]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.evictList.Len() > 0 {
		c.removeElement(c.evictList.Back())
	}
}

// Len returns the number of cached entries.
func (c *LRU[K, A]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// HitRatio returns hits/(hits+misses), or 0 when no accesses have occurred.
func (c *LRU[K, A]) HitRatio() float64 {
	hits := c.hits.Load()
	total := hits + c.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Stats returns the raw hit and miss counters.
func (c *LRU[K, A]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *LRU[K, A]) removeElement(el *list.Element) {
	if el == nil {
		return
	}
	c.evictList.Remove(el)
	e := el.Value.(*entry[K, A])
	delete(c.items, e.key)
	if c.onEvict != nil {
		c.onEvict(e.key, e.artifact)
	}
}
