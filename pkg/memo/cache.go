package memo

import (
	"sync"

	"github.com/ritzau/award-network/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes computed views by key. Concurrent misses on the same key
// share one computation. When full, the oldest entry is evicted.
type Cache[V any] struct {
	view    string
	maxSize int

	mu    sync.RWMutex
	items map[string]V
	order []string // insertion order, oldest first
	group singleflight.Group
}

// New creates a cache for the named view. maxSize <= 0 disables eviction.
func New[V any](view string, maxSize int) *Cache[V] {
	return &Cache[V]{
		view:    view,
		maxSize: maxSize,
		items:   make(map[string]V),
	}
}

// Get returns the cached value for key, computing and storing it on a miss.
// Errors are returned to every waiter and never cached.
func (c *Cache[V]) Get(key string, compute func() (V, error)) (V, error) {
	c.mu.RLock()
	if v, ok := c.items[key]; ok {
		c.mu.RUnlock()
		metrics.ViewCacheRequests.WithLabelValues(c.view, "hit").Inc()
		return v, nil
	}
	c.mu.RUnlock()

	result, err, shared := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		if v, ok := c.items[key]; ok {
			c.mu.RUnlock()
			return v, nil
		}
		c.mu.RUnlock()

		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.store(key, v)
		return v, nil
	})
	if shared {
		metrics.ViewCacheRequests.WithLabelValues(c.view, "shared").Inc()
	} else {
		metrics.ViewCacheRequests.WithLabelValues(c.view, "miss").Inc()
	}
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

func (c *Cache[V]) store(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists {
		c.order = append(c.order, key)
	}
	c.items[key] = v

	for c.maxSize > 0 && len(c.order) > c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}
}

// Len returns the number of cached entries
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge drops every entry, e.g. after the underlying graph changed
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]V)
	c.order = nil
}
