// Package cache provides bounded LRU caches shared by the query engine and
// the MCP widget registry.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a thread-safe, fixed-size least-recently-used cache.
type LRU[K comparable, V any] struct {
	cache *lru.Cache[K, V]
}

// New creates an LRU cache holding at most maxItems entries.
func New[K comparable, V any](maxItems int) (*LRU[K, V], error) {
	c, err := lru.New[K, V](maxItems)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{cache: c}, nil
}

// Get retrieves a value by key.
// Returns the value and true if found, the zero value and false otherwise.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	return c.cache.Get(key)
}

// Put adds or updates a value.
func (c *LRU[K, V]) Put(key K, value V) {
	c.cache.Add(key, value)
}

// GetOrCreate returns the cached value for key, or builds it with create,
// stores it and returns it. A failing create leaves the cache untouched.
func (c *LRU[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.cache.Add(key, v)
	return v, nil
}

// Remove evicts key if present.
func (c *LRU[K, V]) Remove(key K) {
	c.cache.Remove(key)
}

// Len returns the current number of items in the cache.
func (c *LRU[K, V]) Len() int {
	return c.cache.Len()
}
