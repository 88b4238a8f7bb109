package cache

import (
	"sync"
)

// TextCache memoises text produced by a remote service.
type TextCache interface {
	// Get retrieves a cached value.
	Get(key string) (string, bool)
	// Put stores a value.
	Put(key string, value string)
	// Size returns the number of items in the cache.
	Size() int
}

// MapCache is an unbounded in-memory TextCache, scoped to one process.
type MapCache struct {
	data map[string]string
	mu   sync.RWMutex
}

func NewMapCache() *MapCache {
	return &MapCache{
		data: make(map[string]string),
	}
}

func (c *MapCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *MapCache) Put(key string, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

func (c *MapCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Key joins the parts of a cache key with a separator that cannot occur in a line.
func Key(parts ...string) string {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	b := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, p...)
	}
	return string(b)
}
