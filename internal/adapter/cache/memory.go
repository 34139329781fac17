package cache

import (
	"sync"
	"time"
)

// MemoryCache is an in-process LRU with TTL for the web server, where a
// per-run bolt file would not survive concurrent requests well.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*memEntry
	order   []string
	maxSize int
	ttl     time.Duration
}

type memEntry struct {
	docstring string
	timestamp time.Time
}

func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryCache{
		entries: make(map[string]*memEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return "", false
	}

	if time.Since(entry.timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.mu.Unlock()
		return "", false
	}

	c.mu.Lock()
	c.moveToEnd(key)
	c.mu.Unlock()

	return entry.docstring, true
}

func (c *MemoryCache) Put(key string, docstring string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &memEntry{docstring: docstring, timestamp: time.Now()}
		c.moveToEnd(key)
		return nil
	}

	if len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &memEntry{docstring: docstring, timestamp: time.Now()}
	c.order = append(c.order, key)
	return nil
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*memEntry)
	c.order = c.order[:0]
	return nil
}

func (c *MemoryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *MemoryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}
