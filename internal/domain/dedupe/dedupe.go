// Package dedupe provides a bounded in-memory cache of recently applied
// idempotency keys.
//
// The vote ledger's unique index is the authority on duplicates; this cache
// only lets the ingestion gateway acknowledge a redelivered key without a
// database round trip. Keys are recorded strictly after the ledger has the
// row, so a cache miss is never wrong, only slower.
package dedupe

import (
	"sync"
)

// Cache tracks recently applied idempotency keys.
type Cache interface {
	// Seen reports whether the key is known to be applied already.
	Seen(key string) bool

	// Record remembers an applied key, evicting the oldest entry when full.
	Record(key string)

	// Size returns the current number of cached keys.
	Size() int
}

// Option applies a configuration option to the cache.
type Option func(*ringCache)

// WithMaxSize bounds the number of cached keys. Non-positive values keep
// the default.
func WithMaxSize(n int) Option {
	return func(c *ringCache) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// ringCache implements Cache with a map plus FIFO ring eviction.
type ringCache struct {
	mu      sync.RWMutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
}

// NewCache creates a bounded cache with configuration options.
func NewCache(opts ...Option) Cache {
	c := &ringCache{maxSize: 50000}
	for _, opt := range opts {
		opt(c)
	}
	c.seen = make(map[string]struct{}, c.maxSize)
	c.ring = make([]string, c.maxSize)
	return c
}

func (c *ringCache) Seen(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.seen[key]
	return ok
}

func (c *ringCache) Record(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[key]; ok {
		return
	}
	if old := c.ring[c.next]; old != "" {
		delete(c.seen, old)
	}
	c.ring[c.next] = key
	c.next = (c.next + 1) % c.maxSize
	c.seen[key] = struct{}{}
}

func (c *ringCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.seen)
}
