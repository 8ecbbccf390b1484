package testutil

import (
	"context"
	"sync"
)

// MemCache is an in-memory list cache with the same generation rule as
// store.BlogListCache: Set is ignored once Invalidate has run after the
// generation was read.
type MemCache struct {
	mu            sync.Mutex
	body          []byte
	gen           int64
	sets          int
	invalidations int
}

func NewMemCache() *MemCache {
	return &MemCache{}
}

func (c *MemCache) Get(context.Context) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.body, c.body != nil, nil
}

func (c *MemCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *MemCache) Set(_ context.Context, gen int64, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	c.sets++
	c.body = append([]byte(nil), body...)
	return nil
}

func (c *MemCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidations++
	c.body = nil
	return nil
}

// Sets counts stored bodies.
func (c *MemCache) Sets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

// Invalidations counts Invalidate calls.
func (c *MemCache) Invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations
}
