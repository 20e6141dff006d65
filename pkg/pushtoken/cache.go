package pushtoken

import (
	"context"
	"sync"
)

// Cache is the local key-value store consumed by Store. Implementations must
// return ErrCacheMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryCache is an in-process Cache for development and testing.
type MemoryCache struct {
	values map[string]string
	mu     sync.RWMutex
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: make(map[string]string)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.values[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (c *MemoryCache) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}
