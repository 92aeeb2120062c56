package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/iho/subledger/internal/usecase"
)

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// Cache implements usecase.Cache in memory.
type Cache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	now   func() time.Time
}

// NewCache creates a new Cache.
func NewCache() *Cache {
	return &Cache{
		items: make(map[string]cacheItem),
		now:   time.Now,
	}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || expired(item.expiresAt, c.now()) {
		return nil, usecase.ErrCacheMiss
	}
	return slices.Clone(item.value), nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheItem{value: slices.Clone(value), expiresAt: expiry(c.now(), ttl)}
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Sweep drops expired entries.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for k, item := range c.items {
		if expired(item.expiresAt, now) {
			delete(c.items, k)
			n++
		}
	}
	return n
}
