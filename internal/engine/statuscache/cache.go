// internal/engine/statuscache/cache.go

// Package statuscache holds provider-reported delivery statuses keyed by the
// provider-issued message id. The cache is advisory: a miss means "unknown",
// never "failed". It is not authoritative storage.
package statuscache

import (
	"context"
	"sync"

	"license-alert-engine/internal/models"
)

type Cache interface {
	Put(ctx context.Context, st models.DeliveryStatus) error
	Get(ctx context.Context, messageID string) (*models.DeliveryStatus, error)
}

// MemoryCache is a bounded in-memory cache. When full, the oldest entry is
// evicted.
type MemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]models.DeliveryStatus
	order      []string // insertion order for eviction
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &MemoryCache{
		maxEntries: maxEntries,
		entries:    make(map[string]models.DeliveryStatus, maxEntries),
	}
}

func (c *MemoryCache) Put(ctx context.Context, st models.DeliveryStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[st.MessageID]; !exists {
		if len(c.order) >= c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, st.MessageID)
	}
	c.entries[st.MessageID] = st
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, messageID string) (*models.DeliveryStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.entries[messageID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// Len returns the number of cached statuses.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
