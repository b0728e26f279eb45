// Package recompute keeps group summaries warm. A worker consumes ledger
// events, invalidates the affected group's cached summary and recomputes it.
package recompute

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mmynk/settleup/internal/engine"
)

// DefaultCacheSize bounds the number of cached group summaries.
const DefaultCacheSize = 1024

// Cache is a bounded summary cache with a generation counter per group.
// A summary computed before the latest invalidation of its group is never
// stored.
type Cache struct {
	mu          sync.Mutex
	entries     *lru.Cache[string, *engine.Summary]
	generations map[string]uint64
}

// NewCache creates a cache holding up to size summaries.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, *engine.Summary](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary cache: %w", err)
	}
	return &Cache{entries: entries, generations: make(map[string]uint64)}, nil
}

// Get returns the cached summary of a group.
func (c *Cache) Get(groupID string) (*engine.Summary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(groupID)
}

// Generation returns the group's current generation. Pass it to Put with the
// summary computed afterwards.
func (c *Cache) Generation(groupID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[groupID]
}

// Invalidate drops the group's summary and returns the new generation.
func (c *Cache) Invalidate(groupID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[groupID]++
	c.entries.Remove(groupID)
	return c.generations[groupID]
}

// Put stores summary if no invalidation happened since generation was read.
// It reports whether the summary was stored.
func (c *Cache) Put(groupID string, generation uint64, summary *engine.Summary) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[groupID] != generation {
		return false
	}
	c.entries.Add(groupID, summary)
	return true
}

// Len returns the number of cached summaries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}
