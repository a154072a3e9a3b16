package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

type memoryEntry struct {
	proposal *models.AllocationProposal
	storedAt time.Time
}

// MemoryCache is an in-process AllocationCache. Stale entries are treated as
// misses on read and removed opportunistically on the next write that finds the
// cache above its size bound. There is no background sweeper.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	logger     *zap.Logger
}

// NewMemoryCache creates a cache with the given TTL and size bound.
// Non-positive values fall back to DefaultTTL and DefaultMaxEntries.
func NewMemoryCache(ttl time.Duration, maxEntries int, logger *zap.Logger) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		logger:     logger.Named("allocation-cache"),
	}
}

// Get returns a copy of the cached proposal if present and fresh.
func (c *MemoryCache) Get(_ context.Context, key string) (*models.AllocationProposal, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		return nil, false, nil
	}
	return e.proposal.Clone(), true, nil
}

// Set stores a copy of proposal. Last writer wins.
func (c *MemoryCache) Set(_ context.Context, key string, proposal *models.AllocationProposal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{proposal: proposal.Clone(), storedAt: c.now()}

	if len(c.entries) > c.maxEntries {
		c.evictLocked()
	}
	return nil
}

// evictLocked drops stale entries, then the oldest entries until the cache is
// back within its bound. Caller holds the write lock.
func (c *MemoryCache) evictLocked() {
	now := c.now()
	stale := 0
	for k, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, k)
			stale++
		}
	}

	oldest := 0
	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.storedAt.Before(oldestAt) {
				oldestKey, oldestAt = k, e.storedAt
			}
		}
		delete(c.entries, oldestKey)
		oldest++
	}

	c.logger.Debug("Evicted allocation cache entries",
		zap.Int("stale", stale),
		zap.Int("oldest", oldest),
		zap.Int("remaining", len(c.entries)))
}

// Len returns the number of entries currently held, fresh or stale.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
