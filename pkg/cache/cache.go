// Package cache stores previously generated allocation proposals keyed by the
// staffing-relevant state they were computed from.
package cache

import (
	"context"
	"time"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

// DefaultTTL is how long a cached proposal stays valid.
const DefaultTTL = 2 * time.Minute

// DefaultMaxEntries is the size above which writes trigger eviction.
const DefaultMaxEntries = 100

// AllocationCache maps a demand/roster fingerprint to a proposal.
// Implementations must be safe for concurrent use. A stale entry is a miss.
type AllocationCache interface {
	Get(ctx context.Context, key string) (*models.AllocationProposal, bool, error)
	Set(ctx context.Context, key string, proposal *models.AllocationProposal) error
}

var (
	_ AllocationCache = (*MemoryCache)(nil)
	_ AllocationCache = (*RedisCache)(nil)
)
