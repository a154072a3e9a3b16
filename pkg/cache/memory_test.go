package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

func newTestCache(ttl time.Duration, maxEntries int) (*MemoryCache, *time.Time) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewMemoryCache(ttl, maxEntries, zap.NewNop())
	c.now = func() time.Time { return now }
	return c, &now
}

func proposal(name string) *models.AllocationProposal {
	return &models.AllocationProposal{
		ProposalID:  uuid.New(),
		ProjectName: name,
		RoleAllocations: []models.RoleAllocation{
			{RoleName: "Backend Developer", Recommendations: []models.Recommendation{
				{EmployeeID: "e1", EmployeeName: "Ada", Status: models.RecommendationNew, AllocationPercent: 100},
			}},
		},
	}
}

func TestMemoryCache_HitWithinTTL(t *testing.T) {
	c, now := newTestCache(2*time.Minute, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", proposal("Atlas")))
	*now = now.Add(119 * time.Second)

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Atlas", got.ProjectName)
}

func TestMemoryCache_StaleIsMiss(t *testing.T) {
	c, now := newTestCache(2*time.Minute, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", proposal("Atlas")))
	*now = now.Add(2*time.Minute + time.Second)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c, _ := newTestCache(time.Minute, 10)
	ctx := context.Background()

	p := proposal("Atlas")
	require.NoError(t, c.Set(ctx, "k", p))
	p.RoleAllocations[0].Recommendations[0].EmployeeName = "mutated"

	got, ok, _ := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "Ada", got.RoleAllocations[0].Recommendations[0].EmployeeName)

	got.RoleAllocations[0].Recommendations[0].EmployeeName = "mutated again"
	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "Ada", again.RoleAllocations[0].Recommendations[0].EmployeeName)
}

func TestMemoryCache_LazyEvictionOnWrite(t *testing.T) {
	c, now := newTestCache(time.Minute, 2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", proposal("A")))
	require.NoError(t, c.Set(ctx, "b", proposal("B")))
	*now = now.Add(2 * time.Minute)

	// Stale entries stay until a write pushes the cache over its bound.
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Set(ctx, "c", proposal("C")))
	assert.Equal(t, 1, c.Len())
	_, ok, _ := c.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemoryCache_EvictsOldestWhenAllFresh(t *testing.T) {
	c, now := newTestCache(time.Hour, 2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", proposal("A")))
	*now = now.Add(time.Second)
	require.NoError(t, c.Set(ctx, "b", proposal("B")))
	*now = now.Add(time.Second)
	require.NoError(t, c.Set(ctx, "c", proposal("C")))

	assert.Equal(t, 2, c.Len())
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(time.Minute, 50, zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("k%d", (i+j)%70)
				_ = c.Set(ctx, key, proposal(key))
				_, _, _ = c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}

func TestNewMemoryCache_Defaults(t *testing.T) {
	c := NewMemoryCache(0, 0, zap.NewNop())
	assert.Equal(t, DefaultTTL, c.ttl)
	assert.Equal(t, DefaultMaxEntries, c.maxEntries)
}
