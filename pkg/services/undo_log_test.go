package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

func namedProposal(name string) *models.AllocationProposal {
	return &models.AllocationProposal{ProjectName: name, RoleAllocations: []models.RoleAllocation{}}
}

func TestUndoLog_LastInFirstOut(t *testing.T) {
	u := NewUndoLog(0)
	u.Push("s1", namedProposal("first"))
	u.Push("s1", namedProposal("second"))

	p, ok := u.Pop("s1")
	require.True(t, ok)
	assert.Equal(t, "second", p.ProjectName)

	p, ok = u.Pop("s1")
	require.True(t, ok)
	assert.Equal(t, "first", p.ProjectName)

	_, ok = u.Pop("s1")
	assert.False(t, ok)
}

func TestUndoLog_BoundedDepth(t *testing.T) {
	u := NewUndoLog(2)
	for _, name := range []string{"a", "b", "c"} {
		u.Push("s1", namedProposal(name))
	}

	assert.Equal(t, 2, u.Len("s1"))
	p, _ := u.Pop("s1")
	assert.Equal(t, "c", p.ProjectName)
	p, _ = u.Pop("s1")
	assert.Equal(t, "b", p.ProjectName)
}

func TestUndoLog_StoresSnapshots(t *testing.T) {
	u := NewUndoLog(5)
	original := namedProposal("before")
	u.Push("s1", original)
	original.ProjectName = "after"

	p, ok := u.Pop("s1")
	require.True(t, ok)
	assert.Equal(t, "before", p.ProjectName)
}

func TestUndoLog_IgnoresAnonymousAndNil(t *testing.T) {
	u := NewUndoLog(5)
	u.Push("", namedProposal("x"))
	u.Push("s1", nil)

	assert.Equal(t, 0, u.Len(""))
	assert.Equal(t, 0, u.Len("s1"))
}

func TestUndoLog_EvictsLeastRecentSession(t *testing.T) {
	u := NewUndoLog(5)
	u.maxSessions = 2
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	u.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	u.Push("s1", namedProposal("1"))
	u.Push("s2", namedProposal("2"))
	u.Push("s1", namedProposal("1b"))
	u.Push("s3", namedProposal("3"))

	assert.Equal(t, 2, u.Len("s1"))
	assert.Equal(t, 0, u.Len("s2"))
	assert.Equal(t, 1, u.Len("s3"))
}
