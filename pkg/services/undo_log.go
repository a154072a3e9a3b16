package services

import (
	"sync"
	"time"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

const (
	defaultUndoDepth    = 20
	defaultUndoSessions = 1000
)

// UndoLog keeps, per chat session, the proposals that preceded each mutation.
// Depth per session and the number of sessions are both bounded; the least
// recently touched session is dropped first.
type UndoLog struct {
	mu          sync.Mutex
	depth       int
	maxSessions int
	sessions    map[string]*undoStack
	now         func() time.Time
}

type undoStack struct {
	proposals []*models.AllocationProposal
	touched   time.Time
}

// NewUndoLog creates a log keeping up to depth snapshots per session.
func NewUndoLog(depth int) *UndoLog {
	if depth <= 0 {
		depth = defaultUndoDepth
	}
	return &UndoLog{
		depth:       depth,
		maxSessions: defaultUndoSessions,
		sessions:    make(map[string]*undoStack),
		now:         time.Now,
	}
}

// Push records a snapshot of p for session. Empty sessions and nil proposals are ignored.
func (u *UndoLog) Push(session string, p *models.AllocationProposal) {
	if session == "" || p == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	s, ok := u.sessions[session]
	if !ok {
		if len(u.sessions) >= u.maxSessions {
			u.evictOldestLocked()
		}
		s = &undoStack{}
		u.sessions[session] = s
	}
	s.proposals = append(s.proposals, p.Clone())
	if len(s.proposals) > u.depth {
		s.proposals = s.proposals[len(s.proposals)-u.depth:]
	}
	s.touched = u.now()
}

// Pop returns the most recent snapshot for session.
func (u *UndoLog) Pop(session string) (*models.AllocationProposal, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	s, ok := u.sessions[session]
	if !ok || len(s.proposals) == 0 {
		return nil, false
	}
	last := s.proposals[len(s.proposals)-1]
	s.proposals = s.proposals[:len(s.proposals)-1]
	s.touched = u.now()
	if len(s.proposals) == 0 {
		delete(u.sessions, session)
	}
	return last, true
}

// Len returns how many snapshots session holds.
func (u *UndoLog) Len(session string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	if s, ok := u.sessions[session]; ok {
		return len(s.proposals)
	}
	return 0
}

func (u *UndoLog) evictOldestLocked() {
	var oldest string
	var oldestAt time.Time
	for id, s := range u.sessions {
		if oldest == "" || s.touched.Before(oldestAt) {
			oldest, oldestAt = id, s.touched
		}
	}
	delete(u.sessions, oldest)
}
