package ledger

import (
	"context"
	"sync"

	"github.com/campscape/registration-engine/internal/domain"
)

// MemoryStore keeps counters in process memory with per-session mutual
// exclusion. The lock is held only for the check-and-increment step.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int]*sessionCounters
}

type sessionCounters struct {
	mu       sync.Mutex
	assigned int
	perRole  map[int]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int]*sessionCounters),
	}
}

func (s *MemoryStore) Reserve(ctx context.Context, sessionID int, roleID *int, count int, limits Limits) error {
	sc := s.counters(sessionID)

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if roleID != nil {
		if sc.perRole[*roleID]+count > limits.Role {
			return domain.NewError(domain.ErrKindRoleCapacityExceeded,
				"session_id", sessionID, "role_id", *roleID)
		}
	}

	if sc.assigned+count > limits.Session {
		return domain.NewError(domain.ErrKindSessionCapacityExceeded, "session_id", sessionID)
	}

	if roleID != nil {
		sc.perRole[*roleID] += count
	}
	sc.assigned += count

	return nil
}

func (s *MemoryStore) Release(ctx context.Context, sessionID int, roleID *int, count int) error {
	sc := s.counters(sessionID)

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if roleID != nil {
		sc.perRole[*roleID] = max(sc.perRole[*roleID]-count, 0)
	}
	sc.assigned = max(sc.assigned-count, 0)

	return nil
}

func (s *MemoryStore) Counters(ctx context.Context, sessionID int) (Counters, error) {
	sc := s.counters(sessionID)

	sc.mu.Lock()
	defer sc.mu.Unlock()

	snapshot := Counters{
		Session: sc.assigned,
		PerRole: make(map[int]int, len(sc.perRole)),
	}
	for roleID, assigned := range sc.perRole {
		snapshot.PerRole[roleID] = assigned
	}

	return snapshot, nil
}

func (s *MemoryStore) counters(sessionID int) *sessionCounters {
	s.mu.RLock()
	sc, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if ok {
		return sc
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sc, ok = s.sessions[sessionID]; !ok {
		sc = &sessionCounters{perRole: make(map[int]int)}
		s.sessions[sessionID] = sc
	}

	return sc
}
