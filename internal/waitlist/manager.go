// Package waitlist manages the FIFO queues that form behind full sessions and
// roles, and the exactly-once promotion of entries into freed seats.
package waitlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/campscape/registration-engine/internal/domain"
	"github.com/campscape/registration-engine/internal/ledger"
	"github.com/google/uuid"
)

// Requester identifies who is queueing and where to reach them when a seat
// opens up.
type Requester struct {
	ParentID int
	ChildID  *int
	Email    string
}

type Manager struct {
	repo     domain.WaitlistRepository
	sessions domain.SessionRepository
	ledger   *ledger.Ledger
}

func NewManager(repo domain.WaitlistRepository, sessions domain.SessionRepository, l *ledger.Ledger) *Manager {
	return &Manager{
		repo:     repo,
		sessions: sessions,
		ledger:   l,
	}
}

// Add appends a new Waiting entry for the (session, optional role) pair. The
// repository assigns the monotonic position that defines promotion order. Add
// never touches the capacity ledger.
func (m *Manager) Add(ctx context.Context, sessionID int, roleID *int, requester Requester) (*domain.WaitlistEntry, error) {
	session, err := m.sessions.GetById(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.NewError(domain.ErrKindSessionNotFound, "session_id", sessionID)
		}

		return nil, err
	}

	if roleID != nil {
		if !session.RequiresRole() {
			return nil, domain.NewError(domain.ErrKindNoRolesRequired,
				"session_id", sessionID, "role_id", *roleID)
		}

		if _, ok := session.Role(*roleID); !ok {
			return nil, domain.NewError(domain.ErrKindInvalidRoleId,
				"session_id", sessionID, "role_id", *roleID)
		}
	} else if session.RequiresRole() {
		return nil, domain.NewError(domain.ErrKindMissingRoleSelection, "session_id", sessionID)
	}

	entry := &domain.WaitlistEntry{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		RoleID:    roleID,
		ParentID:  requester.ParentID,
		ChildID:   requester.ChildID,
		Email:     requester.Email,
		Status:    domain.WaitlistStatusWaiting,
	}

	if err := m.repo.Insert(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// Remove cancels a Waiting entry. Promotion is irreversible through this
// path, and removed entries stay removed; both cases report InvalidState.
func (m *Manager) Remove(ctx context.Context, entryID string) error {
	entry, err := m.getEntry(ctx, entryID)
	if err != nil {
		return err
	}

	if entry.Status.Terminal() {
		return domain.NewError(domain.ErrKindWaitlistInvalidState,
			"entry_id", entryID, "status", string(entry.Status))
	}

	err = m.repo.UpdateStatus(ctx, entryID, domain.WaitlistStatusWaiting, domain.WaitlistStatusRemoved)
	if errors.Is(err, domain.ErrEditConflict) {
		// Lost a race with a concurrent promote or remove.
		return domain.NewError(domain.ErrKindWaitlistInvalidState, "entry_id", entryID)
	}

	return err
}

// Promote claims one seat for the targeted entry through the capacity ledger
// and marks it Promoted. On a capacity failure the entry stays Waiting and
// the ledger's error is returned untouched, so the caller can move on to the
// next entry in line.
func (m *Manager) Promote(ctx context.Context, entryID string) (*domain.WaitlistEntry, error) {
	entry, err := m.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if entry.Status != domain.WaitlistStatusWaiting {
		return nil, domain.NewError(domain.ErrKindWaitlistInvalidState,
			"entry_id", entryID, "status", string(entry.Status))
	}

	if err := m.ledger.Reserve(ctx, entry.SessionID, entry.RoleID, 1); err != nil {
		return nil, err
	}

	err = m.repo.UpdateStatus(ctx, entryID, domain.WaitlistStatusWaiting, domain.WaitlistStatusPromoted)
	if err != nil {
		// The seat was claimed but the entry moved under us; give the seat
		// back so it is not consumed twice for the same promotion.
		if releaseErr := m.ledger.Release(ctx, entry.SessionID, entry.RoleID, 1); releaseErr != nil {
			return nil, fmt.Errorf("promote rollback failed: %w", errors.Join(err, releaseErr))
		}

		if errors.Is(err, domain.ErrEditConflict) {
			return nil, domain.NewError(domain.ErrKindWaitlistInvalidState, "entry_id", entryID)
		}

		return nil, err
	}

	entry.Status = domain.WaitlistStatusPromoted

	return entry, nil
}

// ListForSession returns the session's entries in FIFO order, optionally
// narrowed to one status.
func (m *Manager) ListForSession(ctx context.Context, sessionID int, status domain.WaitlistStatus) ([]domain.WaitlistEntry, error) {
	return m.repo.ListBySession(ctx, sessionID, status)
}

func (m *Manager) ListForParent(ctx context.Context, parentID int, pagination domain.Pagination) ([]domain.WaitlistEntry, *domain.Metadata, error) {
	return m.repo.ListByParent(ctx, parentID, pagination)
}

func (m *Manager) getEntry(ctx context.Context, entryID string) (*domain.WaitlistEntry, error) {
	entry, err := m.repo.GetById(ctx, entryID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.NewError(domain.ErrKindWaitlistEntryNotFound, "entry_id", entryID)
		}

		return nil, err
	}

	return entry, nil
}
