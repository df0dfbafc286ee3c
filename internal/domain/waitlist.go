package domain

import (
	"context"
	"time"
)

type WaitlistStatus string

const (
	WaitlistStatusWaiting  WaitlistStatus = "waiting"
	WaitlistStatusPromoted WaitlistStatus = "promoted"
	WaitlistStatusRemoved  WaitlistStatus = "removed"
)

// Terminal reports whether the status permits no further transitions.
func (s WaitlistStatus) Terminal() bool {
	return s == WaitlistStatusPromoted || s == WaitlistStatusRemoved
}

// WaitlistEntry is one place in the FIFO queue for a (session, optional role)
// pair. Position is a monotonically increasing sequence assigned at insert;
// it alone defines promotion order. Entries transition Waiting to Promoted or
// Waiting to Removed, both terminal; re-adding after removal creates a new
// entry with a fresh position.
type WaitlistEntry struct {
	ID        string
	SessionID int
	RoleID    *int
	ParentID  int
	ChildID   *int
	Email     string
	Position  int64
	Status    WaitlistStatus
	CreatedAt time.Time
}

// MatchesSeat reports whether the entry is queued for the given freed seat.
// Seats freed from a role-less session only match entries without a role.
func (e *WaitlistEntry) MatchesSeat(sessionID int, roleID *int) bool {
	if e.SessionID != sessionID {
		return false
	}

	if roleID == nil {
		return e.RoleID == nil
	}

	return e.RoleID != nil && *e.RoleID == *roleID
}

type WaitlistRepository interface {
	// Insert persists the entry and assigns its Position.
	Insert(ctx context.Context, entry *WaitlistEntry) error
	GetById(ctx context.Context, id string) (*WaitlistEntry, error)
	// UpdateStatus transitions the entry only when it currently has the
	// expected status, returning ErrEditConflict otherwise.
	UpdateStatus(ctx context.Context, id string, from, to WaitlistStatus) error
	// ListBySession returns entries ordered by ascending position. A non-empty
	// status narrows the listing.
	ListBySession(ctx context.Context, sessionID int, status WaitlistStatus) ([]WaitlistEntry, error)
	ListByParent(ctx context.Context, parentID int, pagination Pagination) ([]WaitlistEntry, *Metadata, error)
}
