// Package ledger holds the authoritative occupied-seat counters per session
// and per role within a session. Every seat consumption in the system routes
// through Reserve; no other component mutates capacity.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/campscape/registration-engine/internal/domain"
)

// Limits are the true upper bounds a reservation is checked against. The
// session bound includes the hidden overbooking buffer; the role bound is the
// plain role capacity.
type Limits struct {
	Session int
	Role    int
}

// Counters is a point-in-time snapshot of assigned seats for one session.
type Counters struct {
	Session int
	PerRole map[int]int
}

// Store persists the assigned-seat counters. Reserve must apply its
// check-and-increment atomically per (session, role) key: two concurrent
// reservations for the last seat must not both succeed. When a role is given,
// the role counter and the session counter move together or not at all.
type Store interface {
	Reserve(ctx context.Context, sessionID int, roleID *int, count int, limits Limits) error
	Release(ctx context.Context, sessionID int, roleID *int, count int) error
	Counters(ctx context.Context, sessionID int) (Counters, error)
}

type RoleAvailability struct {
	RoleID    int
	Capacity  int
	Assigned  int
	Available int
}

type SessionAvailability struct {
	SessionID        int
	PerRole          []RoleAvailability
	SessionAvailable int
}

type Ledger struct {
	sessions domain.SessionRepository
	store    Store
}

func New(sessions domain.SessionRepository, store Store) *Ledger {
	return &Ledger{
		sessions: sessions,
		store:    store,
	}
}

// Availability reports the publicly visible seat situation of a session.
// Available figures are computed against the declared capacity only; the
// hidden buffer never leaks through this read model.
func (l *Ledger) Availability(ctx context.Context, sessionID int) (*SessionAvailability, error) {
	session, err := l.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	counters, err := l.store.Counters(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for roleID := range counters.PerRole {
		if _, ok := session.Role(roleID); !ok {
			return nil, domain.NewError(domain.ErrKindRoleAssignmentMismatch,
				"session_id", sessionID, "role_id", roleID)
		}
	}

	availability := &SessionAvailability{
		SessionID:        sessionID,
		SessionAvailable: clamp(session.Capacity-counters.Session, 0, session.Capacity),
	}

	for _, role := range session.Roles {
		assigned := counters.PerRole[role.ID]

		availability.PerRole = append(availability.PerRole, RoleAvailability{
			RoleID:    role.ID,
			Capacity:  role.Capacity,
			Assigned:  assigned,
			Available: clamp(role.Capacity-assigned, 0, role.Capacity),
		})
	}

	return availability, nil
}

// Registrations returns the session-level assigned count. Consumed by the
// reward display path only, never by booking.
func (l *Ledger) Registrations(ctx context.Context, sessionID int) (int, error) {
	if _, err := l.getSession(ctx, sessionID); err != nil {
		return 0, err
	}

	counters, err := l.store.Counters(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	return counters.Session, nil
}

// Reserve atomically claims count seats on the session, and on the given role
// when one is supplied. On any failure no counter moves and a typed error
// reports which constraint rejected the claim.
func (l *Ledger) Reserve(ctx context.Context, sessionID int, roleID *int, count int) error {
	if count < 1 {
		return fmt.Errorf("reserve count must be positive, got %d", count)
	}

	limits, err := l.limitsFor(ctx, sessionID, roleID)
	if err != nil {
		return err
	}

	return l.store.Reserve(ctx, sessionID, roleID, count, limits)
}

// Release returns count seats, flooring counters at zero so a double release
// cannot drive them negative.
func (l *Ledger) Release(ctx context.Context, sessionID int, roleID *int, count int) error {
	if count < 1 {
		return fmt.Errorf("release count must be positive, got %d", count)
	}

	if _, err := l.limitsFor(ctx, sessionID, roleID); err != nil {
		return err
	}

	return l.store.Release(ctx, sessionID, roleID, count)
}

func (l *Ledger) getSession(ctx context.Context, sessionID int) (*domain.Session, error) {
	session, err := l.sessions.GetById(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.NewError(domain.ErrKindSessionNotFound, "session_id", sessionID)
		}

		return nil, err
	}

	return session, nil
}

func (l *Ledger) limitsFor(ctx context.Context, sessionID int, roleID *int) (Limits, error) {
	session, err := l.getSession(ctx, sessionID)
	if err != nil {
		return Limits{}, err
	}

	limits := Limits{Session: session.BookableCapacity()}

	if roleID == nil {
		if session.RequiresRole() {
			return Limits{}, domain.NewError(domain.ErrKindMissingRoleSelection, "session_id", sessionID)
		}

		return limits, nil
	}

	if !session.RequiresRole() {
		return Limits{}, domain.NewError(domain.ErrKindNoRolesRequired,
			"session_id", sessionID, "role_id", *roleID)
	}

	role, ok := session.Role(*roleID)
	if !ok {
		return Limits{}, domain.NewError(domain.ErrKindInvalidRoleId,
			"session_id", sessionID, "role_id", *roleID)
	}

	limits.Role = role.Capacity

	return limits, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
