package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Session is a bookable event session. Capacity is the publicly declared seat
// count; HiddenBuffer is extra true capacity held back from display for
// administrative overbooking. Availability reported to end users is always
// computed against Capacity alone.
type Session struct {
	ID           int
	Name         string
	Capacity     int
	HiddenBuffer int
	Price        decimal.Decimal
	AgeMin       *int
	AgeMax       *int
	Roles        []Role
}

// Role is a character slot within a session. Role capacity is an independent
// axis from session capacity: when a session defines roles, the role counter
// is the binding constraint for that role's seats.
type Role struct {
	ID       int
	Name     string
	Capacity int
}

// RequiresRole reports whether bookings for this session must name a role.
func (s *Session) RequiresRole() bool {
	return len(s.Roles) > 0
}

// Role returns the role with the given id, if it belongs to this session.
func (s *Session) Role(roleID int) (Role, bool) {
	for _, r := range s.Roles {
		if r.ID == roleID {
			return r, true
		}
	}

	return Role{}, false
}

// BookableCapacity is the true session-level seat limit, buffer included.
func (s *Session) BookableCapacity() int {
	return s.Capacity + s.HiddenBuffer
}

type SessionRepository interface {
	GetById(ctx context.Context, id int) (*Session, error)
	GetByIds(ctx context.Context, ids []int) (map[int]*Session, error)
}
