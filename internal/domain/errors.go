package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrEditConflict   = errors.New("edit conflict")
	ErrCartNotFound   = errors.New("cart not found or has expired")
)

// ErrorKind identifies an expected failure condition. Kinds are stable keys:
// the presentation layer maps them to status codes and localized messages,
// the core never carries display text.
type ErrorKind string

const (
	ErrKindSessionNotFound         ErrorKind = "SESSION_NOT_FOUND"
	ErrKindInvalidRoleId           ErrorKind = "INVALID_ROLE_ID"
	ErrKindMissingRoleSelection    ErrorKind = "MISSING_ROLE_SELECTION"
	ErrKindNoRolesRequired         ErrorKind = "NO_ROLES_REQUIRED"
	ErrKindRoleAssignmentMismatch  ErrorKind = "ROLE_ASSIGNMENT_MISMATCH"
	ErrKindRoleCapacityExceeded    ErrorKind = "ROLE_CAPACITY_EXCEEDED"
	ErrKindSessionCapacityExceeded ErrorKind = "SESSION_CAPACITY_EXCEEDED"
	ErrKindWaitlistEntryNotFound   ErrorKind = "WAITLIST_ENTRY_NOT_FOUND"
	ErrKindWaitlistInvalidState    ErrorKind = "WAITLIST_INVALID_STATE"
)

// Error is a typed failure value carrying a kind plus structured parameters.
type Error struct {
	Kind   ErrorKind
	Params map[string]any
}

// NewError builds an Error from a kind and alternating key/value parameters,
// in the manner of slog attributes.
func NewError(kind ErrorKind, params ...any) *Error {
	e := &Error{Kind: kind}

	if len(params) > 0 {
		e.Params = make(map[string]any, len(params)/2)

		for i := 0; i+1 < len(params); i += 2 {
			key, ok := params[i].(string)
			if !ok {
				key = fmt.Sprintf("%v", params[i])
			}
			e.Params[key] = params[i+1]
		}
	}

	return e
}

func (e *Error) Error() string {
	if len(e.Params) == 0 {
		return string(e.Kind)
	}

	keys := make([]string, 0, len(e.Params))
	for k := range e.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(string(e.Kind))

	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, e.Params[k])
	}

	return sb.String()
}

// IsKind reports whether err is (or wraps) a domain Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var domainErr *Error
	return errors.As(err, &domainErr) && domainErr.Kind == kind
}

// IsCapacityExceeded reports whether err denotes a full role or session.
// Callers should treat it as "offer the waitlist", not as blind-retryable.
func IsCapacityExceeded(err error) bool {
	return IsKind(err, ErrKindRoleCapacityExceeded) || IsKind(err, ErrKindSessionCapacityExceeded)
}
