package waitlist

import (
	"context"
	"log/slog"

	"github.com/campscape/registration-engine/internal/domain"
	"github.com/campscape/registration-engine/internal/mailer"
)

// Sweeper reacts to freed seats by walking the matching Waiting entries in
// FIFO order and promoting the first one the ledger still has room for. It
// lives outside the core promotion protocol: the manager only ever promotes
// the explicit entry it is handed, and the sweeper owns the policy of which
// entry that is.
type Sweeper struct {
	manager *Manager
	mailer  mailer.Mailer
	logger  *slog.Logger
}

func NewSweeper(manager *Manager, m mailer.Mailer, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		manager: manager,
		mailer:  m,
		logger:  logger,
	}
}

// SeatFreed attempts to fill count freed seats on the (session, optional
// role) pair from the waitlist. Entries are tried strictly in ascending
// position; a capacity failure means the seat went elsewhere, so the next
// entry is tried. Returns the promoted entries.
func (s *Sweeper) SeatFreed(ctx context.Context, sessionID int, roleID *int, count int) ([]domain.WaitlistEntry, error) {
	waiting, err := s.manager.ListForSession(ctx, sessionID, domain.WaitlistStatusWaiting)
	if err != nil {
		return nil, err
	}

	var promoted []domain.WaitlistEntry

	for _, entry := range waiting {
		if len(promoted) >= count {
			break
		}

		if !entry.MatchesSeat(sessionID, roleID) {
			continue
		}

		result, err := s.manager.Promote(ctx, entry.ID)
		switch {
		case err == nil:
			promoted = append(promoted, *result)
			s.notify(*result)
		case domain.IsCapacityExceeded(err):
			// Seat no longer available for this entry; try the next one.
			continue
		case domain.IsKind(err, domain.ErrKindWaitlistInvalidState),
			domain.IsKind(err, domain.ErrKindWaitlistEntryNotFound):
			// Entry changed under us, skip it.
			continue
		default:
			return promoted, err
		}
	}

	return promoted, nil
}

func (s *Sweeper) notify(entry domain.WaitlistEntry) {
	if entry.Email == "" {
		return
	}

	data := map[string]any{
		"sessionID": entry.SessionID,
		"entryID":   entry.ID,
	}

	err := s.mailer.Send(entry.Email, "waitlist_promoted.tmpl", data)
	if err != nil {
		// Notification failure must not undo the promotion.
		s.logger.Error("failed to send waitlist promotion email",
			"entry_id", entry.ID, "error", err)
	}
}
