package waitlist

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/campscape/registration-engine/internal/domain"
	"github.com/campscape/registration-engine/internal/mailer"
)

func newTestSweeper(t *testing.T, sessions ...*domain.Session) (*Sweeper, *Manager, *mailer.MockMailer) {
	t.Helper()

	manager, _ := newTestManager(t, sessions...)
	mockMailer := mailer.NewMockMailer()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewSweeper(manager, mockMailer, logger), manager, mockMailer
}

func TestSeatFreedPromotesInFIFOOrder(t *testing.T) {
	session := campfireSession()
	session.Capacity = 2

	sweeper, manager, mockMailer := newTestSweeper(t, session)
	ctx := context.Background()

	first, err := manager.Add(ctx, 2, nil, requester(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := manager.Add(ctx, 2, nil, requester(2)); err != nil {
		t.Fatal(err)
	}

	promoted, err := sweeper.SeatFreed(ctx, 2, nil, 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(promoted) != 1 {
		t.Fatalf("promoted %d entries, want 1", len(promoted))
	}
	if promoted[0].ID != first.ID {
		t.Errorf("promoted entry %s, want the oldest entry %s", promoted[0].ID, first.ID)
	}

	sent := mockMailer.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sent))
	}
	if sent[0].Recipient != "parent@example.com" {
		t.Errorf("email recipient = %s, want parent@example.com", sent[0].Recipient)
	}
	if sent[0].Template != "waitlist_promoted.tmpl" {
		t.Errorf("email template = %s", sent[0].Template)
	}

	data, ok := sent[0].Data.(map[string]any)
	if !ok || data["entryID"] != first.ID {
		t.Errorf("email data = %v, want entry %s", sent[0].Data, first.ID)
	}
}

func TestSeatFreedFillsMultipleSeats(t *testing.T) {
	session := campfireSession()
	session.Capacity = 3

	sweeper, manager, _ := newTestSweeper(t, session)
	ctx := context.Background()

	for parentID := 1; parentID <= 3; parentID++ {
		if _, err := manager.Add(ctx, 2, nil, requester(parentID)); err != nil {
			t.Fatal(err)
		}
	}

	promoted, err := sweeper.SeatFreed(ctx, 2, nil, 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(promoted) != 2 {
		t.Fatalf("promoted %d entries, want 2", len(promoted))
	}

	waiting, err := manager.ListForSession(ctx, 2, domain.WaitlistStatusWaiting)
	if err != nil {
		t.Fatal(err)
	}
	if len(waiting) != 1 {
		t.Errorf("%d entries still waiting, want 1", len(waiting))
	}
}

func TestSeatFreedSkipsOtherRoles(t *testing.T) {
	sweeper, manager, _ := newTestSweeper(t, scoutSession())
	ctx := context.Background()

	if _, err := manager.Add(ctx, 1, ptr(2), requester(1)); err != nil {
		t.Fatal(err)
	}

	navigator, err := manager.Add(ctx, 1, ptr(1), requester(2))
	if err != nil {
		t.Fatal(err)
	}

	promoted, err := sweeper.SeatFreed(ctx, 1, ptr(1), 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(promoted) != 1 {
		t.Fatalf("promoted %d entries, want 1", len(promoted))
	}
	if promoted[0].ID != navigator.ID {
		t.Errorf("promoted entry for the wrong role")
	}
}

func TestSeatFreedStopsWhenCapacityGone(t *testing.T) {
	sweeper, manager, mockMailer := newTestSweeper(t, campfireSession())
	ctx := context.Background()

	if _, err := manager.Add(ctx, 2, nil, requester(1)); err != nil {
		t.Fatal(err)
	}

	// The seat went to a direct registration before the sweep ran.
	if err := manager.ledger.Reserve(ctx, 2, nil, 1); err != nil {
		t.Fatal(err)
	}

	promoted, err := sweeper.SeatFreed(ctx, 2, nil, 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(promoted) != 0 {
		t.Errorf("promoted %d entries with no free seats, want 0", len(promoted))
	}

	waiting, err := manager.ListForSession(ctx, 2, domain.WaitlistStatusWaiting)
	if err != nil {
		t.Fatal(err)
	}
	if len(waiting) != 1 {
		t.Errorf("%d entries waiting, want 1", len(waiting))
	}
	if len(mockMailer.SentMessages()) != 0 {
		t.Errorf("emails sent for a failed promotion")
	}
}

func TestSeatFreedSkipsEntriesWithoutEmail(t *testing.T) {
	session := campfireSession()

	sweeper, manager, mockMailer := newTestSweeper(t, session)
	ctx := context.Background()

	if _, err := manager.Add(ctx, 2, nil, Requester{ParentID: 1}); err != nil {
		t.Fatal(err)
	}

	promoted, err := sweeper.SeatFreed(ctx, 2, nil, 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(promoted) != 1 {
		t.Fatalf("promoted %d entries, want 1", len(promoted))
	}
	if len(mockMailer.SentMessages()) != 0 {
		t.Errorf("email sent for an entry without an address")
	}
}
