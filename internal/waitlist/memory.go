package waitlist

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campscape/registration-engine/internal/domain"
)

// MemoryRepository is an in-process domain.WaitlistRepository. It backs the
// test suites and local development without a database.
type MemoryRepository struct {
	mu      sync.Mutex
	entries map[string]*domain.WaitlistEntry
	nextPos int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		entries: make(map[string]*domain.WaitlistEntry),
		nextPos: 1,
	}
}

func (r *MemoryRepository) Insert(ctx context.Context, entry *domain.WaitlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.Position = r.nextPos
	r.nextPos++
	entry.CreatedAt = time.Now()

	clone := *entry
	r.entries[entry.ID] = &clone

	return nil
}

func (r *MemoryRepository) GetById(ctx context.Context, id string) (*domain.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	clone := *entry

	return &clone, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id string, from, to domain.WaitlistStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return domain.ErrRecordNotFound
	}

	if entry.Status != from {
		return domain.ErrEditConflict
	}

	entry.Status = to

	return nil
}

func (r *MemoryRepository) ListBySession(ctx context.Context, sessionID int, status domain.WaitlistStatus) ([]domain.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []domain.WaitlistEntry

	for _, entry := range r.entries {
		if entry.SessionID != sessionID {
			continue
		}
		if status != "" && entry.Status != status {
			continue
		}

		entries = append(entries, *entry)
	}

	sortByPosition(entries)

	return entries, nil
}

func (r *MemoryRepository) ListByParent(ctx context.Context, parentID int, pagination domain.Pagination) ([]domain.WaitlistEntry, *domain.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []domain.WaitlistEntry

	for _, entry := range r.entries {
		if entry.ParentID == parentID {
			entries = append(entries, *entry)
		}
	}

	sortByPosition(entries)

	total := len(entries)
	start := min(pagination.Offset(), total)
	end := min(start+pagination.Limit(), total)

	return entries[start:end], domain.NewMetadata(total, pagination.Page, pagination.PageSize), nil
}

func sortByPosition(entries []domain.WaitlistEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Position < entries[j].Position
	})
}
