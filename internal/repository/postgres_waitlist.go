package repository

import (
	"context"
	"errors"

	"github.com/campscape/registration-engine/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresWaitlistRepository struct {
	db *pgxpool.Pool
}

func NewPostgresWaitlistRepository(db *pgxpool.Pool) *PostgresWaitlistRepository {
	return &PostgresWaitlistRepository{
		db: db,
	}
}

func (p *PostgresWaitlistRepository) Insert(ctx context.Context, entry *domain.WaitlistEntry) error {
	// position is a BIGSERIAL; the database hands out the monotonic sequence
	// that defines FIFO order.
	query := `
		INSERT INTO waitlist_entries (id, session_id, role_id, parent_id, child_id, email, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING position, created_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		entry.ID,
		entry.SessionID,
		entry.RoleID,
		entry.ParentID,
		entry.ChildID,
		entry.Email,
		entry.Status,
	).Scan(&entry.Position, &entry.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return domain.ErrEditConflict
	}

	return err
}

func (p *PostgresWaitlistRepository) GetById(ctx context.Context, id string) (*domain.WaitlistEntry, error) {
	query := `
		SELECT id, session_id, role_id, parent_id, child_id, email, position, status, created_at
		FROM waitlist_entries
		WHERE id = $1
	`

	entry, err := scanEntry(p.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (p *PostgresWaitlistRepository) UpdateStatus(ctx context.Context, id string, from, to domain.WaitlistStatus) error {
	query := `
		UPDATE waitlist_entries
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := p.db.Exec(ctx, query, id, from, to)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		exists, err := p.exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrRecordNotFound
		}

		return domain.ErrEditConflict
	}

	return nil
}

func (p *PostgresWaitlistRepository) ListBySession(ctx context.Context, sessionID int, status domain.WaitlistStatus) ([]domain.WaitlistEntry, error) {
	query := `
		SELECT id, session_id, role_id, parent_id, child_id, email, position, status, created_at
		FROM waitlist_entries
		WHERE session_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY position
	`

	rows, err := p.db.Query(ctx, query, sessionID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (p *PostgresWaitlistRepository) ListByParent(ctx context.Context, parentID int, pagination domain.Pagination) ([]domain.WaitlistEntry, *domain.Metadata, error) {
	query := `
		SELECT count(*) OVER(),
			id, session_id, role_id, parent_id, child_id, email, position, status, created_at
		FROM waitlist_entries
		WHERE parent_id = $1
		ORDER BY position
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, parentID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	totalRecords := 0
	entries := []domain.WaitlistEntry{}

	for rows.Next() {
		var entry domain.WaitlistEntry

		err = rows.Scan(
			&totalRecords,
			&entry.ID,
			&entry.SessionID,
			&entry.RoleID,
			&entry.ParentID,
			&entry.ChildID,
			&entry.Email,
			&entry.Position,
			&entry.Status,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return entries, metadata, nil
}

func (p *PostgresWaitlistRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM waitlist_entries WHERE id = $1)`

	err := p.db.QueryRow(ctx, query, id).Scan(&exists)

	return exists, err
}

func scanEntry(row pgx.Row) (*domain.WaitlistEntry, error) {
	var entry domain.WaitlistEntry

	err := row.Scan(
		&entry.ID,
		&entry.SessionID,
		&entry.RoleID,
		&entry.ParentID,
		&entry.ChildID,
		&entry.Email,
		&entry.Position,
		&entry.Status,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func collectEntries(rows pgx.Rows) ([]domain.WaitlistEntry, error) {
	entries := []domain.WaitlistEntry{}

	for rows.Next() {
		var entry domain.WaitlistEntry

		err := rows.Scan(
			&entry.ID,
			&entry.SessionID,
			&entry.RoleID,
			&entry.ParentID,
			&entry.ChildID,
			&entry.Email,
			&entry.Position,
			&entry.Status,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
