package repository

import (
	"context"
	"errors"

	"github.com/campscape/registration-engine/internal/domain"
	"github.com/campscape/registration-engine/internal/ledger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCapacityStore implements ledger.Store on top of conditional
// updates: the check-and-increment happens inside a single UPDATE, so
// concurrent reservations for the last seat serialize on the row lock and
// exactly one succeeds. Role and session counters move in one transaction.
type PostgresCapacityStore struct {
	db *pgxpool.Pool
}

func NewPostgresCapacityStore(db *pgxpool.Pool) *PostgresCapacityStore {
	return &PostgresCapacityStore{
		db: db,
	}
}

func (p *PostgresCapacityStore) Reserve(ctx context.Context, sessionID int, roleID *int, count int, limits ledger.Limits) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		if roleID != nil {
			query := `
				UPDATE role_capacity
				SET assigned = assigned + $3
				WHERE session_id = $1 AND role_id = $2 AND assigned + $3 <= $4
			`

			tag, err := tx.Exec(ctx, query, sessionID, *roleID, count, limits.Role)
			if err != nil {
				return err
			}

			if tag.RowsAffected() == 0 {
				return p.classifyRoleFailure(ctx, tx, sessionID, *roleID)
			}
		}

		query := `
			UPDATE session_capacity
			SET assigned = assigned + $2
			WHERE session_id = $1 AND assigned + $2 <= $3
		`

		tag, err := tx.Exec(ctx, query, sessionID, count, limits.Session)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			// Rolling back also undoes the role increment above.
			return p.classifySessionFailure(ctx, tx, sessionID)
		}

		return nil
	})
}

func (p *PostgresCapacityStore) Release(ctx context.Context, sessionID int, roleID *int, count int) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		if roleID != nil {
			query := `
				UPDATE role_capacity
				SET assigned = GREATEST(assigned - $3, 0)
				WHERE session_id = $1 AND role_id = $2
			`

			_, err := tx.Exec(ctx, query, sessionID, *roleID, count)
			if err != nil {
				return err
			}
		}

		query := `
			UPDATE session_capacity
			SET assigned = GREATEST(assigned - $2, 0)
			WHERE session_id = $1
		`

		_, err := tx.Exec(ctx, query, sessionID, count)

		return err
	})
}

func (p *PostgresCapacityStore) Counters(ctx context.Context, sessionID int) (ledger.Counters, error) {
	counters := ledger.Counters{
		PerRole: make(map[int]int),
	}

	query := `SELECT assigned FROM session_capacity WHERE session_id = $1`

	err := p.db.QueryRow(ctx, query, sessionID).Scan(&counters.Session)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return ledger.Counters{}, err
	}

	query = `SELECT role_id, assigned FROM role_capacity WHERE session_id = $1`

	rows, err := p.db.Query(ctx, query, sessionID)
	if err != nil {
		return ledger.Counters{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var roleID, assigned int

		err = rows.Scan(&roleID, &assigned)
		if err != nil {
			return ledger.Counters{}, err
		}

		counters.PerRole[roleID] = assigned
	}

	if err = rows.Err(); err != nil {
		return ledger.Counters{}, err
	}

	return counters, nil
}

// classifyRoleFailure distinguishes a full role from a counter row that was
// never seeded for the role, which points at broken configuration.
func (p *PostgresCapacityStore) classifyRoleFailure(ctx context.Context, tx pgx.Tx, sessionID, roleID int) error {
	var assigned int

	query := `SELECT assigned FROM role_capacity WHERE session_id = $1 AND role_id = $2`

	err := tx.QueryRow(ctx, query, sessionID, roleID).Scan(&assigned)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewError(domain.ErrKindRoleAssignmentMismatch,
			"session_id", sessionID, "role_id", roleID)
	}
	if err != nil {
		return err
	}

	return domain.NewError(domain.ErrKindRoleCapacityExceeded,
		"session_id", sessionID, "role_id", roleID)
}

func (p *PostgresCapacityStore) classifySessionFailure(ctx context.Context, tx pgx.Tx, sessionID int) error {
	var assigned int

	query := `SELECT assigned FROM session_capacity WHERE session_id = $1`

	err := tx.QueryRow(ctx, query, sessionID).Scan(&assigned)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewError(domain.ErrKindSessionNotFound, "session_id", sessionID)
	}
	if err != nil {
		return err
	}

	return domain.NewError(domain.ErrKindSessionCapacityExceeded, "session_id", sessionID)
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}
