package repository

import (
	"context"

	"github.com/campscape/registration-engine/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresSessionRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSessionRepository(db *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{
		db: db,
	}
}

func (p *PostgresSessionRepository) GetById(ctx context.Context, id int) (*domain.Session, error) {
	sessions, err := p.GetByIds(ctx, []int{id})
	if err != nil {
		return nil, err
	}

	session, ok := sessions[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return session, nil
}

func (p *PostgresSessionRepository) GetByIds(ctx context.Context, ids []int) (map[int]*domain.Session, error) {
	query := `
		SELECT id, name, capacity, hidden_buffer, price, age_min, age_max
		FROM sessions
		WHERE id = ANY($1)
	`

	rows, err := p.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make(map[int]*domain.Session)

	for rows.Next() {
		var session domain.Session
		var price int64

		err = rows.Scan(
			&session.ID,
			&session.Name,
			&session.Capacity,
			&session.HiddenBuffer,
			&price,
			&session.AgeMin,
			&session.AgeMax,
		)
		if err != nil {
			return nil, err
		}

		session.Price = decimal.NewFromInt(price)
		sessions[session.ID] = &session
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(sessions) == 0 {
		return sessions, nil
	}

	err = p.attachRoles(ctx, ids, sessions)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (p *PostgresSessionRepository) attachRoles(ctx context.Context, ids []int, sessions map[int]*domain.Session) error {
	query := `
		SELECT session_id, id, name, capacity
		FROM session_roles
		WHERE session_id = ANY($1)
		ORDER BY session_id, sort_order, id
	`

	rows, err := p.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sessionID int
		var role domain.Role

		err = rows.Scan(&sessionID, &role.ID, &role.Name, &role.Capacity)
		if err != nil {
			return err
		}

		if session, ok := sessions[sessionID]; ok {
			session.Roles = append(session.Roles, role)
		}
	}

	return rows.Err()
}
