package repository

import (
	"context"
	"errors"

	"github.com/campscape/registration-engine/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresOrderRepository struct {
	db *pgxpool.Pool
}

func NewPostgresOrderRepository(db *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db: db,
	}
}

func (p *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO orders (parent_id, status, original_total, discount_amount, final_total, tier)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			order.ParentID,
			order.Status,
			order.OriginalTotal.IntPart(),
			order.DiscountAmount.IntPart(),
			order.FinalTotal.IntPart(),
			order.Tier,
		).Scan(&order.ID, &order.CreatedAt)

		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(order.Items))
		for _, item := range order.Items {
			rows = append(rows, []any{
				order.ID,
				item.SessionID,
				item.RoleID,
				item.ChildID,
				item.FamilyID,
				string(item.Type),
				item.Price.IntPart(),
				item.Discount.IntPart(),
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"order_items"},
			[]string{"order_id", "session_id", "role_id", "child_id", "family_id", "item_type", "price", "discount"},
			pgx.CopyFromRows(rows),
		)

		return err
	})
}

func (p *PostgresOrderRepository) GetById(ctx context.Context, id int) (*domain.Order, error) {
	query := `
		SELECT id, parent_id, status, original_total, discount_amount, final_total, tier, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order domain.Order
	var originalTotal, discountAmount, finalTotal int64

	err := p.db.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.ParentID,
		&order.Status,
		&originalTotal,
		&discountAmount,
		&finalTotal,
		&order.Tier,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	order.OriginalTotal = decimal.NewFromInt(originalTotal)
	order.DiscountAmount = decimal.NewFromInt(discountAmount)
	order.FinalTotal = decimal.NewFromInt(finalTotal)

	err = p.attachItems(ctx, &order)
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (p *PostgresOrderRepository) attachItems(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT id, order_id, session_id, role_id, child_id, family_id, item_type, price, discount
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := p.db.Query(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var price, discount int64

		err = rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.SessionID,
			&item.RoleID,
			&item.ChildID,
			&item.FamilyID,
			&item.Type,
			&price,
			&discount,
		)
		if err != nil {
			return err
		}

		item.Price = decimal.NewFromInt(price)
		item.Discount = decimal.NewFromInt(discount)
		order.Items = append(order.Items, item)
	}

	return rows.Err()
}

func (p *PostgresOrderRepository) GetSummariesByParentId(ctx context.Context, parentID int, pagination domain.Pagination) ([]domain.OrderSummary, *domain.Metadata, error) {
	query := `
		SELECT count(*) OVER(),
			o.id, o.status, o.final_total, o.created_at,
			(SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
		FROM orders o
		WHERE o.parent_id = $1
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, parentID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	totalRecords := 0
	summaries := []domain.OrderSummary{}

	for rows.Next() {
		var summary domain.OrderSummary
		var finalTotal int64

		err = rows.Scan(
			&totalRecords,
			&summary.OrderID,
			&summary.Status,
			&finalTotal,
			&summary.CreatedAt,
			&summary.ItemCount,
		)
		if err != nil {
			return nil, nil, err
		}

		summary.FinalTotal = decimal.NewFromInt(finalTotal)
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return summaries, metadata, nil
}

func (p *PostgresOrderRepository) UpdateStatus(ctx context.Context, id int, from, to domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := p.db.Exec(ctx, query, id, from, to)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		var exists bool

		err = p.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
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
