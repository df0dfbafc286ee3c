package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a confirmed (or cancelled) aggregate of cart items. Once confirmed
// it owns the capacity reservations of its items; cancelling releases them.
type Order struct {
	ID             int
	ParentID       int
	Status         OrderStatus
	Items          []OrderItem
	OriginalTotal  decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalTotal     decimal.Decimal
	Tier           DiscountTier
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

type OrderItem struct {
	ID        int
	OrderID   int
	SessionID int
	RoleID    *int
	ChildID   *int
	FamilyID  *int
	Type      CartItemType
	Price     decimal.Decimal
	Discount  decimal.Decimal
}

type OrderSummary struct {
	OrderID    int
	Status     OrderStatus
	ItemCount  int
	FinalTotal decimal.Decimal
	CreatedAt  time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetById(ctx context.Context, id int) (*Order, error)
	GetSummariesByParentId(ctx context.Context, parentID int, pagination Pagination) ([]OrderSummary, *Metadata, error)
	// UpdateStatus transitions the order only when it currently has the
	// expected status, returning ErrEditConflict otherwise.
	UpdateStatus(ctx context.Context, id int, from, to OrderStatus) error
}
