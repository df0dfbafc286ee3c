package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartItemType string

const (
	CartItemIndividual CartItemType = "individual"
	CartItemFamily     CartItemType = "family"
	CartItemAddon      CartItemType = "addon"
)

// CartItem is a single priced line of an in-flight cart. Items are immutable
// once priced; prices are always taken from the session, never from a client.
type CartItem struct {
	ID        string
	SessionID int
	RoleID    *int
	ChildID   *int
	FamilyID  *int
	IsAddon   bool
	Type      CartItemType
	Price     decimal.Decimal
	Discount  decimal.Decimal
}

// Cart is an immutable priced snapshot of a pending order. It belongs to
// exactly one guest session and expires with it.
type Cart struct {
	Id             string `json:"-"`
	Items          []CartItem
	OriginalTotal  decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalTotal     decimal.Decimal
	Tier           DiscountTier
	CreatedAt      time.Time
}

// NewCart prices the given items and freezes them into a snapshot.
func NewCart(items []CartItem) Cart {
	discount := CalculateDiscount(items)

	for i := range items {
		items[i].Discount = discount.PerItemDiscount[items[i].ID]
	}

	return Cart{
		Id:             uuid.New().String(),
		Items:          items,
		OriginalTotal:  discount.OriginalTotal,
		DiscountAmount: discount.DiscountAmount,
		FinalTotal:     discount.FinalTotal,
		Tier:           discount.Tier,
		CreatedAt:      time.Now(),
	}
}

// CartRepository stores cart snapshots keyed by the guest session token.
type CartRepository interface {
	Set(ctx context.Context, sessionToken string, cart Cart, ttl time.Duration) error
	Get(ctx context.Context, sessionToken string) (*Cart, error)
	Delete(ctx context.Context, sessionToken string) error
}
