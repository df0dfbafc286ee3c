package domain

import "github.com/shopspring/decimal"

// DiscountTier is the bracket applied uniformly to every item of a cart.
type DiscountTier string

const (
	TierNone DiscountTier = "0"
	Tier300  DiscountTier = "300"
	Tier400  DiscountTier = "400"
)

// Amount is the per-item discount of the tier, in integer currency units.
func (t DiscountTier) Amount() decimal.Decimal {
	switch t {
	case Tier300:
		return decimal.NewFromInt(300)
	case Tier400:
		return decimal.NewFromInt(400)
	default:
		return decimal.Zero
	}
}

type DiscountResult struct {
	OriginalTotal   decimal.Decimal
	DiscountAmount  decimal.Decimal
	FinalTotal      decimal.Decimal
	PerItemDiscount map[string]decimal.Decimal
	Tier            DiscountTier
}

// CalculateDiscount computes the tiered multi-item discount for one cart.
//
// The tier is selected from three counting axes, most generous bracket first:
// total item count, distinct children among individual items, and distinct
// families among family items. The tier amount is then applied to every item,
// capped at the item's own price so a line can never go negative.
//
// The function is pure and order-of-items independent; it is recomputed from
// scratch both for cart previews and at order confirmation.
func CalculateDiscount(items []CartItem) DiscountResult {
	originalTotal := decimal.Zero
	children := make(map[int]struct{})
	families := make(map[int]struct{})

	for _, item := range items {
		originalTotal = originalTotal.Add(item.Price)

		switch item.Type {
		case CartItemIndividual:
			if item.ChildID != nil {
				children[*item.ChildID] = struct{}{}
			}
		case CartItemFamily:
			if item.FamilyID != nil {
				families[*item.FamilyID] = struct{}{}
			}
		}
	}

	tier := selectTier(len(items), len(children), len(families))
	tierAmount := tier.Amount()

	discountAmount := decimal.Zero
	perItem := make(map[string]decimal.Decimal, len(items))

	for _, item := range items {
		itemDiscount := decimal.Min(tierAmount, item.Price)
		perItem[item.ID] = itemDiscount
		discountAmount = discountAmount.Add(itemDiscount)
	}

	return DiscountResult{
		OriginalTotal:   originalTotal,
		DiscountAmount:  discountAmount,
		FinalTotal:      originalTotal.Sub(discountAmount),
		PerItemDiscount: perItem,
		Tier:            tier,
	}
}

func selectTier(totalItems, distinctChildren, distinctFamilies int) DiscountTier {
	switch {
	case totalItems >= 3 || distinctChildren >= 3 || distinctFamilies >= 2:
		return Tier400
	case totalItems >= 2 || distinctChildren >= 2 || distinctFamilies >= 1:
		return Tier300
	default:
		return TierNone
	}
}
