package offer

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// ItemResult is the outcome of item-level resolution.
type ItemResult struct {
	FinalPrice   decimal.Decimal
	AppliedOffer *Offer
}

// CartResult is the outcome of cart-level resolution.
type CartResult struct {
	FinalTotal   decimal.Decimal
	AppliedOffer *Offer
	Savings      decimal.Decimal
}

// LineResult is the per-line breakdown produced by ComputeCartTotals.
type LineResult struct {
	Line
	ItemResult
	LineTotal decimal.Decimal
}

// Totals aggregates a cart after item-level and cart-level offers.
type Totals struct {
	Lines       []LineResult
	Base        decimal.Decimal
	Discounted  decimal.Decimal
	ItemSavings decimal.Decimal
	Cart        CartResult
}

// Payable is the amount the customer pays.
func (t Totals) Payable() decimal.Decimal {
	return t.Cart.FinalTotal
}

// TotalSavings is the sum of item-level and cart-level savings.
func (t Totals) TotalSavings() decimal.Decimal {
	return t.ItemSavings.Add(t.Cart.Savings)
}

// ResolveItem selects at most one item-level offer for item and computes the
// discounted price.
//
// Candidates are active, not expired at now, well formed and not cart
// scoped. Product scope beats subcategory scope beats category scope; within
// the winning scope the last matching offer in the slice is chosen. If that
// offer's MinMRP is above the item price no offer applies, and lower scopes
// are not consulted.
func ResolveItem(item Item, offers []Offer, now time.Time) ItemResult {
	noOffer := ItemResult{FinalPrice: item.Price}
	if item.Price.IsNegative() {
		return noOffer
	}

	var byProduct, bySubcategory, byCategory *Offer
	for i := range offers {
		o := &offers[i]
		if !isCandidate(o, now) {
			continue
		}
		switch s := o.Scope.(type) {
		case ProductScope:
			if s.ProductID == item.ID {
				byProduct = o
			}
		case SubcategoryScope:
			if item.SubcategoryID != "" && s.SubcategoryID == item.SubcategoryID {
				bySubcategory = o
			}
		case CategoryScope:
			if s.CategoryID == item.CategoryID {
				byCategory = o
			}
		}
	}

	chosen := byProduct
	if chosen == nil {
		chosen = bySubcategory
	}
	if chosen == nil {
		chosen = byCategory
	}
	if chosen == nil {
		return noOffer
	}
	if chosen.MinMRP.IsPositive() && item.Price.LessThan(chosen.MinMRP) {
		return noOffer
	}

	applied := *chosen
	return ItemResult{
		FinalPrice:   discountedPrice(item.Price, chosen),
		AppliedOffer: &applied,
	}
}

// ResolveCart picks the cart-scope offer with the largest savings for the
// given subtotal. Ties keep the earliest offer.
func ResolveCart(subtotal decimal.Decimal, offers []Offer) CartResult {
	var (
		best        *Offer
		bestSavings decimal.Decimal
	)
	for i := range offers {
		o := &offers[i]
		if !o.Active || !wellFormed(o) || o.Scope.Type() != ScopeCart {
			continue
		}
		if subtotal.LessThan(o.MinCartAmount) {
			continue
		}
		s := cartSavings(subtotal, o)
		if best == nil || s.GreaterThan(bestSavings) {
			best, bestSavings = o, s
		}
	}

	if best == nil {
		return CartResult{FinalTotal: subtotal, Savings: zero}
	}

	applied := *best
	return CartResult{
		FinalTotal:   floorAtZero(subtotal.Sub(bestSavings)),
		AppliedOffer: &applied,
		Savings:      bestSavings,
	}
}

// ComputeCartTotals resolves every line at item level, sums the base and
// discounted amounts, and applies a single cart-level offer on top of the
// discounted subtotal.
func ComputeCartTotals(lines []Line, offers []Offer, now time.Time) Totals {
	t := Totals{
		Lines:      make([]LineResult, 0, len(lines)),
		Base:       zero,
		Discounted: zero,
	}
	for _, l := range lines {
		r := ResolveItem(l.Item, offers, now)
		qty := decimal.NewFromInt(int64(l.Quantity))
		lineTotal := r.FinalPrice.Mul(qty)

		t.Base = t.Base.Add(l.Item.Price.Mul(qty))
		t.Discounted = t.Discounted.Add(lineTotal)
		t.Lines = append(t.Lines, LineResult{Line: l, ItemResult: r, LineTotal: lineTotal})
	}
	t.ItemSavings = t.Base.Sub(t.Discounted)
	t.Cart = ResolveCart(t.Discounted, offers)
	return t
}

// isCandidate reports whether o may take part in item-level resolution.
func isCandidate(o *Offer, now time.Time) bool {
	if !o.Active || !wellFormed(o) {
		return false
	}
	if o.Scope.Type() == ScopeCart {
		return false
	}
	// Inclusive: an offer ending exactly at now is still valid.
	if o.EndDate != nil && o.EndDate.Before(now) {
		return false
	}
	return true
}

// wellFormed rejects offers that cannot be evaluated: no scope, a scoped
// offer without a target, an unknown discount type or a negative value.
func wellFormed(o *Offer) bool {
	if o.Scope == nil {
		return false
	}
	if o.Scope.Type() != ScopeCart && o.Scope.Target() == "" {
		return false
	}
	if o.DiscountValue.IsNegative() {
		return false
	}
	switch o.DiscountType {
	case DiscountPercentage, DiscountFlat:
		return true
	default:
		return false
	}
}

func discountedPrice(price decimal.Decimal, o *Offer) decimal.Decimal {
	switch o.DiscountType {
	case DiscountPercentage:
		off := price.Mul(o.DiscountValue).Div(hundred)
		return floorAtZero(price.Sub(off).Round(0))
	default:
		return floorAtZero(price.Sub(o.DiscountValue))
	}
}

func cartSavings(subtotal decimal.Decimal, o *Offer) decimal.Decimal {
	if o.DiscountType == DiscountPercentage {
		return subtotal.Mul(o.DiscountValue).Div(hundred)
	}
	return o.DiscountValue
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return zero
	}
	return d
}
