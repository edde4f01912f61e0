// Package offerimport loads offers in bulk from gzip-compressed JSON-lines
// files.
package offerimport

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unimart/storefront/internal/domain/offer"
)

// codeNamespace derives stable offer ids from coupon codes, so re-importing
// a code updates the same offer.
var codeNamespace = uuid.MustParse("6f1c2a4e-93b1-4d7e-9b55-0c1f4e2d8a11")

// Record is one line of an import file.
type Record struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	ScopeType     offer.ScopeType    `json:"scopeType"`
	CategoryID    string             `json:"categoryId"`
	SubcategoryID string             `json:"subcategoryId"`
	ProductID     string             `json:"productId"`
	DiscountType  offer.DiscountType `json:"discountType"`
	DiscountValue decimal.Decimal    `json:"discountValue"`
	MinCartAmount decimal.Decimal    `json:"minCartAmount"`
	MinMRP        decimal.Decimal    `json:"minMrp"`
	CouponCode    string             `json:"couponCode"`
	AutoApply     *bool              `json:"autoApply"`
	Active        *bool              `json:"active"`
	StartDate     *time.Time         `json:"startDate"`
	EndDate       *time.Time         `json:"endDate"`
}

// NormalizeCode is the form in which coupon codes are compared and stored.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r Record) target() string {
	switch r.ScopeType {
	case offer.ScopeProduct:
		return r.ProductID
	case offer.ScopeSubcategory:
		return r.SubcategoryID
	case offer.ScopeCategory:
		return r.CategoryID
	}
	return ""
}

// Offer converts r to a validated offer stamped with now. Records without an
// id take one derived from their coupon code.
func (r Record) Offer(now time.Time) (offer.Offer, error) {
	code := NormalizeCode(r.CouponCode)
	id := strings.TrimSpace(r.ID)
	switch {
	case id != "":
	case code != "":
		id = uuid.NewSHA1(codeNamespace, []byte(code)).String()
	default:
		return offer.Offer{}, errors.New("record has neither id nor couponCode")
	}

	scope, err := offer.NewScope(r.ScopeType, strings.TrimSpace(r.target()))
	if err != nil {
		return offer.Offer{}, err
	}
	start := r.StartDate
	if start == nil {
		start = &now
	}
	o := offer.Offer{
		ID:            id,
		Title:         strings.TrimSpace(r.Title),
		Description:   r.Description,
		Scope:         scope,
		DiscountType:  r.DiscountType,
		DiscountValue: r.DiscountValue,
		MinCartAmount: r.MinCartAmount,
		MinMRP:        r.MinMRP,
		CouponCode:    code,
		AutoApply:     r.AutoApply == nil || *r.AutoApply,
		Active:        r.Active == nil || *r.Active,
		StartDate:     start,
		EndDate:       r.EndDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := offer.Validate(o); err != nil {
		return offer.Offer{}, err
	}
	return o, nil
}
