package offer

import (
	"fmt"
	"strings"
)

// ValidationError describes why an offer was rejected by Validate.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid offer: %s %s", e.Field, e.Reason)
}

// Validate checks an offer before it is stored. Resolution itself tolerates
// malformed offers by skipping them; this is the stricter gate used on the
// write path.
func Validate(o Offer) error {
	if strings.TrimSpace(o.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if o.Scope == nil {
		return &ValidationError{Field: "scopeType", Reason: "is required"}
	}
	if t := o.Scope.Type(); t != ScopeCart && o.Scope.Target() == "" {
		return &ValidationError{Field: string(t), Reason: "target is required"}
	}
	switch o.DiscountType {
	case DiscountPercentage:
		if o.DiscountValue.GreaterThan(hundred) {
			return &ValidationError{Field: "discountValue", Reason: "must not exceed 100 for percentage"}
		}
	case DiscountFlat:
	default:
		return &ValidationError{Field: "discountType", Reason: fmt.Sprintf("%q is not supported", o.DiscountType)}
	}
	if o.DiscountValue.IsNegative() {
		return &ValidationError{Field: "discountValue", Reason: "must not be negative"}
	}
	if o.MinCartAmount.IsNegative() {
		return &ValidationError{Field: "minCartAmount", Reason: "must not be negative"}
	}
	if o.MinMRP.IsNegative() {
		return &ValidationError{Field: "minMrp", Reason: "must not be negative"}
	}
	if o.StartDate != nil && o.EndDate != nil && o.EndDate.Before(*o.StartDate) {
		return &ValidationError{Field: "endDate", Reason: "is before startDate"}
	}
	return nil
}
