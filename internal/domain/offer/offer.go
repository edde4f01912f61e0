package offer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported offer discount strategies.
type DiscountType string

const (
	// DiscountPercentage takes a percentage (0-100) off the price.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFlat takes an absolute currency amount off the price.
	DiscountFlat DiscountType = "flat"
)

// ScopeType names the entity class an offer targets.
type ScopeType string

const (
	ScopeProduct     ScopeType = "product"
	ScopeSubcategory ScopeType = "subcategory"
	ScopeCategory    ScopeType = "category"
	ScopeCart        ScopeType = "cart"
)

var (
	// ErrNotFound is returned when a requested offer does not exist.
	ErrNotFound = errors.New("offer not found")
	// ErrUnknownScope is returned when a scope type is not one of the known values.
	ErrUnknownScope = errors.New("unknown offer scope")
)

// Scope is the target of an offer. Each variant carries only the identifier
// relevant to it.
type Scope interface {
	Type() ScopeType
	// Target returns the target identifier, empty for cart scope.
	Target() string
}

// ProductScope targets a single product.
type ProductScope struct{ ProductID string }

// SubcategoryScope targets every product in a subcategory.
type SubcategoryScope struct{ SubcategoryID string }

// CategoryScope targets every product in a category.
type CategoryScope struct{ CategoryID string }

// CartScope targets the cart as a whole.
type CartScope struct{}

func (ProductScope) Type() ScopeType     { return ScopeProduct }
func (SubcategoryScope) Type() ScopeType { return ScopeSubcategory }
func (CategoryScope) Type() ScopeType    { return ScopeCategory }
func (CartScope) Type() ScopeType        { return ScopeCart }

func (s ProductScope) Target() string     { return s.ProductID }
func (s SubcategoryScope) Target() string { return s.SubcategoryID }
func (s CategoryScope) Target() string    { return s.CategoryID }
func (CartScope) Target() string          { return "" }

// NewScope builds a Scope from its flattened storage form. The target is
// ignored for cart scope.
func NewScope(t ScopeType, target string) (Scope, error) {
	switch t {
	case ScopeProduct:
		return ProductScope{ProductID: target}, nil
	case ScopeSubcategory:
		return SubcategoryScope{SubcategoryID: target}, nil
	case ScopeCategory:
		return CategoryScope{CategoryID: target}, nil
	case ScopeCart:
		return CartScope{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownScope, "%q", t)
	}
}

// ScopeTypeOf returns the scope type of o, or "" when o has no scope.
func ScopeTypeOf(o Offer) ScopeType {
	if o.Scope == nil {
		return ""
	}
	return o.Scope.Type()
}

// Offer is a promotional rule reducing a price.
type Offer struct {
	ID            string
	Title         string
	Description   string
	Scope         Scope
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	// MinCartAmount is the subtotal a cart-scope offer needs to qualify.
	MinCartAmount decimal.Decimal
	// MinMRP is the item price a non-cart offer needs to qualify.
	MinMRP     decimal.Decimal
	CouponCode string
	// AutoApply is carried for clients; resolution does not gate on it.
	AutoApply bool
	Active    bool
	StartDate *time.Time
	EndDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is a priced catalog entity as seen by the resolver.
type Item struct {
	ID            string
	Price         decimal.Decimal
	CategoryID    string
	SubcategoryID string
}

// Line is a cart line: an item and how many of it.
type Line struct {
	Item     Item
	Quantity int
}

// Repository defines persistence operations for offers.
type Repository interface {
	List(ctx context.Context) ([]Offer, error)
	// ListActive returns active offers whose end date is unset or not before now.
	ListActive(ctx context.Context, now time.Time) ([]Offer, error)
	Get(ctx context.Context, id string) (*Offer, error)
	Create(ctx context.Context, o *Offer) error
	Update(ctx context.Context, o *Offer) error
	Delete(ctx context.Context, id string) error
}
