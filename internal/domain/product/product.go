package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/unimart/storefront/internal/domain/offer"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrInvalidCategory is returned when a product references a missing
	// category or a subcategory that category does not contain.
	ErrInvalidCategory = errors.New("invalid category")
)

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  string
	Subcategory Subcategory
	Images      []Image
	CreatedAt   time.Time
}

// Subcategory is the denormalized subcategory reference stored on a product.
type Subcategory struct {
	ID   string
	Name string
}

// Image is an uploaded product image.
type Image struct {
	URL      string
	PublicID string
}

// PricingItem returns the view of p used by offer resolution.
func (p Product) PricingItem() offer.Item {
	return offer.Item{
		ID:            p.ID,
		Price:         p.Price,
		CategoryID:    p.CategoryID,
		SubcategoryID: p.Subcategory.ID,
	}
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	// List returns up to limit products whose title or description contains
	// query, case-insensitively. An empty query matches everything.
	List(ctx context.Context, query string, limit int) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
