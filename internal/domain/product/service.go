package product

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unimart/storefront/internal/domain/category"
	"github.com/unimart/storefront/internal/domain/offer"
)

// listLimit caps catalog searches.
const listLimit = 100

// ErrInvalidProduct is returned when a product draft fails basic checks.
var ErrInvalidProduct = errors.New("invalid product")

// OfferSource resolves item-level offers against one active snapshot.
type OfferSource interface {
	QuoteItems(ctx context.Context, items []offer.Item) ([]offer.ItemResult, error)
}

// Priced is a product together with the item-level offer resolved for it.
type Priced struct {
	Product
	offer.ItemResult
}

// Draft holds the editable fields of a product.
type Draft struct {
	Title         string
	Description   string
	Price         decimal.Decimal
	Stock         int
	CategoryID    string
	SubcategoryID string
	Images        []Image
}

// Service exposes the catalog with offer-aware pricing.
type Service struct {
	products   Repository
	categories category.Repository
	offers     OfferSource
	now        func() time.Time
}

// NewService creates a product Service.
func NewService(products Repository, categories category.Repository, offers OfferSource) *Service {
	return &Service{
		products:   products,
		categories: categories,
		offers:     offers,
		now:        time.Now,
	}
}

// List searches the catalog and prices every hit against the active offers.
func (s *Service) List(ctx context.Context, query string) ([]Priced, error) {
	products, err := s.products.List(ctx, strings.TrimSpace(query), listLimit)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return s.price(ctx, products)
}

// Get returns a single priced product.
func (s *Service) Get(ctx context.Context, id string) (*Priced, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	priced, err := s.price(ctx, []Product{*p})
	if err != nil {
		return nil, err
	}
	return &priced[0], nil
}

// Create validates the draft against the category tree and stores it.
func (s *Service) Create(ctx context.Context, d Draft) (*Product, error) {
	p := &Product{
		ID:        uuid.New().String(),
		CreatedAt: s.now(),
	}
	if err := s.apply(ctx, p, d); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return p, nil
}

// Update replaces the editable fields of an existing product.
func (s *Service) Update(ctx context.Context, id string, d Draft) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, p, d); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, errors.Wrapf(err, "update product %s", id)
	}
	return p, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

func (s *Service) apply(ctx context.Context, p *Product, d Draft) error {
	if strings.TrimSpace(d.Title) == "" {
		return errors.Wrap(ErrInvalidProduct, "title is required")
	}
	if !d.Price.IsPositive() {
		return errors.Wrap(ErrInvalidProduct, "price must be positive")
	}
	if d.Stock < 0 {
		return errors.Wrap(ErrInvalidProduct, "stock must not be negative")
	}

	cat, err := s.categories.Get(ctx, d.CategoryID)
	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			return ErrInvalidCategory
		}
		return errors.Wrap(err, "get category")
	}
	sub, ok := cat.Subcategory(d.SubcategoryID)
	if !ok {
		return errors.Wrap(ErrInvalidCategory, "invalid subcategory")
	}

	p.Title = strings.TrimSpace(d.Title)
	p.Description = d.Description
	p.Price = d.Price
	p.Stock = d.Stock
	p.CategoryID = cat.ID
	p.Subcategory = Subcategory{ID: sub.ID, Name: sub.Name}
	p.Images = d.Images
	return nil
}

func (s *Service) price(ctx context.Context, products []Product) ([]Priced, error) {
	items := make([]offer.Item, len(products))
	for i, p := range products {
		items[i] = p.PricingItem()
	}
	results, err := s.offers.QuoteItems(ctx, items)
	if err != nil {
		return nil, err
	}

	out := make([]Priced, len(products))
	for i, p := range products {
		out[i] = Priced{Product: p, ItemResult: results[i]}
	}
	return out, nil
}
