package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/unimart/storefront/internal/domain/offer"
	"github.com/unimart/storefront/internal/domain/product"
)

// Quoter computes cart totals against the active offers.
type Quoter interface {
	QuoteCart(ctx context.Context, lines []offer.Line) (offer.Totals, error)
}

// Quote is a priced cart.
type Quote struct {
	Cart     *Cart
	Products []product.Product
	Totals   offer.Totals
}

// Service implements cart operations on top of a Store.
type Service struct {
	store    Store
	products product.Repository
	quoter   Quoter
	now      func() time.Time
}

// NewService creates a cart Service.
func NewService(store Store, products product.Repository, quoter Quoter) *Service {
	return &Service{
		store:    store,
		products: products,
		quoter:   quoter,
		now:      time.Now,
	}
}

// Get returns the user's cart.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	return c, nil
}

// Add puts qty units of a product into the cart, adding to an existing line.
func (s *Service) Add(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.update(ctx, userID, func(c *Cart) error {
		if i := c.find(productID); i >= 0 {
			c.Lines[i].Quantity += qty
			return nil
		}
		c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: qty})
		return nil
	})
}

// Increment adds one unit to an existing line.
func (s *Service) Increment(ctx context.Context, userID, productID string) (*Cart, error) {
	return s.update(ctx, userID, func(c *Cart) error {
		i := c.find(productID)
		if i < 0 {
			return ErrLineNotFound
		}
		c.Lines[i].Quantity++
		return nil
	})
}

// Decrement removes one unit from a line but never goes below one; use
// Remove to drop the line.
func (s *Service) Decrement(ctx context.Context, userID, productID string) (*Cart, error) {
	return s.update(ctx, userID, func(c *Cart) error {
		i := c.find(productID)
		if i < 0 {
			return ErrLineNotFound
		}
		if c.Lines[i].Quantity > 1 {
			c.Lines[i].Quantity--
		}
		return nil
	})
}

// Remove drops a product's line from the cart.
func (s *Service) Remove(ctx context.Context, userID, productID string) (*Cart, error) {
	return s.update(ctx, userID, func(c *Cart) error {
		i := c.find(productID)
		if i < 0 {
			return ErrLineNotFound
		}
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return nil
	})
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}

// Quote prices the cart. Lines whose product no longer exists are skipped.
func (s *Service) Quote(ctx context.Context, userID string) (*Quote, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		ids[i] = l.ProductID
	}
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	products := make([]product.Product, 0, len(c.Lines))
	lines := make([]offer.Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		p, ok := byID[l.ProductID]
		if !ok {
			continue
		}
		products = append(products, p)
		lines = append(lines, offer.Line{Item: p.PricingItem(), Quantity: l.Quantity})
	}

	totals, err := s.quoter.QuoteCart(ctx, lines)
	if err != nil {
		return nil, errors.Wrap(err, "quote cart")
	}

	return &Quote{Cart: c, Products: products, Totals: totals}, nil
}

func (s *Service) update(ctx context.Context, userID string, fn func(c *Cart) error) (*Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	c.UserID = userID
	c.UpdatedAt = s.now()
	if err := s.store.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}
