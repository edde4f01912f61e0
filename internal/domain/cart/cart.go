package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrInvalidQuantity is returned when a quantity is not positive.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrLineNotFound is returned when the cart has no line for a product.
	ErrLineNotFound = errors.New("product not in cart")
)

// Cart is a customer's pending selection of products.
type Cart struct {
	UserID    string    `json:"userId"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Line is one product in a cart.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// find returns the index of the line for productID, or -1.
func (c *Cart) find(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Store persists carts keyed by user. Get returns an empty cart when the
// user has none.
type Store interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, userID string) error
}
