package category

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a category or subcategory does not exist.
	ErrNotFound = errors.New("category not found")
	// ErrDuplicateName is returned when creating a category whose name is taken.
	ErrDuplicateName = errors.New("category already exists")
	// ErrNameRequired is returned when a category or subcategory has no name.
	ErrNameRequired = errors.New("name is required")
)

// Category groups products and owns its subcategories.
type Category struct {
	ID            string
	Name          string
	Description   string
	Image         Image
	Subcategories []Subcategory
	CreatedAt     time.Time
}

// Subcategory is a named group nested inside a category.
type Subcategory struct {
	ID          string
	Name        string
	Description string
	Image       Image
}

// Image is an uploaded image reference.
type Image struct {
	URL      string
	PublicID string
}

// Subcategory returns the subcategory with the given id, if present.
func (c *Category) Subcategory(id string) (Subcategory, bool) {
	for _, s := range c.Subcategories {
		if s.ID == id {
			return s, true
		}
	}
	return Subcategory{}, false
}

// Repository defines persistence operations for categories. Subcategories
// are stored as part of their category.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id string) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
}
