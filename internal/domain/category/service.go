package category

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Service manages categories and their subcategories.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a category Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	cats, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return cats, nil
}

// Get returns a single category.
func (s *Service) Get(ctx context.Context, id string) (*Category, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new category. Names are unique.
func (s *Service) Create(ctx context.Context, name, description string, image Image) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "find category by name")
	}

	c := &Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Image:       image,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create category")
	}
	return c, nil
}

// Update changes a category's name and description. The image is replaced
// only when a new URL is supplied.
func (s *Service) Update(ctx context.Context, id, name, description string, image Image) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return s.mutate(ctx, id, func(c *Category) error {
		c.Name = name
		c.Description = description
		if image.URL != "" {
			c.Image = image
		}
		return nil
	})
}

// Delete removes a category.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AddSubcategory appends a subcategory with a fresh id.
func (s *Service) AddSubcategory(ctx context.Context, categoryID, name, description string, image Image) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return s.mutate(ctx, categoryID, func(c *Category) error {
		c.Subcategories = append(c.Subcategories, Subcategory{
			ID:          uuid.New().String(),
			Name:        name,
			Description: description,
			Image:       image,
		})
		return nil
	})
}

// UpdateSubcategory changes a subcategory in place.
func (s *Service) UpdateSubcategory(ctx context.Context, categoryID, subID, name, description string, image Image) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return s.mutate(ctx, categoryID, func(c *Category) error {
		for i := range c.Subcategories {
			sub := &c.Subcategories[i]
			if sub.ID != subID {
				continue
			}
			sub.Name = name
			sub.Description = description
			if image.URL != "" {
				sub.Image = image
			}
			return nil
		}
		return ErrNotFound
	})
}

// DeleteSubcategory removes a subcategory from its category.
func (s *Service) DeleteSubcategory(ctx context.Context, categoryID, subID string) (*Category, error) {
	return s.mutate(ctx, categoryID, func(c *Category) error {
		for i, sub := range c.Subcategories {
			if sub.ID == subID {
				c.Subcategories = append(c.Subcategories[:i], c.Subcategories[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

func (s *Service) mutate(ctx context.Context, id string, fn func(c *Category) error) (*Category, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, errors.Wrapf(err, "update category %s", id)
	}
	return c, nil
}
