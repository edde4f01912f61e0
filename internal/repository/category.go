package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unimart/storefront/internal/domain/category"
)

const categoryColumns = `id, name, description, image_url, image_id, subcategories, created_at`

const (
	listCategoriesSQL = `SELECT ` + categoryColumns + ` FROM categories ORDER BY name`

	getCategorySQL = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	findCategoryByNameSQL = `SELECT ` + categoryColumns + ` FROM categories WHERE LOWER(name) = LOWER($1)`

	createCategorySQL = `INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	updateCategorySQL = `UPDATE categories SET name = $2, description = $3, image_url = $4,
		image_id = $5, subcategories = $6
		WHERE id = $1`

	deleteCategorySQL = `DELETE FROM categories WHERE id = $1`
)

var _ category.Repository = (*CategoryRepository)(nil)

// CategoryRepository implements category.Repository backed by PostgreSQL.
// Subcategories live in a JSONB column of their category.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

func (r *CategoryRepository) Get(ctx context.Context, id string) (*category.Category, error) {
	return r.getOne(ctx, getCategorySQL, id)
}

// FindByName looks a category up by name, case-insensitively.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*category.Category, error) {
	return r.getOne(ctx, findCategoryByNameSQL, name)
}

func (r *CategoryRepository) getOne(ctx context.Context, sql, arg string) (*category.Category, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting category %q: %w", arg, err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrNotFound
		}
		return nil, fmt.Errorf("getting category %q: %w", arg, err)
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	subs, err := marshalSubcategories(c.Subcategories)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, createCategorySQL,
		c.ID, c.Name, c.Description, c.Image.URL, c.Image.PublicID, subs, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating category %q: %w", c.ID, err)
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) error {
	subs, err := marshalSubcategories(c.Subcategories)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, updateCategorySQL,
		c.ID, c.Name, c.Description, c.Image.URL, c.Image.PublicID, subs,
	)
	if err != nil {
		return fmt.Errorf("updating category %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return category.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		return fmt.Errorf("deleting category %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return category.ErrNotFound
	}
	return nil
}

type subcategoryJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       imageJSON `json:"image"`
}

func marshalSubcategories(subs []category.Subcategory) ([]byte, error) {
	out := make([]subcategoryJSON, len(subs))
	for i, s := range subs {
		out[i] = subcategoryJSON{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Image:       imageJSON{URL: s.Image.URL, PublicID: s.Image.PublicID},
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshaling subcategories: %w", err)
	}
	return data, nil
}

func scanCategory(row pgx.CollectableRow) (category.Category, error) {
	var (
		c    category.Category
		subs []byte
	)
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Image.URL, &c.Image.PublicID, &subs, &c.CreatedAt)
	if err != nil {
		return c, err
	}

	var decoded []subcategoryJSON
	if err := json.Unmarshal(subs, &decoded); err != nil {
		return c, fmt.Errorf("decoding subcategories of %q: %w", c.ID, err)
	}
	for _, s := range decoded {
		c.Subcategories = append(c.Subcategories, category.Subcategory{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Image:       category.Image{URL: s.Image.URL, PublicID: s.Image.PublicID},
		})
	}
	return c, nil
}
