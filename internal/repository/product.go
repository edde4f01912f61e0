package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unimart/storefront/internal/domain/product"
)

const productColumns = `id, title, description, price, stock, category_id,
	subcategory_id, subcategory_name, images, created_at`

const (
	listProductsSQL = `SELECT ` + productColumns + `
		FROM products
		WHERE $1 = '' OR title ILIKE $2 OR description ILIKE $2
		ORDER BY created_at DESC, id
		LIMIT $3`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	createProductSQL = `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateProductSQL = `UPDATE products SET title = $2, description = $3, price = $4,
		stock = $5, category_id = $6, subcategory_id = $7, subcategory_name = $8, images = $9
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	countProductsSQL = `SELECT COUNT(*) FROM products`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns up to limit products matching query, newest first.
func (r *ProductRepository) List(ctx context.Context, query string, limit int) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL, query, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	images, err := marshalImages(p.Images)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, createProductSQL,
		p.ID, p.Title, p.Description, p.Price, p.Stock, p.CategoryID,
		p.Subcategory.ID, p.Subcategory.Name, images, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update overwrites the editable columns of an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	images, err := marshalImages(p.Images)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Title, p.Description, p.Price, p.Stock, p.CategoryID,
		p.Subcategory.ID, p.Subcategory.Name, images,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Count returns the number of products in the catalog.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countProductsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

type imageJSON struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

func marshalImages(images []product.Image) ([]byte, error) {
	out := make([]imageJSON, len(images))
	for i, img := range images {
		out[i] = imageJSON{URL: img.URL, PublicID: img.PublicID}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshaling product images: %w", err)
	}
	return data, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p      product.Product
		images []byte
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Stock, &p.CategoryID,
		&p.Subcategory.ID, &p.Subcategory.Name, &images, &p.CreatedAt,
	)
	if err != nil {
		return p, err
	}

	var decoded []imageJSON
	if err := json.Unmarshal(images, &decoded); err != nil {
		return p, fmt.Errorf("decoding images of product %q: %w", p.ID, err)
	}
	for _, img := range decoded {
		p.Images = append(p.Images, product.Image{URL: img.URL, PublicID: img.PublicID})
	}
	return p, nil
}

// likePattern turns a search term into an ILIKE substring pattern.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
