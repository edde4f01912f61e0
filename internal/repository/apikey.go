package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unimart/storefront/internal/domain/auth"
)

const (
	getAPIKeyByHashSQL = `SELECT id, key_hash, name, scopes
		FROM api_keys WHERE key_hash = $1 AND active = TRUE`

	upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (id) DO UPDATE SET key_hash = EXCLUDED.key_hash,
			name = EXCLUDED.name, scopes = EXCLUDED.scopes, active = TRUE`

	listCustomersSQL = `SELECT id, name, created_at FROM api_keys
		WHERE active AND $1 = ANY(scopes) AND NOT ($2 = ANY(scopes))
		ORDER BY created_at DESC, id`

	deactivateCustomerSQL = `UPDATE api_keys SET active = FALSE
		WHERE id = $1 AND active AND $2 = ANY(scopes) AND NOT ($3 = ANY(scopes))`
)

var (
	_ auth.Repository         = (*APIKeyRepository)(nil)
	_ auth.CustomerRepository = (*APIKeyRepository)(nil)
)

// APIKeyRepository provides API key lookups backed by PostgreSQL.
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

// NewAPIKeyRepository returns an APIKeyRepository that uses the given pool.
func NewAPIKeyRepository(pool *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

// FindByHash looks up an active API key by its HMAC-SHA256 hash.
func (r *APIKeyRepository) FindByHash(ctx context.Context, hash string) (*auth.APIKeyInfo, error) {
	var info auth.APIKeyInfo
	err := r.pool.QueryRow(ctx, getAPIKeyByHashSQL, hash).Scan(
		&info.ID, &info.KeyHash, &info.Name, &info.Scopes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrKeyNotFound
		}
		return nil, fmt.Errorf("finding api key by hash: %w", err)
	}
	return &info, nil
}

// Upsert stores an active key, replacing any key with the same id.
func (r *APIKeyRepository) Upsert(ctx context.Context, info auth.APIKeyInfo) error {
	_, err := r.pool.Exec(ctx, upsertAPIKeySQL, info.ID, info.KeyHash, info.Name, info.Scopes)
	if err != nil {
		return fmt.Errorf("upserting api key %q: %w", info.ID, err)
	}
	return nil
}

func (r *APIKeyRepository) ListCustomers(ctx context.Context) ([]auth.Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersSQL, auth.ScopeCustomer, auth.ScopeAdmin)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (auth.Customer, error) {
		var c auth.Customer
		err := row.Scan(&c.ID, &c.Name, &c.CreatedAt)
		return c, err
	})
}

func (r *APIKeyRepository) DeactivateCustomer(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deactivateCustomerSQL, id, auth.ScopeCustomer, auth.ScopeAdmin)
	if err != nil {
		return fmt.Errorf("deactivating customer %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrCustomerNotFound
	}
	return nil
}
