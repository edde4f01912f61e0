package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unimart/storefront/internal/domain/offer"
)

const offerColumns = `id, title, description, scope_type, scope_target, discount_type,
	discount_value, min_cart_amount, min_mrp, coupon_code, auto_apply, active,
	start_date, end_date, created_at, updated_at`

// Offers are returned in creation order; item resolution picks the last
// match within a scope, so the newest offer wins ties.
const (
	listOffersSQL = `SELECT ` + offerColumns + ` FROM offers ORDER BY created_at, id`

	listActiveOffersSQL = `SELECT ` + offerColumns + ` FROM offers
		WHERE active AND (end_date IS NULL OR end_date >= $1)
		ORDER BY created_at, id`

	getOfferSQL = `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	createOfferSQL = `INSERT INTO offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	upsertOfferSQL = createOfferSQL + `
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, description = EXCLUDED.description,
			scope_type = EXCLUDED.scope_type, scope_target = EXCLUDED.scope_target,
			discount_type = EXCLUDED.discount_type, discount_value = EXCLUDED.discount_value,
			min_cart_amount = EXCLUDED.min_cart_amount, min_mrp = EXCLUDED.min_mrp,
			coupon_code = EXCLUDED.coupon_code, auto_apply = EXCLUDED.auto_apply,
			active = EXCLUDED.active, start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date, updated_at = EXCLUDED.updated_at`

	updateOfferSQL = `UPDATE offers SET title = $2, description = $3, scope_type = $4,
		scope_target = $5, discount_type = $6, discount_value = $7, min_cart_amount = $8,
		min_mrp = $9, coupon_code = $10, auto_apply = $11, active = $12,
		start_date = $13, end_date = $14, updated_at = $15
		WHERE id = $1`

	deleteOfferSQL = `DELETE FROM offers WHERE id = $1`
)

var _ offer.Repository = (*OfferRepository)(nil)

// OfferRepository implements offer.Repository backed by PostgreSQL. The
// scope union is flattened into scope_type and scope_target.
type OfferRepository struct {
	pool *pgxpool.Pool
}

// NewOfferRepository returns an OfferRepository that uses the given pool.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

func (r *OfferRepository) List(ctx context.Context) ([]offer.Offer, error) {
	rows, err := r.pool.Query(ctx, listOffersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing offers: %w", err)
	}
	return pgx.CollectRows(rows, scanOffer)
}

// ListActive returns active offers not expired at now.
func (r *OfferRepository) ListActive(ctx context.Context, now time.Time) ([]offer.Offer, error) {
	rows, err := r.pool.Query(ctx, listActiveOffersSQL, now)
	if err != nil {
		return nil, fmt.Errorf("listing active offers: %w", err)
	}
	return pgx.CollectRows(rows, scanOffer)
}

func (r *OfferRepository) Get(ctx context.Context, id string) (*offer.Offer, error) {
	rows, err := r.pool.Query(ctx, getOfferSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting offer %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOffer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, offer.ErrNotFound
		}
		return nil, fmt.Errorf("getting offer %q: %w", id, err)
	}
	return &o, nil
}

func (r *OfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	if _, err := r.pool.Exec(ctx, createOfferSQL, offerArgs(o)...); err != nil {
		return fmt.Errorf("creating offer %q: %w", o.ID, err)
	}
	return nil
}

func (r *OfferRepository) Update(ctx context.Context, o *offer.Offer) error {
	// Same arguments as an insert, minus created_at.
	args := append(offerArgs(o)[:14:14], o.UpdatedAt)
	tag, err := r.pool.Exec(ctx, updateOfferSQL, args...)
	if err != nil {
		return fmt.Errorf("updating offer %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return offer.ErrNotFound
	}
	return nil
}

func (r *OfferRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteOfferSQL, id)
	if err != nil {
		return fmt.Errorf("deleting offer %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return offer.ErrNotFound
	}
	return nil
}

// UpsertBatch inserts or replaces offers by id in a single round trip.
func (r *OfferRepository) UpsertBatch(ctx context.Context, offers []offer.Offer) error {
	if len(offers) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i := range offers {
		batch.Queue(upsertOfferSQL, offerArgs(&offers[i])...)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting %d offers: %w", len(offers), err)
	}
	return nil
}

func offerArgs(o *offer.Offer) []any {
	return []any{
		o.ID, o.Title, o.Description, string(offer.ScopeTypeOf(*o)), scopeTarget(o.Scope),
		string(o.DiscountType), o.DiscountValue, o.MinCartAmount, o.MinMRP, o.CouponCode,
		o.AutoApply, o.Active, o.StartDate, o.EndDate, o.CreatedAt, o.UpdatedAt,
	}
}

func scopeTarget(s offer.Scope) string {
	if s == nil {
		return ""
	}
	return s.Target()
}

func scanOffer(row pgx.CollectableRow) (offer.Offer, error) {
	var (
		o            offer.Offer
		scopeType    string
		target       string
		discountType string
	)
	err := row.Scan(
		&o.ID, &o.Title, &o.Description, &scopeType, &target, &discountType,
		&o.DiscountValue, &o.MinCartAmount, &o.MinMRP, &o.CouponCode, &o.AutoApply, &o.Active,
		&o.StartDate, &o.EndDate, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	o.DiscountType = offer.DiscountType(discountType)

	// An unknown scope leaves Scope nil; resolution skips such offers.
	if scope, err := offer.NewScope(offer.ScopeType(scopeType), target); err == nil {
		o.Scope = scope
	}
	return o, nil
}
