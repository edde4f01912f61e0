package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unimart/storefront/internal/domain/order"
)

const orderColumns = `id, user_id, items, subtotal, item_savings, cart_offer_id, cart_savings,
	total, status, payment_status, shipping_name, shipping_surname, shipping_phone,
	shipping_address, created_at, delivered_at`

const (
	createOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	// The stock guard makes the decrement fail instead of going negative.
	decrementStockSQL = `UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`

	restoreStockSQL = `UPDATE products SET stock = stock + $2 WHERE id = $1`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	cancelOrderSQL = `UPDATE orders SET status = 'cancelled'
		WHERE id = $1 AND user_id = $2 AND status = 'processing'
		RETURNING ` + orderColumns

	updateOrderStatusSQL = `UPDATE orders SET status = $2, delivered_at = COALESCE($3, delivered_at)
		WHERE id = $1 RETURNING ` + orderColumns

	updatePaymentStatusSQL = `UPDATE orders SET payment_status = $2
		WHERE id = $1 RETURNING ` + orderColumns

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	countOrdersSQL = `SELECT COUNT(*) FROM orders`

	countCustomersSQL = `SELECT COUNT(DISTINCT user_id) FROM orders`

	listSettledOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE status = 'delivered' AND payment_status = 'paid'
		AND COALESCE(delivered_at, created_at) >= $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order and takes its quantities out of stock in the
// same transaction. The order items are serialized to JSON for storage in
// the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, it := range o.Items {
			tag, err := tx.Exec(ctx, decrementStockSQL, it.ProductID, it.Quantity)
			if err != nil {
				return fmt.Errorf("decrementing stock of %q: %w", it.ProductID, err)
			}
			if tag.RowsAffected() == 0 {
				return &order.InsufficientStockError{ProductID: it.ProductID}
			}
		}

		_, err := tx.Exec(ctx, createOrderSQL,
			o.ID, o.UserID, itemsJSON, o.Subtotal, o.ItemSavings, o.CartOfferID, o.CartSavings,
			o.Total, string(o.Status), string(o.PaymentStatus), o.Shipping.Name, o.Shipping.Surname,
			o.Shipping.Phone, o.Shipping.Address, o.CreatedAt, o.DeliveredAt,
		)
		if err != nil {
			return fmt.Errorf("creating order %q: %w", o.ID, err)
		}
		return nil
	})
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	return r.queryOne(ctx, getOrderSQL, id)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Cancel flips a processing order to cancelled and puts its quantities back
// into stock. Products deleted since the order was placed are skipped.
func (r *OrderRepository) Cancel(ctx context.Context, id, userID string) (*order.Order, error) {
	var cancelled order.Order
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, cancelOrderSQL, id, userID)
		if err != nil {
			return fmt.Errorf("cancelling order %q: %w", id, err)
		}
		cancelled, err = pgx.CollectExactlyOneRow(rows, scanOrder)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return order.ErrNotCancellable
			}
			return fmt.Errorf("cancelling order %q: %w", id, err)
		}

		for _, it := range cancelled.Items {
			if _, err := tx.Exec(ctx, restoreStockSQL, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("restoring stock of %q: %w", it.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cancelled, nil
}

// UpdateStatus sets the order status. A nil deliveredAt keeps the stored value.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status, deliveredAt *time.Time) (*order.Order, error) {
	return r.queryOne(ctx, updateOrderStatusSQL, id, string(status), deliveredAt)
}

func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id string, status order.PaymentStatus) (*order.Order, error) {
	return r.queryOne(ctx, updatePaymentStatusSQL, id, string(status))
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countOrdersSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}
	return n, nil
}

// CountCustomers returns how many distinct users have placed an order.
func (r *OrderRepository) CountCustomers(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countCustomersSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting customers: %w", err)
	}
	return n, nil
}

func (r *OrderRepository) ListSettled(ctx context.Context, since time.Time) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listSettledOrdersSQL, since)
	if err != nil {
		return nil, fmt.Errorf("listing settled orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func (r *OrderRepository) queryOne(ctx context.Context, sql string, args ...any) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order: %w", err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("querying order: %w", err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o             order.Order
		items         []byte
		status        string
		paymentStatus string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &items, &o.Subtotal, &o.ItemSavings, &o.CartOfferID, &o.CartSavings,
		&o.Total, &status, &paymentStatus, &o.Shipping.Name, &o.Shipping.Surname,
		&o.Shipping.Phone, &o.Shipping.Address, &o.CreatedAt, &o.DeliveredAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	o.PaymentStatus = order.PaymentStatus(paymentStatus)

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return o, fmt.Errorf("decoding items of order %q: %w", o.ID, err)
	}
	return o, nil
}
