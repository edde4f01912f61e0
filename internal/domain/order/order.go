package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusPacked     Status = "packed"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusPacked, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Valid reports whether p is a known payment status.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

// Order represents a placed customer order with its priced lines and totals.
// Subtotal is the sum of line totals after item-level offers; Total is what
// the customer pays after the cart-level offer.
type Order struct {
	ID          string
	UserID      string
	Items       []OrderItem
	Subtotal    decimal.Decimal
	ItemSavings decimal.Decimal
	CartOfferID string
	CartSavings decimal.Decimal
	Total       decimal.Decimal

	Status        Status
	PaymentStatus PaymentStatus
	Shipping      ShippingInfo
	CreatedAt     time.Time
	DeliveredAt   *time.Time
}

// OrderItem represents a single priced line item in an order.
type OrderItem struct {
	ProductID  string          `json:"product_id"`
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	FinalPrice decimal.Decimal `json:"final_price"`
	OfferID    string          `json:"offer_id,omitempty"`
}

// ShippingInfo is the delivery contact of an order.
type ShippingInfo struct {
	Name    string
	Surname string
	Phone   string
	Address string
}

// Line is a requested product and quantity.
type Line struct {
	ProductID string
	Quantity  int
}

// Stats summarises the store for the admin dashboard.
type Stats struct {
	Products     int
	Orders       int
	Customers    int
	RevenueToday decimal.Decimal
	RevenueWeek  decimal.Decimal
	RevenueMonth decimal.Decimal
	GeneratedAt  time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create inserts the order and decrements stock for every line in one
	// transaction. It returns *InsufficientStockError when a product is short.
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	// Cancel moves a processing order owned by userID to cancelled and
	// restores its stock. It returns ErrNotCancellable if the order has
	// moved on.
	Cancel(ctx context.Context, id, userID string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, deliveredAt *time.Time) (*Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) (*Order, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	CountCustomers(ctx context.Context) (int, error)
	// ListSettled returns paid and delivered orders settled at or after since,
	// where the settlement date is DeliveredAt or CreatedAt when unset.
	ListSettled(ctx context.Context, since time.Time) ([]Order, error)
}
