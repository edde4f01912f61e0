package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/unimart/storefront/internal/domain/offer"
	"github.com/unimart/storefront/internal/domain/product"
)

// Sentinel errors for order validation and state changes.
var (
	ErrEmptyItems       = errors.New("items required")
	ErrShippingRequired = errors.New("shipping address required")
	ErrNotFound         = errors.New("order not found")
	ErrNotCancellable   = errors.New("order can no longer be cancelled")
	ErrInvalidStatus    = errors.New("invalid order status")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// InsufficientStockError indicates a product cannot cover the ordered quantity.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// Quoter prices cart lines against the active offers.
type Quoter interface {
	QuoteCart(ctx context.Context, lines []offer.Line) (offer.Totals, error)
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	UserID   string
	Items    []Line
	Shipping ShippingInfo
}

// PlaceOrderResult holds the output of a successfully placed order.
type PlaceOrderResult struct {
	Order    *Order
	Products []product.Product
	Totals   offer.Totals
}

// Service encapsulates order placement and order management.
type Service struct {
	products product.Repository
	quoter   Quoter
	orders   Repository
	tracer   trace.Tracer
	now      func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	products product.Repository,
	quoter Quoter,
	orders Repository,
	tp trace.TracerProvider,
) *Service {
	return &Service{
		products: products,
		quoter:   quoter,
		orders:   orders,
		tracer:   tp.Tracer("github.com/unimart/storefront/internal/domain/order"),
		now:      time.Now,
	}
}

// PlaceOrder validates the request, prices it with the active offers,
// persists the order together with the stock decrement, and returns the
// result. Client-side totals are never consulted.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (_ *PlaceOrderResult, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder",
		trace.WithAttributes(attribute.Int("order.lines", len(req.Items))),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if strings.TrimSpace(req.Shipping.Address) == "" {
		return nil, ErrShippingRequired
	}

	// Validate quantities and merge repeated products into one line.
	lines := make([]Line, 0, len(req.Items))
	index := make(map[string]int, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		if i, ok := index[item.ProductID]; ok {
			lines[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, item)
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	products := make([]product.Product, 0, len(lines))
	pricing := make([]offer.Line, 0, len(lines))
	for _, l := range lines {
		p, ok := productMap[l.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: l.ProductID}
		}
		if p.Stock < l.Quantity {
			return nil, &InsufficientStockError{ProductID: p.ID}
		}
		products = append(products, p)
		pricing = append(pricing, offer.Line{Item: p.PricingItem(), Quantity: l.Quantity})
	}

	totals, err := s.quoter.QuoteCart(ctx, pricing)
	if err != nil {
		return nil, errors.Wrap(err, "quote order")
	}

	items := make([]OrderItem, len(totals.Lines))
	for i, lr := range totals.Lines {
		items[i] = OrderItem{
			ProductID:  products[i].ID,
			Title:      products[i].Title,
			Quantity:   lr.Quantity,
			UnitPrice:  products[i].Price,
			FinalPrice: lr.FinalPrice,
		}
		if lr.AppliedOffer != nil {
			items[i].OfferID = lr.AppliedOffer.ID
		}
	}

	o := &Order{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		Items:         items,
		Subtotal:      totals.Discounted.Round(2),
		ItemSavings:   totals.ItemSavings.Round(2),
		CartSavings:   totals.Cart.Savings.Round(2),
		Total:         totals.Payable().Round(2),
		Status:        StatusProcessing,
		PaymentStatus: PaymentPending,
		Shipping:      req.Shipping,
		CreatedAt:     s.now(),
	}
	if totals.Cart.AppliedOffer != nil {
		o.CartOfferID = totals.Cart.AppliedOffer.ID
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	span.SetAttributes(attribute.String("order.id", o.ID))

	zctx.From(ctx).Info("Order placed",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.String("total", o.Total.String()),
	)

	return &PlaceOrderResult{
		Order:    o,
		Products: products,
		Totals:   totals,
	}, nil
}

// ListMine returns the orders placed by userID.
func (s *Service) ListMine(ctx context.Context, userID string) ([]Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list user orders")
	}
	return orders, nil
}

// Cancel cancels an order on behalf of its owner while it is still processing.
func (s *Service) Cancel(ctx context.Context, userID, id string) (*Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Other customers' orders are reported as missing.
	if o.UserID != userID {
		return nil, ErrNotFound
	}
	if o.Status != StatusProcessing {
		return nil, ErrNotCancellable
	}

	o, err = s.orders.Cancel(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	zctx.From(ctx).Info("Order cancelled", zap.String("order_id", id))
	return o, nil
}

// ListAll returns every order.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// UpdateStatus sets the fulfilment status. Delivered orders get a delivery
// time.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	var deliveredAt *time.Time
	if status == StatusDelivered {
		now := s.now()
		deliveredAt = &now
	}
	return s.orders.UpdateStatus(ctx, id, status, deliveredAt)
}

// UpdatePaymentStatus sets the payment status.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.orders.UpdatePaymentStatus(ctx, id, status)
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}

// Stats counts catalog and order volume and sums settled revenue for today,
// the last seven days and the current month.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	st := &Stats{GeneratedAt: now}
	var err error
	if st.Products, err = s.products.Count(ctx); err != nil {
		return nil, errors.Wrap(err, "count products")
	}
	if st.Orders, err = s.orders.Count(ctx); err != nil {
		return nil, errors.Wrap(err, "count orders")
	}
	if st.Customers, err = s.orders.CountCustomers(ctx); err != nil {
		return nil, errors.Wrap(err, "count customers")
	}

	since := weekStart
	if monthStart.Before(since) {
		since = monthStart
	}
	settled, err := s.orders.ListSettled(ctx, since)
	if err != nil {
		return nil, errors.Wrap(err, "list settled orders")
	}

	st.RevenueToday, st.RevenueWeek, st.RevenueMonth = decimal.Zero, decimal.Zero, decimal.Zero
	for _, o := range settled {
		at := o.CreatedAt
		if o.DeliveredAt != nil {
			at = *o.DeliveredAt
		}
		if !at.Before(dayStart) {
			st.RevenueToday = st.RevenueToday.Add(o.Total)
		}
		if !at.Before(weekStart) {
			st.RevenueWeek = st.RevenueWeek.Add(o.Total)
		}
		if !at.Before(monthStart) {
			st.RevenueMonth = st.RevenueMonth.Add(o.Total)
		}
	}
	return st, nil
}
