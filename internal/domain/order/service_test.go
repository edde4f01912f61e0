package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/unimart/storefront/internal/domain/offer"
	"github.com/unimart/storefront/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID   map[string]*product.Product
	getErr error
}

func (m *mockProductRepo) List(_ context.Context, _ string, _ int) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, _ string) error           { return nil }
func (m *mockProductRepo) Count(_ context.Context) (int, error)               { return len(m.byID), nil }

type engineQuoter struct {
	offers []offer.Offer
}

func (q engineQuoter) QuoteCart(_ context.Context, lines []offer.Line) (offer.Totals, error) {
	return offer.ComputeCartTotals(lines, q.offers, fixedNow), nil
}

type mockOrderRepo struct {
	byID      map[string]*Order
	lastOrder *Order
	settled   []Order
	createErr error
}

func newOrderRepo(orders ...Order) *mockOrderRepo {
	m := &mockOrderRepo{byID: make(map[string]*Order)}
	for i := range orders {
		m.byID[orders[i].ID] = &orders[i]
	}
	return m
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.lastOrder = o
	if m.createErr != nil {
		return m.createErr
	}
	m.byID[o.ID] = o
	return nil
}

func (m *mockOrderRepo) Get(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]Order, error) {
	var out []Order
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) Cancel(_ context.Context, id, _ string) (*Order, error) {
	o := m.byID[id]
	o.Status = StatusCancelled
	return o, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status Status, deliveredAt *time.Time) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Status = status
	o.DeliveredAt = deliveredAt
	return o, nil
}

func (m *mockOrderRepo) UpdatePaymentStatus(_ context.Context, id string, status PaymentStatus) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.PaymentStatus = status
	return o, nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *mockOrderRepo) Count(_ context.Context) (int, error) { return len(m.byID), nil }

func (m *mockOrderRepo) CountCustomers(_ context.Context) (int, error) {
	users := make(map[string]struct{})
	for _, o := range m.byID {
		users[o.UserID] = struct{}{}
	}
	return len(users), nil
}

func (m *mockOrderRepo) ListSettled(_ context.Context, since time.Time) ([]Order, error) {
	var out []Order
	for _, o := range m.settled {
		at := o.CreatedAt
		if o.DeliveredAt != nil {
			at = *o.DeliveredAt
		}
		if !at.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

// --- Helpers ---

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var shipping = ShippingInfo{Name: "Asha", Surname: "Rao", Phone: "9999999999", Address: "12 MG Road"}

func newTestProduct(id, title string, price decimal.Decimal) product.Product {
	return product.Product{
		ID:          id,
		Title:       title,
		Price:       price,
		Stock:       10,
		CategoryID:  "c1",
		Subcategory: product.Subcategory{ID: "s1", Name: "test"},
	}
}

func newProductRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockProductRepo{byID: byID}
}

func newTestService(products *mockProductRepo, q Quoter, orders *mockOrderRepo) *Service {
	svc := NewService(products, q, orders, noop.NewTracerProvider())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// --- Tests ---

func TestPlaceOrder_EmptyItems(t *testing.T) {
	svc := newTestService(newProductRepo(), engineQuoter{}, newOrderRepo())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{Shipping: shipping})
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestPlaceOrder_ShippingRequired(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", decimal.NewFromInt(10))
	svc := newTestService(newProductRepo(p1), engineQuoter{}, newOrderRepo())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:    []Line{{ProductID: "p1", Quantity: 1}},
		Shipping: ShippingInfo{Name: "Asha", Address: "   "},
	})
	require.ErrorIs(t, err, ErrShippingRequired)
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", decimal.NewFromInt(10))
	svc := newTestService(newProductRepo(p1), engineQuoter{}, newOrderRepo())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:    []Line{{ProductID: "p1", Quantity: 0}},
		Shipping: shipping,
	})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, "p1", iqErr.ProductID)
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	svc := newTestService(newProductRepo(), engineQuoter{}, newOrderRepo())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:    []Line{{ProductID: "missing", Quantity: 1}},
		Shipping: shipping,
	})

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, "missing", pnfErr.ProductID)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", decimal.NewFromInt(10))
	p1.Stock = 2
	orders := newOrderRepo()
	svc := newTestService(newProductRepo(p1), engineQuoter{}, orders)

	// Repeated lines are merged before the stock check.
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []Line{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p1", Quantity: 1},
		},
		Shipping: shipping,
	})

	var isErr *InsufficientStockError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, "p1", isErr.ProductID)
	assert.Nil(t, orders.lastOrder)
}

func TestPlaceOrder_NoOffers(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", decimal.RequireFromString("10.00"))
	p2 := newTestProduct("p2", "Gadget", decimal.RequireFromString("20.00"))
	orders := newOrderRepo()
	svc := newTestService(newProductRepo(p1, p2), engineQuoter{}, orders)

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID: "u1",
		Items: []Line{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
		Shipping: shipping,
	})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("40.00").Equal(result.Order.Total))
	assert.True(t, decimal.Zero.Equal(result.Order.CartSavings))
	assert.Equal(t, StatusProcessing, result.Order.Status)
	assert.Equal(t, PaymentPending, result.Order.PaymentStatus)
	assert.Equal(t, "u1", result.Order.UserID)
	assert.Len(t, result.Products, 2)
	assert.Same(t, result.Order, orders.lastOrder)
}

func TestPlaceOrder_WithOffers(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", decimal.NewFromInt(200))
	p2 := newTestProduct("p2", "Gadget", decimal.NewFromInt(100))
	p2.CategoryID = "c2"
	q := engineQuoter{offers: []offer.Offer{
		{
			ID:            "cat10",
			Scope:         offer.CategoryScope{CategoryID: "c1"},
			DiscountType:  offer.DiscountPercentage,
			DiscountValue: decimal.NewFromInt(10),
			Active:        true,
		},
		{
			ID:            "cart50",
			Scope:         offer.CartScope{},
			DiscountType:  offer.DiscountFlat,
			DiscountValue: decimal.NewFromInt(50),
			MinCartAmount: decimal.NewFromInt(300),
			Active:        true,
		},
	}}
	svc := newTestService(newProductRepo(p1, p2), q, newOrderRepo())

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []Line{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
		Shipping: shipping,
	})

	require.NoError(t, err)
	o := result.Order
	assert.True(t, decimal.NewFromInt(460).Equal(o.Subtotal))
	assert.True(t, decimal.NewFromInt(40).Equal(o.ItemSavings))
	assert.True(t, decimal.NewFromInt(50).Equal(o.CartSavings))
	assert.True(t, decimal.NewFromInt(410).Equal(o.Total))
	assert.Equal(t, "cart50", o.CartOfferID)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "cat10", o.Items[0].OfferID)
	assert.True(t, decimal.NewFromInt(180).Equal(o.Items[0].FinalPrice))
	assert.Empty(t, o.Items[1].OfferID)
}

func TestPlaceOrder_OrderCreateError(t *testing.T) {
	p1 := newTestProduct("p1", "Widget", decimal.NewFromInt(10))
	orders := newOrderRepo()
	orders.createErr = &InsufficientStockError{ProductID: "p1"}
	svc := newTestService(newProductRepo(p1), engineQuoter{}, orders)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:    []Line{{ProductID: "p1", Quantity: 1}},
		Shipping: shipping,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
	var isErr *InsufficientStockError
	assert.ErrorAs(t, err, &isErr)
}

func TestPlaceOrder_ProductFetchError(t *testing.T) {
	products := newProductRepo()
	products.getErr = errors.New("db read failed")
	svc := newTestService(products, engineQuoter{}, newOrderRepo())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:    []Line{{ProductID: "p1", Quantity: 1}},
		Shipping: shipping,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "get products")
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		userID  string
		wantErr error
	}{
		{
			name:   "processing order of owner",
			order:  Order{ID: "o1", UserID: "u1", Status: StatusProcessing},
			userID: "u1",
		},
		{
			name:    "already shipped",
			order:   Order{ID: "o1", UserID: "u1", Status: StatusShipped},
			userID:  "u1",
			wantErr: ErrNotCancellable,
		},
		{
			name:    "someone else's order",
			order:   Order{ID: "o1", UserID: "u2", Status: StatusProcessing},
			userID:  "u1",
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newProductRepo(), engineQuoter{}, newOrderRepo(tt.order))

			o, err := svc.Cancel(context.Background(), tt.userID, tt.order.ID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCancelled, o.Status)
		})
	}
}

func TestUpdateStatus(t *testing.T) {
	orders := newOrderRepo(Order{ID: "o1", Status: StatusProcessing})
	svc := newTestService(newProductRepo(), engineQuoter{}, orders)

	o, err := svc.UpdateStatus(context.Background(), "o1", StatusShipped)
	require.NoError(t, err)
	assert.Nil(t, o.DeliveredAt)

	o, err = svc.UpdateStatus(context.Background(), "o1", StatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, o.DeliveredAt)
	assert.Equal(t, fixedNow, *o.DeliveredAt)

	_, err = svc.UpdateStatus(context.Background(), "o1", Status("lost"))
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdatePaymentStatus(context.Background(), "o1", PaymentStatus("maybe"))
	require.ErrorIs(t, err, ErrInvalidStatus)

	o, err = svc.UpdatePaymentStatus(context.Background(), "o1", PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, o.PaymentStatus)
}

func TestStats(t *testing.T) {
	at := func(d time.Duration) *time.Time {
		v := fixedNow.Add(d)
		return &v
	}
	orders := newOrderRepo(
		Order{ID: "o1", UserID: "u1"},
		Order{ID: "o2", UserID: "u1"},
		Order{ID: "o3", UserID: "u2"},
	)
	orders.settled = []Order{
		// Delivered an hour ago.
		{Total: decimal.NewFromInt(100), DeliveredAt: at(-time.Hour)},
		// Delivered three days ago.
		{Total: decimal.NewFromInt(50), DeliveredAt: at(-72 * time.Hour)},
		// No delivery time, created twelve days ago (still this month).
		{Total: decimal.NewFromInt(25), CreatedAt: fixedNow.Add(-12 * 24 * time.Hour)},
		// Last month.
		{Total: decimal.NewFromInt(1000), DeliveredAt: at(-20 * 24 * time.Hour)},
	}
	svc := newTestService(newProductRepo(newTestProduct("p1", "Widget", decimal.NewFromInt(1))), engineQuoter{}, orders)

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, st.Products)
	assert.Equal(t, 3, st.Orders)
	assert.Equal(t, 2, st.Customers)
	assert.True(t, decimal.NewFromInt(100).Equal(st.RevenueToday), st.RevenueToday.String())
	assert.True(t, decimal.NewFromInt(150).Equal(st.RevenueWeek), st.RevenueWeek.String())
	assert.True(t, decimal.NewFromInt(175).Equal(st.RevenueMonth), st.RevenueMonth.String())
}
