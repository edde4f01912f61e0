package cart

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unimart/storefront/internal/domain/offer"
	"github.com/unimart/storefront/internal/domain/product"
)

// --- Mock implementations ---

type memStore struct {
	carts   map[string]Cart
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{carts: make(map[string]Cart)}
}

func (m *memStore) Get(_ context.Context, userID string) (*Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return &Cart{UserID: userID}, nil
	}
	c.Lines = append([]Line(nil), c.Lines...)
	return &c, nil
}

func (m *memStore) Save(_ context.Context, c *Cart) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.carts[c.UserID] = *c
	return nil
}

func (m *memStore) Delete(_ context.Context, userID string) error {
	delete(m.carts, userID)
	return nil
}

type mockProductRepo struct {
	byID map[string]product.Product
}

func (m *mockProductRepo) List(_ context.Context, _ string, _ int) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
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
	got    []offer.Line
}

func (q *engineQuoter) QuoteCart(_ context.Context, lines []offer.Line) (offer.Totals, error) {
	q.got = lines
	return offer.ComputeCartTotals(lines, q.offers, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)), nil
}

// --- Helpers ---

func catalog() *mockProductRepo {
	return &mockProductRepo{byID: map[string]product.Product{
		"p1": {ID: "p1", Title: "Rice", Price: decimal.NewFromInt(200), CategoryID: "c1"},
		"p2": {ID: "p2", Title: "Dal", Price: decimal.NewFromInt(100), CategoryID: "c2"},
	}}
}

// --- Tests ---

func TestService_AddMergesLines(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, catalog(), &engineQuoter{})
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "p1", 1)
	require.NoError(t, err)
	c, err := svc.Add(ctx, "u1", "p1", 2)
	require.NoError(t, err)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, 3, store.carts["u1"].Lines[0].Quantity)
}

func TestService_AddValidation(t *testing.T) {
	svc := NewService(newMemStore(), catalog(), &engineQuoter{})

	_, err := svc.Add(context.Background(), "u1", "p1", 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Add(context.Background(), "u1", "missing", 1)
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestService_IncrementDecrement(t *testing.T) {
	svc := NewService(newMemStore(), catalog(), &engineQuoter{})
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "p1", 1)
	require.NoError(t, err)

	c, err := svc.Increment(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Lines[0].Quantity)

	c, err = svc.Decrement(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Lines[0].Quantity)

	// Never below one.
	c, err = svc.Decrement(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Lines[0].Quantity)

	_, err = svc.Increment(ctx, "u1", "p2")
	require.ErrorIs(t, err, ErrLineNotFound)
}

func TestService_RemoveAndClear(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, catalog(), &engineQuoter{})
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "p1", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", "p2", 1)
	require.NoError(t, err)

	c, err := svc.Remove(ctx, "u1", "p1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "p2", c.Lines[0].ProductID)

	_, err = svc.Remove(ctx, "u1", "p1")
	require.ErrorIs(t, err, ErrLineNotFound)

	require.NoError(t, svc.Clear(ctx, "u1"))
	assert.NotContains(t, store.carts, "u1")
}

func TestService_SaveError(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("redis down")
	svc := NewService(store, catalog(), &engineQuoter{})

	_, err := svc.Add(context.Background(), "u1", "p1", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save cart")
}

func TestService_Quote(t *testing.T) {
	store := newMemStore()
	store.carts["u1"] = Cart{UserID: "u1", Lines: []Line{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "gone", Quantity: 5},
		{ProductID: "p2", Quantity: 1},
	}}
	q := &engineQuoter{offers: []offer.Offer{
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
			Active:        true,
		},
	}}
	svc := NewService(store, catalog(), q)

	quote, err := svc.Quote(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, q.got, 2)
	require.Len(t, quote.Products, 2)
	assert.True(t, decimal.NewFromInt(500).Equal(quote.Totals.Base))
	assert.True(t, decimal.NewFromInt(460).Equal(quote.Totals.Discounted))
	assert.True(t, decimal.NewFromInt(410).Equal(quote.Totals.Payable()))
	assert.True(t, decimal.NewFromInt(90).Equal(quote.Totals.TotalSavings()))
}

func TestService_QuoteEmptyCart(t *testing.T) {
	svc := NewService(newMemStore(), catalog(), &engineQuoter{})

	quote, err := svc.Quote(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, quote.Totals.Payable().IsZero())
	assert.Empty(t, quote.Products)
}
