package offer

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOfferRepo struct {
	offers    map[string]Offer
	activeAt  time.Time
	listErr   error
	createErr error
	deleted   []string
}

func newMockOfferRepo(offers ...Offer) *mockOfferRepo {
	m := &mockOfferRepo{offers: make(map[string]Offer)}
	for _, o := range offers {
		m.offers[o.ID] = o
	}
	return m
}

func (m *mockOfferRepo) List(_ context.Context) ([]Offer, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]Offer, 0, len(m.offers))
	for _, o := range m.offers {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOfferRepo) ListActive(ctx context.Context, now time.Time) ([]Offer, error) {
	m.activeAt = now
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []Offer
	for _, o := range all {
		if o.Active && (o.EndDate == nil || !o.EndDate.Before(now)) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOfferRepo) Get(_ context.Context, id string) (*Offer, error) {
	o, ok := m.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *mockOfferRepo) Create(_ context.Context, o *Offer) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.offers[o.ID] = *o
	return nil
}

func (m *mockOfferRepo) Update(_ context.Context, o *Offer) error {
	if _, ok := m.offers[o.ID]; !ok {
		return ErrNotFound
	}
	m.offers[o.ID] = *o
	return nil
}

func (m *mockOfferRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.offers[id]; !ok {
		return ErrNotFound
	}
	delete(m.offers, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func newTestService(repo Repository) *Service {
	s := NewService(repo)
	s.now = func() time.Time { return testNow }
	return s
}

func TestService_Create(t *testing.T) {
	repo := newMockOfferRepo()
	svc := newTestService(repo)

	o := flat("", CartScope{}, "80")
	o.Title = "Flat 80"

	created, err := svc.Create(context.Background(), o)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, testNow, created.CreatedAt)
	require.NotNil(t, created.StartDate)
	assert.Equal(t, testNow, *created.StartDate)
	assert.Contains(t, repo.offers, created.ID)
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	svc := newTestService(newMockOfferRepo())

	_, err := svc.Create(context.Background(), flat("", ProductScope{}, "10"))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestService_CreateRepoError(t *testing.T) {
	repo := newMockOfferRepo()
	repo.createErr = errors.New("db down")
	svc := newTestService(repo)

	o := flat("", CartScope{}, "10")
	o.Title = "t"
	_, err := svc.Create(context.Background(), o)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create offer")
}

func TestService_UpdateKeepsCreatedAt(t *testing.T) {
	created := testNow.Add(-48 * time.Hour)
	existing := flat("o1", CartScope{}, "10")
	existing.Title = "old"
	existing.CreatedAt = created
	repo := newMockOfferRepo(existing)
	svc := newTestService(repo)

	upd := existing
	upd.Title = "new"
	upd.CreatedAt = time.Time{}

	got, err := svc.Update(context.Background(), upd)
	require.NoError(t, err)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, testNow, got.UpdatedAt)
	assert.Equal(t, "new", repo.offers["o1"].Title)
}

func TestService_UpdateMissing(t *testing.T) {
	svc := newTestService(newMockOfferRepo())

	o := flat("nope", CartScope{}, "10")
	o.Title = "t"
	_, err := svc.Update(context.Background(), o)

	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	repo := newMockOfferRepo(flat("o1", CartScope{}, "10"))
	svc := newTestService(repo)

	require.NoError(t, svc.Delete(context.Background(), "o1"))
	require.ErrorIs(t, svc.Delete(context.Background(), "o1"), ErrNotFound)
	assert.Equal(t, []string{"o1"}, repo.deleted)
}

func TestService_QuoteCartUsesActiveSnapshot(t *testing.T) {
	yesterday := testNow.AddDate(0, 0, -1)
	expired := flat("expired-cart", CartScope{}, "500")
	expired.EndDate = &yesterday

	repo := newMockOfferRepo(
		pct("cat10", CategoryScope{CategoryID: "c1"}, "10"),
		expired,
		flat("cart20", CartScope{}, "20"),
	)
	svc := newTestService(repo)

	totals, err := svc.QuoteCart(context.Background(), []Line{
		{Item: Item{ID: "p1", Price: d("100"), CategoryID: "c1"}, Quantity: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, testNow, repo.activeAt)
	assert.True(t, d("270").Equal(totals.Discounted))
	require.NotNil(t, totals.Cart.AppliedOffer)
	assert.Equal(t, "cart20", totals.Cart.AppliedOffer.ID)
	assert.True(t, d("250").Equal(totals.Payable()))
}

func TestService_QuoteItemsError(t *testing.T) {
	repo := newMockOfferRepo()
	repo.listErr = errors.New("db down")
	svc := newTestService(repo)

	_, err := svc.QuoteItems(context.Background(), []Item{testItem("10")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list active offers")
}

func TestService_QuoteUsesOneReferenceTime(t *testing.T) {
	endsSoon := testNow.Add(time.Hour)
	offerEndingSoon := pct("cat10", CategoryScope{CategoryID: "c1"}, "10")
	offerEndingSoon.EndDate = &endsSoon
	item := Item{ID: "p1", Price: d("100"), CategoryID: "c1"}

	// Each reading of the clock is a day later than the last.
	newSvc := func() (*Service, *mockOfferRepo) {
		repo := newMockOfferRepo(offerEndingSoon)
		svc := newTestService(repo)
		tick := testNow
		svc.now = func() time.Time {
			now := tick
			tick = tick.AddDate(0, 0, 1)
			return now
		}
		return svc, repo
	}

	t.Run("Items", func(t *testing.T) {
		svc, repo := newSvc()
		results, err := svc.QuoteItems(context.Background(), []Item{item})
		require.NoError(t, err)
		assert.Equal(t, testNow, repo.activeAt)
		require.NotNil(t, results[0].AppliedOffer)
		assert.True(t, d("90").Equal(results[0].FinalPrice))
	})
	t.Run("Cart", func(t *testing.T) {
		svc, repo := newSvc()
		totals, err := svc.QuoteCart(context.Background(), []Line{{Item: item, Quantity: 2}})
		require.NoError(t, err)
		assert.Equal(t, testNow, repo.activeAt)
		assert.True(t, d("180").Equal(totals.Discounted))
	})
}
