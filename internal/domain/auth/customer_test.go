package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCustomers struct {
	active []Customer
}

func (m *memCustomers) ListCustomers(_ context.Context) ([]Customer, error) {
	return m.active, nil
}

func (m *memCustomers) DeactivateCustomer(_ context.Context, id string) error {
	for i, c := range m.active {
		if c.ID == id {
			m.active = append(m.active[:i], m.active[i+1:]...)
			return nil
		}
	}
	return ErrCustomerNotFound
}

func TestCustomerService(t *testing.T) {
	repo := &memCustomers{active: []Customer{
		{ID: "c2", Name: "Ravi", CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "c1", Name: "Asha", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
	svc := NewCustomerService(repo)
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, svc.Delete(ctx, "c1"))
	require.ErrorIs(t, svc.Delete(ctx, "c1"), ErrCustomerNotFound)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, []string{list[0].ID})
}
