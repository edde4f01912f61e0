package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// ErrCustomerNotFound is returned when no active customer key has the id.
var ErrCustomerNotFound = errors.New("customer not found")

// Customer is a principal holding the customer scope and no admin scope.
type Customer struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// CustomerRepository lists and revokes customer keys.
type CustomerRepository interface {
	// ListCustomers returns active customer keys, newest first.
	ListCustomers(ctx context.Context) ([]Customer, error)
	// DeactivateCustomer revokes the customer key with id. Admin keys are
	// never matched.
	DeactivateCustomer(ctx context.Context, id string) error
}

// CustomerService is the admin view over customer identities.
type CustomerService struct {
	repo CustomerRepository
}

func NewCustomerService(repo CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

func (s *CustomerService) List(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// Delete revokes a customer's key. Their orders are kept.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeactivateCustomer(ctx, id); err != nil {
		return errors.Wrapf(err, "deactivate customer %s", id)
	}
	zctx.From(ctx).Info("Customer deactivated", zap.String("customer_id", id))
	return nil
}
