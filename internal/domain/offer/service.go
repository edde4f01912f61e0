package offer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages offers and hands out snapshots of the active ones.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates an offer Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Active returns the offers that are active and not expired right now.
func (s *Service) Active(ctx context.Context) ([]Offer, error) {
	return s.activeAt(ctx, s.now())
}

func (s *Service) activeAt(ctx context.Context, now time.Time) ([]Offer, error) {
	offers, err := s.repo.ListActive(ctx, now)
	if err != nil {
		return nil, errors.Wrap(err, "list active offers")
	}
	return offers, nil
}

// List returns every offer, active or not.
func (s *Service) List(ctx context.Context) ([]Offer, error) {
	offers, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list offers")
	}
	return offers, nil
}

// Get returns a single offer by id.
func (s *Service) Get(ctx context.Context, id string) (*Offer, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new offer, assigning its id and timestamps.
func (s *Service) Create(ctx context.Context, o Offer) (*Offer, error) {
	if err := Validate(o); err != nil {
		return nil, err
	}

	now := s.now()
	o.ID = uuid.New().String()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.StartDate == nil {
		o.StartDate = &now
	}

	if err := s.repo.Create(ctx, &o); err != nil {
		return nil, errors.Wrap(err, "create offer")
	}

	zctx.From(ctx).Info("Offer created",
		zap.String("offer_id", o.ID),
		zap.String("scope", string(o.Scope.Type())),
		zap.String("discount_type", string(o.DiscountType)),
	)
	return &o, nil
}

// Update replaces an existing offer. The creation time is preserved.
func (s *Service) Update(ctx context.Context, o Offer) (*Offer, error) {
	if err := Validate(o); err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = existing.CreatedAt
	o.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, &o); err != nil {
		return nil, errors.Wrap(err, "update offer")
	}
	return &o, nil
}

// Delete removes an offer.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	zctx.From(ctx).Info("Offer deleted", zap.String("offer_id", id))
	return nil
}

// QuoteItems resolves item-level offers for each item against the current
// active snapshot. The snapshot and the resolution share one reference time.
func (s *Service) QuoteItems(ctx context.Context, items []Item) ([]ItemResult, error) {
	now := s.now()
	offers, err := s.activeAt(ctx, now)
	if err != nil {
		return nil, err
	}
	out := make([]ItemResult, len(items))
	for i, it := range items {
		out[i] = ResolveItem(it, offers, now)
	}
	return out, nil
}

// QuoteCart computes cart totals against the current active snapshot.
func (s *Service) QuoteCart(ctx context.Context, lines []Line) (Totals, error) {
	now := s.now()
	offers, err := s.activeAt(ctx, now)
	if err != nil {
		return Totals{}, err
	}
	return ComputeCartTotals(lines, offers, now), nil
}
