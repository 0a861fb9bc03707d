package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/listings/ports"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

// Service orchestrates listing use cases. Availability transitions belong to
// the lifecycle engine and are not exposed here.
type Service struct {
	repo  ports.Repository
	clock func() time.Time
}

type Option func(*Service)

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateListing(ctx context.Context, actor identity.Actor, attrs domain.Attributes) (*domain.Listing, error) {
	farmer, err := requireFarmer(actor)
	if err != nil {
		return nil, err
	}
	listing, err := domain.NewListing(farmer.AccountID, attrs, s.clock())
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.Create(ctx, listing)
}

func (s *Service) GetListing(ctx context.Context, id int64) (*domain.Listing, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAvailable returns the marketplace view, newest first.
func (s *Service) ListAvailable(ctx context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) ListByFarmer(ctx context.Context, actor identity.Actor) ([]*domain.Listing, error) {
	farmer, err := requireFarmer(actor)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByFarmer(ctx, farmer.AccountID)
}

func (s *Service) ChangePrice(ctx context.Context, actor identity.Actor, id int64, price decimal.Decimal) (*domain.Listing, error) {
	return s.mutateOwned(ctx, actor, id, func(l *domain.Listing) error {
		return l.ChangePrice(price, s.clock())
	})
}

func (s *Service) AddPhoto(ctx context.Context, actor identity.Actor, id int64, url string) (*domain.Listing, error) {
	return s.mutateOwned(ctx, actor, id, func(l *domain.Listing) error {
		return l.AddPhoto(url, s.clock())
	})
}

func (s *Service) mutateOwned(ctx context.Context, actor identity.Actor, id int64, mutate func(*domain.Listing) error) (*domain.Listing, error) {
	farmer, err := requireFarmer(actor)
	if err != nil {
		return nil, err
	}
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !listing.OwnedBy(farmer.AccountID) {
		return nil, mapError(domain.ErrNotOwner)
	}
	if err := mutate(listing); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Update(ctx, listing)
}

func requireFarmer(actor identity.Actor) (identity.Farmer, error) {
	switch a := actor.(type) {
	case identity.Farmer:
		return a, nil
	case identity.Buyer:
		return identity.Farmer{}, fmt.Errorf("%w: buyers cannot manage listings", ErrForbidden)
	default:
		return identity.Farmer{}, identity.ErrUnauthenticated
	}
}

var _ ports.Service = (*Service)(nil)
