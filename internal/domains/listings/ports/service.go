package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

// Service exposes listing use cases to adapters.
type Service interface {
	CreateListing(ctx context.Context, actor identity.Actor, attrs domain.Attributes) (*domain.Listing, error)
	GetListing(ctx context.Context, id int64) (*domain.Listing, error)
	ListAvailable(ctx context.Context, filter domain.Filter) ([]*domain.Listing, error)
	ListByFarmer(ctx context.Context, actor identity.Actor) ([]*domain.Listing, error)
	ChangePrice(ctx context.Context, actor identity.Actor, id int64, price decimal.Decimal) (*domain.Listing, error)
	AddPhoto(ctx context.Context, actor identity.Actor, id int64, url string) (*domain.Listing, error)
}
