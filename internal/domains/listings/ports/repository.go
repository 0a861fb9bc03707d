package ports

import (
	"context"
	"errors"

	"github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
)

var (
	ErrNotFound = errors.New("listing not found")
	// ErrNotAvailable is returned by ClaimForSale when another transaction sold the listing first.
	ErrNotAvailable = errors.New("listing no longer available")
)

// Repository persists listings. Availability only changes through MarkSold,
// MarkAvailable and ClaimForSale; Update never touches status or isForSale.
type Repository interface {
	Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	// GetForUpdate reads the listing and holds its row lock until the
	// enclosing transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Listing, error)
	// List returns matching listings, newest first.
	List(ctx context.Context, filter domain.Filter) ([]*domain.Listing, error)
	ListByFarmer(ctx context.Context, farmerID int64) ([]*domain.Listing, error)
	// MarkSold and MarkAvailable are idempotent.
	MarkSold(ctx context.Context, id int64) error
	MarkAvailable(ctx context.Context, id int64) error
	// ClaimForSale flips available to sold only if the listing is still available.
	ClaimForSale(ctx context.Context, id int64) error
}
