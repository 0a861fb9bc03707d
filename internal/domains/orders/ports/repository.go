package ports

import (
	"context"
	"errors"

	"github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Repository persists orders together with their lines.
type Repository interface {
	// Create assigns identifiers to the order and its lines.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// Update writes status and payment status. Lines are immutable.
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByLineID(ctx context.Context, lineID int64) (*domain.Order, error)
	// FindPendingForListing returns the buyer's newest pending order containing
	// the listing, or nil when there is none.
	FindPendingForListing(ctx context.Context, buyerID, listingID int64) (*domain.Order, error)
	// ListByBuyer returns the buyer's orders newest first.
	ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error)
	// ListLinesForListings returns lines referencing any of the listings, newest order first.
	ListLinesForListings(ctx context.Context, listingIDs []int64) ([]domain.SaleLine, error)
}
