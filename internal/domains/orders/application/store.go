package application

import (
	"context"
	"fmt"
	"time"

	listingports "github.com/Apurer/livestock-marketplace/internal/domains/listings/ports"
	"github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/orders/ports"
)

// LineRequest asks for a quantity of a listing; the price is read from the listing.
type LineRequest struct {
	ListingID int64
	Quantity  int32
}

// Store validates and records orders against the listing catalogue. It is
// cheap to build, so callers construct one per transaction around
// transaction-bound repositories.
type Store struct {
	orders   ports.Repository
	listings listingports.Repository
	clock    func() time.Time
}

func NewStore(orders ports.Repository, listings listingports.Repository, clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{orders: orders, listings: listings, clock: clock}
}

// CreateOrder snapshots each listing's current price into its line.
func (s *Store) CreateOrder(ctx context.Context, buyerID int64, lines []LineRequest, status domain.Status, note string) (*domain.Order, error) {
	drafts := make([]domain.LineDraft, 0, len(lines))
	for _, req := range lines {
		listing, err := s.listings.GetByID(ctx, req.ListingID)
		if err != nil {
			return nil, err
		}
		if !listing.IsAvailable() {
			return nil, fmt.Errorf("%w: listing %d", ErrListingUnavailable, listing.ID)
		}
		drafts = append(drafts, domain.LineDraft{
			ListingID: listing.ID,
			Quantity:  req.Quantity,
			UnitPrice: listing.Price,
		})
	}
	order, err := domain.NewOrder(buyerID, status, note, drafts, s.clock())
	if err != nil {
		return nil, mapError(err)
	}
	return s.orders.Create(ctx, order)
}

// GetOrder loads an order. When expectedBuyer is non-zero the order must belong to that buyer.
func (s *Store) GetOrder(ctx context.Context, id int64, expectedBuyer int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expectedBuyer != 0 && !order.OwnedBy(expectedBuyer) {
		return nil, mapError(domain.ErrNotOwner)
	}
	return order, nil
}

func (s *Store) FindPendingOrderForListing(ctx context.Context, buyerID, listingID int64) (*domain.Order, error) {
	return s.orders.FindPendingForListing(ctx, buyerID, listingID)
}

func (s *Store) ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	return s.orders.ListByBuyer(ctx, buyerID)
}

func (s *Store) ListByFarmerListings(ctx context.Context, listingIDs []int64) ([]domain.SaleLine, error) {
	if len(listingIDs) == 0 {
		return nil, nil
	}
	return s.orders.ListLinesForListings(ctx, listingIDs)
}
