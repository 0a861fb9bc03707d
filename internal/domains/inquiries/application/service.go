package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Apurer/livestock-marketplace/internal/domains/inquiries/ports"
	lifecycleports "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	listingdomain "github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
	orderapp "github.com/Apurer/livestock-marketplace/internal/domains/orders/application"
	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

const recentSalesLimit = 5

// Service answers buyer and farmer queries. Every query runs in its own
// transaction so it observes only committed lifecycle transitions.
type Service struct {
	tx lifecycleports.Transactor
}

func NewService(tx lifecycleports.Transactor) *Service {
	return &Service{tx: tx}
}

// BuyerHistory lists the buyer's orders, newest first.
func (s *Service) BuyerHistory(ctx context.Context, actor identity.Actor) ([]*orderdomain.Order, error) {
	buyer, err := requireBuyer(actor)
	if err != nil {
		return nil, err
	}
	var orders []*orderdomain.Order
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, stores lifecycleports.Stores) error {
		orders, err = stores.Orders.ListByBuyer(ctx, buyer.AccountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// SalesQueue lists every order line placed on the farmer's listings.
func (s *Service) SalesQueue(ctx context.Context, actor identity.Actor) ([]ports.SalesLine, error) {
	farmer, err := requireFarmer(actor)
	if err != nil {
		return nil, err
	}
	var queue []ports.SalesLine
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, stores lifecycleports.Stores) error {
		_, queue, err = s.salesFor(ctx, stores, farmer)
		return err
	})
	if err != nil {
		return nil, err
	}
	return queue, nil
}

// OrderDetail returns one of the buyer's orders with its listings.
func (s *Service) OrderDetail(ctx context.Context, actor identity.Actor, orderID int64) (*ports.OrderDetail, error) {
	buyer, err := requireBuyer(actor)
	if err != nil {
		return nil, err
	}
	var detail ports.OrderDetail
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, stores lifecycleports.Stores) error {
		store := orderapp.NewStore(stores.Orders, stores.Listings, time.Now)
		order, err := store.GetOrder(ctx, orderID, buyer.AccountID)
		if err != nil {
			return err
		}
		detail.Order = order
		detail.Listings = make(map[int64]*listingdomain.Listing, len(order.Lines))
		for _, id := range order.ListingIDs() {
			listing, err := stores.Listings.GetByID(ctx, id)
			if err != nil {
				return err
			}
			detail.Listings[id] = listing
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &detail, nil
}

// Dashboard counts the farmer's listings and pending inquiries.
func (s *Service) Dashboard(ctx context.Context, actor identity.Actor) (*ports.Dashboard, error) {
	farmer, err := requireFarmer(actor)
	if err != nil {
		return nil, err
	}
	var board ports.Dashboard
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, stores lifecycleports.Stores) error {
		listings, queue, err := s.salesFor(ctx, stores, farmer)
		if err != nil {
			return err
		}
		board.TotalListings = len(listings)
		for _, l := range listings {
			if l.IsAvailable() {
				board.AvailableListings++
			} else if l.Status == listingdomain.StatusSold {
				board.SoldListings++
			}
		}
		for _, line := range queue {
			if orderdomain.IsPendingStatus(line.Order.Status) {
				board.PendingInquiries++
			}
		}
		board.RecentSales = queue
		if len(queue) > recentSalesLimit {
			board.RecentSales = queue[:recentSalesLimit]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *Service) salesFor(ctx context.Context, stores lifecycleports.Stores, farmer identity.Farmer) ([]*listingdomain.Listing, []ports.SalesLine, error) {
	listings, err := stores.Listings.ListByFarmer(ctx, farmer.AccountID)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[int64]*listingdomain.Listing, len(listings))
	ids := make([]int64, 0, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}
	store := orderapp.NewStore(stores.Orders, stores.Listings, time.Now)
	lines, err := store.ListByFarmerListings(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	queue := make([]ports.SalesLine, 0, len(lines))
	for _, line := range lines {
		queue = append(queue, ports.SalesLine{SaleLine: line, Listing: byID[line.Line.ListingID]})
	}
	return listings, queue, nil
}

func mapError(err error) error {
	if errors.Is(err, orderapp.ErrForbidden) {
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	return err
}

func requireBuyer(actor identity.Actor) (identity.Buyer, error) {
	switch a := actor.(type) {
	case identity.Buyer:
		return a, nil
	case identity.Farmer:
		return identity.Buyer{}, fmt.Errorf("%w: buyer account required", ErrForbidden)
	default:
		return identity.Buyer{}, ErrUnauthenticated
	}
}

func requireFarmer(actor identity.Actor) (identity.Farmer, error) {
	switch a := actor.(type) {
	case identity.Farmer:
		return a, nil
	case identity.Buyer:
		return identity.Farmer{}, fmt.Errorf("%w: farmer account required", ErrForbidden)
	default:
		return identity.Farmer{}, ErrUnauthenticated
	}
}

var _ ports.Service = (*Service)(nil)
