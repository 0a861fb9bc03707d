package ports

import (
	"context"

	listingdomain "github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

// OrderDetail is an order with the listings its lines refer to.
type OrderDetail struct {
	Order    *orderdomain.Order
	Listings map[int64]*listingdomain.Listing
}

// SalesLine is a farmer's view of one order line on one of their listings.
type SalesLine struct {
	orderdomain.SaleLine
	Listing *listingdomain.Listing
}

// Dashboard summarises a farmer's catalogue and incoming inquiries.
type Dashboard struct {
	TotalListings     int
	AvailableListings int
	SoldListings      int
	PendingInquiries  int
	RecentSales       []SalesLine
}

// Service is the read-only view over committed lifecycle state.
type Service interface {
	BuyerHistory(ctx context.Context, actor identity.Actor) ([]*orderdomain.Order, error)
	SalesQueue(ctx context.Context, actor identity.Actor) ([]SalesLine, error)
	OrderDetail(ctx context.Context, actor identity.Actor, orderID int64) (*OrderDetail, error)
	Dashboard(ctx context.Context, actor identity.Actor) (*Dashboard, error)
}
