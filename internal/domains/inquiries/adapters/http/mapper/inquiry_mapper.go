package mapper

import (
	inquiryports "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/ports"
	listingmapper "github.com/Apurer/livestock-marketplace/internal/domains/listings/adapters/http/mapper"
	ordermapper "github.com/Apurer/livestock-marketplace/internal/domains/orders/adapters/http/mapper"
)

// OrderDetail is the single-order view shown to its buyer.
type OrderDetail struct {
	ordermapper.Order
	Listings []listingmapper.Listing `json:"listings"`
}

// SalesLine is one inquiry in the farmer's queue.
type SalesLine struct {
	ordermapper.SaleLine
	Species string `json:"species,omitempty"`
	TagID   string `json:"tagId,omitempty"`
}

// Dashboard is the farmer landing page summary.
type Dashboard struct {
	TotalListings     int         `json:"totalListings"`
	AvailableListings int         `json:"availableListings"`
	SoldListings      int         `json:"soldListings"`
	PendingInquiries  int         `json:"pendingInquiries"`
	RecentSales       []SalesLine `json:"recentSales"`
}

// FromOrderDetail keeps the listings in line order.
func FromOrderDetail(detail *inquiryports.OrderDetail) OrderDetail {
	if detail == nil {
		return OrderDetail{}
	}
	out := OrderDetail{
		Order:    ordermapper.FromDomainOrder(detail.Order),
		Listings: make([]listingmapper.Listing, 0, len(detail.Listings)),
	}
	if detail.Order == nil {
		return out
	}
	seen := make(map[int64]struct{}, len(detail.Listings))
	for _, line := range detail.Order.Lines {
		if _, ok := seen[line.ListingID]; ok {
			continue
		}
		listing, ok := detail.Listings[line.ListingID]
		if !ok {
			continue
		}
		seen[line.ListingID] = struct{}{}
		out.Listings = append(out.Listings, listingmapper.FromDomainListing(listing))
	}
	return out
}

func FromSalesLine(line inquiryports.SalesLine) SalesLine {
	out := SalesLine{SaleLine: ordermapper.FromSaleLine(line.SaleLine)}
	if line.Listing != nil {
		out.Species = line.Listing.Species
		out.TagID = line.Listing.TagID
	}
	return out
}

func FromSalesLines(lines []inquiryports.SalesLine) []SalesLine {
	out := make([]SalesLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, FromSalesLine(line))
	}
	return out
}

func FromDashboard(dashboard *inquiryports.Dashboard) Dashboard {
	if dashboard == nil {
		return Dashboard{RecentSales: []SalesLine{}}
	}
	return Dashboard{
		TotalListings:     dashboard.TotalListings,
		AvailableListings: dashboard.AvailableListings,
		SoldListings:      dashboard.SoldListings,
		PendingInquiries:  dashboard.PendingInquiries,
		RecentSales:       FromSalesLines(dashboard.RecentSales),
	}
}
