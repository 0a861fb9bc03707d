package mapper

import (
	"time"

	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
)

// Order represents the transport-layer shape used by the HTTP handlers.
type Order struct {
	ID            int64       `json:"id"`
	BuyerID       int64       `json:"buyerId"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"paymentStatus"`
	Total         string      `json:"total"`
	Note          string      `json:"note,omitempty"`
	Lines         []OrderLine `json:"lines"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// OrderLine carries the price captured when the order was placed.
type OrderLine struct {
	ID        int64  `json:"id"`
	ListingID int64  `json:"listingId"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Subtotal  string `json:"subtotal"`
}

// SaleLine is an inquiry row in the farmer's sales queue.
type SaleLine struct {
	LineID        int64     `json:"lineId"`
	OrderID       int64     `json:"orderId"`
	ListingID     int64     `json:"listingId"`
	BuyerID       int64     `json:"buyerId"`
	Quantity      int32     `json:"quantity"`
	UnitPrice     string    `json:"unitPrice"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	PlacedAt      time.Time `json:"placedAt"`
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *orderdomain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:            order.ID,
		BuyerID:       order.BuyerID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Total:         order.Total.StringFixed(2),
		Note:          order.Note,
		Lines:         make([]OrderLine, 0, len(order.Lines)),
		CreatedAt:     order.CreatedAt,
	}
	for _, line := range order.Lines {
		out.Lines = append(out.Lines, OrderLine{
			ID:        line.ID,
			ListingID: line.ListingID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Subtotal:  line.Subtotal().StringFixed(2),
		})
	}
	return out
}

// FromDomainOrders converts a slice of orders.
func FromDomainOrders(orders []*orderdomain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromDomainOrder(order))
	}
	return out
}

// FromSaleLine converts a joined line for the sales queue.
func FromSaleLine(line orderdomain.SaleLine) SaleLine {
	return SaleLine{
		LineID:        line.Line.ID,
		OrderID:       line.Order.ID,
		ListingID:     line.Line.ListingID,
		BuyerID:       line.Order.BuyerID,
		Quantity:      line.Line.Quantity,
		UnitPrice:     line.Line.UnitPrice.StringFixed(2),
		Status:        string(line.Order.Status),
		PaymentStatus: string(line.Order.PaymentStatus),
		PlacedAt:      line.Order.CreatedAt,
	}
}
