package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the base interface for all order lifecycle events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// OrderPlaced is raised once a new order has been persisted.
type OrderPlaced struct {
	BaseEvent
	OrderID int64
	BuyerID int64
	Status  Status
	Total   decimal.Decimal
}

func (e OrderPlaced) EventName() string { return "orders.order.placed" }

// OrderConfirmed is raised when a farmer approves or payment confirms an order.
type OrderConfirmed struct {
	BaseEvent
	OrderID int64
	BuyerID int64
}

func (e OrderConfirmed) EventName() string { return "orders.order.confirmed" }

// OrderCancelled is raised on rejection or when the listing went to another buyer.
type OrderCancelled struct {
	BaseEvent
	OrderID int64
	BuyerID int64
	Reason  string
}

func (e OrderCancelled) EventName() string { return "orders.order.cancelled" }

// PaymentCaptured is raised when a success callback settles an order.
type PaymentCaptured struct {
	BaseEvent
	OrderID   int64
	BuyerID   int64
	Reference string
	Amount    decimal.Decimal
}

func (e PaymentCaptured) EventName() string { return "orders.payment.captured" }

// PaymentDeclined is raised for failure callbacks. The order is unchanged.
type PaymentDeclined struct {
	BaseEvent
	OrderID   int64
	BuyerID   int64
	Reference string
}

func (e PaymentDeclined) EventName() string { return "orders.payment.declined" }

// ListingSold is raised when a listing flips to sold for an order.
type ListingSold struct {
	BaseEvent
	ListingID int64
	OrderID   int64
}

func (e ListingSold) EventName() string { return "listings.listing.sold" }

// AggregateWithEvents is implemented by aggregates that track domain events.
type AggregateWithEvents interface {
	Events() []Event
	ClearEvents()
}

var _ AggregateWithEvents = (*Order)(nil)
