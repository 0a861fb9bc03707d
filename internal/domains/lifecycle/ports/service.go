package ports

import (
	"context"

	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

// PaymentOutcome is reported by the payment simulator.
type PaymentOutcome string

const (
	OutcomeSuccess PaymentOutcome = "success"
	OutcomeFailure PaymentOutcome = "failure"
)

// PlaceOrderInput starts a checkout for a single listing.
type PlaceOrderInput struct {
	Actor     identity.Actor
	ListingID int64
	Quantity  int32
	Note      string
}

// Checkout is the result of placing or retrying an order.
type Checkout struct {
	Order *orderdomain.Order `json:"order"`
	// Reference correlates the upcoming payment callback. Empty when no payment is due.
	Reference string `json:"reference,omitempty"`
	// Existing is set when the duplicate guard returned an order placed earlier.
	Existing bool `json:"existing,omitempty"`
	// AlreadyPaid is set when a retry found the order settled.
	AlreadyPaid bool `json:"alreadyPaid,omitempty"`
}

// PaymentCallback is the inbound notification from the payment simulator.
type PaymentCallback struct {
	Reference string         `json:"reference"`
	Outcome   PaymentOutcome `json:"outcome"`
}

// PaymentResult reports the order after a callback was applied.
type PaymentResult struct {
	Order *orderdomain.Order `json:"order"`
	// Duplicate is set when the order was already paid and the callback changed nothing.
	Duplicate bool `json:"duplicate,omitempty"`
}

// Service exposes the order lifecycle transitions.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Checkout, error)
	CompletePayment(ctx context.Context, callback PaymentCallback) (*PaymentResult, error)
	ApproveInquiry(ctx context.Context, actor identity.Actor, lineID int64) (*orderdomain.Order, error)
	RejectInquiry(ctx context.Context, actor identity.Actor, lineID int64) (*orderdomain.Order, error)
	RetryPayment(ctx context.Context, actor identity.Actor, orderID int64) (*Checkout, error)
}

// PaymentSettlement applies payment callbacks, possibly through a durable workflow.
type PaymentSettlement interface {
	Settle(ctx context.Context, callback PaymentCallback) (*PaymentResult, error)
}
