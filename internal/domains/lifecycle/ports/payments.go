package ports

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnknownReference is returned when a callback carries a reference that was never issued or has expired.
var ErrUnknownReference = errors.New("unknown payment reference")

// PaymentReference correlates a simulator transaction with the order it pays for.
type PaymentReference struct {
	Reference string    `json:"reference"`
	OrderID   int64     `json:"orderId"`
	BuyerID   int64     `json:"buyerId"`
	IssuedAt  time.Time `json:"issuedAt"`
}

// PaymentReferenceStore keeps issued references until their callback arrives.
type PaymentReferenceStore interface {
	Save(ctx context.Context, ref PaymentReference) error
	Resolve(ctx context.Context, reference string) (*PaymentReference, error)
}

// PaymentRequest is handed to the payment simulator when a checkout starts.
type PaymentRequest struct {
	Reference string
	OrderID   int64
	Amount    decimal.Decimal
}

// PaymentGateway starts an external payment. The result arrives later as a callback.
type PaymentGateway interface {
	RequestPayment(ctx context.Context, req PaymentRequest) error
}

// NoopPaymentGateway logs the request and expects the callback to be driven manually.
type NoopPaymentGateway struct {
	Logger *slog.Logger
}

func (g NoopPaymentGateway) RequestPayment(ctx context.Context, req PaymentRequest) error {
	if g.Logger != nil {
		g.Logger.LogAttrs(ctx, slog.LevelInfo, "payment simulator not configured, awaiting manual callback",
			slog.String("payment.reference", req.Reference),
			slog.Int64("order.id", req.OrderID),
			slog.String("payment.amount", req.Amount.StringFixed(2)))
	}
	return nil
}
