package paymentsim

import (
	"context"
	"errors"
	"net/url"
	"strings"

	simclient "github.com/Apurer/livestock-marketplace/internal/clients/http/paymentsim"
	"github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
)

const DefaultCurrency = "GBP"

var _ ports.PaymentGateway = (*Gateway)(nil)

// Starter is implemented by the payment simulator client.
type Starter interface {
	StartPayment(ctx context.Context, reference string, payload simclient.PaymentPayload, optFns ...simclient.StartOption) error
}

// Gateway adapts the payment simulator client to the lifecycle port. The
// simulator later calls back on CallbackURL with the reference and outcome.
type Gateway struct {
	client      Starter
	callbackURL string
	currency    string
}

// NewGateway builds the gateway; publicBaseURL is the externally reachable API root.
func NewGateway(client Starter, publicBaseURL string) (*Gateway, error) {
	if client == nil {
		return nil, errors.New("payment simulator client is required")
	}
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(publicBaseURL), "/") + "/v1/payments/callback")
	if err != nil {
		return nil, err
	}
	return &Gateway{client: client, callbackURL: base.String(), currency: DefaultCurrency}, nil
}

func (g *Gateway) RequestPayment(ctx context.Context, req ports.PaymentRequest) error {
	payload := simclient.PaymentPayload{
		OrderID:     req.OrderID,
		Amount:      req.Amount.StringFixed(2),
		Currency:    g.currency,
		CallbackURL: g.callbackURL,
	}
	return g.client.StartPayment(ctx, req.Reference, payload, simclient.WithIdempotencyKey(req.Reference))
}
