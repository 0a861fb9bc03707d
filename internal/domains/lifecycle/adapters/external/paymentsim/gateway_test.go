package paymentsim

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	simclient "github.com/Apurer/livestock-marketplace/internal/clients/http/paymentsim"
	"github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
)

type fakeStarter struct {
	reference string
	payload   simclient.PaymentPayload
}

func (f *fakeStarter) StartPayment(_ context.Context, reference string, payload simclient.PaymentPayload, _ ...simclient.StartOption) error {
	f.reference = reference
	f.payload = payload
	return nil
}

func TestRequestPayment_BuildsCallbackPayload(t *testing.T) {
	starter := &fakeStarter{}
	gateway, err := NewGateway(starter, "https://market.example.com/")
	require.NoError(t, err)

	err = gateway.RequestPayment(context.Background(), ports.PaymentRequest{Reference: "ref-9", OrderID: 12, Amount: decimal.RequireFromString("199.5")})
	require.NoError(t, err)
	require.Equal(t, "ref-9", starter.reference)
	require.Equal(t, "199.50", starter.payload.Amount)
	require.Equal(t, "https://market.example.com/v1/payments/callback", starter.payload.CallbackURL)
	require.Equal(t, DefaultCurrency, starter.payload.Currency)
}
