package paymentsim

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartPayment_PostsPayload(t *testing.T) {
	var (
		gotPath    string
		gotKey     string
		gotPayload PaymentPayload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	err = client.StartPayment(context.Background(), "ref-123", PaymentPayload{OrderID: 9, Amount: "200.00", Currency: "GBP"}, WithIdempotencyKey("ref-123"))
	require.NoError(t, err)
	require.Equal(t, "/payments/ref-123", gotPath)
	require.Equal(t, "ref-123", gotKey)
	require.Equal(t, int64(9), gotPayload.OrderID)
	require.Equal(t, "200.00", gotPayload.Amount)
}

func TestStartPayment_SurfacesErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"card network down"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	err = client.StartPayment(context.Background(), "ref-1", PaymentPayload{OrderID: 1})
	require.ErrorContains(t, err, "card network down")
}

func TestStartPayment_RequiresReference(t *testing.T) {
	client, err := NewClient("http://localhost:1")
	require.NoError(t, err)
	require.Error(t, client.StartPayment(context.Background(), " ", PaymentPayload{}))

	_, err = NewClient("")
	require.Error(t, err)
}
