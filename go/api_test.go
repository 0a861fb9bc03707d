package marketserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketserver "github.com/Apurer/livestock-marketplace/go"
	accountmemory "github.com/Apurer/livestock-marketplace/internal/domains/accounts/adapters/memory"
	accountsapp "github.com/Apurer/livestock-marketplace/internal/domains/accounts/application"
	inquiriesapp "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/application"
	lifecyclememory "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/memory"
	lifecycleworkflows "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/workflows"
	lifecycleapp "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/application"
	listingmemory "github.com/Apurer/livestock-marketplace/internal/domains/listings/adapters/memory"
	listingsapp "github.com/Apurer/livestock-marketplace/internal/domains/listings/application"
	ordermemory "github.com/Apurer/livestock-marketplace/internal/domains/orders/adapters/memory"
	apierrors "github.com/Apurer/livestock-marketplace/internal/shared/errors"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	listings := listingmemory.NewRepository()
	orders := ordermemory.NewRepository()
	tx := lifecyclememory.NewTransactor(listings, orders)
	accounts := accountsapp.NewService(accountmemory.NewRepository(), accountmemory.NewSessionStore())
	lifecycle := lifecycleapp.NewService(tx, lifecyclememory.NewPaymentReferences())
	inquiries := inquiriesapp.NewService(tx)

	handlers := marketserver.ApiHandleFunctions{
		Authenticator: accounts,
		AccountAPI:    marketserver.NewAccountAPI(accounts),
		ListingAPI:    marketserver.NewListingAPI(listingsapp.NewService(listings)),
		OrderAPI:      marketserver.NewOrderAPI(lifecycle, inquiries),
		PaymentAPI:    marketserver.NewPaymentAPI(lifecycleworkflows.NewInlinePaymentSettlement(lifecycle)),
		SalesAPI:      marketserver.NewSalesAPI(lifecycle, inquiries),
	}
	return &testServer{t: t, router: marketserver.NewRouterWithGinEngine(gin.New(), handlers)}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) signUp(username, role string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/v1/accounts", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
		"role":     role,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/v1/sessions", "", map[string]string{"username": username, "password": "correct-horse"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &session)
	require.NotEmpty(s.t, session.Token)
	return session.Token
}

type checkoutBody struct {
	Order struct {
		ID            int64  `json:"id"`
		Status        string `json:"status"`
		PaymentStatus string `json:"paymentStatus"`
		Total         string `json:"total"`
	} `json:"order"`
	Reference string `json:"reference"`
	Existing  bool   `json:"existing"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *testServer) createListing(token string, price string) int64 {
	s.t.Helper()
	w := s.do(http.MethodPost, "/v1/listings", token, map[string]any{
		"species": "Cattle",
		"breed":   "Angus",
		"price":   price,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var listing struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	decode(s.t, w, &listing)
	assert.Equal(s.t, "available", listing.Status)
	return listing.ID
}

func TestApproveThenRetryCancelsCompetingOrder(t *testing.T) {
	srv := newTestServer(t)
	farmer := srv.signUp("fern", "farmer")
	first := srv.signUp("bea", "buyer")
	second := srv.signUp("bo", "buyer")

	listingID := srv.createListing(farmer, "100")
	ordersPath := fmt.Sprintf("/v1/listings/%d/orders", listingID)

	w := srv.do(http.MethodPost, ordersPath, first, map[string]any{"quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = srv.do(http.MethodPost, ordersPath, second, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var losing checkoutBody
	decode(t, w, &losing)
	assert.Equal(t, "pending_payment", losing.Order.Status)

	w = srv.do(http.MethodGet, "/v1/sales", farmer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var queue []struct {
		LineID  int64 `json:"lineId"`
		OrderID int64 `json:"orderId"`
	}
	decode(t, w, &queue)
	require.Len(t, queue, 2)
	var winningLine int64
	for _, line := range queue {
		if line.OrderID != losing.Order.ID {
			winningLine = line.LineID
		}
	}
	require.NotZero(t, winningLine)

	w = srv.do(http.MethodPost, fmt.Sprintf("/v1/sales/lines/%d/approve", winningLine), farmer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(http.MethodGet, fmt.Sprintf("/v1/listings/%d", listingID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Status    string `json:"status"`
		IsForSale bool   `json:"isForSale"`
	}
	decode(t, w, &listing)
	assert.Equal(t, "sold", listing.Status)
	assert.False(t, listing.IsForSale)

	w = srv.do(http.MethodPost, fmt.Sprintf("/v1/orders/%d/payment", losing.Order.ID), second, nil)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, apierrors.ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	var problem apierrors.ProblemDetail
	decode(t, w, &problem)
	assert.Equal(t, apierrors.TypeConflict, problem.Type)
	assert.Equal(t, marketserver.MarketplacePath, problem.Extensions["redirect"])

	w = srv.do(http.MethodGet, fmt.Sprintf("/v1/orders/%d", losing.Order.ID), second, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Status string `json:"status"`
	}
	decode(t, w, &detail)
	assert.Equal(t, "cancelled", detail.Status)
}

func TestPaymentCallbackSellsListing(t *testing.T) {
	srv := newTestServer(t)
	farmer := srv.signUp("fern", "farmer")
	buyer := srv.signUp("bea", "buyer")
	listingID := srv.createListing(farmer, "100")

	w := srv.do(http.MethodPost, fmt.Sprintf("/v1/listings/%d/orders", listingID), buyer, map[string]any{"quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var checkout checkoutBody
	decode(t, w, &checkout)
	assert.Equal(t, "200.00", checkout.Order.Total)
	require.NotEmpty(t, checkout.Reference)

	w = srv.do(http.MethodPost, fmt.Sprintf("/v1/listings/%d/orders", listingID), buyer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var again checkoutBody
	decode(t, w, &again)
	assert.True(t, again.Existing)
	assert.Equal(t, checkout.Order.ID, again.Order.ID)

	w = srv.do(http.MethodPost, "/v1/payments/callback", "", map[string]string{"reference": checkout.Reference, "outcome": "failure"})
	require.Equal(t, http.StatusPaymentRequired, w.Code, w.Body.String())

	w = srv.do(http.MethodPost, "/v1/payments/callback", "", map[string]string{"reference": again.Reference, "outcome": "success"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Order struct {
			Status        string `json:"status"`
			PaymentStatus string `json:"paymentStatus"`
		} `json:"order"`
	}
	decode(t, w, &result)
	assert.Equal(t, "confirmed", result.Order.Status)
	assert.Equal(t, "paid", result.Order.PaymentStatus)

	w = srv.do(http.MethodGet, "/v1/listings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var collection struct {
		Listings []json.RawMessage `json:"listings"`
	}
	decode(t, w, &collection)
	assert.Empty(t, collection.Listings)

	w = srv.do(http.MethodGet, "/v1/dashboard", farmer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dashboard struct {
		TotalListings int `json:"totalListings"`
		SoldListings  int `json:"soldListings"`
	}
	decode(t, w, &dashboard)
	assert.Equal(t, 1, dashboard.TotalListings)
	assert.Equal(t, 1, dashboard.SoldListings)
}

func TestMarketplaceFilterEcho(t *testing.T) {
	srv := newTestServer(t)
	farmer := srv.signUp("fern", "farmer")
	srv.createListing(farmer, "100")
	srv.createListing(farmer, "900")

	w := srv.do(http.MethodGet, "/v1/listings?species=cattle&maxPrice=500", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var collection struct {
		Filter struct {
			Species  string `json:"species"`
			MaxPrice string `json:"maxPrice"`
		} `json:"filter"`
		Listings []struct {
			Price string `json:"price"`
		} `json:"listings"`
	}
	decode(t, w, &collection)
	assert.Equal(t, "cattle", collection.Filter.Species)
	assert.Equal(t, "500", collection.Filter.MaxPrice)
	require.Len(t, collection.Listings, 1)
	assert.Equal(t, "100.00", collection.Listings[0].Price)

	w = srv.do(http.MethodGet, "/v1/listings?maxPrice=cheap", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthenticationAndRoles(t *testing.T) {
	srv := newTestServer(t)
	buyer := srv.signUp("bea", "buyer")

	w := srv.do(http.MethodPost, "/v1/listings", "", map[string]any{"species": "Goat", "price": "50"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(http.MethodGet, "/v1/orders", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(http.MethodPost, "/v1/listings", buyer, map[string]any{"species": "Goat", "price": "50"})
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	w = srv.do(http.MethodGet, "/v1/sales", buyer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	w = srv.do(http.MethodGet, "/v1/accounts/me", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Username  string `json:"username"`
		BuyerType string `json:"buyerType"`
	}
	decode(t, w, &profile)
	assert.Equal(t, "bea", profile.Username)
	assert.Equal(t, "individual", profile.BuyerType)

	w = srv.do(http.MethodDelete, "/v1/sessions", buyer, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = srv.do(http.MethodGet, "/v1/accounts/me", buyer, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	srv.signUp("fern", "farmer")

	w := srv.do(http.MethodPost, "/v1/accounts", "", map[string]string{
		"username": "FERN",
		"password": "another-password",
		"role":     "buyer",
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = srv.do(http.MethodPost, "/v1/accounts", "", map[string]string{
		"username": "wren",
		"password": "another-password",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}
