//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/livestock-marketplace/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type listingPayload struct {
	ID        int64  `json:"id"`
	Species   string `json:"species"`
	Price     string `json:"price"`
	IsForSale bool   `json:"isForSale"`
	Status    string `json:"status"`
}

type problemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail"`
	Extensions map[string]any `json:"extensions"`
}

type apiError struct {
	status   int
	title    string
	detail   string
	redirect string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func TestBuyerPortalContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	example := pacttest.ExampleListing()
	listingMatcher := matchers.Map{
		"id":        matchers.Like(example["id"]),
		"species":   matchers.Like(example["species"]),
		"price":     matchers.Term(example["price"].(string), `^\d+\.\d{2}$`),
		"isForSale": matchers.Like(true),
		"status":    matchers.Term("available", "available|sold"),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateListingAvailable).
		UponReceiving("a request to view an available listing").
		WithRequest("GET", fmt.Sprintf("/v1/listings/%d", pacttest.ExistingListingID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(listingMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateListingMissing).
		UponReceiving("a request for a missing listing").
		WithRequest("GET", fmt.Sprintf("/v1/listings/%d", pacttest.MissingListingID)).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderLost).
		UponReceiving("a payment retry for an order whose listing was sold to someone else").
		WithRequest("POST", fmt.Sprintf("/v1/orders/%d/payment", pacttest.LostOrderID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", matchers.S("Bearer "+pacttest.BuyerToken))
		}).
		WillRespondWith(http.StatusConflict, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/conflict"),
				"title":  matchers.S("Conflict"),
				"status": matchers.Like(http.StatusConflict),
				"extensions": matchers.Map{
					"redirect": matchers.S("/v1/listings"),
				},
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newMarketClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		listing, err := client.GetListing(ctx, pacttest.ExistingListingID)
		if err != nil {
			return fmt.Errorf("get listing: %w", err)
		}
		if listing.ID != pacttest.ExistingListingID || !listing.IsForSale {
			return fmt.Errorf("unexpected listing %+v", listing)
		}

		if _, err := client.GetListing(ctx, pacttest.MissingListingID); err == nil {
			return fmt.Errorf("expected 404 for listing %d", pacttest.MissingListingID)
		} else if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %v", err)
		}

		err = client.RetryPayment(ctx, pacttest.BuyerToken, pacttest.LostOrderID)
		apiErr, ok := err.(apiError)
		if !ok || apiErr.status != http.StatusConflict {
			return fmt.Errorf("expected 409, got %v", err)
		}
		if apiErr.redirect != "/v1/listings" {
			return fmt.Errorf("expected redirect back to the marketplace, got %q", apiErr.redirect)
		}
		return nil
	})
	require.NoError(t, err)
}

type marketClient struct {
	baseURL    string
	httpClient *http.Client
}

func newMarketClient(config pactconsumer.MockServerConfig) *marketClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &marketClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *marketClient) GetListing(ctx context.Context, id int64) (*listingPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/listings/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}
	var payload listingPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *marketClient) RetryPayment(ctx context.Context, token string, orderID int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/v1/orders/%d/payment", c.baseURL, orderID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	return nil
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	redirect, _ := problem.Extensions["redirect"].(string)
	return apiError{
		status:   status,
		title:    problem.Title,
		detail:   problem.Detail,
		redirect: redirect,
	}
}
