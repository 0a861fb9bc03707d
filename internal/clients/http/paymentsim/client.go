package paymentsim

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
)

// HttpRequestDoer performs HTTP requests.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// PaymentPayload starts a simulated payment.
type PaymentPayload struct {
	OrderID     int64  `json:"orderId"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	CallbackURL string `json:"callbackUrl"`
}

// Error is the simulator's error body.
type Error struct {
	Message *string `json:"message,omitempty"`
	Status  *string `json:"status,omitempty"`
}

// Client talks to the payment simulator.
type Client struct {
	server     string
	httpClient HttpRequestDoer
}

// ClientOption configures the client.
type ClientOption func(*Client) error

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *Client) error {
		c.httpClient = doer
		return nil
	}
}

// StartOption configures StartPayment behavior.
type StartOption func(*startOptions)

type startOptions struct {
	idempotencyKey string
}

// WithIdempotencyKey sets the Idempotency-Key header for the request.
func WithIdempotencyKey(key string) StartOption {
	return func(opts *startOptions) {
		opts.idempotencyKey = strings.TrimSpace(key)
	}
}

// NewClient instantiates the simulator client with sane defaults.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("payment simulator base URL is required")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &Client{server: baseURL}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return c, nil
}

// StartPayment asks the simulator to process a payment identified by reference.
// The outcome arrives later on the callback URL.
func (c *Client) StartPayment(ctx context.Context, reference string, payload PaymentPayload, optFns ...StartOption) error {
	if c == nil || c.httpClient == nil {
		return errors.New("payment simulator client not configured")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return errors.New("payment reference is required")
	}
	var opts startOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	req, err := newStartPaymentRequest(c.server, reference, payload)
	if err != nil {
		return err
	}
	if opts.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", opts.idempotencyKey)
	}
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("call payment simulator: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch status := resp.StatusCode; {
	case status == http.StatusOK || status == http.StatusAccepted:
		return nil
	case status == http.StatusConflict:
		return fmt.Errorf("payment simulator idempotency conflict: %s", errorMessage(body, resp.Status))
	case status >= http.StatusBadRequest:
		return fmt.Errorf("payment simulator error: %s", errorMessage(body, resp.Status))
	default:
		return fmt.Errorf("payment simulator unexpected status: %s", resp.Status)
	}
}

func newStartPaymentRequest(server, reference string, payload PaymentPayload) (*http.Request, error) {
	pathParam, err := runtime.StyleParamWithLocation("simple", false, "reference", runtime.ParamLocationPath, reference)
	if err != nil {
		return nil, err
	}
	serverURL, err := url.Parse(server)
	if err != nil {
		return nil, err
	}
	queryURL, err := serverURL.Parse(fmt.Sprintf("payments/%s", pathParam))
	if err != nil {
		return nil, err
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, queryURL.String(), bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func errorMessage(body []byte, fallback string) string {
	var parsed Error
	if len(body) == 0 || json.Unmarshal(body, &parsed) != nil {
		return fallback
	}
	if parsed.Message != nil {
		if msg := strings.TrimSpace(*parsed.Message); msg != "" {
			return msg
		}
	}
	if parsed.Status != nil {
		if msg := strings.TrimSpace(*parsed.Status); msg != "" {
			return msg
		}
	}
	return fallback
}
