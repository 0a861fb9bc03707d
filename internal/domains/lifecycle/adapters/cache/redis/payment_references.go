package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
)

const (
	keyPrefix  = "marketplace:payment-ref:"
	DefaultTTL = 24 * time.Hour
)

var _ ports.PaymentReferenceStore = (*PaymentReferences)(nil)

// PaymentReferences keeps issued references in Redis so callbacks can be
// correlated by any API instance. Entries expire after the TTL.
type PaymentReferences struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

func NewPaymentReferences(client goredis.UniversalClient, ttl time.Duration) *PaymentReferences {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PaymentReferences{client: client, ttl: ttl}
}

func (s *PaymentReferences) Save(ctx context.Context, ref ports.PaymentReference) error {
	key := strings.TrimSpace(ref.Reference)
	if key == "" {
		return errors.New("payment reference is empty")
	}
	payload, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("encode payment reference: %w", err)
	}
	return s.client.Set(ctx, keyPrefix+key, payload, s.ttl).Err()
}

func (s *PaymentReferences) Resolve(ctx context.Context, reference string) (*ports.PaymentReference, error) {
	payload, err := s.client.Get(ctx, keyPrefix+strings.TrimSpace(reference)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ports.ErrUnknownReference
		}
		return nil, err
	}
	var ref ports.PaymentReference
	if err := json.Unmarshal(payload, &ref); err != nil {
		return nil, fmt.Errorf("decode payment reference: %w", err)
	}
	return &ref, nil
}
