package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
)

var _ ports.PaymentReferenceStore = (*PaymentReferences)(nil)

// PaymentReferences keeps issued references in process memory.
type PaymentReferences struct {
	mu   sync.RWMutex
	refs map[string]ports.PaymentReference
}

func NewPaymentReferences() *PaymentReferences {
	return &PaymentReferences{refs: map[string]ports.PaymentReference{}}
}

func (s *PaymentReferences) Save(_ context.Context, ref ports.PaymentReference) error {
	key := strings.TrimSpace(ref.Reference)
	if key == "" {
		return errors.New("payment reference is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[key] = ref
	return nil
}

func (s *PaymentReferences) Resolve(_ context.Context, reference string) (*ports.PaymentReference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.refs[strings.TrimSpace(reference)]
	if !ok {
		return nil, ports.ErrUnknownReference
	}
	return &ref, nil
}
