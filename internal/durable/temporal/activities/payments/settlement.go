package payments

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	lifecycleports "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
)

const (
	// CompletePaymentActivityName applies a payment callback through the lifecycle engine.
	CompletePaymentActivityName = "payments.activities.CompletePayment"
)

// Activities groups activities that drive the order lifecycle.
type Activities struct {
	service lifecycleports.Service
}

// NewActivities wires the lifecycle engine into the Temporal activities bundle.
func NewActivities(service lifecycleports.Service) *Activities {
	return &Activities{service: service}
}

// CompletePayment applies the callback. Lifecycle errors are final and are
// returned as non-retryable application errors so Temporal does not replay them.
func (a *Activities) CompletePayment(ctx context.Context, callback lifecycleports.PaymentCallback) (*lifecycleports.PaymentResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("complete payment activity not initialized", "reference", callback.Reference)
		return nil, errors.New("complete payment activity not initialized")
	}
	logger.Info("CompletePayment activity started", "reference", callback.Reference, "outcome", callback.Outcome)
	result, err := a.service.CompletePayment(ctx, callback)
	if err != nil {
		logger.Warn("CompletePayment activity failed", "reference", callback.Reference, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("CompletePayment activity completed", "reference", callback.Reference, "orderId", result.Order.ID, "duplicate", result.Duplicate)
	return result, nil
}
