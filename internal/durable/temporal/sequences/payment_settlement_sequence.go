package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	lifecycleports "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	paymentactivities "github.com/Apurer/livestock-marketplace/internal/durable/temporal/activities/payments"
)

// RunPaymentSettlementSequence executes the activities that settle a payment callback.
// Only infrastructure failures are retried; lifecycle errors are non-retryable.
func RunPaymentSettlementSequence(ctx workflow.Context, callback lifecycleports.PaymentCallback) (*lifecycleports.PaymentResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("payment settlement sequence started", "reference", callback.Reference)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var result lifecycleports.PaymentResult
	err := workflow.ExecuteActivity(ctx, paymentactivities.CompletePaymentActivityName, callback).Get(ctx, &result)
	if err != nil {
		logger.Warn("payment settlement sequence failed", "reference", callback.Reference, "error", err)
		return nil, err
	}
	logger.Info("payment settlement sequence completed", "reference", callback.Reference)
	return &result, nil
}
