package payments

import (
	"go.temporal.io/sdk/workflow"

	lifecycleports "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	"github.com/Apurer/livestock-marketplace/internal/durable/temporal/sequences"
)

const (
	// PaymentSettlementWorkflowName is the public identifier for registering the workflow.
	PaymentSettlementWorkflowName = "payments.workflows.Settlement"
	// PaymentSettlementTaskQueue is the queue consumed by the worker processing payment callbacks.
	PaymentSettlementTaskQueue = "PAYMENT_SETTLEMENT"
)

// PaymentSettlementWorkflowInput carries the simulator callback.
type PaymentSettlementWorkflowInput struct {
	Callback lifecycleports.PaymentCallback
	TraceID  string
}

// PaymentSettlementWorkflow applies one payment callback exactly once per workflow id.
func PaymentSettlementWorkflow(ctx workflow.Context, input PaymentSettlementWorkflowInput) (*lifecycleports.PaymentResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("PaymentSettlementWorkflow started", withTraceID(input.TraceID, "reference", input.Callback.Reference)...)
	result, err := sequences.RunPaymentSettlementSequence(ctx, input.Callback)
	if err != nil {
		logger.Warn("PaymentSettlementWorkflow failed", withTraceID(input.TraceID, "reference", input.Callback.Reference, "error", err)...)
		return nil, err
	}
	logger.Info("PaymentSettlementWorkflow completed", withTraceID(input.TraceID, "reference", input.Callback.Reference, "orderId", result.Order.ID)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
