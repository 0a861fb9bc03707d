package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	paymentactivities "github.com/Apurer/livestock-marketplace/internal/durable/temporal/activities/payments"
	paymentworkflows "github.com/Apurer/livestock-marketplace/internal/durable/temporal/workflows/payments"
)

var (
	_ ports.PaymentSettlement = (*TemporalPaymentSettlement)(nil)
	_ ports.PaymentSettlement = (*InlinePaymentSettlement)(nil)
)

// TemporalPaymentSettlement hands payment callbacks to a Temporal workflow so
// a redelivered callback joins the run already in flight.
type TemporalPaymentSettlement struct {
	client    client.Client
	taskQueue string
}

// NewTemporalPaymentSettlement wires a Temporal client into the orchestrator.
func NewTemporalPaymentSettlement(c client.Client) *TemporalPaymentSettlement {
	return &TemporalPaymentSettlement{client: c, taskQueue: paymentworkflows.PaymentSettlementTaskQueue}
}

// Settle starts (or joins) the settlement workflow and waits for its result.
func (o *TemporalPaymentSettlement) Settle(ctx context.Context, callback ports.PaymentCallback) (*ports.PaymentResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal payment settlement not configured")
	}
	workflowID := buildSettlementWorkflowID(callback)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		paymentworkflows.PaymentSettlementWorkflow,
		paymentworkflows.PaymentSettlementWorkflowInput{Callback: callback, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result ports.PaymentResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, paymentactivities.DecodeError(err)
	}
	return &result, nil
}

// InlinePaymentSettlement applies callbacks directly, for tests and for running without Temporal.
type InlinePaymentSettlement struct {
	service ports.Service
}

func NewInlinePaymentSettlement(service ports.Service) *InlinePaymentSettlement {
	return &InlinePaymentSettlement{service: service}
}

func (o *InlinePaymentSettlement) Settle(ctx context.Context, callback ports.PaymentCallback) (*ports.PaymentResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline payment settlement not configured")
	}
	return o.service.CompletePayment(ctx, callback)
}

func buildSettlementWorkflowID(callback ports.PaymentCallback) string {
	return fmt.Sprintf("payment-settlement-%s-%s", hashReference(callback.Reference), strings.ToLower(string(callback.Outcome)))
}

func hashReference(reference string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(reference)))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
