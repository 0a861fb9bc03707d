package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	lifecycleapp "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/application"
	lifecycleports "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	paymentactivities "github.com/Apurer/livestock-marketplace/internal/durable/temporal/activities/payments"
)

type fakeLifecycle struct {
	lifecycleports.Service
	calls int
	err   error
}

func (f *fakeLifecycle) CompletePayment(_ context.Context, callback lifecycleports.PaymentCallback) (*lifecycleports.PaymentResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &lifecycleports.PaymentResult{Order: &orderdomain.Order{ID: 42, Status: orderdomain.StatusConfirmed, PaymentStatus: orderdomain.PaymentPaid}}, nil
}

func newEnv(t *testing.T, svc *fakeLifecycle) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(PaymentSettlementWorkflow)
	acts := paymentactivities.NewActivities(svc)
	env.RegisterActivityWithOptions(acts.CompletePayment, activity.RegisterOptions{Name: paymentactivities.CompletePaymentActivityName})
	return env
}

func TestPaymentSettlementWorkflowCompletesPayment(t *testing.T) {
	svc := &fakeLifecycle{}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(PaymentSettlementWorkflow, PaymentSettlementWorkflowInput{
		Callback: lifecycleports.PaymentCallback{Reference: "ref-1", Outcome: lifecycleports.OutcomeSuccess},
		TraceID:  "trace",
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result lifecycleports.PaymentResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Equal(t, int64(42), result.Order.ID)
	assert.Equal(t, orderdomain.StatusConfirmed, result.Order.Status)
	assert.Equal(t, 1, svc.calls)
}

func TestPaymentSettlementWorkflowDoesNotRetryLifecycleErrors(t *testing.T) {
	svc := &fakeLifecycle{err: fmt.Errorf("%w: listing 3 was sold to another buyer", lifecycleapp.ErrConflict)}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(PaymentSettlementWorkflow, PaymentSettlementWorkflowInput{
		Callback: lifecycleports.PaymentCallback{Reference: "ref-2", Outcome: lifecycleports.OutcomeSuccess},
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.True(t, errors.Is(paymentactivities.DecodeError(err), lifecycleapp.ErrConflict))
	assert.Equal(t, 1, svc.calls)
}

func TestPaymentSettlementWorkflowRetriesInfrastructureErrors(t *testing.T) {
	svc := &fakeLifecycle{err: errors.New("connection reset")}
	env := newEnv(t, svc)

	env.ExecuteWorkflow(PaymentSettlementWorkflow, PaymentSettlementWorkflowInput{
		Callback: lifecycleports.PaymentCallback{Reference: "ref-3", Outcome: lifecycleports.OutcomeSuccess},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, 5, svc.calls)
}
