package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/livestock-marketplace/internal/app/api"
	paymentactivities "github.com/Apurer/livestock-marketplace/internal/durable/temporal/activities/payments"
	paymentworkflows "github.com/Apurer/livestock-marketplace/internal/durable/temporal/workflows/payments"
	platformobservability "github.com/Apurer/livestock-marketplace/internal/platform/observability"
	platformtemporal "github.com/Apurer/livestock-marketplace/internal/platform/temporal"
)

func main() {
	ctx := context.Background()
	const serviceName = "livestock-marketplace-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	core, err := api.BuildCore(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build marketplace services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer core.Close()
	settlementActivities := paymentactivities.NewActivities(core.Lifecycle)

	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled,
		Logger:    logger,
		Tracer:    instruments.Tracer("temporal-worker"),
	})
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, paymentworkflows.PaymentSettlementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(paymentworkflows.PaymentSettlementWorkflow, workflow.RegisterOptions{Name: paymentworkflows.PaymentSettlementWorkflowName})
	w.RegisterActivityWithOptions(settlementActivities.CompletePayment, activity.RegisterOptions{Name: paymentactivities.CompletePaymentActivityName})

	logger.Info("worker listening", slog.String("taskQueue", paymentworkflows.PaymentSettlementTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
