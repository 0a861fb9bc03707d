package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	marketserver "github.com/Apurer/livestock-marketplace/go"
	lifecycleworkflows "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/workflows"
	lifecycleports "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	platformobservability "github.com/Apurer/livestock-marketplace/internal/platform/observability"
	platformtemporal "github.com/Apurer/livestock-marketplace/internal/platform/temporal"
)

const (
	serviceName     = "livestock-marketplace-api"
	shutdownTimeout = 10 * time.Second
)

// Run boots the marketplace HTTP API and blocks until ctx is cancelled or
// the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	core, err := BuildCore(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer core.Close()

	var settlement lifecycleports.PaymentSettlement = lifecycleworkflows.NewInlinePaymentSettlement(core.Lifecycle)
	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled,
		Logger:    logger,
		Tracer:    instruments.Tracer("temporal-client"),
	})
	if err != nil {
		logger.Warn("Temporal workflows unavailable, settling payments inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		settlement = lifecycleworkflows.NewTemporalPaymentSettlement(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := marketserver.ApiHandleFunctions{
		Authenticator: core.Accounts,
		AccountAPI:    marketserver.NewAccountAPI(core.Accounts),
		ListingAPI:    marketserver.NewListingAPI(core.Listings),
		OrderAPI:      marketserver.NewOrderAPI(core.Lifecycle, core.Inquiries),
		PaymentAPI:    marketserver.NewPaymentAPI(settlement),
		SalesAPI:      marketserver.NewSalesAPI(core.Lifecycle, core.Inquiries),
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router = marketserver.NewRouterWithGinEngine(router, handlers)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("marketplace API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("marketplace API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down marketplace API")
	return server.Shutdown(shutdownCtx)
}
