package api

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	simclient "github.com/Apurer/livestock-marketplace/internal/clients/http/paymentsim"
	accountmemory "github.com/Apurer/livestock-marketplace/internal/domains/accounts/adapters/memory"
	accountsobs "github.com/Apurer/livestock-marketplace/internal/domains/accounts/adapters/observability"
	accountpostgres "github.com/Apurer/livestock-marketplace/internal/domains/accounts/adapters/persistence/postgres"
	accountsapp "github.com/Apurer/livestock-marketplace/internal/domains/accounts/application"
	accountports "github.com/Apurer/livestock-marketplace/internal/domains/accounts/ports"
	inquiriesobs "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/adapters/observability"
	inquiriesapp "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/application"
	inquiryports "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/ports"
	lifecycleredis "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/cache/redis"
	lifecyclesim "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/external/paymentsim"
	lifecyclememory "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/memory"
	lifecyclekafka "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/messaging/kafka"
	lifecycleobs "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/observability"
	lifecyclepostgres "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/persistence/postgres"
	lifecycleapp "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/application"
	lifecycleports "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	listingmemory "github.com/Apurer/livestock-marketplace/internal/domains/listings/adapters/memory"
	listingsobs "github.com/Apurer/livestock-marketplace/internal/domains/listings/adapters/observability"
	listingpostgres "github.com/Apurer/livestock-marketplace/internal/domains/listings/adapters/persistence/postgres"
	listingsapp "github.com/Apurer/livestock-marketplace/internal/domains/listings/application"
	listingports "github.com/Apurer/livestock-marketplace/internal/domains/listings/ports"
	ordermemory "github.com/Apurer/livestock-marketplace/internal/domains/orders/adapters/memory"
	"github.com/Apurer/livestock-marketplace/internal/platform/migrations"
	platformobservability "github.com/Apurer/livestock-marketplace/internal/platform/observability"
	platformpostgres "github.com/Apurer/livestock-marketplace/internal/platform/postgres"
	platformredis "github.com/Apurer/livestock-marketplace/internal/platform/redis"
)

// Core holds the marketplace services shared by the API and the worker.
type Core struct {
	Accounts  accountports.Service
	Listings  listingports.Service
	Lifecycle lifecycleports.Service
	Inquiries inquiryports.Service

	cleanups []func()
}

// Close releases connections in reverse order of acquisition.
func (c *Core) Close() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i]()
	}
	c.cleanups = nil
}

type storage struct {
	accounts accountports.Repository
	sessions accountports.SessionStore
	listings listingports.Repository
	tx       lifecycleports.Transactor
}

// BuildCore wires repositories and adapters for cfg. Every external
// dependency that is unset or unreachable degrades to its in-memory or no-op
// counterpart with a warning.
func BuildCore(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Core, error) {
	if instruments == nil || instruments.Logger == nil {
		return nil, errors.New("observability instruments are required")
	}
	logger := instruments.Logger
	core := &Core{}

	db, cleanupDB := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	core.cleanups = append(core.cleanups, cleanupDB)
	store := buildStorage(db, logger)

	references := buildReferences(ctx, cfg, logger, core)
	publisher := buildPublisher(cfg, logger, core)
	gateway := buildGateway(cfg, logger)

	core.Accounts = accountsobs.New(
		accountsapp.NewService(store.accounts, store.sessions, accountsapp.WithSessionTTL(cfg.SessionTTL)),
		accountsobs.WithLogger(logger),
		accountsobs.WithTracer(instruments.Tracer("internal.accounts.application")),
		accountsobs.WithMeter(instruments.Meter("internal.accounts.application")),
	)
	core.Listings = listingsobs.New(
		listingsapp.NewService(store.listings),
		listingsobs.WithLogger(logger),
		listingsobs.WithTracer(instruments.Tracer("internal.listings.application")),
		listingsobs.WithMeter(instruments.Meter("internal.listings.application")),
	)
	core.Lifecycle = lifecycleobs.New(
		lifecycleapp.NewService(store.tx, references,
			lifecycleapp.WithPaymentGateway(gateway),
			lifecycleapp.WithEventPublisher(publisher),
			lifecycleapp.WithLogger(logger),
		),
		lifecycleobs.WithLogger(logger),
		lifecycleobs.WithTracer(instruments.Tracer("internal.lifecycle.application")),
		lifecycleobs.WithMeter(instruments.Meter("internal.lifecycle.application")),
	)
	core.Inquiries = inquiriesobs.New(
		inquiriesapp.NewService(store.tx),
		inquiriesobs.WithLogger(logger),
		inquiriesobs.WithTracer(instruments.Tracer("internal.inquiries.application")),
		inquiriesobs.WithMeter(instruments.Meter("internal.inquiries.application")),
	)
	return core, nil
}

func buildStorage(db *gorm.DB, logger *slog.Logger) storage {
	if db != nil {
		if err := migrations.Run(db); err != nil {
			logger.Warn("failed to migrate postgres schema, falling back to in-memory repositories", slog.String("error", err.Error()))
		} else {
			logger.Info("marketplace repositories configured with postgres")
			return storage{
				accounts: accountpostgres.NewRepository(db),
				sessions: accountpostgres.NewSessionStore(db),
				listings: listingpostgres.NewRepository(db),
				tx:       lifecyclepostgres.NewTransactor(db),
			}
		}
	}
	listings := listingmemory.NewRepository()
	return storage{
		accounts: accountmemory.NewRepository(),
		sessions: accountmemory.NewSessionStore(),
		listings: listings,
		tx:       lifecyclememory.NewTransactor(listings, ordermemory.NewRepository()),
	}
}

func buildReferences(ctx context.Context, cfg Config, logger *slog.Logger, core *Core) lifecycleports.PaymentReferenceStore {
	client, cleanup := platformredis.ConnectOrFallback(ctx, cfg.RedisAddr, logger)
	core.cleanups = append(core.cleanups, cleanup)
	if client == nil {
		return lifecyclememory.NewPaymentReferences()
	}
	return lifecycleredis.NewPaymentReferences(client, cfg.ReferenceTTL)
}

func buildPublisher(cfg Config, logger *slog.Logger, core *Core) lifecycleports.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, lifecycle events will not be published")
		return lifecycleports.NoopPublisher{}
	}
	publisher := lifecyclekafka.NewPublisher(lifecyclekafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
	core.cleanups = append(core.cleanups, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close kafka writer", slog.String("error", err.Error()))
		}
	})
	logger.Info("lifecycle events published to kafka", slog.String("topic", cfg.KafkaTopic))
	return publisher
}

func buildGateway(cfg Config, logger *slog.Logger) lifecycleports.PaymentGateway {
	fallback := lifecycleports.NoopPaymentGateway{Logger: logger}
	if cfg.PaymentSimulatorURL == "" {
		logger.Warn("PAYMENT_SIMULATOR_URL not set, payment callbacks must be posted manually")
		return fallback
	}
	client, err := simclient.NewClient(cfg.PaymentSimulatorURL)
	if err != nil {
		logger.Warn("invalid payment simulator client, payment callbacks must be posted manually", slog.String("error", err.Error()))
		return fallback
	}
	gateway, err := lifecyclesim.NewGateway(client, cfg.PublicBaseURL)
	if err != nil {
		logger.Warn("invalid public base URL for payment callbacks", slog.String("error", err.Error()))
		return fallback
	}
	return gateway
}
