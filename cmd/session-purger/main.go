package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	accountpostgres "github.com/Apurer/livestock-marketplace/internal/domains/accounts/adapters/persistence/postgres"
	platformobservability "github.com/Apurer/livestock-marketplace/internal/platform/observability"
	platformpostgres "github.com/Apurer/livestock-marketplace/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := platformobservability.NewLogger(os.Stdout)
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge sessions")
	}

	store := accountpostgres.NewSessionStore(db)
	purged, err := store.PurgeExpired(ctx, time.Now())
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	logger.Info("session purge completed", slog.Int64("purged", purged))
}
