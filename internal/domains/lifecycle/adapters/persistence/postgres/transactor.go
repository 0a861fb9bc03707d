package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	listingpostgres "github.com/Apurer/livestock-marketplace/internal/domains/listings/adapters/persistence/postgres"
	orderpostgres "github.com/Apurer/livestock-marketplace/internal/domains/orders/adapters/persistence/postgres"
)

var _ ports.Transactor = (*Transactor)(nil)

// Transactor runs lifecycle transitions in a PostgreSQL transaction with
// repositories bound to the transaction handle.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	if t == nil || t.db == nil {
		return errors.New("postgres transactor not configured")
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, ports.Stores{
			Listings: listingpostgres.NewRepository(tx),
			Orders:   orderpostgres.NewRepository(tx),
		})
	})
}
