package ports

import (
	"context"

	listingports "github.com/Apurer/livestock-marketplace/internal/domains/listings/ports"
	orderports "github.com/Apurer/livestock-marketplace/internal/domains/orders/ports"
)

// Stores are the repositories bound to a single transaction.
type Stores struct {
	Listings listingports.Repository
	Orders   orderports.Repository
}

// Transactor runs fn atomically across both stores. Any error returned by fn
// rolls back every write fn made.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
