package memory

import (
	"context"
	"sync"

	"github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	listingmemory "github.com/Apurer/livestock-marketplace/internal/domains/listings/adapters/memory"
	listingdomain "github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
	ordermemory "github.com/Apurer/livestock-marketplace/internal/domains/orders/adapters/memory"
	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
)

var _ ports.Transactor = (*Transactor)(nil)

// Transactor serialises transactions over the in-memory stores and undoes the
// writes of a failed transaction in reverse order.
type Transactor struct {
	mu       sync.Mutex
	listings *listingmemory.Repository
	orders   *ordermemory.Repository
}

func NewTransactor(listings *listingmemory.Repository, orders *ordermemory.Repository) *Transactor {
	return &Transactor{listings: listings, orders: orders}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	j := &journal{}
	stores := ports.Stores{
		Listings: &journaledListings{Repository: t.listings, journal: j},
		Orders:   &journaledOrders{Repository: t.orders, journal: j},
	}
	if err := fn(ctx, stores); err != nil {
		j.rollback(context.WithoutCancel(ctx))
		return err
	}
	return nil
}

type journal struct {
	undo []func(ctx context.Context)
}

func (j *journal) record(undo func(ctx context.Context)) {
	j.undo = append(j.undo, undo)
}

func (j *journal) rollback(ctx context.Context) {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i](ctx)
	}
	j.undo = nil
}

type journaledListings struct {
	*listingmemory.Repository
	journal *journal
}

func (l *journaledListings) Create(ctx context.Context, listing *listingdomain.Listing) (*listingdomain.Listing, error) {
	created, err := l.Repository.Create(ctx, listing)
	if err != nil {
		return nil, err
	}
	l.journal.record(func(ctx context.Context) { l.Repository.Remove(ctx, created.ID) })
	return created, nil
}

func (l *journaledListings) Update(ctx context.Context, listing *listingdomain.Listing) (*listingdomain.Listing, error) {
	previous, err := l.Repository.GetByID(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	updated, err := l.Repository.Update(ctx, listing)
	if err != nil {
		return nil, err
	}
	l.journal.record(func(ctx context.Context) { _, _ = l.Repository.Update(ctx, previous) })
	return updated, nil
}

func (l *journaledListings) MarkSold(ctx context.Context, id int64) error {
	previous, err := l.Repository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := l.Repository.MarkSold(ctx, id); err != nil {
		return err
	}
	if previous.IsAvailable() {
		l.journal.record(func(ctx context.Context) { _ = l.Repository.MarkAvailable(ctx, id) })
	}
	return nil
}

func (l *journaledListings) MarkAvailable(ctx context.Context, id int64) error {
	previous, err := l.Repository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := l.Repository.MarkAvailable(ctx, id); err != nil {
		return err
	}
	if !previous.IsAvailable() {
		l.journal.record(func(ctx context.Context) { _ = l.Repository.MarkSold(ctx, id) })
	}
	return nil
}

func (l *journaledListings) ClaimForSale(ctx context.Context, id int64) error {
	if err := l.Repository.ClaimForSale(ctx, id); err != nil {
		return err
	}
	l.journal.record(func(ctx context.Context) { _ = l.Repository.MarkAvailable(ctx, id) })
	return nil
}

type journaledOrders struct {
	*ordermemory.Repository
	journal *journal
}

func (o *journaledOrders) Create(ctx context.Context, order *orderdomain.Order) (*orderdomain.Order, error) {
	created, err := o.Repository.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	o.journal.record(func(ctx context.Context) { o.Repository.Remove(ctx, created.ID) })
	return created, nil
}

func (o *journaledOrders) Update(ctx context.Context, order *orderdomain.Order) (*orderdomain.Order, error) {
	previous, err := o.Repository.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	updated, err := o.Repository.Update(ctx, order)
	if err != nil {
		return nil, err
	}
	o.journal.record(func(ctx context.Context) { o.Repository.Restore(ctx, previous) })
	return updated, nil
}
