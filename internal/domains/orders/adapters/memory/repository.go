package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu         sync.RWMutex
	orders     map[int64]*domain.Order
	lineOrders map[int64]int64
	nextID     int64
	nextLineID int64
	clock      func() time.Time
}

type Option func(*Repository)

func WithClock(clock func() time.Time) Option {
	return func(r *Repository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		orders:     map[int64]*domain.Order{},
		lineOrders: map[int64]int64{},
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone.ID = r.nextID
	for i := range clone.Lines {
		r.nextLineID++
		clone.Lines[i].ID = r.nextLineID
		clone.Lines[i].OrderID = clone.ID
		r.lineOrders[clone.Lines[i].ID] = clone.ID
	}
	r.orders[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) Update(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if !order.Supersedes(stored) {
		return nil, fmt.Errorf("%w: order %d is %s/%s", domain.ErrTerminalState, stored.ID, stored.Status, stored.PaymentStatus)
	}
	next := stored.Clone()
	next.Status = order.Status
	next.PaymentStatus = order.PaymentStatus
	next.UpdatedAt = r.clock().UTC()
	if err := next.Validate(); err != nil {
		return nil, err
	}
	r.orders[next.ID] = next
	return next.Clone(), nil
}

// Remove deletes an order outright. Orders are never removed by the
// application; the in-memory transactor uses it to undo an uncommitted Create.
func (r *Repository) Remove(_ context.Context, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return
	}
	for _, line := range order.Lines {
		delete(r.lineOrders, line.ID)
	}
	delete(r.orders, id)
}

// Restore overwrites the stored order with a previous snapshot.
func (r *Repository) Restore(_ context.Context, order *domain.Order) {
	if order == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order.Clone()
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) GetByLineID(_ context.Context, lineID int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orderID, ok := r.lineOrders[lineID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.orders[orderID].Clone(), nil
}

func (r *Repository) FindPendingForListing(_ context.Context, buyerID, listingID int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *domain.Order
	for _, order := range r.orders {
		if !order.OwnedBy(buyerID) || !order.IsPending() || !containsListing(order, listingID) {
			continue
		}
		if found == nil || newer(order, found) {
			found = order
		}
	}
	return found.Clone(), nil
}

func (r *Repository) ListByBuyer(_ context.Context, buyerID int64) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Order
	for _, order := range r.orders {
		if order.OwnedBy(buyerID) {
			list = append(list, order.Clone())
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return newer(list[i], list[j]) })
	return list, nil
}

func (r *Repository) ListLinesForListings(_ context.Context, listingIDs []int64) ([]domain.SaleLine, error) {
	wanted := make(map[int64]struct{}, len(listingIDs))
	for _, id := range listingIDs {
		wanted[id] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var orders []*domain.Order
	for _, order := range r.orders {
		orders = append(orders, order)
	}
	sort.SliceStable(orders, func(i, j int) bool { return newer(orders[i], orders[j]) })
	var lines []domain.SaleLine
	for _, order := range orders {
		for _, line := range order.Lines {
			if _, ok := wanted[line.ListingID]; ok {
				lines = append(lines, domain.SaleLine{Line: line, Order: order.Summary()})
			}
		}
	}
	return lines, nil
}

func containsListing(order *domain.Order, listingID int64) bool {
	for _, line := range order.Lines {
		if line.ListingID == listingID {
			return true
		}
	}
	return false
}

func newer(a, b *domain.Order) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}
