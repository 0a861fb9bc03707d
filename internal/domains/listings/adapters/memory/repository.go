package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/listings/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory listing persistence adapter.
type Repository struct {
	mu       sync.RWMutex
	listings map[int64]*domain.Listing
	nextID   int64
	clock    func() time.Time
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
	r := &Repository{listings: map[int64]*domain.Listing{}, clock: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Create(_ context.Context, listing *domain.Listing) (*domain.Listing, error) {
	if listing == nil {
		return nil, errors.New("listing is nil")
	}
	clone := listing.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone.ID = r.nextID
	r.listings[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) Update(_ context.Context, listing *domain.Listing) (*domain.Listing, error) {
	if listing == nil {
		return nil, errors.New("listing is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.listings[listing.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	next := listing.Clone()
	next.FarmerID = stored.FarmerID
	next.Status = stored.Status
	next.IsForSale = stored.IsForSale
	next.ListedAt = stored.ListedAt
	next.UpdatedAt = r.clock().UTC()
	if err := next.Validate(); err != nil {
		return nil, err
	}
	r.listings[next.ID] = next
	return next.Clone(), nil
}

// Remove deletes a listing outright. Listings are never removed by the
// application; the in-memory transactor uses it to undo an uncommitted Create.
func (r *Repository) Remove(_ context.Context, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.listings, id)
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.listings[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return listing.Clone(), nil
}

// GetForUpdate is GetByID; the in-memory transactor already serialises transactions.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Listing, error) {
	return r.GetByID(ctx, id)
}

func (r *Repository) List(_ context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Listing, 0, len(r.listings))
	for _, listing := range r.listings {
		if filter.Matches(listing) {
			list = append(list, listing.Clone())
		}
	}
	sortNewestFirst(list)
	return list, nil
}

func (r *Repository) ListByFarmer(_ context.Context, farmerID int64) ([]*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Listing
	for _, listing := range r.listings {
		if listing.OwnedBy(farmerID) {
			list = append(list, listing.Clone())
		}
	}
	sortNewestFirst(list)
	return list, nil
}

func (r *Repository) MarkSold(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return ports.ErrNotFound
	}
	if listing.Status != domain.StatusSold {
		listing.MarkSold(r.clock())
	}
	return nil
}

func (r *Repository) MarkAvailable(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return ports.ErrNotFound
	}
	if !listing.IsAvailable() {
		listing.MarkAvailable(r.clock())
	}
	return nil
}

func (r *Repository) ClaimForSale(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return ports.ErrNotFound
	}
	if !listing.IsAvailable() {
		return ports.ErrNotAvailable
	}
	listing.MarkSold(r.clock())
	return nil
}

func sortNewestFirst(list []*domain.Listing) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].ListedAt.Equal(list[j].ListedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].ListedAt.After(list[j].ListedAt)
	})
}
