package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/listings/ports"
)

func newListing(t *testing.T, species string, price int64, listedAt time.Time) *domain.Listing {
	t.Helper()
	listing, err := domain.NewListing(1, domain.Attributes{Species: species, Price: decimal.NewFromInt(price)}, listedAt)
	require.NoError(t, err)
	return listing
}

func TestClaimForSale_OnlyOneWinner(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	created, err := repo.Create(ctx, newListing(t, "Goat", 100, time.Now()))
	require.NoError(t, err)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.ClaimForSale(ctx, created.ID); err == nil {
				atomic.AddInt32(&wins, 1)
			} else {
				assert.ErrorIs(t, err, ports.ErrNotAvailable)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins)
	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSold, stored.Status)
	require.False(t, stored.IsForSale)
}

func TestMarkSoldAndAvailable_AreIdempotent(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	created, err := repo.Create(ctx, newListing(t, "Sheep", 80, time.Now()))
	require.NoError(t, err)

	require.NoError(t, repo.MarkSold(ctx, created.ID))
	require.NoError(t, repo.MarkSold(ctx, created.ID))
	require.NoError(t, repo.MarkAvailable(ctx, created.ID))
	require.NoError(t, repo.MarkAvailable(ctx, created.ID))

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, stored.IsAvailable())

	require.ErrorIs(t, repo.MarkSold(ctx, 999), ports.ErrNotFound)
}

func TestUpdate_PreservesAvailability(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	created, err := repo.Create(ctx, newListing(t, "Pig", 60, time.Now()))
	require.NoError(t, err)
	require.NoError(t, repo.ClaimForSale(ctx, created.ID))

	created.Price = decimal.NewFromInt(75)
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(75).Equal(updated.Price))
	require.Equal(t, domain.StatusSold, updated.Status)
	require.False(t, updated.IsForSale)
}

func TestList_FiltersAndOrdersNewestFirst(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	older, err := repo.Create(ctx, newListing(t, "Cattle", 900, base))
	require.NoError(t, err)
	newer, err := repo.Create(ctx, newListing(t, "cattle", 1500, base.Add(time.Hour)))
	require.NoError(t, err)
	sold, err := repo.Create(ctx, newListing(t, "Cattle", 700, base.Add(2*time.Hour)))
	require.NoError(t, err)
	require.NoError(t, repo.MarkSold(ctx, sold.ID))

	list, err := repo.List(ctx, domain.Filter{Species: "CATTLE"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, newer.ID, list[0].ID)
	require.Equal(t, older.ID, list[1].ID)

	max := decimal.NewFromInt(1000)
	list, err = repo.List(ctx, domain.Filter{MaxPrice: &max, IncludeUnavailable: true})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, sold.ID, list[0].ID)
}
