package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/livestock-marketplace/internal/domains/listings/adapters/memory"
	"github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService() *Service {
	return NewService(memory.NewRepository(), WithClock(func() time.Time { return fixedNow }))
}

func cattle(price int64) domain.Attributes {
	return domain.Attributes{Species: "Cattle", Breed: "Hereford", Price: decimal.NewFromInt(price)}
}

func TestCreateListing_FarmerOnly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	listing, err := svc.CreateListing(ctx, identity.Farmer{AccountID: 1}, cattle(500))
	require.NoError(t, err)
	require.NotZero(t, listing.ID)
	require.True(t, listing.IsForSale)
	require.Equal(t, domain.StatusAvailable, listing.Status)
	require.Equal(t, fixedNow, listing.ListedAt)

	_, err = svc.CreateListing(ctx, identity.Buyer{AccountID: 2}, cattle(500))
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateListing(ctx, nil, cattle(500))
	require.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestCreateListing_InvalidPrice(t *testing.T) {
	svc := newTestService()
	_, err := svc.CreateListing(context.Background(), identity.Farmer{AccountID: 1}, cattle(0))
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestChangePrice_RequiresOwnership(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	listing, err := svc.CreateListing(ctx, identity.Farmer{AccountID: 1}, cattle(500))
	require.NoError(t, err)

	_, err = svc.ChangePrice(ctx, identity.Farmer{AccountID: 9}, listing.ID, decimal.NewFromInt(600))
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.ChangePrice(ctx, identity.Farmer{AccountID: 1}, listing.ID, decimal.NewFromInt(600))
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(600).Equal(updated.Price))

	_, err = svc.ChangePrice(ctx, identity.Farmer{AccountID: 1}, 404, decimal.NewFromInt(600))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddPhoto_AppendsURL(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	listing, err := svc.CreateListing(ctx, identity.Farmer{AccountID: 1}, cattle(500))
	require.NoError(t, err)

	updated, err := svc.AddPhoto(ctx, identity.Farmer{AccountID: 1}, listing.ID, "https://cdn/cow.jpg")
	require.NoError(t, err)
	require.Equal(t, []string{"https://cdn/cow.jpg"}, updated.PhotoURLs)

	_, err = svc.AddPhoto(ctx, identity.Farmer{AccountID: 1}, listing.ID, " ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListByFarmer_ScopesToActor(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.CreateListing(ctx, identity.Farmer{AccountID: 1}, cattle(500))
	require.NoError(t, err)
	_, err = svc.CreateListing(ctx, identity.Farmer{AccountID: 2}, cattle(700))
	require.NoError(t, err)

	mine, err := svc.ListByFarmer(ctx, identity.Farmer{AccountID: 1})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, int64(1), mine[0].FarmerID)
}
