//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/orders/ports"
	"github.com/Apurer/livestock-marketplace/internal/platform/postgres/pgtest"
)

func draft(listingID int64, qty int32, price string) domain.LineDraft {
	return domain.LineDraft{ListingID: listingID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func TestRepository_CreateAssignsLineIdentifiers(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder(3, domain.StatusPendingInquiry, "pickup Friday", []domain.LineDraft{
		draft(10, 2, "100.00"),
		draft(11, 1, "49.99"),
	}, time.Now())
	require.NoError(t, err)

	created, err := repo.Create(ctx, order)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Len(t, created.Lines, 2)
	for _, line := range created.Lines {
		assert.NotZero(t, line.ID)
		assert.Equal(t, created.ID, line.OrderID)
	}

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("249.99").Equal(fetched.Total))
	assert.Equal(t, "pickup Friday", fetched.Note)
	assert.Equal(t, domain.PaymentPending, fetched.PaymentStatus)

	byLine, err := repo.GetByLineID(ctx, created.Lines[1].ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byLine.ID)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.GetByLineID(ctx, 9999)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UpdateAndPendingLookup(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder(4, domain.StatusPendingPayment, "", []domain.LineDraft{draft(20, 1, "300")}, time.Now())
	require.NoError(t, err)
	created, err := repo.Create(ctx, order)
	require.NoError(t, err)

	pending, err := repo.FindPendingForListing(ctx, 4, 20)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, created.ID, pending.ID)

	none, err := repo.FindPendingForListing(ctx, 5, 20)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, created.MarkPaid("ref-1", time.Now()))
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.Equal(t, domain.PaymentPaid, updated.PaymentStatus)

	pending, err = repo.FindPendingForListing(ctx, 4, 20)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestRepository_ListByBuyerAndSalesLines(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for _, buyer := range []int64{6, 6, 7} {
		order, err := domain.NewOrder(buyer, domain.StatusPendingInquiry, "", []domain.LineDraft{draft(30, 1, "80")}, time.Now())
		require.NoError(t, err)
		_, err = repo.Create(ctx, order)
		require.NoError(t, err)
	}
	other, err := domain.NewOrder(7, domain.StatusPendingInquiry, "", []domain.LineDraft{draft(31, 1, "80")}, time.Now())
	require.NoError(t, err)
	_, err = repo.Create(ctx, other)
	require.NoError(t, err)

	history, err := repo.ListByBuyer(ctx, 6)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Greater(t, history[0].ID, history[1].ID)

	lines, err := repo.ListLinesForListings(ctx, []int64{30})
	require.NoError(t, err)
	require.Len(t, lines, 3)
	for _, sale := range lines {
		assert.Equal(t, int64(30), sale.Line.ListingID)
		assert.Equal(t, domain.StatusPendingInquiry, sale.Order.Status)
	}

	empty, err := repo.ListLinesForListings(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepository_UpdateRejectsStaleCopy(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order, err := domain.NewOrder(8, domain.StatusPendingInquiry, "", []domain.LineDraft{draft(40, 1, "120")}, time.Now())
	require.NoError(t, err)
	created, err := repo.Create(ctx, order)
	require.NoError(t, err)
	stale := created.Clone()

	require.NoError(t, created.Confirm(time.Now()))
	_, err = repo.Update(ctx, created)
	require.NoError(t, err)

	require.NoError(t, stale.Cancel("late", time.Now()))
	_, err = repo.Update(ctx, stale)
	require.ErrorIs(t, err, domain.ErrTerminalState)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)

	require.NoError(t, stored.MarkPaid("ref-9", time.Now()))
	paid, err := repo.Update(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
}
