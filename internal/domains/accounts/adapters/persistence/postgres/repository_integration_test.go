//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/livestock-marketplace/internal/domains/accounts/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/accounts/ports"
	"github.com/Apurer/livestock-marketplace/internal/platform/postgres/pgtest"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

func TestRepository_CreateAndLookup(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	account, err := domain.NewAccount("fern", "fern@example.com", "correct-horse", identity.RoleFarmer, time.Now())
	require.NoError(t, err)

	saved, err := repo.Create(ctx, account)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	byID, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "fern", byID.Username)
	assert.Equal(t, identity.RoleFarmer, byID.Role)
	assert.Equal(t, "fern's Farm", byID.FarmName)

	byName, err := repo.GetByUsername(ctx, "fern")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byName.ID)
	assert.True(t, byName.CheckPassword("correct-horse"))

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DuplicateUsername(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first, err := domain.NewAccount("bea", "bea@example.com", "correct-horse", identity.RoleBuyer, time.Now())
	require.NoError(t, err)
	_, err = repo.Create(ctx, first)
	require.NoError(t, err)

	second, err := domain.NewAccount("bea", "other@example.com", "correct-horse", identity.RoleBuyer, time.Now())
	require.NoError(t, err)
	_, err = repo.Create(ctx, second)
	assert.ErrorIs(t, err, ports.ErrUsernameTaken)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	db := pgtest.Start(t)
	store := NewSessionStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	live := domain.Session{Token: "live", AccountID: 7, Role: identity.RoleBuyer, ExpiresAt: now.Add(time.Hour)}
	stale := domain.Session{Token: "stale", AccountID: 8, Role: identity.RoleFarmer, ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, store.Save(ctx, live))
	require.NoError(t, store.Save(ctx, stale))

	got, err := store.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.AccountID)
	assert.Equal(t, identity.RoleBuyer, got.Role)

	purged, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = store.Get(ctx, "stale")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "live"))
	_, err = store.Get(ctx, "live")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}
