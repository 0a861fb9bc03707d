package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

func TestNewAccount_FarmerProfileDefaults(t *testing.T) {
	account, err := NewAccount(" daisy ", "daisy@example.com", "correct-horse", identity.RoleFarmer, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "daisy", account.Username)
	assert.Equal(t, "daisy's Farm", account.FarmName)
	assert.Empty(t, account.BuyerType)
	assert.NotEqual(t, "correct-horse", account.PasswordHash)
	assert.True(t, account.CheckPassword("correct-horse"))
	assert.False(t, account.CheckPassword("wrong-password"))
}

func TestNewAccount_BuyerProfileDefaults(t *testing.T) {
	account, err := NewAccount("bob", "", "long-enough", identity.RoleBuyer, time.Now())
	require.NoError(t, err)
	assert.Equal(t, DefaultBuyerType, account.BuyerType)
	assert.Empty(t, account.FarmName)

	account.ID = 3
	actor, err := account.Actor()
	require.NoError(t, err)
	assert.Equal(t, identity.Buyer{AccountID: 3}, actor)
}

func TestNewAccount_Validation(t *testing.T) {
	_, err := NewAccount("", "", "long-enough", identity.RoleBuyer, time.Now())
	assert.ErrorIs(t, err, ErrEmptyUsername)
	_, err = NewAccount("bob", "not-an-email", "long-enough", identity.RoleBuyer, time.Now())
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = NewAccount("bob", "", "short", identity.RoleBuyer, time.Now())
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = NewAccount("bob", "", "long-enough", identity.Role("admin"), time.Now())
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now}.Expired(now))
	assert.False(t, Session{}.Expired(now))
}
