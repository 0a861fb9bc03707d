package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

var (
	ErrEmptyUsername = errors.New("username is required")
	ErrEmptyPassword = errors.New("password is required")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrWeakPassword  = errors.New("password must be at least 8 characters")
	ErrInvalidRole   = errors.New("role must be farmer or buyer")
)

const (
	minPasswordLength = 8
	// DefaultBuyerType is assigned to every new buyer profile.
	DefaultBuyerType = "individual"
)

// Account is a marketplace member. Exactly one of the farmer or buyer profile
// fields is meaningful, selected by Role.
type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         identity.Role
	// Farmer profile.
	FarmName string
	Location string
	// Buyer profile.
	BuyerType string
	CreatedAt time.Time
}

// NewAccount validates the registration and fills the role profile defaults.
func NewAccount(username, email, password string, role identity.Role, now time.Time) (*Account, error) {
	account := &Account{CreatedAt: now.UTC()}
	if err := account.SetUsername(username); err != nil {
		return nil, err
	}
	if err := account.SetEmail(email); err != nil {
		return nil, err
	}
	if err := account.SetPassword(password); err != nil {
		return nil, err
	}
	switch role {
	case identity.RoleFarmer:
		account.FarmName = fmt.Sprintf("%s's Farm", account.Username)
	case identity.RoleBuyer:
		account.BuyerType = DefaultBuyerType
	default:
		return nil, ErrInvalidRole
	}
	account.Role = role
	return account, nil
}

// SetUsername trims and validates the username.
func (a *Account) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	a.Username = username
	return nil
}

func (a *Account) SetEmail(email string) error {
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	a.Email = email
	return nil
}

// SetPassword stores a bcrypt hash of password.
func (a *Account) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares password with the stored hash.
func (a *Account) CheckPassword(password string) bool {
	if a.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// Actor returns the identity the account acts as.
func (a *Account) Actor() (identity.Actor, error) {
	return identity.New(a.ID, a.Role)
}

// Validate re-applies invariants before persistence.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return ErrEmptyUsername
	}
	if a.PasswordHash == "" {
		return ErrEmptyPassword
	}
	if a.Role != identity.RoleFarmer && a.Role != identity.RoleBuyer {
		return ErrInvalidRole
	}
	return a.SetEmail(a.Email)
}

// Session binds an opaque bearer token to an account until it expires.
type Session struct {
	Token     string
	AccountID int64
	Role      identity.Role
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
