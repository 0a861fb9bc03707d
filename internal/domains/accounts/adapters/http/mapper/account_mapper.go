package mapper

import (
	"time"

	accountdomain "github.com/Apurer/livestock-marketplace/internal/domains/accounts/domain"
)

// Registration is the sign-up payload.
type Registration struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Account is the transport representation of a member. The password hash never leaves the service.
type Account struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	FarmName  string    `json:"farmName,omitempty"`
	Location  string    `json:"location,omitempty"`
	BuyerType string    `json:"buyerType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is returned on login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Role      string    `json:"role"`
}

func FromDomainAccount(account *accountdomain.Account) Account {
	if account == nil {
		return Account{}
	}
	return Account{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Role:      string(account.Role),
		FarmName:  account.FarmName,
		Location:  account.Location,
		BuyerType: account.BuyerType,
		CreatedAt: account.CreatedAt,
	}
}

func FromDomainSession(session *accountdomain.Session) Session {
	if session == nil {
		return Session{}
	}
	return Session{Token: session.Token, ExpiresAt: session.ExpiresAt, Role: string(session.Role)}
}
