package ports

import (
	"context"

	"github.com/Apurer/livestock-marketplace/internal/domains/accounts/domain"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     identity.Role
}

// Service is the identity provider used by the HTTP layer.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (identity.Actor, error)
	Profile(ctx context.Context, actor identity.Actor) (*domain.Account, error)
}
