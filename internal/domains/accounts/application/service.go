package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/livestock-marketplace/internal/domains/accounts/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/accounts/ports"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

// DefaultSessionTTL bounds a login when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// Service registers accounts and resolves bearer tokens to actors.
type Service struct {
	repo       ports.Repository
	sessions   ports.SessionStore
	sessionTTL time.Duration
	clock      func() time.Time
	newToken   func() string
}

type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithTokenGenerator(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newToken = next
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		sessionTTL: DefaultSessionTTL,
		clock:      time.Now,
		newToken:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*domain.Account, error) {
	account, err := domain.NewAccount(input.Username, input.Email, input.Password, input.Role, s.clock())
	if err != nil {
		return nil, mapError(err)
	}
	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

// Login checks the password and opens a session. Unknown usernames and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !account.CheckPassword(password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	session := domain.Session{
		Token:     s.newToken(),
		AccountID: account.ID,
		Role:      account.Role,
		ExpiresAt: s.clock().Add(s.sessionTTL).UTC(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a bearer token. Missing, unknown and expired tokens
// all return ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.Actor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}
	if session.Expired(s.clock()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, fmt.Errorf("%w: session expired", ErrUnauthenticated)
	}
	actor, err := identity.New(session.AccountID, session.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return actor, nil
}

func (s *Service) Profile(ctx context.Context, actor identity.Actor) (*domain.Account, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	return s.repo.GetByID(ctx, actor.ActorID())
}

var _ ports.Service = (*Service)(nil)
