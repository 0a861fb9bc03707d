package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/livestock-marketplace/internal/domains/accounts/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/accounts/ports"
)

var (
	_ ports.Repository   = (*Repository)(nil)
	_ ports.SessionStore = (*SessionStore)(nil)
)

// Repository is an in-memory account store keyed by ID with a username index.
type Repository struct {
	mu         sync.RWMutex
	nextID     int64
	accounts   map[int64]domain.Account
	byUsername map[string]int64
}

func NewRepository() *Repository {
	return &Repository{accounts: map[int64]domain.Account{}, byUsername: map[string]int64{}}
}

func (r *Repository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if account == nil {
		return nil, errors.New("account is nil")
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	key := strings.ToLower(account.Username)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byUsername[key]; taken {
		return nil, ports.ErrUsernameTaken
	}
	r.nextID++
	stored := *account
	stored.ID = r.nextID
	r.accounts[stored.ID] = stored
	r.byUsername[key] = stored.ID
	out := stored
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &account, nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	id, ok := r.byUsername[strings.ToLower(strings.TrimSpace(username))]
	r.mu.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// SessionStore keeps sessions in process memory.
type SessionStore struct {
	sessions sync.Map
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	if strings.TrimSpace(session.Token) == "" {
		return errors.New("session token is required")
	}
	s.sessions.Store(session.Token, session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	value, ok := s.sessions.Load(token)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	session := value.(domain.Session)
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.sessions.Delete(token)
	return nil
}

// PurgeExpired drops sessions that expired before now.
func (s *SessionStore) PurgeExpired(_ context.Context, now time.Time) int {
	purged := 0
	s.sessions.Range(func(key, value any) bool {
		if value.(domain.Session).Expired(now) {
			s.sessions.Delete(key)
			purged++
		}
		return true
	})
	return purged
}
