package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/livestock-marketplace/internal/domains/accounts/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/accounts/ports"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists accounts in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type accountRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Username     string    `gorm:"column:username;uniqueIndex"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role;type:varchar(16);index"`
	FarmName     string    `gorm:"column:farm_name"`
	Location     string    `gorm:"column:location"`
	BuyerType    string    `gorm:"column:buyer_type;type:varchar(32)"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (accountRecord) TableName() string { return "accounts" }

// Create inserts a new account. Usernames are unique case-insensitively.
func (r *Repository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New("account is nil")
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if _, err := r.GetByUsername(ctx, account.Username); err == nil {
		return nil, ports.ErrUsernameTaken
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	record := toRecord(account)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrUsernameTaken
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record accountRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	username = strings.ToLower(strings.TrimSpace(username))
	var record accountRecord
	if err := r.db.WithContext(ctx).First(&record, "LOWER(username) = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres account repository not configured")
	}
	return nil
}

func toRecord(account *domain.Account) accountRecord {
	return accountRecord{
		ID:           account.ID,
		Username:     account.Username,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		Role:         string(account.Role),
		FarmName:     account.FarmName,
		Location:     account.Location,
		BuyerType:    account.BuyerType,
		CreatedAt:    account.CreatedAt,
	}
}

func (r accountRecord) toDomain() *domain.Account {
	return &domain.Account{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         identity.Role(r.Role),
		FarmName:     r.FarmName,
		Location:     r.Location,
		BuyerType:    r.BuyerType,
		CreatedAt:    r.CreatedAt,
	}
}
