package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/listings/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists listings in PostgreSQL using GORM. The schema is owned
// by internal/platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The db may be a
// transaction handle; caller manages its lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listingRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	FarmerID    int64           `gorm:"column:farmer_id;index"`
	Species     string          `gorm:"column:species;index"`
	Breed       string          `gorm:"column:breed"`
	TagID       string          `gorm:"column:tag_id"`
	AgeMonths   int32           `gorm:"column:age_months"`
	WeightKg    decimal.Decimal `gorm:"column:weight_kg;type:numeric(10,2)"`
	Gender      string          `gorm:"column:gender"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Description string          `gorm:"column:description"`
	IsForSale   bool            `gorm:"column:is_for_sale"`
	Status      string          `gorm:"column:status;type:varchar(16);index"`
	PhotoURLs   pq.StringArray  `gorm:"column:photo_urls;type:text[]"`
	ListedAt    time.Time       `gorm:"column:listed_at;index"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (listingRecord) TableName() string { return "listings" }

func (r *Repository) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, errors.New("listing is nil")
	}
	if err := listing.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(listing)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// Update writes descriptive attributes only.
func (r *Repository) Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, errors.New("listing is nil")
	}
	record := toRecord(listing)
	result := r.db.WithContext(ctx).Model(&listingRecord{}).
		Where("id = ?", listing.ID).
		Updates(map[string]any{
			"species":     record.Species,
			"breed":       record.Breed,
			"tag_id":      record.TagID,
			"age_months":  record.AgeMonths,
			"weight_kg":   record.WeightKg,
			"gender":      record.Gender,
			"price":       record.Price,
			"description": record.Description,
			"photo_urls":  record.PhotoURLs,
			"updated_at":  gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, listing.ID)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate takes a FOR UPDATE lock on the listing row. Outside a
// transaction the lock is released as soon as the statement completes.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Listing, error) {
	return r.get(ctx, id, true)
}

func (r *Repository) get(ctx context.Context, id int64, lock bool) (*domain.Listing, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record listingRecord
	if err := query.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) List(ctx context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&listingRecord{})
	if !filter.IncludeUnavailable {
		query = query.Where("status = ? AND is_for_sale = ?", string(domain.StatusAvailable), true)
	}
	if species := strings.TrimSpace(filter.Species); species != "" {
		query = query.Where("LOWER(species) = LOWER(?)", species)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	var records []listingRecord
	if err := query.Order("listed_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

func (r *Repository) ListByFarmer(ctx context.Context, farmerID int64) ([]*domain.Listing, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []listingRecord
	if err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("listed_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

func (r *Repository) MarkSold(ctx context.Context, id int64) error {
	return r.setAvailability(ctx, id, domain.StatusSold, false)
}

func (r *Repository) MarkAvailable(ctx context.Context, id int64) error {
	return r.setAvailability(ctx, id, domain.StatusAvailable, true)
}

// ClaimForSale issues a conditional update; under concurrent claims Postgres
// re-evaluates the predicate after the row lock so only one update matches.
func (r *Repository) ClaimForSale(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&listingRecord{}).
		Where("id = ? AND status = ? AND is_for_sale = ?", id, string(domain.StatusAvailable), true).
		Updates(map[string]any{
			"status":      string(domain.StatusSold),
			"is_for_sale": false,
			"updated_at":  gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ports.ErrNotAvailable
}

func (r *Repository) setAvailability(ctx context.Context, id int64, status domain.Status, forSale bool) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&listingRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      string(status),
			"is_for_sale": forSale,
			"updated_at":  gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres listing repository not configured")
	}
	return nil
}

func toRecord(listing *domain.Listing) listingRecord {
	return listingRecord{
		ID:          listing.ID,
		FarmerID:    listing.FarmerID,
		Species:     listing.Species,
		Breed:       listing.Breed,
		TagID:       listing.TagID,
		AgeMonths:   listing.AgeMonths,
		WeightKg:    listing.WeightKg,
		Gender:      listing.Gender,
		Price:       listing.Price,
		Description: listing.Description,
		IsForSale:   listing.IsForSale,
		Status:      string(listing.Status),
		PhotoURLs:   pq.StringArray(listing.PhotoURLs),
		ListedAt:    listing.ListedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}

func (r listingRecord) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:       r.ID,
		FarmerID: r.FarmerID,
		Attributes: domain.Attributes{
			Species:     r.Species,
			Breed:       r.Breed,
			TagID:       r.TagID,
			AgeMonths:   r.AgeMonths,
			WeightKg:    r.WeightKg,
			Gender:      r.Gender,
			Price:       r.Price,
			Description: r.Description,
		},
		IsForSale: r.IsForSale,
		Status:    domain.Status(r.Status),
		PhotoURLs: append([]string(nil), r.PhotoURLs...),
		ListedAt:  r.ListedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func toDomainList(records []listingRecord) []*domain.Listing {
	list := make([]*domain.Listing, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list
}
