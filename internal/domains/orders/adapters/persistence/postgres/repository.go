package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The db may be a
// transaction handle; caller manages its lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID            int64           `gorm:"primaryKey;column:id"`
	BuyerID       int64           `gorm:"column:buyer_id;index:idx_orders_buyer_status"`
	Status        string          `gorm:"column:status;type:varchar(32);index:idx_orders_buyer_status"`
	PaymentStatus string          `gorm:"column:payment_status;type:varchar(16)"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(14,2)"`
	Note          string          `gorm:"column:note"`
	Lines         []lineRecord    `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time       `gorm:"column:created_at;index"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type lineRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	OrderID   int64           `gorm:"column:order_id;index"`
	ListingID int64           `gorm:"column:listing_id;index"`
	Quantity  int32           `gorm:"column:quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
}

func (lineRecord) TableName() string { return "order_lines" }

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	record.ID = 0
	for i := range record.Lines {
		record.Lines[i].ID = 0
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	from := domain.UpdatableFrom(order.Status)
	fromStatuses := make([]string, 0, len(from))
	for _, status := range from {
		fromStatuses = append(fromStatuses, string(status))
	}
	// The row only changes if it is still in a state the write may supersede.
	result := r.db.WithContext(ctx).Model(&orderRecord{}).
		Where("id = ? AND payment_status = ? AND status IN ?", order.ID, string(domain.PaymentPending), fromStatuses).
		Updates(map[string]any{
			"status":         string(order.Status),
			"payment_status": string(order.PaymentStatus),
			"updated_at":     gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		stored, err := r.GetByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: order %d is %s/%s", domain.ErrTerminalState, stored.ID, stored.Status, stored.PaymentStatus)
	}
	return r.GetByID(ctx, order.ID)
}

// GetByID locks the order row until the enclosing transaction ends, so
// concurrent transitions of one order run one after the other.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.withLines(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByLineID(ctx context.Context, lineID int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var line lineRecord
	if err := r.db.WithContext(ctx).First(&line, "id = ?", lineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, line.OrderID)
}

func (r *Repository) FindPendingForListing(ctx context.Context, buyerID, listingID int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	err := r.withLines(ctx).
		Where("buyer_id = ? AND status IN ?", buyerID, []string{string(domain.StatusPendingInquiry), string(domain.StatusPendingPayment)}).
		Where("id IN (?)", r.db.Model(&lineRecord{}).Select("order_id").Where("listing_id = ?", listingID)).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].toDomain(), nil
}

func (r *Repository) ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.withLines(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

type saleLineRow struct {
	lineRecord
	BuyerID       int64           `gorm:"column:buyer_id"`
	Status        string          `gorm:"column:status"`
	PaymentStatus string          `gorm:"column:payment_status"`
	Total         decimal.Decimal `gorm:"column:total"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
}

func (r *Repository) ListLinesForListings(ctx context.Context, listingIDs []int64) ([]domain.SaleLine, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if len(listingIDs) == 0 {
		return nil, nil
	}
	var rows []saleLineRow
	if err := r.db.WithContext(ctx).
		Table("order_lines").
		Select("order_lines.*, orders.buyer_id, orders.status, orders.payment_status, orders.total, orders.created_at").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Where("order_lines.listing_id IN ?", listingIDs).
		Order("orders.created_at DESC, order_lines.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]domain.SaleLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, domain.SaleLine{
			Line: row.lineRecord.toDomain(),
			Order: domain.Summary{
				ID:            row.OrderID,
				BuyerID:       row.BuyerID,
				Status:        domain.Status(row.Status),
				PaymentStatus: domain.PaymentStatus(row.PaymentStatus),
				Total:         row.Total,
				CreatedAt:     row.CreatedAt.UTC(),
			},
		})
	}
	return lines, nil
}

func (r *Repository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_lines.id ASC")
	})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		ID:            order.ID,
		BuyerID:       order.BuyerID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Total:         order.Total,
		Note:          order.Note,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	for _, line := range order.Lines {
		rec.Lines = append(rec.Lines, lineRecord{
			ID:        line.ID,
			OrderID:   line.OrderID,
			ListingID: line.ListingID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:            r.ID,
		BuyerID:       r.BuyerID,
		Status:        domain.Status(r.Status),
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		Total:         r.Total,
		Note:          r.Note,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	for _, line := range r.Lines {
		order.Lines = append(order.Lines, line.toDomain())
	}
	return order
}

func (l lineRecord) toDomain() domain.Line {
	return domain.Line{
		ID:        l.ID,
		OrderID:   l.OrderID,
		ListingID: l.ListingID,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
	}
}
