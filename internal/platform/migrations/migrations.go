package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the marketplace schema. Adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&accountRecord{},
		&sessionRecord{},
		&listingRecord{},
		&orderRecord{},
		&lineRecord{},
	)
}

// Account schema mirrors the accounts Postgres adapter.
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

// Session schema mirrors the account session store.
type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:512"`
	AccountID int64     `gorm:"column:account_id;index"`
	Role      string    `gorm:"column:role;type:varchar(16)"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "account_sessions" }

// Listing schema mirrors the listings Postgres adapter.
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

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID            int64           `gorm:"primaryKey;column:id"`
	BuyerID       int64           `gorm:"column:buyer_id;index:idx_orders_buyer_status"`
	Status        string          `gorm:"column:status;type:varchar(32);index:idx_orders_buyer_status"`
	PaymentStatus string          `gorm:"column:payment_status;type:varchar(16)"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(14,2)"`
	Note          string          `gorm:"column:note"`
	CreatedAt     time.Time       `gorm:"column:created_at;index"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Line schema mirrors the order_lines table. Unit prices are snapshots and never updated.
type lineRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	OrderID   int64           `gorm:"column:order_id;index"`
	ListingID int64           `gorm:"column:listing_id;index"`
	Quantity  int32           `gorm:"column:quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
}

func (lineRecord) TableName() string { return "order_lines" }
