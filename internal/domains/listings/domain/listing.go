package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status tracks whether a listing can still be bought.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
)

var (
	ErrInvalidFarmer  = errors.New("farmer id must be greater than zero")
	ErrMissingSpecies = errors.New("species is required")
	ErrInvalidPrice   = errors.New("price must be greater than zero")
	ErrInvalidAge     = errors.New("age cannot be negative")
	ErrInvalidWeight  = errors.New("weight cannot be negative")
	ErrInvalidStatus  = errors.New("listing status is invalid")
	ErrSoldForSale    = errors.New("sold listing cannot be for sale")
	ErrEmptyPhotoURL  = errors.New("photo url is required")
	ErrNotOwner       = errors.New("listing belongs to another farmer")
)

// Attributes are the farmer-supplied facts describing an animal.
type Attributes struct {
	Species     string
	Breed       string
	TagID       string
	AgeMonths   int32
	WeightKg    decimal.Decimal
	Gender      string
	Price       decimal.Decimal
	Description string
}

// Listing is a single animal offered for sale by a farmer.
type Listing struct {
	ID        int64
	FarmerID  int64
	Attributes
	IsForSale bool
	Status    Status
	PhotoURLs []string
	ListedAt  time.Time
	UpdatedAt time.Time
}

// NewListing builds a listing that is immediately for sale.
func NewListing(farmerID int64, attrs Attributes, now time.Time) (*Listing, error) {
	attrs.Species = strings.TrimSpace(attrs.Species)
	listing := &Listing{
		FarmerID:   farmerID,
		Attributes: attrs,
		IsForSale:  true,
		Status:     StatusAvailable,
		ListedAt:   now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	if err := listing.Validate(); err != nil {
		return nil, err
	}
	return listing, nil
}

// Validate enforces invariants on the aggregate.
func (l *Listing) Validate() error {
	if l.FarmerID <= 0 {
		return ErrInvalidFarmer
	}
	if strings.TrimSpace(l.Species) == "" {
		return ErrMissingSpecies
	}
	if !l.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if l.AgeMonths < 0 {
		return ErrInvalidAge
	}
	if l.WeightKg.IsNegative() {
		return ErrInvalidWeight
	}
	switch l.Status {
	case StatusAvailable:
	case StatusSold:
		if l.IsForSale {
			return ErrSoldForSale
		}
	default:
		return ErrInvalidStatus
	}
	return nil
}

// IsAvailable reports whether the listing can still be claimed by a buyer.
func (l *Listing) IsAvailable() bool {
	return l.Status == StatusAvailable && l.IsForSale
}

// MarkSold takes the listing off the market. Calling it twice is harmless.
func (l *Listing) MarkSold(now time.Time) {
	l.Status = StatusSold
	l.IsForSale = false
	l.UpdatedAt = now.UTC()
}

// MarkAvailable returns the listing to the market.
func (l *Listing) MarkAvailable(now time.Time) {
	l.Status = StatusAvailable
	l.IsForSale = true
	l.UpdatedAt = now.UTC()
}

// OwnedBy reports whether farmerID listed this animal.
func (l *Listing) OwnedBy(farmerID int64) bool {
	return l.FarmerID == farmerID
}

// ChangePrice sets a new asking price. Orders already placed keep their snapshot.
func (l *Listing) ChangePrice(price decimal.Decimal, now time.Time) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	l.Price = price
	l.UpdatedAt = now.UTC()
	return nil
}

// AddPhoto appends an image reference.
func (l *Listing) AddPhoto(url string, now time.Time) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrEmptyPhotoURL
	}
	l.PhotoURLs = append(l.PhotoURLs, url)
	l.UpdatedAt = now.UTC()
	return nil
}

// Clone returns a deep copy safe to hand across goroutines.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	clone := *l
	if l.PhotoURLs != nil {
		clone.PhotoURLs = append([]string(nil), l.PhotoURLs...)
	}
	return &clone
}

// Filter narrows marketplace searches.
type Filter struct {
	Species            string
	MaxPrice           *decimal.Decimal
	IncludeUnavailable bool
}

// Matches applies the filter to a single listing.
func (f Filter) Matches(l *Listing) bool {
	if l == nil {
		return false
	}
	if !f.IncludeUnavailable && !l.IsAvailable() {
		return false
	}
	if species := strings.TrimSpace(f.Species); species != "" && !strings.EqualFold(species, l.Species) {
		return false
	}
	if f.MaxPrice != nil && l.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}
