package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	listingdomain "github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
)

// Listing represents the transport-layer shape used by the HTTP handlers.
type Listing struct {
	ID          int64     `json:"id"`
	FarmerID    int64     `json:"farmerId"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed,omitempty"`
	TagID       string    `json:"tagId,omitempty"`
	AgeMonths   int32     `json:"ageMonths,omitempty"`
	WeightKg    string    `json:"weightKg,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Price       string    `json:"price"`
	Description string    `json:"description,omitempty"`
	IsForSale   bool      `json:"isForSale"`
	Status      string    `json:"status"`
	PhotoURLs   []string  `json:"photoUrls"`
	ListedAt    time.Time `json:"listedAt"`
}

// ListingInput is the payload accepted when a farmer lists an animal.
type ListingInput struct {
	Species     string          `json:"species" binding:"required"`
	Breed       string          `json:"breed"`
	TagID       string          `json:"tagId"`
	AgeMonths   int32           `json:"ageMonths"`
	WeightKg    decimal.Decimal `json:"weightKg"`
	Gender      string          `json:"gender"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

// ToAttributes converts the payload into domain attributes.
func ToAttributes(input ListingInput) listingdomain.Attributes {
	return listingdomain.Attributes{
		Species:     input.Species,
		Breed:       input.Breed,
		TagID:       input.TagID,
		AgeMonths:   input.AgeMonths,
		WeightKg:    input.WeightKg,
		Gender:      input.Gender,
		Price:       input.Price,
		Description: input.Description,
	}
}

// FromDomainListing converts a domain listing to the transport representation.
func FromDomainListing(listing *listingdomain.Listing) Listing {
	if listing == nil {
		return Listing{}
	}
	out := Listing{
		ID:          listing.ID,
		FarmerID:    listing.FarmerID,
		Species:     listing.Species,
		Breed:       listing.Breed,
		TagID:       listing.TagID,
		AgeMonths:   listing.AgeMonths,
		Gender:      listing.Gender,
		Price:       listing.Price.StringFixed(2),
		Description: listing.Description,
		IsForSale:   listing.IsForSale,
		Status:      string(listing.Status),
		PhotoURLs:   append([]string{}, listing.PhotoURLs...),
		ListedAt:    listing.ListedAt,
	}
	if !listing.WeightKg.IsZero() {
		out.WeightKg = listing.WeightKg.String()
	}
	return out
}

// FromDomainListings converts a slice of listings.
func FromDomainListings(listings []*listingdomain.Listing) []Listing {
	out := make([]Listing, 0, len(listings))
	for _, listing := range listings {
		out = append(out, FromDomainListing(listing))
	}
	return out
}

// FilterEcho repeats the search criteria back to the client.
type FilterEcho struct {
	Species            string `json:"species,omitempty"`
	MaxPrice           string `json:"maxPrice,omitempty"`
	IncludeUnavailable bool   `json:"includeUnavailable,omitempty"`
}

// Collection is a marketplace search result.
type Collection struct {
	Filter   FilterEcho `json:"filter"`
	Listings []Listing  `json:"listings"`
}

// PriceChange is the payload for repricing a listing.
type PriceChange struct {
	Price decimal.Decimal `json:"price"`
}

// Photo is the payload for attaching a photo URL.
type Photo struct {
	URL string `json:"url" binding:"required"`
}

// FromDomainCollection pairs the result with the filter that produced it.
func FromDomainCollection(filter listingdomain.Filter, listings []*listingdomain.Listing) Collection {
	echo := FilterEcho{Species: filter.Species, IncludeUnavailable: filter.IncludeUnavailable}
	if filter.MaxPrice != nil {
		echo.MaxPrice = filter.MaxPrice.String()
	}
	return Collection{Filter: echo, Listings: FromDomainListings(listings)}
}
