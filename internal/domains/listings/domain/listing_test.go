package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validAttributes() Attributes {
	return Attributes{
		Species:  "Cattle",
		Breed:    "Angus",
		TagID:    "UK-123",
		WeightKg: decimal.NewFromInt(420),
		Price:    decimal.NewFromInt(1200),
	}
}

func TestNewListing_ForcesForSaleAndAvailable(t *testing.T) {
	listing, err := NewListing(3, validAttributes(), time.Now())
	require.NoError(t, err)
	require.True(t, listing.IsForSale)
	require.Equal(t, StatusAvailable, listing.Status)
	require.True(t, listing.IsAvailable())
}

func TestNewListing_RejectsInvalidInput(t *testing.T) {
	attrs := validAttributes()
	attrs.Price = decimal.Zero
	_, err := NewListing(3, attrs, time.Now())
	require.ErrorIs(t, err, ErrInvalidPrice)

	attrs = validAttributes()
	attrs.Species = "  "
	_, err = NewListing(3, attrs, time.Now())
	require.ErrorIs(t, err, ErrMissingSpecies)

	_, err = NewListing(0, validAttributes(), time.Now())
	require.ErrorIs(t, err, ErrInvalidFarmer)
}

func TestMarkSold_ClearsForSale(t *testing.T) {
	listing, err := NewListing(3, validAttributes(), time.Now())
	require.NoError(t, err)

	listing.MarkSold(time.Now())
	require.Equal(t, StatusSold, listing.Status)
	require.False(t, listing.IsForSale)
	require.NoError(t, listing.Validate())

	listing.IsForSale = true
	require.ErrorIs(t, listing.Validate(), ErrSoldForSale)
}

func TestFilter_Matches(t *testing.T) {
	listing, err := NewListing(3, validAttributes(), time.Now())
	require.NoError(t, err)

	cheap := decimal.NewFromInt(1000)
	require.True(t, Filter{Species: "cattle"}.Matches(listing))
	require.False(t, Filter{Species: "Goat"}.Matches(listing))
	require.False(t, Filter{MaxPrice: &cheap}.Matches(listing))

	listing.MarkSold(time.Now())
	require.False(t, Filter{}.Matches(listing))
	require.True(t, Filter{IncludeUnavailable: true}.Matches(listing))
}

func TestClone_CopiesPhotos(t *testing.T) {
	listing, err := NewListing(3, validAttributes(), time.Now())
	require.NoError(t, err)
	require.NoError(t, listing.AddPhoto("https://img/1.jpg", time.Now()))

	clone := listing.Clone()
	clone.PhotoURLs[0] = "changed"
	require.Equal(t, "https://img/1.jpg", listing.PhotoURLs[0])
}
