package marketserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	listinghttpmapper "github.com/Apurer/livestock-marketplace/internal/domains/listings/adapters/http/mapper"
	listingdomain "github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
	listingports "github.com/Apurer/livestock-marketplace/internal/domains/listings/ports"
	apierrors "github.com/Apurer/livestock-marketplace/internal/shared/errors"
)

// ListingAPI serves the marketplace catalogue.
type ListingAPI struct {
	service listingports.Service
}

// NewListingAPI creates a ListingAPI backed by the provided service.
func NewListingAPI(service listingports.Service) ListingAPI {
	return ListingAPI{service: service}
}

// Get /v1/listings
// Search the marketplace
func (api *ListingAPI) ListAvailable(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	listings, err := api.service.ListAvailable(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listinghttpmapper.FromDomainCollection(filter, listings))
}

// Post /v1/listings
// List an animal for sale
func (api *ListingAPI) CreateListing(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var payload listinghttpmapper.ListingInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	listing, err := api.service.CreateListing(c.Request.Context(), actor, listinghttpmapper.ToAttributes(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listinghttpmapper.FromDomainListing(listing))
}

// Get /v1/listings/:listingId
// Find listing by ID
func (api *ListingAPI) GetListing(c *gin.Context) {
	id, ok := parseIDParam(c, "listingId")
	if !ok {
		return
	}
	listing, err := api.service.GetListing(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listinghttpmapper.FromDomainListing(listing))
}

// Put /v1/listings/:listingId/price
// Change the asking price. Existing orders keep their snapshot.
func (api *ListingAPI) ChangePrice(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "listingId")
	if !ok {
		return
	}
	var payload listinghttpmapper.PriceChange
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	listing, err := api.service.ChangePrice(c.Request.Context(), actor, id, payload.Price)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listinghttpmapper.FromDomainListing(listing))
}

// Post /v1/listings/:listingId/photos
// Attach a photo URL
func (api *ListingAPI) AddPhoto(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "listingId")
	if !ok {
		return
	}
	var payload listinghttpmapper.Photo
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	listing, err := api.service.AddPhoto(c.Request.Context(), actor, id, payload.URL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listinghttpmapper.FromDomainListing(listing))
}

// Get /v1/farmer/listings
// The caller's own listings, sold ones included
func (api *ListingAPI) ListFarmerListings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	listings, err := api.service.ListByFarmer(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listinghttpmapper.FromDomainListings(listings))
}

func parseFilter(c *gin.Context) (listingdomain.Filter, error) {
	filter := listingdomain.Filter{Species: c.Query("species")}
	if raw := c.Query("maxPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, fmt.Errorf("maxPrice: %w", err)
		}
		filter.MaxPrice = &price
	}
	if raw := c.Query("includeUnavailable"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("includeUnavailable: %w", err)
		}
		filter.IncludeUnavailable = include
	}
	return filter, nil
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return 0, false
	}
	return id, true
}
