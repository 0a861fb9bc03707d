package marketserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	inquiryhttpmapper "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/adapters/http/mapper"
	inquiryports "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/ports"
	lifecyclehttpmapper "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/http/mapper"
	lifecycleports "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	orderhttpmapper "github.com/Apurer/livestock-marketplace/internal/domains/orders/adapters/http/mapper"
)

// OrderAPI is the buyer side of the lifecycle.
type OrderAPI struct {
	lifecycle lifecycleports.Service
	inquiries inquiryports.Service
}

// NewOrderAPI wires the lifecycle engine and the read-side gateway.
func NewOrderAPI(lifecycle lifecycleports.Service, inquiries inquiryports.Service) OrderAPI {
	return OrderAPI{lifecycle: lifecycle, inquiries: inquiries}
}

// Post /v1/listings/:listingId/orders
// Inquire about a listing. A second call while the first order is pending
// returns that order with a fresh payment reference.
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	listingID, ok := parseIDParam(c, "listingId")
	if !ok {
		return
	}
	var payload lifecyclehttpmapper.OrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondBadRequest(c, err)
			return
		}
	}
	checkout, err := api.lifecycle.PlaceOrder(c.Request.Context(), lifecycleports.PlaceOrderInput{
		Actor:     actor,
		ListingID: listingID,
		Quantity:  payload.Quantity,
		Note:      payload.Note,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	status := http.StatusCreated
	if checkout.Existing {
		status = http.StatusOK
	}
	c.JSON(status, lifecyclehttpmapper.FromCheckout(checkout))
}

// Get /v1/orders
// Buyer order history, newest first
func (api *OrderAPI) BuyerHistory(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orders, err := api.inquiries.BuyerHistory(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

// Get /v1/orders/:orderId
// Order detail for its buyer
func (api *OrderAPI) OrderDetail(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	detail, err := api.inquiries.OrderDetail(c.Request.Context(), actor, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, inquiryhttpmapper.FromOrderDetail(detail))
}

// Post /v1/orders/:orderId/payment
// Retry payment. Conflict means the listing went to another buyer and this
// order is now cancelled.
func (api *OrderAPI) RetryPayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	checkout, err := api.lifecycle.RetryPayment(c.Request.Context(), actor, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lifecyclehttpmapper.FromCheckout(checkout))
}
