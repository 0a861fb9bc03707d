package marketserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	inquiryhttpmapper "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/adapters/http/mapper"
	inquiryports "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/ports"
	lifecycleports "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	orderhttpmapper "github.com/Apurer/livestock-marketplace/internal/domains/orders/adapters/http/mapper"
)

// SalesAPI is the farmer side: inquiries on their listings and the dashboard.
type SalesAPI struct {
	lifecycle lifecycleports.Service
	inquiries inquiryports.Service
}

func NewSalesAPI(lifecycle lifecycleports.Service, inquiries inquiryports.Service) SalesAPI {
	return SalesAPI{lifecycle: lifecycle, inquiries: inquiries}
}

// Get /v1/sales
// Inquiries on the caller's listings
func (api *SalesAPI) SalesQueue(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	lines, err := api.inquiries.SalesQueue(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, inquiryhttpmapper.FromSalesLines(lines))
}

// Post /v1/sales/lines/:lineId/approve
// Approve an inquiry and sell the listing to that buyer
func (api *SalesAPI) ApproveInquiry(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	lineID, ok := parseIDParam(c, "lineId")
	if !ok {
		return
	}
	order, err := api.lifecycle.ApproveInquiry(c.Request.Context(), actor, lineID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Post /v1/sales/lines/:lineId/reject
// Reject an inquiry. The listing stays on the market.
func (api *SalesAPI) RejectInquiry(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	lineID, ok := parseIDParam(c, "lineId")
	if !ok {
		return
	}
	order, err := api.lifecycle.RejectInquiry(c.Request.Context(), actor, lineID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Get /v1/dashboard
// Farmer dashboard
func (api *SalesAPI) Dashboard(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	dashboard, err := api.inquiries.Dashboard(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, inquiryhttpmapper.FromDashboard(dashboard))
}
