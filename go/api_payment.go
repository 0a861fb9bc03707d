package marketserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	lifecyclehttpmapper "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/http/mapper"
	lifecycleports "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
)

// PaymentAPI receives payment simulator callbacks.
type PaymentAPI struct {
	settlement lifecycleports.PaymentSettlement
}

// NewPaymentAPI takes the settlement path, either a Temporal workflow or inline.
func NewPaymentAPI(settlement lifecycleports.PaymentSettlement) PaymentAPI {
	return PaymentAPI{settlement: settlement}
}

// Post /v1/payments/callback
// Payment simulator outcome for a transaction reference
func (api *PaymentAPI) PaymentCallback(c *gin.Context) {
	var payload lifecyclehttpmapper.PaymentCallback
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.settlement.Settle(c.Request.Context(), lifecyclehttpmapper.ToPaymentCallback(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lifecyclehttpmapper.FromPaymentResult(result))
}
