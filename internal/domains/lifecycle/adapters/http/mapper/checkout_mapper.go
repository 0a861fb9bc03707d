package mapper

import (
	lifecycleports "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	ordermapper "github.com/Apurer/livestock-marketplace/internal/domains/orders/adapters/http/mapper"
)

// OrderRequest is the buyer's inquiry payload.
type OrderRequest struct {
	Quantity int32  `json:"quantity"`
	Note     string `json:"note"`
}

// Checkout tells the client which payment reference to settle.
type Checkout struct {
	Order       ordermapper.Order `json:"order"`
	Reference   string            `json:"reference,omitempty"`
	Existing    bool              `json:"existing,omitempty"`
	AlreadyPaid bool              `json:"alreadyPaid,omitempty"`
}

// PaymentCallback is what the payment simulator posts back.
type PaymentCallback struct {
	Reference string `json:"reference" binding:"required"`
	Outcome   string `json:"outcome" binding:"required"`
}

// PaymentResult reports the settled order.
type PaymentResult struct {
	Order     ordermapper.Order `json:"order"`
	Duplicate bool              `json:"duplicate,omitempty"`
}

func FromCheckout(checkout *lifecycleports.Checkout) Checkout {
	if checkout == nil {
		return Checkout{}
	}
	return Checkout{
		Order:       ordermapper.FromDomainOrder(checkout.Order),
		Reference:   checkout.Reference,
		Existing:    checkout.Existing,
		AlreadyPaid: checkout.AlreadyPaid,
	}
}

func ToPaymentCallback(payload PaymentCallback) lifecycleports.PaymentCallback {
	return lifecycleports.PaymentCallback{
		Reference: payload.Reference,
		Outcome:   lifecycleports.PaymentOutcome(payload.Outcome),
	}
}

func FromPaymentResult(result *lifecycleports.PaymentResult) PaymentResult {
	if result == nil {
		return PaymentResult{}
	}
	return PaymentResult{Order: ordermapper.FromDomainOrder(result.Order), Duplicate: result.Duplicate}
}
