package marketserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine. Every route
// sits behind BearerAuth when an Authenticator is configured.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	group := router.Group("")
	if handleFunctions.Authenticator != nil {
		group.Use(BearerAuth(handleFunctions.Authenticator))
	}
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			group.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			group.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			group.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			group.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			group.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

type ApiHandleFunctions struct {
	// Authenticator resolves bearer tokens into actors.
	Authenticator Authenticator

	// Routes for the AccountAPI part of the API
	AccountAPI AccountAPI
	// Routes for the ListingAPI part of the API
	ListingAPI ListingAPI
	// Routes for the OrderAPI part of the API
	OrderAPI OrderAPI
	// Routes for the PaymentAPI part of the API
	PaymentAPI PaymentAPI
	// Routes for the SalesAPI part of the API
	SalesAPI SalesAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"Register",
			http.MethodPost,
			"/v1/accounts",
			handleFunctions.AccountAPI.Register,
		},
		{
			"Profile",
			http.MethodGet,
			"/v1/accounts/me",
			handleFunctions.AccountAPI.Profile,
		},
		{
			"Login",
			http.MethodPost,
			"/v1/sessions",
			handleFunctions.AccountAPI.Login,
		},
		{
			"Logout",
			http.MethodDelete,
			"/v1/sessions",
			handleFunctions.AccountAPI.Logout,
		},
		{
			"ListAvailable",
			http.MethodGet,
			"/v1/listings",
			handleFunctions.ListingAPI.ListAvailable,
		},
		{
			"CreateListing",
			http.MethodPost,
			"/v1/listings",
			handleFunctions.ListingAPI.CreateListing,
		},
		{
			"GetListing",
			http.MethodGet,
			"/v1/listings/:listingId",
			handleFunctions.ListingAPI.GetListing,
		},
		{
			"ChangePrice",
			http.MethodPut,
			"/v1/listings/:listingId/price",
			handleFunctions.ListingAPI.ChangePrice,
		},
		{
			"AddPhoto",
			http.MethodPost,
			"/v1/listings/:listingId/photos",
			handleFunctions.ListingAPI.AddPhoto,
		},
		{
			"ListFarmerListings",
			http.MethodGet,
			"/v1/farmer/listings",
			handleFunctions.ListingAPI.ListFarmerListings,
		},
		{
			"PlaceOrder",
			http.MethodPost,
			"/v1/listings/:listingId/orders",
			handleFunctions.OrderAPI.PlaceOrder,
		},
		{
			"BuyerHistory",
			http.MethodGet,
			"/v1/orders",
			handleFunctions.OrderAPI.BuyerHistory,
		},
		{
			"OrderDetail",
			http.MethodGet,
			"/v1/orders/:orderId",
			handleFunctions.OrderAPI.OrderDetail,
		},
		{
			"RetryPayment",
			http.MethodPost,
			"/v1/orders/:orderId/payment",
			handleFunctions.OrderAPI.RetryPayment,
		},
		{
			"PaymentCallback",
			http.MethodPost,
			"/v1/payments/callback",
			handleFunctions.PaymentAPI.PaymentCallback,
		},
		{
			"SalesQueue",
			http.MethodGet,
			"/v1/sales",
			handleFunctions.SalesAPI.SalesQueue,
		},
		{
			"ApproveInquiry",
			http.MethodPost,
			"/v1/sales/lines/:lineId/approve",
			handleFunctions.SalesAPI.ApproveInquiry,
		},
		{
			"RejectInquiry",
			http.MethodPost,
			"/v1/sales/lines/:lineId/reject",
			handleFunctions.SalesAPI.RejectInquiry,
		},
		{
			"Dashboard",
			http.MethodGet,
			"/v1/dashboard",
			handleFunctions.SalesAPI.Dashboard,
		},
	}
}
