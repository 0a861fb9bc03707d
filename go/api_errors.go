package marketserver

import (
	"github.com/gin-gonic/gin"

	accountsapp "github.com/Apurer/livestock-marketplace/internal/domains/accounts/application"
	inquiriesapp "github.com/Apurer/livestock-marketplace/internal/domains/inquiries/application"
	lifecycleapp "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/application"
	listingsapp "github.com/Apurer/livestock-marketplace/internal/domains/listings/application"
	apierrors "github.com/Apurer/livestock-marketplace/internal/shared/errors"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

// MarketplacePath is where a Conflict response sends the client back to.
const MarketplacePath = "/v1/listings"

// problems maps every service error the handlers can see. A lost listing is
// the only Conflict that redirects; the other sentinels map one to one.
var problems = apierrors.NewChainedResponder("",
	apierrors.ConflictRedirect(lifecycleapp.ErrConflict, MarketplacePath),
	apierrors.Sentinels(
		apierrors.When(identity.ErrUnauthenticated, apierrors.ErrUnauthorized),
		apierrors.When(identity.ErrUnknownRole, apierrors.ErrValidation),

		apierrors.When(lifecycleapp.ErrNotFound, apierrors.ErrNotFound),
		apierrors.When(lifecycleapp.ErrForbidden, apierrors.ErrForbidden),
		apierrors.When(lifecycleapp.ErrInvalidState, apierrors.ErrInvalidState),
		apierrors.When(lifecycleapp.ErrPaymentDeclined, apierrors.ErrPaymentDeclined),
		apierrors.When(lifecycleapp.ErrInvalidInput, apierrors.ErrValidation),

		apierrors.When(listingsapp.ErrNotFound, apierrors.ErrNotFound),
		apierrors.When(listingsapp.ErrForbidden, apierrors.ErrForbidden),
		apierrors.When(listingsapp.ErrInvalidInput, apierrors.ErrValidation),

		apierrors.When(inquiriesapp.ErrNotFound, apierrors.ErrNotFound),
		apierrors.When(inquiriesapp.ErrForbidden, apierrors.ErrForbidden),

		apierrors.When(accountsapp.ErrAuthentication, apierrors.ErrUnauthorized),
		apierrors.When(accountsapp.ErrConflict, apierrors.ErrConflict),
		apierrors.When(accountsapp.ErrInvalidInput, apierrors.ErrValidation),
		apierrors.When(accountsapp.ErrNotFound, apierrors.ErrNotFound),
	),
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	problems.Respond(c, problem)
}

// respondServiceError translates an application error into RFC 7807.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problems.RespondError(c, err)
}

func respondBadRequest(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}
