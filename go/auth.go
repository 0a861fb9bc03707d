package marketserver

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

const bearerPrefix = "Bearer "

// Authenticator resolves a session token into the acting farmer or buyer.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity.Actor, error)
}

// BearerAuth attaches the actor behind the Authorization header to the
// request context. Requests without a token continue anonymously; handlers
// that need an actor reject them. A token that does not resolve is a 401.
func BearerAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		actor, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondServiceError(c, err)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(identity.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// currentActor returns the authenticated actor or answers 401.
func currentActor(c *gin.Context) (identity.Actor, bool) {
	actor, err := identity.FromContext(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return actor, true
}
