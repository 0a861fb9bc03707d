package marketserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	accounthttpmapper "github.com/Apurer/livestock-marketplace/internal/domains/accounts/adapters/http/mapper"
	accountports "github.com/Apurer/livestock-marketplace/internal/domains/accounts/ports"
	apierrors "github.com/Apurer/livestock-marketplace/internal/shared/errors"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

// AccountAPI exposes registration and sessions.
type AccountAPI struct {
	service accountports.Service
}

// NewAccountAPI wires dependencies.
func NewAccountAPI(service accountports.Service) AccountAPI {
	return AccountAPI{service: service}
}

// Post /v1/accounts
// Register a farmer or buyer
func (api *AccountAPI) Register(c *gin.Context) {
	var payload accounthttpmapper.Registration
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	role, err := identity.ParseRole(payload.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	account, err := api.service.Register(c.Request.Context(), accountports.RegisterInput{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
		Role:     role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accounthttpmapper.FromDomainAccount(account))
}

// Post /v1/sessions
// Log in and receive a bearer token
func (api *AccountAPI) Login(c *gin.Context) {
	var payload accounthttpmapper.Credentials
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	session, err := api.service.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounthttpmapper.FromDomainSession(session))
}

// Delete /v1/sessions
// Log out the current session
func (api *AccountAPI) Logout(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		respondProblem(c, apierrors.ErrUnauthorized.WithDetail("missing bearer token"))
		return
	}
	if err := api.service.Logout(c.Request.Context(), token); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/accounts/me
// Current account
func (api *AccountAPI) Profile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	account, err := api.service.Profile(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounthttpmapper.FromDomainAccount(account))
}
