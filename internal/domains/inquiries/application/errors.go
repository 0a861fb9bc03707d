package application

import (
	"errors"

	orderports "github.com/Apurer/livestock-marketplace/internal/domains/orders/ports"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

var (
	// ErrForbidden signals the actor has the wrong role or does not own the order.
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = orderports.ErrNotFound
	ErrUnauthenticated = identity.ErrUnauthenticated
)
