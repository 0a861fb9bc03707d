package application

import (
	"errors"
	"fmt"

	listingports "github.com/Apurer/livestock-marketplace/internal/domains/listings/ports"
	orderapp "github.com/Apurer/livestock-marketplace/internal/domains/orders/application"
	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	orderports "github.com/Apurer/livestock-marketplace/internal/domains/orders/ports"
	"github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

// The lifecycle error taxonomy. Every error returned by Service wraps exactly
// one of these kinds; callers branch with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidState    = errors.New("invalid state")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
	ErrPaymentDeclined = errors.New("payment declined")
	ErrUnauthenticated = identity.ErrUnauthenticated
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrPaymentDeclined),
		errors.Is(err, ErrUnauthenticated):
		return err
	case errors.Is(err, listingports.ErrNotFound),
		errors.Is(err, orderports.ErrNotFound),
		errors.Is(err, orderdomain.ErrLineNotFound),
		errors.Is(err, ports.ErrUnknownReference):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, orderapp.ErrForbidden),
		errors.Is(err, orderdomain.ErrNotOwner):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case errors.Is(err, listingports.ErrNotAvailable),
		errors.Is(err, orderapp.ErrListingUnavailable):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, orderdomain.ErrTerminalState),
		errors.Is(err, orderdomain.ErrInvalidTransition),
		errors.Is(err, orderdomain.ErrAlreadyPaid):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	case errors.Is(err, orderapp.ErrInvalidInput):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
