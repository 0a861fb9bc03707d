package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated an order invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrForbidden signals the order belongs to another buyer.
	ErrForbidden = errors.New("forbidden")
	// ErrListingUnavailable signals a line referenced a listing that is not for sale.
	ErrListingUnavailable = errors.New("listing not available")
	ErrNotFound           = ports.ErrNotFound
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotOwner):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case errors.Is(err, domain.ErrInvalidBuyer),
		errors.Is(err, domain.ErrInvalidListing),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidUnitPrice),
		errors.Is(err, domain.ErrNoLines),
		errors.Is(err, domain.ErrInvalidStatus):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
