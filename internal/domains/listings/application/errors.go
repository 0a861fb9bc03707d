package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/livestock-marketplace/internal/domains/listings/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/listings/ports"
)

var (
	// ErrInvalidInput signals the request violated a listing invariant.
	ErrInvalidInput = errors.New("invalid listing input")
	// ErrForbidden signals the actor may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is surfaced when the listing does not exist.
	ErrNotFound = ports.ErrNotFound
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotOwner):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case errors.Is(err, domain.ErrInvalidFarmer),
		errors.Is(err, domain.ErrMissingSpecies),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidAge),
		errors.Is(err, domain.ErrInvalidWeight),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrSoldForSale),
		errors.Is(err, domain.ErrEmptyPhotoURL):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
