package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/livestock-marketplace/internal/domains/accounts/domain"
	"github.com/Apurer/livestock-marketplace/internal/domains/accounts/ports"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

var (
	// ErrInvalidInput signals the request violated an account invariant.
	ErrInvalidInput = errors.New("invalid account input")
	// ErrAuthentication wraps failed logins.
	ErrAuthentication = errors.New("authentication failed")
	// ErrConflict signals the username is already registered.
	ErrConflict        = errors.New("account conflict")
	ErrUnauthenticated = identity.ErrUnauthenticated
	ErrNotFound        = ports.ErrNotFound
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyUsername),
		errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, identity.ErrUnknownRole):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrInvalidCredentials):
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	case errors.Is(err, ports.ErrUsernameTaken):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, ports.ErrSessionNotFound):
		return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return err
}
