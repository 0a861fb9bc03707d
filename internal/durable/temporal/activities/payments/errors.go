package payments

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	lifecycleapp "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/application"
)

var errorKinds = []struct {
	name string
	kind error
}{
	{"NotFound", lifecycleapp.ErrNotFound},
	{"Forbidden", lifecycleapp.ErrForbidden},
	{"InvalidState", lifecycleapp.ErrInvalidState},
	{"Conflict", lifecycleapp.ErrConflict},
	{"InvalidInput", lifecycleapp.ErrInvalidInput},
	{"PaymentDeclined", lifecycleapp.ErrPaymentDeclined},
	{"Unauthenticated", lifecycleapp.ErrUnauthenticated},
}

// EncodeError turns lifecycle taxonomy errors into non-retryable Temporal
// application errors. Other errors are returned unchanged and stay retryable.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			return temporal.NewNonRetryableApplicationError(err.Error(), k.name, err)
		}
	}
	return err
}

// DecodeError restores the lifecycle taxonomy from a workflow or activity error.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	for _, k := range errorKinds {
		if appErr.Type() == k.name {
			return fmt.Errorf("%w: %s", k.kind, appErr.Message())
		}
	}
	return err
}
