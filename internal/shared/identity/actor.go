// Package identity models the authenticated principal acting on the marketplace.
package identity

import (
	"context"
	"errors"
	"fmt"
)

// Role distinguishes the two sides of the marketplace.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

var (
	// ErrUnauthenticated signals that no actor could be resolved for the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnknownRole     = errors.New("unknown role")
)

// Actor is either a Farmer or a Buyer. The set is closed: callers switch on
// the concrete type.
type Actor interface {
	ActorID() int64
	Role() Role
	actor()
}

// Farmer owns listings and decides inquiries.
type Farmer struct {
	AccountID int64
}

func (f Farmer) ActorID() int64 { return f.AccountID }
func (Farmer) Role() Role       { return RoleFarmer }
func (Farmer) actor()           {}

// Buyer places and pays for orders.
type Buyer struct {
	AccountID int64
}

func (b Buyer) ActorID() int64 { return b.AccountID }
func (Buyer) Role() Role       { return RoleBuyer }
func (Buyer) actor()           {}

// New builds the actor variant matching role.
func New(accountID int64, role Role) (Actor, error) {
	switch role {
	case RoleFarmer:
		return Farmer{AccountID: accountID}, nil
	case RoleBuyer:
		return Buyer{AccountID: accountID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	switch role {
	case RoleFarmer, RoleBuyer:
		return role, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}

type actorKey struct{}

// WithActor stores the authenticated actor on the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// FromContext returns the actor attached by WithActor.
func FromContext(ctx context.Context) (Actor, error) {
	if ctx == nil {
		return nil, ErrUnauthenticated
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || actor == nil {
		return nil, ErrUnauthenticated
	}
	return actor, nil
}
