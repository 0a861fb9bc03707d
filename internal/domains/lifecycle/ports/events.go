package ports

import (
	"context"

	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
)

// EventPublisher forwards committed lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...orderdomain.Event) error
}

// NoopPublisher drops events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...orderdomain.Event) error { return nil }
