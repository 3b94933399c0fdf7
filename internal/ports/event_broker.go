package ports

import (
	"cargo-route-service/internal/domain"
	"context"
)

// Port: fan-out of plan events to interested listeners.
type EventBroker interface {
	Publish(ctx context.Context, evt domain.PlanEvent) error
	// Subscribe returns a channel of events and a function that ends the
	// subscription and closes the channel. Slow subscribers may miss events.
	Subscribe(ctx context.Context) (<-chan domain.PlanEvent, func(), error)
}
