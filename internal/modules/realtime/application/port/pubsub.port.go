package port

import (
	"context"

	"roloApp/internal/modules/realtime/domain"
)

// Broadcaster delivers an event to every current member of its room.
// Delivery is best effort: failures are logged, never retried, and never
// surfaced to the mutation path.
type Broadcaster interface {
	Broadcast(ctx context.Context, evt *domain.Event)
}

// EventHandler consumes externally produced mutation events for one broker topic.
type EventHandler interface {
	Topic() string
	Handle(ctx context.Context, evt *domain.Event) error
}
