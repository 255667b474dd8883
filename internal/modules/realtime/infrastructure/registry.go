package infrastructure

import (
	"context"

	"roloApp/internal/modules/realtime/application/port"
	"roloApp/internal/modules/realtime/domain"
)

// HandlerRegistry routes broker events to the handler registered for their topic.
type HandlerRegistry struct {
	handlers map[string]port.EventHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]port.EventHandler)}
}

func (r *HandlerRegistry) Register(h port.EventHandler) {
	r.handlers[h.Topic()] = h
}

func (r *HandlerRegistry) Dispatch(ctx context.Context, topic string, evt *domain.Event) error {
	if handler, ok := r.handlers[topic]; ok {
		return handler.Handle(ctx, evt)
	}
	return nil
}
