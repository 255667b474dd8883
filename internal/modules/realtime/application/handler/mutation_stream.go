package handler

import (
	"context"
	"strings"

	"roloApp/internal/modules/realtime/application/port"
	"roloApp/internal/modules/realtime/application/usecase"
	"roloApp/internal/modules/realtime/domain"
)

// MutationStreamHandler forwards externally produced mutation events for one
// entity kind into the broadcaster. Unknown actions are dropped so sibling
// services cannot push arbitrary event names to clients.
type MutationStreamHandler struct {
	entity         string
	brokerTopic    string
	allowedActions map[string]struct{}
	publishUC      *usecase.PublishUseCase
}

func NewMutationStreamHandler(entity, brokerTopic string, publishUC *usecase.PublishUseCase) *MutationStreamHandler {
	return &MutationStreamHandler{
		entity:      strings.TrimSpace(strings.ToLower(entity)),
		brokerTopic: brokerTopic,
		allowedActions: map[string]struct{}{
			domain.ActionNew:    {},
			domain.ActionUpdate: {},
			domain.ActionDelete: {},
		},
		publishUC: publishUC,
	}
}

func (h *MutationStreamHandler) Topic() string { return h.brokerTopic }

func (h *MutationStreamHandler) Handle(ctx context.Context, evt *domain.Event) error {
	if evt == nil {
		return nil
	}
	if _, ok := h.allowedActions[strings.ToLower(evt.Action)]; !ok {
		return nil
	}
	if evt.Entity == "" {
		evt.Entity = h.entity
	}
	if evt.Room == "" {
		evt.Room = domain.RoomFor(evt.Entity)
	}
	if evt.Event == "" {
		evt.Event = domain.EventName(evt.Action, evt.Entity)
	}
	h.publishUC.Execute(ctx, evt)
	return nil
}

var _ port.EventHandler = (*MutationStreamHandler)(nil)
