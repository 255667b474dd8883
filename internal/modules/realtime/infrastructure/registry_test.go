package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roloApp/internal/modules/realtime/domain"
)

type recordingHandler struct {
	topic  string
	events []*domain.Event
}

func (h *recordingHandler) Topic() string { return h.topic }

func (h *recordingHandler) Handle(_ context.Context, evt *domain.Event) error {
	h.events = append(h.events, evt)
	return nil
}

func TestHandlerRegistry_DispatchRoutesByTopic(t *testing.T) {
	t.Parallel()

	posts := &recordingHandler{topic: "rolo.post.events"}
	locations := &recordingHandler{topic: "rolo.location.events"}
	registry := NewHandlerRegistry()
	registry.Register(posts)
	registry.Register(locations)

	evt := postEvent(domain.ActionNew, "p1")
	require.NoError(t, registry.Dispatch(context.Background(), "rolo.post.events", evt))

	assert.Len(t, posts.events, 1)
	assert.Empty(t, locations.events)
}

func TestHandlerRegistry_UnknownTopicIgnored(t *testing.T) {
	t.Parallel()

	registry := NewHandlerRegistry()
	assert.NoError(t, registry.Dispatch(context.Background(), "unknown.topic", postEvent(domain.ActionNew, "p1")))
}
