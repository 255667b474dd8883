package handler

import (
	"context"
	"sync"
	"testing"

	"roloApp/internal/modules/realtime/application/usecase"
	"roloApp/internal/modules/realtime/domain"
)

type sink struct {
	mu     sync.Mutex
	events []*domain.Event
}

func (s *sink) Broadcast(_ context.Context, evt *domain.Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

func (s *sink) all() []*domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Event(nil), s.events...)
}

func newHandler(entity string) (*MutationStreamHandler, *sink) {
	s := &sink{}
	return NewMutationStreamHandler(entity, "rolo."+entity+".events", usecase.NewPublishUseCase(s)), s
}

func TestHandle_FillsDefaultsFromEntity(t *testing.T) {
	t.Parallel()

	h, s := newHandler("post")
	err := h.Handle(context.Background(), &domain.Event{Action: "update", ResourceID: "p1"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	events := s.all()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	evt := events[0]
	if evt.Event != "update_post" || evt.Room != domain.RoomPosts || evt.Entity != "post" {
		t.Fatalf("defaults not filled: %+v", evt)
	}
}

func TestHandle_DropsUnknownActions(t *testing.T) {
	t.Parallel()

	h, s := newHandler("post")
	for _, action := range []string{"purge", "admin_reset", ""} {
		if err := h.Handle(context.Background(), &domain.Event{Action: action, ResourceID: "p1"}); err != nil {
			t.Fatalf("handle %q: %v", action, err)
		}
	}
	if err := h.Handle(context.Background(), nil); err != nil {
		t.Fatalf("handle nil: %v", err)
	}

	if events := s.all(); len(events) != 0 {
		t.Fatalf("unknown actions must be dropped, got %d events", len(events))
	}
}

func TestHandle_PreservesExplicitRoom(t *testing.T) {
	t.Parallel()

	h, s := newHandler("location")
	err := h.Handle(context.Background(), &domain.Event{
		Event:  "delete_location",
		Room:   domain.RoomLocations,
		Entity: "location",
		Action: "delete",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	events := s.all()
	if len(events) != 1 || events[0].Room != domain.RoomLocations {
		t.Fatalf("explicit fields overwritten: %+v", events)
	}
}

func TestTopic(t *testing.T) {
	t.Parallel()

	h, _ := newHandler("post")
	if h.Topic() != "rolo.post.events" {
		t.Errorf("topic = %q", h.Topic())
	}
}
