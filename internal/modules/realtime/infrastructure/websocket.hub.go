package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"roloApp/internal/modules/realtime/domain"
)

// ErrChannelClosed reports a delivery attempt against a connection that is
// gone or can no longer keep up. Callers treat it as non-fatal: live update is
// a best-effort channel, not guaranteed delivery.
var ErrChannelClosed = errors.New("channel closed")

// Session is one live client channel, independent of transport. Websocket
// clients and long-poll sessions both implement it.
type Session interface {
	ID() string
	// Deliver enqueues an encoded event, preserving per-session FIFO order.
	// It must not block; a full queue returns ErrChannelClosed.
	Deliver(data []byte) error
	// Close releases the underlying transport. Idempotent.
	Close()
}

// Hub owns the session registry and the room membership table. It is the only
// cross-request shared mutable state in the realtime core; all mutation goes
// through its methods under the lock.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]Session
	rooms    map[string]map[string]struct{}
	joined   map[string]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]Session),
		rooms:    make(map[string]map[string]struct{}),
		joined:   make(map[string]map[string]struct{}),
	}
}

// Register adds the session to the registry. A stale session under the same
// id is detached first.
func (h *Hub) Register(s Session) {
	if s == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.sessions[s.ID()]; ok && existing != s {
		h.detachLocked(s.ID())
	}
	h.sessions[s.ID()] = s
	h.joined[s.ID()] = make(map[string]struct{})
	slog.Info("session registered", slog.String("sessionId", s.ID()))
}

// Unregister removes the session from every room it belongs to and closes it.
// The removal is atomic with respect to broadcasts: once this returns, no
// later broadcast can include the session in its member snapshot.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(id)
}

func (h *Hub) detachLocked(id string) {
	s, ok := h.sessions[id]
	if !ok {
		return
	}
	for room := range h.joined[id] {
		h.removeMemberLocked(room, id)
	}
	delete(h.joined, id)
	delete(h.sessions, id)
	s.Close()
	slog.Info("session detached", slog.String("sessionId", id))
}

func (h *Hub) removeMemberLocked(room, id string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Join adds the session to a room. Joining twice is idempotent; joining with
// an unknown session id is ignored.
func (h *Hub) Join(id, room string) {
	room = strings.TrimSpace(room)
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[id]; !ok {
		slog.Debug("join ignored for unknown session", slog.String("sessionId", id), slog.String("room", room))
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]struct{})
	}
	h.rooms[room][id] = struct{}{}
	h.joined[id][room] = struct{}{}
}

// Leave removes the session from a room. Leaving a room the session is not in
// is a no-op.
func (h *Hub) Leave(id, room string) {
	room = strings.TrimSpace(room)
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeMemberLocked(room, id)
	if joined, ok := h.joined[id]; ok {
		delete(joined, room)
	}
}

// MembersOf returns the sorted member ids of a room.
func (h *Hub) MembersOf(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := make([]string, 0, len(h.rooms[room]))
	for id := range h.rooms[room] {
		members = append(members, id)
	}
	sort.Strings(members)
	return members
}

// Rooms returns the sorted room names the session currently belongs to.
func (h *Hub) Rooms(id string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rooms := make([]string, 0, len(h.joined[id]))
	for room := range h.joined[id] {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

// Send delivers an event to a single session, best effort.
func (h *Hub) Send(id string, evt *domain.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	h.mu.RLock()
	s, ok := h.sessions[id]
	h.mu.RUnlock()
	if !ok {
		return ErrChannelClosed
	}
	if err := s.Deliver(data); err != nil {
		go h.Unregister(id)
		return err
	}
	return nil
}

// Broadcast delivers the event to every member of its room at the moment of
// the call. Membership changes during delivery do not affect this broadcast.
// Sessions that cannot accept the event are detached, never waited on.
func (h *Hub) Broadcast(_ context.Context, evt *domain.Event) {
	if evt == nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		slog.Error("broadcast marshal error", slog.String("event", evt.Event), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	targets := make([]Session, 0, len(h.rooms[evt.Room]))
	for id := range h.rooms[evt.Room] {
		if s, ok := h.sessions[id]; ok {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if err := s.Deliver(data); err != nil {
			slog.Warn("broadcast delivery failed",
				slog.String("event", evt.Event),
				slog.String("room", evt.Room),
				slog.String("sessionId", s.ID()),
				slog.Any("error", err))
			go h.Unregister(s.ID())
		}
	}
	slog.Debug("broadcast delivered", slog.String("event", evt.Event), slog.String("room", evt.Room), slog.Int("targets", len(targets)))
}
