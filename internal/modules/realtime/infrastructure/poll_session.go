package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const pollQueueSize = 64

// PollSession is the polling fallback transport. It shares the hub's Session
// seam with websocket clients, so the broadcaster never knows the difference.
// A polling client has no close signal, so sessions expire after an idle TTL.
type PollSession struct {
	id        string
	queue     chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	lastSeen  time.Time
}

func newPollSession(now time.Time) *PollSession {
	return &PollSession{
		id:       uuid.NewString(),
		queue:    make(chan []byte, pollQueueSize),
		closed:   make(chan struct{}),
		lastSeen: now,
	}
}

func (s *PollSession) ID() string { return s.id }

func (s *PollSession) Deliver(data []byte) error {
	select {
	case <-s.closed:
		return ErrChannelClosed
	default:
	}
	select {
	case s.queue <- data:
		return nil
	default:
		return ErrChannelClosed
	}
}

func (s *PollSession) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *PollSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *PollSession) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// PollManager tracks long-poll sessions and evicts the ones that stopped polling.
type PollManager struct {
	hub *Hub
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*PollSession
}

func NewPollManager(hub *Hub, ttl time.Duration) *PollManager {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PollManager{
		hub:      hub,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*PollSession),
	}
}

// Create registers a new poll session and joins it to the given rooms.
func (m *PollManager) Create(rooms []string) *PollSession {
	s := newPollSession(m.now())
	m.hub.Register(s)
	for _, room := range rooms {
		m.hub.Join(s.id, room)
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	slog.Info("poll session created", slog.String("sessionId", s.id), slog.Any("rooms", rooms))
	return s
}

// Drain waits up to wait for the first queued event, then returns everything
// queued without further blocking. An unknown id yields ErrChannelClosed.
func (m *PollManager) Drain(ctx context.Context, id string, wait time.Duration) ([]json.RawMessage, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrChannelClosed
	}
	s.touch(m.now())

	var events []json.RawMessage
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case data := <-s.queue:
		events = append(events, data)
	case <-s.closed:
		return nil, ErrChannelClosed
	case <-ctx.Done():
		return events, nil
	case <-timer.C:
		return events, nil
	}

	for {
		select {
		case data := <-s.queue:
			events = append(events, data)
		default:
			s.touch(m.now())
			return events, nil
		}
	}
}

// Close disconnects the poll session and removes its room memberships.
func (m *PollManager) Close(id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		m.hub.Unregister(id)
	}
}

// Run sweeps idle sessions until the context is done.
func (m *PollManager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *PollManager) sweep() {
	now := m.now()
	var expired []string
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince(now) > m.ttl {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, id := range expired {
		m.hub.Unregister(id)
		slog.Info("poll session expired", slog.String("sessionId", id))
	}
}
