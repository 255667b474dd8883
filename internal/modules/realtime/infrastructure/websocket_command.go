package infrastructure

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

// Command is a client-to-server frame: join or leave a room, or ping.
type Command struct {
	Action  string          `json:"action"`
	Room    string          `json:"room,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CommandHandler func(client *Client, cmd Command)

type CommandProcessor struct {
	hub      *Hub
	handlers map[string]CommandHandler
}

func NewCommandProcessor(hub *Hub) *CommandProcessor {
	p := &CommandProcessor{
		hub:      hub,
		handlers: make(map[string]CommandHandler),
	}
	p.Register("subscribe", p.handleSubscribe)
	p.Register("join", p.handleSubscribe)
	p.Register("unsubscribe", p.handleUnsubscribe)
	p.Register("leave", p.handleUnsubscribe)
	p.Register("ping", p.handlePing)
	return p
}

func (p *CommandProcessor) Register(action string, handler CommandHandler) {
	key := normalizeAction(action)
	if key == "" || handler == nil {
		return
	}
	p.handlers[key] = handler
}

func (p *CommandProcessor) Process(client *Client, cmd Command) {
	if client == nil {
		return
	}
	action := normalizeAction(cmd.Action)
	if action == "" {
		return
	}
	handler, ok := p.handlers[action]
	if !ok {
		slog.Debug("ws command ignored", slog.String("sessionId", client.ID()), slog.String("action", action))
		return
	}
	handler(client, cmd)
}

func (p *CommandProcessor) handleSubscribe(client *Client, cmd Command) {
	room := strings.TrimSpace(cmd.Room)
	if room == "" {
		return
	}
	p.hub.Join(client.ID(), room)
	slog.Debug("ws subscribe", slog.String("sessionId", client.ID()), slog.String("room", room))
}

func (p *CommandProcessor) handleUnsubscribe(client *Client, cmd Command) {
	room := strings.TrimSpace(cmd.Room)
	if room == "" {
		return
	}
	p.hub.Leave(client.ID(), room)
	slog.Debug("ws unsubscribe", slog.String("sessionId", client.ID()), slog.String("room", room))
}

func (p *CommandProcessor) handlePing(client *Client, _ Command) {
	ack, err := json.Marshal(map[string]any{
		"event":     "pong",
		"entity":    "system",
		"timestamp": time.Now().UTC(),
	})
	if err != nil {
		return
	}
	_ = client.Deliver(ack)
}

func normalizeAction(action string) string {
	return strings.ToLower(strings.TrimSpace(action))
}
