package infrastructure

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pingInterval  = 30 * time.Second
	pongWait      = 60 * time.Second
	writeDeadline = 5 * time.Second
	maxFrameSize  = 1 << 16
)

// Client is a websocket-backed session. A reconnecting client gets a brand-new
// id; no state survives the old connection.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	id        string
	userID    string
	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	commands  *CommandProcessor
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, buf int) *Client {
	if buf <= 0 {
		buf = 8
	}
	c := &Client{
		hub:    hub,
		conn:   conn,
		id:     uuid.NewString(),
		userID: userID,
		send:   make(chan []byte, buf),
		closed: make(chan struct{}),
	}
	c.commands = NewCommandProcessor(hub)
	return c
}

func (c *Client) ID() string     { return c.id }
func (c *Client) UserID() string { return c.userID }

// Deliver enqueues the frame for the write pump. The send channel is never
// closed, so enqueueing cannot panic; a full queue means the client is too
// slow and is reported as gone.
func (c *Client) Deliver(data []byte) error {
	select {
	case <-c.closed:
		return ErrChannelClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		slog.Warn("websocket send buffer full", slog.String("sessionId", c.id), slog.String("userId", c.userID))
		return ErrChannelClosed
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

func (c *Client) WritePump() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("websocket write error", slog.String("sessionId", c.id), slog.Any("error", err))
				c.hub.Unregister(c.id)
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				slog.Warn("websocket ping error", slog.String("sessionId", c.id), slog.Any("error", err))
				c.hub.Unregister(c.id)
				return
			}
		}
	}
}

func (c *Client) ReadPump() {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	defer c.hub.Unregister(c.id)
	for {
		var cmd Command
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read error", slog.String("sessionId", c.id), slog.String("userId", c.userID), slog.Any("error", err))
			}
			return
		}
		c.commands.Process(c, cmd)
	}
}
