package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"roloApp/internal/modules/realtime/infrastructure"
)

// PollHandlers is the polling fallback for clients that cannot hold a
// websocket. Create a session, drain it periodically, delete it when done.
type PollHandlers struct {
	manager      *infrastructure.PollManager
	defaultRooms []string
	wait         time.Duration
}

func NewPollHandlers(manager *infrastructure.PollManager, defaultRooms []string, wait time.Duration) *PollHandlers {
	if wait <= 0 {
		wait = 25 * time.Second
	}
	return &PollHandlers{manager: manager, defaultRooms: defaultRooms, wait: wait}
}

type createPollRequest struct {
	Rooms []string `json:"rooms"`
}

type createPollResponse struct {
	SessionID string   `json:"sessionId"`
	Rooms     []string `json:"rooms"`
}

type drainPollResponse struct {
	Events []json.RawMessage `json:"events"`
}

// Create opens a poll session joined to the requested rooms (default set when
// none are given).
func (h *PollHandlers) Create(c echo.Context) error {
	var req createPollRequest
	if err := c.Bind(&req); err != nil && err != echo.ErrUnsupportedMediaType {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	rooms := normalizeRooms(req.Rooms, h.defaultRooms)
	s := h.manager.Create(rooms)
	return c.JSON(http.StatusCreated, createPollResponse{SessionID: s.ID(), Rooms: rooms})
}

// Drain long-polls for events. Returns 404 once the session expired or closed,
// telling the client to start over with a fresh session.
func (h *PollHandlers) Drain(c echo.Context) error {
	events, err := h.manager.Drain(c.Request().Context(), c.Param("id"), h.wait)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "session gone")
	}
	if events == nil {
		events = []json.RawMessage{}
	}
	return c.JSON(http.StatusOK, drainPollResponse{Events: events})
}

// Close disconnects the poll session.
func (h *PollHandlers) Close(c echo.Context) error {
	h.manager.Close(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}
