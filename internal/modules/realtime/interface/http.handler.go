package transport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"roloApp/internal/modules/realtime/domain"
	"roloApp/internal/modules/realtime/infrastructure"
	"roloApp/internal/shared/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewWebsocketHandler exposes the live-update channel. A token is optional:
// anonymous connections receive broadcasts like the original public feed, an
// authenticated one is tagged with its user id. Every connection auto-joins
// the default room set.
func NewWebsocketHandler(
	hub *infrastructure.Hub,
	validator auth.TokenValidator,
	defaultRooms []string,
	sendBuffer int,
) echo.HandlerFunc {
	if len(defaultRooms) == 0 {
		defaultRooms = []string{domain.RoomPosts}
	}

	return func(c echo.Context) error {
		peerIP := c.RealIP()

		userID := ""
		if token := auth.ExtractToken(c.Request(), "token"); token != "" {
			claims, err := validator.Validate(token)
			if err != nil {
				slog.Warn("ws auth failed", slog.String("ip", peerIP), slog.Any("error", err))
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			userID = claims.Subject
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws upgrade failed", slog.String("ip", peerIP), slog.Any("error", err))
			return err
		}

		client := infrastructure.NewClient(hub, conn, userID, sendBuffer)
		hub.Register(client)
		for _, room := range defaultRooms {
			hub.Join(client.ID(), room)
		}

		go client.WritePump()
		go client.ReadPump()

		connected := domain.NewSystemEvent(domain.EventConnected, map[string]any{
			"sessionId": client.ID(),
			"rooms":     hub.Rooms(client.ID()),
		}, time.Now())
		if err := hub.Send(client.ID(), connected); err != nil {
			slog.Warn("ws connected event not delivered", slog.String("sessionId", client.ID()), slog.Any("error", err))
		}

		slog.Info("ws connected",
			slog.String("sessionId", client.ID()),
			slog.String("userId", userID),
			slog.String("ip", peerIP),
			slog.Any("rooms", defaultRooms))
		return nil
	}
}

func normalizeRooms(raw []string, fallback []string) []string {
	rooms := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		room := strings.ToLower(strings.TrimSpace(r))
		if room == "" {
			continue
		}
		if _, dup := seen[room]; dup {
			continue
		}
		seen[room] = struct{}{}
		rooms = append(rooms, room)
	}
	if len(rooms) == 0 {
		return fallback
	}
	return rooms
}
