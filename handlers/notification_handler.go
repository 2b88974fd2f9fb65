package handlers

import (
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/Jahir7946/Cat-store/internal/ws"
	"github.com/Jahir7946/Cat-store/utils"
)

// NotificationHandler streams order status changes to the signed-in user.
type NotificationHandler struct {
	Hub *ws.Hub
}

func NewNotificationHandler(hub *ws.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// WebSocketUpgradeMiddleware ensures the client is trying to upgrade to WebSocket
func (h *NotificationHandler) WebSocketUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler returns the websocket handler function
func (h *NotificationHandler) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID, ok := c.Locals(utils.LocalUserID).(uint)
		if !ok || userID == 0 {
			slog.Warn("order feed without authenticated user")
			c.Close()
			return
		}

		client := ws.NewClient(h.Hub, c, userID)
		if !h.Hub.Register(client) {
			c.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
