package services

import (
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func (a *Api) WsUpgrade() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Notifications streams job events for one client. The client id comes from
// the path and may be overridden with ?clientId=.
func (a *Api) Notifications() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {

		clientId := strings.TrimSpace(conn.Query("clientId"))
		if clientId == "" {
			clientId = strings.TrimSpace(conn.Params("id"))
		}
		if clientId == "" {
			conn.WriteMessage(websocket.CloseMessage, []byte("missing clientId"))
			conn.Close()
			return
		}

		client := NewWSClient(clientId, conn)
		a.hub.Add(client)
		go client.writeLoop()

		client.readPump(func() {
			a.hub.RemoveClient(client)
		})
	})
}
