package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade ensures that requests to WebSocket endpoints are valid WebSocket connection attempts.
// When param is not empty the route parameter of that name must be present too.
func WebSocketUpgrade(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		if param != "" && c.Params(param) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": param + " is required",
			})
		}

		// Set by EnsurePlayerID
		if c.Locals("playerID") == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "player ID is required",
			})
		}

		return c.Next()
	}
}
