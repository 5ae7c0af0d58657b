package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// EnsurePlayerID reads the caller's identity from the X-Player-ID header or
// the playerId query and stores it in Locals("playerID"). The optional
// display name comes from X-Player-Name or the name query.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Check if playerID is already set
		if c.Locals("playerID") != nil {
			return c.Next()
		}

		// Check header first
		playerID := c.Get("X-Player-ID")
		if playerID == "" {
			playerID = c.Query("playerId")
		}
		if playerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}

		name := c.Get("X-Player-Name")
		if name == "" {
			name = c.Query("name")
		}

		// Header and query values alias fasthttp's request buffer, which is
		// reused once the handler returns. The IDs outlive the request.
		c.Locals("playerID", utils.CopyString(playerID))
		c.Locals("playerName", utils.CopyString(name))
		return c.Next()
	}
}

// PlayerFromCtx returns the identity stored by EnsurePlayerID.
func PlayerFromCtx(c *fiber.Ctx) (id, name string) {
	id, _ = c.Locals("playerID").(string)
	name, _ = c.Locals("playerName").(string)
	return id, name
}
