package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const ClientIDKey = "clientID"

// EnsureClientID reads the caller's client ID from the X-Client-ID header or the
// clientId query parameter and stores it in the request locals. Each client
// keeps its own pending selection on a board.
func EnsureClientID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(ClientIDKey) != nil {
			return c.Next()
		}

		clientID := c.Get("X-Client-ID")
		if clientID == "" {
			clientID = c.Query("clientId")
		}

		if clientID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Client ID is required. Please ensure client is properly initialized.",
			})
		}

		c.Locals(ClientIDKey, clientID)
		return c.Next()
	}
}

// ClientID returns the ID stored by EnsureClientID.
func ClientID(c *fiber.Ctx) string {
	id, _ := c.Locals(ClientIDKey).(string)
	return id
}
