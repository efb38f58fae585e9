package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the caller identity set by the auth
// gateway. Matchmaking never parses tokens itself; the gateway injects
// X-User-Email (and X-User-ID) after validating the session.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.Get("X-User-Email")
		userID := c.Get("X-User-ID")

		if email == "" {
			log.Printf("❌ [USER_CTX] X-User-Email missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-Email, request must come through the auth gateway",
			})
		}

		c.Locals("user_email", email)
		c.Locals("user_id", userID)

		return c.Next()
	}
}

// CallerEmail returns the authenticated caller's email from locals. Only
// valid behind UserContextMiddleware.
func CallerEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("user_email").(string)
	return email
}
