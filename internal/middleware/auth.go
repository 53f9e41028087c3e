package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const HeaderAPIKey = "x-api-key"

// RequireAPIKey guards a route group with the shared secret the browser
// stores after login. An unset secret rejects everything rather than
// opening the API up.
func RequireAPIKey(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" || c.Get(HeaderAPIKey) != secret {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}
