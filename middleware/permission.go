package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safein/safein-server/models"
	"github.com/safein/safein-server/utils"
)

// RequireRole lets the request through only if the token's role is one of
// roles. It must run after Protected.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		for _, r := range roles {
			if string(r) == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "Forbidden",
			Error:   "You don't have the required role to perform this action",
		})
	}
}
