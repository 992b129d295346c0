package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mannaworks/manna-server/internal/auth"
)

// RequireRoles gates a route behind a required-role set. It must run after
// Protected. The decision is recomputed on every request from the request's
// own claims; nothing is cached across requests. The denial discloses the
// required roles, an accepted transparency trade-off.
func RequireRoles(required ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := CurrentClaims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   true,
				"message": "Unauthorized",
			})
		}

		if !auth.RolesIntersect(claims.RoleSet(), required) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":          true,
				"message":        "Insufficient permissions",
				"required_roles": required,
			})
		}
		return c.Next()
	}
}
