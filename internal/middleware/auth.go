package middleware

import (
	"errors"
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mannaworks/manna-server/internal/auth"
	"github.com/mannaworks/manna-server/internal/config"
	"github.com/mannaworks/manna-server/internal/dto"
)

// Protected guards a route with bearer-token verification. The literal
// strings "null" and "undefined" (a missing-token client bug) are rejected
// before any signature work.
func Protected(cfg *config.Config) fiber.Handler {
	guard := jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		Claims:     &auth.Claims{},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})

	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer"))
		if raw == "null" || raw == "undefined" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: no token supplied",
			})
		}
		return guard(c)
	}
}

// CurrentClaims extracts the verified claims Protected stored in the context.
func CurrentClaims(c *fiber.Ctx) (*auth.Claims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("no token in context")
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return claims, nil
}

// CurrentUserID extracts the authenticated user's ID from context claims.
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := CurrentClaims(c)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.Subject)
}
