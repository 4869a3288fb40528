package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"remarket/pkg/auth"
	"remarket/pkg/httperror"
)

// NewAuthMiddleware validates the bearer token on the request and stores
// the authenticated user in the request context.
func NewAuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get("Authorization"))
		if authorization == "" {
			return unauthorized(c, "Missing Authorization header")
		}

		token, ok := strings.CutPrefix(authorization, "Bearer ")
		if !ok {
			return unauthorized(c, "Authorization header must use the Bearer scheme")
		}

		claims, err := auth.ValidateToken(secret, token)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		userCtx := c.UserContext()
		if userCtx == nil {
			userCtx = context.Background()
		}

		userCtx = context.WithValue(userCtx, "UserID", claims.UserID)
		userCtx = context.WithValue(userCtx, "Username", claims.Username)

		c.SetUserContext(userCtx)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	err := httperror.Unauthorized(
		"remarket.auth.unauthorized",
		message,
		nil,
	)

	c.Set("WWW-Authenticate", "Bearer")

	return c.Status(err.Status).JSON(fiber.Map{
		"code":    err.Code,
		"message": err.Message,
	})
}
