package middleware

import (
	"context"
	"errors"
	"strings"

	"teamtask/internal/models"
	"teamtask/internal/repository"
	"teamtask/internal/service"
	"teamtask/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const userKey = "user"

// UserFinder resolves the user id carried by a token.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  fiber.StatusUnauthorized,
	})
}

// UseToken authenticates the bearer token and stores the resolved user in
// the request locals.
func UseToken(tokens *service.TokenManager, users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "No token provided")
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return unauthorized(c, "Invalid token format")
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			logger.SecurityLogger.Warn("Rejected token", zap.String("ip", c.IP()), zap.Error(err))
			if errors.Is(err, service.ErrExpiredToken) {
				return unauthorized(c, "Token expired")
			}
			return unauthorized(c, "Invalid token")
		}

		user, err := users.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				logger.SecurityLogger.Warn("Token for unknown user", zap.Int64("user_id", claims.UserID))
				return unauthorized(c, "User not found")
			}
			return err
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// RequireAdmin must run after UseToken.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return unauthorized(c, "Not authenticated")
		}
		if !user.IsAdmin() {
			logger.SecurityLogger.Warn("Admin access denied", zap.Int64("user_id", user.ID), zap.String("path", c.Path()))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
				"success": false,
				"status":  fiber.StatusForbidden,
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
