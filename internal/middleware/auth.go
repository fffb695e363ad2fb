package middleware

import (
	"errors"
	"log"
	"strings"

	"blogapi/internal/apperrors"
	"blogapi/internal/models"
	"blogapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthRequired for downstream handlers.
const (
	CurrentUserKey = "currentUser"
	UserIDKey      = "user_id"
)

// AuthRequired is a Fiber middleware that gates protected routes. It
// extracts the bearer token, verifies it, resolves the user, and stores the
// identity in the request context. It never executes business logic.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := BearerToken(c.Get("Authorization"))
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Access denied. No token provided.",
			})
		}

		userID, err := authService.VerifyToken(tokenString)
		if err != nil {
			log.Printf("Token verification failed: %v", err)
			if errors.Is(err, services.ErrTokenExpired) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Token expired.",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token.",
			})
		}

		user, err := authService.GetUserByID(userID)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindUserNotFound {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid token. User not found.",
				})
			}
			log.Printf("Failed to resolve user %s: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Server error",
			})
		}

		c.Locals(CurrentUserKey, user)
		c.Locals(UserIDKey, user.ID)

		return c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. A missing or malformed header yields an empty string.
func BearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// CurrentUser returns the identity stored by AuthRequired.
func CurrentUser(c *fiber.Ctx) (*models.PublicUser, bool) {
	user, ok := c.Locals(CurrentUserKey).(*models.PublicUser)
	return user, ok
}
