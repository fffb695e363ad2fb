package handlers

import (
	"log"

	"blogapi/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// handleError maps a service error to an HTTP response by its kind.
// Internal errors are logged with detail and answered generically.
func handleError(c *fiber.Ctx, err error) error {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error. Please try again later.",
		})
	}
	return c.Status(statusForKind(kind)).JSON(fiber.Map{
		"error": apperrors.MessageOf(err),
	})
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindDuplicateUser:
		return fiber.StatusBadRequest
	case apperrors.KindInvalidCredentials, apperrors.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperrors.KindForbidden:
		return fiber.StatusForbidden
	// A valid token referencing a vanished user is 404 here; the access
	// guard answers 401 on its own before handlers run.
	case apperrors.KindNotFound, apperrors.KindUserNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
