package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Error is a domain error carrying the HTTP status it maps to. All service
// failures are one of the constructors below; anything else surfaces as 500.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func Validation(msg string) *Error { return &Error{Status: fiber.StatusBadRequest, Message: msg} }

// Conflict covers duplicate-email registration. The source system surfaced it
// as 400 rather than 409, and the clients depend on that.
func Conflict(msg string) *Error { return &Error{Status: fiber.StatusBadRequest, Message: msg} }

func Unauthorized(msg string) *Error { return &Error{Status: fiber.StatusUnauthorized, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Status: fiber.StatusForbidden, Message: msg} }

func NotFound(msg string) *Error { return &Error{Status: fiber.StatusNotFound, Message: msg} }

// Handler returns the central Fiber error handler. Every route funnels
// through here; responses are always {"message": ...}. Internal error detail
// is included only outside production.
func Handler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *Error
		if errors.As(err, &appErr) {
			return c.Status(appErr.Status).JSON(fiber.Map{"message": appErr.Message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		if production {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
			"error":   err.Error(),
		})
	}
}
