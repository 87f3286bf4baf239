package transport

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/talentwire/pipeline-tracker/internal/domain"
)

// ErrorHandler maps domain errors onto HTTP statuses and renders a uniform
// JSON error body.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, body := classify(err)

		logFn := logger.Warn
		if code >= fiber.StatusInternalServerError {
			logFn = logger.Error
		}
		logFn("request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(body)
	}
}

func classify(err error) (int, fiber.Map) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return fiber.StatusBadRequest, fiber.Map{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiber.Map{"error": fiberErr.Message}
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, fiber.Map{"error": err.Error()}
	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrConcurrentModification):
		return fiber.StatusConflict, fiber.Map{"error": err.Error()}
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, fiber.Map{"error": err.Error()}
	case errors.Is(err, domain.ErrPersistence):
		return fiber.StatusServiceUnavailable, fiber.Map{"error": "storage unavailable"}
	}

	return fiber.StatusInternalServerError, fiber.Map{"error": err.Error()}
}
