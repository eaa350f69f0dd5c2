package middlewares

import (
	"errors"

	"facturation-backend/apperrors"
	"facturation-backend/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.Validation:
		return fiber.StatusBadRequest
	case apperrors.NotFound:
		return fiber.StatusNotFound
	case apperrors.Forbidden:
		return fiber.StatusForbidden
	case apperrors.InvalidTransition:
		return fiber.StatusConflict
	case apperrors.Upstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler centralizes error responses. Taxonomy errors keep their
// caller-safe message; internal causes never leak.
func ErrorHandler(c *fiber.Ctx, err error) error {
	log := logger.WithComponent("http")

	// 1) Taxonomy errors
	var ae *apperrors.Error
	if errors.As(err, &ae) {
		if ae.Kind == apperrors.Internal {
			log.Error().Err(err).Str("path", c.Path()).Msg("internal error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "erreur serveur"})
		}
		return c.Status(statusFor(ae.Kind)).JSON(fiber.Map{"message": ae.Message})
	}

	// 2) Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 3) Validation errors (400 + per-field info)
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "validation echouee",
			"errors":  out,
		})
	}

	// 4) Unknown errors (500)
	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "erreur serveur",
	})
}
