package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"policyrelay/internal/domain"
)

// ErrorHandler is Fiber's custom error handler. It maps the domain error
// taxonomy to HTTP status codes so handlers can return sentinel errors
// directly instead of constructing fiber.Error themselves.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		code, message = fiberErr.Code, fiberErr.Message
	case errors.Is(err, domain.ErrValidation):
		code, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		code, message = fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		code, message = fiber.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		code, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrThreadBusy):
		code, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrQueueUnavailable):
		code, message = fiber.StatusServiceUnavailable, err.Error()
	case errors.Is(err, domain.ErrTurnTimeout):
		code, message = fiber.StatusGatewayTimeout, err.Error()
	default:
		slog.Error("unhandled request error", "error", err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}
