package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/pea/internal/api/protocol"
	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
)

// ErrorHandler answers failures with an empty body; the status code and the
// Error-Code header carry the failure.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// Check if it's a Fiber error
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return fail(c, fiberErr.Code, "HTTP_ERROR")
		}

		// Check if it's our AppError
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			if appErr.StatusCode >= 500 {
				logger.Error("internal error",
					slog.String("code", appErr.Code),
					slog.String("message", appErr.Message),
					slog.Any("error", appErr.Err),
					slog.String("request_id", requestID(c)),
				)
			}

			return fail(c, appErr.StatusCode, appErr.Code)
		}

		// Unknown error - log and return generic code
		logger.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Path()),
			slog.String("request_id", requestID(c)),
		)

		return fail(c, fiber.StatusInternalServerError, domain.ErrInternal.Code)
	}
}

func fail(c *fiber.Ctx, status int, code string) error {
	c.Response().ResetBody()
	c.Response().Header.Del(fiber.HeaderContentType)
	c.Set(protocol.HeaderErrorCode, code)
	c.Status(status)
	return nil
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
