package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/pea/internal/api/protocol"
)

// Logger writes one line per request. Image payloads are never logged; the
// token is the client's own timestamp and carries no image data.
func Logger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()
		if err != nil {
			// Let the error handler set the final status before it is logged.
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				c.Status(fiber.StatusInternalServerError)
			}
			err = nil
		}

		latency := time.Since(start)
		status := c.Response().StatusCode()

		// Log level based on status
		logLevel := slog.LevelInfo
		if status >= 500 {
			logLevel = slog.LevelError
		} else if status >= 400 {
			logLevel = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.String("ip", c.IP()),
			slog.String("request_id", requestID(c)),
		}
		if op := c.Get(protocol.HeaderOperation); op != "" {
			attrs = append(attrs, slog.String("operation", op))
		}
		if token := c.Get(protocol.HeaderPhotoTimestamp); token != "" {
			attrs = append(attrs, slog.String("token", token))
		}
		if code := string(c.Response().Header.Peek(protocol.HeaderErrorCode)); code != "" {
			attrs = append(attrs, slog.String("error_code", code))
		}

		logger.LogAttrs(c.Context(), logLevel, "http request", attrs...)

		return err
	}
}
