package middleware

import (
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/saturnino-fabrica-de-software/pea/internal/api/protocol"
)

func TestAuth(t *testing.T) {
	tests := []struct {
		name           string
		secret         string
		header         string
		expectedStatus int
	}{
		{name: "matching secret", secret: "s3cret", header: "s3cret", expectedStatus: 200},
		{name: "missing header", secret: "s3cret", header: "", expectedStatus: 401},
		{name: "wrong secret", secret: "s3cret", header: "s3creT", expectedStatus: 401},
		{name: "prefix of secret", secret: "s3cret", header: "s3c", expectedStatus: 401},
		{name: "bearer form is not accepted", secret: "s3cret", header: "Bearer s3cret", expectedStatus: 401},
		{name: "empty configured secret rejects all", secret: "", header: "anything", expectedStatus: 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(slog.Default())})
			app.Use(Auth(tt.secret))
			app.Post("/", func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("POST", "/", nil)
			if tt.header != "" {
				req.Header.Set(protocol.HeaderAuthentication, tt.header)
			}

			resp, err := app.Test(req)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus == 401 {
				assert.Equal(t, "UNAUTHORIZED", resp.Header.Get(protocol.HeaderErrorCode))
			}
		})
	}
}
