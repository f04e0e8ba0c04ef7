package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/pea/internal/api/protocol"
	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
)

// Auth rejects requests whose Authentication header does not equal the
// shared secret. It runs before any protocol decoding.
func Auth(secret string) fiber.Handler {
	expected := []byte(secret)
	return func(c *fiber.Ctx) error {
		got := c.Get(protocol.HeaderAuthentication)
		if got == "" || len(expected) == 0 {
			return domain.ErrUnauthorized
		}

		// ConstantTimeCompare returns early on length mismatch; that only
		// leaks the secret's length.
		if subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
			return domain.ErrUnauthorized
		}

		return c.Next()
	}
}
