package middleware

import (
	"sync"

	"github.com/gofiber/fiber/v2"
)

// Serialize lets one request through the rest of the chain at a time.
func Serialize() fiber.Handler {
	var mu sync.Mutex
	return func(c *fiber.Ctx) error {
		mu.Lock()
		defer mu.Unlock()
		return c.Next()
	}
}
