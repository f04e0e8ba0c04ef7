package handler

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

const Version = "0.1.0"

// ReadyCheck reports whether one dependency can serve requests.
type ReadyCheck func(ctx context.Context) error

type HealthHandler struct {
	identity string
	checks   map[string]ReadyCheck
	timeout  time.Duration
}

func NewHealthHandler(identity string) *HealthHandler {
	return &HealthHandler{
		identity: identity,
		checks:   make(map[string]ReadyCheck),
		timeout:  2 * time.Second,
	}
}

// WithCheck adds a named readiness check, e.g. the model server or the database.
func (h *HealthHandler) WithCheck(name string, check ReadyCheck) *HealthHandler {
	h.checks[name] = check
	return h
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version,omitempty"`
	Identity string            `json:"identity,omitempty"`
	Checks   map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:   "ok",
		Version:  Version,
		Identity: h.identity,
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{Status: "ready"}
	status := fiber.StatusOK
	for _, name := range names {
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(names))
		}
		if err := h.checks[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "not ready"
			status = fiber.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	return c.Status(status).JSON(resp)
}
