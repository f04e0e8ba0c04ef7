package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/pea/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/pea/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/pea/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/pea/internal/ws"
)

// maxBodySize bounds uploaded photos.
const maxBodySize = 20 * 1024 * 1024

type Dependencies struct {
	Service  handler.PortraitService
	Secret   string
	Identity string

	// RateLimitMax is requests per RateLimitWindow per client IP; zero or negative disables.
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Serialize processes one protocol request at a time.
	Serialize bool

	ReadyChecks map[string]handler.ReadyCheck

	// Events, when set, is served as an authenticated websocket feed.
	Events *ws.Hub
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(logger),
		AppName:               "PEA Server",
		BodyLimit:             maxBodySize,
		DisableStartupMessage: true,
		// Tokens outlive the request as session keys and audit fields.
		Immutable: true,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authentication,Operation,Photo-Timestamp,Style-Id",
		ExposeHeaders: "Error-Code,Image-Info,Emotion,Style-Name,Style-Id,Delete-Status",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	identity := "PEAServer"
	if r.deps != nil && r.deps.Identity != "" {
		identity = r.deps.Identity
	}
	healthHandler := handler.NewHealthHandler(identity)
	if r.deps != nil {
		for name, check := range r.deps.ReadyChecks {
			healthHandler.WithCheck(name, check)
		}
	}
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// Only configure the protocol routes if dependencies were provided
	if r.deps == nil || r.deps.Service == nil {
		return
	}

	portraits := []fiber.Handler{middleware.Auth(r.deps.Secret)}

	// Rate limiting (per client IP) after auth so unauthenticated noise is rejected first
	r.rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Max:    r.deps.RateLimitMax,
		Window: r.deps.RateLimitWindow,
	})
	portraits = append(portraits, r.rateLimiter.Handler())

	if r.deps.Serialize {
		portraits = append(portraits, middleware.Serialize())
	}

	chain := func(h fiber.Handler) []fiber.Handler {
		out := make([]fiber.Handler, 0, len(portraits)+1)
		return append(append(out, portraits...), h)
	}

	portraitHandler := handler.NewPortraitHandler(r.deps.Service, r.logger)

	r.app.Post("/", chain(portraitHandler.Handle)...)
	r.app.Delete("/", chain(portraitHandler.Delete)...)

	v1 := r.app.Group("/v1")
	v1.Post("/portraits", chain(portraitHandler.Handle)...)
	v1.Delete("/portraits", chain(portraitHandler.Delete)...)

	if r.deps.Events != nil {
		v1.Get("/events", middleware.Auth(r.deps.Secret), ws.UpgradeMiddleware(), ws.Handler(r.deps.Events))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
