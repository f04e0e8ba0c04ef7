package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/pea/internal/api"
	"github.com/saturnino-fabrica-de-software/pea/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/pea/internal/audit"
	"github.com/saturnino-fabrica-de-software/pea/internal/config"
	"github.com/saturnino-fabrica-de-software/pea/internal/database"
	"github.com/saturnino-fabrica-de-software/pea/internal/discovery"
	"github.com/saturnino-fabrica-de-software/pea/internal/face"
	"github.com/saturnino-fabrica-de-software/pea/internal/gallery"
	"github.com/saturnino-fabrica-de-software/pea/internal/geometry"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider/modelserver"
	"github.com/saturnino-fabrica-de-software/pea/internal/repository"
	"github.com/saturnino-fabrica-de-software/pea/internal/service"
	"github.com/saturnino-fabrica-de-software/pea/internal/session"
	"github.com/saturnino-fabrica-de-software/pea/internal/style"
	"github.com/saturnino-fabrica-de-software/pea/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger, logFile, err := config.SetupLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
	}
	slog.SetDefault(logger)

	logger.Info("starting PEA server",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("model_provider", cfg.ModelProvider),
		slog.String("classifier_provider", cfg.Classifier()),
		slog.String("gallery_source", cfg.GallerySource),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readyChecks := make(map[string]handler.ReadyCheck)

	// Geometry
	layout := geometry.DefaultLayout()
	if cfg.LayoutFile != "" {
		layout, err = geometry.LoadLayout(cfg.LayoutFile)
		if err != nil {
			return fmt.Errorf("failed to load layout: %w", err)
		}
	}
	normalizer, err := geometry.NewNormalizer(layout)
	if err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}

	// Gallery
	source, closeSource, err := gallerySource(ctx, cfg, normalizer, readyChecks)
	if err != nil {
		return err
	}
	defer closeSource()

	index, err := gallery.LoadIndex(ctx, source, gallery.LoadOptions{
		Dimension:    normalizer.Dimension(),
		AllowMissing: cfg.GalleryAllowMissing,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	blobs, err := gallery.NewDirBlobStore(cfg.GalleryDir)
	if err != nil {
		return fmt.Errorf("failed to open gallery dir: %w", err)
	}

	styles, err := style.LoadCatalog(cfg.StyleCatalogFile)
	if err != nil {
		return fmt.Errorf("failed to load style catalog: %w", err)
	}
	logger.Info("style catalog loaded", slog.Int("styles", styles.Len()))

	// Models
	models, err := face.NewModels(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create models: %w", err)
	}
	if ms, ok := models.Detector.(*modelserver.Provider); ok {
		readyChecks["models"] = ms.Client().Health
	}

	// Sessions and service
	sessions := session.NewStore(session.Config{
		TTL:           cfg.SessionTTL,
		SweepInterval: cfg.SessionSweepInterval,
	})
	defer sessions.Stop()

	// Operator event feed; audit events go to the log and to connected clients
	auditLogger := audit.Logger(audit.NewSlogLogger(logger))
	var events *ws.Hub
	if cfg.EventsEnabled {
		events = ws.NewHub()
		go events.Run()
		defer events.Stop()
		auditLogger = audit.NewMultiLogger(auditLogger, events)
	}

	portraitService := service.NewPortraitService(
		sessions,
		normalizer,
		index,
		blobs,
		styles,
		models,
		service.PortraitConfig{
			StoreMaxSide:     cfg.StoreMaxSide,
			StoreJPEGQuality: cfg.StoreJPEGQuality,
			Candidates:       cfg.RetrieveCandidates,
		},
	).WithAuditLogger(auditLogger).WithLogger(logger)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Service:         portraitService,
		Secret:          cfg.AuthSecret,
		Identity:        cfg.Identity,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		Serialize:       cfg.SerializeRequests,
		ReadyChecks:     readyChecks,
		Events:          events,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Publishing and discovery are best effort; the server stays reachable by address.
	announcer := advertiser(cfg, logger).Run(ctx)

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	if announcer != nil {
		announcer.Stop()
	}
	if events != nil {
		events.Stop()
	}
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	cleared := portraitService.ClearSessions(context.Background())
	logger.Info("server stopped", slog.Int("sessions_cleared", cleared))

	return nil
}

// gallerySource returns the configured source and a cleanup func.
func gallerySource(ctx context.Context, cfg *config.Config, normalizer *geometry.Normalizer, checks map[string]handler.ReadyCheck) (gallery.Source, func(), error) {
	switch cfg.GallerySource {
	case "manifest":
		return gallery.NewManifestSource(cfg.GalleryManifest, normalizer), func() {}, nil

	case "postgres":
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		pool, err := database.NewPgxPool(connectCtx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		checks["database"] = pool.Ping
		return repository.NewGalleryRepository(pool), pool.Close, nil

	default:
		return nil, nil, errors.New("unknown gallery source: " + cfg.GallerySource)
	}
}

func advertiser(cfg *config.Config, logger *slog.Logger) *discovery.Advertiser {
	var publisher *discovery.Publisher
	if cfg.PublishURL != "" {
		publisher = discovery.NewPublisher(discovery.PublisherConfig{
			URL:    cfg.PublishURL,
			AppID:  cfg.PublishAppID,
			AppKey: cfg.PublishAppKey,
		})
	}

	return discovery.NewAdvertiser(discovery.Config{
		Service:  cfg.DiscoveryService,
		Domain:   cfg.DiscoveryDomain,
		Instance: cfg.DiscoveryInstance,
		Identity: cfg.Identity,
		Host:     cfg.AdvertiseHost,
		Port:     cfg.Port,
	}, cfg.DiscoveryEnabled, publisher, logger)
}
