package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port              int           `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	Environment       string        `envconfig:"ENV" default:"development"`
	AuthSecret        string        `envconfig:"AUTH_SECRET" required:"true" validate:"required"`
	SerializeRequests bool          `envconfig:"SERIALIZE_REQUESTS" default:"false"`
	RateLimitMax      int           `envconfig:"RATE_LIMIT_MAX" default:"120" validate:"min=0"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	EventsEnabled     bool          `envconfig:"EVENTS_ENABLED" default:"true"`

	// Portrait protocol
	StoreMaxSide         int           `envconfig:"STORE_MAX_SIDE" default:"500" validate:"min=1"`
	StoreJPEGQuality     int           `envconfig:"STORE_JPEG_QUALITY" default:"90" validate:"min=1,max=100"`
	RetrieveCandidates   int           `envconfig:"RETRIEVE_CANDIDATES" default:"3" validate:"min=1"`
	SessionTTL           time.Duration `envconfig:"SESSION_TTL" default:"30m" validate:"min=0"`
	SessionSweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m" validate:"min=0"`

	// Geometry and gallery
	LayoutFile          string `envconfig:"GEOMETRY_LAYOUT_FILE"`
	GallerySource       string `envconfig:"GALLERY_SOURCE" default:"manifest" validate:"oneof=manifest postgres"`
	GalleryManifest     string `envconfig:"GALLERY_MANIFEST" default:"gallery/manifest.yaml"`
	GalleryDir          string `envconfig:"GALLERY_DIR" default:"gallery"`
	GalleryAllowMissing bool   `envconfig:"GALLERY_ALLOW_MISSING_CATEGORIES" default:"false"`
	DatabaseURL         string `envconfig:"DATABASE_URL" validate:"required_if=GallerySource postgres"`
	StyleCatalogFile    string `envconfig:"STYLE_CATALOG_FILE"`

	// Models
	ModelProvider      string        `envconfig:"MODEL_PROVIDER" default:"modelserver" validate:"oneof=modelserver mock"`
	ModelServerURL     string        `envconfig:"MODEL_SERVER_URL" default:"http://localhost:5006" validate:"url"`
	ModelTimeout       time.Duration `envconfig:"MODEL_TIMEOUT" default:"60s" validate:"min=0"`
	ClassifierProvider string        `envconfig:"CLASSIFIER_PROVIDER" validate:"omitempty,oneof=modelserver deepface rekognition mock"`
	DeepFaceURL        string        `envconfig:"DEEPFACE_URL" default:"http://localhost:5000"`
	AWSRegion          string        `envconfig:"AWS_REGION" default:"us-east-1"`

	// Discovery
	DiscoveryEnabled  bool   `envconfig:"DISCOVERY_ENABLED" default:"true"`
	DiscoveryService  string `envconfig:"DISCOVERY_SERVICE" default:"_demox._tcp"`
	DiscoveryDomain   string `envconfig:"DISCOVERY_DOMAIN" default:"local."`
	DiscoveryInstance string `envconfig:"DISCOVERY_INSTANCE" default:"server"`
	Identity          string `envconfig:"IDENTITY" default:"PEAServer"`
	AdvertiseHost     string `envconfig:"ADVERTISE_HOST"`
	PublishURL        string `envconfig:"PUBLISH_URL" validate:"omitempty,url"`
	PublishAppID      string `envconfig:"PUBLISH_APP_ID"`
	PublishAppKey     string `envconfig:"PUBLISH_APP_KEY"`

	// Logging
	LogFile   string        `envconfig:"LOG_FILE"`
	LogMaxAge time.Duration `envconfig:"LOG_MAX_AGE" default:"168h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and cross-field rules envconfig cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Classifier returns the emotion classifier backend, falling back to the model provider.
func (c *Config) Classifier() string {
	if c.ClassifierProvider == "" {
		return c.ModelProvider
	}
	return c.ClassifierProvider
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ToolConfig is what cmd/migrate and cmd/gallery need; they run without the
// server's secret.
type ToolConfig struct {
	Environment string `envconfig:"ENV" default:"development"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	LayoutFile  string `envconfig:"GEOMETRY_LAYOUT_FILE"`
}

func LoadTool() (*ToolConfig, error) {
	var cfg ToolConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
