package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/pea/internal/config"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider/modelserver"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider/rekognition"
)

// ProviderType defines supported model backends
type ProviderType string

const (
	// ProviderTypeModelServer is the HTTP model server hosting all three models
	ProviderTypeModelServer ProviderType = "modelserver"
	// ProviderTypeDeepFace is the DeepFace /analyze service (classifier only)
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition is AWS Rekognition DetectFaces (classifier only)
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is the deterministic in-process fake for dev/test
	ProviderTypeMock ProviderType = "mock"
)

// NewModels builds the detector, classifier and renderer from configuration.
//
// Environment variables:
//   - MODEL_PROVIDER: "modelserver" or "mock" (detector and renderer)
//   - CLASSIFIER_PROVIDER: "modelserver", "deepface", "rekognition" or "mock"
//     (default: same as MODEL_PROVIDER)
//   - MODEL_SERVER_URL, MODEL_TIMEOUT: model server connection
//   - DEEPFACE_URL: DeepFace API URL
//   - AWS_REGION: AWS region for Rekognition, credentials via the AWS SDK chain
func NewModels(ctx context.Context, cfg *config.Config) (provider.Models, error) {
	var models provider.Models

	switch ProviderType(cfg.ModelProvider) {
	case ProviderTypeModelServer, "":
		ms := createModelServerProvider(cfg)
		models.Detector, models.Renderer = ms, ms
	case ProviderTypeMock:
		m := mock.New()
		models.Detector, models.Renderer = m, m
	default:
		return models, fmt.Errorf("unknown model provider: %s (supported: %s, %s)",
			cfg.ModelProvider, ProviderTypeModelServer, ProviderTypeMock)
	}

	classifier, err := NewClassifier(ctx, cfg)
	if err != nil {
		return models, err
	}
	models.Classifier = classifier

	return models, models.Validate()
}

// NewClassifier creates the EmotionClassifier selected by cfg.Classifier()
func NewClassifier(ctx context.Context, cfg *config.Config) (provider.EmotionClassifier, error) {
	switch ProviderType(cfg.Classifier()) {
	case ProviderTypeModelServer, "":
		return createModelServerProvider(cfg), nil
	case ProviderTypeDeepFace:
		return createDeepFaceProvider(cfg), nil
	case ProviderTypeRekognition:
		return createRekognitionProvider(ctx, cfg)
	case ProviderTypeMock:
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown classifier provider: %s (supported: %s, %s, %s, %s)",
			cfg.Classifier(), ProviderTypeModelServer, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeMock)
	}
}

func createModelServerProvider(cfg *config.Config) *modelserver.Provider {
	msConfig := modelserver.DefaultConfig()
	if cfg.ModelServerURL != "" {
		msConfig.BaseURL = cfg.ModelServerURL
	}
	if cfg.ModelTimeout > 0 {
		msConfig.Timeout = cfg.ModelTimeout
	}
	return modelserver.NewProvider(msConfig)
}

// createRekognitionProvider creates an AWS Rekognition classifier instance
func createRekognitionProvider(ctx context.Context, cfg *config.Config) (provider.EmotionClassifier, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}

	prov, err := rekognition.NewProvider(ctx, rekogConfig)
	if err != nil {
		return nil, fmt.Errorf("create rekognition classifier in %s: %w", rekogConfig.Region, err)
	}

	return prov, nil
}

// createDeepFaceProvider creates a DeepFace classifier instance
func createDeepFaceProvider(cfg *config.Config) provider.EmotionClassifier {
	deepfaceConfig := deepface.DefaultConfig()
	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.ModelTimeout > 0 {
		deepfaceConfig.Timeout = cfg.ModelTimeout
	}

	return deepface.NewProvider(deepfaceConfig)
}
