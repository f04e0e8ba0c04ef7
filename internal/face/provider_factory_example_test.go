package face_test

import (
	"context"
	"fmt"
	"log"

	"github.com/saturnino-fabrica-de-software/pea/internal/config"
	"github.com/saturnino-fabrica-de-software/pea/internal/face"
)

// ExampleNewModels demonstrates wiring the deterministic mock models
func ExampleNewModels() {
	ctx := context.Background()

	cfg := &config.Config{
		ModelProvider: "mock",
	}

	models, err := face.NewModels(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create models: %v", err)
	}

	fmt.Printf("detector=%T classifier=%T renderer=%T\n", models.Detector, models.Classifier, models.Renderer)
	// Output: detector=*mock.Provider classifier=*mock.Provider renderer=*mock.Provider
}

// ExampleNewModels_rekognition demonstrates mixing backends per role
func ExampleNewModels_rekognition() {
	ctx := context.Background()

	// Landmarks and styles come from the model server, emotions from AWS.
	// Requires AWS credentials via the SDK credential chain.
	cfg := &config.Config{
		ModelProvider:      "modelserver",
		ModelServerURL:     "http://localhost:5006",
		ClassifierProvider: "rekognition",
		AWSRegion:          "us-east-1",
	}

	models, err := face.NewModels(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create models: %v", err)
	}

	emotion, err := models.Classifier.Classify(ctx, []byte("..."), nil)
	if err != nil {
		log.Fatalf("failed to classify: %v", err)
	}

	fmt.Println("emotion:", emotion)
}
