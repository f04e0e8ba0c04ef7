package deepface_test

import (
	"context"
	"fmt"
	"log"

	"github.com/saturnino-fabrica-de-software/pea/internal/provider/deepface"
)

func ExampleProvider_Classify() {
	config := deepface.DefaultConfig()
	classifier := deepface.NewProvider(config)

	// Image bytes (in practice, the uploaded face photo)
	var imageBytes []byte

	emotion, err := classifier.Classify(context.Background(), imageBytes, nil)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Detected emotion: %s\n", emotion)
}
