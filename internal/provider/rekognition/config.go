package rekognition

// Config holds configuration for the AWS Rekognition emotion classifier
type Config struct {
	// Region is the AWS region where Rekognition service will be used (e.g., "us-east-1")
	Region string

	// MinConfidence discards emotions Rekognition is less sure about (0-100).
	// When nothing clears it the face is classified as neutral.
	MinConfidence float32
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:        "us-east-1",
		MinConfidence: 20,
	}
}
