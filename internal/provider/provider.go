package provider

import (
	"context"
	"errors"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/geometry"
)

// LandmarkDetector locates the facial landmarks inside box.
type LandmarkDetector interface {
	DetectLandmarks(ctx context.Context, image []byte, box BoundingBox) (geometry.PointSet, error)
}

// EmotionClassifier assigns one of the seven categories to a face.
// pose is the centred, unit-radius landmark vector of the same face.
type EmotionClassifier interface {
	Classify(ctx context.Context, image []byte, pose []float64) (domain.Emotion, error)
}

// StyleRenderer redraws a photo in a painting style. styleIndex is 0-based.
type StyleRenderer interface {
	Render(ctx context.Context, photo []byte, styleIndex int) ([]byte, error)
}

// Models groups the collaborators the portrait service needs.
type Models struct {
	Detector   LandmarkDetector
	Classifier EmotionClassifier
	Renderer   StyleRenderer
}

func (m Models) Validate() error {
	if m.Detector == nil || m.Classifier == nil || m.Renderer == nil {
		return errors.New("detector, classifier and renderer are all required")
	}
	return nil
}

// BoundingBox is a pixel rectangle within the image.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var (
	ErrNoFaceDetected = errors.New("no face detected in image")
	ErrUnavailable    = errors.New("model service unavailable")
	ErrInvalidOutput  = errors.New("model returned invalid output")
)
