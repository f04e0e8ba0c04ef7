package rekognition

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
)

// emotionMap folds Rekognition's emotion names onto the gallery categories.
// CALM, CONFUSED and UNKNOWN have no painting category and count as neutral.
var emotionMap = map[types.EmotionName]domain.Emotion{
	types.EmotionNameAngry:     domain.EmotionAnger,
	types.EmotionNameDisgusted: domain.EmotionDisgust,
	types.EmotionNameFear:      domain.EmotionFear,
	types.EmotionNameHappy:     domain.EmotionHappy,
	types.EmotionNameSad:       domain.EmotionSad,
	types.EmotionNameSurprised: domain.EmotionSurprise,
	types.EmotionNameCalm:      domain.EmotionNeutral,
	types.EmotionNameConfused:  domain.EmotionNeutral,
	types.EmotionNameUnknown:   domain.EmotionNeutral,
}

// Provider implements provider.EmotionClassifier using AWS Rekognition DetectFaces
type Provider struct {
	api    DetectFacesAPI
	config Config
}

// Ensure Provider implements provider.EmotionClassifier interface at compile time
var _ provider.EmotionClassifier = (*Provider)(nil)

// NewProvider creates a Rekognition classifier backed by the default AWS credential chain
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	api, err := NewAPI(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return NewProviderWithAPI(api, cfg), nil
}

// NewProviderWithAPI is used by tests and callers that already hold a client
func NewProviderWithAPI(api DetectFacesAPI, cfg Config) *Provider {
	return &Provider{api: api, config: cfg}
}

// Classify picks the most confident emotion of the largest face in the image
func (p *Provider) Classify(ctx context.Context, image []byte, _ []float64) (domain.Emotion, error) {
	if len(image) == 0 || len(image) > maxImageSize {
		return 0, fmt.Errorf("%w: image is %d bytes", ErrInvalidImage, len(image))
	}

	out, err := p.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return 0, translateError(err)
	}
	if len(out.FaceDetails) == 0 {
		return 0, provider.ErrNoFaceDetected
	}

	return p.dominant(largestFace(out.FaceDetails)), nil
}

func (p *Provider) dominant(face types.FaceDetail) domain.Emotion {
	best := domain.EmotionNeutral
	var bestConf float32 = -1
	for _, e := range face.Emotions {
		conf := aws.ToFloat32(e.Confidence)
		if conf < p.config.MinConfidence || conf <= bestConf {
			continue
		}
		if mapped, ok := emotionMap[e.Type]; ok {
			best, bestConf = mapped, conf
		}
	}
	return best
}

func largestFace(faces []types.FaceDetail) types.FaceDetail {
	best := faces[0]
	for _, f := range faces[1:] {
		if area(f) > area(best) {
			best = f
		}
	}
	return best
}

func area(f types.FaceDetail) float32 {
	if f.BoundingBox == nil {
		return 0
	}
	return aws.ToFloat32(f.BoundingBox.Width) * aws.ToFloat32(f.BoundingBox.Height)
}
