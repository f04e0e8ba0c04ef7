package modelserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/geometry"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider"
)

// Provider serves all three model roles from one model server.
type Provider struct {
	client *Client
}

var (
	_ provider.LandmarkDetector  = (*Provider)(nil)
	_ provider.EmotionClassifier = (*Provider)(nil)
	_ provider.StyleRenderer     = (*Provider)(nil)
)

func NewProvider(config Config) *Provider {
	return &Provider{client: NewClient(config)}
}

func (p *Provider) Client() *Client {
	return p.client
}

func (p *Provider) DetectLandmarks(ctx context.Context, image []byte, box provider.BoundingBox) (geometry.PointSet, error) {
	resp, err := p.client.Landmarks(ctx, LandmarksRequest{
		Img: base64.StdEncoding.EncodeToString(image),
		Box: Box{
			Left:   int(math.Round(box.X)),
			Top:    int(math.Round(box.Y)),
			Right:  int(math.Round(box.X + box.Width)),
			Bottom: int(math.Round(box.Y + box.Height)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("detect landmarks: %w", err)
	}
	if len(resp.Points) == 0 {
		return nil, provider.ErrNoFaceDetected
	}
	return geometry.PointSet(resp.Points), nil
}

func (p *Provider) Classify(ctx context.Context, image []byte, pose []float64) (domain.Emotion, error) {
	resp, err := p.client.Classify(ctx, ClassifyRequest{
		Img:  base64.StdEncoding.EncodeToString(image),
		Pose: pose,
	})
	if err != nil {
		return 0, fmt.Errorf("classify emotion: %w", err)
	}

	e, err := domain.EmotionFromIndex(resp.Index)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", provider.ErrInvalidOutput, err)
	}
	return e, nil
}

func (p *Provider) Render(ctx context.Context, photo []byte, styleIndex int) ([]byte, error) {
	resp, err := p.client.Stylize(ctx, StylizeRequest{
		Img:   base64.StdEncoding.EncodeToString(photo),
		Style: styleIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("render style %d: %w", styleIndex, err)
	}

	out, err := base64.StdEncoding.DecodeString(resp.Img)
	if err != nil {
		return nil, fmt.Errorf("%w: stylized image is not base64: %v", provider.ErrInvalidOutput, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty stylized image", provider.ErrInvalidOutput)
	}
	return out, nil
}
