package deepface

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider"
)

// labels maps DeepFace's emotion keys onto the gallery categories
var labels = map[string]domain.Emotion{
	"angry":    domain.EmotionAnger,
	"disgust":  domain.EmotionDisgust,
	"fear":     domain.EmotionFear,
	"happy":    domain.EmotionHappy,
	"sad":      domain.EmotionSad,
	"surprise": domain.EmotionSurprise,
	"neutral":  domain.EmotionNeutral,
}

// Provider implements provider.EmotionClassifier using the DeepFace API.
// The pose vector is ignored; DeepFace classifies from pixels.
type Provider struct {
	client *Client
}

var _ provider.EmotionClassifier = (*Provider)(nil)

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// Classify returns the emotion of the largest face DeepFace finds.
func (p *Provider) Classify(ctx context.Context, image []byte, _ []float64) (domain.Emotion, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Analyze(ctx, imageBase64)
	if err != nil {
		return 0, fmt.Errorf("analyze emotion: %w", err)
	}
	if len(resp.Results) == 0 {
		return 0, fmt.Errorf("%w: %w", provider.ErrNoFaceDetected, ErrNoFaceInResponse)
	}

	best := resp.Results[0]
	for _, r := range resp.Results[1:] {
		if r.Region.W*r.Region.H > best.Region.W*best.Region.H {
			best = r
		}
	}

	return dominant(best)
}

// dominant prefers the server's own verdict and falls back to the highest score.
func dominant(r AnalyzeResult) (domain.Emotion, error) {
	if r.DominantEmotion != "" {
		e, ok := labels[r.DominantEmotion]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownEmotion, r.DominantEmotion)
		}
		return e, nil
	}

	var (
		bestLabel string
		bestScore = -1.0
	)
	for _, label := range []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"} {
		if score, ok := r.Emotion[label]; ok && score > bestScore {
			bestLabel, bestScore = label, score
		}
	}
	if bestLabel == "" {
		return 0, fmt.Errorf("%w: empty emotion scores", ErrInvalidResponse)
	}
	return labels[bestLabel], nil
}
