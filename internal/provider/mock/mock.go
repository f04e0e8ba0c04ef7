package mock

import (
	"context"
	"crypto/sha256"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/geometry"
	"github.com/saturnino-fabrica-de-software/pea/internal/imaging"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider"
)

// minImageSize is the smallest payload treated as a photo.
const minImageSize = 100

// Provider implementa os três papéis de modelo para testes e desenvolvimento.
// Tudo é derivado do hash da imagem, então a mesma foto dá sempre o mesmo resultado.
type Provider struct {
	// Points is the number of landmarks produced per face.
	Points int
}

// New cria uma nova instância do MockProvider para o layout de 68 pontos
func New() *Provider {
	return &Provider{Points: geometry.DefaultLayout().Points}
}

var (
	_ provider.LandmarkDetector  = (*Provider)(nil)
	_ provider.EmotionClassifier = (*Provider)(nil)
	_ provider.StyleRenderer     = (*Provider)(nil)
)

// DetectLandmarks spreads the points left to right across the box with a
// hash-derived vertical wobble. x grows strictly with the point index, so no
// region of an index-ordered layout collapses.
func (p *Provider) DetectLandmarks(ctx context.Context, image []byte, box provider.BoundingBox) (geometry.PointSet, error) {
	if len(image) < minImageSize {
		return nil, provider.ErrNoFaceDetected
	}
	if box.Width <= 0 || box.Height <= 0 {
		box = provider.BoundingBox{Width: 640, Height: 480}
	}

	hash := sha256.Sum256(image)
	n := p.Points
	pts := make(geometry.PointSet, n)
	step := box.Width * 0.8 / float64(n)
	for i := range pts {
		h := float64(hash[i%len(hash)]) / 255.0
		pts[i] = geometry.Point{
			X: box.X + box.Width*0.1 + step*float64(i) + step*0.25*h,
			Y: box.Y + box.Height*(0.3+0.4*h),
		}
	}
	return pts, nil
}

// Classify escolhe a categoria pelo primeiro byte do hash
func (p *Provider) Classify(ctx context.Context, image []byte, pose []float64) (domain.Emotion, error) {
	if len(image) < minImageSize {
		return 0, provider.ErrNoFaceDetected
	}
	hash := sha256.Sum256(image)
	return domain.EmotionFromIndex(int(hash[0]) % len(domain.AllEmotions()))
}

// Render devolve a própria foto re-encodada em JPEG; estilos não alteram pixels
func (p *Provider) Render(ctx context.Context, photo []byte, styleIndex int) ([]byte, error) {
	if styleIndex < 0 {
		return nil, provider.ErrInvalidOutput
	}
	img, _, err := imaging.Decode(photo)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeJPEG(img, imaging.DefaultJPEGQuality)
}
