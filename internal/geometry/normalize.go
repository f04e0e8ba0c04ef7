package geometry

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDegenerateRegion means a region collapses to zero width after translation.
	ErrDegenerateRegion = errors.New("degenerate landmark region")
	ErrPointCount       = errors.New("landmark count does not match layout")
)

// DegenerateRegionError names the region that could not be normalized.
type DegenerateRegionError struct {
	Region string
	Reason string
}

func (e *DegenerateRegionError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrDegenerateRegion, e.Region, e.Reason)
}

func (e *DegenerateRegionError) Unwrap() error {
	return ErrDegenerateRegion
}

// FeatureVector holds every normalized x in point order followed by every normalized y.
type FeatureVector []float64

// Normalizer maps raw landmarks to a translation- and scale-invariant vector.
// It is immutable and safe for concurrent use.
type Normalizer struct {
	layout Layout
}

// NewNormalizer validates the layout once so Normalize never has to.
func NewNormalizer(layout Layout) (*Normalizer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{layout: layout}, nil
}

func (n *Normalizer) Layout() Layout {
	return n.layout
}

func (n *Normalizer) Dimension() int {
	return n.layout.Dimension()
}

// Normalize processes each region independently: translate so the leftmost
// anchor sits at x=0 and the region's mean y is 0, scale so the rightmost
// anchor lands on x=2, then shift x by -1. The input is left untouched.
func (n *Normalizer) Normalize(points PointSet) (FeatureVector, error) {
	total := n.layout.Points
	if len(points) != total {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrPointCount, len(points), total)
	}

	out := make(FeatureVector, 2*total)
	for _, r := range n.layout.Regions {
		if err := normalizeRegion(points, r, out[:total], out[total:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func normalizeRegion(points PointSet, r Region, xs, ys []float64) error {
	pts := points[r.Start:r.End]

	var sumY float64
	for _, p := range pts {
		sumY += p.Y
	}
	meanY := sumY / float64(len(pts))
	originX := pts[r.Leftmost].X

	width := pts[r.Rightmost].X - originX
	if width == 0 {
		return &DegenerateRegionError{Region: r.Name, Reason: "rightmost anchor has zero x after translation"}
	}
	scale := 2.0 / width

	for i, p := range pts {
		x := (p.X-originX)*scale - 1.0
		y := (p.Y - meanY) * scale
		if !isFinite(x) || !isFinite(y) {
			return &DegenerateRegionError{Region: r.Name, Reason: "non-finite coordinate"}
		}
		xs[r.Start+i] = x
		ys[r.Start+i] = y
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Distance is the Euclidean distance between two vectors of equal length.
func Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
