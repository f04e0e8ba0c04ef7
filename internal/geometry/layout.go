package geometry

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Point is a landmark position in image pixel coordinates.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// PointSet is the ordered landmark list produced by the detector.
type PointSet []Point

// Region is a contiguous [Start, End) range of landmark indices.
// Leftmost and Rightmost are relative to Start.
type Region struct {
	Name      string `yaml:"name"`
	Start     int    `yaml:"start"`
	End       int    `yaml:"end"`
	Leftmost  int    `yaml:"leftmost"`
	Rightmost int    `yaml:"rightmost"`
}

func (r Region) Len() int { return r.End - r.Start }

// Layout is a validated set of regions that partition [0, Points).
type Layout struct {
	Points  int      `yaml:"points"`
	Regions []Region `yaml:"regions"`
}

var ErrInvalidLayout = errors.New("invalid landmark layout")

// DefaultLayout returns the 68-point dlib facial landmark layout.
func DefaultLayout() Layout {
	return Layout{
		Points: 68,
		Regions: []Region{
			{Name: "jaw", Start: 0, End: 17, Leftmost: 0, Rightmost: 16},
			{Name: "right_brow", Start: 17, End: 22, Leftmost: 0, Rightmost: 4},
			{Name: "left_brow", Start: 22, End: 27, Leftmost: 0, Rightmost: 4},
			{Name: "nose", Start: 27, End: 36, Leftmost: 4, Rightmost: 8},
			{Name: "right_eye", Start: 36, End: 42, Leftmost: 0, Rightmost: 3},
			{Name: "left_eye", Start: 42, End: 48, Leftmost: 0, Rightmost: 3},
			{Name: "mouth", Start: 48, End: 68, Leftmost: 0, Rightmost: 6},
		},
	}
}

// Validate checks that the regions cover [0, Points) exactly once and that
// every anchor index lies inside its region.
func (l Layout) Validate() error {
	if l.Points <= 0 {
		return fmt.Errorf("%w: points must be positive, got %d", ErrInvalidLayout, l.Points)
	}
	if len(l.Regions) == 0 {
		return fmt.Errorf("%w: no regions", ErrInvalidLayout)
	}

	sorted := make([]Region, len(l.Regions))
	copy(sorted, l.Regions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	names := make(map[string]struct{}, len(sorted))
	next := 0
	for _, r := range sorted {
		if r.Name == "" {
			return fmt.Errorf("%w: region at %d has no name", ErrInvalidLayout, r.Start)
		}
		if _, dup := names[r.Name]; dup {
			return fmt.Errorf("%w: duplicate region %q", ErrInvalidLayout, r.Name)
		}
		names[r.Name] = struct{}{}

		if r.Start != next {
			if r.Start > next {
				return fmt.Errorf("%w: gap before region %q at index %d", ErrInvalidLayout, r.Name, next)
			}
			return fmt.Errorf("%w: region %q overlaps index %d", ErrInvalidLayout, r.Name, r.Start)
		}
		if r.End <= r.Start {
			return fmt.Errorf("%w: region %q is empty", ErrInvalidLayout, r.Name)
		}
		if r.Leftmost < 0 || r.Leftmost >= r.Len() {
			return fmt.Errorf("%w: region %q leftmost %d out of range", ErrInvalidLayout, r.Name, r.Leftmost)
		}
		if r.Rightmost < 0 || r.Rightmost >= r.Len() {
			return fmt.Errorf("%w: region %q rightmost %d out of range", ErrInvalidLayout, r.Name, r.Rightmost)
		}
		next = r.End
	}

	if next != l.Points {
		return fmt.Errorf("%w: regions cover [0, %d) but layout has %d points", ErrInvalidLayout, next, l.Points)
	}
	return nil
}

// Dimension is the length of a feature vector built with this layout.
func (l Layout) Dimension() int {
	return 2 * l.Points
}

// LoadLayout reads a YAML layout file and validates it.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout %s: %w", path, err)
	}
	return ParseLayout(data)
}

func ParseLayout(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}
