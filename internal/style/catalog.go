// Package style holds the catalog of painting styles the renderer knows.
// Wire ids are 1-based and contiguous; the renderer receives id-1.
package style

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
)

// DefaultCount is the number of styles baked into the bundled transfer model.
const DefaultCount = 118

var ErrInvalidCatalog = errors.New("invalid style catalog")

// Catalog is immutable after construction.
type Catalog struct {
	styles []domain.Style
}

type catalogFile struct {
	Styles []domain.Style `yaml:"styles"`
}

// NewCatalog assigns ids 1..n in order where missing and checks the result is contiguous.
func NewCatalog(styles []domain.Style) (*Catalog, error) {
	if len(styles) == 0 {
		return nil, fmt.Errorf("%w: no styles", ErrInvalidCatalog)
	}

	out := make([]domain.Style, len(styles))
	keys := make(map[string]bool, len(styles))
	for i, s := range styles {
		if s.ID == 0 {
			s.ID = i + 1
		}
		if s.ID != i+1 {
			return nil, fmt.Errorf("%w: style %q has id %d at position %d", ErrInvalidCatalog, s.Name, s.ID, i+1)
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("Style %d", s.ID)
		}
		if s.Key == "" {
			s.Key = fmt.Sprintf("style-%03d", s.ID)
		}
		if keys[s.Key] {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidCatalog, s.Key)
		}
		keys[s.Key] = true
		out[i] = s
	}
	return &Catalog{styles: out}, nil
}

// Numbered returns n anonymous styles.
func Numbered(n int) *Catalog {
	styles := make([]domain.Style, n)
	c, err := NewCatalog(styles)
	if err != nil {
		return &Catalog{}
	}
	return c
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return NewCatalog(f.Styles)
}

// LoadCatalog reads a YAML catalog, or returns the numbered default when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return Numbered(DefaultCount), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style catalog: %w", err)
	}
	return ParseCatalog(data)
}

func (c *Catalog) Get(id int) (domain.Style, bool) {
	if id < 1 || id > len(c.styles) {
		return domain.Style{}, false
	}
	return c.styles[id-1], true
}

func (c *Catalog) Len() int {
	return len(c.styles)
}

// All returns a copy of the styles in id order.
func (c *Catalog) All() []domain.Style {
	out := make([]domain.Style, len(c.styles))
	copy(out, c.styles)
	return out
}
