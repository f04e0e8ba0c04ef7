package gallery

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/geometry"
)

// Source loads the full gallery once at startup.
type Source interface {
	Load(ctx context.Context) ([]domain.GalleryEntry, error)
}

// Manifest is the on-disk YAML description of a gallery.
type Manifest struct {
	Entries []ManifestEntry `yaml:"entries"`
}

// ManifestEntry carries either a precomputed vector or the raw landmarks of
// the painted face; raw landmarks are normalized when the manifest is loaded.
type ManifestEntry struct {
	ID         string           `yaml:"id,omitempty"`
	PaintingID string           `yaml:"painting_id"`
	Title      string           `yaml:"title,omitempty"`
	Emotion    domain.Emotion   `yaml:"emotion"`
	Painting   string           `yaml:"painting"`
	Face       string           `yaml:"face"`
	Vector     []float64        `yaml:"vector,omitempty,flow"`
	Landmarks  geometry.PointSet `yaml:"landmarks,omitempty"`
}

// ManifestSource reads a Manifest from a file.
type ManifestSource struct {
	path       string
	normalizer *geometry.Normalizer
}

var _ Source = (*ManifestSource)(nil)

func NewManifestSource(path string, normalizer *geometry.Normalizer) *ManifestSource {
	return &ManifestSource{path: path, normalizer: normalizer}
}

func (s *ManifestSource) Load(ctx context.Context) ([]domain.GalleryEntry, error) {
	m, err := ReadManifest(s.path)
	if err != nil {
		return nil, err
	}
	return m.Resolve(s.normalizer)
}

// ReadManifest parses the YAML file without resolving vectors.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// WriteManifest stores m as YAML at path.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

// Resolve turns manifest entries into gallery entries, normalizing raw
// landmarks with n. n may be nil when every entry has a vector.
func (m *Manifest) Resolve(n *geometry.Normalizer) ([]domain.GalleryEntry, error) {
	out := make([]domain.GalleryEntry, 0, len(m.Entries))
	for i, me := range m.Entries {
		e, err := me.Resolve(n)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (me ManifestEntry) Resolve(n *geometry.Normalizer) (domain.GalleryEntry, error) {
	if me.PaintingID == "" {
		return domain.GalleryEntry{}, fmt.Errorf("%w: painting_id is required", ErrInvalidEntry)
	}
	if me.Painting == "" || me.Face == "" {
		return domain.GalleryEntry{}, fmt.Errorf("%w: %s needs painting and face refs", ErrInvalidEntry, me.PaintingID)
	}

	vector := me.Vector
	switch {
	case len(vector) > 0:
	case len(me.Landmarks) > 0:
		if n == nil {
			return domain.GalleryEntry{}, fmt.Errorf("%w: %s has raw landmarks but no normalizer", ErrInvalidEntry, me.PaintingID)
		}
		v, err := n.Normalize(me.Landmarks)
		if err != nil {
			return domain.GalleryEntry{}, fmt.Errorf("normalize %s: %w", me.PaintingID, err)
		}
		vector = v
	default:
		return domain.GalleryEntry{}, fmt.Errorf("%w: %s has neither vector nor landmarks", ErrInvalidEntry, me.PaintingID)
	}

	id, err := me.entryID()
	if err != nil {
		return domain.GalleryEntry{}, err
	}

	return domain.GalleryEntry{
		ID:          id,
		PaintingID:  me.PaintingID,
		Title:       me.Title,
		Emotion:     me.Emotion,
		Vector:      append([]float64(nil), vector...),
		PaintingRef: me.Painting,
		FaceRef:     me.Face,
	}, nil
}

// entryID is stable across restarts so clients can refer to an entry.
func (me ManifestEntry) entryID() (uuid.UUID, error) {
	if me.ID != "" {
		id, err := uuid.Parse(me.ID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: %s has malformed id: %v", ErrInvalidEntry, me.PaintingID, err)
		}
		return id, nil
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(me.PaintingID+"/"+me.Face)), nil
}

// ManifestFromEntries is the inverse of Resolve, always writing vectors.
func ManifestFromEntries(entries []domain.GalleryEntry) *Manifest {
	m := &Manifest{Entries: make([]ManifestEntry, 0, len(entries))}
	for _, e := range entries {
		m.Entries = append(m.Entries, ManifestEntry{
			ID:         e.ID.String(),
			PaintingID: e.PaintingID,
			Title:      e.Title,
			Emotion:    e.Emotion,
			Painting:   e.PaintingRef,
			Face:       e.FaceRef,
			Vector:     e.Vector,
		})
	}
	return m
}
