package gallery

import (
	"errors"
	"fmt"
	"sort"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/geometry"
)

var (
	ErrEmptyCategory = errors.New("gallery category has no entries")
	ErrDimension     = errors.New("vector dimension mismatch")
	ErrInvalidK      = errors.New("k must be at least 1")
	ErrInvalidEntry  = errors.New("invalid gallery entry")
)

// EmptyCategoryError reports which emotion had nothing to match against.
type EmptyCategoryError struct {
	Emotion domain.Emotion
}

func (e *EmptyCategoryError) Error() string {
	return fmt.Sprintf("%s: %s", ErrEmptyCategory, e.Emotion)
}

func (e *EmptyCategoryError) Unwrap() error {
	return ErrEmptyCategory
}

// Match is one ranked result of a Query.
type Match struct {
	Entry    domain.GalleryEntry
	Distance float64
}

// Index partitions the gallery by emotion. Each partition is a flat slice
// scanned exhaustively on every query. It is never mutated after Build, so
// concurrent queries need no locking.
type Index struct {
	dim        int
	categories map[domain.Emotion][]domain.GalleryEntry
	size       int
}

// Build copies the entries into per-emotion partitions, keeping their order.
// Every vector must have the same length.
func Build(entries []domain.GalleryEntry) (*Index, error) {
	idx := &Index{
		categories: make(map[domain.Emotion][]domain.GalleryEntry),
	}

	for i, e := range entries {
		if !e.Emotion.Valid() {
			return nil, fmt.Errorf("%w: entry %d (%s) has unknown emotion %d", ErrInvalidEntry, i, e.PaintingID, int(e.Emotion))
		}
		if len(e.Vector) == 0 {
			return nil, fmt.Errorf("%w: entry %d (%s) has no vector", ErrInvalidEntry, i, e.PaintingID)
		}
		if idx.dim == 0 {
			idx.dim = len(e.Vector)
		} else if len(e.Vector) != idx.dim {
			return nil, fmt.Errorf("%w: entry %d (%s) has %d values, want %d", ErrDimension, i, e.PaintingID, len(e.Vector), idx.dim)
		}

		entry := e
		entry.Vector = append([]float64(nil), e.Vector...)
		idx.categories[e.Emotion] = append(idx.categories[e.Emotion], entry)
		idx.size++
	}

	return idx, nil
}

// Query returns up to k entries of the category closest to v, nearest first.
// Equal distances keep gallery insertion order.
func (x *Index) Query(emotion domain.Emotion, v []float64, k int) ([]Match, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}

	entries := x.categories[emotion]
	if len(entries) == 0 {
		return nil, &EmptyCategoryError{Emotion: emotion}
	}
	if len(v) != x.dim {
		return nil, fmt.Errorf("%w: query has %d values, gallery has %d", ErrDimension, len(v), x.dim)
	}

	matches := make([]Match, len(entries))
	for i, e := range entries {
		matches[i] = Match{Entry: e, Distance: geometry.Distance(v, e.Vector)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Dimension is the vector length shared by every entry, 0 for an empty index.
func (x *Index) Dimension() int {
	return x.dim
}

func (x *Index) Len() int {
	return x.size
}

// Counts returns the number of entries per emotion, including zeros.
func (x *Index) Counts() map[domain.Emotion]int {
	out := make(map[domain.Emotion]int, len(domain.AllEmotions()))
	for _, e := range domain.AllEmotions() {
		out[e] = len(x.categories[e])
	}
	return out
}

// Missing lists the emotions that have no entries.
func (x *Index) Missing() []domain.Emotion {
	var out []domain.Emotion
	for _, e := range domain.AllEmotions() {
		if len(x.categories[e]) == 0 {
			out = append(out, e)
		}
	}
	return out
}
