package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
)

var ErrMissingCategory = errors.New("gallery has emotions without paintings")

// LoadOptions controls the startup checks on a freshly loaded gallery.
type LoadOptions struct {
	// Dimension is the vector length the normalizer produces; 0 skips the check.
	Dimension int
	// AllowMissing downgrades empty categories from an error to a warning.
	AllowMissing bool
	Logger       *slog.Logger
}

// LoadIndex reads every entry from src and builds the index. Retrieve on an
// empty category always fails, so by default every emotion needs a painting.
func LoadIndex(ctx context.Context, src Source, opts LoadOptions) (*Index, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	entries, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load gallery: %w", err)
	}

	idx, err := Build(entries)
	if err != nil {
		return nil, fmt.Errorf("build gallery index: %w", err)
	}

	if opts.Dimension > 0 && idx.Len() > 0 && idx.Dimension() != opts.Dimension {
		return nil, fmt.Errorf("%w: gallery vectors have %d values, layout produces %d", ErrDimension, idx.Dimension(), opts.Dimension)
	}

	if missing := idx.Missing(); len(missing) > 0 {
		names := emotionNames(missing)
		if !opts.AllowMissing {
			return nil, fmt.Errorf("%w: %s", ErrMissingCategory, names)
		}
		opts.Logger.Warn("gallery categories are empty; Retrieve will fail for them",
			slog.String("emotions", names),
		)
	}

	attrs := []any{slog.Int("entries", idx.Len())}
	counts := idx.Counts()
	for _, e := range domain.AllEmotions() {
		attrs = append(attrs, slog.Int(e.String(), counts[e]))
	}
	opts.Logger.Info("gallery loaded", attrs...)

	return idx, nil
}

func emotionNames(es []domain.Emotion) string {
	names := make([]string, len(es))
	for i, e := range es {
		names[i] = e.String()
	}
	return strings.Join(names, ",")
}
