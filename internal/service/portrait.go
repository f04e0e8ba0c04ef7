package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/saturnino-fabrica-de-software/pea/internal/audit"
	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/gallery"
	"github.com/saturnino-fabrica-de-software/pea/internal/geometry"
	"github.com/saturnino-fabrica-de-software/pea/internal/imaging"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider"
	"github.com/saturnino-fabrica-de-software/pea/internal/session"
)

type SessionStore interface {
	Put(token string, photo []byte)
	Get(token string) ([]byte, error)
	Delete(token string) error
	Clear() int
}

type GalleryIndex interface {
	Query(emotion domain.Emotion, v []float64, k int) ([]gallery.Match, error)
}

type StyleCatalog interface {
	Get(id int) (domain.Style, bool)
}

type PortraitConfig struct {
	StoreMaxSide     int
	StoreJPEGQuality int
	Candidates       int
}

func DefaultPortraitConfig() PortraitConfig {
	return PortraitConfig{
		StoreMaxSide:     500,
		StoreJPEGQuality: imaging.DefaultJPEGQuality,
		Candidates:       3,
	}
}

// RetrieveResult holds the detected category and the ranked candidates with their images.
type RetrieveResult struct {
	Emotion    domain.Emotion
	Candidates []domain.Candidate
}

type TransferResult struct {
	Style       domain.Style
	Image       []byte
	ContentType string
}

// PortraitService runs the four protocol operations. Everything it holds
// except the session store is read-only after construction.
type PortraitService struct {
	sessions   SessionStore
	normalizer *geometry.Normalizer
	index      GalleryIndex
	blobs      gallery.BlobStore
	styles     StyleCatalog
	models     provider.Models
	config     PortraitConfig
	audit      audit.Logger
	logger     *slog.Logger
}

func NewPortraitService(
	sessions SessionStore,
	normalizer *geometry.Normalizer,
	index GalleryIndex,
	blobs gallery.BlobStore,
	styles StyleCatalog,
	models provider.Models,
	config PortraitConfig,
) *PortraitService {
	return &PortraitService{
		sessions:   sessions,
		normalizer: normalizer,
		index:      index,
		blobs:      blobs,
		styles:     styles,
		models:     models,
		config:     config,
		audit:      &audit.NoOpLogger{},
		logger:     slog.Default(),
	}
}

func (s *PortraitService) WithAuditLogger(l audit.Logger) *PortraitService {
	s.audit = l
	return s
}

func (s *PortraitService) WithLogger(l *slog.Logger) *PortraitService {
	s.logger = l
	return s
}

// Store downscales the photo and keeps it under token, replacing any earlier photo.
func (s *PortraitService) Store(ctx context.Context, token string, photo []byte) error {
	scaled, err := imaging.Downscale(photo, s.config.StoreMaxSide, s.config.StoreJPEGQuality)
	if err != nil {
		err = mapError(err)
		s.record(ctx, audit.Event{EventType: audit.EventPhotoStored, Token: token}, err)
		return err
	}

	s.sessions.Put(token, scaled)

	s.record(ctx, audit.Event{
		EventType: audit.EventPhotoStored,
		Token:     token,
		Metadata:  map[string]string{"bytes": strconv.Itoa(len(scaled))},
	}, nil)
	return nil
}

// Retrieve finds the paintings whose faces are geometrically closest to the
// face in photo, within the emotion category the classifier assigns.
func (s *PortraitService) Retrieve(ctx context.Context, photo []byte) (*RetrieveResult, error) {
	result, err := s.retrieve(ctx, photo)
	event := audit.Event{EventType: audit.EventPortraitsRetrieved}
	if result != nil {
		event.Emotion = result.Emotion.String()
		event.Metadata = map[string]string{"candidates": strconv.Itoa(len(result.Candidates))}
	}
	s.record(ctx, event, err)
	return result, err
}

func (s *PortraitService) retrieve(ctx context.Context, photo []byte) (*RetrieveResult, error) {
	bounds, err := imaging.Bounds(photo)
	if err != nil {
		return nil, mapError(err)
	}

	box := provider.BoundingBox{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())}
	points, err := s.models.Detector.DetectLandmarks(ctx, photo, box)
	if err != nil {
		return nil, mapModelError(fmt.Errorf("detect landmarks: %w", err))
	}

	vector, err := s.normalizer.Normalize(points)
	if err != nil {
		return nil, mapError(err)
	}

	pose, err := geometry.PoseFeatures(points)
	if err != nil {
		return nil, mapError(err)
	}

	emotion, err := s.models.Classifier.Classify(ctx, photo, pose)
	if err != nil {
		return nil, mapModelError(fmt.Errorf("classify emotion: %w", err))
	}

	matches, err := s.index.Query(emotion, vector, s.config.Candidates)
	if err != nil {
		return nil, mapError(err)
	}

	candidates := make([]domain.Candidate, 0, len(matches))
	for _, m := range matches {
		painting, err := s.blobs.Read(ctx, m.Entry.PaintingRef)
		if err != nil {
			return nil, domain.ErrGalleryUnavailable.WithError(err)
		}
		portrait, err := s.blobs.Read(ctx, m.Entry.FaceRef)
		if err != nil {
			return nil, domain.ErrGalleryUnavailable.WithError(err)
		}
		candidates = append(candidates, domain.Candidate{
			Entry:    m.Entry,
			Distance: m.Distance,
			Painting: painting,
			Portrait: portrait,
		})
	}

	s.logger.DebugContext(ctx, "portraits matched",
		slog.String("emotion", emotion.String()),
		slog.Int("candidates", len(candidates)),
	)

	return &RetrieveResult{Emotion: emotion, Candidates: candidates}, nil
}

// Transfer redraws the stored photo in the given 1-based style.
func (s *PortraitService) Transfer(ctx context.Context, token string, styleID int) (*TransferResult, error) {
	result, err := s.transfer(ctx, token, styleID)
	s.record(ctx, audit.Event{EventType: audit.EventStyleTransferred, Token: token, StyleID: styleID}, err)
	return result, err
}

func (s *PortraitService) transfer(ctx context.Context, token string, styleID int) (*TransferResult, error) {
	photo, err := s.sessions.Get(token)
	if err != nil {
		return nil, mapError(err)
	}

	style, ok := s.styles.Get(styleID)
	if !ok {
		return nil, domain.ErrStyleNotFound
	}

	out, err := s.models.Renderer.Render(ctx, photo, style.ID-1)
	if err != nil {
		return nil, mapModelError(fmt.Errorf("render style %d: %w", style.ID, err))
	}

	return &TransferResult{
		Style:       style,
		Image:       out,
		ContentType: imaging.ContentType(out),
	}, nil
}

// Delete drops the photo stored under token. It reports whether one existed;
// deleting an absent token is not an error.
func (s *PortraitService) Delete(ctx context.Context, token string) (bool, error) {
	removed := true
	if err := s.sessions.Delete(token); err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			return false, domain.ErrInternal.WithError(err)
		}
		removed = false
	}

	s.record(ctx, audit.Event{
		EventType: audit.EventPhotoDeleted,
		Token:     token,
		Metadata:  map[string]string{"removed": strconv.FormatBool(removed)},
	}, nil)
	return removed, nil
}

// ClearSessions forgets every stored photo; called on shutdown.
func (s *PortraitService) ClearSessions(ctx context.Context) int {
	n := s.sessions.Clear()
	s.record(ctx, audit.Event{
		EventType: audit.EventSessionsCleared,
		Metadata:  map[string]string{"sessions": strconv.Itoa(n)},
	}, nil)
	return n
}

func (s *PortraitService) record(ctx context.Context, event audit.Event, err error) {
	event.Success = err == nil
	if err != nil {
		event.Error = err.Error()
	}
	if logErr := s.audit.Log(ctx, event); logErr != nil {
		s.logger.WarnContext(ctx, "audit log failed", slog.String("error", logErr.Error()))
	}
}

// mapError turns package errors into the AppErrors the API reports.
func mapError(err error) error {
	return mapErrorOr(err, domain.ErrInternal)
}

// mapModelError is mapError for collaborator calls, where unknown failures are model failures.
func mapModelError(err error) error {
	return mapErrorOr(err, domain.ErrModelFailure)
}

func mapErrorOr(err error, fallback *domain.AppError) error {
	var appErr *domain.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, imaging.ErrInvalidImage):
		return domain.ErrInvalidImage.WithError(err)
	case errors.Is(err, session.ErrNotFound):
		return domain.ErrSessionNotFound.WithError(err)
	case errors.Is(err, provider.ErrNoFaceDetected):
		return domain.ErrNoFaceDetected.WithError(err)
	case errors.Is(err, geometry.ErrDegenerateRegion):
		return domain.ErrDegenerateGeometry.WithError(err)
	case errors.Is(err, gallery.ErrEmptyCategory):
		return domain.ErrEmptyCategory.WithError(err)
	case errors.Is(err, geometry.ErrPointCount),
		errors.Is(err, provider.ErrUnavailable),
		errors.Is(err, provider.ErrInvalidOutput),
		errors.Is(err, context.DeadlineExceeded):
		return domain.ErrModelFailure.WithError(err)
	default:
		return fallback.WithError(err)
	}
}
