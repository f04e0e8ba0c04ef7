package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/gallery"
)

var (
	ErrEntryNotFound  = errors.New("gallery entry not found")
	ErrDuplicateEntry = errors.New("gallery entry already exists")
)

// GalleryRepository stores gallery entries with their vectors in pgvector columns.
// Rows come back in insertion order so ties in the index stay stable across restarts.
type GalleryRepository struct {
	pool PgxPool
}

var (
	_ GalleryRepositoryInterface = (*GalleryRepository)(nil)
	_ gallery.Source             = (*GalleryRepository)(nil)
)

func NewGalleryRepository(pool PgxPool) *GalleryRepository {
	return &GalleryRepository{pool: pool}
}

// Load implements gallery.Source.
func (r *GalleryRepository) Load(ctx context.Context) ([]domain.GalleryEntry, error) {
	return r.List(ctx)
}

func (r *GalleryRepository) List(ctx context.Context) ([]domain.GalleryEntry, error) {
	query := `
		SELECT id, painting_id, title, emotion, vector, painting_ref, face_ref, created_at
		FROM gallery_entries
		ORDER BY seq
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list gallery entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.GalleryEntry
	for rows.Next() {
		var e domain.GalleryEntry
		var emotion string
		var vec *pgvector.Vector

		if err := rows.Scan(
			&e.ID,
			&e.PaintingID,
			&e.Title,
			&emotion,
			&vec,
			&e.PaintingRef,
			&e.FaceRef,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan gallery entry: %w", err)
		}

		e.Emotion, err = domain.ParseEmotion(emotion)
		if err != nil {
			return nil, fmt.Errorf("gallery entry %s: %w", e.ID, err)
		}
		e.Vector = fromVector(vec)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gallery entries: %w", err)
	}

	return entries, nil
}

func (r *GalleryRepository) Insert(ctx context.Context, entry *domain.GalleryEntry) error {
	query := `
		INSERT INTO gallery_entries (id, painting_id, title, emotion, vector, painting_ref, face_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if len(entry.Vector) == 0 {
		return fmt.Errorf("insert gallery entry %s: empty vector", entry.ID)
	}

	err := r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.PaintingID,
		entry.Title,
		entry.Emotion.String(),
		toVector(entry.Vector),
		entry.PaintingRef,
		entry.FaceRef,
	).Scan(&entry.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("insert gallery entry: %w", err)
	}

	return nil
}

func (r *GalleryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM gallery_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete gallery entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// DeleteAll empties the gallery and returns how many rows were removed.
func (r *GalleryRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM gallery_entries`)
	if err != nil {
		return 0, fmt.Errorf("delete gallery entries: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *GalleryRepository) CountByEmotion(ctx context.Context) (map[domain.Emotion]int, error) {
	query := `
		SELECT emotion, COUNT(*)
		FROM gallery_entries
		GROUP BY emotion
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count gallery entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Emotion]int, len(domain.AllEmotions()))
	for _, e := range domain.AllEmotions() {
		counts[e] = 0
	}

	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan emotion count: %w", err)
		}
		e, err := domain.ParseEmotion(name)
		if err != nil {
			return nil, fmt.Errorf("count gallery entries: %w", err)
		}
		counts[e] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emotion counts: %w", err)
	}

	return counts, nil
}
