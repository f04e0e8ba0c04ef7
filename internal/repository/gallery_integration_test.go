//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/pea/internal/database"
	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/gallery"
)

func setupIntegrationTest(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "pea_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/pea_test?sslmode=disable", host, port.Port())

	sqlDB, err := database.NewPool(database.DefaultPoolConfig(connStr))
	require.NoError(t, err)
	migrator, err := database.NewMigrator(sqlDB, "pea_test")
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	_ = migrator.Close()

	db, err := database.NewPgxPool(ctx, database.DefaultPoolConfig(connStr))
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func TestGalleryRepository_Integration(t *testing.T) {
	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewGalleryRepository(db)

	entries := []domain.GalleryEntry{
		{PaintingID: "1", Emotion: domain.EmotionHappy, Vector: []float64{0, 0}, PaintingRef: "p/1.jpg", FaceRef: "f/1.jpg"},
		{PaintingID: "2", Emotion: domain.EmotionHappy, Vector: []float64{1, 0}, PaintingRef: "p/2.jpg", FaceRef: "f/2.jpg"},
		{PaintingID: "3", Emotion: domain.EmotionSad, Vector: []float64{0.5, 0.5}, PaintingRef: "p/3.jpg", FaceRef: "f/3.jpg"},
		{PaintingID: "4", Emotion: domain.EmotionHappy, Vector: []float64{-1, 0}, PaintingRef: "p/4.jpg", FaceRef: "f/4.jpg"},
	}
	for i := range entries {
		require.NoError(t, repo.Insert(ctx, &entries[i]))
	}

	t.Run("duplicate rejected", func(t *testing.T) {
		dup := entries[0]
		dup.ID = uuid.Nil
		assert.ErrorIs(t, repo.Insert(ctx, &dup), ErrDuplicateEntry)
	})

	t.Run("load keeps insertion order and vectors", func(t *testing.T) {
		got, err := repo.Load(ctx)
		require.NoError(t, err)
		require.Len(t, got, 4)
		for i := range got {
			assert.Equal(t, entries[i].ID, got[i].ID)
			assert.Equal(t, entries[i].Vector, got[i].Vector)
			assert.Equal(t, entries[i].Emotion, got[i].Emotion)
		}
	})

	t.Run("loaded gallery builds an index with stable ties", func(t *testing.T) {
		got, err := repo.Load(ctx)
		require.NoError(t, err)

		idx, err := gallery.Build(got)
		require.NoError(t, err)

		// painting 1 is exact; 2 and 4 tie at distance 1 and keep insertion order
		matches, err := idx.Query(domain.EmotionHappy, []float64{0, 0}, 3)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, "1", matches[0].Entry.PaintingID)
		assert.Equal(t, "2", matches[1].Entry.PaintingID)
		assert.Equal(t, "4", matches[2].Entry.PaintingID)
	})

	t.Run("counts per emotion", func(t *testing.T) {
		counts, err := repo.CountByEmotion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, counts[domain.EmotionHappy])
		assert.Equal(t, 1, counts[domain.EmotionSad])
		assert.Equal(t, 0, counts[domain.EmotionFear])
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, entries[2].ID))
		assert.ErrorIs(t, repo.Delete(ctx, entries[2].ID), ErrEntryNotFound)

		n, err := repo.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}
