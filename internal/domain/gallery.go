package domain

import (
	"time"

	"github.com/google/uuid"
)

// GalleryEntry is one curated face region cut from a painting.
// Vector is the normalized landmark geometry of that face.
type GalleryEntry struct {
	ID          uuid.UUID `json:"id"`
	PaintingID  string    `json:"painting_id"`
	Title       string    `json:"title,omitempty"`
	Emotion     Emotion   `json:"emotion"`
	Vector      []float64 `json:"-"`
	PaintingRef string    `json:"painting_ref"`
	FaceRef     string    `json:"face_ref"`
	CreatedAt   time.Time `json:"created_at"`
}

// Candidate is a ranked gallery match together with its image payloads.
type Candidate struct {
	Entry    GalleryEntry
	Distance float64
	Painting []byte
	Portrait []byte
}

// Style is a renderable painting style; IDs are 1-based on the wire.
type Style struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Key  string `json:"key" yaml:"key"`
}
