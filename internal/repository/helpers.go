package repository

import (
	"strings"

	"github.com/pgvector/pgvector-go"
)

// isUniqueViolation checks if the error is a unique constraint violation
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "23505") ||
		strings.Contains(errMsg, "unique") ||
		strings.Contains(errMsg, "duplicate key")
}

func toVector(v []float64) pgvector.Vector {
	floats := make([]float32, len(v))
	for i, x := range v {
		floats[i] = float32(x)
	}
	return pgvector.NewVector(floats)
}

func fromVector(v *pgvector.Vector) []float64 {
	if v == nil || v.Slice() == nil {
		return nil
	}
	out := make([]float64, len(v.Slice()))
	for i, x := range v.Slice() {
		out[i] = float64(x)
	}
	return out
}
