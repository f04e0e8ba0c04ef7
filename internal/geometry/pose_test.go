package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoseFeatures_CenteredUnitRadius(t *testing.T) {
	face := syntheticFace()

	v, err := PoseFeatures(face)
	require.NoError(t, err)
	require.Len(t, v, 2*len(face))

	var sx, sy, sq float64
	n := len(face)
	for i := 0; i < n; i++ {
		sx += v[i]
		sy += v[n+i]
		sq += v[i]*v[i] + v[n+i]*v[n+i]
	}
	assert.InDelta(t, 0.0, sx, 1e-9)
	assert.InDelta(t, 0.0, sy, 1e-9)
	assert.InDelta(t, 1.0, math.Sqrt(sq/float64(n)), 1e-9)
}

func TestPoseFeatures_Degenerate(t *testing.T) {
	_, err := PoseFeatures(nil)
	assert.ErrorIs(t, err, ErrDegenerateRegion)

	same := PointSet{{X: 4, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 4}}
	_, err = PoseFeatures(same)
	assert.ErrorIs(t, err, ErrDegenerateRegion)
}
