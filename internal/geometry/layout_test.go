package geometry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayout_IsValid(t *testing.T) {
	l := DefaultLayout()
	require.NoError(t, l.Validate())
	assert.Equal(t, 136, l.Dimension())
}

func TestLayout_Validate(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		wantErr string
	}{
		{
			name: "gap between regions",
			layout: Layout{Points: 6, Regions: []Region{
				{Name: "a", Start: 0, End: 2, Rightmost: 1},
				{Name: "b", Start: 3, End: 6, Rightmost: 2},
			}},
			wantErr: "gap",
		},
		{
			name: "overlapping regions",
			layout: Layout{Points: 6, Regions: []Region{
				{Name: "a", Start: 0, End: 4, Rightmost: 1},
				{Name: "b", Start: 3, End: 6, Rightmost: 2},
			}},
			wantErr: "overlaps",
		},
		{
			name: "short coverage",
			layout: Layout{Points: 8, Regions: []Region{
				{Name: "a", Start: 0, End: 6, Rightmost: 5},
			}},
			wantErr: "cover",
		},
		{
			name: "rightmost outside region",
			layout: Layout{Points: 4, Regions: []Region{
				{Name: "a", Start: 0, End: 4, Rightmost: 4},
			}},
			wantErr: "rightmost",
		},
		{
			name: "negative leftmost",
			layout: Layout{Points: 4, Regions: []Region{
				{Name: "a", Start: 0, End: 4, Leftmost: -1, Rightmost: 3},
			}},
			wantErr: "leftmost",
		},
		{
			name: "duplicate names",
			layout: Layout{Points: 4, Regions: []Region{
				{Name: "a", Start: 0, End: 2, Rightmost: 1},
				{Name: "a", Start: 2, End: 4, Rightmost: 1},
			}},
			wantErr: "duplicate",
		},
		{
			name:    "no regions",
			layout:  Layout{Points: 4},
			wantErr: "no regions",
		},
		{
			name: "unordered but complete",
			layout: Layout{Points: 4, Regions: []Region{
				{Name: "b", Start: 2, End: 4, Rightmost: 1},
				{Name: "a", Start: 0, End: 2, Rightmost: 1},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidLayout)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yaml")
	content := `
points: 5
regions:
  - name: brow
    start: 0
    end: 2
    leftmost: 0
    rightmost: 1
  - name: lip
    start: 2
    end: 5
    leftmost: 0
    rightmost: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	l, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, 5, l.Points)
	require.Len(t, l.Regions, 2)
	assert.Equal(t, "lip", l.Regions[1].Name)
	assert.Equal(t, 2, l.Regions[1].Rightmost)
}

func TestLoadLayout_Errors(t *testing.T) {
	_, err := LoadLayout(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseLayout([]byte("points: [oops"))
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, err = ParseLayout([]byte("points: 3\nregions:\n  - {name: a, start: 0, end: 2, rightmost: 1}\n"))
	assert.ErrorIs(t, err, ErrInvalidLayout)
}
