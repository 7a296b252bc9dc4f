package partition

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/hullgen/pkg/hull"
)

// modelOf builds a model with n unit-cube hulls spaced along X.
func modelOf(t *testing.T, n int) *hull.CollisionModel {
	t.Helper()
	m := hull.NewModel("fence_phys")
	for i := 0; i < n; i++ {
		var pts []v3.Vec
		base := float64(i) * 2
		for _, sx := range []float64{0, 1} {
			for _, sy := range []float64{0, 1} {
				for _, sz := range []float64{0, 1} {
					pts = append(pts, v3.Vec{X: base + sx, Y: sy, Z: sz})
				}
			}
		}
		h, err := hull.Build(pts, 0)
		require.NoError(t, err)
		m.Hulls = append(m.Hulls, h)
	}
	return m
}

func TestSplitOversizedModel(t *testing.T) {
	m := modelOf(t, 40)
	require.NoError(t, m.SetOverride("$surfaceprop", "metal"))

	parts, err := Split(m, 0)
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, 32, parts[0].HullCount())
	assert.Equal(t, 8, parts[1].HullCount())

	// Concatenating the parts reproduces the source hull sequence.
	var all []*hull.Hull
	for _, p := range parts {
		all = append(all, p.Hulls...)
	}
	require.Len(t, all, 40)
	for i, h := range all {
		assert.Same(t, m.Hulls[i], h)
	}

	for i, p := range parts {
		assert.Equal(t, i, p.PartIndex)
		assert.Equal(t, m.Name, p.Name)
		assert.Equal(t, m.Overrides(), p.Overrides())
	}
	assert.Equal(t, "fence_phys_part_000", parts[0].PartName())
	assert.Equal(t, "fence_phys_part_001", parts[1].PartName())
}

func TestSplitUnderLimit(t *testing.T) {
	parts, err := Split(modelOf(t, 5), 0)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, 5, parts[0].HullCount())
	assert.Equal(t, 0, parts[0].PartIndex)
}

func TestSplitExactMultiple(t *testing.T) {
	parts, err := Split(modelOf(t, 8), 4)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, 4, parts[0].HullCount())
	assert.Equal(t, 4, parts[1].HullCount())
}

func TestSplitEmptyModel(t *testing.T) {
	// ceil(0 / k) parts, so nothing to export.
	parts, err := Split(hull.NewModel("empty"), 0)
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestSplitRejectsNegativeLimit(t *testing.T) {
	_, err := Split(modelOf(t, 1), -1)
	assert.Error(t, err)
}
