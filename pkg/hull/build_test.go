package hull

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/hullgen/pkg/geom"
)

func cubePoints(center v3.Vec, size float64) []v3.Vec {
	h := size / 2
	var pts []v3.Vec
	for _, x := range []float64{-h, h} {
		for _, y := range []float64{-h, h} {
			for _, z := range []float64{-h, h} {
				pts = append(pts, center.Add(v3.Vec{X: x, Y: y, Z: z}))
			}
		}
	}
	return pts
}

func TestBuildCube(t *testing.T) {
	h, err := Build(cubePoints(v3.Vec{}, 2), geom.DefaultTolerance)
	require.NoError(t, err)

	assert.Equal(t, 8, h.VertexCount())
	assert.Equal(t, 6, h.FaceCount(), "coplanar triangles should merge into quads")
	assert.InDelta(t, 8.0, h.Volume(), 1e-9)
	assert.InDelta(t, 24.0, h.SurfaceArea(), 1e-9)
	assert.InDelta(t, 0, h.Centroid().Length(), 1e-9)
	assert.True(t, h.IsConvex())
}

func TestBuildTetrahedron(t *testing.T) {
	pts := []v3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}
	h, err := Build(pts, geom.DefaultTolerance)
	require.NoError(t, err)

	assert.Equal(t, 4, h.VertexCount())
	assert.Equal(t, 4, h.FaceCount())
	assert.InDelta(t, 1.0/6.0, h.Volume(), 1e-12)
	assert.True(t, h.IsConvex())
}

func TestBuildIgnoresInteriorPoints(t *testing.T) {
	pts := cubePoints(v3.Vec{}, 2)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		pts = append(pts, v3.Vec{
			X: rng.Float64()*1.8 - 0.9,
			Y: rng.Float64()*1.8 - 0.9,
			Z: rng.Float64()*1.8 - 0.9,
		})
	}
	h, err := Build(pts, geom.DefaultTolerance)
	require.NoError(t, err)

	assert.Equal(t, 8, h.VertexCount(), "interior points must not become hull vertices")
	assert.InDelta(t, 8.0, h.Volume(), 1e-9)
	assert.True(t, h.IsConvex())
}

func TestBuildRandomPointsIsConvex(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		var pts []v3.Vec
		for i := 0; i < 60; i++ {
			pts = append(pts, v3.Vec{
				X: rng.Float64()*10 - 5,
				Y: rng.Float64()*10 - 5,
				Z: rng.Float64()*10 - 5,
			})
		}
		h, err := Build(pts, geom.DefaultTolerance)
		require.NoError(t, err, "trial %d", trial)
		assert.True(t, h.IsConvex(), "trial %d", trial)

		// Every input point must be inside or on the hull.
		for _, p := range pts {
			assert.True(t, h.ContainsPoint(p, 1e-6), "trial %d: point %v outside hull", trial, p)
		}
	}
}

func TestBuildDegenerate(t *testing.T) {
	tests := []struct {
		name string
		pts  []v3.Vec
	}{
		{"empty", nil},
		{"too few", []v3.Vec{{}, {X: 1}, {Y: 1}}},
		{"coincident", []v3.Vec{{}, {X: 1e-9}, {Y: 1e-9}, {Z: 1e-9}, {}}},
		{"colinear", []v3.Vec{{}, {X: 1}, {X: 2}, {X: 3}, {X: 4}}},
		{"coplanar", []v3.Vec{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}, {X: 0.5, Y: 0.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.pts, geom.DefaultTolerance)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDegenerate), "error = %v, want ErrDegenerate", err)
		})
	}
}

func TestBuildWeldsDoubles(t *testing.T) {
	pts := cubePoints(v3.Vec{}, 2)
	// Duplicate every corner with sub-tolerance jitter.
	for _, p := range cubePoints(v3.Vec{}, 2) {
		pts = append(pts, p.Add(v3.Vec{X: 1e-9, Y: -1e-9}))
	}
	h, err := Build(pts, 1e-6)
	require.NoError(t, err)
	assert.Equal(t, 8, h.VertexCount())
}

func TestContainsPoint(t *testing.T) {
	h, err := Build(cubePoints(v3.Vec{}, 2), geom.DefaultTolerance)
	require.NoError(t, err)

	assert.True(t, h.ContainsPoint(v3.Vec{}, 0))
	assert.True(t, h.ContainsPoint(v3.Vec{X: 1, Y: 1, Z: 1}, 1e-9), "corner is on the boundary")
	assert.False(t, h.ContainsPoint(v3.Vec{X: 1.1}, 1e-9))
	assert.False(t, h.ContainsPoint(v3.Vec{X: 2, Y: 2, Z: 2}, 1e-9))
}

func TestMergedHullGeometry(t *testing.T) {
	// Union of two abutting cubes hulls to a 2x1x1 box.
	a := cubePoints(v3.Vec{X: -0.5}, 1)
	b := cubePoints(v3.Vec{X: 0.5}, 1)
	h, err := Build(append(a, b...), geom.DefaultTolerance)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, h.Volume(), 1e-9)
	assert.Equal(t, 6, h.FaceCount())
	assert.True(t, h.IsConvex())
}

func TestFaceWindingOutward(t *testing.T) {
	h, err := Build(cubePoints(v3.Vec{}, 2), geom.DefaultTolerance)
	require.NoError(t, err)
	for fi, f := range h.Faces() {
		pl, ok := geom.PlaneFromPoints(h.Vertices()[f[0]], h.Vertices()[f[1]], h.Vertices()[f[2]], 1e-12)
		require.True(t, ok)
		// The loop winding must match the stored outward plane.
		assert.InDelta(t, 1.0, pl.Normal.Dot(h.Planes()[fi].Normal), 1e-9, "face %d winding disagrees with plane", fi)
		// Centroid must be behind the face.
		assert.Negative(t, pl.SignedDistance(h.Centroid()), "face %d does not face outward", fi)
	}
}

func TestVolumeScale(t *testing.T) {
	small, err := Build(cubePoints(v3.Vec{}, 1), geom.DefaultTolerance)
	require.NoError(t, err)
	big, err := Build(cubePoints(v3.Vec{}, 3), geom.DefaultTolerance)
	require.NoError(t, err)
	assert.InDelta(t, 27.0, big.Volume()/small.Volume(), 1e-9)
}

func TestBoundsAndTolerance(t *testing.T) {
	h, err := Build(cubePoints(v3.Vec{X: 5}, 2), 1e-5)
	require.NoError(t, err)
	b := h.Bounds()
	assert.InDelta(t, 4, b.Min.X, 1e-9)
	assert.InDelta(t, 6, b.Max.X, 1e-9)
	assert.Equal(t, 1e-5, h.Tolerance())
	assert.False(t, math.IsNaN(h.SurfaceArea()))
}
