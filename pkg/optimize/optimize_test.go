package optimize

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/hullgen/pkg/hull"
)

// boxHull builds a convex hull for an axis-aligned box.
func boxHull(t *testing.T, center, size v3.Vec) *hull.Hull {
	t.Helper()
	h := size.MulScalar(0.5)
	var pts []v3.Vec
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				pts = append(pts, v3.Vec{
					X: center.X + sx*h.X,
					Y: center.Y + sy*h.Y,
					Z: center.Z + sz*h.Z,
				})
			}
		}
	}
	built, err := hull.Build(pts, 0)
	require.NoError(t, err)
	return built
}

func unitVec(s float64) v3.Vec { return v3.Vec{X: s, Y: s, Z: s} }

// ----------------------------------------------------------------------------
// similarity

func TestSimilarityIdenticalHulls(t *testing.T) {
	a := boxHull(t, v3.Vec{}, unitVec(2))
	b := boxHull(t, v3.Vec{X: 5}, unitVec(2))
	assert.Zero(t, Similarity(a, b, 1, 1))
}

func TestSimilarityVolumeMismatch(t *testing.T) {
	a := boxHull(t, v3.Vec{}, unitVec(2))
	b := boxHull(t, v3.Vec{}, unitVec(1))
	// Same face count, volumes 8 vs 1.
	assert.InDelta(t, 1-1.0/8.0, Similarity(a, b, 1, 1), 1e-9)
	// The volume term is scaled by the distance modifier.
	assert.InDelta(t, 2*(1-1.0/8.0), Similarity(a, b, 1, 2), 1e-9)
}

// ----------------------------------------------------------------------------
// merge

func TestMergeSimilarsAdjacentTwins(t *testing.T) {
	m := hull.NewModel("crate")
	m.Hulls = append(m.Hulls,
		boxHull(t, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, unitVec(1)),
		boxHull(t, v3.Vec{X: 1.55, Y: 0.5, Z: 0.5}, unitVec(1)),
	)

	out, stats := MergeSimilars(m, Options{})
	require.Equal(t, 1, out.HullCount())
	assert.Equal(t, 1, stats.Merged)
	assert.Zero(t, stats.Dropped, "merging valid hulls loses nothing")
	// The merged hull spans both boxes and the gap between them.
	assert.Greater(t, out.Hulls[0].Volume(), 2.0)
	assert.Equal(t, 2, m.HullCount(), "input model must be untouched")
}

func TestMergeSimilarsRespectsAdjacency(t *testing.T) {
	m := hull.NewModel("crate")
	m.Hulls = append(m.Hulls,
		boxHull(t, v3.Vec{}, unitVec(1)),
		boxHull(t, v3.Vec{X: 10}, unitVec(1)),
	)

	out, stats := MergeSimilars(m, Options{})
	assert.Equal(t, 2, out.HullCount())
	assert.Zero(t, stats.Merged)
}

func TestMergeSimilarsRespectsThreshold(t *testing.T) {
	m := hull.NewModel("crate")
	// Touching but wildly different volumes (8 vs 0.001).
	m.Hulls = append(m.Hulls,
		boxHull(t, v3.Vec{}, unitVec(2)),
		boxHull(t, v3.Vec{X: 1.05}, unitVec(0.1)),
	)

	out, stats := MergeSimilars(m, Options{})
	assert.Equal(t, 2, out.HullCount())
	assert.Zero(t, stats.Merged)
}

func TestMergeSimilarsChain(t *testing.T) {
	// Three cubes in a row: each merge produces a new candidate pair,
	// so the whole row collapses to one hull.
	m := hull.NewModel("beam")
	for i := 0; i < 3; i++ {
		m.Hulls = append(m.Hulls, boxHull(t, v3.Vec{X: 1.1 * float64(i)}, unitVec(1)))
	}

	out, stats := MergeSimilars(m, Options{SimilarFactor: 0.6})
	assert.Equal(t, 1, out.HullCount())
	assert.Equal(t, 2, stats.Merged)
}

// ----------------------------------------------------------------------------
// thin removal

func TestRemoveThin(t *testing.T) {
	m := hull.NewModel("door")
	m.Hulls = append(m.Hulls,
		boxHull(t, v3.Vec{}, unitVec(1)),
		boxHull(t, v3.Vec{X: 5}, unitVec(1)),
		boxHull(t, v3.Vec{X: 10}, v3.Vec{X: 1, Y: 1, Z: 0.01}),
	)

	out, stats := RemoveThin(m, Options{})
	require.Equal(t, 2, out.HullCount())
	assert.Equal(t, 1, stats.Removed)

	// A second pass over the surviving hulls removes nothing.
	again, stats := RemoveThin(out, Options{})
	assert.Equal(t, 2, again.HullCount())
	assert.Zero(t, stats.Removed)
}

func TestRemoveThinSinglePass(t *testing.T) {
	// Volumes 1.0, 0.3 and 0.02: with the mean taken once up front,
	// only the smallest falls below the cutoff. A cascading pass would
	// also take the 0.3 hull after the first removal shifted the mean.
	m := hull.NewModel("stack")
	m.Hulls = append(m.Hulls,
		boxHull(t, v3.Vec{}, unitVec(1)),
		boxHull(t, v3.Vec{X: 5}, v3.Vec{X: 1, Y: 1, Z: 0.3}),
		boxHull(t, v3.Vec{X: 10}, v3.Vec{X: 1, Y: 1, Z: 0.02}),
	)

	out, stats := RemoveThin(m, Options{ThinThreshold: 0.5})
	assert.Equal(t, 2, out.HullCount())
	assert.Equal(t, 1, stats.Removed)
}

// ----------------------------------------------------------------------------
// inside removal

func TestRemoveInside(t *testing.T) {
	m := hull.NewModel("barrel")
	m.Hulls = append(m.Hulls,
		boxHull(t, v3.Vec{}, unitVec(4)),
		boxHull(t, v3.Vec{}, unitVec(1)),
		boxHull(t, v3.Vec{X: 10}, unitVec(1)),
	)

	out, stats := RemoveInside(m, Options{})
	require.Equal(t, 2, out.HullCount())
	assert.Equal(t, 1, stats.Removed)
	// The big container and the distant hull survive.
	assert.InDelta(t, 64.0, out.Hulls[0].Volume(), 1e-9)
	assert.InDelta(t, 1.0, out.Hulls[1].Volume(), 1e-9)
}

func TestRemoveInsideMutualContainment(t *testing.T) {
	// Two near-identical hulls containing each other: exactly one
	// survives, and it is the larger.
	m := hull.NewModel("dup")
	m.Hulls = append(m.Hulls,
		boxHull(t, v3.Vec{}, unitVec(1)),
		boxHull(t, v3.Vec{}, unitVec(1.0000001)),
	)

	out, stats := RemoveInside(m, Options{Tolerance: 1e-3})
	require.Equal(t, 1, out.HullCount())
	assert.Equal(t, 1, stats.Removed)
	assert.Greater(t, out.Hulls[0].Volume(), 1.0)
}

func TestRemoveInsideProtrudingHull(t *testing.T) {
	// An octagonal prism inside a cube, with one apex vertex poking
	// through the top: 16 of 17 hull vertices are contained, which
	// clears the 0.9 fraction even though the hull's bounding box
	// extends past the container's.
	var pts []v3.Vec
	for _, z := range []float64{-1.5, 1.5} {
		for i := 0; i < 8; i++ {
			angle := 2 * math.Pi * float64(i) / 8
			pts = append(pts, v3.Vec{X: 1.5 * math.Cos(angle), Y: 1.5 * math.Sin(angle), Z: z})
		}
	}
	pts = append(pts, v3.Vec{Z: 3.5})
	spike, err := hull.Build(pts, 0)
	require.NoError(t, err)
	require.Equal(t, 17, spike.VertexCount())

	m := hull.NewModel("antenna")
	m.Hulls = append(m.Hulls, spike, boxHull(t, v3.Vec{}, unitVec(4)))

	out, stats := RemoveInside(m, Options{})
	require.Equal(t, 1, out.HullCount())
	assert.Equal(t, 1, stats.Removed)
	assert.InDelta(t, 64.0, out.Hulls[0].Volume(), 1e-9)
}

func TestRemoveInsidePartialOverlapKept(t *testing.T) {
	m := hull.NewModel("overlap")
	m.Hulls = append(m.Hulls,
		boxHull(t, v3.Vec{}, unitVec(2)),
		boxHull(t, v3.Vec{X: 1.5}, unitVec(2)),
	)

	out, stats := RemoveInside(m, Options{})
	assert.Equal(t, 2, out.HullCount())
	assert.Zero(t, stats.Removed)
}

// ----------------------------------------------------------------------------
// force convex

func TestForceConvexPreservesValidHulls(t *testing.T) {
	m := hull.NewModel("prop")
	m.Hulls = append(m.Hulls,
		boxHull(t, v3.Vec{}, unitVec(2)),
		boxHull(t, v3.Vec{X: 5}, unitVec(1)),
	)
	m.PartIndex = 3
	require.NoError(t, m.SetOverride("$concave", "1"))

	out, stats := ForceConvex(m, Options{})
	require.Equal(t, 2, out.HullCount())
	assert.Zero(t, stats.Dropped)
	assert.InDelta(t, m.Hulls[0].Volume(), out.Hulls[0].Volume(), 1e-9)
	assert.Equal(t, 3, out.PartIndex)
	assert.Len(t, out.Overrides(), 1)
}
