// Package hull defines the convex polyhedron used as the collision
// primitive throughout the pipeline, the convex hull builder that
// constructs it, and the ordered hull collection (CollisionModel) the
// later stages operate on.
//
// A Hull is immutable once built: transforms replace hulls rather than
// mutating vertices in place, which keeps the cached centroid, volume
// and face-count metrics valid for the lifetime of the value.
package hull

import (
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/hullgen/pkg/geom"
)

// ErrDegenerate reports hull construction input that spans fewer than
// three dimensions within tolerance, or has fewer than four distinct
// points.
var ErrDegenerate = errors.New("degenerate geometry")

// Hull is a convex polyhedron. Faces are cyclic vertex-index loops with
// outward-facing winding; every face plane has all other vertices on or
// behind it.
type Hull struct {
	verts    []v3.Vec
	faces    [][]int
	planes   []geom.Plane
	centroid v3.Vec
	volume   float64
	area     float64
	bounds   geom.AABB
	tol      float64
}

// Vertices returns the hull's vertex positions. The returned slice is
// owned by the hull and must not be modified.
func (h *Hull) Vertices() []v3.Vec { return h.verts }

// Faces returns the hull's face loops (outward winding). The returned
// slices are owned by the hull and must not be modified.
func (h *Hull) Faces() [][]int { return h.faces }

// Planes returns the outward-oriented face planes, parallel to Faces.
func (h *Hull) Planes() []geom.Plane { return h.planes }

// FaceCount returns the number of planar faces.
func (h *Hull) FaceCount() int { return len(h.faces) }

// VertexCount returns the number of hull vertices.
func (h *Hull) VertexCount() int { return len(h.verts) }

// Volume returns the enclosed volume, cached at construction.
func (h *Hull) Volume() float64 { return h.volume }

// SurfaceArea returns the surface area, cached at construction.
func (h *Hull) SurfaceArea() float64 { return h.area }

// Centroid returns the volume centroid, cached at construction.
func (h *Hull) Centroid() v3.Vec { return h.centroid }

// Bounds returns the axis-aligned bounding box.
func (h *Hull) Bounds() geom.AABB { return h.bounds }

// Tolerance returns the numeric tolerance the hull was built with.
func (h *Hull) Tolerance() float64 { return h.tol }

// ContainsPoint reports whether p lies inside the hull or on its
// boundary: on or behind every face plane within tol.
func (h *Hull) ContainsPoint(p v3.Vec, tol float64) bool {
	for _, pl := range h.planes {
		if pl.SignedDistance(p) > tol {
			return false
		}
	}
	return true
}

// IsConvex validates the convexity invariant: every face is planar and
// every vertex lies on or behind every face plane. The check tolerance
// scales with the hull size so large hulls are not failed on float
// drift.
func (h *Hull) IsConvex() bool {
	eps := h.tol * math.Max(1, h.bounds.Diagonal())
	for fi, f := range h.faces {
		if len(f) < 3 {
			return false
		}
		pl := h.planes[fi]
		for _, vi := range f {
			if math.Abs(pl.SignedDistance(h.verts[vi])) > eps {
				return false // non-planar face
			}
		}
		for _, v := range h.verts {
			if pl.SignedDistance(v) > eps {
				return false
			}
		}
	}
	return true
}
