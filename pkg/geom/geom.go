// Package geom provides the shared numeric primitives for the hull
// pipeline: the coplanarity/duplicate tolerance, planes, and axis-aligned
// bounding boxes. Every distance and volume comparison in the pipeline
// goes through the same tolerance so the stages cannot drift apart.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultTolerance is the default coplanarity and near-duplicate vertex
// tolerance, in mesh units.
const DefaultTolerance = 1e-6

// Plane is an oriented plane in Hessian normal form: a point p lies on
// the plane when Normal·p == Dist. Normal is unit length.
type Plane struct {
	Normal v3.Vec
	Dist   float64
}

// PlaneFromPoints builds the plane through a, b, c with normal
// (b-a)×(c-a). Returns ok=false when the points are colinear within tol.
func PlaneFromPoints(a, b, c v3.Vec, tol float64) (Plane, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Length()
	if l <= tol {
		return Plane{}, false
	}
	n = n.DivScalar(l)
	return Plane{Normal: n, Dist: n.Dot(a)}, true
}

// PlaneFromPointNormal builds the plane through p with the given normal.
// The normal is normalized; a zero normal yields ok=false.
func PlaneFromPointNormal(p, normal v3.Vec, tol float64) (Plane, bool) {
	l := normal.Length()
	if l <= tol {
		return Plane{}, false
	}
	n := normal.DivScalar(l)
	return Plane{Normal: n, Dist: n.Dot(p)}, true
}

// SignedDistance returns the signed distance from p to the plane,
// positive on the side the normal points toward.
func (pl Plane) SignedDistance(p v3.Vec) float64 {
	return pl.Normal.Dot(p) - pl.Dist
}

// Flipped returns the plane with its orientation reversed.
func (pl Plane) Flipped() Plane {
	return Plane{Normal: pl.Normal.MulScalar(-1), Dist: -pl.Dist}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max v3.Vec
}

// AABBOf returns the bounding box of a point set. An empty point set
// yields the zero box.
func AABBOf(points []v3.Vec) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	b := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Center returns the box center.
func (b AABB) Center() v3.Vec {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// Size returns the box extents along each axis.
func (b AABB) Size() v3.Vec {
	return b.Max.Sub(b.Min)
}

// Diagonal returns the length of the box diagonal.
func (b AABB) Diagonal() float64 {
	return b.Max.Sub(b.Min).Length()
}

// Contains reports whether p lies inside the box, expanded by tol.
func (b AABB) Contains(p v3.Vec, tol float64) bool {
	return p.X >= b.Min.X-tol && p.X <= b.Max.X+tol &&
		p.Y >= b.Min.Y-tol && p.Y <= b.Max.Y+tol &&
		p.Z >= b.Min.Z-tol && p.Z <= b.Max.Z+tol
}

// Distance returns the minimum distance between two boxes, zero when
// they overlap or touch.
func (b AABB) Distance(o AABB) float64 {
	dx := axisGap(b.Min.X, b.Max.X, o.Min.X, o.Max.X)
	dy := axisGap(b.Min.Y, b.Max.Y, o.Min.Y, o.Max.Y)
	dz := axisGap(b.Min.Z, b.Max.Z, o.Min.Z, o.Max.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// axisGap returns the gap between intervals [aMin,aMax] and [bMin,bMax],
// zero when they overlap.
func axisGap(aMin, aMax, bMin, bMax float64) float64 {
	if aMax < bMin {
		return bMin - aMax
	}
	if bMax < aMin {
		return aMin - bMax
	}
	return 0
}

// LongestAxis returns 0, 1 or 2 for the axis along which the box is
// largest.
func (b AABB) LongestAxis() int {
	s := b.Size()
	axis := 0
	best := s.X
	if s.Y > best {
		axis, best = 1, s.Y
	}
	if s.Z > best {
		axis = 2
	}
	return axis
}

// AxisNormal returns the unit vector for axis 0, 1 or 2.
func AxisNormal(axis int) v3.Vec {
	switch axis {
	case 0:
		return v3.Vec{X: 1}
	case 1:
		return v3.Vec{Y: 1}
	default:
		return v3.Vec{Z: 1}
	}
}
