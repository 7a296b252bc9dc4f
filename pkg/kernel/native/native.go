// Package native implements the kernel.Kernel interface with pure
// in-process mesh operations, making the pipeline self-contained when
// no host authoring environment supplies its own primitives.
package native

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/hullgen/pkg/geom"
	"github.com/chazu/hullgen/pkg/kernel"
	"github.com/chazu/hullgen/pkg/mesh"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Native)(nil)

// Native implements kernel.Kernel.
type Native struct {
	Tol  float64 // weld/coplanarity tolerance
	Seed int64   // RNG seed for fracture seed points
}

// New returns a Native kernel with the given tolerance and a fixed
// default fracture seed, so repeated runs produce identical pieces.
func New(tol float64) *Native {
	if tol <= 0 {
		tol = geom.DefaultTolerance
	}
	return &Native{Tol: tol, Seed: 1}
}

// ---------------------------------------------------------------------------
// Plane bisection
// ---------------------------------------------------------------------------

// PlaneBisect splits m with the cutting plane pl. Each face is clipped
// against the plane (Sutherland-Hodgman); faces lying in the plane go
// to the back side. When the cut produces a cross-section of three or
// more points, both halves are capped with the cross-section polygon,
// which keeps halves of sealed convex meshes sealed. UV data does not
// survive bisection.
func (k *Native) PlaneBisect(m *mesh.Mesh, pl geom.Plane) (*mesh.Mesh, *mesh.Mesh, error) {
	front := newBuilder(m.Name, k.Tol)
	back := newBuilder(m.Name, k.Tol)
	var cut []v3.Vec

	for i := range m.Faces {
		pts := m.FacePoints(i)
		minD, maxD := math.Inf(1), math.Inf(-1)
		for _, p := range pts {
			d := pl.SignedDistance(p)
			minD = math.Min(minD, d)
			maxD = math.Max(maxD, d)
		}
		switch {
		case maxD <= k.Tol:
			back.addFace(pts)
		case minD >= -k.Tol:
			front.addFace(pts)
		default:
			fLoop, bLoop, crossings := clipLoop(pts, pl, k.Tol)
			front.addFace(fLoop)
			back.addFace(bLoop)
			cut = append(cut, crossings...)
		}
	}

	if section := capPolygon(cut, pl, k.Tol); section != nil {
		// Back cap winds with the plane normal outward, front cap against it.
		back.addFace(section)
		front.addFace(reversed(section))
	}
	return front.mesh(), back.mesh(), nil
}

// clipLoop splits one face loop against a plane, returning the
// positive-side loop, the negative-side loop, and the edge crossing
// points.
func clipLoop(pts []v3.Vec, pl geom.Plane, tol float64) (front, back, crossings []v3.Vec) {
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		da, db := pl.SignedDistance(a), pl.SignedDistance(b)
		if da >= -tol {
			front = append(front, a)
		}
		if da <= tol {
			back = append(back, a)
		}
		if (da > tol && db < -tol) || (da < -tol && db > tol) {
			t := da / (da - db)
			x := a.Add(b.Sub(a).MulScalar(t))
			front = append(front, x)
			back = append(back, x)
			crossings = append(crossings, x)
		}
	}
	return front, back, crossings
}

// capPolygon orders the cut cross-section points into a convex polygon
// winding counter-clockwise when viewed from the plane normal side.
// Returns nil when the section has fewer than three distinct points.
func capPolygon(cut []v3.Vec, pl geom.Plane, tol float64) []v3.Vec {
	pts := dedup(cut, tol)
	if len(pts) < 3 {
		return nil
	}
	var center v3.Vec
	for _, p := range pts {
		center = center.Add(p)
	}
	center = center.DivScalar(float64(len(pts)))

	// In-plane basis for angular ordering.
	u := pts[0].Sub(center)
	if u.Length() <= tol {
		return nil
	}
	u = u.Normalize()
	v := pl.Normal.Cross(u)
	sort.SliceStable(pts, func(i, j int) bool {
		di, dj := pts[i].Sub(center), pts[j].Sub(center)
		return math.Atan2(di.Dot(v), di.Dot(u)) < math.Atan2(dj.Dot(v), dj.Dot(u))
	})
	return pts
}

func reversed(pts []v3.Vec) []v3.Vec {
	out := make([]v3.Vec, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

func dedup(pts []v3.Vec, tol float64) []v3.Vec {
	var out []v3.Vec
	for _, p := range pts {
		dup := false
		for _, q := range out {
			if p.Sub(q).Length() <= tol {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Decimation
// ---------------------------------------------------------------------------

// Decimate reduces the mesh by clustering vertices on a uniform grid
// sized for roughly ratio * vertex-count surviving vertices. Faces that
// collapse below three distinct corners are dropped. UV data does not
// survive decimation.
func (k *Native) Decimate(m *mesh.Mesh, ratio float64) (*mesh.Mesh, error) {
	if ratio >= 1 {
		out := m.Clone()
		return out, nil
	}
	if ratio <= 0 {
		return nil, fmt.Errorf("decimate: ratio %g out of range (0,1]", ratio)
	}
	target := float64(m.VertexCount()) * ratio
	if target < 4 {
		target = 4
	}
	res := math.Ceil(math.Cbrt(target))
	bounds := m.Bounds()
	size := bounds.Size()
	cell := v3.Vec{
		X: math.Max(size.X/res, k.Tol),
		Y: math.Max(size.Y/res, k.Tol),
		Z: math.Max(size.Z/res, k.Tol),
	}

	type gridCell struct{ x, y, z int64 }
	quant := func(p v3.Vec) gridCell {
		q := p.Sub(bounds.Min)
		return gridCell{
			x: int64(math.Floor(q.X / cell.X)),
			y: int64(math.Floor(q.Y / cell.Y)),
			z: int64(math.Floor(q.Z / cell.Z)),
		}
	}

	// First pass: accumulate cluster averages in first-seen order.
	clusterOf := make(map[gridCell]int)
	remap := make([]int, len(m.Verts))
	var sums []v3.Vec
	var counts []int
	for i, p := range m.Verts {
		c := quant(p)
		ci, ok := clusterOf[c]
		if !ok {
			ci = len(sums)
			clusterOf[c] = ci
			sums = append(sums, v3.Vec{})
			counts = append(counts, 0)
		}
		sums[ci] = sums[ci].Add(p)
		counts[ci]++
		remap[i] = ci
	}
	verts := make([]v3.Vec, len(sums))
	for i := range sums {
		verts[i] = sums[i].DivScalar(float64(counts[i]))
	}

	out := &mesh.Mesh{Name: m.Name, Verts: verts}
	for _, f := range m.Faces {
		loop := make([]int, 0, len(f))
		for _, vi := range f {
			nv := remap[vi]
			if len(loop) > 0 && loop[len(loop)-1] == nv {
				continue
			}
			loop = append(loop, nv)
		}
		if len(loop) > 1 && loop[0] == loop[len(loop)-1] {
			loop = loop[:len(loop)-1]
		}
		if len(loop) >= 3 && distinct(loop) {
			out.Faces = append(out.Faces, loop)
		}
	}
	return out, nil
}

func distinct(loop []int) bool {
	seen := make(map[int]bool, len(loop))
	for _, v := range loop {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// ---------------------------------------------------------------------------
// Cellular fracture
// ---------------------------------------------------------------------------

// Fracture shatters m into Voronoi cells of targetCount seed points
// sampled inside the mesh bounds. Each piece is the mesh clipped to its
// seed's cell by the bisector planes against every other seed. Empty
// cells are skipped, so fewer than targetCount pieces may come back.
func (k *Native) Fracture(m *mesh.Mesh, targetCount int) ([]*mesh.Mesh, error) {
	if targetCount < 2 {
		return nil, fmt.Errorf("fracture: target count %d must be at least 2", targetCount)
	}
	bounds := m.Bounds()
	size := bounds.Size()
	rng := rand.New(rand.NewSource(k.Seed))
	seeds := make([]v3.Vec, targetCount)
	for i := range seeds {
		seeds[i] = v3.Vec{
			X: bounds.Min.X + rng.Float64()*size.X,
			Y: bounds.Min.Y + rng.Float64()*size.Y,
			Z: bounds.Min.Z + rng.Float64()*size.Z,
		}
	}

	var pieces []*mesh.Mesh
	for i, si := range seeds {
		piece := m.Clone()
		for j, sj := range seeds {
			if i == j || piece.IsEmpty() {
				continue
			}
			pl, ok := geom.PlaneFromPointNormal(si.Add(sj).MulScalar(0.5), sj.Sub(si), k.Tol)
			if !ok {
				continue // coincident seeds
			}
			// Keep the side nearer to seed i (behind the bisector).
			_, keep, err := k.PlaneBisect(piece, pl)
			if err != nil {
				return nil, fmt.Errorf("fracture: cell %d: %w", i, err)
			}
			piece = keep
		}
		if !piece.IsEmpty() {
			piece.Name = fmt.Sprintf("%s_cell_%d", m.Name, i)
			pieces = append(pieces, piece)
		}
	}
	return pieces, nil
}

// ---------------------------------------------------------------------------
// Mesh assembly
// ---------------------------------------------------------------------------

// builder accumulates face loops into a mesh, welding positions within
// tolerance to a shared vertex array.
type builder struct {
	name  string
	tol   float64
	verts []v3.Vec
	index map[[3]int64]int
	faces [][]int
}

func newBuilder(name string, tol float64) *builder {
	return &builder{name: name, tol: tol, index: make(map[[3]int64]int)}
}

func (b *builder) vertex(p v3.Vec) int {
	key := [3]int64{
		int64(math.Round(p.X / b.tol)),
		int64(math.Round(p.Y / b.tol)),
		int64(math.Round(p.Z / b.tol)),
	}
	if i, ok := b.index[key]; ok {
		return i
	}
	i := len(b.verts)
	b.index[key] = i
	b.verts = append(b.verts, p)
	return i
}

func (b *builder) addFace(pts []v3.Vec) {
	if len(pts) < 3 {
		return
	}
	loop := make([]int, 0, len(pts))
	for _, p := range pts {
		vi := b.vertex(p)
		if len(loop) > 0 && loop[len(loop)-1] == vi {
			continue
		}
		loop = append(loop, vi)
	}
	if len(loop) > 1 && loop[0] == loop[len(loop)-1] {
		loop = loop[:len(loop)-1]
	}
	if len(loop) >= 3 {
		b.faces = append(b.faces, loop)
	}
}

func (b *builder) mesh() *mesh.Mesh {
	return &mesh.Mesh{Name: b.name, Verts: b.verts, Faces: b.faces}
}
