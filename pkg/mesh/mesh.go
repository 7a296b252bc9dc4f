// Package mesh defines the polygon mesh consumed by the hull pipeline.
// A mesh is a vertex position array plus a face list of vertex-index
// loops; faces are polygons, not necessarily triangles, and may carry a
// per-corner UV coordinate set. Meshes are caller-owned value
// structures: pipeline stages return new meshes rather than mutating
// their input.
package mesh

import (
	"errors"
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/hullgen/pkg/geom"
)

// Mesh is a polygon mesh.
type Mesh struct {
	Name  string
	Verts []v3.Vec
	Faces [][]int  // each face is a loop of vertex indices
	UVs   [][]v2.Vec // per-face per-corner UVs, parallel to Faces; nil when absent
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Verts)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no faces.
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}

// HasUVs reports whether the mesh carries a UV set.
func (m *Mesh) HasUVs() bool {
	return m.UVs != nil
}

// Bounds returns the axis-aligned bounding box of the mesh vertices.
func (m *Mesh) Bounds() geom.AABB {
	return geom.AABBOf(m.Verts)
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{Name: m.Name}
	c.Verts = append([]v3.Vec(nil), m.Verts...)
	c.Faces = make([][]int, len(m.Faces))
	for i, f := range m.Faces {
		c.Faces[i] = append([]int(nil), f...)
	}
	if m.UVs != nil {
		c.UVs = make([][]v2.Vec, len(m.UVs))
		for i, fuv := range m.UVs {
			c.UVs[i] = append([]v2.Vec(nil), fuv...)
		}
	}
	return c
}

// FacePoints returns the positions of face i's corners in loop order.
func (m *Mesh) FacePoints(i int) []v3.Vec {
	f := m.Faces[i]
	pts := make([]v3.Vec, len(f))
	for j, vi := range f {
		pts[j] = m.Verts[vi]
	}
	return pts
}

// FaceNormal returns the (unnormalized-robust) unit normal of face i
// using Newell's method, which tolerates slightly non-planar polygons.
// Returns the zero vector for degenerate faces.
func (m *Mesh) FaceNormal(i int) v3.Vec {
	f := m.Faces[i]
	var n v3.Vec
	for j := range f {
		a := m.Verts[f[j]]
		b := m.Verts[f[(j+1)%len(f)]]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	l := n.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return n.DivScalar(l)
}

// FaceCentroid returns the arithmetic mean of face i's corners.
func (m *Mesh) FaceCentroid(i int) v3.Vec {
	f := m.Faces[i]
	var c v3.Vec
	for _, vi := range f {
		c = c.Add(m.Verts[vi])
	}
	return c.DivScalar(float64(len(f)))
}

// Weld merges vertices closer than tol and returns a new mesh. Faces
// that collapse below three distinct corners are dropped, along with
// their UVs.
func (m *Mesh) Weld(tol float64) *Mesh {
	if tol <= 0 {
		return m.Clone()
	}
	type cell struct{ x, y, z int64 }
	quant := func(p v3.Vec) cell {
		return cell{
			x: int64(math.Round(p.X / tol)),
			y: int64(math.Round(p.Y / tol)),
			z: int64(math.Round(p.Z / tol)),
		}
	}
	remap := make([]int, len(m.Verts))
	first := make(map[cell]int)
	var verts []v3.Vec
	for i, p := range m.Verts {
		c := quant(p)
		if j, ok := first[c]; ok {
			remap[i] = j
			continue
		}
		first[c] = len(verts)
		remap[i] = len(verts)
		verts = append(verts, p)
	}

	out := &Mesh{Name: m.Name, Verts: verts}
	if m.UVs != nil {
		out.UVs = [][]v2.Vec{}
	}
	for fi, f := range m.Faces {
		loop := make([]int, 0, len(f))
		var uvs []v2.Vec
		for j, vi := range f {
			nv := remap[vi]
			if len(loop) > 0 && loop[len(loop)-1] == nv {
				continue // collapsed edge
			}
			loop = append(loop, nv)
			if m.UVs != nil {
				uvs = append(uvs, m.UVs[fi][j])
			}
		}
		// The loop wraps; trim a collapsed closing edge too.
		if len(loop) > 1 && loop[0] == loop[len(loop)-1] {
			loop = loop[:len(loop)-1]
			if uvs != nil {
				uvs = uvs[:len(uvs)-1]
			}
		}
		if len(loop) < 3 {
			continue
		}
		out.Faces = append(out.Faces, loop)
		if out.UVs != nil {
			out.UVs = append(out.UVs, uvs)
		}
	}
	return out
}

// Append adds the vertices and faces of o to m in place, reindexing
// o's faces. UVs are kept only when both meshes carry them.
func (m *Mesh) Append(o *Mesh) {
	base := len(m.Verts)
	m.Verts = append(m.Verts, o.Verts...)
	for fi, f := range o.Faces {
		loop := make([]int, len(f))
		for j, vi := range f {
			loop[j] = vi + base
		}
		m.Faces = append(m.Faces, loop)
		if m.UVs != nil && o.UVs != nil {
			m.UVs = append(m.UVs, append([]v2.Vec(nil), o.UVs[fi]...))
		}
	}
	if m.UVs != nil && o.UVs == nil {
		m.UVs = nil
	}
}

// VertexNormals estimates per-vertex outward normals by averaging the
// normals of incident faces. It returns an error when the mesh is not
// two-manifold (a boundary edge, or an edge shared by more than two
// faces), since normal orientation is unreliable on such meshes.
func (m *Mesh) VertexNormals() ([]v3.Vec, error) {
	type edge struct{ a, b int }
	edgeUse := make(map[edge]int)
	for _, f := range m.Faces {
		for j := range f {
			a, b := f[j], f[(j+1)%len(f)]
			if a > b {
				a, b = b, a
			}
			edgeUse[edge{a, b}]++
		}
	}
	for e, n := range edgeUse {
		if n != 2 {
			return nil, fmt.Errorf("%w: edge %d-%d used by %d faces", ErrNonManifold, e.a, e.b, n)
		}
	}

	normals := make([]v3.Vec, len(m.Verts))
	for i := range m.Faces {
		fn := m.FaceNormal(i)
		for _, vi := range m.Faces[i] {
			normals[vi] = normals[vi].Add(fn)
		}
	}
	for i, n := range normals {
		l := n.Length()
		if l > 0 {
			normals[i] = n.DivScalar(l)
		}
	}
	return normals, nil
}

// ErrNonManifold reports geometry on which normal estimation is
// unreliable.
var ErrNonManifold = errors.New("mesh is not two-manifold")

// Box returns an axis-aligned box mesh with six outward-facing quad
// faces, centered at center.
func Box(name string, center, size v3.Vec) *Mesh {
	h := size.MulScalar(0.5)
	min := center.Sub(h)
	max := center.Add(h)
	verts := []v3.Vec{
		{X: min.X, Y: min.Y, Z: min.Z}, // 0
		{X: max.X, Y: min.Y, Z: min.Z}, // 1
		{X: max.X, Y: max.Y, Z: min.Z}, // 2
		{X: min.X, Y: max.Y, Z: min.Z}, // 3
		{X: min.X, Y: min.Y, Z: max.Z}, // 4
		{X: max.X, Y: min.Y, Z: max.Z}, // 5
		{X: max.X, Y: max.Y, Z: max.Z}, // 6
		{X: min.X, Y: max.Y, Z: max.Z}, // 7
	}
	faces := [][]int{
		{3, 2, 1, 0}, // bottom (-z)
		{4, 5, 6, 7}, // top (+z)
		{0, 1, 5, 4}, // front (-y)
		{2, 3, 7, 6}, // back (+y)
		{3, 0, 4, 7}, // left (-x)
		{1, 2, 6, 5}, // right (+x)
	}
	return &Mesh{Name: name, Verts: verts, Faces: faces}
}
