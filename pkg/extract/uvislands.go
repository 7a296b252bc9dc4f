package extract

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/hullgen/pkg/hull"
	"github.com/chazu/hullgen/pkg/kernel"
	"github.com/chazu/hullgen/pkg/mesh"
)

// UVIslands partitions faces by connected UV islands and hulls each
// island's 3D points. Two faces are in the same island iff they share
// a mesh edge whose UV coordinates agree on both faces, which lets an
// artist control the decomposition through texture layout: a UV seam
// is a hull boundary.
type UVIslands struct{}

// Name implements Strategy.
func (UVIslands) Name() string { return "uv" }

// Extract implements Strategy.
func (UVIslands) Extract(m *mesh.Mesh, k kernel.Kernel, p Params) ([]*hull.Hull, *Report, error) {
	if !m.HasUVs() {
		return nil, nil, fmt.Errorf("uv islands on %q: %w", m.Name, ErrNoUVs)
	}
	rep := &Report{}
	groups := connectedFaces(m, uvEdgeAdjacency(m, p.tolerance()))
	pieces := make([]*mesh.Mesh, len(groups))
	for i, g := range groups {
		pieces[i] = subMesh(m, g)
	}
	hulls, err := hullPieces(pieces, k, p, rep)
	return hulls, rep, err
}

// uvEdgeAdjacency returns, per face, the faces connected to it through
// a shared UV-space edge: the faces share a mesh edge and their UV
// coordinates at that edge's endpoints match within tol.
func uvEdgeAdjacency(m *mesh.Mesh, tol float64) [][]int {
	type edge struct{ a, b int }
	type edgeUse struct {
		face     int
		uvA, uvB v2.Vec // UVs at mesh vertices a and b (a < b)
	}
	uses := make(map[edge][]edgeUse)
	for fi, f := range m.Faces {
		for j := range f {
			a, b := f[j], f[(j+1)%len(f)]
			ua, ub := m.UVs[fi][j], m.UVs[fi][(j+1)%len(f)]
			if a > b {
				a, b = b, a
				ua, ub = ub, ua
			}
			uses[edge{a, b}] = append(uses[edge{a, b}], edgeUse{face: fi, uvA: ua, uvB: ub})
		}
	}
	sameUV := func(p, q v2.Vec) bool {
		return p.Sub(q).Length() <= tol
	}
	adj := make([][]int, len(m.Faces))
	for _, us := range uses {
		for i, u1 := range us {
			for _, u2 := range us[i+1:] {
				if sameUV(u1.uvA, u2.uvA) && sameUV(u1.uvB, u2.uvB) {
					adj[u1.face] = append(adj[u1.face], u2.face)
					adj[u2.face] = append(adj[u2.face], u1.face)
				}
			}
		}
	}
	return adj
}
