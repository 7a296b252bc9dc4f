package extract

import (
	"sort"

	"github.com/chazu/hullgen/pkg/hull"
	"github.com/chazu/hullgen/pkg/kernel"
	"github.com/chazu/hullgen/pkg/mesh"
)

// FaceGroups hulls each edge-connected group of faces independently,
// producing one hull per topological piece. Suited to meshes already
// composed of discrete convex-ish chunks.
type FaceGroups struct{}

// Name implements Strategy.
func (FaceGroups) Name() string { return "face" }

// Extract implements Strategy.
func (FaceGroups) Extract(m *mesh.Mesh, k kernel.Kernel, p Params) ([]*hull.Hull, *Report, error) {
	rep := &Report{}
	groups := connectedFaces(m, sharedEdgeAdjacency(m))
	pieces := make([]*mesh.Mesh, len(groups))
	for i, g := range groups {
		pieces[i] = subMesh(m, g)
	}
	hulls, err := hullPieces(pieces, k, p, rep)
	return hulls, rep, err
}

// sharedEdgeAdjacency returns, per face, the faces sharing an
// undirected mesh edge with it.
func sharedEdgeAdjacency(m *mesh.Mesh) [][]int {
	type edge struct{ a, b int }
	edgeFaces := make(map[edge][]int)
	for fi, f := range m.Faces {
		for j := range f {
			a, b := f[j], f[(j+1)%len(f)]
			if a > b {
				a, b = b, a
			}
			edgeFaces[edge{a, b}] = append(edgeFaces[edge{a, b}], fi)
		}
	}
	adj := make([][]int, len(m.Faces))
	for _, faces := range edgeFaces {
		for _, fi := range faces {
			for _, fj := range faces {
				if fi != fj {
					adj[fi] = append(adj[fi], fj)
				}
			}
		}
	}
	return adj
}

// connectedFaces groups face indices into connected components using
// the given adjacency. Components come back in ascending order of
// their lowest face index, members ascending, keeping extraction
// deterministic.
func connectedFaces(m *mesh.Mesh, adj [][]int) [][]int {
	group := make([]int, len(m.Faces))
	for i := range group {
		group[i] = -1
	}
	var groups [][]int
	for fi := range m.Faces {
		if group[fi] >= 0 {
			continue
		}
		gi := len(groups)
		queue := []int{fi}
		group[fi] = gi
		var members []int
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, cur)
			for _, nb := range adj[cur] {
				if group[nb] < 0 {
					group[nb] = gi
					queue = append(queue, nb)
				}
			}
		}
		sort.Ints(members)
		groups = append(groups, members)
	}
	return groups
}
