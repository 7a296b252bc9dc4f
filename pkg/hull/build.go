package hull

import (
	"fmt"
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/hullgen/pkg/geom"
)

// triFace is a triangle of the working hull during incremental
// construction.
type triFace struct {
	v     [3]int
	plane geom.Plane
	dead  bool
}

// Build computes the convex hull of a point set using the incremental
// (visible faces / horizon edges) algorithm. Near-duplicate points are
// welded within tol first. Returns ErrDegenerate when the input spans
// fewer than three dimensions within tol or has fewer than four
// distinct points.
//
// Construction is deterministic: points are inserted in input order and
// ties are broken by ascending index.
func Build(points []v3.Vec, tol float64) (*Hull, error) {
	if tol <= 0 {
		tol = geom.DefaultTolerance
	}
	pts := weldPoints(points, tol)
	if len(pts) < 4 {
		return nil, fmt.Errorf("%w: %d distinct points", ErrDegenerate, len(pts))
	}

	faces, err := initialTetrahedron(pts, tol)
	if err != nil {
		return nil, err
	}

	// Directed edge (a,b) -> index of the face whose winding contains it.
	edges := make(map[[2]int]int)
	addEdges := func(fi int) {
		f := faces[fi]
		edges[[2]int{f.v[0], f.v[1]}] = fi
		edges[[2]int{f.v[1], f.v[2]}] = fi
		edges[[2]int{f.v[2], f.v[0]}] = fi
	}
	removeEdges := func(fi int) {
		f := faces[fi]
		delete(edges, [2]int{f.v[0], f.v[1]})
		delete(edges, [2]int{f.v[1], f.v[2]})
		delete(edges, [2]int{f.v[2], f.v[0]})
	}
	for fi := range faces {
		addEdges(fi)
	}

	inTetra := map[int]bool{}
	for _, f := range faces {
		inTetra[f.v[0]], inTetra[f.v[1]], inTetra[f.v[2]] = true, true, true
	}

	for pi := range pts {
		if inTetra[pi] {
			continue
		}
		p := pts[pi]

		// Faces the point can see.
		visible := map[int]bool{}
		for fi, f := range faces {
			if !f.dead && f.plane.SignedDistance(p) > tol {
				visible[fi] = true
			}
		}
		if len(visible) == 0 {
			continue // inside or on the current hull
		}

		// Horizon: directed edges of visible faces whose neighbor
		// (the face owning the reversed edge) is not visible.
		// Deterministic order: ascending face index, edges in winding order.
		visList := make([]int, 0, len(visible))
		for fi := range visible {
			visList = append(visList, fi)
		}
		sort.Ints(visList)
		type dirEdge struct{ a, b int }
		var horizon []dirEdge
		for _, fi := range visList {
			f := faces[fi]
			for j := 0; j < 3; j++ {
				a, b := f.v[j], f.v[(j+1)%3]
				nb, ok := edges[[2]int{b, a}]
				if !ok || !visible[nb] {
					horizon = append(horizon, dirEdge{a, b})
				}
			}
		}

		for _, fi := range visList {
			removeEdges(fi)
			faces[fi].dead = true
		}
		for _, e := range horizon {
			pl, ok := geom.PlaneFromPoints(pts[e.a], pts[e.b], p, tol)
			if !ok {
				return nil, fmt.Errorf("%w: collapsed horizon face", ErrDegenerate)
			}
			faces = append(faces, triFace{v: [3]int{e.a, e.b, pi}, plane: pl})
			addEdges(len(faces) - 1)
		}
	}

	return assemble(pts, faces, tol)
}

// weldPoints removes near-duplicates within tol, keeping first
// occurrences in input order.
func weldPoints(points []v3.Vec, tol float64) []v3.Vec {
	type cell struct{ x, y, z int64 }
	seen := make(map[cell]bool, len(points))
	out := make([]v3.Vec, 0, len(points))
	for _, p := range points {
		c := cell{
			x: int64(math.Round(p.X / tol)),
			y: int64(math.Round(p.Y / tol)),
			z: int64(math.Round(p.Z / tol)),
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, p)
	}
	return out
}

// initialTetrahedron picks four points spanning three dimensions and
// returns the four outward-oriented starting faces.
func initialTetrahedron(pts []v3.Vec, tol float64) ([]triFace, error) {
	// Extreme point: lexicographic minimum.
	i0 := 0
	for i, p := range pts {
		q := pts[i0]
		if p.X < q.X || (p.X == q.X && (p.Y < q.Y || (p.Y == q.Y && p.Z < q.Z))) {
			i0 = i
		}
	}
	// Farthest from i0.
	i1, best := -1, tol
	for i, p := range pts {
		if d := p.Sub(pts[i0]).Length(); d > best {
			i1, best = i, d
		}
	}
	if i1 < 0 {
		return nil, fmt.Errorf("%w: all points coincident", ErrDegenerate)
	}
	// Farthest from the line i0-i1.
	dir := pts[i1].Sub(pts[i0]).Normalize()
	i2, best := -1, tol
	for i, p := range pts {
		d := p.Sub(pts[i0]).Cross(dir).Length()
		if d > best {
			i2, best = i, d
		}
	}
	if i2 < 0 {
		return nil, fmt.Errorf("%w: points are colinear", ErrDegenerate)
	}
	base, ok := geom.PlaneFromPoints(pts[i0], pts[i1], pts[i2], tol)
	if !ok {
		return nil, fmt.Errorf("%w: points are colinear", ErrDegenerate)
	}
	// Farthest from the base plane.
	i3, best := -1, tol
	for i, p := range pts {
		if d := math.Abs(base.SignedDistance(p)); d > best {
			i3, best = i, d
		}
	}
	if i3 < 0 {
		return nil, fmt.Errorf("%w: points are coplanar", ErrDegenerate)
	}

	center := pts[i0].Add(pts[i1]).Add(pts[i2]).Add(pts[i3]).DivScalar(4)
	var faces []triFace
	for _, tri := range [][3]int{{i0, i1, i2}, {i0, i1, i3}, {i0, i2, i3}, {i1, i2, i3}} {
		a, b, c := tri[0], tri[1], tri[2]
		pl, ok := geom.PlaneFromPoints(pts[a], pts[b], pts[c], tol)
		if !ok {
			return nil, fmt.Errorf("%w: collapsed tetrahedron face", ErrDegenerate)
		}
		if pl.SignedDistance(center) > 0 {
			b, c = c, b
			pl = pl.Flipped()
		}
		faces = append(faces, triFace{v: [3]int{a, b, c}, plane: pl})
	}
	return faces, nil
}

// assemble compacts the surviving triangles, merges coplanar groups
// into polygon faces, and computes the cached hull metrics.
func assemble(pts []v3.Vec, faces []triFace, tol float64) (*Hull, error) {
	var alive []triFace
	for _, f := range faces {
		if !f.dead {
			alive = append(alive, f)
		}
	}
	if len(alive) < 4 {
		return nil, fmt.Errorf("%w: fewer than 4 hull faces", ErrDegenerate)
	}

	// Compact vertex indices, preserving input order.
	used := map[int]bool{}
	for _, f := range alive {
		used[f.v[0]], used[f.v[1]], used[f.v[2]] = true, true, true
	}
	remap := make(map[int]int, len(used))
	var verts []v3.Vec
	for i := range pts {
		if used[i] {
			remap[i] = len(verts)
			verts = append(verts, pts[i])
		}
	}
	for i := range alive {
		alive[i].v[0] = remap[alive[i].v[0]]
		alive[i].v[1] = remap[alive[i].v[1]]
		alive[i].v[2] = remap[alive[i].v[2]]
	}

	loops, planes := mergeCoplanar(verts, alive, tol)

	h := &Hull{
		verts:  verts,
		faces:  loops,
		planes: planes,
		bounds: geom.AABBOf(verts),
		tol:    tol,
	}
	h.computeMetrics()
	if h.volume <= tol {
		return nil, fmt.Errorf("%w: volume %g below tolerance", ErrDegenerate, h.volume)
	}
	return h, nil
}

// mergeCoplanar groups edge-connected coplanar triangles and replaces
// each group with its boundary polygon. Groups whose boundary does not
// form a single cycle are left as triangles.
func mergeCoplanar(verts []v3.Vec, tris []triFace, tol float64) ([][]int, []geom.Plane) {
	// Angular tolerance for treating two triangle planes as the same
	// face plane. Kept loose relative to tol since hull triangles of a
	// flat face accumulate cross-product drift.
	const normalDot = 1 - 1e-9

	coplanar := func(a, b triFace) bool {
		return a.plane.Normal.Dot(b.plane.Normal) >= normalDot &&
			math.Abs(a.plane.Dist-b.plane.Dist) <= tol*10
	}

	// Adjacency by shared (undirected) edge.
	type uEdge struct{ a, b int }
	und := func(a, b int) uEdge {
		if a > b {
			a, b = b, a
		}
		return uEdge{a, b}
	}
	edgeTris := make(map[uEdge][]int)
	for ti, f := range tris {
		for j := 0; j < 3; j++ {
			e := und(f.v[j], f.v[(j+1)%3])
			edgeTris[e] = append(edgeTris[e], ti)
		}
	}

	group := make([]int, len(tris))
	for i := range group {
		group[i] = -1
	}
	var groups [][]int
	for ti := range tris {
		if group[ti] >= 0 {
			continue
		}
		gi := len(groups)
		queue := []int{ti}
		group[ti] = gi
		var members []int
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, cur)
			f := tris[cur]
			for j := 0; j < 3; j++ {
				e := und(f.v[j], f.v[(j+1)%3])
				for _, nb := range edgeTris[e] {
					if nb != cur && group[nb] < 0 && coplanar(tris[cur], tris[nb]) {
						group[nb] = gi
						queue = append(queue, nb)
					}
				}
			}
		}
		sort.Ints(members)
		groups = append(groups, members)
	}

	var loops [][]int
	var planes []geom.Plane
	for _, members := range groups {
		if len(members) == 1 {
			f := tris[members[0]]
			loops = append(loops, []int{f.v[0], f.v[1], f.v[2]})
			planes = append(planes, f.plane)
			continue
		}
		loop, ok := boundaryLoop(tris, members)
		if ok {
			loops = append(loops, loop)
			planes = append(planes, tris[members[0]].plane)
			continue
		}
		for _, ti := range members {
			f := tris[ti]
			loops = append(loops, []int{f.v[0], f.v[1], f.v[2]})
			planes = append(planes, f.plane)
		}
	}
	return loops, planes
}

// boundaryLoop walks the directed boundary edges of a coplanar triangle
// group into a single polygon loop. Interior edges appear in both
// directions within the group and cancel out.
func boundaryLoop(tris []triFace, members []int) ([]int, bool) {
	type dEdge struct{ a, b int }
	inGroup := make(map[dEdge]bool)
	for _, ti := range members {
		f := tris[ti]
		for j := 0; j < 3; j++ {
			inGroup[dEdge{f.v[j], f.v[(j+1)%3]}] = true
		}
	}
	next := make(map[int]int)
	start := -1
	for _, ti := range members {
		f := tris[ti]
		for j := 0; j < 3; j++ {
			a, b := f.v[j], f.v[(j+1)%3]
			if inGroup[dEdge{b, a}] {
				continue // interior edge
			}
			if _, dup := next[a]; dup {
				return nil, false // non-simple boundary
			}
			next[a] = b
			if start < 0 || a < start {
				start = a
			}
		}
	}
	if start < 0 {
		return nil, false
	}
	loop := []int{start}
	for cur := next[start]; cur != start; cur = next[cur] {
		if len(loop) > len(next) {
			return nil, false // broken cycle
		}
		loop = append(loop, cur)
	}
	if len(loop) != len(next) {
		return nil, false // more than one cycle
	}
	return loop, true
}

// computeMetrics fills the cached volume, surface area and centroid by
// fan-triangulating each face. The signed tetrahedron sum is taken
// about the origin; for a closed convex surface the interior terms
// cancel.
func (h *Hull) computeMetrics() {
	var vol float64
	var area float64
	var weighted v3.Vec
	for _, f := range h.faces {
		for j := 1; j < len(f)-1; j++ {
			a, b, c := h.verts[f[0]], h.verts[f[j]], h.verts[f[j+1]]
			t := a.Dot(b.Cross(c)) / 6
			vol += t
			weighted = weighted.Add(a.Add(b).Add(c).MulScalar(t / 4))
			area += b.Sub(a).Cross(c.Sub(a)).Length() / 2
		}
	}
	h.volume = vol
	h.area = area
	if vol != 0 {
		h.centroid = weighted.DivScalar(vol)
	}
}
