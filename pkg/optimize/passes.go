package optimize

import (
	"github.com/chazu/hullgen/pkg/hull"
)

// RemoveThin removes hulls whose size metric falls below a fraction of
// the model mean. The metric is volume; when the model's total volume
// is below tolerance the volumes are unreliable and face count is used
// instead. A single pass: the mean is computed over the pre-removal
// population, so removal decisions are independent of removal order.
func RemoveThin(m *hull.CollisionModel, opts Options) (*hull.CollisionModel, Stats) {
	opts = opts.withDefaults()
	var stats Stats
	out := cloneShell(m)
	if len(m.Hulls) == 0 {
		return out, stats
	}

	metric := func(h *hull.Hull) float64 { return h.Volume() }
	if m.TotalVolume() <= opts.Tolerance {
		metric = func(h *hull.Hull) float64 { return float64(h.FaceCount()) }
	}

	var sum float64
	for _, h := range m.Hulls {
		sum += metric(h)
	}
	mean := sum / float64(len(m.Hulls))
	cutoff := mean * opts.ThinThreshold

	for _, h := range m.Hulls {
		if metric(h) < cutoff {
			stats.Removed++
			continue
		}
		out.Hulls = append(out.Hulls, h)
	}
	return out, stats
}

// RemoveInside removes hulls enclosed by another hull: hull A counts as
// inside hull B when at least ContainFraction of A's vertices lie
// within B's convex volume. Mutually containing pairs (near-duplicate
// hulls) lose only the smaller-volume hull, and a hull already marked
// for removal never marks its own container in the same pass.
func RemoveInside(m *hull.CollisionModel, opts Options) (*hull.CollisionModel, Stats) {
	opts = opts.withDefaults()
	var stats Stats
	out := cloneShell(m)

	marked := make([]bool, len(m.Hulls))
	for i, a := range m.Hulls {
		if marked[i] {
			continue
		}
		for j, b := range m.Hulls {
			if i == j || marked[i] || marked[j] {
				continue
			}
			if !boxOverlap(a, b, opts.Tolerance) || !containedIn(a, b, opts) {
				continue
			}
			if containedIn(b, a, opts) {
				// Mutual containment: keep the larger hull.
				if a.Volume() <= b.Volume() {
					marked[i] = true
				} else {
					marked[j] = true
				}
				continue
			}
			marked[i] = true
		}
	}

	for i, h := range m.Hulls {
		if marked[i] {
			stats.Removed++
			continue
		}
		out.Hulls = append(out.Hulls, h)
	}
	return out, stats
}

// boxOverlap is the cheap rejection before the exact containment
// test: hulls with disjoint bounding boxes share no vertices. The
// prune never decides removal, only the vertex fraction does, so a
// hull protruding past its container's box still gets the exact test.
func boxOverlap(a, b *hull.Hull, tol float64) bool {
	return a.Bounds().Distance(b.Bounds()) <= tol
}

// containedIn reports whether at least ContainFraction of a's vertices
// lie inside b.
func containedIn(a, b *hull.Hull, opts Options) bool {
	inside := 0
	for _, p := range a.Vertices() {
		if b.ContainsPoint(p, opts.Tolerance) {
			inside++
		}
	}
	return float64(inside) >= opts.ContainFraction*float64(a.VertexCount())
}

// ForceConvex rebuilds every hull from its own vertices, repairing
// convexity broken by decimation. A no-op on already-convex hulls;
// hulls whose rebuild comes out degenerate are dropped with a count.
func ForceConvex(m *hull.CollisionModel, opts Options) (*hull.CollisionModel, Stats) {
	opts = opts.withDefaults()
	var stats Stats
	out := cloneShell(m)
	for _, h := range m.Hulls {
		rebuilt, err := hull.Build(h.Vertices(), opts.Tolerance)
		if err != nil {
			stats.Dropped++
			continue
		}
		out.Hulls = append(out.Hulls, rebuilt)
	}
	return out, stats
}
