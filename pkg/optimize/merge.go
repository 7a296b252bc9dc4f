package optimize

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/hullgen/pkg/hull"
)

// Similarity scores how alike two hulls are: a weighted sum of their
// normalized face-count difference and volume ratio. Lower is more
// similar; identical hulls score 0. The two modifiers are independent
// tuning coefficients rather than a fixed formula.
func Similarity(a, b *hull.Hull, scaleModifier, distanceModifier float64) float64 {
	fa, fb := float64(a.FaceCount()), float64(b.FaceCount())
	faceTerm := math.Abs(fa-fb) / math.Max(fa, fb)

	va, vb := a.Volume(), b.Volume()
	volTerm := 1 - math.Min(va, vb)/math.Max(va, vb)

	return scaleModifier*faceTerm + distanceModifier*volTerm
}

// adjacent reports whether two hulls' bounding regions are within the
// adjacency distance.
func adjacent(a, b *hull.Hull, dist float64) bool {
	return a.Bounds().Distance(b.Bounds()) <= dist
}

// pairKey orders a hull index pair canonically for the blocked-pair set.
type pairKey struct{ lo, hi int }

// MergeSimilars greedily merges similar adjacent hulls: the best
// (lowest) scoring adjacent pair within the similarity threshold is
// replaced by the convex hull of both hulls' vertices, and scores are
// recomputed. Ties break by ascending hull index, keeping the result
// deterministic. Each accepted merge strictly decreases the hull
// count, which bounds the iteration.
//
// Merging is lossy: it reduces hull count and grows per-hull volume,
// and cannot be undone without the source mesh.
func MergeSimilars(m *hull.CollisionModel, opts Options) (*hull.CollisionModel, Stats) {
	opts = opts.withDefaults()
	var stats Stats

	hulls := append([]*hull.Hull(nil), m.Hulls...)
	// Pairs whose merged rebuild came out degenerate; retrying them
	// would loop forever. Keyed by hull identity order, reset on any
	// successful merge since indices shift.
	blocked := map[pairKey]bool{}

	for {
		bestI, bestJ := -1, -1
		bestScore := math.Inf(1)
		for i := 0; i < len(hulls); i++ {
			for j := i + 1; j < len(hulls); j++ {
				if blocked[pairKey{i, j}] || !adjacent(hulls[i], hulls[j], opts.AdjacencyDistance) {
					continue
				}
				score := Similarity(hulls[i], hulls[j], opts.ScaleModifier, opts.DistanceModifier)
				if score > opts.SimilarFactor {
					continue
				}
				if score < bestScore {
					bestScore, bestI, bestJ = score, i, j
				}
			}
		}
		if bestI < 0 {
			break
		}

		points := append([]v3.Vec(nil), hulls[bestI].Vertices()...)
		points = append(points, hulls[bestJ].Vertices()...)
		merged, err := hull.Build(points, opts.Tolerance)
		if err != nil {
			// Cannot happen for two valid hulls, but stay fail-soft.
			// Both hulls remain in the model, so nothing counts as
			// dropped; the pair is only barred from retrying.
			blocked[pairKey{bestI, bestJ}] = true
			continue
		}

		// Replace the pair: merged hull takes the lower slot so
		// insertion order is preserved for downstream metadata.
		hulls[bestI] = merged
		hulls = append(hulls[:bestJ], hulls[bestJ+1:]...)
		blocked = map[pairKey]bool{}
		stats.Merged++
	}

	out := cloneShell(m)
	out.Hulls = hulls
	return out, stats
}
