package extract

import (
	"fmt"

	"github.com/chazu/hullgen/pkg/geom"
	"github.com/chazu/hullgen/pkg/hull"
	"github.com/chazu/hullgen/pkg/kernel"
	"github.com/chazu/hullgen/pkg/mesh"
)

// maxBisectDepth bounds the recursion when a cut fails to reduce face
// counts (e.g. many faces straddling every candidate plane).
const maxBisectDepth = 32

// Bisection recursively partitions the mesh with cutting planes until
// each partition's face count falls below the threshold, then hulls
// each terminal partition's point set. Cut planes pass through the
// partition's bounds center, perpendicular to its longest axis.
type Bisection struct{}

// Name implements Strategy.
func (Bisection) Name() string { return "bisect" }

// Extract implements Strategy.
func (Bisection) Extract(m *mesh.Mesh, k kernel.Kernel, p Params) ([]*hull.Hull, *Report, error) {
	rep := &Report{}
	threshold := p.FaceThreshold
	if threshold <= 0 {
		threshold = 32
	}

	var pieces []*mesh.Mesh
	var recurse func(sub *mesh.Mesh, depth int) error
	recurse = func(sub *mesh.Mesh, depth int) error {
		if sub.IsEmpty() {
			return nil
		}
		if sub.FaceCount() <= threshold || depth >= maxBisectDepth {
			pieces = append(pieces, sub)
			return nil
		}
		b := sub.Bounds()
		pl, ok := geom.PlaneFromPointNormal(b.Center(), geom.AxisNormal(b.LongestAxis()), p.tolerance())
		if !ok {
			pieces = append(pieces, sub)
			return nil
		}
		front, back, err := k.PlaneBisect(sub, pl)
		if err != nil {
			return fmt.Errorf("bisecting at depth %d: %w", depth, err)
		}
		if front.IsEmpty() || back.IsEmpty() {
			// The cut made no progress; stop splitting this branch.
			pieces = append(pieces, sub)
			return nil
		}
		if err := recurse(front, depth+1); err != nil {
			return err
		}
		return recurse(back, depth+1)
	}
	if err := recurse(m, 0); err != nil {
		return nil, rep, err
	}

	hulls, err := hullPieces(pieces, k, p, rep)
	return hulls, rep, err
}
