// Package optimize provides the composable transforms that reduce and
// clean a collision model's hull list: merging similar adjacent hulls,
// removing thin hulls, removing contained hulls, and re-forcing
// convexity. Every transform is fail-soft per hull — a hull that cannot
// be rebuilt is dropped and counted, never fatal to the model — and
// returns a new model, leaving its input untouched.
package optimize

import (
	"github.com/chazu/hullgen/pkg/geom"
	"github.com/chazu/hullgen/pkg/hull"
)

// Options holds the optimizer tuning coefficients.
type Options struct {
	// Tolerance is the shared numeric tolerance. Zero selects
	// geom.DefaultTolerance.
	Tolerance float64
	// AdjacencyDistance is the bounding-region distance within which
	// two hulls count as adjacent. Zero selects 0.15.
	AdjacencyDistance float64
	// SimilarFactor is the similarity threshold: a pair merges while
	// its score stays at or below this value. Zero selects 0.25.
	SimilarFactor float64
	// ScaleModifier weights the face-count-difference term of the
	// similarity score. Zero selects 1.
	ScaleModifier float64
	// DistanceModifier weights the volume-ratio term of the similarity
	// score. Zero selects 1.
	DistanceModifier float64
	// ThinThreshold is the fraction of the mean size metric below
	// which a hull is removed as thin. Zero selects 0.1.
	ThinThreshold float64
	// ContainFraction is the fraction of a hull's vertices that must
	// lie inside another hull for it to count as contained. Zero
	// selects 0.9.
	ContainFraction float64
}

// withDefaults fills zero-valued options with their defaults.
func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = geom.DefaultTolerance
	}
	if o.AdjacencyDistance <= 0 {
		o.AdjacencyDistance = 0.15
	}
	if o.SimilarFactor <= 0 {
		o.SimilarFactor = 0.25
	}
	if o.ScaleModifier <= 0 {
		o.ScaleModifier = 1
	}
	if o.DistanceModifier <= 0 {
		o.DistanceModifier = 1
	}
	if o.ThinThreshold <= 0 {
		o.ThinThreshold = 0.1
	}
	if o.ContainFraction <= 0 {
		o.ContainFraction = 0.9
	}
	return o
}

// Stats reports what a transform did to the model.
type Stats struct {
	Merged  int // merge operations performed
	Removed int // hulls removed by a filter pass
	Dropped int // hulls lost to degenerate rebuilds
}

// cloneShell copies a model's identity (name, part index, overrides)
// without its hulls.
func cloneShell(m *hull.CollisionModel) *hull.CollisionModel {
	out := hull.NewModel(m.Name)
	out.PartIndex = m.PartIndex
	out.CopyOverridesFrom(m)
	return out
}
