// Package partition splits an oversized collision model into a series
// of part models, each within the engine's per-model hull limit. Parts
// preserve hull order and inherit the source model's overrides, so a
// partitioned model compiles to the same collision geometry as the
// original spread across several props.
package partition

import (
	"fmt"

	"github.com/chazu/hullgen/pkg/hull"
)

// DefaultMaxHulls is the engine's per-collision-model hull limit.
const DefaultMaxHulls = 32

// Split partitions a model into parts of at most maxHulls hulls each.
// Hulls keep their order: part 0 holds the first maxHulls hulls, part
// 1 the next, and so on. Every part receives a sequential PartIndex
// starting at 0 and a copy of the source overrides. The part count is
// always ceil(hull count / maxHulls): a model within the limit comes
// back as a single part, still indexed, and an empty model yields no
// parts.
//
// maxHulls of zero selects DefaultMaxHulls; a negative limit is an
// error.
func Split(m *hull.CollisionModel, maxHulls int) ([]*hull.CollisionModel, error) {
	if maxHulls < 0 {
		return nil, fmt.Errorf("partition: invalid hull limit %d", maxHulls)
	}
	if maxHulls == 0 {
		maxHulls = DefaultMaxHulls
	}

	n := m.HullCount()
	count := (n + maxHulls - 1) / maxHulls

	parts := make([]*hull.CollisionModel, 0, count)
	for i := 0; i < count; i++ {
		part := hull.NewModel(m.Name)
		part.PartIndex = i
		part.CopyOverridesFrom(m)

		lo := i * maxHulls
		hi := lo + maxHulls
		if hi > n {
			hi = n
		}
		part.Hulls = append(part.Hulls, m.Hulls[lo:hi]...)
		parts = append(parts, part)
	}
	return parts, nil
}
