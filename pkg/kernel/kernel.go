// Package kernel defines the abstract host-primitive interface for the
// mesh operations the pipeline treats as black boxes: plane bisection,
// decimation and cellular fracture. Implementations (native, or a
// bridge into a host authoring environment) provide the operations
// behind this interface, so the extraction strategies never depend on a
// particular geometry backend.
package kernel

import (
	"github.com/chazu/hullgen/pkg/geom"
	"github.com/chazu/hullgen/pkg/mesh"
)

// Kernel is the abstract geometric-primitive interface. All operations
// return new meshes; inputs are never mutated.
type Kernel interface {
	// PlaneBisect splits a mesh with a cutting plane. Front receives
	// geometry on the side the plane normal points toward, back the
	// rest. Either result may be empty.
	PlaneBisect(m *mesh.Mesh, pl geom.Plane) (front, back *mesh.Mesh, err error)

	// Decimate reduces mesh complexity. A ratio of 1 returns the mesh
	// unchanged; lower ratios reduce the vertex count roughly in
	// proportion.
	Decimate(m *mesh.Mesh, ratio float64) (*mesh.Mesh, error)

	// Fracture shatters a mesh into at most targetCount cellular
	// pieces. Fewer pieces may be returned when cells come up empty.
	Fracture(m *mesh.Mesh, targetCount int) ([]*mesh.Mesh, error)
}
