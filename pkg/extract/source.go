package extract

import (
	"github.com/chazu/hullgen/pkg/hull"
	"github.com/chazu/hullgen/pkg/kernel"
	"github.com/chazu/hullgen/pkg/mesh"
)

// Source is a host-owned mesh with mutable visibility state. The host
// hides the source while its collision model is generated and shown in
// its place; Run guarantees visibility is restored on every exit path.
type Source interface {
	Mesh() *mesh.Mesh
	SetHidden(hidden bool)
}

// Run extracts a collision model from a source mesh using the given
// strategy. The source is hidden for the duration of the extraction
// and restored afterward, including when the strategy fails. The
// resulting model is named after the source with the collision-model
// suffix.
func Run(src Source, strat Strategy, k kernel.Kernel, p Params) (*hull.CollisionModel, *Report, error) {
	src.SetHidden(true)
	defer src.SetHidden(false)

	m := src.Mesh()
	hulls, rep, err := strat.Extract(m, k, p)
	if err != nil {
		return nil, rep, err
	}
	model := hull.NewModel(m.Name + "_phys")
	model.Hulls = hulls
	return model, rep, nil
}

// MemorySource is a Source backed by an in-memory mesh, used when no
// host authoring environment is involved.
type MemorySource struct {
	m      *mesh.Mesh
	hidden bool
}

// NewMemorySource wraps a mesh as a Source.
func NewMemorySource(m *mesh.Mesh) *MemorySource {
	return &MemorySource{m: m}
}

// Mesh returns the wrapped mesh.
func (s *MemorySource) Mesh() *mesh.Mesh { return s.m }

// SetHidden records the visibility state.
func (s *MemorySource) SetHidden(hidden bool) { s.hidden = hidden }

// Hidden reports the recorded visibility state.
func (s *MemorySource) Hidden() bool { return s.hidden }
