package extract

import (
	"errors"
	"fmt"

	"github.com/chazu/hullgen/pkg/hull"
	"github.com/chazu/hullgen/pkg/kernel"
	"github.com/chazu/hullgen/pkg/mesh"
)

// Fracture delegates to the kernel's cellular fracture and shrinks each
// resulting piece inward along its vertex normals by half the gap
// width, guaranteeing a minimum separation gap between hulls.
// Overlapping collision hulls are a known engine-stability hazard; the
// gap keeps neighbors apart. Intended for single sealed props: when a
// piece is not two-manifold and its normals cannot be trusted, that
// piece falls back to zero gap with a warning instead of aborting.
type Fracture struct{}

// Name implements Strategy.
func (Fracture) Name() string { return "fracture" }

// Extract implements Strategy.
func (Fracture) Extract(m *mesh.Mesh, k kernel.Kernel, p Params) ([]*hull.Hull, *Report, error) {
	rep := &Report{}
	count := p.FractureCount
	if count <= 0 {
		count = 8
	}
	pieces, err := k.Fracture(m, count)
	if err != nil {
		return nil, rep, fmt.Errorf("fracturing %q: %w", m.Name, err)
	}

	if p.GapWidth > 0 {
		for i, piece := range pieces {
			shrunk, err := shrinkAlongNormals(piece, p.GapWidth/2)
			if err != nil {
				if errors.Is(err, mesh.ErrNonManifold) {
					rep.warnf("piece %d of %q: %v: separation gap disabled", i, m.Name, err)
					continue
				}
				return nil, rep, err
			}
			pieces[i] = shrunk
		}
	}

	hulls, err := hullPieces(pieces, k, p, rep)
	return hulls, rep, err
}

// shrinkAlongNormals moves every vertex inward (against its estimated
// outward normal) by dist, returning a new mesh.
func shrinkAlongNormals(m *mesh.Mesh, dist float64) (*mesh.Mesh, error) {
	normals, err := m.VertexNormals()
	if err != nil {
		return nil, err
	}
	out := m.Clone()
	for i := range out.Verts {
		out.Verts[i] = out.Verts[i].Sub(normals[i].MulScalar(dist))
	}
	return out, nil
}
