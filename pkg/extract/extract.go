// Package extract turns a source mesh into an initial list of convex
// hulls. Four interchangeable strategies are provided: bisection-driven
// partitioning, face-group hulling, UV-island hulling, and
// fracture-driven shattering with a separation gap. All strategies
// share the same post-processing contract: optional decimation of each
// piece's point set through the kernel, then convex hull construction
// with degenerate pieces dropped and counted rather than failing the
// batch.
package extract

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/hullgen/pkg/geom"
	"github.com/chazu/hullgen/pkg/hull"
	"github.com/chazu/hullgen/pkg/kernel"
	"github.com/chazu/hullgen/pkg/mesh"
)

// ErrNoUVs reports a mesh without the UV set required by UV-island
// extraction.
var ErrNoUVs = errors.New("mesh has no UV data")

// Params holds the extraction tuning options shared by all strategies.
type Params struct {
	// Tolerance is the coplanarity/duplicate tolerance used for
	// hulling and welding. Zero selects geom.DefaultTolerance.
	Tolerance float64
	// DecimateRatio reduces each piece's point set before hulling.
	// 1 (or 0) disables decimation. Decimation can break convexity of
	// the piece itself; the built hull is always validated.
	DecimateRatio float64
	// FaceThreshold is the bisection stop: partitions at or below this
	// face count are hulled. Zero selects 32.
	FaceThreshold int
	// FractureCount is the target piece count for fracture extraction.
	// Zero selects 8.
	FractureCount int
	// GapWidth is the minimum separation gap between fracture pieces.
	// Zero disables gap shrinking.
	GapWidth float64
}

func (p Params) tolerance() float64 {
	if p.Tolerance <= 0 {
		return geom.DefaultTolerance
	}
	return p.Tolerance
}

// Report collects per-strategy non-fatal outcomes.
type Report struct {
	Dropped  int // degenerate pieces discarded during hulling
	Warnings []string
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Strategy is one interchangeable hull extraction behavior.
type Strategy interface {
	Name() string
	Extract(m *mesh.Mesh, k kernel.Kernel, p Params) ([]*hull.Hull, *Report, error)
}

// ForName returns the strategy registered under name: "bisect",
// "face", "uv" or "fracture".
func ForName(name string) (Strategy, error) {
	switch name {
	case "bisect":
		return Bisection{}, nil
	case "face":
		return FaceGroups{}, nil
	case "uv":
		return UVIslands{}, nil
	case "fracture":
		return Fracture{}, nil
	}
	return nil, fmt.Errorf("unknown extraction strategy %q", name)
}

// hullPieces runs the shared post-processing contract: decimate each
// piece when configured, hull its point set, and drop degenerate
// results with a count.
func hullPieces(pieces []*mesh.Mesh, k kernel.Kernel, p Params, rep *Report) ([]*hull.Hull, error) {
	tol := p.tolerance()
	var hulls []*hull.Hull
	for _, piece := range pieces {
		if piece.IsEmpty() {
			rep.Dropped++
			continue
		}
		if p.DecimateRatio > 0 && p.DecimateRatio < 1 {
			reduced, err := k.Decimate(piece, p.DecimateRatio)
			if err != nil {
				return nil, fmt.Errorf("decimating piece: %w", err)
			}
			piece = reduced
		}
		h, err := hull.Build(usedPoints(piece), tol)
		if err != nil {
			if errors.Is(err, hull.ErrDegenerate) {
				rep.Dropped++
				continue
			}
			return nil, err
		}
		hulls = append(hulls, h)
	}
	return hulls, nil
}

// usedPoints returns the positions referenced by the mesh's faces.
func usedPoints(m *mesh.Mesh) []v3.Vec {
	seen := make(map[int]bool)
	var pts []v3.Vec
	for _, f := range m.Faces {
		for _, vi := range f {
			if !seen[vi] {
				seen[vi] = true
				pts = append(pts, m.Verts[vi])
			}
		}
	}
	return pts
}

// subMesh extracts the given faces (ascending order) into a compact
// standalone mesh, carrying UVs when present.
func subMesh(m *mesh.Mesh, faces []int) *mesh.Mesh {
	out := &mesh.Mesh{Name: m.Name}
	remap := make(map[int]int)
	for _, fi := range faces {
		loop := make([]int, len(m.Faces[fi]))
		for j, vi := range m.Faces[fi] {
			nv, ok := remap[vi]
			if !ok {
				nv = len(out.Verts)
				remap[vi] = nv
				out.Verts = append(out.Verts, m.Verts[vi])
			}
			loop[j] = nv
		}
		out.Faces = append(out.Faces, loop)
		if m.HasUVs() {
			out.UVs = append(out.UVs, m.UVs[fi])
		}
	}
	return out
}
