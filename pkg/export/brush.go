package export

import (
	"bytes"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/hullgen/pkg/hull"
)

// BrushOptions configures hull-to-brush output.
type BrushOptions struct {
	// Material is the texture applied to every brush face. Empty
	// selects the physics clip tool texture.
	Material string
	// LightmapScale for every face. Zero selects 16.
	LightmapScale int
}

func (o BrushOptions) withDefaults() BrushOptions {
	if o.Material == "" {
		o.Material = "TOOLS/TOOLSPHYSCLIP"
	}
	if o.LightmapScale <= 0 {
		o.LightmapScale = 16
	}
	return o
}

// BrushVMF serializes the models' hulls as world brushes in a fresh
// VMF document, one solid per hull with one side per face. Hulls are
// grouped per part through a visgroup named after the part, so the
// result opens in the editor with each model's geometry toggleable as
// a unit.
func BrushVMF(parts []*hull.CollisionModel, opts BrushOptions) []byte {
	opts = opts.withDefaults()
	var b bytes.Buffer

	b.WriteString("versioninfo\n{\n")
	b.WriteString("\t\"editorversion\" \"400\"\n")
	b.WriteString("\t\"editorbuild\" \"8864\"\n")
	b.WriteString("\t\"mapversion\" \"1\"\n")
	b.WriteString("\t\"formatversion\" \"100\"\n")
	b.WriteString("\t\"prefab\" \"0\"\n")
	b.WriteString("}\n")

	b.WriteString("visgroups\n{\n")
	for i, p := range parts {
		fmt.Fprintf(&b, "\tvisgroup\n\t{\n\t\t\"name\" %q\n\t\t\"visgroupid\" \"%d\"\n\t\t\"color\" \"0 180 0\"\n\t}\n", p.PartName(), i+1)
	}
	b.WriteString("}\n")

	id := 1
	nextID := func() int {
		id++
		return id
	}

	b.WriteString("world\n{\n")
	b.WriteString("\t\"id\" \"1\"\n")
	b.WriteString("\t\"mapversion\" \"1\"\n")
	b.WriteString("\t\"classname\" \"worldspawn\"\n")
	for i, p := range parts {
		for _, h := range p.Hulls {
			writeSolid(&b, h, nextID, i+1, opts)
		}
	}
	b.WriteString("}\n")
	return b.Bytes()
}

// WriteBrushVMF writes the brush document atomically to path.
func WriteBrushVMF(path string, parts []*hull.CollisionModel, opts BrushOptions) error {
	return writeFileAtomic(path, BrushVMF(parts, opts))
}

func writeSolid(b *bytes.Buffer, h *hull.Hull, nextID func() int, visgroup int, opts BrushOptions) {
	fmt.Fprintf(b, "\tsolid\n\t{\n\t\t\"id\" \"%d\"\n", nextID())
	verts := h.Vertices()
	for fi, face := range h.Faces() {
		// Three face vertices, counterclockwise seen from outside,
		// pin down the side plane with its normal pointing out of the
		// solid.
		a, c1, c2 := verts[face[0]], verts[face[1]], verts[face[2]]
		fmt.Fprintf(b, "\t\tside\n\t\t{\n\t\t\t\"id\" \"%d\"\n", nextID())
		fmt.Fprintf(b, "\t\t\t\"plane\" \"(%s) (%s) (%s)\"\n", vmfPoint(a), vmfPoint(c1), vmfPoint(c2))
		fmt.Fprintf(b, "\t\t\t\"material\" %q\n", opts.Material)
		u, v := textureAxes(h.Planes()[fi].Normal)
		fmt.Fprintf(b, "\t\t\t\"uaxis\" \"[%s 0] 0.25\"\n", u)
		fmt.Fprintf(b, "\t\t\t\"vaxis\" \"[%s 0] 0.25\"\n", v)
		b.WriteString("\t\t\t\"rotation\" \"0\"\n")
		fmt.Fprintf(b, "\t\t\t\"lightmapscale\" \"%d\"\n", opts.LightmapScale)
		b.WriteString("\t\t\t\"smoothing_groups\" \"0\"\n")
		b.WriteString("\t\t}\n")
	}
	fmt.Fprintf(b, "\t\teditor\n\t\t{\n\t\t\t\"color\" \"0 180 0\"\n\t\t\t\"visgroupid\" \"%d\"\n\t\t\t\"visgroupshown\" \"1\"\n\t\t\t\"visgroupautoshown\" \"1\"\n\t\t}\n", visgroup)
	b.WriteString("\t}\n")
}

func vmfPoint(p v3.Vec) string {
	return fmt.Sprintf("%g %g %g", p.X, p.Y, p.Z)
}

// textureAxes picks the axis-aligned projection for a face normal the
// way the editor does for world-aligned textures.
func textureAxes(n v3.Vec) (u, v string) {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case az >= ax && az >= ay:
		return "1 0 0", "0 -1 0"
	case ax >= ay:
		return "0 1 0", "0 0 -1"
	default:
		return "1 0 0", "0 0 -1"
	}
}
