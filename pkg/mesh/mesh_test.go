package mesh

import (
	"bytes"
	"math"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestBoxCounts(t *testing.T) {
	m := Box("cube", v3.Vec{}, v3.Vec{X: 2, Y: 2, Z: 2})
	if got := m.VertexCount(); got != 8 {
		t.Errorf("VertexCount() = %d, want 8", got)
	}
	if got := m.FaceCount(); got != 6 {
		t.Errorf("FaceCount() = %d, want 6", got)
	}
	if m.IsEmpty() {
		t.Error("IsEmpty() = true for a box")
	}
}

func TestBoxFaceNormalsOutward(t *testing.T) {
	m := Box("cube", v3.Vec{}, v3.Vec{X: 2, Y: 2, Z: 2})
	for i := range m.Faces {
		n := m.FaceNormal(i)
		c := m.FaceCentroid(i)
		// For a centered box every outward normal points away from the origin.
		if n.Dot(c) <= 0 {
			t.Errorf("face %d normal %v points inward (centroid %v)", i, n, c)
		}
	}
}

func TestWeld(t *testing.T) {
	// Two triangles sharing an edge, authored with duplicated vertices.
	m := &Mesh{
		Name: "pair",
		Verts: []v3.Vec{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
			{X: 1, Y: 1e-9}, {X: 1e-9, Y: 1}, {X: 1, Y: 1},
		},
		Faces: [][]int{{0, 1, 2}, {3, 5, 4}},
	}
	w := m.Weld(1e-6)
	if got := w.VertexCount(); got != 4 {
		t.Errorf("VertexCount() after weld = %d, want 4", got)
	}
	if got := w.FaceCount(); got != 2 {
		t.Errorf("FaceCount() after weld = %d, want 2", got)
	}

	// A face that collapses entirely must be dropped.
	m2 := &Mesh{
		Verts: []v3.Vec{{}, {X: 1e-9}, {Y: 1e-9}},
		Faces: [][]int{{0, 1, 2}},
	}
	if got := m2.Weld(1e-6).FaceCount(); got != 0 {
		t.Errorf("FaceCount() of collapsed face = %d, want 0", got)
	}
}

func TestVertexNormals(t *testing.T) {
	m := Box("cube", v3.Vec{}, v3.Vec{X: 2, Y: 2, Z: 2})
	normals, err := m.VertexNormals()
	if err != nil {
		t.Fatalf("VertexNormals() error = %v", err)
	}
	for i, n := range normals {
		// Corner normals of a centered cube point away from the center.
		if n.Dot(m.Verts[i]) <= 0 {
			t.Errorf("vertex %d normal %v points inward", i, n)
		}
		if d := math.Abs(n.Length() - 1); d > 1e-9 {
			t.Errorf("vertex %d normal not unit length: %v", i, n)
		}
	}
}

func TestVertexNormalsNonManifold(t *testing.T) {
	// A single open triangle has boundary edges.
	m := &Mesh{
		Verts: []v3.Vec{{}, {X: 1}, {Y: 1}},
		Faces: [][]int{{0, 1, 2}},
	}
	if _, err := m.VertexNormals(); err == nil {
		t.Fatal("VertexNormals() error = nil for open mesh")
	}
}

const cubeOBJ = `# unit cube
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
f 4 3 2 1
f 5 6 7 8
f 1 2 6 5
f 3 4 8 7
f 4 1 5 8
f 2 3 7 6
`

func TestReadOBJ(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader(cubeOBJ), "cube")
	if err != nil {
		t.Fatalf("ReadOBJ() error = %v", err)
	}
	if m.VertexCount() != 8 || m.FaceCount() != 6 {
		t.Fatalf("got %d verts / %d faces, want 8/6", m.VertexCount(), m.FaceCount())
	}
	if m.HasUVs() {
		t.Error("HasUVs() = true for OBJ without texcoords")
	}
}

func TestReadOBJWithUVs(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
f 1/1 2/2 3/3
`
	m, err := ReadOBJ(strings.NewReader(src), "tri")
	if err != nil {
		t.Fatalf("ReadOBJ() error = %v", err)
	}
	if !m.HasUVs() {
		t.Fatal("HasUVs() = false")
	}
	if len(m.UVs[0]) != 3 {
		t.Errorf("face UV corners = %d, want 3", len(m.UVs[0]))
	}
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"bad vertex", "v 1 nope 3\nf 1 2 3\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadOBJ(strings.NewReader(tt.src), "bad"); err == nil {
				t.Error("ReadOBJ() error = nil, want error")
			}
		})
	}
}

func TestWriteOBJRoundTrip(t *testing.T) {
	m := Box("cube", v3.Vec{}, v3.Vec{X: 2, Y: 2, Z: 2})
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, m); err != nil {
		t.Fatalf("WriteOBJ() error = %v", err)
	}
	back, err := ReadOBJ(&buf, "cube")
	if err != nil {
		t.Fatalf("ReadOBJ() error = %v", err)
	}
	if back.VertexCount() != m.VertexCount() || back.FaceCount() != m.FaceCount() {
		t.Errorf("round trip: %d verts / %d faces, want %d/%d",
			back.VertexCount(), back.FaceCount(), m.VertexCount(), m.FaceCount())
	}
}

func TestAppend(t *testing.T) {
	a := Box("a", v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	b := Box("b", v3.Vec{X: 5}, v3.Vec{X: 1, Y: 1, Z: 1})
	a.Append(b)
	if a.VertexCount() != 16 || a.FaceCount() != 12 {
		t.Errorf("got %d verts / %d faces, want 16/12", a.VertexCount(), a.FaceCount())
	}
	for _, f := range a.Faces {
		for _, vi := range f {
			if vi < 0 || vi >= a.VertexCount() {
				t.Fatalf("face index %d out of range", vi)
			}
		}
	}
}
