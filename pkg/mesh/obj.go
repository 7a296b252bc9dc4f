package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ReadOBJ parses a Wavefront OBJ stream into a mesh. Positions and
// polygon faces are required; texture coordinates are kept as the UV
// set only when every face corner references one. Normals, groups and
// materials are ignored.
func ReadOBJ(r io.Reader, name string) (*Mesh, error) {
	m := &Mesh{Name: name}
	var uvPool []v2.Vec
	var faceUVs [][]v2.Vec
	allHaveUVs := true

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj line %d: vertex needs 3 coordinates", lineNo)
			}
			x, err1 := strconv.ParseFloat(fields[1], 64)
			y, err2 := strconv.ParseFloat(fields[2], 64)
			z, err3 := strconv.ParseFloat(fields[3], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, fmt.Errorf("obj line %d: bad vertex %q", lineNo, line)
			}
			m.Verts = append(m.Verts, v3.Vec{X: x, Y: y, Z: z})
		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("obj line %d: texcoord needs 2 coordinates", lineNo)
			}
			u, err1 := strconv.ParseFloat(fields[1], 64)
			v, err2 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("obj line %d: bad texcoord %q", lineNo, line)
			}
			uvPool = append(uvPool, v2.Vec{X: u, Y: v})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj line %d: face needs at least 3 corners", lineNo)
			}
			loop := make([]int, 0, len(fields)-1)
			uvs := make([]v2.Vec, 0, len(fields)-1)
			haveUVs := true
			for _, corner := range fields[1:] {
				vi, ti, hasT, err := parseOBJCorner(corner, len(m.Verts), len(uvPool))
				if err != nil {
					return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
				}
				loop = append(loop, vi)
				if hasT {
					uvs = append(uvs, uvPool[ti])
				} else {
					haveUVs = false
				}
			}
			m.Faces = append(m.Faces, loop)
			if haveUVs {
				faceUVs = append(faceUVs, uvs)
			} else {
				allHaveUVs = false
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}
	if len(m.Verts) == 0 || len(m.Faces) == 0 {
		return nil, fmt.Errorf("obj %q: no geometry", name)
	}
	if allHaveUVs && len(faceUVs) == len(m.Faces) {
		m.UVs = faceUVs
	}
	return m, nil
}

// parseOBJCorner parses one "v", "v/vt", "v//vn" or "v/vt/vn" face
// corner, resolving negative (relative) indices.
func parseOBJCorner(corner string, vertCount, uvCount int) (vi, ti int, hasT bool, err error) {
	parts := strings.Split(corner, "/")
	vi, err = resolveOBJIndex(parts[0], vertCount)
	if err != nil {
		return 0, 0, false, fmt.Errorf("face corner %q: %w", corner, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		ti, err = resolveOBJIndex(parts[1], uvCount)
		if err != nil {
			return 0, 0, false, fmt.Errorf("face corner %q: %w", corner, err)
		}
		hasT = true
	}
	return vi, ti, hasT, nil
}

// resolveOBJIndex converts a 1-based (or negative relative) OBJ index
// into a 0-based slice index.
func resolveOBJIndex(field string, count int) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("bad index %q", field)
	}
	if n < 0 {
		n = count + n + 1
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("index %d out of range [1,%d]", n, count)
	}
	return n - 1, nil
}

// LoadOBJ reads an OBJ file from disk. The mesh name is the file's
// base name without extension.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening obj: %w", err)
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadOBJ(f, name)
}

// WriteOBJ serializes the mesh as Wavefront OBJ.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "o %s\n", m.Name)
	for _, v := range m.Verts {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	if m.HasUVs() {
		uvIndex := make(map[v2.Vec]int)
		for fi := range m.Faces {
			for _, uv := range m.UVs[fi] {
				if _, ok := uvIndex[uv]; !ok {
					uvIndex[uv] = len(uvIndex) + 1
					fmt.Fprintf(bw, "vt %g %g\n", uv.X, uv.Y)
				}
			}
		}
		for fi, f := range m.Faces {
			fmt.Fprint(bw, "f")
			for j, vi := range f {
				fmt.Fprintf(bw, " %d/%d", vi+1, uvIndex[m.UVs[fi][j]])
			}
			fmt.Fprintln(bw)
		}
	} else {
		for _, f := range m.Faces {
			fmt.Fprint(bw, "f")
			for _, vi := range f {
				fmt.Fprintf(bw, " %d", vi+1)
			}
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}
