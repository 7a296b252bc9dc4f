package main

import (
	"os"
	"path/filepath"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/hullgen/pkg/config"
	"github.com/chazu/hullgen/pkg/kernel/native"
	"github.com/chazu/hullgen/pkg/logger"
	"github.com/chazu/hullgen/pkg/mesh"
	"github.com/chazu/hullgen/pkg/script"
)

func initTestLogger(t *testing.T) {
	t.Helper()
	require.NoError(t, logger.InitWithFileConfig("error", logger.FileConfig{}, false))
}

// A cube with one duplicated corner vertex, the kind of geometry an
// authoring tool exports after a sloppy mirror operation.
const cubeOBJ = `v -1 -1 -1
v 1 -1 -1
v 1 1 -1
v -1 1 -1
v -1 -1 1
v 1 -1 1
v 1 1 1
v -1 1 1
v -1 -1 -1
f 1 2 3 4
f 5 8 7 6
f 9 5 6 2
f 2 6 7 3
f 3 7 8 4
f 4 8 5 1
`

func TestRunEndToEnd(t *testing.T) {
	initTestLogger(t)
	dir := t.TempDir()
	objPath := filepath.Join(dir, "crate.obj")
	require.NoError(t, os.WriteFile(objPath, []byte(cubeOBJ), 0o644))

	cfg := config.Default()
	cfg.Input.MeshPath = objPath
	cfg.Export.QCDir = filepath.Join(dir, "qc")

	require.NoError(t, run(cfg))

	// The duplicate vertex welds away, the cube hulls to one part, and
	// the part is named after the mesh file stem.
	data, err := os.ReadFile(filepath.Join(dir, "qc", "crate_phys_part_000.qc"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `$modelname "crate_phys_part_000.mdl"`)
	assert.Contains(t, string(data), "$collisionmodel")
}

func TestExecutePropagatesLateOverrides(t *testing.T) {
	initTestLogger(t)
	dir := t.TempDir()

	m := mesh.Box("crate", v3.Vec{}, v3.Vec{X: 2, Y: 2, Z: 2})
	spec := &script.PipelineSpec{Stages: []script.Stage{
		{Op: script.OpExtract, Strategy: "face"},
		{Op: script.OpSplit},
		// Authored after the split: must still surface in the part QC.
		{Op: script.OpSetOverride, Key: "$surfaceprop", Value: `"wood"`},
		{Op: script.OpExportQC, QCDir: dir},
	}}

	require.NoError(t, execute(spec, m, native.New(0)))

	data, err := os.ReadFile(filepath.Join(dir, "crate_phys_part_000.qc"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `$surfaceprop "wood"`)
}

func TestExecuteRequiresExtractFirst(t *testing.T) {
	initTestLogger(t)
	spec := &script.PipelineSpec{Stages: []script.Stage{{Op: script.OpSplit}}}
	err := execute(spec, mesh.Box("crate", v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1}), native.New(0))
	require.Error(t, err)
}
