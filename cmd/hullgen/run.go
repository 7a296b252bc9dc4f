package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/chazu/hullgen/pkg/config"
	"github.com/chazu/hullgen/pkg/export"
	"github.com/chazu/hullgen/pkg/extract"
	"github.com/chazu/hullgen/pkg/geom"
	"github.com/chazu/hullgen/pkg/hull"
	"github.com/chazu/hullgen/pkg/kernel"
	"github.com/chazu/hullgen/pkg/kernel/native"
	"github.com/chazu/hullgen/pkg/logger"
	"github.com/chazu/hullgen/pkg/mesh"
	"github.com/chazu/hullgen/pkg/optimize"
	"github.com/chazu/hullgen/pkg/partition"
	"github.com/chazu/hullgen/pkg/script"
)

func run(cfg *config.Config) error {
	if cfg.Input.MeshPath == "" {
		return errors.New("no input mesh, use -in model.obj")
	}

	m, err := mesh.LoadOBJ(cfg.Input.MeshPath)
	if err != nil {
		return err
	}
	name := cfg.Input.Name
	if name == "" {
		base := filepath.Base(cfg.Input.MeshPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	m.Name = name
	logger.Info("loaded mesh",
		zap.String("name", name),
		zap.Int("verts", m.VertexCount()),
		zap.Int("faces", m.FaceCount()))

	// Authoring tools routinely leave duplicate vertices behind;
	// hulling and adjacency both assume they are gone.
	tol := cfg.Pipeline.Tolerance
	if tol <= 0 {
		tol = geom.DefaultTolerance
	}
	welded := m.Weld(tol)
	if welded.VertexCount() < m.VertexCount() {
		logger.Info("welded duplicate vertices",
			zap.Int("before", m.VertexCount()),
			zap.Int("after", welded.VertexCount()))
	}
	m = welded

	spec, err := pipelineSpec(cfg)
	if err != nil {
		return err
	}

	k := native.New(cfg.Pipeline.Tolerance)
	if cfg.Pipeline.FractureSeed != 0 {
		k.Seed = cfg.Pipeline.FractureSeed
	}

	return execute(spec, m, k)
}

// pipelineSpec builds the stage list, either by evaluating a script or
// from the flag/config surface.
func pipelineSpec(cfg *config.Config) (*script.PipelineSpec, error) {
	if cfg.Input.Script == "" {
		return specFromConfig(cfg), nil
	}

	src, err := os.ReadFile(cfg.Input.Script)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	spec, evalErrs, err := script.NewEngine().Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", cfg.Input.Script, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			logger.Error("script error",
				zap.String("script", cfg.Input.Script),
				zap.Int("line", e.Line),
				zap.String("message", e.Message))
		}
		return nil, fmt.Errorf("%s: %d script error(s)", cfg.Input.Script, len(evalErrs))
	}
	return spec, nil
}

// specFromConfig assembles the standard extract -> optimize -> split ->
// export pipeline from configuration.
func specFromConfig(cfg *config.Config) *script.PipelineSpec {
	opts := optimize.Options{
		Tolerance:         cfg.Pipeline.Tolerance,
		AdjacencyDistance: cfg.Optimize.AdjacencyDistance,
		SimilarFactor:     cfg.Optimize.SimilarFactor,
		ScaleModifier:     cfg.Optimize.ScaleModifier,
		DistanceModifier:  cfg.Optimize.DistanceModifier,
		ThinThreshold:     cfg.Optimize.ThinThreshold,
		ContainFraction:   cfg.Optimize.ContainFraction,
	}

	spec := &script.PipelineSpec{}
	spec.Stages = append(spec.Stages, script.Stage{
		Op:       script.OpExtract,
		Strategy: cfg.Pipeline.Strategy,
		Extract: extract.Params{
			Tolerance:     cfg.Pipeline.Tolerance,
			DecimateRatio: cfg.Pipeline.DecimateRatio,
			FaceThreshold: cfg.Pipeline.FaceThreshold,
			FractureCount: cfg.Pipeline.FractureCount,
			GapWidth:      cfg.Pipeline.GapWidth,
		},
	})
	if r := cfg.Pipeline.DecimateRatio; r > 0 && r < 1 {
		// Decimation can leave concave pieces behind.
		spec.Stages = append(spec.Stages, script.Stage{Op: script.OpForceConvex, Optimize: opts})
	}
	spec.Stages = append(spec.Stages,
		script.Stage{Op: script.OpMergeSimilar, Optimize: opts},
		script.Stage{Op: script.OpRemoveThin, Optimize: opts},
		script.Stage{Op: script.OpRemoveInside, Optimize: opts},
		script.Stage{Op: script.OpSplit, MaxHulls: cfg.Partition.MaxHulls},
		script.Stage{
			Op:    script.OpExportQC,
			QCDir: cfg.Export.QCDir,
			QC: export.QCOptions{
				ModelDir:    cfg.Export.ModelDir,
				SurfaceProp: cfg.Export.SurfaceProp,
				StaticProp:  cfg.Export.StaticProp,
				MaxPieces:   cfg.Export.MaxPieces,
			},
		},
	)
	if cfg.Export.BrushOut != "" {
		spec.Stages = append(spec.Stages, script.Stage{
			Op:       script.OpExportBrush,
			BrushOut: cfg.Export.BrushOut,
			Brush: export.BrushOptions{
				Material:      cfg.Export.BrushMaterial,
				LightmapScale: cfg.Export.LightmapScale,
			},
		})
	}
	if cfg.Export.PatchVMF != "" {
		spec.Stages = append(spec.Stages, script.Stage{
			Op:      script.OpPatchMap,
			MapFile: cfg.Export.PatchVMF,
		})
	}
	return spec
}

// execute runs the stages in order over the mesh. Extraction must come
// first; exports operate on the partitioned parts, splitting with the
// default limit when the script never called split.
func execute(spec *script.PipelineSpec, m *mesh.Mesh, k kernel.Kernel) error {
	var (
		model *hull.CollisionModel
		parts []*hull.CollisionModel
	)

	requireModel := func(op string) error {
		if model == nil {
			return fmt.Errorf("%s: extract must run first", op)
		}
		return nil
	}
	ensureParts := func() error {
		if parts != nil {
			return nil
		}
		var err error
		parts, err = partition.Split(model, 0)
		return err
	}

	for _, st := range spec.Stages {
		if st.Op != script.OpExtract {
			if err := requireModel(st.Op); err != nil {
				return err
			}
		}

		switch st.Op {
		case script.OpExtract:
			strat, err := extract.ForName(st.Strategy)
			if err != nil {
				return err
			}
			var rep *extract.Report
			model, rep, err = extract.Run(extract.NewMemorySource(m), strat, k, st.Extract)
			if err != nil {
				return fmt.Errorf("extract (%s): %w", st.Strategy, err)
			}
			for _, w := range rep.Warnings {
				logger.Warn("extraction warning", zap.String("strategy", st.Strategy), zap.String("warning", w))
			}
			logger.Info("extracted hulls",
				zap.String("strategy", st.Strategy),
				zap.Int("hulls", model.HullCount()),
				zap.Int("dropped", rep.Dropped))

		case script.OpMergeSimilar:
			var stats optimize.Stats
			model, stats = optimize.MergeSimilars(model, st.Optimize)
			logger.Info("merged similar hulls",
				zap.Int("merged", stats.Merged),
				zap.Int("dropped", stats.Dropped),
				zap.Int("hulls", model.HullCount()))

		case script.OpRemoveThin:
			var stats optimize.Stats
			model, stats = optimize.RemoveThin(model, st.Optimize)
			logger.Info("removed thin hulls",
				zap.Int("removed", stats.Removed),
				zap.Int("hulls", model.HullCount()))

		case script.OpRemoveInside:
			var stats optimize.Stats
			model, stats = optimize.RemoveInside(model, st.Optimize)
			logger.Info("removed inside hulls",
				zap.Int("removed", stats.Removed),
				zap.Int("hulls", model.HullCount()))

		case script.OpForceConvex:
			var stats optimize.Stats
			model, stats = optimize.ForceConvex(model, st.Optimize)
			logger.Info("forced convexity",
				zap.Int("dropped", stats.Dropped),
				zap.Int("hulls", model.HullCount()))

		case script.OpSetOverride:
			if err := model.SetOverride(st.Key, st.Value); err != nil {
				return err
			}
			// Overrides authored after a split still reach every part.
			if parts != nil {
				hull.PropagateOverrides(model, parts)
			}

		case script.OpSplit:
			var err error
			parts, err = partition.Split(model, st.MaxHulls)
			if err != nil {
				return err
			}
			logger.Info("partitioned model",
				zap.Int("hulls", model.HullCount()),
				zap.Int("parts", len(parts)))

		case script.OpExportQC:
			if err := ensureParts(); err != nil {
				return err
			}
			if err := export.WriteQCFiles(st.QCDir, parts, st.QC); err != nil {
				return err
			}
			logger.Info("wrote qc files", zap.String("dir", st.QCDir), zap.Int("parts", len(parts)))

		case script.OpExportBrush:
			if err := ensureParts(); err != nil {
				return err
			}
			if err := export.WriteBrushVMF(st.BrushOut, parts, st.Brush); err != nil {
				return err
			}
			logger.Info("wrote brush vmf", zap.String("file", st.BrushOut))

		case script.OpPatchMap:
			if err := ensureParts(); err != nil {
				return err
			}
			if err := export.PatchVMFFile(st.MapFile, model.Name, len(parts)); err != nil {
				return err
			}
			logger.Info("patched map", zap.String("file", st.MapFile), zap.Int("parts", len(parts)))

		default:
			return fmt.Errorf("unknown pipeline stage %q", st.Op)
		}
	}
	return nil
}
