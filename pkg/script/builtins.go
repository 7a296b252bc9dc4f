package script

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/hullgen/pkg/extract"
	"github.com/chazu/hullgen/pkg/hull"
)

// registerBuiltins installs the pipeline DSL into a zygomys
// environment. Each builtin appends one stage to the provided spec;
// stage order is source call order. Source must pass through
// preprocessSource first so :keyword tokens arrive as marked strings
// and kebab-case names match the underscore registrations.
func registerBuiltins(env *zygo.Zlisp, spec *PipelineSpec) {

	// -----------------------------------------------------------------------
	// (extract :strategy :face :decimate-ratio 0.5 :gap-width 0.2)
	// -----------------------------------------------------------------------
	env.AddFunction("extract", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		st := Stage{Op: OpExtract, Strategy: "face"}

		if v, ok := pa.kw["strategy"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extract: strategy: %w", err)
			}
			if _, err := extract.ForName(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("extract: %w", err)
			}
			st.Strategy = s
		}
		if v, ok := pa.kw["tolerance"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extract: tolerance: %w", err)
			}
			st.Extract.Tolerance = f
		}
		if v, ok := pa.kw["decimate-ratio"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extract: decimate-ratio: %w", err)
			}
			st.Extract.DecimateRatio = f
		}
		if v, ok := pa.kw["face-threshold"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extract: face-threshold: %w", err)
			}
			st.Extract.FaceThreshold = n
		}
		if v, ok := pa.kw["fracture-count"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extract: fracture-count: %w", err)
			}
			st.Extract.FractureCount = n
		}
		if v, ok := pa.kw["gap-width"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extract: gap-width: %w", err)
			}
			st.Extract.GapWidth = f
		}

		spec.Stages = append(spec.Stages, st)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (merge-similars :similar-factor 0.25 :adjacency-distance 0.15
	//                 :scale-modifier 1 :distance-modifier 1)
	// -----------------------------------------------------------------------
	env.AddFunction("merge_similars", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st := Stage{Op: OpMergeSimilar}
		pa := parseArgs(args)
		for kw, dst := range map[string]*float64{
			"tolerance":          &st.Optimize.Tolerance,
			"similar-factor":     &st.Optimize.SimilarFactor,
			"adjacency-distance": &st.Optimize.AdjacencyDistance,
			"scale-modifier":     &st.Optimize.ScaleModifier,
			"distance-modifier":  &st.Optimize.DistanceModifier,
		} {
			if v, ok := pa.kw[kw]; ok {
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("merge-similars: %s: %w", kw, err)
				}
				*dst = f
			}
		}
		spec.Stages = append(spec.Stages, st)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (remove-thin :threshold 0.1)
	// -----------------------------------------------------------------------
	env.AddFunction("remove_thin", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st := Stage{Op: OpRemoveThin}
		pa := parseArgs(args)
		if v, ok := pa.kw["threshold"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("remove-thin: threshold: %w", err)
			}
			st.Optimize.ThinThreshold = f
		}
		spec.Stages = append(spec.Stages, st)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (remove-inside :fraction 0.9)
	// -----------------------------------------------------------------------
	env.AddFunction("remove_inside", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st := Stage{Op: OpRemoveInside}
		pa := parseArgs(args)
		if v, ok := pa.kw["fraction"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("remove-inside: fraction: %w", err)
			}
			st.Optimize.ContainFraction = f
		}
		spec.Stages = append(spec.Stages, st)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (force-convex)
	// -----------------------------------------------------------------------
	env.AddFunction("force_convex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		spec.Stages = append(spec.Stages, Stage{Op: OpForceConvex})
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (set-override "$surfaceprop" "metal")
	// -----------------------------------------------------------------------
	env.AddFunction("set_override", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("set-override requires a key argument")
		}
		key, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-override: key: %w", err)
		}
		st := Stage{Op: OpSetOverride, Key: key}
		if len(pa.positional) > 1 {
			val, err := toString(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("set-override: value: %w", err)
			}
			st.Value = val
		}
		// Validate eagerly so the script author learns about a bad key
		// at evaluation time, not mid-run.
		if err := hull.NewModel("probe").SetOverride(key, st.Value); err != nil {
			return zygo.SexpNull, fmt.Errorf("set-override: %w", err)
		}
		spec.Stages = append(spec.Stages, st)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (split :max-hulls 32)
	// -----------------------------------------------------------------------
	env.AddFunction("split", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st := Stage{Op: OpSplit}
		pa := parseArgs(args)
		if v, ok := pa.kw["max-hulls"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("split: max-hulls: %w", err)
			}
			st.MaxHulls = n
		}
		spec.Stages = append(spec.Stages, st)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (export-qc :dir "out/qc" :model-dir "props" :surfaceprop "metal"
	//            :staticprop true :max-pieces 32)
	// -----------------------------------------------------------------------
	env.AddFunction("export_qc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st := Stage{Op: OpExportQC}
		pa := parseArgs(args)
		if v, ok := pa.kw["dir"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("export-qc: dir: %w", err)
			}
			st.QCDir = s
		}
		if st.QCDir == "" {
			return zygo.SexpNull, fmt.Errorf("export-qc requires :dir")
		}
		if v, ok := pa.kw["model-dir"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("export-qc: model-dir: %w", err)
			}
			st.QC.ModelDir = s
		}
		if v, ok := pa.kw["surfaceprop"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("export-qc: surfaceprop: %w", err)
			}
			st.QC.SurfaceProp = s
		}
		if v, ok := pa.kw["staticprop"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("export-qc: staticprop: %w", err)
			}
			st.QC.StaticProp = b
		}
		if v, ok := pa.kw["max-pieces"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("export-qc: max-pieces: %w", err)
			}
			st.QC.MaxPieces = n
		}
		spec.Stages = append(spec.Stages, st)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (export-brushes :out "out/hulls.vmf" :material "TOOLS/TOOLSPHYSCLIP")
	// -----------------------------------------------------------------------
	env.AddFunction("export_brushes", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st := Stage{Op: OpExportBrush}
		pa := parseArgs(args)
		if v, ok := pa.kw["out"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("export-brushes: out: %w", err)
			}
			st.BrushOut = s
		}
		if st.BrushOut == "" {
			return zygo.SexpNull, fmt.Errorf("export-brushes requires :out")
		}
		if v, ok := pa.kw["material"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("export-brushes: material: %w", err)
			}
			st.Brush.Material = s
		}
		if v, ok := pa.kw["lightmap-scale"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("export-brushes: lightmap-scale: %w", err)
			}
			st.Brush.LightmapScale = n
		}
		spec.Stages = append(spec.Stages, st)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (patch-map :file "maps/junkyard.vmf")
	// -----------------------------------------------------------------------
	env.AddFunction("patch_map", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st := Stage{Op: OpPatchMap}
		pa := parseArgs(args)
		if v, ok := pa.kw["file"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("patch-map: file: %w", err)
			}
			st.MapFile = s
		}
		if st.MapFile == "" {
			return zygo.SexpNull, fmt.Errorf("patch-map requires :file")
		}
		spec.Stages = append(spec.Stages, st)
		return zygo.SexpNull, nil
	})
}
