package config

import "flag"

var (
	flagConfig        = flag.String("config", "", "Path to config file")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
	flagIn            = flag.String("in", "", "Input OBJ mesh")
	flagName          = flag.String("name", "", "Model name (defaults to mesh file stem)")
	flagScript        = flag.String("script", "", "Pipeline script to run instead of the flag-built pipeline")
	flagStrategy      = flag.String("strategy", "", "Extraction strategy: bisect, face, uv, fracture")
	flagDecimateRatio = flag.Float64("decimate-ratio", 0, "Pre-hull decimation ratio (0 or 1 disables)")
	flagFractureCount = flag.Int("fracture-count", 0, "Fracture target piece count")
	flagGapWidth      = flag.Float64("gap-width", 0, "Minimum gap between fracture hulls")
	flagMaxHulls      = flag.Int("max-hulls", 0, "Maximum hulls per part")
	flagQCDir         = flag.String("qc-dir", "", "Directory for QC output")
	flagBrushOut      = flag.String("brush-out", "", "Write hulls as VMF brushes to this file")
	flagPatchVMF      = flag.String("patch-vmf", "", "Existing VMF map to patch with part entities")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via the
// -config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagIn != "" {
		cfg.Input.MeshPath = *flagIn
	}
	if *flagName != "" {
		cfg.Input.Name = *flagName
	}
	if *flagScript != "" {
		cfg.Input.Script = *flagScript
	}
	if *flagStrategy != "" {
		cfg.Pipeline.Strategy = *flagStrategy
	}
	if *flagDecimateRatio > 0 {
		cfg.Pipeline.DecimateRatio = *flagDecimateRatio
	}
	if *flagFractureCount > 0 {
		cfg.Pipeline.FractureCount = *flagFractureCount
	}
	if *flagGapWidth > 0 {
		cfg.Pipeline.GapWidth = *flagGapWidth
	}
	if *flagMaxHulls > 0 {
		cfg.Partition.MaxHulls = *flagMaxHulls
	}
	if *flagQCDir != "" {
		cfg.Export.QCDir = *flagQCDir
	}
	if *flagBrushOut != "" {
		cfg.Export.BrushOut = *flagBrushOut
	}
	if *flagPatchVMF != "" {
		cfg.Export.PatchVMF = *flagPatchVMF
	}
}
