// Package config handles hullgen configuration loading: defaults,
// optional YAML file, and CLI flag overrides, in that priority order.
package config

// Config holds all pipeline settings.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Optimize  OptimizeConfig  `yaml:"optimize"`
	Partition PartitionConfig `yaml:"partition"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// InputConfig selects the source mesh and the run mode.
type InputConfig struct {
	MeshPath string `yaml:"mesh_path"` // OBJ file to process
	Name     string `yaml:"name"`      // model name, defaults to the mesh file stem
	Script   string `yaml:"script"`    // pipeline script; overrides the flag-built pipeline
}

// PipelineConfig holds extraction settings.
type PipelineConfig struct {
	Strategy      string  `yaml:"strategy"` // bisect, face, uv, fracture
	Tolerance     float64 `yaml:"tolerance"`
	DecimateRatio float64 `yaml:"decimate_ratio"`
	FaceThreshold int     `yaml:"face_threshold"`
	FractureCount int     `yaml:"fracture_count"`
	FractureSeed  int64   `yaml:"fracture_seed"`
	GapWidth      float64 `yaml:"gap_width"`
}

// OptimizeConfig holds optimizer pass settings.
type OptimizeConfig struct {
	SimilarFactor     float64 `yaml:"similar_factor"`
	AdjacencyDistance float64 `yaml:"adjacency_distance"`
	ScaleModifier     float64 `yaml:"scale_modifier"`
	DistanceModifier  float64 `yaml:"distance_modifier"`
	ThinThreshold     float64 `yaml:"thin_threshold"`
	ContainFraction   float64 `yaml:"contain_fraction"`
}

// PartitionConfig holds the hull-count limit.
type PartitionConfig struct {
	MaxHulls int `yaml:"max_hulls"`
}

// ExportConfig holds exporter settings.
type ExportConfig struct {
	QCDir         string `yaml:"qc_dir"`
	ModelDir      string `yaml:"model_dir"`
	SurfaceProp   string `yaml:"surfaceprop"`
	StaticProp    bool   `yaml:"staticprop"`
	MaxPieces     int    `yaml:"max_pieces"`
	BrushOut      string `yaml:"brush_out"`
	BrushMaterial string `yaml:"brush_material"`
	LightmapScale int    `yaml:"lightmap_scale"`
	PatchVMF      string `yaml:"patch_vmf"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Strategy:      "face",
			FaceThreshold: 32,
			FractureCount: 8,
			FractureSeed:  1,
		},
		Optimize: OptimizeConfig{
			SimilarFactor:     0.25,
			AdjacencyDistance: 0.15,
			ScaleModifier:     1,
			DistanceModifier:  1,
			ThinThreshold:     0.1,
			ContainFraction:   0.9,
		},
		Partition: PartitionConfig{
			MaxHulls: 32,
		},
		Export: ExportConfig{
			QCDir:       "qc",
			SurfaceProp: "default",
			StaticProp:  true,
			MaxPieces:   32,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
