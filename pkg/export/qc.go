package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/hullgen/pkg/hull"
)

// QCOptions configures compile-description output.
type QCOptions struct {
	// ModelDir is the engine-relative directory used in $modelname,
	// e.g. "props". Empty means the model sits at the models root.
	ModelDir string
	// SurfaceProp is the default $surfaceprop, overridable per model
	// via a "$surfaceprop" override property. Empty selects "default".
	SurfaceProp string
	// StaticProp emits the $staticprop directive.
	StaticProp bool
	// MaxPieces is the $maxconvexpieces value. Zero omits the
	// directive.
	MaxPieces int
}

// QCText renders the compile description for one partitioned model.
// Override properties attach after the standard directives, key and
// value verbatim; an override whose key matches a standard directive
// replaces it rather than duplicating it.
func QCText(part *hull.CollisionModel, opts QCOptions) string {
	name := part.PartName()
	surfaceProp := opts.SurfaceProp
	if surfaceProp == "" {
		surfaceProp = "default"
	}

	overrides := part.Overrides()
	standard := map[string]bool{}
	for _, ov := range overrides {
		standard[ov.Key] = true
	}

	var b strings.Builder
	modelPath := name + ".mdl"
	if opts.ModelDir != "" {
		modelPath = opts.ModelDir + "/" + modelPath
	}
	fmt.Fprintf(&b, "$modelname %q\n", modelPath)
	fmt.Fprintf(&b, "$body %q %q\n", "Body", name+"_ref.smd")
	if !standard["$surfaceprop"] {
		fmt.Fprintf(&b, "$surfaceprop %q\n", surfaceProp)
	}
	if opts.StaticProp && !standard["$staticprop"] {
		b.WriteString("$staticprop\n")
	}
	for _, ov := range overrides {
		if ov.Value == "" {
			fmt.Fprintf(&b, "%s\n", ov.Key)
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", ov.Key, ov.Value)
	}
	fmt.Fprintf(&b, "$collisionmodel %q\n{\n", name+"_phys.smd")
	b.WriteString("\t$concave\n")
	if opts.MaxPieces > 0 {
		fmt.Fprintf(&b, "\t$maxconvexpieces %d\n", opts.MaxPieces)
	}
	b.WriteString("}\n")
	return b.String()
}

// WriteQCFiles writes one <part name>.qc file per part into dir,
// creating the directory if needed. Each file is written atomically;
// the first failure stops the batch.
func WriteQCFiles(dir string, parts []*hull.CollisionModel, opts QCOptions) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: create qc dir: %w", err)
	}
	for _, p := range parts {
		path := filepath.Join(dir, p.PartName()+".qc")
		if err := writeFileAtomic(path, []byte(QCText(p, opts))); err != nil {
			return err
		}
	}
	return nil
}
