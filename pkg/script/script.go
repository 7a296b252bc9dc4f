// Package script provides the Lisp pipeline DSL for hullgen. It wraps
// zygomys in a sandboxed environment and evaluates a script into a
// PipelineSpec, an ordered stage list the CLI runner executes against
// a mesh.
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/hullgen/pkg/export"
	"github.com/chazu/hullgen/pkg/extract"
	"github.com/chazu/hullgen/pkg/optimize"
)

// Stage operation names.
const (
	OpExtract      = "extract"
	OpMergeSimilar = "merge-similars"
	OpRemoveThin   = "remove-thin"
	OpRemoveInside = "remove-inside"
	OpForceConvex  = "force-convex"
	OpSetOverride  = "set-override"
	OpSplit        = "split"
	OpExportQC     = "export-qc"
	OpExportBrush  = "export-brushes"
	OpPatchMap     = "patch-map"
)

// Stage is one pipeline step. Op selects the operation; the remaining
// fields carry its parameters, only those relevant to the Op set.
type Stage struct {
	Op string

	Strategy string         // extract
	Extract  extract.Params // extract

	Optimize optimize.Options // optimizer passes

	Key, Value string // set-override

	MaxHulls int // split

	QCDir string           // export-qc
	QC    export.QCOptions // export-qc

	BrushOut string              // export-brushes
	Brush    export.BrushOptions // export-brushes

	MapFile string // patch-map
}

// PipelineSpec is the evaluated form of a pipeline script: stages in
// source call order.
type PipelineSpec struct {
	Stages []Stage
}

// EvalError is a non-fatal script error, a parse failure or a runtime
// error in the script itself.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates pipeline scripts. Safe for concurrent use; every
// Evaluate call runs in a fresh sandboxed environment so scripts
// cannot observe each other.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs a pipeline script and returns the stage list it built.
//
// Return semantics:
//   - success: spec + nil errors + nil error
//   - parse/eval failure: nil spec + eval errors + nil error
//   - fatal failure (timeout, panic): nil + nil + error
func (e *Engine) Evaluate(source string) (*PipelineSpec, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		spec, evalErrs, err := e.evaluate(source)
		ch <- evalResult{spec: spec, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

func (e *Engine) evaluate(source string) (*PipelineSpec, []EvalError, error) {
	// An empty script is a valid pipeline with no stages.
	if strings.TrimSpace(source) == "" {
		return &PipelineSpec{}, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and
	// syscalls; file paths in a spec are only acted on by the runner.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	spec := &PipelineSpec{}
	registerBuiltins(env, spec)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return spec, nil, nil
}

// linePattern matches zygomys "Error on line N: ..." messages.
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches bare "line N: ..." messages.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// extracting a line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
