package jsengine

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/buke/quickjs-go"
)

// Version is the pinned KaTeX release vendored in katex.min.js.
// The macro readback in the shim depends on KaTeX internals, so bumping the
// bundle requires re-checking the MacroExpansion shape and the font class
// table in internal/fontscan.
const Version = "0.16.21"

// SnapshotTag identifies the snapshot format: the vendored KaTeX release plus
// the bytecode flavor. A mismatch on load forces a cold start.
const SnapshotTag = "katex-" + Version + "+qjsbc1"

//go:generate curl -fsSL -o katex.min.js https://cdn.jsdelivr.net/npm/katex@0.16.21/dist/katex.min.js

//go:embed katex.min.js
var katexSource string

// shimSource defines renderToStringAndMacros on the engine global scope.
// It renders in one call and returns the post-conversion macro table in-band,
// flattening KaTeX's internal MacroExpansion objects (token lists are stored
// in reverse order) back to plain replacement text. KaTeX parse errors are
// reported as data, not thrown, so that a Go-level Eval error always means an
// engine fault.
const shimSource = `
function renderToStringAndMacros(input) {
    var flatten = function (macros) {
        for (var key in macros) {
            if (typeof macros[key] !== "string") {
                macros[key] = macros[key].tokens.map(function (token) {
                    return token.text;
                }).reverse().join("");
            }
        }
    };
    try {
        var html = katex.renderToString(
            input.latex,
            Object.assign({}, input.options, { macros: input.macros })
        );
        flatten(input.macros);
        return JSON.stringify({ html: html, macros: input.macros });
    } catch (e) {
        if (e instanceof katex.ParseError) {
            flatten(input.macros);
            return JSON.stringify({ error: e.message, macros: input.macros });
        }
        throw e;
    }
}`

// Input is the engine-native conversion request.
// Macros must be non-nil so it serializes as an object, not null.
type Input struct {
	Latex   string            `json:"latex"`
	Options Options           `json:"options"`
	Macros  map[string]string `json:"macros"`
}

// Options is the engine-native projection of the public Options type,
// matching the KaTeX renderToString settings object field for field.
type Options struct {
	DisplayMode      bool     `json:"displayMode"`
	Output           string   `json:"output"`
	Leqno            bool     `json:"leqno"`
	Fleqn            bool     `json:"fleqn"`
	ThrowOnError     bool     `json:"throwOnError"`
	ErrorColor       string   `json:"errorColor"`
	MinRuleThickness *float64 `json:"minRuleThickness,omitempty"`
	ColorIsTextColor bool     `json:"colorIsTextColor"`
	MaxSize          *float64 `json:"maxSize,omitempty"`
	MaxExpand        int      `json:"maxExpand,omitempty"`
	Strict           *bool    `json:"strict,omitempty"`
	Trust            bool     `json:"trust"`
	GlobalGroup      bool     `json:"globalGroup"`
}

// Output is the engine-native conversion response. Exactly one of HTML and
// Error is set; Macros always carries the post-call macro table.
type Output struct {
	HTML   string            `json:"html"`
	Error  string            `json:"error"`
	Macros map[string]string `json:"macros"`
}

// Runtime owns one QuickJS runtime with the KaTeX bundle loaded.
// Not safe for concurrent use.
type Runtime struct {
	rt   quickjs.Runtime
	ctx  *quickjs.Context
	code []byte
}

// New cold-starts a runtime: compiles the KaTeX bundle plus the render shim
// to bytecode, executes it, and keeps the bytecode for Snapshot.
// A timeout of zero disables the engine-side execution limit.
func New(timeout time.Duration) (*Runtime, error) {
	r := newRuntime(timeout)

	code, err := r.ctx.Compile(katexSource + shimSource)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("compiling katex bundle: %w", err)
	}
	if err := r.evalBytecode(code); err != nil {
		r.Close()
		return nil, fmt.Errorf("initializing katex bundle: %w", err)
	}

	r.code = code
	return r, nil
}

// NewFromSnapshot warm-starts a runtime from previously compiled bytecode.
// The caller is responsible for version-checking the blob beforehand; a blob
// that fails to execute is reported as an error so the caller can fall back
// to a cold start.
func NewFromSnapshot(code []byte, timeout time.Duration) (*Runtime, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("empty snapshot")
	}

	r := newRuntime(timeout)
	if err := r.evalBytecode(code); err != nil {
		r.Close()
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}

	r.code = code
	return r, nil
}

func newRuntime(timeout time.Duration) *Runtime {
	var opts []quickjs.Option
	if timeout > 0 {
		opts = append(opts, quickjs.WithExecuteTimeout(uint64(timeout/time.Second)))
	}
	rt := quickjs.NewRuntime(opts...)
	return &Runtime{rt: rt, ctx: rt.NewContext()}
}

func (r *Runtime) evalBytecode(code []byte) error {
	val, err := r.ctx.EvalBytecode(code)
	if err != nil {
		return err
	}
	val.Free()
	return nil
}

// Exec runs one conversion. A returned error is an engine-level execution
// fault; KaTeX parse errors come back in Output.Error.
func (r *Runtime) Exec(in Input) (Output, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return Output{}, fmt.Errorf("encoding render input: %w", err)
	}

	// The payload is valid JSON, which QuickJS accepts as a literal argument.
	ret, err := r.ctx.Eval("renderToStringAndMacros(" + string(payload) + ")")
	if err != nil {
		return Output{}, fmt.Errorf("executing render call: %w", err)
	}
	defer ret.Free()

	var out Output
	if err := json.Unmarshal([]byte(ret.String()), &out); err != nil {
		return Output{}, fmt.Errorf("decoding render result: %w", err)
	}
	if out.Macros == nil {
		out.Macros = map[string]string{}
	}
	return out, nil
}

// Snapshot returns the compiled bytecode image of the loaded bundle.
func (r *Runtime) Snapshot() []byte {
	return r.code
}

// Close releases the QuickJS context and runtime.
func (r *Runtime) Close() error {
	if r.ctx != nil {
		r.ctx.Close()
		r.ctx = nil
	}
	r.rt.Close()
	return nil
}
