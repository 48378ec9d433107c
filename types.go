package katex

import (
	"fmt"
	"regexp"
	"time"

	"github.com/alnah/go-katex/internal/jsengine"
)

// OutputFormat selects which markup a conversion produces.
type OutputFormat string

// Output format constants, matching the KaTeX output setting.
const (
	OutputHTML          OutputFormat = "html"
	OutputMathML        OutputFormat = "mathml"
	OutputHTMLAndMathML OutputFormat = "htmlAndMathml"
)

// Default option values.
const (
	DefaultErrorColor = "#cc0000"
	DefaultMaxExpand  = 1000
)

// Options configures a single conversion. All fields are forwarded to the
// embedded KaTeX engine. A nil *Options means DefaultOptions().
//
// An Options value is owned by the call it is passed to; it is never retained
// or shared across calls.
type Options struct {
	// DisplayMode renders in block (display) layout instead of inline.
	DisplayMode bool

	// Output selects HTML, MathML, or both. Empty means OutputHTML.
	Output OutputFormat

	// Leqno places equation numbers on the left.
	Leqno bool

	// Fleqn left-aligns display-mode equations.
	Fleqn bool

	// ThrowOnError makes invalid input fail the conversion with ErrParse.
	// When false, KaTeX renders the erroneous source inline in ErrorColor
	// and the conversion succeeds.
	ThrowOnError bool

	// ErrorColor is the CSS color for inline error rendering, "#RGB" or
	// "#RRGGBB". Empty means DefaultErrorColor.
	ErrorColor string

	// MinRuleThickness overrides the minimum rule thickness in ems.
	// Nil means the engine default.
	MinRuleThickness *float64

	// ColorIsTextColor makes \color behave like \textcolor.
	ColorIsTextColor bool

	// MaxSize caps user-specified sizes in ems. Zero means unlimited.
	MaxSize float64

	// MaxExpand caps macro expansions. Zero means DefaultMaxExpand.
	MaxExpand int

	// Strict enables strict LaTeX compliance mode. Nil means the engine
	// default (warnings only).
	Strict *bool

	// Trust allows commands like \url and \htmlClass that emit untrusted
	// markup.
	Trust bool

	// GlobalGroup makes top-level \def and \newcommand definitions behave
	// like global definitions, so they persist into the macro table.
	GlobalGroup bool
}

// DefaultOptions returns the documented default configuration: inline mode,
// HTML-only output, errors thrown rather than rendered.
func DefaultOptions() *Options {
	return &Options{
		Output:       OutputHTML,
		ThrowOnError: true,
		ErrorColor:   DefaultErrorColor,
		MaxExpand:    DefaultMaxExpand,
	}
}

// errorColorRe accepts the 3- and 6-digit hex forms KaTeX understands.
var errorColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks that option values are forwardable to the engine.
// Returns nil for a nil receiver (nil means use defaults).
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}

	switch o.Output {
	case "", OutputHTML, OutputMathML, OutputHTMLAndMathML:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutput, o.Output)
	}

	if o.ErrorColor != "" && !errorColorRe.MatchString(o.ErrorColor) {
		return fmt.Errorf("%w: %q (must be #RGB or #RRGGBB)", ErrInvalidErrorColor, o.ErrorColor)
	}

	if o.MaxExpand < 0 {
		return fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidMaxExpand, o.MaxExpand)
	}

	if o.MaxSize < 0 {
		return fmt.Errorf("%w: %g (must be >= 0)", ErrInvalidMaxSize, o.MaxSize)
	}

	return nil
}

// engineOptions projects Options onto the engine-native representation.
// Zero values that mean "engine default" are omitted from the payload.
func (o *Options) engineOptions() jsengine.Options {
	if o == nil {
		o = DefaultOptions()
	}

	output := o.Output
	if output == "" {
		output = OutputHTML
	}
	errorColor := o.ErrorColor
	if errorColor == "" {
		errorColor = DefaultErrorColor
	}
	maxExpand := o.MaxExpand
	if maxExpand == 0 {
		maxExpand = DefaultMaxExpand
	}

	eo := jsengine.Options{
		DisplayMode:      o.DisplayMode,
		Output:           string(output),
		Leqno:            o.Leqno,
		Fleqn:            o.Fleqn,
		ThrowOnError:     o.ThrowOnError,
		ErrorColor:       errorColor,
		MinRuleThickness: o.MinRuleThickness,
		ColorIsTextColor: o.ColorIsTextColor,
		MaxExpand:        maxExpand,
		Strict:           o.Strict,
		Trust:            o.Trust,
		GlobalGroup:      o.GlobalGroup,
	}
	if o.MaxSize > 0 {
		maxSize := o.MaxSize
		eo.MaxSize = &maxSize
	}
	return eo
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout   time.Duration
	cachePath string
	warn      func(error)
}

// defaultTimeout bounds a single engine execution.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the engine-side execution timeout for a single conversion.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("katex: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithCachePath configures snapshot persistence before first use.
// Equivalent to calling SetCache on the new Converter.
func WithCachePath(path string) Option {
	return func(c *Converter) {
		c.cfg.cachePath = path
	}
}

// WithWarningHandler installs a handler for non-fatal diagnostics, currently
// snapshot cache load/store failures. Cache trouble degrades to a cold start
// and is never reported as a conversion error; this handler is the only place
// it surfaces. The handler may be called while a conversion holds the session
// lock, so it must not call back into the Converter.
func WithWarningHandler(fn func(error)) Option {
	if fn == nil {
		panic("katex: WithWarningHandler requires a non-nil handler")
	}
	return func(c *Converter) {
		c.cfg.warn = fn
	}
}
