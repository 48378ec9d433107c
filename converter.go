package katex

import (
	"context"
	"strings"

	"github.com/alnah/go-katex/internal/jsengine"
)

// Compile-time interface implementation checks.
var _ mathEngine = (*jsengine.Runtime)(nil)

// Converter renders LaTeX math to HTML/MathML through an embedded KaTeX
// engine. It owns one long-lived engine instance: the engine is created
// lazily on first use (warm-started from the snapshot cache when one is
// configured) and kept warm across calls, so macros defined with \gdef in one
// conversion are visible to later conversions through the caller's MacroTable.
//
// A Converter is safe for concurrent use; conversions are serialized against
// the single engine instance, first come first served.
//
// Create with NewConverter, convert with Render or RenderWithOptions, and
// Close when done.
type Converter struct {
	cfg     converterConfig
	session *session
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g. WithCachePath, WithTimeout).
// The engine itself is not started until the first conversion.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.session = &session{
		cachePath: c.cfg.cachePath,
		tag:       jsengine.SnapshotTag,
		warn:      c.cfg.warn,
	}
	// Engine factory is a field so tests can substitute a fake engine.
	timeout := c.cfg.timeout
	c.session.newEngine = func(blob []byte) (mathEngine, error) {
		if blob != nil {
			return jsengine.NewFromSnapshot(blob, timeout)
		}
		return jsengine.New(timeout)
	}

	return c, nil
}

// Render converts latex with default options: inline mode, HTML-only output,
// default error color, and a throwaway macro table (no macro state crosses
// this call in either direction).
func (c *Converter) Render(ctx context.Context, latex string) (string, error) {
	return c.RenderWithOptions(ctx, latex, nil, nil)
}

// RenderWithOptions converts latex with explicit options and caller-supplied
// macro state. A nil opts means DefaultOptions(); a nil macros means a
// throwaway table.
//
// On success, macros is updated in place to the authoritative
// post-conversion state, including definitions the input added via global
// definition commands. On ErrParse the table is left exactly as it was
// before the call, so the caller can retry a corrected input without having
// corrupted macro state. On ErrEngineFault the Converter is poisoned and
// every later call fails with the fault until a new Converter is built.
func (c *Converter) RenderWithOptions(ctx context.Context, latex string, opts *Options, macros *MacroTable) (string, error) {
	if strings.TrimSpace(latex) == "" {
		return "", ErrEmptyLatex
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}
	return c.session.convert(ctx, latex, opts, macros)
}

// SetCache records a filesystem location for engine snapshot persistence.
// Call it before the first conversion to affect the initial cold/warm
// decision; calling it later only affects future cold starts (a Ready engine
// is never restarted). Redundant calls with the same path are safe.
func (c *Converter) SetCache(path string) {
	c.session.setCache(path)
}

// Close releases the embedded engine. The Converter cannot be reused after
// Close; subsequent conversions return ErrConverterClosed.
func (c *Converter) Close() error {
	return c.session.close()
}
