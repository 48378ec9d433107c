// Package mathext provides a goldmark extension that renders $...$ and
// $$...$$ spans in Markdown through a katex Converter.
//
// Equations in a document share one MacroTable, so a \gdef in an early
// equation is visible to every later equation of the same extension
// instance. Math that fails to render falls back to a span carrying the raw
// source and the error, keeping document conversion total.
package mathext

import (
	"bytes"
	"context"
	"html"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	katex "github.com/alnah/go-katex"
)

// Renderer is the conversion surface the extension needs; *katex.Converter
// implements it.
type Renderer interface {
	RenderWithOptions(ctx context.Context, latex string, opts *katex.Options, macros *katex.MacroTable) (string, error)
}

// Kind is the node kind of a math span.
var Kind = ast.NewNodeKind("KatexMath")

// mathNode is an inline math span: $...$ or $$...$$.
type mathNode struct {
	ast.BaseInline
	Source  []byte
	Display bool
}

func (n *mathNode) Kind() ast.NodeKind { return Kind }

func (n *mathNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Source": string(n.Source),
	}, nil)
}

// Extension wires the math parser and renderer into a goldmark.Markdown.
type Extension struct {
	conv    Renderer
	inline  *katex.Options
	display *katex.Options
	macros  *katex.MacroTable
}

// Option configures an Extension.
type Option func(*Extension)

// WithMacros supplies the macro table shared by every equation rendered
// through this extension. Without it the extension owns a private table.
func WithMacros(m *katex.MacroTable) Option {
	return func(e *Extension) {
		e.macros = m
	}
}

// WithInlineOptions overrides the conversion options for $...$ spans.
func WithInlineOptions(o *katex.Options) Option {
	return func(e *Extension) {
		e.inline = o
	}
}

// WithDisplayOptions overrides the conversion options for $$...$$ spans.
func WithDisplayOptions(o *katex.Options) Option {
	return func(e *Extension) {
		e.display = o
	}
}

// New creates the extension. By default errors inside an equation are
// rendered inline by KaTeX (ThrowOnError=false) rather than failing the
// document.
func New(conv Renderer, opts ...Option) *Extension {
	inline := katex.DefaultOptions()
	inline.ThrowOnError = false

	display := katex.DefaultOptions()
	display.ThrowOnError = false
	display.DisplayMode = true

	e := &Extension{
		conv:    conv,
		inline:  inline,
		display: display,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.macros == nil {
		e.macros = &katex.MacroTable{}
	}
	return e
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&mathParser{}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&mathRenderer{ext: e}, 500),
	))
}

// mathParser recognizes $...$ and $$...$$ within a single line.
type mathParser struct{}

func (p *mathParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *mathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()

	delim := 1
	if len(line) > 1 && line[1] == '$' {
		delim = 2
	}

	closer := line[:delim]
	rest := line[delim:]
	idx := bytes.Index(rest, closer)
	if idx <= 0 {
		return nil // empty or unterminated on this line
	}

	source := rest[:idx]
	// A literal dollar amount like "$5 and $6" is not math.
	if delim == 1 && (isSpace(source[0]) || isSpace(source[len(source)-1])) {
		return nil
	}

	block.Advance(delim + idx + delim)
	return &mathNode{
		Source:  bytes.TrimSpace(source),
		Display: delim == 2,
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

// mathRenderer renders math nodes through the extension's Converter.
// The mutex keeps the shared macro table consistent when one goldmark
// instance converts documents from multiple goroutines.
type mathRenderer struct {
	ext *Extension
	mu  sync.Mutex
}

func (r *mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(Kind, r.renderMath)
}

func (r *mathRenderer) renderMath(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*mathNode)

	opts := r.ext.inline
	if n.Display {
		opts = r.ext.display
	}

	r.mu.Lock()
	out, err := r.ext.conv.RenderWithOptions(context.Background(), string(n.Source), opts, r.ext.macros)
	r.mu.Unlock()

	if err != nil {
		_, _ = w.WriteString(`<span class="katex-error" title="`)
		_, _ = w.WriteString(html.EscapeString(err.Error()))
		_, _ = w.WriteString(`">`)
		_, _ = w.WriteString(html.EscapeString(string(n.Source)))
		_, _ = w.WriteString(`</span>`)
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(out)
	return ast.WalkContinue, nil
}
