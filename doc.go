// Package katex converts LaTeX math to HTML/MathML using an embedded KaTeX
// engine hosted in a QuickJS interpreter.
//
// # Quick Start
//
// Create a converter, render an expression, and close when done:
//
//	conv, err := katex.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	html, err := conv.Render(ctx, `E = mc^2`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(html)
//
// Or use the package-level functions, which share one lazily-created
// converter:
//
//	html, err := katex.Render(ctx, `E = mc^2`)
//
// # Macro Persistence
//
// The engine instance stays warm across calls, and macro state is threaded
// through a caller-owned MacroTable. Macros defined with \gdef (and, with
// Options.GlobalGroup, \def and \newcommand) in one conversion are visible to
// later conversions using the same table:
//
//	macros := katex.MacroTable{}
//	_, _ = conv.RenderWithOptions(ctx, `\gdef\RR{\mathbb{R}}`, nil, &macros)
//	html, _ := conv.RenderWithOptions(ctx, `x \in \RR`, nil, &macros)
//
// A failed conversion never mutates the table, so callers can retry a
// corrected input without rebuilding macro state.
//
// # Snapshot Cache
//
// Cold-starting the engine compiles the bundled KaTeX source. Configure a
// cache path to persist the compiled image and skip that work on later
// process starts:
//
//	conv, err := katex.NewConverter(katex.WithCachePath("/tmp/katex.snap"))
//
// The cache is a pure optimization: a missing, stale, or corrupt snapshot
// degrades to a cold start, surfaced only through WithWarningHandler.
//
// # Font Extraction
//
// ExtractFonts reports which KaTeX font files rendered markup actually
// references, so deployments can ship only those assets:
//
//	fonts := katex.ExtractFonts(html)
//	for _, name := range fonts.Names() {
//	    fmt.Println(name + ".woff2")
//	}
//
// # Errors
//
// Invalid LaTeX fails with ErrParse and is safe to retry; a failure of the
// engine itself fails with ErrEngineFault and poisons the converter, and a
// new Converter must be constructed. The two are never collapsed.
//
// # Markdown
//
// The mathext subpackage provides a goldmark extension that renders $...$
// and $$...$$ spans through a Converter, with macro persistence across the
// equations of a document.
package katex
