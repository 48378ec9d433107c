package katex

import "errors"

// Sentinel errors for library operations.
//
// ErrParse and ErrEngineFault are deliberately distinct: a parse error is
// scoped to one call and safe to retry with corrected input, while an engine
// fault poisons the session and every later call fails with it until a new
// Converter is constructed.
var (
	ErrEmptyLatex = errors.New("latex content cannot be empty")

	// ErrParse wraps a KaTeX syntax/semantic error for the given input.
	// The caller's macro table is left untouched.
	ErrParse = errors.New("katex parse error")

	// ErrEngineFault wraps a failure of the embedded engine itself,
	// unrelated to the correctness of the input.
	ErrEngineFault = errors.New("math engine fault")

	// ErrConverterClosed is returned after Close.
	ErrConverterClosed = errors.New("converter is closed")

	// Options validation errors.
	ErrInvalidOutput     = errors.New("invalid output format")
	ErrInvalidErrorColor = errors.New("invalid error color")
	ErrInvalidMaxExpand  = errors.New("invalid max expand")
	ErrInvalidMaxSize    = errors.New("invalid max size")

	// Macro file errors.
	ErrMacroFileParse = errors.New("failed to parse macro file")
)
