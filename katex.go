package katex

import (
	"context"
	"sync"
)

// Package-level convenience API over a shared default Converter, for callers
// that want the original "call a function" ergonomics. The Converter is
// created lazily on first use; SetCache must be called before that point to
// affect the initial cold/warm decision. Libraries and anything that needs
// its own engine lifecycle should construct a Converter instead.
var (
	defaultMu        sync.Mutex
	defaultConverter *Converter
	defaultCachePath string
)

func getDefault() *Converter {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultConverter == nil {
		// NewConverter without engine injection cannot fail.
		defaultConverter, _ = NewConverter(WithCachePath(defaultCachePath))
	}
	return defaultConverter
}

// Render converts latex using the shared default Converter and default
// options. See Converter.Render.
func Render(ctx context.Context, latex string) (string, error) {
	return getDefault().Render(ctx, latex)
}

// RenderWithOptions converts latex using the shared default Converter with
// explicit options and macro state. See Converter.RenderWithOptions.
func RenderWithOptions(ctx context.Context, latex string, opts *Options, macros *MacroTable) (string, error) {
	return getDefault().RenderWithOptions(ctx, latex, opts, macros)
}

// SetCache configures snapshot persistence for the shared default Converter.
// Effective for the initial cold/warm decision only when called before the
// first package-level conversion; safe to call redundantly with the same
// path.
func SetCache(path string) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultCachePath = path
	if defaultConverter != nil {
		defaultConverter.SetCache(path)
	}
}
