package katex

import (
	"sort"

	"github.com/alnah/go-katex/internal/fontscan"
)

// FontFlags is the set of font base names (without file extension, e.g.
// "KaTeX_Main-Regular") referenced by a piece of rendered markup. It is
// derived data, computed fresh per scan and never cached.
type FontFlags map[string]bool

// Has reports whether the set contains name.
func (f FontFlags) Has(name string) bool {
	return f[name]
}

// Merge adds every font in other to f.
func (f FontFlags) Merge(other FontFlags) {
	for name, set := range other {
		if set {
			f[name] = true
		}
	}
}

// Names returns the fonts in sorted order.
func (f FontFlags) Names() []string {
	names := make([]string, 0, len(f))
	for name, set := range f {
		if set {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether no fonts were found.
func (f FontFlags) IsEmpty() bool {
	for _, set := range f {
		if set {
			return false
		}
	}
	return true
}

// Equal reports whether two sets contain the same fonts.
func (f FontFlags) Equal(other FontFlags) bool {
	if len(f.Names()) != len(other.Names()) {
		return false
	}
	for name, set := range f {
		if set && !other[name] {
			return false
		}
	}
	return true
}

// ExtractFonts scans markup produced by a conversion and returns the fonts it
// uses, so callers can ship only the font assets actually referenced. It
// works on any HTML the engine could have produced, including externally
// stored results, and is independent of any Converter. Markup without KaTeX
// output yields an empty set, never an error.
func ExtractFonts(markup string) FontFlags {
	flags := make(FontFlags)
	for _, name := range fontscan.Scan(markup) {
		flags[name] = true
	}
	return flags
}
