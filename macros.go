package katex

import (
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-yaml"
)

// maxMacroFileSize caps macro file input to prevent memory exhaustion.
const maxMacroFileSize = 1 << 20

// MacroTable maps macro names (including the leading backslash, e.g. `\RR`)
// to their replacement text as understood by the engine.
//
// A table is supplied by the caller and updated in place by successful
// conversions; it always reflects exactly the macro state the engine would
// use for the next conversion. The zero value (nil) is a valid empty table
// for reads; conversions are handed a *MacroTable and may replace it.
type MacroTable map[string]string

// Clone returns an independent copy. Cloning a nil table returns an empty,
// non-nil table, which serializes as an object rather than null.
func (m MacroTable) Clone() MacroTable {
	out := make(MacroTable, len(m))
	for name, def := range m {
		out[name] = def
	}
	return out
}

// Names returns the macro names in sorted order.
func (m MacroTable) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether two tables define the same macros.
func (m MacroTable) Equal(other MacroTable) bool {
	if len(m) != len(other) {
		return false
	}
	for name, def := range m {
		if otherDef, ok := other[name]; !ok || otherDef != def {
			return false
		}
	}
	return true
}

// LoadMacroFile reads a macro table from a YAML file mapping macro names to
// replacement text:
//
//	"\\RR": "\\mathbb{R}"
//	"\\half": "\\frac{1}{2}"
//
// An empty file yields an empty table.
func LoadMacroFile(path string) (MacroTable, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("reading macro file: %w", err)
	}
	if len(data) > maxMacroFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrMacroFileParse, len(data), maxMacroFileSize)
	}

	m := MacroTable{}
	if len(data) == 0 {
		return m, nil
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMacroFileParse, err)
	}
	return m, nil
}

// SaveFile writes the table as YAML, suitable for LoadMacroFile.
func (m MacroTable) SaveFile(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding macro file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- macro files are not secrets
		return fmt.Errorf("writing macro file: %w", err)
	}
	return nil
}
