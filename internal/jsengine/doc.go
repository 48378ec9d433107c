// Package jsengine hosts the KaTeX bundle inside an embedded QuickJS
// interpreter and exposes a single conversion entry point.
//
// The package owns the engine-native representation of a conversion request
// (Input/Output with camelCase JSON tags matching the KaTeX API) so that the
// foreign representation never leaks into the public katex package. A Runtime
// is not safe for concurrent use; callers serialize access.
package jsengine
