package reader

import "github.com/qi-lang/qi/core"

// init wires this package's Parse into core.ParseProgram so `load` and
// `(module ...)` forms can parse source files without core importing
// reader directly (core cannot import reader: reader already imports
// core for the Value types it produces).
func init() { //nolint:gochecknoinits
	core.ParseProgram = Parse
}
