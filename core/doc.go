// Package core implements the Qi language core: the value model and
// Lisp-1 environment, the tree-walking evaluator and its special forms,
// the pattern matcher, and the concurrency runtime (channels, goroutine
// tasks, structured scopes, atoms, parallel collection operators, and
// lazy streams).
//
// The package does not parse source text. It consumes a [Form] tree
// produced by a reader (see package reader) and evaluates it against an
// [Env]. Host functionality — I/O, string/math libraries, and so on — is
// injected through the [Builtin] calling convention rather than being
// built into the evaluator.
package core
