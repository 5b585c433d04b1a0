package reader

import (
	"fmt"
	"log/slog"

	"github.com/qi-lang/qi/core"
)

// pipelineOp marks an infix pipeline operator encountered while reading
// a parenthesised sequence; it is never seen by the evaluator, only by
// lowerPipeline below.
type pipelineOp struct{ kind tokenKind }

func (pipelineOp) String() string { return "#<pipeline-op>" }

func pipelineMarker(k tokenKind) core.Value { return pipelineOp{kind: k} }

// pipeCounter hands out unique names for the hidden let-bindings `|>?`
// lowering needs to evaluate its left-hand side exactly once.
var pipeCounter int //nolint:gochecknoglobals

func freshPipeName() string {
	pipeCounter++
	return fmt.Sprintf("__pipe%d__", pipeCounter)
}

// lowerPipeline folds a flat sequence of forms possibly interspersed
// with pipeline-operator markers (spec §4.9) into a single application
// form. A sequence with no markers is returned as an ordinary List
// unchanged — this is the common case, every non-pipeline `(f a b)`
// call included.
func lowerPipeline(items []core.Value) (core.Value, error) {
	hasOp := false

	for _, it := range items {
		if _, ok := it.(pipelineOp); ok {
			hasOp = true
			break
		}
	}

	if !hasOp {
		return &core.List{Items: items}, nil
	}

	if len(items) == 0 || isPipelineOp(items[0]) {
		return nil, core.ErrSyntax.With(slog.String("reason", "pipeline operator missing a left-hand side"))
	}

	acc := items[0]
	i := 1

	for i < len(items) {
		op, ok := items[i].(pipelineOp)
		if !ok {
			return nil, core.ErrSyntax.With(slog.String("reason", "malformed pipeline expression: expected an operator"))
		}

		if i+1 >= len(items) {
			return nil, core.ErrSyntax.With(slog.String("reason", "pipeline operator missing a right-hand side"))
		}

		rhs := items[i+1]

		next, err := lowerOne(acc, op.kind, rhs)
		if err != nil {
			return nil, err
		}

		acc = next
		i += 2
	}

	return acc, nil
}

func isPipelineOp(v core.Value) bool {
	_, ok := v.(pipelineOp)
	return ok
}

// lowerOne applies one pipeline step: lhs <op> rhs -> a lowered form.
func lowerOne(lhs core.Value, op tokenKind, rhs core.Value) (core.Value, error) {
	switch op {
	case tokPipe:
		if isTapForm(rhs) {
			return lowerTap(lhs, rhs)
		}

		return insertArg(rhs, lhs), nil

	case tokPPipe:
		return core.NewList(core.NewSymbol("pmap"), rhs, lhs), nil

	case tokErrPipe:
		return lowerErrPipe(lhs, rhs), nil

	case tokGoPipe:
		return core.NewList(core.NewSymbol("go-run"), insertArg(rhs, lhs)), nil

	default:
		return nil, core.ErrSyntax.With(slog.String("reason", "unknown pipeline operator"))
	}
}

// isTapForm reports whether rhs is `(tap f)`, the §4.9 side-effect form.
func isTapForm(rhs core.Value) bool {
	l, ok := rhs.(*core.List)
	if !ok || len(l.Items) == 0 {
		return false
	}

	sym, ok := l.Items[0].(core.Symbol)

	return ok && sym.Name() == "tap"
}

// lowerTap builds `(do (f lhs) lhs)` via a hidden let-binding so lhs is
// only evaluated once even though it appears twice in the result.
func lowerTap(lhs core.Value, rhs *core.List) (core.Value, error) {
	if len(rhs.Items) != 2 {
		return nil, core.ErrSyntax.With(slog.String("reason", "tap expects exactly one function argument"))
	}

	f := rhs.Items[1]
	name := freshPipeName()
	sym := core.NewSymbol(name)

	return core.NewList(
		core.NewSymbol("let"),
		&core.Vector{Items: []core.Value{sym, lhs}},
		core.NewList(core.NewSymbol("do"), core.NewList(f, sym), sym),
	), nil
}

// lowerErrPipe builds the railway-short-circuit form for `x |>? f`:
// evaluate x once, return it unchanged if error-shaped, else apply f
// with the same insertion rules as `|>`.
func lowerErrPipe(lhs core.Value, rhs core.Value) core.Value {
	name := freshPipeName()
	sym := core.NewSymbol(name)

	return core.NewList(
		core.NewSymbol("let"),
		&core.Vector{Items: []core.Value{sym, lhs}},
		core.NewList(
			core.NewSymbol("if"),
			core.NewList(core.NewSymbol("error?"), sym),
			sym,
			insertArg(rhs, sym),
		),
	)
}

// insertArg applies rhs to arg: if rhs is a bare callable form (symbol,
// keyword, or any non-call form), the result is `(rhs arg)`. If rhs is
// already a call `(g a...)`, arg is appended unless one of the
// arguments is the `_` placeholder symbol, in which case arg takes that
// position instead (spec §4.9).
func insertArg(rhs core.Value, arg core.Value) core.Value {
	l, ok := rhs.(*core.List)
	if !ok || len(l.Items) == 0 {
		return core.NewList(rhs, arg)
	}

	items := append([]core.Value{}, l.Items...)

	for i, it := range items[1:] {
		if sym, ok := it.(core.Symbol); ok && sym.Name() == "_" {
			items[i+1] = arg
			return &core.List{Items: items}
		}
	}

	items = append(items, arg)

	return &core.List{Items: items}
}
