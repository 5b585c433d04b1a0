// Package stdlib registers the host-provided builtin modules spec §1
// places out of the evaluator's scope ("the large standard-library
// surface … is specified only at its boundary with the core"): string
// utilities, path/PATH-string manipulation, and a single `host-expr`
// bridge into expr-lang for embedding host expressions in Qi source.
// Each function here has exactly the builtin calling convention
// core.BuiltinFunc already defines; stdlib only supplies handlers.
package stdlib

import (
	"context"
	"log/slog"
	"strings"

	"github.com/qi-lang/qi/core"
)

func registerStr(r *core.Registry) {
	r.Add(core.NewBuiltin("str-upper", 1, 1, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		s, err := asString(args[0])
		if err != nil {
			return nil, err
		}

		return core.String(strings.ToUpper(s)), nil
	}))

	r.Add(core.NewBuiltin("str-lower", 1, 1, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		s, err := asString(args[0])
		if err != nil {
			return nil, err
		}

		return core.String(strings.ToLower(s)), nil
	}))

	r.Add(core.NewBuiltin("str-trim", 1, 1, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		s, err := asString(args[0])
		if err != nil {
			return nil, err
		}

		return core.String(strings.TrimSpace(s)), nil
	}))

	r.Add(core.NewBuiltin("str-split", 2, 2, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		s, err := asString(args[0])
		if err != nil {
			return nil, err
		}

		sep, err := asString(args[1])
		if err != nil {
			return nil, err
		}

		parts := strings.Split(s, sep)
		items := make([]core.Value, len(parts))

		for i, p := range parts {
			items[i] = core.String(p)
		}

		return &core.Vector{Items: items}, nil
	}))

	r.Add(core.NewBuiltin("str-join", 2, 2, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		sep, err := asString(args[1])
		if err != nil {
			return nil, err
		}

		items, err := asStringSeq(args[0])
		if err != nil {
			return nil, err
		}

		return core.String(strings.Join(items, sep)), nil
	}))

	r.Add(core.NewBuiltin("str-contains?", 2, 2, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		s, err := asString(args[0])
		if err != nil {
			return nil, err
		}

		sub, err := asString(args[1])
		if err != nil {
			return nil, err
		}

		return core.Bool(strings.Contains(s, sub)), nil
	}))

	r.Add(core.NewBuiltin("str-replace", 3, 3, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		s, err := asString(args[0])
		if err != nil {
			return nil, err
		}

		old, err := asString(args[1])
		if err != nil {
			return nil, err
		}

		rep, err := asString(args[2])
		if err != nil {
			return nil, err
		}

		return core.String(strings.ReplaceAll(s, old, rep)), nil
	}))
}

func asString(v core.Value) (string, error) {
	s, ok := v.(core.String)
	if !ok {
		return "", core.ErrType.With(slog.String("reason", "expected a string argument"))
	}

	return string(s), nil
}

func asStringSeq(v core.Value) ([]string, error) {
	var items []core.Value

	switch t := v.(type) {
	case *core.Vector:
		items = t.Items
	case *core.List:
		items = t.Items
	default:
		return nil, core.ErrType.With(slog.String("reason", "expected a vector or list of strings"))
	}

	out := make([]string, len(items))

	for i, item := range items {
		s, err := asString(item)
		if err != nil {
			return nil, err
		}

		out[i] = s
	}

	return out, nil
}
