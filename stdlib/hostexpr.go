package stdlib

import (
	"context"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/qi-lang/qi/core"
)

// registerHostExpr wires `(host-expr source env)`, a single escape
// hatch into expr-lang expressions embedded as strings in Qi source
// (spec §1: the standard-library surface is host-provided builtins at
// the core's invocation boundary; expr-lang is the teacher's own
// expression engine, kept here as the one bridge a Qi program has to
// it rather than dropped).
func registerHostExpr(r *core.Registry) {
	r.Add(core.NewBuiltin("host-expr", 2, 2, func(_ context.Context, args []core.Value, _ *core.Env) (core.Value, error) {
		source, err := asString(args[0])
		if err != nil {
			return nil, err
		}

		m, ok := args[1].(*core.Map)
		if !ok {
			return nil, core.ErrType.With(slog.String("reason", "host-expr requires a map environment"))
		}

		env, err := toHostEnv(m)
		if err != nil {
			return nil, err
		}

		program, err := expr.Compile(source, expr.Env(env))
		if err != nil {
			return nil, core.ErrIO.Wrap(err).With(slog.String("reason", "host-expr compile failed"))
		}

		result, err := vm.Run(program, env)
		if err != nil {
			return nil, core.ErrIO.Wrap(err).With(slog.String("reason", "host-expr evaluation failed"))
		}

		return fromHostValue(result), nil
	}))
}

// toHostEnv converts a Qi Map into the map[string]any expr-lang
// expects, via each key's printed (unquoted) form.
func toHostEnv(m *core.Map) (map[string]any, error) {
	env := make(map[string]any, m.Len())

	keys := m.Keys()
	vals := m.Vals()

	for i, k := range keys {
		name, err := hostKeyName(k)
		if err != nil {
			return nil, err
		}

		env[name] = toHostValue(vals[i])
	}

	return env, nil
}

func hostKeyName(k core.Value) (string, error) {
	switch t := k.(type) {
	case core.Keyword:
		return t.Name(), nil
	case core.Symbol:
		return t.Name(), nil
	case core.String:
		return string(t), nil
	default:
		return "", core.ErrType.With(slog.String("reason", "host-expr environment keys must be keyword, symbol, or string"))
	}
}

// toHostValue converts a Qi Value to a plain Go value expr-lang can
// consume natively; collections convert element-wise.
func toHostValue(v core.Value) any {
	switch t := v.(type) {
	case core.Nil:
		return nil
	case core.Bool:
		return bool(t)
	case core.Int:
		return int64(t)
	case core.Float:
		return float64(t)
	case core.String:
		return string(t)
	case core.Keyword:
		return t.Name()
	case core.Symbol:
		return t.Name()
	case *core.Vector:
		out := make([]any, len(t.Items))
		for i, it := range t.Items {
			out[i] = toHostValue(it)
		}

		return out
	case *core.List:
		out := make([]any, len(t.Items))
		for i, it := range t.Items {
			out[i] = toHostValue(it)
		}

		return out
	case *core.Map:
		out := make(map[string]any, t.Len())

		keys := t.Keys()
		vals := t.Vals()

		for i, k := range keys {
			name, err := hostKeyName(k)
			if err != nil {
				continue
			}

			out[name] = toHostValue(vals[i])
		}

		return out
	default:
		return v.String()
	}
}

// fromHostValue converts an expr-lang result back to a Qi Value.
func fromHostValue(v any) core.Value {
	switch t := v.(type) {
	case nil:
		return core.Nil{}
	case bool:
		return core.Bool(t)
	case int:
		return core.Int(t)
	case int64:
		return core.Int(t)
	case float64:
		return core.Float(t)
	case string:
		return core.String(t)
	case []any:
		items := make([]core.Value, len(t))
		for i, it := range t {
			items[i] = fromHostValue(it)
		}

		return &core.Vector{Items: items}
	case map[string]any:
		kv := make([]core.Value, 0, len(t)*2)
		for k, val := range t {
			kv = append(kv, core.String(k), fromHostValue(val))
		}

		m, err := core.NewMap(kv...)
		if err != nil {
			return core.Nil{}
		}

		return m
	default:
		return core.Nil{}
	}
}
