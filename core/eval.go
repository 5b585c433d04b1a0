package core

import (
	"context"
	"log/slog"

	"github.com/qi-lang/qi/log"
)

// Evaluator ties together an environment, the builtin registry, and a
// logger for one evaluation session (spec §4.1). It holds no form-tree
// state of its own; forms are plain Value trees owned by the caller.
type Evaluator struct {
	Root     *Env
	Builtins *Registry
	Logger   log.Logger
	Runtime  *Runtime // concurrency runtime: worker pool, default channel capacity
}

// NewEvaluator creates an Evaluator with a fresh root environment, the
// standard builtin registry, and the given logger (zero value is a
// no-op logger, matching the teacher's injected-logger convention).
func NewEvaluator(logger log.Logger) *Evaluator {
	ev := &Evaluator{
		Root:    NewRootEnv(),
		Logger:  logger,
		Runtime: NewRuntime(),
	}

	ev.Builtins = NewRegistry(ev)
	ev.Builtins.DefineAll(ev.Root)

	return ev
}

// Eval evaluates form in env to completion. It is the public entry
// point: forms are always evaluated outside tail position here, and a
// `recur` sentinel escaping all the way out is reported as
// ErrRecurMisplaced rather than leaking as an internal control value.
func (ev *Evaluator) Eval(form Value, env *Env) (Value, error) {
	v, err := ev.eval(form, env, false)
	if rc, ok := err.(*recurSignal); ok { //nolint:errorlint
		return nil, ErrRecurMisplaced.With(attrInt("arg_count", len(rc.Args)))
	}

	return v, err
}

// recurSignal is the sentinel control-transfer value a `(recur ...)`
// tail call produces (spec §9: "Implement as a sentinel return from the
// body"). It satisfies error so it can travel through the ordinary
// (Value, error) return path without a third return value.
type recurSignal struct{ Args []Value }

func (r *recurSignal) Error() string { return "recur" }

func (ev *Evaluator) eval(form Value, env *Env, tail bool) (Value, error) {
	switch f := form.(type) {
	case Nil, Bool, Int, Float, String, Keyword:
		return form, nil

	case Symbol:
		return env.Lookup(f.name)

	case *Vector:
		items := make([]Value, len(f.Items))

		for i, item := range f.Items {
			v, err := ev.eval(item, env, false)
			if err != nil {
				return nil, err
			}

			items[i] = v
		}

		return &Vector{Items: items}, nil

	case *Map:
		return ev.evalMapLiteral(f, env)

	case *List:
		return ev.evalList(f, env, tail)

	default:
		return form, nil
	}
}

func (ev *Evaluator) evalMapLiteral(m *Map, env *Env) (Value, error) {
	out := &Map{}

	for _, k := range m.Keys() {
		kv, err := ev.eval(k, env, false)
		if err != nil {
			return nil, err
		}

		val, _ := m.Get(k)

		vv, err := ev.eval(val, env, false)
		if err != nil {
			return nil, err
		}

		if err := out.Set(kv, vv); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (ev *Evaluator) evalList(l *List, env *Env, tail bool) (Value, error) {
	if len(l.Items) == 0 {
		return l, nil
	}

	if sym, ok := l.Items[0].(Symbol); ok {
		if sf, ok := specialForms[sym.name]; ok {
			ev.Logger.Trace("special form", slog.String("form", sym.name))

			return sf(ev, l.Items[1:], env, tail)
		}

		if macroVal, err := env.Lookup(sym.name); err == nil {
			if mac, ok := macroVal.(*Macro); ok {
				expanded, err := ev.expandMacro(mac, l.Items[1:], env)
				if err != nil {
					return nil, err
				}

				return ev.eval(expanded, env, tail)
			}
		}
	}

	head, err := ev.eval(l.Items[0], env, false)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(l.Items)-1)

	for i, a := range l.Items[1:] {
		v, err := ev.eval(a, env, false)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	return ev.Apply(context.Background(), head, args, tail)
}

// Apply invokes a Function, Builtin, or callable Keyword/Map (spec §3:
// "Callable as `(:k m)`") with already-evaluated args. tail indicates
// whether this call occupies the caller's own tail position, allowing
// `recur` inside a Function body to replace its parameter bindings
// without growing the Go call stack.
func (ev *Evaluator) Apply(ctx context.Context, callee Value, args []Value, tail bool) (Value, error) {
	switch c := callee.(type) {
	case *Builtin:
		if err := c.CheckArity(len(args)); err != nil {
			return nil, err
		}

		return c.Fn(ctx, args, ev.Root)

	case *Function:
		return ev.applyFunction(c, args)

	case Keyword:
		if len(args) != 1 {
			return nil, ErrArity.With(attrStr("callee", "keyword accessor"), attrInt("got", len(args)))
		}

		m, ok := args[0].(*Map)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "keyword accessor requires a map argument"))
		}

		v, ok := m.Get(c)
		if !ok {
			return Nil{}, nil
		}

		return v, nil

	default:
		return nil, ErrType.With(attrStr("reason", "value is not callable"), attrType("callee", callee))
	}
}

func (ev *Evaluator) applyFunction(fn *Function, args []Value) (Value, error) {
	bind := func(parent *Env) (*Env, error) {
		call := parent.NewCallFrame()

		if fn.Rest == nil {
			if len(args) != len(fn.Params) {
				return nil, ErrArity.With(attrStr("name", fn.Name), attrInt("expected", len(fn.Params)), attrInt("got", len(args)))
			}
		} else if len(args) < len(fn.Params) {
			return nil, ErrArity.With(attrStr("name", fn.Name), attrInt("min_expected", len(fn.Params)), attrInt("got", len(args)))
		}

		for i, p := range fn.Params {
			if !p.Bind(args[i], call) {
				return nil, ErrType.With(attrStr("reason", "parameter destructuring failed"), attrInt("index", i))
			}
		}

		if fn.Rest != nil {
			rest := &List{Items: append([]Value{}, args[len(fn.Params):]...)}
			if !fn.Rest.Bind(rest, call) {
				return nil, ErrType.With(attrStr("reason", "rest parameter destructuring failed"))
			}
		}

		return call, nil
	}

	call, err := bind(fn.Env)
	if err != nil {
		return nil, err
	}

	for {
		result, err := ev.evalBodyTail(fn.Body, call)

		defErrs := call.RunDefers(func(v Value, e *Env) (Value, error) { return ev.eval(v, e, false) })
		for _, derr := range defErrs {
			ev.Logger.Error("deferred form failed", slog.Any("error", derr))
		}

		if rc, ok := err.(*recurSignal); ok { //nolint:errorlint
			if len(rc.Args) != len(fn.Params) {
				return nil, ErrArity.With(attrStr("name", fn.Name), attrInt("expected", len(fn.Params)), attrInt("got", len(rc.Args)))
			}

			args = rc.Args

			call, err = bind(fn.Env)
			if err != nil {
				return nil, err
			}

			continue
		}

		return result, err
	}
}

// evalBodyTail evaluates a sequence of body forms, only the last of
// which is in tail position.
func (ev *Evaluator) evalBodyTail(body []Value, env *Env) (Value, error) {
	if len(body) == 0 {
		return Nil{}, nil
	}

	for _, form := range body[:len(body)-1] {
		if _, err := ev.eval(form, env, false); err != nil {
			return nil, err
		}
	}

	return ev.eval(body[len(body)-1], env, true)
}
