package core

// evalLoop implements `(loop [sym init sym init ...] body...)` (spec
// §4.1/§9). It establishes a binding frame exactly like `let`, then
// drives the body in an explicit Go `for` loop rather than Go
// recursion: a `(recur ...)` tail call anywhere in body rebinds the
// loop symbols and restarts the loop, giving O(1) Go stack growth no
// matter how many iterations occur (spec property 6).
func evalLoop(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) < 1 {
		return nil, ErrArity.With(attrStr("form", "loop"), attrInt("got", len(args)))
	}

	bindings, ok := args[0].(*Vector)
	if !ok || len(bindings.Items)%2 != 0 {
		return nil, ErrInvalidValueType.With(attrStr("reason", "loop bindings must be a vector of symbol/value pairs"))
	}

	names := make([]string, 0, len(bindings.Items)/2)
	vals := make([]Value, 0, len(bindings.Items)/2)

	init := env.Child()

	for i := 0; i < len(bindings.Items); i += 2 {
		sym, ok := bindings.Items[i].(Symbol)
		if !ok {
			return nil, ErrInvalidValueType.With(attrStr("reason", "loop binding name must be a symbol"))
		}

		v, err := ev.eval(bindings.Items[i+1], init, false)
		if err != nil {
			return nil, err
		}

		names = append(names, sym.name)
		vals = append(vals, v)
		init.Define(sym.name, v)
	}

	body := args[1:]

	for {
		result, err := ev.evalBodyTail(body, init)
		if rc, ok := err.(*recurSignal); ok { //nolint:errorlint
			if len(rc.Args) != len(names) {
				return nil, ErrArity.With(attrStr("form", "recur"), attrInt("expected", len(names)), attrInt("got", len(rc.Args)))
			}

			init = env.Child()

			for i, name := range names {
				init.Define(name, rc.Args[i])
			}

			continue
		}

		return result, err
	}
}

// evalRecur evaluates its arguments (ordinary applicative-order
// evaluation: `recur`'s own arguments are not magic) and returns them
// wrapped in a recurSignal, which only evalLoop/applyFunction consume;
// anywhere else it propagates up to Eval, which reports
// ErrRecurMisplaced (spec §4.1: "recur outside tail position is a
// compile/runtime error").
func evalRecur(ev *Evaluator, args []Value, env *Env, tail bool) (Value, error) {
	if !tail {
		return nil, ErrRecurMisplaced
	}

	vals := make([]Value, len(args))

	for i, a := range args {
		v, err := ev.eval(a, env, false)
		if err != nil {
			return nil, err
		}

		vals[i] = v
	}

	return nil, &recurSignal{Args: vals}
}
