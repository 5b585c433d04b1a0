package core

// evalTry implements `try` (spec §4.1/§7): body is evaluated; if it
// raises a Go error (host error or an explicit `(error ...)` builtin
// call), the error is converted to the canonical `{:error payload}`
// map (via (*Error).ToValue) and yielded as the result, unconditionally
// — there is no catch sub-form in the spec. A trailing `(catch sym
// handler...)` is an accepted extension: when present, sym is bound to
// that same map and handler runs instead of yielding it directly.
// recurSignal is never caught here — control signals are not errors
// users can observe.
func evalTry(ev *Evaluator, args []Value, env *Env, tail bool) (Value, error) {
	if len(args) < 1 {
		return nil, ErrArity.With(attrStr("form", "try"), attrInt("got", len(args)))
	}

	body := args
	var catchSym Symbol
	var catchBody []Value
	haveCatch := false

	if n := len(args); n >= 1 {
		if lst, ok := args[n-1].(*List); ok && isHead(lst, "catch") {
			if len(lst.Items) < 2 {
				return nil, ErrInvalidValueType.With(attrStr("reason", "catch requires a binding symbol"))
			}

			sym, ok := lst.Items[1].(Symbol)
			if !ok {
				return nil, ErrInvalidValueType.With(attrStr("reason", "catch binding must be a symbol"))
			}

			body = args[:n-1]
			catchSym = sym
			catchBody = lst.Items[2:]
			haveCatch = true
		}
	}

	result, err := ev.evalBodyTailIn(body, env.Child(), tail)
	if err == nil {
		return result, nil
	}

	if _, isRecur := err.(*recurSignal); isRecur { //nolint:errorlint
		return nil, err
	}

	qerr, ok := As(err)
	if !ok {
		qerr = NewError(KindUser, err.Error()).Wrap(err)
	}

	if !haveCatch {
		return qerr.ToValue(), nil
	}

	child := env.Child()
	child.Define(catchSym.name, qerr.ToValue())

	return ev.evalBodyTailIn(catchBody, child, tail)
}
