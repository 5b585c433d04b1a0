package core

// Macro is a compile-time transformer: unlike Function, applying a
// Macro does not evaluate its arguments first. The evaluator expands a
// macro call into a replacement form, then evaluates that form in the
// calling environment (spec §4.1/§9: "expand at first use, with the
// expansion then evaluated as ordinary code").
type Macro struct {
	Name   string
	Params []Pattern
	Rest   Pattern
	Body   []Value
	Env    *Env // the environment the macro was defined in
}

func (m *Macro) String() string { return "#<macro:" + m.Name + ">" }

// evalMac implements `(mac name [params...] body...)`, defining a Macro
// in the root environment under name, in the same namespace `def`/`defn`
// use (Lisp-1).
func evalMac(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) < 2 {
		return nil, ErrArity.With(attrStr("form", "mac"), attrInt("got", len(args)))
	}

	sym, ok := args[0].(Symbol)
	if !ok {
		return nil, ErrInvalidValueType.With(attrStr("reason", "mac requires a symbol name"))
	}

	params, rest, err := compileParamList(args[1])
	if err != nil {
		return nil, err
	}

	mac := &Macro{Name: sym.name, Params: params, Rest: rest, Body: args[2:], Env: env}
	env.Root().Define(sym.name, mac)

	return mac, nil
}

// expandMacro binds call's unevaluated argument forms to mac's
// parameters (using the same Pattern matcher every other binding site
// uses, but against the raw forms rather than evaluated values) and
// evaluates the macro body to produce a replacement form.
func (ev *Evaluator) expandMacro(mac *Macro, callArgs []Value, _ *Env) (Value, error) {
	call := mac.Env.NewCallFrame()

	if mac.Rest == nil {
		if len(callArgs) != len(mac.Params) {
			return nil, ErrArity.With(attrStr("name", mac.Name), attrInt("expected", len(mac.Params)), attrInt("got", len(callArgs)))
		}
	} else if len(callArgs) < len(mac.Params) {
		return nil, ErrArity.With(attrStr("name", mac.Name), attrInt("min_expected", len(mac.Params)), attrInt("got", len(callArgs)))
	}

	for i, p := range mac.Params {
		if !p.Bind(callArgs[i], call) {
			return nil, ErrType.With(attrStr("reason", "macro parameter destructuring failed"), attrInt("index", i))
		}
	}

	if mac.Rest != nil {
		rest := &List{Items: append([]Value{}, callArgs[len(mac.Params):]...)}
		if !mac.Rest.Bind(rest, call) {
			return nil, ErrType.With(attrStr("reason", "macro rest parameter destructuring failed"))
		}
	}

	result, err := ev.evalBodyTail(mac.Body, call)

	for _, derr := range call.RunDefers(func(v Value, e *Env) (Value, error) { return ev.eval(v, e, false) }) {
		ev.Logger.Error("deferred form failed during macro expansion", attrStr("macro", mac.Name), attrStr("error", derr.Error()))
	}

	return result, err
}
