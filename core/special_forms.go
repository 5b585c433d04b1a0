package core

// specialFormFn implements one special form. args are the unevaluated
// forms following the form's head symbol; tail indicates whether the
// special form itself occupies tail position, which matters for `if`,
// `do`, `when`, `let`, `while`, `match` and any other form that decides
// which sub-form, if any, inherits tail position.
type specialFormFn func(ev *Evaluator, args []Value, env *Env, tail bool) (Value, error)

// specialForms is the fixed table of head-symbol names the evaluator
// recognizes before consulting macros or attempting application (spec
// §4.1/§9): "check a fixed table of special-form names first".
var specialForms = map[string]specialFormFn{
	"def":         evalDef,
	"defn":        evalDefn,
	"defn-":       evalDefnPrivate,
	"fn":          evalFn,
	"let":         evalLet,
	"do":          evalDo,
	"if":          evalIf,
	"when":        evalWhen,
	"while":       evalWhile,
	"until":       evalUntil,
	"while-some":  evalWhileSome,
	"until-error": evalUntilError,
	"quote":       evalQuote,
	"quasi":       evalQuasiForm,
	"match":       evalMatchForm,
	"loop":        evalLoop,
	"recur":       evalRecur,
	"mac":         evalMac,
	"try":         evalTry,
	"defer":       evalDefer,
	"module":      evalModule,
	"use":         evalUse,
	"go-run":      evalGoRun,
	"scope-go":    evalScopeGo,
}

func evalDef(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) != 2 {
		return nil, ErrArity.With(attrStr("form", "def"), attrInt("got", len(args)))
	}

	sym, ok := args[0].(Symbol)
	if !ok {
		return nil, ErrInvalidValueType.With(attrStr("reason", "def requires a symbol name"))
	}

	v, err := ev.eval(args[1], env, false)
	if err != nil {
		return nil, err
	}

	env.Root().Define(sym.name, v)

	return v, nil
}

func evalFn(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) < 1 {
		return nil, ErrArity.With(attrStr("form", "fn"), attrInt("got", len(args)))
	}

	params, rest, err := compileParamList(args[0])
	if err != nil {
		return nil, err
	}

	return &Function{Params: params, Rest: rest, Body: args[1:], Env: env}, nil
}

func evalDefn(ev *Evaluator, args []Value, env *Env, tail bool) (Value, error) {
	return defnImpl(ev, args, env, false)
}

func evalDefnPrivate(ev *Evaluator, args []Value, env *Env, tail bool) (Value, error) {
	return defnImpl(ev, args, env, true)
}

func defnImpl(ev *Evaluator, args []Value, env *Env, private bool) (Value, error) {
	if len(args) < 2 {
		return nil, ErrArity.With(attrStr("form", "defn"), attrInt("got", len(args)))
	}

	sym, ok := args[0].(Symbol)
	if !ok {
		return nil, ErrInvalidValueType.With(attrStr("reason", "defn requires a symbol name"))
	}

	params, rest, err := compileParamList(args[1])
	if err != nil {
		return nil, err
	}

	fn := &Function{Name: sym.name, Params: params, Rest: rest, Body: args[2:], Env: env, Private: private}
	env.Root().Define(sym.name, fn)

	return fn, nil
}

// compileParamList compiles a `fn`/`defn` parameter vector, recognising
// `&` as the variadic-rest marker (the same convention vector patterns
// use in match.go, unified per spec §4.2's closing note that binding
// forms share one matcher).
func compileParamList(form Value) ([]Pattern, Pattern, error) {
	vec, ok := form.(*Vector)
	if !ok {
		return nil, nil, ErrInvalidValueType.With(attrStr("reason", "parameter list must be a vector"))
	}

	var params []Pattern

	for i := 0; i < len(vec.Items); i++ {
		if sym, ok := vec.Items[i].(Symbol); ok && sym.name == "&" {
			if i+1 >= len(vec.Items) {
				return nil, nil, ErrInvalidValueType.With(attrStr("reason", "& must be followed by a rest parameter"))
			}

			rest, err := CompilePattern(vec.Items[i+1])
			if err != nil {
				return nil, nil, err
			}

			return params, rest, nil
		}

		p, err := CompilePattern(vec.Items[i])
		if err != nil {
			return nil, nil, err
		}

		params = append(params, p)
	}

	return params, nil, nil
}

func evalLet(ev *Evaluator, args []Value, env *Env, tail bool) (Value, error) {
	if len(args) < 1 {
		return nil, ErrArity.With(attrStr("form", "let"), attrInt("got", len(args)))
	}

	bindings, ok := args[0].(*Vector)
	if !ok || len(bindings.Items)%2 != 0 {
		return nil, ErrInvalidValueType.With(attrStr("reason", "let bindings must be a vector of pattern/value pairs"))
	}

	child := env.Child()

	for i := 0; i < len(bindings.Items); i += 2 {
		pat, err := CompilePattern(bindings.Items[i])
		if err != nil {
			return nil, err
		}

		v, err := ev.eval(bindings.Items[i+1], child, false)
		if err != nil {
			return nil, err
		}

		if !pat.Bind(v, child) {
			return nil, ErrType.With(attrStr("reason", "let pattern failed to bind"))
		}
	}

	return ev.evalBodyTailIn(args[1:], child, tail)
}

// evalBodyTailIn evaluates body in env, the last form inheriting tail
// only when the enclosing form itself was in tail position.
func (ev *Evaluator) evalBodyTailIn(body []Value, env *Env, tail bool) (Value, error) {
	if len(body) == 0 {
		return Nil{}, nil
	}

	for _, form := range body[:len(body)-1] {
		if _, err := ev.eval(form, env, false); err != nil {
			return nil, err
		}
	}

	return ev.eval(body[len(body)-1], env, tail)
}

func evalDo(ev *Evaluator, args []Value, env *Env, tail bool) (Value, error) {
	return ev.evalBodyTailIn(args, env, tail)
}

func evalIf(ev *Evaluator, args []Value, env *Env, tail bool) (Value, error) {
	if len(args) != 3 {
		return nil, ErrArity.With(attrStr("form", "if"), attrInt("got", len(args)))
	}

	cond, err := ev.eval(args[0], env, false)
	if err != nil {
		return nil, err
	}

	if Truthy(cond) {
		return ev.eval(args[1], env, tail)
	}

	return ev.eval(args[2], env, tail)
}

func evalWhen(ev *Evaluator, args []Value, env *Env, tail bool) (Value, error) {
	if len(args) < 1 {
		return nil, ErrArity.With(attrStr("form", "when"), attrInt("got", len(args)))
	}

	cond, err := ev.eval(args[0], env, false)
	if err != nil {
		return nil, err
	}

	if !Truthy(cond) {
		return Nil{}, nil
	}

	return ev.evalBodyTailIn(args[1:], env, tail)
}

func evalWhile(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) < 1 {
		return nil, ErrArity.With(attrStr("form", "while"), attrInt("got", len(args)))
	}

	var result Value = Nil{}

	for {
		cond, err := ev.eval(args[0], env, false)
		if err != nil {
			return nil, err
		}

		if !Truthy(cond) {
			return result, nil
		}

		child := env.Child()

		result, err = ev.evalBodyTailIn(args[1:], child, false)
		if err != nil {
			return nil, err
		}
	}
}

func evalUntil(ev *Evaluator, args []Value, env *Env, tail bool) (Value, error) {
	if len(args) < 1 {
		return nil, ErrArity.With(attrStr("form", "until"), attrInt("got", len(args)))
	}

	var result Value = Nil{}

	for {
		cond, err := ev.eval(args[0], env, false)
		if err != nil {
			return nil, err
		}

		if Truthy(cond) {
			return result, nil
		}

		child := env.Child()

		result, err = ev.evalBodyTailIn(args[1:], child, false)
		if err != nil {
			return nil, err
		}
	}
}

// evalWhileSome implements `while-some [x expr] body...` (spec §4.1):
// expr is re-evaluated every iteration; a Nil result stops the loop
// (yielding the previous iteration's result), otherwise x is bound to
// it for body.
func evalWhileSome(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) < 1 {
		return nil, ErrArity.With(attrStr("form", "while-some"), attrInt("got", len(args)))
	}

	binding, ok := args[0].(*Vector)
	if !ok || len(binding.Items) != 2 {
		return nil, ErrInvalidValueType.With(attrStr("reason", "while-some binding must be a [x expr] vector"))
	}

	pat, err := CompilePattern(binding.Items[0])
	if err != nil {
		return nil, err
	}

	expr := binding.Items[1]

	var result Value = Nil{}

	for {
		v, err := ev.eval(expr, env, false)
		if err != nil {
			return nil, err
		}

		if _, isNil := v.(Nil); isNil {
			return result, nil
		}

		child := env.Child()
		if !pat.Bind(v, child) {
			return nil, ErrType.With(attrStr("reason", "while-some pattern failed to bind"))
		}

		result, err = ev.evalBodyTailIn(args[1:], child, false)
		if err != nil {
			return nil, err
		}
	}
}

// evalUntilError implements `until-error [x expr] body...` (spec
// §4.1): expr is re-evaluated every iteration; once it yields an
// error-shaped map (*Map.IsError), the loop stops and that map becomes
// the loop's result, otherwise x is bound to it for body.
func evalUntilError(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) < 1 {
		return nil, ErrArity.With(attrStr("form", "until-error"), attrInt("got", len(args)))
	}

	binding, ok := args[0].(*Vector)
	if !ok || len(binding.Items) != 2 {
		return nil, ErrInvalidValueType.With(attrStr("reason", "until-error binding must be a [x expr] vector"))
	}

	pat, err := CompilePattern(binding.Items[0])
	if err != nil {
		return nil, err
	}

	expr := binding.Items[1]

	var result Value = Nil{}

	for {
		v, err := ev.eval(expr, env, false)
		if err != nil {
			return nil, err
		}

		if m, isMap := v.(*Map); isMap && m.IsError() {
			return m, nil
		}

		child := env.Child()
		if !pat.Bind(v, child) {
			return nil, ErrType.With(attrStr("reason", "until-error pattern failed to bind"))
		}

		result, err = ev.evalBodyTailIn(args[1:], child, false)
		if err != nil {
			return nil, err
		}
	}
}

func evalQuote(_ *Evaluator, args []Value, _ *Env, _ bool) (Value, error) {
	if len(args) != 1 {
		return nil, ErrArity.With(attrStr("form", "quote"), attrInt("got", len(args)))
	}

	return args[0], nil
}

func evalQuasiForm(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) != 1 {
		return nil, ErrArity.With(attrStr("form", "quasi"), attrInt("got", len(args)))
	}

	return evalQuasi(args[0], env, func(v Value, e *Env) (Value, error) { return ev.eval(v, e, false) })
}

// evalMatchForm parses `(match scrutinee pattern -> body [when guard]
// pattern -> body ... )` clauses — `->`/`when` simply read as ordinary
// symbols in a flat list, no special reader grammar required — and
// delegates to Match (match.go).
func evalMatchForm(ev *Evaluator, args []Value, env *Env, tail bool) (Value, error) {
	if len(args) < 1 {
		return nil, ErrArity.With(attrStr("form", "match"), attrInt("got", len(args)))
	}

	v, err := ev.eval(args[0], env, false)
	if err != nil {
		return nil, err
	}

	clauses, err := parseMatchClauses(args[1:])
	if err != nil {
		return nil, err
	}

	return Match(v, clauses, env, func(form Value, e *Env) (Value, error) { return ev.eval(form, e, tail) })
}

// parseMatchClauses reads flat `pattern-forms... -> body [when guard]`
// clauses (arrow is the symbol `->`, guard keyword is the symbol
// `when`). The pattern-forms run is itself read as the spec's infix
// or-pattern (`p1 | p2`) and trailing `:as name` surface: `|` between
// pattern forms joins alternatives into an or-pattern, and a trailing
// `:as name` pair wraps whatever precedes it in an as-pattern. This is
// a post-read fold over the already-parsed Value forms rather than a
// reader-level grammar rule, so `reader` stays a plain s-expression
// parser (spec §4.2/§9: a single pattern representation shared by
// every binding site).
func parseMatchClauses(forms []Value) ([]MatchClause, error) {
	var clauses []MatchClause

	i := 0
	for i < len(forms) {
		start := i

		for i < len(forms) {
			if sym, ok := forms[i].(Symbol); ok && sym.name == "->" {
				break
			}

			i++
		}

		if i >= len(forms) {
			return nil, ErrInvalidValueType.With(attrStr("reason", "match clause missing ->"))
		}

		pat, err := buildClausePattern(forms[start:i])
		if err != nil {
			return nil, err
		}

		i++ // consume ->

		if i >= len(forms) {
			return nil, ErrInvalidValueType.With(attrStr("reason", "match clause missing body"))
		}

		clause := MatchClause{Pattern: pat, Body: forms[i]}
		i++

		if i < len(forms) {
			if kw, ok := forms[i].(Symbol); ok && kw.name == "when" {
				if i+1 >= len(forms) {
					return nil, ErrInvalidValueType.With(attrStr("reason", "when guard missing expression"))
				}

				clause.Guard = forms[i+1]
				i += 2
			}
		}

		clauses = append(clauses, clause)
	}

	return clauses, nil
}

// buildClausePattern folds a run of pattern forms — one or more
// `|`-separated alternatives, each optionally suffixed with `:as name`
// — into a single Pattern.
func buildClausePattern(forms []Value) (Pattern, error) {
	if len(forms) == 0 {
		return nil, ErrInvalidValueType.With(attrStr("reason", "match clause missing a pattern"))
	}

	var groups [][]Value

	start := 0

	for idx, f := range forms {
		if sym, ok := f.(Symbol); ok && sym.name == "|" {
			groups = append(groups, forms[start:idx])
			start = idx + 1
		}
	}

	groups = append(groups, forms[start:])

	alts := make([]Pattern, 0, len(groups))
	asName := ""

	for _, g := range groups {
		pat, name, err := compilePatternGroup(g)
		if err != nil {
			return nil, err
		}

		if name != "" {
			asName = name
		}

		alts = append(alts, pat)
	}

	var result Pattern
	if len(alts) == 1 {
		result = alts[0]
	} else {
		result = orPattern{alts: alts}
	}

	if asName != "" {
		result = asPattern{inner: result, name: asName}
	}

	return result, nil
}

// compilePatternGroup compiles one or-pattern alternative, recognising
// a trailing `:as name` pair (`:as` reads as an ordinary Keyword, same
// token map patterns use).
func compilePatternGroup(forms []Value) (Pattern, string, error) {
	if len(forms) >= 3 {
		if kw, ok := forms[len(forms)-2].(Keyword); ok && kw.Name() == "as" {
			if sym, ok := forms[len(forms)-1].(Symbol); ok {
				pat, err := compileSingle(forms[:len(forms)-2])
				if err != nil {
					return nil, "", err
				}

				return pat, sym.name, nil
			}
		}
	}

	pat, err := compileSingle(forms)

	return pat, "", err
}

func compileSingle(forms []Value) (Pattern, error) {
	if len(forms) != 1 {
		return nil, ErrInvalidValueType.With(attrStr("reason", "malformed pattern in match clause"))
	}

	return CompilePattern(forms[0])
}

func evalDefer(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) != 1 {
		return nil, ErrArity.With(attrStr("form", "defer"), attrInt("got", len(args)))
	}

	env.PushDefer(args[0])

	return Nil{}, nil
}
