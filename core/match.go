package core

// Pattern is a compiled destructuring/match pattern (spec §4.2). It is
// shared by `match`, `let`/`fn`/`defn` parameter binding, and `loop`
// re-binding, matching the single matcher implementation spec §4.2's
// last paragraph requires.
type Pattern interface {
	// Bind attempts to match v, defining any bindings the pattern
	// introduces directly in env. It reports whether the match
	// succeeded; a failed match leaves env unmodified by convention
	// (callers discard env on failure) but is not required to undo
	// partial bindings since failing bindings are never observed.
	Bind(v Value, env *Env) bool
}

// CompilePattern compiles a pattern form (unevaluated Value tree) into
// a Pattern. Surface conventions, chosen by the reader (see package
// reader) to keep this a plain Lisp-1 form tree:
//
//	_                   wildcard, matches anything, binds nothing
//	sym                 binds the scrutinee to sym
//	123 / "s" / :kw / true / nil    literal, matches by Equal
//	[p1 p2 ... & rest]  vector pattern, rest captures the tail as a List
//	{:k1 p1 :as whole}  map pattern; :as binds the whole matched value
//	(or p1 p2 ...)       or-pattern: first alternative that matches
//	(as pattern name)    binds the whole matched value to name, in
//	                     addition to whatever pattern itself binds
func CompilePattern(form Value) (Pattern, error) {
	switch f := form.(type) {
	case Symbol:
		if f.name == "_" {
			return wildcardPattern{}, nil
		}

		return symbolPattern{name: f.name}, nil

	case *Vector:
		return compileVectorPattern(f.Items)

	case *Map:
		return compileMapPattern(f)

	case *List:
		return compileListPattern(f)

	default:
		return literalPattern{want: form}, nil
	}
}

type wildcardPattern struct{}

func (wildcardPattern) Bind(Value, *Env) bool { return true }

type symbolPattern struct{ name string }

func (p symbolPattern) Bind(v Value, env *Env) bool {
	env.Define(p.name, v)

	return true
}

type literalPattern struct{ want Value }

func (p literalPattern) Bind(v Value, _ *Env) bool { return Equal(p.want, v) }

type vectorPattern struct {
	elems []Pattern
	rest  Pattern // nil if not variadic
}

func compileVectorPattern(items []Value) (Pattern, error) {
	vp := vectorPattern{}

	for i := 0; i < len(items); i++ {
		if sym, ok := items[i].(Symbol); ok && sym.name == "&" {
			if i+1 >= len(items) {
				return nil, ErrInvalidValueType.With(attrStr("reason", "& must be followed by a rest pattern"))
			}

			rest, err := CompilePattern(items[i+1])
			if err != nil {
				return nil, err
			}

			vp.rest = rest

			break
		}

		p, err := CompilePattern(items[i])
		if err != nil {
			return nil, err
		}

		vp.elems = append(vp.elems, p)
	}

	return vp, nil
}

func (p vectorPattern) Bind(v Value, env *Env) bool {
	var items []Value

	switch t := v.(type) {
	case *Vector:
		items = t.Items
	case *List:
		items = t.Items
	default:
		return false
	}

	if p.rest == nil {
		if len(items) != len(p.elems) {
			return false
		}
	} else if len(items) < len(p.elems) {
		return false
	}

	for i, elem := range p.elems {
		if !elem.Bind(items[i], env) {
			return false
		}
	}

	if p.rest != nil {
		return p.rest.Bind(&List{Items: items[len(p.elems):]}, env)
	}

	return true
}

type mapPattern struct {
	keys []MapKey
	vals []Pattern
	as   string // empty if no :as
}

func compileMapPattern(form *Map) (Pattern, error) {
	mp := mapPattern{}

	for _, k := range form.Keys() {
		kw, isKw := k.(Keyword)
		if isKw && kw.name == "as" {
			val, _ := form.Get(k)
			sym, ok := val.(Symbol)
			if !ok {
				return nil, ErrInvalidValueType.With(attrStr("reason", ":as must bind a symbol"))
			}

			mp.as = sym.name

			continue
		}

		mk, err := NewMapKey(k)
		if err != nil {
			return nil, err
		}

		val, _ := form.Get(k)

		sub, err := CompilePattern(val)
		if err != nil {
			return nil, err
		}

		mp.keys = append(mp.keys, mk)
		mp.vals = append(mp.vals, sub)
	}

	return mp, nil
}

func (p mapPattern) Bind(v Value, env *Env) bool {
	m, ok := v.(*Map)
	if !ok {
		return false
	}

	for i, k := range p.keys {
		val, present := m.entries[k]
		if !present {
			return false
		}

		if !p.vals[i].Bind(val, env) {
			return false
		}
	}

	if p.as != "" {
		env.Define(p.as, v)
	}

	return true
}

type orPattern struct{ alts []Pattern }

func (p orPattern) Bind(v Value, env *Env) bool {
	for _, alt := range p.alts {
		if alt.Bind(v, env) {
			return true
		}
	}

	return false
}

type asPattern struct {
	inner Pattern
	name  string
}

func (p asPattern) Bind(v Value, env *Env) bool {
	if !p.inner.Bind(v, env) {
		return false
	}

	env.Define(p.name, v)

	return true
}

func compileListPattern(form *List) (Pattern, error) {
	if len(form.Items) == 0 {
		return literalPattern{want: form}, nil
	}

	head, ok := form.Items[0].(Symbol)
	if !ok {
		return literalPattern{want: form}, nil
	}

	switch head.name {
	case "or":
		alts := make([]Pattern, 0, len(form.Items)-1)

		for _, alt := range form.Items[1:] {
			p, err := CompilePattern(alt)
			if err != nil {
				return nil, err
			}

			alts = append(alts, p)
		}

		return orPattern{alts: alts}, nil

	case "as":
		if len(form.Items) != 3 {
			return nil, ErrInvalidValueType.With(attrStr("reason", "(as pattern name) takes exactly 2 arguments"))
		}

		inner, err := CompilePattern(form.Items[1])
		if err != nil {
			return nil, err
		}

		name, ok := form.Items[2].(Symbol)
		if !ok {
			return nil, ErrInvalidValueType.With(attrStr("reason", ":as name must be a symbol"))
		}

		return asPattern{inner: inner, name: name.name}, nil

	default:
		return literalPattern{want: form}, nil
	}
}

// MatchClause is one `pattern -> expr [when guard]` arm of a `match`
// expression.
type MatchClause struct {
	Pattern Pattern
	Guard   Value // nil if no guard
	Body    Value
}

// Match evaluates clauses in order against v, using eval to run guards
// and the winning body. It returns ErrNoMatch if every clause fails,
// per spec §4.2.
func Match(v Value, clauses []MatchClause, env *Env, eval func(Value, *Env) (Value, error)) (Value, error) {
	for _, clause := range clauses {
		child := env.Child()

		if !clause.Pattern.Bind(v, child) {
			continue
		}

		if clause.Guard != nil {
			ok, err := eval(clause.Guard, child)
			if err != nil {
				return nil, err
			}

			if !Truthy(ok) {
				continue
			}
		}

		return eval(clause.Body, child)
	}

	return nil, ErrNoMatch
}
