package core

// evalQuasi implements the `quasi`/`unquote`/`splice` trio (spec §4.1,
// §9): template is walked as data; `(unquote e)` substitutes the
// evaluated e; `(splice e)` (only meaningful as an element of a List or
// Vector) evaluates e, expects a List or Vector, and splices its
// elements in place; everything else is copied through unevaluated,
// recursing into nested Lists/Vectors so nested special-form templates
// (e.g. a `quasi` inside a `let` template) still see their own
// unquotes resolved at this same pass.
func evalQuasi(template Value, env *Env, eval func(Value, *Env) (Value, error)) (Value, error) {
	switch t := template.(type) {
	case *List:
		if isHead(t, "unquote") {
			if len(t.Items) != 2 {
				return nil, ErrInvalidValueType.With(attrStr("reason", "unquote takes exactly one form"))
			}

			return eval(t.Items[1], env)
		}

		items, err := quasiSeq(t.Items, env, eval)
		if err != nil {
			return nil, err
		}

		return &List{Items: items}, nil

	case *Vector:
		items, err := quasiSeq(t.Items, env, eval)
		if err != nil {
			return nil, err
		}

		return &Vector{Items: items}, nil

	default:
		return template, nil
	}
}

func quasiSeq(items []Value, env *Env, eval func(Value, *Env) (Value, error)) ([]Value, error) {
	out := make([]Value, 0, len(items))

	for _, item := range items {
		if lst, ok := item.(*List); ok && isHead(lst, "splice") {
			if len(lst.Items) != 2 {
				return nil, ErrInvalidValueType.With(attrStr("reason", "splice takes exactly one form"))
			}

			spliced, err := eval(lst.Items[1], env)
			if err != nil {
				return nil, err
			}

			switch s := spliced.(type) {
			case *List:
				out = append(out, s.Items...)
			case *Vector:
				out = append(out, s.Items...)
			default:
				return nil, ErrType.With(attrStr("reason", "splice requires a List or Vector"))
			}

			continue
		}

		expanded, err := evalQuasi(item, env, eval)
		if err != nil {
			return nil, err
		}

		out = append(out, expanded)
	}

	return out, nil
}

func isHead(l *List, name string) bool {
	if len(l.Items) == 0 {
		return false
	}

	sym, ok := l.Items[0].(Symbol)

	return ok && sym.name == name
}
