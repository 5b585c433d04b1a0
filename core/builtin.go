package core

import (
	"context"
	"fmt"
	"time"
)

// Registry is the name-addressed builtin table (spec §6/§9: "present
// them as entries in a name-addressed table with a uniform signature
// so they are indistinguishable from user lambdas"). stdlib.Register
// and similar extension points add further entries to the same table
// after NewRegistry builds the core set.
type Registry struct {
	entries map[string]*Builtin
}

// Add registers b under its own Name, overwriting any earlier entry —
// the mechanism extension packages (stdlib, config-driven host bridges)
// use to add to the table built by NewRegistry.
func (r *Registry) Add(b *Builtin) { r.entries[b.Name] = b }

// Lookup returns the builtin registered under name.
func (r *Registry) Lookup(name string) (*Builtin, bool) {
	b, ok := r.entries[name]

	return b, ok
}

// DefineAll binds every registered builtin into env's root frame, so
// ordinary symbol lookup finds them exactly like user-defined
// functions (spec §6).
func (r *Registry) DefineAll(env *Env) {
	for name, b := range r.entries {
		env.Root().Define(name, b)
	}
}

func builtin(name string, minA, maxA int, fn BuiltinFunc) *Builtin {
	return &Builtin{Name: name, MinArity: minA, MaxArity: maxA, Fn: fn}
}

// NewEmptyRegistry builds a Registry with no entries. Extension
// packages (stdlib) that register builtins not requiring a capturing
// *Evaluator use this instead of NewRegistry.
func NewEmptyRegistry() *Registry {
	return &Registry{entries: make(map[string]*Builtin)}
}

// NewRegistry builds the core language's builtin table: arithmetic,
// comparison, collection, type-predicate, error, and concurrency
// primitives (spec §4.3, §4.4, §4.6, §4.7, §4.8). ev is captured by
// closures that need to re-enter the evaluator (apply a user function
// to a collection element, evaluate an awaited Task's continuation).
func NewRegistry(ev *Evaluator) *Registry {
	r := &Registry{entries: make(map[string]*Builtin)}

	registerArith(r)
	registerCompare(r)
	registerCollections(r)
	registerPredicates(r)
	registerErrors(r)
	registerConcurrency(r, ev)
	registerStreams(r, ev)
	registerIO(r)

	return r
}

func registerArith(r *Registry) {
	for _, op := range []string{"+", "-", "*", "/", "%"} {
		op := op
		r.Add(builtin(op, 1, -1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
			if len(args) == 1 {
				if op == "-" {
					return Arith("-", Int(0), args[0])
				}

				return args[0], nil
			}

			acc := args[0]

			for _, v := range args[1:] {
				res, err := Arith(op, acc, v)
				if err != nil {
					return nil, err
				}

				acc = res
			}

			return acc, nil
		}))
	}

	r.Add(builtin("inc", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		return Arith("+", args[0], Int(1))
	}))
}

func registerCompare(r *Registry) {
	r.Add(builtin("=", 2, -1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		for i := 1; i < len(args); i++ {
			if !Equal(args[0], args[i]) {
				return Bool(false), nil
			}
		}

		return Bool(true), nil
	}))

	cmp := func(name string, ok func(int) bool) *Builtin {
		return builtin(name, 2, -1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
			for i := 0; i+1 < len(args); i++ {
				c, err := Compare(args[i], args[i+1])
				if err != nil {
					return nil, err
				}

				if !ok(c) {
					return Bool(false), nil
				}
			}

			return Bool(true), nil
		})
	}

	r.Add(cmp("<", func(c int) bool { return c < 0 }))
	r.Add(cmp("<=", func(c int) bool { return c <= 0 }))
	r.Add(cmp(">", func(c int) bool { return c > 0 }))
	r.Add(cmp(">=", func(c int) bool { return c >= 0 }))
}

func registerCollections(r *Registry) {
	r.Add(builtin("cons", 2, 2, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		items, err := seqItems(args[1])
		if err != nil {
			return nil, err
		}

		out := make([]Value, 0, len(items)+1)
		out = append(out, args[0])
		out = append(out, items...)

		return &List{Items: out}, nil
	}))

	r.Add(builtin("first", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		items, err := seqItems(args[0])
		if err != nil {
			return nil, err
		}

		if len(items) == 0 {
			return Nil{}, nil
		}

		return items[0], nil
	}))

	r.Add(builtin("rest", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		items, err := seqItems(args[0])
		if err != nil {
			return nil, err
		}

		if len(items) <= 1 {
			return &List{}, nil
		}

		return &List{Items: items[1:]}, nil
	}))

	r.Add(builtin("conj", 2, 2, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		switch t := args[0].(type) {
		case *Vector:
			out := make([]Value, len(t.Items)+1)
			copy(out, t.Items)
			out[len(t.Items)] = args[1]

			return &Vector{Items: out}, nil
		case *List:
			out := make([]Value, len(t.Items)+1)
			out[0] = args[1]
			copy(out[1:], t.Items)

			return &List{Items: out}, nil
		default:
			return nil, ErrType.With(attrStr("reason", "conj requires a Vector or List"))
		}
	}))

	r.Add(builtin("count", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		switch t := args[0].(type) {
		case *Vector:
			return Int(len(t.Items)), nil
		case *List:
			return Int(len(t.Items)), nil
		case *Map:
			return Int(t.Len()), nil
		case String:
			return Int(len([]rune(string(t)))), nil
		case Nil:
			return Int(0), nil
		default:
			return nil, ErrType.With(attrStr("reason", "count requires a collection"))
		}
	}))

	r.Add(builtin("empty?", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		switch t := args[0].(type) {
		case *Vector:
			return Bool(len(t.Items) == 0), nil
		case *List:
			return Bool(len(t.Items) == 0), nil
		case *Map:
			return Bool(t.Len() == 0), nil
		case Nil:
			return Bool(true), nil
		default:
			return nil, ErrType.With(attrStr("reason", "empty? requires a collection"))
		}
	}))

	r.Add(builtin("nth", 2, 2, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		items, err := seqItems(args[0])
		if err != nil {
			return nil, err
		}

		i, ok := args[1].(Int)
		if !ok || i < 0 || int(i) >= len(items) {
			return Nil{}, nil
		}

		return items[i], nil
	}))

	r.Add(builtin("get", 2, 2, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		m, ok := args[0].(*Map)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "get requires a Map"))
		}

		v, found := m.Get(args[1])
		if !found {
			return Nil{}, nil
		}

		return v, nil
	}))

	r.Add(builtin("assoc", 3, 3, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		m, ok := args[0].(*Map)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "assoc requires a Map"))
		}

		out := &Map{entries: make(map[MapKey]Value, m.Len()+1)}
		out.order = append(out.order, m.order...)

		for k, v := range m.entries {
			out.entries[k] = v
		}

		if err := out.Set(args[1], args[2]); err != nil {
			return nil, err
		}

		return out, nil
	}))

	r.Add(builtin("dissoc", 2, 2, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		m, ok := args[0].(*Map)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "dissoc requires a Map"))
		}

		return m.Delete(args[1]), nil
	}))

	r.Add(builtin("keys", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		m, ok := args[0].(*Map)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "keys requires a Map"))
		}

		return &Vector{Items: m.Keys()}, nil
	}))

	r.Add(builtin("vals", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		m, ok := args[0].(*Map)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "vals requires a Map"))
		}

		return &Vector{Items: m.Vals()}, nil
	}))
}

func registerPredicates(r *Registry) {
	add := func(name string, pred func(Value) bool) {
		r.Add(builtin(name, 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
			return Bool(pred(args[0])), nil
		}))
	}

	add("nil?", func(v Value) bool { _, ok := v.(Nil); return ok })
	add("bool?", func(v Value) bool { _, ok := v.(Bool); return ok })
	add("int?", func(v Value) bool { _, ok := v.(Int); return ok })
	add("float?", func(v Value) bool { _, ok := v.(Float); return ok })
	add("string?", func(v Value) bool { _, ok := v.(String); return ok })
	add("keyword?", func(v Value) bool { _, ok := v.(Keyword); return ok })
	add("symbol?", func(v Value) bool { _, ok := v.(Symbol); return ok })
	add("vector?", func(v Value) bool { _, ok := v.(*Vector); return ok })
	add("list?", func(v Value) bool { _, ok := v.(*List); return ok })
	add("map?", func(v Value) bool { _, ok := v.(*Map); return ok })
	add("fn?", func(v Value) bool {
		switch v.(type) {
		case *Function, *Builtin:
			return true
		default:
			return false
		}
	})
	add("error?", func(v Value) bool { m, ok := v.(*Map); return ok && m.IsError() })
	add("some?", func(v Value) bool { _, ok := v.(Nil); return !ok })
	add("not", func(v Value) bool { return !Truthy(v) })

	r.Add(builtin("and", 0, -1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		for _, a := range args {
			if !Truthy(a) {
				return Bool(false), nil
			}
		}

		return Bool(true), nil
	}))

	r.Add(builtin("or", 0, -1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		for _, a := range args {
			if Truthy(a) {
				return Bool(true), nil
			}
		}

		return Bool(false), nil
	}))
}

func registerErrors(r *Registry) {
	r.Add(builtin("error", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		payload := args[0]
		errMap, err := NewMap(internKeyword("error"), payload)
		if err != nil {
			return nil, err
		}

		qerr, _ := FromValue(errMap)

		return nil, qerr
	}))
}

func registerIO(r *Registry) {
	r.Add(builtin("print", 0, -1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		parts := make([]string, len(args))

		for i, a := range args {
			parts[i] = printValue(a)
		}

		fmt.Println(joinSpace(parts))

		return Nil{}, nil
	}))

	r.Add(builtin("str", 0, -1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		parts := make([]string, len(args))

		for i, a := range args {
			if s, ok := a.(String); ok {
				parts[i] = string(s)

				continue
			}

			parts[i] = a.String()
		}

		return String(joinConcat(parts)), nil
	}))
}

func joinSpace(parts []string) string {
	out := ""

	for i, p := range parts {
		if i > 0 {
			out += " "
		}

		out += p
	}

	return out
}

func joinConcat(parts []string) string {
	out := ""
	for _, p := range parts {
		out += p
	}

	return out
}

func registerConcurrency(r *Registry, ev *Evaluator) {
	r.Add(builtin("atom", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		return NewAtom(args[0]), nil
	}))

	r.Add(builtin("deref", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		a, ok := args[0].(*Atom)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "deref requires an atom"))
		}

		return a.Deref(), nil
	}))

	r.Add(builtin("reset!", 2, 2, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		a, ok := args[0].(*Atom)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "reset! requires an atom"))
		}

		return a.Reset(args[1]), nil
	}))

	r.Add(builtin("swap!", 2, -1, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		a, ok := args[0].(*Atom)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "swap! requires an atom"))
		}

		fn := args[1]
		extra := args[2:]

		return a.Swap(func(cur Value) (Value, error) {
			callArgs := make([]Value, 0, len(extra)+1)
			callArgs = append(callArgs, cur)
			callArgs = append(callArgs, extra...)

			return ev.Apply(ctx, fn, callArgs, false)
		})
	}))

	r.Add(builtin("channel", 0, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		cap := ev.Runtime.DefaultChannelCapacity

		if len(args) == 1 {
			n, ok := args[0].(Int)
			if !ok {
				return nil, ErrType.With(attrStr("reason", "channel capacity must be an int"))
			}

			cap = int(n)
		}

		return NewChannel(cap), nil
	}))

	r.Add(builtin("send", 2, 2, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		c, ok := args[0].(*Channel)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "send requires a channel"))
		}

		if err := c.Send(ctx, args[1]); err != nil {
			return nil, err
		}

		return Nil{}, nil
	}))

	r.Add(builtin("receive", 1, 2, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		c, ok := args[0].(*Channel)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "receive requires a channel"))
		}

		rctx := ctx

		if len(args) == 2 {
			ms, ok := args[1].(Int)
			if !ok {
				return nil, ErrType.With(attrStr("reason", "receive timeout must be an int (milliseconds)"))
			}

			var cancel context.CancelFunc
			rctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
			defer cancel()
		}

		return c.Receive(rctx)
	}))

	r.Add(builtin("close", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		c, ok := args[0].(*Channel)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "close requires a channel"))
		}

		c.Close()

		return Nil{}, nil
	}))

	r.Add(builtin("select", 1, -1, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		cases := make([]SelectCase, len(args))

		for i, a := range args {
			pair, ok := a.(*Vector)
			if !ok || len(pair.Items) != 2 {
				return nil, ErrInvalidValueType.With(attrStr("reason", "select arguments must be [channel handler] pairs"))
			}

			c, ok := pair.Items[0].(*Channel)
			if !ok {
				return nil, ErrType.With(attrStr("reason", "select pair's first element must be a channel"))
			}

			handler := pair.Items[1]
			cases[i] = SelectCase{Channel: c, Handle: func(v Value) (Value, error) {
				return ev.Apply(ctx, handler, []Value{v}, false)
			}}
		}

		return Select(ctx, cases)
	}))

	r.Add(builtin("scope", 0, 0, func(ctx context.Context, _ []Value, _ *Env) (Value, error) {
		return NewScope(ctx), nil
	}))

	r.Add(builtin("cancel", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		s, ok := args[0].(*Scope)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "cancel requires a scope"))
		}

		s.Cancel()

		return Nil{}, nil
	}))

	r.Add(builtin("cancelled?", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		s, ok := args[0].(*Scope)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "cancelled? requires a scope"))
		}

		return Bool(s.Cancelled()), nil
	}))

	r.Add(builtin("with-scope", 1, 1, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		fn := args[0]
		scope := NewScope(ctx)

		result, err := ev.Apply(ctx, fn, []Value{scope}, false)
		scope.Cancel()
		scope.Wait()

		return result, err
	}))

	r.Add(builtin("await", 1, 1, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		t, ok := args[0].(*Task)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "await requires a task"))
		}

		return t.Await(ctx)
	}))

	r.Add(builtin("then", 2, 2, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		t, ok := args[0].(*Task)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "then requires a task"))
		}

		fn := args[1]

		return spawn(func() (Value, error) {
			v, err := t.Await(ctx)
			if err != nil {
				return nil, err
			}

			return ev.Apply(ctx, fn, []Value{v}, false)
		}), nil
	}))

	r.Add(builtin("all", 0, -1, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		return spawn(func() (Value, error) {
			out := make([]Value, len(args))

			for i, a := range args {
				t, ok := a.(*Task)
				if !ok {
					return nil, ErrType.With(attrStr("reason", "all requires tasks"))
				}

				v, err := t.Await(ctx)
				if err != nil {
					return nil, err
				}

				out[i] = v
			}

			return &Vector{Items: out}, nil
		}), nil
	}))

	r.Add(builtin("race", 1, -1, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		type result struct {
			v   Value
			err error
		}

		ch := make(chan result, len(args))

		for _, a := range args {
			t, ok := a.(*Task)
			if !ok {
				return nil, ErrType.With(attrStr("reason", "race requires tasks"))
			}

			go func(t *Task) {
				v, err := t.Await(ctx)
				ch <- result{v, err}
			}(t)
		}

		res := <-ch

		return res.v, res.err
	}))

	r.Add(builtin("pmap", 2, 2, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		return parallelMap(ctx, ev, args[0], args[1], ev.Runtime.Workers)
	}))

	r.Add(builtin("pfilter", 2, 2, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		return parallelFilter(ctx, ev, args[0], args[1], ev.Runtime.Workers)
	}))

	r.Add(builtin("preduce", 3, 3, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		return parallelReduce(ctx, ev, args[0], args[1], args[2], ev.Runtime.Workers)
	}))
}

func registerStreams(r *Registry, ev *Evaluator) {
	r.Add(builtin("stream-of", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		items, err := seqItems(args[0])
		if err != nil {
			return nil, err
		}

		return StreamOfSlice(items), nil
	}))

	r.Add(builtin("range", 2, 2, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		lo, ok1 := args[0].(Int)
		hi, ok2 := args[1].(Int)

		if !ok1 || !ok2 {
			return nil, ErrType.With(attrStr("reason", "range requires integer bounds"))
		}

		return RangeStream(lo, hi), nil
	}))

	r.Add(builtin("iterate", 2, 2, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		return IterateStream(ctx, ev, args[0], args[1]), nil
	}))

	r.Add(builtin("repeat", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		return RepeatStream(args[0]), nil
	}))

	r.Add(builtin("cycle", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		items, err := seqItems(args[0])
		if err != nil {
			return nil, err
		}

		return CycleStream(items)
	}))

	r.Add(builtin("map", 2, 2, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		if s, ok := args[1].(*Stream); ok {
			return MapStream(ctx, ev, args[0], s)
		}

		return eagerMap(ctx, ev, args[0], args[1])
	}))

	r.Add(builtin("filter", 2, 2, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		if s, ok := args[1].(*Stream); ok {
			return FilterStream(ctx, ev, args[0], s)
		}

		return eagerFilter(ctx, ev, args[0], args[1])
	}))

	r.Add(builtin("take", 2, 2, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		n, ok := args[0].(Int)
		s, ok2 := args[1].(*Stream)

		if !ok || !ok2 {
			return nil, ErrType.With(attrStr("reason", "take requires an int and a stream"))
		}

		return TakeStream(n, s)
	}))

	r.Add(builtin("drop", 2, 2, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		n, ok := args[0].(Int)
		s, ok2 := args[1].(*Stream)

		if !ok || !ok2 {
			return nil, ErrType.With(attrStr("reason", "drop requires an int and a stream"))
		}

		return DropStream(n, s)
	}))

	r.Add(builtin("take-while", 2, 2, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		s, ok := args[1].(*Stream)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "take-while requires a stream"))
		}

		return TakeWhileStream(ctx, ev, args[0], s)
	}))

	r.Add(builtin("drop-while", 2, 2, func(ctx context.Context, args []Value, _ *Env) (Value, error) {
		s, ok := args[1].(*Stream)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "drop-while requires a stream"))
		}

		return DropWhileStream(ctx, ev, args[0], s)
	}))

	r.Add(builtin("realize", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		s, ok := args[0].(*Stream)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "realize requires a stream"))
		}

		return RealizeStream(s)
	}))

	r.Add(builtin("file-lines", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		path, ok := args[0].(String)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "file-lines requires a path string"))
		}

		return FileLinesStream(string(path))
	}))

	r.Add(builtin("file-chunks", 2, 2, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		path, ok := args[0].(String)
		size, ok2 := args[1].(Int)

		if !ok || !ok2 {
			return nil, ErrType.With(attrStr("reason", "file-chunks requires a path string and a size int"))
		}

		return FileChunksStream(string(path), int(size))
	}))

	r.Add(builtin("load", 1, 1, func(_ context.Context, args []Value, _ *Env) (Value, error) {
		path, ok := args[0].(String)
		if !ok {
			return nil, ErrType.With(attrStr("reason", "load requires a path string"))
		}

		return loadModule(ev, string(path))
	}))
}
