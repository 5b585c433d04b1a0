package core

import "sync"

// Env is a lexically nested binding frame (spec §3/§9). Lisp-1: a
// single namespace holds both functions and variables. Frames below the
// root are never mutated after their bindings are first set (closures
// capture the frame by reference, not by copy), so they need no lock;
// only the shared root frame, which concurrent `def`/`defn` calls from
// multiple tasks may mutate, is guarded.
type Env struct {
	parent *Env
	vars   map[string]Value

	// root, when non-nil, marks this frame as the process-wide root and
	// guards vars with a reader/writer lock for concurrent def/lookup
	// (spec §5: "concurrent def from multiple Tasks is consistent").
	root *sync.RWMutex

	// defers, when non-nil, marks this frame as a call frame (the frame
	// created when entering a function body, or the top-level script
	// frame) and owns the LIFO stack `defer` registers into (spec §4.1,
	// §9).
	defers *[]Value
}

// NewCallFrame creates a child of e that also acts as a `defer` scope:
// `defer` forms evaluated anywhere within it (including inside nested
// `let`/`if` child frames) register into this frame's stack, run in
// LIFO order when RunDefers is called.
func (e *Env) NewCallFrame() *Env {
	child := e.Child()
	stack := []Value{}
	child.defers = &stack

	return child
}

// PushDefer registers v for execution when the nearest enclosing call
// frame (see NewCallFrame) returns.
func (e *Env) PushDefer(v Value) {
	for f := e; f != nil; f = f.parent {
		if f.defers != nil {
			*f.defers = append(*f.defers, v)

			return
		}
	}
}

// RunDefers evaluates e's own deferred forms (if e is a call frame) in
// LIFO order using eval, collecting rather than stopping on error so a
// failing defer does not suppress the ones registered before it (spec
// §7: "do not suppress the primary error").
func (e *Env) RunDefers(eval func(Value, *Env) (Value, error)) []error {
	if e.defers == nil {
		return nil
	}

	forms := *e.defers
	*e.defers = nil

	var errs []error

	for i := len(forms) - 1; i >= 0; i-- {
		if _, err := eval(forms[i], e); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// NewRootEnv creates a fresh, empty root environment.
func NewRootEnv() *Env {
	return &Env{vars: make(map[string]Value), root: &sync.RWMutex{}}
}

// Child creates a new frame whose parent is e. Children of a root frame
// are themselves non-root, immutable-after-construction frames.
func (e *Env) Child() *Env {
	return &Env{parent: e, vars: make(map[string]Value)}
}

// Lookup resolves name by walking from this frame to the root. It
// returns ErrUnbound if no frame defines name.
func (e *Env) Lookup(name string) (Value, error) {
	for f := e; f != nil; f = f.parent {
		if f.root != nil {
			f.root.RLock()
			v, ok := f.vars[name]
			f.root.RUnlock()

			if ok {
				return v, nil
			}

			continue
		}

		if v, ok := f.vars[name]; ok {
			return v, nil
		}
	}

	return nil, ErrUnbound.With(attrStr("name", name))
}

// Define binds name in this frame. When called on the root frame it is
// safe for concurrent use by multiple tasks (last-writer-wins, spec
// §5); non-root frames are only ever written by the single goroutine
// constructing them (parameter/let binding), matching the invariant
// that "lexical environments below the root are not mutated after
// creation".
func (e *Env) Define(name string, v Value) {
	if e.root != nil {
		e.root.Lock()
		e.vars[name] = v
		e.root.Unlock()

		return
	}

	e.vars[name] = v
}

// Set rebinds name in the nearest enclosing frame that already defines
// it, or defines it in this frame if no enclosing frame does.
func (e *Env) Set(name string, v Value) {
	for f := e; f != nil; f = f.parent {
		if f.root != nil {
			f.root.Lock()
			if _, ok := f.vars[name]; ok {
				f.vars[name] = v
				f.root.Unlock()

				return
			}
			f.root.Unlock()

			continue
		}

		if _, ok := f.vars[name]; ok {
			f.vars[name] = v

			return
		}
	}

	e.Define(name, v)
}

// IsRoot reports whether e is a process-wide root frame.
func (e *Env) IsRoot() bool { return e.root != nil }

// Names returns the names bound directly in e's own frame, not walking
// to ancestors. Root frames hold every builtin and top-level def, so
// callers that want the full set of completable identifiers should
// call this on Root(). Used by REPL completion/introspection.
func (e *Env) Names() []string {
	if e.root != nil {
		e.root.RLock()
		defer e.root.RUnlock()
	}

	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}

	return names
}

// Root walks up to and returns the root frame of e's chain.
func (e *Env) Root() *Env {
	f := e
	for f.parent != nil {
		f = f.parent
	}

	return f
}
