package core

import (
	"os"
	"sync"
)

// ParseProgram parses source text into a sequence of top-level forms.
// It is nil until package reader registers itself (reader imports
// core, so core cannot import reader directly); `load` returns ErrIO
// if called before that registration.
var ParseProgram func(source string) ([]Value, error)

// Module is a named, loaded unit of code: its own root-style frame
// (concurrent-def-safe, spec §5) plus the subset of its bindings marked
// exported. `use` binds only the exported names into the using
// environment (spec §4.1: "modules only expose what they export").
type Module struct {
	Name    string
	Env     *Env
	Exports map[string]bool
}

func (m *Module) String() string { return "#<module:" + m.Name + ">" }

// ModuleRegistry tracks loaded modules by name so `use`/`load` only
// evaluate a module's source once (spec §9: "module load is
// content-addressed and cached"), guarded for concurrent loads from
// multiple Tasks.
type ModuleRegistry struct {
	mu      sync.Mutex
	modules map[string]*Module
}

// NewModuleRegistry creates an empty registry.
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{modules: make(map[string]*Module)}
}

// Get returns a previously loaded module by name.
func (r *ModuleRegistry) Get(name string) (*Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.modules[name]

	return m, ok
}

// Put registers a loaded module, replacing any earlier entry of the
// same name (a reload explicitly requested by the caller wins).
func (r *ModuleRegistry) Put(m *Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modules[m.Name] = m
}

// evalModule implements `(module name body...)`: body is
// evaluated in a fresh root-style frame scoped to the module, `export`
// forms within body mark names as public, and the resulting Module is
// registered so subsequent `use` forms can bind its exports.
func evalModule(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) < 1 {
		return nil, ErrArity.With(attrStr("form", "module"), attrInt("got", len(args)))
	}

	sym, ok := args[0].(Symbol)
	if !ok {
		return nil, ErrInvalidValueType.With(attrStr("reason", "module requires a symbol name"))
	}

	modEnv := NewRootEnv()
	mod := &Module{Name: sym.name, Env: modEnv, Exports: make(map[string]bool)}

	for _, form := range args[1:] {
		if lst, ok := form.(*List); ok && isHead(lst, "export") {
			for _, e := range lst.Items[1:] {
				if esym, ok := e.(Symbol); ok {
					mod.Exports[esym.name] = true
				}
			}

			continue
		}

		if _, err := ev.eval(form, modEnv, false); err != nil {
			return nil, err
		}
	}

	ev.Runtime.Modules.Put(mod)

	return mod, nil
}

// evalUse implements `(use name)`, binding every exported symbol of a
// previously loaded module into env's root frame.
func evalUse(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) != 1 {
		return nil, ErrArity.With(attrStr("form", "use"), attrInt("got", len(args)))
	}

	sym, ok := args[0].(Symbol)
	if !ok {
		return nil, ErrInvalidValueType.With(attrStr("reason", "use requires a module name symbol"))
	}

	mod, ok := ev.Runtime.Modules.Get(sym.name)
	if !ok {
		return nil, ErrUnbound.With(attrStr("module", sym.name))
	}

	for name := range mod.Exports {
		v, err := mod.Env.Lookup(name)
		if err != nil {
			continue
		}

		env.Root().Define(name, v)
	}

	return mod, nil
}

// loadModule implements the `load` builtin (spec §4.1): it reads path,
// parses it with the registered reader, and evaluates it into a fresh
// module frame exactly like `(module ...)` would, but keyed and cached
// by the source's content hash rather than a programmer-chosen name
// (spec §9: "module load is content-addressed and cached"), adapted
// from the teacher's Stream.ensureParsed single-parse-per-source
// discipline in lang/stream.go.
func loadModule(ev *Evaluator, path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrIO.Wrap(err).With(attrStr("path", path))
	}

	source := string(data)

	if mod, ok := ev.Runtime.Loaded.get(source); ok {
		ev.Runtime.Modules.Put(mod)

		return mod, nil
	}

	if ParseProgram == nil {
		return nil, ErrIO.With(attrStr("reason", "no reader registered"))
	}

	forms, err := ParseProgram(source)
	if err != nil {
		return nil, err
	}

	modEnv := NewRootEnv()
	mod := &Module{Name: path, Env: modEnv, Exports: make(map[string]bool)}

	for _, form := range forms {
		if lst, ok := form.(*List); ok && isHead(lst, "export") {
			for _, e := range lst.Items[1:] {
				if esym, ok := e.(Symbol); ok {
					mod.Exports[esym.name] = true
				}
			}

			continue
		}

		if _, err := ev.eval(form, modEnv, false); err != nil {
			return nil, err
		}
	}

	ev.Runtime.Modules.Put(mod)
	ev.Runtime.Loaded.put(source, mod)

	return mod, nil
}
