package core

import "runtime"

// Runtime holds the process-wide concurrency and module state an
// Evaluator shares across every Task it spawns (spec §5: "the three
// layer concurrency runtime"). Tasks created by go-run/scope-go all
// reference the same Runtime as their parent, so scheduling and module
// lookups stay consistent regardless of which goroutine created them.
type Runtime struct {
	Modules *ModuleRegistry
	Loaded  *loadCache

	// Workers bounds the pmap/pfilter/preduce partition count; it
	// mirrors available hardware parallelism (spec §5: "tasks run in
	// parallel on a worker pool sized to available hardware
	// parallelism"), overridable via config for tests.
	Workers int

	// DefaultChannelCapacity is the capacity `channel` uses when the
	// surface form omits one, making a channel unbounded in practice
	// (spec §4.6 distinguishes bounded-from-unbounded only by capacity).
	DefaultChannelCapacity int
}

// NewRuntime creates a Runtime sized to runtime.GOMAXPROCS(0).
func NewRuntime() *Runtime {
	return &Runtime{
		Modules:                NewModuleRegistry(),
		Loaded:                 newLoadCache(),
		Workers:                runtime.GOMAXPROCS(0),
		DefaultChannelCapacity: 0,
	}
}
