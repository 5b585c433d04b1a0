package core

import "context"

// Task is a handle to an asynchronously computed Value (spec §3, §4.6):
// it carries either a result or an error, retrievable any number of
// times once the underlying goroutine completes.
type Task struct {
	done   chan struct{}
	result Value
	err    error
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

func (t *Task) String() string { return "#<task>" }

func (t *Task) finish(v Value, err error) {
	t.result = v
	t.err = err
	close(t.done)
}

// Await blocks until t completes or ctx is done, whichever comes
// first.
func (t *Task) Await(ctx context.Context) (Value, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, ErrCancelled
	}
}

// Done reports whether t has already completed, without blocking.
func (t *Task) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// spawn runs fn on its own goroutine (the worker pool is the Go
// runtime's scheduler itself, sized implicitly by GOMAXPROCS; spec §5's
// "worker pool sized to available hardware parallelism" maps directly
// onto ordinary goroutine scheduling) and returns a Task tracking its
// completion.
func spawn(fn func() (Value, error)) *Task {
	t := newTask()

	go func() {
		v, err := fn()
		t.finish(v, err)
	}()

	return t
}

// evalGoRun implements `go-run expr` (spec §4.6): expr's evaluation
// does not happen in the caller; it is captured as a thunk and run on
// a new goroutine against env itself (not a copy), so the calling task continues
// immediately.
func evalGoRun(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) != 1 {
		return nil, ErrArity.With(attrStr("form", "go-run"), attrInt("got", len(args)))
	}

	expr := args[0]
	task := spawn(func() (Value, error) { return ev.eval(expr, env, false) })

	return task, nil
}
