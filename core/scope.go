package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Scope is a handle to a cancellable group of Tasks (spec §3, §4.6):
// `scope-go` starts Tasks against it, `cancel` sets its cancellation
// flag, and `with-scope` cancels it and awaits every enclosed Task
// before returning, giving the "child tasks do not outlive their
// enclosing scope" discipline (spec GLOSSARY: "Structured concurrency").
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
}

// NewScope creates a Scope whose context derives from parent.
func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)

	return &Scope{ctx: ctx, cancel: cancel}
}

func (s *Scope) String() string { return "#<scope>" }

// Go starts fn on a goroutine tracked by the scope's errgroup, so
// Wait blocks for it, and returns a Task the caller can independently
// await/chain (spec §4.6: "The Task handle is itself a Value").
func (s *Scope) Go(fn func(ctx context.Context) (Value, error)) *Task {
	task := newTask()

	s.group.Go(func() error {
		v, err := fn(s.ctx)
		task.finish(v, err)

		return err
	})

	return task
}

// Cancel requests cancellation; cooperative tasks observe it via
// Cancelled.
func (s *Scope) Cancel() { s.cancel() }

// Cancelled reports whether Cancel has been called (or the scope's
// context otherwise ended).
func (s *Scope) Cancelled() bool {
	select {
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}

// Context returns the scope's cancellation context, for tasks that
// need to pass it to a suspending builtin.
func (s *Scope) Context() context.Context { return s.ctx }

// Wait blocks until every Task started with Go has returned.
func (s *Scope) Wait() {
	_ = s.group.Wait()
}

// evalScopeGo implements `(scope-go scope expr)`: scope is evaluated
// (an already-constructed Scope value); expr is captured unevaluated
// and run asynchronously against env, associated with scope so
// `with-scope`/`cancel` can reach it.
func evalScopeGo(ev *Evaluator, args []Value, env *Env, _ bool) (Value, error) {
	if len(args) != 2 {
		return nil, ErrArity.With(attrStr("form", "scope-go"), attrInt("got", len(args)))
	}

	scopeVal, err := ev.eval(args[0], env, false)
	if err != nil {
		return nil, err
	}

	scope, ok := scopeVal.(*Scope)
	if !ok {
		return nil, ErrType.With(attrStr("reason", "scope-go requires a scope as its first argument"))
	}

	expr := args[1]
	task := scope.Go(func(context.Context) (Value, error) { return ev.eval(expr, env, false) })

	return task, nil
}
