package task

import (
	"context"
	"runtime/debug"
)

// Runner supplies a resource of capability C and drives execution of tasks
// that require C.
//
// Session must hand the same resource to fn for the whole call and must
// return fn's error (possibly wrapped). What happens around fn, such as
// opening and committing a transaction, belongs to the implementation.
type Runner[C Capability] interface {
	Session(ctx context.Context, fn func(ctx context.Context, res C) error) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc[C Capability] func(ctx context.Context, fn func(ctx context.Context, res C) error) error

// Session calls f.
func (f RunnerFunc[C]) Session(ctx context.Context, fn func(ctx context.Context, res C) error) error {
	return f(ctx, fn)
}

// Bind returns a runner that hands res to every session as is.
// It suits callers that already own an open session.
func Bind[C Capability](res C) Runner[C] {
	return RunnerFunc[C](func(ctx context.Context, fn func(context.Context, C) error) error {
		return fn(ctx, res)
	})
}

// Execute starts t on r and returns immediately.
//
// ctx is forwarded to the runner and to every leaf body. The returned Future
// resolves with t's value or with the first failure. A leaf that panics
// fails the session with a PanicError, so the runner sees an error and can
// roll back.
func Execute[C Capability, V any](ctx context.Context, t Task[C, V], r Runner[C]) *Future[V] {
	f := newFuture[V]()
	if r == nil {
		var zero V
		f.resolve(zero, ErrNilRunner)
		return f
	}
	go func() {
		var v V
		err := r.Session(ctx, func(ctx context.Context, res C) (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = &PanicError{Value: p, Stack: debug.Stack()}
				}
			}()
			v, err = t.exec(ctx, res)
			return err
		})
		if err != nil {
			var zero V
			f.resolve(zero, err)
			return
		}
		f.resolve(v, nil)
	}()
	return f
}

// ExecuteReadOnly runs a ReadOnly task on a ReadWrite runner.
func ExecuteReadOnly[V any](ctx context.Context, t Task[ReadOnly, V], r Runner[ReadWrite]) *Future[V] {
	return Execute(ctx, Widen(t), r)
}

// Run executes t on r and waits for the result.
func Run[C Capability, V any](ctx context.Context, t Task[C, V], r Runner[C]) (V, error) {
	return Execute(ctx, t, r).Await(ctx)
}
