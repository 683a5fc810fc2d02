package task

import (
	"context"
	"sync"
)

// Future is the asynchronous result of Execute. It resolves exactly once.
//
// Thread-safety: all methods are safe for concurrent use.
type Future[V any] struct {
	once sync.Once
	done chan struct{}
	val  V
	err  error
}

func newFuture[V any]() *Future[V] {
	return &Future[V]{done: make(chan struct{})}
}

// Resolved returns a future that already holds v and err.
func Resolved[V any](v V, err error) *Future[V] {
	f := newFuture[V]()
	f.resolve(v, err)
	return f
}

func (f *Future[V]) resolve(v V, err error) {
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
	})
}

// Done is closed once the future resolves.
func (f *Future[V]) Done() <-chan struct{} {
	return f.done
}

// Await waits for the result or for ctx to end. Returning early on ctx does
// not stop the execution behind the future.
func (f *Future[V]) Await(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Result blocks until the future resolves.
func (f *Future[V]) Result() (V, error) {
	<-f.done
	return f.val, f.err
}
