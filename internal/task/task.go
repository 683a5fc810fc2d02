package task

import (
	"context"
	"runtime/debug"
)

// Task is a deferred unit of work that requires a resource of capability C
// and produces a V.
//
// Tasks are immutable values. Building one performs no I/O, and the same Task
// may be executed any number of times against different resources.
// The zero Task fails with ErrZeroTask when executed.
type Task[C Capability, V any] struct {
	run func(ctx context.Context, res C) (V, error)
}

// Pair holds the results of two sequenced tasks.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Pure returns a task that yields v without touching the resource.
// It is generic in C, so it fits into a composition of any tier.
func Pure[C Capability, V any](v V) Task[C, V] {
	return Task[C, V]{run: func(context.Context, C) (V, error) {
		return v, nil
	}}
}

// Fail returns a task that always fails with err.
func Fail[C Capability, V any](err error) Task[C, V] {
	return Task[C, V]{run: func(context.Context, C) (V, error) {
		var zero V
		return zero, err
	}}
}

// Leaf wraps a single operation. body receives the resource at execution
// time and is the only place a task touches it.
//
// The capability a repository chooses for C is the trust boundary of the
// whole package: a write wrapped as ReadOnly cannot be caught here.
func Leaf[C Capability, V any](body func(ctx context.Context, res C) (V, error)) Task[C, V] {
	if body == nil {
		return Task[C, V]{}
	}
	return Task[C, V]{run: body}
}

// Then sequences t with a continuation of the same tier.
//
// Executing the result runs t, then calls next with its value and runs the
// produced task against the same resource. If t fails, next is never called
// and the failure is returned as is. A panic inside next, or next returning
// the zero Task, fails the composite instead of escaping.
func Then[C Capability, A, B any](t Task[C, A], next func(A) Task[C, B]) Task[C, B] {
	return Task[C, B]{run: func(ctx context.Context, res C) (B, error) {
		var zero B
		a, err := t.exec(ctx, res)
		if err != nil {
			return zero, err
		}
		nt, err := continueWith(next, a)
		if err != nil {
			return zero, err
		}
		return nt.exec(ctx, res)
	}}
}

// ThenWrite sequences a ReadOnly task with a ReadWrite continuation.
func ThenWrite[A, B any](t Task[ReadOnly, A], next func(A) Task[ReadWrite, B]) Task[ReadWrite, B] {
	return Then(Widen(t), next)
}

// ThenRead sequences a ReadWrite task with a ReadOnly continuation.
func ThenRead[A, B any](t Task[ReadWrite, A], next func(A) Task[ReadOnly, B]) Task[ReadWrite, B] {
	return Then(t, func(a A) Task[ReadWrite, B] {
		return Widen(next(a))
	})
}

// Widen lifts a ReadOnly task so it can be composed with or executed on
// ReadWrite resources. The resource it receives is the one it is given.
func Widen[V any](t Task[ReadOnly, V]) Task[ReadWrite, V] {
	if t.run == nil {
		return Task[ReadWrite, V]{}
	}
	return Task[ReadWrite, V]{run: func(ctx context.Context, res ReadWrite) (V, error) {
		return t.run(ctx, res)
	}}
}

// Map changes the produced value and never the capability.
func Map[C Capability, A, B any](t Task[C, A], f func(A) B) Task[C, B] {
	return Then(t, func(a A) Task[C, B] {
		return Pure[C](f(a))
	})
}

// Both runs a and then b, collecting both values.
func Both[C Capability, A, B any](a Task[C, A], b Task[C, B]) Task[C, Pair[A, B]] {
	return Then(a, func(av A) Task[C, Pair[A, B]] {
		return Map(b, func(bv B) Pair[A, B] {
			return Pair[A, B]{First: av, Second: bv}
		})
	})
}

// All runs tasks left to right and collects their values.
// It stops at the first failure.
func All[C Capability, V any](tasks ...Task[C, V]) Task[C, []V] {
	acc := Pure[C](make([]V, 0, len(tasks)))
	for _, t := range tasks {
		acc = Then(acc, func(vs []V) Task[C, []V] {
			return Map(t, func(v V) []V {
				out := make([]V, len(vs), len(vs)+1)
				copy(out, vs)
				return append(out, v)
			})
		})
	}
	return acc
}

// Tier reports the tier of C. It is informational only.
func (t Task[C, V]) Tier() Tier {
	return TierOf[C]()
}

// IsZero reports whether t was never built by a constructor.
func (t Task[C, V]) IsZero() bool {
	return t.run == nil
}

func (t Task[C, V]) exec(ctx context.Context, res C) (V, error) {
	if t.run == nil {
		var zero V
		return zero, ErrZeroTask
	}
	return t.run(ctx, res)
}

// continueWith calls next and turns a panic or a zero result into an error.
func continueWith[C Capability, A, B any](next func(A) Task[C, B], a A) (nt Task[C, B], err error) {
	if next == nil {
		return nt, ErrNilContinuation
	}
	defer func() {
		if r := recover(); r != nil {
			err = &ContinuationPanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	nt = next(a)
	if nt.run == nil {
		return nt, ErrZeroTask
	}
	return nt, nil
}
