package task

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSession is an in-memory ReadWrite resource that records every call.
type fakeSession struct {
	mu  sync.Mutex
	log []string
}

func (s *fakeSession) record(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, entry)
}

func (s *fakeSession) entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}

func (s *fakeSession) GetContext(_ context.Context, _ any, query string, _ ...any) error {
	s.record("get:" + query)
	return nil
}

func (s *fakeSession) SelectContext(_ context.Context, _ any, query string, _ ...any) error {
	s.record("select:" + query)
	return nil
}

func (s *fakeSession) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	s.record("exec:" + query)
	return driver.RowsAffected(1), nil
}

func (s *fakeSession) NamedExecContext(_ context.Context, query string, _ any) (sql.Result, error) {
	s.record("named:" + query)
	return driver.RowsAffected(1), nil
}

// readOnlySession exposes only the read half of a fakeSession.
type readOnlySession struct {
	inner *fakeSession
}

func (s readOnlySession) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return s.inner.GetContext(ctx, dest, query, args...)
}

func (s readOnlySession) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return s.inner.SelectContext(ctx, dest, query, args...)
}

// mark returns a leaf that logs marker through the resource and yields v.
func mark[C Capability, V any](marker string, v V) Task[C, V] {
	return Leaf(func(ctx context.Context, res C) (V, error) {
		if err := res.GetContext(ctx, nil, marker); err != nil {
			var zero V
			return zero, err
		}
		return v, nil
	})
}

// write returns a ReadWrite leaf that logs marker through ExecContext.
func write[V any](marker string, v V) Task[ReadWrite, V] {
	return Leaf(func(ctx context.Context, res ReadWrite) (V, error) {
		if _, err := res.ExecContext(ctx, marker); err != nil {
			var zero V
			return zero, err
		}
		return v, nil
	})
}

// observation is everything a caller can see from one execution.
type observation[V any] struct {
	Value V
	Err   error
	Log   []string
}

func observeRW[V any](t *testing.T, tk Task[ReadWrite, V]) observation[V] {
	t.Helper()
	res := &fakeSession{}
	v, err := Run(context.Background(), tk, Bind[ReadWrite](res))
	return observation[V]{Value: v, Err: err, Log: res.entries()}
}

func observeRO[V any](t *testing.T, tk Task[ReadOnly, V]) observation[V] {
	t.Helper()
	inner := &fakeSession{}
	v, err := Run(context.Background(), tk, Bind[ReadOnly](readOnlySession{inner: inner}))
	return observation[V]{Value: v, Err: err, Log: inner.entries()}
}

func requireSameObservation[V any](t *testing.T, want, got observation[V]) {
	t.Helper()
	require.Equal(t, want.Value, got.Value)
	require.Equal(t, want.Err, got.Err)
	require.Equal(t, want.Log, got.Log)
}
