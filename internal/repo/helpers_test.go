package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/dbtask/internal/store"
	"github.com/roach88/dbtask/internal/task"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.Config{Path: filepath.Join(t.TempDir(), "repo.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func runWrite[V any](t *testing.T, s *store.Store, tk task.Task[task.ReadWrite, V]) (V, error) {
	t.Helper()
	return task.Run(context.Background(), tk, s.Primary())
}

func runRead[V any](t *testing.T, s *store.Store, tk task.Task[task.ReadOnly, V]) (V, error) {
	t.Helper()
	return task.Run(context.Background(), tk, s.Replica())
}

func mustWrite[V any](t *testing.T, s *store.Store, tk task.Task[task.ReadWrite, V]) V {
	t.Helper()
	v, err := runWrite(t, s, tk)
	require.NoError(t, err)
	return v
}
