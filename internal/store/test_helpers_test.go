package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/dbtask/internal/task"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// insertUser returns a write leaf that inserts one user row.
func insertUser(id int64, name string) task.Task[task.ReadWrite, int64] {
	return task.Leaf(func(ctx context.Context, res task.ReadWrite) (int64, error) {
		_, err := res.ExecContext(ctx, "INSERT INTO users (id, name) VALUES (?, ?)", id, name)
		return id, err
	})
}

// countUsers returns a read leaf that counts user rows.
func countUsers() task.Task[task.ReadOnly, int] {
	return task.Leaf(func(ctx context.Context, res task.ReadOnly) (int, error) {
		var n int
		err := res.GetContext(ctx, &n, "SELECT COUNT(*) FROM users")
		return n, err
	})
}
