package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbtask/internal/task"
)

func TestPrimary_CommitsOnSuccess(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := task.Run(ctx, insertUser(7, "alice"), s.Primary())
	require.NoError(t, err)

	n, err := task.Run(ctx, countUsers(), s.Replica())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPrimary_RollsBackWholeTaskOnFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	composed := task.Then(insertUser(1, "a"), func(int64) task.Task[task.ReadWrite, int64] {
		return task.Then(insertUser(2, "b"), func(int64) task.Task[task.ReadWrite, int64] {
			return task.Fail[task.ReadWrite, int64](boom)
		})
	})

	_, err := task.Run(ctx, composed, s.Primary())
	assert.Same(t, boom, err, "domain failures keep their identity")

	n, err := task.Run(ctx, countUsers(), s.Replica())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "no partial success is committed")
}

func TestPrimary_RollsBackWhenLeafPanics(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	composed := task.Then(insertUser(1, "a"), func(int64) task.Task[task.ReadWrite, int64] {
		return task.Leaf(func(context.Context, task.ReadWrite) (int64, error) {
			panic("mid-transaction")
		})
	})

	_, err := task.Run(ctx, composed, s.Primary())
	var pe *task.PanicError
	require.ErrorAs(t, err, &pe)

	n, err := task.Run(ctx, countUsers(), s.Replica())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// The single primary connection was released.
	_, err = task.Run(ctx, insertUser(2, "b"), s.Primary())
	require.NoError(t, err)
}

func TestPrimary_StepsShareOneTransaction(t *testing.T) {
	s := createTestStore(t)

	// The count runs inside the same transaction and sees the uncommitted row.
	composed := task.ThenRead(insertUser(7, "alice"), func(int64) task.Task[task.ReadOnly, int] {
		return countUsers()
	})

	n, err := task.Run(context.Background(), composed, s.Primary())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPrimary_ConstraintViolation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := task.Run(ctx, insertUser(7, "alice"), s.Primary())
	require.NoError(t, err)

	_, err = task.Run(ctx, insertUser(7, "again"), s.Primary())
	assert.Error(t, err)
}

func TestPrimary_ReadOnlyTaskObservesPrimarySession(t *testing.T) {
	s := createTestStore(t)

	probe := task.Leaf(func(_ context.Context, res task.ReadOnly) (bool, error) {
		_, canWrite := res.(task.ReadWrite)
		return canWrite, nil
	})

	canWrite, err := task.ExecuteReadOnly(context.Background(), probe, s.Primary()).Result()
	require.NoError(t, err)
	assert.True(t, canWrite, "a read task on the primary receives the primary session")
}

func TestReplica_SessionIsReadOnly(t *testing.T) {
	s := createTestStore(t)

	probe := task.Leaf(func(_ context.Context, res task.ReadOnly) (bool, error) {
		_, canWrite := res.(task.ReadWrite)
		return canWrite, nil
	})

	canWrite, err := task.Run(context.Background(), probe, s.Replica())
	require.NoError(t, err)
	assert.False(t, canWrite)
}

func TestReplica_DatabaseRefusesWrites(t *testing.T) {
	s := createTestStore(t)

	// Even a raw statement smuggled through a query method is refused,
	// because the replica handle is opened with mode=ro.
	smuggle := task.Leaf(func(ctx context.Context, res task.ReadOnly) (int, error) {
		var n int
		err := res.GetContext(ctx, &n, "INSERT INTO users (id, name) VALUES (1, 'x') RETURNING id")
		return n, err
	})

	_, err := task.Run(context.Background(), smuggle, s.Replica())
	assert.Error(t, err)
}

func TestReplica_RoundRobin(t *testing.T) {
	dir := t.TempDir()
	primaryPath := filepath.Join(dir, "primary.db")
	s, err := Open(Config{Path: primaryPath, Replicas: []string{primaryPath, primaryPath}})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.Equal(t, 2, s.ReplicaCount())
	first := s.pickReplica()
	second := s.pickReplica()
	third := s.pickReplica()
	assert.NotSame(t, first, second)
	assert.Same(t, first, third)
}

func TestRunner_BeginFailsOnCanceledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := task.Execute(ctx, countUsers(), s.Replica()).Result()
	assert.ErrorIs(t, err, context.Canceled)

	_, err = task.Execute(ctx, insertUser(1, "a"), s.Primary()).Result()
	assert.ErrorIs(t, err, context.Canceled)
}
