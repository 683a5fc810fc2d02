package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbtask/internal/task"
	"github.com/roach88/dbtask/internal/testutil"
)

func bindAll(t *testing.T, steps ...Step) []step {
	t.Helper()
	e := newEnv(testutil.NewSequentialIDs(""))
	out := make([]step, len(steps))
	for i, s := range steps {
		st, err := e.bind(s)
		require.NoError(t, err)
		out[i] = st
	}
	return out
}

func TestBuildPlan_Tier(t *testing.T) {
	read := Step{Op: "list_users"}
	write := Step{Op: "delete_user", Args: map[string]any{"id": 1}}

	tests := []struct {
		name  string
		steps []Step
		want  task.Tier
	}{
		{"empty", nil, task.TierReadOnly},
		{"reads", []Step{read, read}, task.TierReadOnly},
		{"write", []Step{write}, task.TierReadWrite},
		{"read then write", []Step{read, write}, task.TierReadWrite},
		{"write then read", []Step{write, read}, task.TierReadWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildPlan(bindAll(t, tt.steps...), func(int, any) {})
			assert.Equal(t, tt.want, p.tier)
			if tt.want == task.TierReadOnly {
				assert.False(t, p.read.IsZero())
				assert.True(t, p.write.IsZero())
			} else {
				assert.True(t, p.read.IsZero())
				assert.False(t, p.write.IsZero())
			}
		})
	}
}

func TestBuildPlan_RecordsInOrder(t *testing.T) {
	steps := bindAll(t,
		Step{Op: "list_users"},
		Step{Op: "count_messages", Args: map[string]any{"user_id": 1}},
	)

	var order []int
	p := buildPlan(steps, func(i int, _ any) { order = append(order, i) })

	fake := task.RunnerFunc[task.ReadOnly](func(ctx context.Context, fn func(context.Context, task.ReadOnly) error) error {
		return fn(ctx, emptyReads{})
	})
	out, err := task.Run(context.Background(), p.read, fake)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, order)
	assert.Equal(t, []any{[]any{}, 0}, out)
}

// emptyReads answers every query with no rows and zero values.
type emptyReads struct{}

func (emptyReads) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}

func (emptyReads) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return nil
}
