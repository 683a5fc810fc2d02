package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUserStep(id int, name string) Step {
	return Step{Op: "create_user", Args: map[string]any{"id": id, "name": name}}
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:  "minimal",
		Steps: []Step{{Op: "list_users"}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "read_only", result.Tier)
	assert.Equal(t, RunnerPrimary, result.Runner)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, EventStep, result.Trace[0].Type)
	assert.Equal(t, []any{}, result.Trace[0].Result)
}

func TestRun_SetupThenSteps(t *testing.T) {
	scenario := &Scenario{
		Name:  "with_setup",
		IDs:   []string{"m1"},
		Setup: []Step{createUserStep(1, "ada")},
		Steps: []Step{
			{
				Op:     "create_message",
				Args:   map[string]any{"user_id": 1, "body": "hi"},
				Expect: &ExpectClause{Result: map[string]any{"id": "m1", "seq": 1}},
			},
			{
				Op:     "count_messages",
				Args:   map[string]any{"user_id": 1},
				Expect: &ExpectClause{Result: 1},
			},
		},
		ExpectTier: "read_write",
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)

	require.Len(t, result.Trace, 3)
	assert.Equal(t, EventSetup, result.Trace[0].Type)
	assert.Equal(t, int64(1), result.Trace[0].Seq)
	assert.Equal(t, "create_message", result.Trace[1].Op)
	assert.Equal(t, "read_write", result.Trace[1].Tier)
	assert.Equal(t, "count_messages", result.Trace[2].Op)
	assert.Equal(t, "read_only", result.Trace[2].Tier)
	assert.Equal(t, int64(3), result.Trace[2].Seq)
}

func TestRun_ReadOnlyPlanOnReplica(t *testing.T) {
	scenario := &Scenario{
		Name:   "replica_read",
		Runner: RunnerReplica,
		Setup:  []Step{createUserStep(1, "ada")},
		Steps: []Step{
			{Op: "get_user", Args: map[string]any{"id": 1}, Expect: &ExpectClause{Result: map[string]any{"name": "ada"}}},
			{Op: "timeline", Args: map[string]any{"user_id": 1}},
		},
		ExpectTier: "read_only",
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, RunnerReplica, result.Runner)
}

func TestRun_WritePlanRefusedOnReplica(t *testing.T) {
	scenario := &Scenario{
		Name:   "refused",
		Runner: RunnerReplica,
		Setup:  []Step{createUserStep(1, "ada")},
		Steps: []Step{
			{Op: "get_user", Args: map[string]any{"id": 1}},
			{Op: "delete_user", Args: map[string]any{"id": 1}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, "read_write", result.Tier)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, EventRefused, result.Trace[1].Type)
	assert.Equal(t, "plan tier read_write cannot run on the replica runner", result.Trace[1].Error)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "plan failed")
}

func TestRun_ExpectErrorMatches(t *testing.T) {
	scenario := &Scenario{
		Name:  "expect_error",
		Steps: []Step{{Op: "get_user", Args: map[string]any{"id": 9}}},

		ExpectError: "user 9: not found",
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, EventFailure, last.Type)
	assert.Equal(t, "user 9: not found", last.Error)
}

func TestRun_ExpectErrorMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "expect_error_mismatch",
		Steps:       []Step{{Op: "list_users"}},
		ExpectError: "boom",
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "plan succeeded")
}

func TestRun_FailureRollsBackAndSkipsLaterSteps(t *testing.T) {
	scenario := &Scenario{
		Name:  "rollback",
		Setup: []Step{createUserStep(1, "ada")},
		Steps: []Step{
			{Op: "rename_user", Args: map[string]any{"id": 1, "name": "bob"}},
			{Op: "create_message", Args: map[string]any{"user_id": 1, "body": ""}},
			{Op: "count_messages", Args: map[string]any{"user_id": 1}, Expect: &ExpectClause{Result: 0}},
		},
		ExpectError: "invalid body",
		Assertions: []Assertion{
			{Type: AssertFinalState, Table: "users", Where: map[string]any{"id": 1}, Expect: map[string]any{"name": "ada"}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "did not run")
}

func TestRun_ExpectMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:  "mismatch",
		Setup: []Step{createUserStep(1, "ada")},
		Steps: []Step{
			{Op: "get_user", Args: map[string]any{"id": 1}, Expect: &ExpectClause{Result: map[string]any{"name": "bob"}}},
			{Op: "find_user", Args: map[string]any{"id": 1}, Expect: &ExpectClause{Absent: true}},
		},
		ExpectTier: "read_write",
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "plan tier: expected read_write, got read_only")
	assert.Contains(t, result.Errors[1], "steps[0] (get_user)")
	assert.Contains(t, result.Errors[2], "expected no result")
}

func TestRun_ChatFlows(t *testing.T) {
	scenario := &Scenario{
		Name: "chat",
		IDs:  []string{"m1", "m2"},
		Steps: []Step{
			{Op: "register", Args: map[string]any{"id": 1, "name": "ada"},
				Expect: &ExpectClause{Result: map[string]any{"created": true}}},
			{Op: "register", Args: map[string]any{"id": 1, "name": "other"},
				Expect: &ExpectClause{Result: map[string]any{"created": false, "user": map[string]any{"name": "ada"}}}},
			{Op: "post", Args: map[string]any{"user_id": 1, "body": "hi"}},
			{Op: "rename_announce", Args: map[string]any{"id": 1, "name": "ada2", "body": "renamed"},
				Expect: &ExpectClause{Result: map[string]any{"user": map[string]any{"name": "ada2"}}}},
			{Op: "retract", Args: map[string]any{"id": "m1", "user_id": 1}, Expect: &ExpectClause{Result: 1}},
			{Op: "timeline", Args: map[string]any{"user_id": 1},
				Expect: &ExpectClause{Result: map[string]any{"messages": []any{map[string]any{"id": "m2", "body": "renamed"}}}}},
		},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Op: "register", Count: 2},
			{Type: AssertFinalState, Table: "messages", Where: map[string]any{"id": "m2"}, Expect: map[string]any{"body": "renamed"}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "read_write", result.Tier)
}

func TestRun_BadArgs(t *testing.T) {
	tests := []struct {
		name string
		step Step
		want string
	}{
		{"missing arg", Step{Op: "get_user"}, `arg "id" is required`},
		{"wrong type", Step{Op: "get_user", Args: map[string]any{"id": "one"}}, "expected integer"},
		{"wrong string type", Step{Op: "delete_message", Args: map[string]any{"id": 5}}, "expected string"},
		{"unknown op", Step{Op: "nope"}, "unknown op"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), &Scenario{Name: "bad", Steps: []Step{tt.step}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_SetupFailure(t *testing.T) {
	scenario := &Scenario{
		Name:  "setup_failure",
		Setup: []Step{createUserStep(1, "ada"), createUserStep(1, "dup")},
		Steps: []Step{{Op: "list_users"}},
	}

	_, err := Run(context.Background(), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup step 1")
}
