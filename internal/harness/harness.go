package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/dbtask/internal/store"
	"github.com/roach88/dbtask/internal/task"
	"github.com/roach88/dbtask/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with scripted IDs against its own database.
type Harness struct {
	store  *store.Store
	env    *env
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh database file for isolation. The returned
// error covers infrastructure problems and malformed steps; scenario
// failures are reported through Result.Errors.
//
// Execution flow:
// 1. Create a fresh database in a temporary directory
// 2. Execute setup steps on the primary
// 3. Fold steps into one plan and pick the runner
// 4. Execute the plan and check step expectations
// 5. Evaluate assertions
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "dbtask-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(store.Config{Path: filepath.Join(dir, "scenario.db")})
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		env:    newEnv(testutil.NewScriptedIDs(scenario.IDs)),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult()
	result.Runner = scenario.Runner
	if result.Runner == "" {
		result.Runner = RunnerPrimary
	}

	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	if err := h.executeSteps(ctx, scenario, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	for _, msg := range EvaluateAssertions(ctx, result, scenario.Assertions, st.Replica(store.WithLogger(h.logger))) {
		result.AddError(msg)
	}

	return result, nil
}

// executeSetup runs each setup step on the primary in its own session.
func (h *Harness) executeSetup(ctx context.Context, setup []Step, result *Result) error {
	primary := h.store.Primary(store.WithLogger(h.logger))
	for i, s := range setup {
		st, err := h.env.bind(s)
		if err != nil {
			return fmt.Errorf("setup step %d: %w", i, err)
		}

		v, err := task.Run(ctx, st.asWrite(), primary)
		if err != nil {
			return fmt.Errorf("setup step %d (%s): %w", i, s.Op, err)
		}

		result.addEvent(TraceEvent{
			Type:   EventSetup,
			Op:     s.Op,
			Tier:   st.tier().String(),
			Args:   s.Args,
			Result: v,
		})
		h.logger.Info("setup step completed", "step", i, "op", s.Op)
	}
	return nil
}

// executeSteps builds the plan, runs it on the scenario's runner and
// validates step expectations, expect_tier and expect_error.
func (h *Harness) executeSteps(ctx context.Context, scenario *Scenario, result *Result) error {
	steps := make([]step, len(scenario.Steps))
	for i, s := range scenario.Steps {
		st, err := h.env.bind(s)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		steps[i] = st
	}

	ran := make([]bool, len(steps))
	outputs := make([]any, len(steps))
	p := buildPlan(steps, func(i int, v any) {
		ran[i] = true
		outputs[i] = v
		result.addEvent(TraceEvent{
			Type:   EventStep,
			Op:     steps[i].op,
			Tier:   steps[i].tier().String(),
			Args:   steps[i].args,
			Result: v,
		})
	})
	result.Tier = p.tier.String()

	if scenario.ExpectTier != "" && scenario.ExpectTier != result.Tier {
		result.AddError(fmt.Sprintf("plan tier: expected %s, got %s", scenario.ExpectTier, result.Tier))
	}

	planErr := h.execute(ctx, p, result.Runner)
	switch {
	case planErr == nil:
	case isRefusal(planErr):
		result.addEvent(TraceEvent{Type: EventRefused, Tier: result.Tier, Error: planErr.Error()})
	default:
		result.addEvent(TraceEvent{Type: EventFailure, Error: planErr.Error()})
	}

	switch {
	case scenario.ExpectError == "" && planErr != nil:
		result.AddError(fmt.Sprintf("plan failed: %v", planErr))
	case scenario.ExpectError != "" && planErr == nil:
		result.AddError(fmt.Sprintf("expected error containing %q, plan succeeded", scenario.ExpectError))
	case scenario.ExpectError != "" && !strings.Contains(planErr.Error(), scenario.ExpectError):
		result.AddError(fmt.Sprintf("expected error containing %q, got %q", scenario.ExpectError, planErr.Error()))
	}

	for i, s := range scenario.Steps {
		if s.Expect == nil {
			continue
		}
		if !ran[i] {
			result.AddError(fmt.Sprintf("steps[%d] (%s): expected a result but the step did not run", i, s.Op))
			continue
		}
		if msg := checkExpect(s.Expect, outputs[i]); msg != "" {
			result.AddError(fmt.Sprintf("steps[%d] (%s): %s", i, s.Op, msg))
		}
	}

	h.logger.Info("plan completed",
		"tier", result.Tier,
		"runner", result.Runner,
		"steps", len(steps),
		"error", planErr,
	)
	return nil
}

// refusalError reports a plan whose tier the runner cannot serve.
type refusalError struct {
	tier   task.Tier
	runner string
}

func (e *refusalError) Error() string {
	return fmt.Sprintf("plan tier %s cannot run on the %s runner", e.tier, e.runner)
}

func isRefusal(err error) bool {
	var re *refusalError
	return errors.As(err, &re)
}

// execute dispatches p to the named runner. A read_write plan is never
// handed to the replica runner.
func (h *Harness) execute(ctx context.Context, p plan, runner string) error {
	var fut *task.Future[[]any]
	switch {
	case runner == RunnerReplica && p.tier == task.TierReadWrite:
		return &refusalError{tier: p.tier, runner: runner}
	case runner == RunnerReplica:
		fut = task.Execute(ctx, p.read, h.store.Replica(store.WithLogger(h.logger)))
	case p.tier == task.TierReadOnly:
		fut = task.ExecuteReadOnly(ctx, p.read, h.store.Primary(store.WithLogger(h.logger)))
	default:
		fut = task.Execute(ctx, p.write, h.store.Primary(store.WithLogger(h.logger)))
	}

	// Steps record into the result from the session goroutine, so wait for
	// it to finish even if ctx ends first.
	_, err := fut.Result()
	return err
}

// checkExpect returns a failure message, or "" if actual satisfies e.
func checkExpect(e *ExpectClause, actual any) string {
	if e.Absent {
		if actual != nil {
			return fmt.Sprintf("expected no result, got %v", actual)
		}
		return ""
	}
	if e.Result != nil && !matchValue(e.Result, actual) {
		return fmt.Sprintf("expected result %v, got %v", e.Result, actual)
	}
	return ""
}
