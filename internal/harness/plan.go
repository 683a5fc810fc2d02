package harness

import (
	"github.com/roach88/dbtask/internal/task"
)

// plan is a scenario's steps folded into one task. The tier is decided
// here, once, from the step tiers: if every step reads, the plan is a
// ReadOnly task and may run on either runner; otherwise every read is
// widened and the plan is ReadWrite.
type plan struct {
	tier  task.Tier
	read  task.Task[task.ReadOnly, []any]
	write task.Task[task.ReadWrite, []any]
}

// buildPlan folds steps in order. record is called with the step index and
// result after each step succeeds.
func buildPlan(steps []step, record func(i int, v any)) plan {
	tier := task.TierReadOnly
	for _, s := range steps {
		tier = task.Combine(tier, s.tier())
	}

	if tier == task.TierReadOnly {
		reads := make([]task.Task[task.ReadOnly, any], len(steps))
		for i, s := range steps {
			reads[i] = recorded(s.read, func(v any) { record(i, v) })
		}
		return plan{tier: tier, read: task.All(reads...)}
	}

	writes := make([]task.Task[task.ReadWrite, any], len(steps))
	for i, s := range steps {
		writes[i] = recorded(s.asWrite(), func(v any) { record(i, v) })
	}
	return plan{tier: tier, write: task.All(writes...)}
}

func recorded[C task.Capability](t task.Task[C, any], record func(any)) task.Task[C, any] {
	return task.Map(t, func(v any) any {
		record(v)
		return v
	})
}
