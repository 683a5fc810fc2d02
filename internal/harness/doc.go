// Package harness runs YAML scenarios against a fresh database.
//
// A scenario lists operations. The harness turns each operation into a
// task, folds the steps into one plan whose tier is the join of the step
// tiers, and executes the plan on the runner the scenario names. A
// read_write plan aimed at the replica runner is refused before anything
// runs.
//
// # Scenario Format
//
//	name: post_then_read
//	description: "Posting a message and reading the timeline"
//	runner: primary          # or replica; default primary
//	ids: ["msg-a"]           # message IDs handed out in order
//	setup:
//	  - op: create_user
//	    args: { id: 7, name: ada }
//	steps:
//	  - op: create_message
//	    args: { user_id: 7, body: hi }
//	    expect:
//	      result: { id: msg-a, body: hi }
//	expect_tier: read_write
//	expect_error: ""         # substring of the plan failure, if any
//	assertions:
//	  - type: trace_order
//	    ops: [create_user, create_message]
//	  - type: final_state
//	    table: messages
//	    where: { id: msg-a }
//	    expect: { user_id: 7 }
//
// Scenario files are validated against an embedded CUE schema and then
// decoded strictly, so unknown fields are errors.
//
// # Assertion Types
//
//   - trace_contains: an operation appears in the trace with matching args
//   - trace_order: operations appear in the given order
//   - trace_count: an operation appears exactly N times
//   - final_state: one row of users or messages matches where and expect
//
// # Deterministic Testing
//
// Each run uses a new database file, scripted message IDs
// (testutil.ScriptedIDs) and a logical sequence counter, so traces are
// byte-identical across runs and can be compared with golden files.
package harness
