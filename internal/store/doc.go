// Package store provides SQLite-backed sessions for dbtask runners.
//
// A Store holds one primary handle and one or more read-only replica handles,
// grouped behind a dbresolver.DB. It hands them out as runners:
//
//   - PrimaryRunner implements task.Runner[task.ReadWrite]
//   - ReplicaRunner implements task.Runner[task.ReadOnly]
//
// Every Session call runs inside one SQL transaction on one connection, so
// all steps of a composed task share the same session. The primary commits
// when the task succeeds and rolls back when any step fails.
//
// # Database Configuration
//
//   - WAL mode: replicas read while the primary writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Replicas are opened with mode=ro, so SQLite itself also refuses writes on
// them. Queries order by seq ASC, id ASC COLLATE BINARY for deterministic
// results.
package store
