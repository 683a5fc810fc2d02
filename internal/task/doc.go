// Package task composes database work into transactions whose required
// capability is resolved by the Go type checker.
//
// A Task[C, V] is a deferred description of work that, given a resource
// satisfying capability C, produces a V or fails. Leaf tasks wrap one
// repository operation; Then sequences a task with a continuation that may
// depend on the first task's value.
//
// # Capabilities
//
// Two capability tiers exist and form a two-element lattice:
//
//   - ReadOnly: the resource can run queries
//   - ReadWrite: the resource can also execute statements
//
// ReadWrite embeds ReadOnly, so any ReadWrite resource may be handed to a
// ReadOnly task (see Widen). The reverse assignment does not compile.
//
// # Composition Table
//
//	first      continuation  result     operator
//	ReadOnly   ReadOnly      ReadOnly   Then
//	ReadOnly   ReadWrite     ReadWrite  ThenWrite
//	ReadWrite  ReadOnly      ReadWrite  ThenRead
//	ReadWrite  ReadWrite     ReadWrite  Then
//
// Any other pairing fails type inference. Routing is therefore enforced at
// build time: Execute requires a Runner[C] for a Task[C, V], and a replica
// runner only implements Runner[ReadOnly].
//
// # Execution
//
// Execute returns a *Future immediately. Steps of one composed task run
// strictly left to right against the same resource instance. A failing step
// short-circuits everything after it.
package task
