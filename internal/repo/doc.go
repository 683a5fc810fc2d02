// Package repo produces leaf tasks for users and messages.
//
// Every operation that only reads is a task.Task[task.ReadOnly, _]; every
// create, update or delete is a task.Task[task.ReadWrite, _]. Leaf bodies
// receive only the interface of their tier, so a read cannot issue a
// statement without a type assertion. This tagging is what keeps writes off
// replicas.
//
// Repositories are stateless values. Building a task performs no I/O.
package repo
