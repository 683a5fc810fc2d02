// Package testutil holds deterministic stand-ins used by tests and the
// scenario harness.
package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates prefix-0001, prefix-0002, ... in call order.
//
// Unlike the UUIDv7 generator, SequentialIDs can be reset for test reuse.
// The same scenario run twice produces byte-identical traces.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator starting at 1.
//
// If prefix is empty, "msg" is used.
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "msg"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Count returns how many IDs have been generated.
func (g *SequentialIDs) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

// Reset restarts the sequence. The next Generate returns prefix-0001.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}

// ScriptedIDs returns a fixed list of IDs in order, then falls back to a
// SequentialIDs with the default prefix.
//
// The list is typically set in the scenario YAML:
//
//	ids: ["msg-a", "msg-b"]
type ScriptedIDs struct {
	mu       sync.Mutex
	ids      []string
	next     int
	fallback *SequentialIDs
}

// NewScriptedIDs copies ids.
func NewScriptedIDs(ids []string) *ScriptedIDs {
	return &ScriptedIDs{
		ids:      append([]string(nil), ids...),
		fallback: NewSequentialIDs(""),
	}
}

// Generate returns the next scripted ID, or a sequential one once the
// script is exhausted.
func (g *ScriptedIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next < len(g.ids) {
		id := g.ids[g.next]
		g.next++
		return id
	}
	return g.fallback.Generate()
}
