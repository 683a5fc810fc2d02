package task

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
)

// ReadOnly is the capability of a resource that can run queries.
// It is satisfied by both replica and primary sessions.
type ReadOnly interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// ReadWrite is the capability of a resource that can also mutate state.
// Only primary sessions satisfy it.
type ReadWrite interface {
	ReadOnly
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

// Capability constrains the capability parameter of Task and Runner.
type Capability interface {
	ReadOnly
}

// Tier is the runtime mirror of a capability. It is used for reporting and
// for plans assembled at runtime; it never gates execution of a typed Task.
type Tier int

const (
	// TierReadOnly is the bottom of the lattice.
	TierReadOnly Tier = iota
	// TierReadWrite is the top of the lattice.
	TierReadWrite
)

// String returns the snake_case name used in traces and scenario files.
func (t Tier) String() string {
	switch t {
	case TierReadOnly:
		return "read_only"
	case TierReadWrite:
		return "read_write"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier is the inverse of Tier.String.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "read_only":
		return TierReadOnly, nil
	case "read_write":
		return TierReadWrite, nil
	default:
		return 0, fmt.Errorf("unknown tier %q", s)
	}
}

// Combine is the lattice join: ReadWrite unless both operands are ReadOnly.
func Combine(a, b Tier) Tier {
	if a == TierReadWrite || b == TierReadWrite {
		return TierReadWrite
	}
	return TierReadOnly
}

// Satisfies reports whether a resource of tier t can serve a task requiring req.
func (t Tier) Satisfies(req Tier) bool {
	return t >= req
}

var readWriteType = reflect.TypeFor[ReadWrite]()

// TierOf returns the tier of capability type C.
func TierOf[C Capability]() Tier {
	if reflect.TypeFor[C]().Implements(readWriteType) {
		return TierReadWrite
	}
	return TierReadOnly
}
