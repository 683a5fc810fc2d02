package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/dbtask/internal/task"
)

// RunnerOption configures a runner.
type RunnerOption func(*runnerConfig)

type runnerConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(c *runnerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func newRunnerConfig(opts []RunnerOption) runnerConfig {
	cfg := runnerConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// PrimaryRunner runs tasks in a read-write transaction on the primary.
type PrimaryRunner struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// ReplicaRunner runs tasks in a read-only transaction on a replica.
type ReplicaRunner struct {
	store  *Store
	logger *slog.Logger
}

var (
	_ task.Runner[task.ReadWrite] = (*PrimaryRunner)(nil)
	_ task.Runner[task.ReadOnly]  = (*ReplicaRunner)(nil)
)

// Primary returns a runner bound to the primary handle.
func (s *Store) Primary(opts ...RunnerOption) *PrimaryRunner {
	cfg := newRunnerConfig(opts)
	return &PrimaryRunner{db: s.primary, logger: cfg.logger.With("runner", "primary")}
}

// Replica returns a runner that picks a replica per session.
func (s *Store) Replica(opts ...RunnerOption) *ReplicaRunner {
	cfg := newRunnerConfig(opts)
	return &ReplicaRunner{store: s, logger: cfg.logger.With("runner", "replica")}
}

// Session opens a transaction, hands it to fn and commits if fn succeeds.
// Any error from fn rolls the transaction back and is returned unwrapped so
// that domain failures keep their identity.
func (r *PrimaryRunner) Session(ctx context.Context, fn func(ctx context.Context, res task.ReadWrite) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("primary session: begin: %w", err)
	}
	r.logger.DebugContext(ctx, "session begin")

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.logger.ErrorContext(ctx, "rollback failed", "error", rbErr)
		}
		r.logger.DebugContext(ctx, "session rolled back", "error", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("primary session: commit: %w", err)
	}
	r.logger.DebugContext(ctx, "session committed")
	return nil
}

// Session opens a read-only transaction on the next replica and hands fn a
// session that exposes only query methods.
func (r *ReplicaRunner) Session(ctx context.Context, fn func(ctx context.Context, res task.ReadOnly) error) error {
	db := r.store.pickReplica()
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("replica session: begin: %w", err)
	}
	r.logger.DebugContext(ctx, "session begin")

	// Nothing to commit on a read-only transaction.
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.logger.ErrorContext(ctx, "release failed", "error", rbErr)
		}
		r.logger.DebugContext(ctx, "session released")
	}()

	return fn(ctx, readSession{tx: tx})
}

// readSession narrows a transaction to the ReadOnly capability so that a
// type assertion to task.ReadWrite fails.
type readSession struct {
	tx *sqlx.Tx
}

func (s readSession) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return s.tx.GetContext(ctx, dest, query, args...)
}

func (s readSession) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return s.tx.SelectContext(ctx, dest, query, args...)
}
