package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/bxcodec/dbresolver/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const driverName = "sqlite3"

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on messages(user_id, seq)
const currentSchemaVersion = 1

// Config selects the database files a Store opens.
type Config struct {
	// Path is the primary database file. It is created if missing.
	Path string

	// Replicas are files opened read-only. Empty means one replica on Path.
	Replicas []string
}

// Store owns the primary and replica handles.
type Store struct {
	resolver dbresolver.DB
	primary  *sqlx.DB
	replicas []*sqlx.DB
	next     atomic.Uint64
}

// Open creates or opens the primary database, applies pragmas and
// migrations, then opens the replicas.
//
// The primary is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("open store: empty database path")
	}

	primary, err := sql.Open(driverName, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := primary.Ping(); err != nil {
		primary.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	primary.SetMaxOpenConns(1)
	primary.SetMaxIdleConns(1)

	if err := applyPragmas(primary); err != nil {
		primary.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(primary); err != nil {
		primary.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	paths := cfg.Replicas
	if len(paths) == 0 {
		paths = []string{cfg.Path}
	}

	replicas := make([]*sql.DB, 0, len(paths))
	for _, path := range paths {
		replica, err := openReplica(path)
		if err != nil {
			for _, r := range replicas {
				r.Close()
			}
			primary.Close()
			return nil, err
		}
		replicas = append(replicas, replica)
	}

	resolver := dbresolver.New(
		dbresolver.WithPrimaryDBs(primary),
		dbresolver.WithReplicaDBs(replicas...),
	)

	s := &Store{
		resolver: resolver,
		primary:  sqlx.NewDb(primary, driverName),
	}
	for _, r := range resolver.ReplicaDBs() {
		s.replicas = append(s.replicas, sqlx.NewDb(r, driverName))
	}
	return s, nil
}

// openReplica opens path read-only. The file must already exist.
func openReplica(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open replica %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to replica %s: %w", path, err)
	}
	return db, nil
}

// Close closes every handle.
func (s *Store) Close() error {
	if s.resolver == nil {
		return nil
	}
	return s.resolver.Close()
}

// Ping checks the primary and every replica.
func (s *Store) Ping(ctx context.Context) error {
	return s.resolver.PingContext(ctx)
}

// SchemaVersion returns the applied migration level.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.primary.GetContext(ctx, &version, "PRAGMA user_version"); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// ReplicaCount returns the number of replica handles.
func (s *Store) ReplicaCount() int {
	return len(s.replicas)
}

// pickReplica returns replicas in round-robin order. The resolver balances
// per statement and has no per-session selector, while a session must keep
// one handle for its whole transaction.
func (s *Store) pickReplica() *sqlx.DB {
	n := s.next.Add(1) - 1
	return s.replicas[n%uint64(len(s.replicas))]
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the index backing per-user message listings.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_messages_user_seq
		ON messages(user_id, seq)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.primary.Get(&value, fmt.Sprintf("PRAGMA %s", name)); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
