package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbtask/internal/store"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultPath, cfg.Database.Primary)
	assert.Empty(t, cfg.Database.Replicas)
	require.NoError(t, cfg.Validate())
}

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(`
database:
  primary: chat.db
  replicas:
    - replica-a.db
    - replica-b.db
log:
  level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, "chat.db", cfg.Database.Primary)
	assert.Equal(t, []string{"replica-a.db", "replica-b.db"}, cfg.Database.Replicas)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParse_EmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("log:\n  level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPath, cfg.Database.Primary)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("database:\n  primray: x.db\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primray")
}

func TestParse_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty primary", "database:\n  primary: \"\"\n", "database.primary"},
		{"empty replica", "database:\n  replicas: [\"\"]\n", "database.replicas[0]"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbtask.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  primary: other.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other.db", cfg.Database.Primary)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	cfg := Config{Database: Database{Primary: "p.db", Replicas: []string{"r.db"}}}
	assert.Equal(t, store.Config{Path: "p.db", Replicas: []string{"r.db"}}, cfg.Store())

	cfg = Config{Database: Database{Primary: "p.db"}}
	assert.Equal(t, "p.db", cfg.Store().Path)
	assert.Empty(t, cfg.Store().Replicas)
}

func TestSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := Log{Level: in}.SlogLevel()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
