// Package config loads dbtask settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dbtask/internal/store"
)

// DefaultPath is the database file used when nothing else is configured.
const DefaultPath = "dbtask.db"

// Config is the on-disk configuration.
//
//	database:
//	  primary: chat.db
//	  replicas: [chat.db]
//	log:
//	  level: info
type Config struct {
	Database Database `yaml:"database"`
	Log      Log      `yaml:"log"`
}

// Database selects the primary and replica files.
type Database struct {
	Primary  string   `yaml:"primary"`
	Replicas []string `yaml:"replicas,omitempty"`
}

// Log controls the CLI logger.
type Log struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string `yaml:"level,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database: Database{Primary: DefaultPath},
		Log:      Log{Level: "info"},
	}
}

// Load reads path. A missing file is an error; use Default for the
// no-file case.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config bytes. Unknown fields are rejected so that
// typos do not silently fall back to defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Primary) == "" {
		return errors.New("database.primary must not be empty")
	}
	for i, r := range c.Database.Replicas {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("database.replicas[%d] must not be empty", i)
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Store converts the database section into store settings. Without
// explicit replicas the primary file is also read through a read-only
// handle.
func (c Config) Store() store.Config {
	return store.Config{
		Path:     c.Database.Primary,
		Replicas: append([]string(nil), c.Database.Replicas...),
	}
}

// SlogLevel maps Level to a slog.Level.
func (l Log) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level: unknown level %q", l.Level)
	}
}
