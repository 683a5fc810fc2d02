package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/dbtask/internal/chat"
	"github.com/roach88/dbtask/internal/config"
	"github.com/roach88/dbtask/internal/repo"
	"github.com/roach88/dbtask/internal/store"
)

// app is what a data command needs: an open store, the runners and the
// flows.
type app struct {
	path    string
	store   *store.Store
	primary *store.PrimaryRunner
	replica *store.ReplicaRunner
	chat    *chat.Service
	users   repo.Users
	logger  *slog.Logger
	out     *OutputFormatter
}

// resolveConfig loads --config if given and applies --db on top.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if opts.Database != "" {
		cfg.Database.Primary = opts.Database
	}
	return cfg, nil
}

// newLogger builds the CLI logger. --verbose forces debug.
func newLogger(opts *RootOptions, cfg config.Config, w io.Writer) *slog.Logger {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openApp resolves configuration, sets up logging and opens the store.
// The caller must call close.
func openApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	out := newFormatter(opts, cmd)

	cfg, err := resolveConfig(opts)
	if err != nil {
		_ = out.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logger := newLogger(opts, cfg, cmd.ErrOrStderr())

	logger.Debug("opening database", "path", cfg.Database.Primary, "replicas", len(cfg.Database.Replicas))
	st, err := store.Open(cfg.Store())
	if err != nil {
		_ = out.Error(ErrCodeDatabase, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	ids := opts.IDs
	if ids == nil {
		ids = repo.UUIDv7Generator{}
	}

	return &app{
		path:    cfg.Database.Primary,
		store:   st,
		primary: st.Primary(store.WithLogger(logger)),
		replica: st.Replica(store.WithLogger(logger)),
		chat:    chat.New(ids),
		users:   repo.NewUsers(),
		logger:  logger,
		out:     out,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

