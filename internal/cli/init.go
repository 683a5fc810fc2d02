package cli

import (
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and apply the schema",
		Long: `Create the primary database if it does not exist, apply pragmas,
schema and migrations, then open every replica to check it is reachable.

Safe to run more than once.

Examples:
  dbtask init --db ./chat.db
  dbtask init --config ./dbtask.yaml --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	a, err := openApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	if err := a.store.Ping(ctx); err != nil {
		return a.out.Fail("ping failed", err)
	}
	version, err := a.store.SchemaVersion(ctx)
	if err != nil {
		return a.out.Fail("read schema version", err)
	}

	a.logger.Info("database ready", "path", a.path, "schema_version", version)
	return a.out.Success(initView{
		Path:          a.path,
		SchemaVersion: version,
		Replicas:      a.store.ReplicaCount(),
	})
}
