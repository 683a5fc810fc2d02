package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/dbtask/internal/task"
)

// NewUserCommand creates the user command and its subcommands.
func NewUserCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	cmd.AddCommand(newUserAddCommand(opts))
	cmd.AddCommand(newUserShowCommand(opts))
	cmd.AddCommand(newUserListCommand(opts))
	cmd.AddCommand(newUserRenameCommand(opts))

	return cmd
}

func newUserAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Register a user (no-op if the ID exists)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user id", args[0])
			if err != nil {
				return err
			}
			a, err := openApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			reg, err := task.Run(commandContext(cmd), a.chat.Register(id, args[1]), a.primary)
			if err != nil {
				return a.out.Fail("register failed", err)
			}
			return a.out.Success(registrationView{reg})
		},
	}
}

func newUserShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a user (reads from a replica)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user id", args[0])
			if err != nil {
				return err
			}
			a, err := openApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			u, err := task.Run(commandContext(cmd), a.users.Get(id), a.replica)
			if err != nil {
				return a.out.Fail("show failed", err)
			}
			return a.out.Success(userView{u})
		},
	}
}

func newUserListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users (reads from a replica)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			users, err := task.Run(commandContext(cmd), a.users.List(), a.replica)
			if err != nil {
				return a.out.Fail("list failed", err)
			}
			return a.out.Success(usersView(users))
		},
	}
}

func newUserRenameCommand(opts *RootOptions) *cobra.Command {
	var announce string

	cmd := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a user, optionally posting an announcement in the same transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user id", args[0])
			if err != nil {
				return err
			}
			a, err := openApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := commandContext(cmd)
			if announce == "" {
				u, err := task.Run(ctx, a.users.Rename(id, args[1]), a.primary)
				if err != nil {
					return a.out.Fail("rename failed", err)
				}
				return a.out.Success(userView{u})
			}

			posted, err := task.Run(ctx, a.chat.Rename(id, args[1], announce), a.primary)
			if err != nil {
				return a.out.Fail("rename failed", err)
			}
			return a.out.Success(postedView{posted})
		},
	}

	cmd.Flags().StringVar(&announce, "announce", "", "message to post as the renamed user")
	return cmd
}

// parseID parses a decimal int64 argument.
func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s %q: must be an integer", what, s))
	}
	return id, nil
}
