package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dbtask/internal/chat"
	"github.com/roach88/dbtask/internal/task"
)

// NewPostCommand creates the post command.
func NewPostCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "post <user-id> <body...>",
		Short: "Post a message as a user",
		Long: `Post a message and read back its author in one read-write transaction
on the primary.

Examples:
  dbtask post 7 hello there
  dbtask post 7 "hello there" --format json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user id", args[0])
			if err != nil {
				return err
			}
			a, err := openApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			body := strings.Join(args[1:], " ")
			posted, err := task.Run(commandContext(cmd), a.chat.Post(body, userID), a.primary)
			if err != nil {
				return a.out.Fail("post failed", err)
			}
			a.logger.Debug("message posted", "id", posted.Message.ID, "user_id", userID)
			return a.out.Success(postedView{posted})
		},
	}
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(opts *RootOptions) *cobra.Command {
	var primary bool

	cmd := &cobra.Command{
		Use:   "timeline <user-id>",
		Short: "Show a user's messages (reads from a replica)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user id", args[0])
			if err != nil {
				return err
			}
			a, err := openApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := commandContext(cmd)
			var fut *task.Future[chat.Timeline]
			if primary {
				fut = task.ExecuteReadOnly(ctx, a.chat.Timeline(userID), a.primary)
			} else {
				fut = task.Execute(ctx, a.chat.Timeline(userID), a.replica)
			}
			tl, err := fut.Await(ctx)
			if err != nil {
				return a.out.Fail("timeline failed", err)
			}
			return a.out.Success(timelineView{tl})
		},
	}

	cmd.Flags().BoolVar(&primary, "primary", false, "read from the primary instead of a replica")
	return cmd
}

// NewRetractCommand creates the retract command.
func NewRetractCommand(opts *RootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "retract <message-id>",
		Short: "Delete a message and report how many the user has left",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user id", user)
			if err != nil {
				return err
			}
			a, err := openApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			left, err := task.Run(commandContext(cmd), a.chat.Retract(args[0], userID), a.primary)
			if err != nil {
				return a.out.Fail("retract failed", err)
			}
			return a.out.Success(retractView{MessageID: args[0], Remaining: left})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "ID of the message author (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
