// Package watch provides the watch command, which keeps a realtime
// session open and reports connection state and every applied event.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/tasksync/internal/appcontext"
	"github.com/agentstation/tasksync/pkg/errors"
)

// Flags holds the watch command flags.
type Flags struct {
	Project string
	For     time.Duration
}

// NewCommand creates the watch command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "watch",
		GroupID: "core",
		Short:   "Stay connected and print realtime changes",
		Long: `Watch opens the realtime connection, keeps the local stores converged with
the backend and prints every connection state change and applied event.

The connection is re-established with exponential backoff when it drops,
and authoritative state is pulled over REST after each (re)connection.
With --project, that project is treated as open: its todos are refreshed
silently on reconnect, and being removed from it sends the view home.`,
		Example: `  tasksync watch                        # Until interrupted
  tasksync watch --project p-123        # With a project open
  tasksync watch --for 30s -v           # For a while, with debug logs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := app.Credentials().Token(); !ok {
				return fmt.Errorf("%w: run 'tasksync login' or pass --token", errors.ErrNoCredential)
			}
			if flags.Project == "" {
				flags.Project = app.Project()
			}

			ctx := cmd.Context()
			if flags.For > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, flags.For)
				defer cancel()
			}

			client, err := app.Client()
			if err != nil {
				return err
			}
			w := New(cmd.OutOrStdout(), client, app.Logger())
			return w.Run(ctx, flags.Project)
		},
	}

	cmd.Flags().StringVarP(&flags.Project, "project", "p", "", "Project to treat as open")
	cmd.Flags().DurationVar(&flags.For, "for", 0, "Stop after this long (0 runs until interrupted)")

	return cmd
}
