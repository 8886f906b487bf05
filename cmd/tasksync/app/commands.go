package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tasksync/cmd/tasksync/cmd/auth"
	"github.com/agentstation/tasksync/cmd/tasksync/cmd/serve"
	"github.com/agentstation/tasksync/cmd/tasksync/cmd/status"
	"github.com/agentstation/tasksync/cmd/tasksync/cmd/watch"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(watch.NewCommand(a))
	rootCmd.AddCommand(status.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Management commands
	for _, cmd := range auth.NewCommands(a) {
		rootCmd.AddCommand(cmd)
	}

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("tasksync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
