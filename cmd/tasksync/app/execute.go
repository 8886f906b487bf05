package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/tasksync/pkg/errors"
)

// Execute runs the CLI with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tasksync",
		Short:   "Realtime todo and project sync client",
		Version: a.version,
		Long: `tasksync keeps a local view of your todos, projects and notifications
converged with the tasksync backend over a single WebSocket connection.

It reconnects with exponential backoff, re-pulls authoritative state over
REST after every (re)connection, and ships a small in-memory backend for
local development.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Sync Commands:"},
		&cobra.Group{ID: "management", Title: "Account and Backend Commands:"},
	)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.tasksync.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml, wide")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("api-url", "", "REST API base (default "+a.config.APIURL+")")
	flags.String("token", "", "bearer token (overrides the credentials file)")

	rootCmd.SetVersionTemplate("tasksync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand runs before every command. It reloads the config when
// --config is given, applies the global flags and rebuilds the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	fs := cmd.Flags()
	if file := flagValue(fs.GetString, "config"); file != "" {
		config, err := LoadConfig(file)
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.UpdateFromFlags(Flags{
		Verbose:  flagValue(fs.GetBool, "verbose"),
		Quiet:    flagValue(fs.GetBool, "quiet"),
		NoColor:  flagValue(fs.GetBool, "no-color"),
		Format:   flagValue(fs.GetString, "format"),
		LogLevel: flagValue(fs.GetString, "log-level"),
		APIURL:   flagValue(fs.GetString, "api-url"),
		Token:    flagValue(fs.GetString, "token"),
	})

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// flagValue reads a persistent flag registered in createRootCommand; a
// lookup failure is a programming error.
func flagValue[T any](get func(string) (T, error), name string) T {
	v, err := get(name)
	if err != nil {
		panic(fmt.Sprintf("flag %s: %v", name, err))
	}
	return v
}

// Process exit codes.
const (
	ExitFailure     = 1
	ExitUsage       = 2
	ExitAuth        = 3
	ExitUnavailable = 4
	ExitInterrupted = 130
)

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.IsUnauthorized(err), stderrors.Is(err, errors.ErrNoCredential):
		return ExitAuth
	case errors.IsUnavailable(err):
		return ExitUnavailable
	case errors.IsValidationError(err):
		return ExitUsage
	}
	return ExitFailure
}

// ExitOnError prints err and exits with its ExitCode. It returns when err
// is nil.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(ExitCode(err))
}
