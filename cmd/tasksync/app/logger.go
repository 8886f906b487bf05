package app

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync/pkg/logging"
)

// warnings receives configuration warnings; tests swap it out.
var warnings io.Writer = os.Stderr

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// NewLogger builds the CLI logger. The level comes from, in order:
// --log-level (or TASKSYNC_LOG_LEVEL), then -q, then -v, then info.
// Debug and trace add the caller.
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)
	return logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
}

func determineLogLevel(config *Config) string {
	switch {
	case config.LogLevel != "":
		level := validateLogLevel(config.LogLevel)
		if level != config.LogLevel {
			warn("invalid log level %q (want one of %s), using %q", config.LogLevel, strings.Join(logLevels, ", "), level)
		}
		return level
	case config.Quiet:
		if config.Verbose {
			warn("both --verbose and --quiet given, --quiet wins")
		}
		return "warn"
	case config.Verbose:
		return "debug"
	}
	return "info"
}

// validateLogLevel returns level when it is a known level and "info"
// otherwise. Matching is case-sensitive.
func validateLogLevel(level string) string {
	if slices.Contains(logLevels, level) {
		return level
	}
	return "info"
}

func warn(format string, args ...any) {
	fmt.Fprintf(warnings, "warning: "+format+"\n", args...)
}
