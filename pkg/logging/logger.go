// Package logging wires zerolog for tasksync. Terminals get console output;
// anything else gets one JSON object per line.
//
// Library packages take a *zerolog.Logger from their caller and fall back
// to a Component logger:
//
//	logger := logging.Component("realtime")
//	logger.Info().Str("status", "open").Msg("realtime connected")
//
// Request-scoped fields travel on the context:
//
//	ctx = logging.WithProject(ctx, "p-1")
//	logging.FromContext(ctx).Debug().Msg("refreshing project todos")
package logging

import (
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	SetDefault(NewLoggerFromConfig(ConfigFromEnv()))
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return current.Load()
}

// SetDefault replaces the process-wide logger, including zerolog's global
// log.Logger.
func SetDefault(logger zerolog.Logger) {
	current.Store(&logger)
	log.Logger = logger
}

// Component returns a child of the default logger carrying a component field.
func Component(name string) *zerolog.Logger {
	l := Default().With().Str("component", name).Logger()
	return &l
}

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event { return Default().Debug() }

// Info starts an info event on the default logger.
func Info() *zerolog.Event { return Default().Info() }

// Warn starts a warn event on the default logger.
func Warn() *zerolog.Event { return Default().Warn() }

// Error starts an error event on the default logger.
func Error() *zerolog.Event { return Default().Error() }

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
