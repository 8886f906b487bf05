package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

// WithLogger stores logger on ctx. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger on ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	return Default()
}

// Ctx is FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// extend derives a child of the context logger and stores it back.
func extend(ctx context.Context, fn func(zerolog.Context) zerolog.Context) context.Context {
	l := fn(FromContext(ctx).With()).Logger()
	return WithLogger(ctx, &l)
}

// WithFields adds arbitrary fields to the context logger.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	return extend(ctx, func(c zerolog.Context) zerolog.Context {
		for k, v := range fields {
			c = addField(c, k, v)
		}
		return c
	})
}

// WithProject tags the context logger with a project id.
func WithProject(ctx context.Context, projectID string) context.Context {
	return extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("project_id", projectID) })
}

// WithTodo tags the context logger with a todo id.
func WithTodo(ctx context.Context, todoID string) context.Context {
	return extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("todo_id", todoID) })
}

// WithEvent tags the context logger with an inbound event kind.
func WithEvent(ctx context.Context, kind string) context.Context {
	return extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("event", kind) })
}

// WithGeneration tags the context logger with a connection generation.
func WithGeneration(ctx context.Context, gen uint64) context.Context {
	return extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Uint64("generation", gen) })
}

// WithOperation tags the context logger with the operation in progress.
func WithOperation(ctx context.Context, op string) context.Context {
	return extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("operation", op) })
}

// WithError attaches err to the context logger. A nil err returns ctx as is.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return extend(ctx, func(c zerolog.Context) zerolog.Context { return c.Err(err) })
}
