// Package app provides the application context and dependency management
// for the tasksync CLI. It centralizes configuration, logging and the
// lifecycle of the realtime clients that commands create.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync"
	"github.com/agentstation/tasksync/internal/appcontext"
	"github.com/agentstation/tasksync/pkg/api"
	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/session"
)

var _ appcontext.Interface = (*App)(nil)

// App represents the tasksync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Realtime clients handed out by Client, closed on Shutdown
	mu      sync.Mutex
	clients []tasksync.Client
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment and ~/.tasksync.yaml and
// can be replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// APIURL returns the configured REST API base.
func (a *App) APIURL() string {
	return a.config.APIURL
}

// Project returns the project watch opens by default.
func (a *App) Project() string {
	return a.config.Project
}

// ServerAddr returns the listen address for serve.
func (a *App) ServerAddr() string {
	return a.config.ServerAddr
}

// CredentialsFile returns the credentials file store.
func (a *App) CredentialsFile() *session.FileCredentials {
	return session.NewFileCredentials(a.config.CredentialsFile)
}

// Credentials returns a fixed token when one is configured, and the
// credentials file otherwise.
func (a *App) Credentials() session.Credentials {
	if a.config.Token != "" {
		return session.Static{BearerToken: a.config.Token, User: a.config.UserID}
	}
	return a.CredentialsFile()
}

// API returns a REST client for the configured backend.
func (a *App) API() (*api.Client, error) {
	c, err := api.New(a.config.APIURL, a.Credentials())
	if err != nil {
		return nil, errors.WrapResource("create", "api client", a.config.APIURL, err)
	}
	return c, nil
}

// Client creates a realtime client from configuration followed by opts.
// The client is closed by Shutdown if the caller has not done so.
func (a *App) Client(opts ...tasksync.Option) (tasksync.Client, error) {
	base := []tasksync.Option{
		tasksync.WithAPIBase(a.config.APIURL),
		tasksync.WithCredentials(a.Credentials()),
		tasksync.WithLogger(a.logger),
	}
	c, err := tasksync.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", a.config.APIURL, err)
	}

	a.mu.Lock()
	a.clients = append(a.clients, c)
	a.mu.Unlock()
	return c, nil
}

// Shutdown performs graceful shutdown of the application.
// It closes every realtime client handed out by Client.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	clients := a.clients
	a.clients = nil
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, c := range clients {
			if err := c.Close(); err != nil {
				a.logger.Error().Err(err).Msg("Failed to close client during shutdown")
			}
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "cannot be nil")
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
