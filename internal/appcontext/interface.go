// Package appcontext provides the shared application context interface
// used by all commands. This eliminates interface duplication across
// command packages and provides a single source of truth for app dependencies.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync"
	"github.com/agentstation/tasksync/pkg/api"
	"github.com/agentstation/tasksync/pkg/session"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/tasksync/app implements it; commands accept the
// interface so tests can substitute a Mock.
type Interface interface {
	// APIURL returns the REST API base, e.g. http://localhost:8080/api.
	APIURL() string

	// Credentials returns the credential source for the configured user:
	// the token from config when set, otherwise the credentials file.
	Credentials() session.Credentials

	// CredentialsFile returns the on-disk credential store used by login and logout.
	CredentialsFile() *session.FileCredentials

	// API returns a REST client for the configured backend.
	API() (*api.Client, error)

	// Client builds a realtime client. Extra options are applied after the
	// ones derived from configuration.
	Client(opts ...tasksync.Option) (tasksync.Client, error)

	// Project returns the project to open by default, or "".
	Project() string

	// ServerAddr returns the listen address of the development backend.
	ServerAddr() string

	// Logger returns the configured logger instance.
	// Commands should use this for all logging operations.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, etc).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
