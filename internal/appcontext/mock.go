package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync"
	"github.com/agentstation/tasksync/pkg/api"
	"github.com/agentstation/tasksync/pkg/session"
)

// Mock provides a mock implementation of Interface for testing.
// Plain fields hold static values; function fields override behavior.
// The zero Mock talks to the default API base with no credentials.
type Mock struct {
	APIURLValue      string
	CredentialsValue session.Credentials
	CredentialsPath  string
	ProjectValue     string
	ServerAddrValue  string
	Format           string
	LoggerValue      *zerolog.Logger
	VersionValue     string
	ClientFunc       func(...tasksync.Option) (tasksync.Client, error)
	APIFunc          func() (*api.Client, error)
}

var _ Interface = (*Mock)(nil)

// APIURL returns APIURLValue.
func (m *Mock) APIURL() string { return m.APIURLValue }

// Credentials returns CredentialsValue, falling back to the credentials file.
func (m *Mock) Credentials() session.Credentials {
	if m.CredentialsValue != nil {
		return m.CredentialsValue
	}
	return m.CredentialsFile()
}

// CredentialsFile returns a file store at CredentialsPath.
func (m *Mock) CredentialsFile() *session.FileCredentials {
	return session.NewFileCredentials(m.CredentialsPath)
}

// API returns APIFunc's client or one built against APIURLValue.
func (m *Mock) API() (*api.Client, error) {
	if m.APIFunc != nil {
		return m.APIFunc()
	}
	return api.New(m.APIURLValue, m.Credentials())
}

// Client returns ClientFunc's client or one built against APIURLValue.
func (m *Mock) Client(opts ...tasksync.Option) (tasksync.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(opts...)
	}
	base := []tasksync.Option{
		tasksync.WithCredentials(m.Credentials()),
		tasksync.WithLogger(m.Logger()),
	}
	if m.APIURLValue != "" {
		base = append(base, tasksync.WithAPIBase(m.APIURLValue))
	}
	return tasksync.New(append(base, opts...)...)
}

// Project returns ProjectValue.
func (m *Mock) Project() string { return m.ProjectValue }

// ServerAddr returns ServerAddrValue.
func (m *Mock) ServerAddr() string { return m.ServerAddrValue }

// Logger returns LoggerValue or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerValue != nil {
		return m.LoggerValue
	}
	nop := zerolog.Nop()
	return &nop
}

// OutputFormat returns Format.
func (m *Mock) OutputFormat() string { return m.Format }

// Version returns VersionValue or "test".
func (m *Mock) Version() string {
	if m.VersionValue != "" {
		return m.VersionValue
	}
	return "test"
}

// Commit returns a fixed value.
func (m *Mock) Commit() string { return "test-commit" }

// Date returns a fixed value.
func (m *Mock) Date() string { return "2026-01-01" }

// BuiltBy returns a fixed value.
func (m *Mock) BuiltBy() string { return "test" }
