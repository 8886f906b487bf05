// Package constants provides shared constants used throughout the tasksync codebase.
// This includes timeouts, reconnection policy, limits, file permissions and other
// values that should be consistent across the library, the CLI and the dev server.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for REST requests to the backend
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// ResyncTimeout bounds a single bootstrap/resync pull after a (re)connection
	ResyncTimeout = 30 * time.Second

	// DialTimeout is the timeout for completing the WebSocket handshake
	DialTimeout = 10 * time.Second

	// ShutdownTimeout is how long graceful shutdown may take
	ShutdownTimeout = 5 * time.Second
)

// Reconnection policy for the realtime connection.
const (
	// ReconnectBaseDelay is the delay before the first reconnection attempt
	ReconnectBaseDelay = 1000 * time.Millisecond

	// ReconnectJitterMax is the upper bound (exclusive) of the random jitter added to each delay
	ReconnectJitterMax = 1000 * time.Millisecond

	// ReconnectMaxDelay caps any scheduled reconnection delay, jitter included
	ReconnectMaxDelay = 30000 * time.Millisecond
)

// WebSocket keepalive constants
const (
	// WriteWait is the time allowed to write a message to the peer
	WriteWait = 10 * time.Second

	// PongWait is the time allowed to read the next pong message from the peer
	PongWait = 60 * time.Second

	// PingPeriod is how often the server pings clients. Must be less than PongWait.
	PingPeriod = (PongWait * 9) / 10

	// MaxFrameSize is the maximum inbound frame size accepted by the realtime client
	MaxFrameSize = 1 << 20
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like credentials (rw-------)
	SecureFilePermissions = 0600
)

// Limit constants define various limits and capacities
const (
	// ChannelBufferSize is the default buffer size for channels
	ChannelBufferSize = 100

	// HubBufferSize is the per-client outbound buffer of the dev server hub
	HubBufferSize = 256
)

// Default values
const (
	// DefaultAPIURL is the REST base used when nothing is configured
	DefaultAPIURL = "http://localhost:8080/api"

	// DefaultServerAddr is the listen address of the development backend
	DefaultServerAddr = "localhost:8080"

	// DefaultCredentialsPath is the default location of the credentials file
	DefaultCredentialsPath = "~/.tasksync/credentials.yaml"

	// TokenQueryParam is the query parameter carrying the bearer token on the realtime endpoint
	TokenQueryParam = "token"

	// RealtimePath is appended to the API base to form the realtime endpoint
	RealtimePath = "ws"
)
