// Package servertest runs the development backend in-process for tests.
package servertest

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tasksync/internal/server"
	"github.com/agentstation/tasksync/internal/server/memory"
)

// Tokens of memory.DefaultSeed.
const (
	AliceToken = "alice-token"
	BobToken   = "bob-token"
)

// Backend is a started dev server behind an httptest listener.
type Backend struct {
	*server.Server
	HTTP *httptest.Server
	// APIURL is the REST base, e.g. http://127.0.0.1:53122/api.
	APIURL string
}

// New starts a backend with the default seed and rate limiting disabled.
// It is shut down when the test ends.
func New(t testing.TB, opts ...func(*server.Config)) *Backend {
	t.Helper()
	cfg := server.DefaultConfig()
	cfg.RateLimit = 0
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := zerolog.Nop()
	srv, err := server.New(cfg, &logger)
	require.NoError(t, err)
	srv.Start()

	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		hs.Close()
	})
	return &Backend{Server: srv, HTTP: hs, APIURL: hs.URL + cfg.PathPrefix}
}

// WithSeed replaces the default users.
func WithSeed(seed memory.Seed) func(*server.Config) {
	return func(c *server.Config) { c.Seed = &seed }
}
