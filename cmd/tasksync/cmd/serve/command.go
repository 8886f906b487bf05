// Package serve provides the serve command, which runs the in-memory
// development backend.
package serve

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/tasksync/internal/appcontext"
	"github.com/agentstation/tasksync/internal/server"
	"github.com/agentstation/tasksync/internal/server/memory"
	"github.com/agentstation/tasksync/pkg/errors"
)

// Flags holds the serve command flags.
type Flags struct {
	Addr         string
	Seed         string
	RateLimit    int
	Prefix       string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewCommand creates the serve command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Run the in-memory development backend",
		Long: `Serve starts a development backend that keeps users, projects, todos and
notifications in memory.

Features:
  - REST endpoints for todos, projects, members and notifications
  - WebSocket endpoint (/api/ws) pushing every change to affected users
  - Bearer token authentication (header or ?token= query parameter)
  - Rate limiting (requests per minute per user)
  - CORS support for web applications
  - Graceful shutdown with connection draining

Without --seed, two users are created: alice (alice-token) and bob (bob-token).`,
		Example: `  tasksync serve                           # localhost:8080
  tasksync serve --addr :9000 --seed users.yaml
  tasksync serve --rate-limit 0            # Disable rate limiting`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.Addr == "" {
				flags.Addr = app.ServerAddr()
			}
			cfg, err := BuildConfig(flags)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg, app.Logger())
			if err != nil {
				return errors.WrapResource("create", "server", cfg.Addr(), err)
			}
			cmd.Printf("Serving on http://%s%s (realtime at ws://%s%s/ws)\n", cfg.Addr(), cfg.PathPrefix, cfg.Addr(), cfg.PathPrefix)
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&flags.Addr, "addr", "", "Listen address (default "+app.ServerAddr()+")")
	cmd.Flags().StringVar(&flags.Seed, "seed", "", "YAML file with the users to create")
	cmd.Flags().IntVar(&flags.RateLimit, "rate-limit", defaults.RateLimit, "Requests per minute per user (0 to disable)")
	cmd.Flags().StringVar(&flags.Prefix, "prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().StringSliceVar(&flags.CORSOrigins, "cors-origins", nil, "Allowed CORS origins (comma-separated, default all)")
	cmd.Flags().DurationVar(&flags.ReadTimeout, "read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().DurationVar(&flags.WriteTimeout, "write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().DurationVar(&flags.IdleTimeout, "idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	return cmd
}

// BuildConfig turns flags into a server configuration, reading the seed file if given.
func BuildConfig(flags *Flags) (server.Config, error) {
	cfg := server.DefaultConfig()

	host, portStr, err := net.SplitHostPort(flags.Addr)
	if err != nil {
		return cfg, errors.NewValidationError("addr", flags.Addr, "must be host:port")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return cfg, errors.WrapValidation("addr", err)
	}
	if port < 0 || port > 65535 {
		return cfg, errors.NewValidationError("addr", flags.Addr, "has an invalid port")
	}
	cfg.Host = host
	cfg.Port = port

	if flags.Prefix != "" {
		cfg.PathPrefix = flags.Prefix
	}
	cfg.RateLimit = flags.RateLimit
	if len(flags.CORSOrigins) > 0 {
		cfg.CORSOrigins = flags.CORSOrigins
	}
	if flags.ReadTimeout > 0 {
		cfg.ReadTimeout = flags.ReadTimeout
	}
	if flags.WriteTimeout > 0 {
		cfg.WriteTimeout = flags.WriteTimeout
	}
	if flags.IdleTimeout > 0 {
		cfg.IdleTimeout = flags.IdleTimeout
	}

	if flags.Seed != "" {
		data, err := os.ReadFile(flags.Seed)
		if err != nil {
			return cfg, errors.WrapIO("read", flags.Seed, err)
		}
		seed, err := memory.ParseSeed(data)
		if err != nil {
			return cfg, err
		}
		cfg.Seed = &seed
	}
	return cfg, nil
}
