// Package server provides the HTTP development backend for tasksync: the REST
// API the client fetches from and the WebSocket endpoint it listens on, both
// backed by an in-memory store.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync/internal/server/events"
	"github.com/agentstation/tasksync/internal/server/events/adapters"
	"github.com/agentstation/tasksync/internal/server/memory"
	"github.com/agentstation/tasksync/internal/server/middleware"
	ws "github.com/agentstation/tasksync/internal/server/websocket"
	"github.com/agentstation/tasksync/pkg/constants"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	db        *memory.DB
	broker    *events.Broker
	wsHub     *ws.Hub
	limiter   *middleware.RateLimiter
	origins   middleware.Origins
	upgrader  websocket.Upgrader
	logger    *zerolog.Logger
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	startTime time.Time
}

// New creates a new server instance with the given configuration.
func New(cfg Config, logger *zerolog.Logger) (*Server, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = DefaultConfig().PathPrefix
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)

	// Subscribe transports to broker
	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	logger.Debug().Msg("WebSocket transport subscribed to event broker")

	db := memory.New(broker)
	seed := memory.DefaultSeed
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	if err := db.Load(seed); err != nil {
		return nil, fmt.Errorf("loading seed: %w", err)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}

	// With CORS disabled the browser cannot reach the REST API cross-origin
	// anyway, so the socket admits any origin.
	origins := middleware.NewOrigins(nil)
	if cfg.CORSEnabled {
		origins = middleware.NewOrigins(cfg.CORSOrigins)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		db:      db,
		broker:  broker,
		wsHub:   wsHub,
		limiter: limiter,
		origins: origins,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.CheckOrigin,
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}, nil
}

// Start starts background services (broker, WebSocket hub, rate limiter
// sweeper). Calling it more than once has no further effect.
func (s *Server) Start() {
	s.startOnce.Do(func() {
		s.spawn(s.broker.Run)
		s.spawn(s.wsHub.Run)
		if s.limiter != nil {
			s.spawn(s.limiter.Run)
		}
		s.logger.Debug().Msg("All background services started")
	})
}

func (s *Server) spawn(run func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		run(s.ctx)
	}()
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops the background services, closing every WebSocket client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("Background services shut down successfully")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// ListenAndServe serves on the configured address until ctx is done, then
// drains connections and shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.Start()

	httpServer := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", httpServer.Addr).
			Str("prefix", s.config.PathPrefix).
			Int("users", len(s.db.Users())).
			Msg("Server starting")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		_ = s.Shutdown(context.Background())
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	// Close WebSocket clients first; Shutdown does not wait for hijacked connections.
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info().Msg("Server stopped gracefully")
	return nil
}

// DB returns the in-memory store.
func (s *Server) DB() *memory.DB {
	return s.db
}

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub {
	return s.wsHub
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
