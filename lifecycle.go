package tasksync

import (
	"context"

	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/realtime"
)

// Lifecycle controls the realtime session.
type Lifecycle interface {
	// Start runs the connection loop in the background and connects.
	Start(ctx context.Context) error

	// Run is Start followed by waiting until ctx is done.
	Run(ctx context.Context) error

	// Connect starts a new session after Disconnect, e.g. after login.
	Connect()

	// Disconnect ends the session without reconnecting, e.g. on logout.
	// Store contents are kept.
	Disconnect()

	// Resync pulls authoritative state now, outside of a connection event.
	Resync(ctx context.Context) error

	// State returns the connection state.
	State() realtime.State

	// Close disconnects, stops the loop and waits for background work.
	Close() error
}

// Start implements Lifecycle.
func (c *client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.NewValidationError("client", nil, "is closed")
	}
	if c.started {
		return errors.NewValidationError("client", nil, "already started")
	}
	c.started = true

	ctx, c.cancel = context.WithCancel(ctx)
	go func() {
		if err := c.manager.Run(ctx); err != nil {
			c.logger.Error().Err(err).Msg("Connection loop stopped")
		}
	}()
	c.manager.Connect()

	c.logger.Info().Str("api_url", c.api.BaseURL().String()).Msg("Realtime session started")
	return nil
}

// Run implements Lifecycle.
func (c *client) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	<-c.manager.Done()
	return c.Close()
}

// Connect implements Lifecycle.
func (c *client) Connect() { c.manager.Connect() }

// Disconnect implements Lifecycle.
func (c *client) Disconnect() { c.manager.Disconnect() }

// Resync implements Lifecycle.
func (c *client) Resync(ctx context.Context) error { return c.resync.Sync(ctx) }

// State implements Lifecycle.
func (c *client) State() realtime.State { return c.manager.State() }

// Close implements Lifecycle. It is safe to call more than once.
func (c *client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	started, cancel := c.started, c.cancel
	c.mu.Unlock()

	if started {
		c.manager.Disconnect()
		cancel()
		<-c.manager.Done()
	}
	c.resync.Close()

	c.logger.Debug().Msg("Client closed")
	return nil
}
