package realtime

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync/pkg/errors"
)

// Option is a function that configures a Manager
type Option func(*Manager) error

// WithDialer replaces the gorilla/websocket dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) error {
		if d == nil {
			return errors.NewValidationError("dialer", nil, "cannot be nil")
		}
		m.dialer = d
		return nil
	}
}

// WithScheduler replaces the wall-clock reconnect scheduler.
func WithScheduler(s Scheduler) Option {
	return func(m *Manager) error {
		if s == nil {
			return errors.NewValidationError("scheduler", nil, "cannot be nil")
		}
		m.sched = s
		return nil
	}
}

// WithJitter replaces the random jitter source.
func WithJitter(j JitterFunc) Option {
	return func(m *Manager) error {
		m.jitter = j
		return nil
	}
}

// WithBackoff replaces the reconnection delay policy.
func WithBackoff(b Backoff) Option {
	return func(m *Manager) error {
		if b.Base <= 0 || b.Max < b.Base || b.Jitter < 0 {
			return errors.NewValidationError("backoff", b, "requires 0 < base <= max and jitter >= 0")
		}
		m.backoff = b
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(m *Manager) error {
		if l != nil {
			m.logger = l
		}
		return nil
	}
}

// OnOpen registers fn to run on every Connecting to Open transition.
// It runs on the loop goroutine and must not block.
func OnOpen(fn func()) Option {
	return func(m *Manager) error {
		m.onOpen = fn
		return nil
	}
}

// OnFrame registers the handler for inbound frames. Frames are delivered
// one at a time in arrival order on the loop goroutine.
func OnFrame(fn func(raw []byte)) Option {
	return func(m *Manager) error {
		m.onFrame = fn
		return nil
	}
}

// OnStateChange registers fn to receive every state change.
func OnStateChange(fn func(State)) Option {
	return func(m *Manager) error {
		m.onState = fn
		return nil
	}
}
