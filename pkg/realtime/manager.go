package realtime

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync/pkg/constants"
	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/logging"
)

// TokenSource yields the bearer credential, if one is available.
type TokenSource interface {
	Token() (string, bool)
}

// Manager maintains at most one live realtime connection per session.
type Manager struct {
	base        *url.URL
	tokens      TokenSource
	dialer      Dialer
	sched       Scheduler
	jitter      JitterFunc
	backoff     Backoff
	dialTimeout time.Duration
	onOpen      func()
	onFrame     func([]byte)
	onState     func(State)
	logger      *zerolog.Logger

	inbox   chan func()
	stopped chan struct{}
	started atomic.Bool

	mu       sync.RWMutex
	snapshot State

	// Everything below is owned by the loop goroutine.
	ctx        context.Context
	state      State
	conn       Conn
	dialCancel context.CancelFunc
	stopTimer  func() bool
	timerID    uint64
}

// NewManager creates a manager for the API rooted at apiBase. Nothing
// happens until Run is started and Connect is called.
func NewManager(apiBase *url.URL, tokens TokenSource, opts ...Option) (*Manager, error) {
	if apiBase == nil {
		return nil, errors.NewValidationError("api_url", nil, "is required")
	}
	if tokens == nil {
		return nil, errors.NewValidationError("credentials", nil, "cannot be nil")
	}
	m := &Manager{
		base:        apiBase,
		tokens:      tokens,
		dialer:      NewWSDialer(),
		sched:       SystemScheduler{},
		jitter:      RandomJitter,
		backoff:     DefaultBackoff,
		dialTimeout: constants.DialTimeout,
		logger:      logging.Component("realtime"),
		inbox:       make(chan func(), constants.ChannelBufferSize),
		stopped:     make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	// Fail early on an unusable base rather than on every attempt.
	if _, err := EndpointURL(apiBase, ""); err != nil {
		return nil, err
	}
	return m, nil
}

// Run processes connection events until ctx is done, then tears the
// connection down. It may be called once.
func (m *Manager) Run(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return errors.NewValidationError("manager", nil, "already running")
	}
	m.ctx = ctx
	defer close(m.stopped)

	for {
		select {
		case <-ctx.Done():
			m.teardown()
			return nil
		case fn := <-m.inbox:
			fn()
		}
	}
}

// Connect starts a session: it clears a previous manual disconnect and
// attempts a connection unless one is already open or in progress.
func (m *Manager) Connect() {
	m.post(func() {
		m.state.ManualDisconnect = false
		m.attempt("connect")
	})
}

// Disconnect ends the session: no reconnect is scheduled afterwards, the
// pending timer is cancelled and the transport closed. When the loop is
// running it returns after the teardown has been applied. It must not be
// called from an OnOpen, OnFrame or OnStateChange hook.
func (m *Manager) Disconnect() {
	done := make(chan struct{})
	if !m.post(func() {
		m.teardown()
		close(done)
	}) || !m.started.Load() {
		return
	}
	select {
	case <-done:
	case <-m.stopped:
	}
}

// State returns the latest connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Done is closed once Run has returned.
func (m *Manager) Done() <-chan struct{} {
	return m.stopped
}

// post queues fn for the loop. It reports false once the loop has stopped.
func (m *Manager) post(fn func()) bool {
	select {
	case <-m.stopped:
		return false
	default:
	}
	select {
	case m.inbox <- fn:
		return true
	case <-m.stopped:
		return false
	}
}

func (m *Manager) attempt(reason string) {
	if m.state.Status == Open || m.state.Status == Connecting {
		m.logger.Debug().Str("status", m.state.Status.String()).Str("reason", reason).Msg("Connection already active; attempt skipped")
		return
	}

	token, ok := m.tokens.Token()
	if !ok {
		m.logger.Debug().Str("reason", reason).Msg("No credential available; connection not attempted")
		m.publish()
		return
	}
	endpoint, err := EndpointURL(m.base, token)
	if err != nil {
		m.logger.Error().Err(err).Msg("Cannot derive realtime endpoint")
		return
	}

	m.cancelTimer()
	m.state.Generation++
	m.state.Status = Connecting
	gen := m.state.Generation
	m.publish()

	ctx, cancel := context.WithTimeout(m.ctx, m.dialTimeout)
	m.dialCancel = cancel
	m.logger.Debug().
		Str("reason", reason).
		Uint64("generation", gen).
		Str("url", redact(endpoint)).
		Msg("Dialing realtime endpoint")

	go func() {
		defer cancel()
		conn, err := m.dialer.Dial(ctx, endpoint)
		if !m.post(func() { m.dialed(gen, conn, err) }) && conn != nil {
			_ = conn.Close()
		}
	}()
}

func (m *Manager) dialed(gen uint64, conn Conn, err error) {
	if gen != m.state.Generation || m.state.Status != Connecting {
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	m.dialCancel = nil

	if err != nil {
		m.logger.Warn().Err(err).Uint64("generation", gen).Msg("Realtime dial failed")
		m.state.Status = Disconnected
		m.scheduleReconnect()
		m.publish()
		return
	}

	m.conn = conn
	m.state.Status = Open
	m.state.RetryCount = 0
	m.cancelTimer()
	m.publish()
	m.logger.Info().Uint64("generation", gen).Msg("Realtime connected")

	go m.read(gen, conn)

	if m.onOpen != nil {
		m.onOpen()
	}
}

// read forwards frames from conn to the loop until the transport fails.
func (m *Manager) read(gen uint64, conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.post(func() { m.closed(gen, err) })
			return
		}
		if !m.post(func() { m.frame(gen, data) }) {
			_ = conn.Close()
			return
		}
	}
}

func (m *Manager) frame(gen uint64, data []byte) {
	if gen != m.state.Generation || m.state.Status != Open {
		return
	}
	if m.onFrame != nil {
		m.onFrame(data)
	}
}

func (m *Manager) closed(gen uint64, err error) {
	if gen != m.state.Generation || m.conn == nil {
		return
	}
	_ = m.conn.Close()
	m.conn = nil
	m.state.Status = Disconnected
	m.logger.Warn().Err(err).Uint64("generation", gen).Msg("Realtime connection lost")
	m.scheduleReconnect()
	m.publish()
}

// scheduleReconnect arms the reconnect timer unless one is already pending
// or the session was ended on purpose.
func (m *Manager) scheduleReconnect() {
	if m.state.ManualDisconnect {
		return
	}
	if m.state.PendingReconnect {
		m.logger.Debug().Msg("Reconnect already pending")
		return
	}

	m.state.RetryCount++
	delay := m.backoff.Delay(m.state.RetryCount, m.jitter)
	m.timerID++
	id := m.timerID
	m.stopTimer = m.sched.AfterFunc(delay, func() {
		m.post(func() { m.timerFired(id) })
	})
	m.state.PendingReconnect = true

	m.logger.Info().
		Int("attempt", m.state.RetryCount).
		Dur("delay", delay).
		Msg("Reconnect scheduled")
}

func (m *Manager) timerFired(id uint64) {
	if id != m.timerID || !m.state.PendingReconnect {
		return
	}
	m.stopTimer = nil
	m.state.PendingReconnect = false
	if m.state.ManualDisconnect {
		m.publish()
		return
	}
	m.attempt("reconnect")
}

// cancelTimer stops any pending reconnect and invalidates a firing that
// may already be queued.
func (m *Manager) cancelTimer() {
	if m.stopTimer != nil {
		m.stopTimer()
		m.stopTimer = nil
	}
	m.timerID++
	m.state.PendingReconnect = false
}

func (m *Manager) teardown() {
	m.state.ManualDisconnect = true
	m.cancelTimer()
	if m.dialCancel != nil {
		m.dialCancel()
		m.dialCancel = nil
	}
	if m.conn != nil || m.state.Status != Disconnected {
		m.state.Status = Closing
		m.publish()
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.state.Generation++
	m.state.Status = Disconnected
	m.publish()
	m.logger.Debug().Msg("Realtime session closed")
}

func (m *Manager) publish() {
	m.mu.Lock()
	changed := m.snapshot != m.state
	m.snapshot = m.state
	m.mu.Unlock()

	if changed && m.onState != nil {
		m.onState(m.state)
	}
}
