package realtime_test

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/logging"
	"github.com/agentstation/tasksync/pkg/realtime"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
	settle  = 50 * time.Millisecond
)

type harness struct {
	m      *realtime.Manager
	dialer *fakeDialer
	sched  *fakeScheduler
	opens  atomic.Int32

	mu       sync.Mutex
	frames   []string
	statuses []realtime.Status
}

func newHarness(t *testing.T, tokens realtime.TokenSource, opts ...realtime.Option) *harness {
	t.Helper()
	h := &harness{dialer: &fakeDialer{}, sched: &fakeScheduler{}}
	base, err := url.Parse("http://localhost:8080/api")
	require.NoError(t, err)

	opts = append([]realtime.Option{
		realtime.WithDialer(h.dialer),
		realtime.WithScheduler(h.sched),
		realtime.WithJitter(fixedJitter),
		realtime.WithLogger(logging.NewNopLogger()),
		realtime.OnOpen(func() { h.opens.Add(1) }),
		realtime.OnFrame(func(raw []byte) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.frames = append(h.frames, string(raw))
		}),
		realtime.OnStateChange(func(s realtime.State) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.statuses = append(h.statuses, s.Status)
		}),
	}, opts...)

	h.m, err = realtime.NewManager(base, tokens, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = h.m.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-h.m.Done()
	})
	return h
}

func (h *harness) waitStatus(t *testing.T, want realtime.Status) {
	t.Helper()
	require.Eventually(t, func() bool { return h.m.State().Status == want }, waitFor, tick,
		"status never became %s (now %s)", want, h.m.State().Status)
}

func (h *harness) waitPending(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return h.m.State().PendingReconnect }, waitFor, tick)
}

func (h *harness) Frames() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.frames...)
}

func (h *harness) Statuses() []realtime.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]realtime.Status(nil), h.statuses...)
}

func TestNewManagerValidation(t *testing.T) {
	base, _ := url.Parse("http://localhost/api")
	ftp, _ := url.Parse("ftp://localhost/api")

	tests := []struct {
		name   string
		base   *url.URL
		tokens realtime.TokenSource
		opts   []realtime.Option
	}{
		{"nil base", nil, staticToken("x"), nil},
		{"nil tokens", base, nil, nil},
		{"bad scheme", ftp, staticToken("x"), nil},
		{"nil dialer", base, staticToken("x"), []realtime.Option{realtime.WithDialer(nil)}},
		{"nil scheduler", base, staticToken("x"), []realtime.Option{realtime.WithScheduler(nil)}},
		{"bad backoff", base, staticToken("x"), []realtime.Option{realtime.WithBackoff(realtime.Backoff{Base: time.Second, Max: time.Millisecond})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := realtime.NewManager(tt.base, tt.tokens, tt.opts...)
			assert.True(t, errors.IsValidationError(err), "got %v", err)
		})
	}
}

func TestRunOnlyOnce(t *testing.T) {
	h := newHarness(t, staticToken("tok"))
	h.m.Connect()
	h.waitStatus(t, realtime.Open)

	err := h.m.Run(context.Background())
	assert.True(t, errors.IsValidationError(err), "got %v", err)
}

func TestConnectOpens(t *testing.T) {
	h := newHarness(t, staticToken("tok"))

	h.m.Connect()
	h.waitStatus(t, realtime.Open)

	assert.Equal(t, "ws://localhost:8080/api/ws?token=tok", h.dialer.Endpoint(0))
	assert.EqualValues(t, 1, h.opens.Load())
	st := h.m.State()
	assert.Zero(t, st.RetryCount)
	assert.False(t, st.PendingReconnect)
	assert.False(t, st.ManualDisconnect)
	assert.Equal(t, []realtime.Status{realtime.Connecting, realtime.Open}, h.Statuses())
}

func TestConnectWithoutCredentialStaysIdle(t *testing.T) {
	h := newHarness(t, staticToken(""))

	h.m.Connect()
	assert.Never(t, func() bool {
		return h.dialer.Dials() > 0 || h.sched.Outstanding() > 0
	}, settle, tick)

	st := h.m.State()
	assert.Equal(t, realtime.Disconnected, st.Status)
	assert.Zero(t, st.RetryCount)
	assert.False(t, st.PendingReconnect)
}

func TestCredentialReadBeforeEveryAttempt(t *testing.T) {
	var calls atomic.Int32
	tokens := tokenFunc(func() (string, bool) {
		n := calls.Add(1)
		return "tok" + string(rune('0'+n)), true
	})
	h := newHarness(t, tokens)

	h.m.Connect()
	h.waitStatus(t, realtime.Open)
	h.dialer.Conn(0).Drop(errRefused)
	h.waitPending(t)
	require.True(t, h.sched.Fire())
	h.waitStatus(t, realtime.Open)

	assert.Equal(t, "ws://localhost:8080/api/ws?token=tok1", h.dialer.Endpoint(0))
	assert.Equal(t, "ws://localhost:8080/api/ws?token=tok2", h.dialer.Endpoint(1))
}

func TestConnectWhileActiveIsSkipped(t *testing.T) {
	h := newHarness(t, staticToken("tok"))

	h.m.Connect()
	h.waitStatus(t, realtime.Open)
	h.m.Connect()
	h.m.Connect()

	assert.Never(t, func() bool { return h.dialer.Dials() > 1 }, settle, tick)
	assert.EqualValues(t, 1, h.opens.Load())
}

func TestReconnectAfterDrop(t *testing.T) {
	h := newHarness(t, staticToken("tok"))

	h.m.Connect()
	h.waitStatus(t, realtime.Open)

	h.dialer.Conn(0).Drop(errRefused)
	h.waitPending(t)

	st := h.m.State()
	assert.Equal(t, realtime.Disconnected, st.Status)
	assert.Equal(t, 1, st.RetryCount)
	assert.Equal(t, []time.Duration{1250 * time.Millisecond}, h.sched.Delays())
	assert.True(t, h.dialer.Conn(0).IsClosed())

	require.True(t, h.sched.Fire())
	h.waitStatus(t, realtime.Open)

	st = h.m.State()
	assert.Zero(t, st.RetryCount)
	assert.False(t, st.PendingReconnect)
	assert.Equal(t, 2, h.dialer.Dials())
	// One open for the initial connect and exactly one for the reconnect.
	assert.Never(t, func() bool { return h.opens.Load() != 2 }, settle, tick)
}

func TestBackoffGrowsWhileDialsFail(t *testing.T) {
	h := newHarness(t, staticToken("tok"))
	h.dialer.SetFailAll(true)

	h.m.Connect()
	for i := 1; i <= 6; i++ {
		h.waitPending(t)
		require.Equal(t, i, h.m.State().RetryCount)
		require.True(t, h.sched.Fire())
		require.Eventually(t, func() bool { return h.dialer.Dials() == i+1 }, waitFor, tick)
	}
	h.waitPending(t)

	want := []time.Duration{
		1250 * time.Millisecond,
		2250 * time.Millisecond,
		4250 * time.Millisecond,
		8250 * time.Millisecond,
		16250 * time.Millisecond,
		30000 * time.Millisecond,
		30000 * time.Millisecond,
	}
	assert.Equal(t, want, h.sched.Delays())
	assert.Equal(t, 1, h.sched.MaxOutstanding())

	h.dialer.SetFailAll(false)
	require.True(t, h.sched.Fire())
	h.waitStatus(t, realtime.Open)
	assert.Zero(t, h.m.State().RetryCount)
}

func TestSinglePendingReconnect(t *testing.T) {
	h := newHarness(t, staticToken("tok"))
	h.dialer.SetFailAll(true)

	h.m.Connect()
	h.waitPending(t)

	// Extra connects while a reconnect is pending dial again; each failure
	// must reuse the single reconnect slot.
	for i := range 5 {
		h.m.Connect()
		require.Eventually(t, func() bool { return h.dialer.Dials() == i+2 }, waitFor, tick)
		h.waitPending(t)
	}

	assert.Equal(t, 1, h.sched.MaxOutstanding())
	assert.Equal(t, 1, h.sched.Outstanding())
}

func TestNoReconnectAfterDisconnect(t *testing.T) {
	h := newHarness(t, staticToken("tok"))

	h.m.Connect()
	h.waitStatus(t, realtime.Open)
	conn := h.dialer.Conn(0)

	h.m.Disconnect()

	st := h.m.State()
	assert.Equal(t, realtime.Disconnected, st.Status)
	assert.True(t, st.ManualDisconnect)
	assert.True(t, conn.IsClosed())
	assert.Never(t, func() bool {
		return h.sched.Outstanding() > 0 || h.dialer.Dials() > 1
	}, settle, tick)
	assert.Contains(t, h.Statuses(), realtime.Closing)
}

func TestDisconnectCancelsPendingReconnect(t *testing.T) {
	h := newHarness(t, staticToken("tok"))

	h.m.Connect()
	h.waitStatus(t, realtime.Open)
	h.dialer.Conn(0).Drop(errRefused)
	h.waitPending(t)

	h.m.Disconnect()
	assert.Zero(t, h.sched.Outstanding())
	assert.False(t, h.m.State().PendingReconnect)

	// A timer that fired just before it was stopped must not reconnect.
	require.True(t, h.sched.FireLast())
	assert.Never(t, func() bool { return h.dialer.Dials() > 1 }, settle, tick)
	assert.Equal(t, realtime.Disconnected, h.m.State().Status)
}

func TestConnectAfterDisconnect(t *testing.T) {
	h := newHarness(t, staticToken("tok"))

	h.m.Connect()
	h.waitStatus(t, realtime.Open)
	h.m.Disconnect()
	h.m.Connect()
	h.waitStatus(t, realtime.Open)

	assert.False(t, h.m.State().ManualDisconnect)
	assert.Equal(t, 2, h.dialer.Dials())
	assert.EqualValues(t, 2, h.opens.Load())
}

func TestFramesDeliveredInOrder(t *testing.T) {
	h := newHarness(t, staticToken("tok"))

	h.m.Connect()
	h.waitStatus(t, realtime.Open)

	conn := h.dialer.Conn(0)
	var want []string
	for i := range 40 {
		f := `{"event":"task_deleted","todo_id":"t` + string(rune('A'+i)) + `"}`
		want = append(want, f)
		conn.Send(f)
	}

	require.Eventually(t, func() bool { return len(h.Frames()) == len(want) }, waitFor, tick)
	assert.Equal(t, want, h.Frames())
}

func TestFramesFromOldConnectionDropped(t *testing.T) {
	h := newHarness(t, staticToken("tok"))

	h.m.Connect()
	h.waitStatus(t, realtime.Open)
	old := h.dialer.Conn(0)

	h.m.Disconnect()
	old.Send(`{"event":"notification_all_read"}`)

	assert.Never(t, func() bool { return len(h.Frames()) > 0 }, settle, tick)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	h := &harness{dialer: &fakeDialer{}, sched: &fakeScheduler{}}
	base, _ := url.Parse("https://api.example.com")
	m, err := realtime.NewManager(base, staticToken("tok"),
		realtime.WithDialer(h.dialer),
		realtime.WithScheduler(h.sched),
		realtime.WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	m.Connect()
	require.Eventually(t, func() bool { return m.State().Status == realtime.Open }, waitFor, tick)
	assert.Equal(t, "wss://api.example.com/ws?token=tok", h.dialer.Endpoint(0))

	cancel()
	require.NoError(t, <-done)
	assert.True(t, h.dialer.Conn(0).IsClosed())
	assert.True(t, m.State().ManualDisconnect)

	// Calls after the loop stopped return immediately.
	m.Connect()
	m.Disconnect()
}
