package realtime_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/agentstation/tasksync/pkg/realtime"
)

// fakeScheduler records timers and fires them only when told to.
type fakeScheduler struct {
	mu             sync.Mutex
	timers         []*fakeTimer
	maxOutstanding int
}

type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{delay: d, f: f}
	s.timers = append(s.timers, t)
	s.maxOutstanding = max(s.maxOutstanding, s.outstandingLocked())
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.stopped || t.fired {
			return false
		}
		t.stopped = true
		return true
	}
}

func (s *fakeScheduler) outstandingLocked() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Outstanding counts timers neither stopped nor fired.
func (s *fakeScheduler) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outstandingLocked()
}

// MaxOutstanding is the most timers ever outstanding at once.
func (s *fakeScheduler) MaxOutstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxOutstanding
}

// Delays lists every scheduled delay in order.
func (s *fakeScheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.timers))
	for i, t := range s.timers {
		out[i] = t.delay
	}
	return out
}

// Fire runs the oldest outstanding timer and reports whether there was one.
func (s *fakeScheduler) Fire() bool {
	s.mu.Lock()
	var next *fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			next = t
			break
		}
	}
	if next != nil {
		next.fired = true
	}
	s.mu.Unlock()

	if next == nil {
		return false
	}
	next.f()
	return true
}

// FireLast runs the most recent timer even if it was stopped, as a real
// timer that fired just before Stop would.
func (s *fakeScheduler) FireLast() bool {
	s.mu.Lock()
	if len(s.timers) == 0 {
		s.mu.Unlock()
		return false
	}
	t := s.timers[len(s.timers)-1]
	t.fired = true
	s.mu.Unlock()
	t.f()
	return true
}

var errRefused = errors.New("connection refused")

// fakeDialer hands out fakeConns, or fails every dial while failAll is set.
type fakeDialer struct {
	mu        sync.Mutex
	endpoints []string
	conns     []*fakeConn
	failAll   bool
}

func (d *fakeDialer) Dial(_ context.Context, endpoint string) (realtime.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.endpoints = append(d.endpoints, endpoint)
	if d.failAll {
		return nil, errRefused
	}
	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.endpoints)
}

func (d *fakeDialer) Endpoint(i int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.endpoints[i]
}

func (d *fakeDialer) Conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

func (d *fakeDialer) SetFailAll(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failAll = v
}

// fakeConn is an in-memory transport driven by the test.
type fakeConn struct {
	frames chan []byte
	drop   chan error
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan []byte, 64),
		drop:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case <-c.closed:
		return nil, io.EOF
	default:
	}
	select {
	case f := <-c.frames:
		return f, nil
	case err := <-c.drop:
		return nil, err
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) Send(frame string) { c.frames <- []byte(frame) }

func (c *fakeConn) Drop(err error) { c.drop <- err }

func (c *fakeConn) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

type tokenFunc func() (string, bool)

func (f tokenFunc) Token() (string, bool) { return f() }

func staticToken(tok string) realtime.TokenSource {
	return tokenFunc(func() (string, bool) { return tok, tok != "" })
}

// fixedJitter makes delays deterministic.
func fixedJitter(time.Duration) time.Duration { return 250 * time.Millisecond }
