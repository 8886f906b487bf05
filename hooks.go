package tasksync

import (
	"slices"
	"sync"

	"github.com/agentstation/tasksync/pkg/events"
	"github.com/agentstation/tasksync/pkg/realtime"
)

// Hook function types for connection and event callbacks
type (
	// StateHook is called with every connection state change
	StateHook func(state realtime.State)

	// EventHook is called after each inbound frame has been applied.
	// kind is events.KindUnknown for frames that were dropped.
	EventHook func(kind events.Kind)

	// RedirectHook is called when the user was removed from the project
	// they had open and the view went back home
	RedirectHook func()
)

// Hooks registers callbacks. Callbacks run on the connection loop and
// must not block or call Close.
type Hooks interface {
	OnStateChange(fn StateHook)
	OnEvent(fn EventHook)
	OnRedirect(fn RedirectHook)
}

// hooks manages registered callbacks
type hooks struct {
	mu         sync.RWMutex
	onState    []StateHook
	onEvent    []EventHook
	onRedirect []RedirectHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnStateChange registers a callback for connection state changes
func (h *hooks) OnStateChange(fn StateHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onState = append(h.onState, fn)
}

// OnEvent registers a callback for inbound events
func (h *hooks) OnEvent(fn EventHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEvent = append(h.onEvent, fn)
}

// OnRedirect registers a callback for self-removal redirects
func (h *hooks) OnRedirect(fn RedirectHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRedirect = append(h.onRedirect, fn)
}

// Callbacks run after the lock is released so they may register more hooks.

func (h *hooks) triggerState(state realtime.State) {
	h.mu.RLock()
	fns := slices.Clone(h.onState)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(state)
	}
}

func (h *hooks) triggerEvent(kind events.Kind) {
	h.mu.RLock()
	fns := slices.Clone(h.onEvent)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(kind)
	}
}

func (h *hooks) triggerRedirect() {
	h.mu.RLock()
	fns := slices.Clone(h.onRedirect)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// OnStateChange implements Hooks.
func (c *client) OnStateChange(fn StateHook) { c.hooks.OnStateChange(fn) }

// OnEvent implements Hooks.
func (c *client) OnEvent(fn EventHook) { c.hooks.OnEvent(fn) }

// OnRedirect implements Hooks.
func (c *client) OnRedirect(fn RedirectHook) { c.hooks.OnRedirect(fn) }
