package tasksync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tasksync/pkg/events"
	"github.com/agentstation/tasksync/pkg/realtime"
)

func TestHooksMayRegisterFromCallbacks(t *testing.T) {
	h := newHooks()

	var states, received, redirects int
	h.OnStateChange(func(realtime.State) {
		h.OnStateChange(func(realtime.State) { states++ })
	})
	h.OnEvent(func(events.Kind) {
		h.OnEvent(func(events.Kind) { received++ })
	})
	h.OnRedirect(func() {
		h.OnRedirect(func() { redirects++ })
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.triggerState(realtime.State{Status: realtime.Open})
		h.triggerEvent(events.TaskCreated)
		h.triggerRedirect()
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "hook registration from a callback deadlocked")
	}

	// Hooks added during a trigger run from the next one on.
	assert.Zero(t, states)
	h.triggerState(realtime.State{})
	assert.Equal(t, 1, states)

	h.triggerEvent(events.TaskDeleted)
	assert.Equal(t, 1, received)
	h.triggerRedirect()
	assert.Equal(t, 1, redirects)
}
