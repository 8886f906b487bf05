// Package realtime keeps one authenticated WebSocket connection to the
// tasksync backend alive, reconnecting with exponential backoff plus jitter,
// and routes every inbound event into the client-side stores.
//
// The Manager is an actor: Run owns a single loop goroutine that applies
// every state transition, timer firing and frame dispatch in order. Dialing
// and reading happen on helper goroutines that post results back to the
// loop, tagged with the connection generation they belong to, so nothing
// from a torn-down connection can reach the stores.
package realtime

import "fmt"

// Status is the connection lifecycle state.
type Status int

// Connection statuses.
const (
	Disconnected Status = iota
	Connecting
	Open
	Closing
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closing:
		return "closing"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// State is a snapshot of the Manager's connection state.
type State struct {
	Status Status
	// RetryCount is the number of reconnects scheduled since the last Open.
	RetryCount int
	// PendingReconnect is true while a reconnect timer is outstanding.
	PendingReconnect bool
	// ManualDisconnect is set by Disconnect and suppresses reconnection.
	ManualDisconnect bool
	// Generation identifies the current transport.
	Generation uint64
}
