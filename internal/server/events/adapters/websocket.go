// Package adapters connects the event broker to the backend's transports.
package adapters

import (
	"fmt"

	"github.com/agentstation/tasksync/internal/server/events"
	ws "github.com/agentstation/tasksync/internal/server/websocket"
	wire "github.com/agentstation/tasksync/pkg/events"
)

// Sender is the part of the WebSocket hub the adapter needs.
type Sender interface {
	Send(recipients []string, data []byte)
}

// WebSocket turns broker events into JSON text frames and hands them to
// the hub, which routes them to the recipients' open connections.
type WebSocket struct {
	hub Sender
}

// NewWebSocketSubscriber wraps hub as a broker subscriber.
func NewWebSocketSubscriber(hub Sender) *WebSocket {
	return &WebSocket{hub: hub}
}

// Deliver encodes ev and queues it on the hub.
func (w *WebSocket) Deliver(ev events.Event) error {
	frame, err := wire.Encode(ev.Payload)
	if err != nil {
		return fmt.Errorf("encoding event %d: %w", ev.Seq, err)
	}
	w.hub.Send(ev.Recipients, frame)
	return nil
}

// Close does nothing; the hub is shut down by the server.
func (w *WebSocket) Close() error { return nil }

var (
	_ events.Subscriber = (*WebSocket)(nil)
	_ Sender            = (*ws.Hub)(nil)
)
