// Package events fans the realtime events caused by REST mutations out to
// the transports of the development backend.
//
// Data-layer mutations publish to the Broker; the Broker hands each event,
// in publication order, to every Subscriber. The WebSocket adapter encodes
// the event as a wire frame and routes it to the recipients' connections.
package events

import (
	"time"

	wire "github.com/agentstation/tasksync/pkg/events"
)

// Event is one realtime event addressed to a set of users. Seq increases
// by one per accepted publication.
type Event struct {
	Seq        uint64     `json:"seq"`
	Kind       wire.Kind  `json:"kind"`
	Recipients []string   `json:"recipients"`
	Timestamp  time.Time  `json:"timestamp"`
	Payload    wire.Event `json:"-"`
}
