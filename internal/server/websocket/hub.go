// Package websocket pushes realtime event frames to connected clients of
// the development backend. Each client belongs to one user; frames are
// addressed to users.
package websocket

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync/pkg/constants"
)

// Hub owns the set of connected clients, indexed by user. All membership
// changes and deliveries happen on the Run goroutine, so a user's frames
// leave in the order they were sent.
type Hub struct {
	logger *zerolog.Logger

	frames  chan Message
	joins   chan *Client
	leaves  chan *Client
	stopped chan struct{}

	mu     sync.RWMutex
	byUser map[string]map[*Client]struct{}
	total  int
}

// Message is one encoded frame and the users it is addressed to.
type Message struct {
	Recipients []string
	Data       []byte
}

// NewHub creates a hub. Call Run to start it.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		frames:  make(chan Message, constants.HubBufferSize),
		joins:   make(chan *Client),
		leaves:  make(chan *Client),
		stopped: make(chan struct{}),
		byUser:  make(map[string]map[*Client]struct{}),
	}
}

// Run serves joins, leaves and frames until ctx is done, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.byUser {
				for c := range set {
					close(c.send)
				}
			}
			h.byUser = make(map[string]map[*Client]struct{})
			h.total = 0
			h.mu.Unlock()
			h.logger.Info().Msg("realtime hub stopped")
			return
		case c := <-h.joins:
			h.add(c)
		case c := <-h.leaves:
			h.remove(c, "disconnected")
		case m := <-h.frames:
			h.deliver(m)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	set := h.byUser[c.userID]
	if set == nil {
		set = make(map[*Client]struct{})
		h.byUser[c.userID] = set
	}
	set[c] = struct{}{}
	h.total++
	total := h.total
	h.mu.Unlock()

	h.logger.Info().
		Str("client_id", c.id).
		Str("user_id", c.userID).
		Int("clients", total).
		Msg("realtime client connected")
}

// remove drops c and closes its queue. Removing an unknown client is a no-op.
func (h *Hub) remove(c *Client, reason string) {
	h.mu.Lock()
	removed := h.removeLocked(c)
	total := h.total
	h.mu.Unlock()
	if !removed {
		return
	}

	h.logger.Info().
		Str("client_id", c.id).
		Str("user_id", c.userID).
		Int("clients", total).
		Msg("realtime client " + reason)
}

func (h *Hub) removeLocked(c *Client) bool {
	set := h.byUser[c.userID]
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.byUser, c.userID)
	}
	h.total--
	close(c.send)
	return true
}

// deliver queues m on every connection of its recipients. A client whose
// queue is full is disconnected; it catches up by resyncing on reconnect.
func (h *Hub) deliver(m Message) {
	slow := make(map[*Client]struct{})
	sent := 0

	h.mu.Lock()
	for _, user := range m.Recipients {
		for c := range h.byUser[user] {
			select {
			case c.send <- m.Data:
				sent++
			default:
				slow[c] = struct{}{}
			}
		}
	}
	for c := range slow {
		h.removeLocked(c)
	}
	h.mu.Unlock()

	for c := range slow {
		h.logger.Warn().Str("client_id", c.id).Str("user_id", c.userID).Msg("realtime client too slow, disconnected")
	}
	h.logger.Debug().Int("connections", sent).Strs("recipients", m.Recipients).Msg("frame queued")
}

// Register adds a client. Once the hub has stopped, the client's queue is
// closed at once so its write pump sends a close frame.
func (h *Hub) Register(c *Client) {
	select {
	case h.joins <- c:
	case <-h.stopped:
		close(c.send)
	}
}

// Unregister removes a client and closes its queue.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.leaves <- c:
	case <-h.stopped:
	}
}

// Send queues data for every connection of the given users. When the hub
// is backed up the frame is dropped.
func (h *Hub) Send(recipients []string, data []byte) {
	select {
	case h.frames <- Message{Recipients: recipients, Data: data}:
	default:
		h.logger.Warn().Strs("recipients", recipients).Msg("realtime hub backlog full, frame dropped")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// Online reports whether userID has at least one connection.
func (h *Hub) Online(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID]) > 0
}
