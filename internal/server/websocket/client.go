package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/agentstation/tasksync/pkg/constants"
)

// Clients only receive; anything they send beyond control frames is
// discarded, so a small read limit suffices.
const readLimit = 512

// Client is one realtime connection of a user.
type Client struct {
	id     string
	userID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
}

// NewClient creates a client for userID on conn.
func NewClient(id, userID string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:     id,
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, constants.HubBufferSize),
	}
}

// ID returns the connection id.
func (c *Client) ID() string { return c.id }

// UserID returns the user the connection belongs to.
func (c *Client) UserID() string { return c.userID }

// ReadPump consumes inbound frames so pongs and close frames are seen,
// and unregisters the client when the connection ends.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(constants.PongWait))
	}
	c.conn.SetReadLimit(readLimit)
	_ = extend("")
	c.conn.SetPongHandler(extend)

	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			c.hub.logger.Warn().Err(err).Str("client_id", c.id).Msg("realtime read failed")
		}
		return
	}
}

// WritePump sends queued frames and keepalive pings. When the hub closes
// the queue it sends a close frame and returns.
func (c *Client) WritePump() {
	ping := time.NewTicker(constants.PingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		_ = c.conn.SetWriteDeadline(time.Now().Add(constants.WriteWait))
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
