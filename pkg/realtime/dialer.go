package realtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/agentstation/tasksync/pkg/constants"
	"github.com/agentstation/tasksync/pkg/errors"
)

// Conn is one receive-only transport.
type Conn interface {
	// ReadMessage blocks for the next text frame.
	ReadMessage() ([]byte, error)
	// Close sends a close frame where possible and releases the transport.
	// It is safe to call concurrently with ReadMessage and more than once.
	Close() error
}

// Dialer opens a transport to endpoint.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

// WSDialer dials gorilla/websocket connections.
type WSDialer struct {
	dialer    *websocket.Dialer
	readLimit int64
	pongWait  time.Duration
}

// NewWSDialer returns a dialer with the package's default timeouts.
func NewWSDialer() *WSDialer {
	return &WSDialer{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: constants.DialTimeout,
		},
		readLimit: constants.MaxFrameSize,
		pongWait:  constants.PongWait,
	}
}

// Dial implements Dialer.
func (d *WSDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	c, resp, err := d.dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			err = errors.NewAPIError("", resp.StatusCode, fmt.Sprintf("handshake rejected: %v", err))
		}
		return nil, errors.WrapTransport("dial", redact(endpoint), err)
	}

	c.SetReadLimit(d.readLimit)
	_ = c.SetReadDeadline(time.Now().Add(d.pongWait))
	c.SetPingHandler(func(appData string) error {
		_ = c.SetReadDeadline(time.Now().Add(d.pongWait))
		err := c.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(constants.WriteWait))
		if err == websocket.ErrCloseSent {
			return nil
		}
		return err
	})

	return &wsConn{conn: c, pongWait: d.pongWait}, nil
}

type wsConn struct {
	conn     *websocket.Conn
	pongWait time.Duration
	once     sync.Once
	closeErr error
}

func (w *wsConn) ReadMessage() ([]byte, error) {
	for {
		mt, data, err := w.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		_ = w.conn.SetReadDeadline(time.Now().Add(w.pongWait))
		if mt == websocket.TextMessage {
			return data, nil
		}
	}
}

func (w *wsConn) Close() error {
	w.once.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(constants.WriteWait))
		w.closeErr = w.conn.Close()
	})
	return w.closeErr
}

var _ Dialer = (*WSDialer)(nil)
