package realtime_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/realtime"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=abc"
}

func TestWSDialerReadsTextFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	gotToken := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken <- r.URL.Query().Get("token")
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.WriteMessage(websocket.BinaryMessage, []byte{0x01})
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"event":"notification_all_read"}`))
		_ = c.WriteControl(websocket.PingMessage, []byte("hi"), time.Now().Add(time.Second))
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"event":"task_deleted","todo_id":"t1"}`))
		// Wait for the client's close frame.
		_, _, _ = c.ReadMessage()
	}))
	defer srv.Close()

	conn, err := realtime.NewWSDialer().Dial(context.Background(), wsURL(srv))
	require.NoError(t, err)
	assert.Equal(t, "abc", <-gotToken)

	first, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"notification_all_read"}`, string(first))

	second, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"task_deleted","todo_id":"t1"}`, string(second))

	require.NoError(t, conn.Close())
	assert.NoError(t, conn.Close(), "close is idempotent")
	_, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestWSDialerHandshakeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := realtime.NewWSDialer().Dial(context.Background(), wsURL(srv))
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))
	assert.True(t, errors.IsUnavailable(err))
	assert.NotContains(t, err.Error(), "abc", "token must not leak into errors")
}

func TestWSDialerContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := realtime.NewWSDialer().Dial(ctx, "ws://127.0.0.1:1/ws")
	assert.Error(t, err)
}
