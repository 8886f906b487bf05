package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	ws "github.com/agentstation/tasksync/internal/server/websocket"
)

// HandleWebSocket upgrades GET /api/ws into a realtime connection for the
// user the auth middleware resolved from the token query parameter. The
// connection only receives; events are routed to it by user id.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())
	userID := user(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered with the HTTP error.
		log.Warn().Err(err).Str("user_id", userID).Msg("realtime upgrade refused")
		return
	}

	client := ws.NewClient(uuid.NewString(), userID, h.wsHub, conn)
	h.wsHub.Register(client)
	log.Debug().Str("user_id", userID).Str("client_id", client.ID()).Msg("realtime client attached")

	go client.WritePump()
	go client.ReadPump()
}
