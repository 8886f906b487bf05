// Package handlers provides the HTTP request handlers of the tasksync
// development backend.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync/internal/server/memory"
	"github.com/agentstation/tasksync/internal/server/middleware"
	"github.com/agentstation/tasksync/internal/server/response"
	ws "github.com/agentstation/tasksync/internal/server/websocket"
	"github.com/agentstation/tasksync/pkg/constants"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	db        *memory.DB
	wsHub     *ws.Hub
	upgrader  websocket.Upgrader
	logger    *zerolog.Logger
	startTime time.Time
}

// New creates a new Handlers instance.
func New(db *memory.DB, wsHub *ws.Hub, upgrader websocket.Upgrader, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		db:        db,
		wsHub:     wsHub,
		upgrader:  upgrader,
		logger:    logger,
		startTime: time.Now(),
	}
}

// user returns the id the auth middleware resolved for r.
func user(r *http.Request) string {
	return middleware.UserID(r.Context())
}

// decode reads a JSON request body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxFrameSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.BadRequest(w, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// fail logs err against the request and writes the mapped error response.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Debug().
		Err(err).
		Str("user_id", user(r)).
		Msg("Request failed")
	response.ErrorFromType(w, err)
}
