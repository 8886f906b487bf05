package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/tasksync/internal/server/response"
)

// Health is the body of GET /api/health.
type Health struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	Users           int    `json:"users"`
	OnlineUsers     int    `json:"online_users"`
	RealtimeClients int    `json:"realtime_clients"`
}

// HandleHealth reports liveness along with a few store and hub counters.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	users := h.db.Users()
	online := 0
	for _, u := range users {
		if h.wsHub.Online(u.ID) {
			online++
		}
	}
	response.OK(w, Health{
		Status:          "ok",
		Uptime:          time.Since(h.startTime).Round(time.Second).String(),
		Users:           len(users),
		OnlineUsers:     online,
		RealtimeClients: h.wsHub.ClientCount(),
	})
}
