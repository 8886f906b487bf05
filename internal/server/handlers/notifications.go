package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/agentstation/tasksync/internal/server/response"
)

// HandleListNotifications handles GET /api/notifications.
func (h *Handlers) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.db.Notifications(user(r)))
}

// HandleMarkRead handles POST /api/notifications/{id}/read.
func (h *Handlers) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.db.MarkNotificationRead(user(r), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}

// HandleMarkAllRead handles POST /api/notifications/read-all.
func (h *Handlers) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.db.MarkAllNotificationsRead(user(r))
	response.NoContent(w)
}
