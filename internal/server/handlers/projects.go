package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/agentstation/tasksync/internal/server/memory"
	"github.com/agentstation/tasksync/internal/server/response"
)

// HandleListProjects handles GET /api/projects.
func (h *Handlers) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.db.ListProjects(user(r)))
}

// HandleCreateProject handles POST /api/projects.
func (h *Handlers) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in memory.ProjectInput
	if !decode(w, r, &in) {
		return
	}
	project, err := h.db.CreateProject(user(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, project)
}

// HandleDeleteProject handles DELETE /api/projects/{id}.
func (h *Handlers) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteProject(user(r), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}

type reorderRequest struct {
	ProjectIDs []string `json:"project_ids"`
}

// HandleReorderProjects handles PUT /api/projects/order.
func (h *Handlers) HandleReorderProjects(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.db.ReorderProjects(user(r), req.ProjectIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, reorderRequest{ProjectIDs: order})
}

type memberRequest struct {
	UserID string `json:"user_id"`
}

// HandleAddMember handles POST /api/projects/{id}/members.
func (h *Handlers) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		response.BadRequest(w, "user_id is required")
		return
	}
	project, err := h.db.AddMember(user(r), mux.Vars(r)["id"], req.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, project)
}

// HandleRemoveMember handles DELETE /api/projects/{id}/members/{memberID}.
func (h *Handlers) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.db.RemoveMember(user(r), vars["id"], vars["memberID"]); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}
