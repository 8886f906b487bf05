package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/agentstation/tasksync/internal/server/memory"
	"github.com/agentstation/tasksync/internal/server/response"
)

// HandleListTodos handles GET /api/todos.
func (h *Handlers) HandleListTodos(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.db.ListTodos(user(r)))
}

// HandleProjectTodos handles GET /api/projects/{id}/todos.
func (h *Handlers) HandleProjectTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.db.ProjectTodos(user(r), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, todos)
}

// HandleCreateTodo handles POST /api/todos.
func (h *Handlers) HandleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var in memory.TodoInput
	if !decode(w, r, &in) {
		return
	}
	todo, err := h.db.CreateTodo(user(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, todo)
}

// HandleUpdateTodo handles PUT /api/todos/{id}.
func (h *Handlers) HandleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	var in memory.TodoInput
	if !decode(w, r, &in) {
		return
	}
	todo, err := h.db.UpdateTodo(user(r), mux.Vars(r)["id"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, todo)
}

// HandleDeleteTodo handles DELETE /api/todos/{id}.
func (h *Handlers) HandleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteTodo(user(r), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}
