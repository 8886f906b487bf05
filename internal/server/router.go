package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/agentstation/tasksync/internal/server/handlers"
	"github.com/agentstation/tasksync/internal/server/middleware"
	"github.com/agentstation/tasksync/internal/server/response"
	"github.com/agentstation/tasksync/pkg/constants"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "No such endpoint")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method)
	})

	h := handlers.New(s.db, s.wsHub, s.upgrader, s.logger)
	s.registerRoutes(r.PathPrefix(s.config.PathPrefix).Subrouter(), h)

	return s.applyMiddleware(r)
}

// registerRoutes registers all HTTP routes under the API prefix.
func (s *Server) registerRoutes(r *mux.Router, h *handlers.Handlers) {
	// Public health endpoint (no auth required)
	r.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)

	// Todos
	r.HandleFunc("/todos", h.HandleListTodos).Methods(http.MethodGet)
	r.HandleFunc("/todos", h.HandleCreateTodo).Methods(http.MethodPost)
	r.HandleFunc("/todos/{id}", h.HandleUpdateTodo).Methods(http.MethodPut)
	r.HandleFunc("/todos/{id}", h.HandleDeleteTodo).Methods(http.MethodDelete)

	// Projects
	r.HandleFunc("/projects", h.HandleListProjects).Methods(http.MethodGet)
	r.HandleFunc("/projects", h.HandleCreateProject).Methods(http.MethodPost)
	r.HandleFunc("/projects/order", h.HandleReorderProjects).Methods(http.MethodPut)
	r.HandleFunc("/projects/{id}", h.HandleDeleteProject).Methods(http.MethodDelete)
	r.HandleFunc("/projects/{id}/todos", h.HandleProjectTodos).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}/members", h.HandleAddMember).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/members/{memberID}", h.HandleRemoveMember).Methods(http.MethodDelete)

	// Notifications
	r.HandleFunc("/notifications", h.HandleListNotifications).Methods(http.MethodGet)
	r.HandleFunc("/notifications/read-all", h.HandleMarkAllRead).Methods(http.MethodPost)
	r.HandleFunc("/notifications/{id}/read", h.HandleMarkRead).Methods(http.MethodPost)

	// Real-time endpoint
	r.HandleFunc("/"+constants.RealtimePath, h.HandleWebSocket).Methods(http.MethodGet)
}

// applyMiddleware wraps handler with the middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	auth := middleware.DefaultAuthConfig()
	auth.Enabled = cfg.AuthEnabled
	auth.PublicPaths = []string{cfg.PathPrefix + "/health"}

	mws := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Logger(s.logger),
	}
	if cfg.CORSEnabled {
		mws = append(mws, middleware.CORS(s.origins))
	}
	mws = append(mws, middleware.Auth(auth, s.db, s.logger))
	// Rate limiting keys on the user, so it sits inside auth.
	if s.limiter != nil {
		mws = append(mws, middleware.RateLimit(s.limiter))
	}
	return middleware.Chain(mws...)(handler)
}
