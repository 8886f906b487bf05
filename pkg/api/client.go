// Package api is the REST client for the tasksync backend. Every fetch
// returns a full replacement collection; mutations return the record as
// stored by the backend.
package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/agentstation/tasksync/internal/transport"
	"github.com/agentstation/tasksync/pkg/constants"
	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/models"
	"github.com/agentstation/tasksync/pkg/session"
)

// Client talks to the REST API.
type Client struct {
	rb *transport.RequestBuilder
	tc *transport.Client
}

// Option configures a Client.
type Option func(*options) error

type options struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the HTTP client, e.g. to change timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		o.httpClient = hc
		return nil
	}
}

// New creates a client for the API rooted at baseURL, e.g.
// http://localhost:8080/api. The bearer token is read from creds before
// each request.
func New(baseURL string, creds session.Credentials, opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if baseURL == "" {
		baseURL = constants.DefaultAPIURL
	}
	rb, err := transport.NewRequestBuilder(baseURL)
	if err != nil {
		return nil, err
	}

	var tokens transport.TokenSource
	if creds != nil {
		tokens = creds
	}
	return &Client{
		rb: rb,
		tc: transport.New(&transport.BearerAuth{}, tokens).WithHTTPClient(o.httpClient),
	}, nil
}

// BaseURL returns the configured API base.
func (c *Client) BaseURL() *url.URL {
	return c.rb.Base()
}

func (c *Client) do(ctx context.Context, op, resource, id, method string, body, target any, path ...string) error {
	err := c.tc.JSON(ctx, method, c.rb.URL(path...), body, target)
	return errors.WrapResource(op, resource, id, err)
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "check", "health", "", http.MethodGet, nil, nil, "health")
}

// FetchTodos returns every todo visible to the user.
func (c *Client) FetchTodos(ctx context.Context) ([]models.Todo, error) {
	var out []models.Todo
	if err := c.do(ctx, "fetch", "todos", "", http.MethodGet, nil, &out, "todos"); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchProjectTodos returns the todos of one project.
func (c *Client) FetchProjectTodos(ctx context.Context, projectID string) ([]models.Todo, error) {
	var out []models.Todo
	if err := c.do(ctx, "fetch", "project todos", projectID, http.MethodGet, nil, &out, "projects", projectID, "todos"); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchProjects returns the user's own and shared projects.
func (c *Client) FetchProjects(ctx context.Context) (models.ProjectList, error) {
	var out models.ProjectList
	if err := c.do(ctx, "fetch", "projects", "", http.MethodGet, nil, &out, "projects"); err != nil {
		return models.ProjectList{}, err
	}
	return out, nil
}

// FetchNotifications returns the user's inbox.
func (c *Client) FetchNotifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	if err := c.do(ctx, "fetch", "notifications", "", http.MethodGet, nil, &out, "notifications"); err != nil {
		return nil, err
	}
	return out, nil
}

// TodoInput is the writable subset of a todo.
type TodoInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Completed   *bool           `json:"completed,omitempty"`
	Priority    models.Priority `json:"priority,omitempty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	ProjectID   string          `json:"project_id,omitempty"`
	Position    *int            `json:"position,omitempty"`
}

// CreateTodo creates a todo.
func (c *Client) CreateTodo(ctx context.Context, in TodoInput) (models.Todo, error) {
	if in.Title == "" {
		return models.Todo{}, errors.NewValidationError("title", in.Title, "cannot be empty")
	}
	var out models.Todo
	err := c.do(ctx, "create", "todo", "", http.MethodPost, in, &out, "todos")
	return out, err
}

// UpdateTodo replaces the writable fields of a todo.
func (c *Client) UpdateTodo(ctx context.Context, id string, in TodoInput) (models.Todo, error) {
	var out models.Todo
	err := c.do(ctx, "update", "todo", id, http.MethodPut, in, &out, "todos", id)
	return out, err
}

// DeleteTodo deletes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, "delete", "todo", id, http.MethodDelete, nil, nil, "todos", id)
}

// ProjectInput is the writable subset of a project.
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateProject creates a project owned by the user.
func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (models.Project, error) {
	if in.Name == "" {
		return models.Project{}, errors.NewValidationError("name", in.Name, "cannot be empty")
	}
	var out models.Project
	err := c.do(ctx, "create", "project", "", http.MethodPost, in, &out, "projects")
	return out, err
}

// DeleteProject deletes a project the user owns.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, "delete", "project", id, http.MethodDelete, nil, nil, "projects", id)
}

type reorderRequest struct {
	ProjectIDs []string `json:"project_ids"`
}

// ReorderProjects sets the display order of the user's own projects.
func (c *Client) ReorderProjects(ctx context.Context, ids []string) error {
	return c.do(ctx, "reorder", "projects", "", http.MethodPut, reorderRequest{ProjectIDs: ids}, nil, "projects", "order")
}

// MemberInput invites a user to a project.
type MemberInput struct {
	UserID string `json:"user_id"`
}

// AddMember adds a user to a project and returns the updated project.
func (c *Client) AddMember(ctx context.Context, projectID, userID string) (models.Project, error) {
	var out models.Project
	err := c.do(ctx, "add member to", "project", projectID, http.MethodPost, MemberInput{UserID: userID}, &out, "projects", projectID, "members")
	return out, err
}

// RemoveMember removes a user from a project. Removing yourself leaves the project.
func (c *Client) RemoveMember(ctx context.Context, projectID, userID string) error {
	return c.do(ctx, "remove member from", "project", projectID, http.MethodDelete, nil, nil, "projects", projectID, "members", userID)
}

// MarkNotificationRead marks one notification read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, "mark read", "notification", id, http.MethodPost, nil, nil, "notifications", id, "read")
}

// MarkAllNotificationsRead marks the whole inbox read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, "mark read", "notifications", "", http.MethodPost, nil, nil, "notifications", "read-all")
}
