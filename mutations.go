package tasksync

import (
	"context"

	"github.com/agentstation/tasksync/internal/utils/ptr"
	"github.com/agentstation/tasksync/pkg/api"
	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/events"
	"github.com/agentstation/tasksync/pkg/models"
)

// Mutations change backend state over REST and apply the response to the
// stores right away. The backend echoes each change over the socket; the
// echo is absorbed because every store write is keyed by id.
type Mutations interface {
	CreateTodo(ctx context.Context, in api.TodoInput) (models.Todo, error)
	UpdateTodo(ctx context.Context, id string, in api.TodoInput) (models.Todo, error)
	ToggleTodo(ctx context.Context, id string) (models.Todo, error)
	DeleteTodo(ctx context.Context, id string) error

	CreateProject(ctx context.Context, in api.ProjectInput) (models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ReorderProjects(ctx context.Context, ids []string) error
	AddMember(ctx context.Context, projectID, userID string) (models.Project, error)
	RemoveMember(ctx context.Context, projectID, userID string) error

	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// CreateTodo implements Mutations.
func (c *client) CreateTodo(ctx context.Context, in api.TodoInput) (models.Todo, error) {
	todo, err := c.api.CreateTodo(ctx, in)
	if err != nil {
		return models.Todo{}, err
	}
	c.stores.Todos.Upsert(todo)
	return todo, nil
}

// UpdateTodo implements Mutations.
func (c *client) UpdateTodo(ctx context.Context, id string, in api.TodoInput) (models.Todo, error) {
	todo, err := c.api.UpdateTodo(ctx, id, in)
	if err != nil {
		return models.Todo{}, err
	}
	c.stores.Todos.Upsert(todo)
	return todo, nil
}

// ToggleTodo flips the completed flag of a todo from the store.
func (c *client) ToggleTodo(ctx context.Context, id string) (models.Todo, error) {
	cur, ok := c.stores.Todos.Get(id)
	if !ok {
		return models.Todo{}, errors.NewNotFoundError("todo", id)
	}
	return c.UpdateTodo(ctx, id, api.TodoInput{Completed: ptr.To(!cur.Completed)})
}

// DeleteTodo implements Mutations.
func (c *client) DeleteTodo(ctx context.Context, id string) error {
	if err := c.api.DeleteTodo(ctx, id); err != nil {
		return err
	}
	c.stores.Todos.Remove(id)
	return nil
}

// CreateProject implements Mutations.
func (c *client) CreateProject(ctx context.Context, in api.ProjectInput) (models.Project, error) {
	p, err := c.api.CreateProject(ctx, in)
	if err != nil {
		return models.Project{}, err
	}
	c.stores.Projects.Upsert(p)
	return p, nil
}

// DeleteProject implements Mutations.
func (c *client) DeleteProject(ctx context.Context, id string) error {
	if err := c.api.DeleteProject(ctx, id); err != nil {
		return err
	}
	c.dispatcher.Apply(events.ProjectRemoved{ProjectID: id})
	return nil
}

// ReorderProjects implements Mutations.
func (c *client) ReorderProjects(ctx context.Context, ids []string) error {
	if err := c.api.ReorderProjects(ctx, ids); err != nil {
		return err
	}
	c.stores.Projects.Reorder(ids)
	return nil
}

// AddMember implements Mutations.
func (c *client) AddMember(ctx context.Context, projectID, userID string) (models.Project, error) {
	p, err := c.api.AddMember(ctx, projectID, userID)
	if err != nil {
		return models.Project{}, err
	}
	c.stores.Projects.Upsert(p)
	return p, nil
}

// RemoveMember implements Mutations. Removing yourself leaves the project
// exactly as a pushed team_member_left would.
func (c *client) RemoveMember(ctx context.Context, projectID, userID string) error {
	if err := c.api.RemoveMember(ctx, projectID, userID); err != nil {
		return err
	}
	c.dispatcher.Apply(events.MemberLeft{ProjectID: projectID, Member: models.Member{ID: userID}})
	return nil
}

// MarkNotificationRead implements Mutations.
func (c *client) MarkNotificationRead(ctx context.Context, id string) error {
	if err := c.api.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	c.stores.Notifications.MarkRead(id)
	return nil
}

// MarkAllNotificationsRead implements Mutations.
func (c *client) MarkAllNotificationsRead(ctx context.Context) error {
	if err := c.api.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	c.stores.Notifications.MarkAllRead()
	return nil
}
