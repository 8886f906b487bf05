package memory

import (
	"github.com/google/uuid"

	"github.com/agentstation/tasksync/internal/utils/ptr"
	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/events"
	"github.com/agentstation/tasksync/pkg/models"
)

// ListTodos returns every todo user can see.
func (db *DB) ListTodos(user string) []models.Todo {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := []models.Todo{}
	for _, t := range db.todos {
		if db.visibleLocked(user, t) {
			out = append(out, t)
		}
	}
	sortTodos(out)
	return out
}

// ProjectTodos returns the todos of one project user belongs to.
func (db *DB) ProjectTodos(user, projectID string) ([]models.Todo, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if !isMember(db.projects[projectID], user) {
		return nil, errors.NewNotFoundError("project", projectID)
	}
	out := []models.Todo{}
	for _, t := range db.todos {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sortTodos(out)
	return out, nil
}

// CreateTodo adds a todo, inside a project when ProjectID is set.
func (db *DB) CreateTodo(user string, in TodoInput) (models.Todo, error) {
	if !ptr.NonZero(in.Title) {
		return models.Todo{}, errors.NewValidationError("title", nil, "cannot be empty")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	now := db.now()
	t := models.Todo{
		ID:        uuid.NewString(),
		Priority:  models.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ptr.NonZero(in.ProjectID) {
		if !isMember(db.projects[*in.ProjectID], user) {
			return models.Todo{}, errors.NewNotFoundError("project", *in.ProjectID)
		}
		t.ProjectID = *in.ProjectID
	}
	t.Position = db.countLocked(user, t.ProjectID)
	if err := apply(&t, in); err != nil {
		return models.Todo{}, err
	}

	db.todos[t.ID] = t
	db.todoOwner[t.ID] = user
	db.pub.Publish(db.audienceLocked(t), events.TodoUpserted{Type: events.TaskCreated, Todo: t})
	return t, nil
}

// UpdateTodo changes the fields set in in. An empty title is ignored.
func (db *DB) UpdateTodo(user, id string, in TodoInput) (models.Todo, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.todos[id]
	if !ok || !db.visibleLocked(user, t) {
		return models.Todo{}, errors.NewNotFoundError("todo", id)
	}
	if in.ProjectID != nil && *in.ProjectID != t.ProjectID {
		return models.Todo{}, errors.NewValidationError("project_id", *in.ProjectID, "todos cannot move between projects")
	}
	if err := apply(&t, in); err != nil {
		return models.Todo{}, err
	}
	t.UpdatedAt = db.now()

	db.todos[id] = t
	audience := db.audienceLocked(t)
	db.pub.Publish(audience, events.TodoUpserted{Type: events.TaskUpdated, Todo: t})
	db.notifyLocked(without(audience, user), models.Notification{
		Type:      models.NotificationTaskUpdated,
		Message:   db.nameLocked(user) + " updated \"" + t.Title + "\"",
		ProjectID: t.ProjectID,
	})
	return t, nil
}

// DeleteTodo removes a todo.
func (db *DB) DeleteTodo(user, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.todos[id]
	if !ok || !db.visibleLocked(user, t) {
		return errors.NewNotFoundError("todo", id)
	}
	audience := db.audienceLocked(t)
	delete(db.todos, id)
	delete(db.todoOwner, id)
	db.pub.Publish(audience, events.TodoRemoved{TodoID: id})
	return nil
}

// countLocked is the number of todos in the same list as a new todo.
func (db *DB) countLocked(user, projectID string) int {
	n := 0
	for id, t := range db.todos {
		if t.ProjectID != projectID {
			continue
		}
		if projectID != "" || db.todoOwner[id] == user {
			n++
		}
	}
	return n
}

func apply(t *models.Todo, in TodoInput) error {
	if ptr.NonZero(in.Title) {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	if ptr.NonZero(in.Priority) {
		switch *in.Priority {
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
			t.Priority = *in.Priority
		default:
			return errors.NewValidationError("priority", *in.Priority, "must be low, medium or high")
		}
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.Position != nil {
		t.Position = *in.Position
	}
	return nil
}
