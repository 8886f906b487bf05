// Package models defines the records synchronized between the tasksync
// backend and its clients: todos, projects with their members, and
// notifications.
package models

import (
	"slices"
	"time"
)

// Priority is a todo's urgency.
type Priority string

// Priority values.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Todo is a single task, optionally belonging to a project.
type Todo struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Completed   bool       `json:"completed" yaml:"completed"`
	Priority    Priority   `json:"priority,omitempty" yaml:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	ProjectID   string     `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Position    int        `json:"position" yaml:"position"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
}

// StalerThan reports whether t is an older version of stored.
// Zero timestamps on either side never count as stale.
func (t Todo) StalerThan(stored Todo) bool {
	return staler(t.UpdatedAt, stored.UpdatedAt)
}

// Member is a user participating in a project.
type Member struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Project groups todos and members.
type Project struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	OwnerID     string    `json:"owner_id" yaml:"owner_id"`
	Members     []Member  `json:"members" yaml:"members"`
	Position    int       `json:"position" yaml:"position"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// Clone returns a copy of p that does not share its member slice.
func (p Project) Clone() Project {
	p.Members = slices.Clone(p.Members)
	return p
}

// HasMember reports whether userID is in the member list.
func (p Project) HasMember(userID string) bool {
	return slices.ContainsFunc(p.Members, func(m Member) bool { return m.ID == userID })
}

// StalerThan reports whether p is an older version of stored.
func (p Project) StalerThan(stored Project) bool {
	return staler(p.UpdatedAt, stored.UpdatedAt)
}

// ProjectList is the response of the project listing endpoint: projects
// the user owns, in display order, and projects shared with the user.
type ProjectList struct {
	MyProjects     []Project `json:"my_projects" yaml:"my_projects"`
	SharedProjects []Project `json:"shared_projects" yaml:"shared_projects"`
}

// NotificationType classifies a notification.
type NotificationType string

// Notification types emitted by the backend.
const (
	NotificationProjectInvite NotificationType = "project_invite"
	NotificationMemberJoined  NotificationType = "member_joined"
	NotificationMemberLeft    NotificationType = "member_left"
	NotificationTaskAssigned  NotificationType = "task_assigned"
	NotificationTaskUpdated   NotificationType = "task_updated"
)

// Notification is an inbox entry for a user.
type Notification struct {
	ID        string           `json:"id" yaml:"id"`
	Type      NotificationType `json:"type" yaml:"type"`
	Message   string           `json:"message" yaml:"message"`
	ProjectID string           `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Read      bool             `json:"read" yaml:"read"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
}

func staler(incoming, stored time.Time) bool {
	if incoming.IsZero() || stored.IsZero() {
		return false
	}
	return incoming.Before(stored)
}
