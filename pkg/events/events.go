// Package events defines the realtime events pushed by the tasksync backend
// and the validating decoder that turns raw WebSocket frames into them.
//
// Event is a closed set: every frame decodes to exactly one of the variant
// types in this package, or to Unknown when the frame is malformed or names
// a kind this client does not understand.
package events

import (
	"strings"

	"github.com/agentstation/tasksync/pkg/models"
)

// Kind is the wire tag carried in a frame's "event" field.
type Kind string

// Event kinds.
const (
	TaskCreated         Kind = "task_created"
	TaskUpdated         Kind = "task_updated"
	TaskDeleted         Kind = "task_deleted"
	NotificationNew     Kind = "notification_new"
	NotificationAllRead Kind = "notification_all_read"
	ProjectCreated      Kind = "project_created"
	ProjectUpdated      Kind = "project_updated"
	ProjectDeleted      Kind = "project_deleted"
	ProjectReordered    Kind = "project_reordered"
	TeamMemberJoined    Kind = "team_member_joined"
	TeamMemberLeft      Kind = "team_member_left"

	// KindUnknown is reported for frames that could not be decoded.
	KindUnknown Kind = "unknown"
)

// Kinds lists every known event kind.
var Kinds = []Kind{
	TaskCreated, TaskUpdated, TaskDeleted,
	NotificationNew, NotificationAllRead,
	ProjectCreated, ProjectUpdated, ProjectDeleted, ProjectReordered,
	TeamMemberJoined, TeamMemberLeft,
}

// ParseKind normalizes a wire tag. Hyphenated spellings are accepted.
func ParseKind(tag string) (Kind, bool) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), "-", "_"))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return KindUnknown, false
}

// Event is one decoded realtime event.
type Event interface {
	Kind() Kind
	event()
}

// TodoUpserted is a created or updated todo carrying the full record.
type TodoUpserted struct {
	Type Kind // TaskCreated or TaskUpdated
	Todo models.Todo
}

// TodoRemoved names a removed todo.
type TodoRemoved struct {
	TodoID string
}

// NotificationAdded is a new inbox entry.
type NotificationAdded struct {
	Notification models.Notification
}

// NotificationsAllRead marks the whole inbox read.
type NotificationsAllRead struct{}

// ProjectUpserted is a created or updated project carrying the full record.
type ProjectUpserted struct {
	Type    Kind // ProjectCreated or ProjectUpdated
	Project models.Project
}

// ProjectRemoved names a removed project.
type ProjectRemoved struct {
	ProjectID string
}

// ProjectsReordered carries the new order of the user's own projects.
type ProjectsReordered struct {
	ProjectIDs []string
}

// MemberJoined is a member added to a project.
type MemberJoined struct {
	ProjectID   string
	ProjectName string
	Member      models.Member
}

// MemberLeft is a member removed from a project.
type MemberLeft struct {
	ProjectID   string
	ProjectName string
	Member      models.Member
}

// Unknown is a frame that failed validation. Tag is whatever the frame
// carried in its event field, possibly empty.
type Unknown struct {
	Tag string
	Err error
}

// Kind implements Event.
func (e TodoUpserted) Kind() Kind { return e.Type }
func (TodoRemoved) Kind() Kind { return TaskDeleted }
func (NotificationAdded) Kind() Kind { return NotificationNew }
func (NotificationsAllRead) Kind() Kind { return NotificationAllRead }
func (e ProjectUpserted) Kind() Kind { return e.Type }
func (ProjectRemoved) Kind() Kind { return ProjectDeleted }
func (ProjectsReordered) Kind() Kind { return ProjectReordered }
func (MemberJoined) Kind() Kind { return TeamMemberJoined }
func (MemberLeft) Kind() Kind { return TeamMemberLeft }
func (Unknown) Kind() Kind { return KindUnknown }
func (TodoUpserted) event() {}
func (TodoRemoved) event() {}
func (NotificationAdded) event() {}
func (NotificationsAllRead) event() {}
func (ProjectUpserted) event() {}
func (ProjectRemoved) event() {}
func (ProjectsReordered) event() {}
func (MemberJoined) event() {}
func (MemberLeft) event() {}
func (Unknown) event() {}

// Ensure variants implement Event at compile time
var (
	_ Event = TodoUpserted{}
	_ Event = TodoRemoved{}
	_ Event = NotificationAdded{}
	_ Event = NotificationsAllRead{}
	_ Event = ProjectUpserted{}
	_ Event = ProjectRemoved{}
	_ Event = ProjectsReordered{}
	_ Event = MemberJoined{}
	_ Event = MemberLeft{}
	_ Event = Unknown{}
)
