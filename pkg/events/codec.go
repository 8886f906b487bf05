package events

import (
	"encoding/json"
	"fmt"

	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/models"
)

// Frame is the JSON shape of one WebSocket text frame.
type Frame struct {
	Event        string               `json:"event"`
	Todo         *models.Todo         `json:"todo,omitempty"`
	TodoID       string               `json:"todo_id,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
	Project      *models.Project      `json:"project,omitempty"`
	ProjectID    string               `json:"project_id,omitempty"`
	ProjectIDs   []string             `json:"project_ids,omitempty"`
	Member       *models.Member       `json:"member,omitempty"`
	ProjectName  string               `json:"project_name,omitempty"`
}

// Decode parses and validates a raw frame. It never panics; on failure it
// returns an Unknown event together with the reason.
func Decode(raw []byte) (Event, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		perr := errors.WrapParse("json", "", err)
		return Unknown{Err: perr}, perr
	}

	kind, ok := ParseKind(f.Event)
	if !ok {
		err := fmt.Errorf("%w: %q", errors.ErrUnknownEvent, f.Event)
		return Unknown{Tag: f.Event, Err: err}, err
	}

	ev, err := fromFrame(kind, &f)
	if err != nil {
		return Unknown{Tag: f.Event, Err: err}, err
	}
	return ev, nil
}

func fromFrame(kind Kind, f *Frame) (Event, error) {
	switch kind {
	case TaskCreated, TaskUpdated:
		if f.Todo == nil || f.Todo.ID == "" {
			return nil, errors.NewValidationError("todo", f.Todo, "todo record with id is required")
		}
		return TodoUpserted{Type: kind, Todo: *f.Todo}, nil

	case TaskDeleted:
		if f.TodoID == "" {
			return nil, errors.NewValidationError("todo_id", nil, "is required")
		}
		return TodoRemoved{TodoID: f.TodoID}, nil

	case NotificationNew:
		if f.Notification == nil || f.Notification.ID == "" {
			return nil, errors.NewValidationError("notification", f.Notification, "notification record with id is required")
		}
		return NotificationAdded{Notification: *f.Notification}, nil

	case NotificationAllRead:
		return NotificationsAllRead{}, nil

	case ProjectCreated, ProjectUpdated:
		if f.Project == nil || f.Project.ID == "" {
			return nil, errors.NewValidationError("project", f.Project, "project record with id is required")
		}
		return ProjectUpserted{Type: kind, Project: f.Project.Clone()}, nil

	case ProjectDeleted:
		if f.ProjectID == "" {
			return nil, errors.NewValidationError("project_id", nil, "is required")
		}
		return ProjectRemoved{ProjectID: f.ProjectID}, nil

	case ProjectReordered:
		// An absent list reorders nothing; omitempty drops an empty one on the wire.
		return ProjectsReordered{ProjectIDs: f.ProjectIDs}, nil

	case TeamMemberJoined, TeamMemberLeft:
		if f.ProjectID == "" {
			return nil, errors.NewValidationError("project_id", nil, "is required")
		}
		if f.Member == nil || f.Member.ID == "" {
			return nil, errors.NewValidationError("member", f.Member, "member with id is required")
		}
		if kind == TeamMemberJoined {
			return MemberJoined{ProjectID: f.ProjectID, ProjectName: f.ProjectName, Member: *f.Member}, nil
		}
		return MemberLeft{ProjectID: f.ProjectID, ProjectName: f.ProjectName, Member: *f.Member}, nil
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, kind)
}

// ToFrame converts an event back into its wire shape.
func ToFrame(ev Event) (Frame, error) {
	switch e := ev.(type) {
	case TodoUpserted:
		return Frame{Event: string(e.Type), Todo: &e.Todo}, nil
	case TodoRemoved:
		return Frame{Event: string(TaskDeleted), TodoID: e.TodoID}, nil
	case NotificationAdded:
		return Frame{Event: string(NotificationNew), Notification: &e.Notification}, nil
	case NotificationsAllRead:
		return Frame{Event: string(NotificationAllRead)}, nil
	case ProjectUpserted:
		return Frame{Event: string(e.Type), Project: &e.Project}, nil
	case ProjectRemoved:
		return Frame{Event: string(ProjectDeleted), ProjectID: e.ProjectID}, nil
	case ProjectsReordered:
		return Frame{Event: string(ProjectReordered), ProjectIDs: e.ProjectIDs}, nil
	case MemberJoined:
		return Frame{Event: string(TeamMemberJoined), ProjectID: e.ProjectID, ProjectName: e.ProjectName, Member: &e.Member}, nil
	case MemberLeft:
		return Frame{Event: string(TeamMemberLeft), ProjectID: e.ProjectID, ProjectName: e.ProjectName, Member: &e.Member}, nil
	}
	return Frame{}, fmt.Errorf("%w: cannot encode %T", errors.ErrUnknownEvent, ev)
}

// Encode marshals an event into a JSON text frame.
func Encode(ev Event) ([]byte, error) {
	f, err := ToFrame(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(f)
}
