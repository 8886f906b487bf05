package realtime

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync/pkg/events"
	"github.com/agentstation/tasksync/pkg/logging"
	"github.com/agentstation/tasksync/pkg/store"
)

// Viewer reports which project is on screen and can navigate away from it.
type Viewer interface {
	CurrentProject() (string, bool)
	RedirectHome()
}

// UserSource yields the local user's id.
type UserSource interface {
	UserID() string
}

// Dispatcher turns raw frames into typed events and applies each to the stores.
type Dispatcher struct {
	stores *store.Set
	users  UserSource
	view   Viewer
	logger *zerolog.Logger
}

// NewDispatcher creates a dispatcher writing into stores. users identifies
// the local user for self-removal; view may be nil when nothing tracks the
// open project.
func NewDispatcher(stores *store.Set, users UserSource, view Viewer, logger *zerolog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Component("dispatcher")
	}
	return &Dispatcher{stores: stores, users: users, view: view, logger: logger}
}

// Dispatch decodes and applies one frame, returning the decoded kind.
// Malformed or unknown frames are logged and dropped without touching
// any store.
func (d *Dispatcher) Dispatch(raw []byte) events.Kind {
	ev, err := events.Decode(raw)
	if err != nil {
		d.logger.Warn().Err(err).Int("bytes", len(raw)).Msg("Dropping realtime frame")
		return events.KindUnknown
	}
	d.Apply(ev)
	return ev.Kind()
}

// Apply routes a decoded event to its store mutation.
func (d *Dispatcher) Apply(ev events.Event) {
	log := d.logger.With().Str("event", string(ev.Kind())).Logger()

	switch e := ev.(type) {
	case events.TodoUpserted:
		if !d.stores.Todos.Upsert(e.Todo) {
			log.Debug().Str("todo_id", e.Todo.ID).Msg("Ignoring stale todo")
		}

	case events.TodoRemoved:
		d.stores.Todos.Remove(e.TodoID)

	case events.NotificationAdded:
		d.stores.Notifications.Add(e.Notification)

	case events.NotificationsAllRead:
		d.stores.Notifications.MarkAllRead()

	case events.ProjectUpserted:
		if !d.stores.Projects.Upsert(e.Project) {
			log.Debug().Str("project_id", e.Project.ID).Msg("Ignoring stale project")
		}

	case events.ProjectRemoved:
		d.stores.Projects.Remove(e.ProjectID)

	case events.ProjectsReordered:
		d.stores.Projects.Reorder(e.ProjectIDs)

	case events.MemberJoined:
		if !d.stores.Projects.AddMember(e.ProjectID, e.Member) {
			log.Debug().Str("project_id", e.ProjectID).Msg("Member joined unknown project")
		}

	case events.MemberLeft:
		d.memberLeft(log, e)

	default:
		log.Warn().Msg("Unhandled realtime event")
		return
	}

	log.Debug().Msg("Applied realtime event")
}

func (d *Dispatcher) memberLeft(log zerolog.Logger, e events.MemberLeft) {
	if d.users == nil || e.Member.ID != d.users.UserID() {
		d.stores.Projects.RemoveMember(e.ProjectID, e.Member.ID)
		return
	}

	// The local user was removed: the project and its todos are no
	// longer visible.
	d.stores.Projects.Remove(e.ProjectID)
	n := d.stores.Todos.RemoveProject(e.ProjectID)
	log.Info().
		Str("project_id", e.ProjectID).
		Str("project_name", e.ProjectName).
		Int("todos_removed", n).
		Msg("Removed from project")

	if d.view == nil {
		return
	}
	if current, ok := d.view.CurrentProject(); ok && current == e.ProjectID {
		d.view.RedirectHome()
	}
}
