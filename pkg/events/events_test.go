package events_test

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/events"
	"github.com/agentstation/tasksync/pkg/models"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  events.Event
	}{
		{
			name:  "task created",
			frame: `{"event":"task_created","todo":{"id":"t1","title":"Write tests","project_id":"p1"}}`,
			want:  events.TodoUpserted{Type: events.TaskCreated, Todo: models.Todo{ID: "t1", Title: "Write tests", ProjectID: "p1"}},
		},
		{
			name:  "hyphenated alias",
			frame: `{"event":"task-updated","todo":{"id":"t1","completed":true}}`,
			want:  events.TodoUpserted{Type: events.TaskUpdated, Todo: models.Todo{ID: "t1", Completed: true}},
		},
		{
			name:  "task deleted",
			frame: `{"event":"task_deleted","todo_id":"t1"}`,
			want:  events.TodoRemoved{TodoID: "t1"},
		},
		{
			name:  "notification new",
			frame: `{"event":"notification_new","notification":{"id":"n1","type":"member_joined","message":"hi"}}`,
			want:  events.NotificationAdded{Notification: models.Notification{ID: "n1", Type: models.NotificationMemberJoined, Message: "hi"}},
		},
		{
			name:  "notification all read",
			frame: `{"event":"notification_all_read"}`,
			want:  events.NotificationsAllRead{},
		},
		{
			name:  "project updated",
			frame: `{"event":"project_updated","project":{"id":"p1","name":"Home","members":[{"id":"u1","name":"Ann"}]}}`,
			want: events.ProjectUpserted{Type: events.ProjectUpdated, Project: models.Project{
				ID: "p1", Name: "Home", Members: []models.Member{{ID: "u1", Name: "Ann"}},
			}},
		},
		{
			name:  "project deleted",
			frame: `{"event":"project-deleted","project_id":"p1"}`,
			want:  events.ProjectRemoved{ProjectID: "p1"},
		},
		{
			name:  "project reordered",
			frame: `{"event":"project_reordered","project_ids":["c","a","b"]}`,
			want:  events.ProjectsReordered{ProjectIDs: []string{"c", "a", "b"}},
		},
		{
			name:  "member joined",
			frame: `{"event":"team_member_joined","project_id":"p1","project_name":"Home","member":{"id":"u2","name":"Bo"}}`,
			want:  events.MemberJoined{ProjectID: "p1", ProjectName: "Home", Member: models.Member{ID: "u2", Name: "Bo"}},
		},
		{
			name:  "member left",
			frame: `{"event":"team_member_left","project_id":"p1","member":{"id":"u2"}}`,
			want:  events.MemberLeft{ProjectID: "p1", Member: models.Member{ID: "u2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := events.Decode([]byte(tt.frame))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev)
			assert.Equal(t, tt.want.Kind(), ev.Kind())
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name   string
		frame  string
		isKind func(error) bool
	}{
		{"not json", `{"event":`, func(err error) bool { _, ok := err.(*errors.ParseError); return ok }},
		{"missing event", `{"todo":{"id":"t1"}}`, isUnknownEvent},
		{"unknown event", `{"event":"task_exploded"}`, isUnknownEvent},
		{"task without todo", `{"event":"task_created"}`, errors.IsValidationError},
		{"task without id", `{"event":"task_updated","todo":{"title":"x"}}`, errors.IsValidationError},
		{"delete without id", `{"event":"task_deleted"}`, errors.IsValidationError},
		{"notification without record", `{"event":"notification_new"}`, errors.IsValidationError},
		{"project without id", `{"event":"project_created","project":{}}`, errors.IsValidationError},
		{"project delete without id", `{"event":"project_deleted"}`, errors.IsValidationError},
		{"member without project", `{"event":"team_member_joined","member":{"id":"u"}}`, errors.IsValidationError},
		{"member without id", `{"event":"team_member_left","project_id":"p1","member":{}}`, errors.IsValidationError},
		{"array frame", `[1,2,3]`, func(err error) bool { _, ok := err.(*errors.ParseError); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev events.Event
			require.NotPanics(t, func() {
				var err error
				ev, err = events.Decode([]byte(tt.frame))
				require.Error(t, err)
				assert.True(t, tt.isKind(err), "unexpected error type: %v", err)
			})
			unknown, ok := ev.(events.Unknown)
			require.True(t, ok)
			assert.Equal(t, events.KindUnknown, unknown.Kind())
			assert.Error(t, unknown.Err)
		})
	}
}

func isUnknownEvent(err error) bool {
	return stderrors.Is(err, errors.ErrUnknownEvent)
}

func TestParseKind(t *testing.T) {
	for _, k := range events.Kinds {
		got, ok := events.ParseKind(string(k))
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}

	got, ok := events.ParseKind(" Team-Member-Left ")
	assert.True(t, ok)
	assert.Equal(t, events.TeamMemberLeft, got)

	got, ok = events.ParseKind("unknown")
	assert.False(t, ok)
	assert.Equal(t, events.KindUnknown, got)
}

func TestEncodeDecode(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	all := []events.Event{
		events.TodoUpserted{Type: events.TaskCreated, Todo: models.Todo{ID: "t1", Title: "a", CreatedAt: now, UpdatedAt: now}},
		events.TodoRemoved{TodoID: "t1"},
		events.NotificationAdded{Notification: models.Notification{ID: "n1", CreatedAt: now}},
		events.NotificationsAllRead{},
		events.ProjectUpserted{Type: events.ProjectCreated, Project: models.Project{ID: "p1", Members: []models.Member{}, CreatedAt: now, UpdatedAt: now}},
		events.ProjectRemoved{ProjectID: "p1"},
		events.ProjectsReordered{ProjectIDs: []string{"b", "a"}},
		events.MemberJoined{ProjectID: "p1", ProjectName: "P", Member: models.Member{ID: "u1"}},
		events.MemberLeft{ProjectID: "p1", ProjectName: "P", Member: models.Member{ID: "u1"}},
	}

	for _, ev := range all {
		t.Run(string(ev.Kind()), func(t *testing.T) {
			raw, err := events.Encode(ev)
			require.NoError(t, err)
			got, err := events.Decode(raw)
			require.NoError(t, err)
			assert.Equal(t, ev, got)
		})
	}

	_, err := events.Encode(events.Unknown{})
	assert.Error(t, err)
}
