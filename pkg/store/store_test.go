package store_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tasksync/pkg/models"
	"github.com/agentstation/tasksync/pkg/store"
)

var t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func project(id string) models.Project {
	return models.Project{ID: id, Name: "Project " + id, UpdatedAt: t0}
}

func ids(ps []models.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestTodoUpsertIdempotent(t *testing.T) {
	once := store.NewTodoStore()
	many := store.NewTodoStore()
	todo := models.Todo{ID: "t1", Title: "Buy milk", ProjectID: "p1", UpdatedAt: t0}

	once.Upsert(todo)
	for range 5 {
		many.Upsert(todo)
	}

	assert.Equal(t, once.List(), many.List())
	assert.Equal(t, 1, many.Len())
}

func TestTodoRemoveIdempotent(t *testing.T) {
	s := store.NewTodoStore()
	s.Upsert(models.Todo{ID: "t1"})
	s.Upsert(models.Todo{ID: "t2"})

	assert.True(t, s.Remove("t1"))
	after := s.List()
	assert.False(t, s.Remove("t1"))
	assert.False(t, s.Remove("never"))
	assert.Equal(t, after, s.List())
}

func TestTodoStaleUpsertIgnored(t *testing.T) {
	s := store.NewTodoStore()
	s.Upsert(models.Todo{ID: "t1", Title: "new", UpdatedAt: t0})

	assert.False(t, s.Upsert(models.Todo{ID: "t1", Title: "old", UpdatedAt: t0.Add(-time.Minute)}))
	got, _ := s.Get("t1")
	assert.Equal(t, "new", got.Title)

	assert.True(t, s.Upsert(models.Todo{ID: "t1", Title: "same time", UpdatedAt: t0}))
	got, _ = s.Get("t1")
	assert.Equal(t, "same time", got.Title)
}

func TestTodoReplaceAll(t *testing.T) {
	s := store.NewTodoStore()
	s.Upsert(models.Todo{ID: "gone"})
	s.Upsert(models.Todo{ID: "live", Title: "from socket", UpdatedAt: t0.Add(time.Minute)})

	s.ReplaceAll([]models.Todo{
		{ID: "live", Title: "from snapshot", UpdatedAt: t0},
		{ID: "fresh", Title: "fresh", UpdatedAt: t0},
	})

	_, ok := s.Get("gone")
	assert.False(t, ok)
	live, _ := s.Get("live")
	assert.Equal(t, "from socket", live.Title)
	assert.Equal(t, 2, s.Len())
}

func TestTodoReplaceProject(t *testing.T) {
	s := store.NewTodoStore()
	s.ReplaceAll([]models.Todo{
		{ID: "a", ProjectID: "p1"},
		{ID: "b", ProjectID: "p1"},
		{ID: "c", ProjectID: "p2"},
	})

	s.ReplaceProject("p1", []models.Todo{{ID: "d", ProjectID: "p1"}})

	assert.ElementsMatch(t, []string{"c", "d"}, todoIDs(s.List()))
	assert.Equal(t, []string{"d"}, todoIDs(s.ByProject("p1")))
}

func TestTodoRemoveProject(t *testing.T) {
	s := store.NewTodoStore()
	s.ReplaceAll([]models.Todo{{ID: "a", ProjectID: "p1"}, {ID: "b", ProjectID: "p2"}, {ID: "c", ProjectID: "p1"}})

	assert.Equal(t, 2, s.RemoveProject("p1"))
	assert.Equal(t, []string{"b"}, todoIDs(s.List()))
	assert.Equal(t, 0, s.RemoveProject("p1"))
}

func TestTodoListOrder(t *testing.T) {
	s := store.NewTodoStore()
	s.Upsert(models.Todo{ID: "z", Position: 0, CreatedAt: t0})
	s.Upsert(models.Todo{ID: "y", Position: 1})
	s.Upsert(models.Todo{ID: "x", Position: 0, CreatedAt: t0})
	s.Upsert(models.Todo{ID: "w", Position: 0, CreatedAt: t0.Add(-time.Hour)})

	assert.Equal(t, []string{"w", "x", "z", "y"}, todoIDs(s.List()))
}

func todoIDs(ts []models.Todo) []string {
	out := make([]string, len(ts))
	for i, td := range ts {
		out[i] = td.ID
	}
	return out
}

func TestFlagsAndHooks(t *testing.T) {
	s := store.NewTodoStore()
	var calls int
	cancel := s.OnChange(func() {
		calls++
		// Hooks run unlocked, so reading is allowed.
		_ = s.Snapshot()
	})

	s.SetLoading(true)
	assert.True(t, s.Loading())
	s.SetLoading(true)
	s.SetError(errors.New("boom"))
	assert.EqualError(t, s.Err(), "boom")
	s.SetError(nil)
	assert.NoError(t, s.Err())
	s.SetError(nil)
	s.Remove("absent")
	assert.Equal(t, 3, calls)

	cancel()
	s.Upsert(models.Todo{ID: "t1"})
	assert.Equal(t, 3, calls)
}

func TestProjectReorder(t *testing.T) {
	s := store.NewProjectStore()
	s.ReplaceAll(models.ProjectList{MyProjects: []models.Project{project("A"), project("B"), project("C")}})
	before := map[string]models.Project{}
	for _, p := range s.Mine() {
		before[p.ID] = p
	}

	s.Reorder([]string{"C", "A", "B"})

	mine := s.Mine()
	assert.Equal(t, []string{"C", "A", "B"}, ids(mine))
	for _, p := range mine {
		assert.Equal(t, before[p.ID], p)
	}
}

func TestProjectReorderPartial(t *testing.T) {
	s := store.NewProjectStore()
	s.ReplaceAll(models.ProjectList{MyProjects: []models.Project{project("A"), project("B"), project("C"), project("D")}})

	s.Reorder([]string{"D", "X", "B", "D"})

	assert.Equal(t, []string{"D", "B", "A", "C"}, ids(s.Mine()))
}

func TestProjectUpsert(t *testing.T) {
	s := store.NewProjectStore()
	s.ReplaceAll(models.ProjectList{
		MyProjects:     []models.Project{project("A")},
		SharedProjects: []models.Project{project("S")},
	})

	s.Upsert(project("B"))
	s.Upsert(project("B"))
	assert.Equal(t, []string{"A", "B"}, ids(s.Mine()))

	updated := project("S")
	updated.Name = "Renamed"
	updated.UpdatedAt = t0.Add(time.Minute)
	s.Upsert(updated)
	assert.Equal(t, []string{"S"}, ids(s.Shared()))
	got, ok := s.Get("S")
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.Name)

	stale := project("A")
	stale.Name = "Stale"
	stale.UpdatedAt = t0.Add(-time.Minute)
	assert.False(t, s.Upsert(stale))
	got, _ = s.Get("A")
	assert.Equal(t, "Project A", got.Name)
}

func TestProjectRemove(t *testing.T) {
	s := store.NewProjectStore()
	s.ReplaceAll(models.ProjectList{
		MyProjects:     []models.Project{project("A")},
		SharedProjects: []models.Project{project("S")},
	})

	assert.True(t, s.Remove("S"))
	assert.False(t, s.Remove("S"))
	assert.True(t, s.Remove("A"))
	snap := s.Snapshot()
	assert.Empty(t, snap.Mine)
	assert.Empty(t, snap.Shared)
}

func TestProjectMembers(t *testing.T) {
	s := store.NewProjectStore()
	s.ReplaceAll(models.ProjectList{SharedProjects: []models.Project{project("S")}})

	assert.True(t, s.AddMember("S", models.Member{ID: "u1", Name: "Ann"}))
	assert.True(t, s.AddMember("S", models.Member{ID: "u1", Name: "Ann B."}))
	assert.False(t, s.AddMember("missing", models.Member{ID: "u1"}))

	p, _ := s.Get("S")
	require.Len(t, p.Members, 1)
	assert.Equal(t, "Ann B.", p.Members[0].Name)

	snap := s.Snapshot()
	snap.Shared[0].Members[0].Name = "mutated copy"
	p, _ = s.Get("S")
	assert.Equal(t, "Ann B.", p.Members[0].Name)

	assert.True(t, s.RemoveMember("S", "u1"))
	assert.False(t, s.RemoveMember("S", "u1"))
	p, _ = s.Get("S")
	assert.Empty(t, p.Members)
}

func TestNotificationUnreadInvariant(t *testing.T) {
	s := store.NewNotificationStore()
	check := func() {
		t.Helper()
		unread := 0
		for _, n := range s.List() {
			if !n.Read {
				unread++
			}
		}
		assert.Equal(t, unread, s.UnreadCount())
	}

	s.ReplaceAll([]models.Notification{
		{ID: "n1", CreatedAt: t0},
		{ID: "n2", Read: true, CreatedAt: t0.Add(time.Minute)},
	})
	check()
	s.Add(models.Notification{ID: "n3", CreatedAt: t0.Add(2 * time.Minute)})
	check()
	s.Add(models.Notification{ID: "n3", CreatedAt: t0.Add(2 * time.Minute)})
	check()
	assert.Len(t, s.List(), 3)
	s.MarkRead("n1")
	check()
	s.MarkRead("n1")
	check()
	s.Add(models.Notification{ID: "n4", CreatedAt: t0})
	check()
	s.MarkAllRead()
	check()
	assert.Equal(t, 0, s.UnreadCount())
	s.Remove("n4")
	check()
}

func TestNotificationOrder(t *testing.T) {
	s := store.NewNotificationStore()
	s.Add(models.Notification{ID: "old", CreatedAt: t0})
	s.Add(models.Notification{ID: "new", CreatedAt: t0.Add(time.Hour)})
	s.Add(models.Notification{ID: "older", CreatedAt: t0.Add(-time.Hour)})
	s.Add(models.Notification{ID: "tie", CreatedAt: t0})

	var got []string
	for _, n := range s.List() {
		got = append(got, n.ID)
	}
	assert.Equal(t, []string{"new", "tie", "old", "older"}, got)
}

func TestConcurrentMutations(t *testing.T) {
	set := store.NewSet()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 50 {
				id := string(rune('a' + (i+j)%5))
				set.Todos.Upsert(models.Todo{ID: id})
				set.Notifications.Add(models.Notification{ID: id})
				set.Projects.Upsert(models.Project{ID: id})
				_ = set.Todos.Snapshot()
				_ = set.Projects.Snapshot()
				if j%7 == 0 {
					set.Notifications.MarkAllRead()
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, set.Todos.Len())
	assert.Len(t, set.Projects.Mine(), 5)
	snap := set.Notifications.Snapshot()
	unread := 0
	for _, n := range snap.Notifications {
		if !n.Read {
			unread++
		}
	}
	assert.Equal(t, unread, snap.UnreadCount)
}
