package store

import (
	"cmp"
	"slices"

	"github.com/agentstation/tasksync/pkg/models"
)

// TodoStore is the union of every todo the client knows about, keyed by id.
type TodoStore struct {
	base
	todos map[string]models.Todo
}

// TodoSnapshot is a point-in-time copy of a TodoStore.
type TodoSnapshot struct {
	Todos   []models.Todo
	Loading bool
	Err     error
}

// NewTodoStore creates an empty todo store.
func NewTodoStore() *TodoStore {
	return &TodoStore{todos: make(map[string]models.Todo)}
}

// Upsert inserts or replaces a todo by id. An incoming record older than
// the stored one is ignored and Upsert reports false.
func (s *TodoStore) Upsert(todo models.Todo) bool {
	return s.mutate(func() bool {
		if cur, ok := s.todos[todo.ID]; ok && todo.StalerThan(cur) {
			return false
		}
		s.todos[todo.ID] = todo
		return true
	})
}

// Remove deletes a todo. Removing an absent id is a no-op.
func (s *TodoStore) Remove(id string) bool {
	return s.mutate(func() bool {
		if _, ok := s.todos[id]; !ok {
			return false
		}
		delete(s.todos, id)
		return true
	})
}

// RemoveProject deletes every todo belonging to projectID and returns how many went.
func (s *TodoStore) RemoveProject(projectID string) int {
	var n int
	s.mutate(func() bool {
		for id, t := range s.todos {
			if t.ProjectID == projectID {
				delete(s.todos, id)
				n++
			}
		}
		return n > 0
	})
	return n
}

// ReplaceAll swaps in an authoritative collection. Records absent from
// todos are dropped; for records present on both sides the newer wins.
func (s *TodoStore) ReplaceAll(todos []models.Todo) {
	s.mutate(func() bool {
		s.todos = merge(s.todos, todos, func(models.Todo) bool { return true })
		return true
	})
}

// ReplaceProject swaps in an authoritative collection for one project,
// leaving todos of other projects untouched.
func (s *TodoStore) ReplaceProject(projectID string, todos []models.Todo) {
	s.mutate(func() bool {
		s.todos = merge(s.todos, todos, func(t models.Todo) bool { return t.ProjectID == projectID })
		return true
	})
}

// merge builds the result of replacing the records selected by scope with incoming.
func merge(cur map[string]models.Todo, incoming []models.Todo, scope func(models.Todo) bool) map[string]models.Todo {
	next := make(map[string]models.Todo, len(incoming))
	for id, t := range cur {
		if !scope(t) {
			next[id] = t
		}
	}
	for _, t := range incoming {
		if old, ok := cur[t.ID]; ok && t.StalerThan(old) {
			t = old
		}
		next[t.ID] = t
	}
	return next
}

// Get returns the todo with the given id.
func (s *TodoStore) Get(id string) (models.Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.todos[id]
	return t, ok
}

// Len returns the number of todos.
func (s *TodoStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.todos)
}

// List returns all todos ordered by position, creation time, then id.
func (s *TodoStore) List() []models.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(func(models.Todo) bool { return true })
}

// ByProject returns the todos of one project in List order.
func (s *TodoStore) ByProject(projectID string) []models.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(func(t models.Todo) bool { return t.ProjectID == projectID })
}

// Snapshot returns a consistent copy of the store.
func (s *TodoStore) Snapshot() TodoSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TodoSnapshot{
		Todos:   s.listLocked(func(models.Todo) bool { return true }),
		Loading: s.loading,
		Err:     s.err,
	}
}

func (s *TodoStore) listLocked(keep func(models.Todo) bool) []models.Todo {
	out := make([]models.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		if keep(t) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b models.Todo) int {
		return cmp.Or(
			cmp.Compare(a.Position, b.Position),
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out
}
