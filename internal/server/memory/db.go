// Package memory is the in-memory data layer of the development backend.
// Every mutation publishes the realtime events it causes to the users who
// can see the affected records.
package memory

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/events"
	"github.com/agentstation/tasksync/pkg/models"
)

// Publisher receives the events caused by a mutation.
type Publisher interface {
	Publish(recipients []string, ev events.Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(recipients []string, ev events.Event)

// Publish implements Publisher.
func (f PublisherFunc) Publish(recipients []string, ev events.Event) { f(recipients, ev) }

// User is an account of the development backend.
type User struct {
	models.Member
	Token string `json:"-" yaml:"token"`
}

// DB holds users, projects, todos and notifications.
type DB struct {
	mu sync.RWMutex

	users  map[string]User   // by id
	tokens map[string]string // token -> user id

	projects map[string]*models.Project
	order    map[string][]string // user id -> owned project ids in display order

	todos     map[string]models.Todo
	todoOwner map[string]string // todo id -> creator, for todos outside any project

	inbox map[string][]models.Notification // user id -> notifications

	pub Publisher
	now func() time.Time
}

// Option configures a DB.
type Option func(*DB)

// WithClock replaces the wall clock, used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// New creates an empty database publishing to pub. pub may be nil.
func New(pub Publisher, opts ...Option) *DB {
	if pub == nil {
		pub = PublisherFunc(func([]string, events.Event) {})
	}
	db := &DB{
		users:     make(map[string]User),
		tokens:    make(map[string]string),
		projects:  make(map[string]*models.Project),
		order:     make(map[string][]string),
		todos:     make(map[string]models.Todo),
		todoOwner: make(map[string]string),
		inbox:     make(map[string][]models.Notification),
		pub:       pub,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// AddUser registers an account. An empty token is generated.
func (db *DB) AddUser(id, name, email, token string) (User, error) {
	if id == "" {
		return User{}, errors.NewValidationError("id", id, "is required")
	}
	if token == "" {
		token = uuid.NewString()
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.users[id]; ok {
		return User{}, errors.NewValidationError("id", id, "already exists")
	}
	if _, ok := db.tokens[token]; ok {
		return User{}, errors.NewValidationError("token", nil, "already in use")
	}
	u := User{Member: models.Member{ID: id, Name: name, Email: email}, Token: token}
	db.users[id] = u
	db.tokens[token] = id
	return u, nil
}

// Authenticate resolves a bearer token to a user id.
func (db *DB) Authenticate(token string) (string, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	id, ok := db.tokens[token]
	return id, ok
}

// Users lists every account sorted by id.
func (db *DB) Users() []User {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]User, 0, len(db.users))
	for _, u := range db.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b User) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// TodoInput describes a todo to create or the fields to change. Nil
// pointers leave a field unchanged on update.
type TodoInput struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Completed   *bool            `json:"completed,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	ProjectID   *string          `json:"project_id,omitempty"`
	Position    *int             `json:"position,omitempty"`
}

// ProjectInput describes a project to create.
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// isMember reports whether user belongs to project.
func isMember(p *models.Project, user string) bool {
	return p != nil && p.HasMember(user)
}

func memberIDs(p *models.Project) []string {
	ids := make([]string, len(p.Members))
	for i, m := range p.Members {
		ids[i] = m.ID
	}
	return ids
}

// audienceLocked is every user who can see todo t.
func (db *DB) audienceLocked(t models.Todo) []string {
	if t.ProjectID == "" {
		return []string{db.todoOwner[t.ID]}
	}
	if p, ok := db.projects[t.ProjectID]; ok {
		return memberIDs(p)
	}
	return nil
}

func (db *DB) visibleLocked(user string, t models.Todo) bool {
	if t.ProjectID == "" {
		return db.todoOwner[t.ID] == user
	}
	return isMember(db.projects[t.ProjectID], user)
}

func sortTodos(ts []models.Todo) {
	slices.SortStableFunc(ts, func(a, b models.Todo) int {
		return cmp.Or(
			cmp.Compare(a.Position, b.Position),
			a.CreatedAt.Compare(b.CreatedAt),
			strings.Compare(a.ID, b.ID),
		)
	})
}

func without(ids []string, drop string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return id == drop })
}
