// Package tasksync keeps a client-side view of todos, projects and
// notifications converged with the tasksync backend. It holds one
// authenticated WebSocket connection, applies every pushed event to the
// stores, reconnects with exponential backoff plus jitter, and re-pulls
// authoritative state over REST after every (re)connection.
//
// Example usage:
//
//	ts, err := tasksync.New(
//	    tasksync.WithAPIBase("https://tasks.example.com/api"),
//	    tasksync.WithCredentials(session.NewFileCredentials("")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ts.Close()
//
//	ts.Todos().OnChange(func() {
//	    fmt.Println("todos:", ts.Todos().Len())
//	})
//
//	if err := ts.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Mutations go through REST and land in the stores immediately;
//	// the socket echo of the same change is absorbed by id.
//	todo, err := ts.CreateTodo(ctx, api.TodoInput{Title: "Ship it"})
package tasksync

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync/pkg/api"
	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/logging"
	"github.com/agentstation/tasksync/pkg/realtime"
	"github.com/agentstation/tasksync/pkg/session"
	"github.com/agentstation/tasksync/pkg/store"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Stores provides the client-side read models.
type Stores interface {
	Todos() *store.TodoStore
	Projects() *store.ProjectStore
	Notifications() *store.NotificationStore
}

// Navigation tracks which project the user has open.
type Navigation interface {
	// Open marks projectID as viewed; an empty id means the aggregate list.
	Open(projectID string)
	CurrentProject() (string, bool)
}

// Client is a realtime-synchronized session against the tasksync backend.
type Client interface {

	// Stores provides the read models
	Stores

	// Navigation tracks the viewed project
	Navigation

	// Lifecycle controls the realtime connection
	Lifecycle

	// Mutations change state through the REST API
	Mutations

	// Hooks provides access to connection and event callbacks
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	logger  *zerolog.Logger

	stores     *store.Set
	api        *api.Client
	view       *session.View
	manager    *realtime.Manager
	dispatcher *realtime.Dispatcher
	resync     *realtime.Resyncer
	hooks      *hooks

	// lifecycle state
	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	closed  bool
}

// New wires the stores, REST client, connection manager, dispatcher and
// resync hook together. Nothing connects until Start is called.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	if o.credentials == nil {
		return nil, errors.NewValidationError("credentials", nil, "are required")
	}

	logger := o.logger
	if logger == nil {
		logger = logging.Component("tasksync")
	}

	c := &client{
		options: o,
		logger:  logger,
		stores:  store.NewSet(),
		hooks:   newHooks(),
	}

	var apiOpts []api.Option
	if o.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(o.httpClient))
	}
	if c.api, err = api.New(o.apiURL, o.credentials, apiOpts...); err != nil {
		return nil, errors.WrapResource("create", "api client", o.apiURL, err)
	}

	c.view = session.NewView(session.NavigatorFunc(c.redirected))
	c.dispatcher = realtime.NewDispatcher(c.stores, o.credentials, c.view, child(logger, "dispatcher"))
	c.resync = realtime.NewResyncer(c.api, c.stores, c.view, child(logger, "resync"))

	managerOpts := append([]realtime.Option{
		realtime.WithLogger(child(logger, "realtime")),
		realtime.OnOpen(c.resync.Trigger),
		realtime.OnFrame(c.frame),
		realtime.OnStateChange(c.hooks.triggerState),
	}, o.managerOptions...)
	if c.manager, err = realtime.NewManager(c.api.BaseURL(), o.credentials, managerOpts...); err != nil {
		return nil, errors.WrapResource("create", "connection manager", o.apiURL, err)
	}

	logger.Debug().Str("api_url", c.api.BaseURL().String()).Msg("Client created")
	return c, nil
}

// Todos returns the todo store.
func (c *client) Todos() *store.TodoStore { return c.stores.Todos }

// Projects returns the project store.
func (c *client) Projects() *store.ProjectStore { return c.stores.Projects }

// Notifications returns the notification store.
func (c *client) Notifications() *store.NotificationStore { return c.stores.Notifications }

// Open implements Navigation.
func (c *client) Open(projectID string) { c.view.Open(projectID) }

// CurrentProject implements Navigation.
func (c *client) CurrentProject() (string, bool) { return c.view.CurrentProject() }

// frame dispatches one inbound frame and reports its kind to event hooks.
func (c *client) frame(raw []byte) {
	kind := c.dispatcher.Dispatch(raw)
	c.hooks.triggerEvent(kind)
}

// redirected runs after the view has been cleared by a self-removal.
func (c *client) redirected() {
	if c.options.navigator != nil {
		c.options.navigator.RedirectHome()
	}
	c.hooks.triggerRedirect()
}

func child(l *zerolog.Logger, component string) *zerolog.Logger {
	cl := l.With().Str("component", component).Logger()
	return &cl
}
