package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/agentstation/tasksync/pkg/constants"
	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/logging"
	"github.com/agentstation/tasksync/pkg/models"
	"github.com/agentstation/tasksync/pkg/store"
)

// Fetcher is the subset of the REST API the resync pulls from.
type Fetcher interface {
	FetchTodos(ctx context.Context) ([]models.Todo, error)
	FetchProjectTodos(ctx context.Context, projectID string) ([]models.Todo, error)
	FetchProjects(ctx context.Context) (models.ProjectList, error)
	FetchNotifications(ctx context.Context) ([]models.Notification, error)
}

// ProjectViewer reports which project is on screen.
type ProjectViewer interface {
	CurrentProject() (string, bool)
}

// Resyncer re-pulls authoritative state after every (re)connection so
// events missed while offline are reconciled.
type Resyncer struct {
	api     Fetcher
	stores  *store.Set
	view    ProjectViewer
	timeout time.Duration
	logger  *zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{} // closed when the latest triggered sync exits
	wg     sync.WaitGroup
	closed bool
}

// NewResyncer creates a resyncer. view may be nil.
func NewResyncer(api Fetcher, stores *store.Set, view ProjectViewer, logger *zerolog.Logger) *Resyncer {
	if logger == nil {
		logger = logging.Component("resync")
	}
	return &Resyncer{
		api:     api,
		stores:  stores,
		view:    view,
		timeout: constants.ResyncTimeout,
		logger:  logger,
	}
}

// Trigger starts a resync in the background, cancelling one still in
// flight. The new sync starts only after the cancelled one has exited, so
// the stores' loading flags are never reset by a superseded sync. Trigger
// never blocks, so it is safe as a Manager OnOpen hook.
func (r *Resyncer) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	r.cancel = cancel
	prev, done := r.done, make(chan struct{})
	r.done = done
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(done)
		defer cancel()
		if prev != nil {
			<-prev
		}
		if ctx.Err() != nil {
			return
		}
		_ = r.Sync(ctx)
	}()
}

// Wait blocks until background resyncs have finished.
func (r *Resyncer) Wait() {
	r.wg.Wait()
}

// Close cancels any in-flight resync, waits for it, and disables Trigger.
func (r *Resyncer) Close() {
	r.mu.Lock()
	r.closed = true
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// Sync pulls todos, projects and notifications concurrently. Failures,
// including an expired deadline, are recorded on the affected store and
// also returned joined together. Results of a cancelled sync are discarded.
func (r *Resyncer) Sync(ctx context.Context) error {
	started := time.Now()
	p := pool.New().WithContext(ctx)
	p.Go(r.syncTodos)
	p.Go(r.syncProjects)
	p.Go(r.syncNotifications)
	err := p.Wait()

	switch {
	case err == nil:
		r.logger.Debug().Dur("elapsed", time.Since(started)).Msg("Resync finished")
	case errors.IsCanceled(err):
		r.logger.Debug().Dur("elapsed", time.Since(started)).Msg("Resync superseded")
	default:
		r.logger.Warn().Err(err).Bool("timeout", errors.IsTimeout(err)).Dur("elapsed", time.Since(started)).Msg("Resync failed")
	}
	return err
}

func (r *Resyncer) syncTodos(ctx context.Context) error {
	todos := r.stores.Todos
	if r.view != nil {
		if projectID, ok := r.view.CurrentProject(); ok {
			// Silent refresh: the loading flag stays untouched.
			list, err := r.api.FetchProjectTodos(ctx, projectID)
			return settle(ctx, todos, err, func() { todos.ReplaceProject(projectID, list) })
		}
	}

	todos.SetLoading(true)
	defer todos.SetLoading(false)
	list, err := r.api.FetchTodos(ctx)
	return settle(ctx, todos, err, func() { todos.ReplaceAll(list) })
}

func (r *Resyncer) syncProjects(ctx context.Context) error {
	projects := r.stores.Projects
	projects.SetLoading(true)
	defer projects.SetLoading(false)
	list, err := r.api.FetchProjects(ctx)
	return settle(ctx, projects, err, func() { projects.ReplaceAll(list) })
}

func (r *Resyncer) syncNotifications(ctx context.Context) error {
	inbox := r.stores.Notifications
	inbox.SetLoading(true)
	defer inbox.SetLoading(false)
	list, err := r.api.FetchNotifications(ctx)
	return settle(ctx, inbox, err, func() { inbox.ReplaceAll(list) })
}

type errorSetter interface {
	SetError(error)
}

// settle applies a fetch result to its store unless the sync was cancelled.
// A fetch cut short by the resync deadline is recorded as a timeout.
func settle(ctx context.Context, s errorSetter, err error, apply func()) error {
	if errors.IsCanceled(ctx.Err()) {
		return ctx.Err()
	}
	if err != nil {
		err = errors.FromContext("resync", err)
		s.SetError(err)
		return err
	}
	apply()
	s.SetError(nil)
	return nil
}
