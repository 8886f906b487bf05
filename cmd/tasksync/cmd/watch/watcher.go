package watch

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync"
	"github.com/agentstation/tasksync/pkg/events"
	"github.com/agentstation/tasksync/pkg/realtime"
)

// Watcher prints a client's state changes and events and tallies them
// for the exit summary.
type Watcher struct {
	client tasksync.Client
	logger *zerolog.Logger

	mu        sync.Mutex
	out       io.Writer
	counts    map[events.Kind]int
	redirects int
	opens     int
	last      realtime.Status
}

// New creates a Watcher that writes to out. Hooks are registered on client
// right away, so create the Watcher before starting the client.
func New(out io.Writer, client tasksync.Client, logger *zerolog.Logger) *Watcher {
	w := &Watcher{
		client: client,
		logger: logger,
		out:    out,
		counts: make(map[events.Kind]int),
	}
	client.OnStateChange(w.state)
	client.OnEvent(w.event)
	client.OnRedirect(w.redirect)

	client.Todos().OnChange(func() {
		w.logger.Debug().Int("todos", client.Todos().Len()).Msg("Todos changed")
	})
	client.Projects().OnChange(func() {
		snap := client.Projects().Snapshot()
		w.logger.Debug().Int("mine", len(snap.Mine)).Int("shared", len(snap.Shared)).Msg("Projects changed")
	})
	client.Notifications().OnChange(func() {
		w.logger.Debug().Int("unread", client.Notifications().UnreadCount()).Msg("Notifications changed")
	})
	return w
}

// Run connects, opens projectID when set, and blocks until ctx is done.
// The summary is printed after the client has been closed.
func (w *Watcher) Run(ctx context.Context, projectID string) error {
	if projectID != "" {
		w.client.Open(projectID)
	}
	if err := w.client.Run(ctx); err != nil {
		return err
	}
	w.Summary()
	return nil
}

func (w *Watcher) state(s realtime.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s.Status == realtime.Open && w.last != realtime.Open {
		w.opens++
	}
	w.last = s.Status
	switch {
	case s.PendingReconnect:
		w.printf("state: %s (retry %d pending)\n", s.Status, s.RetryCount)
	default:
		w.printf("state: %s\n", s.Status)
	}
}

func (w *Watcher) event(kind events.Kind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.counts[kind]++
	w.printf("event: %s\n", kind)
}

func (w *Watcher) redirect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.redirects++
	w.printf("removed from the open project, back to home\n")
}

// Summary prints the tallies and the final store contents.
func (w *Watcher) Summary() {
	w.mu.Lock()
	defer w.mu.Unlock()

	projects := w.client.Projects().Snapshot()
	w.printf("\nconnections: %d, redirects: %d\n", w.opens, w.redirects)
	w.printf("todos: %d, projects: %d mine / %d shared, unread notifications: %d\n",
		w.client.Todos().Len(), len(projects.Mine), len(projects.Shared), w.client.Notifications().UnreadCount())

	kinds := make([]string, 0, len(w.counts))
	for k := range w.counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		w.printf("  %-22s %d\n", k, w.counts[events.Kind(k)])
	}
}

// Counts returns how many events of each kind were applied.
func (w *Watcher) Counts() map[events.Kind]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[events.Kind]int, len(w.counts))
	for k, v := range w.counts {
		out[k] = v
	}
	return out
}

// printf writes to out; callers hold mu.
func (w *Watcher) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format, args...)
}
