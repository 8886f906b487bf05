// Package store holds the client-side read models kept converged by the
// realtime core: todos, projects and notifications.
//
// Every store is safe for concurrent use. A mutation replaces whole records
// under the store's lock, so readers never see a half-applied change, and
// change hooks run after the lock is released so they may read the store.
package store

import (
	"slices"
	"sync"
)

// base carries the loading/error flags and change hooks shared by all stores.
type base struct {
	mu      sync.RWMutex
	loading bool
	err     error
	nextID  int
	hooks   []hook
}

type hook struct {
	id int
	fn func()
}

// OnChange registers fn to run after every mutation. The returned func
// removes the registration.
func (b *base) OnChange(fn func()) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.hooks = append(b.hooks, hook{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.hooks = slices.DeleteFunc(b.hooks, func(h hook) bool { return h.id == id })
	}
}

// Loading reports whether a normal (non-silent) fetch is in flight.
func (b *base) Loading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loading
}

// Err returns the last fetch error, or nil.
func (b *base) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

// SetLoading sets the loading flag.
func (b *base) SetLoading(loading bool) {
	b.mutate(func() bool {
		if b.loading == loading {
			return false
		}
		b.loading = loading
		return true
	})
}

// SetError records a fetch failure. A nil err clears it.
func (b *base) SetError(err error) {
	b.mutate(func() bool {
		if b.err == nil && err == nil {
			return false
		}
		b.err = err
		return true
	})
}

// mutate runs fn under the write lock and, when fn reports a change,
// invokes the hooks after unlocking.
func (b *base) mutate(fn func() bool) bool {
	b.mu.Lock()
	changed := fn()
	var fns []func()
	if changed {
		fns = make([]func(), len(b.hooks))
		for i, h := range b.hooks {
			fns[i] = h.fn
		}
	}
	b.mu.Unlock()

	for _, f := range fns {
		f()
	}
	return changed
}

// Set bundles the three stores the realtime core writes to.
type Set struct {
	Todos         *TodoStore
	Projects      *ProjectStore
	Notifications *NotificationStore
}

// NewSet creates an empty set of stores.
func NewSet() *Set {
	return &Set{
		Todos:         NewTodoStore(),
		Projects:      NewProjectStore(),
		Notifications: NewNotificationStore(),
	}
}
