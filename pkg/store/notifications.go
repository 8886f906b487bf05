package store

import (
	"slices"

	"github.com/agentstation/tasksync/pkg/models"
)

// NotificationStore is the user's inbox, newest first, with a derived
// unread counter that always equals the number of unread entries.
type NotificationStore struct {
	base
	items  []models.Notification
	unread int
}

// NotificationSnapshot is a point-in-time copy of a NotificationStore.
type NotificationSnapshot struct {
	Notifications []models.Notification
	UnreadCount   int
	Loading       bool
	Err           error
}

// NewNotificationStore creates an empty inbox.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

// ReplaceAll swaps in the authoritative inbox.
func (s *NotificationStore) ReplaceAll(ns []models.Notification) {
	s.mutate(func() bool {
		items := make([]models.Notification, 0, len(ns))
		seen := make(map[string]bool, len(ns))
		for _, n := range ns {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			items = append(items, n)
		}
		s.items = items
		s.settle()
		return true
	})
}

// Add prepends a notification, replacing any entry with the same id.
func (s *NotificationStore) Add(n models.Notification) {
	s.mutate(func() bool {
		rest := slices.DeleteFunc(slices.Clone(s.items), func(x models.Notification) bool { return x.ID == n.ID })
		s.items = append([]models.Notification{n}, rest...)
		s.settle()
		return true
	})
}

// MarkRead marks one notification read. Reports false when absent or already read.
func (s *NotificationStore) MarkRead(id string) bool {
	return s.mutate(func() bool {
		i := slices.IndexFunc(s.items, func(x models.Notification) bool { return x.ID == id })
		if i < 0 || s.items[i].Read {
			return false
		}
		items := slices.Clone(s.items)
		items[i].Read = true
		s.items = items
		s.settle()
		return true
	})
}

// MarkAllRead marks every notification read.
func (s *NotificationStore) MarkAllRead() {
	s.mutate(func() bool {
		items := slices.Clone(s.items)
		for i := range items {
			items[i].Read = true
		}
		s.items = items
		s.settle()
		return true
	})
}

// Remove deletes a notification. Removing an absent id is a no-op.
func (s *NotificationStore) Remove(id string) bool {
	return s.mutate(func() bool {
		n := len(s.items)
		s.items = slices.DeleteFunc(slices.Clone(s.items), func(x models.Notification) bool { return x.ID == id })
		if len(s.items) == n {
			return false
		}
		s.settle()
		return true
	})
}

// settle re-sorts newest first and recomputes the unread counter. The sort
// is stable, so among equal timestamps the most recently added stays first.
func (s *NotificationStore) settle() {
	slices.SortStableFunc(s.items, func(a, b models.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	s.unread = 0
	for _, n := range s.items {
		if !n.Read {
			s.unread++
		}
	}
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationStore) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// List returns the notifications newest first.
func (s *NotificationStore) List() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Snapshot returns a consistent copy of the store.
func (s *NotificationStore) Snapshot() NotificationSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NotificationSnapshot{
		Notifications: slices.Clone(s.items),
		UnreadCount:   s.unread,
		Loading:       s.loading,
		Err:           s.err,
	}
}
