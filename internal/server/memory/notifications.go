package memory

import (
	"slices"

	"github.com/google/uuid"

	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/events"
	"github.com/agentstation/tasksync/pkg/models"
)

// Notifications returns user's inbox, newest first.
func (db *DB) Notifications(user string) []models.Notification {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := slices.Clone(db.inbox[user])
	if out == nil {
		out = []models.Notification{}
	}
	slices.Reverse(out)
	return out
}

// Notify delivers a notification to users.
func (db *DB) Notify(users []string, n models.Notification) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.notifyLocked(users, n)
}

// MarkNotificationRead marks one of user's notifications read.
func (db *DB) MarkNotificationRead(user, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	inbox := db.inbox[user]
	i := slices.IndexFunc(inbox, func(n models.Notification) bool { return n.ID == id })
	if i < 0 {
		return errors.NewNotFoundError("notification", id)
	}
	inbox[i].Read = true
	return nil
}

// MarkAllNotificationsRead empties user's unread count.
func (db *DB) MarkAllNotificationsRead(user string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i := range db.inbox[user] {
		db.inbox[user][i].Read = true
	}
	db.pub.Publish([]string{user}, events.NotificationsAllRead{})
}

// notifyLocked appends a copy of n to each inbox, oldest first.
func (db *DB) notifyLocked(users []string, n models.Notification) {
	for _, u := range users {
		if _, ok := db.users[u]; !ok {
			continue
		}
		c := n
		c.ID = uuid.NewString()
		c.Read = false
		c.CreatedAt = db.now()
		db.inbox[u] = append(db.inbox[u], c)
		db.pub.Publish([]string{u}, events.NotificationAdded{Notification: c})
	}
}

func (db *DB) nameLocked(user string) string {
	if u, ok := db.users[user]; ok && u.Name != "" {
		return u.Name
	}
	return user
}
