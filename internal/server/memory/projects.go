package memory

import (
	"slices"

	"github.com/google/uuid"

	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/events"
	"github.com/agentstation/tasksync/pkg/models"
)

// ListProjects returns the projects user owns, in their chosen order, and
// the ones shared with them.
func (db *DB) ListProjects(user string) models.ProjectList {
	db.mu.RLock()
	defer db.mu.RUnlock()

	list := models.ProjectList{MyProjects: []models.Project{}, SharedProjects: []models.Project{}}
	for _, id := range db.order[user] {
		if p, ok := db.projects[id]; ok {
			list.MyProjects = append(list.MyProjects, p.Clone())
		}
	}
	for _, p := range db.projects {
		if p.OwnerID != user && p.HasMember(user) {
			list.SharedProjects = append(list.SharedProjects, p.Clone())
		}
	}
	slices.SortFunc(list.SharedProjects, func(a, b models.Project) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return list
}

// GetProject returns a project user belongs to.
func (db *DB) GetProject(user, id string) (models.Project, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	p, ok := db.projects[id]
	if !ok || !p.HasMember(user) {
		return models.Project{}, errors.NewNotFoundError("project", id)
	}
	return p.Clone(), nil
}

// CreateProject creates a project owned by user.
func (db *DB) CreateProject(user string, in ProjectInput) (models.Project, error) {
	if in.Name == "" {
		return models.Project{}, errors.NewValidationError("name", in.Name, "cannot be empty")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	owner, ok := db.users[user]
	if !ok {
		return models.Project{}, errors.NewNotFoundError("user", user)
	}
	now := db.now()
	p := &models.Project{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     user,
		Members:     []models.Member{owner.Member},
		Position:    len(db.order[user]),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	db.projects[p.ID] = p
	db.order[user] = append(db.order[user], p.ID)

	db.pub.Publish([]string{user}, events.ProjectUpserted{Type: events.ProjectCreated, Project: p.Clone()})
	return p.Clone(), nil
}

// DeleteProject deletes a project and its todos. Only the owner may.
func (db *DB) DeleteProject(user, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, err := db.ownedLocked(user, id, "delete")
	if err != nil {
		return err
	}
	audience := memberIDs(p)
	for tid, t := range db.todos {
		if t.ProjectID == id {
			delete(db.todos, tid)
			delete(db.todoOwner, tid)
			db.pub.Publish(audience, events.TodoRemoved{TodoID: tid})
		}
	}
	delete(db.projects, id)
	db.order[user] = without(db.order[user], id)

	db.pub.Publish(audience, events.ProjectRemoved{ProjectID: id})
	return nil
}

// ReorderProjects sets the display order of user's own projects. Unknown
// ids are skipped and unnamed projects keep their order at the end.
func (db *DB) ReorderProjects(user string, ids []string) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cur := db.order[user]
	next := make([]string, 0, len(cur))
	for _, id := range ids {
		if slices.Contains(cur, id) && !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	for _, id := range cur {
		if !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	db.order[user] = next
	for i, id := range next {
		db.projects[id].Position = i
	}

	db.pub.Publish([]string{user}, events.ProjectsReordered{ProjectIDs: slices.Clone(next)})
	return slices.Clone(next), nil
}

// AddMember shares a project with another user. Only the owner may.
func (db *DB) AddMember(user, projectID, memberID string) (models.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, err := db.ownedLocked(user, projectID, "share")
	if err != nil {
		return models.Project{}, err
	}
	m, ok := db.users[memberID]
	if !ok {
		return models.Project{}, errors.NewNotFoundError("user", memberID)
	}
	if p.HasMember(memberID) {
		return p.Clone(), nil
	}

	existing := memberIDs(p)
	p.Members = append(p.Members, m.Member)
	p.UpdatedAt = db.now()

	db.pub.Publish(existing, events.MemberJoined{ProjectID: p.ID, ProjectName: p.Name, Member: m.Member})
	db.notifyLocked([]string{memberID}, models.Notification{
		Type:      models.NotificationProjectInvite,
		Message:   db.nameLocked(user) + " shared \"" + p.Name + "\" with you",
		ProjectID: p.ID,
	})
	db.notifyLocked(without(existing, user), models.Notification{
		Type:      models.NotificationMemberJoined,
		Message:   m.Name + " joined \"" + p.Name + "\"",
		ProjectID: p.ID,
	})
	return p.Clone(), nil
}

// RemoveMember removes memberID from a project. The owner may remove
// anyone but themselves; any member may remove themselves.
func (db *DB) RemoveMember(user, projectID, memberID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.projects[projectID]
	if !ok || !p.HasMember(user) {
		return errors.NewNotFoundError("project", projectID)
	}
	if memberID != user && p.OwnerID != user {
		return errors.WrapResource("remove member from", "project", projectID, errors.ErrUnauthorized)
	}
	if memberID == p.OwnerID {
		return errors.NewValidationError("user_id", memberID, "the owner cannot leave their project")
	}
	i := slices.IndexFunc(p.Members, func(m models.Member) bool { return m.ID == memberID })
	if i < 0 {
		return errors.NewNotFoundError("member", memberID)
	}

	audience := memberIDs(p)
	m := p.Members[i]
	p.Members = slices.Delete(p.Members, i, i+1)
	p.UpdatedAt = db.now()

	db.pub.Publish(audience, events.MemberLeft{ProjectID: p.ID, ProjectName: p.Name, Member: m})
	db.notifyLocked(without(audience, memberID), models.Notification{
		Type:      models.NotificationMemberLeft,
		Message:   m.Name + " left \"" + p.Name + "\"",
		ProjectID: p.ID,
	})
	return nil
}

func (db *DB) ownedLocked(user, id, op string) (*models.Project, error) {
	p, ok := db.projects[id]
	if !ok || !p.HasMember(user) {
		return nil, errors.NewNotFoundError("project", id)
	}
	if p.OwnerID != user {
		return nil, errors.WrapResource(op, "project", id, errors.ErrUnauthorized)
	}
	return p, nil
}
