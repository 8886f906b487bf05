package store

import (
	"slices"

	"github.com/agentstation/tasksync/pkg/models"
)

// ProjectStore holds the user's own projects, in display order, and the
// projects shared with the user.
type ProjectStore struct {
	base
	mine   []models.Project
	shared []models.Project
}

// ProjectSnapshot is a point-in-time copy of a ProjectStore.
type ProjectSnapshot struct {
	Mine    []models.Project
	Shared  []models.Project
	Loading bool
	Err     error
}

// NewProjectStore creates an empty project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{}
}

// ReplaceAll swaps in the authoritative project listing. Where a project is
// already known with a newer version, the newer one is kept.
func (s *ProjectStore) ReplaceAll(list models.ProjectList) {
	s.mutate(func() bool {
		known := make(map[string]models.Project, len(s.mine)+len(s.shared))
		for _, p := range s.mine {
			known[p.ID] = p
		}
		for _, p := range s.shared {
			known[p.ID] = p
		}
		pick := func(in []models.Project) []models.Project {
			out := make([]models.Project, 0, len(in))
			for _, p := range in {
				if old, ok := known[p.ID]; ok && p.StalerThan(old) {
					p = old
				}
				out = append(out, p.Clone())
			}
			return out
		}
		s.mine = pick(list.MyProjects)
		s.shared = pick(list.SharedProjects)
		return true
	})
}

// Upsert replaces a project by id. A project already in the shared
// partition is updated in place there; anything else lands in Mine,
// appended when new. Stale versions are ignored.
func (s *ProjectStore) Upsert(p models.Project) bool {
	p = p.Clone()
	return s.mutate(func() bool {
		if i := indexOf(s.shared, p.ID); i >= 0 {
			if p.StalerThan(s.shared[i]) {
				return false
			}
			s.shared[i] = p
			return true
		}
		if i := indexOf(s.mine, p.ID); i >= 0 {
			if p.StalerThan(s.mine[i]) {
				return false
			}
			s.mine[i] = p
			return true
		}
		s.mine = append(s.mine, p)
		return true
	})
}

// Remove deletes a project from both partitions. Removing an absent id is a no-op.
func (s *ProjectStore) Remove(id string) bool {
	return s.mutate(func() bool {
		n := len(s.mine) + len(s.shared)
		s.mine = slices.DeleteFunc(s.mine, func(p models.Project) bool { return p.ID == id })
		s.shared = slices.DeleteFunc(s.shared, func(p models.Project) bool { return p.ID == id })
		return len(s.mine)+len(s.shared) != n
	})
}

// Reorder rearranges Mine to follow ids. Unknown ids are skipped and
// projects not named in ids keep their relative order after the named ones.
// Records themselves are not modified.
func (s *ProjectStore) Reorder(ids []string) {
	s.mutate(func() bool {
		placed := make(map[string]bool, len(ids))
		next := make([]models.Project, 0, len(s.mine))
		for _, id := range ids {
			if placed[id] {
				continue
			}
			if i := indexOf(s.mine, id); i >= 0 {
				next = append(next, s.mine[i])
				placed[id] = true
			}
		}
		for _, p := range s.mine {
			if !placed[p.ID] {
				next = append(next, p)
			}
		}
		changed := !slices.EqualFunc(next, s.mine, func(a, b models.Project) bool { return a.ID == b.ID })
		s.mine = next
		return changed
	})
}

// AddMember adds or replaces a member of the named project in either
// partition. Reports false when the project is unknown.
func (s *ProjectStore) AddMember(projectID string, m models.Member) bool {
	return s.updateProject(projectID, func(p *models.Project) bool {
		if i := slices.IndexFunc(p.Members, func(x models.Member) bool { return x.ID == m.ID }); i >= 0 {
			p.Members[i] = m
			return true
		}
		p.Members = append(p.Members, m)
		return true
	})
}

// RemoveMember removes a member from the named project in either partition.
func (s *ProjectStore) RemoveMember(projectID, memberID string) bool {
	return s.updateProject(projectID, func(p *models.Project) bool {
		n := len(p.Members)
		p.Members = slices.DeleteFunc(p.Members, func(x models.Member) bool { return x.ID == memberID })
		return len(p.Members) != n
	})
}

// updateProject applies fn to a fresh copy of the project and swaps it in whole.
func (s *ProjectStore) updateProject(id string, fn func(*models.Project) bool) bool {
	return s.mutate(func() bool {
		for _, part := range []*[]models.Project{&s.mine, &s.shared} {
			if i := indexOf(*part, id); i >= 0 {
				p := (*part)[i].Clone()
				if !fn(&p) {
					return false
				}
				(*part)[i] = p
				return true
			}
		}
		return false
	})
}

// Get looks a project up in either partition.
func (s *ProjectStore) Get(id string) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.mine, id); i >= 0 {
		return s.mine[i].Clone(), true
	}
	if i := indexOf(s.shared, id); i >= 0 {
		return s.shared[i].Clone(), true
	}
	return models.Project{}, false
}

// Mine returns the user's own projects in display order.
func (s *ProjectStore) Mine() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.mine)
}

// Shared returns the projects shared with the user.
func (s *ProjectStore) Shared() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.shared)
}

// Snapshot returns a consistent copy of the store.
func (s *ProjectStore) Snapshot() ProjectSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ProjectSnapshot{
		Mine:    cloneAll(s.mine),
		Shared:  cloneAll(s.shared),
		Loading: s.loading,
		Err:     s.err,
	}
}

func indexOf(ps []models.Project, id string) int {
	return slices.IndexFunc(ps, func(p models.Project) bool { return p.ID == id })
}

func cloneAll(ps []models.Project) []models.Project {
	out := make([]models.Project, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}
