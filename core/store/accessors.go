package store

import "osprey-ehs/core/utils"

// Every accessor clones at the boundary, both directions: callers can never
// reach store-internal state by reference.

func (s *Store) GetUser(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users.get(id)
	if !ok {
		return User{}, false
	}
	return utils.Clone(u), true
}

func (s *Store) ListUsers() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return utils.CloneSlice(s.users.list())
}

func (s *Store) SetUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users.set(u.ID, utils.Clone(u))
}

// UpdateUser applies fn to the stored user. Returns false without calling fn
// when the id is absent; the service layer checks existence first.
func (s *Store) UpdateUser(id string, fn func(*User)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users.get(id)
	if !ok {
		return false
	}
	fn(&u)
	u.ID = id
	s.users.set(id, utils.Clone(u))
	return true
}

func (s *Store) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users.delete(id)
}

func (s *Store) GetRole(id string) (Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles.get(id)
	if !ok {
		return Role{}, false
	}
	return utils.Clone(r), true
}

func (s *Store) ListRoles() []Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return utils.CloneSlice(s.roles.list())
}

func (s *Store) SetRole(r Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles.set(r.ID, utils.Clone(r))
}

func (s *Store) UpdateRole(id string, fn func(*Role)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles.get(id)
	if !ok {
		return false
	}
	fn(&r)
	r.ID = id
	s.roles.set(id, utils.Clone(r))
	return true
}

func (s *Store) DeleteRole(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles.delete(id)
}

func (s *Store) GetPermission(id string) (Permission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.perms.get(id)
}

func (s *Store) ListPermissions() []Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.perms.list()
}

func (s *Store) SetPermission(p Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perms.set(p.ID, p)
}

func (s *Store) GetLocation(id string) (Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locations.get(id)
}

func (s *Store) ListLocations() []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locations.list()
}

func (s *Store) SetLocation(l Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations.set(l.ID, l)
}

func (s *Store) UpdateLocation(id string, fn func(*Location)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locations.get(id)
	if !ok {
		return false
	}
	fn(&l)
	l.ID = id
	s.locations.set(id, l)
	return true
}

func (s *Store) DeleteLocation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations.delete(id)
}

func (s *Store) GetIncident(id string) (Incident, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inc, ok := s.incidents.get(id)
	if !ok {
		return Incident{}, false
	}
	return utils.Clone(inc), true
}

func (s *Store) ListIncidents() []Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return utils.CloneSlice(s.incidents.list())
}

func (s *Store) SetIncident(inc Incident) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incidents.set(inc.ID, utils.Clone(inc))
}

func (s *Store) UpdateIncident(id string, fn func(*Incident)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.incidents.get(id)
	if !ok {
		return false
	}
	fn(&inc)
	inc.ID = id
	s.incidents.set(id, utils.Clone(inc))
	return true
}

func (s *Store) DeleteIncident(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incidents.delete(id)
}

func (s *Store) GetStep(id string) (Step, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.steps.get(id)
	if !ok {
		return Step{}, false
	}
	return utils.Clone(st), true
}

func (s *Store) ListSteps() []Step {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return utils.CloneSlice(s.steps.list())
}

// ListIncidentSteps returns the steps belonging to one incident in insertion
// order.
func (s *Store) ListIncidentSteps(incidentID string) []Step {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Step
	for _, st := range s.steps.list() {
		if st.IncidentID == incidentID {
			out = append(out, utils.Clone(st))
		}
	}
	return out
}

func (s *Store) SetStep(st Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps.set(st.ID, utils.Clone(st))
}

func (s *Store) UpdateStep(id string, fn func(*Step)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.steps.get(id)
	if !ok {
		return false
	}
	fn(&st)
	st.ID = id
	s.steps.set(id, utils.Clone(st))
	return true
}

func (s *Store) DeleteStep(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps.delete(id)
}

func (s *Store) GetDictionaryCategory(id string) (DictionaryCategory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.get(id)
}

func (s *Store) ListDictionaryCategories() []DictionaryCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.list()
}

func (s *Store) SetDictionaryCategory(c DictionaryCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories.set(c.ID, c)
}

func (s *Store) UpdateDictionaryCategory(id string, fn func(*DictionaryCategory)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories.get(id)
	if !ok {
		return false
	}
	fn(&c)
	c.ID = id
	s.categories.set(id, c)
	return true
}

func (s *Store) DeleteDictionaryCategory(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories.delete(id)
	delete(s.entries, id)
}

func (s *Store) GetDictionaryEntry(categoryID, id string) (DictionaryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[categoryID][id]
	return e, ok
}

// ListDictionaryEntries returns the flat entry set of one category; callers
// order by the explicit Order field.
func (s *Store) ListDictionaryEntries(categoryID string) []DictionaryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID := s.entries[categoryID]
	out := make([]DictionaryEntry, 0, len(byID))
	for _, e := range byID {
		out = append(out, e)
	}
	return out
}

func (s *Store) CountDictionaryEntries(categoryID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[categoryID])
}

func (s *Store) SetDictionaryEntry(e DictionaryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.entries[e.CategoryID]
	if !ok {
		byID = map[string]DictionaryEntry{}
		s.entries[e.CategoryID] = byID
	}
	byID[e.ID] = e
}

func (s *Store) DeleteDictionaryEntry(categoryID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries[categoryID], id)
}
