// Package store holds the process-memory entity collections behind the mock
// API. It is an explicit instance wired in by the composition root, not a
// package-level singleton, so test suites get isolated state. A single
// RWMutex serializes every read-modify-write; there is no persistence and no
// transaction isolation beyond that.
package store

import (
	"sync"

	"osprey-ehs/core/utils"
)

type Kind string

const (
	KindUsers                Kind = "users"
	KindRoles                Kind = "roles"
	KindPermissions          Kind = "permissions"
	KindLocations            Kind = "locations"
	KindIncidents            Kind = "incidents"
	KindSteps                Kind = "steps"
	KindDictionaryCategories Kind = "dictionaryCategories"
)

// SeedBundle supplies the initial dataset for every entity kind plus starting
// sequence numbers. Dictionary entries are keyed by category id, matching
// their storage layout.
type SeedBundle struct {
	Users                []User                       `yaml:"users" json:"users"`
	Roles                []Role                       `yaml:"roles" json:"roles"`
	Permissions          []Permission                 `yaml:"permissions" json:"permissions"`
	Locations            []Location                   `yaml:"locations" json:"locations"`
	Incidents            []Incident                   `yaml:"incidents" json:"incidents"`
	Steps                []Step                       `yaml:"steps" json:"steps"`
	DictionaryCategories []DictionaryCategory         `yaml:"dictionaryCategories" json:"dictionaryCategories"`
	DictionaryEntries    map[string][]DictionaryEntry `yaml:"dictionaryEntries" json:"dictionaryEntries"`
	Sequences            map[Kind]int64               `yaml:"sequences" json:"sequences"`
}

type Store struct {
	mu          sync.RWMutex
	initialized bool

	users      *collection[User]
	roles      *collection[Role]
	perms      *collection[Permission]
	locations  *collection[Location]
	incidents  *collection[Incident]
	steps      *collection[Step]
	categories *collection[DictionaryCategory]
	// entries are keyed by category id first; entry ids are unique only
	// within their category.
	entries map[string]map[string]DictionaryEntry

	sequences map[Kind]int64
}

func New() *Store {
	return &Store{
		users:      newCollection[User](),
		roles:      newCollection[Role](),
		perms:      newCollection[Permission](),
		locations:  newCollection[Location](),
		incidents:  newCollection[Incident](),
		steps:      newCollection[Step](),
		categories: newCollection[DictionaryCategory](),
		entries:    map[string]map[string]DictionaryEntry{},
		sequences:  map[Kind]int64{},
	}
}

// Initialize populates all collections from the bundle. A second call without
// an intervening Reset is a deliberate no-op; callers wanting a clean slate
// must Reset first.
func (s *Store) Initialize(bundle SeedBundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	for _, u := range bundle.Users {
		s.users.set(u.ID, utils.Clone(u))
	}
	for _, r := range bundle.Roles {
		s.roles.set(r.ID, utils.Clone(r))
	}
	for _, p := range bundle.Permissions {
		s.perms.set(p.ID, p)
	}
	for _, l := range bundle.Locations {
		s.locations.set(l.ID, l)
	}
	for _, inc := range bundle.Incidents {
		s.incidents.set(inc.ID, utils.Clone(inc))
	}
	for _, st := range bundle.Steps {
		s.steps.set(st.ID, utils.Clone(st))
	}
	for _, c := range bundle.DictionaryCategories {
		s.categories.set(c.ID, c)
	}
	for catID, list := range bundle.DictionaryEntries {
		byID := make(map[string]DictionaryEntry, len(list))
		for _, e := range list {
			e.CategoryID = catID
			byID[e.ID] = e
		}
		s.entries[catID] = byID
	}
	for kind, seq := range bundle.Sequences {
		s.sequences[kind] = seq
	}
	s.initialized = true
}

// Reset clears all collections, sequence counters and the initialized flag.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users.clear()
	s.roles.clear()
	s.perms.clear()
	s.locations.clear()
	s.incidents.clear()
	s.steps.clear()
	s.categories.clear()
	s.entries = map[string]map[string]DictionaryEntry{}
	s.sequences = map[Kind]int64{}
	s.initialized = false
}

func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// NextSequence returns the current counter for the kind and then increments
// it. Counters never reuse retired numbers.
func (s *Store) NextSequence(kind Kind) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.sequences[kind]
	if n == 0 {
		n = 1
	}
	s.sequences[kind] = n + 1
	return n
}
