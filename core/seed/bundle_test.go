package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osprey-ehs/core/store"
)

func TestDefaultBundleIsInternallyConsistent(t *testing.T) {
	b := Default()

	users := map[string]bool{}
	for _, u := range b.Users {
		users[u.ID] = true
	}
	locations := map[string]bool{}
	for _, l := range b.Locations {
		locations[l.ID] = true
	}
	roles := map[string]bool{}
	for _, r := range b.Roles {
		roles[r.ID] = true
	}

	for _, l := range b.Locations {
		if l.ParentID != "" {
			assert.True(t, locations[l.ParentID], "location %s has unknown parent %s", l.ID, l.ParentID)
		}
	}
	for _, inc := range b.Incidents {
		assert.True(t, locations[inc.LocationID], "incident %s has unknown location", inc.ID)
		assert.True(t, users[inc.ReporterID], "incident %s has unknown reporter", inc.ID)
		if inc.AssigneeID != "" {
			assert.True(t, users[inc.AssigneeID], "incident %s has unknown assignee", inc.ID)
		}
	}
	incidents := map[string]bool{}
	for _, inc := range b.Incidents {
		incidents[inc.ID] = true
	}
	for _, st := range b.Steps {
		assert.True(t, incidents[st.IncidentID], "step %s has unknown incident", st.ID)
	}
	for _, u := range b.Users {
		for _, a := range u.RoleAssignments {
			assert.True(t, roles[a.Role.ID], "user %s references unknown role %s", u.ID, a.Role.ID)
			for _, locID := range a.LocationIDs {
				assert.True(t, locations[locID], "user %s scoped to unknown location %s", u.ID, locID)
			}
		}
	}
}

func TestDefaultItemCountsMatchEntries(t *testing.T) {
	b := Default()
	for _, c := range b.DictionaryCategories {
		assert.Equal(t, len(b.DictionaryEntries[c.ID]), c.ItemCount, "category %s", c.Code)
	}
}

func TestDefaultSequencesClearSeededNumbers(t *testing.T) {
	b := Default()
	assert.Equal(t, int64(len(b.Incidents)+1), b.Sequences[store.KindIncidents])
	assert.Equal(t, int64(len(b.Steps)+1), b.Sequences[store.KindSteps])
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	raw := []byte(`
users:
  - id: u1
    email: u1@example.com
    firstname: Uma
    lastname: One
    status: active
sequences:
  incidents: 10
`)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	b, err := FromFile(path)
	require.NoError(t, err)
	require.Len(t, b.Users, 1)
	assert.Equal(t, "u1@example.com", b.Users[0].Email)
	assert.Equal(t, int64(10), b.Sequences[store.KindIncidents])
}

func TestFromFileErrors(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: {not: a list}"), 0o644))
	_, err = FromFile(path)
	assert.Error(t, err)
}
