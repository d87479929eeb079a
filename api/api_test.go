package api

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osprey-ehs/config"
	"osprey-ehs/core/apierr"
	"osprey-ehs/core/incidents"
	"osprey-ehs/core/query"
	"osprey-ehs/core/store"
	"osprey-ehs/core/users"
)

func newAPI(t *testing.T) *API {
	t.Helper()
	cfg, err := config.Preset("fast")
	require.NoError(t, err)
	a, err := New(cfg, nil, nil)
	require.NoError(t, err)
	a.SeedDefault()
	return a
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Pagination.DefaultPageSize = 500
	_, err := New(cfg, nil, nil)
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	a := newAPI(t)
	before := len(a.Store.ListUsers())
	a.SeedDefault()
	assert.Equal(t, before, len(a.Store.ListUsers()))
	assert.True(t, a.Initialized())
}

func TestResetAllowsReseeding(t *testing.T) {
	a := newAPI(t)
	a.Reset()
	assert.False(t, a.Initialized())
	assert.Empty(t, a.Store.ListUsers())

	a.SeedDefault()
	assert.NotEmpty(t, a.Store.ListUsers())
}

func TestIncidentLifecycleAcrossServices(t *testing.T) {
	a := newAPI(t)
	ctx := context.Background()

	locs, err := a.Locations.List(ctx, query.Params{Filters: []query.Filter{query.Eq("type", "zone")}})
	require.NoError(t, err)
	require.NotEmpty(t, locs.Data)

	reporter, err := a.Users.Create(ctx, users.CreateInput{
		Email: "new.hire@osprey.example", FirstName: "New", LastName: "Hire",
		Status: store.UserStatusActive,
	})
	require.NoError(t, err)

	inc, err := a.Incidents.Create(ctx, incidents.CreateInput{
		Title:      "Hydraulic leak on press 2",
		Severity:   store.SeverityMedium,
		Type:       store.IncidentTypePropertyDamage,
		LocationID: locs.Data[0].ID,
		ReporterID: reporter.Data.ID,
		OccurredAt: reporter.Data.CreatedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, locs.Data[0].Name, inc.Data.LocationName)
	assert.Equal(t, "New Hire", inc.Data.ReporterName)
	// the seed bundle retired numbers 1..3
	assert.True(t, strings.HasPrefix(inc.Data.Number, "INC-"))
	assert.True(t, strings.HasSuffix(inc.Data.Number, "-00004"))

	step, err := a.Incidents.CreateStep(ctx, inc.Data.ID, incidents.StepCreateInput{Title: "Isolate press"})
	require.NoError(t, err)
	done := store.StepStatusCompleted
	_, err = a.Incidents.UpdateStep(ctx, inc.Data.ID, step.Data.ID, incidents.StepUpdateInput{Status: &done})
	require.NoError(t, err)

	got, err := a.Incidents.Get(ctx, inc.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Data.StepsTotal)
	assert.Equal(t, 1, got.Data.StepsCompleted)
}

func TestSeededTreeAndDictionary(t *testing.T) {
	a := newAPI(t)
	ctx := context.Background()

	tree, err := a.Locations.Tree(ctx)
	require.NoError(t, err)
	assert.Len(t, tree.Data, 2) // two root facilities

	cats, err := a.Dictionary.ListCategories(ctx, query.Params{})
	require.NoError(t, err)
	require.Equal(t, 2, cats.Pagination.Total)
}

func TestFailureRateOneRejectsEverything(t *testing.T) {
	cfg, err := config.Preset("fast")
	require.NoError(t, err)
	cfg.Errors.Enabled = true
	cfg.Errors.NetworkFailureRate = 1

	a, err := New(cfg, nil, nil)
	require.NoError(t, err)
	a.SeedDefault()
	ctx := context.Background()

	_, err = a.Users.List(ctx, query.Params{})
	assert.True(t, apierr.IsNetwork(err))
	_, err = a.Incidents.Get(ctx, "inc-forklift")
	assert.True(t, apierr.IsNetwork(err))
	_, err = a.Locations.Tree(ctx)
	assert.True(t, apierr.IsNetwork(err))
}

func TestMetricsRegistration(t *testing.T) {
	cfg, err := config.Preset("fast")
	require.NoError(t, err)
	reg := prometheus.NewRegistry()

	a, err := New(cfg, nil, reg)
	require.NoError(t, err)
	a.SeedDefault()

	_, err = a.Users.List(context.Background(), query.Params{})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["osprey_mockapi_requests_total"])
	assert.True(t, names["osprey_mockapi_request_duration_seconds"])
}
