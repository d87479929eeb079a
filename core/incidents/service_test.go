package incidents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osprey-ehs/config"
	"osprey-ehs/core/apierr"
	"osprey-ehs/core/query"
	"osprey-ehs/core/simulate"
	"osprey-ehs/core/store"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	cfg, err := config.Preset("fast")
	require.NoError(t, err)
	st := store.New()
	st.Initialize(store.SeedBundle{
		Locations: []store.Location{
			{ID: "l-hq", Name: "Headquarters", Code: "HQ", Type: store.LocationTypeFacility, IsActive: true},
			{ID: "l-wh", Name: "Warehouse", Code: "WH", Type: store.LocationTypeBuilding, IsActive: true},
		},
		Users: []store.User{
			{ID: "u-ana", Email: "ana@example.com", FirstName: "Ana", LastName: "Ril", Status: store.UserStatusActive},
			{ID: "u-joe", Email: "joe@example.com", FirstName: "Joe", LastName: "Mara", Status: store.UserStatusActive},
		},
	})
	run := simulate.NewRunner(cfg, nil, nil)
	svc := NewService(st, run, cfg, nil)
	svc.now = func() time.Time { return testNow }
	return svc, st
}

func create(t *testing.T, svc *Service, in CreateInput) store.Incident {
	t.Helper()
	if in.Title == "" {
		in.Title = "Forklift near miss"
	}
	if in.Severity == "" {
		in.Severity = store.SeverityMedium
	}
	if in.Type == "" {
		in.Type = store.IncidentTypeNearMiss
	}
	if in.LocationID == "" {
		in.LocationID = "l-hq"
	}
	if in.ReporterID == "" {
		in.ReporterID = "u-ana"
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = testNow.Add(-48 * time.Hour)
	}
	resp, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	return resp.Data
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	svc, _ := newService(t)

	first := create(t, svc, CreateInput{})
	second := create(t, svc, CreateInput{Title: "Spill in aisle 3"})

	assert.Equal(t, "INC-2026-00001", first.Number)
	assert.Equal(t, "INC-2026-00002", second.Number)
	assert.Equal(t, store.IncidentStatusDraft, first.Status)
}

func TestCreateDenormalizesNames(t *testing.T) {
	svc, _ := newService(t)

	inc := create(t, svc, CreateInput{AssigneeID: "u-joe"})
	assert.Equal(t, "Headquarters", inc.LocationName)
	assert.Equal(t, "Ana Ril", inc.ReporterName)
	assert.Equal(t, "Joe Mara", inc.AssigneeName)
}

func TestCreateChecksForeignKeys(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	base := CreateInput{
		Title: "X", Severity: store.SeverityLow, Type: store.IncidentTypeOther,
		OccurredAt: testNow,
	}

	in := base
	in.LocationID, in.ReporterID = "ghost", "u-ana"
	_, err := svc.Create(ctx, in)
	assert.True(t, apierr.IsNotFound(err))

	in = base
	in.LocationID, in.ReporterID = "l-hq", "ghost"
	_, err = svc.Create(ctx, in)
	assert.True(t, apierr.IsNotFound(err))

	in = base
	in.LocationID, in.ReporterID, in.AssigneeID = "l-hq", "u-ana", "ghost"
	_, err = svc.Create(ctx, in)
	assert.True(t, apierr.IsNotFound(err))
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Create(context.Background(), CreateInput{
		Severity: "extreme", Type: "mystery", LocationID: "l-hq", ReporterID: "u-ana",
	})
	require.Error(t, err)
	var ve *apierr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "title")
	assert.Contains(t, ve.Fields, "severity")
	assert.Contains(t, ve.Fields, "type")
	assert.Contains(t, ve.Fields, "occurredAt")
}

func TestStepProgressIsDerivedOnRead(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	inc := create(t, svc, CreateInput{})
	s1, err := svc.CreateStep(ctx, inc.ID, StepCreateInput{Title: "Interview witnesses"})
	require.NoError(t, err)
	_, err = svc.CreateStep(ctx, inc.ID, StepCreateInput{Title: "File report"})
	require.NoError(t, err)

	done := store.StepStatusCompleted
	_, err = svc.UpdateStep(ctx, inc.ID, s1.Data.ID, StepUpdateInput{Status: &done})
	require.NoError(t, err)

	got, err := svc.Get(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Data.StepsTotal)
	assert.Equal(t, 1, got.Data.StepsCompleted)
}

func TestDaysOpenAndOverdue(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	inc := create(t, svc, CreateInput{})
	st.UpdateIncident(inc.ID, func(i *store.Incident) {
		i.CreatedAt = testNow.Add(-5 * 24 * time.Hour)
		due := testNow.Add(-24 * time.Hour)
		i.DueAt = &due
	})

	got, err := svc.Get(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Data.DaysOpen)
	assert.True(t, got.Data.IsOverdue)

	// a closed incident is never overdue
	closed := store.IncidentStatusClosed
	updated, err := svc.Update(ctx, inc.ID, UpdateInput{Status: &closed})
	require.NoError(t, err)
	assert.False(t, updated.Data.IsOverdue)
}

func TestUpdateRefreshesDenormalizedNames(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	inc := create(t, svc, CreateInput{})
	loc := "l-wh"
	assignee := "u-joe"
	resp, err := svc.Update(ctx, inc.ID, UpdateInput{LocationID: &loc, AssigneeID: &assignee})
	require.NoError(t, err)
	assert.Equal(t, "Warehouse", resp.Data.LocationName)
	assert.Equal(t, "Joe Mara", resp.Data.AssigneeName)

	// clearing the assignee clears the cached name
	none := ""
	resp, err = svc.Update(ctx, inc.ID, UpdateInput{AssigneeID: &none})
	require.NoError(t, err)
	assert.Empty(t, resp.Data.AssigneeName)
}

func TestDeleteCascadesSteps(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	inc := create(t, svc, CreateInput{})
	other := create(t, svc, CreateInput{Title: "Other"})
	_, err := svc.CreateStep(ctx, inc.ID, StepCreateInput{Title: "A"})
	require.NoError(t, err)
	kept, err := svc.CreateStep(ctx, other.ID, StepCreateInput{Title: "B"})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, inc.ID)
	require.NoError(t, err)

	assert.Empty(t, st.ListIncidentSteps(inc.ID))
	_, ok := st.GetStep(kept.Data.ID)
	assert.True(t, ok)
}

func TestStepCompletionTimestamps(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	inc := create(t, svc, CreateInput{})
	step, err := svc.CreateStep(ctx, inc.ID, StepCreateInput{Title: "Check guards"})
	require.NoError(t, err)
	assert.Equal(t, "STP-2026-00001", step.Data.Number)
	assert.Equal(t, store.StepStatusPending, step.Data.Status)

	done := store.StepStatusCompleted
	resp, err := svc.UpdateStep(ctx, inc.ID, step.Data.ID, StepUpdateInput{Status: &done})
	require.NoError(t, err)
	require.NotNil(t, resp.Data.CompletedAt)
	assert.Equal(t, testNow, *resp.Data.CompletedAt)

	// moving away from completed clears the stamp
	back := store.StepStatusInProgress
	resp, err = svc.UpdateStep(ctx, inc.ID, step.Data.ID, StepUpdateInput{Status: &back})
	require.NoError(t, err)
	assert.Nil(t, resp.Data.CompletedAt)
}

func TestStepScopedToIncident(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a := create(t, svc, CreateInput{})
	b := create(t, svc, CreateInput{Title: "Other"})
	step, err := svc.CreateStep(ctx, a.ID, StepCreateInput{Title: "X"})
	require.NoError(t, err)

	// addressing the step through the wrong incident is a not-found
	title := "Renamed"
	_, err = svc.UpdateStep(ctx, b.ID, step.Data.ID, StepUpdateInput{Title: &title})
	assert.True(t, apierr.IsNotFound(err))
	_, err = svc.DeleteStep(ctx, b.ID, step.Data.ID)
	assert.True(t, apierr.IsNotFound(err))
}

func TestListStepsOrdering(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	inc := create(t, svc, CreateInput{})
	_, err := svc.CreateStep(ctx, inc.ID, StepCreateInput{Title: "Second", Order: 2})
	require.NoError(t, err)
	_, err = svc.CreateStep(ctx, inc.ID, StepCreateInput{Title: "First", Order: 1})
	require.NoError(t, err)

	resp, err := svc.ListSteps(ctx, inc.ID)
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "First", resp.Data[0].Title)
	assert.Equal(t, "Second", resp.Data[1].Title)
}

func TestListFilterAndSearch(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for i, sev := range []store.IncidentSeverity{store.SeverityLow, store.SeverityHigh, store.SeverityHigh} {
		create(t, svc, CreateInput{Title: fmt.Sprintf("Incident %d", i), Severity: sev})
	}

	resp, err := svc.List(ctx, query.Params{
		Filters: []query.Filter{query.Eq("severity", "high")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Pagination.Total)

	resp, err = svc.List(ctx, query.Params{Search: "inc-2026-00002"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Pagination.Total)
	assert.Equal(t, "INC-2026-00002", resp.Data[0].Number)
}

func TestSequencesSeedFromBundle(t *testing.T) {
	cfg, err := config.Preset("fast")
	require.NoError(t, err)
	st := store.New()
	st.Initialize(store.SeedBundle{
		Locations: []store.Location{{ID: "l-hq", Name: "HQ", Code: "HQ", Type: store.LocationTypeFacility}},
		Users:     []store.User{{ID: "u-ana", Email: "a@example.com", FirstName: "Ana", LastName: "Ril", Status: store.UserStatusActive}},
		Sequences: map[store.Kind]int64{store.KindIncidents: 42},
	})
	svc := NewService(st, simulate.NewRunner(cfg, nil, nil), cfg, nil)
	svc.now = func() time.Time { return testNow }

	inc := create(t, svc, CreateInput{})
	assert.Equal(t, "INC-2026-00042", inc.Number)
}
