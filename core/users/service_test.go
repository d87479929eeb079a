package users

import (
	"context"
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

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	cfg, err := config.Preset("fast")
	require.NoError(t, err)
	st := store.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	st.Initialize(store.SeedBundle{
		Roles: []store.Role{
			{ID: "r-admin", Name: "Administrator", Level: 5, IsSystem: true, CreatedAt: now, UpdatedAt: now},
			{ID: "r-viewer", Name: "Viewer", Level: 1, CreatedAt: now, UpdatedAt: now},
		},
		Locations: []store.Location{
			{ID: "l-hq", Name: "Headquarters", Code: "HQ", Type: store.LocationTypeFacility, IsActive: true},
		},
		Users: []store.User{
			{ID: "u-ana", Email: "ana@example.com", FirstName: "Ana", LastName: "Ril", Status: store.UserStatusActive, CreatedAt: now, UpdatedAt: now},
		},
	})
	run := simulate.NewRunner(cfg, nil, nil)
	return NewService(st, run, cfg, nil), st
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, CreateInput{
		Email:     "joe@example.com",
		FirstName: "Joe",
		LastName:  "Mara",
	})
	require.NoError(t, err)
	u := resp.Data
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, store.UserStatusPending, u.Status)
	assert.False(t, u.CreatedAt.IsZero())
	assert.NotEmpty(t, resp.Meta.RequestID)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "joe@example.com", got.Data.Email)
}

func TestCreateReportsAllFieldErrorsAtOnce(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), CreateInput{Email: "not-an-email", Status: "bogus"})
	require.Error(t, err)
	var ve *apierr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "firstName")
	assert.Contains(t, ve.Fields, "lastName")
	assert.Contains(t, ve.Fields, "status")
}

func TestEmailUniquenessIsCaseInsensitive(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		Email:     "ANA@Example.COM",
		FirstName: "Other",
		LastName:  "Person",
	})
	require.Error(t, err)
	assert.True(t, apierr.IsConflict(err))
}

func TestUpdateValidatesMergedResult(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	bad := ""
	_, err := svc.Update(ctx, "u-ana", UpdateInput{Email: &bad})
	require.Error(t, err)
	assert.True(t, apierr.IsValidation(err))

	// failed update must not mutate the store
	u, _ := st.GetUser("u-ana")
	assert.Equal(t, "ana@example.com", u.Email)

	title := "EHS Manager"
	resp, err := svc.Update(ctx, "u-ana", UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "EHS Manager", resp.Data.Title)
	assert.Equal(t, "ana@example.com", resp.Data.Email)
}

func TestUpdateMissingUser(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Update(context.Background(), "ghost", UpdateInput{})
	assert.True(t, apierr.IsNotFound(err))
}

func TestAssignRoleSnapshotsTheRole(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	resp, err := svc.AssignRole(ctx, "u-ana", AssignRoleInput{
		RoleID:      "r-viewer",
		LocationIDs: []string{"l-hq"},
		AssignedBy:  "u-ana",
	})
	require.NoError(t, err)
	require.Len(t, resp.Data.RoleAssignments, 1)
	assert.Equal(t, "Viewer", resp.Data.RoleAssignments[0].Role.Name)

	// renaming the role afterwards must not change the stored snapshot
	st.UpdateRole("r-viewer", func(r *store.Role) { r.Name = "Renamed" })
	u, _ := st.GetUser("u-ana")
	assert.Equal(t, "Viewer", u.RoleAssignments[0].Role.Name)
}

func TestAssignRoleChecksForeignKeys(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AssignRole(ctx, "u-ana", AssignRoleInput{RoleID: "ghost"})
	assert.True(t, apierr.IsNotFound(err))

	_, err = svc.AssignRole(ctx, "u-ana", AssignRoleInput{RoleID: "r-viewer", LocationIDs: []string{"ghost"}})
	assert.True(t, apierr.IsNotFound(err))
}

func TestAssignRoleTwiceConflicts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AssignRole(ctx, "u-ana", AssignRoleInput{RoleID: "r-viewer"})
	require.NoError(t, err)
	_, err = svc.AssignRole(ctx, "u-ana", AssignRoleInput{RoleID: "r-viewer"})
	assert.True(t, apierr.IsConflict(err))
}

func TestRevokeRole(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AssignRole(ctx, "u-ana", AssignRoleInput{RoleID: "r-viewer"})
	require.NoError(t, err)

	resp, err := svc.RevokeRole(ctx, "u-ana", "r-viewer")
	require.NoError(t, err)
	assert.Empty(t, resp.Data.RoleAssignments)

	_, err = svc.RevokeRole(ctx, "u-ana", "r-viewer")
	assert.True(t, apierr.IsNotFound(err))
}

func TestListSearchAndFilter(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, in := range []CreateInput{
		{Email: "mia@example.com", FirstName: "Mia", LastName: "Chen", Status: store.UserStatusActive},
		{Email: "leo@example.com", FirstName: "Leo", LastName: "Chen", Status: store.UserStatusSuspended},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, query.Params{Search: "chen"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Pagination.Total)

	resp, err = svc.List(ctx, query.Params{
		Filters: []query.Filter{query.Eq("status", "active")},
		SortBy:  "email",
	})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Pagination.Total) // ana + mia
	assert.Equal(t, "ana@example.com", resp.Data[0].Email)
}

func TestListRejectsUnknownField(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.List(context.Background(), query.Params{SortBy: "shoeSize"})
	assert.True(t, apierr.IsValidation(err))
}

func TestResponsesAreCloneSafe(t *testing.T) {
	svc, st := newService(t)
	resp, err := svc.Get(context.Background(), "u-ana")
	require.NoError(t, err)

	resp.Data.FirstName = "Mutated"
	fresh, _ := st.GetUser("u-ana")
	assert.Equal(t, "Ana", fresh.FirstName)
}

func TestDelete(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	resp, err := svc.Delete(ctx, "u-ana")
	require.NoError(t, err)
	assert.Equal(t, "u-ana", resp.Data)
	_, ok := st.GetUser("u-ana")
	assert.False(t, ok)

	_, err = svc.Delete(ctx, "u-ana")
	assert.True(t, apierr.IsNotFound(err))
}
