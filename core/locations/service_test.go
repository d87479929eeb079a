package locations

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
		Locations: []store.Location{
			{ID: "l-a", Name: "Plant A", Code: "PA", Type: store.LocationTypeFacility, IsActive: true, Order: 1, CreatedAt: now, UpdatedAt: now},
			{ID: "l-b", Name: "Assembly", Code: "PA-ASM", Type: store.LocationTypeDepartment, ParentID: "l-a", IsActive: true, Order: 2, CreatedAt: now, UpdatedAt: now},
			{ID: "l-c", Name: "Paint Shop", Code: "PA-PNT", Type: store.LocationTypeDepartment, ParentID: "l-a", IsActive: true, Order: 1, CreatedAt: now, UpdatedAt: now},
			{ID: "l-d", Name: "Line 1", Code: "PA-ASM-1", Type: store.LocationTypeZone, ParentID: "l-b", IsActive: true, Order: 1, CreatedAt: now, UpdatedAt: now},
		},
	})
	run := simulate.NewRunner(cfg, nil, nil)
	return NewService(st, run, cfg, nil), st
}

func TestCreateUnderParent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, CreateInput{
		Name:     "Warehouse",
		Code:     "PA-WH",
		Type:     store.LocationTypeBuilding,
		ParentID: "l-a",
	})
	require.NoError(t, err)
	assert.Equal(t, "l-a", resp.Data.ParentID)
	assert.True(t, resp.Data.IsActive)
	assert.NotEmpty(t, resp.Data.ID)
}

func TestCreateUnknownParent(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Create(context.Background(), CreateInput{
		Name: "X", Code: "X1", Type: store.LocationTypeArea, ParentID: "ghost",
	})
	assert.True(t, apierr.IsNotFound(err))
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Create(context.Background(), CreateInput{Type: "warehouse"})
	require.Error(t, err)
	var ve *apierr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "code")
	assert.Contains(t, ve.Fields, "type")
}

func TestCodeConflictIsCaseInsensitive(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Create(context.Background(), CreateInput{
		Name: "Dup", Code: "pa-asm", Type: store.LocationTypeDepartment,
	})
	assert.True(t, apierr.IsConflict(err))
}

func TestReparentToDescendantIsRejected(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	// l-b is a child of l-a; making l-b the parent of l-a would close a cycle
	parent := "l-b"
	_, err := svc.Update(ctx, "l-a", UpdateInput{ParentID: &parent})
	require.Error(t, err)
	assert.True(t, apierr.IsValidation(err))

	l, _ := st.GetLocation("l-a")
	assert.Equal(t, "", l.ParentID)

	// deeper descendant is rejected too
	parent = "l-d"
	_, err = svc.Update(ctx, "l-a", UpdateInput{ParentID: &parent})
	assert.True(t, apierr.IsValidation(err))
}

func TestReparentToSelfIsRejected(t *testing.T) {
	svc, _ := newService(t)
	self := "l-b"
	_, err := svc.Update(context.Background(), "l-b", UpdateInput{ParentID: &self})
	assert.True(t, apierr.IsValidation(err))
}

func TestReparentToRoot(t *testing.T) {
	svc, st := newService(t)
	root := ""
	resp, err := svc.Update(context.Background(), "l-b", UpdateInput{ParentID: &root})
	require.NoError(t, err)
	assert.Equal(t, "", resp.Data.ParentID)
	l, _ := st.GetLocation("l-b")
	assert.Equal(t, "", l.ParentID)
}

func TestDeleteRefusesWhenChildrenExist(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	_, err := svc.Delete(ctx, "l-a", DeleteOptions{})
	require.Error(t, err)
	var ve *apierr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "deleteChildren")

	_, ok := st.GetLocation("l-a")
	assert.True(t, ok)
}

func TestDeleteCascadesSubtree(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	resp, err := svc.Delete(ctx, "l-a", DeleteOptions{DeleteChildren: true})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 4)

	for _, id := range []string{"l-a", "l-b", "l-c", "l-d"} {
		_, ok := st.GetLocation(id)
		assert.False(t, ok, "location %s should be gone", id)
	}
}

func TestDeleteLeaf(t *testing.T) {
	svc, st := newService(t)
	resp, err := svc.Delete(context.Background(), "l-d", DeleteOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"l-d"}, resp.Data)
	_, ok := st.GetLocation("l-d")
	assert.False(t, ok)
}

func TestTreeSortsByOrderThenName(t *testing.T) {
	svc, _ := newService(t)

	resp, err := svc.Tree(context.Background())
	require.NoError(t, err)
	roots := resp.Data
	require.Len(t, roots, 1)
	require.Equal(t, "l-a", roots[0].ID)

	// Paint Shop (order 1) before Assembly (order 2)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "l-c", roots[0].Children[0].ID)
	assert.Equal(t, "l-b", roots[0].Children[1].ID)

	require.Len(t, roots[0].Children[1].Children, 1)
	assert.Equal(t, "l-d", roots[0].Children[1].Children[0].ID)
}

func TestTreeOrphanBecomesRoot(t *testing.T) {
	svc, st := newService(t)
	st.SetLocation(store.Location{
		ID: "l-orphan", Name: "Orphan", Code: "ORP",
		Type: store.LocationTypeArea, ParentID: "ghost", IsActive: true,
	})

	resp, err := svc.Tree(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
}

func TestListFilterByType(t *testing.T) {
	svc, _ := newService(t)
	resp, err := svc.List(context.Background(), query.Params{
		Filters: []query.Filter{query.Eq("type", "department")},
		SortBy:  "code",
	})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Pagination.Total)
	assert.Equal(t, "PA-ASM", resp.Data[0].Code)
}

func TestListSearch(t *testing.T) {
	svc, _ := newService(t)
	resp, err := svc.List(context.Background(), query.Params{Search: "paint"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Pagination.Total)
	assert.Equal(t, "l-c", resp.Data[0].ID)
}
