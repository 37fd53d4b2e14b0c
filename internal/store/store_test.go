package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arc-self/bakery/internal/apperr"
	"github.com/arc-self/bakery/internal/model"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bakery.db")
	st, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestCreatePie_RejectsDuplicateSlug(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.CreatePie(ctx, "My App", "my-app")
	require.NoError(t, err)

	_, err = st.CreatePie(ctx, "Another", "my-app")
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
}

func TestFindPieByIDOrSlug_MatchesEither(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	pie, err := st.CreatePie(ctx, "My App", "my-app")
	require.NoError(t, err)

	byID, err := st.FindPieByIDOrSlug(ctx, pie.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, pie.Slug, byID.Slug)

	bySlug, err := st.FindPieByIDOrSlug(ctx, "my-app")
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.Equal(t, pie.ID, bySlug.ID)

	missing, err := st.FindPieByIDOrSlug(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNextSliceOrdinal_IncrementsPerPie(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	pie, err := st.CreatePie(ctx, "My App", "my-app")
	require.NoError(t, err)

	first, err := st.NextSliceOrdinal(ctx, pie.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	_, err = st.CreateSlice(ctx, CreateSliceInput{PieID: pie.ID, Ordinal: first, Host: "my-app-s1.localtest.me", Status: model.SliceRunning})
	require.NoError(t, err)

	second, err := st.NextSliceOrdinal(ctx, pie.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second)
}

func TestCreateSlice_RejectsDuplicateHost(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	pieA, err := st.CreatePie(ctx, "App A", "app-a")
	require.NoError(t, err)
	pieB, err := st.CreatePie(ctx, "App B", "app-b")
	require.NoError(t, err)

	_, err = st.CreateSlice(ctx, CreateSliceInput{PieID: pieA.ID, Ordinal: 1, Host: "shared.localtest.me", Status: model.SliceRunning})
	require.NoError(t, err)

	_, err = st.CreateSlice(ctx, CreateSliceInput{PieID: pieB.ID, Ordinal: 1, Host: "shared.localtest.me", Status: model.SliceRunning})
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
}

func TestAddSliceResources_RejectsDuplicatePort(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	pie, err := st.CreatePie(ctx, "My App", "my-app")
	require.NoError(t, err)
	sliceA, err := st.CreateSlice(ctx, CreateSliceInput{PieID: pie.ID, Ordinal: 1, Host: "my-app-s1.localtest.me", Status: model.SliceRunning})
	require.NoError(t, err)
	sliceB, err := st.CreateSlice(ctx, CreateSliceInput{PieID: pie.ID, Ordinal: 2, Host: "my-app-s2.localtest.me", Status: model.SliceRunning})
	require.NoError(t, err)

	_, err = st.AddSliceResources(ctx, sliceA.ID, []ResourceInput{{Key: "web", AllocatedPort: 31000, Protocol: model.ProtocolTCP, Expose: model.ExposeNone}})
	require.NoError(t, err)

	_, err = st.AddSliceResources(ctx, sliceB.ID, []ResourceInput{{Key: "web", AllocatedPort: 31000, Protocol: model.ProtocolTCP, Expose: model.ExposeNone}})
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
}

func TestUpdateSliceStatus_StoppingIsIdempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	pie, err := st.CreatePie(ctx, "My App", "my-app")
	require.NoError(t, err)
	sl, err := st.CreateSlice(ctx, CreateSliceInput{PieID: pie.ID, Ordinal: 1, Host: "my-app-s1.localtest.me", Status: model.SliceRunning})
	require.NoError(t, err)

	require.NoError(t, st.UpdateSliceStatus(ctx, sl.ID, model.SliceStopped))
	first, err := st.GetSliceByID(ctx, sl.ID)
	require.NoError(t, err)
	require.NotNil(t, first.StoppedAt)
	firstStoppedAt := *first.StoppedAt

	require.NoError(t, st.UpdateSliceStatus(ctx, sl.ID, model.SliceStopped))
	second, err := st.GetSliceByID(ctx, sl.ID)
	require.NoError(t, err)
	require.NotNil(t, second.StoppedAt)
	assert.Equal(t, firstStoppedAt, *second.StoppedAt)
}

func TestUpdateSliceStatus_UnknownSliceNotFound(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	err := st.UpdateSliceStatus(ctx, "does-not-exist", model.SliceStopped)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)
}

func TestDeleteSlice_CascadesResourcesAndSurvivesInAuditLog(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	pie, err := st.CreatePie(ctx, "My App", "my-app")
	require.NoError(t, err)
	sl, err := st.CreateSlice(ctx, CreateSliceInput{PieID: pie.ID, Ordinal: 1, Host: "my-app-s1.localtest.me", Status: model.SliceRunning})
	require.NoError(t, err)
	_, err = st.AddSliceResources(ctx, sl.ID, []ResourceInput{{Key: "web", AllocatedPort: 31000, Protocol: model.ProtocolTCP, Expose: model.ExposeNone}})
	require.NoError(t, err)

	require.NoError(t, st.AppendAuditLog(ctx, AuditInput{Kind: model.AuditSliceDeleted, PieID: &pie.ID}))
	require.NoError(t, st.DeleteSlice(ctx, sl.ID))

	gone, err := st.GetSliceByID(ctx, sl.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	ports, err := st.AllocatedPorts(ctx)
	require.NoError(t, err)
	assert.Empty(t, ports)

	var audits int
	require.NoError(t, st.(*sqliteStore).db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE pie_id = ? AND kind = ?`, pie.ID, model.AuditSliceDeleted).Scan(&audits))
	assert.Equal(t, 1, audits)
}

func TestGetHostRoute_JoinsSliceStatus(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	pie, err := st.CreatePie(ctx, "My App", "my-app")
	require.NoError(t, err)
	sl, err := st.CreateSlice(ctx, CreateSliceInput{PieID: pie.ID, Ordinal: 1, Host: "my-app-s1.localtest.me", Status: model.SliceRunning})
	require.NoError(t, err)
	routeHost := "my-app-s1.localtest.me"
	_, err = st.AddSliceResources(ctx, sl.ID, []ResourceInput{{
		Key: "web", AllocatedPort: 31000, Protocol: model.ProtocolHTTP, Expose: model.ExposePrimary,
		RouteHost: &routeHost, IsPrimaryHTTP: true,
	}})
	require.NoError(t, err)

	route, err := st.GetHostRoute(ctx, routeHost)
	require.NoError(t, err)
	require.NotNil(t, route)
	assert.Equal(t, 31000, route.AllocatedPort)
	assert.Equal(t, sl.ID, route.SliceID)
	assert.Equal(t, pie.ID, route.PieID)
	assert.Equal(t, model.SliceRunning, route.SliceStatus)

	missing, err := st.GetHostRoute(ctx, "nope.localtest.me")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListSlices_FiltersByPieUnlessAll(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	pieA, err := st.CreatePie(ctx, "App A", "app-a")
	require.NoError(t, err)
	pieB, err := st.CreatePie(ctx, "App B", "app-b")
	require.NoError(t, err)
	_, err = st.CreateSlice(ctx, CreateSliceInput{PieID: pieA.ID, Ordinal: 1, Host: "a-s1.localtest.me", Status: model.SliceRunning})
	require.NoError(t, err)
	_, err = st.CreateSlice(ctx, CreateSliceInput{PieID: pieB.ID, Ordinal: 1, Host: "b-s1.localtest.me", Status: model.SliceRunning})
	require.NoError(t, err)

	onlyA, err := st.ListSlices(ctx, ListSlicesFilter{PieID: pieA.ID})
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, pieA.ID, onlyA[0].PieID)

	all, err := st.ListSlices(ctx, ListSlicesFilter{All: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAppendAuditLog_PreservesNilForeignKeys(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AppendAuditLog(ctx, AuditInput{Kind: model.AuditPieDeleted, Payload: []byte(`{"pieId":"x"}`)}))

	var nilKeys int
	require.NoError(t, st.(*sqliteStore).db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE kind = ? AND pie_id IS NULL AND slice_id IS NULL`, model.AuditPieDeleted).Scan(&nilKeys))
	assert.Equal(t, 1, nilKeys)
}

func TestDeletePie_NotFound(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	err := st.DeletePie(ctx, "does-not-exist")
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)
}
