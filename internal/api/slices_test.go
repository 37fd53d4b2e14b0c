package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/bakery/internal/model"
)

func TestCreateSlice_HappyPathEndToEnd(t *testing.T) {
	s, fake := newTestServerWithFake(t)
	ctx := context.Background()

	pie, err := fake.CreatePie(ctx, "My App", "my-app")
	require.NoError(t, err)

	body := `{"pieId":"` + pie.ID + `","resources":[{"key":"r1","protocol":"http","expose":"primary"},{"key":"r2","protocol":"tcp","expose":"none"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/slices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := newRecorder()

	s.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp orchestratedSliceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "my-app-s1.localtest.me", resp.Host)
	assert.Equal(t, 4080, resp.RouterPort)
	require.Len(t, resp.Resources, 2)
	require.NotNil(t, resp.Resources[0].RouteURL)
	assert.Equal(t, "http://my-app-s1.localtest.me:4080", *resp.Resources[0].RouteURL)
	assert.Nil(t, resp.Resources[1].RouteHost)
}

func TestCreateSlice_UnknownPie(t *testing.T) {
	s, _ := newTestServerWithFake(t)

	body := `{"pieId":"does-not-exist","resources":[{"key":"r1","protocol":"tcp","expose":"none"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/slices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := newRecorder()

	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSlice_InvalidResourceKey(t *testing.T) {
	s, fake := newTestServerWithFake(t)
	ctx := context.Background()
	pie, err := fake.CreatePie(ctx, "My App", "my-app")
	require.NoError(t, err)

	body := `{"pieId":"` + pie.ID + `","resources":[{"key":"Bad_Key","protocol":"tcp","expose":"none"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/slices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := newRecorder()

	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSlices_PieIdAndAllMutuallyExclusive(t *testing.T) {
	s, _ := newTestServerWithFake(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/slices?pieId=my-app&all=true", nil)
	rec := newRecorder()

	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeletePie_CascadesAndAudits(t *testing.T) {
	s, fake := newTestServerWithFake(t)
	ctx := context.Background()

	pie, err := fake.CreatePie(ctx, "My App", "my-app")
	require.NoError(t, err)

	createBody := `{"pieId":"` + pie.ID + `","resources":[{"key":"r1","protocol":"tcp","expose":"none"}]}`
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/slices", strings.NewReader(createBody))
		req.Header.Set("Content-Type", "application/json")
		rec := newRecorder()
		s.Echo.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/v1/pies/"+pie.Slug, nil)
	delRec := newRecorder()
	s.Echo.ServeHTTP(delRec, delReq)
	require.Equal(t, http.StatusOK, delRec.Code)

	listReq := httptest.NewRequest(http.MethodGet, "/v1/slices?pieId="+pie.Slug, nil)
	listRec := newRecorder()
	s.Echo.ServeHTTP(listRec, listReq)
	// The pie itself is gone, so looking it up by slug now 404s.
	assert.Equal(t, http.StatusNotFound, listRec.Code)

	audit := fake.Audit()
	var sliceDeleted, pieDeleted int
	for _, a := range audit {
		switch a.Kind {
		case model.AuditSliceDeleted:
			sliceDeleted++
			assert.NotNil(t, a.PieID)
			assert.Nil(t, a.SliceID)
		case model.AuditPieDeleted:
			pieDeleted++
		}
	}
	assert.Equal(t, 2, sliceDeleted)
	assert.Equal(t, 1, pieDeleted)
}
