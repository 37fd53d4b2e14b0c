package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/arc-self/bakery/internal/model"
)

func TestCreatePie_Success(t *testing.T) {
	s, mockStore := newTestServerWithMock(t)

	pie := model.Pie{ID: "pie-1", Name: "My App", Slug: "my-app"}
	mockStore.EXPECT().CreatePie(gomock.Any(), "My App", "my-app").Return(pie, nil)
	mockStore.EXPECT().AppendAuditLog(gomock.Any(), gomock.Any()).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/pies", strings.NewReader(`{"name":"My App"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := newRecorder()

	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"my-app"`)
}

func TestCreatePie_EmptySlugRejected(t *testing.T) {
	s, _ := newTestServerWithMock(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/pies", strings.NewReader(`{"name":"***"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := newRecorder()

	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePie_MalformedJSON(t *testing.T) {
	s, _ := newTestServerWithMock(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/pies", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	rec := newRecorder()

	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestCreatePie_SlugConflict(t *testing.T) {
	s, mockStore := newTestServerWithMock(t)

	mockStore.EXPECT().CreatePie(gomock.Any(), "My App", "my-app").
		Return(model.Pie{}, conflictErr("pie slug %q already exists", "my-app"))

	req := httptest.NewRequest(http.MethodPost, "/v1/pies", strings.NewReader(`{"name":"My App"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := newRecorder()

	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetPie_NotFound(t *testing.T) {
	s, mockStore := newTestServerWithMock(t)

	mockStore.EXPECT().FindPieByIDOrSlug(gomock.Any(), "missing").Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/pies/missing", nil)
	rec := newRecorder()

	s.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPies_Empty(t *testing.T) {
	s, mockStore := newTestServerWithMock(t)

	mockStore.EXPECT().ListPies(gomock.Any()).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/pies", nil)
	rec := newRecorder()

	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pies":[]`)
}
