// Package storemock contains a hand-maintained mock of store.Store, in the
// shape go.uber.org/mock/mockgen would generate for it (mirroring
// iam-service's internal/repository/mock.MockQuerier).
package storemock

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/arc-self/bakery/internal/model"
	"github.com/arc-self/bakery/internal/store"
)

// MockStore is a mock of the store.Store interface.
type MockStore struct {
	ctrl     *gomock.Controller
	recorder *MockStoreMockRecorder
}

// MockStoreMockRecorder is the mock recorder for MockStore.
type MockStoreMockRecorder struct {
	mock *MockStore
}

// NewMockStore creates a new mock instance.
func NewMockStore(ctrl *gomock.Controller) *MockStore {
	mock := &MockStore{ctrl: ctrl}
	mock.recorder = &MockStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockStore) EXPECT() *MockStoreMockRecorder {
	return m.recorder
}

func (m *MockStore) CreatePie(ctx context.Context, name, slug string) (model.Pie, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreatePie", ctx, name, slug)
	ret0, _ := ret[0].(model.Pie)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockStoreMockRecorder) CreatePie(ctx, name, slug any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreatePie", reflect.TypeOf((*MockStore)(nil).CreatePie), ctx, name, slug)
}

func (m *MockStore) ListPies(ctx context.Context) ([]model.Pie, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListPies", ctx)
	ret0, _ := ret[0].([]model.Pie)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockStoreMockRecorder) ListPies(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListPies", reflect.TypeOf((*MockStore)(nil).ListPies), ctx)
}

func (m *MockStore) FindPieByIDOrSlug(ctx context.Context, identifier string) (*model.Pie, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindPieByIDOrSlug", ctx, identifier)
	ret0, _ := ret[0].(*model.Pie)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockStoreMockRecorder) FindPieByIDOrSlug(ctx, identifier any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindPieByIDOrSlug", reflect.TypeOf((*MockStore)(nil).FindPieByIDOrSlug), ctx, identifier)
}

func (m *MockStore) DeletePie(ctx context.Context, pieID string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeletePie", ctx, pieID)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockStoreMockRecorder) DeletePie(ctx, pieID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeletePie", reflect.TypeOf((*MockStore)(nil).DeletePie), ctx, pieID)
}

func (m *MockStore) NextSliceOrdinal(ctx context.Context, pieID string) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NextSliceOrdinal", ctx, pieID)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockStoreMockRecorder) NextSliceOrdinal(ctx, pieID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NextSliceOrdinal", reflect.TypeOf((*MockStore)(nil).NextSliceOrdinal), ctx, pieID)
}

func (m *MockStore) CreateSlice(ctx context.Context, in store.CreateSliceInput) (model.Slice, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateSlice", ctx, in)
	ret0, _ := ret[0].(model.Slice)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockStoreMockRecorder) CreateSlice(ctx, in any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateSlice", reflect.TypeOf((*MockStore)(nil).CreateSlice), ctx, in)
}

func (m *MockStore) UpdateSliceStatus(ctx context.Context, sliceID string, status model.SliceStatus) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateSliceStatus", ctx, sliceID, status)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockStoreMockRecorder) UpdateSliceStatus(ctx, sliceID, status any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateSliceStatus", reflect.TypeOf((*MockStore)(nil).UpdateSliceStatus), ctx, sliceID, status)
}

func (m *MockStore) DeleteSlice(ctx context.Context, sliceID string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteSlice", ctx, sliceID)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockStoreMockRecorder) DeleteSlice(ctx, sliceID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteSlice", reflect.TypeOf((*MockStore)(nil).DeleteSlice), ctx, sliceID)
}

func (m *MockStore) GetSliceByID(ctx context.Context, sliceID string) (*model.SliceWithResources, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetSliceByID", ctx, sliceID)
	ret0, _ := ret[0].(*model.SliceWithResources)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockStoreMockRecorder) GetSliceByID(ctx, sliceID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetSliceByID", reflect.TypeOf((*MockStore)(nil).GetSliceByID), ctx, sliceID)
}

func (m *MockStore) GetSliceByHost(ctx context.Context, host string) (*model.SliceWithResources, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetSliceByHost", ctx, host)
	ret0, _ := ret[0].(*model.SliceWithResources)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockStoreMockRecorder) GetSliceByHost(ctx, host any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetSliceByHost", reflect.TypeOf((*MockStore)(nil).GetSliceByHost), ctx, host)
}

func (m *MockStore) ListSlices(ctx context.Context, filter store.ListSlicesFilter) ([]model.SliceWithResources, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListSlices", ctx, filter)
	ret0, _ := ret[0].([]model.SliceWithResources)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockStoreMockRecorder) ListSlices(ctx, filter any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListSlices", reflect.TypeOf((*MockStore)(nil).ListSlices), ctx, filter)
}

func (m *MockStore) AddSliceResources(ctx context.Context, sliceID string, inputs []store.ResourceInput) ([]model.SliceResource, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AddSliceResources", ctx, sliceID, inputs)
	ret0, _ := ret[0].([]model.SliceResource)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockStoreMockRecorder) AddSliceResources(ctx, sliceID, inputs any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddSliceResources", reflect.TypeOf((*MockStore)(nil).AddSliceResources), ctx, sliceID, inputs)
}

func (m *MockStore) AllocatedPorts(ctx context.Context) ([]int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AllocatedPorts", ctx)
	ret0, _ := ret[0].([]int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockStoreMockRecorder) AllocatedPorts(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AllocatedPorts", reflect.TypeOf((*MockStore)(nil).AllocatedPorts), ctx)
}

func (m *MockStore) GetHostRoute(ctx context.Context, host string) (*model.HostRoute, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetHostRoute", ctx, host)
	ret0, _ := ret[0].(*model.HostRoute)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockStoreMockRecorder) GetHostRoute(ctx, host any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetHostRoute", reflect.TypeOf((*MockStore)(nil).GetHostRoute), ctx, host)
}

func (m *MockStore) AppendAuditLog(ctx context.Context, in store.AuditInput) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AppendAuditLog", ctx, in)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockStoreMockRecorder) AppendAuditLog(ctx, in any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AppendAuditLog", reflect.TypeOf((*MockStore)(nil).AppendAuditLog), ctx, in)
}

func (m *MockStore) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockStoreMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockStore)(nil).Close))
}

var _ store.Store = (*MockStore)(nil)
