package api

import (
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/arc-self/bakery/internal/orchestrator"
	"github.com/arc-self/bakery/internal/store/storemock"
	"github.com/arc-self/bakery/internal/store/storetest"
)

// newTestServerWithMock wires a Server over a gomock MockStore, for tests
// that assert handler behavior against specific expected Store calls —
// the same isolation webhook_handler_test.go gets from mock.MockQuerier.
func newTestServerWithMock(t *testing.T) (*Server, *storemock.MockStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockStore := storemock.NewMockStore(ctrl)
	rp := orchestrator.NewRouterPort()
	rp.Set(4080)
	orch := orchestrator.New(mockStore, nil, "localtest.me", rp)
	logger := zap.NewNop()
	s := New(mockStore, orch, rp, "127.0.0.1", 47123, logger)
	return s, mockStore
}

// newTestServerWithFake wires a Server over the in-memory fake store and a
// real orchestrator/allocator, for tests that exercise the full create-slice
// flow end to end against the HTTP layer.
func newTestServerWithFake(t *testing.T) (*Server, *storetest.Fake) {
	t.Helper()
	fake := storetest.New()
	rp := orchestrator.NewRouterPort()
	rp.Set(4080)
	orch := orchestrator.New(fake, testAllocator{}, "localtest.me", rp)
	logger := zap.NewNop()
	s := New(fake, orch, rp, "127.0.0.1", 47123, logger)
	return s, fake
}

// testAllocator hands out sequential ports starting at 31000, avoiding any
// dependency on real socket probing in handler-level HTTP tests.
type testAllocator struct{}

func (testAllocator) AllocateMany(count int, reserved []int) ([]int, error) {
	excluded := map[int]struct{}{}
	for _, p := range reserved {
		excluded[p] = struct{}{}
	}
	var out []int
	for candidate := 31000; len(out) < count; candidate++ {
		if _, skip := excluded[candidate]; skip {
			continue
		}
		out = append(out, candidate)
	}
	return out, nil
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
