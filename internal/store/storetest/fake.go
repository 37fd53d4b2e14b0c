// Package storetest provides an in-memory fake of store.Store for
// orchestrator and router-proxy tests that need real (if simplified)
// persistence semantics rather than call-expectation mocking.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arc-self/bakery/internal/apperr"
	"github.com/arc-self/bakery/internal/model"
	"github.com/arc-self/bakery/internal/store"
)

// Fake is an in-memory store.Store.
type Fake struct {
	mu sync.Mutex

	pies      map[string]model.Pie
	slices    map[string]model.Slice
	resources map[string][]model.SliceResource // keyed by sliceID
	audit     []store.AuditInput

	usedPorts map[int]struct{}
	usedHosts map[string]struct{}
	usedKeys  map[string]struct{} // sliceID+"/"+key
}

func New() *Fake {
	return &Fake{
		pies:      map[string]model.Pie{},
		slices:    map[string]model.Slice{},
		resources: map[string][]model.SliceResource{},
		usedPorts: map[int]struct{}{},
		usedHosts: map[string]struct{}{},
		usedKeys:  map[string]struct{}{},
	}
}

func (f *Fake) CreatePie(ctx context.Context, name, slug string) (model.Pie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pies {
		if p.Slug == slug {
			return model.Pie{}, apperr.Conflict("pie slug %q already exists", slug)
		}
	}
	p := model.Pie{ID: uuid.NewString(), Name: name, Slug: slug, CreatedAt: time.Now().UTC()}
	f.pies[p.ID] = p
	return p, nil
}

func (f *Fake) ListPies(ctx context.Context) ([]model.Pie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Pie, 0, len(f.pies))
	for _, p := range f.pies {
		out = append(out, p)
	}
	return out, nil
}

func (f *Fake) FindPieByIDOrSlug(ctx context.Context, identifier string) (*model.Pie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.pies[identifier]; ok {
		return &p, nil
	}
	for _, p := range f.pies {
		if p.Slug == identifier {
			return &p, nil
		}
	}
	return nil, nil
}

// DeletePie removes the pie and, mirroring the real Store's
// ON DELETE CASCADE from slices/slice_resources to pies (schema.go), every
// slice and resource it owns — callers must not rely on deleting slices
// individually first.
func (f *Fake) DeletePie(ctx context.Context, pieID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pies[pieID]; !ok {
		return apperr.NotFound("pie %q not found", pieID)
	}
	delete(f.pies, pieID)

	for sliceID, sl := range f.slices {
		if sl.PieID != pieID {
			continue
		}
		for _, r := range f.resources[sliceID] {
			delete(f.usedPorts, r.AllocatedPort)
			delete(f.usedKeys, sliceID+"/"+r.Key)
		}
		delete(f.resources, sliceID)
		delete(f.usedHosts, sl.Host)
		delete(f.slices, sliceID)
	}
	return nil
}

func (f *Fake) NextSliceOrdinal(ctx context.Context, pieID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, s := range f.slices {
		if s.PieID == pieID && s.Ordinal > max {
			max = s.Ordinal
		}
	}
	return max + 1, nil
}

func (f *Fake) CreateSlice(ctx context.Context, in store.CreateSliceInput) (model.Slice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.usedHosts[in.Host]; ok {
		return model.Slice{}, apperr.Conflict("slice host %q already exists", in.Host)
	}
	for _, s := range f.slices {
		if s.PieID == in.PieID && s.Ordinal == in.Ordinal {
			return model.Slice{}, apperr.Conflict("ordinal %d already exists for pie %q", in.Ordinal, in.PieID)
		}
	}
	sl := model.Slice{ID: uuid.NewString(), PieID: in.PieID, Ordinal: in.Ordinal, Host: in.Host, Status: in.Status, CreatedAt: time.Now().UTC()}
	f.slices[sl.ID] = sl
	f.usedHosts[in.Host] = struct{}{}
	return sl, nil
}

func (f *Fake) UpdateSliceStatus(ctx context.Context, sliceID string, status model.SliceStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sl, ok := f.slices[sliceID]
	if !ok {
		return apperr.NotFound("slice %q not found", sliceID)
	}
	sl.Status = status
	if status == model.SliceStopped && sl.StoppedAt == nil {
		now := time.Now().UTC()
		sl.StoppedAt = &now
	}
	f.slices[sliceID] = sl
	return nil
}

func (f *Fake) DeleteSlice(ctx context.Context, sliceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.slices[sliceID]; !ok {
		return apperr.NotFound("slice %q not found", sliceID)
	}
	delete(f.slices, sliceID)
	delete(f.resources, sliceID)
	return nil
}

func (f *Fake) GetSliceByID(ctx context.Context, sliceID string) (*model.SliceWithResources, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sl, ok := f.slices[sliceID]
	if !ok {
		return nil, nil
	}
	return &model.SliceWithResources{Slice: sl, Resources: append([]model.SliceResource(nil), f.resources[sliceID]...)}, nil
}

func (f *Fake) GetSliceByHost(ctx context.Context, host string) (*model.SliceWithResources, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sl := range f.slices {
		if sl.Host == host {
			return &model.SliceWithResources{Slice: sl, Resources: append([]model.SliceResource(nil), f.resources[sl.ID]...)}, nil
		}
	}
	return nil, nil
}

func (f *Fake) ListSlices(ctx context.Context, filter store.ListSlicesFilter) ([]model.SliceWithResources, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SliceWithResources
	for _, sl := range f.slices {
		if !filter.All && filter.PieID != "" && sl.PieID != filter.PieID {
			continue
		}
		out = append(out, model.SliceWithResources{Slice: sl, Resources: append([]model.SliceResource(nil), f.resources[sl.ID]...)})
	}
	return out, nil
}

func (f *Fake) AddSliceResources(ctx context.Context, sliceID string, inputs []store.ResourceInput) ([]model.SliceResource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, in := range inputs {
		if _, ok := f.usedPorts[in.AllocatedPort]; ok {
			return nil, apperr.Conflict("port %d already allocated", in.AllocatedPort)
		}
		k := sliceID + "/" + in.Key
		if _, ok := f.usedKeys[k]; ok {
			return nil, apperr.Conflict("key %q already exists on slice", in.Key)
		}
	}

	out := make([]model.SliceResource, 0, len(inputs))
	for _, in := range inputs {
		r := model.SliceResource{
			ID: uuid.NewString(), SliceID: sliceID, Key: in.Key, AllocatedPort: in.AllocatedPort,
			Protocol: in.Protocol, Expose: in.Expose, RouteHost: in.RouteHost, IsPrimaryHTTP: in.IsPrimaryHTTP,
			CreatedAt: time.Now().UTC(),
		}
		f.usedPorts[in.AllocatedPort] = struct{}{}
		f.usedKeys[sliceID+"/"+in.Key] = struct{}{}
		f.resources[sliceID] = append(f.resources[sliceID], r)
		out = append(out, r)
	}
	return out, nil
}

func (f *Fake) AllocatedPorts(ctx context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, 0, len(f.usedPorts))
	for p := range f.usedPorts {
		out = append(out, p)
	}
	return out, nil
}

func (f *Fake) GetHostRoute(ctx context.Context, host string) (*model.HostRoute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sliceID, rs := range f.resources {
		for _, r := range rs {
			if r.RouteHost != nil && *r.RouteHost == host {
				sl := f.slices[sliceID]
				return &model.HostRoute{RouteHost: host, AllocatedPort: r.AllocatedPort, SliceID: sliceID, PieID: sl.PieID, SliceStatus: sl.Status}, nil
			}
		}
	}
	return nil, nil
}

func (f *Fake) AppendAuditLog(ctx context.Context, in store.AuditInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audit = append(f.audit, in)
	return nil
}

func (f *Fake) Audit() []store.AuditInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.AuditInput(nil), f.audit...)
}

func (f *Fake) Close() error { return nil }

var _ store.Store = (*Fake)(nil)
