// Package orchestrator composes the Store and Port Allocator into the
// slice lifecycle: create, stop, remove. It assigns hostnames, allocates
// ports, and synthesizes resource route URLs.
package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/arc-self/bakery/internal/apperr"
	"github.com/arc-self/bakery/internal/model"
	"github.com/arc-self/bakery/internal/store"
)

// RouterPortProvider reports the Router Proxy's bound listening port. It is
// resolved after the proxy binds (spec §4.4 startup order), so the
// Orchestrator must not need its value at construction time — it reads the
// provider lazily on every slice creation instead.
type RouterPortProvider interface {
	Get() int
}

// RouterPort is an atomic RouterPortProvider: main() calls Set once the
// proxy listener is bound; everything downstream reads Get.
type RouterPort struct {
	v atomic.Int32
}

func NewRouterPort() *RouterPort { return &RouterPort{} }

func (r *RouterPort) Set(port int) { r.v.Store(int32(port)) }
func (r *RouterPort) Get() int     { return int(r.v.Load()) }

// PortAllocator is the subset of portalloc.Allocator the orchestrator needs.
type PortAllocator interface {
	AllocateMany(count int, reserved []int) ([]int, error)
}

// Orchestrator creates, stops, and removes slices.
type Orchestrator struct {
	Store      store.Store
	Allocator  PortAllocator
	HostSuffix string
	RouterPort RouterPortProvider
	Logger     *zap.Logger
}

func New(st store.Store, alloc PortAllocator, hostSuffix string, routerPort RouterPortProvider) *Orchestrator {
	return &Orchestrator{Store: st, Allocator: alloc, HostSuffix: hostSuffix, RouterPort: routerPort, Logger: zap.NewNop()}
}

// WithLogger sets the Orchestrator's logger, used to report compensation
// failures that have no other caller to surface them to.
func (o *Orchestrator) WithLogger(logger *zap.Logger) *Orchestrator {
	o.Logger = logger
	return o
}

func (o *Orchestrator) logCompensationFailure(err error) {
	o.Logger.Error("failed to compensate partially-created slice", zap.Error(err))
}

// CreateSliceResource is one resource requested at slice-creation time.
type CreateSliceResource struct {
	Key      string
	Protocol model.Protocol
	Expose   model.Expose
}

// CreateSliceParams is the Orchestrator.CreateSlice input.
type CreateSliceParams struct {
	Pie       model.Pie
	Resources []CreateSliceResource
}

// SliceResource is a CreateSliceResource enriched with its allocation.
type SliceResource struct {
	Key           string
	Protocol      model.Protocol
	Expose        model.Expose
	AllocatedPort int
	RouteHost     *string
	RouteURL      *string
}

// OrchestratedSlice is the full result of a slice creation.
type OrchestratedSlice struct {
	model.Slice
	Resources  []SliceResource
	PieSlug    string
	RouterPort int
}

// ToSliceCreateOutput is the derived projection spec §8 names:
// url = routeUrl of the unique (http, primary) resource, else nil;
// allocatedPorts = the resources' ports in input order.
type SliceCreateOutput struct {
	URL            *string
	AllocatedPorts []int
}

func (o *OrchestratedSlice) ToSliceCreateOutput() SliceCreateOutput {
	out := SliceCreateOutput{AllocatedPorts: make([]int, len(o.Resources))}
	for i, r := range o.Resources {
		out.AllocatedPorts[i] = r.AllocatedPort
		if r.Protocol == model.ProtocolHTTP && r.Expose == model.ExposePrimary {
			out.URL = r.RouteURL
		}
	}
	return out
}

// validateCreateParams enforces the request-shape invariants from spec
// §4.3: resources non-empty, keys unique in the request, at most one
// (http, primary) entry.
func validateCreateParams(p CreateSliceParams) error {
	if len(p.Resources) == 0 {
		return apperr.InvalidArgument("at least one resource is required")
	}
	seenKeys := make(map[string]struct{}, len(p.Resources))
	primaryCount := 0
	for _, r := range p.Resources {
		if _, dup := seenKeys[r.Key]; dup {
			return apperr.InvalidArgument("duplicate resource key %q", r.Key)
		}
		seenKeys[r.Key] = struct{}{}
		if r.Protocol == model.ProtocolHTTP && r.Expose == model.ExposePrimary {
			primaryCount++
		}
	}
	if primaryCount > 1 {
		return apperr.InvalidArgument("at most one (http, primary) resource is allowed")
	}
	return nil
}

// CreateSlice runs the Create algorithm from spec §4.3 as one logical
// transaction: assign ordinal, synthesize host, allocate ports, persist the
// slice, persist resources with synthesized route hosts/URLs.
func (o *Orchestrator) CreateSlice(ctx context.Context, p CreateSliceParams) (*OrchestratedSlice, error) {
	if err := validateCreateParams(p); err != nil {
		return nil, err
	}

	ordinal, err := o.Store.NextSliceOrdinal(ctx, p.Pie.ID)
	if err != nil {
		return nil, err
	}

	host := fmt.Sprintf("%s-s%d.%s", p.Pie.Slug, ordinal, o.HostSuffix)

	reserved, err := o.Store.AllocatedPorts(ctx)
	if err != nil {
		return nil, err
	}

	ports, err := o.Allocator.AllocateMany(len(p.Resources), reserved)
	if err != nil {
		return nil, err
	}

	slice, err := o.Store.CreateSlice(ctx, store.CreateSliceInput{
		PieID:   p.Pie.ID,
		Ordinal: ordinal,
		Host:    host,
		Status:  model.SliceRunning,
	})
	if err != nil {
		return nil, err
	}

	routerPort := o.RouterPort.Get()

	inputs := make([]store.ResourceInput, len(p.Resources))
	results := make([]SliceResource, len(p.Resources))
	for i, res := range p.Resources {
		port := ports[i]
		var routeHost *string
		if res.Protocol == model.ProtocolHTTP {
			switch res.Expose {
			case model.ExposePrimary:
				h := host
				routeHost = &h
			case model.ExposeSubdomain:
				h := res.Key + "." + host
				routeHost = &h
			}
		}

		var routeURL *string
		if routeHost != nil {
			routeURL = ptr(routeURLFor(*routeHost, routerPort))
		}

		isPrimary := res.Protocol == model.ProtocolHTTP && res.Expose == model.ExposePrimary

		inputs[i] = store.ResourceInput{
			Key:           res.Key,
			AllocatedPort: port,
			Protocol:      res.Protocol,
			Expose:        res.Expose,
			RouteHost:     routeHost,
			IsPrimaryHTTP: isPrimary,
		}
		results[i] = SliceResource{
			Key:           res.Key,
			Protocol:      res.Protocol,
			Expose:        res.Expose,
			AllocatedPort: port,
			RouteHost:     routeHost,
			RouteURL:      routeURL,
		}
	}

	if _, err := o.Store.AddSliceResources(ctx, slice.ID, inputs); err != nil {
		// The slice row committed in Store.CreateSlice above but its
		// resources didn't (typically a lost port/key race against a
		// concurrent CreateSlice) — compensate by deleting it so no
		// resource-less slice is left behind, per spec §3/§4.3/§5: composite
		// workflows must never leave partial state visible.
		if delErr := o.Store.DeleteSlice(ctx, slice.ID); delErr != nil {
			o.logCompensationFailure(delErr)
		}
		return nil, err
	}

	return &OrchestratedSlice{
		Slice:      slice,
		Resources:  results,
		PieSlug:    p.Pie.Slug,
		RouterPort: routerPort,
	}, nil
}

// routeURLFor builds "http://<routeHost><portSuffix>", eliding the port
// when the router listens on 80 or 443 (spec §4.3 step 5).
func routeURLFor(routeHost string, routerPort int) string {
	if routerPort == 80 || routerPort == 443 {
		return "http://" + routeHost
	}
	return fmt.Sprintf("http://%s:%d", routeHost, routerPort)
}

func ptr[T any](v T) *T { return &v }

// StopSlice idempotently transitions a slice to stopped.
func (o *Orchestrator) StopSlice(ctx context.Context, sliceID string) error {
	return o.Store.UpdateSliceStatus(ctx, sliceID, model.SliceStopped)
}

// RemoveSlice deletes the persisted slice and (via cascade) its resources.
func (o *Orchestrator) RemoveSlice(ctx context.Context, sliceID string) error {
	return o.Store.DeleteSlice(ctx, sliceID)
}
