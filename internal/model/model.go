// Package model holds the entity types owned by the Store: Pie, Slice,
// SliceResource, AuditLogEntry, and the derived HostRoute view.
package model

import "time"

// SliceStatus is the lifecycle state of a Slice.
type SliceStatus string

const (
	SliceCreating SliceStatus = "creating"
	SliceRunning  SliceStatus = "running"
	SliceStopped  SliceStatus = "stopped"
	SliceError    SliceStatus = "error"
)

// Protocol is the wire protocol a SliceResource binds.
type Protocol string

const (
	ProtocolHTTP Protocol = "http"
	ProtocolTCP  Protocol = "tcp"
	ProtocolUDP  Protocol = "udp"
)

// Expose controls whether and how a SliceResource gets a route host.
type Expose string

const (
	ExposePrimary   Expose = "primary"
	ExposeSubdomain Expose = "subdomain"
	ExposeNone      Expose = "none"
)

// Pie is a project/workspace grouping that owns zero or more slices.
type Pie struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
}

// Slice is one running checkout of a Pie.
type Slice struct {
	ID        string
	PieID     string
	Ordinal   int
	Host      string
	Status    SliceStatus
	CreatedAt time.Time
	StoppedAt *time.Time
}

// SliceResource is one port/route binding on a Slice.
type SliceResource struct {
	ID            string
	SliceID       string
	Key           string
	AllocatedPort int
	Protocol      Protocol
	Expose        Expose
	RouteHost     *string
	IsPrimaryHTTP bool
	CreatedAt     time.Time
}

// SliceWithResources bundles a Slice with its resources, the shape
// returned by listing/lookup Store operations.
type SliceWithResources struct {
	Slice
	Resources []SliceResource
}

// AuditLogEntry is an append-only event record.
type AuditLogEntry struct {
	ID        string
	PieID     *string
	SliceID   *string
	Kind      string
	Payload   []byte
	CreatedAt time.Time
}

// HostRoute is the derived join the Router Proxy looks up by hostname.
type HostRoute struct {
	RouteHost     string
	AllocatedPort int
	SliceID       string
	PieID         string
	SliceStatus   SliceStatus
}

// Audit kinds.
const (
	AuditPieCreated   = "pie.created"
	AuditPieDeleted   = "pie.deleted"
	AuditSliceCreated = "slice.created"
	AuditSliceStopped = "slice.stopped"
	AuditSliceDeleted = "slice.deleted"
)
