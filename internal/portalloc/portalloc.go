// Package portalloc finds free TCP ports on loopback for new slices.
//
// Two-layer exclusion is intentional (spec §4.2 rationale): the caller's
// `reserved` set (sourced from Store.AllocatedPorts) protects against
// handing out a port some other still-running slice already owns, while
// the runtime bind-and-release probe protects against stale reservations
// from abandoned sessions and against races with unrelated local
// processes. Neither layer may be skipped.
package portalloc

import (
	"fmt"
	"net"
	"sync"

	"github.com/arc-self/bakery/internal/apperr"
)

// Allocator finds free ports in [RangeStart, RangeEnd].
type Allocator struct {
	RangeStart int
	RangeEnd   int

	// mu serializes allocateMany calls so two racing callers never select
	// the same candidate port before either one has bound it.
	mu sync.Mutex
}

// New constructs an Allocator over the given inclusive port range.
func New(rangeStart, rangeEnd int) *Allocator {
	return &Allocator{RangeStart: rangeStart, RangeEnd: rangeEnd}
}

// AllocateMany returns count distinct ports in [RangeStart, RangeEnd], none
// present in reserved, each bindable at call time, in ascending order.
func (a *Allocator) AllocateMany(count int, reserved []int) ([]int, error) {
	if count <= 0 {
		return nil, apperr.InvalidArgument("port count must be a positive integer, got %d", count)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	excluded := make(map[int]struct{}, len(reserved))
	for _, p := range reserved {
		excluded[p] = struct{}{}
	}

	result := make([]int, 0, count)
	for candidate := a.RangeStart; candidate <= a.RangeEnd && len(result) < count; candidate++ {
		if _, skip := excluded[candidate]; skip {
			continue
		}
		if probe(candidate) {
			excluded[candidate] = struct{}{}
			result = append(result, candidate)
		}
	}

	if len(result) < count {
		return nil, apperr.ExhaustedRange("Unable to allocate %d free ports in configured range", count)
	}
	return result, nil
}

// probe reports whether port is momentarily bindable on loopback, closing
// the socket immediately so the caller can claim the reservation before
// any other process binds it.
func probe(port int) bool {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}
