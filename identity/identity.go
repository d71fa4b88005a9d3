// Package identity tracks kernel objects by identity rather than by value
// across re-executions.
//
// Two bodies built by separate statements may compare equal while being
// distinct objects; the Registry keys everything by core.Identity, which the
// kernel assigns once at construction with an Allocator.
package identity

import (
	"sync/atomic"

	"github.com/hupe1980/livecad/core"
)

// Allocator hands out process unique identities. The zero value is ready to
// use and never returns 0.
type Allocator struct {
	next atomic.Uint64
}

// Next returns a fresh identity.
func (a *Allocator) Next() core.Identity {
	return core.Identity(a.next.Add(1))
}

// Of returns the identity of v when v takes part in identity tracking.
func Of(v any) (core.Identity, bool) {
	if id, ok := v.(core.Identifiable); ok && id != nil {
		return id.Identity(), true
	}
	return 0, false
}

// Registry is a side table mapping visual identities to the name of the solid
// they are attached to. It also records which visuals were reached through a
// script name.
type Registry struct {
	owners  map[core.Identity]string
	claimed map[core.Identity]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// Reset forgets every attachment and claim.
func (r *Registry) Reset() {
	r.owners = map[core.Identity]string{}
	r.claimed = map[core.Identity]struct{}{}
}

// Attach registers every identifiable visual of s under the solid name.
// Visuals without identity are ignored. A visual attached twice keeps its
// first owner.
func (r *Registry) Attach(solid string, s core.Solid) {
	for _, v := range s.Visuals() {
		id, ok := Of(v)
		if !ok {
			continue
		}
		if _, exists := r.owners[id]; !exists {
			r.owners[id] = solid
		}
	}
}

// Owner returns the solid name a value is attached to.
func (r *Registry) Owner(v any) (string, bool) {
	id, ok := Of(v)
	if !ok {
		return "", false
	}
	name, ok := r.owners[id]
	return name, ok
}

// Claim marks the identity of v as reachable through a script name.
func (r *Registry) Claim(v any) {
	if id, ok := Of(v); ok {
		r.claimed[id] = struct{}{}
	}
}

// Claimed reports whether v was claimed.
func (r *Registry) Claimed(v any) bool {
	id, ok := Of(v)
	if !ok {
		return false
	}
	_, ok = r.claimed[id]
	return ok
}

// Unclaimed returns the visuals of s that no script name reaches, in their
// original order. Visuals without identity can never be claimed.
func (r *Registry) Unclaimed(s core.Solid) []any {
	out := []any{}
	for _, v := range s.Visuals() {
		if !r.Claimed(v) {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of attached identities.
func (r *Registry) Len() int { return len(r.owners) }
