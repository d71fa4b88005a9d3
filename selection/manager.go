// Package selection maintains the cross view selection set and the text
// highlights derived from it.
package selection

import (
	"sort"

	"github.com/hupe1980/livecad/core"
	"github.com/hupe1980/livecad/logging"
)

// Grouper is implemented by rendered values made of addressable sub
// elements.
type Grouper interface {
	Group(sub int) any
}

// Options configures a Manager.
type Options struct {
	Logger logging.Logger
	// Changed is called after every selection mutation.
	Changed func(key core.SelectionKey, state bool)
}

// Manager owns the selection set and the active solid.
type Manager struct {
	sess   *core.Session
	kernel core.Kernel
	opts   Options
}

// New creates a selection manager.
func New(sess *core.Session, kernel core.Kernel, optFns ...func(o *Options)) *Manager {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{sess: sess, kernel: kernel, opts: opts}
}

// Set sets the selection state of (key, sub). Picking a solid, directly or
// through its proxy, also makes it the active solid.
func (m *Manager) Set(key string, sub int, state bool) {
	switch v := m.sess.Scene[key].(type) {
	case core.SolidProxy:
		m.sess.ActiveSolid = v.Solid
	case core.Solid:
		m.sess.ActiveSolid = v
	}

	sk := core.SelectionKey{Key: key, Sub: sub}
	m.sess.Selection.Set(sk, state)
	m.sess.Views.Select(key, sub, state)
	m.sess.AddEvent(core.NewEvent(core.EventSelectionChanged, "").
		WithNames(key).
		WithMetadata("sub", sub).
		WithMetadata("state", state))
	m.opts.Logger.Debug("selection changed", "key", key, "sub", sub, "state", state)

	m.Refresh()
	if m.opts.Changed != nil {
		m.opts.Changed(sk, state)
	}
}

// Toggle flips the selection state of (key, sub) and returns the new state.
func (m *Manager) Toggle(key string, sub int) bool {
	state := !m.sess.Selection.Has(core.SelectionKey{Key: key, Sub: sub})
	m.Set(key, sub, state)
	return state
}

// DeselectAll clears the selection.
func (m *Manager) DeselectAll() {
	for _, sk := range m.sess.Selection.Sorted() {
		m.sess.Views.Select(sk.Key, sk.Sub, false)
	}
	m.sess.Selection = core.Selection{}
	m.sess.AddEvent(core.NewEvent(core.EventSelectionChanged, "cleared"))
	m.Refresh()
}

// Highlights computes the three highlight categories: display zones,
// selected definitions and edited definitions. A name under edit is only
// highlighted as edited, and a zone covering a selected or edited
// definition is not repeated as a zone.
func (m *Manager) Highlights() core.Highlights {
	s := m.sess
	h := core.Highlights{}

	seen := core.NewNameSet()
	for _, sk := range s.Selection.Sorted() {
		if seen.Has(sk.Key) {
			continue
		}
		seen.Add(sk.Key)
		if _, editing := s.Editors[sk.Key]; editing {
			continue
		}
		if loc, ok := s.Locations.Get(sk.Key); ok {
			h.Selected = append(h.Selected, loc.Span)
		}
	}

	edited := make([]string, 0, len(s.Editors))
	for name := range s.Editors {
		edited = append(edited, name)
	}
	sort.Strings(edited)
	for _, name := range edited {
		if loc, ok := s.Locations.Get(name); ok {
			h.Edited = append(h.Edited, loc.Span)
		}
	}

	taken := make(map[core.Span]struct{}, len(h.Selected)+len(h.Edited))
	for _, sp := range append(append([]core.Span(nil), h.Selected...), h.Edited...) {
		taken[sp] = struct{}{}
	}
	for _, z := range s.Zones {
		if _, ok := taken[z]; !ok {
			h.Zones = append(h.Zones, z)
		}
	}
	return h
}

// Refresh pushes the current highlights to every script view.
func (m *Manager) Refresh() {
	m.sess.Views.SetHighlights(m.Highlights())
}

// BoundingBox returns the bounding box of the selected elements present in
// the scene.
func (m *Manager) BoundingBox() (core.Box, bool) {
	var objs []any
	for _, sk := range m.sess.Selection.Sorted() {
		obj, ok := m.sess.Scene[sk.Key]
		if !ok {
			continue
		}
		if g, ok := obj.(Grouper); ok {
			obj = g.Group(sk.Sub)
		}
		objs = append(objs, obj)
	}
	return m.kernel.BoundingBox(objs...)
}
