// Package display decides which values of the environment are rendered.
//
// Precedence, highest first: pinned names, never-used (terminal) names, then
// temporaries defined inside the active display zones. Solids are replaced by
// manipulable proxies, kinematics are recorded as the active kinematic and
// hidden, and editor overlays are applied last.
package display

import (
	"fmt"

	"github.com/hupe1980/livecad/core"
	"github.com/hupe1980/livecad/logging"
)

// DefaultLockMargin is the lock proxy margin relative to the smallest extent
// of the locked solid.
const DefaultLockMargin = 0.22

// Options configures Rules.
type Options struct {
	Logger     logging.Logger
	LockMargin float64
	// Changed is called after every rebuild with the notified keys.
	Changed func(changed core.NameSet)
}

// Rules owns the render set of a session.
type Rules struct {
	sess       *core.Session
	kernel     core.Kernel
	logger     logging.Logger
	lockMargin float64
	changed    func(core.NameSet)
}

// New creates display rules writing to sess.Scene.
func New(sess *core.Session, kernel core.Kernel, optFns ...func(o *Options)) *Rules {
	opts := Options{Logger: logging.NoOpLogger{}, LockMargin: DefaultLockMargin}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Rules{sess: sess, kernel: kernel, logger: opts.Logger, lockMargin: opts.LockMargin, changed: opts.Changed}
}

// Rebuild recomputes the render set and notifies scene views with the keys
// that changed plus the extra keys given by the caller. It returns the
// notified keys.
func (r *Rules) Rebuild(extra core.NameSet) core.NameSet {
	s := r.sess
	next := core.Scene{}

	for name, v := range s.Env {
		if (s.Pinned.Has(name) || s.NeverUsed.Has(name)) && r.kernel.Displayable(v) {
			next[name] = v
		}
	}

	for _, zone := range s.Zones {
		for _, name := range s.Locations.Names() {
			if _, ok := next[name]; ok {
				continue
			}
			loc, _ := s.Locations.Get(name)
			v, ok := s.Env[name]
			if ok && loc.Temporary && loc.Span.Within(zone) && r.kernel.Displayable(v) {
				next[name] = v
			}
		}
	}

	s.ActiveKinematic = nil
	for _, name := range next.Keys() {
		switch v := next[name].(type) {
		case core.Kinematic:
			s.ActiveKinematic = v
			delete(next, name)
		case core.Solid:
			next[name] = r.proxy(name, v)
		}
	}

	// Unclaimed visuals of every solid stay visible, displayed or not.
	for key, ex := range s.Ownership.Extras() {
		if len(ex.Visuals) > 0 {
			next[key] = ex
		}
	}

	if kin := s.ActiveKinematic; kin != nil {
		for _, solid := range kin.Solids() {
			if kin.IsFixed(solid.Identity()) {
				next[core.LockKey(solid.Identity())] = r.LockProxy(solid)
			}
		}
	}

	for name, overlay := range s.Editors {
		next[name] = overlay
	}

	changed := s.Scene.Diff(next).Union(extra)
	s.Scene = next
	r.logger.Debug("scene rebuilt", "entries", len(next), "changed", len(changed))
	s.Views.Sync(changed)
	if r.changed != nil {
		r.changed(changed)
	}
	return changed
}

func (r *Rules) proxy(name string, s core.Solid) core.SolidProxy {
	box, ok := r.kernel.BoundingBox(s.Visuals()...)
	if !ok {
		p := s.Pose().Position
		box = core.Box{Min: p, Max: p}
	}
	return core.SolidProxy{Name: name, Solid: s, Box: box}
}

// LockProxy returns the lock marker of a solid: its bounding box grown by
// the lock margin times its smallest extent.
func (r *Rules) LockProxy(s core.Solid) core.LockProxy {
	box, ok := r.kernel.BoundingBox(s.Visuals()...)
	if !ok {
		p := s.Pose().Position
		box = core.Box{Min: p, Max: p}
	}
	return core.LockProxy{Solid: s, Box: box.Grow(r.lockMargin * box.Width())}
}

// SetLock adds or removes the lock proxy of a solid and notifies scene views.
func (r *Rules) SetLock(s core.Solid, locked bool) {
	key := core.LockKey(s.Identity())
	if locked {
		r.sess.Scene[key] = r.LockProxy(s)
	} else {
		delete(r.sess.Scene, key)
	}
	r.sess.Views.Sync(core.NewNameSet(key))
}

// AddTemporary binds v to the lowest free name temp0, temp1, ... in both the
// environment and the render set, and returns the name.
func (r *Rules) AddTemporary(v any) string {
	s := r.sess
	var name string
	for i := 0; ; i++ {
		name = fmt.Sprintf("temp%d", i)
		_, inScene := s.Scene[name]
		_, inEnv := s.Env[name]
		if !inScene && !inEnv {
			break
		}
	}
	if s.Env == nil {
		s.Env = core.Environment{}
	}
	s.Env[name] = v
	s.Scene[name] = v
	s.Views.Sync(core.NewNameSet(name))
	return name
}

// ObjectAtOffset returns the name whose definition span contains offset and
// is the tightest among all candidates.
func (r *Rules) ObjectAtOffset(offset int) (string, bool) {
	return r.sess.Locations.Tightest(offset)
}

// ShowTemporaries sets the display zone to the definition enclosing offset
// (or clears it) and rebuilds the scene.
func (r *Rules) ShowTemporaries(offset int) core.NameSet {
	r.sess.Zones = nil
	if name, ok := r.ObjectAtOffset(offset); ok {
		loc, _ := r.sess.Locations.Get(name)
		r.sess.Zones = []core.Span{loc.Span}
	}
	return r.Rebuild(nil)
}
