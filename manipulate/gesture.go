// Package manipulate turns pointer events into pose edits of solids.
//
// A Gesture is an explicit state machine driven by the event loop: each
// pointer event is passed to Step, which answers Continue while the gesture
// still owns the pointer stream and Done once it ended.
package manipulate

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/time/rate"

	"github.com/hupe1980/livecad/core"
	"github.com/hupe1980/livecad/logging"
)

// Locker shows and hides lock proxies.
type Locker interface {
	SetLock(s core.Solid, locked bool)
}

// Options configures a gesture.
type Options struct {
	Logger logging.Logger
	// Coarse solve run on every pointer move.
	DragPrecision     float64
	DragMaxIterations int
	// Tight solve run once on release.
	CommitPrecision     float64
	CommitMaxIterations int
	// RedrawRate bounds pose notifications per second while dragging.
	// Zero means unlimited.
	RedrawRate float64
	// SolveFailed is called when the release solve does not converge.
	SolveFailed func(err error)
}

// DefaultOptions are the tolerances used when none are configured.
var DefaultOptions = Options{
	DragPrecision:       1e-2,
	DragMaxIterations:   50,
	CommitPrecision:     1e-4,
	CommitMaxIterations: 1000,
}

// Gesture is one manipulation of a solid, from press to release.
type Gesture struct {
	ID string

	sess    *core.Session
	locker  Locker
	picker  Picker
	opts    Options
	limiter *rate.Limiter

	state    State
	key      string
	solid    core.Solid
	kin      core.Kinematic
	startPt  mgl64.Vec3
	offset   mgl64.Vec3
	moved    bool
	snapshot map[core.Identity]core.Pose
	err      error
}

// New creates an idle gesture.
func New(sess *core.Session, locker Locker, picker Picker, optFns ...func(o *Options)) *Gesture {
	opts := DefaultOptions
	opts.Logger = logging.NoOpLogger{}
	for _, fn := range optFns {
		fn(&opts)
	}
	limit := rate.Inf
	if opts.RedrawRate > 0 {
		limit = rate.Limit(opts.RedrawRate)
	}
	return &Gesture{
		ID:      core.NewID(),
		sess:    sess,
		locker:  locker,
		picker:  picker,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// State returns the current state.
func (g *Gesture) State() State { return g.state }

// Solid returns the manipulated solid, nil before a successful press.
func (g *Gesture) Solid() core.Solid { return g.solid }

// Err reports why the last press did not start a drag. It is
// core.ErrNotManipulable when the picked key has no pose owner.
func (g *Gesture) Err() error { return g.err }

// Step advances the state machine by one event.
func (g *Gesture) Step(ev PointerEvent) Result {
	switch g.state {
	case Idle:
		switch ev.Kind {
		case Press, DoublePress:
			return g.press(ev)
		case Move, Release:
			return Continue
		default:
			return Done
		}
	case Dragging:
		switch ev.Kind {
		case Move:
			g.drag(ev)
			return Continue
		case Release:
			g.release()
			return Done
		default:
			g.cancel()
			return Done
		}
	}
	return Done
}

func (g *Gesture) press(ev PointerEvent) Result {
	key, point, ok := g.picker.Pick(ev.X, ev.Y)
	if !ok {
		return Done
	}
	solid, ok := g.resolve(key)
	if !ok {
		g.err = fmt.Errorf("%w: %q", core.ErrNotManipulable, key)
		g.opts.Logger.Debug("pick is not manipulable", "key", key)
		return Done
	}
	g.err = nil

	g.key = key
	g.solid = solid
	g.kin = g.sess.ActiveKinematic
	g.moved = false
	g.startPt = point
	pose := solid.Pose()
	g.offset = pose.Orientation.Inverse().Rotate(pose.Position.Sub(point))

	g.snapshot = map[core.Identity]core.Pose{solid.Identity(): pose}
	if g.kin != nil {
		for _, s := range g.kin.Solids() {
			g.snapshot[s.Identity()] = s.Pose()
		}
	}
	g.state = Dragging
	g.sess.Views.Info("move any solid by one of its objects, click a solid to set or unset it fixed")
	return Continue
}

// resolve finds the solid owning a render key.
func (g *Gesture) resolve(key string) (core.Solid, bool) {
	if s, ok := g.sess.Ownership.Solid(key); ok {
		return s, true
	}
	if lock, ok := g.sess.Scene[key].(core.LockProxy); ok && lock.Solid != nil {
		return lock.Solid, true
	}
	return nil, false
}

func (g *Gesture) locked() bool {
	return g.kin != nil && g.kin.IsFixed(g.solid.Identity())
}

func (g *Gesture) drag(ev PointerEvent) {
	if g.locked() {
		return
	}
	g.moved = true

	pt := g.picker.PointFrom(ev.X, ev.Y, g.startPt)
	pose := g.solid.Pose()
	pose.Position = pt.Add(pose.Orientation.Rotate(g.offset))
	g.solid.SetPose(pose)

	if g.kin != nil {
		// non convergence keeps the extrapolated pose on screen
		if err := g.kin.Solve(g.opts.DragPrecision, g.opts.DragMaxIterations); err != nil {
			g.opts.Logger.Debug("drag solve did not converge", "error", err)
		}
	}

	pose = g.solid.Pose()
	g.startPt = pose.Position.Sub(pose.Orientation.Rotate(g.offset))
	if g.limiter.Allow() {
		g.sess.Views.ApplyPoses()
	}
}

func (g *Gesture) release() {
	g.state = Idle
	if !g.moved {
		g.toggleLock()
		return
	}
	if g.kin != nil {
		g.commitSolve()
	}
	g.sess.Views.ApplyPoses()
}

func (g *Gesture) toggleLock() {
	if g.kin == nil || !g.inKinematic() {
		return
	}
	id := g.solid.Identity()
	fixed := !g.kin.IsFixed(id)
	g.kin.SetFixed(id, fixed)
	g.locker.SetLock(g.solid, fixed)

	name, _ := g.sess.Ownership.NameOf(g.solid)
	g.sess.AddEvent(core.NewEvent(core.EventLockToggled, "").
		WithNames(name).
		WithMetadata("fixed", fixed))
}

func (g *Gesture) inKinematic() bool {
	id := g.solid.Identity()
	for _, s := range g.kin.Solids() {
		if s.Identity() == id {
			return true
		}
	}
	return false
}

func (g *Gesture) commitSolve() {
	start := time.Now()
	err := g.kin.Solve(g.opts.CommitPrecision, g.opts.CommitMaxIterations)
	name, _ := g.sess.Ownership.NameOf(g.solid)
	sl, structured := g.opts.Logger.(*logging.StructuredLogger)
	if structured {
		sl.WithContext("solid", name).LogSolve(g.opts.CommitPrecision, g.opts.CommitMaxIterations, time.Since(start), err)
	}
	if err != nil {
		g.sess.Views.Info(err.Error())
		g.sess.AddEvent(core.NewEvent(core.EventSolveFailed, err.Error()).WithNames(name))
		if !structured {
			g.opts.Logger.Warn("kinematic solve did not converge", "solid", name, "error", err, "duration", time.Since(start))
		}
		var se *core.SolveError
		if errors.As(err, &se) {
			g.opts.Logger.Debug("solve residual", "residual", se.Residual, "iterations", se.Iterations)
		}
		if g.opts.SolveFailed != nil {
			g.opts.SolveFailed(err)
		}
		return
	}
	g.sess.Views.Info("successfully solved")
	g.sess.AddEvent(core.NewEvent(core.EventSolved, "").WithNames(name))
	if !structured {
		g.opts.Logger.Debug("kinematic solved", "solid", name, "duration", time.Since(start))
	}
}

func (g *Gesture) cancel() {
	g.state = Idle
	if g.kin != nil {
		for _, s := range g.kin.Solids() {
			if p, ok := g.snapshot[s.Identity()]; ok {
				s.SetPose(p)
			}
		}
	}
	if p, ok := g.snapshot[g.solid.Identity()]; ok {
		g.solid.SetPose(p)
	}
	g.sess.Views.ApplyPoses()
}
