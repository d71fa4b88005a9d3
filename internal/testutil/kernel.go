package testutil

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/hupe1980/livecad/core"
)

// Boxer is implemented by fakes that have a bounding box.
type Boxer interface {
	BoundingBox() core.Box
}

// Visual is an identifiable displayable part.
type Visual struct {
	ID    core.Identity
	Label string
	Box   core.Box
}

// NewVisual returns a unit cube visual.
func NewVisual(id core.Identity, label string) *Visual {
	return &Visual{ID: id, Label: label, Box: core.Box{Max: mgl64.Vec3{1, 1, 1}}}
}

func (v *Visual) Identity() core.Identity { return v.ID }

func (v *Visual) BoundingBox() core.Box { return v.Box }

// Solid is a fake rigid body.
type Solid struct {
	ID    core.Identity
	P     core.Pose
	Parts []any
}

// NewSolid returns a solid at the origin carrying parts.
func NewSolid(id core.Identity, parts ...any) *Solid {
	return &Solid{ID: id, P: core.IdentityPose(), Parts: parts}
}

func (s *Solid) Identity() core.Identity { return s.ID }
func (s *Solid) Pose() core.Pose         { return s.P }
func (s *Solid) SetPose(p core.Pose)     { s.P = p }
func (s *Solid) Visuals() []any          { return s.Parts }

// BoundingBox is the union of the part boxes shifted by the position.
func (s *Solid) BoundingBox() core.Box {
	box, ok := Kernel{}.BoundingBox(s.Parts...)
	if !ok {
		box = core.Box{}
	}
	return core.Box{Min: box.Min.Add(s.P.Position), Max: box.Max.Add(s.P.Position)}
}

// SolveCall records one Solve invocation.
type SolveCall struct {
	Precision float64
	MaxIter   int
}

// Kinematic is a fake assembly recording its solve calls.
type Kinematic struct {
	ID      core.Identity
	Members []core.Solid
	Fixed   map[core.Identity]bool
	Calls   []SolveCall
	// Err is returned by every Solve when OnSolve is nil.
	Err error
	// OnSolve overrides Solve.
	OnSolve func(k *Kinematic, precision float64, maxIter int) error
}

// NewKinematic returns an assembly over solids.
func NewKinematic(id core.Identity, solids ...core.Solid) *Kinematic {
	return &Kinematic{ID: id, Members: solids, Fixed: map[core.Identity]bool{}}
}

func (k *Kinematic) Identity() core.Identity       { return k.ID }
func (k *Kinematic) Solids() []core.Solid          { return k.Members }
func (k *Kinematic) IsFixed(id core.Identity) bool { return k.Fixed[id] }
func (k *Kinematic) SetFixed(id core.Identity, f bool) {
	if f {
		k.Fixed[id] = true
	} else {
		delete(k.Fixed, id)
	}
}

func (k *Kinematic) Solve(precision float64, maxIter int) error {
	k.Calls = append(k.Calls, SolveCall{Precision: precision, MaxIter: maxIter})
	if k.OnSolve != nil {
		return k.OnSolve(k, precision, maxIter)
	}
	return k.Err
}

// CallsWith counts solve calls made at the given precision.
func (k *Kinematic) CallsWith(precision float64) int {
	n := 0
	for _, c := range k.Calls {
		if c.Precision == precision {
			n++
		}
	}
	return n
}

// Kernel is a fake kernel: fakes, proxies and extras are displayable,
// everything else is not.
type Kernel struct{}

func (Kernel) Displayable(v any) bool {
	switch v.(type) {
	case *Visual, *Solid, *Kinematic, core.SolidProxy, core.LockProxy, core.Extras, Boxer:
		return true
	}
	return false
}

func (Kernel) BoundingBox(vs ...any) (core.Box, bool) {
	var (
		out core.Box
		ok  bool
	)
	for _, v := range vs {
		var b core.Box
		switch t := v.(type) {
		case Boxer:
			b = t.BoundingBox()
		case core.SolidProxy:
			b = t.Box
		case core.LockProxy:
			b = t.Box
		default:
			continue
		}
		if !ok {
			out, ok = b, true
		} else {
			out = out.Union(b)
		}
	}
	return out, ok
}
