package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Identity is an opaque, stable handle assigned to kernel objects at
// creation. Two value-equal bodies built independently carry different
// identities.
type Identity uint64

// Identifiable is implemented by every value that takes part in identity
// tracking (solids, their visuals, kinematics).
type Identifiable interface {
	Identity() Identity
}

// Pose is the placement of a rigid body.
type Pose struct {
	Position    mgl64.Vec3 `json:"position"`
	Orientation mgl64.Quat `json:"orientation"`
}

// IdentityPose is the pose at the origin without rotation.
func IdentityPose() Pose {
	return Pose{Orientation: mgl64.QuatIdent()}
}

// ApproxEqual compares two poses within eps.
func (p Pose) ApproxEqual(o Pose, eps float64) bool {
	return p.Position.ApproxEqualThreshold(o.Position, eps) &&
		p.Orientation.ApproxEqualThreshold(o.Orientation, eps)
}

// Box is an axis aligned bounding box.
type Box struct {
	Min mgl64.Vec3 `json:"min"`
	Max mgl64.Vec3 `json:"max"`
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(o Box) Box {
	var out Box
	for i := 0; i < 3; i++ {
		out.Min[i] = min(b.Min[i], o.Min[i])
		out.Max[i] = max(b.Max[i], o.Max[i])
	}
	return out
}

// Center returns the middle of the box.
func (b Box) Center() mgl64.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// Size returns the extent of the box on every axis.
func (b Box) Size() mgl64.Vec3 { return b.Max.Sub(b.Min) }

// Width returns the smallest extent of the box.
func (b Box) Width() float64 {
	s := b.Size()
	return min(s[0], s[1], s[2])
}

// Grow returns the box enlarged by margin on every side.
func (b Box) Grow(margin float64) Box {
	m := mgl64.Vec3{margin, margin, margin}
	return Box{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// Solid is a rigid body: a pose plus the visual parts attached to it.
type Solid interface {
	Identifiable
	Pose() Pose
	SetPose(Pose)
	// Visuals returns the values attached to the body. Values implementing
	// Identifiable are tracked by identity.
	Visuals() []any
}

// Kinematic is an assembly of solids solved jointly.
type Kinematic interface {
	Identifiable
	Solids() []Solid
	IsFixed(id Identity) bool
	SetFixed(id Identity, fixed bool)
	// Solve moves the non fixed solids until the assembly constraints hold
	// within precision. It returns a *SolveError when it does not converge in
	// maxIter iterations.
	Solve(precision float64, maxIter int) error
}

// Kernel answers geometric questions about arbitrary script values.
type Kernel interface {
	// Displayable reports whether a value can be rendered.
	Displayable(v any) bool
	// BoundingBox returns the union of the bounding boxes of the values that
	// have one. ok is false when none has.
	BoundingBox(vs ...any) (Box, bool)
}

// SolidProxy is the manipulable stand-in rendered in place of a solid.
type SolidProxy struct {
	Name  string
	Solid Solid
	Box   Box
}

// LockProxy marks a fixed solid in the scene.
type LockProxy struct {
	Solid Solid
	Box   Box
}

// LockColor is the display color of lock proxies.
var LockColor = mgl64.Vec3{1, 1, 0}

// LockKey returns the render key of the lock proxy of the solid with id.
func LockKey(id Identity) string { return fmt.Sprintf("fixed-%d", id) }

// ExtrasKey returns the name under which the unclaimed visuals of solid are
// published.
func ExtrasKey(solid string) string { return solid + ".visuals" }

// Extras lists the visuals of a solid that no script name claims.
type Extras struct {
	Solid   string
	Visuals []any
}
