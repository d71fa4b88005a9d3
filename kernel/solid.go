package kernel

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"go.starlark.net/starlark"

	"github.com/hupe1980/livecad/core"
)

// Solid is a rigid body script value.
type Solid struct {
	id      core.Identity
	pose    core.Pose
	visuals starlark.Tuple
}

var (
	_ core.Solid        = (*Solid)(nil)
	_ starlark.HasAttrs = (*Solid)(nil)
)

func (s *Solid) Identity() core.Identity { return s.id }
func (s *Solid) Pose() core.Pose         { return s.pose }
func (s *Solid) SetPose(p core.Pose)     { s.pose = p }

// Visuals returns the values attached to the solid. Aliases in the script
// hold the very same values.
func (s *Solid) Visuals() []any {
	out := make([]any, len(s.visuals))
	for i, v := range s.visuals {
		out[i] = v
	}
	return out
}

// Transform maps a point from the solid frame to the world frame.
func (s *Solid) Transform(p mgl64.Vec3) mgl64.Vec3 {
	return s.pose.Position.Add(s.pose.Orientation.Rotate(p))
}

func (s *Solid) String() string {
	parts := make([]string, len(s.visuals))
	for i, v := range s.visuals {
		parts[i] = v.String()
	}
	return fmt.Sprintf("solid(%s)", strings.Join(parts, ", "))
}
func (s *Solid) Type() string          { return "solid" }
func (s *Solid) Freeze()               {}
func (s *Solid) Truth() starlark.Bool  { return starlark.True }
func (s *Solid) Hash() (uint32, error) { return uint32(s.id), nil }

func (s *Solid) Attr(name string) (starlark.Value, error) {
	switch name {
	case "position":
		return Vec3{s.pose.Position}, nil
	case "visuals":
		return s.visuals, nil
	}
	return nil, nil
}

func (s *Solid) AttrNames() []string { return []string{"position", "visuals"} }

// solid(*visuals, position=vec3) builds a rigid body carrying visuals.
func (k *Kernel) builtinSolid(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var position starlark.Value
	if err := starlark.UnpackArgs(b.Name(), nil, kwargs, "position?", &position); err != nil {
		return nil, err
	}
	s := &Solid{id: k.ids.Next(), pose: core.IdentityPose(), visuals: append(starlark.Tuple(nil), args...)}
	if position != nil {
		p, err := toVec3(position)
		if err != nil {
			return nil, fmt.Errorf("%s: position: %w", b.Name(), err)
		}
		s.pose.Position = p
	}
	return s, nil
}
