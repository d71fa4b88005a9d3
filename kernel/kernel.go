// Package kernel is the geometry and kinematics kernel exposed to scripts:
// vectors, box meshes, rigid solids, distance links and kinematic
// assemblies with an iterative solver.
package kernel

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.starlark.net/starlark"

	"github.com/hupe1980/livecad/core"
	"github.com/hupe1980/livecad/identity"
)

// Kernel creates kernel values and answers geometric queries about them.
type Kernel struct {
	ids *identity.Allocator
}

var _ core.Kernel = (*Kernel)(nil)

// New creates a kernel with its own identity allocator.
func New() *Kernel {
	return &Kernel{ids: &identity.Allocator{}}
}

// Builtins returns the script functions and constants of the kernel.
func (k *Kernel) Builtins() starlark.StringDict {
	return starlark.StringDict{
		"vec3":      starlark.NewBuiltin("vec3", builtinVec3),
		"box":       starlark.NewBuiltin("box", k.builtinBox),
		"translate": starlark.NewBuiltin("translate", k.builtinTranslate),
		"solid":     starlark.NewBuiltin("solid", k.builtinSolid),
		"link":      starlark.NewBuiltin("link", k.builtinLink),
		"kinematic": starlark.NewBuiltin("kinematic", k.builtinKinematic),
		"O":         Vec3{},
		"X":         Vec3{mgl64.Vec3{1, 0, 0}},
		"Y":         Vec3{mgl64.Vec3{0, 1, 0}},
		"Z":         Vec3{mgl64.Vec3{0, 0, 1}},
	}
}

// vec3(x, y, z) or vec3(s) for a uniform vector.
func builtinVec3(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x, y, z starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &x, &y, &z); err != nil {
		return nil, err
	}
	if y == nil && z == nil {
		v, err := toVec3(x)
		if err != nil {
			return nil, err
		}
		return Vec3{v}, nil
	}
	v, err := toVec3(starlark.Tuple{x, orZero(y), orZero(z)})
	if err != nil {
		return nil, err
	}
	return Vec3{v}, nil
}

func orZero(v starlark.Value) starlark.Value {
	if v == nil {
		return starlark.MakeInt(0)
	}
	return v
}

// Displayable reports whether a value can be rendered.
func (k *Kernel) Displayable(v any) bool {
	switch t := v.(type) {
	case *Mesh, *Solid, *Kinematic, Vec3, core.SolidProxy, core.LockProxy, core.Extras:
		return true
	case starlark.Tuple:
		return k.allDisplayable(t)
	case *starlark.List:
		vs := make([]starlark.Value, t.Len())
		for i := range vs {
			vs[i] = t.Index(i)
		}
		return k.allDisplayable(vs)
	}
	return false
}

func (k *Kernel) allDisplayable(vs []starlark.Value) bool {
	if len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		if !k.Displayable(v) {
			return false
		}
	}
	return true
}

// BoundingBox returns the union of the boxes of the values that have one.
func (k *Kernel) BoundingBox(vs ...any) (core.Box, bool) {
	var (
		out core.Box
		ok  bool
	)
	add := func(b core.Box) {
		if !ok {
			out, ok = b, true
			return
		}
		out = out.Union(b)
	}
	for _, v := range vs {
		switch t := v.(type) {
		case *Mesh:
			add(t.box)
		case Vec3:
			add(core.Box{Min: t.V, Max: t.V})
		case *Solid:
			if b, found := k.solidBox(t); found {
				add(b)
			}
		case *Kinematic:
			for _, s := range t.solids {
				if b, found := k.solidBox(s); found {
					add(b)
				}
			}
		case core.SolidProxy:
			add(t.Box)
		case core.LockProxy:
			add(t.Box)
		case core.Extras:
			if b, found := k.BoundingBox(t.Visuals...); found {
				add(b)
			}
		case starlark.Tuple:
			if b, found := k.BoundingBox(values(t)...); found {
				add(b)
			}
		case *starlark.List:
			items := make([]starlark.Value, t.Len())
			for i := range items {
				items[i] = t.Index(i)
			}
			if b, found := k.BoundingBox(values(items)...); found {
				add(b)
			}
		}
	}
	return out, ok
}

// solidBox is the box of the visuals of s moved to its pose.
func (k *Kernel) solidBox(s *Solid) (core.Box, bool) {
	local, ok := k.BoundingBox(s.Visuals()...)
	if !ok {
		p := s.pose.Position
		return core.Box{Min: p, Max: p}, true
	}
	var out core.Box
	for i := 0; i < 8; i++ {
		c := local.Min
		if i&1 != 0 {
			c[0] = local.Max[0]
		}
		if i&2 != 0 {
			c[1] = local.Max[1]
		}
		if i&4 != 0 {
			c[2] = local.Max[2]
		}
		w := s.Transform(c)
		if i == 0 {
			out = core.Box{Min: w, Max: w}
		} else {
			out = out.Union(core.Box{Min: w, Max: w})
		}
	}
	return out, true
}

func values(vs []starlark.Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
