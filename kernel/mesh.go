package kernel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.starlark.net/starlark"

	"github.com/hupe1980/livecad/core"
)

// Mesh is an axis aligned box mesh. It carries an identity so aliases of the
// same mesh can be told apart from equal copies.
type Mesh struct {
	id  core.Identity
	box core.Box
}

var _ starlark.HasAttrs = (*Mesh)(nil)

func (m *Mesh) Identity() core.Identity { return m.id }

// BoundingBox returns the box of the mesh.
func (m *Mesh) BoundingBox() core.Box { return m.box }

func (m *Mesh) String() string {
	return fmt.Sprintf("box(%s, %s)", Vec3{m.box.Min}, Vec3{m.box.Max})
}
func (m *Mesh) Type() string          { return "mesh" }
func (m *Mesh) Freeze()               {}
func (m *Mesh) Truth() starlark.Bool  { return starlark.True }
func (m *Mesh) Hash() (uint32, error) { return uint32(m.id), nil }

func (m *Mesh) Attr(name string) (starlark.Value, error) {
	switch name {
	case "min":
		return Vec3{m.box.Min}, nil
	case "max":
		return Vec3{m.box.Max}, nil
	case "center":
		return Vec3{m.box.Center()}, nil
	}
	return nil, nil
}

func (m *Mesh) AttrNames() []string { return []string{"center", "max", "min"} }

func (k *Kernel) newMesh(min, max mgl64.Vec3) *Mesh {
	return &Mesh{id: k.ids.Next(), box: core.Box{Min: min, Max: max}.Union(core.Box{Min: max, Max: min})}
}

// box(size) builds a cube centered on the origin, box(min, max) a box
// between two corners.
func (k *Kernel) builtinBox(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var a, c starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &a, &c); err != nil {
		return nil, err
	}
	p, err := toVec3(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if c == nil {
		half := p.Mul(0.5)
		return k.newMesh(half.Mul(-1), half), nil
	}
	q, err := toVec3(c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return k.newMesh(p, q), nil
}

// translate(mesh, offset) returns a moved copy of a mesh with a new identity.
func (k *Kernel) builtinTranslate(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		m   *Mesh
		off starlark.Value
	)
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &m, &off); err != nil {
		return nil, err
	}
	d, err := toVec3(off)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return k.newMesh(m.box.Min.Add(d), m.box.Max.Add(d)), nil
}
