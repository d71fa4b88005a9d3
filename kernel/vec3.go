package kernel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Vec3 is a 3D vector script value.
type Vec3 struct {
	V mgl64.Vec3
}

var (
	_ starlark.HasAttrs   = Vec3{}
	_ starlark.HasBinary  = Vec3{}
	_ starlark.HasUnary   = Vec3{}
	_ starlark.Comparable = Vec3{}
)

func (v Vec3) String() string        { return fmt.Sprintf("vec3(%g, %g, %g)", v.V[0], v.V[1], v.V[2]) }
func (v Vec3) Type() string          { return "vec3" }
func (v Vec3) Freeze()               {}
func (v Vec3) Truth() starlark.Bool  { return v.V != mgl64.Vec3{} }
func (v Vec3) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: vec3") }

func (v Vec3) Attr(name string) (starlark.Value, error) {
	switch name {
	case "x":
		return starlark.Float(v.V[0]), nil
	case "y":
		return starlark.Float(v.V[1]), nil
	case "z":
		return starlark.Float(v.V[2]), nil
	case "length":
		return starlark.Float(v.V.Len()), nil
	}
	return nil, nil
}

func (v Vec3) AttrNames() []string { return []string{"length", "x", "y", "z"} }

func (v Vec3) Binary(op syntax.Token, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	if w, ok := y.(Vec3); ok {
		switch op {
		case syntax.PLUS:
			return Vec3{v.V.Add(w.V)}, nil
		case syntax.MINUS:
			if side == starlark.Left {
				return Vec3{v.V.Sub(w.V)}, nil
			}
			return Vec3{w.V.Sub(v.V)}, nil
		}
		return nil, nil
	}
	f, ok := starlark.AsFloat(y)
	if !ok {
		return nil, nil
	}
	switch op {
	case syntax.STAR:
		return Vec3{v.V.Mul(f)}, nil
	case syntax.SLASH:
		if side == starlark.Left {
			if f == 0 {
				return nil, fmt.Errorf("vec3 division by zero")
			}
			return Vec3{v.V.Mul(1 / f)}, nil
		}
	}
	return nil, nil
}

func (v Vec3) Unary(op syntax.Token) (starlark.Value, error) {
	switch op {
	case syntax.MINUS:
		return Vec3{v.V.Mul(-1)}, nil
	case syntax.PLUS:
		return v, nil
	}
	return nil, nil
}

func (v Vec3) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	w := y.(Vec3)
	switch op {
	case syntax.EQL:
		return v.V == w.V, nil
	case syntax.NEQ:
		return v.V != w.V, nil
	}
	return false, fmt.Errorf("%s %s %s not implemented", v.Type(), op, w.Type())
}

// toVec3 converts a vec3 or a 3 element sequence of numbers.
func toVec3(v starlark.Value) (mgl64.Vec3, error) {
	switch t := v.(type) {
	case Vec3:
		return t.V, nil
	case starlark.Indexable:
		if t.Len() != 3 {
			return mgl64.Vec3{}, fmt.Errorf("expected 3 components, got %d", t.Len())
		}
		var out mgl64.Vec3
		for i := 0; i < 3; i++ {
			f, ok := starlark.AsFloat(t.Index(i))
			if !ok {
				return mgl64.Vec3{}, fmt.Errorf("component %d is %s, want number", i, t.Index(i).Type())
			}
			out[i] = f
		}
		return out, nil
	}
	if f, ok := starlark.AsFloat(v); ok {
		return mgl64.Vec3{f, f, f}, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("got %s, want vec3", v.Type())
}
