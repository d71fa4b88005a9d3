package kernel

import (
	"fmt"
	"math"

	"go.starlark.net/starlark"

	"github.com/hupe1980/livecad/core"
)

// Link constrains the distance between the origins of two solids.
type Link struct {
	A, B     *Solid
	Distance float64
}

func (l *Link) String() string {
	return fmt.Sprintf("link(%s, %s, distance=%g)", l.A, l.B, l.Distance)
}
func (l *Link) Type() string          { return "link" }
func (l *Link) Freeze()               {}
func (l *Link) Truth() starlark.Bool  { return starlark.True }
func (l *Link) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: link") }

// error returns the signed constraint violation.
func (l *Link) error() float64 {
	return l.B.pose.Position.Sub(l.A.pose.Position).Len() - l.Distance
}

// Kinematic is an assembly of solids joined by links.
type Kinematic struct {
	id     core.Identity
	links  []*Link
	solids []*Solid
	fixed  map[core.Identity]bool
}

var (
	_ core.Kinematic    = (*Kinematic)(nil)
	_ starlark.HasAttrs = (*Kinematic)(nil)
)

func (k *Kinematic) Identity() core.Identity { return k.id }

// Solids returns the solids of the assembly in order of first appearance.
func (k *Kinematic) Solids() []core.Solid {
	out := make([]core.Solid, len(k.solids))
	for i, s := range k.solids {
		out[i] = s
	}
	return out
}

func (k *Kinematic) IsFixed(id core.Identity) bool { return k.fixed[id] }

func (k *Kinematic) SetFixed(id core.Identity, fixed bool) {
	if fixed {
		k.fixed[id] = true
	} else {
		delete(k.fixed, id)
	}
}

// Residual returns the largest constraint violation.
func (k *Kinematic) Residual() float64 {
	var r float64
	for _, l := range k.links {
		r = math.Max(r, math.Abs(l.error()))
	}
	return r
}

// Solve projects the links one after the other until every violation is
// below precision. Fixed solids never move; the correction of a link between
// two free solids is split evenly.
func (k *Kinematic) Solve(precision float64, maxIter int) error {
	for it := 0; it < maxIter; it++ {
		if k.Residual() <= precision {
			return nil
		}
		for _, l := range k.links {
			wa, wb := k.weight(l.A), k.weight(l.B)
			if wa+wb == 0 {
				continue
			}
			d := l.B.pose.Position.Sub(l.A.pose.Position)
			n := d.Len()
			if n == 0 {
				continue
			}
			corr := d.Mul((n - l.Distance) / n / (wa + wb))
			l.A.pose.Position = l.A.pose.Position.Add(corr.Mul(wa))
			l.B.pose.Position = l.B.pose.Position.Sub(corr.Mul(wb))
		}
	}
	if r := k.Residual(); r > precision {
		return &core.SolveError{Residual: r, Iterations: maxIter}
	}
	return nil
}

func (k *Kinematic) weight(s *Solid) float64 {
	if k.fixed[s.id] {
		return 0
	}
	return 1
}

func (k *Kinematic) String() string {
	return fmt.Sprintf("kinematic(%d links, %d solids)", len(k.links), len(k.solids))
}
func (k *Kinematic) Type() string          { return "kinematic" }
func (k *Kinematic) Freeze()               {}
func (k *Kinematic) Truth() starlark.Bool  { return starlark.True }
func (k *Kinematic) Hash() (uint32, error) { return uint32(k.id), nil }

func (k *Kinematic) Attr(name string) (starlark.Value, error) {
	switch name {
	case "solids":
		out := make(starlark.Tuple, len(k.solids))
		for i, s := range k.solids {
			out[i] = s
		}
		return out, nil
	case "residual":
		return starlark.Float(k.Residual()), nil
	}
	return nil, nil
}

func (k *Kinematic) AttrNames() []string { return []string{"residual", "solids"} }

// link(a, b, distance=None) joins two solids; the distance defaults to the
// current distance between their origins.
func (k *Kernel) builtinLink(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		sa, sb *Solid
		dist   starlark.Value = starlark.None
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "a", &sa, "b", &sb, "distance?", &dist); err != nil {
		return nil, err
	}
	l := &Link{A: sa, B: sb, Distance: sb.pose.Position.Sub(sa.pose.Position).Len()}
	if dist != starlark.None {
		f, ok := starlark.AsFloat(dist)
		if !ok || f < 0 {
			return nil, fmt.Errorf("%s: distance must be a non negative number", b.Name())
		}
		l.Distance = f
	}
	return l, nil
}

// kinematic(links, fixed=[]) assembles solids joined by links.
func (k *Kernel) builtinKinematic(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var links, fixed starlark.Iterable
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "links", &links, "fixed?", &fixed); err != nil {
		return nil, err
	}
	kin := &Kinematic{id: k.ids.Next(), fixed: map[core.Identity]bool{}}
	seen := map[core.Identity]bool{}
	add := func(s *Solid) {
		if !seen[s.id] {
			seen[s.id] = true
			kin.solids = append(kin.solids, s)
		}
	}

	it := links.Iterate()
	defer it.Done()
	var v starlark.Value
	for it.Next(&v) {
		l, ok := v.(*Link)
		if !ok {
			return nil, fmt.Errorf("%s: got %s in links, want link", b.Name(), v.Type())
		}
		kin.links = append(kin.links, l)
		add(l.A)
		add(l.B)
	}

	if fixed != nil {
		fit := fixed.Iterate()
		defer fit.Done()
		for fit.Next(&v) {
			s, ok := v.(*Solid)
			if !ok {
				return nil, fmt.Errorf("%s: got %s in fixed, want solid", b.Name(), v.Type())
			}
			add(s)
			kin.fixed[s.id] = true
		}
	}
	return kin, nil
}
