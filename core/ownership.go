package core

import "sort"

// Ownership is the pose ownership map of one execution: every name whose
// placement follows a solid is mapped to that solid's name. It is rebuilt
// wholesale by the dependency tracker.
type Ownership struct {
	owners map[string]string
	solids map[string]Solid
	extras map[string]Extras
}

// NewOwnership returns an empty ownership map.
func NewOwnership() *Ownership {
	return &Ownership{
		owners: map[string]string{},
		solids: map[string]Solid{},
		extras: map[string]Extras{},
	}
}

// AddSolid registers a solid under its own name. A solid always owns itself.
func (o *Ownership) AddSolid(name string, s Solid) {
	o.solids[name] = s
	o.owners[name] = name
}

// Assign records that name follows the solid named owner.
func (o *Ownership) Assign(name, owner string) {
	o.owners[name] = owner
}

// Owner returns the name of the solid owning name.
func (o *Ownership) Owner(name string) (string, bool) {
	if o == nil {
		return "", false
	}
	owner, ok := o.owners[name]
	return owner, ok
}

// Solid resolves the solid owning name.
func (o *Ownership) Solid(name string) (Solid, bool) {
	owner, ok := o.Owner(name)
	if !ok {
		return nil, false
	}
	s, ok := o.solids[owner]
	return s, ok
}

// SolidNamed returns the solid registered under name.
func (o *Ownership) SolidNamed(name string) (Solid, bool) {
	if o == nil {
		return nil, false
	}
	s, ok := o.solids[name]
	return s, ok
}

// NameOf returns the name a solid was registered under.
func (o *Ownership) NameOf(s Solid) (string, bool) {
	if o == nil || s == nil {
		return "", false
	}
	for _, name := range o.SolidNames() {
		if o.solids[name].Identity() == s.Identity() {
			return name, true
		}
	}
	return "", false
}

// Has reports whether name has an owner.
func (o *Ownership) Has(name string) bool {
	_, ok := o.Owner(name)
	return ok
}

// Names returns every owned name in lexical order.
func (o *Ownership) Names() []string {
	if o == nil {
		return nil
	}
	out := make([]string, 0, len(o.owners))
	for n := range o.owners {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// SolidNames returns the names of the registered solids in lexical order.
func (o *Ownership) SolidNames() []string {
	if o == nil {
		return nil
	}
	out := make([]string, 0, len(o.solids))
	for n := range o.solids {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// SetExtras publishes the unclaimed visuals of the named solid. The extras
// key is owned by the solid.
func (o *Ownership) SetExtras(solid string, visuals []any) {
	key := ExtrasKey(solid)
	o.extras[key] = Extras{Solid: solid, Visuals: visuals}
	o.owners[key] = solid
}

// Extras returns the published extras keyed by ExtrasKey.
func (o *Ownership) Extras() map[string]Extras {
	if o == nil {
		return nil
	}
	out := make(map[string]Extras, len(o.extras))
	for k, v := range o.extras {
		out[k] = v
	}
	return out
}

// Map returns a copy of the name -> owner mapping.
func (o *Ownership) Map() map[string]string {
	if o == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(o.owners))
	for k, v := range o.owners {
		out[k] = v
	}
	return out
}

// Len returns the number of owned names.
func (o *Ownership) Len() int {
	if o == nil {
		return 0
	}
	return len(o.owners)
}
