package core

import "sort"

// NameSet is a set of variable names.
type NameSet map[string]struct{}

// NewNameSet builds a set from the given names.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports membership. It is safe on a nil set.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Add inserts names into the set.
func (s NameSet) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

// Remove deletes names from the set.
func (s NameSet) Remove(names ...string) {
	for _, n := range names {
		delete(s, n)
	}
}

// Clone returns an independent copy.
func (s NameSet) Clone() NameSet {
	c := make(NameSet, len(s))
	for n := range s {
		c[n] = struct{}{}
	}
	return c
}

// Union returns s ∪ o as a new set.
func (s NameSet) Union(o NameSet) NameSet {
	c := s.Clone()
	for n := range o {
		c[n] = struct{}{}
	}
	return c
}

// Minus returns s − o as a new set.
func (s NameSet) Minus(o NameSet) NameSet {
	c := make(NameSet, len(s))
	for n := range s {
		if !o.Has(n) {
			c[n] = struct{}{}
		}
	}
	return c
}

// Sorted returns the names in lexical order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// FoldNeverUsed applies one execution's used/reused sets to the never-used
// set: (neverUsed ∪ used) − reused.
func FoldNeverUsed(neverUsed, used, reused NameSet) NameSet {
	return neverUsed.Union(used).Minus(reused)
}
