package core

import (
	"reflect"
	"sort"
)

// Scene is the render set: name -> displayable value. Values are held by
// reference; the scene never copies environment values.
type Scene map[string]any

// Keys returns the scene keys in lexical order.
func (s Scene) Keys() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns a shallow copy.
func (s Scene) Clone() Scene {
	c := make(Scene, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Diff returns the keys added, removed or bound to a different value
// between s and next.
func (s Scene) Diff(next Scene) NameSet {
	changed := NewNameSet()
	for k, v := range next {
		old, ok := s[k]
		if !ok || !sameValue(old, v) {
			changed.Add(k)
		}
	}
	for k := range s {
		if _, ok := next[k]; !ok {
			changed.Add(k)
		}
	}
	return changed
}

// sameValue compares by reference for pointers and by value for comparable
// types. Uncomparable values are never considered the same, including
// structs whose interface fields hold uncomparable values.
func sameValue(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
