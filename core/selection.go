package core

import "sort"

// SelectionKey addresses one sub element of a rendered value.
type SelectionKey struct {
	Key string `json:"key"`
	Sub int    `json:"sub"`
}

// Selection is the cross view selection set. Keys absent from the scene are
// kept and stay inert until the key reappears.
type Selection map[SelectionKey]struct{}

// Has reports membership.
func (s Selection) Has(k SelectionKey) bool {
	_, ok := s[k]
	return ok
}

// Set adds or removes k.
func (s Selection) Set(k SelectionKey, state bool) {
	if state {
		s[k] = struct{}{}
	} else {
		delete(s, k)
	}
}

// Sorted returns the selected pairs ordered by key then sub index.
func (s Selection) Sorted() []SelectionKey {
	out := make([]SelectionKey, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Sub < out[j].Sub
	})
	return out
}
