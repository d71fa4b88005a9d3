package core

import "go.starlark.net/syntax"

// Environment maps variable names to their current values. It is produced by
// the evaluator on every execution and shared by reference; the engine only
// writes to it through display.Rules.AddTemporary.
type Environment map[string]any

// Location records where a name is defined in the script.
type Location struct {
	// Span of the defining statement.
	Span Span
	// Stmt is the syntax tree of the defining statement. It may be nil for
	// names the evaluator synthesized without source.
	Stmt syntax.Node
	// Temporary marks unnamed intermediate values (expression statements).
	Temporary bool
}

// Locations is an insertion-ordered name -> Location map. Order is the
// registration order of the evaluator and breaks ties in offset lookups.
type Locations struct {
	names  []string
	byName map[string]Location
}

// NewLocations returns an empty location map.
func NewLocations() *Locations {
	return &Locations{byName: map[string]Location{}}
}

// Set registers or replaces the location of name. A replaced name keeps its
// original registration position.
func (l *Locations) Set(name string, loc Location) {
	if _, ok := l.byName[name]; !ok {
		l.names = append(l.names, name)
	}
	l.byName[name] = loc
}

// Get returns the location of name.
func (l *Locations) Get(name string) (Location, bool) {
	if l == nil {
		return Location{}, false
	}
	loc, ok := l.byName[name]
	return loc, ok
}

// Names returns the registered names in registration order.
func (l *Locations) Names() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Len returns the number of registered names.
func (l *Locations) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// Tightest returns the name whose span contains offset and is the smallest
// among all candidates; ties go to the first registered name.
func (l *Locations) Tightest(offset int) (string, bool) {
	if l == nil {
		return "", false
	}
	best, bestLen := "", -1
	for _, name := range l.names {
		span := l.byName[name].Span
		if !span.Contains(offset) {
			continue
		}
		if bestLen < 0 || span.Len() < bestLen {
			best, bestLen = name, span.Len()
		}
	}
	return best, bestLen >= 0
}
