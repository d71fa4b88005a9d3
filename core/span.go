package core

import "fmt"

// Span is a half-open byte range [Start, End) of the script text. Containment
// checks are inclusive on both ends so a cursor placed right after the last
// character of a statement still belongs to it.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether offset lies within the span (inclusive).
func (s Span) Contains(offset int) bool { return s.Start <= offset && offset <= s.End }

// Within reports whether s is fully contained in outer.
func (s Span) Within(outer Span) bool { return outer.Start <= s.Start && s.End <= outer.End }

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(o Span) bool { return s.Start < o.End && o.Start < s.End }

func (s Span) String() string { return fmt.Sprintf("[%d,%d)", s.Start, s.End) }
