package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScene_Diff(t *testing.T) {
	shared := &struct{ v int }{1}
	old := Scene{"a": shared, "b": 1, "gone": 2, "slice": []int{1}}
	next := Scene{"a": shared, "b": 3, "new": 4, "slice": []int{1}}

	changed := old.Diff(next)
	assert.Equal(t, []string{"b", "gone", "new", "slice"}, changed.Sorted())
}

type overlay struct{ V any }

func TestScene_DiffUncomparableField(t *testing.T) {
	old := Scene{"p": overlay{V: []int{1}}, "q": overlay{V: 2}}
	next := Scene{"p": overlay{V: []int{1}}, "q": overlay{V: 2}}

	var changed NameSet
	assert.NotPanics(t, func() { changed = old.Diff(next) })
	assert.Equal(t, []string{"p"}, changed.Sorted())
}

func TestSpan(t *testing.T) {
	s := Span{Start: 10, End: 20}
	assert.True(t, s.Contains(10))
	assert.True(t, s.Contains(20))
	assert.False(t, s.Contains(21))
	assert.True(t, Span{12, 18}.Within(s))
	assert.False(t, Span{5, 18}.Within(s))
	assert.True(t, s.Overlaps(Span{19, 30}))
	assert.False(t, s.Overlaps(Span{20, 30}))
	assert.Equal(t, "[10,20)", s.String())
}

func TestBox(t *testing.T) {
	a := Box{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 2, 3}}
	b := Box{Min: [3]float64{-1, 1, 1}, Max: [3]float64{0.5, 4, 2}}
	u := a.Union(b)
	assert.Equal(t, Box{Min: [3]float64{-1, 0, 0}, Max: [3]float64{1, 4, 3}}, u)
	assert.InDelta(t, 1.0, a.Width(), 1e-12)
	g := a.Grow(0.5)
	assert.InDelta(t, -0.5, g.Min[0], 1e-12)
	assert.InDelta(t, 3.5, g.Max[2], 1e-12)
}

func TestErrors(t *testing.T) {
	inner := errors.New("name x is not defined")
	err := error(&EvaluationError{Err: inner, Span: &Span{3, 7}})
	assert.ErrorIs(t, err, inner)
	ee, ok := AsEvaluationError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, ee.Span.Start)
	assert.Contains(t, err.Error(), "[3,7)")

	se := &SolveError{Residual: 0.5, Iterations: 50}
	assert.Contains(t, se.Error(), "50 iterations")
	assert.Equal(t, "fixed-7", LockKey(7))
	assert.Equal(t, "s.visuals", ExtrasKey("s"))
}
