package selection

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/livecad/core"
	"github.com/hupe1980/livecad/internal/testutil"
)

type grouped struct{ parts []*testutil.Visual }

func (g grouped) Group(sub int) any { return g.parts[sub] }

func newManager() (*Manager, *core.Session, *testutil.View) {
	s := testutil.NewSolid(10, testutil.NewVisual(1, "v"))
	sess := testutil.NewSessionBuilder().
		Define("a", testutil.NewVisual(2, "a"), "a = box(1)").
		Define("s", s, "s = solid(a)").
		Define("b", testutil.NewVisual(3, "b"), "b = box(2)").
		Build()
	sess.Scene["a"] = sess.Env["a"]
	sess.Scene["s"] = core.SolidProxy{Name: "s", Solid: s}
	view := &testutil.View{Keys: core.NewNameSet("a", "s")}
	sess.Views = core.Views{view}
	return New(sess, testutil.Kernel{}), sess, view
}

func TestManager_SetAndToggle(t *testing.T) {
	m, sess, view := newManager()

	assert.True(t, m.Toggle("a", 0))
	assert.True(t, sess.Selection.Has(core.SelectionKey{Key: "a"}))
	assert.False(t, m.Toggle("a", 0))
	assert.Empty(t, sess.Selection)

	m.Set("a", 2, true)
	m.Set("a", 2, true)
	assert.Len(t, sess.Selection, 1)

	assert.Equal(t, []testutil.Selected{
		{Key: "a", Sub: 0, State: true},
		{Key: "a", Sub: 0, State: false},
		{Key: "a", Sub: 2, State: true},
		{Key: "a", Sub: 2, State: true},
	}, view.Selections)
	assert.Len(t, sess.EventsOf(core.EventSelectionChanged), 4)
}

func TestManager_InertKeys(t *testing.T) {
	m, sess, view := newManager()
	m.Set("gone", 1, true)
	assert.True(t, sess.Selection.Has(core.SelectionKey{Key: "gone", Sub: 1}))
	assert.Empty(t, view.Selections, "views without the key are not notified")
}

func TestManager_ActiveSolid(t *testing.T) {
	m, sess, _ := newManager()
	m.Set("a", 0, true)
	assert.Nil(t, sess.ActiveSolid)
	m.Set("s", 3, true)
	require.NotNil(t, sess.ActiveSolid)
	assert.Equal(t, core.Identity(10), sess.ActiveSolid.Identity())
}

func TestManager_Highlights(t *testing.T) {
	m, sess, view := newManager()
	sess.Zones = []core.Span{{Start: 0, End: 3}}
	sess.Editors["b"] = struct{}{}

	m.Set("a", 0, true)
	m.Set("a", 1, true)
	m.Set("b", 0, true)

	locA, _ := sess.Locations.Get("a")
	locB, _ := sess.Locations.Get("b")
	h := view.LastHighlights()
	assert.Equal(t, []core.Span{{Start: 0, End: 3}}, h.Zones)
	assert.Equal(t, []core.Span{locA.Span}, h.Selected, "selection is deduplicated and edits take precedence")
	assert.Equal(t, []core.Span{locB.Span}, h.Edited)

	m.DeselectAll()
	assert.Empty(t, sess.Selection)
	assert.Empty(t, view.LastHighlights().Selected)
	assert.Equal(t, []core.Span{locB.Span}, view.LastHighlights().Edited)
}

func TestManager_HighlightsDoNotOverlap(t *testing.T) {
	m, sess, _ := newManager()
	locA, _ := sess.Locations.Get("a")
	locB, _ := sess.Locations.Get("b")
	other := core.Span{Start: 100, End: 104}
	sess.Zones = []core.Span{locA.Span, locB.Span, other}
	sess.Editors["b"] = struct{}{}
	m.Set("a", 0, true)

	h := m.Highlights()
	assert.Equal(t, []core.Span{other}, h.Zones)
	assert.Equal(t, []core.Span{locA.Span}, h.Selected)
	assert.Equal(t, []core.Span{locB.Span}, h.Edited)
}

func TestManager_DeselectAllNotifiesViews(t *testing.T) {
	m, _, view := newManager()
	m.Set("a", 0, true)
	m.Set("s", 1, true)
	view.Selections = nil

	m.DeselectAll()
	assert.Equal(t, []testutil.Selected{{Key: "a", Sub: 0}, {Key: "s", Sub: 1}}, view.Selections)
}

func TestManager_BoundingBox(t *testing.T) {
	m, sess, _ := newManager()
	_, ok := m.BoundingBox()
	assert.False(t, ok)

	far := testutil.NewVisual(5, "far")
	far.Box = core.Box{Min: mgl64.Vec3{4, 4, 4}, Max: mgl64.Vec3{5, 6, 7}}
	sess.Scene["g"] = grouped{parts: []*testutil.Visual{testutil.NewVisual(4, "near"), far}}

	m.Set("a", 0, true)
	m.Set("g", 1, true)
	box, ok := m.BoundingBox()
	require.True(t, ok)
	assert.Equal(t, core.Box{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{5, 6, 7}}, box)
}
