package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/livecad/core"
	"github.com/hupe1980/livecad/internal/testutil"
	"github.com/hupe1980/livecad/interpreter"
	"github.com/hupe1980/livecad/kernel"
	"github.com/hupe1980/livecad/manipulate"
	"github.com/hupe1980/livecad/model"
	"github.com/hupe1980/livecad/scheduler"
	"github.com/hupe1980/livecad/script"
	"github.com/hupe1980/livecad/session"
)

// newLive creates an engine over the Starlark interpreter and the kernel.
func newLive(t *testing.T, optFns ...func(o *Options)) (*Engine, *testutil.View) {
	t.Helper()
	k := kernel.New()
	interp := interpreter.New(func(o *interpreter.Options) {
		o.Predeclared = k.Builtins()
	})
	e := New(interp, k, optFns...)
	view := &testutil.View{}
	e.AddView(view)
	return e, view
}

func appendText(t *testing.T, e *Engine, text string) error {
	t.Helper()
	return e.Edit(context.Background(), len(e.Text()), 0, text)
}

func TestEngine_EditExecutesOnNewline(t *testing.T) {
	e, view := newLive(t)

	require.NoError(t, appendText(t, e, "a = box(2)\n"))
	assert.Equal(t, core.StatusComputed, view.LastStatus())
	assert.Contains(t, e.Session().Scene, "a")

	require.NoError(t, appendText(t, e, "b = translate(a, X)\n"))
	assert.Equal(t, []string{"b"}, e.Session().Scene.Keys(), "a is reused and hidden")
	assert.Equal(t, len(e.Text()), e.Target())
	assert.Len(t, e.Session().EventsOf(core.EventExecuted), 2)
}

func TestEngine_ManualTrigger(t *testing.T) {
	e, view := newLive(t, func(o *Options) {
		o.Config.Trigger = scheduler.Manual
	})

	require.NoError(t, appendText(t, e, "a = box(2)\n"))
	assert.Empty(t, e.Session().Scene)
	assert.Equal(t, core.StatusModified, view.LastStatus())

	require.NoError(t, e.Execute(context.Background()))
	assert.Contains(t, e.Session().Scene, "a")
}

func TestEngine_EditOutOfRange(t *testing.T) {
	e, _ := newLive(t)
	assert.Error(t, e.Edit(context.Background(), 5, 0, "x"))
	assert.Error(t, e.Edit(context.Background(), 0, 1, ""))
}

func TestEngine_FailureKeepsLastGoodScene(t *testing.T) {
	e, view := newLive(t)
	require.NoError(t, appendText(t, e, "a = box(2)\n"))

	err := appendText(t, e, "b = nope\n")
	require.Error(t, err)
	_, ok := core.AsEvaluationError(err)
	assert.True(t, ok)
	assert.Contains(t, e.Session().Scene, "a")
	assert.Equal(t, core.StatusFailed, view.LastStatus())
	assert.Len(t, view.Errors, 1)
}

func TestEngine_Pin(t *testing.T) {
	e, _ := newLive(t)
	require.NoError(t, appendText(t, e, "a = box(2)\nb = translate(a, X)\n"))
	assert.NotContains(t, e.Session().Scene, "a")

	assert.ErrorIs(t, e.Pin("nope"), core.ErrUnknownName)

	require.NoError(t, e.Pin("a"))
	assert.Contains(t, e.Session().Scene, "a")

	e.Unpin("a")
	assert.NotContains(t, e.Session().Scene, "a")
}

func TestEngine_InsertStatement(t *testing.T) {
	e, _ := newLive(t, func(o *Options) {
		o.Text = "a = box(2)"
	})
	require.NoError(t, e.Execute(context.Background()))

	require.NoError(t, e.InsertStatement(context.Background(), "b = translate(a, X)"))
	assert.Equal(t, "a = box(2)\nb = translate(a, X)", e.Text())
	assert.Equal(t, len(e.Text()), e.Target())
	assert.Contains(t, e.Session().Scene, "b")
}

func TestEngine_InsertStatementIntoEmptyScript(t *testing.T) {
	e, _ := newLive(t)

	require.NoError(t, e.InsertStatement(context.Background(), "a = box(1)"))
	assert.Equal(t, "a = box(1)", e.Text())
	assert.Contains(t, e.Session().Scene, "a", "executed although no newline was inserted")
}

func TestEngine_InsertExpression(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		insert string
		want   string
	}{
		{name: "after operator", text: "x = 1 +", insert: "2", want: "x = 1 +2"},
		{name: "after assignment", text: "x = ", insert: "vec3(1)", want: "x = vec3(1)"},
		{name: "after comma", text: "f(a,", insert: "b)", want: "f(a,b)"},
		{name: "after statement", text: "x = 1", insert: "y = 2", want: "x = 1\ny = 2"},
		{name: "empty script", text: "", insert: "y = 2", want: "y = 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newLive(t, func(o *Options) {
				o.Text = tt.text
				o.Config.Trigger = scheduler.Manual
			})
			e.TargetToCursor(len(tt.text))

			require.NoError(t, e.InsertExpression(context.Background(), tt.insert))
			assert.Equal(t, tt.want, e.Text())
			assert.Equal(t, len(tt.want), e.Target())
		})
	}
}

func TestEngine_CursorShowsTemporaries(t *testing.T) {
	e, view := newLive(t)
	require.NoError(t, appendText(t, e, "a = translate(box(1), X)\nbox(3)\nb = 1\n"))
	assert.NotContains(t, e.Session().Scene, "_2")

	e.CursorAt(27)
	assert.Contains(t, e.Session().Scene, "_2")
	assert.Equal(t, []core.Span{{Start: 25, End: 31}}, view.LastHighlights().Zones)

	e.CursorAt(33)
	assert.NotContains(t, e.Session().Scene, "_2")
}

func TestEngine_Hooks(t *testing.T) {
	e, _ := newLive(t)

	var after []core.NameSet
	scenes := 0
	e.Hooks().Register(NewFunctionHook(HookAfterExecute, func(_ context.Context, hc *HookContext) error {
		after = append(after, hc.Names)
		return nil
	}))
	e.Hooks().Register(NewFunctionHook(HookSceneChanged, func(_ context.Context, hc *HookContext) error {
		scenes++
		return nil
	}))

	require.NoError(t, appendText(t, e, "a = box(2)\n"))
	require.Len(t, after, 1)
	assert.True(t, after[0].Has("a"))
	assert.Equal(t, 1, scenes)

	veto := errors.New("read only")
	var failed error
	e.Hooks().Register(NewFunctionHook(HookBeforeExecute, func(context.Context, *HookContext) error { return veto }))
	e.Hooks().Register(NewFunctionHook(HookExecuteFailed, func(_ context.Context, hc *HookContext) error {
		failed = hc.Err
		return nil
	}))

	err := appendText(t, e, "b = box(1)\n")
	assert.ErrorIs(t, err, veto)
	assert.ErrorIs(t, failed, veto)
	assert.Len(t, after, 1)
	assert.NotContains(t, e.Session().Scene, "b")
}

func TestEngine_StartFinishEdit(t *testing.T) {
	e, view := newLive(t)
	require.NoError(t, appendText(t, e, "a = box(2)\n"))

	overlay := &finisher{}
	e.StartEdit("a", overlay)
	assert.Same(t, overlay, e.Session().Scene["a"])
	assert.Equal(t, []core.Span{{Start: 0, End: 10}}, view.LastHighlights().Edited)

	require.NoError(t, e.FinishEdit("a"))
	assert.True(t, overlay.finished)
	assert.IsType(t, &kernel.Mesh{}, e.Session().Scene["a"])
	assert.Empty(t, view.LastHighlights().Edited)

	assert.ErrorIs(t, e.FinishEdit("a"), core.ErrUnknownName)
}

type finisher struct{ finished bool }

func (f *finisher) Finish() { f.finished = true }

func TestEngine_SaveAndOpen(t *testing.T) {
	scripts := script.NewInMemoryStore()
	snapshots := session.NewInMemoryStore()
	stores := func(o *Options) {
		o.Scripts = scripts
		o.Snapshots = snapshots
	}

	e, _ := newLive(t, stores)
	require.NoError(t, appendText(t, e, "s = solid(box(1))\nv = s.visuals\n"))
	require.NoError(t, e.Pin("s"))
	s, ok := e.Session().Ownership.SolidNamed("s")
	require.True(t, ok)
	s.SetPose(core.Pose{Position: mgl64.Vec3{1, 2, 3}, Orientation: mgl64.QuatIdent()})
	e.SetTrigger(scheduler.Continuous)

	require.NoError(t, e.Save("part.star"))
	assert.Equal(t, "part.star", e.Script())
	assert.ErrorIs(t, e.Save("part.stl"), script.ErrUnsupportedExtension)

	other, view := newLive(t, stores)
	require.NoError(t, other.Open(context.Background(), "part.star"))
	assert.Equal(t, e.Text(), other.Text())
	assert.Equal(t, scheduler.Continuous, other.Trigger())
	assert.True(t, other.Session().Pinned.Has("s"))
	restored, ok := other.Session().Ownership.SolidNamed("s")
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, restored.Pose().Position)
	assert.Positive(t, view.PoseCount)

	assert.ErrorIs(t, other.Open(context.Background(), "missing.star"), script.ErrNotFound)
}

func TestEngine_OpenWithoutSnapshot(t *testing.T) {
	scripts := script.NewInMemoryStore()
	require.NoError(t, scripts.Save("a.star", "a = box(1)\n"))

	e, _ := newLive(t, func(o *Options) {
		o.Scripts = scripts
		o.Text = "old = 1\n"
	})
	require.NoError(t, e.Open(context.Background(), "a.star"))
	assert.Equal(t, "a = box(1)\n", e.Text())
	assert.Contains(t, e.Session().Scene, "a")
	assert.NotContains(t, e.Session().Env, "old")
}

func TestEngine_Assist(t *testing.T) {
	m := model.NewMockModel("mock")
	m.AddResponse("Existing variables: a\nRequest: move a along x", "```python\nb = translate(a, X)\n```")

	e, view := newLive(t, func(o *Options) {
		o.Model = m
		o.Text = "a = box(2)"
		o.Config.AssistMaxCalls = 1
	})
	require.NoError(t, e.Execute(context.Background()))

	code, err := e.Assist(context.Background(), "move a along x")
	require.NoError(t, err)
	assert.Equal(t, "b = translate(a, X)", code)
	assert.Equal(t, "a = box(2)\nb = translate(a, X)", e.Text())
	assert.Contains(t, e.Session().Scene, "b")

	_, err = e.Assist(context.Background(), "again")
	assert.Error(t, err)
	assert.NotEmpty(t, view.Infos)
	assert.Len(t, e.Session().EventsOf(core.EventAssist), 2)
}

func TestEngine_AssistWithoutModel(t *testing.T) {
	e, _ := newLive(t)
	_, err := e.Assist(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoAssistant)
}

// fakeScene builds an engine over scripted fakes holding one solid s in a
// kinematic k.
func fakeScene(t *testing.T) (*Engine, *testutil.Solid, *testutil.Kinematic, *testutil.View) {
	t.Helper()
	v := testutil.NewVisual(1, "body")
	s := testutil.NewSolid(10, v)
	kin := testutil.NewKinematic(20, s)
	b := testutil.NewSessionBuilder().
		Define("v", v, "v = box(1)").
		Define("s", s, "s = solid(v)").
		Define("k", kin, "k = kinematic([s])")
	eval := testutil.NewEvaluator(testutil.Result{
		Env:    b.Environment(),
		Locs:   b.Locations(),
		Used:   core.NewNameSet("v", "s", "k"),
		Reused: core.NewNameSet("v"),
	})

	e := New(eval, testutil.Kernel{})
	view := &testutil.View{}
	e.AddView(view)
	require.NoError(t, e.Execute(context.Background()))
	require.Same(t, kin, e.Session().ActiveKinematic)
	return e, s, kin, view
}

func TestEngine_Manipulation(t *testing.T) {
	e, s, kin, _ := fakeScene(t)
	picker := &testutil.Picker{Key: "s", Point: mgl64.Vec3{0.5, 0.5, 0}}

	require.NoError(t, e.BeginManipulation(picker))
	assert.ErrorIs(t, e.BeginManipulation(picker), core.ErrGestureActive)

	assert.Equal(t, manipulate.Continue, e.Pointer(manipulate.PointerEvent{Kind: manipulate.Press}))
	assert.Equal(t, manipulate.Continue, e.Pointer(manipulate.PointerEvent{Kind: manipulate.Move, X: 4, Y: 5}))
	assert.Equal(t, manipulate.Done, e.Pointer(manipulate.PointerEvent{Kind: manipulate.Release}))
	assert.False(t, e.Manipulating())

	assert.True(t, s.Pose().Position.ApproxEqualThreshold(mgl64.Vec3{3.5, 4.5, 0}, 1e-9), "got %v", s.Pose().Position)
	assert.Equal(t, 1, kin.CallsWith(DefaultConfig.CommitPrecision))
	assert.Equal(t, manipulate.Done, e.Pointer(manipulate.PointerEvent{Kind: manipulate.Move}))
}

func TestEngine_ManipulationSolveFailedHook(t *testing.T) {
	e, _, kin, view := fakeScene(t)
	kin.Err = &core.SolveError{Residual: 1, Iterations: 1000}

	var failed error
	e.Hooks().Register(NewFunctionHook(HookSolveFailed, func(_ context.Context, hc *HookContext) error {
		failed = hc.Err
		return nil
	}))

	require.NoError(t, e.BeginManipulation(&testutil.Picker{Key: "s"}))
	e.Pointer(manipulate.PointerEvent{Kind: manipulate.Press})
	e.Pointer(manipulate.PointerEvent{Kind: manipulate.Move, X: 1})
	e.Pointer(manipulate.PointerEvent{Kind: manipulate.Release})

	var se *core.SolveError
	assert.ErrorAs(t, failed, &se)
	assert.Contains(t, view.Infos, kin.Err.Error())
}

func TestEngine_SelectionHook(t *testing.T) {
	e, s, _, view := fakeScene(t)

	var keys []string
	e.Hooks().Register(NewFunctionHook(HookSelectionChanged, func(_ context.Context, hc *HookContext) error {
		keys = append(keys, hc.Names.Sorted()...)
		return nil
	}))

	assert.True(t, e.ToggleSelection("s", 0))
	assert.Equal(t, []string{"s"}, keys)
	assert.Same(t, s, e.Session().ActiveSolid)
	_, ok := e.SelectionBox()
	assert.True(t, ok)

	e.DeselectAll()
	assert.Empty(t, e.Session().Selection)
	assert.Contains(t, view.Selections, testutil.Selected{Key: "s", Sub: 0, State: false})
}
