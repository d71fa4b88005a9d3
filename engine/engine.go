package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/livecad/assist"
	"github.com/hupe1980/livecad/core"
	"github.com/hupe1980/livecad/deps"
	"github.com/hupe1980/livecad/display"
	"github.com/hupe1980/livecad/logging"
	"github.com/hupe1980/livecad/manipulate"
	"github.com/hupe1980/livecad/model"
	"github.com/hupe1980/livecad/scheduler"
	"github.com/hupe1980/livecad/script"
	"github.com/hupe1980/livecad/selection"
	"github.com/hupe1980/livecad/session"
)

// ErrNoAssistant is returned by Assist when no model is configured.
var ErrNoAssistant = errors.New("no assistant model configured")

// Finisher is implemented by editor overlays that need to commit their
// value when the edit ends.
type Finisher interface {
	Finish()
}

// Options configures an Engine.
type Options struct {
	Config Config
	Logger logging.Logger
	Hooks  *HookManager
	// Scripts persists script sources for Open and Save.
	Scripts script.Store
	// Snapshots persists pinned names, trigger mode, target and poses.
	Snapshots session.Store
	// Model enables Assist when set.
	Model model.Model
	// Text is the initial script.
	Text string
}

// Engine wires the session components together and exposes the user facing
// operations. It is not safe for concurrent use; Run serializes inputs
// coming from several goroutines.
type Engine struct {
	sess      *core.Session
	eval      core.Evaluator
	kernel    core.Kernel
	opts      Options
	logger    logging.Logger
	tracker   *deps.Tracker
	rules     *display.Rules
	sched     *scheduler.Scheduler
	selection *selection.Manager
	assistant *assist.Generator
	gesture   *manipulate.Gesture
	script    string
}

// New creates an engine over an evaluator and a geometry kernel.
func New(eval core.Evaluator, kernel core.Kernel, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Hooks == nil {
		opts.Hooks = NewHookManager()
	}
	if opts.Scripts == nil {
		opts.Scripts = script.NewInMemoryStore()
	}
	if opts.Snapshots == nil {
		opts.Snapshots = session.NewInMemoryStore()
	}

	e := &Engine{
		sess:   core.NewSession(opts.Text),
		eval:   eval,
		kernel: kernel,
		opts:   opts,
	}
	e.logger = e.component("engine")
	cfg := opts.Config

	e.tracker = deps.New(func(o *deps.Options) {
		o.Logger = e.component("deps")
	})
	e.rules = display.New(e.sess, kernel, func(o *display.Options) {
		o.Logger = e.component("display")
		o.LockMargin = cfg.LockMargin
		o.Changed = func(changed core.NameSet) {
			_ = e.runHook(context.Background(), &HookContext{Type: HookSceneChanged, Names: changed})
		}
	})
	e.selection = selection.New(e.sess, kernel, func(o *selection.Options) {
		o.Logger = e.component("selection")
		o.Changed = func(key core.SelectionKey, state bool) {
			_ = e.runHook(context.Background(), &HookContext{
				Type:     HookSelectionChanged,
				Names:    core.NewNameSet(key.Key),
				Metadata: map[string]any{"sub": key.Sub, "state": state},
			})
		}
	})
	e.sched = scheduler.New(e.sess, eval, e.tracker, e.rules, func(o *scheduler.Options) {
		o.Logger = e.component("scheduler")
		o.Trigger = cfg.Trigger
		o.Refresher = e.selection
		o.BeforeExecute = func(ctx context.Context, target int) error {
			return e.runHook(ctx, &HookContext{Type: HookBeforeExecute, Target: target})
		}
		o.AfterExecute = func(ctx context.Context, used, _ core.NameSet) {
			_ = e.runHook(ctx, &HookContext{Type: HookAfterExecute, Target: e.sess.Target, Names: used})
		}
		o.ExecuteFailed = func(ctx context.Context, err error) {
			_ = e.runHook(ctx, &HookContext{Type: HookExecuteFailed, Target: e.sess.Target, Err: err})
		}
	})
	if opts.Model != nil {
		e.assistant = assist.New(opts.Model, func(o *assist.Options) {
			o.Logger = e.component("assist")
			o.MaxCalls = cfg.AssistMaxCalls
		})
	}

	if opts.Text != "" {
		eval.Change(0, 0, opts.Text)
	}
	e.logger.Debug("engine created", "session", e.sess.ID, "trigger", cfg.Trigger)
	return e
}

// component returns the engine logger scoped to a component. Only structured
// loggers carry the scope.
func (e *Engine) component(name string) logging.Logger {
	if sl, ok := e.opts.Logger.(*logging.StructuredLogger); ok {
		return sl.WithComponent(name).WithSession(e.sess.ID)
	}
	return e.opts.Logger
}

func (e *Engine) runHook(ctx context.Context, hc *HookContext) error {
	hc.Session = e.sess
	if err := e.opts.Hooks.Run(ctx, hc); err != nil {
		e.logger.Warn("hook failed", "hook", string(hc.Type), "error", err)
		return err
	}
	return nil
}

// Session returns the session shared by the components.
func (e *Engine) Session() *core.Session { return e.sess }

// Hooks returns the hook manager.
func (e *Engine) Hooks() *HookManager { return e.opts.Hooks }

// Text returns the script text.
func (e *Engine) Text() string { return e.sess.Document.Text() }

// Script returns the name of the script last opened or saved.
func (e *Engine) Script() string { return e.script }

// Target returns the execution target offset.
func (e *Engine) Target() int { return e.sched.Target() }

// Trigger returns the trigger mode.
func (e *Engine) Trigger() scheduler.TriggerMode { return e.sched.Trigger() }

// SetTrigger changes the trigger mode.
func (e *Engine) SetTrigger(m scheduler.TriggerMode) { e.sched.SetTrigger(m) }

// History returns the session events.
func (e *Engine) History() []core.Event { return e.sess.Events() }

// AddView registers a view. It receives every later notification.
func (e *Engine) AddView(v any) {
	e.sess.Views = append(e.sess.Views, v)
}

// Edit replaces removed bytes at position with inserted and lets the
// scheduler decide whether to execute.
func (e *Engine) Edit(ctx context.Context, position, removed int, inserted string) error {
	doc := e.sess.Document
	if position < 0 || removed < 0 || position+removed > doc.Len() {
		return fmt.Errorf("edit [%d,%d) out of range [0,%d]", position, position+removed, doc.Len())
	}
	doc.Apply(position, removed, inserted)
	_, err := e.sched.OnEdit(ctx, position, removed, inserted)
	return err
}

// Execute runs the script up to the end of the target line.
func (e *Engine) Execute(ctx context.Context) error { return e.sched.Execute(ctx) }

// ReexecuteAll runs the whole script from scratch up to the target.
func (e *Engine) ReexecuteAll(ctx context.Context) error { return e.sched.ReexecuteAll(ctx) }

// TargetToCursor moves the execution target to offset.
func (e *Engine) TargetToCursor(offset int) { e.sched.TargetToCursor(offset) }

// CursorAt records the text cursor: temporaries defined inside the tightest
// definition around offset are displayed.
func (e *Engine) CursorAt(offset int) {
	e.rules.ShowTemporaries(offset)
	e.selection.Refresh()
}

// ObjectAtOffset returns the name defined by the tightest span around offset.
func (e *Engine) ObjectAtOffset(offset int) (string, bool) { return e.rules.ObjectAtOffset(offset) }

// AddTemporary displays a scratch value under a fresh temp name.
func (e *Engine) AddTemporary(v any) string { return e.rules.AddTemporary(v) }

// Pin forces the display of name.
func (e *Engine) Pin(name string) error {
	if _, ok := e.sess.Env[name]; !ok {
		return fmt.Errorf("pin %q: %w", name, core.ErrUnknownName)
	}
	e.sess.Pinned.Add(name)
	e.rules.Rebuild(core.NewNameSet(name))
	return nil
}

// Unpin reverts name to the default display rules.
func (e *Engine) Unpin(name string) {
	if !e.sess.Pinned.Has(name) {
		return
	}
	e.sess.Pinned.Remove(name)
	e.rules.Rebuild(core.NewNameSet(name))
}

// Select sets the selection state of (key, sub).
func (e *Engine) Select(key string, sub int, state bool) { e.selection.Set(key, sub, state) }

// ToggleSelection flips the selection state of (key, sub).
func (e *Engine) ToggleSelection(key string, sub int) bool { return e.selection.Toggle(key, sub) }

// DeselectAll clears the selection.
func (e *Engine) DeselectAll() { e.selection.DeselectAll() }

// SelectionBox returns the bounding box of the selection.
func (e *Engine) SelectionBox() (core.Box, bool) { return e.selection.BoundingBox() }

// BeginManipulation starts a gesture resolved through picker. The gesture
// then consumes the pointer events passed to Pointer until it is done.
func (e *Engine) BeginManipulation(picker manipulate.Picker) error {
	if e.gesture != nil {
		return core.ErrGestureActive
	}
	cfg := e.opts.Config
	e.gesture = manipulate.New(e.sess, e.rules, picker, func(o *manipulate.Options) {
		o.Logger = e.component("manipulate")
		o.DragPrecision = cfg.DragPrecision
		o.DragMaxIterations = cfg.DragMaxIterations
		o.CommitPrecision = cfg.CommitPrecision
		o.CommitMaxIterations = cfg.CommitMaxIterations
		o.RedrawRate = cfg.RedrawRate
		o.SolveFailed = func(err error) {
			_ = e.runHook(context.Background(), &HookContext{Type: HookSolveFailed, Err: err})
		}
	})
	return nil
}

// Manipulating reports whether a gesture owns the pointer stream.
func (e *Engine) Manipulating() bool { return e.gesture != nil }

// Pointer feeds ev to the active gesture. Without a gesture it returns Done.
func (e *Engine) Pointer(ev manipulate.PointerEvent) manipulate.Result {
	if e.gesture == nil {
		return manipulate.Done
	}
	res := e.gesture.Step(ev)
	if res == manipulate.Done {
		if err := e.gesture.Err(); err != nil {
			e.logger.Debug("manipulation not started", "error", err)
		}
		e.gesture = nil
	}
	return res
}

// StartEdit shows overlay in place of name until FinishEdit.
func (e *Engine) StartEdit(name string, overlay any) {
	e.sess.Editors[name] = overlay
	e.rules.Rebuild(core.NewNameSet(name))
	e.selection.Refresh()
}

// FinishEdit ends the edit of name, finishing its overlay.
func (e *Engine) FinishEdit(name string) error {
	overlay, ok := e.sess.Editors[name]
	if !ok {
		return fmt.Errorf("finish edit %q: %w", name, core.ErrUnknownName)
	}
	if f, ok := overlay.(Finisher); ok {
		f.Finish()
	}
	delete(e.sess.Editors, name)
	e.rules.Rebuild(core.NewNameSet(name))
	e.selection.Refresh()
	return nil
}

// InsertStatement inserts text on a new line after the target line and
// moves the target to its end.
func (e *Engine) InsertStatement(ctx context.Context, text string) error {
	pos := e.sess.Document.EndOfLine(e.sess.Target)
	if pos > 0 {
		text = "\n" + text
	}
	return e.insert(ctx, pos, text)
}

// InsertExpression inserts text at the target. It starts a new line unless
// the preceding text ends with an operator or a separator.
func (e *Engine) InsertExpression(ctx context.Context, text string) error {
	doc := e.sess.Document
	pos := min(e.sess.Target, doc.Len())
	prev := strings.TrimRight(doc.Text()[:pos], " \t\r")
	if prev != "" && !strings.ContainsAny(prev[len(prev)-1:], ",\n+-*/=") {
		text = "\n" + text
	}
	return e.insert(ctx, pos, text)
}

func (e *Engine) insert(ctx context.Context, pos int, text string) error {
	e.sess.Document.Apply(pos, 0, text)
	executed, err := e.sched.OnEdit(ctx, pos, 0, text)
	if executed || e.sched.Trigger() == scheduler.Manual {
		return err
	}
	return e.sched.Execute(ctx)
}

// Open replaces the script with the stored script name. A snapshot saved
// with the script is restored, otherwise the script runs to its end unless
// the trigger mode is manual.
func (e *Engine) Open(ctx context.Context, name string) error {
	if sl, ok := e.logger.(*logging.StructuredLogger); ok {
		defer sl.WithContext("script", name).StartTimer("open")()
	}
	text, err := e.opts.Scripts.Load(name)
	if err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}
	snap, err := e.opts.Snapshots.Get(name)
	found := err == nil
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("open %q: %w", name, err)
	}

	doc := e.sess.Document
	old := doc.Len()
	doc.Apply(0, old, text)
	e.eval.Change(0, old, text)
	e.sess.Pinned = core.NewNameSet()
	e.script = name
	e.sched.TargetToCursor(len(text))
	e.logger.Info("script opened", "script", name, "bytes", len(text), "snapshot", found)

	if found {
		return e.Restore(ctx, snap)
	}
	if e.sched.Trigger() == scheduler.Manual {
		return nil
	}
	return e.sched.Execute(ctx)
}

// Save stores the script under name along with a snapshot of the session.
func (e *Engine) Save(name string, optFns ...func(o *script.SaveOptions)) error {
	if err := e.opts.Scripts.Save(name, e.Text(), optFns...); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	e.script = name
	if err := e.opts.Snapshots.Save(e.Snapshot()); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	e.logger.Info("script saved", "script", name)
	return nil
}

// Snapshot captures the restorable state of the session.
func (e *Engine) Snapshot() session.Snapshot {
	poses := make(map[string]core.Pose)
	for _, name := range e.sess.Ownership.SolidNames() {
		if s, ok := e.sess.Ownership.SolidNamed(name); ok {
			poses[name] = s.Pose()
		}
	}
	return session.Snapshot{
		Script:  e.script,
		Pinned:  e.sess.Pinned.Sorted(),
		Trigger: e.sched.Trigger().String(),
		Target:  e.sess.Target,
		Poses:   poses,
	}
}

// Restore applies snap: trigger mode, pinned names and target, then executes
// and moves the named solids to their saved poses.
func (e *Engine) Restore(ctx context.Context, snap session.Snapshot) error {
	mode, err := scheduler.ParseTriggerMode(snap.Trigger)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	e.sched.SetTrigger(mode)
	e.sess.Pinned = core.NewNameSet(snap.Pinned...)
	e.sched.TargetToCursor(snap.Target)
	if err := e.sched.Execute(ctx); err != nil {
		return err
	}

	moved := core.NewNameSet()
	for name, pose := range snap.Poses {
		if s, ok := e.sess.Ownership.SolidNamed(name); ok {
			s.SetPose(pose)
			moved.Add(name)
		}
	}
	if len(moved) > 0 {
		e.rules.Rebuild(moved)
		e.sess.Views.ApplyPoses()
	}
	return nil
}

// Assist asks the configured model for statements fulfilling request and
// inserts them after the target line. Failures are shown to info views and
// returned.
func (e *Engine) Assist(ctx context.Context, request string) (string, error) {
	if e.assistant == nil {
		return "", ErrNoAssistant
	}
	names := make([]string, 0, len(e.sess.Env))
	for name := range e.sess.Env {
		names = append(names, name)
	}
	sort.Strings(names)

	start := time.Now()
	code, err := e.assistant.Suggest(ctx, request, names, e.Text())
	if sl, ok := e.logger.(*logging.StructuredLogger); ok {
		sl.LogAssistCall(e.opts.Model.Info().Name, time.Since(start), err)
	}
	if err != nil {
		e.sess.Views.Info(fmt.Sprintf("assistant: %v", err))
		e.sess.AddEvent(core.NewEvent(core.EventAssist, err.Error()))
		return "", err
	}
	e.sess.AddEvent(core.NewEvent(core.EventAssist, request).WithMetadata("code", code))
	return code, e.InsertStatement(ctx, code)
}
