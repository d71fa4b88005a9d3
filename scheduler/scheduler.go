// Package scheduler decides when the script runs and folds each execution
// into the session: environment, locations, never-used names, ownership and
// render set.
package scheduler

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hupe1980/livecad/core"
	"github.com/hupe1980/livecad/deps"
	"github.com/hupe1980/livecad/display"
	"github.com/hupe1980/livecad/logging"
)

// Refresher recomputes derived view state (text highlights) after a run.
type Refresher interface {
	Refresh()
}

// Options configures a Scheduler.
type Options struct {
	Logger  logging.Logger
	Trigger TriggerMode
	// Refresher is called after every successful execution.
	Refresher Refresher
	// BeforeExecute runs before the evaluator; a non nil error aborts the run.
	BeforeExecute func(ctx context.Context, target int) error
	// AfterExecute runs after a successful execution.
	AfterExecute func(ctx context.Context, used, reused core.NameSet)
	// ExecuteFailed runs after a failed execution.
	ExecuteFailed func(ctx context.Context, err error)
}

// Scheduler owns the execution target and runs the evaluator.
type Scheduler struct {
	sess    *core.Session
	eval    core.Evaluator
	tracker *deps.Tracker
	rules   *display.Rules
	opts    Options
}

// New creates a scheduler.
func New(sess *core.Session, eval core.Evaluator, tracker *deps.Tracker, rules *display.Rules, optFns ...func(o *Options)) *Scheduler {
	opts := Options{Logger: logging.NoOpLogger{}, Trigger: OnNewline}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scheduler{sess: sess, eval: eval, tracker: tracker, rules: rules, opts: opts}
}

// Trigger returns the current trigger mode.
func (s *Scheduler) Trigger() TriggerMode { return s.opts.Trigger }

// SetTrigger changes the trigger mode.
func (s *Scheduler) SetTrigger(m TriggerMode) { s.opts.Trigger = m }

// Target returns the execution target offset.
func (s *Scheduler) Target() int { return s.sess.Target }

// OnEdit records an edit of the script. An edit before the target shifts it
// by the net length change; any other edit moves the target to the end of
// the inserted text. Depending on the trigger mode the script is executed;
// executed reports whether that happened.
func (s *Scheduler) OnEdit(ctx context.Context, position, removed int, inserted string) (executed bool, err error) {
	s.eval.Change(position, removed, inserted)

	added := len(inserted)
	if s.sess.Target > position {
		s.sess.Target = max(s.sess.Target+added-removed, position)
	} else {
		s.sess.Target = position + added
	}

	if s.opts.Trigger.Fires(inserted) {
		s.sess.AddEvent(core.NewEvent(core.EventTargetChanged, "").WithMetadata("target", s.sess.Target))
		return true, s.Execute(ctx)
	}

	s.sess.Status = core.StatusModified
	s.sess.Views.SetStatus(core.StatusModified, "execution pending")
	s.sess.AddEvent(core.NewEvent(core.EventModified, "").WithMetadata("target", s.sess.Target))
	return false, nil
}

// TargetToCursor moves the execution target to offset.
func (s *Scheduler) TargetToCursor(offset int) {
	s.sess.Target = min(max(offset, 0), s.sess.Document.Len())
	s.sess.AddEvent(core.NewEvent(core.EventTargetChanged, "").WithMetadata("target", s.sess.Target))
}

// Execute runs the script up to the end of the line holding the target.
//
// On success the environment and locations are replaced, the never-used
// set is folded, ownership and the render set are rebuilt. On failure the
// render set is left untouched, the status switches to failed and the error
// is shown and returned.
func (s *Scheduler) Execute(ctx context.Context) error {
	sess := s.sess
	sess.Target = sess.Document.EndOfLine(sess.Target)
	target := sess.Target

	ctx, span := otel.Tracer("livecad/scheduler").Start(ctx, "scheduler.Execute")
	defer span.End()
	span.SetAttributes(attribute.Int("target", target))

	sess.Status = core.StatusRunning
	sess.Views.SetStatus(core.StatusRunning, "")

	start := time.Now()
	if s.opts.BeforeExecute != nil {
		if err := s.opts.BeforeExecute(ctx, target); err != nil {
			s.fail(ctx, err, start)
			span.RecordError(err)
			span.SetStatus(codes.Error, "before execute hook failed")
			return err
		}
	}

	used, reused, err := s.eval.Execute(ctx, target, true)
	if err != nil {
		s.fail(ctx, err, start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "execution failed")
		return err
	}

	sess.Env = s.eval.Environment()
	sess.Locations = s.eval.Locations()
	sess.NeverUsed = core.FoldNeverUsed(sess.NeverUsed, used, reused)
	sess.Ownership = s.tracker.Rebuild(sess.Env, sess.Locations, sess.Ownership)
	s.rules.Rebuild(used)
	if s.opts.Refresher != nil {
		s.opts.Refresher.Refresh()
	}

	sess.Status = core.StatusComputed
	sess.Views.SetStatus(core.StatusComputed, "")
	sess.AddEvent(core.NewEvent(core.EventExecuted, "").
		WithNames(used.Sorted()...).
		WithMetadata("target", target).
		WithMetadata("reused", reused.Sorted()))
	span.SetAttributes(attribute.Int("used", len(used)), attribute.Int("reused", len(reused)))
	if sl, ok := s.opts.Logger.(*logging.StructuredLogger); ok {
		sl.LogExecution(target, len(used), len(reused), time.Since(start), nil)
	} else {
		s.opts.Logger.Info("script executed", "target", target, "used", len(used), "reused", len(reused), "duration", time.Since(start))
	}

	if s.opts.AfterExecute != nil {
		s.opts.AfterExecute(ctx, used, reused)
	}
	return nil
}

func (s *Scheduler) fail(ctx context.Context, err error, start time.Time) {
	sess := s.sess
	sess.Status = core.StatusFailed
	sess.Views.SetStatus(core.StatusFailed, err.Error())
	sess.Views.ShowError(err)

	ev := core.NewEvent(core.EventExecutionFailed, err.Error()).WithMetadata("target", sess.Target)
	if ee, ok := core.AsEvaluationError(err); ok {
		ev = ev.WithSpan(ee.Span)
	}
	sess.AddEvent(ev)
	if sl, ok := s.opts.Logger.(*logging.StructuredLogger); ok {
		sl.LogExecution(sess.Target, 0, 0, time.Since(start), err)
	} else {
		s.opts.Logger.Warn("script execution failed", "target", sess.Target, "error", err, "duration", time.Since(start))
	}

	if s.opts.ExecuteFailed != nil {
		s.opts.ExecuteFailed(ctx, err)
	}
}

// ReexecuteAll resets the evaluator as if the whole text was freshly
// inserted, then executes.
func (s *Scheduler) ReexecuteAll(ctx context.Context) error {
	s.eval.Change(0, 0, "")
	return s.Execute(ctx)
}
