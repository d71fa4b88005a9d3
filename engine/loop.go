package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/livecad/manipulate"
)

// Input is one event processed by Run.
type Input interface {
	apply(ctx context.Context, e *Engine) error
}

// EditInput is a text edit of the script.
type EditInput struct {
	Position int
	Removed  int
	Inserted string
}

func (in EditInput) apply(ctx context.Context, e *Engine) error {
	return e.Edit(ctx, in.Position, in.Removed, in.Inserted)
}

// PointerInput is a pointer event over a scene view. A press while no
// gesture is active starts one resolved through Picker.
type PointerInput struct {
	Event  manipulate.PointerEvent
	Picker manipulate.Picker
}

func (in PointerInput) apply(_ context.Context, e *Engine) error {
	if !e.Manipulating() {
		if in.Event.Kind != manipulate.Press && in.Event.Kind != manipulate.DoublePress {
			return nil
		}
		if err := e.BeginManipulation(in.Picker); err != nil {
			return err
		}
	}
	e.Pointer(in.Event)
	return nil
}

// CursorInput moves the text cursor.
type CursorInput struct {
	Offset int
}

func (in CursorInput) apply(_ context.Context, e *Engine) error {
	e.CursorAt(in.Offset)
	return nil
}

// ExecuteInput requests an execution. All re-executes from scratch.
type ExecuteInput struct {
	All bool
}

func (in ExecuteInput) apply(ctx context.Context, e *Engine) error {
	if in.All {
		return e.ReexecuteAll(ctx)
	}
	return e.Execute(ctx)
}

// CommandInput runs Fn on the event loop. Done, when set, receives the
// result and should be buffered.
type CommandInput struct {
	Fn   func(ctx context.Context, e *Engine) error
	Done chan<- error
}

func (in CommandInput) apply(ctx context.Context, e *Engine) error {
	err := in.Fn(ctx, e)
	if in.Done != nil {
		in.Done <- err
	}
	return err
}

// Run processes inputs one at a time until the channel is closed or ctx is
// done. Failures are reported through the views by the components; Run only
// logs them and keeps going.
func (e *Engine) Run(ctx context.Context, inputs <-chan Input) error {
	e.logger.Debug("event loop started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok := <-inputs:
			if !ok {
				e.logger.Debug("event loop stopped")
				return nil
			}
			if err := in.apply(ctx, e); err != nil {
				e.logger.Debug("input failed", "input", fmt.Sprintf("%T", in), "error", err)
			}
		}
	}
}
