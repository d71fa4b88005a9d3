package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/livecad/core"
)

// HookType names a lifecycle point of the engine where hooks run.
type HookType string

const (
	// HookBeforeExecute runs before every script execution. An error aborts
	// the execution, which is then reported as failed.
	HookBeforeExecute HookType = "before_execute"
	// HookAfterExecute runs after a successful execution.
	HookAfterExecute HookType = "after_execute"
	// HookExecuteFailed runs after a failed execution.
	HookExecuteFailed HookType = "execute_failed"
	// HookSceneChanged runs after the render set was rebuilt.
	HookSceneChanged HookType = "scene_changed"
	// HookSolveFailed runs when the release solve of a manipulation does not
	// converge.
	HookSolveFailed HookType = "solve_failed"
	// HookSelectionChanged runs after every selection mutation.
	HookSelectionChanged HookType = "selection_changed"
)

// HookContext carries the information available to a hook.
type HookContext struct {
	Type    HookType
	Session *core.Session
	// Target is the execution target, for execution hooks.
	Target int
	// Names are the names concerned: used names after an execution, the
	// changed keys of the scene, the selected key.
	Names core.NameSet
	// Err is the failure, for failure hooks.
	Err error
	// Metadata provides extensible storage for custom hook data.
	Metadata map[string]any
}

// Hook is a lifecycle callback.
type Hook interface {
	Type() HookType
	Execute(ctx context.Context, hc *HookContext) error
}

// FunctionHook wraps a function as a Hook.
//
// Example:
//
//	h := NewFunctionHook(HookAfterExecute, func(ctx context.Context, hc *HookContext) error {
//	    log.Printf("executed: %v", hc.Names.Sorted())
//	    return nil
//	})
type FunctionHook struct {
	hookType HookType
	fn       func(ctx context.Context, hc *HookContext) error
}

// NewFunctionHook creates a function based hook.
func NewFunctionHook(hookType HookType, fn func(ctx context.Context, hc *HookContext) error) *FunctionHook {
	return &FunctionHook{hookType: hookType, fn: fn}
}

// Type returns the hook type this function handles.
func (h *FunctionHook) Type() HookType { return h.hookType }

// Execute calls the wrapped function.
func (h *FunctionHook) Execute(ctx context.Context, hc *HookContext) error { return h.fn(ctx, hc) }

// HookManager runs hooks in registration order. Registration is not safe
// for concurrent use; hooks run on the engine goroutine.
type HookManager struct {
	hooks map[HookType][]Hook
}

// NewHookManager creates an empty hook manager.
func NewHookManager() *HookManager {
	return &HookManager{hooks: make(map[HookType][]Hook)}
}

// Register adds a hook.
func (m *HookManager) Register(h Hook) {
	m.hooks[h.Type()] = append(m.hooks[h.Type()], h)
}

// Run executes the hooks of hc.Type. The first error stops the run and is
// returned.
func (m *HookManager) Run(ctx context.Context, hc *HookContext) error {
	for _, h := range m.hooks[hc.Type] {
		if err := h.Execute(ctx, hc); err != nil {
			return fmt.Errorf("%s hook: %w", hc.Type, err)
		}
	}
	return nil
}

// Len returns the number of hooks registered for t.
func (m *HookManager) Len(t HookType) int { return len(m.hooks[t]) }

// LoggingHook forwards lifecycle notifications to a log function.
type LoggingHook struct {
	hookType HookType
	logf     func(message string)
}

// NewLoggingHook creates a logging hook for t.
func NewLoggingHook(t HookType, logf func(message string)) *LoggingHook {
	return &LoggingHook{hookType: t, logf: logf}
}

// Type returns the hook type this logger handles.
func (h *LoggingHook) Type() HookType { return h.hookType }

// Execute logs the hook context.
func (h *LoggingHook) Execute(_ context.Context, hc *HookContext) error {
	if h.logf == nil {
		return nil
	}
	msg := fmt.Sprintf("[%s] target=%d names=%v", h.hookType, hc.Target, hc.Names.Sorted())
	if hc.Err != nil {
		msg += fmt.Sprintf(" error=%v", hc.Err)
	}
	h.logf(msg)
	return nil
}
