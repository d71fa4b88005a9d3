// Package engine wires the live CAD components into one session and exposes
// the operations offered to views.
//
// An Engine owns a core.Session and the components writing to it:
//
//   - scheduler: decides when the script runs and folds each run into the session
//   - deps: rebuilds the pose ownership map
//   - display: rebuilds the render set
//   - selection: keeps the selection set and the text highlights
//   - manipulate: one gesture at a time, driven by pointer events
//
// Views register with AddView and implement any subset of the view
// interfaces of package core. Edits, pointer events and commands are applied
// either by calling the Engine methods from a single goroutine or by sending
// Inputs to Run, which serializes them:
//
//	eng := engine.New(interp, kern, func(o *engine.Options) {
//	    o.Config = cfg
//	    o.Logger = cfg.Logger()
//	})
//	eng.AddView(view)
//
//	inputs := make(chan engine.Input)
//	go func() { _ = eng.Run(ctx, inputs) }()
//	inputs <- engine.EditInput{Position: 0, Inserted: "a = box(vec3(1))\n"}
//
// Lifecycle hooks (before_execute, after_execute, execute_failed,
// scene_changed, solve_failed, selection_changed) are registered on the
// HookManager returned by Hooks. A before_execute hook returning an error
// aborts the execution.
//
// Scripts and session snapshots are persisted through script.Store and
// session.Store; both default to in-memory stores. When a model.Model is
// configured, Assist turns a natural language request into statements
// inserted after the target line.
package engine
