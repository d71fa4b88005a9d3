// Package logging provides a minimal logging interface and adapters for
// livecad.
//
// Every component accepts a Logger through its options and defaults to
// NoOpLogger. The package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping a *slog.Logger
//   - StructuredLogger with component/session context and domain helpers
//     for executions, solves and assistant calls
//   - NoOpLogger for silent operation
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "text", false)
//	eng := engine.New(evaluator, kernel, func(o *engine.Options) {
//	    o.Logger = logger
//	})
package logging
