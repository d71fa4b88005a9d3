package core

import "context"

// Evaluator parses and runs the script incrementally.
//
// Change records an edit of the text. Execute runs the script up to target
// and reports the names introduced by this run (used) and the previously
// introduced names read again (reused). On failure it returns a
// *EvaluationError and keeps the previous environment.
type Evaluator interface {
	Change(position, removed int, inserted string)
	Execute(ctx context.Context, target int, autobackup bool) (used, reused NameSet, err error)
	// Environment returns the live environment of the last successful run.
	Environment() Environment
	// Locations returns the definition sites of the last successful run.
	Locations() *Locations
}
