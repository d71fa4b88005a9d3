package testutil

import (
	"context"

	"github.com/hupe1980/livecad/core"
)

// Change records one Evaluator.Change call.
type Change struct {
	Position int
	Removed  int
	Inserted string
}

// Result scripts the outcome of one Execute call. Nil Env or Locs keep the
// current ones.
type Result struct {
	Used   core.NameSet
	Reused core.NameSet
	Err    error
	Env    core.Environment
	Locs   *core.Locations
}

// Evaluator is a scripted core.Evaluator.
type Evaluator struct {
	Changes []Change
	Targets []int
	Results []Result
	Env     core.Environment
	Locs    *core.Locations
}

// NewEvaluator returns an evaluator with an empty environment.
func NewEvaluator(results ...Result) *Evaluator {
	return &Evaluator{Env: core.Environment{}, Locs: core.NewLocations(), Results: results}
}

func (e *Evaluator) Change(position, removed int, inserted string) {
	e.Changes = append(e.Changes, Change{position, removed, inserted})
}

// Execute pops the next scripted result. Without results it succeeds with
// empty sets.
func (e *Evaluator) Execute(ctx context.Context, target int, _ bool) (core.NameSet, core.NameSet, error) {
	e.Targets = append(e.Targets, target)
	if err := ctx.Err(); err != nil {
		return nil, nil, &core.EvaluationError{Err: err}
	}
	if len(e.Results) == 0 {
		return core.NewNameSet(), core.NewNameSet(), nil
	}
	r := e.Results[0]
	e.Results = e.Results[1:]
	if r.Err != nil {
		return nil, nil, r.Err
	}
	if r.Env != nil {
		e.Env = r.Env
	}
	if r.Locs != nil {
		e.Locs = r.Locs
	}
	used, reused := r.Used, r.Reused
	if used == nil {
		used = core.NewNameSet()
	}
	if reused == nil {
		reused = core.NewNameSet()
	}
	return used, reused, nil
}

func (e *Evaluator) Environment() core.Environment { return e.Env }
func (e *Evaluator) Locations() *core.Locations    { return e.Locs }
