package interpreter

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/hupe1980/livecad/core"
	"github.com/hupe1980/livecad/deps"
	"github.com/hupe1980/livecad/logging"
)

// Options configures an Interpreter.
type Options struct {
	// Logger receives debug traces of the execution.
	Logger logging.Logger
	// Predeclared are the builtins visible to scripts.
	Predeclared starlark.StringDict
	// MaxExecutionSteps bounds one execution. Zero means unbounded.
	MaxExecutionSteps uint64
	// Filename is reported in error messages.
	Filename string
	// Print receives the output of the script print function. When nil the
	// output is logged at debug level.
	Print func(msg string)
}

// Interpreter is the incremental Starlark evaluator.
type Interpreter struct {
	opts  Options
	fopts *syntax.FileOptions

	text string
	// dirty is the lowest offset edited since the last reconciliation.
	dirty int

	globals starlark.StringDict
	// records of the statements already run, done of them.
	records []record
	done    int
	// backups[i] holds the globals before statement i.
	backups []starlark.StringDict

	pendingUsed   core.NameSet
	pendingReused core.NameSet

	env  core.Environment
	locs *core.Locations
}

var _ core.Evaluator = (*Interpreter)(nil)

// fileOptions enables the dialect features scripts rely on: top level
// control flow, reassignment of globals, while loops and sets.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// New creates an interpreter with an empty script.
func New(optFns ...func(o *Options)) *Interpreter {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		Filename: "script.star",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Interpreter{
		opts:          opts,
		fopts:         fileOptions,
		pendingUsed:   core.NewNameSet(),
		pendingReused: core.NewNameSet(),
		env:           core.Environment{},
		locs:          core.NewLocations(),
	}
}

// Text returns the script as known to the interpreter.
func (in *Interpreter) Text() string { return in.text }

// Change records an edit of the script.
func (in *Interpreter) Change(position, removed int, inserted string) {
	position = max(0, min(position, len(in.text)))
	end := max(position, min(position+removed, len(in.text)))
	in.text = in.text[:position] + inserted + in.text[end:]
	in.dirty = min(in.dirty, position)
}

// Environment returns the variables of the last successful execution.
func (in *Interpreter) Environment() core.Environment { return in.env }

// Locations returns the definition sites of the last successful execution.
func (in *Interpreter) Locations() *core.Locations { return in.locs }

// Execute runs the script up to target. Statements starting before target
// are run, beginning with the first one affected by edits since the last
// call. With autobackup the snapshots taken during this run are kept so that
// later runs can resume from any statement of it.
func (in *Interpreter) Execute(ctx context.Context, target int, autobackup bool) (core.NameSet, core.NameSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, &core.EvaluationError{Err: err}
	}

	f, o, err := in.parse(target)
	if err != nil {
		return nil, nil, err
	}
	next := records(f, o)

	n := 0
	for n < len(next) && next[n].span.Start < target {
		n++
	}
	k := in.firstStale(next, n)
	k = in.rewind(k)

	in.opts.Logger.Debug("executing script", "from", k, "to", n, "statements", len(next))

	thread := in.newThread()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-stop:
		}
	}()

	snaps := make([]starlark.StringDict, 0, n-k)
	for i := k; i < n; i++ {
		r := next[i]
		snaps = append(snaps, clone(in.globals))
		for _, name := range deps.Reads(r.stmt) {
			if v, ok := in.globals[name]; ok && !in.isBuiltin(name, v) {
				in.pendingReused.Add(name)
			}
		}
		err := ctx.Err()
		if err == nil {
			err = starlark.ExecREPLChunk(chunk(in.opts.Filename, in.fopts, r), thread, in.globals)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			in.globals = snaps[i-k]
			in.commit(next, k, i, snaps[:i-k], autobackup)
			span := r.span
			in.opts.Logger.Debug("statement failed", "index", i, "span", span.String(), "error", err)
			return nil, nil, &core.EvaluationError{Err: err, Span: &span}
		}
		in.pendingUsed.Add(r.bound...)
	}
	in.commit(next, k, n, snaps, autobackup)

	used := core.NewNameSet()
	for name := range in.pendingUsed {
		if _, ok := in.globals[name]; ok {
			used.Add(name)
		}
	}
	reused := in.pendingReused
	in.pendingUsed, in.pendingReused = core.NewNameSet(), core.NewNameSet()

	in.env, in.locs = in.publish()
	return used, reused, nil
}

// parse parses the script. On a syntax error the lines from the offending
// one onwards are dropped as long as they all lie after target, so an
// unfinished line below the target does not block the lines above it.
func (in *Interpreter) parse(target int) (*syntax.File, *offsets, error) {
	src := in.text
	for {
		f, err := in.fopts.Parse(in.opts.Filename, src, 0)
		if err == nil {
			return f, newOffsets(in.text), nil
		}
		var serr syntax.Error
		if !errors.As(err, &serr) || len(src) == 0 {
			return nil, nil, &core.EvaluationError{Err: err}
		}
		at := newOffsets(src).of(serr.Pos)
		cut := strings.LastIndexByte(src[:min(at, len(src)-1)], '\n') + 1
		if cut < target {
			end := strings.IndexByte(src[cut:], '\n')
			if end < 0 {
				end = len(src) - cut
			}
			return nil, nil, &core.EvaluationError{Err: err, Span: &core.Span{Start: cut, End: cut + end}}
		}
		src = src[:cut]
	}
}

// firstStale returns the index of the first statement that must run again.
func (in *Interpreter) firstStale(next []record, n int) int {
	k := min(in.done, n)
	for i := 0; i < k; i++ {
		if in.records[i].span.End >= in.dirty || in.records[i].span != next[i].span {
			return i
		}
	}
	return k
}

// rewind restores the globals as they were before statement k and returns
// the statement execution actually resumes from.
func (in *Interpreter) rewind(k int) int {
	if k == in.done && in.globals != nil {
		return k
	}
	if k >= len(in.backups) {
		k = max(0, len(in.backups)-1)
	}
	if k == 0 || len(in.backups) == 0 {
		in.globals = clone(in.opts.Predeclared)
		return 0
	}
	in.globals = clone(in.backups[k])
	return k
}

// commit stores the state reached after running statements k to i.
func (in *Interpreter) commit(next []record, k, i int, snaps []starlark.StringDict, autobackup bool) {
	in.records = next[:i]
	in.done = i
	in.dirty = math.MaxInt
	in.backups = in.backups[:min(k, len(in.backups))]
	if autobackup {
		in.backups = append(in.backups, snaps...)
	}
}

// publish builds the environment and the locations from the globals.
func (in *Interpreter) publish() (core.Environment, *core.Locations) {
	env := core.Environment{}
	for name, v := range in.globals {
		if !in.isBuiltin(name, v) {
			env[name] = v
		}
	}
	locs := core.NewLocations()
	for _, r := range in.records[:in.done] {
		if r.temp != "" {
			if _, ok := env[r.temp]; ok {
				locs.Set(r.temp, core.Location{Span: r.span, Stmt: r.stmt, Temporary: true})
			}
			continue
		}
		for _, name := range r.bound {
			if _, ok := env[name]; ok {
				locs.Set(name, core.Location{Span: r.span, Stmt: r.stmt})
			}
		}
	}
	return env, locs
}

func (in *Interpreter) newThread() *starlark.Thread {
	thread := &starlark.Thread{
		Name: in.opts.Filename,
		Print: func(_ *starlark.Thread, msg string) {
			if in.opts.Print != nil {
				in.opts.Print(msg)
				return
			}
			in.opts.Logger.Debug("script output", "msg", msg)
		},
	}
	if in.opts.MaxExecutionSteps > 0 {
		thread.SetMaxExecutionSteps(in.opts.MaxExecutionSteps)
	}
	return thread
}

// isBuiltin reports whether name still holds its predeclared value.
func (in *Interpreter) isBuiltin(name string, v starlark.Value) bool {
	pre, ok := in.opts.Predeclared[name]
	return ok && same(pre, v)
}

func same(a, b starlark.Value) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

func clone(d starlark.StringDict) starlark.StringDict {
	c := make(starlark.StringDict, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}
