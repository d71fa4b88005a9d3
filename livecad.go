// Package livecad provides a high-level facade that wires the engine to the
// Starlark interpreter and the geometry kernel. Most applications:
//  1. Create a LiveCAD via New() (optionally overriding the default in-memory stores)
//  2. Register their views with AddView
//  3. Feed edits, cursor moves and pointer events, directly or through Run
//
// All defaults are safe for local development and testing; applications
// that keep scripts on disk supply a script.FileStore and a structured
// logger.
package livecad

import (
	"github.com/hupe1980/livecad/engine"
	"github.com/hupe1980/livecad/interpreter"
	"github.com/hupe1980/livecad/kernel"
	"github.com/hupe1980/livecad/logging"
	"github.com/hupe1980/livecad/model"
	"github.com/hupe1980/livecad/script"
	"github.com/hupe1980/livecad/session"
)

// Options configures the LiveCAD instance.
type Options struct {
	// Engine configuration (trigger mode, solver tolerances, limits)
	Config engine.Config

	// Stores (default to in-memory implementations if not provided)
	Scripts   script.Store
	Snapshots session.Store

	// Model enables the script assistant.
	Model model.Model

	// Text is the initial script.
	Text string

	// Print receives the output of the script print function.
	Print func(msg string)

	// Logger (defaults to the logger described by Config.Log if nil)
	Logger logging.Logger
}

// LiveCAD is the engine bound to the Starlark interpreter and the kernel.
type LiveCAD struct {
	*engine.Engine

	Kernel      *kernel.Kernel
	Interpreter *interpreter.Interpreter
}

// New creates a LiveCAD instance with optional overrides.
func New(optFns ...func(o *Options)) *LiveCAD {
	opts := Options{
		Config:    engine.DefaultConfig,
		Scripts:   script.NewInMemoryStore(),
		Snapshots: session.NewInMemoryStore(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = opts.Config.Logger()
	}

	k := kernel.New()
	interp := interpreter.New(func(o *interpreter.Options) {
		o.Logger = opts.Logger
		o.Predeclared = k.Builtins()
		o.MaxExecutionSteps = opts.Config.MaxExecutionSteps
		o.Print = opts.Print
	})

	e := engine.New(interp, k, func(o *engine.Options) {
		o.Config = opts.Config
		o.Logger = opts.Logger
		o.Scripts = opts.Scripts
		o.Snapshots = opts.Snapshots
		o.Model = opts.Model
		o.Text = opts.Text
	})

	return &LiveCAD{Engine: e, Kernel: k, Interpreter: interp}
}
