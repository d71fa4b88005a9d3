// Package deps builds the pose ownership map: which solid every script name
// follows when bodies move.
package deps

import (
	"sort"

	"github.com/hupe1980/livecad/core"
	"github.com/hupe1980/livecad/identity"
	"github.com/hupe1980/livecad/logging"
)

// Options configures a Tracker.
type Options struct {
	Logger logging.Logger
}

// Tracker rebuilds ownership after every execution.
type Tracker struct {
	registry *identity.Registry
	logger   logging.Logger
}

// New creates a Tracker.
func New(optFns ...func(o *Options)) *Tracker {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Tracker{registry: identity.NewRegistry(), logger: opts.Logger}
}

type pair struct {
	name  string
	owner string
}

// Rebuild computes a fresh ownership map from env and locs.
//
// Solids own themselves and their visuals (by identity). Poses of solids whose
// name was already a solid in prior are restored so bodies keep their place
// across re-executions. Ownership then flows from every owned name to the
// names its defining statement reads. Direct ownership is never overwritten
// and among propagated owners the first one wins; seeds are visited in name
// order so the result is deterministic.
func (t *Tracker) Rebuild(env core.Environment, locs *core.Locations, prior *core.Ownership) *core.Ownership {
	t.registry.Reset()
	own := core.NewOwnership()
	names := sortedNames(env)

	// solids and their attached visuals
	var solids []string
	for _, name := range names {
		s, ok := env[name].(core.Solid)
		if !ok {
			continue
		}
		solids = append(solids, name)
		t.registry.Attach(name, s)
		own.AddSolid(name, s)
		if old, ok := prior.SolidNamed(name); ok && old.Identity() != s.Identity() {
			s.SetPose(old.Pose())
		}
	}

	// names bound to attached visuals
	direct := core.NewNameSet(solids...)
	for _, name := range names {
		if direct.Has(name) {
			continue
		}
		owner, ok := t.registry.Owner(env[name])
		if !ok {
			continue
		}
		t.registry.Claim(env[name])
		own.Assign(name, owner)
		direct.Add(name)
	}

	// visuals no name claims
	for _, name := range solids {
		own.SetExtras(name, t.registry.Unclaimed(env[name].(core.Solid)))
	}

	// propagate along read references
	seeds := direct.Sorted()
	stack := make([]pair, 0, len(seeds))
	for i := len(seeds) - 1; i >= 0; i-- {
		owner, _ := own.Owner(seeds[i])
		stack = append(stack, pair{seeds[i], owner})
	}
	scanned := core.NewNameSet()
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !direct.Has(p.name) {
			if own.Has(p.name) {
				continue
			}
			own.Assign(p.name, p.owner)
		}
		if scanned.Has(p.name) {
			continue
		}
		scanned.Add(p.name)

		loc, ok := locs.Get(p.name)
		if !ok {
			continue
		}
		reads := Reads(loc.Stmt)
		for i := len(reads) - 1; i >= 0; i-- {
			ref := reads[i]
			if _, inEnv := env[ref]; !inEnv || own.Has(ref) {
				continue
			}
			stack = append(stack, pair{ref, p.owner})
		}
	}

	t.logger.Debug("ownership rebuilt", "solids", len(solids), "owned", own.Len(), "identities", t.registry.Len())
	return own
}

func sortedNames(env core.Environment) []string {
	out := make([]string, 0, len(env))
	for n := range env {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
