package testutil

import (
	"go.starlark.net/syntax"

	"github.com/hupe1980/livecad/core"
)

// SessionBuilder constructs sessions whose environment and locations look
// like the output of a real execution. Each Define appends its source as a
// new line so spans never overlap.
// Example:
//
//	sess := NewSessionBuilder().Define("a", solid, "a = solid()").Define("b", v, "b = a.visuals[0]").Build()
type SessionBuilder struct {
	text   []byte
	env    core.Environment
	locs   *core.Locations
	never  []string
	pinned []string
}

// NewSessionBuilder creates an empty builder.
func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{env: core.Environment{}, locs: core.NewLocations()}
}

// Define binds name to value with the given defining statement.
func (b *SessionBuilder) Define(name string, value any, src string) *SessionBuilder {
	return b.define(name, value, src, false)
}

// Temp binds a temporary created by an expression statement.
func (b *SessionBuilder) Temp(name string, value any, src string) *SessionBuilder {
	return b.define(name, value, src, true)
}

// Value binds name without a location.
func (b *SessionBuilder) Value(name string, value any) *SessionBuilder {
	b.env[name] = value
	return b
}

// NeverUsed marks names as terminal.
func (b *SessionBuilder) NeverUsed(names ...string) *SessionBuilder {
	b.never = append(b.never, names...)
	return b
}

// Pinned marks names as pinned.
func (b *SessionBuilder) Pinned(names ...string) *SessionBuilder {
	b.pinned = append(b.pinned, names...)
	return b
}

func (b *SessionBuilder) define(name string, value any, src string, temp bool) *SessionBuilder {
	start := len(b.text)
	b.text = append(b.text, src...)
	end := len(b.text)
	b.text = append(b.text, '\n')
	b.env[name] = value
	b.locs.Set(name, core.Location{Span: core.Span{Start: start, End: end}, Stmt: ParseStmt(src), Temporary: temp})
	return b
}

// Build returns the session.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(string(b.text))
	s.Env = b.env
	s.Locations = b.locs
	s.NeverUsed.Add(b.never...)
	s.Pinned.Add(b.pinned...)
	return s
}

// Environment returns the environment being built.
func (b *SessionBuilder) Environment() core.Environment { return b.env }

// Locations returns the locations being built.
func (b *SessionBuilder) Locations() *core.Locations { return b.locs }

// ParseStmt parses a single statement. It panics on syntax errors.
func ParseStmt(src string) syntax.Stmt {
	opts := &syntax.FileOptions{Set: true, While: true, TopLevelControl: true, GlobalReassign: true}
	f, err := opts.Parse("test.star", src, 0)
	if err != nil {
		panic(err)
	}
	if len(f.Stmts) == 0 {
		return nil
	}
	return f.Stmts[0]
}
