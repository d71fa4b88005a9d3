package interpreter

import (
	"fmt"
	"unicode/utf8"

	"go.starlark.net/syntax"

	"github.com/hupe1980/livecad/core"
)

// record is what the interpreter remembers of one top level statement.
type record struct {
	stmt  syntax.Stmt
	span  core.Span
	bound []string
	// temp is the name holding the value of an expression statement.
	temp string
}

// offsets converts starlark positions to byte offsets.
type offsets struct {
	text  string
	lines []int
}

func newOffsets(text string) *offsets {
	o := &offsets{text: text, lines: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			o.lines = append(o.lines, i+1)
		}
	}
	return o
}

// of returns the byte offset of a position. Columns count runes.
func (o *offsets) of(p syntax.Position) int {
	line := int(p.Line) - 1
	if line < 0 {
		return 0
	}
	if line >= len(o.lines) {
		return len(o.text)
	}
	off := o.lines[line]
	for col := 1; col < int(p.Col) && off < len(o.text) && o.text[off] != '\n'; col++ {
		_, size := utf8.DecodeRuneInString(o.text[off:])
		off += size
	}
	return off
}

func (o *offsets) span(n syntax.Node) core.Span {
	start, end := n.Span()
	return core.Span{Start: o.of(start), End: o.of(end)}
}

// records builds the statement records of a parsed file.
func records(f *syntax.File, o *offsets) []record {
	out := make([]record, 0, len(f.Stmts))
	taken := map[string]bool{}
	for _, stmt := range f.Stmts {
		r := record{stmt: stmt, span: o.span(stmt)}
		if x, ok := stmt.(*syntax.ExprStmt); ok {
			start, _ := x.Span()
			r.temp = fmt.Sprintf("_%d", start.Line)
			if taken[r.temp] {
				r.temp = fmt.Sprintf("_%d_%d", start.Line, start.Col)
			}
			taken[r.temp] = true
		} else {
			r.bound = boundNames(stmt)
		}
		out = append(out, r)
	}
	return out
}

// boundNames returns the global names a top level statement may assign.
func boundNames(stmt syntax.Stmt) []string {
	var names []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	var visit func(s syntax.Stmt)
	visitAll := func(stmts []syntax.Stmt) {
		for _, s := range stmts {
			visit(s)
		}
	}
	visit = func(s syntax.Stmt) {
		switch s := s.(type) {
		case *syntax.AssignStmt:
			targets(s.LHS, add)
		case *syntax.DefStmt:
			add(s.Name.Name)
		case *syntax.LoadStmt:
			for _, id := range s.To {
				add(id.Name)
			}
		case *syntax.ForStmt:
			targets(s.Vars, add)
			visitAll(s.Body)
		case *syntax.WhileStmt:
			visitAll(s.Body)
		case *syntax.IfStmt:
			visitAll(s.True)
			visitAll(s.False)
		}
	}
	visit(stmt)
	return names
}

func targets(e syntax.Expr, add func(string)) {
	switch e := e.(type) {
	case *syntax.Ident:
		add(e.Name)
	case *syntax.ParenExpr:
		targets(e.X, add)
	case *syntax.TupleExpr:
		for _, x := range e.List {
			targets(x, add)
		}
	case *syntax.ListExpr:
		for _, x := range e.List {
			targets(x, add)
		}
	}
}

// chunk wraps a statement into a file the starlark REPL entry point can run.
// Expression statements are turned into an assignment to their temporary.
func chunk(path string, opts *syntax.FileOptions, r record) *syntax.File {
	stmt := r.stmt
	if x, ok := stmt.(*syntax.ExprStmt); ok {
		start, _ := x.Span()
		stmt = &syntax.AssignStmt{
			OpPos: start,
			Op:    syntax.EQ,
			LHS:   &syntax.Ident{NamePos: start, Name: r.temp},
			RHS:   x.X,
		}
	}
	return &syntax.File{Path: path, Stmts: []syntax.Stmt{stmt}, Options: opts}
}
