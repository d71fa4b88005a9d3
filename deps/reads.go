package deps

import (
	"go.starlark.net/syntax"

	"github.com/hupe1980/livecad/core"
)

// Reads returns the names a statement reads, in order of first occurrence.
// Binding occurrences are excluded: plain assignment targets, loop and
// comprehension variables, function names and parameters, load bindings,
// attribute names and keyword argument names. Names bound inside a function
// or comprehension body are local and never reported.
func Reads(n syntax.Node) []string {
	if n == nil {
		return nil
	}
	r := &reader{seen: core.NewNameSet()}
	r.walk(n)
	return r.reads
}

type reader struct {
	reads  []string
	seen   core.NameSet
	scopes []core.NameSet
}

func (r *reader) read(name string) {
	for _, s := range r.scopes {
		if s.Has(name) {
			return
		}
	}
	if r.seen.Has(name) {
		return
	}
	r.seen.Add(name)
	r.reads = append(r.reads, name)
}

func (r *reader) push() { r.scopes = append(r.scopes, core.NewNameSet()) }
func (r *reader) pop()  { r.scopes = r.scopes[:len(r.scopes)-1] }
func (r *reader) bind(name string) {
	if len(r.scopes) > 0 {
		r.scopes[len(r.scopes)-1].Add(name)
	}
}

func (r *reader) walkAll(stmts []syntax.Stmt) {
	for _, s := range stmts {
		r.walk(s)
	}
}

// target handles the left side of a binding.
func (r *reader) target(e syntax.Expr) {
	switch e := e.(type) {
	case *syntax.Ident:
		r.bind(e.Name)
	case *syntax.ParenExpr:
		r.target(e.X)
	case *syntax.TupleExpr:
		for _, x := range e.List {
			r.target(x)
		}
	case *syntax.ListExpr:
		for _, x := range e.List {
			r.target(x)
		}
	default:
		// a.x = ..., a[i] = ... read a and i
		r.walk(e)
	}
}

// params walks default values in the enclosing scope and binds the
// parameter names in the current one.
func (r *reader) params(params []syntax.Expr) (names []string) {
	for _, p := range params {
		switch p := p.(type) {
		case *syntax.Ident:
			names = append(names, p.Name)
		case *syntax.BinaryExpr:
			r.walk(p.Y)
			if id, ok := p.X.(*syntax.Ident); ok {
				names = append(names, id.Name)
			}
		case *syntax.UnaryExpr:
			if id, ok := p.X.(*syntax.Ident); ok {
				names = append(names, id.Name)
			}
		}
	}
	return names
}

func (r *reader) walk(n syntax.Node) {
	syntax.Walk(n, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.Ident:
			r.read(n.Name)
			return false
		case *syntax.AssignStmt:
			if n.Op == syntax.EQ {
				r.walk(n.RHS)
				r.target(n.LHS)
			} else {
				r.walk(n.LHS)
				r.walk(n.RHS)
			}
			return false
		case *syntax.ForStmt:
			r.walk(n.X)
			r.push()
			r.target(n.Vars)
			r.walkAll(n.Body)
			r.pop()
			return false
		case *syntax.DefStmt:
			names := r.params(n.Params)
			r.bind(n.Name.Name)
			r.push()
			r.bind(n.Name.Name)
			for _, name := range names {
				r.bind(name)
			}
			r.localAssignments(n.Body)
			r.walkAll(n.Body)
			r.pop()
			return false
		case *syntax.LambdaExpr:
			names := r.params(n.Params)
			r.push()
			for _, name := range names {
				r.bind(name)
			}
			r.walk(n.Body)
			r.pop()
			return false
		case *syntax.Comprehension:
			r.push()
			for _, c := range n.Clauses {
				switch c := c.(type) {
				case *syntax.ForClause:
					r.walk(c.X)
					r.target(c.Vars)
				case *syntax.IfClause:
					r.walk(c.Cond)
				}
			}
			r.walk(n.Body)
			r.pop()
			return false
		case *syntax.DotExpr:
			r.walk(n.X)
			return false
		case *syntax.CallExpr:
			r.walk(n.Fn)
			for _, arg := range n.Args {
				if kw, ok := arg.(*syntax.BinaryExpr); ok && kw.Op == syntax.EQ {
					r.walk(kw.Y)
					continue
				}
				r.walk(arg)
			}
			return false
		case *syntax.LoadStmt:
			return false
		}
		return true
	})
}

// localAssignments binds every name assigned anywhere in a function body, as
// a function local shadows the global of the same name for the whole body.
func (r *reader) localAssignments(body []syntax.Stmt) {
	for _, s := range body {
		syntax.Walk(s, func(n syntax.Node) bool {
			switch n := n.(type) {
			case *syntax.AssignStmt:
				bindTargets(n.LHS, r.bind)
			case *syntax.ForStmt:
				bindTargets(n.Vars, r.bind)
			case *syntax.DefStmt:
				r.bind(n.Name.Name)
				return false
			case *syntax.LambdaExpr, *syntax.Comprehension:
				return false
			}
			return true
		})
	}
}

func bindTargets(e syntax.Expr, bind func(string)) {
	switch e := e.(type) {
	case *syntax.Ident:
		bind(e.Name)
	case *syntax.ParenExpr:
		bindTargets(e.X, bind)
	case *syntax.TupleExpr:
		for _, x := range e.List {
			bindTargets(x, bind)
		}
	case *syntax.ListExpr:
		for _, x := range e.List {
			bindTargets(x, bind)
		}
	}
}
