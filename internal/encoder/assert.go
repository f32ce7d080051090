package encoder

import (
	"fmt"
	"sort"

	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/boolform"
	"github.com/kevinawalsh/alloysat/internal/boolmatrix"
)

// AssertFormula conjoins f into the environment's running CNF.
func (e *Env) AssertFormula(f *boolform.Formula) { e.Builder.Assert(f) }

// AssertSome asserts m is nonempty.
func (e *Env) AssertSome(m *boolmatrix.Matrix) { e.AssertFormula(atLeastOneOf(cellFormulas(m))) }

// AssertNo asserts m is empty.
func (e *Env) AssertNo(m *boolmatrix.Matrix) { e.AssertFormula(atMostZeroOf(cellFormulas(m))) }

// AssertOne asserts m holds exactly one tuple.
func (e *Env) AssertOne(m *boolmatrix.Matrix) { e.AssertFormula(exactlyOneOf(cellFormulas(m))) }

// AssertFacts conjoins every module-level fact and every signature's
// inline appended facts ("sig S { ... } { body }", implicitly
// "all this: S | body") into the environment. Must run before a command's
// own target is asserted: facts are the background theory every run/check
// is evaluated against.
func (e *Env) AssertFacts(root *Scope) {
	for _, f := range e.Table.Facts {
		e.AssertFormula(e.EncodeFormula(f.Body, root))
	}
	var sigNames []string
	for n := range e.Table.Sigs {
		sigNames = append(sigNames, n)
	}
	sort.Strings(sigNames)
	for _, n := range sigNames {
		sig := e.Table.Sigs[n]
		if sig.Decl == nil {
			continue
		}
		for _, body := range sig.Decl.Facts {
			decl := ast.VarDecl{Names: []string{"this"}, Type: &ast.Ident{Name: n}}
			e.AssertFormula(e.encodeQuant(ast.QuantAll, []ast.VarDecl{decl}, body, root))
		}
	}
}

// EncodeCommand asserts the background facts plus cmd's own target: a run
// command's body must hold; a check command's assertion is negated, so
// that Unsatisfiable means the assertion holds over every bound instance
// and Satisfiable exhibits a counterexample.
func (e *Env) EncodeCommand(cmd *ast.Command, root *Scope) error {
	e.AssertFacts(root)
	body, err := e.CommandBody(cmd)
	if err != nil {
		return err
	}
	f := e.EncodeFormula(body, root)
	if cmd.Kind == ast.CmdCheck {
		f = boolform.Not(f)
	}
	e.AssertFormula(f)
	return nil
}

// CommandBody resolves an anonymous body, a named assertion, or a named
// (niladic) predicate/function to the formula a command evaluates.
func (e *Env) CommandBody(cmd *ast.Command) (ast.Expr, error) {
	if cmd.Body != nil {
		return cmd.Body, nil
	}
	if a, ok := e.Table.Asserts[cmd.Name]; ok {
		return a.Body, nil
	}
	if p, ok := e.Table.Preds[cmd.Name]; ok {
		switch d := p.Decl.(type) {
		case *ast.PredDecl:
			return d.Body, nil
		case *ast.FunDecl:
			return d.Body, nil
		}
	}
	return nil, fmt.Errorf("command %q does not resolve to a predicate, function, or assertion", cmd.Name)
}
