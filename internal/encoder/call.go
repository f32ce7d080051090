package encoder

import (
	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/boolform"
	"github.com/kevinawalsh/alloysat/internal/boolmatrix"
)

// bindCallArgs builds the callee-local scope for a predicate/function
// call: each parameter name bound (in declaration order, flattening
// "x, y: A" groups) to the corresponding argument's matrix, plus "this"
// bound to the receiver expression for method-call syntax.
func (e *Env) bindCallArgs(call *ast.Call, params []ast.Param, recvName string, sc *Scope) *Scope {
	inner := NewScope(nil)
	argIdx := 0
	for _, p := range params {
		for _, name := range p.Names {
			if argIdx >= len(call.Args) {
				panicf("call to %s is missing an argument for parameter %q", call.Name, name)
			}
			inner.bind(name, e.EncodeExpr(call.Args[argIdx], sc))
			argIdx++
		}
	}
	if call.Recv != nil {
		inner.bind("this", e.EncodeExpr(call.Recv, sc))
	} else if recvName != "" {
		panicf("method %s requires a receiver", call.Name)
	}
	return inner
}

// invokeFormula inlines a predicate (or a function used in formula
// position, which Alloy permits when the function returns a boolean-typed
// expression) by substitution, rather than adding reusable CNF machinery
// for call sharing -- call sites are expanded, matching how the
// relational encoder already expands quantifiers by enumeration.
func (e *Env) invokeFormula(call *ast.Call, sc *Scope) *boolform.Formula {
	pred, ok := e.Table.Preds[call.Name]
	if !ok {
		panicf("unresolved predicate/function %q", call.Name)
	}
	inner := e.bindCallArgs(call, pred.Params, pred.Recv, sc)
	switch d := pred.Decl.(type) {
	case *ast.PredDecl:
		return e.EncodeFormula(d.Body, inner)
	case *ast.FunDecl:
		return e.EncodeFormula(d.Body, inner)
	}
	panicf("call to %s resolved to an unknown declaration kind", call.Name)
	return nil
}

// invokeExpr inlines a function call used in relation-expression position.
func (e *Env) invokeExpr(call *ast.Call, sc *Scope) *boolmatrix.Matrix {
	pred, ok := e.Table.Preds[call.Name]
	if !ok {
		panicf("unresolved predicate/function %q", call.Name)
	}
	if !pred.IsFun {
		panicf("predicate %s used in relation-expression position", call.Name)
	}
	inner := e.bindCallArgs(call, pred.Params, pred.Recv, sc)
	d, ok := pred.Decl.(*ast.FunDecl)
	if !ok {
		panicf("function %s resolved to an unexpected declaration kind", call.Name)
	}
	return e.EncodeExpr(d.Body, inner)
}
