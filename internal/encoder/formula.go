package encoder

import (
	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/boolform"
	"github.com/kevinawalsh/alloysat/internal/boolmatrix"
)

// EncodeFormula lowers a boolean-valued expression to a boolform.Formula.
func (e *Env) EncodeFormula(expr ast.Expr, sc *Scope) *boolform.Formula {
	switch x := expr.(type) {
	case *ast.Unary:
		switch x.Op {
		case ast.OpNot:
			return boolform.Not(e.EncodeFormula(x.X, sc))
		case ast.OpNo:
			return atMostZeroOf(cellFormulas(e.EncodeExpr(x.X, sc)))
		case ast.OpSome:
			m := e.EncodeExpr(x.X, sc)
			return atLeastOneOf(cellFormulas(m))
		case ast.OpOne:
			m := e.EncodeExpr(x.X, sc)
			return exactlyOneOf(cellFormulas(m))
		case ast.OpLone:
			m := e.EncodeExpr(x.X, sc)
			return atMostOneOf(cellFormulas(m))
		case ast.OpSet:
			return boolform.True // "set" is an unconstrained multiplicity tag
		}
		panicf("unary operator %v is relation-valued, not formula-valued", x.Op)
	case *ast.Binary:
		switch x.Op {
		case ast.OpAnd:
			return boolform.And(e.EncodeFormula(x.X, sc), e.EncodeFormula(x.Y, sc))
		case ast.OpOr:
			return boolform.Or(e.EncodeFormula(x.X, sc), e.EncodeFormula(x.Y, sc))
		case ast.OpImplies:
			return boolform.Implies(e.EncodeFormula(x.X, sc), e.EncodeFormula(x.Y, sc))
		case ast.OpIff:
			return boolform.Iff(e.EncodeFormula(x.X, sc), e.EncodeFormula(x.Y, sc))
		case ast.OpSeq:
			// Plain (non-temporal) encoding treats ";" as conjunction;
			// internal/trace installs SeqHook to give it genuine
			// state-sequencing meaning.
			if e.SeqHook != nil {
				return e.SeqHook(x.X, x.Y, sc)
			}
			return boolform.And(e.EncodeFormula(x.X, sc), e.EncodeFormula(x.Y, sc))
		}
		panicf("binary operator %v is relation-valued, not formula-valued", x.Op)
	case *ast.TemporalUnary:
		if e.TemporalUnaryHook == nil {
			panicf("temporal operator %v used outside a temporal command", x.Op)
		}
		return e.TemporalUnaryHook(x.Op, x.X, sc)
	case *ast.TemporalBinary:
		if e.TemporalBinaryHook == nil {
			panicf("temporal operator %v used outside a temporal command", x.Op)
		}
		return e.TemporalBinaryHook(x.Op, x.X, x.Y, sc)
	case *ast.Compare:
		return e.encodeCompare(x, sc)
	case *ast.IfExpr:
		cond := e.EncodeFormula(x.Cond, sc)
		return boolform.Ite(cond, e.EncodeFormula(x.Then, sc), e.EncodeFormula(x.Else, sc))
	case *ast.LetExpr:
		inner := NewScope(sc)
		for _, b := range x.Bindings {
			inner.bind(b.Name, e.EncodeExpr(b.Value, sc))
		}
		return e.EncodeFormula(x.Body, inner)
	case *ast.Block:
		fs := make([]*boolform.Formula, len(x.Exprs))
		for i, sub := range x.Exprs {
			fs[i] = e.EncodeFormula(sub, sc)
		}
		return boolform.And(fs...)
	case *ast.Quant:
		if x.Kind == ast.QuantSum {
			panicf("sum quantifier is integer-valued, not formula-valued")
		}
		return e.encodeQuant(x.Kind, x.Decls, x.Body, sc)
	case *ast.Call:
		return e.invokeFormula(x, sc)
	case *ast.Paren:
		return e.EncodeFormula(x.X, sc)
	}
	panicf("unsupported formula-valued expression %T", expr)
	return nil
}

// cellFormulas collects m's non-False cell formulas, in tuple order.
func cellFormulas(m *boolmatrix.Matrix) []*boolform.Formula {
	tuples := m.Tuples()
	out := make([]*boolform.Formula, len(tuples))
	for i, t := range tuples {
		out[i] = m.At(t)
	}
	return out
}

// atMostZeroOf is the "no" multiplicity test: every cell formula false.
func atMostZeroOf(fs []*boolform.Formula) *boolform.Formula {
	negs := make([]*boolform.Formula, len(fs))
	for i, f := range fs {
		negs[i] = boolform.Not(f)
	}
	return boolform.And(negs...)
}

// atLeastOneOf is the "some" multiplicity test.
func atLeastOneOf(fs []*boolform.Formula) *boolform.Formula {
	return boolform.Or(fs...)
}

// atMostOneOf is the "lone" multiplicity test: pairwise mutual exclusion,
// the same quadratic-but-aux-var-free shape as boolform.AtMostOne, just
// generalized from raw variables to arbitrary formulas.
func atMostOneOf(fs []*boolform.Formula) *boolform.Formula {
	var clauses []*boolform.Formula
	for i := 0; i < len(fs); i++ {
		for j := i + 1; j < len(fs); j++ {
			clauses = append(clauses, boolform.Or(boolform.Not(fs[i]), boolform.Not(fs[j])))
		}
	}
	return boolform.And(clauses...)
}

// exactlyOneOf is the "one" multiplicity test.
func exactlyOneOf(fs []*boolform.Formula) *boolform.Formula {
	return boolform.And(atLeastOneOf(fs), atMostOneOf(fs))
}
