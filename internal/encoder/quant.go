package encoder

import (
	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/boolform"
)

// encodeQuant lowers all/no/some/one/lone quantified formulas by
// enumerating every candidate binding of decls (internal/bounds keeps the
// universe finite, so this is always a finite unrolling) and combining
// the per-combination term according to kind.
func (e *Env) encodeQuant(kind ast.QuantKind, decls []ast.VarDecl, body ast.Expr, sc *Scope) *boolform.Formula {
	combos := e.enumerateCombos(decls, sc)
	terms := make([]*boolform.Formula, len(combos))
	for i, combo := range combos {
		inner := e.scopeWithCombo(sc, combo)
		b := e.EncodeFormula(body, inner)
		switch kind {
		case ast.QuantAll:
			terms[i] = boolform.Implies(combo.indicator, b)
		default:
			terms[i] = boolform.And(combo.indicator, b)
		}
	}
	switch kind {
	case ast.QuantAll:
		return boolform.And(terms...)
	case ast.QuantSome:
		return atLeastOneOf(terms)
	case ast.QuantNo:
		return boolform.Not(atLeastOneOf(terms))
	case ast.QuantOne:
		return exactlyOneOf(terms)
	case ast.QuantLone:
		return atMostOneOf(terms)
	}
	panicf("unsupported quantifier kind %v", kind)
	return nil
}
