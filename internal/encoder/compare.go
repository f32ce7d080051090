package encoder

import (
	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/boolform"
	"github.com/kevinawalsh/alloysat/internal/boolmatrix"
)

// matricesEqual builds "a = b": every tuple either side could hold has
// the same truth value in both.
func matricesEqual(a, b *boolmatrix.Matrix) *boolform.Formula {
	var terms []*boolform.Formula
	for _, at := range a.Tuples() {
		terms = append(terms, boolform.Iff(a.At(at), b.At(at)))
	}
	for _, bt := range b.Tuples() {
		if a.At(bt).Kind != boolform.KindFalse {
			continue // already covered via a.Tuples() above
		}
		terms = append(terms, boolform.Iff(a.At(bt), b.At(bt)))
	}
	return boolform.And(terms...)
}

// matrixSubset builds "a in b": every tuple a could hold implies b holds it.
func matrixSubset(a, b *boolmatrix.Matrix) *boolform.Formula {
	var terms []*boolform.Formula
	for _, t := range a.Tuples() {
		terms = append(terms, boolform.Implies(a.At(t), b.At(t)))
	}
	return boolform.And(terms...)
}

func isIntCompare(op ast.CompareOp) bool {
	switch op {
	case ast.CmpLt, ast.CmpGt, ast.CmpLe, ast.CmpGe:
		return true
	}
	return false
}

func (e *Env) encodeCompare(c *ast.Compare, sc *Scope) *boolform.Formula {
	if isIntCompare(c.Op) {
		xb := e.EncodeInt(c.X, sc)
		yb := e.EncodeInt(c.Y, sc)
		switch c.Op {
		case ast.CmpLt:
			return compareBitsLess(xb, yb)
		case ast.CmpGt:
			return compareBitsLess(yb, xb)
		case ast.CmpLe:
			return boolform.Not(compareBitsLess(yb, xb))
		case ast.CmpGe:
			return boolform.Not(compareBitsLess(xb, yb))
		}
	}
	x := e.EncodeExpr(c.X, sc)
	y := e.EncodeExpr(c.Y, sc)
	switch c.Op {
	case ast.CmpEq:
		return matricesEqual(x, y)
	case ast.CmpNeq:
		return boolform.Not(matricesEqual(x, y))
	case ast.CmpIn:
		return matrixSubset(x, y)
	case ast.CmpNotIn:
		return boolform.Not(matrixSubset(x, y))
	}
	panicf("unsupported comparison operator %v", c.Op)
	return nil
}
