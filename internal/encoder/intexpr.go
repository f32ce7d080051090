package encoder

import (
	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/boolform"
)

// EncodeInt lowers the small subset of Alloy's integer expressions this
// encoder supports -- literals, "+"/"-" reused as add/sub, "#" cardinality,
// and "sum" -- to a fixed-width two's-complement bit vector (LSB first).
// Overflow wraps rather than being flagged, matching Alloy's own bounded
// Int semantics; this is the documented under-approximation for sum over
// non-constant domains recorded in DESIGN.md.
func (e *Env) EncodeInt(expr ast.Expr, sc *Scope) []*boolform.Formula {
	switch x := expr.(type) {
	case *ast.IntLit:
		return constBits(x.Value, e.IntWidth)
	case *ast.Paren:
		return e.EncodeInt(x.X, sc)
	case *ast.Unary:
		switch x.Op {
		case ast.OpCard:
			m := e.EncodeExpr(x.X, sc)
			return popcountBits(cellFormulas(m), e.IntWidth)
		}
	case *ast.Binary:
		switch x.Op {
		case ast.OpUnion:
			return addBits(e.EncodeInt(x.X, sc), e.EncodeInt(x.Y, sc))
		case ast.OpDiff:
			return subBits(e.EncodeInt(x.X, sc), e.EncodeInt(x.Y, sc))
		}
	case *ast.Quant:
		if x.Kind == ast.QuantSum {
			combos := e.enumerateCombos(x.Decls, sc)
			acc := constBits(0, e.IntWidth)
			for _, combo := range combos {
				inner := e.scopeWithCombo(sc, combo)
				term := e.EncodeInt(x.Body, inner)
				gated := make([]*boolform.Formula, len(term))
				for i, b := range term {
					gated[i] = boolform.And(combo.indicator, b)
				}
				acc = addBits(acc, gated)
			}
			return acc
		}
	}
	panicf("unsupported integer-valued expression %T", expr)
	return nil
}

func constBits(v int64, width int) []*boolform.Formula {
	bits := make([]*boolform.Formula, width)
	for i := 0; i < width; i++ {
		if (v>>uint(i))&1 == 1 {
			bits[i] = boolform.True
		} else {
			bits[i] = boolform.False
		}
	}
	return bits
}

func notBits(a []*boolform.Formula) []*boolform.Formula {
	out := make([]*boolform.Formula, len(a))
	for i, b := range a {
		out[i] = boolform.Not(b)
	}
	return out
}

// addBits is a ripple-carry adder over same-width two's complement
// operands; the final carry-out is discarded (fixed-width wraparound).
func addBits(a, b []*boolform.Formula) []*boolform.Formula {
	width := len(a)
	out := make([]*boolform.Formula, width)
	carry := boolform.False
	for i := 0; i < width; i++ {
		x, y := a[i], b[i]
		out[i] = boolform.Xor(boolform.Xor(x, y), carry)
		// carry-out = majority(x, y, carry)
		carry = boolform.Or(boolform.And(x, y), boolform.And(carry, boolform.Xor(x, y)))
	}
	return out
}

func negBits(a []*boolform.Formula) []*boolform.Formula {
	return addBits(notBits(a), constBits(1, len(a)))
}

func subBits(a, b []*boolform.Formula) []*boolform.Formula {
	return addBits(a, negBits(b))
}

// popcountBits sums len(fs) single-bit terms (each 0 or 1) into a
// width-bit count via repeated addBits, i.e. a cardinality/"#R" value.
func popcountBits(fs []*boolform.Formula, width int) []*boolform.Formula {
	acc := constBits(0, width)
	for _, f := range fs {
		term := make([]*boolform.Formula, width)
		term[0] = f
		for i := 1; i < width; i++ {
			term[i] = boolform.False
		}
		acc = addBits(acc, term)
	}
	return acc
}

// compareBitsLess returns "a < b" via two's-complement subtraction's sign
// bit, the standard bit-blasted signed comparator.
func compareBitsLess(a, b []*boolform.Formula) *boolform.Formula {
	diff := subBits(a, b)
	return diff[len(diff)-1] // sign bit of a-b
}
