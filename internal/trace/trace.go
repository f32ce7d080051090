// Package trace builds the temporal (lasso-trace) encoding for a command
// whose module uses "var" signatures or fields: it wraps an
// internal/encoder.Env with a state index, one independent matrix per
// state for every var relation, mandatory loop-back variables, and the
// LTL operator table, installing itself into the encoder's hook seam
// (VarState/PrimeHook/TemporalUnaryHook/TemporalBinaryHook/SeqHook) so
// that the ordinary (non-temporal) relational-operator lowering in
// internal/encoder is reused unchanged at every state.
//
// Every trace this package builds is a lasso: L states followed by a
// loop-back to an earlier state. Alloy 6's var semantics are inherently
// infinite-horizon (always/eventually quantify over an unbounded future),
// so a loop is not optional the way spec.md's operator table phrases it
// ("... if loop, else ⊥") -- there is always exactly one loop_k true. See
// DESIGN.md's Open Question decisions for this simplification.
package trace

import (
	"fmt"
	"sort"

	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/boolform"
	"github.com/kevinawalsh/alloysat/internal/boolmatrix"
	"github.com/kevinawalsh/alloysat/internal/encoder"
	"github.com/kevinawalsh/alloysat/internal/sema"
	"github.com/kevinawalsh/alloysat/internal/universe"
)

// Env is the temporal encoding environment for one command.
type Env struct {
	Base *encoder.Env
	L    int
	Loop []int // Loop[k] is the SAT variable for "the trace loops back to state k"

	// varRel maps a bare var relation name to its qualified bounds name
	// ("Sig" for a var sig, "Sig.field" for a var field), so a fresh
	// per-state matrix can be allocated on demand.
	varRel map[string]string

	// states[s][name], for s>0, holds name's matrix at state s. State 0
	// is never populated here: it falls through to the matrix Base's own
	// NewEnv already built, which is exactly what belongs at the initial
	// state.
	states []map[string]*boolmatrix.Matrix

	cur int
}

// NewEnv builds the trace environment for a module whose sema.Table
// reports Temporal, installing this Env's hooks into base. L is the
// command's resolved step bound (internal/encoder.DefaultSteps when the
// command specifies none).
func NewEnv(base *encoder.Env, tbl *sema.Table, l int) *Env {
	if l < 1 {
		l = 1
	}
	e := &Env{Base: base, L: l, varRel: collectVarRelations(tbl)}
	e.states = make([]map[string]*boolmatrix.Matrix, l)
	for s := 1; s < l; s++ {
		e.states[s] = make(map[string]*boolmatrix.Matrix, len(e.varRel))
		for bare, qualified := range e.varRel {
			m, ok := base.FreshMatrix(qualified)
			if !ok {
				continue
			}
			e.states[s][bare] = m
		}
	}
	e.Loop = make([]int, l)
	for k := range e.Loop {
		e.Loop[k] = base.Builder.NewVar()
	}
	base.AssertFormula(boolform.ExactlyOne(e.Loop))

	base.VarState = func(name string) (*boolmatrix.Matrix, bool) {
		if e.cur == 0 {
			return nil, false
		}
		m, ok := e.states[e.cur][name]
		return m, ok
	}
	base.PrimeHook = e.primeOf
	base.SeqHook = e.seq
	base.TemporalUnaryHook = e.temporalUnary
	base.TemporalBinaryHook = e.temporalBinary
	return e
}

// collectVarRelations finds every var sig and var field, keyed by the
// bare name under which internal/encoder's relation() resolves it. When
// two signatures declare a var field of the same bare name, the first one
// in sorted signature-name order wins, matching relation()'s own
// documented cross-signature bare-name simplification.
func collectVarRelations(tbl *sema.Table) map[string]string {
	var names []string
	for n := range tbl.Sigs {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make(map[string]string)
	for _, n := range names {
		sig := tbl.Sigs[n]
		if sig.Var {
			if _, ok := out[n]; !ok {
				out[n] = n
			}
		}
		for _, f := range sig.Fields {
			if !f.Var {
				continue
			}
			if _, ok := out[f.Name]; !ok {
				out[f.Name] = n + "." + f.Name
			}
		}
	}
	return out
}

func (e *Env) withState(s int, fn func()) {
	prev := e.cur
	e.cur = s
	fn()
	e.cur = prev
}

// FormulaAt encodes expr's truth value at state s.
func (e *Env) FormulaAt(expr ast.Expr, s int, sc *encoder.Scope) *boolform.Formula {
	var f *boolform.Formula
	e.withState(s, func() { f = e.Base.EncodeFormula(expr, sc) })
	return f
}

// ExprAt encodes expr's relation value at state s.
func (e *Env) ExprAt(expr ast.Expr, s int, sc *encoder.Scope) *boolmatrix.Matrix {
	var m *boolmatrix.Matrix
	e.withState(s, func() { m = e.Base.EncodeExpr(expr, sc) })
	return m
}

// primeOf is the PrimeHook: it gives x' its successor-state matrix,
// completing the loop when e.cur is the last state.
func (e *Env) primeOf(x ast.Expr, sc *encoder.Scope) *boolmatrix.Matrix {
	s := e.cur
	if s+1 < e.L {
		return e.ExprAt(x, s+1, sc)
	}
	mats := make([]*boolmatrix.Matrix, e.L)
	for k := 0; k < e.L; k++ {
		mats[k] = e.ExprAt(x, k, sc)
	}
	return weightedUnion(e.Loop, mats)
}

// nextFormula is after's building block: expr's truth value in the state
// that follows s, completing the loop when s is the last state.
func (e *Env) nextFormula(expr ast.Expr, s int, sc *encoder.Scope) *boolform.Formula {
	if s+1 < e.L {
		return e.FormulaAt(expr, s+1, sc)
	}
	terms := make([]*boolform.Formula, e.L)
	for k := 0; k < e.L; k++ {
		terms[k] = boolform.And(boolform.Lit(e.Loop[k]), e.FormulaAt(expr, k, sc))
	}
	return boolform.Or(terms...)
}

// seq is the SeqHook for ';': "x ; y" at s means x holds now and y holds
// in the successor state.
func (e *Env) seq(x, y ast.Expr, sc *encoder.Scope) *boolform.Formula {
	s := e.cur
	return boolform.And(e.FormulaAt(x, s, sc), e.nextFormula(y, s, sc))
}

// weightedUnion pointwise-merges mats under weights: cell t of the result
// is the disjunction, over every state k with a non-false cell, of
// "weights[k] AND mats[k].At(t)". Used for prime completion at the last
// state of the trace (weights are the loop_k literals).
func weightedUnion(weights []int, mats []*boolmatrix.Matrix) *boolmatrix.Matrix {
	out := boolmatrix.New(mats[0].Arity, mats[0].UniverseSize)
	seen := make(map[string]universe.Tuple)
	for _, m := range mats {
		for _, t := range m.Tuples() {
			seen[t.Key()] = t
		}
	}
	for _, t := range seen {
		var terms []*boolform.Formula
		for k, m := range mats {
			cell := m.At(t)
			if cell.Kind == boolform.KindFalse {
				continue
			}
			terms = append(terms, boolform.And(boolform.Lit(weights[k]), cell))
		}
		if len(terms) > 0 {
			out.Set(t, boolform.Or(terms...))
		}
	}
	return out
}

// AssertFacts conjoins every module-level fact and every signature's
// inline appended fact at every state of the trace, reusing
// internal/encoder's own AssertFacts verbatim once per state: the hooks
// installed by NewEnv make var relations resolve to that state's matrix,
// so no trace-specific fact logic is needed here.
func (e *Env) AssertFacts(root *encoder.Scope) {
	for s := 0; s < e.L; s++ {
		e.withState(s, func() { e.Base.AssertFacts(root) })
	}
}

// rangeAnd conjoins expr's truth value over states [lo, hi); an empty
// range is vacuously true.
func (e *Env) rangeAnd(lo, hi int, expr ast.Expr, sc *encoder.Scope) *boolform.Formula {
	var terms []*boolform.Formula
	for i := lo; i < hi; i++ {
		terms = append(terms, e.FormulaAt(expr, i, sc))
	}
	return boolform.And(terms...)
}

// notExpr builds the AST negation of x, used to derive eventually/once/
// releases/triggered from always/historically/until/since by classical
// duality instead of re-deriving four more bounded-lasso formulas by hand.
func notExpr(x ast.Expr) ast.Expr {
	return &ast.Unary{Op: ast.OpNot, X: x}
}

// before is the past counterpart of after: no loop completion, since the
// trace's prefix is finite and the first state has no predecessor.
func (e *Env) before(x ast.Expr, s int, sc *encoder.Scope) *boolform.Formula {
	if s == 0 {
		return boolform.False
	}
	return e.FormulaAt(x, s-1, sc)
}

// always holds at s when x holds for every remaining state of the finite
// prefix and, for whichever state the trace actually loops back to, for
// every state from there through the end of the prefix as well (covering
// the repeated portion of the infinite unrolling).
func (e *Env) always(x ast.Expr, s int, sc *encoder.Scope) *boolform.Formula {
	terms := []*boolform.Formula{e.rangeAnd(s, e.L, x, sc)}
	for k := 0; k < e.L; k++ {
		terms = append(terms, boolform.Implies(boolform.Lit(e.Loop[k]), e.rangeAnd(k, e.L, x, sc)))
	}
	return boolform.And(terms...)
}

// historically holds at s when x has held at every state from the start
// of the trace through s; the past is always just the finite prefix, loop
// or no loop.
func (e *Env) historically(x ast.Expr, s int, sc *encoder.Scope) *boolform.Formula {
	return e.rangeAnd(0, s+1, x, sc)
}

// until holds at s when y holds at some state j reachable from s (in the
// finite prefix, or after wrapping around the loop) with x holding at
// every state from s up to, but not including, j.
func (e *Env) until(x, y ast.Expr, s int, sc *encoder.Scope) *boolform.Formula {
	var terms []*boolform.Formula
	for j := s; j < e.L; j++ {
		terms = append(terms, boolform.And(e.FormulaAt(y, j, sc), e.rangeAnd(s, j, x, sc)))
	}
	prefixHolds := e.rangeAnd(s, e.L, x, sc)
	for k := 0; k < e.L; k++ {
		var wrapTerms []*boolform.Formula
		for j := k; j < e.L; j++ {
			wrapTerms = append(wrapTerms, boolform.And(e.FormulaAt(y, j, sc), e.rangeAnd(k, j, x, sc)))
		}
		terms = append(terms, boolform.And(boolform.Lit(e.Loop[k]), prefixHolds, boolform.Or(wrapTerms...)))
	}
	return boolform.Or(terms...)
}

// since holds at s when y held at some state j in [0,s] with x holding at
// every state after j up to and including s; purely a finite backward scan, no
// loop completion needed.
func (e *Env) since(x, y ast.Expr, s int, sc *encoder.Scope) *boolform.Formula {
	var terms []*boolform.Formula
	for j := 0; j <= s; j++ {
		terms = append(terms, boolform.And(e.FormulaAt(y, j, sc), e.rangeAnd(j+1, s+1, x, sc)))
	}
	return boolform.Or(terms...)
}

// temporalUnary dispatches the single-operand LTL operators, deriving
// eventually and once from always and historically by negation duality
// (eventually x == not(always(not x)), and symmetrically for once).
func (e *Env) temporalUnary(op ast.TemporalUnaryOp, x ast.Expr, sc *encoder.Scope) *boolform.Formula {
	s := e.cur
	switch op {
	case ast.TAfter:
		return e.nextFormula(x, s, sc)
	case ast.TBefore:
		return e.before(x, s, sc)
	case ast.TAlways:
		return e.always(x, s, sc)
	case ast.TEventually:
		return boolform.Not(e.always(notExpr(x), s, sc))
	case ast.THistorically:
		return e.historically(x, s, sc)
	case ast.TOnce:
		return boolform.Not(e.historically(notExpr(x), s, sc))
	}
	panic(fmt.Sprintf("trace: unsupported temporal unary operator %v", op))
}

// temporalBinary dispatches the two-operand LTL operators, deriving
// releases and triggered from until and since by negation duality
// ("x releases y" == not(not x until not y), and symmetrically for
// triggered).
func (e *Env) temporalBinary(op ast.TemporalBinaryOp, x, y ast.Expr, sc *encoder.Scope) *boolform.Formula {
	s := e.cur
	switch op {
	case ast.TUntil:
		return e.until(x, y, s, sc)
	case ast.TReleases:
		return boolform.Not(e.until(notExpr(x), notExpr(y), s, sc))
	case ast.TSince:
		return e.since(x, y, s, sc)
	case ast.TTriggered:
		return boolform.Not(e.since(notExpr(x), notExpr(y), s, sc))
	}
	panic(fmt.Sprintf("trace: unsupported temporal binary operator %v", op))
}

// Relation resolves name's matrix at state s, reusing the base Env's
// ordinary resolution under the hook seam: a var relation's per-state
// matrix when s>0, the matrix the base Env itself built for a static
// relation or for state 0 of a var one.
func (e *Env) Relation(name string, s int) (*boolmatrix.Matrix, bool) {
	var m *boolmatrix.Matrix
	var ok bool
	e.withState(s, func() { m, ok = e.Base.Relation(name) })
	return m, ok
}

// EncodeCommand asserts the background facts (at every state) plus cmd's
// own target, evaluated at the initial state (state 0): a run command's
// body must hold there, a check command's assertion is negated there, and
// any always/eventually/until/etc. inside the body is what gives it reach
// over the rest of the trace.
func (e *Env) EncodeCommand(cmd *ast.Command, root *encoder.Scope) error {
	e.AssertFacts(root)
	body, err := e.Base.CommandBody(cmd)
	if err != nil {
		return err
	}
	f := e.FormulaAt(body, 0, root)
	if cmd.Kind == ast.CmdCheck {
		f = boolform.Not(f)
	}
	e.Base.AssertFormula(f)
	return nil
}
