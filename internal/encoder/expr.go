package encoder

import (
	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/boolform"
	"github.com/kevinawalsh/alloysat/internal/boolmatrix"
	"github.com/kevinawalsh/alloysat/internal/universe"
)

// EncodeExpr lowers a relational (set-valued) expression to a boolmatrix.
// It panics with *EncodingError if e turns out to be formula-only; callers
// at the top level should recover via a helper or simply trust the
// sema-checked AST shape, matching the teacher's "Check gates everything
// downstream" contract.
func (e *Env) EncodeExpr(expr ast.Expr, sc *Scope) *boolmatrix.Matrix {
	switch x := expr.(type) {
	case *ast.Ident:
		if m, ok := sc.lookup(x.Name); ok {
			return m
		}
		if m, ok := e.relation(x.Name); ok {
			return m
		}
		panicf("unresolved relation name %q", x.Name)
	case *ast.Builtin:
		switch x.Kind {
		case ast.BuiltinUniv:
			return e.allAtomsMatrix()
		case ast.BuiltinNone:
			return boolmatrix.New(1, e.universeSize())
		case ast.BuiltinIden:
			return e.identityMatrix()
		case ast.BuiltinThis:
			if m, ok := sc.lookup("this"); ok {
				return m
			}
			panicf("'this' used outside a receiver method body")
		case ast.BuiltinInt:
			panicf("bare Int sig reference is not supported outside sum/comparison contexts")
		}
	case *ast.Unary:
		switch x.Op {
		case ast.OpTranspose:
			return boolmatrix.Transpose(e.EncodeExpr(x.X, sc))
		case ast.OpClosure:
			return boolmatrix.TransitiveClosure(e.EncodeExpr(x.X, sc))
		case ast.OpRefClosure:
			return boolmatrix.ReflexiveTransitiveClosure(e.EncodeExpr(x.X, sc), e.Bounds.Universe.Atoms())
		case ast.OpPrime:
			// A plain (non-temporal) encoder has no next-state notion;
			// internal/trace installs PrimeHook to give "x'" its real
			// successor-state meaning.
			if e.PrimeHook != nil {
				return e.PrimeHook(x.X, sc)
			}
			return e.EncodeExpr(x.X, sc)
		}
		panicf("unary operator %v is formula-valued, not relation-valued", x.Op)
	case *ast.Binary:
		switch x.Op {
		case ast.OpJoin:
			return boolmatrix.Join(e.EncodeExpr(x.X, sc), e.EncodeExpr(x.Y, sc))
		case ast.OpArrow:
			return boolmatrix.Product(e.EncodeExpr(x.X, sc), e.EncodeExpr(x.Y, sc))
		case ast.OpUnion:
			return boolmatrix.Union(e.EncodeExpr(x.X, sc), e.EncodeExpr(x.Y, sc))
		case ast.OpDiff:
			return boolmatrix.Diff(e.EncodeExpr(x.X, sc), e.EncodeExpr(x.Y, sc))
		case ast.OpInter:
			return boolmatrix.Intersect(e.EncodeExpr(x.X, sc), e.EncodeExpr(x.Y, sc))
		case ast.OpOverride:
			return boolmatrix.Override(e.EncodeExpr(x.X, sc), e.EncodeExpr(x.Y, sc))
		case ast.OpDomRes:
			return boolmatrix.Domain(e.EncodeExpr(x.Y, sc), e.EncodeExpr(x.X, sc))
		case ast.OpRanRes:
			return boolmatrix.Range(e.EncodeExpr(x.X, sc), e.EncodeExpr(x.Y, sc))
		}
		panicf("binary operator %v is formula-valued, not relation-valued", x.Op)
	case *ast.ArrowType:
		// Multiplicity decorations on an arrow type are only meaningful as
		// a field/decl bound, already consumed by internal/encoder/scope.go
		// when building the bounds; as a bare expression it denotes the
		// plain product.
		return boolmatrix.Product(e.EncodeExpr(x.X, sc), e.EncodeExpr(x.Y, sc))
	case *ast.Paren:
		return e.EncodeExpr(x.X, sc)
	case *ast.IfExpr:
		cond := e.EncodeFormula(x.Cond, sc)
		then := e.EncodeExpr(x.Then, sc)
		els := e.EncodeExpr(x.Else, sc)
		return iteMatrix(cond, then, els, e.universeSize())
	case *ast.LetExpr:
		inner := NewScope(sc)
		for _, b := range x.Bindings {
			inner.bind(b.Name, e.EncodeExpr(b.Value, sc))
		}
		return e.EncodeExpr(x.Body, inner)
	case *ast.Block:
		if len(x.Exprs) == 1 {
			return e.EncodeExpr(x.Exprs[0], sc)
		}
		panicf("multi-expression block is formula-valued, not relation-valued")
	case *ast.Call:
		return e.invokeExpr(x, sc)
	case *ast.Comprehension:
		return e.encodeComprehension(x, sc)
	}
	panicf("unsupported relation-valued expression %T", expr)
	return nil
}

// iteMatrix pointwise-merges then/els under cond, over the union of
// tuples either side could produce.
func iteMatrix(cond *boolform.Formula, then, els *boolmatrix.Matrix, universeSize int) *boolmatrix.Matrix {
	arity := then.Arity
	out := boolmatrix.New(arity, universeSize)
	seen := make(map[string]bool)
	for _, t := range then.Tuples() {
		out.Set(t, boolform.Ite(cond, then.At(t), els.At(t)))
		seen[t.Key()] = true
	}
	for _, t := range els.Tuples() {
		if seen[t.Key()] {
			continue
		}
		out.Set(t, boolform.Ite(cond, then.At(t), els.At(t)))
	}
	return out
}

// comboTerm is one fully-instantiated quantifier/comprehension binding:
// the chosen tuple per declared name plus the conjoined domain-membership
// formula ("is this combination actually present").
type comboTerm struct {
	names     []string
	bindings  map[string]universe.Tuple
	indicator *boolform.Formula
}

func cloneBindings(m map[string]universe.Tuple) map[string]universe.Tuple {
	out := make(map[string]universe.Tuple, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// enumerateCombos expands decls into every candidate binding, in
// declaration order, folding each successive decl's domain against the
// combinations built so far. Names sharing one VarDecl range
// independently over the same domain unless Disj requires pairwise
// distinctness.
func (e *Env) enumerateCombos(decls []ast.VarDecl, sc *Scope) []comboTerm {
	combos := []comboTerm{{bindings: map[string]universe.Tuple{}, indicator: boolform.True}}
	for _, d := range decls {
		domain := e.EncodeExpr(d.Type, sc)
		cands := domain.Tuples()
		var next []comboTerm
		for _, combo := range combos {
			for _, assign := range cartesianAssignments(d.Names, cands, d.Disj) {
				nb := cloneBindings(combo.bindings)
				ind := combo.indicator
				var names []string
				names = append(names, combo.names...)
				for _, nm := range d.Names {
					t := assign[nm]
					nb[nm] = t
					ind = boolform.And(ind, domain.At(t))
					names = append(names, nm)
				}
				next = append(next, comboTerm{names: names, bindings: nb, indicator: ind})
			}
		}
		combos = next
	}
	return combos
}

// cartesianAssignments enumerates every way to assign each of names a
// candidate tuple (independently), optionally excluding assignments that
// repeat a candidate across names (disj).
func cartesianAssignments(names []string, cands []universe.Tuple, disj bool) []map[string]universe.Tuple {
	if len(names) == 0 {
		return []map[string]universe.Tuple{{}}
	}
	var rec func(i int, cur map[string]universe.Tuple) []map[string]universe.Tuple
	rec = func(i int, cur map[string]universe.Tuple) []map[string]universe.Tuple {
		if i == len(names) {
			return []map[string]universe.Tuple{cloneBindings(cur)}
		}
		var out []map[string]universe.Tuple
		for _, c := range cands {
			if disj {
				dup := false
				for j := 0; j < i; j++ {
					if cur[names[j]].Equal(c) {
						dup = true
						break
					}
				}
				if dup {
					continue
				}
			}
			cur[names[i]] = c
			out = append(out, rec(i+1, cur)...)
		}
		return out
	}
	return rec(0, map[string]universe.Tuple{})
}

func (e *Env) scopeWithCombo(sc *Scope, combo comboTerm) *Scope {
	inner := NewScope(sc)
	for nm, t := range combo.bindings {
		inner.bind(nm, boolmatrix.Constant(universe.NewTupleSet(t.Arity(), []universe.Tuple{t}), e.universeSize()))
	}
	return inner
}

// encodeComprehension lowers "{ decls | body }" to the matrix whose
// tuples are exactly the name-ordered concatenation of each combo's
// (single-atom) bindings, each tagged with indicator & body.
func (e *Env) encodeComprehension(c *ast.Comprehension, sc *Scope) *boolmatrix.Matrix {
	combos := e.enumerateCombos(c.Decls, sc)
	arity := 0
	for _, d := range c.Decls {
		arity += len(d.Names)
	}
	out := boolmatrix.New(arity, e.universeSize())
	for _, combo := range combos {
		var t universe.Tuple
		for _, nm := range combo.names {
			bt := combo.bindings[nm]
			t = append(t, bt...)
		}
		inner := e.scopeWithCombo(sc, combo)
		body := e.EncodeFormula(c.Body, inner)
		out.Set(t, boolform.And(combo.indicator, body))
	}
	return out
}
