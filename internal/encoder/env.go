// Package encoder translates a type-checked Alloy module (internal/ast +
// internal/sema) into a boolean satisfiability problem: it walks formula
// and relational-expression nodes, building internal/boolmatrix matrices
// for set-valued expressions and internal/boolform formulas for
// boolean-valued ones, resolving names against the elaborated
// internal/bounds relation bounds rather than re-deriving types itself
// (per DESIGN.md's sema type-attachment scope decision).
package encoder

import (
	"fmt"
	"sort"

	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/boolform"
	"github.com/kevinawalsh/alloysat/internal/boolmatrix"
	"github.com/kevinawalsh/alloysat/internal/bounds"
	"github.com/kevinawalsh/alloysat/internal/sema"
	"github.com/kevinawalsh/alloysat/internal/universe"
)

// DefaultIntWidth is the bit width used for the "sum"/integer comparison subset
// (two's complement, wraparound on overflow, matching Alloy's own bounded
// Int semantics). See DESIGN.md's integer-bit-width Open Question
// decision for the documented default of 4 when a command specifies none.
const DefaultIntWidth = 4

// Env is the encoding environment for one command: the elaborated bounds,
// the formula builder that allocates and memoizes SAT variables, the
// resolved symbol table, and the per-relation matrices built from bounds.
type Env struct {
	Bounds   *bounds.Bounds
	Builder  *boolform.Builder
	Table    *sema.Table
	IntWidth int

	rel map[string]*boolmatrix.Matrix

	// The following hooks are nil for a plain (non-temporal) command and
	// installed once by internal/trace for a temporal one. They are the
	// only seam between the two packages: everything else about
	// relational-operator lowering is identical in both cases.

	// VarState resolves a bare sig or field name to its matrix for
	// whichever state internal/trace is currently encoding, when that
	// name denotes a "var" relation. Consulted before the ordinary
	// (static) resolution in relation(); returning false falls through.
	VarState func(name string) (*boolmatrix.Matrix, bool)

	// PrimeHook gives "x'" its successor-state meaning; see OpPrime in
	// expr.go.
	PrimeHook func(x ast.Expr, sc *Scope) *boolmatrix.Matrix

	// TemporalUnaryHook and TemporalBinaryHook lower the LTL operators
	// (after/always/eventually/historically/once and
	// until/releases/since/triggered) reached via EncodeFormula.
	TemporalUnaryHook  func(op ast.TemporalUnaryOp, x ast.Expr, sc *Scope) *boolform.Formula
	TemporalBinaryHook func(op ast.TemporalBinaryOp, x, y ast.Expr, sc *Scope) *boolform.Formula

	// SeqHook gives the ';' formula operator genuine state-sequencing
	// meaning ("x holds now, y holds in the successor state") instead of
	// the plain encoder's conjunction fallback.
	SeqHook func(x, y ast.Expr, sc *Scope) *boolform.Formula
}

// Scope binds quantifier/let/parameter names to relation matrices
// during expression encoding; distinct from sema's type-only scope.
type Scope struct {
	parent *Scope
	vals   map[string]*boolmatrix.Matrix
}

func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vals: make(map[string]*boolmatrix.Matrix)}
}

func (s *Scope) bind(name string, m *boolmatrix.Matrix) { s.vals[name] = m }

func (s *Scope) lookup(name string) (*boolmatrix.Matrix, bool) {
	for c := s; c != nil; c = c.parent {
		if m, ok := c.vals[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// NewEnv builds the encoding environment for b, allocating one SAT
// variable per free tuple of every bound relation (fields are bound under
// "Sig.field", sig membership under the bare sig name) and memoizing the
// resulting matrices, in sorted relation-name order for determinism.
func NewEnv(b *bounds.Bounds, tbl *sema.Table) *Env {
	e := &Env{Bounds: b, Builder: boolform.NewBuilder(1), Table: tbl, IntWidth: DefaultIntWidth, rel: make(map[string]*boolmatrix.Matrix)}
	names := b.Names()
	sort.Strings(names)
	uSize := b.Universe.Len()
	for _, name := range names {
		r, _ := b.Lookup(name)
		free := freeTuples(r)
		e.rel[name] = boolmatrix.FromVars(r.Upper.Arity(), uSize, r.Lower, free, e.Builder.NewVar)
	}
	return e
}

// freeTuples returns r's upper-bound tuples not already fixed by its
// lower bound, in canonical order.
func freeTuples(r bounds.Relation) []universe.Tuple {
	var out []universe.Tuple
	for _, t := range r.Upper.Tuples() {
		if !r.Lower.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}

// relation resolves a bare name to its matrix: signature membership first
// (concrete sigs come straight from the bounds-derived matrix; abstract
// sigs, including enum names, are synthesized as the union of their
// concrete descendants), then fields looked up by bare name across every
// signature (Alloy disambiguates receiver-qualified names at parse time;
// unqualified cross-signature field collisions are a documented
// simplification -- the first declaring signature in symbol-table
// iteration order wins).
func (e *Env) relation(name string) (*boolmatrix.Matrix, bool) {
	if e.VarState != nil {
		if m, ok := e.VarState(name); ok {
			return m, true
		}
	}
	if _, ok := e.Table.Sigs[name]; ok {
		return e.sigMatrix(name), true
	}
	for sigName, sig := range e.Table.Sigs {
		for _, f := range sig.Fields {
			if f.Name == name {
				if m, ok := e.rel[sigName+"."+f.Name]; ok {
					return m, true
				}
			}
		}
	}
	return nil, false
}

// Relation resolves a bare signature or field name to its matrix, the
// same way expression encoding resolves an Ident; exported so
// internal/instance can walk every declared relation's matrix once a
// model is in hand.
func (e *Env) Relation(name string) (*boolmatrix.Matrix, bool) {
	return e.relation(name)
}

// sigMatrix returns (memoizing) the membership matrix for a signature
// name: concrete signatures already have one built by NewEnv from the
// elaborated bounds; abstract signatures (whose atoms were never
// allocated -- see internal/encoder/scope.go) are the union of whichever
// direct children are themselves resolvable, recursively.
func (e *Env) sigMatrix(name string) *boolmatrix.Matrix {
	if m, ok := e.rel[name]; ok {
		return m
	}
	var acc *boolmatrix.Matrix
	for childName, child := range e.Table.Sigs {
		if child.Extends != name {
			continue
		}
		cm := e.sigMatrix(childName)
		if acc == nil {
			acc = cm
		} else {
			acc = boolmatrix.Union(acc, cm)
		}
	}
	if acc == nil {
		acc = boolmatrix.New(1, e.universeSize())
	}
	e.rel[name] = acc
	return acc
}

func (e *Env) universeSize() int { return e.Bounds.Universe.Len() }

// FreshMatrix allocates an independent matrix of brand-new SAT variables
// for name's elaborated bounds, ignoring any matrix already memoized for
// name. internal/trace calls this once per state for every "var"
// signature/field, since each state's membership is an independent
// unknown even though all states share the same declared bounds.
func (e *Env) FreshMatrix(name string) (*boolmatrix.Matrix, bool) {
	r, ok := e.Bounds.Lookup(name)
	if !ok {
		return nil, false
	}
	free := freeTuples(r)
	return boolmatrix.FromVars(r.Upper.Arity(), e.universeSize(), r.Lower, free, e.Builder.NewVar), true
}

func (e *Env) allAtomsMatrix() *boolmatrix.Matrix {
	atoms := e.Bounds.Universe.Atoms()
	ts := make([]universe.Tuple, len(atoms))
	for i, a := range atoms {
		ts[i] = universe.Tuple{a.Index}
	}
	return boolmatrix.Constant(universe.NewTupleSet(1, ts), e.universeSize())
}

func (e *Env) identityMatrix() *boolmatrix.Matrix {
	atoms := e.Bounds.Universe.Atoms()
	return boolmatrix.Constant(universe.Identity(atoms), e.universeSize())
}

// EncodingError reports an internal encoder invariant violation: an
// expression shape the encoder does not support reaching a context where
// it was nonetheless asked to encode it (e.g. a relational operator
// reached via EncodeFormula, or a formula-only operator reached via
// EncodeExpr).
type EncodingError struct {
	What string
}

func (e *EncodingError) Error() string { return "encoder: " + e.What }

func panicf(format string, args ...any) {
	panic(&EncodingError{What: fmt.Sprintf(format, args...)})
}
