// Package boolmatrix implements arity-k boolean matrices: maps from tuples
// over a fixed universe to boolform.Formula values, plus the relational
// combinators (union, join, transpose, closure, restriction, override)
// that the encoder composes to translate Alloy relational expressions into
// boolean formulas over a tuple's membership variables.
package boolmatrix

import (
	"fmt"

	"github.com/kevinawalsh/alloysat/internal/boolform"
	"github.com/kevinawalsh/alloysat/internal/universe"
)

// Matrix maps every tuple of a fixed arity over a fixed universe size to a
// membership formula. Tuples absent from the map are implicitly
// boolform.False (never in the relation).
type Matrix struct {
	Arity        int
	UniverseSize int
	cells        map[string]*boolform.Formula
}

// New returns the all-false matrix of the given arity.
func New(arity, universeSize int) *Matrix {
	return &Matrix{Arity: arity, UniverseSize: universeSize, cells: make(map[string]*boolform.Formula)}
}

// Set assigns f as the membership formula for tuple t, which must have the
// matrix's arity.
func (m *Matrix) Set(t universe.Tuple, f *boolform.Formula) {
	if t.Arity() != m.Arity {
		panic(fmt.Sprintf("boolmatrix: tuple arity %d does not match matrix arity %d", t.Arity(), m.Arity))
	}
	if f.Kind == boolform.KindFalse {
		delete(m.cells, t.Key())
		return
	}
	m.cells[t.Key()] = f
}

// At returns the membership formula for t, defaulting to False.
func (m *Matrix) At(t universe.Tuple) *boolform.Formula {
	if f, ok := m.cells[t.Key()]; ok {
		return f
	}
	return boolform.False
}

// Tuples returns every tuple with a non-False formula. Order is
// unspecified; callers needing determinism should sort by universe.Tuple.Less.
func (m *Matrix) Tuples() []universe.Tuple {
	out := make([]universe.Tuple, 0, len(m.cells))
	for k := range m.cells {
		out = append(out, parseKey(k))
	}
	return out
}

func parseKey(k string) universe.Tuple {
	if k == "" {
		return universe.Tuple{}
	}
	var t universe.Tuple
	cur := 0
	neg := false
	started := false
	flush := func() {
		if started {
			if neg {
				cur = -cur
			}
			t = append(t, cur)
		}
		cur, neg, started = 0, false, false
	}
	for _, r := range k {
		switch {
		case r == ',':
			flush()
		case r == '-':
			neg = true
			started = true
		default:
			cur = cur*10 + int(r-'0')
			started = true
		}
	}
	flush()
	return t
}

// Constant returns a Matrix whose membership formulas are boolform.True for
// exactly the tuples in ts and False elsewhere: the encoding of a fixed
// (fully-bound) relation.
func Constant(ts *universe.TupleSet, universeSize int) *Matrix {
	m := New(ts.Arity(), universeSize)
	for _, t := range ts.Tuples() {
		m.Set(t, boolform.True)
	}
	return m
}

// FromVars builds a Matrix over the given free tuples (the candidate
// tuples allowed by a relation's bounds, i.e. upper−lower), assigning each
// one a distinct SAT variable via nextVar, plus forces every tuple in
// fixed to True. nextVar is called once per free tuple, in the tuple's
// canonical order, and its returned values are used as the variable
// numbers (so callers control variable allocation order).
func FromVars(arity, universeSize int, fixed *universe.TupleSet, free []universe.Tuple, nextVar func() int) *Matrix {
	m := New(arity, universeSize)
	for _, t := range fixed.Tuples() {
		m.Set(t, boolform.True)
	}
	for _, t := range free {
		m.Set(t, boolform.Lit(nextVar()))
	}
	return m
}

// Union returns the pointwise disjunction of a and b.
func Union(a, b *Matrix) *Matrix {
	checkArity(a, b)
	out := New(a.Arity, a.UniverseSize)
	seen := make(map[string]bool)
	for k, fa := range a.cells {
		fb := boolform.False
		if v, ok := b.cells[k]; ok {
			fb = v
		}
		out.cells[k] = boolform.Or(fa, fb)
		seen[k] = true
	}
	for k, fb := range b.cells {
		if seen[k] {
			continue
		}
		out.cells[k] = fb
	}
	return out
}

// Intersect returns the pointwise conjunction of a and b.
func Intersect(a, b *Matrix) *Matrix {
	checkArity(a, b)
	out := New(a.Arity, a.UniverseSize)
	for k, fa := range a.cells {
		if fb, ok := b.cells[k]; ok {
			out.cells[k] = boolform.And(fa, fb)
		}
	}
	return out
}

// Diff returns the pointwise "a and not b".
func Diff(a, b *Matrix) *Matrix {
	checkArity(a, b)
	out := New(a.Arity, a.UniverseSize)
	for k, fa := range a.cells {
		fb := boolform.False
		if v, ok := b.cells[k]; ok {
			fb = v
		}
		out.cells[k] = boolform.And(fa, boolform.Not(fb))
	}
	return out
}

// Override returns a++b: (a,b) |-> M_b(a,b) or (M_a(a,b) and not-exists b'.
// M_b(a,b')), matching the relational override semantics where b wins over
// a for every first-column atom b actually binds something to -- computed
// as a formula over b's membership, not mere structural cell presence, so
// a free (not-yet-determined) b tuple correctly suppresses a's tuple only
// in the models where that tuple is chosen.
func Override(a, b *Matrix) *Matrix {
	checkArity(a, b)
	exists := make(map[int]*boolform.Formula) // a's first column atom -> "b binds something here"
	byFirst := make(map[int][]*boolform.Formula)
	for k, fb := range b.cells {
		t := parseKey(k)
		byFirst[t[0]] = append(byFirst[t[0]], fb)
	}
	for first, fs := range byFirst {
		exists[first] = boolform.Or(fs...)
	}
	out := New(a.Arity, a.UniverseSize)
	for k, fa := range a.cells {
		t := parseKey(k)
		ex, ok := exists[t[0]]
		if !ok {
			out.cells[k] = fa
			continue
		}
		out.cells[k] = boolform.And(fa, boolform.Not(ex))
	}
	for k, fb := range b.cells {
		if existing, ok := out.cells[k]; ok {
			out.cells[k] = boolform.Or(existing, fb)
		} else {
			out.cells[k] = fb
		}
	}
	return out
}

// Transpose swaps the two columns of a binary matrix.
func Transpose(a *Matrix) *Matrix {
	if a.Arity != 2 {
		panic("boolmatrix: transpose requires arity 2")
	}
	out := New(2, a.UniverseSize)
	for k, f := range a.cells {
		t := parseKey(k)
		out.cells[universe.Tuple{t[1], t[0]}.Key()] = f
	}
	return out
}

// Product returns the cross product a×b: every formula is the conjunction
// of the contributing cells.
func Product(a, b *Matrix) *Matrix {
	out := New(a.Arity+b.Arity, a.UniverseSize)
	for ka, fa := range a.cells {
		ta := parseKey(ka)
		for kb, fb := range b.cells {
			tb := parseKey(kb)
			out.cells[ta.Concat(tb).Key()] = boolform.And(fa, fb)
		}
	}
	return out
}

// Join returns a.b, joining on a's last column against b's first column:
// the formula for the joined tuple is the disjunction, over every matching
// middle atom m, of (a[...,m] & b[m,...]).
func Join(a, b *Matrix) *Matrix {
	if a.Arity < 1 || b.Arity < 1 {
		panic("boolmatrix: join requires both operands to have arity >= 1")
	}
	out := New(a.Arity+b.Arity-2, a.UniverseSize)
	acc := make(map[string][]*boolform.Formula)
	for ka, fa := range a.cells {
		ta := parseKey(ka)
		last := ta[len(ta)-1]
		prefix := universe.Tuple(ta[:len(ta)-1])
		for kb, fb := range b.cells {
			tb := parseKey(kb)
			if tb[0] != last {
				continue
			}
			suffix := universe.Tuple(tb[1:])
			key := prefix.Concat(suffix).Key()
			acc[key] = append(acc[key], boolform.And(fa, fb))
		}
	}
	for k, fs := range acc {
		out.cells[k] = boolform.Or(fs...)
	}
	return out
}

// Domain restricts a to tuples whose first column is in s (a unary
// matrix): s <: a.
func Domain(a, s *Matrix) *Matrix {
	if s.Arity != 1 {
		panic("boolmatrix: domain restriction requires a unary right operand")
	}
	out := New(a.Arity, a.UniverseSize)
	for k, fa := range a.cells {
		t := parseKey(k)
		fs := s.At(universe.Tuple{t[0]})
		out.cells[k] = boolform.And(fa, fs)
	}
	return out
}

// Range restricts a to tuples whose last column is in s: a :> s.
func Range(a, s *Matrix) *Matrix {
	if s.Arity != 1 {
		panic("boolmatrix: range restriction requires a unary right operand")
	}
	out := New(a.Arity, a.UniverseSize)
	for k, fa := range a.cells {
		t := parseKey(k)
		fs := s.At(universe.Tuple{t[len(t)-1]})
		out.cells[k] = boolform.And(fa, fs)
	}
	return out
}

// TransitiveClosure computes r+ over a binary matrix by repeated squaring,
// mirroring universe.TransitiveClosure's round structure but combining
// formulas (via Or) instead of merging sorted tuple sets.
func TransitiveClosure(r *Matrix) *Matrix {
	if r.Arity != 2 {
		panic("boolmatrix: transitive closure requires arity 2")
	}
	rounds := ceilLog2(r.UniverseSize)
	acc := r
	cur := r
	for i := 0; i < rounds; i++ {
		sq := Join(cur, cur)
		acc = Union(acc, sq)
		cur = Union(cur, sq)
	}
	return acc
}

// ReflexiveTransitiveClosure is TransitiveClosure(r) unioned with the
// identity matrix over atoms.
func ReflexiveTransitiveClosure(r *Matrix, atoms []universe.Atom) *Matrix {
	tc := TransitiveClosure(r)
	id := New(2, r.UniverseSize)
	for _, a := range atoms {
		id.Set(universe.Tuple{a.Index, a.Index}, boolform.True)
	}
	return Union(tc, id)
}

func ceilLog2(n int) int {
	if n < 2 {
		return 1
	}
	rounds := 0
	for (1 << rounds) < n {
		rounds++
	}
	return rounds
}

func checkArity(a, b *Matrix) {
	if a.Arity != b.Arity {
		panic(fmt.Sprintf("boolmatrix: arity mismatch %d != %d", a.Arity, b.Arity))
	}
}
