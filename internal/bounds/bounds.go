// Package bounds implements per-relation lower/upper tuple-set bounds and
// the fluent builder used to assemble them from a command's scope.
package bounds

import (
	"fmt"

	"github.com/kevinawalsh/alloysat/internal/universe"
)

// Relation is a constant lower ⊆ upper tuple-set pair of equal arity.
type Relation struct {
	Name  string
	Lower *universe.TupleSet
	Upper *universe.TupleSet
}

// Exact reports whether lower equals upper (a fixed relation).
func (r Relation) Exact() bool {
	if r.Lower.Len() != r.Upper.Len() {
		return false
	}
	for _, t := range r.Lower.Tuples() {
		if !r.Upper.Contains(t) {
			return false
		}
	}
	return true
}

// Free is the number of tuples that may independently vary: |upper|-|lower|.
func (r Relation) Free() int { return r.Upper.Len() - r.Lower.Len() }

// Bounds is an immutable collection of relation bounds over one universe.
type Bounds struct {
	Universe  *universe.Universe
	relations map[string]Relation
}

// Lookup returns the bounds for name, or false if not bound.
func (b *Bounds) Lookup(name string) (Relation, bool) {
	r, ok := b.relations[name]
	return r, ok
}

// Names returns every bound relation name, in insertion order is not
// guaranteed; callers that need determinism should sort.
func (b *Bounds) Names() []string {
	out := make([]string, 0, len(b.relations))
	for n := range b.relations {
		out = append(out, n)
	}
	return out
}

// Builder assembles a Bounds value fluently, then Build() freezes it.
type Builder struct {
	u   *universe.Universe
	rel map[string]Relation
	err error
}

// NewBuilder starts a bounds builder over u.
func NewBuilder(u *universe.Universe) *Builder {
	return &Builder{u: u, rel: make(map[string]Relation)}
}

func (b *Builder) fail(format string, args ...any) *Builder {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
	return b
}

// Exact fixes name to exactly the given tuples (lower == upper).
func (b *Builder) Exact(name string, arity int, tuples []universe.Tuple) *Builder {
	ts := universe.NewTupleSet(arity, tuples)
	b.rel[name] = Relation{Name: name, Lower: ts, Upper: ts}
	return b
}

// Upper bounds name above by the given tuples, with an empty lower bound.
func (b *Builder) Upper(name string, arity int, tuples []universe.Tuple) *Builder {
	b.rel[name] = Relation{Name: name, Lower: universe.Empty(arity), Upper: universe.NewTupleSet(arity, tuples)}
	return b
}

// Range sets both an explicit lower and upper bound for name.
func (b *Builder) Range(name string, arity int, lower, upper []universe.Tuple) *Builder {
	lo := universe.NewTupleSet(arity, lower)
	up := universe.NewTupleSet(arity, upper)
	for _, t := range lo.Tuples() {
		if !up.Contains(t) {
			return b.fail("bounds: lower bound of %s is not a subset of its upper bound", name)
		}
	}
	b.rel[name] = Relation{Name: name, Lower: lo, Upper: up}
	return b
}

// Unary is shorthand for a unary relation's upper bound: every atom.
func (b *Builder) Unary(name string, atomIndices []int) *Builder {
	tuples := make([]universe.Tuple, len(atomIndices))
	for i, a := range atomIndices {
		tuples[i] = universe.Tuple{a}
	}
	return b.Upper(name, 1, tuples)
}

// Binary is shorthand for a binary relation's upper bound: the full
// product of two atom-index lists.
func (b *Builder) Binary(name string, left, right []int) *Builder {
	var tuples []universe.Tuple
	for _, l := range left {
		for _, r := range right {
			tuples = append(tuples, universe.Tuple{l, r})
		}
	}
	return b.Upper(name, 2, tuples)
}

// Ternary is shorthand for a ternary relation's upper bound: the full
// product of three atom-index lists.
func (b *Builder) Ternary(name string, a, bb, c []int) *Builder {
	var tuples []universe.Tuple
	for _, x := range a {
		for _, y := range bb {
			for _, z := range c {
				tuples = append(tuples, universe.Tuple{x, y, z})
			}
		}
	}
	return b.Upper(name, 3, tuples)
}

// Build freezes the builder into an immutable Bounds, or returns the first
// error encountered.
func (b *Builder) Build() (*Bounds, error) {
	if b.err != nil {
		return nil, b.err
	}
	rel := make(map[string]Relation, len(b.rel))
	for k, v := range b.rel {
		rel[k] = v
	}
	return &Bounds{Universe: b.u, relations: rel}, nil
}
