// Package universe implements the finite atom universe and tuple-set
// algebra that the relational encoder runs over: an ordered sequence of
// distinct atoms, fixed-arity tuples built from them, and set operations
// (union, intersection, difference, join, transpose, closure, product)
// over sorted tuple-sets.
package universe

import (
	"fmt"
	"sort"
	"strings"
)

// Atom is a single universe element, identified by a stable name and its
// position in the universe's ordering (used for canonical tuple sorting).
type Atom struct {
	Name  string
	Index int
}

func (a Atom) String() string { return a.Name }

// Universe is an ordered sequence of distinct atoms.
type Universe struct {
	atoms   []Atom
	byName  map[string]int
}

// New builds a Universe from a list of distinct names, in the given order.
func New(names []string) *Universe {
	u := &Universe{byName: make(map[string]int, len(names))}
	for _, n := range names {
		u.atoms = append(u.atoms, Atom{Name: n, Index: len(u.atoms)})
		u.byName[n] = len(u.atoms) - 1
	}
	return u
}

// Len reports the number of atoms in the universe.
func (u *Universe) Len() int { return len(u.atoms) }

// Atom returns the atom at position i.
func (u *Universe) Atom(i int) Atom { return u.atoms[i] }

// Atoms returns all atoms in index order. The returned slice is owned by
// the caller.
func (u *Universe) Atoms() []Atom {
	out := make([]Atom, len(u.atoms))
	copy(out, u.atoms)
	return out
}

// Lookup resolves an atom name to its Atom, or false if absent.
func (u *Universe) Lookup(name string) (Atom, bool) {
	i, ok := u.byName[name]
	if !ok {
		return Atom{}, false
	}
	return u.atoms[i], true
}

// Tuple is an ordered sequence of atom indices from one universe.
type Tuple []int

// Arity is the tuple's length.
func (t Tuple) Arity() int { return len(t) }

// Less implements the universe's canonical lexicographic tuple order.
func (t Tuple) Less(o Tuple) bool {
	n := len(t)
	if len(o) < n {
		n = len(o)
	}
	for i := 0; i < n; i++ {
		if t[i] != o[i] {
			return t[i] < o[i]
		}
	}
	return len(t) < len(o)
}

// Equal reports pointwise equality.
func (t Tuple) Equal(o Tuple) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// Key returns a canonical map key for t, usable as a map[string] index.
func (t Tuple) Key() string {
	var sb strings.Builder
	for i, a := range t {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", a)
	}
	return sb.String()
}

// String renders t using the universe's atom names.
func (t Tuple) String(u *Universe) string {
	names := make([]string, len(t))
	for i, a := range t {
		names[i] = u.Atom(a).Name
	}
	return "(" + strings.Join(names, "->") + ")"
}

// Concat returns the concatenation of t and o as a new tuple.
func (t Tuple) Concat(o Tuple) Tuple {
	out := make(Tuple, 0, len(t)+len(o))
	out = append(out, t...)
	out = append(out, o...)
	return out
}

// TupleSet is a set of same-arity tuples, kept in canonical lexicographic
// order.
type TupleSet struct {
	arity  int
	tuples []Tuple
}

// NewTupleSet builds a canonicalized TupleSet from an arbitrary (possibly
// unsorted, possibly duplicate-containing) list of same-arity tuples.
func NewTupleSet(arity int, tuples []Tuple) *TupleSet {
	ts := &TupleSet{arity: arity}
	seen := make(map[string]bool, len(tuples))
	for _, t := range tuples {
		if t.Arity() != arity {
			panic(fmt.Sprintf("universe: tuple arity %d does not match tuple-set arity %d", t.Arity(), arity))
		}
		k := t.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		ts.tuples = append(ts.tuples, t)
	}
	sort.Slice(ts.tuples, func(i, j int) bool { return ts.tuples[i].Less(ts.tuples[j]) })
	return ts
}

// Empty returns the empty tuple-set of the given arity.
func Empty(arity int) *TupleSet { return &TupleSet{arity: arity} }

// Arity is the uniform arity of every tuple in the set.
func (ts *TupleSet) Arity() int { return ts.arity }

// Len is the number of tuples.
func (ts *TupleSet) Len() int { return len(ts.tuples) }

// Tuples returns the tuples in canonical order. The slice is owned by the
// caller to read, not mutate.
func (ts *TupleSet) Tuples() []Tuple { return ts.tuples }

// Contains reports whether t is a member.
func (ts *TupleSet) Contains(t Tuple) bool {
	i := sort.Search(len(ts.tuples), func(i int) bool { return !ts.tuples[i].Less(t) })
	return i < len(ts.tuples) && ts.tuples[i].Equal(t)
}

// Union returns a ∪ b.
func Union(a, b *TupleSet) *TupleSet {
	checkArity(a, b)
	out := make([]Tuple, 0, len(a.tuples)+len(b.tuples))
	i, j := 0, 0
	for i < len(a.tuples) && j < len(b.tuples) {
		switch {
		case a.tuples[i].Less(b.tuples[j]):
			out = append(out, a.tuples[i])
			i++
		case b.tuples[j].Less(a.tuples[i]):
			out = append(out, b.tuples[j])
			j++
		default:
			out = append(out, a.tuples[i])
			i++
			j++
		}
	}
	out = append(out, a.tuples[i:]...)
	out = append(out, b.tuples[j:]...)
	return &TupleSet{arity: a.arity, tuples: out}
}

// Intersect returns a ∩ b.
func Intersect(a, b *TupleSet) *TupleSet {
	checkArity(a, b)
	var out []Tuple
	i, j := 0, 0
	for i < len(a.tuples) && j < len(b.tuples) {
		switch {
		case a.tuples[i].Less(b.tuples[j]):
			i++
		case b.tuples[j].Less(a.tuples[i]):
			j++
		default:
			out = append(out, a.tuples[i])
			i++
			j++
		}
	}
	return &TupleSet{arity: a.arity, tuples: out}
}

// Diff returns a − b.
func Diff(a, b *TupleSet) *TupleSet {
	checkArity(a, b)
	var out []Tuple
	i, j := 0, 0
	for i < len(a.tuples) && j < len(b.tuples) {
		switch {
		case a.tuples[i].Less(b.tuples[j]):
			out = append(out, a.tuples[i])
			i++
		case b.tuples[j].Less(a.tuples[i]):
			j++
		default:
			i++
			j++
		}
	}
	out = append(out, a.tuples[i:]...)
	return &TupleSet{arity: a.arity, tuples: out}
}

// Join returns a.b: tuples formed by concatenating a prefix of a (minus its
// last atom) with a suffix of b (minus its first atom) wherever a's last
// atom equals b's first atom. Panics if either arity is below 1.
func Join(a, b *TupleSet) *TupleSet {
	if a.arity < 1 || b.arity < 1 {
		panic("universe: join requires both operands to have arity >= 1")
	}
	byFirst := make(map[int][]Tuple, b.Len())
	for _, t := range b.tuples {
		byFirst[t[0]] = append(byFirst[t[0]], t)
	}
	var out []Tuple
	for _, t := range a.tuples {
		last := t[len(t)-1]
		for _, s := range byFirst[last] {
			out = append(out, Tuple(t[:len(t)-1]).Concat(Tuple(s[1:])))
		}
	}
	return NewTupleSet(a.arity+b.arity-2, out)
}

// Product returns the cross product a×b.
func Product(a, b *TupleSet) *TupleSet {
	var out []Tuple
	for _, t := range a.tuples {
		for _, s := range b.tuples {
			out = append(out, t.Concat(s))
		}
	}
	return NewTupleSet(a.arity+b.arity, out)
}

// Transpose swaps the two coordinates of every tuple. a must have arity 2.
func Transpose(a *TupleSet) *TupleSet {
	if a.arity != 2 {
		panic("universe: transpose requires arity 2")
	}
	out := make([]Tuple, len(a.tuples))
	for i, t := range a.tuples {
		out[i] = Tuple{t[1], t[0]}
	}
	return NewTupleSet(2, out)
}

// Identity returns the identity relation {(a,a) : a in atoms}.
func Identity(atoms []Atom) *TupleSet {
	out := make([]Tuple, len(atoms))
	for i, a := range atoms {
		out[i] = Tuple{a.Index, a.Index}
	}
	return NewTupleSet(2, out)
}

// TransitiveClosure computes R+ by repeated squaring (R, R∪R², R∪R⁴, ...)
// up to ceil(log2(n)) rounds, where n is the universe size passed in.
func TransitiveClosure(r *TupleSet, universeSize int) *TupleSet {
	if r.arity != 2 {
		panic("universe: transitive closure requires arity 2")
	}
	rounds := ceilLog2(universeSize)
	acc := r
	cur := r
	for i := 0; i < rounds; i++ {
		sq := Join(cur, cur)
		next := Union(acc, sq)
		if next.Len() == acc.Len() {
			acc = next
			break
		}
		acc = next
		cur = Union(cur, sq)
	}
	return acc
}

// ReflexiveTransitiveClosure is TransitiveClosure(r) ∪ identity(atoms).
func ReflexiveTransitiveClosure(r *TupleSet, atoms []Atom) *TupleSet {
	return Union(TransitiveClosure(r, len(atoms)), Identity(atoms))
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

func checkArity(a, b *TupleSet) {
	if a.arity != b.arity {
		panic(fmt.Sprintf("universe: arity mismatch %d != %d", a.arity, b.arity))
	}
}
