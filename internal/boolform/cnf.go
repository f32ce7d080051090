package boolform

import "sort"

// Clause is a disjunction of signed DIMACS-style literals (positive v means
// variable v true, negative v means v false).
type Clause []int

// CNF is a clause set over a monotonically allocated variable space. Var 0
// is never used; fresh auxiliary variables start above NextVar-1 of the
// builder that produced it.
type CNF struct {
	NumVars int
	Clauses []Clause
}

// Builder lowers Formula DAGs to CNF via Tseitin transformation, memoizing
// one auxiliary variable per distinct compound subformula so that shared
// subtrees are encoded once.
type Builder struct {
	nextVar int
	memo    map[*Formula]int
	clauses []Clause
}

// NewBuilder starts a CNF builder whose first fresh auxiliary variable is
// firstAux. Callers that already allocated SAT variables for problem
// literals (e.g. one variable per relation tuple) pass one past the
// highest literal variable in use.
func NewBuilder(firstAux int) *Builder {
	return &Builder{nextVar: firstAux, memo: make(map[*Formula]int)}
}

// fresh allocates and returns a new auxiliary variable.
func (b *Builder) fresh() int {
	v := b.nextVar
	b.nextVar++
	return v
}

// NewVar allocates and returns a fresh problem variable from the same
// counter Tseitin uses for auxiliary variables, so callers that need
// variables for relation tuples (internal/encoder, internal/trace) before
// any formula is built never collide with later aux-variable allocation.
func (b *Builder) NewVar() int { return b.fresh() }

func (b *Builder) addClause(lits ...int) {
	b.clauses = append(b.clauses, Clause(append([]int(nil), lits...)))
}

// lit returns a signed literal for the Tseitin variable v under sign neg.
func lit(v int, neg bool) int {
	if neg {
		return -v
	}
	return v
}

// Tseitin returns a signed literal equivalent to f, appending the defining
// clauses for any compound subformula not already encoded.
func (b *Builder) Tseitin(f *Formula) int {
	switch f.Kind {
	case KindTrue:
		v := b.trueVar()
		return v
	case KindFalse:
		v := b.trueVar()
		return -v
	case KindLit:
		return lit(f.Var, f.Neg)
	}
	if v, ok := b.memo[f]; ok {
		return v
	}
	v := b.fresh()
	b.memo[f] = v
	switch f.Kind {
	case KindAnd:
		lits := make([]int, len(f.Args))
		for i, a := range f.Args {
			lits[i] = b.Tseitin(a)
		}
		// v <=> (l1 & ... & ln)
		for _, l := range lits {
			b.addClause(-v, l)
		}
		clause := make([]int, 0, len(lits)+1)
		clause = append(clause, v)
		for _, l := range lits {
			clause = append(clause, -l)
		}
		b.addClause(clause...)
	case KindOr:
		lits := make([]int, len(f.Args))
		for i, a := range f.Args {
			lits[i] = b.Tseitin(a)
		}
		// v <=> (l1 | ... | ln)
		for _, l := range lits {
			b.addClause(v, -l)
		}
		clause := make([]int, 0, len(lits)+1)
		clause = append(clause, -v)
		clause = append(clause, lits...)
		b.addClause(clause...)
	case KindImplies:
		x := b.Tseitin(f.Args[0])
		y := b.Tseitin(f.Args[1])
		// v <=> (!x | y)
		b.addClause(-v, -x, y)
		b.addClause(v, x)
		b.addClause(v, -y)
	case KindIff:
		x := b.Tseitin(f.Args[0])
		y := b.Tseitin(f.Args[1])
		// v <=> (x <=> y)
		b.addClause(-v, -x, y)
		b.addClause(-v, x, -y)
		b.addClause(v, x, y)
		b.addClause(v, -x, -y)
	case KindXor:
		x := b.Tseitin(f.Args[0])
		y := b.Tseitin(f.Args[1])
		b.addClause(-v, x, y)
		b.addClause(-v, -x, -y)
		b.addClause(v, -x, y)
		b.addClause(v, x, -y)
	case KindIte:
		c := b.Tseitin(f.Args[0])
		t := b.Tseitin(f.Args[1])
		e := b.Tseitin(f.Args[2])
		// v <=> (c&t) | (!c&e)
		b.addClause(-v, -c, t)
		b.addClause(-v, c, e)
		b.addClause(v, -c, -t)
		b.addClause(v, c, -e)
	}
	return v
}

// trueVar lazily allocates and pins a variable forced to true, reused for
// every occurrence of the True/False constants in a single Builder.
func (b *Builder) trueVar() int {
	if v, ok := b.memo[trueSentinel]; ok {
		return v
	}
	v := b.fresh()
	b.addClause(v)
	b.memo[trueSentinel] = v
	return v
}

// trueSentinel is a unique *Formula key distinct from any real node, used
// only to memoize the shared "true" pin variable.
var trueSentinel = &Formula{Kind: KindTrue}

// Assert adds the unit clause forcing f to true, via Tseitin if f is
// compound.
func (b *Builder) Assert(f *Formula) {
	if f.Kind == KindTrue {
		return
	}
	if f.Kind == KindFalse {
		b.addClause() // empty clause: immediately unsatisfiable
		return
	}
	b.addClause(b.Tseitin(f))
}

// CNF finalizes the accumulated clauses into an immutable CNF value.
func (b *Builder) CNF() *CNF {
	return &CNF{NumVars: b.nextVar - 1, Clauses: append([]Clause(nil), b.clauses...)}
}

// AtMostOne returns a formula true iff at most one of vars holds, using the
// pairwise encoding (quadratic in len(vars), but adds no auxiliary
// variables, which keeps small cardinality constraints cheap).
func AtMostOne(vars []int) *Formula {
	var clauses []*Formula
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			clauses = append(clauses, Or(Not(Lit(vars[i])), Not(Lit(vars[j]))))
		}
	}
	return And(clauses...)
}

// AtLeastOne returns a formula true iff at least one of vars holds.
func AtLeastOne(vars []int) *Formula {
	lits := make([]*Formula, len(vars))
	for i, v := range vars {
		lits[i] = Lit(v)
	}
	return Or(lits...)
}

// ExactlyOne returns a formula true iff exactly one of vars holds.
func ExactlyOne(vars []int) *Formula {
	return And(AtLeastOne(vars), AtMostOne(vars))
}

// AtMostK returns a formula true iff at most k of vars hold, via a
// sequential-counter encoding that introduces O(len(vars)*k) auxiliary
// register variables instead of the exponential naive disjunction.
func AtMostK(b *Builder, vars []int, k int) *Formula {
	n := len(vars)
	if k >= n {
		return True
	}
	if k <= 0 {
		lits := make([]*Formula, n)
		for i, v := range vars {
			lits[i] = Not(Lit(v))
		}
		return And(lits...)
	}
	// register[i][j]: true iff at least j+1 of vars[0..i] are true, 0<=j<k
	reg := make([][]int, n)
	for i := range reg {
		reg[i] = make([]int, k)
		for j := range reg[i] {
			reg[i][j] = b.fresh()
		}
	}
	var clauses []*Formula
	x := func(i int) *Formula { return Lit(vars[i]) }
	s := func(i, j int) *Formula { return Lit(reg[i][j]) }

	clauses = append(clauses, Implies(x(0), s(0, 0)))
	for j := 1; j < k; j++ {
		clauses = append(clauses, Not(s(0, j)))
	}
	for i := 1; i < n; i++ {
		clauses = append(clauses, Implies(x(i), s(i, 0)))
		clauses = append(clauses, Implies(s(i-1, 0), s(i, 0)))
		for j := 1; j < k; j++ {
			clauses = append(clauses, Implies(s(i-1, j), s(i, j)))
			clauses = append(clauses, Implies(And(x(i), s(i-1, j-1)), s(i, j)))
		}
		clauses = append(clauses, Not(And(x(i), s(i-1, k-1))))
	}
	return And(clauses...)
}

// SortClauseLits normalizes a clause's literal order (by absolute value)
// for deterministic output in tests and DIMACS dumps.
func SortClauseLits(c Clause) Clause {
	out := append(Clause(nil), c...)
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i], out[j]
		if ai < 0 {
			ai = -ai
		}
		if aj < 0 {
			aj = -aj
		}
		return ai < aj
	})
	return out
}
