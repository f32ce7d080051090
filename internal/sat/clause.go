package sat

// Clause is a learnt-or-original disjunction of signed literals. The first
// two entries are always the clause's two watched literals; Solver
// maintains that invariant as propagation proceeds.
type Clause struct {
	Lits     []int
	Learnt   bool
	Activity float64
	LBD      int
}

func newClause(lits []int, learnt bool) *Clause {
	return &Clause{Lits: append([]int(nil), lits...), Learnt: learnt}
}
