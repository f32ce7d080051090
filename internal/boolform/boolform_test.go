package boolform

import "testing"

func TestSimplifications(t *testing.T) {
	if And(Lit(1), True) != Lit(1) {
		t.Fatalf("expected And(x,T) to fold to x")
	}
	if And(Lit(1), False) != False {
		t.Fatalf("expected And(x,F) to fold to F")
	}
	if Or(Lit(1), False) != Lit(1) {
		t.Fatalf("expected Or(x,F) to fold to x")
	}
	if Or(Lit(1), True) != True {
		t.Fatalf("expected Or(x,T) to fold to T")
	}
	if Not(Not(Lit(1))).Kind != KindLit || Not(Not(Lit(1))).Neg {
		t.Fatalf("expected Not(Not(x)) to fold to x")
	}
	if Not(True) != False || Not(False) != True {
		t.Fatalf("expected constant negation folding")
	}
	flat := And(Lit(1), And(Lit(2), Lit(3)))
	if len(flat.Args) != 3 {
		t.Fatalf("expected nested And to flatten, got %d args", len(flat.Args))
	}
}

func countModels(n int, sat func([]bool) bool) int {
	count := 0
	for mask := 0; mask < (1 << n); mask++ {
		bits := make([]bool, n)
		for i := 0; i < n; i++ {
			bits[i] = mask&(1<<i) != 0
		}
		if sat(bits) {
			count++
		}
	}
	return count
}

// evalClauses checks whether an assignment (1-indexed, bits[v-1]) satisfies
// every clause.
func evalClauses(clauses []Clause, bits []bool) bool {
	for _, c := range clauses {
		ok := false
		for _, l := range c {
			v := l
			neg := false
			if v < 0 {
				v = -v
				neg = true
			}
			if v-1 >= len(bits) {
				continue
			}
			val := bits[v-1]
			if neg {
				val = !val
			}
			if val {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// rootHolds reports whether, for a fixed assignment of the problem's base
// variables, there exists an extension of the auxiliary variables
// (nBase..cnf.NumVars) under which every clause holds and root is true.
func rootHolds(cnf *CNF, root int, nBase int, base []bool) bool {
	auxCount := cnf.NumVars - nBase
	full := append(append([]bool(nil), base...), make([]bool, auxCount)...)
	for auxMask := 0; auxMask < (1 << auxCount); auxMask++ {
		for i := 0; i < auxCount; i++ {
			full[nBase+i] = auxMask&(1<<i) != 0
		}
		if !evalClauses(cnf.Clauses, full) {
			continue
		}
		v := root
		val := full[abs(v)-1]
		if v < 0 {
			val = !val
		}
		if val {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestTseitinAndPreservesModelCount(t *testing.T) {
	f := And(Lit(1), Lit(2))
	b := NewBuilder(3)
	root := b.Tseitin(f)
	cnf := b.CNF()

	for mask := 0; mask < 4; mask++ {
		base := []bool{mask&1 != 0, mask&2 != 0}
		got := rootHolds(cnf, root, 2, base)
		want := base[0] && base[1]
		if got != want {
			t.Fatalf("mask %d: Tseitin(And) mismatch got=%v want=%v", mask, got, want)
		}
	}
}

func TestTseitinIff(t *testing.T) {
	f := Iff(Lit(1), Lit(2))
	b := NewBuilder(3)
	root := b.Tseitin(f)
	b.addClause(root)
	cnf := b.CNF()
	for mask := 0; mask < 4; mask++ {
		bits := []bool{mask&1 != 0, mask&2 != 0}
		sat := rootHolds(cnf, root, 2, bits)
		want := bits[0] == bits[1]
		if sat != want {
			t.Fatalf("mask %d: iff mismatch, sat=%v want=%v", mask, sat, want)
		}
	}
}

func TestExactlyOne(t *testing.T) {
	vars := []int{1, 2, 3}
	f := ExactlyOne(vars)
	b := NewBuilder(4)
	root := b.Tseitin(f)
	cnf := b.CNF()
	for mask := 0; mask < 8; mask++ {
		base := make([]bool, 3)
		n := 0
		for i := 0; i < 3; i++ {
			base[i] = mask&(1<<i) != 0
			if base[i] {
				n++
			}
		}
		got := rootHolds(cnf, root, 3, base)
		want := n == 1
		if got != want {
			t.Fatalf("mask %03b: n=%d got=%v want=%v", mask, n, got, want)
		}
	}
}

func TestAtMostKSequentialCounter(t *testing.T) {
	// Kept to 3 vars / k=1 so the brute-force existential check over
	// auxiliary register variables below stays cheap.
	vars := []int{1, 2, 3}
	b := NewBuilder(4)
	f := AtMostK(b, vars, 1)
	root := b.Tseitin(f)
	cnf := b.CNF()
	for mask := 0; mask < 8; mask++ {
		base := make([]bool, 3)
		n := 0
		for i := 0; i < 3; i++ {
			base[i] = mask&(1<<i) != 0
			if base[i] {
				n++
			}
		}
		got := rootHolds(cnf, root, 3, base)
		want := n <= 1
		if got != want {
			t.Fatalf("mask %03b: n=%d got=%v want=%v", mask, n, got, want)
		}
	}
}

func TestAtMostKBoundaryFormulas(t *testing.T) {
	vars := []int{1, 2, 3}
	b := NewBuilder(4)
	if AtMostK(b, vars, 3) != True {
		t.Fatalf("expected AtMostK with k>=n to fold to True")
	}
	allFalse := AtMostK(b, vars, 0)
	if allFalse.Kind != KindAnd {
		t.Fatalf("expected AtMostK(k=0) to be a conjunction of negations")
	}
}
