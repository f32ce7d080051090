package sat

import (
	"context"
	"testing"
)

func checkModel(t *testing.T, clauses [][]int, model []bool) {
	t.Helper()
	for _, cl := range clauses {
		ok := false
		for _, lit := range cl {
			v := abs(lit)
			val := model[v]
			if lit < 0 {
				val = !val
			}
			if val {
				ok = true
				break
			}
		}
		if !ok {
			t.Fatalf("clause %v not satisfied by model %v", cl, model)
		}
	}
}

func TestTrivialSatisfiable(t *testing.T) {
	s := NewSolver(3, DefaultOptions())
	clauses := [][]int{{1, 2}, {-1, 3}, {-2, -3}}
	for _, c := range clauses {
		s.AddClause(c)
	}
	res := s.Solve(context.Background())
	if res.Status != Satisfiable {
		t.Fatalf("expected SAT, got %v", res.Status)
	}
	checkModel(t, clauses, res.Model)
}

func TestTrivialUnsatisfiable(t *testing.T) {
	s := NewSolver(1, DefaultOptions())
	s.AddClause([]int{1})
	s.AddClause([]int{-1})
	res := s.Solve(context.Background())
	if res.Status != Unsatisfiable {
		t.Fatalf("expected UNSAT, got %v", res.Status)
	}
}

func TestPigeonholeTwoIntoOneIsUnsat(t *testing.T) {
	// pigeons 1,2 into hole 1: vars 1="pigeon1 in hole1", 2="pigeon2 in hole1"
	s := NewSolver(2, DefaultOptions())
	s.AddClause([]int{1})  // pigeon 1 must be in hole 1
	s.AddClause([]int{2})  // pigeon 2 must be in hole 1
	s.AddClause([]int{-1, -2}) // can't both be in hole 1
	res := s.Solve(context.Background())
	if res.Status != Unsatisfiable {
		t.Fatalf("expected UNSAT, got %v", res.Status)
	}
}

func TestRequiresConflictDrivenBacktracking(t *testing.T) {
	// A small instance that forces at least one conflict + learned clause
	// before reaching a satisfying assignment: x1 forces a chain that
	// conflicts with an early guess of x4, exercising analyze/backtrackTo.
	s := NewSolver(4, DefaultOptions())
	clauses := [][]int{
		{1, 2},
		{-1, 3},
		{-2, 3},
		{-3, 4},
		{-3, -4, 1},
		{2, -4},
	}
	for _, c := range clauses {
		s.AddClause(c)
	}
	res := s.Solve(context.Background())
	if res.Status != Satisfiable {
		t.Fatalf("expected SAT, got %v", res.Status)
	}
	checkModel(t, clauses, res.Model)
}

func TestEmptyClauseIsImmediatelyUnsat(t *testing.T) {
	s := NewSolver(1, DefaultOptions())
	if ok := s.AddClause(nil); ok {
		t.Fatalf("expected AddClause(empty) to report unsat")
	}
	res := s.Solve(context.Background())
	if res.Status != Unsatisfiable {
		t.Fatalf("expected UNSAT, got %v", res.Status)
	}
}

func TestCancellationYieldsUnknown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSolver(2, DefaultOptions())
	s.AddClause([]int{1, 2})
	res := s.Solve(ctx)
	if res.Status != Unknown {
		t.Fatalf("expected UNKNOWN on cancelled context, got %v", res.Status)
	}
}

func TestLubySequence(t *testing.T) {
	want := []int{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8}
	for i, w := range want {
		if got := luby(i + 1); got != w {
			t.Fatalf("luby(%d) = %d, want %d", i+1, got, w)
		}
	}
}
