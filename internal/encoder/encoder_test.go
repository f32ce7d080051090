package encoder

import (
	"context"
	"testing"

	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/parser"
	"github.com/kevinawalsh/alloysat/internal/sat"
	"github.com/kevinawalsh/alloysat/internal/sema"
)

func checkModule(t *testing.T, src string) (*ast.Module, *sema.Table) {
	t.Helper()
	m, diags := parser.Parse(src)
	if diags.HasErrors() {
		t.Fatalf("parse errors: %s", diags.String())
	}
	tbl, diags := sema.Check(m)
	if diags.HasErrors() {
		t.Fatalf("sema errors: %s", diags.String())
	}
	return m, tbl
}

// solve runs src's (sole) command end to end: parse, check, elaborate
// bounds, encode, and hand the resulting CNF to internal/sat.
func solve(t *testing.T, src string) sat.Result {
	t.Helper()
	m, tbl := checkModule(t, src)
	if m.Command == nil {
		t.Fatalf("module has no run/check command")
	}
	u, b, err := BuildUniverseAndBounds(tbl, m.Command.Scope)
	if err != nil {
		t.Fatalf("BuildUniverseAndBounds: %v", err)
	}
	_ = u
	env := NewEnv(b, tbl)
	root := NewScope(nil)
	if err := env.EncodeCommand(m.Command, root); err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	cnf := env.Builder.CNF()
	solver := sat.NewSolver(cnf.NumVars, sat.DefaultOptions())
	for _, c := range cnf.Clauses {
		solver.AddClause([]int(c))
	}
	return solver.Solve(context.Background())
}

func TestEncodeSatisfiableRun(t *testing.T) {
	res := solve(t, `
sig Person {}
pred some_person { some Person }
run some_person
`)
	if res.Status != sat.Satisfiable {
		t.Fatalf("expected satisfiable, got %v", res.Status)
	}
}

func TestEncodeUnsatisfiableRun(t *testing.T) {
	res := solve(t, `
sig Person {}
pred contradiction { some Person and no Person }
run contradiction
`)
	if res.Status != sat.Unsatisfiable {
		t.Fatalf("expected unsatisfiable, got %v", res.Status)
	}
}

func TestEncodeOneSigIsExact(t *testing.T) {
	res := solve(t, `
one sig Root {}
pred exactlyOneRoot { one Root }
run exactlyOneRoot
`)
	if res.Status != sat.Satisfiable {
		t.Fatalf("expected satisfiable (one sig is forced to hold exactly one atom), got %v", res.Status)
	}
}

func TestEncodeFieldJoin(t *testing.T) {
	res := solve(t, `
sig Person { friend: set Person }
pred reflexiveFriend { some p: Person | p in p.friend }
run reflexiveFriend for 3
`)
	if res.Status != sat.Satisfiable {
		t.Fatalf("expected satisfiable, got %v", res.Status)
	}
}

func TestEncodeAbstractSigUnionsDescendants(t *testing.T) {
	res := solve(t, `
abstract sig Animal {}
sig Cat extends Animal {}
sig Dog extends Animal {}
pred allAnimalsAreCatsOrDogs { Animal = Cat + Dog }
run allAnimalsAreCatsOrDogs
`)
	if res.Status != sat.Satisfiable {
		t.Fatalf("expected satisfiable, got %v", res.Status)
	}
}

func TestEncodeFactConstrainsInstances(t *testing.T) {
	res := solve(t, `
sig Person { spouse: lone Person }
fact noSelfSpouse { all p: Person | p not in p.spouse }
pred noop {}
run noop for 3
`)
	if res.Status != sat.Satisfiable {
		t.Fatalf("expected satisfiable, got %v", res.Status)
	}
}

func TestEncodeCheckNegatesAssertion(t *testing.T) {
	res := solve(t, `
sig Person {}
assert vacuouslyFalse { no Person and some Person }
check vacuouslyFalse
`)
	if res.Status != sat.Satisfiable {
		t.Fatalf("expected the negation of a contradictory assertion to be satisfiable, got %v", res.Status)
	}
}

func TestEncodeCardinalityComparison(t *testing.T) {
	res := solve(t, `
sig Person {}
pred atLeastTwo { #Person >= 2 }
run atLeastTwo for 3
`)
	if res.Status != sat.Satisfiable {
		t.Fatalf("expected satisfiable, got %v", res.Status)
	}
}

func TestEncodeSumQuantifier(t *testing.T) {
	res := solve(t, `
sig Person { friend: set Person }
pred totalFriendCountIsBounded { (sum p: Person | #(p.friend)) >= 0 }
run totalFriendCountIsBounded for 3
`)
	if res.Status != sat.Satisfiable {
		t.Fatalf("expected satisfiable, got %v", res.Status)
	}
}
