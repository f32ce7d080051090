package instance

import (
	"context"
	"testing"

	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/encoder"
	"github.com/kevinawalsh/alloysat/internal/parser"
	"github.com/kevinawalsh/alloysat/internal/sat"
	"github.com/kevinawalsh/alloysat/internal/sema"
	"github.com/kevinawalsh/alloysat/internal/trace"
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

func TestBuildPlainExtractsRelations(t *testing.T) {
	m, tbl := checkModule(t, `
sig Person {}
pred somePerson { some Person }
run somePerson
`)
	_, b, err := encoder.BuildUniverseAndBounds(tbl, m.Command.Scope)
	if err != nil {
		t.Fatalf("BuildUniverseAndBounds: %v", err)
	}
	env := encoder.NewEnv(b, tbl)
	if err := env.EncodeCommand(m.Command, encoder.NewScope(nil)); err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}

	cnf := env.Builder.CNF()
	solver := sat.NewSolver(cnf.NumVars, sat.DefaultOptions())
	for _, c := range cnf.Clauses {
		solver.AddClause([]int(c))
	}
	result := solver.Solve(context.Background())
	if result.Status != sat.Satisfiable {
		t.Fatalf("expected satisfiable, got %v", result.Status)
	}

	inst := BuildPlain(env, b, result.Model)
	ts, ok := inst.Relations["Person"]
	if !ok {
		t.Fatalf("expected a Person relation, got %+v", inst.Relations)
	}
	if ts.Len() == 0 {
		t.Fatalf("expected at least one Person atom (some Person), got none")
	}
}

func TestBuildTemporalResolvesLoop(t *testing.T) {
	m, tbl := checkModule(t, `
var sig Light {}
pred eventuallyLit { eventually (some Light) }
run eventuallyLit
`)
	_, b, err := encoder.BuildUniverseAndBounds(tbl, m.Command.Scope)
	if err != nil {
		t.Fatalf("BuildUniverseAndBounds: %v", err)
	}
	env := encoder.NewEnv(b, tbl)
	te := trace.NewEnv(env, tbl, 5)
	if err := te.EncodeCommand(m.Command, encoder.NewScope(nil)); err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}

	cnf := env.Builder.CNF()
	solver := sat.NewSolver(cnf.NumVars, sat.DefaultOptions())
	for _, c := range cnf.Clauses {
		solver.AddClause([]int(c))
	}
	result := solver.Solve(context.Background())
	if result.Status != sat.Satisfiable {
		t.Fatalf("expected satisfiable, got %v", result.Status)
	}

	inst, err := BuildTemporal(te, b, result.Model)
	if err != nil {
		t.Fatalf("BuildTemporal: %v", err)
	}
	if inst.Trace == nil {
		t.Fatal("expected a non-nil trace")
	}
	if inst.Trace.Length != 5 {
		t.Fatalf("expected trace length 5, got %d", inst.Trace.Length)
	}
	if inst.Trace.LoopState < 0 || inst.Trace.LoopState >= 5 {
		t.Fatalf("loop state %d out of range", inst.Trace.LoopState)
	}
	if len(inst.Trace.States) != 5 {
		t.Fatalf("expected 5 states, got %d", len(inst.Trace.States))
	}

	lit := false
	for _, st := range inst.Trace.States {
		if ts, ok := st["Light"]; ok && ts.Len() > 0 {
			lit = true
		}
	}
	if !lit {
		t.Fatalf("expected some state to have a non-empty Light relation (eventually some Light)")
	}
}
