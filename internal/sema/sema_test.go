package sema

import (
	"testing"

	"github.com/kevinawalsh/alloysat/internal/parser"
)

func mustCheck(t *testing.T, src string) *Table {
	t.Helper()
	m, diags := parser.Parse(src)
	if diags.HasErrors() {
		t.Fatalf("parse errors: %s", diags.String())
	}
	tbl, sdiags := Check(m)
	if sdiags.HasErrors() {
		t.Fatalf("unexpected sema errors: %s", sdiags.String())
	}
	return tbl
}

func TestResolvesSigsAndFields(t *testing.T) {
	tbl := mustCheck(t, `
sig Person {
  spouse: lone Person
}
`)
	p, ok := tbl.Sigs["Person"]
	if !ok {
		t.Fatalf("expected Person to resolve")
	}
	if len(p.Fields) != 1 || p.Fields[0].Name != "spouse" {
		t.Fatalf("unexpected fields: %+v", p.Fields)
	}
	if p.Fields[0].Arity != 2 {
		t.Fatalf("expected spouse field arity 2, got %d", p.Fields[0].Arity)
	}
}

func TestDuplicateTopLevelNameIsError(t *testing.T) {
	m, diags := parser.Parse(`
sig A {}
sig A {}
`)
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", diags.String())
	}
	_, sdiags := Check(m)
	if !sdiags.HasErrors() {
		t.Fatalf("expected duplicate-name error")
	}
}

func TestUnresolvedExtendsIsError(t *testing.T) {
	m, diags := parser.Parse(`
sig A extends B {}
`)
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", diags.String())
	}
	_, sdiags := Check(m)
	if !sdiags.HasErrors() {
		t.Fatalf("expected unresolved-extends error")
	}
}

func TestExtendsCycleIsError(t *testing.T) {
	m, diags := parser.Parse(`
sig A extends B {}
sig B extends A {}
`)
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", diags.String())
	}
	_, sdiags := Check(m)
	if !sdiags.HasErrors() {
		t.Fatalf("expected extends-cycle error")
	}
}

func TestUnresolvedNameInFormulaIsError(t *testing.T) {
	m, diags := parser.Parse(`
sig A {}
fact { some Ghost }
`)
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", diags.String())
	}
	_, sdiags := Check(m)
	if !sdiags.HasErrors() {
		t.Fatalf("expected unresolved-name error for Ghost")
	}
}

func TestQuantifierVariableResolvesInBody(t *testing.T) {
	tbl := mustCheck(t, `
sig A {}
fact { all x: A | some x }
`)
	if _, ok := tbl.Sigs["A"]; !ok {
		t.Fatalf("expected A to resolve")
	}
}

func TestJoinOfUnarySigsIsNotAnError(t *testing.T) {
	m, diags := parser.Parse(`
sig A {}
sig B {}
fact { some (A.B) }
`)
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", diags.String())
	}
	// A and B are both arity-1 sigs; A.B is a join of two arity-1
	// relations, which legally yields arity 0 (a boolean-ish result in
	// Alloy); this is not itself an error, so Check must record no error
	// for this shape.
	_, sdiags := Check(m)
	if sdiags.HasErrors() {
		t.Fatalf("unexpected sema errors: %s", sdiags.String())
	}
}

func TestCommandTargetMustResolve(t *testing.T) {
	m, diags := parser.Parse(`
sig A {}
pred p { some A }
run missing
`)
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", diags.String())
	}
	_, sdiags := Check(m)
	if !sdiags.HasErrors() {
		t.Fatalf("expected unresolved-command-target error")
	}
}

func TestCommandTargetResolvesToPred(t *testing.T) {
	tbl := mustCheck(t, `
sig A {}
pred p { some A }
run p
`)
	if _, ok := tbl.Preds["p"]; !ok {
		t.Fatalf("expected predicate p to be registered")
	}
}

func TestEnumValuesBehaveAsSingletonSigs(t *testing.T) {
	tbl := mustCheck(t, `
enum Color { Red, Green, Blue }
fact { some Red }
`)
	if _, ok := tbl.Sigs["Red"]; !ok {
		t.Fatalf("expected enum value Red to register as a signature")
	}
	if e, ok := tbl.Enums["Color"]; !ok || len(e.Values) != 3 {
		t.Fatalf("expected Color enum with 3 values, got %+v", e)
	}
}

func TestTemporalDetectionFromVarField(t *testing.T) {
	tbl := mustCheck(t, `
sig A {
  var active: lone A
}
`)
	if !tbl.Temporal {
		t.Fatalf("expected var field to mark module temporal")
	}
}

func TestTemporalDetectionFromOperator(t *testing.T) {
	tbl := mustCheck(t, `
sig A {}
fact { always some A }
`)
	if !tbl.Temporal {
		t.Fatalf("expected 'always' operator to mark module temporal")
	}
}

func TestNonTemporalModuleDetection(t *testing.T) {
	tbl := mustCheck(t, `
sig A {}
fact { some A }
`)
	if tbl.Temporal {
		t.Fatalf("expected plain module to not be marked temporal")
	}
}

func TestDescendantsIncludesTransitiveExtenders(t *testing.T) {
	tbl := mustCheck(t, `
sig A {}
sig B extends A {}
sig C extends B {}
`)
	desc := tbl.Descendants("A")
	want := map[string]bool{"A": true, "B": true, "C": true}
	if len(desc) != len(want) {
		t.Fatalf("expected 3 descendants of A, got %v", desc)
	}
	for _, d := range desc {
		if !want[d] {
			t.Fatalf("unexpected descendant %q", d)
		}
	}
}
