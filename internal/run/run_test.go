package run

import (
	"context"
	"testing"

	"github.com/kevinawalsh/alloysat/internal/sat"
)

func TestRunSatisfiable(t *testing.T) {
	src := `
sig Person {}
pred somePerson { some Person }
run somePerson
`
	res, err := Run(context.Background(), src, nil, sat.DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != sat.Satisfiable {
		t.Fatalf("expected SAT, got %v", res.Status)
	}
	if res.Instance == nil {
		t.Fatal("expected a non-nil instance on SAT")
	}
	if _, ok := res.Instance.Relations["Person"]; !ok {
		t.Fatalf("expected Person relation in instance, got %+v", res.Instance.Relations)
	}
}

func TestRunUnsatisfiable(t *testing.T) {
	src := `
sig Person {}
pred contradiction { some Person and no Person }
run contradiction
`
	res, err := Run(context.Background(), src, nil, sat.DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != sat.Unsatisfiable {
		t.Fatalf("expected UNSAT, got %v", res.Status)
	}
	if res.Instance != nil {
		t.Fatalf("expected no instance on UNSAT, got %+v", res.Instance)
	}
}

func TestRunModelErrorsOnUnresolvedName(t *testing.T) {
	src := `
sig A extends B {}
`
	_, err := Run(context.Background(), src, nil, sat.DefaultOptions())
	if err == nil {
		t.Fatal("expected ModelErrors for an unresolved extends clause")
	}
	if _, ok := err.(*ModelErrors); !ok {
		t.Fatalf("expected *ModelErrors, got %T: %v", err, err)
	}
}

func TestRunNoCommandErrors(t *testing.T) {
	src := `sig Person {}`
	_, err := Run(context.Background(), src, nil, sat.DefaultOptions())
	if err == nil {
		t.Fatal("expected an error when the module declares no command")
	}
}

func TestRunTemporalBuildsTrace(t *testing.T) {
	src := `
var sig Light {}
pred eventuallyLit { eventually (some Light) }
run eventuallyLit
`
	res, err := Run(context.Background(), src, nil, sat.DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != sat.Satisfiable {
		t.Fatalf("expected SAT, got %v", res.Status)
	}
	if res.Instance == nil || res.Instance.Trace == nil {
		t.Fatal("expected a temporal instance with a trace")
	}
	if res.Instance.Trace.Length != DefaultSteps {
		t.Fatalf("expected default step bound %d, got %d", DefaultSteps, res.Instance.Trace.Length)
	}
	if len(res.Instance.Trace.States) != DefaultSteps {
		t.Fatalf("expected %d states, got %d", DefaultSteps, len(res.Instance.Trace.States))
	}
}
