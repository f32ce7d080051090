package report

import (
	"strings"
	"testing"

	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/instance"
	"github.com/kevinawalsh/alloysat/internal/run"
	"github.com/kevinawalsh/alloysat/internal/sat"
	"github.com/kevinawalsh/alloysat/internal/universe"
)

func sampleResult() *run.Result {
	return &run.Result{
		Command: &ast.Command{Kind: ast.CmdRun, Name: "Demo"},
		Status:  sat.Satisfiable,
		Stats: sat.Stats{
			Decisions:      10,
			Propagations:   40,
			Conflicts:      3,
			Restarts:       1,
			LearntClauses:  2,
			DeletedClauses: 0,
		},
		SolveTimeMs: 5,
	}
}

func TestFromResultWithoutInstance(t *testing.T) {
	s := FromResult(sampleResult())
	if s.Command != "Demo" || s.Verdict != "SAT" {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Decisions != 10 || s.Conflicts != 3 || s.Learnts != 2 {
		t.Fatalf("stats not copied: %+v", s)
	}
	if s.RelationCount != 0 || s.StateCount != 0 {
		t.Fatalf("expected zero relation/state counts without an instance: %+v", s)
	}
}

func TestFromResultCountsRelationsAndStates(t *testing.T) {
	res := sampleResult()
	rel := universe.NewTupleSet(1, []universe.Tuple{{0}, {1}})
	res.Instance = &instance.Instance{
		Relations: map[string]*universe.TupleSet{"Node": rel},
		Trace: &instance.Trace{
			Length:    4,
			LoopState: 1,
			States:    make([]map[string]*universe.TupleSet, 4),
		},
	}

	s := FromResult(res)
	if s.RelationCount != 1 {
		t.Fatalf("expected 1 relation, got %d", s.RelationCount)
	}
	if s.StateCount != 4 {
		t.Fatalf("expected 4 states, got %d", s.StateCount)
	}
}

func TestSummaryStringIncludesVerdictAndCounts(t *testing.T) {
	s := FromResult(sampleResult())
	out := s.String()
	if !strings.Contains(out, "SAT") || !strings.Contains(out, "conflicts: 3") {
		t.Fatalf("unexpected report text: %q", out)
	}
}

func TestHistoryLineFormatsFields(t *testing.T) {
	line := HistoryLine("SAT", 10, 3, 5, "2026-07-30 00:00:00")
	if !strings.Contains(line, "SAT") || !strings.Contains(line, "decisions=10") {
		t.Fatalf("unexpected line: %q", line)
	}
}
