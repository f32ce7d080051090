package historydb

import (
	"testing"

	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/run"
	"github.com/kevinawalsh/alloysat/internal/sat"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRunResult(name string) *run.Result {
	return &run.Result{
		Command: &ast.Command{Kind: ast.CmdRun, Name: name},
		Status:  sat.Satisfiable,
		Stats: sat.Stats{
			Decisions:    7,
			Propagations: 21,
			Conflicts:    1,
			Restarts:     0,
		},
		SolveTimeMs: 12,
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	digest := "deadbeef"

	if err := s.Record(digest, sampleRunResult("Show")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(digest, sampleRunResult("Show")); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := s.Recent(digest, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.CommandName != "Show" || e.Verdict != "SAT" {
			t.Errorf("unexpected entry: %+v", e)
		}
		if e.Decisions != 7 || e.Conflicts != 1 {
			t.Errorf("stats not recorded: %+v", e)
		}
	}
}

func TestRecentRespectsDigestIsolation(t *testing.T) {
	s := openTestStore(t)
	if err := s.Record("digest-a", sampleRunResult("A")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record("digest-b", sampleRunResult("B")); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := s.Recent("digest-a", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 || entries[0].CommandName != "A" {
		t.Fatalf("expected only digest-a's entry, got %+v", entries)
	}
}

func TestRecentLimitsRowCount(t *testing.T) {
	s := openTestStore(t)
	digest := "many"
	for i := 0; i < 5; i++ {
		if err := s.Record(digest, sampleRunResult("Loop")); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	entries, err := s.Recent(digest, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(entries))
	}
}
