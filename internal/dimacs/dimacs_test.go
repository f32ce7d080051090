package dimacs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kevinawalsh/alloysat/internal/boolform"
)

func TestWriteReadRoundTrip(t *testing.T) {
	cnf := &boolform.CNF{
		NumVars: 3,
		Clauses: []boolform.Clause{{1, -2}, {2, 3}, {-1, -3}},
	}
	var buf bytes.Buffer
	if err := Write(&buf, cnf, "example"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.NumVars != cnf.NumVars || len(got.Clauses) != len(cnf.Clauses) {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestReadTolerantOfMissingTrailingZero(t *testing.T) {
	src := "c a comment\np cnf 2 1\n1 -2"
	cnf, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cnf.NumVars != 2 || len(cnf.Clauses) != 1 {
		t.Fatalf("unexpected: %+v", cnf)
	}
	if len(cnf.Clauses[0]) != 2 {
		t.Fatalf("expected 2 literals, got %v", cnf.Clauses[0])
	}
}

func TestReadRejectsMissingPreamble(t *testing.T) {
	_, err := Read(strings.NewReader("1 2 0\n"))
	if err == nil {
		t.Fatalf("expected error for missing preamble")
	}
}

func TestReadSkipsComments(t *testing.T) {
	src := "c header\nc more\np cnf 1 1\n1 0\n"
	cnf, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(cnf.Clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(cnf.Clauses))
	}
}
