package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kevinawalsh/alloysat/internal/sat"
)

func TestInitSetsLog(t *testing.T) {
	if err := Init("debug", ""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Log == nil {
		t.Fatal("expected Log to be set after Init")
	}
}

func TestInitWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloysat.log")
	if err := Init("info", path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Log.Info("hello from test")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected the log file to contain the logged line")
	}
}

func TestProgressNilWithoutInit(t *testing.T) {
	Log = nil
	if p := Progress("cmd"); p != nil {
		t.Fatal("expected Progress to return nil when no logger is configured")
	}
}

func TestProgressLogsWhenConfigured(t *testing.T) {
	if err := Init("debug", ""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	p := Progress("demo")
	if p == nil {
		t.Fatal("expected a non-nil progress callback once Init has run")
	}
	// Should not panic with a populated Stats value.
	p(sat.Stats{Conflicts: 1, Decisions: 2, Propagations: 3, Restarts: 0, LearntClauses: 1, DeletedClauses: 0})
}
