package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kevinawalsh/alloysat/internal/config"
)

// Exit codes, per SPEC_FULL.md §6: 0 SAT, 1 UNSAT, 2 model errors / parse
// failure, 3 UNKNOWN (cancelled), 4 usage error.
const (
	exitSAT         = 0
	exitUNSAT       = 1
	exitModelErrors = 2
	exitUnknown     = 3
	exitUsage       = 4
)

func main() {
	root := &cobra.Command{
		Use:   "alloysat",
		Short: "alloysat — Alloy 6 relational model finder",
		Long:  "Parses, analyzes, and solves Alloy 6 run/check commands over a bounded universe.",
	}
	root.AddCommand(runCmd(), checkCmd(), dimacsCmd(), statsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(exitUsage)
	}
}

// historyDBPath returns the SQLite file backing run history, alongside
// the user config file.
func historyDBPath() string {
	dir := filepath.Dir(config.UserPath())
	if dir == "" || dir == "." {
		return "alloysat-history.db"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "alloysat-history.db"
	}
	return filepath.Join(dir, "history.db")
}
