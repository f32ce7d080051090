package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/config"
	"github.com/kevinawalsh/alloysat/internal/historydb"
	"github.com/kevinawalsh/alloysat/internal/logging"
	"github.com/kevinawalsh/alloysat/internal/parser"
	"github.com/kevinawalsh/alloysat/internal/report"
	"github.com/kevinawalsh/alloysat/internal/run"
	"github.com/kevinawalsh/alloysat/internal/sat"
)

// scopeOverride carries the CLI's optional --scope/--steps flags; HasX is
// false when the flag was not passed, so the module's own declared scope
// (or the documented default) wins.
type scopeOverride struct {
	Scope    int
	HasScope bool
	Steps    int
	HasSteps bool
}

// resolveCommand parses src and returns a copy of its designated command
// with scope/steps overridden per ov. The copy is otherwise identical, so
// internal/encoder's name resolution (keyed on Name/Body, not Scope)
// behaves exactly as if the override had been written into the source.
func resolveCommand(src string, ov scopeOverride) (*ast.Command, error) {
	mod, _ := parser.Parse(src)
	if mod.Command == nil {
		return nil, nil
	}
	cmd := *mod.Command
	if ov.HasScope {
		cmd.Scope.Default = ov.Scope
		cmd.Scope.HasDefault = true
	}
	if ov.HasSteps {
		cmd.Scope.Steps = ov.Steps
		cmd.Scope.HasSteps = true
	}
	return &cmd, nil
}

func sourceDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// runFile executes one file's designated run/check command to completion,
// prints a report.Summary, records the outcome in the run-history store,
// and returns the process exit code per SPEC_FULL.md §6.
func runFile(ctx context.Context, file string, cfg config.Config, ov scopeOverride) int {
	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	src := string(data)

	cmd, err := resolveCommand(src, ov)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitModelErrors
	}

	opts := cfg.Solver
	label := file
	if cmd != nil && cmd.Name != "" {
		label = cmd.Name
	}
	opts.OnProgress = logging.Progress(label)

	res, err := run.Run(ctx, src, cmd, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitModelErrors
	}

	fmt.Print(report.FromResult(res).String())
	recordHistory(sourceDigest(data), res)

	switch res.Status {
	case sat.Satisfiable:
		return exitSAT
	case sat.Unsatisfiable:
		return exitUNSAT
	default:
		return exitUnknown
	}
}

// recordHistory persists res to the run-history store, logging (not
// failing) on error: history is bookkeeping, never load-bearing for the
// command's own exit code.
func recordHistory(digest string, res *run.Result) {
	store, err := historydb.Open(historyDBPath())
	if err != nil {
		if logging.Log != nil {
			logging.Log.Warn("could not open run history", "error", err)
		}
		return
	}
	defer store.Close()
	if err := store.Record(digest, res); err != nil && logging.Log != nil {
		logging.Log.Warn("could not record run history", "error", err)
	}
}
