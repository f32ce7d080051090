// Package run wires the full pipeline together for one command: parse,
// analyze, elaborate a universe and bounds from the command's scope,
// encode (directly via internal/encoder for a plain module, or through
// internal/trace for a temporal one), hand the resulting CNF to
// internal/sat, and reverse-map a satisfying model through
// internal/instance.
package run

import (
	"context"
	"fmt"
	"time"

	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/bounds"
	"github.com/kevinawalsh/alloysat/internal/diag"
	"github.com/kevinawalsh/alloysat/internal/encoder"
	"github.com/kevinawalsh/alloysat/internal/instance"
	"github.com/kevinawalsh/alloysat/internal/parser"
	"github.com/kevinawalsh/alloysat/internal/sat"
	"github.com/kevinawalsh/alloysat/internal/sema"
	"github.com/kevinawalsh/alloysat/internal/trace"
)

// DefaultSteps is the step bound used when a temporal command's scope
// specifies none (spec.md §6: "absent steps default to 10 for temporal
// models").
const DefaultSteps = 10

// ModelErrors reports that semantic analysis produced error-severity
// diagnostics: per spec.md §7, the pipeline refuses to run a command
// rather than encode against a broken symbol table.
type ModelErrors struct {
	Diags *diag.Bag
}

func (e *ModelErrors) Error() string {
	return fmt.Sprintf("model has errors:\n%s", e.Diags)
}

// Result is one command's full outcome.
type Result struct {
	Command     *ast.Command
	Status      sat.Status
	Instance    *instance.Instance // nil unless Status is sat.Satisfiable
	Stats       sat.Stats
	SolveTimeMs int64
	Bounds      *bounds.Bounds
}

// Run parses src, checks it, and executes cmd (or, if cmd is nil, the
// module's own designated command). opts tunes the CDCL solver; pass
// sat.DefaultOptions() for the documented defaults.
func Run(ctx context.Context, src string, cmd *ast.Command, opts sat.Options) (*Result, error) {
	mod, pdiags := parser.Parse(src)
	tbl, sdiags := sema.Check(mod)

	all := diag.Bag{}
	for _, d := range pdiags.Items() {
		all.Add(d)
	}
	for _, d := range sdiags.Items() {
		all.Add(d)
	}
	if all.HasErrors() {
		return nil, &ModelErrors{Diags: &all}
	}

	if cmd == nil {
		cmd = mod.Command
	}
	if cmd == nil {
		return nil, fmt.Errorf("run: module declares no run/check command to execute")
	}

	_, b, err := encoder.BuildUniverseAndBounds(tbl, cmd.Scope)
	if err != nil {
		return nil, err
	}

	env := encoder.NewEnv(b, tbl)

	var encErr error
	var te *trace.Env
	if tbl.Temporal {
		l := DefaultSteps
		if cmd.Scope.HasSteps {
			l = cmd.Scope.Steps
		}
		te = trace.NewEnv(env, tbl, l)
		encErr = te.EncodeCommand(cmd, encoder.NewScope(nil))
	} else {
		encErr = env.EncodeCommand(cmd, encoder.NewScope(nil))
	}
	if encErr != nil {
		return nil, encErr
	}

	cnf := env.Builder.CNF()
	solver := sat.NewSolver(cnf.NumVars, opts)
	for _, c := range cnf.Clauses {
		if !solver.AddClause(c) {
			break // contradiction detected; Solve will report Unsatisfiable
		}
	}

	start := time.Now()
	solved := solver.Solve(ctx)
	elapsed := time.Since(start)

	result := &Result{
		Command:     cmd,
		Status:      solved.Status,
		Stats:       solver.Stats(),
		SolveTimeMs: elapsed.Milliseconds(),
		Bounds:      b,
	}

	if solved.Status != sat.Satisfiable {
		return result, nil
	}

	if tbl.Temporal {
		inst, ierr := instance.BuildTemporal(te, b, solved.Model)
		if ierr != nil {
			return nil, ierr
		}
		result.Instance = inst
	} else {
		result.Instance = instance.BuildPlain(env, b, solved.Model)
	}
	return result, nil
}
