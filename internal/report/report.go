// Package report aggregates a run.Result's statistics into the small
// summary the CLI prints for a human after a run/check, or a UI would
// consume as structured data. Per spec.md §2, this component is a thin
// stub in the core: the real report generator (formatting, charts,
// history trends) lives outside the engine entirely.
package report

import (
	"fmt"
	"strings"

	"github.com/kevinawalsh/alloysat/internal/run"
)

// Summary is the aggregated, UI-facing view of one solve invocation.
type Summary struct {
	Command       string
	Verdict       string
	Decisions     int64
	Propagations  int64
	Conflicts     int64
	Restarts      int64
	Learnts       int64
	Deleted       int64
	SolveTimeMs   int64
	RelationCount int
	StateCount    int // 0 for a plain (non-temporal) instance
}

// FromResult builds a Summary from a completed run.Result.
func FromResult(res *run.Result) Summary {
	s := Summary{
		Command:      res.Command.Name,
		Verdict:      res.Status.String(),
		Decisions:    res.Stats.Decisions,
		Propagations: res.Stats.Propagations,
		Conflicts:    res.Stats.Conflicts,
		Restarts:     res.Stats.Restarts,
		Learnts:      int64(res.Stats.LearntClauses),
		Deleted:      res.Stats.DeletedClauses,
		SolveTimeMs:  res.SolveTimeMs,
	}
	if res.Instance != nil {
		s.RelationCount = len(res.Instance.Relations)
		if res.Instance.Trace != nil {
			s.StateCount = res.Instance.Trace.Length
		}
	}
	return s
}

// String renders a Summary as the short multi-line form the CLI prints
// after a run/check invocation.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", s.Command, s.Verdict)
	fmt.Fprintf(&b, "  decisions: %d  propagations: %d  conflicts: %d  restarts: %d\n",
		s.Decisions, s.Propagations, s.Conflicts, s.Restarts)
	fmt.Fprintf(&b, "  learned clauses: %d  deleted: %d\n", s.Learnts, s.Deleted)
	fmt.Fprintf(&b, "  solve time: %dms\n", s.SolveTimeMs)
	if s.RelationCount > 0 {
		if s.StateCount > 0 {
			fmt.Fprintf(&b, "  relations: %d over %d states\n", s.RelationCount, s.StateCount)
		} else {
			fmt.Fprintf(&b, "  relations: %d\n", s.RelationCount)
		}
	}
	return b.String()
}

// HistoryLine renders one historydb.Entry-shaped row for the "stats"
// subcommand's table; callers pass the already-formatted fields to avoid
// this package depending on internal/historydb (kept a leaf dependency of
// cmd/alloysat only, per spec.md §2's component layering).
func HistoryLine(verdict string, decisions, conflicts, solveTimeMs int64, createdAt string) string {
	return fmt.Sprintf("%-10s  decisions=%-8d conflicts=%-8d %6dms  %s",
		verdict, decisions, conflicts, solveTimeMs, createdAt)
}
