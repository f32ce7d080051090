// Package dimacs reads and writes the DIMACS CNF interchange format: a
// "p cnf <vars> <clauses>" preamble, "c"-prefixed comment lines, and one
// zero-terminated signed-literal clause per line (or spread across lines).
// This is the on-disk format the CLI's "dimacs" subcommand feeds straight
// to the solver, and the format internal/sat's own test fixtures use.
package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kevinawalsh/alloysat/internal/boolform"
)

// Write renders cnf in DIMACS CNF text form, with comment lines inserted
// verbatim (without a leading "c ", which Write adds) before the preamble.
func Write(w io.Writer, cnf *boolform.CNF, comments ...string) error {
	bw := bufio.NewWriter(w)
	for _, c := range comments {
		if _, err := fmt.Fprintf(bw, "c %s\n", c); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", cnf.NumVars, len(cnf.Clauses)); err != nil {
		return err
	}
	for _, cl := range cnf.Clauses {
		sorted := boolform.SortClauseLits(cl)
		var sb strings.Builder
		for _, lit := range sorted {
			sb.WriteString(strconv.Itoa(lit))
			sb.WriteByte(' ')
		}
		sb.WriteByte('0')
		if _, err := fmt.Fprintln(bw, sb.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses a DIMACS CNF document. Comment ("c") and blank lines are
// skipped; a "p cnf nvars nclauses" preamble is required before the first
// clause (a later preamble line replaces the variable count). A
// missing trailing "0" on the final clause line (some DIMACS producers
// drop it at EOF) is tolerated: whatever literals were read before EOF are
// taken as the last clause.
func Read(r io.Reader) (*boolform.CNF, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	cnf := &boolform.CNF{}
	sawPreamble := false
	var pending []int
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "p") {
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[0] != "p" || fields[1] != "cnf" {
				return nil, fmt.Errorf("dimacs: line %d: malformed preamble %q", lineNo, line)
			}
			nvars, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("dimacs: line %d: bad variable count: %w", lineNo, err)
			}
			cnf.NumVars = nvars
			sawPreamble = true
			continue
		}
		if !sawPreamble {
			return nil, fmt.Errorf("dimacs: line %d: clause literals before preamble", lineNo)
		}
		for _, tok := range strings.Fields(line) {
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("dimacs: line %d: bad literal %q: %w", lineNo, tok, err)
			}
			if n == 0 {
				cnf.Clauses = append(cnf.Clauses, boolform.Clause(append([]int(nil), pending...)))
				pending = pending[:0]
				continue
			}
			pending = append(pending, n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !sawPreamble {
		return nil, fmt.Errorf("dimacs: missing \"p cnf\" preamble")
	}
	if len(pending) > 0 {
		cnf.Clauses = append(cnf.Clauses, boolform.Clause(pending))
	}
	return cnf, nil
}
