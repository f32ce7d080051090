// Package instance reverse-maps a satisfying SAT model back into a
// human-consumable relational instance: for every declared signature and
// field, the set of tuples whose boolean-matrix cell evaluates true under
// the model, and, for a temporal command, a per-state vector of the same
// plus the trace's loop-back index.
package instance

import (
	"fmt"
	"sort"

	"github.com/kevinawalsh/alloysat/internal/bounds"
	"github.com/kevinawalsh/alloysat/internal/boolmatrix"
	"github.com/kevinawalsh/alloysat/internal/encoder"
	"github.com/kevinawalsh/alloysat/internal/trace"
	"github.com/kevinawalsh/alloysat/internal/universe"
)

// Instance is the extracted value of every declared relation under a
// satisfying model.
type Instance struct {
	// Relations holds each bare signature/field name's tuple-set for a
	// non-temporal (plain) command, or state 0's for a temporal one.
	Relations map[string]*universe.TupleSet

	// Trace is non-nil only for a temporal command: the per-state vector
	// of every var relation's tuple-set plus the loop-back index.
	Trace *Trace
}

// Trace is the lasso-shaped per-state extraction for a temporal command.
type Trace struct {
	Length    int
	LoopState int
	// States[s] holds every var relation's tuple-set at state s; static
	// (non-var) relations are the same across every state and are not
	// repeated here, only in Instance.Relations.
	States []map[string]*universe.TupleSet
}

// Extract walks every tuple m could hold and keeps the ones whose
// membership formula evaluates true under model.
func Extract(m *boolmatrix.Matrix, model []bool) *universe.TupleSet {
	var kept []universe.Tuple
	for _, t := range m.Tuples() {
		if m.At(t).Eval(model) {
			kept = append(kept, t)
		}
	}
	return universe.NewTupleSet(m.Arity, kept)
}

// relationNames returns every bare sig/field name a plain command's bounds
// declares, in sorted order for determinism.
func relationNames(b *bounds.Bounds) []string {
	names := b.Names()
	sort.Strings(names)
	return names
}

// BuildPlain extracts a non-temporal command's instance: one tuple-set per
// declared relation.
func BuildPlain(env *encoder.Env, b *bounds.Bounds, model []bool) *Instance {
	rels := make(map[string]*universe.TupleSet)
	for _, name := range relationNames(b) {
		m, ok := env.Relation(name)
		if !ok {
			continue
		}
		rels[name] = Extract(m, model)
	}
	return &Instance{Relations: rels}
}

// BuildTemporal extracts a temporal command's instance: state 0's
// relations (for parity with a plain instance's top-level view) plus the
// full per-state vector of var-relation tuple-sets and the resolved
// loop-back index.
func BuildTemporal(te *trace.Env, b *bounds.Bounds, model []bool) (*Instance, error) {
	names := relationNames(b)
	rels := make(map[string]*universe.TupleSet)
	for _, name := range names {
		m, ok := te.Relation(name, 0)
		if !ok {
			continue
		}
		rels[name] = Extract(m, model)
	}

	loop := -1
	for k, v := range te.Loop {
		if model[v] {
			loop = k
			break
		}
	}
	if loop < 0 {
		return nil, fmt.Errorf("instance: no loop-back state was true in the model (exactly one loop variable should hold)")
	}

	states := make([]map[string]*universe.TupleSet, te.L)
	for s := 0; s < te.L; s++ {
		st := make(map[string]*universe.TupleSet)
		for _, name := range names {
			m, ok := te.Relation(name, s)
			if !ok {
				continue
			}
			st[name] = Extract(m, model)
		}
		states[s] = st
	}

	return &Instance{
		Relations: rels,
		Trace: &Trace{
			Length:    te.L,
			LoopState: loop,
			States:    states,
		},
	}, nil
}
