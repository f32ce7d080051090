package encoder

import (
	"fmt"
	"sort"

	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/bounds"
	"github.com/kevinawalsh/alloysat/internal/sema"
	"github.com/kevinawalsh/alloysat/internal/universe"
)

// DefaultScope and DefaultSteps are the bounds a command's scope falls
// back to when it carries no explicit "for"/"steps" clause.
const (
	DefaultScope = 3
	DefaultSteps = 10
)

// scopeBuilder accumulates per-signature atom allocations while building a
// universe and bounds from a symbol table and a command's scope.
type scopeBuilder struct {
	tbl     *sema.Table
	perSig  map[string]ast.SigScope
	def     int
	atomsOf map[string][]int // concrete (non-abstract) sig name -> its own atom indices
	exact   map[string]bool  // concrete sig name -> whether its population is fixed
}

// BuildUniverseAndBounds elaborates tbl's signatures and fields into a
// concrete atom universe and relation bounds, honoring sc's per-signature
// overrides and falling back to DefaultScope otherwise. Abstract signatures
// (including enum names, which sema records as abstract sigs whose values
// are MultOne children -- see sema.Table's EnumDecl handling) receive no
// atoms or bounds entry of their own: their extension is the union of
// their concrete descendants, computed on demand by Env.sigMatrix.
func BuildUniverseAndBounds(tbl *sema.Table, sc ast.Scope) (*universe.Universe, *bounds.Bounds, error) {
	def := DefaultScope
	if sc.HasDefault {
		def = sc.Default
	}
	sb := &scopeBuilder{
		tbl:     tbl,
		perSig:  make(map[string]ast.SigScope),
		def:     def,
		atomsOf: make(map[string][]int),
		exact:   make(map[string]bool),
	}
	for _, ps := range sc.PerSig {
		sb.perSig[ps.Sig] = ps
	}

	var sigNames []string
	for n := range tbl.Sigs {
		sigNames = append(sigNames, n)
	}
	sort.Strings(sigNames)

	var names []string
	idx := 0
	for _, n := range sigNames {
		sig := tbl.Sigs[n]
		if sig.Abstract {
			continue
		}
		count, exact := sb.population(n, sig)
		own := make([]int, count)
		for i := 0; i < count; i++ {
			names = append(names, fmt.Sprintf("%s%d", n, i))
			own[i] = idx
			idx++
		}
		sb.atomsOf[n] = own
		sb.exact[n] = exact
	}
	u := universe.New(names)

	b := bounds.NewBuilder(u)
	for _, n := range sigNames {
		sig := tbl.Sigs[n]
		if sig.Abstract {
			continue
		}
		ts := tuplesUnary(sb.atomsOf[n])
		if sb.exact[n] {
			b.Exact(n, 1, ts)
		} else {
			b.Upper(n, 1, ts)
		}
	}

	for _, n := range sigNames {
		sig := tbl.Sigs[n]
		for _, f := range sig.Fields {
			owner := sb.ownerAtoms(n)
			cols, err := sb.typeColumns(f.Type)
			if err != nil {
				return nil, nil, fmt.Errorf("field %s.%s: %w", n, f.Name, err)
			}
			allCols := append([][]int{owner}, cols...)
			tuples := cartesianTuples(allCols)
			arity := len(allCols)
			b.Upper(n+"."+f.Name, arity, tuples)
		}
	}

	built, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return u, built, nil
}

// population decides a concrete signature's atom count and whether that
// count is fixed (lower==upper): an explicit "for" clause entry always
// wins; otherwise "one sig" fixes the count at exactly one, "lone sig"
// bounds it at one without fixing it, and everything else (including the
// bare default and "some sig", which this bounded encoder cannot force a
// nonzero population for any better than giving it the default scope)
// uses the command's default scope.
func (sb *scopeBuilder) population(name string, sig *sema.Sig) (count int, exact bool) {
	if ps, ok := sb.perSig[name]; ok {
		return ps.Bound, ps.Exact
	}
	switch sig.Mult {
	case ast.MultOne:
		return 1, true
	case ast.MultLone:
		return 1, false
	default:
		return sb.def, false
	}
}

// ownerAtoms returns every atom that could belong to sig name, i.e. the
// atoms of every concrete descendant (name's own atoms if it is itself
// concrete, plus every subtype's).
func (sb *scopeBuilder) ownerAtoms(name string) []int {
	var out []int
	for _, d := range sb.tbl.Descendants(name) {
		out = append(out, sb.atomsOf[d]...)
	}
	return out
}

// typeColumns walks a field's declared type expression and returns the
// atom-index domain for each relational column after the owner column,
// stripping multiplicity decorations (lone/one/some/set), which bound an
// invariant this encoder does not separately enforce beyond shaping the
// column's own upper bound -- they are not additional column constraints.
func (sb *scopeBuilder) typeColumns(t ast.Expr) ([][]int, error) {
	switch x := t.(type) {
	case *ast.Ident:
		if _, ok := sb.tbl.Sigs[x.Name]; !ok {
			return nil, fmt.Errorf("unresolved signature %q in field type", x.Name)
		}
		return [][]int{sb.ownerAtoms(x.Name)}, nil
	case *ast.Paren:
		return sb.typeColumns(x.X)
	case *ast.Unary:
		switch x.Op {
		case ast.OpSet, ast.OpLone, ast.OpOne, ast.OpSome:
			return sb.typeColumns(x.X)
		}
		return nil, fmt.Errorf("unsupported field-type operator %v", x.Op)
	case *ast.ArrowType:
		left, err := sb.typeColumns(x.X)
		if err != nil {
			return nil, err
		}
		right, err := sb.typeColumns(x.Y)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	case *ast.Binary:
		if x.Op == ast.OpArrow {
			left, err := sb.typeColumns(x.X)
			if err != nil {
				return nil, err
			}
			right, err := sb.typeColumns(x.Y)
			if err != nil {
				return nil, err
			}
			return append(left, right...), nil
		}
		return nil, fmt.Errorf("unsupported field-type expression shape (binary op %v)", x.Op)
	case *ast.Builtin:
		if x.Kind == ast.BuiltinInt {
			return nil, fmt.Errorf("Int-typed fields are unsupported; only the sum/card/comparison integer subset is bit-blasted (see DESIGN.md)")
		}
		if x.Kind == ast.BuiltinUniv {
			return [][]int{sb.allConcreteAtoms()}, nil
		}
	}
	return nil, fmt.Errorf("unsupported field-type expression %T", t)
}

func (sb *scopeBuilder) allConcreteAtoms() []int {
	var out []int
	var names []string
	for n := range sb.atomsOf {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		out = append(out, sb.atomsOf[n]...)
	}
	return out
}

func tuplesUnary(indices []int) []universe.Tuple {
	out := make([]universe.Tuple, len(indices))
	for i, a := range indices {
		out[i] = universe.Tuple{a}
	}
	return out
}

// cartesianTuples builds every tuple in the product of cols, in
// lexicographic column order.
func cartesianTuples(cols [][]int) []universe.Tuple {
	tuples := []universe.Tuple{{}}
	for _, col := range cols {
		var next []universe.Tuple
		for _, t := range tuples {
			for _, a := range col {
				nt := make(universe.Tuple, len(t)+1)
				copy(nt, t)
				nt[len(t)] = a
				next = append(next, nt)
			}
		}
		tuples = next
	}
	return tuples
}
