package sema

import "github.com/kevinawalsh/alloysat/internal/ast"

// typeOf computes e's column types (one entry per relation column) and
// records the result in c.tbl.Types, returning ok=false when the
// expression's type depends on information this pass does not track
// (comprehensions over computed domains, call results, let-bound values)
// -- those are left to the encoder, which resolves them against the fully
// elaborated bounds rather than the symbol table alone.
func (c *checker) typeOf(e ast.Expr, sc *scope) ([]ColumnType, bool) {
	cols, ok := c.typeOfUncached(e, sc)
	if ok {
		c.tbl.Types[e] = cols
	}
	return cols, ok
}

func (c *checker) typeOfUncached(e ast.Expr, sc *scope) ([]ColumnType, bool) {
	switch e := e.(type) {
	case *ast.Ident:
		if ct, ok := sc.lookup(e.Name); ok {
			if ct.Sigs == nil {
				return nil, false
			}
			return []ColumnType{ct}, true
		}
		if _, ok := c.tbl.Sigs[e.Name]; ok {
			return []ColumnType{{Sigs: c.tbl.Descendants(e.Name)}}, true
		}
		return nil, false
	case *ast.Builtin:
		switch e.Kind {
		case ast.BuiltinUniv:
			return []ColumnType{{Sigs: c.allSigNames()}}, true
		case ast.BuiltinNone:
			return []ColumnType{{Sigs: nil}}, true
		case ast.BuiltinIden:
			all := c.allSigNames()
			return []ColumnType{{Sigs: all}, {Sigs: all}}, true
		}
		return nil, false
	case *ast.Unary:
		switch e.Op {
		case ast.OpTranspose:
			cols, ok := c.typeOf(e.X, sc)
			if !ok || len(cols) != 2 {
				return nil, false
			}
			return []ColumnType{cols[1], cols[0]}, true
		case ast.OpClosure, ast.OpRefClosure:
			return c.typeOf(e.X, sc)
		case ast.OpCard, ast.OpNo, ast.OpSome, ast.OpLone, ast.OpOne, ast.OpSet, ast.OpNot, ast.OpPrime:
			return nil, false
		}
		return nil, false
	case *ast.Binary:
		switch e.Op {
		case ast.OpJoin:
			xc, xok := c.typeOf(e.X, sc)
			yc, yok := c.typeOf(e.Y, sc)
			if !xok || !yok || len(xc) < 1 || len(yc) < 1 {
				return nil, false
			}
			out := append(append([]ColumnType{}, xc[:len(xc)-1]...), yc[1:]...)
			return out, true
		case ast.OpArrow:
			xc, xok := c.typeOf(e.X, sc)
			yc, yok := c.typeOf(e.Y, sc)
			if !xok || !yok {
				return nil, false
			}
			return append(append([]ColumnType{}, xc...), yc...), true
		case ast.OpUnion, ast.OpInter:
			xc, xok := c.typeOf(e.X, sc)
			yc, yok := c.typeOf(e.Y, sc)
			if !xok {
				return yc, yok
			}
			if !yok {
				return xc, true
			}
			return unionCols(xc, yc), true
		case ast.OpDiff, ast.OpOverride, ast.OpDomRes, ast.OpRanRes:
			return c.typeOf(e.X, sc)
		}
		return nil, false
	case *ast.ArrowType:
		xc, xok := c.typeOf(e.X, sc)
		yc, yok := c.typeOf(e.Y, sc)
		if !xok || !yok {
			return nil, false
		}
		return append(append([]ColumnType{}, xc...), yc...), true
	case *ast.Paren:
		return c.typeOf(e.X, sc)
	case *ast.IfExpr:
		tc, tok := c.typeOf(e.Then, sc)
		ec, eok := c.typeOf(e.Else, sc)
		if tok && eok && len(tc) == len(ec) {
			return unionCols(tc, ec), true
		}
		if tok {
			return tc, true
		}
		return ec, eok
	default:
		return nil, false
	}
}

// walkTypes recurses through a formula's structure, calling typeOf at
// every relational-expression position so its column types get memoized
// into tbl.Types even though typeOf itself does not reach inside
// formula-shaped wrappers (Compare, Quant, Call, Block, ...).
func (c *checker) walkTypes(e ast.Expr, sc *scope) {
	switch e := e.(type) {
	case *ast.Compare:
		c.typeOf(e.X, sc)
		c.typeOf(e.Y, sc)
		c.walkTypes(e.X, sc)
		c.walkTypes(e.Y, sc)
	case *ast.Unary:
		c.typeOf(e.X, sc)
		c.walkTypes(e.X, sc)
	case *ast.Binary:
		c.typeOf(e.X, sc)
		c.typeOf(e.Y, sc)
		c.walkTypes(e.X, sc)
		c.walkTypes(e.Y, sc)
	case *ast.ArrowType:
		c.typeOf(e.X, sc)
		c.typeOf(e.Y, sc)
	case *ast.Paren:
		c.walkTypes(e.X, sc)
	case *ast.Quant:
		inner := newScope(sc)
		c.bindQuantTypes(e.Decls, inner)
		c.walkTypes(e.Body, inner)
	case *ast.Comprehension:
		inner := newScope(sc)
		c.bindQuantTypes(e.Decls, inner)
		c.walkTypes(e.Body, inner)
	case *ast.LetExpr:
		inner := newScope(sc)
		for _, b := range e.Bindings {
			if ct, ok := c.typeOf(b.Value, sc); ok && len(ct) == 1 {
				inner.bind(b.Name, ct[0])
			}
			c.walkTypes(b.Value, sc)
		}
		c.walkTypes(e.Body, inner)
	case *ast.IfExpr:
		c.walkTypes(e.Cond, sc)
		c.typeOf(e.Then, sc)
		c.typeOf(e.Else, sc)
		c.walkTypes(e.Then, sc)
		c.walkTypes(e.Else, sc)
	case *ast.Block:
		for _, x := range e.Exprs {
			c.walkTypes(x, sc)
		}
	case *ast.Call:
		if e.Recv != nil {
			c.typeOf(e.Recv, sc)
			c.walkTypes(e.Recv, sc)
		}
		for _, a := range e.Args {
			c.typeOf(a, sc)
			c.walkTypes(a, sc)
		}
	case *ast.TemporalUnary:
		c.walkTypes(e.X, sc)
	case *ast.TemporalBinary:
		c.walkTypes(e.X, sc)
		c.walkTypes(e.Y, sc)
	}
}

// bindQuantTypes binds each declared variable to its domain's per-atom
// column type (the domain's own single column, since a quantified
// variable ranges over individual atoms of its domain's type).
func (c *checker) bindQuantTypes(decls []ast.VarDecl, sc *scope) {
	for _, d := range decls {
		cols, ok := c.typeOf(d.Type, sc)
		for _, n := range d.Names {
			if ok && len(cols) > 0 {
				sc.bind(n, cols[len(cols)-1])
			} else {
				sc.bind(n, ColumnType{})
			}
		}
	}
}

func (c *checker) allSigNames() []string {
	out := make([]string, 0, len(c.tbl.Sigs))
	for n := range c.tbl.Sigs {
		out = append(out, n)
	}
	return out
}

// unionCols merges two equal-length column-type lists pointwise by
// unioning each column's signature-name set (deduplicated).
func unionCols(a, b []ColumnType) []ColumnType {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]ColumnType, n)
	for i := 0; i < n; i++ {
		seen := make(map[string]bool)
		var names []string
		for _, s := range a[i].Sigs {
			if !seen[s] {
				seen[s] = true
				names = append(names, s)
			}
		}
		for _, s := range b[i].Sigs {
			if !seen[s] {
				seen[s] = true
				names = append(names, s)
			}
		}
		out[i] = ColumnType{Sigs: names}
	}
	return out
}
