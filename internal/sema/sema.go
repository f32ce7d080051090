// Package sema builds the symbol table for a parsed module, resolves
// names, checks structural well-formedness, and attaches a type (a set of
// possible signatures, i.e. an arity-1 sort) to every expression node that
// denotes a relation. It is the single gate between the parser and every
// downstream component: nothing past this package ever re-checks a name.
package sema

import (
	"fmt"

	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/diag"
	"github.com/kevinawalsh/alloysat/internal/srcpos"
)

// Sig is the resolved symbol-table entry for one declared signature.
type Sig struct {
	Name     string
	Abstract bool
	Var      bool
	Mult     ast.Mult
	Extends  string   // parent signature name, empty if none
	In       []string // "in" parent names, empty if Extends is set
	Fields   []*Field
	Decl     *ast.SigDecl
}

// Field is one resolved field of a signature, carrying its arity (1 plus
// the number of relational type components after the receiver column).
type Field struct {
	Name  string
	Owner string // owning signature name
	Disj  bool
	Var   bool
	Type  ast.Expr
	Arity int
}

// Pred is a resolved predicate (or, via IsFun, function) symbol.
type Pred struct {
	Name    string
	Recv    string // receiver sig name, empty if none
	Params  []ast.Param
	RetType ast.Expr // nil for predicates
	IsFun   bool
	Decl    ast.Decl
}

// Assert is a resolved named assertion.
type Assert struct {
	Name string
	Body ast.Expr
}

// Enum is a resolved enum declaration; its values behave as an abstract
// signature with one singleton child per value.
type Enum struct {
	Name   string
	Values []string
}

// Table is the fully resolved symbol table for one module, plus a
// type-of-expression map populated by Check.
type Table struct {
	Sigs    map[string]*Sig
	Preds   map[string]*Pred
	Asserts map[string]*Assert
	Enums   map[string]*Enum
	Facts   []*ast.FactDecl

	// Temporal reports whether the module uses any construct (var
	// declarations, temporal operators, ';') that requires translation as
	// a temporal (trace) model rather than a single-state model.
	Temporal bool

	// Types maps an expression node's identity to its inferred type: the
	// set of signature names it may range over, one entry per relation
	// column. A boolean-valued (formula) expression has a nil entry.
	Types map[ast.Expr][]ColumnType
}

// ColumnType is the inferred sort of one column of a relational
// expression's type: the union of signature names an atom in that column
// may belong to.
type ColumnType struct {
	Sigs []string
}

// scope is a lexical binding environment for quantifier/let-bound
// variables and predicate/function parameters, chained to its parent.
type scope struct {
	parent *scope
	vars   map[string]ColumnType
}

func newScope(parent *scope) *scope { return &scope{parent: parent, vars: make(map[string]ColumnType)} }

func (s *scope) lookup(name string) (ColumnType, bool) {
	for c := s; c != nil; c = c.parent {
		if t, ok := c.vars[name]; ok {
			return t, true
		}
	}
	return ColumnType{}, false
}

func (s *scope) bind(name string, t ColumnType) { s.vars[name] = t }

// checker threads the symbol table and diagnostics through the recursive
// AST walk; lexical scope is threaded explicitly per call instead.
type checker struct {
	tbl   *Table
	diags *diag.Bag
}

// Check resolves and type-checks a parsed module, returning its symbol
// table (always non-nil, even on error) and accumulated diagnostics.
func Check(m *ast.Module) (*Table, *diag.Bag) {
	tbl := &Table{
		Sigs:    make(map[string]*Sig),
		Preds:   make(map[string]*Pred),
		Asserts: make(map[string]*Assert),
		Enums:   make(map[string]*Enum),
		Types:   make(map[ast.Expr][]ColumnType),
	}
	c := &checker{tbl: tbl, diags: &diag.Bag{}}

	c.collectTopLevel(m)
	c.checkDuplicateNames(m)
	c.checkInheritance()
	c.resolveFieldTypes()
	c.detectTemporal(m)

	for _, f := range tbl.Facts {
		c.checkFormula(f.Body, newScope(nil))
	}
	for _, p := range tbl.Preds {
		c.checkPredOrFun(p)
	}
	for _, a := range tbl.Asserts {
		c.checkFormula(a.Body, newScope(nil))
	}
	if m.Command != nil {
		c.checkCommand(m.Command)
	}

	return tbl, c.diags
}

// collectTopLevel populates the symbol table's maps from the module's
// declaration list, without yet checking for duplicates or cycles.
func (c *checker) collectTopLevel(m *ast.Module) {
	for _, d := range m.Decls {
		switch d := d.(type) {
		case *ast.SigDecl:
			for _, name := range d.Names {
				sig := &Sig{
					Name:     name,
					Abstract: d.Abstract,
					Var:      d.Var,
					Mult:     d.Mult,
					Extends:  d.Extends,
					In:       d.InParents,
					Decl:     d,
				}
				for _, fd := range d.Fields {
					for _, fname := range fd.Names {
						sig.Fields = append(sig.Fields, &Field{
							Name: fname, Owner: name, Disj: fd.Disj, Var: fd.Var, Type: fd.Type,
						})
					}
				}
				c.tbl.Sigs[name] = sig
				for _, body := range d.Facts {
					c.tbl.Facts = append(c.tbl.Facts, &ast.FactDecl{Name: "", Body: body})
				}
			}
		case *ast.FactDecl:
			c.tbl.Facts = append(c.tbl.Facts, d)
		case *ast.PredDecl:
			c.tbl.Preds[predKey(d.Recv, d.Name)] = &Pred{Name: d.Name, Recv: d.Recv, Params: d.Params, Decl: d}
		case *ast.FunDecl:
			c.tbl.Preds[predKey(d.Recv, d.Name)] = &Pred{Name: d.Name, Recv: d.Recv, Params: d.Params, RetType: d.RetType, IsFun: true, Decl: d}
		case *ast.AssertDecl:
			c.tbl.Asserts[d.Name] = &Assert{Name: d.Name, Body: d.Body}
		case *ast.EnumDecl:
			c.tbl.Enums[d.Name] = &Enum{Name: d.Name, Values: d.Values}
			// Each enum value behaves as a singleton one-sig extending the
			// enum's (abstract) signature.
			c.tbl.Sigs[d.Name] = &Sig{Name: d.Name, Abstract: true, Decl: nil}
			for _, v := range d.Values {
				c.tbl.Sigs[v] = &Sig{Name: v, Mult: ast.MultOne, Extends: d.Name}
			}
		}
	}
}

func predKey(recv, name string) string {
	if recv == "" {
		return name
	}
	return recv + "." + name
}

// checkDuplicateNames enforces "no duplicate top-level names" across sigs,
// predicates/functions (by unqualified name when receiverless), asserts,
// and enums.
func (c *checker) checkDuplicateNames(m *ast.Module) {
	seen := make(map[string]srcpos.Span)
	declare := func(name string, sp srcpos.Span) {
		if name == "" {
			return
		}
		if prev, ok := seen[name]; ok {
			c.diags.Errorf(sp, "sema.dup-name", "duplicate top-level name %q (also declared at %s)", name, prev)
			return
		}
		seen[name] = sp
	}
	for _, d := range m.Decls {
		switch d := d.(type) {
		case *ast.SigDecl:
			for _, n := range d.Names {
				declare(n, d.Span())
			}
		case *ast.PredDecl:
			if d.Recv == "" {
				declare(d.Name, d.Span())
			}
		case *ast.FunDecl:
			if d.Recv == "" {
				declare(d.Name, d.Span())
			}
		case *ast.AssertDecl:
			declare(d.Name, d.Span())
		case *ast.EnumDecl:
			declare(d.Name, d.Span())
			for _, v := range d.Values {
				declare(v, d.Span())
			}
		}
	}
}

// checkInheritance verifies that every extends/in target resolves to a
// declared signature and that the extends graph is acyclic.
func (c *checker) checkInheritance() {
	for name, sig := range c.tbl.Sigs {
		if sig.Extends != "" {
			if _, ok := c.tbl.Sigs[sig.Extends]; !ok {
				c.diags.Errorf(sig.span(), "sema.unresolved-extends", "signature %q extends unresolved signature %q", name, sig.Extends)
			}
		}
		for _, p := range sig.In {
			if _, ok := c.tbl.Sigs[p]; !ok {
				c.diags.Errorf(sig.span(), "sema.unresolved-in", "signature %q is declared \"in\" unresolved signature %q", name, p)
			}
		}
	}
	for name := range c.tbl.Sigs {
		c.checkNoExtendsCycle(name, make(map[string]bool))
	}
}

func (c *checker) checkNoExtendsCycle(name string, visiting map[string]bool) {
	if visiting[name] {
		return
	}
	sig, ok := c.tbl.Sigs[name]
	if !ok || sig.Extends == "" {
		return
	}
	visiting[name] = true
	cur := name
	path := []string{name}
	for {
		sig, ok := c.tbl.Sigs[cur]
		if !ok || sig.Extends == "" {
			return
		}
		next := sig.Extends
		for _, p := range path {
			if p == next {
				c.diags.Errorf(sig.span(), "sema.extends-cycle", "inheritance cycle detected among signatures: %v -> %s", path, next)
				return
			}
		}
		path = append(path, next)
		cur = next
	}
}

func (s *Sig) span() srcpos.Span {
	if s.Decl != nil {
		return s.Decl.Span()
	}
	return srcpos.Span{}
}

// resolveFieldTypes checks that every field's declared type expression
// resolves (every identifier it mentions names a known signature, field,
// or enum) and records its arity.
func (c *checker) resolveFieldTypes() {
	for _, sig := range c.tbl.Sigs {
		for _, f := range sig.Fields {
			if f.Type == nil {
				continue
			}
			arity := c.fieldTypeArity(f.Type)
			f.Arity = arity + 1 // plus the implicit receiver column
			c.checkExprNamesResolve(f.Type, newScope(nil))
		}
	}
}

// fieldTypeArity computes the arity contributed by a field's type
// expression (excluding the implicit receiver column), by structurally
// walking arrow/product chains.
func (c *checker) fieldTypeArity(e ast.Expr) int {
	switch e := e.(type) {
	case *ast.ArrowType:
		return c.fieldTypeArity(e.X) + c.fieldTypeArity(e.Y)
	case *ast.Binary:
		if e.Op == ast.OpArrow {
			return c.fieldTypeArity(e.X) + c.fieldTypeArity(e.Y)
		}
		return c.fieldTypeArity(e.X)
	case *ast.Unary:
		switch e.Op {
		case ast.OpSet, ast.OpLone, ast.OpOne, ast.OpSome, ast.OpNo:
			return c.fieldTypeArity(e.X)
		}
		return 1
	case *ast.Paren:
		return c.fieldTypeArity(e.X)
	default:
		return 1
	}
}

// checkExprNamesResolve walks e and reports any identifier that resolves
// to neither a signature, a field, an enum value, nor a bound variable in
// scope.
func (c *checker) checkExprNamesResolve(e ast.Expr, sc *scope) {
	switch e := e.(type) {
	case *ast.Ident:
		if _, ok := sc.lookup(e.Name); ok {
			return
		}
		if _, ok := c.tbl.Sigs[e.Name]; ok {
			return
		}
		if _, ok := c.tbl.Enums[e.Name]; ok {
			return
		}
		for _, sig := range c.tbl.Sigs {
			for _, f := range sig.Fields {
				if f.Name == e.Name {
					return
				}
			}
		}
		c.diags.Errorf(e.Span(), "sema.unresolved-name", "unresolved name %q", e.Name)
	case *ast.Unary:
		c.checkExprNamesResolve(e.X, sc)
	case *ast.Binary:
		c.checkExprNamesResolve(e.X, sc)
		c.checkExprNamesResolve(e.Y, sc)
	case *ast.ArrowType:
		c.checkExprNamesResolve(e.X, sc)
		c.checkExprNamesResolve(e.Y, sc)
	case *ast.Compare:
		c.checkExprNamesResolve(e.X, sc)
		c.checkExprNamesResolve(e.Y, sc)
	case *ast.Paren:
		c.checkExprNamesResolve(e.X, sc)
	case *ast.Quant:
		inner := newScope(sc)
		c.bindDecls(e.Decls, inner)
		c.checkExprNamesResolve(e.Body, inner)
	case *ast.Comprehension:
		inner := newScope(sc)
		c.bindDecls(e.Decls, inner)
		c.checkExprNamesResolve(e.Body, inner)
	case *ast.LetExpr:
		inner := newScope(sc)
		for _, b := range e.Bindings {
			c.checkExprNamesResolve(b.Value, inner)
			inner.bind(b.Name, ColumnType{})
		}
		c.checkExprNamesResolve(e.Body, inner)
	case *ast.IfExpr:
		c.checkExprNamesResolve(e.Cond, sc)
		c.checkExprNamesResolve(e.Then, sc)
		c.checkExprNamesResolve(e.Else, sc)
	case *ast.Block:
		for _, x := range e.Exprs {
			c.checkExprNamesResolve(x, sc)
		}
	case *ast.Call:
		if e.Recv != nil {
			c.checkExprNamesResolve(e.Recv, sc)
		}
		for _, a := range e.Args {
			c.checkExprNamesResolve(a, sc)
		}
		if e.Recv == nil {
			// Method-call syntax ("recv.name[args]") is left unchecked
			// here: resolving it requires the receiver's signature type,
			// which this pass does not always have (see DESIGN.md sema
			// type-attachment decision); the encoder resolves it instead.
			if _, ok := c.tbl.Preds[e.Name]; !ok {
				if _, ok := sc.lookup(e.Name); !ok {
					c.diags.Errorf(e.Span(), "sema.unresolved-call", "call to unresolved predicate or function %q", e.Name)
				}
			}
		}
	case *ast.TemporalUnary:
		c.checkExprNamesResolve(e.X, sc)
	case *ast.TemporalBinary:
		c.checkExprNamesResolve(e.X, sc)
		c.checkExprNamesResolve(e.Y, sc)
	}
}

// bindDecls resolves each VarDecl's domain type and binds its names into
// sc, reporting an error if a domain is structurally empty ("no A" used
// directly as a declaration type is the only statically-detectable empty
// domain; most emptiness is a bounds-time property, not a parse-time one).
func (c *checker) bindDecls(decls []ast.VarDecl, sc *scope) {
	for _, d := range decls {
		c.checkExprNamesResolve(d.Type, sc)
		if u, ok := d.Type.(*ast.Unary); ok && u.Op == ast.OpNo {
			c.diags.Errorf(d.Span(), "sema.empty-domain", "quantifier variable %v has a structurally empty domain", d.Names)
		}
		for _, n := range d.Names {
			sc.bind(n, ColumnType{})
		}
	}
}

// checkFormula walks a fact/assertion/predicate body, resolving names and
// checking relational-arity constraints (join, arrow, closures).
func (c *checker) checkFormula(e ast.Expr, sc *scope) {
	c.checkExprNamesResolve(e, sc)
	c.checkArities(e, sc)
	c.walkTypes(e, sc)
}

// checkArities walks e checking: "." join requires both operands to have
// arity >= 1; "~ ^ *" require a binary operand.
func (c *checker) checkArities(e ast.Expr, sc *scope) {
	switch e := e.(type) {
	case *ast.Unary:
		switch e.Op {
		case ast.OpClosure, ast.OpRefClosure, ast.OpTranspose:
			if a := c.exprArity(e.X, sc); a >= 0 && a != 2 {
				c.diags.Errorf(e.Span(), "sema.bad-arity", "closure/transpose operator requires a binary relation operand, got arity %d", a)
			}
		}
		c.checkArities(e.X, sc)
	case *ast.Binary:
		c.checkArities(e.X, sc)
		c.checkArities(e.Y, sc)
		if e.Op == ast.OpJoin {
			ax, ay := c.exprArity(e.X, sc), c.exprArity(e.Y, sc)
			if ax >= 0 && ay >= 0 && (ax < 1 || ay < 1) {
				c.diags.Errorf(e.Span(), "sema.bad-join", "join operands must each have arity >= 1")
			}
			if ax >= 0 && ay >= 0 && ax+ay-2 < 0 {
				c.diags.Errorf(e.Span(), "sema.bad-join", "join result has negative arity (%d . %d)", ax, ay)
			}
		}
	case *ast.Compare:
		c.checkArities(e.X, sc)
		c.checkArities(e.Y, sc)
	case *ast.ArrowType:
		c.checkArities(e.X, sc)
		c.checkArities(e.Y, sc)
	case *ast.Paren:
		c.checkArities(e.X, sc)
	case *ast.Quant:
		inner := newScope(sc)
		c.bindDecls(e.Decls, inner)
		c.checkArities(e.Body, inner)
	case *ast.Comprehension:
		inner := newScope(sc)
		c.bindDecls(e.Decls, inner)
		c.checkArities(e.Body, inner)
	case *ast.LetExpr:
		inner := newScope(sc)
		for _, b := range e.Bindings {
			c.checkArities(b.Value, inner)
		}
		c.checkArities(e.Body, inner)
	case *ast.IfExpr:
		c.checkArities(e.Cond, sc)
		c.checkArities(e.Then, sc)
		c.checkArities(e.Else, sc)
	case *ast.Block:
		for _, x := range e.Exprs {
			c.checkArities(x, sc)
		}
	case *ast.Call:
		if e.Recv != nil {
			c.checkArities(e.Recv, sc)
		}
		for _, a := range e.Args {
			c.checkArities(a, sc)
		}
	case *ast.TemporalUnary:
		c.checkArities(e.X, sc)
	case *ast.TemporalBinary:
		c.checkArities(e.X, sc)
		c.checkArities(e.Y, sc)
	}
}

// exprArity returns a best-effort static arity for e, or -1 if it cannot
// be determined without full type inference (calls, comprehensions
// combined with further joins, etc. are left to the encoder, which knows
// the full resolved types).
func (c *checker) exprArity(e ast.Expr, sc *scope) int {
	switch e := e.(type) {
	case *ast.Ident:
		if sig, ok := c.tbl.Sigs[e.Name]; ok {
			_ = sig
			return 1
		}
		return -1
	case *ast.Builtin:
		switch e.Kind {
		case ast.BuiltinUniv, ast.BuiltinNone:
			return 1
		case ast.BuiltinIden:
			return 2
		}
		return -1
	case *ast.Unary:
		switch e.Op {
		case ast.OpTranspose:
			return 2
		case ast.OpClosure, ast.OpRefClosure:
			return 2
		case ast.OpCard, ast.OpNo, ast.OpSome, ast.OpLone, ast.OpOne, ast.OpSet, ast.OpNot:
			return -1 // formula-valued or integer-valued, not relational
		}
		return c.exprArity(e.X, sc)
	case *ast.Binary:
		switch e.Op {
		case ast.OpJoin:
			ax, ay := c.exprArity(e.X, sc), c.exprArity(e.Y, sc)
			if ax < 0 || ay < 0 {
				return -1
			}
			return ax + ay - 2
		case ast.OpArrow:
			ax, ay := c.exprArity(e.X, sc), c.exprArity(e.Y, sc)
			if ax < 0 || ay < 0 {
				return -1
			}
			return ax + ay
		case ast.OpUnion, ast.OpDiff, ast.OpInter, ast.OpOverride, ast.OpDomRes, ast.OpRanRes:
			return c.exprArity(e.X, sc)
		}
		return -1
	case *ast.ArrowType:
		ax, ay := c.exprArity(e.X, sc), c.exprArity(e.Y, sc)
		if ax < 0 || ay < 0 {
			return -1
		}
		return ax + ay
	case *ast.Paren:
		return c.exprArity(e.X, sc)
	default:
		return -1
	}
}

func (c *checker) checkPredOrFun(p *Pred) {
	sc := newScope(nil)
	if p.Recv != "" {
		sc.bind("this", ColumnType{})
	}
	for _, param := range p.Params {
		for _, n := range param.Names {
			c.checkExprNamesResolve(param.Type, sc)
			sc.bind(n, ColumnType{})
		}
	}
	if fd, ok := p.Decl.(*ast.FunDecl); ok {
		c.checkExprNamesResolve(fd.RetType, sc)
		c.checkExprNamesResolve(fd.Body, sc)
		c.checkArities(fd.Body, sc)
		c.walkTypes(fd.Body, sc)
		return
	}
	if pd, ok := p.Decl.(*ast.PredDecl); ok {
		c.checkFormula(pd.Body, sc)
	}
}

// checkCommand verifies that a run/check command's target resolves to a
// declared predicate, assertion, or (for an anonymous command) is an
// inline body, and that every per-signature scope override names a real
// signature.
func (c *checker) checkCommand(cmd *ast.Command) {
	if cmd.Body != nil {
		c.checkFormula(cmd.Body, newScope(nil))
	} else if cmd.Name != "" {
		_, isPred := c.tbl.Preds[cmd.Name]
		_, isAssert := c.tbl.Asserts[cmd.Name]
		if !isPred && !isAssert {
			c.diags.Errorf(cmd.Span(), "sema.unresolved-command-target", "command target %q does not name a predicate, function, or assertion", cmd.Name)
		}
		if cmd.Kind == ast.CmdCheck && isPred && !isAssert {
			c.diags.Errorf(cmd.Span(), "sema.check-target-not-assertion", "check command target %q names a predicate, not an assertion", cmd.Name)
		}
	}
	for _, ss := range cmd.Scope.PerSig {
		if _, ok := c.tbl.Sigs[ss.Sig]; !ok {
			c.diags.Errorf(cmd.Span(), "sema.unresolved-scope-sig", "scope override names unresolved signature %q", ss.Sig)
		}
	}
}

// detectTemporal sets tbl.Temporal if the module contains any construct
// that requires temporal (trace) translation: a var signature or field, a
// temporal operator, or ';' sequencing.
func (c *checker) detectTemporal(m *ast.Module) {
	for _, sig := range c.tbl.Sigs {
		if sig.Var {
			c.tbl.Temporal = true
			return
		}
		for _, f := range sig.Fields {
			if f.Var {
				c.tbl.Temporal = true
				return
			}
		}
	}
	var walk func(e ast.Expr) bool
	walk = func(e ast.Expr) bool {
		switch e := e.(type) {
		case nil:
			return false
		case *ast.TemporalUnary, *ast.TemporalBinary:
			return true
		case *ast.Unary:
			if e.Op == ast.OpPrime {
				return true
			}
			return walk(e.X)
		case *ast.Binary:
			if e.Op == ast.OpSeq {
				return true
			}
			return walk(e.X) || walk(e.Y)
		case *ast.Compare:
			return walk(e.X) || walk(e.Y)
		case *ast.ArrowType:
			return walk(e.X) || walk(e.Y)
		case *ast.Paren:
			return walk(e.X)
		case *ast.Quant:
			return walk(e.Body)
		case *ast.Comprehension:
			return walk(e.Body)
		case *ast.LetExpr:
			for _, b := range e.Bindings {
				if walk(b.Value) {
					return true
				}
			}
			return walk(e.Body)
		case *ast.IfExpr:
			return walk(e.Cond) || walk(e.Then) || walk(e.Else)
		case *ast.Block:
			for _, x := range e.Exprs {
				if walk(x) {
					return true
				}
			}
			return false
		case *ast.Call:
			for _, a := range e.Args {
				if walk(a) {
					return true
				}
			}
			return e.Recv != nil && walk(e.Recv)
		}
		return false
	}
	for _, f := range c.tbl.Facts {
		if walk(f.Body) {
			c.tbl.Temporal = true
			return
		}
	}
	for _, p := range c.tbl.Preds {
		switch d := p.Decl.(type) {
		case *ast.PredDecl:
			if walk(d.Body) {
				c.tbl.Temporal = true
				return
			}
		case *ast.FunDecl:
			if walk(d.Body) {
				c.tbl.Temporal = true
				return
			}
		}
	}
	for _, a := range c.tbl.Asserts {
		if walk(a.Body) {
			c.tbl.Temporal = true
			return
		}
	}
}

// Descendants returns every signature name that is name itself or
// transitively extends name ("in" subset signatures are not included),
// used by the encoder to compute a
// non-abstract signature's concrete atom population.
func (t *Table) Descendants(name string) []string {
	out := []string{name}
	for _, sig := range t.Sigs {
		if sig.Extends == name {
			out = append(out, t.Descendants(sig.Name)...)
		}
	}
	return out
}

// ErrString renders a resolution failure for callers that want a plain
// error rather than pulling apart the diagnostic bag.
func ErrString(tbl *Table, diags *diag.Bag) error {
	if !diags.HasErrors() {
		return nil
	}
	return fmt.Errorf("semantic analysis failed:\n%s", diags.String())
}
