package parser

import (
	"testing"

	"github.com/kevinawalsh/alloysat/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Module {
	t.Helper()
	m, diags := Parse(src)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors parsing %q:\n%s", src, diags.String())
	}
	return m
}

func TestParseEmptyModule(t *testing.T) {
	m := mustParse(t, "")
	if len(m.Decls) != 0 {
		t.Fatalf("expected no decls, got %d", len(m.Decls))
	}
}

func TestParseModuleHeaderAndOpens(t *testing.T) {
	m := mustParse(t, `module test/foo
open util/ordering as ord
sig A {}`)
	if m.Name != "test/foo" {
		t.Fatalf("expected module name test/foo, got %q", m.Name)
	}
	if len(m.Opens) != 1 || m.Opens[0].Path != "util/ordering" || m.Opens[0].Alias != "ord" {
		t.Fatalf("unexpected opens: %+v", m.Opens)
	}
}

func TestParseSigWithFieldsAndFacts(t *testing.T) {
	m := mustParse(t, `sig A { r: A -> A } { all x: A | some x.r }`)
	sig, ok := m.Decls[0].(*ast.SigDecl)
	if !ok {
		t.Fatalf("expected SigDecl, got %T", m.Decls[0])
	}
	if len(sig.Fields) != 1 || len(sig.Fields[0].Names) != 1 || sig.Fields[0].Names[0] != "r" {
		t.Fatalf("unexpected fields: %+v", sig.Fields)
	}
	if len(sig.Facts) != 1 {
		t.Fatalf("expected one inline fact, got %d", len(sig.Facts))
	}
	if _, ok := sig.Facts[0].(*ast.Quant); !ok {
		t.Fatalf("expected Quant, got %T", sig.Facts[0])
	}
}

func TestParseAbstractMultSig(t *testing.T) {
	m := mustParse(t, `abstract sig Color { } sig Red, Blue extends Color {}`)
	if len(m.Decls) != 2 {
		t.Fatalf("expected 2 sigs, got %d", len(m.Decls))
	}
	first := m.Decls[0].(*ast.SigDecl)
	if !first.Abstract {
		t.Fatalf("expected abstract")
	}
	second := m.Decls[1].(*ast.SigDecl)
	if second.Extends != "Color" || len(second.Names) != 2 {
		t.Fatalf("unexpected extends sig: %+v", second)
	}
}

func TestParseFactPredFunAssert(t *testing.T) {
	m := mustParse(t, `
fact NoSelfLoop { all x: A | x not in x.r }
pred p[x: A] { some x.r }
fun f[x: A]: A { x.r }
assert NoCycle { all x: A | x not in x.^r }
sig A { r: A }
`)
	kinds := map[string]bool{}
	for _, d := range m.Decls {
		switch v := d.(type) {
		case *ast.FactDecl:
			kinds["fact:"+v.Name] = true
		case *ast.PredDecl:
			kinds["pred:"+v.Name] = true
		case *ast.FunDecl:
			kinds["fun:"+v.Name] = true
		case *ast.AssertDecl:
			kinds["assert:"+v.Name] = true
		case *ast.SigDecl:
			kinds["sig:"+v.Names[0]] = true
		}
	}
	for _, want := range []string{"fact:NoSelfLoop", "pred:p", "fun:f", "assert:NoCycle", "sig:A"} {
		if !kinds[want] {
			t.Fatalf("missing decl %s, got %v", want, kinds)
		}
	}
}

func TestParseEnum(t *testing.T) {
	m := mustParse(t, `enum Suit { Hearts, Spades, Clubs, Diamonds }`)
	e := m.Decls[0].(*ast.EnumDecl)
	if e.Name != "Suit" || len(e.Values) != 4 {
		t.Fatalf("unexpected enum: %+v", e)
	}
}

func TestParseRunCommandWithScope(t *testing.T) {
	m := mustParse(t, `sig A {} run { some A } for 5 but 2 A`)
	if m.Command == nil || m.Command.Kind != ast.CmdRun {
		t.Fatalf("expected run command, got %+v", m.Command)
	}
	if !m.Command.Scope.HasDefault || m.Command.Scope.Default != 5 {
		t.Fatalf("unexpected scope: %+v", m.Command.Scope)
	}
	if len(m.Command.Scope.PerSig) != 1 || m.Command.Scope.PerSig[0].Bound != 2 {
		t.Fatalf("unexpected per-sig scope: %+v", m.Command.Scope.PerSig)
	}
}

func TestParseCheckCommandNamedAssertion(t *testing.T) {
	m := mustParse(t, `assert NoCycle { some A } check NoCycle for 10`)
	if m.Command == nil || m.Command.Kind != ast.CmdCheck || m.Command.Name != "NoCycle" {
		t.Fatalf("unexpected command: %+v", m.Command)
	}
}

func TestParseQuantifierVsUnaryMultiplicity(t *testing.T) {
	m := mustParse(t, `sig A { r: A }
fact f1 { no x: A | some x.r }
fact f2 { no A.r }`)
	f1 := m.Decls[1].(*ast.FactDecl)
	if _, ok := f1.Body.(*ast.Quant); !ok {
		t.Fatalf("expected f1 body to be a quantifier, got %T", f1.Body)
	}
	f2 := m.Decls[2].(*ast.FactDecl)
	u, ok := f2.Body.(*ast.Unary)
	if !ok || u.Op != ast.OpNo {
		t.Fatalf("expected f2 body to be a unary 'no' test, got %#v", f2.Body)
	}
}

func TestParseComprehensionVsBlock(t *testing.T) {
	m := mustParse(t, `sig A { r: A }
fun evens[]: A { { x: A | some x.r } }
fact multi { some A some A }`)
	fn := m.Decls[1].(*ast.FunDecl)
	if _, ok := fn.Body.(*ast.Comprehension); !ok {
		t.Fatalf("expected comprehension body, got %T", fn.Body)
	}
	multi := m.Decls[2].(*ast.FactDecl)
	blk, ok := multi.Body.(*ast.Block)
	if !ok || len(blk.Exprs) != 2 {
		t.Fatalf("expected two-formula block, got %#v", multi.Body)
	}
}

func TestParseIfThenElse(t *testing.T) {
	m := mustParse(t, `sig A {}
fun pick[]: A { some A => univ else none }`)
	fn := m.Decls[1].(*ast.FunDecl)
	ifx, ok := fn.Body.(*ast.IfExpr)
	if !ok {
		t.Fatalf("expected IfExpr, got %T", fn.Body)
	}
	if _, ok := ifx.Then.(*ast.Builtin); !ok {
		t.Fatalf("expected builtin in then-branch, got %T", ifx.Then)
	}
}

func TestParseArrowMultiplicityAndJoin(t *testing.T) {
	m := mustParse(t, `sig A { r: A one -> one A }`)
	sig := m.Decls[0].(*ast.SigDecl)
	at, ok := sig.Fields[0].Type.(*ast.ArrowType)
	if !ok {
		t.Fatalf("expected ArrowType, got %T", sig.Fields[0].Type)
	}
	if at.Left != ast.MultOne || at.Right != ast.MultOne {
		t.Fatalf("unexpected arrow multiplicities: %+v", at)
	}
}

func TestParseTemporalOperators(t *testing.T) {
	m := mustParse(t, `var sig A {}
fact f { always (some A) until (no A) }`)
	f := m.Decls[1].(*ast.FactDecl)
	tb, ok := f.Body.(*ast.TemporalBinary)
	if !ok || tb.Op != ast.TUntil {
		t.Fatalf("expected until binary, got %#v", f.Body)
	}
	if _, ok := tb.X.(*ast.TemporalUnary); !ok {
		t.Fatalf("expected 'always' unary on left operand, got %T", tb.X)
	}
}

func TestParseLetExpr(t *testing.T) {
	m := mustParse(t, `sig A { r: A }
fact f { let y = A.r | some y }`)
	f := m.Decls[1].(*ast.FactDecl)
	lt, ok := f.Body.(*ast.LetExpr)
	if !ok || len(lt.Bindings) != 1 || lt.Bindings[0].Name != "y" {
		t.Fatalf("expected let expr, got %#v", f.Body)
	}
}

func TestParseTranspositiveClosureBindsTighterThanJoin(t *testing.T) {
	m := mustParse(t, `sig A { r: A }
fact f { some A.^r }`)
	f := m.Decls[1].(*ast.FactDecl)
	u := f.Body.(*ast.Unary)
	if u.Op != ast.OpSome {
		t.Fatalf("expected outer 'some', got %v", u.Op)
	}
	bin, ok := u.X.(*ast.Binary)
	if !ok || bin.Op != ast.OpJoin {
		t.Fatalf("expected join as operand of some, got %#v", u.X)
	}
	if _, ok := bin.Y.(*ast.Unary); !ok {
		t.Fatalf("expected transitive closure on join's right operand, got %T", bin.Y)
	}
}

func TestParseErrorRecoverySynchronizes(t *testing.T) {
	_, diags := Parse(`sig A {} @@@ sig B {}`)
	if !diags.HasErrors() {
		t.Fatalf("expected a diagnostic for the stray tokens")
	}
}

func TestParseSumQuantifier(t *testing.T) {
	m := mustParse(t, `sig A { n: Int }
fun total[]: Int { sum x: A | x.n }`)
	fn := m.Decls[1].(*ast.FunDecl)
	q, ok := fn.Body.(*ast.Quant)
	if !ok || q.Kind != ast.QuantSum {
		t.Fatalf("expected sum quantifier, got %#v", fn.Body)
	}
}
