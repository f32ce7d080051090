// Package parser implements a handwritten recursive-descent parser for
// Alloy 6, with operator-precedence climbing for expressions/formulas and
// panic-mode error recovery at statement boundaries.
package parser

import (
	"strconv"

	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/diag"
	"github.com/kevinawalsh/alloysat/internal/lexer"
	"github.com/kevinawalsh/alloysat/internal/srcpos"
	"github.com/kevinawalsh/alloysat/internal/token"
)

// Parse scans and parses src, returning the module AST (always non-nil, to
// let later phases proceed even if parsing hit recoverable errors) and the
// diagnostics accumulated along the way.
func Parse(src string) (*ast.Module, *diag.Bag) {
	p := &parser{diags: &diag.Bag{}}
	p.buffer(src)
	m := p.parseModule()
	return m, p.diags
}

// parser is a recursive-descent parser over an eagerly drained token
// buffer. Alloy's grammar needs unbounded lookahead in a few spots (telling
// a set comprehension "{ x: A | ... }" apart from a formula block
// "{ f1 f2 }", or a quantifier "no x: A | ..." apart from a unary
// multiplicity test "no A.r"), so the parser scans the whole token stream
// up front via internal/lexer and then walks it by index with peekN.
type parser struct {
	toks  []token.Token
	pos   int
	diags *diag.Bag
}

func (p *parser) buffer(src string) {
	lx := lexer.New(src)
	for {
		t := lx.Next()
		if t.Kind == token.Illegal {
			p.diags.Errorf(t.Span, "lex", "%s", t.Lexeme)
			continue
		}
		p.toks = append(p.toks, t)
		if t.Kind == token.Eof {
			return
		}
	}
}

// tok is the current token.
func (p *parser) tok() token.Token { return p.toks[p.pos] }

// peekN returns the token n positions ahead of the current one (n=0 is
// tok()), clamped to the trailing Eof once the buffer is exhausted.
func (p *parser) peekN(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		i = len(p.toks) - 1
	}
	return p.toks[i]
}

func (p *parser) advance() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func (p *parser) at(k token.Kind) bool  { return p.tok().Kind == k }
func (p *parser) at2(k token.Kind) bool { return p.peekN(1).Kind == k }

func (p *parser) expect(k token.Kind) srcpos.Span {
	sp := p.tok().Span
	if p.tok().Kind != k {
		p.diags.Errorf(p.tok().Span, "parse", "expected %s, found %s", k, p.tok().Kind)
		return sp
	}
	p.advance()
	return sp
}

// accept consumes and returns true if the current token has kind k.
func (p *parser) accept(k token.Kind) bool {
	if p.tok().Kind == k {
		p.advance()
		return true
	}
	return false
}

// synchronize consumes tokens until a recognized synchronization point: a
// closing brace, a semicolon, or the start of a top-level declaration
// keyword, per spec.md's error recovery rule.
func (p *parser) synchronize() {
	for {
		switch p.tok().Kind {
		case token.Eof, token.RBrace, token.Semicolon,
			token.KwSig, token.KwFact, token.KwPred, token.KwFun, token.KwAssert,
			token.KwRun, token.KwCheck, token.KwOpen, token.KwModule, token.KwEnum:
			return
		default:
			p.advance()
		}
	}
}

// ---- top level ----

func (p *parser) parseModule() *ast.Module {
	start := p.tok().Span
	m := &ast.Module{}
	if p.accept(token.KwModule) {
		m.Name = p.parseQualName()
	}
	for p.at(token.KwOpen) {
		m.Opens = append(m.Opens, p.parseOpen())
	}
	for !p.at(token.Eof) {
		switch p.tok().Kind {
		case token.KwSig, token.KwAbstract, token.KwLone, token.KwOne, token.KwSome, token.KwVar:
			m.Decls = append(m.Decls, p.parseSig())
		case token.KwFact:
			m.Decls = append(m.Decls, p.parseFact())
		case token.KwPred:
			m.Decls = append(m.Decls, p.parsePred())
		case token.KwFun:
			m.Decls = append(m.Decls, p.parseFun())
		case token.KwAssert:
			m.Decls = append(m.Decls, p.parseAssert())
		case token.KwEnum:
			m.Decls = append(m.Decls, p.parseEnum())
		case token.KwRun, token.KwCheck:
			cmd := p.parseCommand()
			m.Decls = append(m.Decls, cmd)
			m.Command = cmd
		default:
			p.diags.Errorf(p.tok().Span, "parse", "unexpected token %s at top level", p.tok().Kind)
			p.advance()
			p.synchronize()
		}
	}
	m.Sp = srcpos.Span{Start: start.Start, End: p.tok().Span.End}
	return m
}

func (p *parser) parseQualName() string {
	name := p.identText()
	for p.at(token.Dot) {
		p.advance()
		name += "/" + p.identText()
	}
	return name
}

func (p *parser) identText() string {
	if !p.at(token.Ident) {
		p.diags.Errorf(p.tok().Span, "parse", "expected identifier, found %s", p.tok().Kind)
		return ""
	}
	name := p.tok().Lexeme
	p.advance()
	return name
}

func (p *parser) parseOpen() *ast.OpenDecl {
	start := p.tok().Span
	p.expect(token.KwOpen)
	path := p.parseQualName()
	decl := &ast.OpenDecl{Path: path}
	if p.accept(token.KwAs) {
		decl.Alias = p.identText()
	}
	decl.Sp = srcpos.Merge(start, p.tok().Span)
	return decl
}

// ---- signatures ----

func (p *parser) parseSig() *ast.SigDecl {
	start := p.tok().Span
	sig := &ast.SigDecl{}
	if p.accept(token.KwAbstract) {
		sig.Abstract = true
	}
	switch p.tok().Kind {
	case token.KwLone:
		sig.Mult = ast.MultLone
		p.advance()
	case token.KwOne:
		sig.Mult = ast.MultOne
		p.advance()
	case token.KwSome:
		sig.Mult = ast.MultSome
		p.advance()
	}
	if p.accept(token.KwVar) {
		sig.Var = true
	}
	p.expect(token.KwSig)
	sig.Names = append(sig.Names, p.identText())
	for p.accept(token.Comma) {
		sig.Names = append(sig.Names, p.identText())
	}
	if p.accept(token.KwExtends) {
		sig.Extends = p.identText()
	} else if p.accept(token.KwIn) {
		sig.InParents = append(sig.InParents, p.identText())
		for p.accept(token.Plus) {
			sig.InParents = append(sig.InParents, p.identText())
		}
	}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.at(token.Eof) {
		sig.Fields = append(sig.Fields, p.parseField())
		if !p.accept(token.Comma) {
			break
		}
	}
	p.expect(token.RBrace)
	if p.at(token.LBrace) {
		p.advance()
		for !p.at(token.RBrace) && !p.at(token.Eof) {
			sig.Facts = append(sig.Facts, p.parseFormula())
		}
		p.expect(token.RBrace)
	}
	sig.Sp = srcpos.Merge(start, p.tok().Span)
	return sig
}

func (p *parser) parseField() *ast.FieldDecl {
	start := p.tok().Span
	f := &ast.FieldDecl{}
	if p.accept(token.KwDisj) {
		f.Disj = true
	}
	if p.accept(token.KwVar) {
		f.Var = true
	}
	f.Names = append(f.Names, p.identText())
	for p.accept(token.Comma) {
		f.Names = append(f.Names, p.identText())
	}
	p.expect(token.Colon)
	f.Type = p.parseExpr()
	f.Sp = srcpos.Merge(start, p.tok().Span)
	return f
}

// ---- facts, predicates, functions, assertions, enums ----

func (p *parser) parseFact() *ast.FactDecl {
	start := p.tok().Span
	p.expect(token.KwFact)
	f := &ast.FactDecl{}
	if p.at(token.Ident) {
		f.Name = p.identText()
	}
	f.Body = p.parseBraceBlock()
	f.Sp = srcpos.Merge(start, p.tok().Span)
	return f
}

func (p *parser) parseParams() []ast.Param {
	var params []ast.Param
	if !p.accept(token.LParen) {
		if !p.accept(token.LBracket) {
			return params
		}
		params = p.parseParamList(token.RBracket)
		return params
	}
	params = p.parseParamList(token.RParen)
	return params
}

func (p *parser) parseParamList(closer token.Kind) []ast.Param {
	var params []ast.Param
	for !p.at(closer) && !p.at(token.Eof) {
		var names []string
		names = append(names, p.identText())
		for p.accept(token.Comma) && p.at(token.Ident) {
			// lookahead: comma could separate params or names; treat as
			// shared-name group until a colon appears.
			names = append(names, p.identText())
		}
		p.expect(token.Colon)
		typ := p.parseExpr()
		params = append(params, ast.Param{Names: names, Type: typ})
		if p.at(token.Semicolon) {
			p.advance()
		}
	}
	p.expect(closer)
	return params
}

func (p *parser) parsePred() *ast.PredDecl {
	start := p.tok().Span
	p.expect(token.KwPred)
	d := &ast.PredDecl{}
	name := p.identText()
	if p.accept(token.Dot) {
		d.Recv = name
		d.Name = p.identText()
	} else {
		d.Name = name
	}
	d.Params = p.parseParams()
	d.Body = p.parseBraceBlock()
	d.Sp = srcpos.Merge(start, p.tok().Span)
	return d
}

func (p *parser) parseFun() *ast.FunDecl {
	start := p.tok().Span
	p.expect(token.KwFun)
	d := &ast.FunDecl{}
	name := p.identText()
	if p.accept(token.Dot) {
		d.Recv = name
		d.Name = p.identText()
	} else {
		d.Name = name
	}
	d.Params = p.parseParams()
	p.expect(token.Colon)
	d.RetType = p.parseExpr()
	p.expect(token.LBrace)
	d.Body = p.parseExpr()
	p.expect(token.RBrace)
	d.Sp = srcpos.Merge(start, p.tok().Span)
	return d
}

func (p *parser) parseAssert() *ast.AssertDecl {
	start := p.tok().Span
	p.expect(token.KwAssert)
	d := &ast.AssertDecl{}
	if p.at(token.Ident) {
		d.Name = p.identText()
	}
	d.Body = p.parseBraceBlock()
	d.Sp = srcpos.Merge(start, p.tok().Span)
	return d
}

func (p *parser) parseEnum() *ast.EnumDecl {
	start := p.tok().Span
	p.expect(token.KwEnum)
	d := &ast.EnumDecl{Name: p.identText()}
	p.expect(token.LBrace)
	if !p.at(token.RBrace) {
		d.Values = append(d.Values, p.identText())
		for p.accept(token.Comma) {
			d.Values = append(d.Values, p.identText())
		}
	}
	p.expect(token.RBrace)
	d.Sp = srcpos.Merge(start, p.tok().Span)
	return d
}

func (p *parser) parseBraceBlock() ast.Expr {
	start := p.tok().Span
	p.expect(token.LBrace)
	var exprs []ast.Expr
	for !p.at(token.RBrace) && !p.at(token.Eof) {
		exprs = append(exprs, p.parseFormula())
	}
	p.expect(token.RBrace)
	if len(exprs) == 1 {
		return exprs[0]
	}
	blk := &ast.Block{Exprs: exprs}
	blk.Sp = srcpos.Merge(start, p.tok().Span)
	return blk
}

// ---- commands ----

func (p *parser) parseCommand() *ast.Command {
	start := p.tok().Span
	cmd := &ast.Command{}
	switch p.tok().Kind {
	case token.KwRun:
		cmd.Kind = ast.CmdRun
	case token.KwCheck:
		cmd.Kind = ast.CmdCheck
	}
	p.advance()
	switch {
	case p.at(token.LBrace):
		cmd.Body = p.parseBraceBlock()
	case p.at(token.Ident):
		cmd.Name = p.identText()
	}
	if p.accept(token.KwFor) {
		cmd.Scope = p.parseScope()
	}
	cmd.Sp = srcpos.Merge(start, p.tok().Span)
	return cmd
}

func (p *parser) parseScope() ast.Scope {
	var sc ast.Scope
	if p.at(token.Int) {
		n, _ := strconv.Atoi(p.tok().Lexeme)
		p.advance()
		sc.Default = n
		sc.HasDefault = true
		if p.at(token.Ident) {
			// "for 3" with no per-sig list: nothing more to parse here,
			// unless followed by a signature name list introduced without
			// "but" (rare); spec's grammar routes per-sig bounds through
			// "but"/"exactly"/comma so we stop here.
		}
	}
	if p.accept(token.KwBut) || (!sc.HasDefault && (p.at(token.KwExactly) || p.at(token.Ident))) {
		sc.PerSig = p.parseSigScopeList()
	}
	if p.at(token.Int) {
		// trailing "N steps"
		n, _ := strconv.Atoi(p.tok().Lexeme)
		p.advance()
		if p.accept(token.KwSteps) {
			sc.Steps = n
			sc.HasSteps = true
		}
	}
	return sc
}

func (p *parser) parseSigScopeList() []ast.SigScope {
	var list []ast.SigScope
	for {
		if p.at(token.Int) && p.at2(token.KwSteps) {
			break // trailing "N steps", left for parseScope
		}
		var s ast.SigScope
		if p.accept(token.KwExactly) {
			s.Exact = true
		}
		if p.at(token.Int) {
			n, _ := strconv.Atoi(p.tok().Lexeme)
			p.advance()
			s.Bound = n
		}
		if p.at(token.Ident) {
			s.Sig = p.identText()
		} else {
			break
		}
		list = append(list, s)
		if !p.accept(token.Comma) {
			break
		}
	}
	return list
}
