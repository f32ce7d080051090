package parser

import (
	"github.com/kevinawalsh/alloysat/internal/ast"
	"github.com/kevinawalsh/alloysat/internal/srcpos"
	"github.com/kevinawalsh/alloysat/internal/token"
)

// This file implements the expression/formula precedence ladder. Alloy
// does not distinguish formulas from set expressions syntactically, so
// parseExpr and parseFormula are the same entry point; the alias exists so
// call sites can say which role they expect a reader to see at that point.
//
// Lowest to highest precedence:
//
//	sequencing ;
//	let / quantifier / comprehension
//	biconditional <=>
//	implication => (right-assoc; also the "cond => then else else_" form)
//	disjunction || or
//	conjunction && and
//	negation ! not
//	temporal future/past unary and binary operators
//	comparison / membership = != < > =< >= in !in not-in, and the
//	  multiplicity tests no/some/lone/one/set as a prefix
//	union + / difference - (left-assoc)
//	intersection &
//	override ++
//	domain/range restriction <: :>
//	arrow/product -> (with multiplicities)
//	join .
//	unary relational ~ ^ * #
//	prime '
//	@ qualifier
//	primary
func (p *parser) parseExpr() ast.Expr    { return p.parseSeq() }
func (p *parser) parseFormula() ast.Expr { return p.parseSeq() }

func (p *parser) parseSeq() ast.Expr {
	x := p.parseLetQuant()
	for p.at(token.Semicolon) {
		p.advance()
		y := p.parseLetQuant()
		b := &ast.Binary{Op: ast.OpSeq, X: x, Y: y}
		b.Sp = srcpos.Merge(x.Span(), y.Span())
		x = b
	}
	return x
}

// parseLetQuant handles the prefix forms (let, the five quantifiers, and
// sum-as-quantifier) that bind loosest apart from sequencing, falling
// through to parseIff for everything else.
func (p *parser) parseLetQuant() ast.Expr {
	switch p.tok().Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwAll:
		return p.parseQuantifier(ast.QuantAll)
	case token.KwNo:
		if p.looksLikeDeclList() {
			return p.parseQuantifier(ast.QuantNo)
		}
	case token.KwSome:
		if p.looksLikeDeclList() {
			return p.parseQuantifier(ast.QuantSome)
		}
	case token.KwLone:
		if p.looksLikeDeclList() {
			return p.parseQuantifier(ast.QuantLone)
		}
	case token.KwOne:
		if p.looksLikeDeclList() {
			return p.parseQuantifier(ast.QuantOne)
		}
	case token.KwSum:
		if p.looksLikeDeclList() {
			return p.parseQuantifier(ast.QuantSum)
		}
	}
	return p.parseIff()
}

// looksLikeDeclList reports whether the tokens following the current
// quantifier keyword form a declaration list ("disj x, y: T | ..."), as
// opposed to a bare expression ("no A.r", "some x.r"). It scans forward
// without consuming: a decl list has, before the first "|" at this nesting
// level, a top-level ":" that isn't inside brackets/parens.
func (p *parser) looksLikeDeclList() bool {
	i := 1 // skip the quantifier keyword itself
	if p.peekN(i).Kind == token.KwDisj {
		i++
	}
	if p.peekN(i).Kind != token.Ident {
		return false
	}
	depth := 0
	for {
		k := p.peekN(i).Kind
		switch k {
		case token.Eof, token.RBrace, token.Semicolon:
			return false
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			if depth == 0 {
				return false
			}
			depth--
		case token.Bar:
			if depth == 0 {
				return false
			}
		case token.Colon:
			if depth == 0 {
				return true
			}
		}
		i++
		if i > len(p.toks) {
			return false
		}
	}
}

func (p *parser) parseLet() ast.Expr {
	start := p.tok().Span
	p.advance()
	var binds []ast.LetBinding
	for {
		name := p.identText()
		p.expect(token.Eq)
		val := p.parseIff()
		binds = append(binds, ast.LetBinding{Name: name, Value: val})
		if !p.accept(token.Comma) {
			break
		}
	}
	p.expect(token.Bar)
	body := p.parseLetQuant()
	e := &ast.LetExpr{Bindings: binds, Body: body}
	e.Sp = srcpos.Merge(start, body.Span())
	return e
}

func (p *parser) parseQuantifier(kind ast.QuantKind) ast.Expr {
	start := p.tok().Span
	p.advance()
	decls := p.parseDeclList()
	p.expect(token.Bar)
	body := p.parseLetQuant()
	q := &ast.Quant{Kind: kind, Decls: decls, Body: body}
	q.Sp = srcpos.Merge(start, body.Span())
	return q
}

// parseDeclList parses "disj x, y: T, z: U" style declaration groups,
// comma-separated, used by quantifiers and comprehensions.
func (p *parser) parseDeclList() []ast.VarDecl {
	var decls []ast.VarDecl
	for {
		decls = append(decls, p.parseOneDeclGroup())
		if p.at(token.Comma) && p.peekAfterCommaIsDecl() {
			p.advance()
			continue
		}
		break
	}
	return decls
}

// peekAfterCommaIsDecl distinguishes "x: A, y: B" (two decl groups) from a
// comma inside a single group's name list, which parseOneDeclGroup already
// consumes itself; by the time this is checked, parseOneDeclGroup has
// already consumed trailing names, so any comma reaching here starts a new
// group as long as it is eventually followed by a colon before a "|".
func (p *parser) peekAfterCommaIsDecl() bool {
	i := 1
	depth := 0
	for {
		k := p.peekN(i).Kind
		switch k {
		case token.Eof, token.Bar:
			return false
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		case token.Colon:
			if depth == 0 {
				return true
			}
		case token.Comma:
			if depth == 0 {
				return false
			}
		}
		i++
		if i > len(p.toks) {
			return false
		}
	}
}

func (p *parser) parseOneDeclGroup() ast.VarDecl {
	start := p.tok().Span
	var d ast.VarDecl
	if p.accept(token.KwDisj) {
		d.Disj = true
	}
	d.Names = append(d.Names, p.identText())
	for p.accept(token.Comma) {
		d.Names = append(d.Names, p.identText())
	}
	p.expect(token.Colon)
	switch p.tok().Kind {
	case token.KwLone:
		d.Mult = ast.MultLone
		p.advance()
	case token.KwOne:
		d.Mult = ast.MultOne
		p.advance()
	case token.KwSome:
		d.Mult = ast.MultSome
		p.advance()
	case token.KwSet:
		d.Mult = ast.MultSet
		p.advance()
	}
	d.Type = p.parseArrow()
	d.Sp = srcpos.Merge(start, d.Type.Span())
	return d
}

func (p *parser) parseIff() ast.Expr {
	x := p.parseImplies()
	for p.accept(token.Iff) || p.accept(token.KwIff) {
		y := p.parseImplies()
		b := &ast.Binary{Op: ast.OpIff, X: x, Y: y}
		b.Sp = srcpos.Merge(x.Span(), y.Span())
		x = b
	}
	return x
}

// parseImplies handles both plain implication ("=>" right-assoc) and the
// if-then-else form ("cond => then else else_"), which share a leading
// token.
func (p *parser) parseImplies() ast.Expr {
	x := p.parseOr()
	if p.accept(token.Implies) || p.accept(token.KwImplies) {
		then := p.parseImplies()
		if p.accept(token.KwElse) {
			els := p.parseImplies()
			e := &ast.IfExpr{Cond: x, Then: then, Else: els}
			e.Sp = srcpos.Merge(x.Span(), els.Span())
			return e
		}
		b := &ast.Binary{Op: ast.OpImplies, X: x, Y: then}
		b.Sp = srcpos.Merge(x.Span(), then.Span())
		return b
	}
	return x
}

func (p *parser) parseOr() ast.Expr {
	x := p.parseAnd()
	for p.accept(token.Or) || p.accept(token.KwOr) {
		y := p.parseAnd()
		b := &ast.Binary{Op: ast.OpOr, X: x, Y: y}
		b.Sp = srcpos.Merge(x.Span(), y.Span())
		x = b
	}
	return x
}

func (p *parser) parseAnd() ast.Expr {
	x := p.parseNot()
	for p.accept(token.And) || p.accept(token.KwAnd) {
		y := p.parseNot()
		b := &ast.Binary{Op: ast.OpAnd, X: x, Y: y}
		b.Sp = srcpos.Merge(x.Span(), y.Span())
		x = b
	}
	return x
}

func (p *parser) parseNot() ast.Expr {
	if p.at(token.Bang) || p.at(token.KwNot) {
		start := p.tok().Span
		p.advance()
		x := p.parseNot()
		u := &ast.Unary{Op: ast.OpNot, X: x}
		u.Sp = srcpos.Merge(start, x.Span())
		return u
	}
	return p.parseTemporal()
}

var temporalUnaryPrefix = map[token.Kind]ast.TemporalUnaryOp{
	token.KwAfter:        ast.TAfter,
	token.KwAlways:       ast.TAlways,
	token.KwEventually:   ast.TEventually,
	token.KwBefore:       ast.TBefore,
	token.KwHistorically: ast.THistorically,
	token.KwOnce:         ast.TOnce,
}

var temporalBinaryInfix = map[token.Kind]ast.TemporalBinaryOp{
	token.KwUntil:     ast.TUntil,
	token.KwReleases:  ast.TReleases,
	token.KwSince:     ast.TSince,
	token.KwTriggered: ast.TTriggered,
}

// parseTemporal parses the future/past operators. The binary check runs
// exactly once per call, around a unary-prefix chain: "always p until q" is
// "(always p) until q", not "always (p until q)" -- the prefix chain must
// not itself swallow a following binary operator.
func (p *parser) parseTemporal() ast.Expr {
	x := p.parseTemporalUnaryChain()
	if op, ok := temporalBinaryInfix[p.tok().Kind]; ok {
		p.advance()
		y := p.parseTemporal()
		b := &ast.TemporalBinary{Op: op, X: x, Y: y}
		b.Sp = srcpos.Merge(x.Span(), y.Span())
		return b
	}
	return x
}

func (p *parser) parseTemporalUnaryChain() ast.Expr {
	if op, ok := temporalUnaryPrefix[p.tok().Kind]; ok {
		start := p.tok().Span
		p.advance()
		x := p.parseTemporalUnaryChain()
		u := &ast.TemporalUnary{Op: op, X: x}
		u.Sp = srcpos.Merge(start, x.Span())
		return u
	}
	return p.parseCompare()
}

var compareOps = map[token.Kind]ast.CompareOp{
	token.Eq:   ast.CmpEq,
	token.Neq:  ast.CmpNeq,
	token.Lt:   ast.CmpLt,
	token.Gt:   ast.CmpGt,
	token.Le:   ast.CmpLe,
	token.Ge:   ast.CmpGe,
	token.KwIn: ast.CmpIn,
}

// unaryMultPrefix holds the multiplicity-test keywords that, when not the
// head of a quantifier (ruled out by looksLikeDeclList before parseCompare
// is ever reached), apply as a formula-forming prefix to a whole relational
// expression: "no A.r" is "no (A.r)", not "(no A).r", so these bind looser
// than join -- unlike ~ ^ * #, which bind tighter than join and are handled
// in parseUnaryRel below.
var unaryMultPrefix = map[token.Kind]ast.UnaryOp{
	token.KwNo:   ast.OpNo,
	token.KwSome: ast.OpSome,
	token.KwLone: ast.OpLone,
	token.KwOne:  ast.OpOne,
	token.KwSet:  ast.OpSet,
}

func (p *parser) parseCompare() ast.Expr {
	if op, ok := unaryMultPrefix[p.tok().Kind]; ok {
		start := p.tok().Span
		p.advance()
		x := p.parseUnionDiff()
		u := &ast.Unary{Op: op, X: x}
		u.Sp = srcpos.Merge(start, x.Span())
		return u
	}
	x := p.parseUnionDiff()
	if (p.at(token.Bang) || p.at(token.KwNot)) && p.at2(token.KwIn) {
		start := x.Span()
		p.advance()
		p.advance()
		y := p.parseUnionDiff()
		c := &ast.Compare{Op: ast.CmpNotIn, X: x, Y: y}
		c.Sp = srcpos.Merge(start, y.Span())
		return c
	}
	if op, ok := compareOps[p.tok().Kind]; ok {
		p.advance()
		y := p.parseUnionDiff()
		c := &ast.Compare{Op: op, X: x, Y: y}
		c.Sp = srcpos.Merge(x.Span(), y.Span())
		return c
	}
	return x
}

func (p *parser) parseUnionDiff() ast.Expr {
	x := p.parseInter()
	for p.at(token.Plus) || p.at(token.Minus) {
		op := ast.OpUnion
		if p.at(token.Minus) {
			op = ast.OpDiff
		}
		p.advance()
		y := p.parseInter()
		b := &ast.Binary{Op: op, X: x, Y: y}
		b.Sp = srcpos.Merge(x.Span(), y.Span())
		x = b
	}
	return x
}

func (p *parser) parseInter() ast.Expr {
	x := p.parseOverride()
	for p.accept(token.Amp) {
		y := p.parseOverride()
		b := &ast.Binary{Op: ast.OpInter, X: x, Y: y}
		b.Sp = srcpos.Merge(x.Span(), y.Span())
		x = b
	}
	return x
}

func (p *parser) parseOverride() ast.Expr {
	x := p.parseRestrict()
	for p.accept(token.Override) {
		y := p.parseRestrict()
		b := &ast.Binary{Op: ast.OpOverride, X: x, Y: y}
		b.Sp = srcpos.Merge(x.Span(), y.Span())
		x = b
	}
	return x
}

func (p *parser) parseRestrict() ast.Expr {
	x := p.parseArrow()
	for p.at(token.DomRes) || p.at(token.RanRes) {
		op := ast.OpDomRes
		if p.at(token.RanRes) {
			op = ast.OpRanRes
		}
		p.advance()
		y := p.parseArrow()
		b := &ast.Binary{Op: op, X: x, Y: y}
		b.Sp = srcpos.Merge(x.Span(), y.Span())
		x = b
	}
	return x
}

// parseArrow parses the product/arrow operator, right-associative, with
// optional multiplicity decorations immediately before and after each "->".
func (p *parser) parseArrow() ast.Expr {
	x := p.parseJoin()
	if p.at(token.Arrow) || p.atMultBeforeArrow() {
		disj := p.accept(token.KwDisj)
		left := p.parseMultOpt()
		p.expect(token.Arrow)
		right := p.parseMultOpt()
		y := p.parseArrow()
		at := &ast.ArrowType{Left: left, X: x, Right: right, Y: y, Disj: disj}
		at.Sp = srcpos.Merge(x.Span(), y.Span())
		return at
	}
	return x
}

// atMultBeforeArrow reports whether the current token begins a multiplicity
// decoration ("lone"/"one"/"some"/"set"/"disj") immediately followed
// (after at most one multiplicity keyword) by "->".
func (p *parser) atMultBeforeArrow() bool {
	i := 0
	if p.tok().Kind == token.KwDisj {
		i++
	}
	switch p.peekN(i).Kind {
	case token.KwLone, token.KwOne, token.KwSome, token.KwSet:
		return p.peekN(i+1).Kind == token.Arrow
	}
	return false
}

func (p *parser) parseMultOpt() ast.Mult {
	switch p.tok().Kind {
	case token.KwLone:
		p.advance()
		return ast.MultLone
	case token.KwOne:
		p.advance()
		return ast.MultOne
	case token.KwSome:
		p.advance()
		return ast.MultSome
	case token.KwSet:
		p.advance()
		return ast.MultSet
	}
	return ast.MultNone
}

func (p *parser) parseJoin() ast.Expr {
	x := p.parseUnaryRel()
	for p.accept(token.Dot) {
		y := p.parseUnaryRel()
		b := &ast.Binary{Op: ast.OpJoin, X: x, Y: y}
		b.Sp = srcpos.Merge(x.Span(), y.Span())
		x = b
	}
	return x
}

var unaryRelPrefix = map[token.Kind]ast.UnaryOp{
	token.Tilde: ast.OpTranspose,
	token.Caret: ast.OpClosure,
	token.Star:  ast.OpRefClosure,
	token.Hash:  ast.OpCard,
}

func (p *parser) parseUnaryRel() ast.Expr {
	if op, ok := unaryRelPrefix[p.tok().Kind]; ok {
		start := p.tok().Span
		p.advance()
		x := p.parseUnaryRel()
		u := &ast.Unary{Op: op, X: x}
		u.Sp = srcpos.Merge(start, x.Span())
		return u
	}
	return p.parsePrime()
}

func (p *parser) parsePrime() ast.Expr {
	x := p.parseAt()
	for p.at(token.Prime) {
		start := x.Span()
		primeSpan := p.tok().Span
		p.advance()
		u := &ast.Unary{Op: ast.OpPrime, X: x}
		u.Sp = srcpos.Merge(start, primeSpan)
		x = u
	}
	return x
}

// parseAt handles the "@field" qualifier, used to refer to a field
// relation itself rather than through the sig that declares it.
func (p *parser) parseAt() ast.Expr {
	if p.at(token.At) {
		start := p.tok().Span
		p.advance()
		name := p.identText()
		id := &ast.Ident{Name: name}
		id.Sp = srcpos.Merge(start, p.tok().Span)
		return p.parseCallOrIndexTail(id)
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() ast.Expr {
	start := p.tok().Span
	switch p.tok().Kind {
	case token.Ident:
		name := p.tok().Lexeme
		p.advance()
		id := &ast.Ident{Name: name}
		id.Sp = start
		return p.parseCallOrIndexTail(id)
	case token.Int:
		n := parseIntLexeme(p.tok().Lexeme)
		p.advance()
		lit := &ast.IntLit{Value: n}
		lit.Sp = start
		return lit
	case token.String:
		s := p.tok().Lexeme
		p.advance()
		lit := &ast.StringLit{Value: unquote(s)}
		lit.Sp = start
		return lit
	case token.KwUniv:
		p.advance()
		b := &ast.Builtin{Kind: ast.BuiltinUniv}
		b.Sp = start
		return b
	case token.KwIden:
		p.advance()
		b := &ast.Builtin{Kind: ast.BuiltinIden}
		b.Sp = start
		return b
	case token.KwNone:
		p.advance()
		b := &ast.Builtin{Kind: ast.BuiltinNone}
		b.Sp = start
		return b
	case token.KwInt:
		p.advance()
		b := &ast.Builtin{Kind: ast.BuiltinInt}
		b.Sp = start
		return b
	case token.KwThis:
		p.advance()
		b := &ast.Builtin{Kind: ast.BuiltinThis}
		b.Sp = start
		return b
	case token.LParen:
		p.advance()
		inner := p.parseExpr()
		end := p.expect(token.RParen)
		paren := &ast.Paren{X: inner}
		paren.Sp = srcpos.Span{Start: start.Start, End: end.End}
		return p.parseCallOrIndexTail(paren)
	case token.LBrace:
		return p.parseBraceExpr()
	default:
		p.diags.Errorf(p.tok().Span, "parse", "unexpected token %s in expression", p.tok().Kind)
		p.advance()
		bad := &ast.Ident{Name: ""}
		bad.Sp = start
		return bad
	}
}

// parseCallOrIndexTail extends a just-parsed primary with any trailing
// "[args]" predicate/function-call argument list and "." method-style
// calls are already handled by join; square brackets are Alloy's
// alternate application syntax "pred[args]" / "recv.fun[args]".
func (p *parser) parseCallOrIndexTail(recv ast.Expr) ast.Expr {
	for p.at(token.LBracket) {
		start := recv.Span()
		p.advance()
		var args []ast.Expr
		if !p.at(token.RBracket) {
			args = append(args, p.parseExpr())
			for p.accept(token.Comma) {
				args = append(args, p.parseExpr())
			}
		}
		end := p.expect(token.RBracket)
		name := ""
		if id, ok := recv.(*ast.Ident); ok {
			name = id.Name
			call := &ast.Call{Name: name, Args: args}
			call.Sp = srcpos.Span{Start: start.Start, End: end.End}
			recv = call
			continue
		}
		call := &ast.Call{Recv: recv, Args: args}
		call.Sp = srcpos.Span{Start: start.Start, End: end.End}
		recv = call
	}
	return recv
}

// parseBraceExpr disambiguates a set comprehension "{ decls | body }" from
// a formula block "{ f1 f2 ... }" by scanning ahead for a top-level "|"
// before a closing brace.
func (p *parser) parseBraceExpr() ast.Expr {
	start := p.tok().Span
	if p.isComprehensionAhead() {
		p.advance() // {
		decls := p.parseDeclList()
		p.expect(token.Bar)
		body := p.parseLetQuant()
		end := p.expect(token.RBrace)
		c := &ast.Comprehension{Decls: decls, Body: body}
		c.Sp = srcpos.Span{Start: start.Start, End: end.End}
		return c
	}
	return p.parseBraceBlock()
}

// isComprehensionAhead scans from just after "{" for a top-level "|"
// before the matching "}", which only a comprehension's decl list produces
// (formula blocks only ever contain "|" inside a nested, bracket-balanced
// position).
func (p *parser) isComprehensionAhead() bool {
	if p.peekN(1).Kind != token.Ident && p.peekN(1).Kind != token.KwDisj {
		return false
	}
	depth := 0
	for i := 1; ; i++ {
		k := p.peekN(i).Kind
		switch k {
		case token.Eof:
			return false
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace:
			if depth == 0 {
				return false
			}
			depth--
		case token.RParen, token.RBracket:
			depth--
		case token.Bar:
			if depth == 0 {
				return true
			}
		}
		if i > len(p.toks) {
			return false
		}
	}
}

func parseIntLexeme(lexeme string) int64 {
	var n int64
	for _, r := range lexeme {
		n = n*10 + int64(r-'0')
	}
	return n
}

// unquote strips the surrounding quotes and resolves the lexer's supported
// escape sequences from a raw string lexeme.
func unquote(lexeme string) string {
	if len(lexeme) < 2 {
		return lexeme
	}
	body := lexeme[1 : len(lexeme)-1]
	var out []rune
	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			i++
			switch runes[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			default:
				out = append(out, runes[i])
			}
			continue
		}
		out = append(out, runes[i])
	}
	return string(out)
}
