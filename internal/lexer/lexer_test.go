package lexer

import (
	"testing"

	"github.com/kevinawalsh/alloysat/internal/token"
)

func scanAll(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.Eof {
			return toks
		}
	}
}

func TestEmptySourceIsEofOnly(t *testing.T) {
	toks := scanAll("")
	if len(toks) != 1 || toks[0].Kind != token.Eof {
		t.Fatalf("expected single Eof token, got %v", toks)
	}
	if toks[0].Span.Start != toks[0].Span.End {
		t.Fatalf("eof span should be zero-length, got %v", toks[0].Span)
	}
}

func TestKeywordsAndIdents(t *testing.T) {
	toks := scanAll("sig Foo extends Bar {}")
	kinds := []token.Kind{token.KwSig, token.Ident, token.KwExtends, token.Ident, token.LBrace, token.RBrace, token.Eof}
	if len(toks) != len(kinds) {
		t.Fatalf("expected %d tokens, got %d: %v", len(kinds), len(toks), toks)
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d: expected %v, got %v", i, k, toks[i].Kind)
		}
	}
}

func TestMultiCharOperatorsGreedyLongest(t *testing.T) {
	toks := scanAll("<=> -> => =< >= != <: :> ++ && ||")
	want := []token.Kind{
		token.Iff, token.Arrow, token.Implies, token.Le, token.Ge, token.Neq,
		token.DomRes, token.RanRes, token.Override, token.And, token.Or, token.Eof,
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: expected %v, got %v (%q)", i, k, toks[i].Kind, toks[i].Lexeme)
		}
	}
}

func TestLineComments(t *testing.T) {
	for _, src := range []string{
		"sig A {} // trailing comment\n",
		"sig A {} -- trailing comment\n",
	} {
		toks := scanAll(src)
		var kinds []token.Kind
		for _, tok := range toks {
			kinds = append(kinds, tok.Kind)
		}
		want := []token.Kind{token.KwSig, token.Ident, token.LBrace, token.RBrace, token.Eof}
		if len(kinds) != len(want) {
			t.Fatalf("src %q: expected %v, got %v", src, want, kinds)
		}
	}
}

func TestBlockComment(t *testing.T) {
	toks := scanAll("sig /* a block\ncomment */ A {}")
	want := []token.Kind{token.KwSig, token.Ident, token.LBrace, token.RBrace, token.Eof}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: expected %v, got %v", i, k, toks[i].Kind)
		}
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	toks := scanAll("sig A {} /* oops")
	last := toks[len(toks)-2] // before Eof
	if last.Kind != token.Illegal || last.Lexeme != "Unterminated block comment" {
		t.Fatalf("expected unterminated block comment diagnostic, got %v", last)
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := scanAll(`"abc`)
	if toks[0].Kind != token.Illegal || toks[0].Lexeme != "Unterminated string literal" {
		t.Fatalf("expected unterminated string diagnostic, got %v", toks[0])
	}
}

func TestStringEscapes(t *testing.T) {
	toks := scanAll(`"a\nb\tc\\d\"e"`)
	if toks[0].Kind != token.String {
		t.Fatalf("expected string token, got %v", toks[0])
	}
}

func TestIntegerOverflow(t *testing.T) {
	toks := scanAll("99999999999999999999999999")
	if toks[0].Kind != token.Illegal {
		t.Fatalf("expected overflow diagnostic, got %v", toks[0])
	}
}

func TestInvalidChar(t *testing.T) {
	toks := scanAll("`")
	if toks[0].Kind != token.Illegal {
		t.Fatalf("expected illegal token for backtick, got %v", toks[0])
	}
}

// TestCoverage checks that every token's span lies within the source, and
// that scanning terminates in exactly one Eof.
func TestCoverage(t *testing.T) {
	src := "sig A { r: A -> A }\nfact { all x: A | some x.r }\n"
	toks := scanAll(src)
	eofCount := 0
	for i, tok := range toks {
		if tok.Kind == token.Eof {
			eofCount++
			continue
		}
		if tok.Span.Start.Offset < 0 || tok.Span.End.Offset > len(src) {
			t.Fatalf("token %d span out of range: %v", i, tok.Span)
		}
	}
	if eofCount != 1 {
		t.Fatalf("expected exactly one Eof token, got %d", eofCount)
	}
}
