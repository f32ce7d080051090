// Package token defines the surface-syntax token kinds for Alloy 6 and the
// keyword table used by the lexer to recognize them.
package token

import "github.com/kevinawalsh/alloysat/internal/srcpos"

// Kind is a closed enum over every token category the lexer can produce.
type Kind int

const (
	Illegal Kind = iota
	Eof

	// Literals and identifiers.
	Ident
	Int
	String

	literalsEnd

	// Punctuation.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Colon
	Dot
	Semicolon
	At
	Prime
	Bar
	Hash

	// Operators.
	Arrow    // ->
	Le       // =<
	Ge       // >=
	Lt       // <
	Gt       // >
	Eq       // =
	Neq      // !=
	DomRes   // <:
	RanRes   // :>
	Override // ++
	And      // && / and
	Or       // || / or
	Implies  // =>
	Iff      // <=>
	Plus     // +
	Minus    // -
	Amp      // &
	Tilde    // ~
	Caret    // ^
	Star     // *
	Bang     // ! / not

	operatorsEnd

	keywordsBegin

	// Module / import.
	KwModule
	KwOpen
	KwAs

	// Signature modifiers and shape.
	KwSig
	KwAbstract
	KwExtends
	KwIn
	KwStatic
	KwPrivate
	KwVar

	// Declaration kinds.
	KwFact
	KwPred
	KwFun
	KwAssert

	// Commands.
	KwRun
	KwCheck
	KwFor
	KwBut
	KwExactly
	KwSteps
	KwExpect

	// Multiplicity.
	KwLone
	KwOne
	KwSome
	KwSet
	KwSeq
	KwDisj

	// Quantifiers.
	KwAll
	KwNo
	KwSum

	// Boolean.
	KwAnd
	KwOr
	KwNot
	KwImplies
	KwIff
	KwElse
	KwLet

	// Future temporal.
	KwAlways
	KwEventually
	KwAfter
	KwUntil
	KwReleases

	// Past temporal.
	KwHistorically
	KwOnce
	KwBefore
	KwSince
	KwTriggered

	// Built-ins.
	KwUniv
	KwIden
	KwNone
	KwInt
	KwThis

	// Enum.
	KwEnum

	keywordsEnd
)

var kindNames = map[Kind]string{
	Illegal:  "illegal",
	Eof:      "eof",
	Ident:    "ident",
	Int:      "int",
	String:   "string",
	LParen:   "(",
	RParen:   ")",
	LBrace:   "{",
	RBrace:   "}",
	LBracket: "[",
	RBracket: "]",
	Comma:    ",",
	Colon:    ":",
	Dot:      ".",
	Semicolon: ";",
	At:       "@",
	Prime:    "'",
	Bar:      "|",
	Hash:     "#",
	Arrow:    "->",
	Le:       "=<",
	Ge:       ">=",
	Lt:       "<",
	Gt:       ">",
	Eq:       "=",
	Neq:      "!=",
	DomRes:   "<:",
	RanRes:   ":>",
	Override: "++",
	And:      "&&",
	Or:       "||",
	Implies:  "=>",
	Iff:      "<=>",
	Plus:     "+",
	Minus:    "-",
	Amp:      "&",
	Tilde:    "~",
	Caret:    "^",
	Star:     "*",
	Bang:     "!",

	KwModule: "module", KwOpen: "open", KwAs: "as",
	KwSig: "sig", KwAbstract: "abstract", KwExtends: "extends", KwIn: "in",
	KwStatic: "static", KwPrivate: "private", KwVar: "var",
	KwFact: "fact", KwPred: "pred", KwFun: "fun", KwAssert: "assert",
	KwRun: "run", KwCheck: "check", KwFor: "for", KwBut: "but",
	KwExactly: "exactly", KwSteps: "steps", KwExpect: "expect",
	KwLone: "lone", KwOne: "one", KwSome: "some", KwSet: "set", KwSeq: "seq", KwDisj: "disj",
	KwAll: "all", KwNo: "no", KwSum: "sum",
	KwAnd: "and", KwOr: "or", KwNot: "not", KwImplies: "implies", KwIff: "iff",
	KwElse: "else", KwLet: "let",
	KwAlways: "always", KwEventually: "eventually", KwAfter: "after",
	KwUntil: "until", KwReleases: "releases",
	KwHistorically: "historically", KwOnce: "once", KwBefore: "before",
	KwSince: "since", KwTriggered: "triggered",
	KwUniv: "univ", KwIden: "iden", KwNone: "none", KwInt: "Int", KwThis: "this",
	KwEnum: "enum",
}

// String renders a Kind using its canonical surface spelling (or a
// descriptive name for non-keyword kinds).
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(?)"
}

// IsKeyword reports whether k is one of the 53 reserved words.
func (k Kind) IsKeyword() bool {
	return k > keywordsBegin && k < keywordsEnd
}

// keywords maps every reserved word's lowercase spelling (plus the textual
// aliases for symbolic boolean operators) to its token kind. Built once at
// package init, following the lookup-table idiom used by hand-written
// lexers for keyword recognition after reading a full identifier.
var keywords map[string]Kind

func init() {
	keywords = map[string]Kind{
		"module": KwModule, "open": KwOpen, "as": KwAs,

		"sig": KwSig, "abstract": KwAbstract, "extends": KwExtends, "in": KwIn,
		"static": KwStatic, "private": KwPrivate, "var": KwVar,

		"fact": KwFact, "pred": KwPred, "fun": KwFun, "assert": KwAssert,

		"run": KwRun, "check": KwCheck, "for": KwFor, "but": KwBut,
		"exactly": KwExactly, "steps": KwSteps, "expect": KwExpect,

		"lone": KwLone, "one": KwOne, "some": KwSome, "set": KwSet,
		"seq": KwSeq, "disj": KwDisj,

		"all": KwAll, "no": KwNo, "sum": KwSum,

		"and": KwAnd, "or": KwOr, "not": KwNot, "implies": KwImplies,
		"iff": KwIff, "else": KwElse, "let": KwLet,

		"always": KwAlways, "eventually": KwEventually, "after": KwAfter,
		"until": KwUntil, "releases": KwReleases,

		"historically": KwHistorically, "once": KwOnce, "before": KwBefore,
		"since": KwSince, "triggered": KwTriggered,

		"univ": KwUniv, "iden": KwIden, "none": KwNone, "Int": KwInt, "this": KwThis,

		"enum": KwEnum,
	}
}

// Lookup returns the keyword Kind for ident, or (Ident, false) if ident is
// not a reserved word.
func Lookup(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// Token is a tagged record produced by the lexer: a Kind, the Span it
// occupies in the source, and the Lexeme (raw source text) it was scanned
// from. For Invalid tokens, Lexeme carries the diagnostic message instead.
type Token struct {
	Kind   Kind
	Span   srcpos.Span
	Lexeme string
}

func (t Token) String() string {
	return t.Kind.String() + "(" + t.Lexeme + ")"
}
