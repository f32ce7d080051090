package ast

import "github.com/kevinawalsh/alloysat/internal/srcpos"

// Module is the root of a parsed file: an optional header, a list of opens,
// and the remaining top-level declarations.
type Module struct {
	Sp      srcpos.Span
	Name    string // empty if no "module" header
	Opens   []*OpenDecl
	Decls   []Decl
	Command *Command // nil if the file declares no run/check command;
	// when multiple commands are present, Command is the last one parsed
	// and the others still appear in Decls for diagnostics/listing.
}

func (m *Module) Span() srcpos.Span { return m.Sp }

// OpenDecl is an "open" import, optionally aliased.
type OpenDecl struct {
	baseDecl
	Path  string
	Alias string // empty if no "as" clause
}

// FieldDecl is one field declaration group inside a signature: possibly
// several names sharing one type expression.
type FieldDecl struct {
	baseDecl
	Names []string
	Disj  bool
	Var   bool
	Type  Expr
}

// SigDecl declares one or more signatures sharing modifiers.
type SigDecl struct {
	baseDecl
	Names     []string
	Abstract  bool
	Var       bool
	Mult      Mult // lone/one/some applied to the signature itself
	Extends   string // empty if none
	InParents []string // "in A + B" subset parents; empty if extends is set
	Fields    []*FieldDecl
	Facts     []Expr // inline "sig A { ... } { fact-body }" appended facts
}

// Param is a predicate/function formal parameter.
type Param struct {
	Names []string
	Type  Expr
}

// PredDecl declares a predicate, optionally with a receiver signature for
// method syntax ("pred Sig.name[...] { ... }").
type PredDecl struct {
	baseDecl
	Recv   string // receiver signature name, empty if none
	Name   string
	Params []Param
	Body   Expr
}

// FunDecl declares a function: like PredDecl but with a declared result
// type and an expression body instead of a formula body.
type FunDecl struct {
	baseDecl
	Recv     string
	Name     string
	Params   []Param
	RetType  Expr
	Body     Expr
}

// FactDecl declares a (possibly anonymous) fact.
type FactDecl struct {
	baseDecl
	Name string // empty if anonymous
	Body Expr
}

// AssertDecl declares a named assertion.
type AssertDecl struct {
	baseDecl
	Name string
	Body Expr
}

// EnumDecl declares an enum type with an ordered list of value names.
type EnumDecl struct {
	baseDecl
	Name   string
	Values []string
}

// SigScope is a per-signature scope override inside a command's "for"
// clause: "for 5 Sig1, exactly 2 Sig2, Sig3 but 1".
type SigScope struct {
	Sig     string
	Bound   int
	Exact   bool
}

// Scope is a command's full scope specification.
type Scope struct {
	Default    int        // default scope; spec default is 3 when absent
	HasDefault bool
	PerSig     []SigScope
	Steps      int // temporal step bound; spec default is 10 when absent
	HasSteps   bool
}

// CommandKind distinguishes "run" from "check".
type CommandKind int

const (
	CmdRun CommandKind = iota
	CmdCheck
)

// Command is a run or check command: a named target (predicate, function,
// or assertion) or an anonymous inline body, plus a scope.
type Command struct {
	baseDecl
	Kind   CommandKind
	Name   string // empty if Body is set (anonymous command)
	Body   Expr   // non-nil only for anonymous "run { ... }" commands
	Scope  Scope
	Label  string // optional user-visible label ("run foo_test")
}
