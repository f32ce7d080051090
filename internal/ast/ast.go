// Package ast defines the Alloy 6 abstract syntax tree: a closed set of
// tagged node variants produced by the parser. Per the "no open inheritance
// hierarchies" design note, every variant is a concrete struct implementing
// a narrow Node interface; visitors are plain type switches.
package ast

import "github.com/kevinawalsh/alloysat/internal/srcpos"

// Node is implemented by every AST variant.
type Node interface {
	Span() srcpos.Span
}

// Expr covers both set-valued (relational) and boolean-valued (formula)
// expressions: Alloy's surface grammar does not separate them syntactically
// -- "some x" is a formula, "x" alone is a set expression, and both parse
// through the same precedence ladder. Semantic analysis (internal/sema)
// assigns each Expr a type (set-of-signatures, or boolean) after parsing.
type Expr interface {
	Node
	exprNode()
}

// Decl covers top-level and nested declarations.
type Decl interface {
	Node
	declNode()
}

// ---- shared leaf helpers ----

type baseExpr struct{ Sp srcpos.Span }

func (b baseExpr) Span() srcpos.Span { return b.Sp }
func (baseExpr) exprNode()           {}

type baseDecl struct{ Sp srcpos.Span }

func (b baseDecl) Span() srcpos.Span { return b.Sp }
func (baseDecl) declNode()           {}

// ---- expressions ----

// Ident references a name: a signature, field, predicate/function,
// parameter, quantifier variable, or let binding.
type Ident struct {
	baseExpr
	Name string
}

// IntLit is an integer literal.
type IntLit struct {
	baseExpr
	Value int64
}

// StringLit is a quoted string literal (used only where the grammar allows
// string atoms, e.g. in certain built-in contexts).
type StringLit struct {
	baseExpr
	Value string
}

// BuiltinKind enumerates the built-in nullary expressions.
type BuiltinKind int

const (
	BuiltinUniv BuiltinKind = iota
	BuiltinIden
	BuiltinNone
	BuiltinInt
	BuiltinThis
)

// Builtin is one of univ, iden, none, Int, this.
type Builtin struct {
	baseExpr
	Kind BuiltinKind
}

// UnaryOp enumerates unary relational and multiplicity-test operators.
type UnaryOp int

const (
	OpTranspose UnaryOp = iota // ~
	OpClosure                  // ^
	OpRefClosure               // *
	OpCard                     // #
	OpNo                       // no e  (formula: e is empty)
	OpSome                     // some e
	OpLone                     // lone e
	OpOne                      // one e
	OpSet                      // set e (trivially true; multiplicity tag)
	OpNot                      // not/! f
	OpPrime                    // e'  (temporal: next-state value)
)

// Unary applies a prefix unary operator to an expression.
type Unary struct {
	baseExpr
	Op UnaryOp
	X  Expr
}

// BinaryOp enumerates infix relational, set, and boolean operators.
type BinaryOp int

const (
	OpJoin BinaryOp = iota // .
	OpArrow                // ->
	OpUnion                // +
	OpDiff                 // -
	OpInter                // &
	OpOverride             // ++
	OpDomRes               // <:
	OpRanRes               // :>
	OpAnd                  // && / and
	OpOr                   // || / or
	OpImplies              // => (binary, non-if-then-else use)
	OpIff                  // <=>
	OpSeq                  // ; (sequencing, "φ ; ψ" == "φ and after ψ")
)

// Binary applies an infix operator to two expressions.
type Binary struct {
	baseExpr
	Op   BinaryOp
	X, Y Expr
}

// Mult enumerates multiplicity annotations on declarations and arrow types.
type Mult int

const (
	MultNone Mult = iota
	MultLone
	MultOne
	MultSome
	MultSet
	MultSeq
)

// ArrowType decorates a product/arrow expression with left and right
// multiplicities, e.g. "A one -> some B".
type ArrowType struct {
	baseExpr
	Left  Mult
	X     Expr
	Right Mult
	Y     Expr
	Disj  bool // disj decoration on the left domain
}

// CompareOp enumerates comparison and membership operators.
type CompareOp int

const (
	CmpEq CompareOp = iota
	CmpNeq
	CmpLt
	CmpGt
	CmpLe
	CmpGe
	CmpIn
	CmpNotIn
)

// Compare is a comparison or membership formula between two expressions.
type Compare struct {
	baseExpr
	Op   CompareOp
	X, Y Expr
}

// VarDecl is both the declaration kind used inside quantifiers/comprehensions
// and the field-declaration kind used inside signatures; VarDecl models
// "names : type expression", possibly with a disjointness marker and
// multiple shared names.
type VarDecl struct {
	Sp     srcpos.Span
	Names  []string
	Disj   bool
	Mult   Mult
	Type   Expr
}

func (d VarDecl) Span() srcpos.Span { return d.Sp }

// QuantKind enumerates the quantifier forms.
type QuantKind int

const (
	QuantAll QuantKind = iota
	QuantNo
	QuantSome
	QuantLone
	QuantOne
	QuantSum
)

// Quant is a quantified formula (or, for QuantSum, an integer-valued
// expression): "all x: D | body", "some disj x, y: D | body", etc.
type Quant struct {
	baseExpr
	Kind  QuantKind
	Decls []VarDecl
	Body  Expr
}

// Comprehension is a set-builder expression "{ decls | body }".
type Comprehension struct {
	baseExpr
	Decls []VarDecl
	Body  Expr
}

// IfExpr is "cond => then else else_", usable as either a formula or a set
// expression depending on the type of Then/Else.
type IfExpr struct {
	baseExpr
	Cond Expr
	Then Expr
	Else Expr
}

// LetBinding binds one name to a value expression within a LetExpr.
type LetBinding struct {
	Name  string
	Value Expr
}

// LetExpr is "let x = e, y = f | body".
type LetExpr struct {
	baseExpr
	Bindings []LetBinding
	Body     Expr
}

// Block is "{ e1 e2 ... }" (implicit conjunction of formulas) or a brace
// group wrapping a single expression.
type Block struct {
	baseExpr
	Exprs []Expr
}

// Call applies a predicate or function by name to argument expressions,
// with an optional receiver for Alloy's method call syntax "recv.name[args]".
type Call struct {
	baseExpr
	Recv Expr // nil if not a method call
	Name string
	Args []Expr
}

// TemporalUnaryOp enumerates the future and past unary temporal operators.
type TemporalUnaryOp int

const (
	TAfter TemporalUnaryOp = iota
	TBefore
	TAlways
	TEventually
	THistorically
	TOnce
)

// TemporalUnary applies a unary temporal operator to a formula.
type TemporalUnary struct {
	baseExpr
	Op TemporalUnaryOp
	X  Expr
}

// TemporalBinaryOp enumerates the binary temporal operators.
type TemporalBinaryOp int

const (
	TUntil TemporalBinaryOp = iota
	TReleases
	TSince
	TTriggered
)

// TemporalBinary applies a binary temporal operator to two formulas.
type TemporalBinary struct {
	baseExpr
	Op   TemporalBinaryOp
	X, Y Expr
}

// Paren preserves an explicit parenthesization (the parser keeps every one,
// for span accuracy in diagnostics; it is transparent to semantics).
type Paren struct {
	baseExpr
	X Expr
}
