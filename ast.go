// ast.go
//
// The abstract syntax tree the checker consumes and the evaluator executes.
// Nodes are dedicated types (no generic tag soup): every navigation and
// mutation decision downstream is a total switch over these variants.
// Each node carries the byte span of its source text; assignment targets
// and path expressions additionally carry one span per path segment so the
// path-mutation diagnostic can point at the exact offending segment.
package vrl

// Expr is any expression node.
type Expr interface {
	Span() Span
}

// Block is a sequence of expressions; its value is the last expression's
// value (null when empty). Blocks open a new variable scope.
type Block struct {
	Exprs []Expr
	Sp    Span
}

func (b *Block) Span() Span { return b.Sp }

// Literal is a constant value embedded in the program.
type Literal struct {
	Val Value
	Sp  Span
}

func (l *Literal) Span() Span { return l.Sp }

// ArrayLit is an array constructor.
type ArrayLit struct {
	Elems []Expr
	Sp    Span
}

func (a *ArrayLit) Span() Span { return a.Sp }

// ObjectLit is an object constructor; keys keep source order.
type ObjectLit struct {
	Keys []string
	Vals []Expr
	Sp   Span
}

func (o *ObjectLit) Span() Span { return o.Sp }

// PathExpr reads a location in the external event. SegSpans is parallel to
// Path. The empty path is the event root (`.`).
type PathExpr struct {
	Path     Path
	SegSpans []Span
	Sp       Span
}

func (p *PathExpr) Span() Span { return p.Sp }

// VarExpr reads a local variable ($name), optionally descending into it
// with a path suffix ($name.field[0]). Path is empty for a plain read.
type VarExpr struct {
	Name     string
	Path     Path
	SegSpans []Span
	Sp       Span
}

func (v *VarExpr) Span() Span { return v.Sp }

// Target is the left-hand side of an assignment: either a local variable
// (Var != "") or the external event, in both cases optionally followed by a
// path into the value.
type Target struct {
	Var      string // "" when the target is the external event
	Path     Path
	SegSpans []Span
	Sp       Span
}

// Assign writes Value into Target.
type Assign struct {
	Target Target
	Value  Expr
	Sp     Span
}

func (a *Assign) Span() Span { return a.Sp }

// If is a two-way conditional. Else may be nil. The predicate must check as
// Boolean.
type If struct {
	Cond Expr
	Then *Block
	Else *Block // nil when absent
	Sp   Span
}

func (i *If) Span() Span { return i.Sp }

// Arg is one call argument, positional (Name == "") or named.
type Arg struct {
	Name string
	Val  Expr
	Sp   Span
}

// Call invokes a registered function. Abort marks the `!` suffix: a runtime
// failure of the call aborts the invocation instead of needing `??`.
type Call struct {
	Func     string
	FuncSpan Span
	Args     []Arg
	Abort    bool
	Sp       Span
}

func (c *Call) Span() Span { return c.Sp }

// Coalesce is `lhs ?? rhs`: evaluate lhs; on runtime error evaluate rhs
// instead. The checker treats the result as the union of both sides and
// clears the fallible flag.
type Coalesce struct {
	Lhs Expr
	Rhs Expr
	Sp  Span
}

func (c *Coalesce) Span() Span { return c.Sp }

// BinOp enumerates binary operators.
type BinOp int

const (
	OpEq BinOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpAnd
	OpOr
)

var binOpNames = map[BinOp]string{
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpAnd: "&&", OpOr: "||",
}

func (op BinOp) String() string { return binOpNames[op] }

// Binary applies op to two operands, left evaluated first.
type Binary struct {
	Op  BinOp
	Lhs Expr
	Rhs Expr
	Sp  Span
}

func (b *Binary) Span() Span { return b.Sp }

// UnOp enumerates unary operators.
type UnOp int

const (
	OpNot UnOp = iota // !x (boolean)
	OpNeg             // -x (numeric)
)

// Unary applies a prefix operator.
type Unary struct {
	Op      UnOp
	Operand Expr
	Sp      Span
}

func (u *Unary) Span() Span { return u.Sp }

// Abort halts the invocation for the current record; the host decides the
// record's disposition. Statements after it in a block are unreachable.
type Abort struct {
	Sp Span
}

func (a *Abort) Span() Span { return a.Sp }
