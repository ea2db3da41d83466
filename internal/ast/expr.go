package ast

import "github.com/cobra-lang/cobra/internal/diag"

// UnaryOperator and BinaryOperator enumerate the operators the checker
// and lowering passes know about.
type UnaryOperator int

const (
	OpNeg UnaryOperator = iota
	OpNot
)

type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLT
	OpLTE
	OpGT
	OpGTE
	OpEq
	OpNotEq
	OpAnd
	OpOr
)

func (op BinaryOperator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpLT:
		return "<"
	case OpLTE:
		return "<="
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return "?"
	}
}

func (op UnaryOperator) String() string {
	switch op {
	case OpNeg:
		return "-"
	case OpNot:
		return "!"
	default:
		return "?"
	}
}

// Expression is the closed tagged union of typed expression nodes.
// Every expression carries its resolved Type and source Span; before
// checking runs, Type is Unknown.
type Expression interface {
	Span() diag.Span
	Type() Type
	SetType(Type)
	isExpression()
}

// ExprBase carries the span/type fields every concrete Expression
// embeds, avoiding repeating the accessor boilerplate per node.
type ExprBase struct {
	Sp  diag.Span
	Typ Type
}

func (b *ExprBase) Span() diag.Span { return b.Sp }
func (b *ExprBase) Type() Type      { return b.Typ }
func (b *ExprBase) SetType(t Type)  { b.Typ = t }
func (b *ExprBase) isExpression()   {}

func newBase(span diag.Span) ExprBase {
	return ExprBase{Sp: span, Typ: UnknownType()}
}

type IntLit struct {
	ExprBase
	Value int64
}

func NewIntLit(span diag.Span, v int64) *IntLit {
	return &IntLit{ExprBase: newBase(span), Value: v}
}

type UIntLit struct {
	ExprBase
	Value uint64
}

func NewUIntLit(span diag.Span, v uint64) *UIntLit {
	return &UIntLit{ExprBase: newBase(span), Value: v}
}

type FloatLit struct {
	ExprBase
	Value float64
}

func NewFloatLit(span diag.Span, v float64) *FloatLit {
	return &FloatLit{ExprBase: newBase(span), Value: v}
}

type BoolLit struct {
	ExprBase
	Value bool
}

func NewBoolLit(span diag.Span, v bool) *BoolLit {
	return &BoolLit{ExprBase: newBase(span), Value: v}
}

type CharLit struct {
	ExprBase
	Value rune
}

func NewCharLit(span diag.Span, v rune) *CharLit {
	return &CharLit{ExprBase: newBase(span), Value: v}
}

type StringLit struct {
	ExprBase
	Value string
}

func NewStringLit(span diag.Span, v string) *StringLit {
	return &StringLit{ExprBase: newBase(span), Value: v}
}

// NilLit is the literal `nil`, type-checked against an Optional or
// Pointer target and lowered to a zeroed Optional/pointer value.
type NilLit struct {
	ExprBase
}

func NewNilLit(span diag.Span) *NilLit {
	return &NilLit{ExprBase: newBase(span)}
}

type ArrayLit struct {
	ExprBase
	Elements []Expression
}

func NewArrayLit(span diag.Span, elems []Expression) *ArrayLit {
	return &ArrayLit{ExprBase: newBase(span), Elements: elems}
}

// NameRef refers to a bound name: a local variable, function,
// sum-case constructor, or enum-case constant.
type NameRef struct {
	ExprBase
	Name string

	// EnumCase is set by the checker when Name resolves to one of an
	// enum-only sum's bare case names rather than a bound variable.
	EnumCase bool
}

func NewNameRef(span diag.Span, name string) *NameRef {
	return &NameRef{ExprBase: newBase(span), Name: name}
}

type UnaryOp struct {
	ExprBase
	Op      UnaryOperator
	Operand Expression
}

func NewUnaryOp(span diag.Span, op UnaryOperator, operand Expression) *UnaryOp {
	return &UnaryOp{ExprBase: newBase(span), Op: op, Operand: operand}
}

type BinaryOp struct {
	ExprBase
	Op    BinaryOperator
	Left  Expression
	Right Expression
}

func NewBinaryOp(span diag.Span, op BinaryOperator, left, right Expression) *BinaryOp {
	return &BinaryOp{ExprBase: newBase(span), Op: op, Left: left, Right: right}
}

// Call invokes a named function (possibly generic, with explicit or
// inferred GenericArgs filled in by the checker).
type Call struct {
	ExprBase
	Callee      string
	Args        []Expression
	GenericArgs []Type
}

func NewCall(span diag.Span, callee string, args []Expression) *Call {
	return &Call{ExprBase: newBase(span), Callee: callee, Args: args}
}

// Block sequences expressions; the value of the last expression is
// the value of the block (Void if the block is empty).
type Block struct {
	ExprBase
	Expressions []Expression
}

func NewBlock(span diag.Span, exprs []Expression) *Block {
	return &Block{ExprBase: newBase(span), Expressions: exprs}
}

// LetBinding is a single name :- init binding inside a Let.
type LetBinding struct {
	Name           string
	TypeAnnotation *Type
	Mutable        bool
	Init           Expression
	Span           diag.Span
}

// Let introduces one or more bindings in scope for Body.
type Let struct {
	ExprBase
	Bindings []LetBinding
	Body     Expression
}

func NewLet(span diag.Span, bindings []LetBinding, body Expression) *Let {
	return &Let{ExprBase: newBase(span), Bindings: bindings, Body: body}
}

// If is type-checked as its own node; lowering desugars it to a Match
// on a Bool target via ToMatch.
type If struct {
	ExprBase
	Cond Expression
	Then Expression
	Else Expression
}

func NewIf(span diag.Span, cond, then, els Expression) *If {
	return &If{ExprBase: newBase(span), Cond: cond, Then: then, Else: els}
}

// ToMatch desugars an If into the equivalent two-arm Match. Lowering
// uses it; the checker checks If directly.
func (n *If) ToMatch() *Match {
	trueCase := MatchCase{
		Pattern: Pattern{Kind: PLiteralBool, Span: n.Then.Span(), BoolVal: true},
		Body:    n.Then,
		Span:    n.Then.Span(),
	}
	falseCase := MatchCase{
		Pattern: Pattern{Kind: PAny, Span: n.Span()},
		Body:    n.Else,
		Span:    n.Else.Span(),
	}
	m := NewMatch(n.Span(), n.Cond, []MatchCase{trueCase, falseCase})
	m.Typ = n.Typ
	return m
}

type MatchCase struct {
	Pattern Pattern
	Guard   Expression
	Body    Expression
	Span    diag.Span
}

type Match struct {
	ExprBase
	Target Expression
	Cases  []MatchCase
}

func NewMatch(span diag.Span, target Expression, cases []MatchCase) *Match {
	return &Match{ExprBase: newBase(span), Target: target, Cases: cases}
}

// Lambda is a function literal. Name starts empty and is filled in by
// the checker with a fresh `lambda$<uuid>` name when the lambda is
// checked against a function-typed hint.
type Lambda struct {
	ExprBase
	Sig  FunctionSignature
	Body Expression
	Name string
}

func NewLambda(span diag.Span, sig FunctionSignature, body Expression) *Lambda {
	return &Lambda{ExprBase: newBase(span), Sig: sig, Body: body}
}

type StructInitMember struct {
	Name  string
	Value Expression
}

// StructInitializer builds a Struct value, or a Sum value when Name
// names a sum case rather than a struct (the checker disambiguates).
type StructInitializer struct {
	ExprBase
	Name        string
	GenericArgs []Type
	Members     []StructInitMember
}

func NewStructInitializer(span diag.Span, name string, members []StructInitMember) *StructInitializer {
	return &StructInitializer{ExprBase: newBase(span), Name: name, Members: members}
}

// MemberAccess reads target.Member, either a struct field or a
// built-in sequence property (len, data).
type MemberAccess struct {
	ExprBase
	Target Expression
	Member string
}

func NewMemberAccess(span diag.Span, target Expression, member string) *MemberAccess {
	return &MemberAccess{ExprBase: newBase(span), Target: target, Member: member}
}

// Index reads Target[IndexExpr], the computed-subscript member access
// a bare field name or built-in property can't express: the array/
// slice variant of the path grammar, keyed by a full expression
// instead of a static name.
type Index struct {
	ExprBase
	Target    Expression
	IndexExpr Expression
}

func NewIndex(span diag.Span, target, index Expression) *Index {
	return &Index{ExprBase: newBase(span), Target: target, IndexExpr: index}
}

// Conversion wraps Inner with an implicit conversion synthesized by
// Type.Convert (array-to-slice, optional wrapping/truthiness, pointer
// truthiness/casts). The checker never constructs these directly;
// Convert does, once it has decided a ConversionKind applies.
type Conversion struct {
	ExprBase
	Inner Expression
	Kind  ConversionKind
}

func NewConversion(span diag.Span, inner Expression, kind ConversionKind, target Type) *Conversion {
	c := &Conversion{ExprBase: newBase(span), Inner: inner, Kind: kind}
	c.Typ = target
	return c
}

// Convert returns e unchanged if its type already equals target, or
// wraps it in the Conversion node Type.conversionKind selects.
// Mirrors the original's Type::convert.
func Convert(e Expression, target Type) (Expression, bool) {
	from := e.Type()
	if from.Equals(target) {
		return e, true
	}
	kind := from.conversionKind(target)
	if kind == ConvNone {
		return e, false
	}
	return NewConversion(e.Span(), e, kind, target), true
}
