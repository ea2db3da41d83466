package llir

import "github.com/cobra-lang/cobra/internal/ast"

// Instruction is the closed tagged union of LLIR statements. Every
// basic block ends in exactly one terminator: Branch, BranchIf, or
// Return.
type Instruction interface {
	isInstruction()
}

// Alloc stack-allocates storage for a variable; emitted once per
// named local when it enters scope.
type Alloc struct {
	Var LLVar
}

func NewAlloc(v LLVar) *Alloc { return &Alloc{Var: v} }

// Set computes Expr and stores the result in Dst.
type Set struct {
	Dst  LLVar
	Expr Expr
}

func NewSet(dst LLVar, expr Expr) *Set { return &Set{Dst: dst, Expr: expr} }

// Store copies Src into the Member field of Dst (struct/sum payload
// construction).
type Store struct {
	Dst    LLVar
	Member string
	Src    LLVar
}

func NewStore(dst LLVar, member string, src LLVar) *Store {
	return &Store{Dst: dst, Member: member, Src: src}
}

// Load reads the Member field of Src into Dst.
type Load struct {
	Dst    LLVar
	Src    LLVar
	Member string
}

func NewLoad(dst, src LLVar, member string) *Load {
	return &Load{Dst: dst, Src: src, Member: member}
}

// CallStmt invokes a function for effect only, discarding its result
// (used for calls whose value nothing consumes).
type CallStmt struct {
	Name string
	Args []LLVar
}

func NewCallStmt(name string, args []LLVar) *CallStmt {
	return &CallStmt{Name: name, Args: args}
}

// Branch unconditionally jumps to Target.
type Branch struct {
	Target BlockRef
}

func NewBranch(target BlockRef) *Branch { return &Branch{Target: target} }

// BranchIf jumps to Then if Cond is true, else to Else.
type BranchIf struct {
	Cond LLVar
	Then BlockRef
	Else BlockRef
}

func NewBranchIf(cond LLVar, then, els BlockRef) *BranchIf {
	return &BranchIf{Cond: cond, Then: then, Else: els}
}

// Return ends the function, yielding Value (Void-typed for no
// value).
type Return struct {
	Value LLVar
}

func NewReturn(v LLVar) *Return { return &Return{Value: v} }

// StartScope/EndScope bracket a lexical scope; every StartScope has a
// matching EndScope. The function's outermost scope has neither and
// closes implicitly at Return.
type StartScope struct{}

func NewStartScope() *StartScope { return &StartScope{} }

type EndScope struct{}

func NewEndScope() *EndScope { return &EndScope{} }

// IncRef/DecRef adjust a heap-allocated value's reference count.
type IncRef struct {
	Var LLVar
}

func NewIncRef(v LLVar) *IncRef { return &IncRef{Var: v} }

type DecRef struct {
	Var LLVar
}

func NewDecRef(v LLVar) *DecRef { return &DecRef{Var: v} }

// Bind introduces Name as an alias for Src within the current scope
// (pattern bindings: a match arm's head/tail/member names).
type Bind struct {
	Name string
	Src  LLVar
}

func NewBind(name string, src LLVar) *Bind { return &Bind{Name: name, Src: src} }

func (*Alloc) isInstruction()      {}
func (*Set) isInstruction()        {}
func (*Store) isInstruction()      {}
func (*Load) isInstruction()       {}
func (*CallStmt) isInstruction()   {}
func (*Branch) isInstruction()     {}
func (*BranchIf) isInstruction()   {}
func (*Return) isInstruction()     {}
func (*StartScope) isInstruction() {}
func (*EndScope) isInstruction()   {}
func (*IncRef) isInstruction()     {}
func (*DecRef) isInstruction()     {}
func (*Bind) isInstruction()       {}

// Expr is the right-hand side of a Set instruction: a single
// operation producing a value, never itself control flow.
type Expr interface {
	isExpr()
}

type LitInt struct{ Value int64 }
type LitUInt struct{ Value uint64 }
type LitFloat struct{ Value float64 }
type LitBool struct{ Value bool }
type LitChar struct{ Value rune }
type LitString struct{ Value string }

type VarRef struct{ Var LLVar }

type UnaryOp struct {
	Op      ast.UnaryOperator
	Operand LLVar
}

type BinaryOp struct {
	Op    ast.BinaryOperator
	Left  LLVar
	Right LLVar
}

// Call invokes a named function with the given arguments and yields
// its return value.
type Call struct {
	Name string
	Args []LLVar
}

// StructMember reads a named member off a struct/sum-payload var.
type StructMember struct {
	Target LLVar
	Member string
}

// ArrayHead/ArrayTail/ArrayLen implement the sequence destructuring
// and length-query operations the checker's IsSequence surface backs.
type ArrayHead struct{ Target LLVar }
type ArrayTail struct{ Target LLVar }
type ArrayLen struct{ Target LLVar }

// ArrayIndex reads the element at a computed Index of an array/slice-
// typed var, backing the ArrayIndex variant of MemberAccess's path.
type ArrayIndex struct{ Target, Index LLVar }

// SumTypeIndex reads the discriminant tag of a Sum-typed var.
type SumTypeIndex struct{ Target LLVar }

// OptionalIsSome reads the present/absent slot of an Optional-typed
// var, backing ConvOptionalTruthiness.
type OptionalIsSome struct{ Target LLVar }

// PointerIsNotNil reads whether a Pointer-typed var holds an address,
// backing ConvPointerTruthiness.
type PointerIsNotNil struct{ Target LLVar }

// SumTypeCase is the literal tag value identifying case Index of a
// sum type, used both to construct a sum value and as the comparison
// operand when compiling a name pattern into an equality branch.
type SumTypeCase struct{ Index int }

// EnumCaseLit is the literal Enum value identifying case Index of an
// enum-only sum type, used whenever source names one of its bare
// cases directly (e.g. as a match target or a returned value).
type EnumCaseLit struct{ Index int }

// SumTypeStruct extracts the case-Index payload struct out of a
// Sum-typed var (valid only once SumTypeIndex has confirmed the tag
// matches).
type SumTypeStruct struct {
	Target LLVar
	Index  int
}

// HeapAlloc allocates a new reference-counted cell of type Typ with
// refcount 1.
type HeapAlloc struct{ Typ ast.Type }

// FuncRef is a first-class reference to a named function, used to
// build closure values.
type FuncRef struct{ Name string }

// Ref increments Target's refcount and yields Target itself (used
// whenever a heap-typed value is copied into a new binding that
// outlives the source expression, e.g. returning a NameRef looked up
// from an outer scope).
type Ref struct{ Target LLVar }

func (LitInt) isExpr()          {}
func (LitUInt) isExpr()         {}
func (LitFloat) isExpr()        {}
func (LitBool) isExpr()         {}
func (LitChar) isExpr()         {}
func (LitString) isExpr()       {}
func (VarRef) isExpr()          {}
func (UnaryOp) isExpr()         {}
func (BinaryOp) isExpr()        {}
func (Call) isExpr()            {}
func (StructMember) isExpr()    {}
func (ArrayHead) isExpr()       {}
func (ArrayTail) isExpr()       {}
func (ArrayLen) isExpr()        {}
func (ArrayIndex) isExpr()      {}
func (SumTypeIndex) isExpr()    {}
func (OptionalIsSome) isExpr()  {}
func (PointerIsNotNil) isExpr() {}
func (SumTypeCase) isExpr()     {}
func (EnumCaseLit) isExpr()     {}
func (SumTypeStruct) isExpr()   {}
func (HeapAlloc) isExpr()       {}
func (FuncRef) isExpr()         {}
func (Ref) isExpr()             {}
