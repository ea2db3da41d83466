package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/llir"
)

// Cursor identifies a single instruction: a function, the basic block
// within it, and the instruction offset within that block. Mirrors
// the original debugger's ByteCodeIndex.
type Cursor struct {
	Function    string
	Block       llir.BlockRef
	Instruction int
}

func (c Cursor) next() Cursor {
	return Cursor{Function: c.Function, Block: c.Block, Instruction: c.Instruction + 1}
}

func (c Cursor) jump(target llir.BlockRef) Cursor {
	return Cursor{Function: c.Function, Block: target, Instruction: 0}
}

// StepKind tags a Step's outcome: execution moved to another
// instruction, or the current activation returned a value.
type StepKind int

const (
	StepContinue StepKind = iota
	StepExit
)

// StepResult is the outcome of a single Step call.
type StepResult struct {
	Kind  StepKind
	Next  Cursor
	Value Value
}

// frame is one function activation's register file, addressed by
// LLVar name the way the original interpreter's variable bindings
// are addressed by name rather than stack slot.
type frame struct {
	fn   *llir.Function
	regs map[string]Value
}

func newFrame(fn *llir.Function) *frame {
	return &frame{fn: fn, regs: make(map[string]Value)}
}

func (fr *frame) get(v llir.LLVar) Value {
	if v.Name == "$void" {
		return Value{Kind: VVoid}
	}
	return fr.regs[v.Name]
}

func (fr *frame) set(name string, v Value) {
	fr.regs[name] = v
}

// Interpreter executes a lowered module one instruction at a time.
// Its single-step contract (Step returning Continue(cursor) or
// Exit(value)) mirrors the original's Interpreter::step, which the
// original's shell-driven debugger and a plain run-to-completion loop
// both build on.
type Interpreter struct {
	module *llir.Module
	frames []*frame
}

func New(module *llir.Module) *Interpreter {
	return &Interpreter{module: module}
}

// Start pushes a new activation for funcName with args bound to its
// parameters by position, returning the cursor for its first
// instruction.
func (it *Interpreter) Start(funcName string, args []Value) (Cursor, error) {
	fn, ok := it.module.Functions[funcName]
	if !ok {
		return Cursor{}, fmt.Errorf("interp: unknown function %q", funcName)
	}
	fr := newFrame(fn)
	for i, arg := range fn.Sig.Args {
		if i < len(args) {
			fr.set(arg.Name, args[i])
		}
	}
	it.frames = append(it.frames, fr)
	return Cursor{Function: funcName, Block: 0, Instruction: 0}, nil
}

func (it *Interpreter) top() *frame {
	return it.frames[len(it.frames)-1]
}

// GetVariable looks up a bound name in the current activation, for
// the debugger's `print` command.
func (it *Interpreter) GetVariable(name string) (Value, error) {
	if len(it.frames) == 0 {
		return Value{}, fmt.Errorf("interp: no active frame")
	}
	v, ok := it.top().regs[name]
	if !ok {
		return Value{}, fmt.Errorf("interp: unbound variable %q", name)
	}
	return v, nil
}

// Step executes the single instruction cur points to.
func (it *Interpreter) Step(cur Cursor) (StepResult, error) {
	fr := it.top()
	bb, ok := fr.fn.Blocks[cur.Block]
	if !ok {
		return StepResult{}, fmt.Errorf("interp: invalid block %d in %s", cur.Block, cur.Function)
	}
	if cur.Instruction >= len(bb.Instructions) {
		return StepResult{}, fmt.Errorf("interp: instruction index out of range in %s", cur.Function)
	}
	inst := bb.Instructions[cur.Instruction]

	switch n := inst.(type) {
	case *llir.Alloc:
		fr.set(n.Var.Name, zeroValue(n.Var.Typ))
		return it.cont(cur), nil

	case *llir.Set:
		v, err := it.evalExpr(n.Expr)
		if err != nil {
			return StepResult{}, err
		}
		fr.set(n.Dst.Name, v)
		return it.cont(cur), nil

	case *llir.Store:
		if err := it.store(fr.get(n.Dst), n.Member, fr.get(n.Src)); err != nil {
			return StepResult{}, err
		}
		return it.cont(cur), nil

	case *llir.Load:
		v, err := it.load(fr.get(n.Src), n.Member)
		if err != nil {
			return StepResult{}, err
		}
		fr.set(n.Dst.Name, v)
		return it.cont(cur), nil

	case *llir.CallStmt:
		args := make([]Value, len(n.Args))
		for i, a := range n.Args {
			args[i] = fr.get(a)
		}
		if _, err := it.call(n.Name, args); err != nil {
			return StepResult{}, err
		}
		return it.cont(cur), nil

	case *llir.Branch:
		return StepResult{Kind: StepContinue, Next: cur.jump(n.Target)}, nil

	case *llir.BranchIf:
		cond := fr.get(n.Cond)
		target := n.Else
		if cond.Bool {
			target = n.Then
		}
		return StepResult{Kind: StepContinue, Next: cur.jump(target)}, nil

	case *llir.Return:
		v := fr.get(n.Value)
		it.frames = it.frames[:len(it.frames)-1]
		return StepResult{Kind: StepExit, Value: v}, nil

	case *llir.StartScope, *llir.EndScope:
		return it.cont(cur), nil

	case *llir.IncRef:
		IncRef(fr.get(n.Var))
		return it.cont(cur), nil

	case *llir.DecRef:
		DecRef(fr.get(n.Var))
		return it.cont(cur), nil

	case *llir.Bind:
		fr.set(n.Name, fr.get(n.Src))
		return it.cont(cur), nil

	default:
		return StepResult{}, fmt.Errorf("interp: unhandled instruction %T", inst)
	}
}

func (it *Interpreter) cont(cur Cursor) StepResult {
	return StepResult{Kind: StepContinue, Next: cur.next()}
}

// Run drives a fresh activation of funcName to completion, running
// Step until it reports StepExit.
func (it *Interpreter) Run(funcName string, args []Value) (Value, error) {
	cur, err := it.Start(funcName, args)
	if err != nil {
		return Value{}, err
	}
	for {
		res, err := it.Step(cur)
		if err != nil {
			return Value{}, err
		}
		if res.Kind == StepExit {
			return res.Value, nil
		}
		cur = res.Next
	}
}

func (it *Interpreter) call(name string, args []Value) (Value, error) {
	if _, ok := it.module.Functions[name]; !ok {
		return Value{}, fmt.Errorf("interp: call to unknown function %q", name)
	}
	return it.Run(name, args)
}

func (it *Interpreter) store(dst Value, member string, src Value) error {
	if dst.Kind != VHeap || dst.Cell == nil {
		return fmt.Errorf("interp: store into non-heap value")
	}
	switch dst.Cell.Kind {
	case CStruct, CSum:
		if dst.Cell.Members == nil {
			dst.Cell.Members = make(map[string]Value)
		}
		if member == "$tag" {
			dst.Cell.Tag = int(src.Int)
			return nil
		}
		dst.Cell.Members[member] = src
		return nil
	case CArray:
		if idx, ok := parseIndexMember(member); ok {
			for len(dst.Cell.Elements) <= idx {
				dst.Cell.Elements = append(dst.Cell.Elements, Value{})
			}
			dst.Cell.Elements[idx] = src
			return nil
		}
		return fmt.Errorf("interp: invalid array member %q", member)
	case COptional:
		dst.Cell.Some = true
		dst.Cell.Inner = src
		return nil
	default:
		return fmt.Errorf("interp: cannot store into cell kind %v", dst.Cell.Kind)
	}
}

func (it *Interpreter) load(src Value, member string) (Value, error) {
	if src.Kind != VHeap || src.Cell == nil {
		return Value{}, fmt.Errorf("interp: load from non-heap value")
	}
	if src.Cell.Members != nil {
		if v, ok := src.Cell.Members[member]; ok {
			return v, nil
		}
	}
	if idx, ok := parseIndexMember(member); ok && idx < len(src.Cell.Elements) {
		return src.Cell.Elements[idx], nil
	}
	return Value{}, fmt.Errorf("interp: no member %q", member)
}

func parseIndexMember(member string) (int, bool) {
	if !strings.HasPrefix(member, "[") || !strings.HasSuffix(member, "]") {
		return 0, false
	}
	idx, err := strconv.Atoi(member[1 : len(member)-1])
	if err != nil {
		return 0, false
	}
	return idx, true
}

func zeroValue(t ast.Type) Value {
	switch t.Kind {
	case ast.TInt:
		return Value{Kind: VInt}
	case ast.TUInt:
		return Value{Kind: VUInt}
	case ast.TFloat:
		return Value{Kind: VFloat}
	case ast.TBool:
		return Value{Kind: VBool}
	case ast.TChar:
		return Value{Kind: VChar}
	case ast.TEnum:
		return Value{Kind: VEnum}
	case ast.TPointer:
		return Value{Kind: VPointer}
	case ast.TFunc:
		return Value{Kind: VFunc}
	case ast.TVoid:
		return Value{Kind: VVoid}
	default:
		return zeroHeap(t)
	}
}

func zeroHeap(t ast.Type) Value {
	switch t.Kind {
	case ast.TArray, ast.TSlice:
		return Value{Kind: VHeap, Cell: &Cell{Kind: CArray, RefCount: 1}}
	case ast.TString:
		return Value{Kind: VHeap, Cell: &Cell{Kind: CString, RefCount: 1}}
	case ast.TStruct:
		return Value{Kind: VHeap, Cell: &Cell{Kind: CStruct, RefCount: 1, Members: make(map[string]Value)}}
	case ast.TSum:
		return Value{Kind: VHeap, Cell: &Cell{Kind: CSum, RefCount: 1, Members: make(map[string]Value)}}
	case ast.TOptional:
		return Value{Kind: VHeap, Cell: &Cell{Kind: COptional, RefCount: 1}}
	default:
		return Value{}
	}
}

func (it *Interpreter) elementsOf(v Value) ([]Value, error) {
	if v.Kind != VHeap || v.Cell == nil {
		return nil, fmt.Errorf("interp: not a sequence")
	}
	switch v.Cell.Kind {
	case CArray:
		return v.Cell.Elements, nil
	case CString:
		runes := []rune(v.Cell.Str)
		out := make([]Value, len(runes))
		for i, r := range runes {
			out[i] = Value{Kind: VChar, Char: r}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("interp: not a sequence")
	}
}

func (it *Interpreter) evalExpr(e llir.Expr) (Value, error) {
	fr := it.top()
	switch n := e.(type) {
	case llir.LitInt:
		return Value{Kind: VInt, Int: n.Value}, nil
	case llir.LitUInt:
		return Value{Kind: VUInt, UInt: n.Value}, nil
	case llir.LitFloat:
		return Value{Kind: VFloat, Float: n.Value}, nil
	case llir.LitBool:
		return Value{Kind: VBool, Bool: n.Value}, nil
	case llir.LitChar:
		return Value{Kind: VChar, Char: n.Value}, nil
	case llir.LitString:
		return Value{Kind: VHeap, Cell: &Cell{Kind: CString, RefCount: 1, Str: n.Value}}, nil
	case llir.VarRef:
		return fr.get(n.Var), nil
	case llir.UnaryOp:
		return evalUnary(n.Op, fr.get(n.Operand))
	case llir.BinaryOp:
		return evalBinary(n.Op, fr.get(n.Left), fr.get(n.Right))
	case llir.Call:
		args := make([]Value, len(n.Args))
		for i, a := range n.Args {
			args[i] = fr.get(a)
		}
		return it.call(n.Name, args)
	case llir.StructMember:
		return it.load(fr.get(n.Target), n.Member)
	case llir.ArrayHead:
		elems, err := it.elementsOf(fr.get(n.Target))
		if err != nil {
			return Value{}, err
		}
		if len(elems) == 0 {
			return Value{}, fmt.Errorf("interp: head of an empty sequence")
		}
		return elems[0], nil
	case llir.ArrayTail:
		elems, err := it.elementsOf(fr.get(n.Target))
		if err != nil {
			return Value{}, err
		}
		if len(elems) == 0 {
			return Value{}, fmt.Errorf("interp: tail of an empty sequence")
		}
		rest := append([]Value{}, elems[1:]...)
		return Value{Kind: VHeap, Cell: &Cell{Kind: CArray, RefCount: 1, Elements: rest}}, nil
	case llir.ArrayLen:
		elems, err := it.elementsOf(fr.get(n.Target))
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: VUInt, UInt: uint64(len(elems))}, nil
	case llir.ArrayIndex:
		elems, err := it.elementsOf(fr.get(n.Target))
		if err != nil {
			return Value{}, err
		}
		idx, err := indexOf(fr.get(n.Index))
		if err != nil {
			return Value{}, err
		}
		if idx < 0 || idx >= len(elems) {
			return Value{}, fmt.Errorf("interp: index %d out of range (len %d)", idx, len(elems))
		}
		return elems[idx], nil
	case llir.SumTypeIndex:
		t := fr.get(n.Target)
		switch t.Kind {
		case VHeap:
			if t.Cell == nil {
				return Value{}, fmt.Errorf("interp: sum tag read off a nil cell")
			}
			return Value{Kind: VInt, Int: int64(t.Cell.Tag)}, nil
		case VEnum:
			return Value{Kind: VInt, Int: int64(t.Enum)}, nil
		default:
			return Value{}, fmt.Errorf("interp: sum tag read off a non-sum value")
		}
	case llir.SumTypeCase:
		return Value{Kind: VInt, Int: int64(n.Index)}, nil
	case llir.EnumCaseLit:
		return Value{Kind: VEnum, Enum: n.Index}, nil
	case llir.SumTypeStruct:
		return fr.get(n.Target), nil
	case llir.OptionalIsSome:
		t := fr.get(n.Target)
		if t.Kind != VHeap || t.Cell == nil {
			return Value{}, fmt.Errorf("interp: optional truthiness read off a non-heap value")
		}
		return Value{Kind: VBool, Bool: t.Cell.Some}, nil
	case llir.PointerIsNotNil:
		t := fr.get(n.Target)
		return Value{Kind: VBool, Bool: t.Ptr != nil}, nil
	case llir.HeapAlloc:
		return zeroHeap(n.Typ), nil
	case llir.FuncRef:
		return Value{Kind: VFunc, Func: n.Name}, nil
	case llir.Ref:
		t := fr.get(n.Target)
		IncRef(t)
		return t, nil
	default:
		return Value{}, fmt.Errorf("interp: unhandled expression %T", e)
	}
}

func evalUnary(op ast.UnaryOperator, v Value) (Value, error) {
	switch op {
	case ast.OpNeg:
		switch v.Kind {
		case VInt:
			return Value{Kind: VInt, Int: -v.Int}, nil
		case VUInt:
			return Value{Kind: VUInt, UInt: ^v.UInt + 1}, nil
		case VFloat:
			return Value{Kind: VFloat, Float: -v.Float}, nil
		}
	case ast.OpNot:
		if v.Kind == VBool {
			return Value{Kind: VBool, Bool: !v.Bool}, nil
		}
	}
	return Value{}, fmt.Errorf("interp: unsupported unary operator %s on %s", op, v)
}

func evalBinary(op ast.BinaryOperator, l, r Value) (Value, error) {
	switch op {
	case ast.OpAdd:
		switch {
		case l.Kind == VInt && r.Kind == VInt:
			return Value{Kind: VInt, Int: l.Int + r.Int}, nil
		case l.Kind == VUInt && r.Kind == VUInt:
			return Value{Kind: VUInt, UInt: l.UInt + r.UInt}, nil
		case l.Kind == VFloat && r.Kind == VFloat:
			return Value{Kind: VFloat, Float: l.Float + r.Float}, nil
		case l.Kind == VChar && r.Kind == VChar:
			return Value{Kind: VChar, Char: l.Char + r.Char}, nil
		}
	case ast.OpSub:
		switch {
		case l.Kind == VInt && r.Kind == VInt:
			return Value{Kind: VInt, Int: l.Int - r.Int}, nil
		case l.Kind == VUInt && r.Kind == VUInt:
			return Value{Kind: VUInt, UInt: l.UInt - r.UInt}, nil
		case l.Kind == VFloat && r.Kind == VFloat:
			return Value{Kind: VFloat, Float: l.Float - r.Float}, nil
		}
	case ast.OpMul:
		switch {
		case l.Kind == VInt && r.Kind == VInt:
			return Value{Kind: VInt, Int: l.Int * r.Int}, nil
		case l.Kind == VUInt && r.Kind == VUInt:
			return Value{Kind: VUInt, UInt: l.UInt * r.UInt}, nil
		case l.Kind == VFloat && r.Kind == VFloat:
			return Value{Kind: VFloat, Float: l.Float * r.Float}, nil
		}
	case ast.OpDiv:
		switch {
		case l.Kind == VInt && r.Kind == VInt:
			if r.Int == 0 {
				return Value{}, fmt.Errorf("interp: division by zero")
			}
			return Value{Kind: VInt, Int: l.Int / r.Int}, nil
		case l.Kind == VUInt && r.Kind == VUInt:
			if r.UInt == 0 {
				return Value{}, fmt.Errorf("interp: division by zero")
			}
			return Value{Kind: VUInt, UInt: l.UInt / r.UInt}, nil
		case l.Kind == VFloat && r.Kind == VFloat:
			return Value{Kind: VFloat, Float: l.Float / r.Float}, nil
		}
	case ast.OpMod:
		switch {
		case l.Kind == VInt && r.Kind == VInt:
			if r.Int == 0 {
				return Value{}, fmt.Errorf("interp: division by zero")
			}
			return Value{Kind: VInt, Int: l.Int % r.Int}, nil
		case l.Kind == VUInt && r.Kind == VUInt:
			if r.UInt == 0 {
				return Value{}, fmt.Errorf("interp: division by zero")
			}
			return Value{Kind: VUInt, UInt: l.UInt % r.UInt}, nil
		}
	case ast.OpLT, ast.OpLTE, ast.OpGT, ast.OpGTE:
		return compareNumeric(op, l, r)
	case ast.OpEq:
		return Value{Kind: VBool, Bool: valueEquals(l, r)}, nil
	case ast.OpNotEq:
		return Value{Kind: VBool, Bool: !valueEquals(l, r)}, nil
	case ast.OpAnd:
		if l.Kind == VBool && r.Kind == VBool {
			return Value{Kind: VBool, Bool: l.Bool && r.Bool}, nil
		}
	case ast.OpOr:
		if l.Kind == VBool && r.Kind == VBool {
			return Value{Kind: VBool, Bool: l.Bool || r.Bool}, nil
		}
	}
	return Value{}, fmt.Errorf("interp: unsupported binary operator %s on %s, %s", op, l, r)
}

// indexOf converts a checked-integer index Value (Int or UInt) to a
// native int for slice indexing.
func indexOf(v Value) (int, error) {
	switch v.Kind {
	case VInt:
		return int(v.Int), nil
	case VUInt:
		return int(v.UInt), nil
	default:
		return 0, fmt.Errorf("interp: array index is not an integer value")
	}
}

func compareNumeric(op ast.BinaryOperator, l, r Value) (Value, error) {
	var cmp int
	switch {
	case l.Kind == VInt && r.Kind == VInt:
		cmp = compareInt64(l.Int, r.Int)
	case l.Kind == VUInt && r.Kind == VUInt:
		cmp = compareUint64(l.UInt, r.UInt)
	case l.Kind == VFloat && r.Kind == VFloat:
		cmp = compareFloat64(l.Float, r.Float)
	default:
		return Value{}, fmt.Errorf("interp: unsupported comparison operands %s, %s", l, r)
	}
	var b bool
	switch op {
	case ast.OpLT:
		b = cmp < 0
	case ast.OpLTE:
		b = cmp <= 0
	case ast.OpGT:
		b = cmp > 0
	case ast.OpGTE:
		b = cmp >= 0
	}
	return Value{Kind: VBool, Bool: b}, nil
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
