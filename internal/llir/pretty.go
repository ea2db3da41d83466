package llir

import (
	"fmt"
	"strings"
)

// String renders a function the way the original's Display impl for
// LLFunction does: nested lambdas first, then the signature line,
// then every basic block in emission order with its instructions.
func (f *Function) String() string {
	var b strings.Builder
	for _, lambda := range f.Lambdas {
		b.WriteString(lambda.String())
		b.WriteString("\n")
	}

	args := make([]string, len(f.Sig.Args))
	for i, a := range f.Sig.Args {
		args[i] = fmt.Sprintf("%s: %s", a.Name, a.Type)
	}
	fmt.Fprintf(&b, "%s(%s) -> %s:\n", f.Sig.Name, strings.Join(args, ", "), f.Sig.ReturnType)

	for _, ref := range f.BlockOrder {
		bb := f.Blocks[ref]
		fmt.Fprintf(&b, " %s:\n", bb.Name)
		for _, inst := range bb.Instructions {
			b.WriteString("  ")
			b.WriteString(instructionString(inst))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// String renders every function in the module, in map iteration
// order (diagnostic output only; emission order within a function is
// always deterministic via BlockOrder).
func (m *Module) String() string {
	var b strings.Builder
	for _, f := range m.Functions {
		b.WriteString(f.String())
		b.WriteString("\n")
	}
	return b.String()
}

func instructionString(inst Instruction) string {
	switch n := inst.(type) {
	case *Alloc:
		return fmt.Sprintf("alloc %s", n.Var)
	case *Set:
		return fmt.Sprintf("%s = %s", n.Dst, exprString(n.Expr))
	case *Store:
		return fmt.Sprintf("%s.%s = %s", n.Dst, n.Member, n.Src)
	case *Load:
		return fmt.Sprintf("%s = %s.%s", n.Dst, n.Src, n.Member)
	case *CallStmt:
		return fmt.Sprintf("call %s(%s)", n.Name, joinVars(n.Args))
	case *Branch:
		return fmt.Sprintf("branch %s", blockName(n.Target))
	case *BranchIf:
		return fmt.Sprintf("branch-if %s ? %s : %s", n.Cond, blockName(n.Then), blockName(n.Else))
	case *Return:
		return fmt.Sprintf("return %s", n.Value)
	case *StartScope:
		return "start-scope"
	case *EndScope:
		return "end-scope"
	case *IncRef:
		return fmt.Sprintf("inc-ref %s", n.Var)
	case *DecRef:
		return fmt.Sprintf("dec-ref %s", n.Var)
	case *Bind:
		return fmt.Sprintf("bind %s = %s", n.Name, n.Src)
	default:
		return "?"
	}
}

func exprString(e Expr) string {
	switch n := e.(type) {
	case LitInt:
		return fmt.Sprintf("%d", n.Value)
	case LitUInt:
		return fmt.Sprintf("%d", n.Value)
	case LitFloat:
		return fmt.Sprintf("%g", n.Value)
	case LitBool:
		return fmt.Sprintf("%t", n.Value)
	case LitChar:
		return fmt.Sprintf("%q", n.Value)
	case LitString:
		return fmt.Sprintf("%q", n.Value)
	case VarRef:
		return n.Var.String()
	case UnaryOp:
		return fmt.Sprintf("%s%s", n.Op, n.Operand)
	case BinaryOp:
		return fmt.Sprintf("%s %s %s", n.Left, n.Op, n.Right)
	case Call:
		return fmt.Sprintf("%s(%s)", n.Name, joinVars(n.Args))
	case StructMember:
		return fmt.Sprintf("%s.%s", n.Target, n.Member)
	case ArrayHead:
		return fmt.Sprintf("head(%s)", n.Target)
	case ArrayTail:
		return fmt.Sprintf("tail(%s)", n.Target)
	case ArrayLen:
		return fmt.Sprintf("len(%s)", n.Target)
	case ArrayIndex:
		return fmt.Sprintf("%s[%s]", n.Target, n.Index)
	case SumTypeIndex:
		return fmt.Sprintf("tag(%s)", n.Target)
	case OptionalIsSome:
		return fmt.Sprintf("is-some(%s)", n.Target)
	case PointerIsNotNil:
		return fmt.Sprintf("not-nil(%s)", n.Target)
	case SumTypeCase:
		return fmt.Sprintf("case#%d", n.Index)
	case EnumCaseLit:
		return fmt.Sprintf("enum#%d", n.Index)
	case SumTypeStruct:
		return fmt.Sprintf("payload(%s, #%d)", n.Target, n.Index)
	case HeapAlloc:
		return fmt.Sprintf("heap-alloc %s", n.Typ)
	case FuncRef:
		return fmt.Sprintf("&%s", n.Name)
	case Ref:
		return fmt.Sprintf("ref %s", n.Target)
	default:
		return "?"
	}
}

func joinVars(vs []LLVar) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
