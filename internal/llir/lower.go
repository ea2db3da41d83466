package llir

import (
	"strconv"

	"github.com/cobra-lang/cobra/internal/ast"
)

func stackAlloc(f *Function, typ ast.Type) LLVar {
	v := f.NewVar(typ)
	f.Add(NewAlloc(v))
	return v
}

// getDst returns the var lowering should write its result into:
// the function's currently requested destination if its type matches,
// otherwise a freshly stack-allocated temporary. Mirrors the
// original's get_dst destination-passing-style helper.
func getDst(f *Function, typ ast.Type) LLVar {
	if typ.Kind == ast.TUnknown {
		panic("llir: lowering an expression whose type was never resolved")
	}
	if d := f.Destination(); d != nil && d.Typ.Equals(typ) {
		return *d
	}
	return stackAlloc(f, typ)
}

// lowerSub lowers e with no destination hint, always producing a
// fresh temporary, the way call arguments and binary-operator operands
// are lowered (push_destination(None) in the original).
func lowerSub(f *Function, e ast.Expression) LLVar {
	f.PushDestination(nil)
	v := LowerExpr(f, e)
	f.PopDestination()
	return v
}

// LowerExpr lowers a checked expression into the function under
// construction, returning the LLVar holding its value.
func LowerExpr(f *Function, e ast.Expression) LLVar {
	switch n := e.(type) {
	case *ast.IntLit:
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, LitInt{Value: n.Value}))
		return dst
	case *ast.UIntLit:
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, LitUInt{Value: n.Value}))
		return dst
	case *ast.FloatLit:
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, LitFloat{Value: n.Value}))
		return dst
	case *ast.BoolLit:
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, LitBool{Value: n.Value}))
		return dst
	case *ast.CharLit:
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, LitChar{Value: n.Value}))
		return dst
	case *ast.StringLit:
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, LitString{Value: n.Value}))
		f.AddDecRefTarget(dst)
		return dst
	case *ast.NilLit:
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, HeapAlloc{Typ: n.Typ}))
		return dst
	case *ast.ArrayLit:
		return lowerArrayLit(f, n)
	case *ast.NameRef:
		return lowerNameRef(f, n)
	case *ast.UnaryOp:
		return lowerUnaryOp(f, n)
	case *ast.BinaryOp:
		return lowerBinaryOp(f, n)
	case *ast.Call:
		return lowerCall(f, n)
	case *ast.Block:
		return lowerBlock(f, n)
	case *ast.Let:
		return lowerLet(f, n)
	case *ast.If:
		return LowerExpr(f, n.ToMatch())
	case *ast.Match:
		return lowerMatch(f, n)
	case *ast.Lambda:
		return lowerLambda(f, n)
	case *ast.StructInitializer:
		return lowerStructInitializer(f, n)
	case *ast.MemberAccess:
		return lowerMemberAccess(f, n)
	case *ast.Index:
		return lowerIndex(f, n)
	case *ast.Conversion:
		return lowerConversion(f, n)
	default:
		panic("llir: unhandled expression kind in lowering")
	}
}

func lowerArrayLit(f *Function, n *ast.ArrayLit) LLVar {
	dst := getDst(f, n.Typ)
	f.Add(NewSet(dst, HeapAlloc{Typ: n.Typ}))
	f.AddDecRefTarget(dst)
	for i, el := range n.Elements {
		v := lowerSub(f, el)
		f.Add(NewStore(dst, indexMember(i), v))
	}
	return dst
}

func indexMember(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// lowerNameRef reads a bound variable. Heap-typed reads into a
// destination the caller actually owns get an IncRef: the variable's
// existing cell is being aliased into a new binding that will be
// DecRef'd independently later.
func lowerNameRef(f *Function, n *ast.NameRef) LLVar {
	if n.EnumCase {
		idx, _ := n.Typ.IndexOf(n.Name)
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, EnumCaseLit{Index: idx}))
		return dst
	}
	src, ok := f.GetNamedVar(n.Name)
	if !ok {
		src = NamedVar(n.Name, n.Typ)
	}
	if !n.Typ.IsHeapAllocated() {
		return src
	}
	dst := getDst(f, n.Typ)
	if dst.Name == src.Name {
		return dst
	}
	f.Add(NewSet(dst, Ref{Target: src}))
	f.AddDecRefTarget(dst)
	return dst
}

func lowerUnaryOp(f *Function, n *ast.UnaryOp) LLVar {
	operand := lowerSub(f, n.Operand)
	dst := getDst(f, n.Typ)
	f.Add(NewSet(dst, UnaryOp{Op: n.Op, Operand: operand}))
	return dst
}

func lowerBinaryOp(f *Function, n *ast.BinaryOp) LLVar {
	left := lowerSub(f, n.Left)
	right := lowerSub(f, n.Right)
	dst := getDst(f, n.Typ)
	f.Add(NewSet(dst, BinaryOp{Op: n.Op, Left: left, Right: right}))
	if n.Typ.IsHeapAllocated() {
		f.AddDecRefTarget(dst)
	}
	return dst
}

func lowerCall(f *Function, n *ast.Call) LLVar {
	args := make([]LLVar, len(n.Args))
	for i, a := range n.Args {
		args[i] = lowerSub(f, a)
	}
	if n.Typ.IsVoid() {
		f.Add(NewCallStmt(n.Callee, args))
		return LLVar{Name: "$void", Typ: ast.VoidType()}
	}
	dst := getDst(f, n.Typ)
	f.Add(NewSet(dst, Call{Name: n.Callee, Args: args}))
	if n.Typ.IsHeapAllocated() {
		f.AddDecRefTarget(dst)
	}
	return dst
}

// lowerBlock lowers every expression in sequence; only the final
// expression gets the block's own requested destination, matching the
// original's "last expr gets the outer destination" rule.
func lowerBlock(f *Function, n *ast.Block) LLVar {
	if len(n.Expressions) == 0 {
		return LLVar{Name: "$void", Typ: ast.VoidType()}
	}
	for i, sub := range n.Expressions[:len(n.Expressions)-1] {
		_ = i
		lowerSub(f, sub)
	}
	return LowerExpr(f, n.Expressions[len(n.Expressions)-1])
}

func lowerLet(f *Function, n *ast.Let) LLVar {
	f.PushScope()
	for _, b := range n.Bindings {
		v := lowerSub(f, b.Init)
		bound := NamedVar(b.Name, b.Init.Type())
		f.Add(NewBind(b.Name, v))
		f.addNamedVar(bound)
		if v.Typ.IsHeapAllocated() {
			f.AddDecRefTarget(bound)
		}
	}
	result := LowerExpr(f, n.Body)
	f.PopScope()
	return result
}

func lowerMemberAccess(f *Function, n *ast.MemberAccess) LLVar {
	target := lowerSub(f, n.Target)
	switch n.Member {
	case "len":
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, ArrayLen{Target: target}))
		return dst
	default:
		if !n.Typ.IsHeapAllocated() {
			dst := getDst(f, n.Typ)
			f.Add(NewSet(dst, StructMember{Target: target, Member: n.Member}))
			return dst
		}
		// The read aliases the parent struct's own cell (load() returns
		// the same *Cell, no IncRef), so the alias needs its own Ref
		// before it can carry a DecRef target, exactly as lowerNameRef
		// does for a heap-typed name read.
		raw := f.NewVar(n.Typ)
		f.Add(NewSet(raw, StructMember{Target: target, Member: n.Member}))
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, Ref{Target: raw}))
		f.AddDecRefTarget(dst)
		return dst
	}
}

// lowerIndex reads target[index]. Like lowerMemberAccess's struct-field
// case, a heap-typed element aliases a cell already owned by the
// target sequence, so it needs its own Ref (IncRef) before it can
// carry a DecRef target.
func lowerIndex(f *Function, n *ast.Index) LLVar {
	target := lowerSub(f, n.Target)
	index := lowerSub(f, n.IndexExpr)
	if !n.Typ.IsHeapAllocated() {
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, ArrayIndex{Target: target, Index: index}))
		return dst
	}
	raw := f.NewVar(n.Typ)
	f.Add(NewSet(raw, ArrayIndex{Target: target, Index: index}))
	dst := getDst(f, n.Typ)
	f.Add(NewSet(dst, Ref{Target: raw}))
	f.AddDecRefTarget(dst)
	return dst
}

func lowerConversion(f *Function, n *ast.Conversion) LLVar {
	switch n.Kind {
	case ast.ConvArrayToSlice, ast.ConvPointerCast:
		inner := lowerSub(f, n.Inner)
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, Ref{Target: inner}))
		return dst
	case ast.ConvToOptional:
		inner := lowerSub(f, n.Inner)
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, HeapAlloc{Typ: n.Typ}))
		f.AddDecRefTarget(dst)
		f.Add(NewStore(dst, "$some", inner))
		return dst
	case ast.ConvOptionalTruthiness:
		inner := lowerSub(f, n.Inner)
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, OptionalIsSome{Target: inner}))
		return dst
	case ast.ConvPointerTruthiness:
		inner := lowerSub(f, n.Inner)
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, PointerIsNotNil{Target: inner}))
		return dst
	case ast.ConvNilToOptional:
		dst := getDst(f, n.Typ)
		f.Add(NewSet(dst, HeapAlloc{Typ: n.Typ}))
		return dst
	default:
		return lowerSub(f, n.Inner)
	}
}

// lowerLambda lowers a lambda's body as a nested Function and emits a
// Set binding the lambda's name to a reference to that function,
// mirroring the original's handling of nested lambdas (stored in
// func.lambdas, referenced via Set(dst, Func(name))).
func lowerLambda(f *Function, n *ast.Lambda) LLVar {
	nested := NewFunction(n.Sig)
	f.PushDestination(nil)
	result := LowerExpr(nested, n.Body)
	f.PopDestination()
	nested.Add(NewReturn(result))
	f.Lambdas = append(f.Lambdas, nested)

	dst := getDst(f, n.Typ)
	f.Add(NewSet(dst, FuncRef{Name: n.Sig.Name}))
	return dst
}

func lowerStructInitializer(f *Function, n *ast.StructInitializer) LLVar {
	dst := getDst(f, n.Typ)
	f.Add(NewSet(dst, HeapAlloc{Typ: n.Typ}))
	f.AddDecRefTarget(dst)

	if n.Typ.Kind == ast.TSum {
		if idx, ok := n.Typ.IndexOf(n.Name); ok {
			f.Add(NewStore(dst, "$tag", tagVar(f, idx)))
		}
	}
	for _, m := range n.Members {
		v := lowerSub(f, m.Value)
		f.Add(NewStore(dst, m.Name, v))
	}
	return dst
}

func tagVar(f *Function, idx int) LLVar {
	v := f.NewVar(ast.IntType(ast.I64))
	f.Add(NewSet(v, SumTypeCase{Index: idx}))
	return v
}

// FuncToLLRep lowers a single non-generic function's body, removing
// the return value from its own DecRef-target list since ownership
// transfers to the caller, then emitting the function's Return.
func FuncToLLRep(fn *ast.Function) *Function {
	f := NewFunction(fn.Sig)
	result := LowerExpr(f, fn.Body)
	f.RemoveDecRefTarget(result)
	f.Add(NewReturn(result))
	return f
}

// CompileModule lowers every non-generic, checked function in module
// into an llir.Module. External functions get an empty Function with
// no instructions, so the interpreter reports an error if one is
// called. Every lambda
// nested anywhere in a lowered function's body is flattened into the
// module's top-level function table too, keyed by its mangled name,
// so a FuncRef produced by lowerLambda resolves the same way a
// top-level call does.
func CompileModule(module *ast.Module) *Module {
	out := NewModule()
	for name, fn := range module.Functions {
		if len(fn.Generics) > 0 {
			continue
		}
		lowered := FuncToLLRep(fn)
		out.Functions[name] = lowered
		flattenLambdas(out, lowered)
	}
	for name, ext := range module.Externals {
		out.Functions[name] = NewFunction(ext.Sig)
	}
	return out
}

func flattenLambdas(out *Module, f *Function) {
	for _, lambda := range f.Lambdas {
		out.Functions[lambda.Sig.Name] = lambda
		flattenLambdas(out, lambda)
	}
}
