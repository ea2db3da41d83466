package llir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/checker"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/llir"
)

var span = diag.Span{}

// isTerminator reports whether inst ends a basic block.
func isTerminator(inst llir.Instruction) bool {
	switch inst.(type) {
	case *llir.Branch, *llir.BranchIf, *llir.Return:
		return true
	default:
		return false
	}
}

// requireWellFormedBlocks checks property 2: every basic block ends
// in exactly one terminator, and no terminator appears mid-block.
func requireWellFormedBlocks(t *testing.T, f *llir.Function) {
	t.Helper()
	for _, ref := range f.BlockOrder {
		bb := f.Blocks[ref]
		require.NotEmpty(t, bb.Instructions, "block %s is empty", bb.Name)
		last := len(bb.Instructions) - 1
		for i, inst := range bb.Instructions {
			if i == last {
				require.True(t, isTerminator(inst), "block %s does not end in a terminator", bb.Name)
			} else {
				require.False(t, isTerminator(inst), "block %s has a mid-block terminator at instruction %d", bb.Name, i)
			}
		}
	}
}

// requireBalancedScopes checks property 3: counting StartScope/EndScope
// across every instruction in the function (across all its blocks,
// since control flow only ever moves forward through them here) nets
// to zero — the function's outermost scope closes implicitly at
// Return rather than via an explicit EndScope.
func requireBalancedScopes(t *testing.T, f *llir.Function) {
	t.Helper()
	balance := 0
	for _, ref := range f.BlockOrder {
		for _, inst := range f.Blocks[ref].Instructions {
			switch inst.(type) {
			case *llir.StartScope:
				balance++
			case *llir.EndScope:
				balance--
			}
		}
	}
	require.Zero(t, balance, "StartScope/EndScope imbalance")
}

func checkedMatchFunction(t *testing.T) *ast.Module {
	t.Helper()
	module := ast.NewModule("m")
	module.Types["E"] = &ast.TypeDeclaration{
		Name: "E",
		Kind: ast.DeclSum,
		Cases: []ast.SumCaseDecl{
			{Name: "A", Members: []ast.Param{{Name: "x", Type: ast.IntType(ast.I64), Span: span}}},
			{Name: "B"},
		},
		Span: span,
	}

	target := ast.NewNameRef(span, "e")
	aCase := ast.MatchCase{
		Pattern: ast.StructPattern(span, "A", []string{"x"}),
		Body:    ast.NewNameRef(span, "x"),
		Span:    span,
	}
	bCase := ast.MatchCase{
		Pattern: ast.StructPattern(span, "B", nil),
		Body:    ast.NewIntLit(span, 0),
		Span:    span,
	}
	body := ast.NewMatch(span, target, []ast.MatchCase{aCase, bCase})

	fn := &ast.Function{
		Sig: ast.FunctionSignature{
			Name:       "f",
			Args:       []ast.Param{{Name: "e", Type: ast.UnresolvedType("E", nil), Span: span}},
			ReturnType: ast.IntType(ast.I64),
			Span:       span,
		},
		Body: body,
	}
	module.AddFunction(fn)
	require.NoError(t, checker.CheckModule(module))
	return module
}

func TestLowerMatchProducesWellFormedBlocks(t *testing.T) {
	module := checkedMatchFunction(t)
	f := llir.FuncToLLRep(module.Functions["f"])
	requireWellFormedBlocks(t, f)
	requireBalancedScopes(t, f)
	require.Greater(t, len(f.BlockOrder), 1, "a match with two cases must branch across more than one block")
}

func TestLowerArithmeticProducesWellFormedBlocks(t *testing.T) {
	module := ast.NewModule("m")
	body := ast.NewBinaryOp(span, ast.OpAdd, ast.NewNameRef(span, "x"), ast.NewIntLit(span, 1))
	fn := &ast.Function{
		Sig: ast.FunctionSignature{
			Name:       "add1",
			Args:       []ast.Param{{Name: "x", Type: ast.IntType(ast.I64), Span: span}},
			ReturnType: ast.IntType(ast.I64),
			Span:       span,
		},
		Body: body,
	}
	module.AddFunction(fn)
	require.NoError(t, checker.CheckModule(module))

	f := llir.FuncToLLRep(module.Functions["add1"])
	requireWellFormedBlocks(t, f)
	requireBalancedScopes(t, f)
	require.Len(t, f.BlockOrder, 1)
}

// TestLowerMemberAccessReIncRefsHeapTypedField guards property 3 for a
// read that aliases an existing heap cell rather than allocating a
// fresh one: extracting a heap-typed struct field must IncRef the
// alias (via a Ref expr) before handing it a DecRef target, the same
// way lowerNameRef treats a heap-typed variable read. Without the Ref,
// the field's cell would be DecRef'd twice (once for the field read,
// once when the parent struct itself is freed) against a single
// IncRef.
func TestLowerMemberAccessReIncRefsHeapTypedField(t *testing.T) {
	module := ast.NewModule("m")
	module.Types["Box"] = &ast.TypeDeclaration{
		Name: "Box",
		Kind: ast.DeclStruct,
		Members: []ast.Param{
			{Name: "label", Type: ast.StringType(), Span: span},
		},
		Span: span,
	}

	body := ast.NewMemberAccess(span, ast.NewNameRef(span, "b"), "label")
	fn := &ast.Function{
		Sig: ast.FunctionSignature{
			Name:       "label",
			Args:       []ast.Param{{Name: "b", Type: ast.UnresolvedType("Box", nil), Span: span}},
			ReturnType: ast.StringType(),
			Span:       span,
		},
		Body: body,
	}
	module.AddFunction(fn)
	require.NoError(t, checker.CheckModule(module))

	f := llir.FuncToLLRep(module.Functions["label"])
	requireWellFormedBlocks(t, f)
	requireBalancedScopes(t, f)

	var sawStructMemberRaw, sawRefOfThatRaw bool
	var rawName string
	for _, ref := range f.BlockOrder {
		for _, inst := range f.Blocks[ref].Instructions {
			set, ok := inst.(*llir.Set)
			if !ok {
				continue
			}
			switch e := set.Expr.(type) {
			case llir.StructMember:
				sawStructMemberRaw = true
				rawName = set.Dst.Name
			case llir.Ref:
				if e.Target.Name == rawName {
					sawRefOfThatRaw = true
				}
			}
		}
	}
	require.True(t, sawStructMemberRaw, "expected a StructMember read of the field")
	require.True(t, sawRefOfThatRaw, "expected the StructMember read to be wrapped in Ref before use, to IncRef the aliased cell")
}

func TestCompileModuleSkipsGenericFunctionsButKeepsInstances(t *testing.T) {
	module := ast.NewModule("m")
	idBody := ast.NewNameRef(span, "x")
	idFn := &ast.Function{
		Sig: ast.FunctionSignature{
			Name:       "id",
			Args:       []ast.Param{{Name: "x", Type: ast.GenericAnyType("T"), Span: span}},
			ReturnType: ast.GenericAnyType("T"),
			Span:       span,
		},
		Generics: []string{"T"},
		Body:     idBody,
	}
	module.AddFunction(idFn)

	mainBody := ast.NewCall(span, "id", []ast.Expression{ast.NewIntLit(span, 42)})
	mainFn := &ast.Function{
		Sig: ast.FunctionSignature{Name: "main", ReturnType: ast.IntType(ast.I64), Span: span},
		Body: mainBody,
	}
	module.AddFunction(mainFn)

	require.NoError(t, checker.CheckModule(module))

	llmod := llir.CompileModule(module)
	_, genericStillPresent := llmod.Functions["id"]
	require.False(t, genericStillPresent)
	_, mainPresent := llmod.Functions["main"]
	require.True(t, mainPresent)
	require.Len(t, llmod.Functions, 2) // main + the one monomorphized id instance
}
