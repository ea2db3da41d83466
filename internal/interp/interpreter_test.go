package interp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/checker"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/interp"
	"github.com/cobra-lang/cobra/internal/llir"
)

var span = diag.Span{}

func runFunction(t *testing.T, module *ast.Module, name string, args []interp.Value) interp.Value {
	t.Helper()
	require.NoError(t, checker.CheckModule(module))
	llmod := llir.CompileModule(module)
	it := interp.New(llmod)
	result, err := it.Run(name, args)
	require.NoError(t, err)
	return result
}

// Property 5: match desugaring of `if c then a else b` is
// semantically equivalent to the direct If, for both branches of the
// condition.
func TestIfAndDesugaredMatchAgree(t *testing.T) {
	makeIfModule := func(cond bool) *ast.Module {
		module := ast.NewModule("m")
		body := ast.NewIf(span, ast.NewBoolLit(span, cond), ast.NewIntLit(span, 1), ast.NewIntLit(span, 2))
		fn := &ast.Function{
			Sig:  ast.FunctionSignature{Name: "f", ReturnType: ast.IntType(ast.I64), Span: span},
			Body: body,
		}
		module.AddFunction(fn)
		return module
	}
	makeMatchModule := func(cond bool) *ast.Module {
		module := ast.NewModule("m")
		trueCase := ast.MatchCase{
			Pattern: ast.BoolPattern(span, true),
			Body:    ast.NewIntLit(span, 1),
			Span:    span,
		}
		falseCase := ast.MatchCase{
			Pattern: ast.AnyPattern(span),
			Body:    ast.NewIntLit(span, 2),
			Span:    span,
		}
		body := ast.NewMatch(span, ast.NewBoolLit(span, cond), []ast.MatchCase{trueCase, falseCase})
		fn := &ast.Function{
			Sig:  ast.FunctionSignature{Name: "f", ReturnType: ast.IntType(ast.I64), Span: span},
			Body: body,
		}
		module.AddFunction(fn)
		return module
	}

	for _, cond := range []bool{true, false} {
		ifResult := runFunction(t, makeIfModule(cond), "f", nil)
		matchResult := runFunction(t, makeMatchModule(cond), "f", nil)
		require.Equal(t, matchResult.Int, ifResult.Int, "cond=%v", cond)
		require.Equal(t, interp.VInt, ifResult.Kind)
	}
}

// The If form itself lowers through ast.If.ToMatch(), so this checks
// the lowering path end to end rather than just the two hand-written
// equivalents above.
func TestIfLowersAndRunsCorrectly(t *testing.T) {
	module := ast.NewModule("m")
	body := ast.NewIf(span,
		ast.NewBinaryOp(span, ast.OpLT, ast.NewNameRef(span, "x"), ast.NewIntLit(span, 10)),
		ast.NewStringLit(span, "small"),
		ast.NewStringLit(span, "big"),
	)
	fn := &ast.Function{
		Sig: ast.FunctionSignature{
			Name:       "classify",
			Args:       []ast.Param{{Name: "x", Type: ast.IntType(ast.I64), Span: span}},
			ReturnType: ast.StringType(),
			Span:       span,
		},
		Body: body,
	}
	module.AddFunction(fn)

	small := runFunction(t, module, "classify", []interp.Value{{Kind: interp.VInt, Int: 3}})
	require.Equal(t, "small", small.Cell.Str)
}

// TestMemberAccessOfHeapFieldBalancesRefcount runs the lowering from
// llir.TestLowerMemberAccessReIncRefsHeapTypedField end to end and
// checks the resulting Cell's RefCount directly: reading a struct's
// heap-typed field must hand the caller its own owning reference,
// distinct from the one the struct itself still holds, so that a
// DecRef on the returned value and a later DecRef (free) of the struct
// each account for exactly one IncRef and neither under- nor
// over-frees the shared cell.
func TestMemberAccessOfHeapFieldBalancesRefcount(t *testing.T) {
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

	label := &interp.Cell{Kind: interp.CString, RefCount: 1, Str: "hi"}
	labelVal := interp.Value{Kind: interp.VHeap, Cell: label}
	box := interp.Value{Kind: interp.VHeap, Cell: &interp.Cell{
		Kind:     interp.CStruct,
		RefCount: 1,
		Members:  map[string]interp.Value{"label": labelVal},
	}}

	result := runFunction(t, module, "label", []interp.Value{box})
	require.Same(t, label, result.Cell, "member access must return the same cell the struct holds, not a copy")
	require.Equal(t, 2, label.RefCount, "the field read must IncRef its own alias on top of the struct's existing ownership")

	interp.DecRef(result)
	require.Equal(t, 1, label.RefCount)
	interp.DecRef(box)
	require.Equal(t, 0, label.RefCount, "both the returned alias and the struct's own free must each decrement exactly once")
}
