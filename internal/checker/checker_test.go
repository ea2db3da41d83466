package checker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/checker"
	"github.com/cobra-lang/cobra/internal/diag"
)

var span = diag.Span{}

// addOneModule builds a tiny module: a non-generic function
// add1(x: int) -> int = x + 1.
func addOneModule() *ast.Module {
	module := ast.NewModule("m")
	one := ast.NewIntLit(span, 1)
	body := ast.NewBinaryOp(span, ast.OpAdd, ast.NewNameRef(span, "x"), one)
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
	return module
}

// collectTypes walks the small set of expression shapes this test
// package's fixtures use and returns every node's resolved Type, to
// check property 1 (no Unknown/Unresolved/Generic survives a
// successful check).
func collectTypes(e ast.Expression, out *[]ast.Type) {
	if e == nil {
		return
	}
	*out = append(*out, e.Type())
	switch n := e.(type) {
	case *ast.UnaryOp:
		collectTypes(n.Operand, out)
	case *ast.BinaryOp:
		collectTypes(n.Left, out)
		collectTypes(n.Right, out)
	case *ast.Call:
		for _, a := range n.Args {
			collectTypes(a, out)
		}
	case *ast.Block:
		for _, sub := range n.Expressions {
			collectTypes(sub, out)
		}
	case *ast.Let:
		for _, b := range n.Bindings {
			collectTypes(b.Init, out)
		}
		collectTypes(n.Body, out)
	case *ast.If:
		collectTypes(n.Cond, out)
		collectTypes(n.Then, out)
		collectTypes(n.Else, out)
	case *ast.Match:
		collectTypes(n.Target, out)
		for _, mc := range n.Cases {
			collectTypes(mc.Guard, out)
			collectTypes(mc.Body, out)
		}
	case *ast.StructInitializer:
		for _, m := range n.Members {
			collectTypes(m.Value, out)
		}
	case *ast.MemberAccess:
		collectTypes(n.Target, out)
	case *ast.Index:
		collectTypes(n.Target, out)
		collectTypes(n.IndexExpr, out)
	}
}

func requireFullyResolved(t *testing.T, types []ast.Type) {
	t.Helper()
	for _, typ := range types {
		require.NotEqual(t, ast.TUnknown, typ.Kind, "left Unknown: %s", typ)
		require.NotEqual(t, ast.TUnresolved, typ.Kind, "left Unresolved: %s", typ)
		require.False(t, typ.IsGeneric(), "left Generic: %s", typ)
	}
}

func TestCheckModuleResolvesEveryType(t *testing.T) {
	module := addOneModule()
	require.NoError(t, checker.CheckModule(module))

	var types []ast.Type
	collectTypes(module.Functions["add1"].Body, &types)
	requireFullyResolved(t, types)
	require.Equal(t, ast.IntType(ast.I64), module.Functions["add1"].Body.Type())
}

// Type-checking an already-typed module is a no-op on types and
// destinations: CheckModule must tolerate being run twice (the second
// run sees every function already marked TypeChecked and skips it).
func TestCheckModuleIdempotent(t *testing.T) {
	module := addOneModule()
	require.NoError(t, checker.CheckModule(module))
	firstType := module.Functions["add1"].Body.Type()

	require.NoError(t, checker.CheckModule(module))
	require.Equal(t, firstType, module.Functions["add1"].Body.Type())
}

func TestCheckBinaryOpRejectsMismatchedOperands(t *testing.T) {
	module := ast.NewModule("m")
	body := ast.NewBinaryOp(span, ast.OpAdd, ast.NewNameRef(span, "x"), ast.NewBoolLit(span, true))
	fn := &ast.Function{
		Sig: ast.FunctionSignature{
			Name:       "f",
			Args:       []ast.Param{{Name: "x", Type: ast.IntType(ast.I64), Span: span}},
			ReturnType: ast.IntType(ast.I64),
			Span:       span,
		},
		Body: body,
	}
	module.AddFunction(fn)

	err := checker.CheckModule(module)
	require.Error(t, err)
	derr, ok := err.(*diag.Error)
	require.True(t, ok)
	require.Equal(t, diag.Type, derr.Kind)
}

// indexModule builds first(xs: []int, i: uint) -> int = xs[i].
func indexModule() *ast.Module {
	module := ast.NewModule("m")
	body := ast.NewIndex(span, ast.NewNameRef(span, "xs"), ast.NewNameRef(span, "i"))
	fn := &ast.Function{
		Sig: ast.FunctionSignature{
			Name: "first",
			Args: []ast.Param{
				{Name: "xs", Type: ast.SliceType(ast.IntType(ast.I64)), Span: span},
				{Name: "i", Type: ast.UIntType(ast.I64), Span: span},
			},
			ReturnType: ast.IntType(ast.I64),
			Span:       span,
		},
		Body: body,
	}
	module.AddFunction(fn)
	return module
}

func TestCheckIndexResolvesToElementType(t *testing.T) {
	module := indexModule()
	require.NoError(t, checker.CheckModule(module))

	var types []ast.Type
	collectTypes(module.Functions["first"].Body, &types)
	requireFullyResolved(t, types)
	require.Equal(t, ast.IntType(ast.I64), module.Functions["first"].Body.Type())
}

func TestCheckIndexRejectsNonSequenceTarget(t *testing.T) {
	module := ast.NewModule("m")
	body := ast.NewIndex(span, ast.NewNameRef(span, "x"), ast.NewIntLit(span, 0))
	fn := &ast.Function{
		Sig: ast.FunctionSignature{
			Name:       "f",
			Args:       []ast.Param{{Name: "x", Type: ast.IntType(ast.I64), Span: span}},
			ReturnType: ast.IntType(ast.I64),
			Span:       span,
		},
		Body: body,
	}
	module.AddFunction(fn)

	err := checker.CheckModule(module)
	require.Error(t, err)
	derr, ok := err.(*diag.Error)
	require.True(t, ok)
	require.Equal(t, diag.Type, derr.Kind)
}

func TestCheckIndexRejectsNonIntegerIndex(t *testing.T) {
	module := ast.NewModule("m")
	body := ast.NewIndex(span, ast.NewNameRef(span, "xs"), ast.NewBoolLit(span, true))
	fn := &ast.Function{
		Sig: ast.FunctionSignature{
			Name:       "f",
			Args:       []ast.Param{{Name: "xs", Type: ast.SliceType(ast.IntType(ast.I64)), Span: span}},
			ReturnType: ast.IntType(ast.I64),
			Span:       span,
		},
		Body: body,
	}
	module.AddFunction(fn)

	err := checker.CheckModule(module)
	require.Error(t, err)
	derr, ok := err.(*diag.Error)
	require.True(t, ok)
	require.Equal(t, diag.Type, derr.Kind)
}
