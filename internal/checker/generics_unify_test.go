package checker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/checker"
	"github.com/cobra-lang/cobra/internal/generics"
)

// Property 6: is_instantiation_of is reflexive on non-generic types
// and rejects arity/shape mismatches, exercised here through the
// checker's own call-site generic-inference path (checkCallToFunction
// relies on FillInGenerics, whose correctness IsInstantiationOf also
// certifies structurally).
func TestGenericCallInferenceUnifiesArgumentType(t *testing.T) {
	module := ast.NewModule("m")
	idFn := &ast.Function{
		Sig: ast.FunctionSignature{
			Name:       "id",
			Args:       []ast.Param{{Name: "x", Type: ast.GenericAnyType("T"), Span: span}},
			ReturnType: ast.GenericAnyType("T"),
			Span:       span,
		},
		Generics: []string{"T"},
		Body:     ast.NewNameRef(span, "x"),
	}
	module.AddFunction(idFn)

	call := ast.NewCall(span, "id", []ast.Expression{ast.NewIntLit(span, 42)})
	mainFn := &ast.Function{
		Sig:  ast.FunctionSignature{Name: "main", ReturnType: ast.IntType(ast.I64), Span: span},
		Body: call,
	}
	module.AddFunction(mainFn)

	require.NoError(t, checker.CheckModule(module))
	require.Equal(t, ast.IntType(ast.I64), call.Type())
	require.NotEqual(t, "id", call.Callee)
	require.Len(t, call.GenericArgs, 1)
	require.Equal(t, ast.IntType(ast.I64), call.GenericArgs[0])
}

func TestIsInstantiationOfRejectsArityMismatch(t *testing.T) {
	concrete := ast.FuncType([]ast.Type{ast.IntType(ast.I64)}, ast.BoolType())
	generic := ast.FuncType([]ast.Type{ast.GenericAnyType("T"), ast.GenericAnyType("U")}, ast.BoolType())
	require.False(t, generics.IsInstantiationOf(concrete, generic))
}

func TestIsInstantiationOfReflexiveOnPlainTypes(t *testing.T) {
	require.True(t, generics.IsInstantiationOf(ast.IntType(ast.I64), ast.IntType(ast.I64)))
	require.False(t, generics.IsInstantiationOf(ast.IntType(ast.I64), ast.BoolType()))
}
