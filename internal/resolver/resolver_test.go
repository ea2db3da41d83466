package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/resolver"
)

var span = diag.Span{}

func pointModule() *ast.Module {
	module := ast.NewModule("m")
	module.Types["Point"] = &ast.TypeDeclaration{
		Name: "Point",
		Kind: ast.DeclStruct,
		Members: []ast.Param{
			{Name: "x", Type: ast.IntType(ast.I64), Span: span},
			{Name: "y", Type: ast.IntType(ast.I64), Span: span},
		},
		Span: span,
	}
	module.Types["Origin"] = &ast.TypeDeclaration{
		Name:     "Origin",
		Kind:     ast.DeclAlias,
		Original: ast.UnresolvedType("Point", nil),
		Span:     span,
	}
	fn := &ast.Function{
		Sig: ast.FunctionSignature{
			Name:       "f",
			Args:       []ast.Param{{Name: "p", Type: ast.UnresolvedType("Origin", nil), Span: span}},
			ReturnType: ast.UnresolvedType("Point", nil),
			Span:       span,
		},
		Body: ast.NewNameRef(span, "p"),
	}
	module.AddFunction(fn)
	return module
}

func TestResolveTypesResolvesAliasAndFunctionSignature(t *testing.T) {
	module := pointModule()
	require.NoError(t, resolver.ResolveTypes(module))

	require.True(t, module.Types["Point"].Resolved)
	require.Equal(t, ast.TStruct, module.Types["Point"].Typ.Kind)

	require.True(t, module.Types["Origin"].Resolved)
	require.Equal(t, ast.TStruct, module.Types["Origin"].Typ.Kind)

	fn := module.Functions["f"]
	require.Equal(t, ast.TStruct, fn.Sig.Args[0].Type.Kind)
	require.Equal(t, ast.TStruct, fn.Sig.ReturnType.Kind)
}

// Running the resolver twice on an already-resolved module is a no-op.
func TestResolveTypesIdempotent(t *testing.T) {
	module := pointModule()
	require.NoError(t, resolver.ResolveTypes(module))
	first := module.Types["Point"].Typ

	require.NoError(t, resolver.ResolveTypes(module))
	require.Equal(t, first, module.Types["Point"].Typ)
	require.True(t, module.Types["Point"].Resolved)
}

func TestResolveTypesReportsUnknownName(t *testing.T) {
	module := ast.NewModule("m")
	fn := &ast.Function{
		Sig: ast.FunctionSignature{
			Name:       "f",
			Args:       []ast.Param{{Name: "x", Type: ast.UnresolvedType("Nope", nil), Span: span}},
			ReturnType: ast.VoidType(),
			Span:       span,
		},
		Body: ast.NewNilLit(span),
	}
	module.AddFunction(fn)

	err := resolver.ResolveTypes(module)
	require.Error(t, err)
}
