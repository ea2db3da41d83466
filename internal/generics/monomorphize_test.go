package generics_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/generics"
)

func identityFunction() *ast.Function {
	span := diag.Span{}
	sig := ast.FunctionSignature{
		Name:       "id",
		Args:       []ast.Param{{Name: "x", Type: ast.GenericAnyType("T"), Span: span}},
		ReturnType: ast.GenericAnyType("T"),
		Span:       span,
	}
	body := ast.NewNameRef(span, "x")
	body.SetType(ast.GenericAnyType("T"))
	return &ast.Function{Sig: sig, Generics: []string{"T"}, Body: body}
}

func TestInstantiateProducesSubstitutedSignature(t *testing.T) {
	module := ast.NewModule("m")
	fn := identityFunction()
	module.AddFunction(fn)

	mono := generics.NewMonomorphizer(module)
	subst := generics.Subst{"T": ast.IntType(ast.I64)}

	instance, created := mono.Instantiate(fn, subst)
	require.True(t, created)
	require.Equal(t, ast.IntType(ast.I64), instance.Sig.Args[0].Type)
	require.Equal(t, ast.IntType(ast.I64), instance.Sig.ReturnType)
	require.Empty(t, instance.Generics)
	require.NotEqual(t, "id", instance.Sig.Name)

	registered, ok := module.Functions[instance.Sig.Name]
	require.True(t, ok)
	require.Same(t, instance, registered)
}

// Re-requesting the same (function, substitution) pair must return
// the exact same instance rather than synthesizing a duplicate
// (property 4: instantiation interning).
func TestInstantiateInterns(t *testing.T) {
	module := ast.NewModule("m")
	fn := identityFunction()
	module.AddFunction(fn)

	mono := generics.NewMonomorphizer(module)
	subst := generics.Subst{"T": ast.IntType(ast.I64)}

	first, created1 := mono.Instantiate(fn, subst)
	second, created2 := mono.Instantiate(fn, subst)

	require.True(t, created1)
	require.False(t, created2)
	require.Same(t, first, second)
	require.Len(t, module.Functions, 2) // id (generic) + one instance
}

// A distinct substitution must produce a distinct instance.
func TestInstantiateDistinctSubstitutionsDiffer(t *testing.T) {
	module := ast.NewModule("m")
	fn := identityFunction()
	module.AddFunction(fn)

	mono := generics.NewMonomorphizer(module)
	intInstance, _ := mono.Instantiate(fn, generics.Subst{"T": ast.IntType(ast.I64)})
	boolInstance, _ := mono.Instantiate(fn, generics.Subst{"T": ast.BoolType()})

	require.NotEqual(t, intInstance.Sig.Name, boolInstance.Sig.Name)
}

func TestIsInstantiationOfReflexiveOnConcreteTypes(t *testing.T) {
	concrete := ast.ArrayType(ast.IntType(ast.I64), 3)
	require.True(t, generics.IsInstantiationOf(concrete, concrete))
}

func TestIsInstantiationOfRejectsShapeMismatch(t *testing.T) {
	arr := ast.ArrayType(ast.IntType(ast.I64), 3)
	slice := ast.SliceType(ast.GenericAnyType("T"))
	require.False(t, generics.IsInstantiationOf(arr, slice))
}

func TestIsInstantiationOfAcceptsGenericMatch(t *testing.T) {
	concrete := ast.SliceType(ast.IntType(ast.I64))
	generic := ast.SliceType(ast.GenericAnyType("T"))
	require.True(t, generics.IsInstantiationOf(concrete, generic))
}
