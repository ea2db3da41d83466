package llir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/llir"
)

func decRefTargets(f *llir.Function) []llir.LLVar {
	var out []llir.LLVar
	for _, ref := range f.BlockOrder {
		for _, inst := range f.Blocks[ref].Instructions {
			if d, ok := inst.(*llir.DecRef); ok {
				out = append(out, d.Var)
			}
		}
	}
	return out
}

// A var registered for cleanup in a nested scope gets its DecRef
// emitted when that scope closes, before the function returns.
func TestPushPopScopeEmitsDecRefOnClose(t *testing.T) {
	f := llir.NewFunction(ast.FunctionSignature{Name: "f", ReturnType: ast.VoidType()})

	f.PushScope()
	str := f.NewVar(ast.StringType())
	f.Add(llir.NewSet(str, llir.LitString{Value: "x"}))
	f.AddDecRefTarget(str)
	f.PopScope()

	voidVar := llir.NamedVar("$void", ast.VoidType())
	f.Add(llir.NewReturn(voidVar))

	targets := decRefTargets(f)
	require.Len(t, targets, 1)
	require.Equal(t, str.Name, targets[0].Name)
}

// RemoveDecRefTarget un-registers a var before its scope closes
// (ownership transferred out, e.g. a returned value), so no DecRef
// for it is emitted.
func TestRemoveDecRefTargetSuppressesCleanup(t *testing.T) {
	f := llir.NewFunction(ast.FunctionSignature{Name: "f", ReturnType: ast.StringType()})

	str := f.NewVar(ast.StringType())
	f.Add(llir.NewSet(str, llir.LitString{Value: "x"}))
	f.AddDecRefTarget(str)
	require.True(t, f.RemoveDecRefTarget(str))

	f.Add(llir.NewReturn(str))

	require.Empty(t, decRefTargets(f))
}

// Cleanup order is reverse of registration, matching the original
// Scope::cleanup.
func TestScopeCleanupOrderIsReversed(t *testing.T) {
	f := llir.NewFunction(ast.FunctionSignature{Name: "f", ReturnType: ast.VoidType()})

	f.PushScope()
	a := f.NewVar(ast.StringType())
	f.Add(llir.NewSet(a, llir.LitString{Value: "a"}))
	f.AddDecRefTarget(a)
	b := f.NewVar(ast.StringType())
	f.Add(llir.NewSet(b, llir.LitString{Value: "b"}))
	f.AddDecRefTarget(b)
	f.PopScope()

	f.Add(llir.NewReturn(llir.NamedVar("$void", ast.VoidType())))

	targets := decRefTargets(f)
	require.Len(t, targets, 2)
	require.Equal(t, b.Name, targets[0].Name)
	require.Equal(t, a.Name, targets[1].Name)
}
