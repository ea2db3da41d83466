package interp_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/checker"
	"github.com/cobra-lang/cobra/internal/interp"
	"github.com/cobra-lang/cobra/internal/llir"
	"github.com/cobra-lang/cobra/internal/loader"
)

func fixture(t *testing.T, name string) *ast.Module {
	t.Helper()
	archive, err := txtar.ParseFile("testdata/scenarios.txtar")
	require.NoError(t, err)
	for _, f := range archive.Files {
		if f.Name == name {
			mod, err := loader.LoadBytes(name, f.Data)
			require.NoError(t, err)
			return mod
		}
	}
	t.Fatalf("fixture %q not found in testdata/scenarios.txtar", name)
	return nil
}

func runMain(t *testing.T, mod *ast.Module) interp.Value {
	t.Helper()
	require.NoError(t, checker.CheckModule(mod))
	llmod := llir.CompileModule(mod)
	it := interp.New(llmod)
	result, err := it.Run("main", nil)
	require.NoError(t, err)
	return result
}

// Scenario 1: a generic identity function called with an Int argument
// monomorphizes and evaluates to that same Int.
func TestE2EGenericIdentity(t *testing.T) {
	mod := fixture(t, "generic_identity.yaml")
	require.NoError(t, checker.CheckModule(mod))

	var instances int
	for name := range mod.Functions {
		if name != "id" && name != "main" {
			instances++
		}
	}
	require.Equal(t, 1, instances, "call to id(42) must monomorphize exactly one instance")

	llmod := llir.CompileModule(mod)
	_, genericStillPresent := llmod.Functions["id"]
	require.False(t, genericStillPresent)

	it := interp.New(llmod)
	result, err := it.Run("main", nil)
	require.NoError(t, err)
	require.Equal(t, interp.VInt, result.Kind)
	require.EqualValues(t, 42, result.Int)
}

// Scenario 2: matching a sum type's payload-carrying case extracts
// its member.
func TestE2ESumTypeMatch(t *testing.T) {
	mod := fixture(t, "sum_match.yaml")
	result := runMain(t, mod)
	require.Equal(t, interp.VInt, result.Kind)
	require.EqualValues(t, 7, result.Int)
}

// Scenario 3: recursive head::tail destructuring over an array
// literal (converted to a slice at the call boundary) sums its
// elements.
func TestE2EArrayHeadTailRecursion(t *testing.T) {
	mod := fixture(t, "array_head_tail.yaml")
	result := runMain(t, mod)
	require.Equal(t, interp.VInt, result.Kind)
	require.EqualValues(t, 6, result.Int)
}

// Scenario 4: passing an Int argument to an Optional(Int) parameter
// inserts Int->Optional, and returning that parameter as Bool inserts
// Optional->Bool truthiness; a present value is true.
func TestE2EOptionalCoercion(t *testing.T) {
	mod := fixture(t, "optional_coercion.yaml")
	result := runMain(t, mod)
	require.Equal(t, interp.VBool, result.Kind)
	require.True(t, result.Bool)
}

// Scenario 5: a sum type whose every case is a bare, payload-less
// name collapses to an Enum at resolution time, and its bare case
// names are usable as values.
func TestE2EEnumOnlySumMatch(t *testing.T) {
	mod := fixture(t, "enum_match.yaml")
	require.NoError(t, checker.CheckModule(mod))
	require.Equal(t, ast.TEnum, mod.Types["Color"].Typ.Kind)

	llmod := llir.CompileModule(mod)
	it := interp.New(llmod)
	result, err := it.Run("main", nil)
	require.NoError(t, err)
	require.Equal(t, interp.VInt, result.Kind)
	require.EqualValues(t, 1, result.Int)
}

// Scenario 6: adding an Int and a Bool is a type error reported at
// the operator's span, with the checker's exact diagnostic text.
func TestE2EBinaryOpTypeMismatchIsReported(t *testing.T) {
	mod := fixture(t, "type_error.yaml")
	err := checker.CheckModule(mod)
	require.Error(t, err)
	require.Contains(t, err.Error(), "+ requires two numeric operands of the same type, or two chars")
}
