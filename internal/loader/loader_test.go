package loader_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/loader"
)

const pointModule = `
module: points
types:
  - name: Point
    kind: struct
    members:
      - name: x
        type: int64
      - name: y
        type: int64
functions:
  - name: manhattan
    args:
      - name: p
        type: Point
    return: int64
    body:
      kind: binary
      op: "+"
      left: { kind: member, target: { kind: name, name: p }, member: x }
      right: { kind: member, target: { kind: name, name: p }, member: y }
externs:
  - name: exit
    args:
      - name: code
        type: int64
    return: void
`

func TestLoadBytesDecodesModuleShape(t *testing.T) {
	mod, err := loader.LoadBytes("points.yaml", []byte(pointModule))
	require.NoError(t, err)
	require.Equal(t, "points", mod.Name)

	decl, ok := mod.Types["Point"]
	require.True(t, ok)
	require.Equal(t, ast.DeclStruct, decl.Kind)
	require.Len(t, decl.Members, 2)
	require.Equal(t, "x", decl.Members[0].Name)

	fn, ok := mod.Functions["manhattan"]
	require.True(t, ok)
	require.Len(t, fn.Sig.Args, 1)
	require.Equal(t, "p", fn.Sig.Args[0].Name)
	require.Equal(t, ast.TInt, fn.Sig.ReturnType.Kind)

	ext, ok := mod.Externals["exit"]
	require.True(t, ok)
	require.True(t, ext.Sig.ReturnType.IsVoid())
}

func TestLoadBytesRejectsDuplicateFunctionNames(t *testing.T) {
	const dup = `
module: m
functions:
  - name: f
    return: int64
    body: { kind: int, value: "1" }
  - name: f
    return: int64
    body: { kind: int, value: "2" }
`
	_, err := loader.LoadBytes("dup.yaml", []byte(dup))
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate function declaration f")
}

func TestLoadBytesRejectsEmptyDocument(t *testing.T) {
	_, err := loader.LoadBytes("empty.yaml", []byte(""))
	require.Error(t, err)
}
