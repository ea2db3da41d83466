// Package resolver turns the Unresolved named type references the
// loader's untyped AST carries into concrete ast.Type values, running
// struct/sum/alias declarations and function signatures to a
// fix-point the way the original compiler's typeresolver pass does.
package resolver

import (
	"fmt"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
)

// Mode controls whether an unresolved reference is tolerated (Lazy,
// used while the fix-point loop is still making progress) or reported
// as an error (Forced, used for the final pass once no more progress
// is being made, to surface the first real unresolved-name error).
type Mode int

const (
	Lazy Mode = iota
	Forced
)

const maxAliasDepth = 64

// ResolveType resolves every Unresolved node reachable from t. Under
// Lazy mode, a name that doesn't resolve yet is left Unresolved with
// no error (the outer fix-point loop will try again next pass); under
// Forced mode a name with no declaration is reported as
// diag.UnknownName, and a declared struct/sum that is still unresolved
// as diag.UnknownType.
func ResolveType(module *ast.Module, t ast.Type, mode Mode) (ast.Type, error) {
	switch t.Kind {
	case ast.TUnresolved:
		return resolveNamed(module, t, mode, 0)
	case ast.TPointer, ast.TOptional, ast.TArray, ast.TSlice:
		if t.Elem == nil {
			return t, nil
		}
		elem, err := ResolveType(module, *t.Elem, mode)
		if err != nil {
			return t, err
		}
		t.Elem = &elem
		return t, nil
	case ast.TFunc:
		args := make([]ast.Type, len(t.Args))
		for i, a := range t.Args {
			ra, err := ResolveType(module, a, mode)
			if err != nil {
				return t, err
			}
			args[i] = ra
		}
		t.Args = args
		if t.Ret != nil {
			rr, err := ResolveType(module, *t.Ret, mode)
			if err != nil {
				return t, err
			}
			t.Ret = &rr
		}
		return t, nil
	default:
		return t, nil
	}
}

func resolveNamed(module *ast.Module, t ast.Type, mode Mode, depth int) (ast.Type, error) {
	if depth > maxAliasDepth {
		return t, diag.NewType(diag.Span{}, fmt.Sprintf("alias cycle detected resolving %s", t.Name))
	}
	decl, ok := module.Types[t.Name]
	if !ok {
		if mode == Forced {
			return t, diag.NewUnknownName(diag.Span{}, t.Name)
		}
		return t, nil
	}

	switch decl.Kind {
	case ast.DeclAlias:
		orig := decl.Original
		if orig.Kind == ast.TUnresolved {
			resolved, err := resolveNamed(module, orig, mode, depth+1)
			if err != nil {
				return t, err
			}
			orig = resolved
		}
		return orig, nil
	case ast.DeclStruct, ast.DeclSum:
		if decl.Resolved {
			return decl.Typ, nil
		}
		if mode == Forced {
			return t, diag.NewUnknownType(diag.Span{}, t.Name, t)
		}
		return t, nil
	default:
		return t, nil
	}
}

// ResolveFunctionArgsAndRetType resolves every argument and the
// return type of sig, leaving any type whose Unresolved name appears
// in generics untouched (generic type parameters are never looked up
// in module.Types).
func ResolveFunctionArgsAndRetType(module *ast.Module, sig *ast.FunctionSignature, generics []string, mode Mode) error {
	isGenericName := func(name string) bool {
		for _, g := range generics {
			if g == name {
				return true
			}
		}
		return false
	}

	for i := range sig.Args {
		if sig.Args[i].Type.Kind == ast.TUnresolved && isGenericName(sig.Args[i].Type.Name) {
			continue
		}
		resolved, err := ResolveType(module, sig.Args[i].Type, mode)
		if err != nil {
			return err
		}
		sig.Args[i].Type = resolved
	}
	if sig.ReturnType.Kind == ast.TUnresolved && isGenericName(sig.ReturnType.Name) {
		return nil
	}
	resolved, err := ResolveType(module, sig.ReturnType, mode)
	if err != nil {
		return err
	}
	sig.ReturnType = resolved
	return nil
}

// resolveStructMemberTypes resolves every member of a struct
// declaration in place.
func resolveStructMemberTypes(module *ast.Module, decl *ast.TypeDeclaration, mode Mode) error {
	members := make([]ast.StructMember, len(decl.Members))
	for i, p := range decl.Members {
		resolved, err := ResolveType(module, p.Type, mode)
		if err != nil {
			return err
		}
		members[i] = ast.NewStructMember(p.Name, resolved)
	}
	decl.Typ = ast.StructTypeOf(decl.Name, members)
	decl.Resolved = allMembersResolved(members)
	return nil
}

func allMembersResolved(members []ast.StructMember) bool {
	for _, m := range members {
		if m.Type.Kind == ast.TUnresolved {
			return false
		}
	}
	return true
}

// resolveSumCaseTypes resolves every case of a sum declaration. If
// every case carries exactly one member whose type is Int (the
// sentinel the loader uses for a bare, payload-less case), the sum is
// lowered to an Enum and each case name is additionally registered as
// an Enum-typed import symbol, mirroring resolve_sum_case_types.
func resolveSumCaseTypes(module *ast.Module, decl *ast.TypeDeclaration, mode Mode) error {
	allInt := len(decl.Cases) > 0
	caseTypes := make([]ast.Type, len(decl.Cases))
	for i, c := range decl.Cases {
		if len(c.Members) == 1 && c.Members[0].Type.Kind == ast.TInt && c.Members[0].Name == "" {
			caseTypes[i] = ast.IntType(ast.I64)
			continue
		}
		allInt = false
		members := make([]ast.StructMember, len(c.Members))
		for j, p := range c.Members {
			resolved, err := ResolveType(module, p.Type, mode)
			if err != nil {
				return err
			}
			members[j] = ast.NewStructMember(p.Name, resolved)
		}
		caseTypes[i] = ast.StructTypeOf(decl.Name+"::"+c.Name, members)
	}

	if allInt {
		names := make([]string, len(decl.Cases))
		for i, c := range decl.Cases {
			names[i] = c.Name
		}
		decl.Typ = ast.EnumTypeOf(decl.Name, names)
		decl.Resolved = true
		for _, name := range names {
			module.Imports[name] = &ast.Symbol{Name: name, Typ: decl.Typ, Kind: ast.SymbolGlobal}
		}
		return nil
	}

	cases := make([]ast.SumTypeCase, len(decl.Cases))
	resolved := true
	for i, c := range decl.Cases {
		cases[i] = ast.NewSumTypeCase(c.Name, caseTypes[i])
		if caseTypes[i].Kind == ast.TUnresolved {
			resolved = false
		}
	}
	decl.Typ = ast.SumTypeOf(decl.Name, cases)
	decl.Resolved = resolved
	return nil
}

// ResolveAllTypes runs one pass over every module-level type
// declaration, returning how many were resolved this pass.
func ResolveAllTypes(module *ast.Module, mode Mode) (int, error) {
	resolved := 0
	for _, decl := range module.Types {
		if decl.Resolved {
			resolved++
			continue
		}
		var err error
		switch decl.Kind {
		case ast.DeclStruct:
			err = resolveStructMemberTypes(module, decl, mode)
		case ast.DeclSum:
			err = resolveSumCaseTypes(module, decl, mode)
		case ast.DeclAlias:
			resolvedType, rerr := ResolveType(module, decl.Original, mode)
			if rerr != nil {
				err = rerr
				break
			}
			decl.Original = resolvedType
			decl.Typ = resolvedType
			decl.Resolved = resolvedType.Kind != ast.TUnresolved
		}
		if err != nil {
			return resolved, err
		}
		if decl.Resolved {
			resolved++
		}
	}
	return resolved, nil
}

// ResolveTypes runs the outer fix-point loop: repeatedly resolve every
// declaration until no more progress is made, then (if any
// declaration is still unresolved) run one Forced pass to surface the
// first real unresolved-name error. Once all types are resolved, every
// function signature is resolved too.
func ResolveTypes(module *ast.Module) error {
	total := len(module.Types)
	for {
		n, err := ResolveAllTypes(module, Lazy)
		if err != nil {
			return err
		}
		if n == total {
			break
		}
		prev := n
		n2, err := ResolveAllTypes(module, Lazy)
		if err != nil {
			return err
		}
		if n2 == prev {
			// No progress: run once more in Forced mode to report the
			// first real error.
			if _, err := ResolveAllTypes(module, Forced); err != nil {
				return err
			}
			break
		}
	}

	for _, fn := range module.Functions {
		if err := ResolveFunctionArgsAndRetType(module, &fn.Sig, fn.Generics, Forced); err != nil {
			return err
		}
	}
	for _, ext := range module.Externals {
		if err := ResolveFunctionArgsAndRetType(module, &ext.Sig, nil, Forced); err != nil {
			return err
		}
	}
	return nil
}
