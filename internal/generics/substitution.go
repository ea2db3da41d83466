// Package generics implements structural substitution over types and
// expressions and the monomorphization pass that turns a generic
// function plus a concrete substitution into a specialized clone.
package generics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cobra-lang/cobra/internal/ast"
)

// Subst maps a generic type-parameter name to the concrete type it
// should be replaced with.
type Subst map[string]ast.Type

// Key returns a deterministic string key for a substitution, used to
// intern monomorphized functions by (original name, substitution).
func (s Subst) Key() string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + s[name].String()
	}
	return strings.Join(parts, ",")
}

// ApplyType returns t with every Generic occurrence replaced per s.
// Types with no generic parameters are returned unchanged (structure
// is still copied defensively where it contains slices, since the
// original type may be shared across call sites).
func ApplyType(t ast.Type, s Subst) ast.Type {
	if len(s) == 0 {
		return t
	}
	switch t.Kind {
	case ast.TGeneric:
		if concrete, ok := s[t.Name]; ok {
			return concrete
		}
		return t
	case ast.TPointer, ast.TOptional, ast.TArray, ast.TSlice:
		if t.Elem == nil {
			return t
		}
		elem := ApplyType(*t.Elem, s)
		t.Elem = &elem
		return t
	case ast.TFunc:
		args := make([]ast.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = ApplyType(a, s)
		}
		t.Args = args
		if t.Ret != nil {
			ret := ApplyType(*t.Ret, s)
			t.Ret = &ret
		}
		return t
	case ast.TStruct:
		members := make([]ast.StructMember, len(t.Members))
		for i, m := range t.Members {
			members[i] = ast.NewStructMember(m.Name, ApplyType(m.Type, s))
		}
		t.Members = members
		return t
	case ast.TSum:
		cases := make([]ast.SumTypeCase, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = ast.NewSumTypeCase(c.Name, ApplyType(c.Type, s))
		}
		t.Cases = cases
		return t
	case ast.TUnresolved, ast.TInterface:
		args := make([]ast.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = ApplyType(a, s)
		}
		t.Args = args
		return t
	default:
		return t
	}
}

// MangledName returns the name a monomorphized function gets: the
// original name plus a digest of its substitution, so distinct
// instantiations of the same generic function never collide.
func MangledName(original string, s Subst) string {
	if len(s) == 0 {
		return original
	}
	return fmt.Sprintf("%s$%x", original, hashKey(s.Key()))
}

func hashKey(key string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= 16777619
	}
	return h
}

// FillInGenerics iteratively unifies concrete against pattern,
// recording bindings for every Generic name found in pattern into s.
// Mirrors the original's fill_in_generics: run repeatedly over a
// call's argument list until the substitution stops growing, so later
// arguments can fill in parameters earlier arguments left generic in
// the call's own signature view (e.g. a generic return type solved
// only once every argument has been visited).
func FillInGenerics(concrete, pattern ast.Type, s Subst) {
	if pattern.Kind == ast.TGeneric {
		if _, exists := s[pattern.Name]; !exists && concrete.Kind != ast.TGeneric {
			s[pattern.Name] = concrete
		}
		return
	}
	if concrete.Kind != pattern.Kind {
		return
	}
	switch pattern.Kind {
	case ast.TPointer, ast.TOptional, ast.TArray, ast.TSlice:
		if concrete.Elem != nil && pattern.Elem != nil {
			FillInGenerics(*concrete.Elem, *pattern.Elem, s)
		}
	case ast.TFunc:
		for i := 0; i < len(pattern.Args) && i < len(concrete.Args); i++ {
			FillInGenerics(concrete.Args[i], pattern.Args[i], s)
		}
		if concrete.Ret != nil && pattern.Ret != nil {
			FillInGenerics(*concrete.Ret, *pattern.Ret, s)
		}
	case ast.TStruct:
		for i := 0; i < len(pattern.Members) && i < len(concrete.Members); i++ {
			FillInGenerics(concrete.Members[i].Type, pattern.Members[i].Type, s)
		}
	case ast.TSum:
		for i := 0; i < len(pattern.Cases) && i < len(concrete.Cases); i++ {
			FillInGenerics(concrete.Cases[i].Type, pattern.Cases[i].Type, s)
		}
	}
}

// IsInstantiationOf reports whether concrete is a valid instantiation
// of generic (i.e. generic, with some substitution of its Generic
// type parameters, structurally equals concrete). Mirrors the
// original's is_instantiation_of: generic type parameters always
// match, non-generic shapes must recurse structurally, and a wholly
// non-generic pattern falls back to plain equality.
func IsInstantiationOf(concrete, generic ast.Type) bool {
	if generic.Kind == ast.TGeneric {
		return true
	}
	if !generic.IsGeneric() {
		return concrete.Equals(generic)
	}
	if concrete.Kind != generic.Kind {
		return false
	}
	switch generic.Kind {
	case ast.TPointer, ast.TOptional, ast.TArray, ast.TSlice:
		if generic.Kind == ast.TArray && concrete.Len != generic.Len {
			return false
		}
		if concrete.Elem == nil || generic.Elem == nil {
			return concrete.Elem == generic.Elem
		}
		return IsInstantiationOf(*concrete.Elem, *generic.Elem)
	case ast.TFunc:
		if len(concrete.Args) != len(generic.Args) {
			return false
		}
		for i := range generic.Args {
			if !IsInstantiationOf(concrete.Args[i], generic.Args[i]) {
				return false
			}
		}
		if concrete.Ret == nil || generic.Ret == nil {
			return concrete.Ret == generic.Ret
		}
		return IsInstantiationOf(*concrete.Ret, *generic.Ret)
	case ast.TStruct:
		if len(concrete.Members) != len(generic.Members) {
			return false
		}
		for i := range generic.Members {
			if concrete.Members[i].Name != generic.Members[i].Name {
				return false
			}
			if !IsInstantiationOf(concrete.Members[i].Type, generic.Members[i].Type) {
				return false
			}
		}
		return true
	case ast.TSum:
		if len(concrete.Cases) != len(generic.Cases) {
			return false
		}
		for i := range generic.Cases {
			if concrete.Cases[i].Name != generic.Cases[i].Name {
				return false
			}
			if !IsInstantiationOf(concrete.Cases[i].Type, generic.Cases[i].Type) {
				return false
			}
		}
		return true
	default:
		return concrete.Equals(generic)
	}
}
