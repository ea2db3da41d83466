// Package interp implements Cobra's tree-walking bytecode interpreter:
// a per-activation register file addressed by LLVar name, explicit
// reference-counted heap cells driven by the llir IncRef/DecRef
// instructions, and a single-step execution contract mirroring the
// original compiler's debugger-friendly stepping interface.
package interp

import (
	"fmt"
	"strings"
)

// ValueKind tags the variant of a runtime Value. Pass-by-value kinds
// (everything but VHeap) carry their payload directly; VHeap values
// carry a pointer to a shared, reference-counted Cell.
type ValueKind int

const (
	VVoid ValueKind = iota
	VInt
	VUInt
	VFloat
	VBool
	VChar
	VEnum
	VFunc
	VPointer
	VHeap
)

// Value is Cobra's runtime value tagged union.
type Value struct {
	Kind ValueKind

	Int   int64
	UInt  uint64
	Float float64
	Bool  bool
	Char  rune
	Enum  int
	Func  string
	Ptr   *Value

	Cell *Cell
}

// CellKind tags the variant of a heap-allocated value.
type CellKind int

const (
	CArray CellKind = iota
	CString
	CStruct
	CSum
	COptional
)

// Cell is a reference-counted heap allocation: Array/Slice elements,
// a String's backing bytes, a Struct's (or a Sum case's payload
// struct's) named members, or an Optional's present/absent slot.
// Mirrors the owning half of the original's ValueRef (the Weak/Ptr
// half has no use here since Cobra admits no recursive owning
// references, §5's "a cycle manifests as a leak, not a crash").
type Cell struct {
	Kind     CellKind
	RefCount int

	Elements []Value
	Str      string
	Members  map[string]Value
	Tag      int
	Some     bool
	Inner    Value
}

func (v Value) String() string {
	switch v.Kind {
	case VVoid:
		return "void"
	case VInt:
		return fmt.Sprintf("%d", v.Int)
	case VUInt:
		return fmt.Sprintf("%d", v.UInt)
	case VFloat:
		return fmt.Sprintf("%g", v.Float)
	case VBool:
		return fmt.Sprintf("%t", v.Bool)
	case VChar:
		return fmt.Sprintf("%q", v.Char)
	case VEnum:
		return fmt.Sprintf("#%d", v.Enum)
	case VFunc:
		return "&" + v.Func
	case VPointer:
		if v.Ptr == nil {
			return "nil"
		}
		return "*(" + v.Ptr.String() + ")"
	case VHeap:
		if v.Cell == nil {
			return "nil"
		}
		return v.Cell.String()
	default:
		return "?"
	}
}

func (c *Cell) String() string {
	switch c.Kind {
	case CString:
		return fmt.Sprintf("%q", c.Str)
	case CArray:
		parts := make([]string, len(c.Elements))
		for i, e := range c.Elements {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case CStruct:
		return fmt.Sprintf("{%s}", joinMembers(c.Members))
	case CSum:
		return fmt.Sprintf("#%d{%s}", c.Tag, joinMembers(c.Members))
	case COptional:
		if !c.Some {
			return "nil"
		}
		return c.Inner.String()
	default:
		return "?"
	}
}

func joinMembers(m map[string]Value) string {
	parts := make([]string, 0, len(m))
	for k, v := range m {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v))
	}
	return strings.Join(parts, ", ")
}

// valueEquals is a structural equality check, used by the interpreter
// for `==`/`!=` on any matchable type.
func valueEquals(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case VVoid:
		return true
	case VInt:
		return a.Int == b.Int
	case VUInt:
		return a.UInt == b.UInt
	case VFloat:
		return a.Float == b.Float
	case VBool:
		return a.Bool == b.Bool
	case VChar:
		return a.Char == b.Char
	case VEnum:
		return a.Enum == b.Enum
	case VFunc:
		return a.Func == b.Func
	case VPointer:
		return a.Ptr == b.Ptr
	case VHeap:
		if a.Cell == b.Cell {
			return true
		}
		if a.Cell == nil || b.Cell == nil {
			return false
		}
		return cellEquals(a.Cell, b.Cell)
	default:
		return false
	}
}

func cellEquals(a, b *Cell) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case CString:
		return a.Str == b.Str
	case CArray:
		if len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !valueEquals(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case CStruct:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for k, v := range a.Members {
			bv, ok := b.Members[k]
			if !ok || !valueEquals(v, bv) {
				return false
			}
		}
		return true
	case CSum:
		if a.Tag != b.Tag {
			return false
		}
		return cellEquals(&Cell{Kind: CStruct, Members: a.Members}, &Cell{Kind: CStruct, Members: b.Members})
	case COptional:
		if a.Some != b.Some {
			return false
		}
		if !a.Some {
			return true
		}
		return valueEquals(a.Inner, b.Inner)
	default:
		return false
	}
}
