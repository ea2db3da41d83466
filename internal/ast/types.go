// Package ast defines Cobra's typed AST: the type grammar, the
// expression/pattern tagged unions, and the module-level declarations
// the resolver, checker, generics and llir passes operate on.
package ast

import (
	"fmt"
	"strings"
)

// IntSize and FloatSize record the bit width of a numeric type.
type IntSize int

const (
	I8  IntSize = 8
	I16 IntSize = 16
	I32 IntSize = 32
	I64 IntSize = 64
)

type FloatSize int

const (
	F32 FloatSize = 32
	F64 FloatSize = 64
)

// TypeKind tags the variant of Type. Type is a closed tagged union;
// every new case needs a branch in every exhaustive switch below.
type TypeKind int

const (
	TVoid TypeKind = iota
	TUnknown
	TBool
	TChar
	TString
	TInt
	TUInt
	TFloat
	TPointer
	TOptional
	TArray
	TSlice
	TFunc
	TStruct
	TSum
	TEnum
	TGeneric
	TUnresolved
	TSelf
	TInterface
)

// StructMember is a named, typed field of a struct or a sum case's
// payload struct.
type StructMember struct {
	Name string
	Type Type
}

func NewStructMember(name string, typ Type) StructMember {
	return StructMember{Name: name, Type: typ}
}

// SumTypeCase is one variant of a Sum type. When every case's Type is
// the Int sentinel, the resolver lowers the whole Sum into an Enum.
type SumTypeCase struct {
	Name string
	Type Type
}

func NewSumTypeCase(name string, typ Type) SumTypeCase {
	return SumTypeCase{Name: name, Type: typ}
}

// Type is the tagged union of every type Cobra's grammar admits.
// Only the fields relevant to Kind are populated; Go has no real
// union, so the unused fields of other variants are simply zero.
type Type struct {
	Kind TypeKind

	IntSize   IntSize
	FloatSize FloatSize

	Elem *Type // Pointer, Optional, Array, Slice element type
	Len  int   // Array length

	Args []Type // Func args, Unresolved/Interface/Generic type args
	Ret  *Type  // Func return type

	Name    string // Struct/Sum/Enum/Unresolved/Interface/SelfType/Generic name
	Members []StructMember

	Cases     []SumTypeCase // Sum
	EnumCases []string      // Enum

	GenericAny         bool // Generic: Any vs Restricted
	GenericConstraints []Type

	Functions []FunctionSignature // Interface
}

func VoidType() Type    { return Type{Kind: TVoid} }
func UnknownType() Type { return Type{Kind: TUnknown} }
func BoolType() Type    { return Type{Kind: TBool} }
func CharType() Type    { return Type{Kind: TChar} }
func SelfType() Type    { return Type{Kind: TSelf} }

func IntType(size IntSize) Type  { return Type{Kind: TInt, IntSize: size} }
func UIntType(size IntSize) Type { return Type{Kind: TUInt, IntSize: size} }
func FloatTypeOf(size FloatSize) Type {
	return Type{Kind: TFloat, FloatSize: size}
}

func StringType() Type {
	return Type{Kind: TString}
}

// StringTypeRepresentation returns the underlying representation of
// strings: a Slice of Char, the way the checker treats `.len`/`.data`
// property access and indexing.
func StringTypeRepresentation() Type {
	c := CharType()
	return Type{Kind: TSlice, Elem: &c}
}

func PtrType(elem Type) Type {
	return Type{Kind: TPointer, Elem: &elem}
}

func OptionalType(elem Type) Type {
	return Type{Kind: TOptional, Elem: &elem}
}

func ArrayType(elem Type, length int) Type {
	return Type{Kind: TArray, Elem: &elem, Len: length}
}

func SliceType(elem Type) Type {
	return Type{Kind: TSlice, Elem: &elem}
}

func FuncType(args []Type, ret Type) Type {
	return Type{Kind: TFunc, Args: args, Ret: &ret}
}

func StructTypeOf(name string, members []StructMember) Type {
	return Type{Kind: TStruct, Name: name, Members: members}
}

func SumTypeOf(name string, cases []SumTypeCase) Type {
	return Type{Kind: TSum, Name: name, Cases: cases}
}

func EnumTypeOf(name string, cases []string) Type {
	return Type{Kind: TEnum, Name: name, EnumCases: cases}
}

func GenericAnyType(name string) Type {
	return Type{Kind: TGeneric, Name: name, GenericAny: true}
}

func GenericRestrictedType(name string, constraints []Type) Type {
	return Type{Kind: TGeneric, Name: name, GenericConstraints: constraints}
}

func UnresolvedType(name string, args []Type) Type {
	return Type{Kind: TUnresolved, Name: name, Args: args}
}

func InterfaceType(name string, args []Type, funcs []FunctionSignature) Type {
	return Type{Kind: TInterface, Name: name, Args: args, Functions: funcs}
}

// PtrOf returns a pointer type to t, mirroring the original's
// Type::ptr_of helper used when synthesizing address-of conversions.
func (t Type) PtrOf() Type {
	return PtrType(t)
}

// IsVoid, IsUnknown, IsGeneric, IsNumeric, IsSequence, IsOptional,
// IsPointer report simple Kind membership tests used throughout the
// checker and lowering passes.
func (t Type) IsVoid() bool    { return t.Kind == TVoid }
func (t Type) IsUnknown() bool { return t.Kind == TUnknown }

func (t Type) IsGeneric() bool {
	if t.Kind == TGeneric {
		return true
	}
	for _, a := range t.Args {
		if a.IsGeneric() {
			return true
		}
	}
	switch t.Kind {
	case TPointer, TOptional, TArray, TSlice:
		return t.Elem != nil && t.Elem.IsGeneric()
	case TFunc:
		if t.Ret != nil && t.Ret.IsGeneric() {
			return true
		}
	case TStruct:
		for _, m := range t.Members {
			if m.Type.IsGeneric() {
				return true
			}
		}
	case TSum:
		for _, c := range t.Cases {
			if c.Type.IsGeneric() {
				return true
			}
		}
	}
	return false
}

func (t Type) IsNumeric() bool {
	switch t.Kind {
	case TInt, TUInt, TFloat:
		return true
	default:
		return false
	}
}

// IsSequence reports whether the type can be indexed / iterated as a
// contiguous run of elements (Array, Slice or String).
func (t Type) IsSequence() bool {
	switch t.Kind {
	case TArray, TSlice:
		return true
	case TString:
		return true
	default:
		return false
	}
}

// ElementType returns the element type of a sequence, mirroring
// get_element_type. Strings are treated as slices of Char.
func (t Type) ElementType() (Type, bool) {
	switch t.Kind {
	case TArray, TSlice:
		if t.Elem != nil {
			return *t.Elem, true
		}
	case TString:
		return CharType(), true
	}
	return Type{}, false
}

func (t Type) IsOptional() bool { return t.Kind == TOptional }

// IsOptionalOf reports whether t is Optional(inner).
func (t Type) IsOptionalOf(inner Type) bool {
	return t.Kind == TOptional && t.Elem != nil && t.Elem.Equals(inner)
}

func (t Type) IsPointer() bool { return t.Kind == TPointer }

// IsPointerToVoid reports whether t is *Void, the only pointer type
// Cobra allows an arbitrary pointer to convert to/from.
func (t Type) IsPointerToVoid() bool {
	return t.Kind == TPointer && t.Elem != nil && t.Elem.IsVoid()
}

// IsMatchable reports whether a value of this type can appear as the
// target of a match expression or be compared via a literal pattern.
func (t Type) IsMatchable() bool {
	switch t.Kind {
	case TInt, TUInt, TFloat, TChar, TBool, TString, TArray, TSlice, TSum, TEnum, TStruct:
		return true
	default:
		return false
	}
}

// PassByValue reports whether the type is passed by value in function
// calls (as opposed to by reference-counted heap handle).
func (t Type) PassByValue() bool {
	switch t.Kind {
	case TInt, TUInt, TFloat, TBool, TChar, TVoid, TPointer, TEnum:
		return true
	default:
		return false
	}
}

// IsHeapAllocated reports whether values of this type live behind a
// reference-counted heap cell (Array/Slice/String/Struct/Sum/Optional).
func (t Type) IsHeapAllocated() bool {
	switch t.Kind {
	case TArray, TSlice, TString, TStruct, TSum, TOptional:
		return true
	default:
		return false
	}
}

// Equals is a structural equality check over the tagged union.
func (t Type) Equals(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TInt, TUInt:
		return t.IntSize == o.IntSize
	case TFloat:
		return t.FloatSize == o.FloatSize
	case TPointer, TOptional, TArray, TSlice:
		if t.Kind == TArray && t.Len != o.Len {
			return false
		}
		if t.Elem == nil || o.Elem == nil {
			return t.Elem == o.Elem
		}
		return t.Elem.Equals(*o.Elem)
	case TFunc:
		if len(t.Args) != len(o.Args) {
			return false
		}
		for i := range t.Args {
			if !t.Args[i].Equals(o.Args[i]) {
				return false
			}
		}
		if t.Ret == nil || o.Ret == nil {
			return t.Ret == o.Ret
		}
		return t.Ret.Equals(*o.Ret)
	case TStruct:
		if t.Name != o.Name || len(t.Members) != len(o.Members) {
			return false
		}
		for i := range t.Members {
			if t.Members[i].Name != o.Members[i].Name || !t.Members[i].Type.Equals(o.Members[i].Type) {
				return false
			}
		}
		return true
	case TSum:
		if t.Name != o.Name || len(t.Cases) != len(o.Cases) {
			return false
		}
		for i := range t.Cases {
			if t.Cases[i].Name != o.Cases[i].Name || !t.Cases[i].Type.Equals(o.Cases[i].Type) {
				return false
			}
		}
		return true
	case TEnum:
		return t.Name == o.Name
	case TGeneric:
		return t.Name == o.Name
	case TUnresolved, TInterface:
		if t.Name != o.Name || len(t.Args) != len(o.Args) {
			return false
		}
		for i := range t.Args {
			if !t.Args[i].Equals(o.Args[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// IndexOf returns the 0-based index of a case in a Sum or Enum type.
func (t Type) IndexOf(caseName string) (int, bool) {
	switch t.Kind {
	case TSum:
		for i, c := range t.Cases {
			if c.Name == caseName {
				return i, true
			}
		}
	case TEnum:
		for i, c := range t.EnumCases {
			if c == caseName {
				return i, true
			}
		}
	}
	return -1, false
}

func (t Type) NumCases() int {
	switch t.Kind {
	case TSum:
		return len(t.Cases)
	case TEnum:
		return len(t.EnumCases)
	default:
		return 0
	}
}

// FindMember looks up a struct member by name.
func (t Type) FindMember(name string) (StructMember, bool) {
	if t.Kind != TStruct {
		return StructMember{}, false
	}
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return StructMember{}, false
}

// FindCase looks up a sum case by name.
func (t Type) FindCase(name string) (SumTypeCase, bool) {
	if t.Kind != TSum {
		return SumTypeCase{}, false
	}
	for _, c := range t.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return SumTypeCase{}, false
}

// GetPropertyType resolves the type of a built-in property access such
// as `.len` or `.data` on a sequence type, falling back to struct
// member lookup for everything else.
func (t Type) GetPropertyType(prop string) (Type, bool) {
	switch prop {
	case "len":
		if t.IsSequence() {
			return UIntType(I64), true
		}
	case "data":
		if elem, ok := t.ElementType(); ok {
			return PtrType(elem), true
		}
	}
	if m, ok := t.FindMember(prop); ok {
		return m.Type, true
	}
	return Type{}, false
}

// ConversionKind tags the variant of an implicit conversion Convert
// can synthesize.
type ConversionKind int

const (
	ConvNone ConversionKind = iota
	ConvArrayToSlice
	ConvToOptional
	ConvOptionalTruthiness
	ConvPointerTruthiness
	ConvNilToOptional
	ConvPointerCast
)

// IsConvertible reports whether a value of type t can be implicitly
// converted to type target, without performing the conversion.
func (t Type) IsConvertible(target Type) bool {
	return t.conversionKind(target) != ConvNone
}

func (t Type) conversionKind(target Type) ConversionKind {
	if t.Equals(target) {
		return ConvNone
	}
	if t.Kind == TArray && target.Kind == TSlice && t.Elem != nil && target.Elem != nil && t.Elem.Equals(*target.Elem) {
		return ConvArrayToSlice
	}
	if target.Kind == TOptional && target.Elem != nil {
		if t.Kind == TUnknown {
			return ConvNilToOptional
		}
		if t.Equals(*target.Elem) {
			return ConvToOptional
		}
	}
	if t.Kind == TOptional && target.Kind == TBool {
		return ConvOptionalTruthiness
	}
	if t.Kind == TPointer && target.Kind == TBool {
		return ConvPointerTruthiness
	}
	if t.Kind == TPointer && target.Kind == TPointer {
		if t.IsPointerToVoid() || target.IsPointerToVoid() {
			return ConvPointerCast
		}
	}
	return ConvNone
}

// IsBinaryOperatorSupported reports whether op is defined for this
// pair of (already type-checked-equal, numeric-or-equal) operand
// types, mirroring the original's per-operator operand tables.
func (t Type) IsBinaryOperatorSupported(op BinaryOperator, rhs Type) bool {
	switch op {
	case OpAdd:
		return (t.Kind == TChar && rhs.Kind == TChar) ||
			(t.IsNumeric() && t.Equals(rhs))
	case OpSub, OpMul, OpDiv:
		return t.IsNumeric() && t.Equals(rhs)
	case OpMod:
		return (t.Kind == TInt || t.Kind == TUInt) && t.Equals(rhs)
	case OpLT, OpLTE, OpGT, OpGTE:
		return t.IsNumeric() && t.Equals(rhs)
	case OpEq, OpNotEq:
		return t.Equals(rhs)
	case OpAnd, OpOr:
		return t.Kind == TBool && rhs.Kind == TBool
	default:
		return false
	}
}

func (t Type) String() string {
	switch t.Kind {
	case TVoid:
		return "void"
	case TUnknown:
		return "unknown"
	case TBool:
		return "bool"
	case TChar:
		return "char"
	case TString:
		return "string"
	case TInt:
		return fmt.Sprintf("int%d", t.IntSize)
	case TUInt:
		return fmt.Sprintf("uint%d", t.IntSize)
	case TFloat:
		return fmt.Sprintf("float%d", t.FloatSize)
	case TPointer:
		return "*" + t.elemString()
	case TOptional:
		return "?" + t.elemString()
	case TArray:
		return fmt.Sprintf("[%d]%s", t.Len, t.elemString())
	case TSlice:
		return "[]" + t.elemString()
	case TFunc:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		ret := "void"
		if t.Ret != nil {
			ret = t.Ret.String()
		}
		return fmt.Sprintf("func(%s) -> %s", strings.Join(args, ", "), ret)
	case TStruct:
		return t.Name
	case TSum:
		return t.Name
	case TEnum:
		return t.Name
	case TGeneric:
		if t.GenericAny {
			return "$" + t.Name
		}
		return "$" + t.Name
	case TUnresolved:
		if len(t.Args) == 0 {
			return t.Name
		}
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		return fmt.Sprintf("%s<%s>", t.Name, strings.Join(args, ", "))
	case TSelf:
		return "Self"
	case TInterface:
		return t.Name
	default:
		return "?"
	}
}

func (t Type) elemString() string {
	if t.Elem == nil {
		return "?"
	}
	return t.Elem.String()
}

func (m StructMember) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Type)
}
