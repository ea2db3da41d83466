package ast

import "github.com/cobra-lang/cobra/internal/diag"

// PatternKind tags the variant of a match arm's pattern.
type PatternKind int

const (
	// PAny matches anything and binds nothing (the `_` wildcard).
	PAny PatternKind = iota
	// PName matches a sum-case or enum-case constructor by name, or
	// (when the name isn't a known case) binds the target value to a
	// fresh local.
	PName
	PLiteralInt
	PLiteralFloat
	PLiteralBool
	PLiteralChar
	PLiteralString
	// PEmptyArray matches a sequence of length 0.
	PEmptyArray
	// PArray destructures a non-empty sequence into Head (first
	// element) and Tail (remaining slice).
	PArray
	// PStruct destructures a struct or sum-case payload into named
	// bindings, one per listed member.
	PStruct
)

// Pattern is the tagged union of match-arm patterns. Only the fields
// relevant to Kind are populated.
type Pattern struct {
	Kind PatternKind
	Span diag.Span

	Name string // PName

	IntVal    int64   // PLiteralInt
	FloatVal  float64 // PLiteralFloat
	BoolVal   bool    // PLiteralBool
	CharVal   rune    // PLiteralChar
	StringVal string  // PLiteralString

	Head string // PArray: name bound to the first element
	Tail string // PArray: name bound to the remaining slice

	StructName string   // PStruct: struct or sum-case name, "" for positional struct match
	Bindings   []string // PStruct: member names to bind, in declaration order
}

func AnyPattern(span diag.Span) Pattern {
	return Pattern{Kind: PAny, Span: span}
}

func NamePattern(span diag.Span, name string) Pattern {
	return Pattern{Kind: PName, Span: span, Name: name}
}

func IntPattern(span diag.Span, v int64) Pattern {
	return Pattern{Kind: PLiteralInt, Span: span, IntVal: v}
}

func FloatPattern(span diag.Span, v float64) Pattern {
	return Pattern{Kind: PLiteralFloat, Span: span, FloatVal: v}
}

func BoolPattern(span diag.Span, v bool) Pattern {
	return Pattern{Kind: PLiteralBool, Span: span, BoolVal: v}
}

func CharPattern(span diag.Span, v rune) Pattern {
	return Pattern{Kind: PLiteralChar, Span: span, CharVal: v}
}

func StringPattern(span diag.Span, v string) Pattern {
	return Pattern{Kind: PLiteralString, Span: span, StringVal: v}
}

func EmptyArrayPattern(span diag.Span) Pattern {
	return Pattern{Kind: PEmptyArray, Span: span}
}

func ArrayPattern(span diag.Span, head, tail string) Pattern {
	return Pattern{Kind: PArray, Span: span, Head: head, Tail: tail}
}

func StructPattern(span diag.Span, structName string, bindings []string) Pattern {
	return Pattern{Kind: PStruct, Span: span, StructName: structName, Bindings: bindings}
}
