package diag

import "strings"

// Kind tags the variant of a compile error, mirroring the original
// compiler's CompileError union.
type Kind int

const (
	Other Kind = iota
	IO
	Parse
	Type
	UnknownName
	UnknownType
	Many
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "error"
	case IO:
		return "I/O error"
	case Parse:
		return "parse error"
	case Type:
		return "type error"
	case UnknownName:
		return "unknown name"
	case UnknownType:
		return "unknown type"
	case Many:
		return "multiple errors"
	default:
		return "error"
	}
}

// TypeNamer is the minimal interface diag needs from ast.Type without
// importing the ast package (which itself depends on diag for spans).
type TypeNamer interface {
	String() string
}

// Error is the single error type every pass returns. Non-Many variants
// carry a Msg and, where relevant, a Span; UnknownType additionally
// carries the expected type and the unresolved name.
type Error struct {
	Kind     Kind
	Msg      string
	Span     Span
	HasSpan  bool
	Name     string
	Expected TypeNamer
	Errors   []*Error // only populated when Kind == Many
}

func newErr(k Kind, msg string, span Span, hasSpan bool) *Error {
	return &Error{Kind: k, Msg: msg, Span: span, HasSpan: hasSpan}
}

func NewOther(msg string) *Error {
	return newErr(Other, msg, Span{}, false)
}

func NewIO(msg string) *Error {
	return newErr(IO, msg, Span{}, false)
}

func NewParse(span Span, msg string) *Error {
	return newErr(Parse, msg, span, true)
}

func NewType(span Span, msg string) *Error {
	return newErr(Type, msg, span, true)
}

func NewUnknownName(span Span, name string) *Error {
	e := newErr(UnknownName, "unknown name "+name, span, true)
	e.Name = name
	return e
}

// NewUnknownType signals that a name resolved to a type the checker
// doesn't yet know the concrete shape of; the let-binding retry logic
// in the checker uses Name/Expected to re-check the one binding whose
// init expression produced this error with a hint.
func NewUnknownType(span Span, name string, expected TypeNamer) *Error {
	e := newErr(UnknownType, "unknown type for "+name, span, true)
	e.Name = name
	e.Expected = expected
	return e
}

func NewMany(errs []*Error) *Error {
	if len(errs) == 1 {
		return errs[0]
	}
	return &Error{Kind: Many, Errors: errs}
}

func (e *Error) Error() string {
	if e.Kind == Many {
		parts := make([]string, len(e.Errors))
		for i, sub := range e.Errors {
			parts[i] = sub.Error()
		}
		return strings.Join(parts, "\n")
	}
	if e.HasSpan {
		return e.Span.String() + ": " + e.Msg
	}
	return e.Msg
}

// Is supports errors.Is against a Kind sentinel wrapped in an *Error
// with no message (e.g. errors.Is(err, &diag.Error{Kind: diag.Parse})).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Flatten returns the leaf errors: itself for any non-Many kind, or
// the recursively-flattened list of sub-errors for Many.
func (e *Error) Flatten() []*Error {
	if e.Kind != Many {
		return []*Error{e}
	}
	var out []*Error
	for _, sub := range e.Errors {
		out = append(out, sub.Flatten()...)
	}
	return out
}

// Append combines two errors (either of which may be nil) into one,
// collapsing into a Many when both are present.
func Append(a, b *Error) *Error {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return NewMany(append(a.Flatten(), b.Flatten()...))
}
