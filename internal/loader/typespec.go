package loader

import (
	"strconv"
	"strings"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
)

// parseTypeSpec parses the loader's compact type syntax into an
// ast.Type: `void`, `bool`, `char`, `string`, `intN`/`uintN`/`floatN`,
// `*T` (pointer), `?T` (optional), `[]T` (slice), `[N]T` (array),
// `$Name` (generic), `Name<A, B>` (unresolved with type args), or a
// bare `Name` (unresolved, resolved against module.Types later).
// Mirrors the shape of a type annotation in Cobra source without
// reimplementing the language's own lexer/parser (out of scope).
func parseTypeSpec(span diag.Span, s string) (ast.Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ast.Type{}, diag.NewParse(span, "empty type spec")
	}
	switch {
	case s == "void":
		return ast.VoidType(), nil
	case s == "bool":
		return ast.BoolType(), nil
	case s == "char":
		return ast.CharType(), nil
	case s == "string":
		return ast.StringType(), nil
	case s == "Self":
		return ast.SelfType(), nil
	case strings.HasPrefix(s, "int"):
		if size, ok := parseIntSize(s[3:]); ok {
			return ast.IntType(size), nil
		}
	case strings.HasPrefix(s, "uint"):
		if size, ok := parseIntSize(s[4:]); ok {
			return ast.UIntType(size), nil
		}
	case strings.HasPrefix(s, "float"):
		if size, ok := parseFloatSize(s[5:]); ok {
			return ast.FloatTypeOf(size), nil
		}
	case strings.HasPrefix(s, "*"):
		elem, err := parseTypeSpec(span, s[1:])
		if err != nil {
			return ast.Type{}, err
		}
		return ast.PtrType(elem), nil
	case strings.HasPrefix(s, "?"):
		elem, err := parseTypeSpec(span, s[1:])
		if err != nil {
			return ast.Type{}, err
		}
		return ast.OptionalType(elem), nil
	case strings.HasPrefix(s, "[]"):
		elem, err := parseTypeSpec(span, s[2:])
		if err != nil {
			return ast.Type{}, err
		}
		return ast.SliceType(elem), nil
	case strings.HasPrefix(s, "["):
		close := strings.Index(s, "]")
		if close < 0 {
			return ast.Type{}, diag.NewParse(span, "malformed array type "+s)
		}
		length, err := strconv.Atoi(s[1:close])
		if err != nil {
			return ast.Type{}, diag.NewParse(span, "malformed array length in "+s)
		}
		elem, err := parseTypeSpec(span, s[close+1:])
		if err != nil {
			return ast.Type{}, err
		}
		return ast.ArrayType(elem, length), nil
	case strings.HasPrefix(s, "$"):
		return ast.GenericAnyType(s[1:]), nil
	}

	if open := strings.Index(s, "<"); open >= 0 && strings.HasSuffix(s, ">") {
		name := s[:open]
		argsStr := s[open+1 : len(s)-1]
		parts := splitTopLevel(argsStr)
		args := make([]ast.Type, len(parts))
		for i, p := range parts {
			arg, err := parseTypeSpec(span, p)
			if err != nil {
				return ast.Type{}, err
			}
			args[i] = arg
		}
		return ast.UnresolvedType(name, args), nil
	}
	return ast.UnresolvedType(s, nil), nil
}

func parseIntSize(digits string) (ast.IntSize, bool) {
	switch digits {
	case "8":
		return ast.I8, true
	case "16":
		return ast.I16, true
	case "32":
		return ast.I32, true
	case "64":
		return ast.I64, true
	default:
		return 0, false
	}
}

func parseFloatSize(digits string) (ast.FloatSize, bool) {
	switch digits {
	case "32":
		return ast.F32, true
	case "64":
		return ast.F64, true
	default:
		return 0, false
	}
}

// splitTopLevel splits s on commas that aren't nested inside `<...>`
// or `[...]`, so `Map<string, List<int64>>` splits into two parts.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '<', '[':
			depth++
		case '>', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		parts = append(parts, rest)
	}
	return parts
}
