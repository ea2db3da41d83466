package loader

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
)

// decodeExpr converts one YAML expression node into the typed AST's
// untyped-so-far Expression tree. The `kind` field names one of the
// typed-AST tagged union's constructors directly, so a module author
// (or the end-to-end test fixtures) writes the AST shape rather than
// Cobra source text, matching §4.7's "boundary producing the untyped
// ast.Module the resolver consumes" role.
func decodeExpr(file string, n *yaml.Node) (ast.Expression, error) {
	if n == nil {
		return nil, diag.NewParse(spanOf(file, n), "missing expression")
	}
	span := spanOf(file, n)
	kind, _ := fieldString(n, "kind")

	switch kind {
	case "int":
		v, _ := fieldString(n, "value")
		iv, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, diag.NewParse(span, "malformed int literal "+v)
		}
		return ast.NewIntLit(span, iv), nil

	case "uint":
		v, _ := fieldString(n, "value")
		uv, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, diag.NewParse(span, "malformed uint literal "+v)
		}
		return ast.NewUIntLit(span, uv), nil

	case "float":
		v, _ := fieldString(n, "value")
		fv, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, diag.NewParse(span, "malformed float literal "+v)
		}
		return ast.NewFloatLit(span, fv), nil

	case "bool":
		return ast.NewBoolLit(span, fieldBool(n, "value")), nil

	case "char":
		v, _ := fieldString(n, "value")
		r := []rune(v)
		if len(r) != 1 {
			return nil, diag.NewParse(span, "char literal must be exactly one rune")
		}
		return ast.NewCharLit(span, r[0]), nil

	case "string":
		v, _ := fieldString(n, "value")
		return ast.NewStringLit(span, v), nil

	case "nil":
		return ast.NewNilLit(span), nil

	case "array":
		elems, err := decodeExprSeq(file, seq(n, "elements"))
		if err != nil {
			return nil, err
		}
		return ast.NewArrayLit(span, elems), nil

	case "name":
		name, _ := fieldString(n, "name")
		return ast.NewNameRef(span, name), nil

	case "unary":
		opStr, _ := fieldString(n, "op")
		op, err := parseUnaryOp(span, opStr)
		if err != nil {
			return nil, err
		}
		operand, err := decodeExpr(file, fieldNode(n, "operand"))
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(span, op, operand), nil

	case "binary":
		opStr, _ := fieldString(n, "op")
		op, err := parseBinaryOp(span, opStr)
		if err != nil {
			return nil, err
		}
		left, err := decodeExpr(file, fieldNode(n, "left"))
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(file, fieldNode(n, "right"))
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryOp(span, op, left, right), nil

	case "call":
		callee, _ := fieldString(n, "callee")
		args, err := decodeExprSeq(file, seq(n, "args"))
		if err != nil {
			return nil, err
		}
		call := ast.NewCall(span, callee, args)
		for _, ts := range strSeq(n, "generic_args") {
			t, err := parseTypeSpec(span, ts)
			if err != nil {
				return nil, err
			}
			call.GenericArgs = append(call.GenericArgs, t)
		}
		return call, nil

	case "block":
		exprs, err := decodeExprSeq(file, seq(n, "exprs"))
		if err != nil {
			return nil, err
		}
		return ast.NewBlock(span, exprs), nil

	case "let":
		bindings, err := decodeLetBindings(file, seq(n, "bindings"))
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(file, fieldNode(n, "body"))
		if err != nil {
			return nil, err
		}
		return ast.NewLet(span, bindings, body), nil

	case "if":
		cond, err := decodeExpr(file, fieldNode(n, "cond"))
		if err != nil {
			return nil, err
		}
		then, err := decodeExpr(file, fieldNode(n, "then"))
		if err != nil {
			return nil, err
		}
		els, err := decodeExpr(file, fieldNode(n, "else"))
		if err != nil {
			return nil, err
		}
		return ast.NewIf(span, cond, then, els), nil

	case "match":
		target, err := decodeExpr(file, fieldNode(n, "target"))
		if err != nil {
			return nil, err
		}
		cases, err := decodeMatchCases(file, seq(n, "cases"))
		if err != nil {
			return nil, err
		}
		return ast.NewMatch(span, target, cases), nil

	case "lambda":
		sig, err := decodeSignature(file, n, "lambda")
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(file, fieldNode(n, "body"))
		if err != nil {
			return nil, err
		}
		return ast.NewLambda(span, sig, body), nil

	case "struct":
		name, _ := fieldString(n, "name")
		members, err := decodeStructInitMembers(file, seq(n, "members"))
		if err != nil {
			return nil, err
		}
		init := ast.NewStructInitializer(span, name, members)
		for _, ts := range strSeq(n, "generic_args") {
			t, err := parseTypeSpec(span, ts)
			if err != nil {
				return nil, err
			}
			init.GenericArgs = append(init.GenericArgs, t)
		}
		return init, nil

	case "member":
		target, err := decodeExpr(file, fieldNode(n, "target"))
		if err != nil {
			return nil, err
		}
		member, _ := fieldString(n, "member")
		return ast.NewMemberAccess(span, target, member), nil

	case "index":
		target, err := decodeExpr(file, fieldNode(n, "target"))
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(file, fieldNode(n, "index"))
		if err != nil {
			return nil, err
		}
		return ast.NewIndex(span, target, idx), nil

	case "array_generator":
		return nil, diag.NewParse(span, "list-comprehension expressions are not supported")

	default:
		return nil, diag.NewParse(span, "unknown expression kind "+kind)
	}
}

func decodeExprSeq(file string, nodes []*yaml.Node) ([]ast.Expression, error) {
	out := make([]ast.Expression, len(nodes))
	for i, n := range nodes {
		e, err := decodeExpr(file, n)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeLetBindings(file string, nodes []*yaml.Node) ([]ast.LetBinding, error) {
	out := make([]ast.LetBinding, len(nodes))
	for i, b := range nodes {
		name, _ := fieldString(b, "name")
		init, err := decodeExpr(file, fieldNode(b, "init"))
		if err != nil {
			return nil, err
		}
		var typeAnn *ast.Type
		if ts, ok := fieldString(b, "type"); ok {
			t, err := parseTypeSpec(spanOf(file, b), ts)
			if err != nil {
				return nil, err
			}
			typeAnn = &t
		}
		out[i] = ast.LetBinding{
			Name:           name,
			TypeAnnotation: typeAnn,
			Mutable:        fieldBool(b, "mutable"),
			Init:           init,
			Span:           spanOf(file, b),
		}
	}
	return out, nil
}

func decodeStructInitMembers(file string, nodes []*yaml.Node) ([]ast.StructInitMember, error) {
	out := make([]ast.StructInitMember, len(nodes))
	for i, m := range nodes {
		name, _ := fieldString(m, "name")
		value, err := decodeExpr(file, fieldNode(m, "value"))
		if err != nil {
			return nil, err
		}
		out[i] = ast.StructInitMember{Name: name, Value: value}
	}
	return out, nil
}

func decodeMatchCases(file string, nodes []*yaml.Node) ([]ast.MatchCase, error) {
	out := make([]ast.MatchCase, len(nodes))
	for i, c := range nodes {
		pattern, err := decodePattern(file, fieldNode(c, "pattern"))
		if err != nil {
			return nil, err
		}
		var guard ast.Expression
		if gn := fieldNode(c, "guard"); gn != nil {
			guard, err = decodeExpr(file, gn)
			if err != nil {
				return nil, err
			}
		}
		body, err := decodeExpr(file, fieldNode(c, "body"))
		if err != nil {
			return nil, err
		}
		out[i] = ast.MatchCase{Pattern: pattern, Guard: guard, Body: body, Span: spanOf(file, c)}
	}
	return out, nil
}

func decodePattern(file string, n *yaml.Node) (ast.Pattern, error) {
	if n == nil {
		return ast.Pattern{}, diag.NewParse(spanOf(file, n), "missing pattern")
	}
	span := spanOf(file, n)
	kind, _ := fieldString(n, "kind")
	switch kind {
	case "any":
		return ast.AnyPattern(span), nil
	case "name":
		name, _ := fieldString(n, "name")
		return ast.NamePattern(span, name), nil
	case "int":
		v, _ := fieldString(n, "value")
		iv, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return ast.Pattern{}, diag.NewParse(span, "malformed int pattern "+v)
		}
		return ast.IntPattern(span, iv), nil
	case "float":
		v, _ := fieldString(n, "value")
		fv, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ast.Pattern{}, diag.NewParse(span, "malformed float pattern "+v)
		}
		return ast.FloatPattern(span, fv), nil
	case "bool":
		return ast.BoolPattern(span, fieldBool(n, "value")), nil
	case "char":
		v, _ := fieldString(n, "value")
		r := []rune(v)
		if len(r) != 1 {
			return ast.Pattern{}, diag.NewParse(span, "char pattern must be exactly one rune")
		}
		return ast.CharPattern(span, r[0]), nil
	case "string":
		v, _ := fieldString(n, "value")
		return ast.StringPattern(span, v), nil
	case "empty_array":
		return ast.EmptyArrayPattern(span), nil
	case "array":
		head, _ := fieldString(n, "head")
		tail, _ := fieldString(n, "tail")
		return ast.ArrayPattern(span, head, tail), nil
	case "struct":
		structName, _ := fieldString(n, "struct_name")
		bindings := strSeq(n, "bindings")
		return ast.StructPattern(span, structName, bindings), nil
	default:
		return ast.Pattern{}, diag.NewParse(span, "unknown pattern kind "+kind)
	}
}

func parseUnaryOp(span diag.Span, s string) (ast.UnaryOperator, error) {
	switch s {
	case "-":
		return ast.OpNeg, nil
	case "!":
		return ast.OpNot, nil
	default:
		return 0, diag.NewParse(span, "unknown unary operator "+s)
	}
}

func parseBinaryOp(span diag.Span, s string) (ast.BinaryOperator, error) {
	switch s {
	case "+":
		return ast.OpAdd, nil
	case "-":
		return ast.OpSub, nil
	case "*":
		return ast.OpMul, nil
	case "/":
		return ast.OpDiv, nil
	case "%":
		return ast.OpMod, nil
	case "<":
		return ast.OpLT, nil
	case "<=":
		return ast.OpLTE, nil
	case ">":
		return ast.OpGT, nil
	case ">=":
		return ast.OpGTE, nil
	case "==":
		return ast.OpEq, nil
	case "!=":
		return ast.OpNotEq, nil
	case "&&":
		return ast.OpAnd, nil
	case "||":
		return ast.OpOr, nil
	default:
		return 0, diag.NewParse(span, "unknown binary operator "+s)
	}
}
