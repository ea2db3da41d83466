// Package checker implements Cobra's bidirectional type checker: a
// recursive check(expr, hint) walk over the typed-AST tagged union
// that fills in every node's Type and reports diag.Type /
// diag.UnknownName / diag.UnknownType errors, grounded on the
// original compiler's typechecker pass.
package checker

import (
	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/generics"
	"github.com/cobra-lang/cobra/internal/symbols"
)

// Checker threads the symbol context and the module being checked
// through every Check call.
type Checker struct {
	ctx    *symbols.Context
	module *ast.Module
	mono   *generics.Monomorphizer
}

func New(module *ast.Module) *Checker {
	return &Checker{ctx: symbols.NewContext(module), module: module}
}

// Check type-checks e, filling in its Type (and the Type of every
// sub-expression), using hint as the expected type when the
// expression's own shape doesn't determine it (an empty array
// literal, a lambda with no annotated arg types, nil).
func (c *Checker) Check(e ast.Expression, hint ast.Type) error {
	switch n := e.(type) {
	case *ast.IntLit:
		n.SetType(ast.IntType(ast.I64))
		return nil
	case *ast.UIntLit:
		n.SetType(ast.UIntType(ast.I64))
		return nil
	case *ast.FloatLit:
		n.SetType(ast.FloatTypeOf(ast.F64))
		return nil
	case *ast.BoolLit:
		n.SetType(ast.BoolType())
		return nil
	case *ast.CharLit:
		n.SetType(ast.CharType())
		return nil
	case *ast.StringLit:
		n.SetType(ast.StringType())
		return nil
	case *ast.NilLit:
		return c.checkNil(n, hint)
	case *ast.ArrayLit:
		return c.checkArrayLit(n, hint)
	case *ast.NameRef:
		return c.checkName(n, hint)
	case *ast.UnaryOp:
		return c.checkUnaryOp(n)
	case *ast.BinaryOp:
		return c.checkBinaryOp(n)
	case *ast.Call:
		return c.checkCall(n)
	case *ast.Block:
		return c.checkBlock(n, hint)
	case *ast.Let:
		return c.checkLet(n, hint)
	case *ast.If:
		return c.checkIf(n, hint)
	case *ast.Match:
		return c.checkMatch(n, hint)
	case *ast.Lambda:
		return c.checkLambda(n, hint)
	case *ast.StructInitializer:
		return c.checkStructInitializer(n, hint)
	case *ast.MemberAccess:
		return c.checkMemberAccess(n)
	case *ast.Index:
		return c.checkIndex(n)
	case *ast.Conversion:
		return c.Check(n.Inner, hint)
	default:
		return diag.NewOther("checker: unhandled expression kind")
	}
}

func (c *Checker) checkNil(n *ast.NilLit, hint ast.Type) error {
	if hint.Kind == ast.TOptional || hint.Kind == ast.TPointer {
		n.SetType(hint)
		return nil
	}
	n.SetType(ast.OptionalType(ast.UnknownType()))
	return nil
}

func (c *Checker) checkArrayLit(n *ast.ArrayLit, hint ast.Type) error {
	var elemHint ast.Type
	if hint.Kind == ast.TArray || hint.Kind == ast.TSlice {
		if hint.Elem != nil {
			elemHint = *hint.Elem
		}
	}
	var elemType ast.Type
	for i, el := range n.Elements {
		if err := c.Check(el, elemHint); err != nil {
			return err
		}
		if i == 0 {
			elemType = el.Type()
		} else if !elemType.Equals(el.Type()) {
			converted, ok := ast.Convert(el, elemType)
			if !ok {
				return diag.NewType(el.Span(), "array elements must all have the same type")
			}
			n.Elements[i] = converted
		}
	}
	if len(n.Elements) == 0 {
		elemType = elemHint
	}
	n.SetType(ast.ArrayType(elemType, len(n.Elements)))
	return nil
}

// checkName resolves a bound name, a sum-case or enum-case
// constructor, or the `_` wildcard (always type Unknown, valid only
// as a match pattern target, never as a value expression).
func (c *Checker) checkName(n *ast.NameRef, hint ast.Type) error {
	if n.Name == "_" {
		n.SetType(ast.UnknownType())
		return nil
	}
	sym, ok := c.ctx.Resolve(n.Name)
	if !ok {
		return diag.NewUnknownName(n.Span(), n.Name)
	}
	if sym.Typ.IsGeneric() && !hint.IsUnknown() && !hint.IsGeneric() {
		return diag.NewUnknownType(n.Span(), n.Name, hint)
	}
	n.EnumCase = sym.Kind == ast.SymbolGlobal
	n.SetType(sym.Typ)
	return nil
}

func (c *Checker) checkUnaryOp(n *ast.UnaryOp) error {
	if err := c.Check(n.Operand, ast.UnknownType()); err != nil {
		return err
	}
	operandType := n.Operand.Type()
	switch n.Op {
	case ast.OpNeg:
		if !operandType.IsNumeric() {
			return diag.NewType(n.Span(), "unary - requires a numeric operand")
		}
	case ast.OpNot:
		if operandType.Kind != ast.TBool {
			return diag.NewType(n.Span(), "unary ! requires a bool operand")
		}
	}
	n.SetType(operandType)
	return nil
}

// additionType implements the original's addition_type table: `+` is
// also defined between two Chars (string concatenation sugar aside,
// Char+Char still yields Char per the original grammar).
func additionType(lhs, rhs ast.Type) (ast.Type, bool) {
	if lhs.Kind == ast.TChar && rhs.Kind == ast.TChar {
		return ast.CharType(), true
	}
	if lhs.IsNumeric() && lhs.Equals(rhs) {
		return lhs, true
	}
	return ast.Type{}, false
}

func (c *Checker) checkBinaryOp(n *ast.BinaryOp) error {
	if err := c.Check(n.Left, ast.UnknownType()); err != nil {
		return err
	}
	if err := c.Check(n.Right, ast.UnknownType()); err != nil {
		return err
	}
	lhs, rhs := n.Left.Type(), n.Right.Type()

	if !lhs.Equals(rhs) {
		if converted, ok := ast.Convert(n.Right, lhs); ok {
			n.Right = converted
			rhs = lhs
		} else if converted, ok := ast.Convert(n.Left, rhs); ok {
			n.Left = converted
			lhs = rhs
		}
	}

	switch n.Op {
	case ast.OpAdd:
		result, ok := additionType(lhs, rhs)
		if !ok {
			return diag.NewType(n.Span(), "+ requires two numeric operands of the same type, or two chars")
		}
		n.SetType(result)
		return nil
	case ast.OpSub, ast.OpMul, ast.OpDiv:
		if !lhs.IsNumeric() || !lhs.Equals(rhs) {
			return diag.NewType(n.Span(), n.Op.String()+" requires two numeric operands of the same type")
		}
		n.SetType(lhs)
		return nil
	case ast.OpMod:
		if (lhs.Kind != ast.TInt && lhs.Kind != ast.TUInt) || !lhs.Equals(rhs) {
			return diag.NewType(n.Span(), "% requires two integer operands of the same type")
		}
		n.SetType(lhs)
		return nil
	case ast.OpLT, ast.OpLTE, ast.OpGT, ast.OpGTE:
		if !lhs.IsNumeric() || !lhs.Equals(rhs) {
			return diag.NewType(n.Span(), "comparison requires two numeric operands of the same type")
		}
		n.SetType(ast.BoolType())
		return nil
	case ast.OpEq, ast.OpNotEq:
		if !lhs.Equals(rhs) {
			return diag.NewType(n.Span(), "== and != require operands of the same type")
		}
		n.SetType(ast.BoolType())
		return nil
	case ast.OpAnd, ast.OpOr:
		if lhs.Kind != ast.TBool || rhs.Kind != ast.TBool {
			return diag.NewType(n.Span(), "&& and || require bool operands")
		}
		n.SetType(ast.BoolType())
		return nil
	default:
		return diag.NewType(n.Span(), "unsupported binary operator")
	}
}

func (c *Checker) checkBlock(n *ast.Block, hint ast.Type) error {
	if len(n.Expressions) == 0 {
		n.SetType(ast.VoidType())
		return nil
	}
	for i, sub := range n.Expressions {
		h := ast.UnknownType()
		if i == len(n.Expressions)-1 {
			h = hint
		}
		if err := c.Check(sub, h); err != nil {
			return err
		}
	}
	n.SetType(n.Expressions[len(n.Expressions)-1].Type())
	return nil
}

func (c *Checker) checkMemberAccess(n *ast.MemberAccess) error {
	if err := c.Check(n.Target, ast.UnknownType()); err != nil {
		return err
	}
	targetType := n.Target.Type()
	if typ, ok := targetType.GetPropertyType(n.Member); ok {
		n.SetType(typ)
		return nil
	}
	return diag.NewType(n.Span(), "no member or property "+n.Member+" on type "+targetType.String())
}

// checkIndex implements the ArrayIndex variant of the MemberAccess
// path grammar: a computed-subscript read off a sequence, requiring
// an integer index expression.
func (c *Checker) checkIndex(n *ast.Index) error {
	if err := c.Check(n.Target, ast.UnknownType()); err != nil {
		return err
	}
	targetType := n.Target.Type()
	if !targetType.IsSequence() {
		return diag.NewType(n.Span(), "indexing requires an array or slice, got "+targetType.String())
	}
	if err := c.Check(n.IndexExpr, ast.UnknownType()); err != nil {
		return err
	}
	indexType := n.IndexExpr.Type()
	if indexType.Kind != ast.TInt && indexType.Kind != ast.TUInt {
		return diag.NewType(n.IndexExpr.Span(), "indexing must be done with an integer expression")
	}
	elem, _ := targetType.ElementType()
	n.SetType(elem)
	return nil
}
