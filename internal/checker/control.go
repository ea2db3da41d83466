package checker

import (
	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
)

func (c *Checker) checkLet(n *ast.Let, hint ast.Type) error {
	c.ctx.PushScope()
	defer c.ctx.PopScope()

	for i := range n.Bindings {
		b := &n.Bindings[i]
		bindHint := ast.UnknownType()
		if b.TypeAnnotation != nil {
			bindHint = *b.TypeAnnotation
		}
		if err := c.Check(b.Init, bindHint); err != nil {
			return err
		}
		if err := c.ctx.Add(b.Name, b.Init.Type(), b.Mutable, ast.SymbolNormal, b.Span); err != nil {
			return err
		}
	}

	err := c.Check(n.Body, hint)
	if err != nil {
		if uerr, ok := err.(*diag.Error); ok && uerr.Kind == diag.UnknownType {
			if retryErr := c.retryBinding(n, uerr); retryErr != nil {
				return retryErr
			}
			err = c.Check(n.Body, hint)
		}
	}
	if err != nil {
		return err
	}
	n.SetType(n.Body.Type())
	return nil
}

// retryBinding re-checks the one binding named by uerr with the
// expected type it carries, then updates the symbol table, mirroring
// the original's retry-on-UnknownType logic in type_check_let.
func (c *Checker) retryBinding(n *ast.Let, uerr *diag.Error) error {
	expected, ok := uerr.Expected.(ast.Type)
	if !ok {
		return uerr
	}
	for i := range n.Bindings {
		b := &n.Bindings[i]
		if b.Name != uerr.Name {
			continue
		}
		if err := c.Check(b.Init, expected); err != nil {
			return err
		}
		c.ctx.Update(b.Name, b.Init.Type())
		return nil
	}
	return uerr
}

func (c *Checker) checkIf(n *ast.If, hint ast.Type) error {
	if err := c.Check(n.Cond, ast.BoolType()); err != nil {
		return err
	}
	if n.Cond.Type().Kind != ast.TBool {
		return diag.NewType(n.Cond.Span(), "if condition must be bool")
	}
	if err := c.Check(n.Then, hint); err != nil {
		return err
	}
	if err := c.Check(n.Else, n.Then.Type()); err != nil {
		return err
	}
	thenType, elseType := n.Then.Type(), n.Else.Type()
	if !thenType.Equals(elseType) {
		if converted, ok := ast.Convert(n.Else, thenType); ok {
			n.Else = converted
		} else if converted, ok := ast.Convert(n.Then, elseType); ok {
			n.Then = converted
			thenType = elseType
		} else {
			return diag.NewType(n.Span(), "if and else branches must have the same type")
		}
	}
	n.SetType(thenType)
	return nil
}

func (c *Checker) checkMatch(n *ast.Match, hint ast.Type) error {
	if err := c.Check(n.Target, ast.UnknownType()); err != nil {
		return err
	}
	targetType := n.Target.Type()
	if !targetType.IsMatchable() {
		return diag.NewType(n.Target.Span(), "type "+targetType.String()+" cannot be matched")
	}

	var caseType ast.Type
	haveCaseType := false
	for i := range n.Cases {
		mc := &n.Cases[i]
		c.ctx.PushScope()
		if err := c.bindPattern(mc.Pattern, targetType); err != nil {
			c.ctx.PopScope()
			return err
		}
		if mc.Guard != nil {
			if err := c.Check(mc.Guard, ast.BoolType()); err != nil {
				c.ctx.PopScope()
				return err
			}
		}
		armHint := hint
		if haveCaseType {
			armHint = caseType
		}
		if err := c.Check(mc.Body, armHint); err != nil {
			c.ctx.PopScope()
			return err
		}
		c.ctx.PopScope()

		if !haveCaseType {
			caseType = mc.Body.Type()
			haveCaseType = true
			continue
		}
		if !caseType.Equals(mc.Body.Type()) {
			converted, ok := ast.Convert(mc.Body, caseType)
			if !ok {
				return diag.NewType(mc.Body.Span(), "match arms must have the same type")
			}
			mc.Body = converted
		}
	}
	if !haveCaseType {
		caseType = ast.VoidType()
	}
	n.SetType(caseType)
	return nil
}

// bindPattern validates pattern against targetType and introduces any
// names it binds into the current (innermost) scope.
func (c *Checker) bindPattern(p ast.Pattern, targetType ast.Type) error {
	switch p.Kind {
	case ast.PAny:
		return nil
	case ast.PName:
		if idx, ok := targetType.IndexOf(p.Name); ok {
			_ = idx
			return nil
		}
		return c.ctx.Add(p.Name, targetType, false, ast.SymbolNormal, p.Span)
	case ast.PLiteralInt, ast.PLiteralFloat, ast.PLiteralBool, ast.PLiteralChar, ast.PLiteralString:
		if !targetType.IsMatchable() {
			return diag.NewType(p.Span, "pattern cannot match type "+targetType.String())
		}
		return nil
	case ast.PEmptyArray:
		if !targetType.IsSequence() {
			return diag.NewType(p.Span, "[] pattern requires a sequence type")
		}
		return nil
	case ast.PArray:
		if !targetType.IsSequence() {
			return diag.NewType(p.Span, "head :: tail pattern requires a sequence type")
		}
		elem, _ := targetType.ElementType()
		if p.Head != "" && p.Head != "_" {
			if err := c.ctx.Add(p.Head, elem, false, ast.SymbolNormal, p.Span); err != nil {
				return err
			}
		}
		if p.Tail != "" && p.Tail != "_" {
			tailType := ast.SliceType(elem)
			if err := c.ctx.Add(p.Tail, tailType, false, ast.SymbolNormal, p.Span); err != nil {
				return err
			}
		}
		return nil
	case ast.PStruct:
		return c.bindStructPattern(p, targetType)
	default:
		return diag.NewOther("checker: unhandled pattern kind")
	}
}

func (c *Checker) bindStructPattern(p ast.Pattern, targetType ast.Type) error {
	var structType ast.Type
	switch targetType.Kind {
	case ast.TStruct:
		structType = targetType
	case ast.TSum:
		if p.StructName == "" {
			return diag.NewType(p.Span, "sum type pattern must name a case")
		}
		caseType, ok := targetType.FindCase(p.StructName)
		if !ok {
			return diag.NewUnknownName(p.Span, p.StructName)
		}
		structType = caseType.Type
	case ast.TEnum:
		if p.StructName == "" {
			return diag.NewType(p.Span, "enum type pattern must name a case")
		}
		if _, ok := targetType.IndexOf(p.StructName); !ok {
			return diag.NewUnknownName(p.Span, p.StructName)
		}
		if len(p.Bindings) > 0 {
			return diag.NewType(p.Span, "enum case "+p.StructName+" has no payload to bind")
		}
		return nil
	default:
		return diag.NewType(p.Span, "struct pattern requires a struct or sum type")
	}

	for _, name := range p.Bindings {
		if name == "_" {
			continue
		}
		member, ok := structType.FindMember(name)
		if !ok {
			return diag.NewUnknownName(p.Span, name)
		}
		if err := c.ctx.Add(name, member.Type, false, ast.SymbolNormal, p.Span); err != nil {
			return err
		}
	}
	return nil
}
