package checker

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/generics"
)

func (c *Checker) monomorphizer() *generics.Monomorphizer {
	if c.mono == nil {
		c.mono = generics.NewMonomorphizer(c.module)
	}
	return c.mono
}

func (c *Checker) checkCall(n *ast.Call) error {
	if fn, ok := c.module.Functions[n.Callee]; ok {
		return c.checkCallToFunction(n, fn)
	}
	if ext, ok := c.module.Externals[n.Callee]; ok {
		return c.checkCallToSignature(n, ext.Sig, nil)
	}
	if sym, ok := c.ctx.Resolve(n.Callee); ok && sym.Typ.Kind == ast.TFunc {
		return c.checkCallToFuncValue(n, sym.Typ)
	}
	return diag.NewUnknownName(n.Span(), n.Callee)
}

func (c *Checker) checkCallToFuncValue(n *ast.Call, funcType ast.Type) error {
	if len(n.Args) != len(funcType.Args) {
		return diag.NewType(n.Span(), fmt.Sprintf("%s expects %d arguments, got %d", n.Callee, len(funcType.Args), len(n.Args)))
	}
	for i, arg := range n.Args {
		if err := c.Check(arg, funcType.Args[i]); err != nil {
			return err
		}
		if !arg.Type().Equals(funcType.Args[i]) {
			converted, ok := ast.Convert(arg, funcType.Args[i])
			if !ok {
				return diag.NewType(arg.Span(), "argument type mismatch calling "+n.Callee)
			}
			n.Args[i] = converted
		}
	}
	ret := ast.VoidType()
	if funcType.Ret != nil {
		ret = *funcType.Ret
	}
	n.SetType(ret)
	return nil
}

func (c *Checker) checkCallToSignature(n *ast.Call, sig ast.FunctionSignature, genericNames []string) error {
	if len(n.Args) != len(sig.Args) {
		return diag.NewType(n.Span(), fmt.Sprintf("%s expects %d arguments, got %d", n.Callee, len(sig.Args), len(n.Args)))
	}
	for i, arg := range n.Args {
		hint := sig.Args[i].Type
		if err := c.Check(arg, hint); err != nil {
			return err
		}
		if !arg.Type().Equals(hint) {
			converted, ok := ast.Convert(arg, hint)
			if !ok {
				return diag.NewType(arg.Span(), "argument type mismatch calling "+n.Callee)
			}
			n.Args[i] = converted
		}
	}
	n.SetType(sig.ReturnType)
	return nil
}

// checkCallToFunction resolves calls to a declared (possibly generic)
// module function. For generic functions it repeatedly fills in the
// substitution from each argument's concrete type against the
// function's declared (generic) parameter type until it stops
// growing, the way resolve_generic_args_in_call does, then
// monomorphizes a concrete instance and rewrites the call to target
// it.
func (c *Checker) checkCallToFunction(n *ast.Call, fn *ast.Function) error {
	if len(fn.Generics) == 0 {
		return c.checkCallToSignature(n, fn.Sig, nil)
	}

	if len(n.Args) != len(fn.Sig.Args) {
		return diag.NewType(n.Span(), fmt.Sprintf("%s expects %d arguments, got %d", n.Callee, len(fn.Sig.Args), len(n.Args)))
	}

	for _, arg := range n.Args {
		if err := c.Check(arg, ast.UnknownType()); err != nil {
			return err
		}
	}

	subst := generics.Subst{}
	for {
		before := len(subst)
		for i, arg := range n.Args {
			generics.FillInGenerics(arg.Type(), fn.Sig.Args[i].Type, subst)
		}
		if len(subst) == before {
			break
		}
	}

	for _, g := range fn.Generics {
		if _, ok := subst[g]; !ok {
			return diag.NewType(n.Span(), "could not infer generic parameter "+g+" calling "+n.Callee)
		}
	}

	instance, _ := c.monomorphizer().Instantiate(fn, subst)
	n.Callee = instance.Sig.Name
	n.GenericArgs = make([]ast.Type, len(fn.Generics))
	for i, g := range fn.Generics {
		n.GenericArgs[i] = subst[g]
	}

	for i, arg := range n.Args {
		expected := instance.Sig.Args[i].Type
		if !arg.Type().Equals(expected) {
			converted, ok := ast.Convert(arg, expected)
			if !ok {
				return diag.NewType(arg.Span(), "argument type mismatch calling "+n.Callee)
			}
			n.Args[i] = converted
		}
	}
	n.SetType(instance.Sig.ReturnType)
	return nil
}

// checkLambda type-checks a function literal. When hint fully
// determines the lambda's type (hint is a concrete Func type), the
// lambda is given a fresh name via uuid.NewString the way the
// original's type_check_lambda mints `lambda-<uuid>` to keep
// structurally-identical lambdas instantiated at different call sites
// from colliding.
func (c *Checker) checkLambda(n *ast.Lambda, hint ast.Type) error {
	if hint.Kind == ast.TFunc {
		for i := range n.Sig.Args {
			if i < len(hint.Args) && n.Sig.Args[i].Type.IsUnknown() {
				n.Sig.Args[i].Type = hint.Args[i]
			}
		}
		if n.Sig.ReturnType.IsUnknown() && hint.Ret != nil {
			n.Sig.ReturnType = *hint.Ret
		}
		if n.Name == "" {
			n.Name = fmt.Sprintf("lambda$%s", uuid.NewString())
			n.Sig.Name = n.Name
		}
	}

	c.ctx.PushScope()
	defer c.ctx.PopScope()
	for _, arg := range n.Sig.Args {
		if err := c.ctx.Add(arg.Name, arg.Type, arg.Mutable, ast.SymbolNormal, arg.Span); err != nil {
			return err
		}
	}

	bodyHint := n.Sig.ReturnType
	if err := c.Check(n.Body, bodyHint); err != nil {
		return err
	}
	if n.Sig.ReturnType.IsUnknown() {
		n.Sig.ReturnType = n.Body.Type()
	} else if !n.Sig.ReturnType.Equals(n.Body.Type()) {
		converted, ok := ast.Convert(n.Body, n.Sig.ReturnType)
		if !ok {
			return diag.NewType(n.Body.Span(), "lambda body type does not match declared return type")
		}
		n.Body = converted
	}
	n.SetType(n.Sig.FuncType())
	return nil
}
