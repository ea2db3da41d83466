package checker

import (
	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/resolver"
)

// CheckModule runs the resolver to a fix point, then type-checks
// every not-yet-checked, non-generic function, repeating while new
// functions keep appearing in the module (checking a call to a
// generic function monomorphizes a fresh concrete instance, which
// itself then needs checking), mirroring the original's
// type_check_module outer loop.
func CheckModule(module *ast.Module) error {
	if err := resolver.ResolveTypes(module); err != nil {
		return err
	}

	c := New(module)
	for {
		count := len(module.Functions)
		for _, fn := range module.Functions {
			if fn.TypeChecked || len(fn.Generics) > 0 {
				continue
			}
			if err := c.CheckFunction(fn); err != nil {
				return err
			}
		}
		if len(module.Functions) == count {
			break
		}
	}
	return nil
}

// CheckFunction type-checks a single non-generic function's body
// against its declared return type.
func (c *Checker) CheckFunction(fn *ast.Function) error {
	c.ctx.PushScope()
	defer c.ctx.PopScope()
	for _, arg := range fn.Sig.Args {
		if err := c.ctx.Add(arg.Name, arg.Type, arg.Mutable, ast.SymbolNormal, arg.Span); err != nil {
			return err
		}
	}
	if err := c.Check(fn.Body, fn.Sig.ReturnType); err != nil {
		return err
	}
	if !fn.Sig.ReturnType.Equals(fn.Body.Type()) {
		converted, ok := ast.Convert(fn.Body, fn.Sig.ReturnType)
		if !ok {
			return diag.NewType(fn.Body.Span(), "function "+fn.Sig.Name+" returns the wrong type")
		}
		fn.Body = converted
	}
	fn.TypeChecked = true
	return nil
}
