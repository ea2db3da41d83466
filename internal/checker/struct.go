package checker

import (
	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/generics"
)

// checkStructInitializer resolves n.Name either directly to a struct
// declaration, or to one case of some sum declaration (a sum-case
// constructor call looks identical to a struct initializer at the
// source level, per the original's type_check_struct_initializer).
// When the resolved shape is generic, member values fill in the
// substitution the same way FillInGenerics fills call arguments.
func (c *Checker) checkStructInitializer(n *ast.StructInitializer, hint ast.Type) error {
	outerType, payloadType, isSumCase, err := c.resolveInitializerTarget(n.Name)
	if err != nil {
		return err
	}

	for i := range n.Members {
		if err := c.Check(n.Members[i].Value, ast.UnknownType()); err != nil {
			return err
		}
	}

	if payloadType.IsGeneric() {
		subst := generics.Subst{}
		for _, m := range n.Members {
			member, ok := payloadType.FindMember(m.Name)
			if !ok {
				continue
			}
			generics.FillInGenerics(m.Value.Type(), member.Type, subst)
		}
		payloadType = generics.ApplyType(payloadType, subst)
		if isSumCase {
			outerType = generics.ApplyType(outerType, subst)
		} else {
			outerType = payloadType
		}
	}

	for i := range n.Members {
		member, ok := payloadType.FindMember(n.Members[i].Name)
		if !ok {
			return diag.NewUnknownName(n.Members[i].Value.Span(), n.Members[i].Name)
		}
		if !n.Members[i].Value.Type().Equals(member.Type) {
			converted, ok := ast.Convert(n.Members[i].Value, member.Type)
			if !ok {
				return diag.NewType(n.Members[i].Value.Span(), "member "+n.Members[i].Name+" has the wrong type")
			}
			n.Members[i].Value = converted
		}
	}

	n.SetType(outerType)
	return nil
}

// resolveInitializerTarget returns (outerType, payloadStructType,
// isSumCase). outerType is what the whole initializer expression's
// Type becomes: the struct type itself for a direct struct
// initializer, or the parent Sum type for a sum-case constructor.
func (c *Checker) resolveInitializerTarget(name string) (ast.Type, ast.Type, bool, error) {
	if decl, ok := c.module.Types[name]; ok && decl.Kind == ast.DeclStruct {
		return decl.Typ, decl.Typ, false, nil
	}
	for _, decl := range c.module.Types {
		if decl.Kind != ast.DeclSum {
			continue
		}
		if caseType, ok := decl.Typ.FindCase(name); ok {
			if caseType.Type.Kind != ast.TStruct {
				return ast.Type{}, ast.Type{}, false, diag.NewType(diag.Span{}, "case "+name+" has no payload to initialize")
			}
			return decl.Typ, caseType.Type, true, nil
		}
	}
	return ast.Type{}, ast.Type{}, false, diag.NewUnknownName(diag.Span{}, name)
}
