package generics

import (
	"github.com/cobra-lang/cobra/internal/ast"
)

// ApplyExpr deep-copies e with every node's Type substituted per s and
// every nested structural type (call generic args, struct-initializer
// generic args, let-binding annotations) substituted too. Used to
// clone a generic function's body for a concrete instantiation.
func ApplyExpr(e ast.Expression, s Subst) ast.Expression {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.IntLit:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		return &c
	case *ast.UIntLit:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		return &c
	case *ast.FloatLit:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		return &c
	case *ast.BoolLit:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		return &c
	case *ast.CharLit:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		return &c
	case *ast.StringLit:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		return &c
	case *ast.NilLit:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		return &c
	case *ast.ArrayLit:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.Elements = make([]ast.Expression, len(n.Elements))
		for i, el := range n.Elements {
			c.Elements[i] = ApplyExpr(el, s)
		}
		return &c
	case *ast.NameRef:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		return &c
	case *ast.UnaryOp:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.Operand = ApplyExpr(n.Operand, s)
		return &c
	case *ast.BinaryOp:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.Left = ApplyExpr(n.Left, s)
		c.Right = ApplyExpr(n.Right, s)
		return &c
	case *ast.Call:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.Args = make([]ast.Expression, len(n.Args))
		for i, a := range n.Args {
			c.Args[i] = ApplyExpr(a, s)
		}
		c.GenericArgs = make([]ast.Type, len(n.GenericArgs))
		for i, g := range n.GenericArgs {
			c.GenericArgs[i] = ApplyType(g, s)
		}
		return &c
	case *ast.Block:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.Expressions = make([]ast.Expression, len(n.Expressions))
		for i, sub := range n.Expressions {
			c.Expressions[i] = ApplyExpr(sub, s)
		}
		return &c
	case *ast.Let:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.Bindings = make([]ast.LetBinding, len(n.Bindings))
		for i, b := range n.Bindings {
			nb := b
			if b.TypeAnnotation != nil {
				t := ApplyType(*b.TypeAnnotation, s)
				nb.TypeAnnotation = &t
			}
			nb.Init = ApplyExpr(b.Init, s)
			c.Bindings[i] = nb
		}
		c.Body = ApplyExpr(n.Body, s)
		return &c
	case *ast.If:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.Cond = ApplyExpr(n.Cond, s)
		c.Then = ApplyExpr(n.Then, s)
		c.Else = ApplyExpr(n.Else, s)
		return &c
	case *ast.Match:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.Target = ApplyExpr(n.Target, s)
		c.Cases = make([]ast.MatchCase, len(n.Cases))
		for i, mc := range n.Cases {
			nc := mc
			if mc.Guard != nil {
				nc.Guard = ApplyExpr(mc.Guard, s)
			}
			nc.Body = ApplyExpr(mc.Body, s)
			c.Cases[i] = nc
		}
		return &c
	case *ast.Lambda:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.Sig = applySig(n.Sig, s)
		c.Body = ApplyExpr(n.Body, s)
		return &c
	case *ast.StructInitializer:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.GenericArgs = make([]ast.Type, len(n.GenericArgs))
		for i, g := range n.GenericArgs {
			c.GenericArgs[i] = ApplyType(g, s)
		}
		c.Members = make([]ast.StructInitMember, len(n.Members))
		for i, m := range n.Members {
			c.Members[i] = ast.StructInitMember{Name: m.Name, Value: ApplyExpr(m.Value, s)}
		}
		return &c
	case *ast.MemberAccess:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.Target = ApplyExpr(n.Target, s)
		return &c
	case *ast.Index:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.Target = ApplyExpr(n.Target, s)
		c.IndexExpr = ApplyExpr(n.IndexExpr, s)
		return &c
	case *ast.Conversion:
		c := *n
		c.Typ = ApplyType(n.Typ, s)
		c.Inner = ApplyExpr(n.Inner, s)
		return &c
	default:
		return e
	}
}

func applySig(sig ast.FunctionSignature, s Subst) ast.FunctionSignature {
	c := sig
	c.Args = make([]ast.Param, len(sig.Args))
	for i, a := range sig.Args {
		c.Args[i] = ast.Param{Name: a.Name, Type: ApplyType(a.Type, s), Mutable: a.Mutable, Span: a.Span}
	}
	c.ReturnType = ApplyType(sig.ReturnType, s)
	return c
}

// Monomorphizer clones generic functions into concrete instances,
// interning by (original name, substitution) so the same
// instantiation is never synthesized twice.
type Monomorphizer struct {
	module    *ast.Module
	instances map[string]*ast.Function
}

func NewMonomorphizer(module *ast.Module) *Monomorphizer {
	return &Monomorphizer{module: module, instances: make(map[string]*ast.Function)}
}

// Instantiate returns the monomorphized function for (fn, s),
// synthesizing and registering it in the module the first time this
// exact (name, substitution) pair is requested. The second return
// value reports whether this call created a new instance.
func (m *Monomorphizer) Instantiate(fn *ast.Function, s Subst) (*ast.Function, bool) {
	mangled := MangledName(fn.Sig.Name, s)
	key := fn.Sig.Name + "|" + s.Key()
	if existing, ok := m.instances[key]; ok {
		return existing, false
	}
	if existing, ok := m.module.Functions[mangled]; ok {
		m.instances[key] = existing
		return existing, false
	}

	clone := &ast.Function{
		Sig:         applySig(fn.Sig, s),
		Generics:    nil,
		Body:        ApplyExpr(fn.Body, s),
		TypeChecked: false,
	}
	clone.Sig.Name = mangled
	m.instances[key] = clone
	m.module.AddFunction(clone)
	return clone, true
}
