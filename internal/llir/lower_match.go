package llir

import "github.com/cobra-lang/cobra/internal/ast"

func litVar(f *Function, typ ast.Type, expr Expr) LLVar {
	v := f.NewVar(typ)
	f.Add(NewSet(v, expr))
	return v
}

func cmpEq(f *Function, a, b LLVar) LLVar {
	v := f.NewVar(ast.BoolType())
	f.Add(NewSet(v, BinaryOp{Op: ast.OpEq, Left: a, Right: b}))
	return v
}

// compilePatternTest emits the comparison a pattern needs to decide
// whether it matches target, returning nil when the pattern always
// matches (Any, a plain bind, or a direct struct destructuring).
// Mirrors the per-pattern-kind branch emission of the original's
// match_case_to_llrep.
func compilePatternTest(f *Function, p ast.Pattern, target LLVar, targetType ast.Type) *LLVar {
	switch p.Kind {
	case ast.PAny:
		return nil
	case ast.PName:
		idx, ok := targetType.IndexOf(p.Name)
		if !ok {
			return nil
		}
		switch targetType.Kind {
		case ast.TEnum:
			discr := litVar(f, ast.IntType(ast.I64), SumTypeIndex{Target: target})
			tag := litVar(f, ast.IntType(ast.I64), LitInt{Value: int64(idx)})
			cmp := cmpEq(f, discr, tag)
			return &cmp
		case ast.TSum:
			discr := litVar(f, ast.IntType(ast.I64), SumTypeIndex{Target: target})
			tag := litVar(f, ast.IntType(ast.I64), SumTypeCase{Index: idx})
			cmp := cmpEq(f, discr, tag)
			return &cmp
		}
		return nil
	case ast.PLiteralInt:
		lit := litVar(f, targetType, LitInt{Value: p.IntVal})
		cmp := cmpEq(f, target, lit)
		return &cmp
	case ast.PLiteralFloat:
		lit := litVar(f, targetType, LitFloat{Value: p.FloatVal})
		cmp := cmpEq(f, target, lit)
		return &cmp
	case ast.PLiteralBool:
		lit := litVar(f, targetType, LitBool{Value: p.BoolVal})
		cmp := cmpEq(f, target, lit)
		return &cmp
	case ast.PLiteralChar:
		lit := litVar(f, targetType, LitChar{Value: p.CharVal})
		cmp := cmpEq(f, target, lit)
		return &cmp
	case ast.PLiteralString:
		lit := litVar(f, targetType, LitString{Value: p.StringVal})
		cmp := cmpEq(f, target, lit)
		return &cmp
	case ast.PEmptyArray:
		length := litVar(f, ast.UIntType(ast.I64), ArrayLen{Target: target})
		zero := litVar(f, ast.UIntType(ast.I64), LitUInt{Value: 0})
		cmp := cmpEq(f, length, zero)
		return &cmp
	case ast.PArray:
		length := litVar(f, ast.UIntType(ast.I64), ArrayLen{Target: target})
		zero := litVar(f, ast.UIntType(ast.I64), LitUInt{Value: 0})
		cmp := f.NewVar(ast.BoolType())
		f.Add(NewSet(cmp, BinaryOp{Op: ast.OpGT, Left: length, Right: zero}))
		return &cmp
	case ast.PStruct:
		if p.StructName == "" {
			return nil
		}
		idx, ok := targetType.IndexOf(p.StructName)
		if !ok {
			return nil
		}
		discr := litVar(f, ast.IntType(ast.I64), SumTypeIndex{Target: target})
		tag := litVar(f, ast.IntType(ast.I64), SumTypeCase{Index: idx})
		cmp := cmpEq(f, discr, tag)
		return &cmp
	default:
		return nil
	}
}

// bindPatternLLIR emits the Bind instructions (and, for destructuring
// patterns, the extraction Sets feeding them) a successful pattern
// match introduces into the case body's scope.
func bindPatternLLIR(f *Function, p ast.Pattern, target LLVar, targetType ast.Type) {
	switch p.Kind {
	case ast.PAny:
		return
	case ast.PName:
		if _, ok := targetType.IndexOf(p.Name); ok {
			return
		}
		f.Add(NewBind(p.Name, target))
		f.addNamedVar(NamedVar(p.Name, targetType))
	case ast.PArray:
		elemType, _ := targetType.ElementType()
		if p.Head != "" && p.Head != "_" {
			h := f.NewVar(elemType)
			f.Add(NewSet(h, ArrayHead{Target: target}))
			f.Add(NewBind(p.Head, h))
			f.addNamedVar(NamedVar(p.Head, elemType))
		}
		if p.Tail != "" && p.Tail != "_" {
			tailType := ast.SliceType(elemType)
			t := f.NewVar(tailType)
			f.Add(NewSet(t, ArrayTail{Target: target}))
			f.Add(NewBind(p.Tail, t))
			f.addNamedVar(NamedVar(p.Tail, tailType))
		}
	case ast.PStruct:
		payload := target
		payloadType := targetType
		if p.StructName != "" && targetType.Kind == ast.TSum {
			idx, ok := targetType.IndexOf(p.StructName)
			if ok {
				caseType, _ := targetType.FindCase(p.StructName)
				payloadType = caseType.Type
				payload = f.NewVar(payloadType)
				f.Add(NewSet(payload, SumTypeStruct{Target: target, Index: idx}))
			}
		}
		for _, name := range p.Bindings {
			if name == "_" {
				continue
			}
			member, ok := payloadType.FindMember(name)
			if !ok {
				continue
			}
			v := f.NewVar(member.Type)
			f.Add(NewSet(v, StructMember{Target: payload, Member: name}))
			f.Add(NewBind(name, v))
			f.addNamedVar(NamedVar(name, member.Type))
		}
	default:
	}
}

// lowerMatch evaluates the target once, then for every case emits a
// test block (the pattern's comparison, branching either into that
// case's body or on to the next case's test) and a body block (the
// pattern's bindings followed by the lowered body, writing into the
// match's shared destination before jumping to the shared match-end
// block). Mirrors match_to_llrep's "evaluate once, one shared
// match_end_bb" structure.
func lowerMatch(f *Function, n *ast.Match) LLVar {
	target := lowerSub(f, n.Target)
	targetType := n.Target.Type()

	f.PushScope()
	dst := getDst(f, n.Typ)
	matchEnd := f.CreateBasicBlock()

	testBBs := make([]BlockRef, len(n.Cases))
	bodyBBs := make([]BlockRef, len(n.Cases))
	for i := range n.Cases {
		testBBs[i] = f.CreateBasicBlock()
		bodyBBs[i] = f.CreateBasicBlock()
	}

	first := matchEnd
	if len(n.Cases) > 0 {
		first = testBBs[0]
	}
	f.Add(NewBranch(first))

	for i, mc := range n.Cases {
		f.AddBasicBlock(testBBs[i])
		f.SetCurrentBB(testBBs[i])
		nextBB := matchEnd
		if i+1 < len(n.Cases) {
			nextBB = testBBs[i+1]
		}
		if cond := compilePatternTest(f, mc.Pattern, target, targetType); cond != nil {
			f.Add(NewBranchIf(*cond, bodyBBs[i], nextBB))
		} else {
			f.Add(NewBranch(bodyBBs[i]))
		}
	}

	for i, mc := range n.Cases {
		f.AddBasicBlock(bodyBBs[i])
		f.SetCurrentBB(bodyBBs[i])
		bindPatternLLIR(f, mc.Pattern, target, targetType)

		if mc.Guard != nil {
			guardVal := lowerSub(f, mc.Guard)
			afterGuard := f.CreateBasicBlock()
			nextBB := matchEnd
			if i+1 < len(n.Cases) {
				nextBB = testBBs[i+1]
			}
			f.Add(NewBranchIf(guardVal, afterGuard, nextBB))
			f.AddBasicBlock(afterGuard)
			f.SetCurrentBB(afterGuard)
		}

		f.PushDestination(&dst)
		if v := LowerExpr(f, mc.Body); v.Name != dst.Name {
			f.Add(NewSet(dst, VarRef{Var: v}))
		}
		f.PopDestination()
		f.Add(NewBranch(matchEnd))
	}

	f.AddBasicBlock(matchEnd)
	f.SetCurrentBB(matchEnd)
	f.PopScope()
	return dst
}
