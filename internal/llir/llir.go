// Package llir implements Cobra's low-level IR: basic blocks of
// three-address instructions, destination-passing-style lowering from
// the typed AST, and the reference-counting bookkeeping (scoped
// DecRef cleanup lists) the original compiler's llrep module performs.
package llir

import (
	"fmt"

	"github.com/cobra-lang/cobra/internal/ast"
)

// LLVar names a typed temporary or named local.
type LLVar struct {
	Name string
	Typ  ast.Type
}

func NewVar(idx int, typ ast.Type) LLVar {
	return LLVar{Name: fmt.Sprintf("$var%d", idx), Typ: typ}
}

func NamedVar(name string, typ ast.Type) LLVar {
	return LLVar{Name: name, Typ: typ}
}

func (v LLVar) String() string {
	return fmt.Sprintf("(%s: %s)", v.Name, v.Typ)
}

func (v LLVar) Equals(o LLVar) bool {
	return v.Name == o.Name
}

// BlockRef identifies a basic block within a function.
type BlockRef int

func blockName(ref BlockRef) string {
	if ref == 0 {
		return "entry"
	}
	return fmt.Sprintf("block%d", ref)
}

// BasicBlock is a straight-line run of instructions ending in exactly
// one terminator (Branch, BranchIf, or Return).
type BasicBlock struct {
	Name         string
	Instructions []Instruction
}

// scope tracks the named vars introduced in one lexical nesting level
// and the subset of them that need a DecRef when the scope closes.
type scope struct {
	named    map[string]LLVar
	toDecRef []LLVar
}

func newScope() *scope {
	return &scope{named: make(map[string]LLVar)}
}

func (s *scope) addNamedVar(v LLVar) {
	s.named[v.Name] = v
}

func (s *scope) getNamedVar(name string) (LLVar, bool) {
	v, ok := s.named[name]
	return v, ok
}

// addDecRefTarget registers v for cleanup if it is actually named in
// this scope, reporting whether it took ownership of the target.
func (s *scope) addDecRefTarget(v LLVar) bool {
	if _, ok := s.named[v.Name]; !ok {
		return false
	}
	s.toDecRef = append(s.toDecRef, v)
	return true
}

func (s *scope) removeDecRefTarget(v LLVar) bool {
	before := len(s.toDecRef)
	kept := s.toDecRef[:0]
	for _, t := range s.toDecRef {
		if !t.Equals(v) {
			kept = append(kept, t)
		}
	}
	s.toDecRef = kept
	return len(s.toDecRef) < before
}

// cleanup emits a DecRef for every tracked target, in reverse
// construction order, the way the original's Scope::cleanup does.
func (s *scope) cleanup(f *Function) {
	for i := len(s.toDecRef) - 1; i >= 0; i-- {
		f.add(NewDecRef(s.toDecRef[i]))
	}
}

// Function is one lowered function body: a set of basic blocks plus
// the bookkeeping lowering needs while it's under construction
// (scopes for DecRef cleanup, a destination stack for
// destination-passing-style lowering).
type Function struct {
	Sig        ast.FunctionSignature
	Blocks     map[BlockRef]*BasicBlock
	BlockOrder []BlockRef
	Lambdas    []*Function

	currentBB   BlockRef
	bbCounter   int
	varCounter  int
	scopes      []*scope
	destStack   []*LLVar
}

// NewFunction creates a function with an entry block and its
// arguments already bound as named vars in the outermost scope.
func NewFunction(sig ast.FunctionSignature) *Function {
	f := &Function{
		Sig:    sig,
		Blocks: make(map[BlockRef]*BasicBlock),
		scopes: []*scope{newScope()},
	}
	entry := f.CreateBasicBlock()
	f.AddBasicBlock(entry)
	for _, arg := range sig.Args {
		f.addNamedVar(NamedVar(arg.Name, arg.Type))
	}
	return f
}

func (f *Function) IsEmpty() bool {
	bb, ok := f.Blocks[0]
	return ok && len(bb.Instructions) == 0
}

// add appends inst to the current basic block. A Return instruction
// first pops the outermost scope (emitting its DecRef cleanup)
// before being appended, mirroring the original's add() special case.
func (f *Function) add(inst Instruction) {
	if _, ok := inst.(*Return); ok {
		f.PopScope()
	}
	bb := f.Blocks[f.currentBB]
	bb.Instructions = append(bb.Instructions, inst)
}

// Add is the public entry point lowering calls to append an
// instruction to the function under construction.
func (f *Function) Add(inst Instruction) { f.add(inst) }

func (f *Function) CreateBasicBlock() BlockRef {
	ref := BlockRef(f.bbCounter)
	f.bbCounter++
	f.Blocks[ref] = &BasicBlock{Name: blockName(ref)}
	return ref
}

func (f *Function) AddBasicBlock(ref BlockRef) {
	f.BlockOrder = append(f.BlockOrder, ref)
}

func (f *Function) SetCurrentBB(ref BlockRef) {
	f.currentBB = ref
}

func (f *Function) CurrentBB() BlockRef { return f.currentBB }

func (f *Function) NewVar(typ ast.Type) LLVar {
	v := NewVar(f.varCounter, typ)
	f.varCounter++
	f.addNamedVar(v)
	return v
}

func (f *Function) PushScope() {
	f.scopes = append(f.scopes, newScope())
	f.add(NewStartScope())
}

// PopScope closes the innermost scope, emitting DecRef for every
// tracked target in reverse order, then an EndScope instruction
// unless this was the outermost (function-level) scope.
func (f *Function) PopScope() {
	if len(f.scopes) == 0 {
		panic("llir: pop of empty scope stack")
	}
	s := f.scopes[len(f.scopes)-1]
	f.scopes = f.scopes[:len(f.scopes)-1]
	s.cleanup(f)
	if len(f.scopes) > 0 {
		f.add(NewEndScope())
	}
}

func (f *Function) PushDestination(v *LLVar) {
	f.destStack = append(f.destStack, v)
}

func (f *Function) PopDestination() {
	if len(f.destStack) == 0 {
		return
	}
	f.destStack = f.destStack[:len(f.destStack)-1]
}

func (f *Function) Destination() *LLVar {
	if len(f.destStack) == 0 {
		return nil
	}
	return f.destStack[len(f.destStack)-1]
}

func (f *Function) addNamedVar(v LLVar) {
	f.scopes[len(f.scopes)-1].addNamedVar(v)
}

func (f *Function) GetNamedVar(name string) (LLVar, bool) {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if v, ok := f.scopes[i].getNamedVar(name); ok {
			return v, true
		}
	}
	return LLVar{}, false
}

// AddDecRefTarget registers v for cleanup in whichever enclosing
// scope actually owns its name, searching innermost-out.
func (f *Function) AddDecRefTarget(v LLVar) {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if f.scopes[i].addDecRefTarget(v) {
			return
		}
	}
}

// RemoveDecRefTarget un-registers v from the innermost scope's
// cleanup list (used when ownership of a temporary transfers out,
// e.g. a block's final expression value or a function's return
// value).
func (f *Function) RemoveDecRefTarget(v LLVar) bool {
	return f.scopes[len(f.scopes)-1].removeDecRefTarget(v)
}

// Module is every lowered top-level function, keyed by name.
type Module struct {
	Functions map[string]*Function
}

func NewModule() *Module {
	return &Module{Functions: make(map[string]*Function)}
}
