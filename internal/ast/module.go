package ast

import "github.com/cobra-lang/cobra/internal/diag"

// Param is a function argument: a name, declared type, and whether
// the argument may be reassigned inside the body.
type Param struct {
	Name    string
	Type    Type
	Mutable bool
	Span    diag.Span
}

// FunctionSignature is shared by Function, ExternalFunction and Lambda.
type FunctionSignature struct {
	Name       string
	Args       []Param
	ReturnType Type
	Span       diag.Span
}

// FuncType builds the Func type this signature denotes, used wherever
// a function value's type (rather than its declaration) is needed.
func (s FunctionSignature) FuncType() Type {
	args := make([]Type, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.Type
	}
	return FuncType(args, s.ReturnType)
}

// Function is a top-level (or, post-monomorphization, synthesized)
// function declaration. Generics lists the type-parameter names the
// signature/body may reference as TGeneric types; it is empty for
// already-monomorphized functions.
type Function struct {
	Sig         FunctionSignature
	Generics    []string
	Body        Expression
	TypeChecked bool
}

// ExternalFunction declares a function with no Cobra body, resolved
// against the host environment at link time.
type ExternalFunction struct {
	Sig FunctionSignature
}

// TypeDeclKind tags the variant of a module-level type declaration.
type TypeDeclKind int

const (
	DeclStruct TypeDeclKind = iota
	DeclSum
	DeclAlias
)

// SumCaseDecl is one case of a Sum type declaration, before
// resolution has turned its Members into a concrete Type.
type SumCaseDecl struct {
	Name    string
	Members []Param
	Span    diag.Span
}

// TypeDeclaration is a module-level type declaration: a struct, a sum
// type, or (the required extension beyond the original) a type
// alias. Typ is filled in by the resolver once the declaration has
// been resolved to a concrete ast.Type.
type TypeDeclaration struct {
	Kind     TypeDeclKind
	Name     string
	Generics []string
	Span     diag.Span

	Members []Param       // DeclStruct
	Cases   []SumCaseDecl // DeclSum
	Original Type         // DeclAlias: the unresolved or resolved aliased type

	Typ       Type // resolved concrete type
	Resolved  bool
}

// SymbolKind classifies how a module-level symbol was introduced,
// following the richer revision of import resolution: a plain local
// declaration, a re-exported global (an enum-only sum's bare case
// names, registered as Imports entries), or an externally linked
// symbol.
type SymbolKind int

const (
	SymbolNormal SymbolKind = iota
	SymbolGlobal
	SymbolExternal
)

// Symbol is an entry in a module-scoped symbol table: a name bound to
// a type, its mutability, and the kind of binding it is.
type Symbol struct {
	Name    string
	Typ     Type
	Mutable bool
	Kind    SymbolKind
}

// Module is the top-level unit the resolver, checker, generics and
// llir passes all operate on.
type Module struct {
	Name string

	Functions map[string]*Function
	Externals map[string]*ExternalFunction
	Types     map[string]*TypeDeclaration
	Imports   map[string]*Symbol
}

func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		Functions: make(map[string]*Function),
		Externals: make(map[string]*ExternalFunction),
		Types:     make(map[string]*TypeDeclaration),
		Imports:   make(map[string]*Symbol),
	}
}

// AddFunction registers fn, keyed by its signature name.
func (m *Module) AddFunction(fn *Function) {
	m.Functions[fn.Sig.Name] = fn
}

// AddExternal registers an external function declaration.
func (m *Module) AddExternal(ext *ExternalFunction) {
	m.Externals[ext.Sig.Name] = ext
}

// AddType registers a type declaration, keyed by name.
func (m *Module) AddType(decl *TypeDeclaration) {
	m.Types[decl.Name] = decl
}

// FunctionNames returns the registered function names in map
// iteration order is not guaranteed; callers needing determinism
// should sort the result.
func (m *Module) FunctionNames() []string {
	names := make([]string, 0, len(m.Functions))
	for name := range m.Functions {
		names = append(names, name)
	}
	return names
}
