// Package symbols implements the module-scoped and lexically-scoped
// name tables the checker uses. The resolver does not use them; it
// works on the module's type table directly.
package symbols

import (
	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
)

// Context is the checker's symbol table: a stack of lexical scopes for
// local bindings (function
// parameters, let bindings, match-arm bindings) backed by the
// module's function/extern/import tables for anything not locally
// shadowed.
type Context struct {
	module *ast.Module
	scopes []map[string]ast.Symbol
}

func NewContext(module *ast.Module) *Context {
	return &Context{module: module, scopes: []map[string]ast.Symbol{make(map[string]ast.Symbol)}}
}

func (c *Context) Module() *ast.Module { return c.module }

func (c *Context) PushScope() {
	c.scopes = append(c.scopes, make(map[string]ast.Symbol))
}

func (c *Context) PopScope() {
	if len(c.scopes) == 1 {
		panic("symbols: pop of the outermost scope")
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// Add binds name in the innermost scope. It is not an error to shadow
// a binding from an outer scope, only one in the same scope.
func (c *Context) Add(name string, typ ast.Type, mutable bool, kind ast.SymbolKind, span diag.Span) error {
	top := c.scopes[len(c.scopes)-1]
	if _, exists := top[name]; exists {
		return diag.NewType(span, "redefinition of "+name)
	}
	top[name] = ast.Symbol{Name: name, Typ: typ, Mutable: mutable, Kind: kind}
	return nil
}

// Update replaces the recorded type of an already-bound name,
// searching innermost-out. Used by the checker's UnknownType retry in
// Let, where a binding's type is only known after its first attempt
// to check the body. Reports whether name was found.
func (c *Context) Update(name string, typ ast.Type) bool {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if sym, ok := c.scopes[i][name]; ok {
			sym.Typ = typ
			c.scopes[i][name] = sym
			return true
		}
	}
	return false
}

// Resolve looks up name: lexical scopes innermost-out, then the
// module's functions, externals, and imports.
func (c *Context) Resolve(name string) (ast.Symbol, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if sym, ok := c.scopes[i][name]; ok {
			return sym, true
		}
	}
	if fn, ok := c.module.Functions[name]; ok {
		return ast.Symbol{Name: name, Typ: fn.Sig.FuncType(), Kind: ast.SymbolNormal}, true
	}
	if ext, ok := c.module.Externals[name]; ok {
		return ast.Symbol{Name: name, Typ: ext.Sig.FuncType(), Kind: ast.SymbolExternal}, true
	}
	if sym, ok := c.module.Imports[name]; ok {
		return *sym, true
	}
	return ast.Symbol{}, false
}
