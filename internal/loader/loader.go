// Package loader reads a module description from YAML into an
// ast.Module, the untyped-so-far tree the resolver consumes. Cobra's
// own lexer and parser are out of scope, so this package plays their
// role using a compact YAML schema instead of Cobra source text: a
// `module:` name, `types:`, `functions:`, and `externs:` sections,
// with expression and pattern trees keyed by a `kind:` discriminator
// field that names the ast.Expression/ast.Pattern constructor to use.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
)

// Load reads and decodes the module description at path.
func Load(path string) (*ast.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return LoadBytes(path, data)
}

// LoadBytes decodes a module description already read into memory.
// file is used only to stamp source positions into diag.Span values.
func LoadBytes(file string, data []byte) (*ast.Module, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loader: %s: %w", file, err)
	}
	if len(doc.Content) == 0 {
		return nil, diag.NewParse(spanOf(file, nil), "empty module document")
	}
	root := doc.Content[0]

	name, _ := fieldString(root, "module")
	if name == "" {
		name = "main"
	}
	mod := ast.NewModule(name)

	for _, tn := range seq(root, "types") {
		decl, err := decodeTypeDeclaration(file, tn)
		if err != nil {
			return nil, err
		}
		if _, exists := mod.Types[decl.Name]; exists {
			return nil, diag.NewParse(spanOf(file, tn), "duplicate type declaration "+decl.Name)
		}
		mod.Types[decl.Name] = decl
	}

	for _, fn := range seq(root, "functions") {
		f, err := decodeFunction(file, fn)
		if err != nil {
			return nil, err
		}
		if _, exists := mod.Functions[f.Sig.Name]; exists {
			return nil, diag.NewParse(spanOf(file, fn), "duplicate function declaration "+f.Sig.Name)
		}
		mod.Functions[f.Sig.Name] = f
	}

	for _, en := range seq(root, "externs") {
		e, err := decodeExternal(file, en)
		if err != nil {
			return nil, err
		}
		if _, exists := mod.Externals[e.Sig.Name]; exists {
			return nil, diag.NewParse(spanOf(file, en), "duplicate extern declaration "+e.Sig.Name)
		}
		mod.Externals[e.Sig.Name] = e
	}

	return mod, nil
}
