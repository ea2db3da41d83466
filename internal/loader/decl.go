package loader

import (
	"gopkg.in/yaml.v3"

	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
)

// decodeSignature builds a FunctionSignature from n's args/return
// fields. what names the kind of construct being decoded ("function",
// "extern" or "lambda"); it is also used as the signature's Name when
// n has no name field.
func decodeSignature(file string, n *yaml.Node, what string) (ast.FunctionSignature, error) {
	span := spanOf(file, n)
	name, _ := fieldString(n, "name")
	if name == "" {
		name = what
	}
	args, err := decodeParams(file, seq(n, "args"))
	if err != nil {
		return ast.FunctionSignature{}, err
	}
	var ret ast.Type
	if rs, ok := fieldString(n, "return"); ok {
		ret, err = parseTypeSpec(span, rs)
		if err != nil {
			return ast.FunctionSignature{}, err
		}
	} else {
		ret = ast.VoidType()
	}
	return ast.FunctionSignature{Name: name, Args: args, ReturnType: ret, Span: span}, nil
}

func decodeParams(file string, nodes []*yaml.Node) ([]ast.Param, error) {
	out := make([]ast.Param, len(nodes))
	for i, p := range nodes {
		pname, _ := fieldString(p, "name")
		ts, ok := fieldString(p, "type")
		if !ok {
			return nil, diag.NewParse(spanOf(file, p), "parameter "+pname+" is missing a type")
		}
		t, err := parseTypeSpec(spanOf(file, p), ts)
		if err != nil {
			return nil, err
		}
		out[i] = ast.Param{Name: pname, Type: t, Mutable: fieldBool(p, "mutable"), Span: spanOf(file, p)}
	}
	return out, nil
}

// decodeFunction turns a `functions:` entry into an ast.Function,
// including its (possibly empty) Generics list.
func decodeFunction(file string, n *yaml.Node) (*ast.Function, error) {
	sig, err := decodeSignature(file, n, "function")
	if err != nil {
		return nil, err
	}
	body, err := decodeExpr(file, fieldNode(n, "body"))
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Sig:      sig,
		Generics: strSeq(n, "generics"),
		Body:     body,
	}, nil
}

func decodeExternal(file string, n *yaml.Node) (*ast.ExternalFunction, error) {
	sig, err := decodeSignature(file, n, "extern")
	if err != nil {
		return nil, err
	}
	return &ast.ExternalFunction{Sig: sig}, nil
}

// decodeTypeDeclaration turns a `types:` entry into an
// ast.TypeDeclaration, dispatching on its `kind` field.
func decodeTypeDeclaration(file string, n *yaml.Node) (*ast.TypeDeclaration, error) {
	span := spanOf(file, n)
	name, _ := fieldString(n, "name")
	if name == "" {
		return nil, diag.NewParse(span, "type declaration is missing a name")
	}
	kindStr, _ := fieldString(n, "kind")
	decl := &ast.TypeDeclaration{
		Name:     name,
		Generics: strSeq(n, "generics"),
		Span:     span,
	}
	switch kindStr {
	case "struct":
		decl.Kind = ast.DeclStruct
		members, err := decodeParams(file, seq(n, "members"))
		if err != nil {
			return nil, err
		}
		decl.Members = members
	case "sum":
		decl.Kind = ast.DeclSum
		cases, err := decodeSumCases(file, seq(n, "cases"))
		if err != nil {
			return nil, err
		}
		decl.Cases = cases
	case "alias":
		decl.Kind = ast.DeclAlias
		os, ok := fieldString(n, "original")
		if !ok {
			return nil, diag.NewParse(span, "type alias "+name+" is missing an original type")
		}
		orig, err := parseTypeSpec(span, os)
		if err != nil {
			return nil, err
		}
		decl.Original = orig
	default:
		return nil, diag.NewParse(span, "unknown type declaration kind "+kindStr)
	}
	return decl, nil
}

func decodeSumCases(file string, nodes []*yaml.Node) ([]ast.SumCaseDecl, error) {
	out := make([]ast.SumCaseDecl, len(nodes))
	for i, c := range nodes {
		name, _ := fieldString(c, "name")
		members, err := decodeParams(file, seq(c, "members"))
		if err != nil {
			return nil, err
		}
		out[i] = ast.SumCaseDecl{Name: name, Members: members, Span: spanOf(file, c)}
	}
	return out, nil
}
