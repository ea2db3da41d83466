package loader

import (
	"gopkg.in/yaml.v3"

	"github.com/cobra-lang/cobra/internal/diag"
)

func spanOf(file string, n *yaml.Node) diag.Span {
	if n == nil {
		return diag.NewSpan(file, diag.Position{}, diag.Position{})
	}
	pos := diag.Position{Line: n.Line, Col: n.Column}
	return diag.NewSpan(file, pos, pos)
}

// fieldNode looks up key in a YAML mapping node, returning nil if n
// isn't a mapping or doesn't have the key.
func fieldNode(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func fieldString(n *yaml.Node, key string) (string, bool) {
	f := fieldNode(n, key)
	if f == nil {
		return "", false
	}
	return f.Value, true
}

func fieldBool(n *yaml.Node, key string) bool {
	v, ok := fieldString(n, key)
	return ok && v == "true"
}

// seq returns the elements of a sequence-valued field, or nil if
// absent.
func seq(n *yaml.Node, key string) []*yaml.Node {
	f := fieldNode(n, key)
	if f == nil || f.Kind != yaml.SequenceNode {
		return nil
	}
	return f.Content
}

func strSeq(n *yaml.Node, key string) []string {
	items := seq(n, key)
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}
