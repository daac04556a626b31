package mapper

import (
	"fmt"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// Locate maps a JSON Schema error at instancePath onto the YAML source.
// The returned span always has a positive line; when nothing better is found
// it points at the start of the document.
func Locate(yamlBytes []byte, instancePath string, meta ErrorMeta) (Span, error) {
	segments, err := decodeJSONPointer(instancePath)
	if err != nil {
		return Span{}, err
	}

	file, err := parser.ParseBytes(yamlBytes, 0)
	if err != nil {
		return Span{}, fmt.Errorf("yaml parse error: %w", err)
	}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return documentSpan(), nil
	}

	root := file.Docs[0].Body
	node, parent := traverse(root, segments)

	switch meta.Kind {
	case "additionalProperties":
		if node != nil && meta.Property != "" {
			if key := findKey(node, meta.Property); key != nil {
				return tokenSpan(key.GetToken(), "unknown property key"), nil
			}
		}
	case "required":
		target := node
		if target == nil {
			target = parent
		}
		if target != nil {
			return tokenSpan(target.GetToken(), fmt.Sprintf("mapping missing '%s'", meta.Property)), nil
		}
	}

	if node != nil {
		return tokenSpan(node.GetToken(), "value at "+instancePath), nil
	}
	if parent != nil {
		return tokenSpan(parent.GetToken(), "closest existing parent"), nil
	}
	return documentSpan(), nil
}

// traverse walks the AST along segments and returns the node for the last
// segment (nil when missing) together with the deepest node reached.
func traverse(root ast.Node, segments []string) (ast.Node, ast.Node) {
	current := root
	var parent ast.Node

	for _, segment := range segments {
		parent = current

		switch node := current.(type) {
		case *ast.MappingNode:
			next := ast.Node(nil)
			for _, value := range node.Values {
				if keyMatches(value.Key, segment) {
					next = value.Value
					break
				}
			}
			if next == nil {
				return nil, parent
			}
			current = next

		case *ast.MappingValueNode:
			if !keyMatches(node.Key, segment) {
				return nil, parent
			}
			current = node.Value

		case *ast.SequenceNode:
			idx := parseIndex(segment)
			if idx < 0 || idx >= len(node.Values) {
				return nil, parent
			}
			current = node.Values[idx]

		default:
			return nil, parent
		}
	}

	return current, parent
}

// findKey returns the key node named key within a mapping
func findKey(node ast.Node, key string) ast.Node {
	switch n := node.(type) {
	case *ast.MappingNode:
		for _, value := range n.Values {
			if keyMatches(value.Key, key) {
				return value.Key
			}
		}
	case *ast.MappingValueNode:
		if keyMatches(n.Key, key) {
			return n.Key
		}
	}
	return nil
}

func keyMatches(keyNode ast.MapKeyNode, segment string) bool {
	if keyNode == nil {
		return false
	}
	if tk := keyNode.GetToken(); tk != nil {
		return tk.Value == segment
	}
	return false
}

func tokenSpan(tk *token.Token, reason string) Span {
	if tk == nil || tk.Position == nil {
		span := documentSpan()
		span.Reason = reason + " (no position)"
		return span
	}
	return Span{
		Line:   tk.Position.Line,
		Column: tk.Position.Column,
		Length: len(tk.Value),
		Reason: reason,
	}
}

func documentSpan() Span {
	return Span{Line: 1, Column: 1, Reason: "document start"}
}
