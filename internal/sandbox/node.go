package sandbox

import (
	"fmt"
	"strings"
)

// TextNode is the Type of nodes holding a string or number child.
const TextNode = "#text"

// Node is one resolved element of a rendered frame.
type Node struct {
	Type     string         `json:"type"`
	Key      string         `json:"key,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
	Text     string         `json:"text,omitempty"`
	Children []*Node        `json:"children,omitempty"`
}

// Prop returns a prop as a string, or "" when absent.
func (n *Node) Prop(name string) string {
	v, ok := n.Props[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// TextContent concatenates the text of n and its descendants.
func (n *Node) TextContent() string {
	var b strings.Builder
	walk([]*Node{n}, func(c *Node) bool {
		if c.Type == TextNode {
			b.WriteString(c.Text)
		}
		return false
	})
	return b.String()
}

// Query finds nodes by selector (simplified): "#id", ".class" or a type name.
func Query(nodes []*Node, selector string) []*Node {
	var match func(*Node) bool
	switch {
	case strings.HasPrefix(selector, "#"):
		id := strings.TrimPrefix(selector, "#")
		match = func(n *Node) bool { return n.Prop("id") == id }
	case strings.HasPrefix(selector, "."):
		class := strings.TrimPrefix(selector, ".")
		match = func(n *Node) bool {
			for _, c := range strings.Fields(n.Prop("className")) {
				if c == class {
					return true
				}
			}
			return false
		}
	default:
		match = func(n *Node) bool { return n.Type == selector }
	}

	var found []*Node
	walk(nodes, func(n *Node) bool {
		if match(n) {
			found = append(found, n)
		}
		return false
	})
	return found
}

// First returns the first node matching selector.
func First(nodes []*Node, selector string) *Node {
	if found := Query(nodes, selector); len(found) > 0 {
		return found[0]
	}
	return nil
}

// walk visits nodes depth first until visit returns true.
func walk(nodes []*Node, visit func(*Node) bool) bool {
	for _, n := range nodes {
		if visit(n) {
			return true
		}
		if walk(n.Children, visit) {
			return true
		}
	}
	return false
}
