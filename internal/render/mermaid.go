package render

import (
	"fmt"
	"strings"
)

// MermaidStateDiagram renders g as a Mermaid `stateDiagram-v2`, for
// ATN sub-graphs (spec.md §4.8).
func MermaidStateDiagram(g Graph) string {
	var b strings.Builder
	b.WriteString("stateDiagram-v2\n")
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "  state \"%s\" as %s\n", escapeMermaid(n.Label), mermaidIdent(n.ID))
	}
	for _, e := range g.Edges {
		if e.Label != "" {
			fmt.Fprintf(&b, "  %s --> %s : %s\n", mermaidIdent(e.From), mermaidIdent(e.To), escapeMermaid(e.Label))
		} else {
			fmt.Fprintf(&b, "  %s --> %s\n", mermaidIdent(e.From), mermaidIdent(e.To))
		}
	}
	return b.String()
}

// MermaidGraphLR renders g as a Mermaid `graph LR`, for call graphs
// (spec.md §4.8).
func MermaidGraphLR(g Graph) string {
	var b strings.Builder
	b.WriteString("graph LR\n")
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", mermaidIdent(n.ID), escapeMermaid(n.Label))
	}
	for _, e := range g.Edges {
		if e.Label != "" {
			fmt.Fprintf(&b, "  %s -->|%s| %s\n", mermaidIdent(e.From), escapeMermaid(e.Label), mermaidIdent(e.To))
		} else {
			fmt.Fprintf(&b, "  %s --> %s\n", mermaidIdent(e.From), mermaidIdent(e.To))
		}
	}
	return b.String()
}

// mermaidIdent maps an arbitrary node id to a Mermaid-safe bare
// identifier (alphanumeric + underscore only).
func mermaidIdent(s string) string {
	var b strings.Builder
	b.WriteByte('n')
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
