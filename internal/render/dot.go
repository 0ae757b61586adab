package render

import (
	"fmt"
	"strings"
)

// DOT serializes g as a `digraph` (directed) or `graph` (undirected),
// one node declaration per state id before any edge mentioning it, all
// labels escaped for DOT syntax (spec.md §4.8 DOT rendering rules (a)-(c)).
func DOT(g Graph, directed bool) string {
	var b strings.Builder
	kw, arrow := "graph", "--"
	if directed {
		kw, arrow = "digraph", "->"
	}
	name := g.Name
	if name == "" {
		name = "G"
	}
	fmt.Fprintf(&b, "%s %s {\n", kw, dotIdent(name))
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "  %s [label=\"%s\"];\n", dotIdent(n.ID), escapeDOT(n.Label))
	}
	for _, e := range g.Edges {
		if e.Label != "" {
			fmt.Fprintf(&b, "  %s %s %s [label=\"%s\"];\n", dotIdent(e.From), arrow, dotIdent(e.To), escapeDOT(e.Label))
		} else {
			fmt.Fprintf(&b, "  %s %s %s;\n", dotIdent(e.From), arrow, dotIdent(e.To))
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// dotIdent produces a safe DOT identifier for an arbitrary node id by
// quoting it; DOT accepts quoted strings as identifiers anywhere a
// bare identifier is legal.
func dotIdent(s string) string {
	return `"` + escapeDOT(s) + `"`
}
