package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/odvcencio/antlrlens/internal/atn"
	"github.com/odvcencio/antlrlens/internal/interp"
)

// LISP renders t as `(ruleName child1 child2 …)`, with an optional
// `:ruleIndex` suffix (spec.md §4.8). Terminals render as their literal
// text, or as a quoted/escaped string when the text contains whitespace
// or parentheses; EOF renders as `<EOF>`.
func LISP(t interp.ParseTree, ruleIndex func(name string) (int, bool), withIndex bool) string {
	var b strings.Builder
	writeLISP(&b, t, ruleIndex, withIndex)
	return b.String()
}

func writeLISP(b *strings.Builder, t interp.ParseTree, ruleIndex func(string) (int, bool), withIndex bool) {
	switch n := t.(type) {
	case *interp.RuleNode:
		b.WriteByte('(')
		b.WriteString(n.RuleName)
		if withIndex && ruleIndex != nil {
			if idx, ok := ruleIndex(n.RuleName); ok {
				fmt.Fprintf(b, ":%d", idx)
			}
		}
		for _, c := range n.Children {
			b.WriteByte(' ')
			writeLISP(b, c, ruleIndex, withIndex)
		}
		b.WriteByte(')')
	case *interp.TerminalNode:
		b.WriteString(lispTerminalText(n.Token))
	case *interp.ErrorNode:
		b.WriteString("<ERROR>")
	}
}

func lispTerminalText(tok interp.Token) string {
	if tok.Type == atn.EOFType {
		return "<EOF>"
	}
	if needsLISPEscape(tok.Text) {
		return `"` + strings.NewReplacer(`"`, `\"`, `\`, `\\`).Replace(tok.Text) + `"`
	}
	return tok.Text
}

func needsLISPEscape(s string) bool {
	return strings.ContainsAny(s, " \t\n()")
}

// ASCII renders t as an indented tree, one node per line.
func ASCII(t interp.ParseTree) string {
	var b strings.Builder
	writeASCII(&b, t, 0)
	return b.String()
}

func writeASCII(b *strings.Builder, t interp.ParseTree, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := t.(type) {
	case *interp.RuleNode:
		fmt.Fprintf(b, "%s%s\n", indent, n.RuleName)
		for _, c := range n.Children {
			writeASCII(b, c, depth+1)
		}
	case *interp.TerminalNode:
		fmt.Fprintf(b, "%s%s\n", indent, lispTerminalText(n.Token))
	case *interp.ErrorNode:
		fmt.Fprintf(b, "%s<ERROR: %s>\n", indent, n.Message)
	}
}

// jsonTree mirrors interp.ParseTree for JSON marshaling; ParseTree's
// implementations are unexported-interface-only on purpose (spec.md
// §4.8's typed AST), so rendering converts to this exported shape
// rather than exposing JSON tags on the interpreter's own types.
type jsonTree struct {
	Kind     string      `json:"kind"`
	Rule     string      `json:"rule,omitempty"`
	Text     string      `json:"text,omitempty"`
	Message  string      `json:"message,omitempty"`
	Children []*jsonTree `json:"children,omitempty"`
}

// JSON renders t as the jsonTree shape, marshaled with indentation.
func JSON(t interp.ParseTree) ([]byte, error) {
	return json.MarshalIndent(toJSONTree(t), "", "  ")
}

func toJSONTree(t interp.ParseTree) *jsonTree {
	switch n := t.(type) {
	case *interp.RuleNode:
		jt := &jsonTree{Kind: "rule", Rule: n.RuleName}
		for _, c := range n.Children {
			jt.Children = append(jt.Children, toJSONTree(c))
		}
		return jt
	case *interp.TerminalNode:
		return &jsonTree{Kind: "terminal", Text: n.Token.Text}
	case *interp.ErrorNode:
		return &jsonTree{Kind: "error", Text: n.Token.Text, Message: n.Message}
	default:
		return &jsonTree{Kind: "unknown"}
	}
}
