package interp

import (
	"testing"
	"time"
)

func countTerminals(n ParseTree) int {
	switch v := n.(type) {
	case *TerminalNode:
		return 1
	case *ErrorNode:
		return 0
	case *RuleNode:
		total := 0
		for _, c := range v.Children {
			total += countTerminals(c)
		}
		return total
	default:
		return 0
	}
}

func TestParseCalculatorSimpleAddition(t *testing.T) {
	a := buildCalc(t)
	lx := NewLexer(a, "1 + 2")
	toks, problems := lx.Lex()
	if problems.HasErrors() {
		t.Fatalf("lex errors: %v", problems)
	}
	tree, events, parseProblems := ParseSample(a, toks, "expr", time.Second)
	if parseProblems.HasErrors() {
		t.Fatalf("parse errors: %v", parseProblems)
	}
	if tree == nil {
		t.Fatal("nil parse tree")
	}
	if tree.RuleName != "expr" {
		t.Errorf("root rule = %q, want expr", tree.RuleName)
	}
	if got := countTerminals(tree); got != 3 {
		t.Errorf("terminal count = %d, want 3 (1, '+', 2)", got)
	}
	if len(events) != 0 {
		t.Errorf("unexpected ambiguity events: %v", events)
	}
}

func TestParseCalculatorPrecedenceConsumesAllTokens(t *testing.T) {
	a := buildCalc(t)
	lx := NewLexer(a, "1 + 2 * 3")
	toks, problems := lx.Lex()
	if problems.HasErrors() {
		t.Fatalf("lex errors: %v", problems)
	}
	tree, _, parseProblems := ParseSample(a, toks, "expr", time.Second)
	if parseProblems.HasErrors() {
		t.Fatalf("parse errors: %v", parseProblems)
	}
	if got := countTerminals(tree); got != 5 {
		t.Errorf("terminal count = %d, want 5 (1,+,2,*,3)", got)
	}
}

func TestParseCalculatorParenthesizedExpression(t *testing.T) {
	a := buildCalc(t)
	lx := NewLexer(a, "( 1 + 2 ) * 3")
	toks, problems := lx.Lex()
	if problems.HasErrors() {
		t.Fatalf("lex errors: %v", problems)
	}
	tree, _, parseProblems := ParseSample(a, toks, "expr", time.Second)
	if parseProblems.HasErrors() {
		t.Fatalf("parse errors: %v", parseProblems)
	}
	if got := countTerminals(tree); got != 7 {
		t.Errorf("terminal count = %d, want 7", got)
	}
}
