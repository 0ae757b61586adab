package analysis

import (
	"testing"

	"github.com/odvcencio/antlrlens/internal/atn"
	"github.com/odvcencio/antlrlens/internal/gsource"
	"github.com/odvcencio/antlrlens/internal/model"
)

const calcGrammar = `
grammar Calc;
expr : expr ('*'|'/') expr
     | expr ('+'|'-') expr
     | INT
     | '(' expr ')'
     ;
INT : [0-9]+ ;
WS : [ \t\r\n]+ -> skip ;
`

const cyclicGrammar = `
grammar Cyclic;
a : b ;
b : c ;
c : a | INT ;
INT : [0-9]+ ;
`

func parseAndBuild(t *testing.T, text string) (*model.GrammarSource, *atn.ATN) {
	t.Helper()
	g, problems := gsource.Parse(text)
	if problems.HasErrors() {
		t.Fatalf("parse errors: %v", problems)
	}
	a, buildProblems := atn.Build(g)
	if buildProblems.HasErrors() {
		t.Fatalf("build errors: %v", buildProblems)
	}
	return g, a
}

func TestCallGraphCalculatorReachesAllReferencedRules(t *testing.T) {
	g, _ := parseAndBuild(t, calcGrammar)
	cg := CallGraphOf(g, "expr")
	// WS is never referenced, so it is the only rule BFS from expr misses.
	if len(cg.Unused) != 1 || cg.Unused[0] != "WS" {
		t.Errorf("unused rules = %v, want [WS]", cg.Unused)
	}
	if cg.Depths["expr"] != 0 {
		t.Errorf("expr depth = %d, want 0", cg.Depths["expr"])
	}
}

func TestCallGraphDetectsCycle(t *testing.T) {
	g, _ := parseAndBuild(t, cyclicGrammar)
	cg := CallGraphOf(g, "a")
	if len(cg.Cycles) != 1 {
		t.Fatalf("cycles = %v, want exactly one", cg.Cycles)
	}
	got := cg.Cycles[0]
	if got[0] != "a" {
		t.Errorf("canonical rotation should start with the smallest name, got %v", got)
	}
}

func TestComplexityCountsAlternativesAndDecisions(t *testing.T) {
	g, a := parseAndBuild(t, calcGrammar)
	cm := ComplexityOf(a, AltCounts(g))
	for _, rc := range cm.PerRule {
		if rc.Rule == "expr" && rc.Alternatives != 4 {
			t.Errorf("expr alternatives = %d, want 4", rc.Alternatives)
		}
	}
	if cm.MaxAlts < 4 {
		t.Errorf("MaxAlts = %d, want >= 4", cm.MaxAlts)
	}
}

func TestLeftRecursionReportMatchesBuilder(t *testing.T) {
	g, a := parseAndBuild(t, calcGrammar)
	cg := CallGraphOf(g, "expr")
	report := LeftRecursionOf(a, cg)
	if len(report.DirectRules) != 1 || report.DirectRules[0].Rule != "expr" {
		t.Fatalf("DirectRules = %+v, want exactly expr", report.DirectRules)
	}
	if len(report.DirectRules[0].PrecedenceLevels) != 2 {
		t.Errorf("PrecedenceLevels = %v, want 2 entries", report.DirectRules[0].PrecedenceLevels)
	}
}

func TestFirstFollowCalculatorExprFirstIncludesIntAndParen(t *testing.T) {
	g, a := parseAndBuild(t, calcGrammar)
	report := FirstFollowOf(g, a, "expr")
	if len(report.Rules) != 1 {
		t.Fatalf("got %d rule entries, want 1", len(report.Rules))
	}
	first := toSet(report.Rules[0].First)
	intType := a.TokenTypes["INT"]
	parenType := a.TokenTypes["("]
	if !first[intType] {
		t.Errorf("FIRST(expr) missing INT: %v", report.Rules[0].First)
	}
	if !first[parenType] {
		t.Errorf("FIRST(expr) missing '(': %v", report.Rules[0].First)
	}
}

func TestFirstFollowDecisionLookaheadNotAmbiguousForDistinctOperators(t *testing.T) {
	g, a := parseAndBuild(t, calcGrammar)
	report := FirstFollowOf(g, a, "")
	found := false
	for _, d := range report.Decisions {
		if d.Rule == "expr" && d.Construct == "rule" {
			found = true
			if d.Ambiguous {
				t.Errorf("expr's top-level decision should not be ambiguous by lookahead: %+v", d.PerAlternative)
			}
		}
	}
	if !found {
		t.Fatal("expected a decision entry for expr's top-level alternative list")
	}
}

func TestDecisionsOfReturnsDOTForEveryDecisionInRule(t *testing.T) {
	_, a := parseAndBuild(t, calcGrammar)
	decs := DecisionsOf(a, "expr")
	if len(decs) == 0 {
		t.Fatal("expected at least one decision for expr")
	}
	for _, d := range decs {
		if d.DOT == "" {
			t.Errorf("decision %d has empty DOT output", d.DecisionID)
		}
	}
}

func TestEmbeddedCodeScanCountsPredicatesAndActions(t *testing.T) {
	src := `
grammar WithActions;
@header { package foo }
@members { int x; }
start : {true}? a | a ;
a : INT {System.out.println(1);} ;
INT : [0-9]+ ;
`
	g, problems := gsource.Parse(src)
	if problems.HasErrors() {
		t.Fatalf("parse errors: %v", problems)
	}
	report := EmbeddedCodeScanOf(g)
	if !report.HasEmbeddedCode {
		t.Fatal("expected embedded code to be detected")
	}
	if report.HeaderCount != 1 || report.MembersCount != 1 {
		t.Errorf("header/members counts = %d/%d, want 1/1", report.HeaderCount, report.MembersCount)
	}
	if report.Predicates != 1 {
		t.Errorf("predicates = %d, want 1", report.Predicates)
	}
	if report.InlineActions != 1 {
		t.Errorf("inline actions = %d, want 1", report.InlineActions)
	}
}

func toSet(ints []int) map[int]bool {
	s := make(map[int]bool, len(ints))
	for _, i := range ints {
		s[i] = true
	}
	return s
}
