package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/odvcencio/antlrlens/internal/config"
	"github.com/odvcencio/antlrlens/internal/errs"
	"github.com/odvcencio/antlrlens/internal/gsource"
	"github.com/odvcencio/antlrlens/internal/predict"
)

const listGrammar = "grammar D;\nlist : INT (',' INT)* ;\nINT : [0-9]+ ;\n"

func newTestEngine() *Engine {
	return New(config.Config{}.FillDefaults())
}

func TestValidateReportsRuleCounts(t *testing.T) {
	e := newTestEngine()
	res, problems := e.Validate(listGrammar)
	if problems.HasErrors() {
		t.Fatalf("unexpected errors: %v", problems)
	}
	if res.RuleCounts.Parser != 1 {
		t.Errorf("Parser rule count = %d, want 1", res.RuleCounts.Parser)
	}
	if res.RuleCounts.Lexer != 1 {
		t.Errorf("Lexer rule count = %d, want 1", res.RuleCounts.Lexer)
	}
}

func TestValidateReportsErrorsForBadGrammar(t *testing.T) {
	e := newTestEngine()
	_, problems := e.Validate("not a grammar at all {{{")
	if !problems.HasErrors() {
		t.Error("expected parse errors for malformed grammar source")
	}
}

func TestParseSampleBuildsTreeAndTokens(t *testing.T) {
	e := newTestEngine()
	result, problems := e.ParseSample(context.Background(), listGrammar, "1, 2, 3", "list", time.Second)
	if problems.HasErrors() {
		t.Fatalf("unexpected errors: %v", problems)
	}
	if result.TreeLISP == "" {
		t.Error("expected non-empty LISP tree rendering")
	}
	if len(result.Tokens) == 0 {
		t.Error("expected at least one token")
	}
}

func TestParseSampleIsCached(t *testing.T) {
	e := newTestEngine()
	first, problems := e.ParseSample(context.Background(), listGrammar, "1, 2", "list", time.Second)
	if problems.HasErrors() {
		t.Fatalf("unexpected errors: %v", problems)
	}
	second, problems := e.ParseSample(context.Background(), listGrammar, "1, 2", "list", time.Second)
	if problems.HasErrors() {
		t.Fatalf("unexpected errors on cached call: %v", problems)
	}
	if first != second {
		t.Error("expected the second ParseSample call to return the cached *ParseResult")
	}
}

func TestParseSampleCacheDisabled(t *testing.T) {
	disabled := false
	e := New(config.Config{Cache: config.Cache{Enabled: &disabled}}.FillDefaults())
	first, problems := e.ParseSample(context.Background(), listGrammar, "1, 2", "list", time.Second)
	if problems.HasErrors() {
		t.Fatalf("unexpected errors: %v", problems)
	}
	second, problems := e.ParseSample(context.Background(), listGrammar, "1, 2", "list", time.Second)
	if problems.HasErrors() {
		t.Fatalf("unexpected errors: %v", problems)
	}
	if first == second {
		t.Error("expected distinct *ParseResult values when caching is disabled")
	}
}

func TestDetectAmbiguityIsolatesPerSample(t *testing.T) {
	e := newTestEngine()
	report, problems := e.DetectAmbiguity(listGrammar, "list", []string{"1, 2", "not valid tokens @@@"}, time.Second)
	if problems.HasErrors() {
		t.Fatalf("unexpected top-level errors: %v", problems)
	}
	if len(report.Samples) != 2 {
		t.Fatalf("Samples = %d, want 2", len(report.Samples))
	}
	if report.Samples[0].Error != nil {
		t.Errorf("expected sample 0 to succeed, got error: %v", report.Samples[0].Error)
	}
	if report.SamplesCovered != 1 {
		t.Errorf("SamplesCovered = %d, want 1 (only the well-formed sample)", report.SamplesCovered)
	}
}

func TestValidateRejectsOversizedGrammar(t *testing.T) {
	e := New(config.Config{MaxGrammarSizeMb: 1}.FillDefaults())
	oversized := listGrammar + strings.Repeat("// padding\n", 200000)
	_, problems := e.Validate(oversized)
	if !problems.HasErrors() {
		t.Fatal("expected an error for a grammar exceeding maxGrammarSizeMb")
	}
	found := false
	for _, p := range problems {
		if p.Kind == errs.KindInvalidInput {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a KindInvalidInput error, got %v", problems)
	}
}

func TestParseSampleRejectsOversizedInput(t *testing.T) {
	e := New(config.Config{MaxInputSizeMb: 1}.FillDefaults())
	oversized := strings.Repeat("1, ", 500000) + "1"
	_, problems := e.ParseSample(context.Background(), listGrammar, oversized, "list", time.Second)
	if !problems.HasErrors() {
		t.Fatal("expected an error for input exceeding maxInputSizeMb")
	}
	if problems[0].Kind != errs.KindInvalidInput {
		t.Errorf("Kind = %s, want %s", problems[0].Kind, errs.KindInvalidInput)
	}
}

func TestDetectAmbiguityIsolatesOversizedSample(t *testing.T) {
	e := New(config.Config{MaxInputSizeMb: 1}.FillDefaults())
	oversized := strings.Repeat("1, ", 500000) + "1"
	report, problems := e.DetectAmbiguity(listGrammar, "list", []string{"1, 2", oversized}, time.Second)
	if problems.HasErrors() {
		t.Fatalf("unexpected top-level errors: %v", problems)
	}
	if len(report.Samples) != 2 {
		t.Fatalf("Samples = %d, want 2", len(report.Samples))
	}
	if report.Samples[1].Error == nil {
		t.Fatal("expected sample 1 (oversized) to carry an error")
	}
	if report.Samples[1].Error.Kind != errs.KindInvalidInput {
		t.Errorf("Kind = %s, want %s", report.Samples[1].Error.Kind, errs.KindInvalidInput)
	}
}

func TestProfileRejectsOversizedInput(t *testing.T) {
	e := New(config.Config{MaxInputSizeMb: 1}.FillDefaults())
	oversized := strings.Repeat("1, ", 500000) + "1"
	_, problems := e.Profile(context.Background(), listGrammar, oversized, "list")
	if !problems.HasErrors() {
		t.Fatal("expected an error for input exceeding maxInputSizeMb")
	}
	if problems[0].Kind != errs.KindInvalidInput {
		t.Errorf("Kind = %s, want %s", problems[0].Kind, errs.KindInvalidInput)
	}
}

func TestBuildGrammarSucceedsWithinCompilationTimeout(t *testing.T) {
	e := New(config.Config{CompilationTimeoutSeconds: 1}.FillDefaults())
	_, _, problems := e.buildGrammar(listGrammar)
	if problems.HasErrors() {
		t.Fatalf("unexpected errors building a small grammar within the timeout: %v", problems)
	}
}

func TestBuildATNTreatsNonPositiveTimeoutAsUnbounded(t *testing.T) {
	g, problems := gsource.Parse(listGrammar)
	if problems.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", problems)
	}
	e := New(config.Config{CompilationTimeoutSeconds: -1}.FillDefaults())
	_, buildProblems := e.buildATN(g)
	if buildProblems.HasErrors() {
		t.Fatalf("non-positive timeout should be treated as unbounded, got errors: %v", buildProblems)
	}
}

// danglingElseGrammar reproduces spec.md §8 scenario 4: a classic
// dangling-else shape where the decision between the no-ELSE and
// with-ELSE alternatives of `stat` cannot be resolved in SLL mode once
// `stat` recurses into itself.
const danglingElseGrammar = "grammar Stat;\n" +
	"stat : IF expr THEN stat\n" +
	"     | IF expr THEN stat ELSE stat\n" +
	"     | PRINT expr\n" +
	"     ;\n" +
	"expr : ID ;\n" +
	"IF : 'if' ;\n" +
	"THEN : 'then' ;\n" +
	"ELSE : 'else' ;\n" +
	"PRINT : 'print' ;\n" +
	"ID : [a-zA-Z]+ ;\n" +
	"WS : [ \\t\\r\\n]+ -> skip ;\n"

func TestDetectAmbiguityFindsDanglingElseConflict(t *testing.T) {
	e := newTestEngine()
	report, problems := e.DetectAmbiguity(danglingElseGrammar, "stat",
		[]string{"if a then if b then print c else print d"}, time.Second)
	if problems.HasErrors() {
		t.Fatalf("unexpected top-level errors: %v", problems)
	}
	if len(report.Samples) != 1 {
		t.Fatalf("Samples = %d, want 1", len(report.Samples))
	}
	sample := report.Samples[0]
	if sample.Error != nil {
		t.Fatalf("unexpected sample error: %v", sample.Error)
	}
	if len(sample.Events) == 0 {
		t.Fatal("expected at least one ambiguity event for the dangling-else sample")
	}
	found := false
	for _, ev := range sample.Events {
		if ev.Kind != predict.EventAmbiguity {
			continue
		}
		hasAlt1, hasAlt2 := false, false
		for _, alt := range ev.Alternatives {
			if alt == 1 {
				hasAlt1 = true
			}
			if alt == 2 {
				hasAlt2 = true
			}
		}
		if hasAlt1 && hasAlt2 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an AmbiguityEvent whose alternatives include 1 and 2, got %+v", sample.Events)
	}
	if report.PerRuleCounts["stat"] == 0 {
		t.Errorf("expected PerRuleCounts[\"stat\"] > 0, got %v", report.PerRuleCounts)
	}
}

func TestAnalyzeComplexityIsCachedAcrossCalls(t *testing.T) {
	e := newTestEngine()
	a, problems := e.AnalyzeComplexity(listGrammar)
	if problems.HasErrors() {
		t.Fatalf("unexpected errors: %v", problems)
	}
	b, problems := e.AnalyzeComplexity(listGrammar)
	if problems.HasErrors() {
		t.Fatalf("unexpected errors: %v", problems)
	}
	if a != b {
		t.Error("expected the cached *analysis.ComplexityMetrics pointer to be reused")
	}
}

func TestGenerateTestInputsCoversAlternatives(t *testing.T) {
	e := newTestEngine()
	result, problems := e.GenerateTestInputs(listGrammar, "list", 0)
	if problems.HasErrors() {
		t.Fatalf("unexpected errors: %v", problems)
	}
	if len(result.Inputs) == 0 {
		t.Error("expected at least one generated input")
	}
	if result.AlternativesCovered == 0 {
		t.Error("expected at least one alternative covered")
	}
}

func TestProfileParseRecordsDecisions(t *testing.T) {
	e := newTestEngine()
	result, problems := e.Profile(context.Background(), listGrammar, "1, 2, 3", "list")
	if problems.HasErrors() {
		t.Fatalf("unexpected errors: %v", problems)
	}
	if result.Report == nil {
		t.Fatal("expected a non-nil profile report")
	}
}
