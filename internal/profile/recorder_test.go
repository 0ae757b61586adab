package profile

import (
	"context"
	"testing"
	"time"

	"github.com/odvcencio/antlrlens/internal/atn"
	"github.com/odvcencio/antlrlens/internal/gsource"
	"github.com/odvcencio/antlrlens/internal/interp"
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

func buildCalc(t *testing.T) *atn.ATN {
	t.Helper()
	g, problems := gsource.Parse(calcGrammar)
	if problems.HasErrors() {
		t.Fatalf("parse errors: %v", problems)
	}
	a, buildProblems := atn.Build(g)
	if buildProblems.HasErrors() {
		t.Fatalf("build errors: %v", buildProblems)
	}
	return a
}

func TestRecorderAggregatesAcrossAParse(t *testing.T) {
	a := buildCalc(t)
	lx := interp.NewLexer(a, "1 + 2 * 3")
	toks, problems := lx.Lex()
	if problems.HasErrors() {
		t.Fatalf("lex errors: %v", problems)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p := interp.NewParser(ctx, a, toks)
	rec := New()
	p.Engine().Profile = rec.Observe

	if _, problems := p.Parse("expr"); problems.HasErrors() {
		t.Fatalf("parse errors: %v", problems)
	}

	report := rec.Finish(p.Engine().DFAStateCount())
	if len(report.PerDecision) == 0 {
		t.Fatal("expected at least one decision to be profiled")
	}
	total := 0
	for _, d := range report.PerDecision {
		total += d.Invocations
	}
	if total == 0 {
		t.Error("expected total invocations > 0")
	}
}

func TestRecorderTracksErrorsViaOnError(t *testing.T) {
	a := buildCalc(t)
	lx := interp.NewLexer(a, "1 +")
	toks, problems := lx.Lex()
	if problems.HasErrors() {
		t.Fatalf("lex errors: %v", problems)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p := interp.NewParser(ctx, a, toks)
	rec := New()
	p.Engine().Profile = rec.Observe
	p.OnError = rec.ObserveError

	p.Parse("expr") // expected to hit a recoverable error on truncated input

	errTotal := 0
	for _, d := range rec.Finish(0).PerDecision {
		errTotal += d.ErrorCount
	}
	if errTotal == 0 {
		t.Error("expected at least one recorded parse error")
	}
}
