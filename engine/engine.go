package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/odvcencio/antlrlens/internal/analysis"
	"github.com/odvcencio/antlrlens/internal/atn"
	"github.com/odvcencio/antlrlens/internal/cache"
	"github.com/odvcencio/antlrlens/internal/config"
	"github.com/odvcencio/antlrlens/internal/errs"
	"github.com/odvcencio/antlrlens/internal/gsource"
	"github.com/odvcencio/antlrlens/internal/imports"
	"github.com/odvcencio/antlrlens/internal/interp"
	"github.com/odvcencio/antlrlens/internal/model"
	"github.com/odvcencio/antlrlens/internal/predict"
	"github.com/odvcencio/antlrlens/internal/profile"
	"github.com/odvcencio/antlrlens/internal/render"
)

// Engine is the C11 façade: one instance per process, shared across
// every request. Its only mutable shared state is the cache (spec.md
// §5 "Shared-resource policy"); everything else is either immutable
// configuration or confined to a single call.
type Engine struct {
	cfg config.Config

	grammars  *cache.Namespace[*model.GrammarSource]
	atns      *cache.Namespace[*atn.ATN]
	parses    *cache.Namespace[*ParseResult]
	analyses  *cache.Namespace[any]

	// Lookup resolves an `import X;` declaration to grammar text.
	// nil disables imports (every grammar must be self-contained).
	Lookup imports.Lookup
}

// New builds an Engine from cfg (already defaulted via
// cfg.FillDefaults).
func New(cfg config.Config) *Engine {
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	size := cfg.Cache.MaxSize
	if !cfg.Cache.IsEnabled() {
		size, ttl = 0, 0 // a zero-capacity namespace never retains entries
	}
	return &Engine{
		cfg:      cfg,
		grammars: cache.NewNamespace[*model.GrammarSource](capOrUnbounded(size, cfg.Cache.IsEnabled()), ttl),
		atns:     cache.NewNamespace[*atn.ATN](capOrUnbounded(size, cfg.Cache.IsEnabled()), ttl),
		parses:   cache.NewNamespace[*ParseResult](capOrUnbounded(size, cfg.Cache.IsEnabled()), ttl),
		analyses: cache.NewNamespace[any](capOrUnbounded(size, cfg.Cache.IsEnabled()), ttl),
	}
}

// capOrUnbounded returns 0 (meaning "no entries ever retained", since
// Namespace evicts down to capacity on every Put) when caching is
// disabled, or size otherwise.
func capOrUnbounded(size int, enabled bool) int {
	if !enabled {
		return 0
	}
	return size
}

// buildGrammar runs C1+C2+C3 over text, consulting and populating the
// grammar/ATN cache namespaces. The cache key depends on text alone, so
// one cached ATN serves every start rule.
func (e *Engine) buildGrammar(text string) (*model.GrammarSource, *atn.ATN, errs.List) {
	if oversize := e.checkGrammarSize(text); oversize != nil {
		return nil, nil, errs.List{oversize}
	}

	key := cache.KeyOf(text, "", "")

	if a, ok := e.atns.Get(key); ok {
		if g, ok := e.grammars.Get(key); ok {
			return g, a, nil
		}
	}

	g, problems := gsource.Parse(text)
	if problems.HasErrors() {
		return nil, nil, problems
	}

	if e.Lookup != nil && len(g.Imports) > 0 {
		resolver := imports.New(e.Lookup, e.cfg.MaxImportDepth)
		resolved, importProblems := resolver.Resolve(g)
		problems = append(problems, importProblems...)
		if importProblems.HasErrors() {
			return nil, nil, problems
		}
		g = resolved
	}

	if undefined := gsource.CheckUndefinedReferences(g); undefined.HasErrors() {
		return nil, nil, append(problems, undefined...)
	}

	a, buildProblems := e.buildATN(g)
	problems = append(problems, buildProblems...)
	if buildProblems.HasErrors() {
		return nil, nil, problems
	}

	e.grammars.Put(key, g)
	e.atns.Put(key, a)
	return g, a, problems
}

// checkGrammarSize rejects grammar source over maxGrammarSizeMb
// (spec.md §6 "rejects larger inputs with invalid-input").
func (e *Engine) checkGrammarSize(text string) *errs.Error {
	limit := e.cfg.MaxGrammarSizeMb * 1024 * 1024
	if limit > 0 && len(text) > limit {
		return errs.New(errs.KindInvalidInput,
			fmt.Sprintf("grammar source is %d bytes, exceeds maxGrammarSizeMb (%d MB)", len(text), e.cfg.MaxGrammarSizeMb), nil)
	}
	return nil
}

// checkInputSize rejects sample input over maxInputSizeMb (spec.md §6
// "applies to sample inputs").
func (e *Engine) checkInputSize(input string) *errs.Error {
	limit := e.cfg.MaxInputSizeMb * 1024 * 1024
	if limit > 0 && len(input) > limit {
		return errs.New(errs.KindInvalidInput,
			fmt.Sprintf("sample input is %d bytes, exceeds maxInputSizeMb (%d MB)", len(input), e.cfg.MaxInputSizeMb), nil)
	}
	return nil
}

// buildATN bounds atn.Build by compilationTimeoutSeconds (spec.md §6):
// ATN construction is synchronous CPU work with no deadline checks of
// its own, so the call runs in a goroutine raced against a timer
// (interp.ParseSample, by contrast, checks a context deadline inside
// its walk).
func (e *Engine) buildATN(g *model.GrammarSource) (*atn.ATN, errs.List) {
	timeout := time.Duration(e.cfg.CompilationTimeoutSeconds) * time.Second
	if timeout <= 0 {
		return atn.Build(g)
	}

	type result struct {
		a        *atn.ATN
		problems errs.List
	}
	done := make(chan result, 1)
	go func() {
		a, problems := atn.Build(g)
		done <- result{a, problems}
	}()

	select {
	case res := <-done:
		return res.a, res.problems
	case <-time.After(timeout):
		return nil, errs.List{errs.New(errs.KindParseTimeout,
			fmt.Sprintf("ATN construction exceeded compilationTimeoutSeconds (%ds)", e.cfg.CompilationTimeoutSeconds), nil)}
	}
}

// Validate implements the `validate` operation (spec.md §4.11).
func (e *Engine) Validate(text string) (*ValidationResult, errs.List) {
	g, _, problems := e.buildGrammar(text)
	res := &ValidationResult{}
	if g != nil {
		res.Name = g.Name
		res.Kind = string(g.Kind)
		for _, r := range g.Rules {
			switch r.Kind {
			case model.RuleParser:
				res.RuleCounts.Parser++
			case model.RuleLexer:
				res.RuleCounts.Lexer++
			case model.RuleFragment:
				res.RuleCounts.Fragment++
			}
		}
	}
	for _, p := range problems {
		if p.Severity == errs.SeverityWarning {
			res.Warnings = append(res.Warnings, p)
		} else {
			res.Errors = append(res.Errors, p)
		}
	}
	return res, problems
}

// ParseSample implements the `parseSample` operation.
func (e *Engine) ParseSample(ctx context.Context, grammarText, input, startRule string, timeout time.Duration) (*ParseResult, errs.List) {
	if oversize := e.checkInputSize(input); oversize != nil {
		return nil, errs.List{oversize}
	}

	key := cache.KeyOf(grammarText, startRule, input)
	if cached, ok := e.parses.Get(key); ok {
		return cached, nil
	}

	_, a, problems := e.buildGrammar(grammarText)
	if problems.HasErrors() {
		return nil, problems
	}

	total := time.Now()
	lx := interp.NewLexer(a, input)
	lexStart := time.Now()
	toks, lexProblems := lx.Lex()
	lexMs := msSince(lexStart)
	problems = append(problems, lexProblems...)
	if lexProblems.HasErrors() {
		return nil, problems
	}

	if timeout <= 0 {
		timeout = time.Duration(e.cfg.ParseTimeoutSeconds) * time.Second
	}
	parseStart := time.Now()
	tree, _, parseProblems := interp.ParseSample(a, toks, startRule, timeout)
	parseMs := msSince(parseStart)
	problems = append(problems, parseProblems...)

	result := &ParseResult{
		Tokens:  tokenViews(toks),
		Timings: Timings{LexMs: lexMs, ParseMs: parseMs, TotalMs: msSince(total)},
	}
	if tree != nil {
		ruleIndex := func(name string) (int, bool) {
			idx := a.RuleIndexOf(name)
			return idx, idx >= 0
		}
		result.TreeLISP = render.LISP(tree, ruleIndex, false)
		result.TreeASCII = render.ASCII(tree)
	}
	for _, p := range problems {
		if p.Severity == errs.SeverityWarning {
			result.Warnings = append(result.Warnings, p)
		} else {
			result.Errors = append(result.Errors, p)
		}
	}
	if !parseProblems.HasErrors() {
		e.parses.Put(key, result)
	}
	return result, problems
}

// DetectAmbiguity implements the `detectAmbiguity` operation: runs
// every sample independently so one sample's timeout or internal
// error never affects another (spec.md §7 "Per-sample isolation").
func (e *Engine) DetectAmbiguity(grammarText, startRule string, samples []string, perSampleTimeout time.Duration) (*AmbiguityReport, errs.List) {
	_, a, problems := e.buildGrammar(grammarText)
	if problems.HasErrors() {
		return nil, problems
	}
	if perSampleTimeout <= 0 {
		perSampleTimeout = time.Duration(e.cfg.ParseTimeoutSeconds) * time.Second
	}

	report := &AmbiguityReport{PerRuleCounts: map[string]int{}, SamplesAttempted: len(samples)}
	for i, sample := range samples {
		sa := SampleAmbiguity{SampleIndex: i}
		if oversize := e.checkInputSize(sample); oversize != nil {
			sa.Error = oversize
			report.Samples = append(report.Samples, sa)
			continue
		}
		lx := interp.NewLexer(a, sample)
		toks, lexProblems := lx.Lex()
		if lexProblems.HasErrors() {
			sa.Error = lexProblems[0]
			report.Samples = append(report.Samples, sa)
			continue
		}
		_, events, parseProblems := interp.ParseSample(a, toks, startRule, perSampleTimeout)
		if parseProblems.HasErrors() {
			sa.Error = parseProblems[0]
		} else {
			report.SamplesCovered++
		}
		sa.Events = events
		for _, ev := range events {
			if info := a.Rules[ev.RuleIndex]; info != nil {
				report.PerRuleCounts[info.Name]++
			}
		}
		report.Samples = append(report.Samples, sa)
	}
	return report, problems
}

// AnalyzeCallGraph implements `analyzeCallGraph`.
func (e *Engine) AnalyzeCallGraph(grammarText string) (*analysis.CallGraph, errs.List) {
	g, _, problems := e.buildGrammar(grammarText)
	if problems.HasErrors() {
		return nil, problems
	}
	return e.cachedAnalysis(grammarText, "", "callgraph", func() any {
		return analysis.CallGraphOf(g, g.StartRuleName)
	}).(*analysis.CallGraph), problems
}

// AnalyzeComplexity implements `analyzeComplexity`.
func (e *Engine) AnalyzeComplexity(grammarText string) (*analysis.ComplexityMetrics, errs.List) {
	g, a, problems := e.buildGrammar(grammarText)
	if problems.HasErrors() {
		return nil, problems
	}
	return e.cachedAnalysis(grammarText, "", "complexity", func() any {
		return analysis.ComplexityOf(a, analysis.AltCounts(g))
	}).(*analysis.ComplexityMetrics), problems
}

// AnalyzeLeftRecursion implements `analyzeLeftRecursion`.
func (e *Engine) AnalyzeLeftRecursion(grammarText string) (*analysis.LeftRecursionReport, errs.List) {
	g, a, problems := e.buildGrammar(grammarText)
	if problems.HasErrors() {
		return nil, problems
	}
	return e.cachedAnalysis(grammarText, "", "leftrecursion", func() any {
		cg := analysis.CallGraphOf(g, g.StartRuleName)
		return analysis.LeftRecursionOf(a, cg)
	}).(*analysis.LeftRecursionReport), problems
}

// AnalyzeFirstFollow implements `analyzeFirstFollow`.
func (e *Engine) AnalyzeFirstFollow(grammarText, rule string) (*analysis.FirstFollowReport, errs.List) {
	g, a, problems := e.buildGrammar(grammarText)
	if problems.HasErrors() {
		return nil, problems
	}
	return e.cachedAnalysis(grammarText, rule, "firstfollow", func() any {
		return analysis.FirstFollowOf(g, a, rule)
	}).(*analysis.FirstFollowReport), problems
}

// VisualizeATN implements `visualizeATN`.
func (e *Engine) VisualizeATN(grammarText, rule string) (*AtnVisualization, errs.List) {
	_, a, problems := e.buildGrammar(grammarText)
	if problems.HasErrors() {
		return nil, problems
	}
	info := a.RuleByName(rule)
	if info == nil {
		return nil, errs.List{errs.New(errs.KindUndefinedRule, fmt.Sprintf("rule %q not found", rule), nil)}
	}
	g := render.ATNGraph(a, info.StartState, info.StopState, rule)
	return &AtnVisualization{
		Rule:    rule,
		DOT:     render.DOT(g, true),
		Mermaid: render.MermaidStateDiagram(g),
	}, problems
}

// VisualizeDecision implements `visualizeDecision`.
func (e *Engine) VisualizeDecision(grammarText, rule string) (*DecisionVisualization, errs.List) {
	_, a, problems := e.buildGrammar(grammarText)
	if problems.HasErrors() {
		return nil, problems
	}
	return &DecisionVisualization{Rule: rule, Decisions: analysis.DecisionsOf(a, rule)}, problems
}

// Profile implements the `profile` operation: parses input once with
// C7's recorder wired into the prediction engine's Profile hook and
// the parser's OnError hook.
func (e *Engine) Profile(ctx context.Context, grammarText, input, startRule string) (*ProfileResult, errs.List) {
	if oversize := e.checkInputSize(input); oversize != nil {
		return nil, errs.List{oversize}
	}

	_, a, problems := e.buildGrammar(grammarText)
	if problems.HasErrors() {
		return nil, problems
	}
	lx := interp.NewLexer(a, input)
	toks, lexProblems := lx.Lex()
	problems = append(problems, lexProblems...)
	if lexProblems.HasErrors() {
		return nil, problems
	}

	deadline := time.Duration(e.cfg.ParseTimeoutSeconds) * time.Second
	pctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	p := interp.NewParser(pctx, a, toks)
	rec := profile.New()
	p.Engine().Profile = rec.Observe
	p.OnError = rec.ObserveError

	_, parseProblems := p.Parse(startRule)
	problems = append(problems, parseProblems...)

	report := rec.Finish(p.Engine().DFAStateCount())
	return &ProfileResult{Report: report, Events: nil, Errors: problems}, problems
}

// GenerateTestInputs implements `generateTestInputs`.
func (e *Engine) GenerateTestInputs(grammarText, rule string, maxCount int) (*GeneratedTestInputs, errs.List) {
	g, _, problems := e.buildGrammar(grammarText)
	if problems.HasErrors() {
		return nil, problems
	}
	return generateTestInputs(g, rule, maxCount), problems
}

// cachedAnalysis memoizes a C6 analysis result under the analyses
// namespace, keyed by grammar text + optional rule + the analysis kind
// (so analyzeComplexity and analyzeLeftRecursion over the same
// grammar don't collide).
func (e *Engine) cachedAnalysis(grammarText, rule, kind string, compute func() any) any {
	key := cache.KeyOf(grammarText, rule, kind)
	if v, ok := e.analyses.Get(key); ok {
		return v
	}
	v := compute()
	e.analyses.Put(key, v)
	return v
}

func tokenViews(toks []interp.Token) []TokenView {
	out := make([]TokenView, 0, len(toks))
	for _, t := range toks {
		out = append(out, TokenView{Type: t.Type, Text: t.Text, Line: t.Line, Column: t.Column, Hidden: t.Channel != 0})
	}
	return out
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
