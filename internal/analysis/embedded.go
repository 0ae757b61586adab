package analysis

import (
	"strings"

	"github.com/odvcencio/antlrlens/internal/model"
)

// EmbeddedCodeReport is spec.md §4.6's embedded-code scan: a fast
// boolean plus counts by kind, and a best-effort, advisory-only guess
// at the embedded code's language.
type EmbeddedCodeReport struct {
	HasEmbeddedCode bool
	HeaderCount     int
	MembersCount    int
	InitCount       int
	AfterCount      int
	InlineActions   int
	Predicates      int
	LanguageGuess   string // advisory only, never authoritative
}

// candidateLanguages mirrors the teacher's multi-language lexer
// registry (grammars/registry.go): the same closed set of languages it
// already has table lexers for, plus a generic bucket, scored by
// keyword/operator substring hits rather than a real parse.
var candidateLanguages = []struct {
	name     string
	keywords []string
}{
	{"go", []string{"func ", "package ", ":=", "go func"}},
	{"java", []string{"public ", "new ", "import java", "System.out"}},
	{"c", []string{"#include", "int main", "malloc(", "printf("}},
	{"lua", []string{"local ", "function ", "end\n", "nil"}},
}

// EmbeddedCodeScanOf scans g's grammar-level actions (C1 already did
// the nesting-aware brace scan building them) plus every rule's inline
// action/predicate elements.
func EmbeddedCodeScanOf(g *model.GrammarSource) *EmbeddedCodeReport {
	r := &EmbeddedCodeReport{}
	var allCode []string
	for _, ab := range g.Actions {
		allCode = append(allCode, ab.Code)
		switch ab.Kind {
		case "header":
			r.HeaderCount++
		case "members":
			r.MembersCount++
		case "init":
			r.InitCount++
		case "after":
			r.AfterCount++
		}
	}

	var walk func(els []*model.Element)
	walk = func(els []*model.Element) {
		for _, e := range els {
			switch e.Kind {
			case model.ElemAction:
				r.InlineActions++
				allCode = append(allCode, e.Text)
			case model.ElemPredicate:
				r.Predicates++
				allCode = append(allCode, e.Text)
			case model.ElemOptional, model.ElemStar, model.ElemPlus, model.ElemBlock:
				for _, sub := range e.Sub {
					walk(sub.Elements)
				}
			}
		}
	}
	for _, rule := range g.Rules {
		for _, alt := range rule.Alternatives {
			walk(alt.Elements)
		}
	}

	r.HasEmbeddedCode = r.HeaderCount+r.MembersCount+r.InitCount+r.AfterCount+r.InlineActions+r.Predicates > 0
	r.LanguageGuess = guessLanguage(allCode)
	return r
}

func guessLanguage(snippets []string) string {
	if len(snippets) == 0 {
		return ""
	}
	best, bestScore := "", 0
	for _, cand := range candidateLanguages {
		score := 0
		for _, code := range snippets {
			for _, kw := range cand.keywords {
				if strings.Contains(code, kw) {
					score++
				}
			}
		}
		if score > bestScore {
			best, bestScore = cand.name, score
		}
	}
	if bestScore == 0 {
		return "unknown"
	}
	return best
}
