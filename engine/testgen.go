package engine

import (
	"strings"

	"github.com/odvcencio/antlrlens/internal/model"
)

// maxGenDepth bounds rule-reference recursion during sample generation
// so a recursive rule (list references itself, left-recursive
// expressions) terminates instead of expanding forever.
const maxGenDepth = 6

// sampleTable gives a representative literal for common lexer-rule
// naming conventions; purely a heuristic fallback for token rules this
// generator cannot derive a literal from directly (spec.md §4.11
// "generateTestInputs" has no mandated fidelity beyond "exercises the
// grammar", so a best-effort placeholder is acceptable here, the same
// way C6's embedded-code language guess is advisory).
var sampleTable = map[string]string{
	"INT": "1", "INTEGER": "1", "NUMBER": "1", "FLOAT": "1.0", "DIGIT": "1",
	"ID": "a", "IDENTIFIER": "a", "NAME": "a",
	"STRING": `"x"`, "TEXT": `"x"`,
	"WS": " ",
}

// generateTestInputs generates up to maxCount sample input strings for
// rule, one per covered top-level alternative (spec.md §4.11). Each
// input is built by a leftmost derivation that always picks the
// simplest branch at a nested construct (skip Optional/Star, take
// Plus exactly once) so the generated strings stay small.
func generateTestInputs(g *model.GrammarSource, ruleName string, maxCount int) *GeneratedTestInputs {
	r := g.RuleByName(ruleName)
	out := &GeneratedTestInputs{Rule: ruleName}
	if r == nil {
		return out
	}
	out.TotalAlternatives = len(r.Alternatives)
	if maxCount <= 0 || maxCount > len(r.Alternatives) {
		maxCount = len(r.Alternatives)
	}
	gen := &generator{g: g}
	for i := 0; i < maxCount; i++ {
		var b strings.Builder
		gen.alt(r.Alternatives[i], 0, &b)
		s := strings.TrimSpace(b.String())
		if s != "" {
			out.Inputs = append(out.Inputs, s)
			out.AlternativesCovered++
		}
	}
	return out
}

type generator struct {
	g *model.GrammarSource
}

func (gen *generator) alt(a *model.Alternative, depth int, b *strings.Builder) {
	for _, el := range a.Elements {
		gen.element(el, depth, b)
	}
}

func (gen *generator) element(e *model.Element, depth int, b *strings.Builder) {
	switch e.Kind {
	case model.ElemLiteral:
		b.WriteString(" ")
		b.WriteString(strings.Trim(e.Text, "'"))
	case model.ElemToken:
		b.WriteString(" ")
		b.WriteString(sampleFor(e.Text))
	case model.ElemRuleRef:
		if depth >= maxGenDepth {
			return
		}
		target := gen.g.RuleByName(e.Text)
		if target == nil || len(target.Alternatives) == 0 {
			return
		}
		gen.alt(primaryAlt(target), depth+1, b)
	case model.ElemSet:
		b.WriteString(" ")
		if len(e.Ranges) > 0 {
			b.WriteRune(e.Ranges[0][0])
		}
	case model.ElemWildcard:
		b.WriteString(" x")
	case model.ElemPlus:
		if len(e.Sub) > 0 {
			gen.alt(e.Sub[0], depth+1, b)
		}
	case model.ElemBlock:
		if len(e.Sub) > 0 {
			gen.alt(e.Sub[0], depth+1, b)
		}
	// ElemOptional, ElemStar: simplest derivation omits them entirely.
	// ElemPredicate, ElemAction: no surface text to emit.
	}
}

// primaryAlt picks the first non-self-recursive alternative of r, so
// generation doesn't immediately recurse into a left-recursive rule's
// own operator alternatives.
func primaryAlt(r *model.Rule) *model.Alternative {
	for _, a := range r.Alternatives {
		if len(a.Elements) == 0 || a.Elements[0].Kind != model.ElemRuleRef || a.Elements[0].Text != r.Name {
			return a
		}
	}
	return r.Alternatives[0]
}

func sampleFor(tokenName string) string {
	if s, ok := sampleTable[strings.ToUpper(tokenName)]; ok {
		return s
	}
	return strings.ToLower(tokenName)
}
