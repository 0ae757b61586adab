package analysis

import (
	"sort"

	"github.com/odvcencio/antlrlens/internal/atn"
	"github.com/odvcencio/antlrlens/internal/model"
)

// anyTokenType is the FIRST-set sentinel for a wildcard (`.`) match;
// it never collides with a real token type (all real types are >= 0
// with EOF == 0, so a negative sentinel is unambiguous).
const anyTokenType = -1

// tokenSet is a sorted-on-read set of token type ids.
type tokenSet map[int]bool

func (s tokenSet) addAll(o tokenSet) bool {
	changed := false
	for t := range o {
		if !s[t] {
			s[t] = true
			changed = true
		}
	}
	return changed
}

func (s tokenSet) sorted() []int {
	out := make([]int, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

func intersects(a, b tokenSet) bool {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for t := range small {
		if big[t] {
			return true
		}
	}
	return false
}

// RuleFirstFollow is one rule's entry in a FirstFollowReport.
type RuleFirstFollow struct {
	Rule     string
	Nullable bool
	First    []int
	Follow   []int
}

// DecisionLookahead is the per-decision-point lookahead breakdown
// spec.md §4.6 describes: FIRST of each alternative's own elements,
// with an ambiguous-by-lookahead flag when any two alternatives' sets
// intersect. The continuation after an optional/star construct is not
// added to any alternative's set.
type DecisionLookahead struct {
	Rule           string
	Construct      string // "rule" | "optional" | "star" | "plus" | "block"
	PerAlternative [][]int
	Ambiguous      bool
}

// FirstFollowReport is spec.md §4.6's FIRST/FOLLOW analysis result.
type FirstFollowReport struct {
	Rules     []RuleFirstFollow
	Decisions []DecisionLookahead
}

// firstFollowCalc carries the fixpoint state and the resolved token
// table used to turn literal/token element text into type ids.
type firstFollowCalc struct {
	g        *model.GrammarSource
	tokens   map[string]int
	nullable map[string]bool
	first    map[string]tokenSet
	follow   map[string]tokenSet
}

// FirstFollowOf computes FIRST/FOLLOW over g's parser rules (spec.md
// §4.6); ruleFilter restricts the Rules slice of the report to one
// rule when non-empty, "" reports every parser rule. Lexer/fragment
// rules are excluded: their "lookahead" is a character set, not a
// token set, and is analyzed at the rune level by C5's lexer instead.
func FirstFollowOf(g *model.GrammarSource, a *atn.ATN, ruleFilter string) *FirstFollowReport {
	c := &firstFollowCalc{
		g:        g,
		tokens:   a.TokenTypes,
		nullable: map[string]bool{},
		first:    map[string]tokenSet{},
		follow:   map[string]tokenSet{},
	}
	var parserRules []*model.Rule
	for _, r := range g.Rules {
		if r.Kind == model.RuleParser {
			parserRules = append(parserRules, r)
			c.first[r.Name] = tokenSet{}
			c.follow[r.Name] = tokenSet{}
		}
	}

	// Nullable fixpoint.
	for {
		changed := false
		for _, r := range parserRules {
			if c.nullable[r.Name] {
				continue
			}
			for _, alt := range r.Alternatives {
				if c.nullableSeq(alt.Elements) {
					c.nullable[r.Name] = true
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}

	// FIRST fixpoint.
	for {
		changed := false
		for _, r := range parserRules {
			for _, alt := range r.Alternatives {
				if c.first[r.Name].addAll(c.firstSeq(alt.Elements)) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	// FOLLOW fixpoint: each round re-derives contributions from every
	// alternative's internal structure; sets only grow, so a round
	// with no growth means the fixpoint has converged.
	for {
		before := c.totalFollowSize()
		for _, r := range parserRules {
			ruleFollow := func() tokenSet { return c.follow[r.Name] }
			for _, alt := range r.Alternatives {
				c.processSeq(alt.Elements, ruleFollow)
			}
		}
		if c.totalFollowSize() == before {
			break
		}
	}

	report := &FirstFollowReport{}
	for _, r := range parserRules {
		if ruleFilter != "" && r.Name != ruleFilter {
			continue
		}
		report.Rules = append(report.Rules, RuleFirstFollow{
			Rule:     r.Name,
			Nullable: c.nullable[r.Name],
			First:    c.first[r.Name].sorted(),
			Follow:   c.follow[r.Name].sorted(),
		})
	}

	for _, r := range parserRules {
		if ruleFilter != "" && r.Name != ruleFilter {
			continue
		}
		report.Decisions = append(report.Decisions, c.decisionLookaheadsOf(r)...)
	}
	return report
}

func (c *firstFollowCalc) totalFollowSize() int {
	n := 0
	for _, s := range c.follow {
		n += len(s)
	}
	return n
}

func (c *firstFollowCalc) nullableSeq(els []*model.Element) bool {
	for _, e := range els {
		if !c.nullableElem(e) {
			return false
		}
	}
	return true
}

func (c *firstFollowCalc) nullableElem(e *model.Element) bool {
	switch e.Kind {
	case model.ElemLiteral, model.ElemToken, model.ElemWildcard, model.ElemSet:
		return false
	case model.ElemPredicate, model.ElemAction:
		return true
	case model.ElemRuleRef:
		return c.nullable[e.Text]
	case model.ElemOptional, model.ElemStar:
		return true
	case model.ElemPlus, model.ElemBlock:
		for _, sub := range e.Sub {
			if c.nullableSeq(sub.Elements) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (c *firstFollowCalc) firstSeq(els []*model.Element) tokenSet {
	out := tokenSet{}
	for _, e := range els {
		out.addAll(c.firstElem(e))
		if !c.nullableElem(e) {
			break
		}
	}
	return out
}

func (c *firstFollowCalc) firstElem(e *model.Element) tokenSet {
	out := tokenSet{}
	switch e.Kind {
	case model.ElemLiteral:
		if t, ok := c.tokens[e.Text]; ok {
			out[t] = true
		}
	case model.ElemToken:
		if e.Text == "EOF" {
			out[atn.EOFType] = true
		} else if t, ok := c.tokens[e.Text]; ok {
			out[t] = true
		}
	case model.ElemWildcard:
		out[anyTokenType] = true
	case model.ElemSet:
		for _, rng := range e.Ranges {
			for r := rng[0]; r <= rng[1]; r++ {
				out[int(r)] = true
			}
		}
	case model.ElemRuleRef:
		out.addAll(c.first[e.Text])
	case model.ElemPredicate, model.ElemAction:
		// epsilon
	case model.ElemOptional, model.ElemStar, model.ElemPlus, model.ElemBlock:
		for _, sub := range e.Sub {
			out.addAll(c.firstSeq(sub.Elements))
		}
	}
	return out
}

// processSeq walks els left to right, attributing each RuleRef's
// FOLLOW contribution from the rest of the sequence, falling back to
// trailingFollow when the remainder is nullable or empty. It recurses
// into nested blocks so a rule-reference nested arbitrarily deep still
// gets the right continuation.
func (c *firstFollowCalc) processSeq(els []*model.Element, trailingFollow func() tokenSet) {
	for i, e := range els {
		rest := els[i+1:]
		cont := c.firstSeq(rest)
		if c.nullableSeq(rest) {
			cont.addAll(trailingFollow())
		}
		switch e.Kind {
		case model.ElemRuleRef:
			c.follow[e.Text].addAll(cont)
		case model.ElemOptional, model.ElemStar, model.ElemPlus, model.ElemBlock:
			loopCont := tokenSet{}
			loopCont.addAll(cont)
			if e.Kind == model.ElemStar || e.Kind == model.ElemPlus {
				loopCont.addAll(c.firstElem(e)) // the construct can re-enter itself
			}
			capturedCont := loopCont
			for _, sub := range e.Sub {
				c.processSeq(sub.Elements, func() tokenSet { return capturedCont })
			}
		}
	}
}

// decisionLookaheadsOf enumerates the decision points owned by r that
// have two or more alternatives: the rule's own top-level alternative
// list, plus each nested optional/star/plus/block element. A construct
// with a single alternative (e.g. `(',' INT)*`) gets no entry.
func (c *firstFollowCalc) decisionLookaheadsOf(r *model.Rule) []DecisionLookahead {
	var out []DecisionLookahead

	// A directly left-recursive rule's real entry decision is the
	// transformed ATN's primary-alternative choice (internal/atn's
	// precedence-climbing transform), not a straight union over every
	// original alternative: the recursive alternatives all start with
	// the rule itself, so their naive FIRST set is just FIRST(r) again
	// and would spuriously "intersect" with every other alternative.
	ruleAlts := primaryAlternatives(r)
	if len(ruleAlts) > 1 {
		var perAlt [][]int
		for _, alt := range ruleAlts {
			perAlt = append(perAlt, c.firstSeq(alt.Elements).sorted())
		}
		out = append(out, DecisionLookahead{
			Rule:           r.Name,
			Construct:      "rule",
			PerAlternative: perAlt,
			Ambiguous:      anyPairIntersects(perAlt),
		})
	}
	var walkEls func(els []*model.Element)
	walkEls = func(els []*model.Element) {
		for _, e := range els {
			switch e.Kind {
			case model.ElemOptional, model.ElemStar, model.ElemPlus, model.ElemBlock:
				if len(e.Sub) > 1 {
					var perAlt [][]int
					for _, sub := range e.Sub {
						perAlt = append(perAlt, c.firstSeq(sub.Elements).sorted())
					}
					out = append(out, DecisionLookahead{
						Rule:           r.Name,
						Construct:      string(e.Kind),
						PerAlternative: perAlt,
						Ambiguous:      anyPairIntersects(perAlt),
					})
				}
				for _, sub := range e.Sub {
					walkEls(sub.Elements)
				}
			}
		}
	}
	for _, alt := range r.Alternatives {
		walkEls(alt.Elements)
	}
	return out
}

// primaryAlternatives returns r's alternatives with any directly
// self-recursive ones (leftmost element references r itself) removed,
// mirroring internal/atn's detectLeftRecursion split (which atn does
// not export).
func primaryAlternatives(r *model.Rule) []*model.Alternative {
	if r.Kind != model.RuleParser {
		return r.Alternatives
	}
	var out []*model.Alternative
	for _, alt := range r.Alternatives {
		if len(alt.Elements) > 0 && alt.Elements[0].Kind == model.ElemRuleRef && alt.Elements[0].Text == r.Name {
			continue
		}
		out = append(out, alt)
	}
	return out
}

func anyPairIntersects(sets [][]int) bool {
	toSet := func(ints []int) tokenSet {
		s := make(tokenSet, len(ints))
		for _, t := range ints {
			s[t] = true
		}
		return s
	}
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			if intersects(toSet(sets[i]), toSet(sets[j])) {
				return true
			}
		}
	}
	return false
}
