package atn

import (
	"github.com/odvcencio/antlrlens/internal/errs"
	"github.com/odvcencio/antlrlens/internal/model"
)

// Build implements the C3 contract: `build(grammar) → ATN` (spec.md
// §4.3). It allocates a rule-start/rule-stop pair per rule, emits a
// DecisionState for every Alternative list of length ≥ 2 (and for
// every repeating/optional block), and applies the left-recursion
// precedence-climbing transform to directly left-recursive parser
// rules.
func Build(g *model.GrammarSource) (*ATN, errs.List) {
	isLexerOnly := g.Kind == model.KindLexer
	a := newATN(isLexerOnly)
	var problems errs.List

	// Token vocabulary first, so rule bodies can resolve atom labels
	// while states are being built.
	assignTokenTypes(a, g)

	// Allocate rule index + start/stop state pair for every rule before
	// building any body, so forward references resolve.
	for i, r := range g.Rules {
		a.ruleIndex[r.Name] = i
		start := a.newState(StateRuleStart, i)
		stop := a.newState(StateRuleStop, i)
		a.Rules = append(a.Rules, &RuleInfo{
			Name:         r.Name,
			Index:        i,
			StartState:   start,
			StopState:    stop,
			Kind:         string(r.Kind),
			LexerCommand: firstNonEmptyCommand(r.LexerCommands),
		})
	}

	b := &builder{atn: a, g: g}
	for i, r := range g.Rules {
		if err := b.buildRule(i, r); err != nil {
			problems = append(problems, err)
		}
	}

	if err := a.Validate(); err != nil {
		problems = append(problems, errs.New(errs.KindInternalError, err.Error(), nil))
	}
	return a, problems
}

type builder struct {
	atn     *ATN
	g       *model.GrammarSource
	inLexer bool // true while building a lexer/fragment rule's body
}

// assignTokenTypes numbers token types after EOF (0): explicit lexer
// rules first (source order), then literal text encountered in parser
// rule bodies, then names declared in `tokens { ... }` but otherwise
// unused.
func assignTokenTypes(a *ATN, g *model.GrammarSource) {
	add := func(key string) int {
		if id, ok := a.TokenTypes[key]; ok {
			return id
		}
		id := len(a.TokenNames)
		a.TokenTypes[key] = id
		a.TokenNames = append(a.TokenNames, key)
		return id
	}
	for _, r := range g.Rules {
		if r.Kind == model.RuleLexer {
			add(r.Name)
		}
	}
	var walk func(elems []*model.Element)
	walk = func(elems []*model.Element) {
		for _, el := range elems {
			if el.Kind == model.ElemLiteral {
				add(el.Text)
			}
			for _, sub := range el.Sub {
				walk(sub.Elements)
			}
		}
	}
	for _, r := range g.Rules {
		if r.Kind != model.RuleLexer && r.Kind != model.RuleFragment {
			for _, alt := range r.Alternatives {
				walk(alt.Elements)
			}
		}
	}
	for _, name := range g.Tokens {
		add(name)
	}
}

func firstNonEmptyCommand(cmds []string) string {
	for _, c := range cmds {
		if c != "" {
			return c
		}
	}
	return ""
}

func (b *builder) buildRule(ruleIdx int, r *model.Rule) *errs.Error {
	info := b.atn.Rules[ruleIdx]
	b.inLexer = r.Kind == model.RuleLexer || r.Kind == model.RuleFragment

	if lr := detectLeftRecursion(r); lr != nil {
		b.buildLeftRecursiveRule(ruleIdx, r, lr)
		return nil
	}

	entry, exit := b.buildAltList(ruleIdx, r.Alternatives)
	b.atn.addTransition(info.StartState, Transition{Kind: TransEpsilon, Target: entry})
	b.atn.addTransition(exit, Transition{Kind: TransEpsilon, Target: info.StopState})
	return nil
}

// buildAltList builds a decision over alts (or splices straight
// through when there is exactly one), returning (entry, exit) state
// ids for the whole list.
func (b *builder) buildAltList(ruleIdx int, alts []*model.Alternative) (entry, exit int) {
	if len(alts) == 1 {
		return b.buildAlt(ruleIdx, alts[0])
	}
	blockStart := b.atn.newState(StateBlockStart, ruleIdx)
	blockEnd := b.atn.newState(StateBlockEnd, ruleIdx)
	b.atn.addDecision(blockStart, ruleIdx, len(alts))
	for _, alt := range alts {
		altEntry, altExit := b.buildAlt(ruleIdx, alt)
		b.atn.addTransition(blockStart, Transition{Kind: TransEpsilon, Target: altEntry})
		b.atn.addTransition(altExit, Transition{Kind: TransEpsilon, Target: blockEnd})
	}
	return blockStart, blockEnd
}

// buildAlt chains one alternative's elements in sequence.
func (b *builder) buildAlt(ruleIdx int, alt *model.Alternative) (entry, exit int) {
	if len(alt.Elements) == 0 {
		s := b.atn.newState(StateBasic, ruleIdx)
		return s, s
	}
	entry, exit = b.buildElement(ruleIdx, alt.Elements[0])
	for _, el := range alt.Elements[1:] {
		nextEntry, nextExit := b.buildElement(ruleIdx, el)
		b.atn.addTransition(exit, Transition{Kind: TransEpsilon, Target: nextEntry})
		exit = nextExit
	}
	return entry, exit
}

func (b *builder) buildElement(ruleIdx int, el *model.Element) (entry, exit int) {
	switch el.Kind {
	case model.ElemLiteral:
		if b.inLexer {
			// Inside a lexer/fragment rule, a quoted literal matches its
			// characters one at a time against raw input, not a
			// pre-assigned token type (that numbering only applies to
			// parser rule bodies, spec.md §4.3).
			return b.buildRuneChain(ruleIdx, el.Text)
		}
		s := b.atn.newState(StateBasic, ruleIdx)
		e := b.atn.newState(StateBasic, ruleIdx)
		b.atn.addTransition(s, Transition{Kind: TransAtom, Target: e, Label: b.atn.TokenTypes[el.Text]})
		return s, e

	case model.ElemToken:
		if b.inLexer {
			// An uppercase reference inside a lexer rule is a call to
			// another lexer rule or fragment, not a token match.
			return b.buildRuleCall(ruleIdx, el.Text)
		}
		s := b.atn.newState(StateBasic, ruleIdx)
		e := b.atn.newState(StateBasic, ruleIdx)
		label := EOFType
		if el.Text != "EOF" {
			label = b.atn.TokenTypes[el.Text]
		}
		b.atn.addTransition(s, Transition{Kind: TransAtom, Target: e, Label: label})
		return s, e

	case model.ElemWildcard:
		s := b.atn.newState(StateBasic, ruleIdx)
		e := b.atn.newState(StateBasic, ruleIdx)
		b.atn.addTransition(s, Transition{Kind: TransWildcard, Target: e})
		return s, e

	case model.ElemSet:
		s := b.atn.newState(StateBasic, ruleIdx)
		e := b.atn.newState(StateBasic, ruleIdx)
		set := NewIntervalSet(el.Ranges)
		kind := TransSet
		if el.Negated {
			kind = TransNotSet
		}
		b.atn.addTransition(s, Transition{Kind: kind, Target: e, Set: set})
		return s, e

	case model.ElemRuleRef:
		return b.buildRuleCall(ruleIdx, el.Text)

	case model.ElemPredicate:
		s := b.atn.newState(StateBasic, ruleIdx)
		e := b.atn.newState(StateBasic, ruleIdx)
		b.atn.addTransition(s, Transition{Kind: TransPredicate, Target: e, RuleIndex: ruleIdx})
		return s, e

	case model.ElemAction:
		s := b.atn.newState(StateBasic, ruleIdx)
		e := b.atn.newState(StateBasic, ruleIdx)
		b.atn.addTransition(s, Transition{Kind: TransAction, Target: e, RuleIndex: ruleIdx})
		return s, e

	case model.ElemBlock:
		return b.buildAltList(ruleIdx, el.Sub)

	case model.ElemOptional:
		sub := el.Sub[0]
		subEntry, subExit := b.buildAlt(ruleIdx, sub)
		d := b.atn.newState(StateBlockStart, ruleIdx)
		end := b.atn.newState(StateBlockEnd, ruleIdx)
		b.atn.addDecision(d, ruleIdx, 2)
		b.atn.addTransition(d, Transition{Kind: TransEpsilon, Target: subEntry})
		b.atn.addTransition(d, Transition{Kind: TransEpsilon, Target: end})
		b.atn.addTransition(subExit, Transition{Kind: TransEpsilon, Target: end})
		return d, end

	case model.ElemStar:
		sub := el.Sub[0]
		subEntry, subExit := b.buildAlt(ruleIdx, sub)
		entryState := b.atn.newState(StateStarLoopEntry, ruleIdx)
		loopBack := b.atn.newState(StateStarLoopback, ruleIdx)
		end := b.atn.newState(StateLoopEnd, ruleIdx)
		b.atn.addDecision(entryState, ruleIdx, 2)
		b.atn.addTransition(entryState, Transition{Kind: TransEpsilon, Target: subEntry})
		b.atn.addTransition(entryState, Transition{Kind: TransEpsilon, Target: end})
		b.atn.addTransition(subExit, Transition{Kind: TransEpsilon, Target: loopBack})
		b.atn.addTransition(loopBack, Transition{Kind: TransEpsilon, Target: entryState})
		return entryState, end

	case model.ElemPlus:
		sub := el.Sub[0]
		subEntry, subExit := b.buildAlt(ruleIdx, sub)
		blockStart := b.atn.newState(StatePlusBlockStart, ruleIdx)
		loopBack := b.atn.newState(StatePlusLoopBack, ruleIdx)
		end := b.atn.newState(StateLoopEnd, ruleIdx)
		b.atn.addDecision(loopBack, ruleIdx, 2)
		b.atn.addTransition(blockStart, Transition{Kind: TransEpsilon, Target: subEntry})
		b.atn.addTransition(subExit, Transition{Kind: TransEpsilon, Target: loopBack})
		b.atn.addTransition(loopBack, Transition{Kind: TransEpsilon, Target: subEntry})
		b.atn.addTransition(loopBack, Transition{Kind: TransEpsilon, Target: end})
		return blockStart, end

	default:
		s := b.atn.newState(StateBasic, ruleIdx)
		return s, s
	}
}

// buildRuleCall emits a TransRule edge to another rule (by name),
// shared by parser-rule references and lexer-rule-body references to
// other lexer rules or fragments.
func (b *builder) buildRuleCall(ruleIdx int, name string) (entry, exit int) {
	target := b.atn.RuleIndexOf(name)
	s := b.atn.newState(StateBasic, ruleIdx)
	e := b.atn.newState(StateBasic, ruleIdx)
	ruleTarget := -1
	if target >= 0 {
		ruleTarget = b.atn.Rules[target].StartState
	}
	b.atn.addTransition(s, Transition{Kind: TransRule, Target: e, RuleTarget: ruleTarget, FollowState: e, RuleIndex: target})
	return s, e
}

// buildRuneChain builds a sequence of per-rune Atom transitions
// matching text literally, used for quoted literals inside lexer and
// fragment rule bodies (spec.md §3 "Atom — single token type or
// character").
func (b *builder) buildRuneChain(ruleIdx int, text string) (entry, exit int) {
	runes := []rune(text)
	if len(runes) == 0 {
		s := b.atn.newState(StateBasic, ruleIdx)
		return s, s
	}
	entry = b.atn.newState(StateBasic, ruleIdx)
	cur := entry
	for _, r := range runes {
		next := b.atn.newState(StateBasic, ruleIdx)
		b.atn.addTransition(cur, Transition{Kind: TransAtom, Target: next, Label: int(r)})
		cur = next
	}
	return entry, cur
}
