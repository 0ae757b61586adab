package interp

import (
	"context"
	"fmt"
	"time"

	"github.com/odvcencio/antlrlens/internal/atn"
	"github.com/odvcencio/antlrlens/internal/errs"
	"github.com/odvcencio/antlrlens/internal/predict"
)

// maxWalkSteps bounds total ATN transitions walked per parse as a
// hard backstop independent of wall-clock time, so a malformed or
// pathologically cyclic ATN cannot spin forever even inside a single
// deadline check interval.
const maxWalkSteps = 2_000_000

// deadlineCheckEvery amortizes the cost of checking the context
// deadline to once per this many walked steps.
const deadlineCheckEvery = 512

// Parser interprets a grammar's parser ATN against a token stream
// (spec.md §4.5 "Parser contract"). One Parser handles exactly one
// sample parse; create a new one per call.
type Parser struct {
	a      *atn.ATN
	tokens []Token
	pos    int

	engine          *predict.Engine
	ruleStack       []int // follow-state ids, innermost last; consulted on LL fallback
	stateToDecision map[int]int

	ctx      context.Context
	steps    int
	problems errs.List
	events   []predict.Event
	timedOut bool

	// OnError, if set, is called with the most recently predicted
	// decision id whenever consumeOrRecover records a parse error —
	// C7's profiling recorder wires this to attribute error counts to
	// the decision active when recovery happened.
	OnError        func(decisionID int)
	lastDecisionID int
	haveDecision   bool
}

// NewParser builds a Parser over tokens using a's parser rules.
// ctx's deadline (if any) bounds the whole parse (spec.md §4.5
// "Timeouts").
func NewParser(ctx context.Context, a *atn.ATN, tokens []Token) *Parser {
	p := &Parser{a: a, tokens: tokens, ctx: ctx, stateToDecision: map[int]int{}}
	p.engine = predict.New(a)
	for _, d := range a.Decisions {
		p.stateToDecision[d.StateID] = d.DecisionID
	}
	return p
}

// ParseSample runs a parse with a fixed wall-clock budget, implementing
// the per-sample timeout spec.md §4.5 requires without aborting the
// rest of a multi-sample request.
func ParseSample(a *atn.ATN, tokens []Token, startRule string, timeout time.Duration) (*RuleNode, []predict.Event, errs.List) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	p := NewParser(ctx, a, tokens)
	tree, problems := p.Parse(startRule)
	if p.timedOut {
		problems = append(problems, errs.New(errs.KindParseTimeout,
			fmt.Sprintf("parse of start rule %q exceeded %s", startRule, timeout), nil))
	}
	return tree, p.events, problems
}

// Engine exposes the underlying prediction engine so callers (C7's
// profiling recorder) can set its Profile hook before calling Parse.
func (p *Parser) Engine() *predict.Engine { return p.engine }

// Peek and Pos implement predict.TokenCursor.
func (p *Parser) Peek(offset int) int {
	i := p.pos + offset
	if i < 0 || i >= len(p.tokens) {
		return atn.EOFType
	}
	return p.tokens[i].Type
}

func (p *Parser) Pos() int { return p.pos }

// Parse implements the C5 contract: `parse(grammar, tokens,
// start_rule) → ParseTree`.
func (p *Parser) Parse(startRule string) (*RuleNode, errs.List) {
	idx := p.a.RuleIndexOf(startRule)
	if idx < 0 {
		p.problems = append(p.problems, errs.New(errs.KindUndefinedRule,
			fmt.Sprintf("start rule %q not found", startRule), nil))
		return nil, p.problems
	}
	node := p.parseRule(idx, 0)
	return node, p.problems
}

func (p *Parser) parseRule(ruleIdx, minPrec int) *RuleNode {
	info := p.a.Rules[ruleIdx]
	if info.LeftRecursion != nil {
		return p.parseLeftRecursive(ruleIdx, minPrec)
	}
	node := &RuleNode{RuleName: info.Name}
	p.walk(info.StartState, info.StopState, node, 0)
	return node
}

// walk interprets states from start to stop, consuming terminals,
// recursing into rule calls, and delegating to C4 at decision states
// (spec.md §4.5). nestedMinPrec is forwarded to any nested left-recursive
// rule call reached along the way (0 outside a precedence-climbing tail).
func (p *Parser) walk(start, stop int, node *RuleNode, nestedMinPrec int) {
	cur := start
	for cur != stop {
		if p.timedOut {
			return
		}
		p.steps++
		if p.steps > maxWalkSteps {
			p.problems = append(p.problems, errs.New(errs.KindInternalError, "ATN walk exceeded the step safety limit", nil))
			return
		}
		if p.steps%deadlineCheckEvery == 0 && p.ctx.Err() != nil {
			p.timedOut = true
			return
		}

		st := p.a.States[cur]

		if decID, isDecision := p.stateToDecision[cur]; isDecision {
			alt, events := p.engine.Predict(decID, p, p.ruleStack)
			p.events = append(p.events, events...)
			p.lastDecisionID, p.haveDecision = decID, true
			target, ok := nthEpsilonTarget(st, alt)
			if !ok {
				p.problems = append(p.problems, errs.New(errs.KindInternalError, "prediction returned an out-of-range alternative", nil))
				return
			}
			cur = target
			continue
		}

		if len(st.Transitions) == 0 {
			return
		}
		t := st.Transitions[0]
		switch t.Kind {
		case atn.TransEpsilon, atn.TransPredicate, atn.TransAction, atn.TransPrecedence:
			cur = t.Target

		case atn.TransAtom, atn.TransSet, atn.TransNotSet, atn.TransWildcard:
			cur = p.consumeOrRecover(t, node)

		case atn.TransRule:
			if t.RuleTarget < 0 {
				p.problems = append(p.problems, errs.New(errs.KindUndefinedRule,
					fmt.Sprintf("reference to an undefined rule from rule index %d", st.RuleIndex), nil))
				cur = t.Target
				continue
			}
			p.ruleStack = append(p.ruleStack, t.FollowState)
			child := p.parseRule(t.RuleIndex, nestedMinPrec)
			p.ruleStack = p.ruleStack[:len(p.ruleStack)-1]
			node.Children = append(node.Children, child)
			cur = t.Target
		}
	}
}

// consumeOrRecover matches t against the current token, recovering by
// deleting one unexpected token or inserting a synthetic missing one
// when it does not (spec.md §4.5).
func (p *Parser) consumeOrRecover(t atn.Transition, node *RuleNode) int {
	if p.matchesAt(t, p.pos) {
		tok := p.tokens[p.pos]
		node.Children = append(node.Children, &TerminalNode{Token: tok})
		p.pos++
		return t.Target
	}

	if p.OnError != nil && p.haveDecision {
		p.OnError(p.lastDecisionID)
	}
	loc := p.locationAt(p.pos)
	if p.pos+1 < len(p.tokens) && p.matchesAt(t, p.pos+1) {
		bad := p.tokens[p.pos]
		p.problems = append(p.problems, errs.New(errs.KindParseError,
			fmt.Sprintf("unexpected token %q", bad.Text), loc))
		node.Children = append(node.Children, &ErrorNode{Token: bad, Message: "unexpected token, deleted"})
		p.pos++
		tok := p.tokens[p.pos]
		node.Children = append(node.Children, &TerminalNode{Token: tok})
		p.pos++
		return t.Target
	}

	p.problems = append(p.problems, errs.New(errs.KindParseError, "missing expected token", loc))
	node.Children = append(node.Children, &ErrorNode{Message: "missing token, inserted"})
	return t.Target
}

func (p *Parser) matchesAt(t atn.Transition, pos int) bool {
	if pos >= len(p.tokens) {
		return false
	}
	tt := p.tokens[pos].Type
	switch t.Kind {
	case atn.TransAtom:
		return tt == t.Label
	case atn.TransSet:
		return t.Set != nil && t.Set.Contains(rune(tt))
	case atn.TransNotSet:
		return t.Set == nil || !t.Set.Contains(rune(tt))
	case atn.TransWildcard:
		return tt != atn.EOFType
	default:
		return false
	}
}

func (p *Parser) locationAt(pos int) *errs.Location {
	if pos >= len(p.tokens) {
		return nil
	}
	tok := p.tokens[pos]
	return &errs.Location{Line: tok.Line, Column: tok.Column, Offset: tok.Offset}
}

// nthEpsilonTarget returns the target of the alt-th (1-indexed)
// outgoing epsilon transition of st, in source order (invariant I4
// guarantees the count matches the decision's NumAlts).
func nthEpsilonTarget(st *atn.State, alt int) (int, bool) {
	n := 0
	for _, t := range st.Transitions {
		if t.Kind != atn.TransEpsilon {
			continue
		}
		n++
		if n == alt {
			return t.Target, true
		}
	}
	return 0, false
}
