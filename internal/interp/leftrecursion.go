package interp

import "github.com/odvcencio/antlrlens/internal/errs"

// parseLeftRecursive implements textbook precedence climbing over a
// rule the ATN builder classified as directly left-recursive (spec.md
// §4.3, §4.5). It reuses the shared ATN walker for the primary
// alternative and for each operator "tail" (spec.md §8 scenario 3's
// calculator), but decides continue-vs-exit and which operator
// level applies itself rather than folding precedence into the
// generic decision/predicate machinery C4 exposes — the documented
// simplification recorded alongside LeftRecursionInfo (internal/atn/
// leftrecursion.go).
//
// The resulting tree is flat: the primary alternative's matches
// followed by one TerminalNode/RuleNode run per loop iteration, all as
// siblings under one RuleNode, rather than a binary-nested tree. This
// still identifies which tokens matched which grammar elements (the
// goal of spec.md §4.8's typed AST) without requiring a second,
// separate tree shape just for left-recursive rules.
func (p *Parser) parseLeftRecursive(ruleIdx, minPrec int) *RuleNode {
	info := p.a.Rules[ruleIdx]
	lr := info.LeftRecursion
	node := &RuleNode{RuleName: info.Name}

	p.walk(info.StartState, lr.LoopEntryState, node, 0)

	for {
		if p.timedOut || p.steps > maxWalkSteps {
			return node
		}
		decID, ok := p.stateToDecision[lr.LoopEntryState]
		if !ok {
			p.problems = append(p.problems, errs.New(errs.KindInternalError,
				"left-recursive loop entry has no registered decision", nil))
			return node
		}
		alt, events := p.engine.Predict(decID, p, p.ruleStack)
		p.events = append(p.events, events...)

		// alt 1 is always the loop-exit alternative (spec.md §3's
		// DecisionState ordering matches the transition-append order the
		// builder used: exit first, then each recursive alternative).
		if alt <= 1 {
			return node
		}
		i := alt - 2
		if i < 0 || i >= len(lr.RecursiveAltIndices) {
			p.problems = append(p.problems, errs.New(errs.KindInternalError,
				"left-recursive loop predicted an out-of-range alternative", nil))
			return node
		}
		if lr.PrecedenceLevels[i] < minPrec {
			// This operator binds looser than the level our caller
			// requires; stop here so the enclosing call consumes it.
			return node
		}

		p.walk(lr.TailEntryStates[i], lr.LoopBackState, node, lr.PrecedenceLevels[i]+1)
	}
}
