package predict

import "github.com/odvcencio/antlrlens/internal/atn"

// eofAcceptState is a synthetic Config.State (no entry in a.States)
// meaning "this alternative has nothing left to match but end of
// input" — reaching a rule's stop state with no calling context left
// to resume into. Without this sentinel, such a configuration would
// simply vanish from the set, and a decision's "exit the loop" / "stop
// here" alternative could never be chosen once the real input is
// actually exhausted (every other alternative dies on the EOF token
// during move(), but exit's configs would already be gone from
// closure, leaving nothing to resolve to and forcing a spurious
// fallback to the lowest-numbered alternative instead).
const eofAcceptState = -1

// closure expands a configuration set along epsilon-equivalent
// transitions (epsilon, rule-call, predicate, action, precedence) to
// the set of states where a real token must be consumed next. contextStack
// seeds the call-return stack used to resolve rule-stop transitions;
// maxDepth bounds how many levels of nested rule-stop popping are
// followed before a config is treated as exhausted (SLL's bounded
// wildcard approximation — see sllContextDepth).
func closure(a *atn.ATN, configs []Config, contextStack []int, maxDepth int, atnTransitions *int) []Config {
	var out []Config
	visited := map[[2]int]bool{} // (state, alt) already expanded this call

	var visit func(c Config, depth int)
	visit = func(c Config, depth int) {
		key := [2]int{c.State, c.Alt}
		if visited[key] {
			return
		}
		visited[key] = true

		if c.State == eofAcceptState {
			out = append(out, c)
			return
		}

		st := a.States[c.State]
		switch st.Kind {
		case atn.StateRuleStop:
			if len(c.Stack) > 0 {
				*atnTransitions++
				follow := c.Stack[len(c.Stack)-1]
				rest := c.Stack[:len(c.Stack)-1]
				visit(Config{State: follow, Alt: c.Alt, Stack: rest}, depth)
				return
			}
			idx := len(contextStack) - 1 - depth
			if idx >= 0 {
				if depth < maxDepth {
					// Resolve one more level from the real call stack
					// before giving up (bounded wildcard lookback).
					*atnTransitions++
					visit(Config{State: contextStack[idx], Alt: c.Alt}, depth+1)
				}
				// Else: the SLL bound was reached but real context still
				// exists beyond it — genuinely unknown continuation, drop.
				return
			}
			// contextStack is fully exhausted: nothing is actually calling
			// into this rule from here, so the only legal continuation is
			// end of input.
			out = append(out, Config{State: eofAcceptState, Alt: c.Alt})
			return
		}

		hasNonEpsilon := false
		for _, t := range st.Transitions {
			switch t.Kind {
			case atn.TransEpsilon, atn.TransPredicate, atn.TransAction, atn.TransPrecedence:
				*atnTransitions++
				visit(Config{State: t.Target, Alt: c.Alt, Stack: c.Stack}, depth)
			case atn.TransRule:
				*atnTransitions++
				newStack := append(append([]int{}, c.Stack...), t.FollowState)
				visit(Config{State: t.RuleTarget, Alt: c.Alt, Stack: newStack}, depth)
			default:
				hasNonEpsilon = true
			}
		}
		if hasNonEpsilon || len(st.Transitions) == 0 {
			out = append(out, c)
		}
	}

	for _, c := range configs {
		visit(c, 0)
	}
	return out
}

// move consumes one token type from every config whose state has a
// matching Atom/Set/NotSet/Wildcard transition, returning the next
// configuration set (still needing a closure pass).
func move(a *atn.ATN, configs []Config, tokenType int, atnTransitions *int) []Config {
	var out []Config
	for _, c := range configs {
		if c.State == eofAcceptState {
			if tokenType == atn.EOFType {
				out = append(out, c)
			}
			continue
		}
		st := a.States[c.State]
		for _, t := range st.Transitions {
			*atnTransitions++
			switch t.Kind {
			case atn.TransAtom:
				if t.Label == tokenType {
					out = append(out, Config{State: t.Target, Alt: c.Alt, Stack: c.Stack})
				}
			case atn.TransSet:
				if t.Set != nil && t.Set.Contains(rune(tokenType)) {
					out = append(out, Config{State: t.Target, Alt: c.Alt, Stack: c.Stack})
				}
			case atn.TransNotSet:
				if t.Set == nil || !t.Set.Contains(rune(tokenType)) {
					out = append(out, Config{State: t.Target, Alt: c.Alt, Stack: c.Stack})
				}
			case atn.TransWildcard:
				if tokenType != atn.EOFType {
					out = append(out, Config{State: t.Target, Alt: c.Alt, Stack: c.Stack})
				}
			}
		}
	}
	return out
}
