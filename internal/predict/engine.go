package predict

import "github.com/odvcencio/antlrlens/internal/atn"

// maxLookaheadTokens bounds how many tokens a single prediction may
// consume before it is treated as an unresolved conflict; prevents a
// pathological grammar from spinning forever inside one decision.
const maxLookaheadTokens = 200

// sllContextDepth is the maxDepth the SLL phase passes to closure. The
// SLL phase passes no context stack, so no enclosing call frame is
// resolved there: a configuration that reaches a rule's stop state with
// an empty stack becomes eofAcceptState. Call context is consulted only
// on LL fallback, which uses the parser's real call stack.
const sllContextDepth = 1

// Engine is the per-request C4 instance: one Engine, one DFA cache,
// shared across every decision reached while parsing a sample.
type Engine struct {
	a     *atn.ATN
	dfas  map[int]*DFA
	Profile func(DecisionProfile) // optional hook; nil disables profiling
}

// DecisionProfile is one prediction call's profiling record (spec.md
// §4.4 "Profiling hook").
type DecisionProfile struct {
	DecisionID      int
	RuleIndex       int
	StartOffset     int
	EndOffset       int
	SLLLookahead    int
	LLFallback      bool
	LLLookahead     int
	ATNTransitions  int
	DFATransitions  int
	Events          []Event
}

// New builds a prediction engine over a with an empty DFA cache; each
// interp.Parser builds its own.
func New(a *atn.ATN) *Engine {
	return &Engine{a: a, dfas: map[int]*DFA{}}
}

// Predict implements the C4 contract. ruleStack is the parser's live
// call-return stack (follow-state ids, innermost last), consulted
// only on LL fallback.
func (e *Engine) Predict(decisionID int, cur TokenCursor, ruleStack []int) (int, []Event) {
	dec := e.a.Decisions[decisionID]
	dfa := e.dfas[decisionID]
	var atnTransitions, dfaTransitions int

	if dfa == nil {
		start := closure(e.a, initialConfigs(e.a, dec), nil, sllContextDepth, &atnTransitions)
		dfa = newDFA(decisionID, dec.StateID, start)
		e.dfas[decisionID] = dfa
	}

	startOffset := cur.Pos()
	state := dfa.States[dfa.Start]
	consumed := 0
	var events []Event

	for consumed < maxLookaheadTokens {
		if alt, ok := soleAlt(state.Configs); ok {
			if e.Profile != nil {
				e.Profile(DecisionProfile{DecisionID: decisionID, RuleIndex: dec.RuleIndex,
					StartOffset: startOffset, EndOffset: cur.Pos(), SLLLookahead: consumed,
					ATNTransitions: atnTransitions, DFATransitions: dfaTransitions, Events: events})
			}
			return alt, events
		}

		tok := cur.Peek(consumed)
		next, ok := state.Edges[tok]
		if !ok {
			moved := move(e.a, state.Configs, tok, &atnTransitions)
			moved = closure(e.a, moved, nil, sllContextDepth, &atnTransitions)
			if len(moved) == 0 {
				break
			}
			next = dfa.addState(moved)
			state.Edges[tok] = next
		}
		dfaTransitions++
		state = dfa.States[next]
		consumed++

		if alts := survivingAlts(state.Configs); len(alts) >= 2 && tok < 0 {
			break
		}
	}

	sllAlts := survivingAlts(state.Configs)
	if len(sllAlts) <= 1 {
		alt := 0
		if len(sllAlts) == 1 {
			alt = sllAlts[0]
		}
		return alt, events
	}

	// SLL conflict: fall back to LL using the real rule-context stack.
	llAlt, llEvents, llLookahead := e.predictLL(decisionID, dec, cur, startOffset, ruleStack, &atnTransitions)
	events = append(events, llEvents...)
	if e.Profile != nil {
		e.Profile(DecisionProfile{DecisionID: decisionID, RuleIndex: dec.RuleIndex,
			StartOffset: startOffset, EndOffset: cur.Pos(), SLLLookahead: consumed,
			LLFallback: true, LLLookahead: llLookahead,
			ATNTransitions: atnTransitions, DFATransitions: dfaTransitions, Events: events})
	}
	return llAlt, events
}

// predictLL recomputes closures with the parser's actual call stack so
// rule-stop transitions resolve exactly, instead of the SLL phase's
// bounded wildcard. If alternatives still survive at end of input, an
// AmbiguityEvent is recorded and the lowest-numbered alternative wins
// (spec.md §4.4 "documented conflict-resolution rule").
func (e *Engine) predictLL(decisionID int, dec *atn.DecisionState, cur TokenCursor, startOffset int, ruleStack []int, atnTransitions *int) (int, []Event, int) {
	configs := closure(e.a, initialConfigs(e.a, dec), ruleStack, len(ruleStack)+1, atnTransitions)
	consumed := 0
	for consumed < maxLookaheadTokens {
		if alt, ok := soleAlt(configs); ok {
			return alt, nil, consumed
		}
		tok := cur.Peek(consumed)
		moved := move(e.a, configs, tok, atnTransitions)
		moved = closure(e.a, moved, ruleStack, len(ruleStack)+1, atnTransitions)
		if len(moved) == 0 {
			break
		}
		configs = moved
		consumed++
		if tok < 0 {
			break
		}
	}

	alts := survivingAlts(configs)
	if len(alts) == 0 {
		return 0, nil, consumed
	}
	if len(alts) == 1 {
		return alts[0], nil, consumed
	}
	evt := Event{Kind: EventAmbiguity, DecisionID: decisionID, RuleIndex: dec.RuleIndex,
		Alternatives: alts, InputStart: startOffset, InputEnd: cur.Pos()}
	return alts[0], []Event{evt}, consumed
}

// DFAStateCount returns the total DFA state count across every
// decision cached by this Engine, for C7's profiling report.
func (e *Engine) DFAStateCount() int {
	n := 0
	for _, d := range e.dfas {
		n += len(d.States)
	}
	return n
}

// initialConfigs seeds one configuration per alternative epsilon
// leaving the decision state, in source order (invariant I4 guarantees
// exactly NumAlts of them).
func initialConfigs(a *atn.ATN, dec *atn.DecisionState) []Config {
	configs := make([]Config, 0, dec.NumAlts)
	alt := 1
	for _, t := range a.States[dec.StateID].Transitions {
		if t.Kind == atn.TransEpsilon {
			configs = append(configs, Config{State: t.Target, Alt: alt})
			alt++
		}
	}
	return configs
}

func soleAlt(configs []Config) (int, bool) {
	alts := survivingAlts(configs)
	if len(alts) == 1 {
		return alts[0], true
	}
	return 0, false
}

func survivingAlts(configs []Config) []int {
	seen := map[int]bool{}
	var out []int
	for _, c := range configs {
		if !seen[c.Alt] {
			seen[c.Alt] = true
			out = append(out, c.Alt)
		}
	}
	return out
}
