// Package profile implements C7, the profiling recorder: it listens to
// C4's DecisionProfile events and aggregates per-decision statistics
// across one parse (spec.md §4.7). The engine stops profiling at parse
// completion; the resulting report is attached to the parse result by
// the Engine Façade (C11), never recomputed afterward.
package profile

import "github.com/odvcencio/antlrlens/internal/predict"

// DecisionStats is one decision's aggregated profile across a parse
// (a decision state may be visited many times, e.g. inside a loop).
type DecisionStats struct {
	DecisionID      int
	RuleIndex       int
	Invocations     int
	TotalSLLLookahead int
	MinSLLLookahead   int
	MaxSLLLookahead   int
	LLFallbacks       int
	TotalLLLookahead  int
	MinLLLookahead    int
	MaxLLLookahead    int
	ATNTransitions    int
	DFATransitions    int
	AmbiguityCount        int
	ContextSensitivityCount int
	ErrorCount            int
}

// Report is the full C7 profiling result for one parse.
type Report struct {
	PerDecision  []DecisionStats
	DFAStateCount int
}

// Recorder aggregates DecisionProfile events emitted during one parse.
// It is not safe for concurrent use by multiple parses; create one per
// parse, matching the Parser/Engine lifetime (spec.md §5 "confined to
// the request task").
type Recorder struct {
	byDecision map[int]*DecisionStats
	order      []int
}

// New creates an empty Recorder.
func New() *Recorder {
	return &Recorder{byDecision: map[int]*DecisionStats{}}
}

// Observe folds one DecisionProfile into the running aggregate. Wire
// it as an Engine's predict.Engine.Profile callback to record live.
func (r *Recorder) Observe(p predict.DecisionProfile) {
	st, ok := r.byDecision[p.DecisionID]
	if !ok {
		st = &DecisionStats{DecisionID: p.DecisionID, RuleIndex: p.RuleIndex}
		r.byDecision[p.DecisionID] = st
		r.order = append(r.order, p.DecisionID)
	}
	st.Invocations++
	st.TotalSLLLookahead += p.SLLLookahead
	st.MinSLLLookahead = minNonZero(st.MinSLLLookahead, p.SLLLookahead, st.Invocations == 1)
	st.MaxSLLLookahead = maxOf(st.MaxSLLLookahead, p.SLLLookahead)
	st.ATNTransitions += p.ATNTransitions
	st.DFATransitions += p.DFATransitions
	if p.LLFallback {
		st.LLFallbacks++
		st.TotalLLLookahead += p.LLLookahead
		st.MinLLLookahead = minNonZero(st.MinLLLookahead, p.LLLookahead, st.LLFallbacks == 1)
		st.MaxLLLookahead = maxOf(st.MaxLLLookahead, p.LLLookahead)
	}
	for _, ev := range p.Events {
		switch ev.Kind {
		case predict.EventAmbiguity:
			st.AmbiguityCount++
		case predict.EventContextSensitivity:
			st.ContextSensitivityCount++
		}
	}
}

// ObserveError records a parse error attributed to decID (the decision
// active when the error was recovered from), for the ErrorCount field.
func (r *Recorder) ObserveError(decID int) {
	if st, ok := r.byDecision[decID]; ok {
		st.ErrorCount++
	}
}

// Finish produces the final Report; dfaStateCount is the total DFA
// state count across every decision after the run, supplied by the
// caller since the Recorder itself never touches predict.Engine's
// internal DFA cache.
func (r *Recorder) Finish(dfaStateCount int) *Report {
	rep := &Report{DFAStateCount: dfaStateCount}
	for _, id := range r.order {
		rep.PerDecision = append(rep.PerDecision, *r.byDecision[id])
	}
	return rep
}

func maxOf(a, b int) int {
	if b > a {
		return b
	}
	return a
}

func minNonZero(cur, v int, first bool) int {
	if first || v < cur {
		return v
	}
	return cur
}
