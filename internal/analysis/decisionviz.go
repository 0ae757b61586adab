package analysis

import (
	"github.com/odvcencio/antlrlens/internal/atn"
	"github.com/odvcencio/antlrlens/internal/render"
)

// DecisionViz is one entry of spec.md §4.6's decision visualization:
// a decision id, its owning state id, its alternative count, and a DOT
// rendering of the sub-ATN rooted at the decision up to its block-end.
type DecisionViz struct {
	DecisionID int
	StateID    int
	Alts       int
	DOT        string
}

// DecisionsOf enumerates the DecisionStates owned by ruleName and
// renders each one's sub-ATN, stopping at the rule's own stop state
// (the ATN has no generic notion of "block end" once built — the
// rule's RuleStop id is always a safe outer bound, since every nested
// block's own exit only ever epsilons forward toward it).
func DecisionsOf(a *atn.ATN, ruleName string) []DecisionViz {
	info := a.RuleByName(ruleName)
	if info == nil {
		return nil
	}
	var out []DecisionViz
	for _, d := range a.Decisions {
		if d.RuleIndex != info.Index {
			continue
		}
		g := render.ATNGraph(a, d.StateID, info.StopState, ruleName)
		out = append(out, DecisionViz{
			DecisionID: d.DecisionID,
			StateID:    d.StateID,
			Alts:       d.NumAlts,
			DOT:        render.DOT(g, true),
		})
	}
	return out
}
