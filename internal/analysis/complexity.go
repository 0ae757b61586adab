package analysis

import (
	"github.com/odvcencio/antlrlens/internal/atn"
	"github.com/odvcencio/antlrlens/internal/model"
)

// AltCounts maps each rule name to its source-level alternative count.
func AltCounts(g *model.GrammarSource) map[string]int {
	counts := make(map[string]int, len(g.Rules))
	for _, r := range g.Rules {
		counts[r.Name] = len(r.Alternatives)
	}
	return counts
}

// RuleComplexity is the per-rule half of ComplexityMetrics (spec.md §4.6).
type RuleComplexity struct {
	Rule           string
	Alternatives   int
	DecisionPoints int
}

// ComplexityMetrics aggregates RuleComplexity across the rule set.
type ComplexityMetrics struct {
	PerRule        []RuleComplexity
	AvgAlts        float64
	MaxAlts        int
	AvgDecisions   float64
	MaxDecisions   int
}

// ComplexityOf derives complexity metrics from a's rule table and
// decision list — alternative counts come from the rule AST embedded
// via RuleInfo bookkeeping is not enough, so callers pass altCounts
// keyed by rule name (source-level alternative counts, since the ATN
// itself no longer carries a 1:1 alt-to-state mapping after the
// left-recursion transform).
func ComplexityOf(a *atn.ATN, altCounts map[string]int) *ComplexityMetrics {
	decisionsByRule := map[int]int{}
	for _, d := range a.Decisions {
		decisionsByRule[d.RuleIndex]++
	}

	cm := &ComplexityMetrics{}
	var totalAlts, totalDecisions int
	for _, r := range a.Rules {
		rc := RuleComplexity{
			Rule:           r.Name,
			Alternatives:   altCounts[r.Name],
			DecisionPoints: decisionsByRule[r.Index],
		}
		cm.PerRule = append(cm.PerRule, rc)
		totalAlts += rc.Alternatives
		totalDecisions += rc.DecisionPoints
		if rc.Alternatives > cm.MaxAlts {
			cm.MaxAlts = rc.Alternatives
		}
		if rc.DecisionPoints > cm.MaxDecisions {
			cm.MaxDecisions = rc.DecisionPoints
		}
	}
	if n := len(a.Rules); n > 0 {
		cm.AvgAlts = float64(totalAlts) / float64(n)
		cm.AvgDecisions = float64(totalDecisions) / float64(n)
	}
	return cm
}
