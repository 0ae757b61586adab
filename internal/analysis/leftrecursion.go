package analysis

import "github.com/odvcencio/antlrlens/internal/atn"

// RuleLeftRecursion is one parser rule's entry in a LeftRecursionReport.
type RuleLeftRecursion struct {
	Rule                string
	DirectlyRecursive   bool
	Transformed         bool
	PrecedenceLevels    []int
	PrimaryAltIndices   []int
	RecursiveAltIndices []int
}

// LeftRecursionReport is spec.md §4.6's left-recursion analysis:
// direct-recursion per rule straight from LeftRecursionInfo (so this
// report and the ATN builder's transform can never disagree), plus
// indirect cycles restricted to parser-rule call-graph edges.
type LeftRecursionReport struct {
	DirectRules   []RuleLeftRecursion
	IndirectCycles [][]string
}

// LeftRecursionOf builds the report from a's per-rule bookkeeping and
// the already-computed call graph (indirect cycles are call-graph
// cycles among parser rules only; fragment/lexer rules never recurse
// into a parser rule so they cannot participate).
func LeftRecursionOf(a *atn.ATN, cg *CallGraph) *LeftRecursionReport {
	report := &LeftRecursionReport{}
	parserRule := map[string]bool{}
	for _, r := range a.Rules {
		if r.Kind != "parser" {
			continue
		}
		parserRule[r.Name] = true
		if r.LeftRecursion == nil {
			continue
		}
		lr := r.LeftRecursion
		report.DirectRules = append(report.DirectRules, RuleLeftRecursion{
			Rule:                r.Name,
			DirectlyRecursive:   lr.DirectlyRecursive,
			Transformed:         lr.Transformed,
			PrecedenceLevels:    lr.PrecedenceLevels,
			PrimaryAltIndices:   lr.PrimaryAltIndices,
			RecursiveAltIndices: lr.RecursiveAltIndices,
		})
	}
	for _, cyc := range cg.Cycles {
		allParser := true
		for _, n := range cyc {
			if !parserRule[n] {
				allParser = false
				break
			}
		}
		// A single-rule cycle is direct recursion, already reported above.
		if allParser && len(cyc) > 1 {
			report.IndirectCycles = append(report.IndirectCycles, cyc)
		}
	}
	return report
}
