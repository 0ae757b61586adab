package render

import (
	"fmt"
	"strconv"

	"github.com/odvcencio/antlrlens/internal/atn"
)

// ATNGraph builds the typed Graph AST for the sub-ATN reachable from
// root up to (and including) stop, both state ids in a. Used by
// visualizeATN (whole rule) and visualizeDecision (decision-rooted
// sub-ATN per spec.md §4.6's "DOT rendering of the sub-ATN rooted at
// the decision up to the block-end").
func ATNGraph(a *atn.ATN, root, stop int, name string) Graph {
	g := Graph{Name: name}
	seen := map[int]bool{}
	var visit func(id int)
	visit = func(id int) {
		if seen[id] {
			return
		}
		seen[id] = true
		st := a.States[id]
		g.AddNode(strconv.Itoa(id), stateLabel(st))
		if id == stop {
			return
		}
		for _, t := range st.Transitions {
			g.AddEdge(strconv.Itoa(id), strconv.Itoa(t.Target), transitionLabel(a, t))
			visit(t.Target)
		}
	}
	visit(root)
	return g
}

func stateLabel(st *atn.State) string {
	return fmt.Sprintf("%d:%s", st.ID, st.Kind.String())
}

func transitionLabel(a *atn.ATN, t atn.Transition) string {
	switch t.Kind {
	case atn.TransEpsilon:
		return "ε"
	case atn.TransAtom:
		if t.Label >= 0 && t.Label < len(a.TokenNames) {
			return a.TokenNames[t.Label]
		}
		return strconv.Itoa(t.Label)
	case atn.TransRule:
		if t.RuleIndex >= 0 && t.RuleIndex < len(a.Rules) {
			return "call " + a.Rules[t.RuleIndex].Name
		}
		return "call"
	case atn.TransPrecedence:
		return fmt.Sprintf("prec>=%d", t.Precedence)
	default:
		return t.Kind.String()
	}
}
