// Package analysis implements C6, the static analyses that run over a
// resolved grammar and its ATN without altering either: call graph,
// complexity metrics, left-recursion report, FIRST/FOLLOW, decision
// lookahead/ambiguity, decision visualization, and the embedded-code
// scan (spec.md §4.6).
package analysis

import (
	"sort"

	"github.com/odvcencio/antlrlens/internal/model"
)

// CallGraphEdge is one rule-reference edge A→B.
type CallGraphEdge struct {
	From string
	To   string
}

// CallGraph is the call-graph analysis result (spec.md §4.6).
type CallGraph struct {
	Nodes  []string
	Edges  []CallGraphEdge
	Cycles [][]string // each cycle's canonical rotation, smallest rule name first
	Depths map[string]int
	Unused []string // rules not reachable from the start rule
	FanIn  map[string]int
	FanOut map[string]int
}

// CallGraphOf builds the call graph for g, rooted at startRule (the
// first parser rule if startRule is empty).
func CallGraphOf(g *model.GrammarSource, startRule string) *CallGraph {
	cg := &CallGraph{
		Depths: map[string]int{},
		FanIn:  map[string]int{},
		FanOut: map[string]int{},
	}
	adj := map[string][]string{}
	for _, r := range g.Rules {
		cg.Nodes = append(cg.Nodes, r.Name)
		adj[r.Name] = refsOf(r)
	}
	sort.Strings(cg.Nodes)

	for _, r := range g.Rules {
		for _, to := range adj[r.Name] {
			if g.RuleByName(to) == nil {
				continue // undefined-rule is reported elsewhere (errs.KindUndefinedRule)
			}
			cg.Edges = append(cg.Edges, CallGraphEdge{From: r.Name, To: to})
			cg.FanOut[r.Name]++
			cg.FanIn[to]++
		}
	}

	cg.Cycles = detectCycles(cg.Nodes, adj)

	root := startRule
	if root == "" {
		root = g.StartRuleName
	}
	if root == "" && len(g.Rules) == 1 {
		root = g.Rules[0].Name
	}
	reached := bfsDepths(root, adj)
	cg.Depths = reached
	for _, name := range cg.Nodes {
		if _, ok := reached[name]; !ok {
			cg.Unused = append(cg.Unused, name)
		}
	}
	return cg
}

// refsOf collects every rule-reference (token or rule) appearing
// anywhere in r's alternatives, recursing into nested blocks.
func refsOf(r *model.Rule) []string {
	var out []string
	var walk func(els []*model.Element)
	walk = func(els []*model.Element) {
		for _, el := range els {
			switch el.Kind {
			case model.ElemRuleRef, model.ElemToken:
				out = append(out, el.Text)
			case model.ElemOptional, model.ElemStar, model.ElemPlus, model.ElemBlock:
				for _, sub := range el.Sub {
					walk(sub.Elements)
				}
			}
		}
	}
	for _, alt := range r.Alternatives {
		walk(alt.Elements)
	}
	return out
}

// detectCycles runs DFS with an explicit stack over adj and normalizes
// each detected cycle to its canonical rotation (smallest name first)
// to dedupe repeated discoveries of the same cycle.
func detectCycles(nodes []string, adj map[string][]string) [][]string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var stack []string
	onStack := map[string]int{} // name -> index in stack
	seen := map[string]bool{}
	var cycles [][]string

	var visit func(n string)
	visit = func(n string) {
		color[n] = gray
		stack = append(stack, n)
		onStack[n] = len(stack) - 1
		for _, to := range adj[n] {
			switch color[to] {
			case white:
				visit(to)
			case gray:
				idx := onStack[to]
				cyc := append([]string{}, stack[idx:]...)
				canon := canonicalRotation(cyc)
				key := joinCycle(canon)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, canon)
				}
			}
		}
		delete(onStack, n)
		stack = stack[:len(stack)-1]
		color[n] = black
	}
	for _, n := range nodes {
		if color[n] == white {
			visit(n)
		}
	}
	return cycles
}

func canonicalRotation(cyc []string) []string {
	minIdx := 0
	for i, n := range cyc {
		if n < cyc[minIdx] {
			minIdx = i
		}
	}
	out := make([]string, len(cyc))
	for i := range cyc {
		out[i] = cyc[(minIdx+i)%len(cyc)]
	}
	return out
}

func joinCycle(cyc []string) string {
	s := ""
	for i, n := range cyc {
		if i > 0 {
			s += ">"
		}
		s += n
	}
	return s
}

// bfsDepths returns the BFS distance from root to every rule it can
// reach; root itself is depth 0. Returns an empty map if root is "".
func bfsDepths(root string, adj map[string][]string) map[string]int {
	depths := map[string]int{}
	if root == "" {
		return depths
	}
	depths[root] = 0
	queue := []string{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, to := range adj[n] {
			if _, ok := depths[to]; ok {
				continue
			}
			depths[to] = depths[n] + 1
			queue = append(queue, to)
		}
	}
	return depths
}
