// Package imports implements C2, the import resolver: it follows
// `import X, Y;` declarations via DFS, rejecting cycles and
// excessive depth, and merges imported rules into the host grammar's
// namespace (spec.md §4.2).
package imports

import (
	"fmt"

	"github.com/odvcencio/antlrlens/internal/errs"
	"github.com/odvcencio/antlrlens/internal/gsource"
	"github.com/odvcencio/antlrlens/internal/model"
)

// Lookup fetches the text of an imported grammar by name. ok is false
// if the grammar does not exist; err carries I/O failures distinctly
// so the resolver can tell "not found" apart from "lookup failed"
// (spec.md §10.2, ADDED).
type Lookup func(name string) (text string, ok bool, err error)

// DefaultMaxDepth is the configured maximum import depth (spec.md §6).
const DefaultMaxDepth = 10

type visitState int

const (
	unvisited visitState = iota
	onStack
	done
)

// Resolver runs one DFS-based import resolution per request (spec.md
// §4.2's per-request scope).
type Resolver struct {
	lookup   Lookup
	maxDepth int

	state map[string]visitState
	cache map[string]*model.GrammarSource
	chain []string
}

// New creates a Resolver bounded to maxDepth (0 selects DefaultMaxDepth).
func New(lookup Lookup, maxDepth int) *Resolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Resolver{
		lookup:   lookup,
		maxDepth: maxDepth,
		state:    map[string]visitState{},
		cache:    map[string]*model.GrammarSource{},
	}
}

// Resolve implements the C2 contract: `resolve(main, lookup) →
// ResolvedGrammar`. It merges imported rules into main in place and
// returns main (now fully resolved) along with any errors encountered.
func (r *Resolver) Resolve(main *model.GrammarSource) (*model.GrammarSource, errs.List) {
	r.chain = []string{main.Name}
	r.state[main.Name] = onStack
	r.cache[main.Name] = main

	merged, problems := r.resolveImportsOf(main, 1)
	r.state[main.Name] = done

	if problems.HasErrors() {
		return nil, problems
	}
	main.Rules = merged
	return main, problems
}

// resolveImportsOf returns host's rule list with all transitively
// imported rules merged in (host's own rules always win: "a rule
// defined in the host overrides the same-named imported rule").
func (r *Resolver) resolveImportsOf(host *model.GrammarSource, depth int) ([]*model.Rule, errs.List) {
	var problems errs.List
	byName := map[string]*model.Rule{}
	origin := map[string]string{}
	var order []string
	for _, rule := range host.Rules {
		byName[rule.Name] = rule
		origin[rule.Name] = "host"
		order = append(order, rule.Name)
	}

	for _, impName := range host.Imports {
		if depth > r.maxDepth {
			problems = append(problems, errs.New(errs.KindImportError,
				fmt.Sprintf("import depth exceeds maximum (%d)", r.maxDepth), nil))
			continue
		}
		if r.state[impName] == onStack {
			chain := append(append([]string{}, r.chain...), impName)
			problems = append(problems, errs.New(errs.KindImportError,
				fmt.Sprintf("circular import: %v", chain), nil))
			continue
		}
		if r.state[impName] == done {
			// Already resolved elsewhere in this request; merge its
			// (already-merged) rule set without re-walking.
			imported := r.cache[impName]
			if imported != nil {
				problems = append(problems, mergeInto(byName, origin, &order, imported.Rules, impName)...)
			}
			continue
		}

		text, ok, err := r.lookup(impName)
		if err != nil {
			problems = append(problems, errs.New(errs.KindImportError,
				fmt.Sprintf("failed to load import %q: %v", impName, err), nil))
			continue
		}
		if !ok {
			problems = append(problems, errs.New(errs.KindImportError,
				fmt.Sprintf("imported grammar %q not found", impName), nil))
			continue
		}

		imported, parseErrs := gsource.Parse(text)
		if parseErrs.HasErrors() {
			problems = append(problems, parseErrs...)
			continue
		}

		r.state[impName] = onStack
		r.chain = append(r.chain, impName)
		r.cache[impName] = imported

		importedRules, subProblems := r.resolveImportsOf(imported, depth+1)
		problems = append(problems, subProblems...)
		imported.Rules = importedRules

		r.chain = r.chain[:len(r.chain)-1]
		r.state[impName] = done

		// Duplicate rule names across sibling imports at the same level
		// are rejected (spec.md §4.2).
		problems = append(problems, mergeInto(byName, origin, &order, importedRules, impName)...)
	}

	merged := make([]*model.Rule, 0, len(order))
	for _, name := range order {
		merged = append(merged, byName[name])
	}
	return merged, problems
}

// mergeInto adds rules from one import's (already-transitively-merged)
// rule set into byName. A name already owned by the host silently
// wins (standard ANTLR override semantics); a name already owned by a
// *different* sibling import at this same level is a rejected
// duplicate (spec.md §4.2).
func mergeInto(byName map[string]*model.Rule, origin map[string]string, order *[]string, rules []*model.Rule, importName string) errs.List {
	var problems errs.List
	for _, rule := range rules {
		switch owner, exists := origin[rule.Name]; {
		case !exists:
			byName[rule.Name] = rule
			origin[rule.Name] = importName
			*order = append(*order, rule.Name)
		case owner == "host":
			// host overrides; skip silently.
		case owner == importName:
			// same import re-merged (e.g. diamond import graph); fine.
		default:
			problems = append(problems, errs.New(errs.KindSemanticError,
				fmt.Sprintf("rule %q is defined by both import %q and import %q at the same level", rule.Name, owner, importName), nil))
		}
	}
	return problems
}
