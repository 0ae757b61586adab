package gsource

import (
	"fmt"

	"github.com/odvcencio/antlrlens/internal/errs"
	"github.com/odvcencio/antlrlens/internal/model"
)

// CheckUndefinedReferences enforces invariant I2 ("every rule reference
// resolves to a defined rule within the grammar, after import merge").
// It is run by the engine façade after internal/imports has merged
// imported rules in, per spec.md §4.1.
func CheckUndefinedReferences(g *model.GrammarSource) errs.List {
	var problems errs.List
	defined := map[string]bool{}
	for _, r := range g.Rules {
		defined[r.Name] = true
	}
	var walk func(elems []*model.Element)
	walk = func(elems []*model.Element) {
		for _, el := range elems {
			if el.Kind == model.ElemRuleRef && !defined[el.Text] {
				problems = append(problems, errs.New(errs.KindUndefinedRule,
					fmt.Sprintf("rule %q is not defined", el.Text), nil))
			}
			for _, sub := range el.Sub {
				walk(sub.Elements)
			}
		}
	}
	for _, r := range g.Rules {
		for _, alt := range r.Alternatives {
			walk(alt.Elements)
		}
	}
	return problems
}
