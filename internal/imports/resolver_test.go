package imports

import (
	"testing"

	"github.com/odvcencio/antlrlens/internal/gsource"
)

func TestCircularImportDetected(t *testing.T) {
	sources := map[string]string{
		"A": "grammar A;\nimport B;\na : 'x' ;\n",
		"B": "grammar B;\nimport A;\nb : 'y' ;\n",
	}
	lookup := func(name string) (string, bool, error) {
		text, ok := sources[name]
		return text, ok, nil
	}
	main, _ := gsource.Parse(sources["A"])
	r := New(lookup, 0)
	_, problems := r.Resolve(main)
	if !problems.HasErrors() {
		t.Fatal("expected a circular import error")
	}
	if problems[0].Kind != "import-error" {
		t.Errorf("kind = %q, want import-error", problems[0].Kind)
	}
}

func TestImportMergeHostOverrides(t *testing.T) {
	sources := map[string]string{
		"Base": "grammar Base;\ngreeting : 'hi' ;\n",
	}
	lookup := func(name string) (string, bool, error) {
		text, ok := sources[name]
		return text, ok, nil
	}
	mainText := "grammar Main;\nimport Base;\ngreeting : 'hello' ;\nstart : greeting ;\n"
	main, problems := gsource.Parse(mainText)
	if problems.HasErrors() {
		t.Fatalf("parse errors: %v", problems)
	}
	r := New(lookup, 0)
	resolved, resolveProblems := r.Resolve(main)
	if resolveProblems.HasErrors() {
		t.Fatalf("resolve errors: %v", resolveProblems)
	}
	greeting := resolved.RuleByName("greeting")
	if greeting == nil {
		t.Fatal("greeting not found")
	}
	if greeting.Alternatives[0].Elements[0].Text != "hello" {
		t.Errorf("host rule was not kept: %q", greeting.Alternatives[0].Elements[0].Text)
	}
}

func TestMaxImportDepthExceeded(t *testing.T) {
	// A chain g0 -> g1 -> ... -> g6 with maxDepth=5 should fail at depth 6.
	sources := map[string]string{}
	for i := 0; i < 7; i++ {
		name := ruleChainName(i)
		next := ""
		if i+1 < 7 {
			next = "\nimport " + ruleChainName(i+1) + ";"
		}
		sources[name] = "grammar " + name + ";" + next + "\nr" + name + " : 'x' ;\n"
	}
	lookup := func(name string) (string, bool, error) {
		text, ok := sources[name]
		return text, ok, nil
	}
	main, _ := gsource.Parse(sources[ruleChainName(0)])
	r := New(lookup, 5)
	_, problems := r.Resolve(main)
	if !problems.HasErrors() {
		t.Fatal("expected max-depth-exceeded error")
	}
}

func ruleChainName(i int) string {
	return string(rune('A' + i))
}
