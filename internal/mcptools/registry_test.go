package mcptools

import (
	"encoding/json"
	"testing"

	"github.com/odvcencio/antlrlens/engine"
	"github.com/odvcencio/antlrlens/internal/config"
)

const listGrammar = "grammar D;\nlist : INT (',' INT)* ;\nINT : [0-9]+ ;\n"

func newTestRegistry() *Registry {
	return NewRegistry(engine.New(config.Config{}.FillDefaults()))
}

func TestRegistryRegistersEveryOperation(t *testing.T) {
	r := newTestRegistry()
	want := []string{
		"validate_grammar", "parse_sample", "detect_ambiguity",
		"analyze_call_graph", "analyze_complexity", "analyze_left_recursion",
		"analyze_first_follow", "visualize_atn", "visualize_decision",
		"profile_parse", "generate_test_inputs",
	}
	got := map[string]bool{}
	for _, tool := range r.Tools() {
		got[tool.Name] = true
		if len(tool.InputSchema) == 0 {
			t.Errorf("tool %q has an empty InputSchema", tool.Name)
		}
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("missing registered tool %q", name)
		}
	}
	if len(r.Tools()) != len(want) {
		t.Errorf("Tools() returned %d tools, want %d", len(r.Tools()), len(want))
	}
}

func TestHandleToolValidateGrammar(t *testing.T) {
	r := newTestRegistry()
	params, _ := json.Marshal(ValidateGrammarRequest{GrammarText: listGrammar})
	result, err := r.HandleTool("validate_grammar", params)
	if err != nil {
		t.Fatalf("HandleTool: %v", err)
	}
	if result == nil {
		t.Fatal("expected a non-nil validate_grammar result")
	}
}

func TestHandleToolUnknownName(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.HandleTool("not_a_real_tool", json.RawMessage("{}")); err == nil {
		t.Error("expected an error for an unknown tool name")
	}
}

func TestHandleToolAnalyzeComplexityRejectsBadGrammar(t *testing.T) {
	r := newTestRegistry()
	params, _ := json.Marshal(AnalyzeComplexityRequest{GrammarText: "not a grammar {{{"})
	if _, err := r.HandleTool("analyze_complexity", params); err == nil {
		t.Error("expected an error for a malformed grammar")
	}
}
